package service

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"cafeDesk/internal/rabbit"
	"cafeDesk/internal/repo"
	"cafeDesk/internal/session"
)

// PaymentBucket is the bucket payment screenshots are stored in.
const PaymentBucket = "payment-screenshots"

type Service interface {
	GetEvent(ctx *ginext.Context)
	GetTerms(ctx *ginext.Context)
	Register(ctx *ginext.Context)
	RecordVisit(ctx *ginext.Context)

	Login(ctx *ginext.Context)
	Logout(ctx *ginext.Context)
	SessionStatus(ctx *ginext.Context)

	Stats(ctx *ginext.Context)
	ListParticipants(ctx *ginext.Context)
	ExportParticipants(ctx *ginext.Context)
	DeleteParticipant(ctx *ginext.Context)
	ListFeedback(ctx *ginext.Context)
	ExportFeedback(ctx *ginext.Context)
	ListVisitors(ctx *ginext.Context)
	ExportVisitors(ctx *ginext.Context)

	GetEventConfig(ctx *ginext.Context)
	SaveEventConfig(ctx *ginext.Context)
	GetAdminTerms(ctx *ginext.Context)
	SaveTerms(ctx *ginext.Context)
	TermsHistory(ctx *ginext.Context)
}

// ObjectStore keeps uploaded files and returns their public URL.
type ObjectStore interface {
	Put(ctx context.Context, object string, r io.Reader) (string, error)
}

type Settings struct {
	// AdminPasswordHash is the bcrypt hash of the shared admin password.
	AdminPasswordHash string
	SessionTTL        time.Duration
	SecureCookie      bool
	ReminderDelay     time.Duration
	VisitorLimit      int
}

const defaultVisitorLimit = 50

type service struct {
	repo     repo.Repository
	log      *zerolog.Logger
	store    ObjectStore
	rbt      rabbit.Publisher
	sessions session.Store
	settings Settings
	now      func() time.Time
}

func NewService(
	repo repo.Repository,
	logger *zerolog.Logger,
	store ObjectStore,
	rbt rabbit.Publisher,
	sessions session.Store,
	settings Settings,
) Service {
	if settings.VisitorLimit <= 0 || settings.VisitorLimit > defaultVisitorLimit {
		settings.VisitorLimit = defaultVisitorLimit
	}
	return &service{
		repo:     repo,
		log:      logger,
		store:    store,
		rbt:      rbt,
		sessions: sessions,
		settings: settings,
		now:      time.Now,
	}
}
