package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/dbpg"

	"cafeDesk/internal/model"
)

var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrEventConfigNotFound  = errors.New("event config not found")
	ErrTermsNotFound        = errors.New("terms not found")
)

type Repository interface {
	CreateRegistration(ctx context.Context, reg *model.Registration) error
	GetRegistrationByID(ctx context.Context, id string) (*model.Registration, error)
	ListRegistrations(ctx context.Context) ([]model.Registration, error)
	DeleteRegistration(ctx context.Context, id string) (int64, error)
	CountRegistrations(ctx context.Context) (int, error)

	GetActiveEventConfig(ctx context.Context) (*model.EventConfig, error)
	GetCurrentEventConfig(ctx context.Context) (*model.EventConfig, error)
	SaveEventConfig(ctx context.Context, cfg *model.EventConfig) error

	GetActiveTerms(ctx context.Context) (*model.TermsAgreement, error)
	ListTerms(ctx context.Context) ([]model.TermsAgreement, error)
	SaveTerms(ctx context.Context, terms *model.TermsAgreement) error

	ListFeedback(ctx context.Context) ([]model.Feedback, error)
	CountFeedback(ctx context.Context) (int, error)

	CreateVisit(ctx context.Context, v *model.VisitorVisit) error
	ListRecentVisits(ctx context.Context, limit int) ([]model.VisitorVisit, error)
	ListVisitedPages(ctx context.Context) ([]string, error)
	CountVisits(ctx context.Context, since time.Time) (int, error)
}

// querier is the read/write surface shared by *dbpg.DB and *sql.DB.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type repository struct {
	db     querier
	master *sql.DB
	log    *zerolog.Logger
}

func NewRepository(db *dbpg.DB, log *zerolog.Logger) (Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if err := db.Master.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}
	return &repository{db: db, master: db.Master, log: log}, nil
}

// newSQLRepository runs every query on a single *sql.DB.
func newSQLRepository(db *sql.DB, log *zerolog.Logger) *repository {
	return &repository{db: db, master: db, log: log}
}

// withTx runs fn in a transaction on the master, rolling back on error.
func (r *repository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.master.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func count(ctx context.Context, q querier, query string, args ...interface{}) (int, error) {
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
