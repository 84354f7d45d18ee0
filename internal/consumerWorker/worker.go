package consumerWorker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"cafeDesk/internal/dto"
	"cafeDesk/internal/model"
	"cafeDesk/internal/rabbit"
	"cafeDesk/internal/repo"
)

type registrationStore interface {
	GetRegistrationByID(ctx context.Context, id string) (*model.Registration, error)
	GetCurrentEventConfig(ctx context.Context) (*model.EventConfig, error)
}

type notifier interface {
	SendRegistrationReceived(reg *model.Registration, event model.EventDetails) error
	SendPaymentReminder(reg *model.Registration, event model.EventDetails) error
}

// Reader consumes registration notices and turns them into emails.
type Reader struct {
	rmq    rabbit.Consumer
	repo   registrationStore
	mail   notifier
	log    *zerolog.Logger
	done   chan struct{}
	cancel context.CancelFunc
}

func NewReader(rmq rabbit.Consumer, repo registrationStore, mail notifier, log *zerolog.Logger) *Reader {
	return &Reader{
		rmq:  rmq,
		repo: repo,
		mail: mail,
		log:  log,
		done: make(chan struct{}),
	}
}

func (r *Reader) Start(ctx context.Context) {
	cctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	r.log.Info().Msg("registration notice reader started")

	go func() {
		defer close(r.done)

		if err := r.rmq.Consume(func(body []byte) error {
			return r.handle(cctx, body)
		}); err != nil {
			r.log.Error().Err(err).Msg("failed to start consuming")
			return
		}

		<-cctx.Done()
		r.log.Info().Msg("registration notice reader stopped")
	}()
}

func (r *Reader) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

// handle returns an error only when the message should be redelivered.
func (r *Reader) handle(ctx context.Context, body []byte) error {
	var msg dto.RegistrationNoticeMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		r.log.Error().Err(err).Str("body", string(body)).Msg("failed to unmarshal notice")
		return fmt.Errorf("unmarshal notice: %w", err)
	}

	r.log.Info().
		Str("kind", msg.Kind).
		Str("registration_id", msg.RegistrationID).
		Msg("notice received")

	reg, err := r.repo.GetRegistrationByID(ctx, msg.RegistrationID)
	if err != nil {
		if errors.Is(err, repo.ErrRegistrationNotFound) {
			r.log.Info().Str("registration_id", msg.RegistrationID).Msg("registration removed, skipping notice")
			return nil
		}
		return fmt.Errorf("load registration %s: %w", msg.RegistrationID, err)
	}

	event := r.eventDetails(ctx)

	switch msg.Kind {
	case dto.NoticeRegistrationReceived:
		err = r.mail.SendRegistrationReceived(reg, event)
	case dto.NoticePaymentReminder:
		if reg.PaymentScreenshotURL != nil {
			r.log.Info().Str("registration_id", reg.ID).Msg("payment screenshot on file, skipping reminder")
			return nil
		}
		err = r.mail.SendPaymentReminder(reg, event)
	default:
		r.log.Warn().Str("kind", msg.Kind).Msg("unknown notice kind, dropping")
		return nil
	}

	if err != nil {
		r.log.Warn().Err(err).Str("registration_id", reg.ID).Msg("failed to send notice email")
	}
	return nil
}

func (r *Reader) eventDetails(ctx context.Context) model.EventDetails {
	cfg, err := r.repo.GetCurrentEventConfig(ctx)
	if err != nil && !errors.Is(err, repo.ErrEventConfigNotFound) {
		r.log.Warn().Err(err).Msg("failed to load event config, using defaults")
	}
	return model.NewEventDetails(model.WithDefaults(cfg))
}
