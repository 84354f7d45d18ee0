package consumerWorker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cafeDesk/internal/dto"
	"cafeDesk/internal/model"
	"cafeDesk/internal/repo"
)

type storeMock struct{ mock.Mock }

func (m *storeMock) GetRegistrationByID(ctx context.Context, id string) (*model.Registration, error) {
	args := m.Called(ctx, id)
	reg, _ := args.Get(0).(*model.Registration)
	return reg, args.Error(1)
}

func (m *storeMock) GetCurrentEventConfig(ctx context.Context) (*model.EventConfig, error) {
	args := m.Called(ctx)
	cfg, _ := args.Get(0).(*model.EventConfig)
	return cfg, args.Error(1)
}

type notifierMock struct{ mock.Mock }

func (m *notifierMock) SendRegistrationReceived(reg *model.Registration, event model.EventDetails) error {
	return m.Called(reg, event).Error(0)
}

func (m *notifierMock) SendPaymentReminder(reg *model.Registration, event model.EventDetails) error {
	return m.Called(reg, event).Error(0)
}

type consumerStub struct {
	handler func([]byte) error
	ready   chan struct{}
}

func (c *consumerStub) Consume(handler func([]byte) error) error {
	c.handler = handler
	close(c.ready)
	return nil
}

func notice(t *testing.T, kind, id string) []byte {
	t.Helper()
	body, err := json.Marshal(dto.RegistrationNoticeMessage{Kind: kind, RegistrationID: id, ExpireAt: time.Now()})
	require.NoError(t, err)
	return body
}

func newTestReader() (*Reader, *storeMock, *notifierMock, *consumerStub) {
	log := zerolog.Nop()
	store := &storeMock{}
	mail := &notifierMock{}
	cons := &consumerStub{ready: make(chan struct{})}
	return NewReader(cons, store, mail, &log), store, mail, cons
}

func TestHandleRegistrationReceived(t *testing.T) {
	r, store, mail, _ := newTestReader()
	reg := &model.Registration{ID: "r1", Name: "Jane Doe", Email: "jane@x.com"}
	cfg := model.DefaultEventConfig()
	cfg.Title = "Holiday Tasting"
	cfg.PricePerPerson = 1200

	store.On("GetRegistrationByID", mock.Anything, "r1").Return(reg, nil)
	store.On("GetCurrentEventConfig", mock.Anything).Return(&cfg, nil)
	mail.On("SendRegistrationReceived", reg, mock.MatchedBy(func(e model.EventDetails) bool {
		return e.Title == "Holiday Tasting" && e.DownPaymentLabel == "₱600.00"
	})).Return(nil)

	require.NoError(t, r.handle(context.Background(), notice(t, dto.NoticeRegistrationReceived, "r1")))
	mail.AssertExpectations(t)
}

func TestHandleReminderSkipsWhenScreenshotPresent(t *testing.T) {
	r, store, mail, _ := newTestReader()
	url := "http://localhost/storage/payment-screenshots/a.png"
	reg := &model.Registration{ID: "r1", Email: "jane@x.com", PaymentScreenshotURL: &url}

	store.On("GetRegistrationByID", mock.Anything, "r1").Return(reg, nil)
	store.On("GetCurrentEventConfig", mock.Anything).Return(nil, repo.ErrEventConfigNotFound)

	require.NoError(t, r.handle(context.Background(), notice(t, dto.NoticePaymentReminder, "r1")))
	mail.AssertNotCalled(t, "SendPaymentReminder", mock.Anything, mock.Anything)
}

func TestHandleReminderUsesDefaultsWithoutConfig(t *testing.T) {
	r, store, mail, _ := newTestReader()
	reg := &model.Registration{ID: "r1", Email: "jane@x.com"}

	store.On("GetRegistrationByID", mock.Anything, "r1").Return(reg, nil)
	store.On("GetCurrentEventConfig", mock.Anything).Return(nil, errors.New("connection reset"))
	mail.On("SendPaymentReminder", reg, mock.MatchedBy(func(e model.EventDetails) bool {
		return e.Title == "Coffee Tasting Session" && e.DownPaymentLabel == "₱500.00"
	})).Return(errors.New("smtp down"))

	assert.NoError(t, r.handle(context.Background(), notice(t, dto.NoticePaymentReminder, "r1")))
	mail.AssertExpectations(t)
}

func TestHandleDeletedRegistrationIsAcked(t *testing.T) {
	r, store, mail, _ := newTestReader()
	store.On("GetRegistrationByID", mock.Anything, "gone").Return(nil, repo.ErrRegistrationNotFound)

	assert.NoError(t, r.handle(context.Background(), notice(t, dto.NoticeRegistrationReceived, "gone")))
	mail.AssertNotCalled(t, "SendRegistrationReceived", mock.Anything, mock.Anything)
}

func TestHandleRequeuesOnFailure(t *testing.T) {
	r, store, _, _ := newTestReader()
	store.On("GetRegistrationByID", mock.Anything, "r1").Return(nil, errors.New("connection reset"))

	assert.Error(t, r.handle(context.Background(), []byte("{not json")))
	assert.Error(t, r.handle(context.Background(), notice(t, dto.NoticeRegistrationReceived, "r1")))
}

func TestStartWiresHandlerAndStop(t *testing.T) {
	r, store, mail, cons := newTestReader()
	reg := &model.Registration{ID: "r1", Email: "jane@x.com"}
	store.On("GetRegistrationByID", mock.Anything, "r1").Return(reg, nil)
	store.On("GetCurrentEventConfig", mock.Anything).Return(nil, repo.ErrEventConfigNotFound)
	mail.On("SendRegistrationReceived", reg, mock.Anything).Return(nil)

	r.Start(context.Background())
	select {
	case <-cons.ready:
	case <-time.After(time.Second):
		t.Fatal("reader did not start consuming")
	}

	require.NoError(t, cons.handler(notice(t, dto.NoticeRegistrationReceived, "r1")))
	r.Stop()
	mail.AssertExpectations(t)
}
