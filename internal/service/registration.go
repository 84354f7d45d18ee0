package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/wb-go/wbf/ginext"

	"cafeDesk/internal/apperr"
	"cafeDesk/internal/dto"
	"cafeDesk/internal/model"
	"cafeDesk/internal/storage"
	"cafeDesk/pkg/validator"
)

const screenshotField = "payment_screenshot"

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 512

type upload struct {
	name string
	size int64
	head []byte
	body io.Reader
}

func (s *service) Register(c *ginext.Context) {
	var req dto.RegistrationRequest
	if err := c.ShouldBind(&req); err != nil {
		s.log.Warn().Err(err).Msg("failed to parse registration form")
		dto.FieldBadFormatError(c, "Invalid registration form")
		return
	}

	fh, err := c.FormFile(screenshotField)
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		s.log.Warn().Err(err).Msg("failed to read payment screenshot")
		dto.FieldBadFormatError(c, "Invalid payment screenshot")
		return
	}

	var up *upload
	if fh != nil {
		f, err := fh.Open()
		if err != nil {
			s.log.Error().Err(err).Msg("failed to open payment screenshot")
			dto.FieldBadFormatError(c, "Invalid payment screenshot")
			return
		}
		defer f.Close()

		up, err = newUpload(fh, f)
		if err != nil {
			s.log.Error().Err(err).Msg("failed to read payment screenshot")
			dto.FieldBadFormatError(c, "Invalid payment screenshot")
			return
		}
	}

	reg, notices, err := s.submitRegistration(c.Request.Context(), req, up)
	if err != nil {
		dto.AppError(c, err, "", notices...)
		return
	}

	dto.SuccessCreatedResponse(c, dto.RegistrationResponse{
		Registration: *reg,
		ResetForm:    true,
	}, notices...)
}

func newUpload(fh *multipart.FileHeader, f multipart.File) (*upload, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	head = head[:n]
	return &upload{
		name: fh.Filename,
		size: fh.Size,
		head: head,
		body: io.MultiReader(bytes.NewReader(head), f),
	}, nil
}

// submitRegistration validates, stores the optional screenshot and inserts
// the registration. A failed upload does not fail the registration: it is
// saved without a screenshot and a warning notice is returned.
func (s *service) submitRegistration(ctx context.Context, req dto.RegistrationRequest, up *upload) (*model.Registration, []dto.Notice, error) {
	const op = "service.submitRegistration"

	var fields validator.FieldErrors
	if err := validator.Validate(ctx, req); err != nil {
		fields = append(fields, asFieldErrors(err)...)
	}
	if up != nil {
		if err := validator.ValidateUpload(up.size, up.head); err != nil {
			fields = append(fields, asFieldErrors(err)...)
		}
	}
	if len(fields) > 0 {
		return nil, nil, apperr.Validation(op, fields)
	}

	reg := &model.Registration{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Experience: req.Experience,
	}

	var warnings []dto.Notice
	if up != nil {
		url, err := s.storeScreenshot(ctx, up)
		if err != nil {
			s.log.Error().Err(apperr.Upload(op, err)).Str("email", req.Email).Msg("payment screenshot upload failed")
			warnings = append(warnings, noticeUploadFailed)
		} else {
			reg.PaymentScreenshotURL = &url
		}
	}

	if err := s.repo.CreateRegistration(ctx, reg); err != nil {
		s.log.Error().Err(err).Str("email", req.Email).Msg("failed to create registration")
		gerr := apperr.Gateway(op, err)
		return nil, append(warnings, registrationFailedNotice(gerr.Message())), gerr
	}

	s.log.Info().
		Str("registration_id", reg.ID).
		Bool("has_screenshot", reg.PaymentScreenshotURL != nil).
		Msg("registration created successfully")

	s.publishNotices(reg)

	return reg, append([]dto.Notice{noticeRegistered}, warnings...), nil
}

func (s *service) storeScreenshot(ctx context.Context, up *upload) (string, error) {
	ext, ok := validator.ImageExtension(up.head)
	if !ok {
		return "", fmt.Errorf("unsupported screenshot type for %q", up.name)
	}
	object := storage.ObjectName(ext, s.now())
	return s.store.Put(ctx, object, up.body)
}

// publishNotices queues the confirmation email and, without a screenshot, a
// delayed payment reminder. Failures are logged only.
func (s *service) publishNotices(reg *model.Registration) {
	now := s.now()
	s.publish(dto.RegistrationNoticeMessage{
		Kind:           dto.NoticeRegistrationReceived,
		RegistrationID: reg.ID,
		ExpireAt:       now,
	}, 0)

	if reg.PaymentScreenshotURL == nil && s.settings.ReminderDelay > 0 {
		s.publish(dto.RegistrationNoticeMessage{
			Kind:           dto.NoticePaymentReminder,
			RegistrationID: reg.ID,
			ExpireAt:       now.Add(s.settings.ReminderDelay),
		}, int(s.settings.ReminderDelay.Seconds()))
	}
}

func (s *service) publish(msg dto.RegistrationNoticeMessage, delaySeconds int) {
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal registration notice")
		return
	}
	if err := s.rbt.Publish(payload, delaySeconds); err != nil {
		s.log.Error().Err(err).
			Str("kind", msg.Kind).
			Str("registration_id", msg.RegistrationID).
			Msg("failed to publish registration notice")
	}
}

func asFieldErrors(err error) validator.FieldErrors {
	var fields validator.FieldErrors
	if errors.As(err, &fields) {
		return fields
	}
	return validator.FieldErrors{{Field: "form", Message: err.Error()}}
}
