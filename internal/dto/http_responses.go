package dto

import (
	"errors"
	"net/http"
	"time"

	"github.com/wb-go/wbf/ginext"

	"cafeDesk/internal/apperr"
	"cafeDesk/internal/model"
	"cafeDesk/pkg/validator"
)

const (
	FieldBadFormat       = "FIELD_BADFORMAT"
	ValidationFailed     = "VALIDATION_FAILED"
	GatewayError         = "GATEWAY_ERROR"
	UploadFailed         = "UPLOAD_FAILED"
	RegistrationNotFound = "REGISTRATION_NOT_FOUND"
	DeleteRejected       = "DELETE_REJECTED"
	ConfirmationRequired = "CONFIRMATION_REQUIRED"
	ConfigNotFound       = "CONFIG_NOT_FOUND"
	TermsNotFound        = "TERMS_NOT_FOUND"
	Unauthorized         = "UNAUTHORIZED"
	InvalidCredentials   = "INVALID_CREDENTIALS"

	InternalError = "Service is currently unavailable. Please try again later."
)

// Notice variants understood by the front end.
const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"
)

// Notice is a toast the client shows next to the result.
type Notice struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Variant     string `json:"variant,omitempty"`
}

func SuccessNotice(title, desc string) Notice {
	return Notice{Title: title, Description: desc, Variant: VariantDefault}
}

func ErrorNotice(title, desc string) Notice {
	return Notice{Title: title, Description: desc, Variant: VariantDestructive}
}

type Response struct {
	Status  string   `json:"status"`
	Error   *Error   `json:"error,omitempty"`
	Data    any      `json:"data,omitempty"`
	Notices []Notice `json:"notices,omitempty"`
}

type Error struct {
	Code   string                `json:"code"`
	Desc   string                `json:"desc"`
	Fields validator.FieldErrors `json:"fields,omitempty"`
}

type RegistrationResponse struct {
	Registration model.Registration `json:"registration"`
	ResetForm    bool               `json:"reset_form"`
}

type DeleteRegistrationResponse struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
}

type FeedbackItem struct {
	model.Feedback
	RatingLabel string `json:"rating_label"`
}

type VisitItem struct {
	model.VisitorVisit
	Browser string `json:"browser"`
}

type VisitorsResponse struct {
	Visits    []VisitItem      `json:"visits"`
	PageStats []model.PageStat `json:"page_stats"`
}

type VisitResponse struct {
	Recorded bool `json:"recorded"`
}

type AdminSessionResponse struct {
	AdminLoggedIn bool       `json:"adminLoggedIn"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
}

func ErrorResponse(c *ginext.Context, status int, code, desc string, notices ...Notice) {
	c.JSON(status, Response{
		Status: "error",
		Error: &Error{
			Code: code,
			Desc: desc,
		},
		Notices: notices,
	})
}

func BadResponseError(c *ginext.Context, code, desc string) {
	ErrorResponse(c, http.StatusBadRequest, code, desc)
}

func InternalServerError(c *ginext.Context, notices ...Notice) {
	ErrorResponse(c, http.StatusInternalServerError, GatewayError, InternalError, notices...)
}

func FieldBadFormatError(c *ginext.Context, desc string) {
	BadResponseError(c, FieldBadFormat, desc)
}

func UnauthorizedError(c *ginext.Context) {
	ErrorResponse(c, http.StatusUnauthorized, Unauthorized, "Admin session required")
}

// AppError writes err with the status its apperr kind maps to. code
// overrides the default code of the kind when non-empty.
func AppError(c *ginext.Context, err error, code string, notices ...Notice) {
	var e *apperr.Error
	if !errors.As(err, &e) {
		InternalServerError(c, notices...)
		return
	}

	status, defCode := statusFor(e.Kind)
	if code == "" {
		code = defCode
	}
	desc := e.Message()
	if e.Kind == apperr.KindGateway || e.Kind == apperr.KindUpload {
		desc = InternalError
	}
	c.JSON(status, Response{
		Status: "error",
		Error: &Error{
			Code:   code,
			Desc:   desc,
			Fields: e.Fields,
		},
		Notices: notices,
	})
}

func statusFor(k apperr.Kind) (int, string) {
	switch k {
	case apperr.KindValidation:
		return http.StatusBadRequest, ValidationFailed
	case apperr.KindNotFound:
		return http.StatusNotFound, RegistrationNotFound
	case apperr.KindPermissionDenied:
		return http.StatusForbidden, DeleteRejected
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized, Unauthorized
	case apperr.KindUpload:
		return http.StatusInternalServerError, UploadFailed
	default:
		return http.StatusInternalServerError, GatewayError
	}
}

func SuccessResponse(c *ginext.Context, data any, notices ...Notice) {
	c.JSON(http.StatusOK, Response{
		Status:  "ok",
		Data:    data,
		Notices: notices,
	})
}

func SuccessCreatedResponse(c *ginext.Context, data any, notices ...Notice) {
	c.JSON(http.StatusCreated, Response{
		Status:  "ok",
		Data:    data,
		Notices: notices,
	})
}

func AcceptedResponse(c *ginext.Context, data any) {
	c.JSON(http.StatusAccepted, Response{
		Status: "ok",
		Data:   data,
	})
}

// CSVResponse sends body as a downloadable attachment.
func CSVResponse(c *ginext.Context, fileName, contentType string, body []byte) {
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Data(http.StatusOK, contentType, body)
}
