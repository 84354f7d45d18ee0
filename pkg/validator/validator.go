package validator

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator"
)

var global *validator.Validate

const (
	ErrInvalidFormat      = "Invalid format"
	ErrFieldRequired      = "Field is required"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrFieldBelowMinLen   = "Field is below minimum length"
	ErrFieldExceedsMaxVal = "Field exceeds maximum value"
	ErrFieldBelowMinVal   = "Field is below minimum value"
	ErrUnknownValidation  = "Unknown validation error"

	ErrFileTooLarge = "File size must be less than 5MB"
	ErrFileNotImage = "Payment screenshot must be an image"
)

// MaxUploadBytes is the largest payment screenshot accepted.
const MaxUploadBytes = 5_000_000

// FieldError is a single field-scoped validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is returned by Validate when at least one rule fails.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	parts := make([]string, 0, len(fe))
	for _, e := range fe {
		parts = append(parts, e.Field+": "+e.Message)
	}
	return strings.Join(parts, "; ")
}

// Has reports whether field has at least one error.
func (fe FieldErrors) Has(field string) bool {
	for _, e := range fe {
		if e.Field == field {
			return true
		}
	}
	return false
}

func init() {
	SetValidator(New())
}

func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("accepted", validateAccepted)
	_ = v.RegisterValidation("notblank", validateNotBlank)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "" || name == "-" {
		return fld.Name
	}
	return name
}

func validateAccepted(fl validator.FieldLevel) bool {
	f := fl.Field()
	return f.Kind() == reflect.Bool && f.Bool()
}

func validateNotBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	return f.Kind() == reflect.String && strings.TrimSpace(f.String()) != ""
}

// Validate checks structure against its `validate` tags. The returned error is
// nil or a FieldErrors listing every failing field in declaration order.
func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(structure, Validator().StructCtx(ctx, structure))
}

// ValidateUpload applies the payment screenshot rules to a file of size bytes
// whose first bytes are head.
func ValidateUpload(size int64, head []byte) error {
	var errs FieldErrors
	if size > MaxUploadBytes {
		errs = append(errs, FieldError{Field: "payment_screenshot", Message: ErrFileTooLarge})
	}
	if !IsImage(head) {
		errs = append(errs, FieldError{Field: "payment_screenshot", Message: ErrFileNotImage})
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// imageTypes are the raster formats accepted as payment screenshots, with the
// extension they are stored under.
var imageTypes = []struct {
	mime string
	ext  string
}{
	{"image/png", ".png"},
	{"image/jpeg", ".jpg"},
	{"image/gif", ".gif"},
	{"image/webp", ".webp"},
}

// ImageExtension sniffs head and returns the storage extension of an accepted
// image type. Anything else, SVG included, is reported as not an image.
func ImageExtension(head []byte) (string, bool) {
	if len(head) == 0 {
		return "", false
	}
	mt := mimetype.Detect(head)
	for _, it := range imageTypes {
		if mt.Is(it.mime) {
			return it.ext, true
		}
	}
	return "", false
}

func IsImage(head []byte) bool {
	_, ok := ImageExtension(head)
	return ok
}

func parseValidationErrors(structure any, err error) error {
	if err == nil {
		return nil
	}
	var vErrors validator.ValidationErrors
	if !errors.As(err, &vErrors) || len(vErrors) == 0 {
		return nil
	}

	out := make(FieldErrors, 0, len(vErrors))
	seen := make(map[string]bool, len(vErrors))
	for _, ve := range vErrors {
		if seen[ve.Field()] {
			continue
		}
		seen[ve.Field()] = true

		msg := customMessage(structure, ve.StructField())
		if msg == "" {
			msg = tagMessage(ve.Tag())
		}
		out = append(out, FieldError{Field: ve.Field(), Message: msg})
	}
	return out
}

// customMessage returns the `msg` tag of the named top-level field, if any.
func customMessage(structure any, field string) string {
	t := reflect.TypeOf(structure)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return ""
	}
	sf, ok := t.FieldByName(field)
	if !ok {
		return ""
	}
	return sf.Tag.Get("msg")
}

func tagMessage(tag string) string {
	switch tag {
	case "email":
		return ErrInvalidFormat
	case "required", "notblank":
		return ErrFieldRequired
	case "max":
		return ErrFieldExceedsMaxLen
	case "min":
		return ErrFieldBelowMinLen
	case "lt", "lte":
		return ErrFieldExceedsMaxVal
	case "gt", "gte":
		return ErrFieldBelowMinVal
	case "oneof":
		return "Value is not one of the allowed options"
	case "accepted":
		return "Field must be accepted"
	default:
		return ErrUnknownValidation
	}
}
