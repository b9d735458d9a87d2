package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "github.com/zygimantas124/pension-fund-lt/internal/errors"
	"github.com/zygimantas124/pension-fund-lt/internal/infrastructure"
)

// customValidations are the tags added on top of the validator built-ins.
var customValidations = map[string]validator.Func{
	"printable": isPrintable,
}

// QueryValidator validates query-string structs tagged with `query` and `validate`.
type QueryValidator struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewQueryValidator creates a validator that names fields by their query tag.
func NewQueryValidator(logger *slog.Logger) *QueryValidator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	if err := registerValidations(v, customValidations); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &QueryValidator{
		validator: v,
		logger:    infrastructure.WithComponent(logger, "query_validator"),
	}
}

func registerValidations(v *validator.Validate, funcs map[string]validator.Func) error {
	for tag, fn := range funcs {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %q validation: %w", tag, err)
		}
	}
	return nil
}

// Bind fills dst's string fields from r's query string by their query tag and
// validates the result. Only string fields are supported.
func (qv *QueryValidator) Bind(r *http.Request, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a struct pointer, got %T", dst)
	}

	values := r.URL.Query()
	elem := rv.Elem()
	for i := 0; i < elem.NumField(); i++ {
		field := elem.Type().Field(i)
		name := strings.SplitN(field.Tag.Get("query"), ",", 2)[0]
		if name == "" || name == "-" || field.Type.Kind() != reflect.String {
			continue
		}
		elem.Field(i).SetString(strings.TrimSpace(values.Get(name)))
	}

	if err := qv.ValidateStruct(dst); err != nil {
		qv.logger.DebugContext(r.Context(), "query validation failed",
			slog.String("path", r.URL.Path),
			slog.String("query", r.URL.RawQuery),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}

// ValidateStruct validates a struct and returns validation errors
func (qv *QueryValidator) ValidateStruct(v interface{}) error {
	err := qv.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apierrors.InvalidRequestWithError(err)
	}

	validationErrors := make([]apierrors.ValidationError, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		validationErrors = append(validationErrors, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(validationErrors)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, param)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, param)
	case "alpha":
		return fmt.Sprintf("%s must contain letters only", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "printable":
		return fmt.Sprintf("%s must not contain control characters", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isPrintable rejects control characters in free-text parameters.
func isPrintable(fl validator.FieldLevel) bool {
	for _, ch := range fl.Field().String() {
		if ch < 0x20 || ch == 0x7f {
			return false
		}
	}
	return true
}
