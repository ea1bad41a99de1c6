package v1

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/kanban/internal/domain"
)

const taskNotFoundMessage = "Task not found"

var validate = newValidator()

var humaNewError = huma.NewError

func init() {
	huma.NewError = newError
}

// newError reports huma's schema failures (wrong JSON types, unknown
// properties) as 400 like every other client input error. The detail names
// the first failing field.
func newError(status int, msg string, errs ...error) huma.StatusError {
	if status != http.StatusUnprocessableEntity {
		return humaNewError(status, msg, errs...)
	}
	for _, err := range errs {
		var d huma.ErrorDetailer
		if !errors.As(err, &d) {
			continue
		}
		ed := d.ErrorDetail()
		if field := strings.TrimPrefix(ed.Location, "body."); field != "" && field != "body" {
			msg = field + ": " + ed.Message
		} else {
			msg = ed.Message
		}
		break
	}
	return humaNewError(http.StatusBadRequest, msg, errs...)
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

// validateBody returns a 400 naming the first field that failed validation.
func validateBody(body any) error {
	err := validate.Struct(body)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return huma.Error400BadRequest("invalid request body")
	}

	fe := verrs[0]
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", fe.Field())
	case "notblank":
		msg = fmt.Sprintf("%s must not be blank", fe.Field())
	case "oneof":
		msg = fmt.Sprintf("%s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid":
		msg = fmt.Sprintf("%s must be a valid UUID", fe.Field())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid", fe.Field())
	}

	return huma.Error400BadRequest(msg)
}

func parseTaskID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, huma.Error400BadRequest("id must be a valid UUID")
	}
	return id, nil
}

func parseStatusFilter(s string) (*domain.TaskStatus, error) {
	if s == "" {
		return nil, nil
	}
	status, err := domain.ParseTaskStatus(s)
	if err != nil {
		return nil, huma.Error400BadRequest("status must be one of " + statusList())
	}
	return &status, nil
}

func statusList() string {
	names := make([]string, len(domain.TaskStatuses))
	for i, s := range domain.TaskStatuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

// toHTTPError maps service errors onto API responses. Transition refusals
// keep their message verbatim; store failures are logged and hidden.
func toHTTPError(op string, err error) error {
	var te *domain.TransitionError
	switch {
	case errors.As(err, &te):
		if te.Kind == domain.TransitionNotFound {
			return huma.Error404NotFound(te.Message)
		}
		return huma.Error400BadRequest(te.Message)
	case errors.Is(err, domain.ErrNotFound):
		return huma.Error404NotFound(taskNotFoundMessage)
	case errors.Is(err, domain.ErrInvalidInput):
		return huma.Error400BadRequest(invalidInputMessage(err))
	case errors.Is(err, domain.ErrConflict):
		return huma.Error409Conflict("task already exists")
	}

	log.Error().Err(err).Str("operation", op).Msg("task operation failed")
	return huma.Error500InternalServerError("internal server error")
}

func invalidInputMessage(err error) string {
	if _, msg, ok := strings.Cut(err.Error(), domain.ErrInvalidInput.Error()+": "); ok {
		return msg
	}
	return "invalid input"
}
