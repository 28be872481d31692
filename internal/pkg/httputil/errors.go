package httputil

import (
	"context"
	"errors"
	"net/http"

	"github.com/bissquit/incident-tracker/internal/pkg/ctxlog"
)

// ErrorMapping maps a sentinel error to an HTTP status.
type ErrorMapping struct {
	Error   error
	Status  int
	Message string // if empty, err.Error() is used
}

// FieldError is a validation failure attached to one request field.
// Declare them as package-level sentinels and compare with errors.Is.
type FieldError struct {
	Field   string
	Message string
}

// NewFieldError creates a FieldError.
func NewFieldError(field, message string) *FieldError {
	return &FieldError{Field: field, Message: message}
}

func (e *FieldError) Error() string {
	return e.Message
}

// HandleError writes the response for err. Field errors become 400 validation
// errors; other errors go through mappings. Anything unmatched is logged and
// answered with 500 Internal Server Error.
func HandleError(ctx context.Context, w http.ResponseWriter, err error, mappings []ErrorMapping) {
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		ValidationError(w, err)
		return
	}

	for _, m := range mappings {
		if errors.Is(err, m.Error) {
			msg := m.Message
			if msg == "" {
				msg = err.Error()
			}
			Error(w, m.Status, msg)
			return
		}
	}
	ctxlog.FromContext(ctx).Error("internal error", "error", err)
	Error(w, http.StatusInternalServerError, "internal error")
}
