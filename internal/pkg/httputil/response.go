// Package httputil provides HTTP middleware and response helpers.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// JSON writes a raw JSON response without envelope.
// Use Success for {"data": ...} wrapped responses.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("failed to encode response", "error", err)
		}
	}
}

// Text writes a plain text response.
func Text(w http.ResponseWriter, statusCode int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	if _, err := w.Write([]byte(text)); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// Success writes a JSON response with {"data": ...} envelope.
func Success(w http.ResponseWriter, status int, data interface{}) {
	JSON(w, status, map[string]interface{}{"data": data})
}

// Error writes a JSON response with {"error": {"message": ...}} envelope.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]interface{}{
		"error": map[string]string{"message": message},
	})
}

// FieldDetail describes why one field failed validation.
type FieldDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError writes a 400 response listing the offending fields.
// It understands validator.ValidationErrors and *FieldError; any other error
// is reported as a details string.
func ValidationError(w http.ResponseWriter, err error) {
	var details interface{}

	var validationErrors validator.ValidationErrors
	var fieldErr *FieldError
	switch {
	case errors.As(err, &validationErrors):
		fields := make([]FieldDetail, 0, len(validationErrors))
		for _, e := range validationErrors {
			msg := e.Tag()
			if e.Param() != "" {
				msg += "=" + e.Param()
			}
			fields = append(fields, FieldDetail{Field: e.Field(), Message: msg})
		}
		details = fields
	case errors.As(err, &fieldErr):
		details = []FieldDetail{{Field: fieldErr.Field, Message: fieldErr.Message}}
	default:
		details = err.Error()
	}

	JSON(w, http.StatusBadRequest, map[string]interface{}{
		"error": map[string]interface{}{
			"message": "validation error",
			"details": details,
		},
	})
}
