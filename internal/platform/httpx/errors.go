package httpx

import (
	"context"
	"errors"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// ErrValidation marks request parameter problems.
var ErrValidation = errors.New("validation failed")

// ValidationError names the offending request parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Reason == "" {
		return "parâmetro inválido: " + e.Field
	}
	return e.Reason
}

// Unwrap ties every ValidationError to ErrValidation.
func (e ValidationError) Unwrap() error { return ErrValidation }

// Diagnostic is implemented by upstream errors that carry provider detail.
type Diagnostic interface {
	Diagnostic() string
}

// Detail extracts upstream diagnostic text from err, if any.
func Detail(err error) string {
	var d Diagnostic
	if errors.As(err, &d) {
		return d.Diagnostic()
	}
	return ""
}

// RespondError writes validation failures as 400 and everything else as an
// opaque 500 carrying whatever upstream detail is available.
func RespondError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, ErrValidation) {
		Error(w, http.StatusBadRequest, err.Error(), "")
		return
	}
	if message == "" {
		message = http.StatusText(http.StatusInternalServerError)
	}
	Error(w, http.StatusInternalServerError, message, Detail(err))
}

// RequestID returns the chi request id for ctx, or a fresh UUID when the
// request did not pass through the RequestID middleware.
func RequestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
