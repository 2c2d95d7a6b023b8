package errors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ErrorHandler centralizes error-to-response mapping so handlers stay
// declarative about failures.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates an ErrorHandler.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger.With(slog.String("component", "error_handler"))}
}

// HandleError writes err as a structured response. Non-APIError values
// are masked behind a generic 500; the detail stays in the log.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		h.logger.ErrorContext(r.Context(), "unhandled error",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("path", r.URL.Path))
		apiErr = ErrInternalServer
	}

	if apiErr.StatusCode >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed",
			slog.Int("status", apiErr.StatusCode),
			slog.String("error_code", apiErr.ErrorCode),
			slog.String("request_id", middleware.GetReqID(r.Context())))
	}

	if renderErr := render.Render(w, r, NewErrorResponse(apiErr)); renderErr != nil {
		http.Error(w, apiErr.Message, apiErr.StatusCode)
	}
}
