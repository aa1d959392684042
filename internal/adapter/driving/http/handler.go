package httphandler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/hitcounter/internal/domain/model"
)

// Greeting is the fixed body served on GET /.
const Greeting = "Hello from ES Modules + Lambda!"

// dbErrorMessage is the only detail a caller ever sees when /db fails.
const dbErrorMessage = "DB access error"

// HitRecorder records one hit and returns the new total.
type HitRecorder interface {
	Record(ctx context.Context) (model.Count, error)
}

// Handler is the HTTP driving adapter that serves the greeting and counter routes.
type Handler struct {
	recorder HitRecorder
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(recorder HitRecorder, logger *slog.Logger) *Handler {
	return &Handler{
		recorder: recorder,
		logger:   logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", h.Greet)
	mux.HandleFunc("GET /db", h.CountHits)
	mux.HandleFunc("GET /healthz", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Greet writes the fixed greeting. It reads nothing from the request.
func (h *Handler) Greet(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, Greeting)
}

// CountHits records a hit and returns the row count. Every failure is logged
// with its cause and answered with the same opaque 500.
func (h *Handler) CountHits(w http.ResponseWriter, r *http.Request) {
	count, err := h.recorder.Record(r.Context())
	if err != nil {
		h.logger.Error("failed to record hit", "error", err)
		writeText(w, http.StatusInternalServerError, dbErrorMessage)
		return
	}

	writeJSON(w, http.StatusOK, CountResponse{Count: count})
}

// Health returns 200 without touching the database.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}
