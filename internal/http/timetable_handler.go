package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/od-mailer/internal/application"
)

type timetableService interface {
	Timetable(ctx context.Context) (application.TimetableView, error)
}

type TimetableHandler struct {
	service   timetableService
	responder responder
	logger    *slog.Logger
}

func NewTimetableHandler(service timetableService, logger *slog.Logger) *TimetableHandler {
	base := defaultLogger(logger)
	return &TimetableHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *TimetableHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := handlerLogger(r.Context(), h.logger, "TimetableHandler", "Get")
	view, err := h.service.Timetable(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "timetable unavailable", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	etag := `"` + view.Fingerprint + `"`
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Timetable-Degraded", strconv.FormatBool(view.Degraded))
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		h.responder.writeJSON(r.Context(), w, http.StatusNotModified, nil)
		return
	}

	logger.DebugContext(r.Context(), "timetable served", "fingerprint", view.Fingerprint, "programs", view.Stats.Programs)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, view.Timetable)
}

func etagMatches(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

func Health(w http.ResponseWriter, r *http.Request) {
	newResponder(nil).writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}
