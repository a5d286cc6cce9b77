package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/example/od-mailer/internal/application"
	"github.com/example/od-mailer/internal/roster"
)

const (
	defaultMaxBodyBytes = 4 << 20
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type odService interface {
	Compute(ctx context.Context, params application.ComputeParams) (application.ComputeResult, error)
	ComputeUpload(ctx context.Context, r io.Reader) (application.ComputeResult, error)
	Report(ctx context.Context, params application.ComputeParams, w io.Writer) (application.ComputeResult, error)
}

type ODHandler struct {
	service      odService
	responder    responder
	logger       *slog.Logger
	maxBodyBytes int64
}

func NewODHandler(service odService, maxBodyBytes int64, logger *slog.Logger) *ODHandler {
	base := defaultLogger(logger)
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	return &ODHandler{service: service, responder: newResponder(base), logger: base, maxBodyBytes: maxBodyBytes}
}

func (h *ODHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ODHandler", operation, attrs...)
}

func (h *ODHandler) decode(w http.ResponseWriter, r *http.Request, operation string) (application.ComputeParams, bool) {
	var req application.ComputeParams
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		h.log(r.Context(), operation, "error_kind", "bad_request").WarnContext(r.Context(), "failed to decode od request", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.responder.writeError(r.Context(), w, http.StatusRequestEntityTooLarge, nil)
			return req, false
		}
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return req, false
	}
	return req, true
}

func (h *ODHandler) Compute(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	req, ok := h.decode(w, r, "Compute")
	if !ok {
		return
	}

	logger := h.log(r.Context(), "Compute", "student_count", len(req.Students))
	result, err := h.service.Compute(r.Context(), req)
	if err != nil {
		logger.ErrorContext(r.Context(), "od computation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("run_id", result.RunID).InfoContext(r.Context(), "od request computed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, result)
}

func (h *ODHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	if err := r.ParseMultipartForm(h.maxBodyBytes); err != nil {
		h.log(r.Context(), "Upload", "error_kind", "bad_request").WarnContext(r.Context(), "failed to parse upload", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.responder.writeError(r.Context(), w, http.StatusRequestEntityTooLarge, errUploadTooLarge)
			return
		}
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingUpload)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errMissingUpload)
		return
	}
	defer file.Close()

	logger := h.log(r.Context(), "Upload", "filename", header.Filename, "size", header.Size)
	result, err := h.service.ComputeUpload(r.Context(), file)
	if err != nil {
		logger.ErrorContext(r.Context(), "od upload failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("run_id", result.RunID, "student_count", len(result.Students)).InfoContext(r.Context(), "od upload computed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, result)
}

func (h *ODHandler) Report(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	req, ok := h.decode(w, r, "Report")
	if !ok {
		return
	}

	logger := h.log(r.Context(), "Report", "student_count", len(req.Students))
	var buf bytes.Buffer
	result, err := h.service.Report(r.Context(), req, &buf)
	if err != nil {
		logger.ErrorContext(r.Context(), "od report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="od-report-`+result.RunID+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		logger.ErrorContext(r.Context(), "failed to stream report", "error", err)
		return
	}
	logger.With("run_id", result.RunID).InfoContext(r.Context(), "od report written")
}

func (h *ODHandler) Template(w http.ResponseWriter, r *http.Request) {
	if h == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := roster.WriteTemplate(&buf, roster.EventMetadata{}, roster.SampleStudents()); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="od-template.xlsx"`)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
