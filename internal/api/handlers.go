package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/iamNilotpal/epubpress/internal/core/domain"
	"github.com/iamNilotpal/epubpress/internal/core/services/compressor"
	"github.com/iamNilotpal/epubpress/pkg/errors"
)

// multipartOverhead is added to body limits for form boundaries and fields.
const multipartOverhead = 1 << 20

// Service is the part of the compressor the API calls into.
type Service interface {
	Submit(ctx context.Context, sub compressor.Submission) (*domain.Task, error)
	Poll(ctx context.Context, id string) (*domain.Task, error)
	Fetch(ctx context.Context, key string) (*domain.Artifact, []byte, error)
	Subscribe(ctx context.Context, id string) (*domain.Task, <-chan domain.ProgressEvent, func(), error)
	Batch(ctx context.Context, files []domain.BatchFile, level string) (*domain.BatchResult, error)
}

// Handler serves the compression API.
type Handler struct {
	svc  Service
	opts Options
	log  *zap.SugaredLogger
}

func NewHandler(svc Service, opts Options, log *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, opts: opts.withDefaults(), log: log.With("component", "api")}
}

type submitResponse struct {
	TaskID string       `json:"taskId"`
	Status string       `json:"status"`
	Level  domain.Level `json:"level"`
}

type statusResponse struct {
	*domain.Task
	DownloadURL string `json:"downloadUrl,omitempty"`
}

// Compress accepts one EPUB and starts compressing it in the background.
func (h *Handler) Compress(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes+multipartOverhead)

	if err := r.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil {
		h.respondError(w, r, formError(err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req := compressRequest{
		Level:  strings.ToLower(strings.TrimSpace(r.FormValue("level"))),
		TaskID: strings.TrimSpace(r.FormValue("taskId")),
	}
	if err := validateRequest(&req, compressCodes); err != nil {
		h.respondError(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, r, errors.NewValidationError(errors.CodeNoFile, "file", nil, nil))
		return
	}
	defer file.Close()

	data, err := readUpload(file, header, h.opts.MaxUploadBytes)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	task, err := h.svc.Submit(r.Context(), compressor.Submission{
		Data:     data,
		Filename: header.Filename,
		Level:    req.Level,
		TaskID:   req.TaskID,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	respondJSON(w, http.StatusAccepted, submitResponse{
		TaskID: task.ID,
		Status: string(task.Status),
		Level:  task.Level,
	})
}

// Status reports the state of a task.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	req := statusRequest{TaskID: r.URL.Query().Get("taskId")}
	if err := validateRequest(&req, statusCodes); err != nil {
		h.respondError(w, r, err)
		return
	}

	task, err := h.svc.Poll(r.Context(), req.TaskID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	res := statusResponse{Task: task}
	if task.Result != nil {
		res.DownloadURL = downloadURL(task.Result.Artifact)
	}
	respondJSON(w, http.StatusOK, res)
}

// Download streams a compressed book.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	req := downloadRequest{File: r.URL.Query().Get("file")}
	if err := validateRequest(&req, downloadCodes); err != nil {
		h.respondError(w, r, err)
		return
	}

	art, data, err := h.svc.Fetch(r.Context(), req.File)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/epub+zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Warnw("download interrupted", "file", req.File, "error", err)
	}
}

// BatchCompress compresses several books and waits for all of them.
func (h *Handler) BatchCompress(w http.ResponseWriter, r *http.Request) {
	limit := int64(h.opts.MaxBatchFiles)*h.opts.MaxBatchFileBytes + multipartOverhead
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		h.respondError(w, r, formError(err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	req := batchRequest{Level: strings.ToLower(strings.TrimSpace(r.FormValue("level")))}
	if err := validateRequest(&req, batchCodes); err != nil {
		h.respondError(w, r, err)
		return
	}

	headers := r.MultipartForm.File["files"]
	switch {
	case len(headers) == 0:
		h.respondError(w, r, errors.NewValidationError(errors.CodeNoFile, "files", 0, nil))
		return
	case len(headers) > h.opts.MaxBatchFiles:
		h.respondError(w, r, errors.NewValidationError(errors.CodeTooManyFiles, "files", len(headers), nil))
		return
	}

	files := make([]domain.BatchFile, 0, len(headers))
	for _, fh := range headers {
		data, err := readPart(fh, h.opts.MaxBatchFileBytes)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		files = append(files, domain.BatchFile{Name: fh.Filename, Data: data})
	}

	res, err := h.svc.Batch(r.Context(), files, req.Level)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) rateLimited(w http.ResponseWriter, r *http.Request) {
	h.respondError(w, r, errors.NewValidationError(errors.CodeRateLimited, "client", r.RemoteAddr, nil))
}

// readUpload reads at most limit bytes of an uploaded file. Larger files
// are rejected here; the pipeline checks the limit again.
func readUpload(file multipart.File, header *multipart.FileHeader, limit int64) ([]byte, error) {
	if header.Size > limit {
		return nil, errors.NewValidationError(errors.CodeFileTooLarge, "file", header.Size, nil)
	}

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("cannot read upload: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, errors.NewValidationError(errors.CodeFileTooLarge, "file", len(data), nil)
	}
	return data, nil
}

// readPart reads one batch file. Oversized files are truncated to one byte
// past the limit so the pipeline reports them as a per-file error.
func readPart(fh *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("cannot open part %q: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, fmt.Errorf("cannot read part %q: %w", fh.Filename, err)
	}
	return data, nil
}

// formError classifies multipart parsing failures.
func formError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return errors.NewValidationError(errors.CodeFileTooLarge, "file", tooLarge.Limit, nil)
	}
	return errors.NewValidationError(errors.CodeNoFile, "file", nil, err)
}

func downloadURL(key string) string {
	return "/api/download?file=" + key
}
