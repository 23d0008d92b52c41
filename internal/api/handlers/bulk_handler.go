package handlers

import (
	"encoding/json"
	goerrors "errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"

	apiContext "qrgen/internal/api/context"
	"qrgen/internal/engine/bulk"
	"qrgen/internal/pkg/errors"
	"qrgen/internal/platform/audit"
	"qrgen/internal/platform/auth"
)

type BulkHandler struct {
	jobs      *bulk.Repository
	audit     *audit.Logger
	uploadDir string
}

func NewBulkHandler(jobs *bulk.Repository, auditLogger *audit.Logger, uploadDir string) *BulkHandler {
	return &BulkHandler{
		jobs:      jobs,
		audit:     auditLogger,
		uploadDir: uploadDir,
	}
}

// CreateJob accepts a multipart CSV upload and enqueues a pending job. The
// worker picks it up on its next poll.
func (h *BulkHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	if err := r.ParseMultipartForm(20 << 20); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid multipart body", nil)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Missing file field", nil)
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Upload must be a .csv file", nil)
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Storage error", nil)
		return
	}

	jobID := "bulk_" + uuid.NewString()
	filePath := filepath.Join(h.uploadDir, jobID+".csv")

	dst, err := os.Create(filePath)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Storage error", nil)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Storage error", nil)
		return
	}

	job := &bulk.Job{
		ID:        jobID,
		UserID:    claims.UserID,
		Status:    bulk.StatusPending,
		FilePath:  filePath,
		CreatedAt: time.Now().Unix(),
	}
	if err := h.jobs.Create(job); err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}

	h.audit.Log(r.Context(), "bulk.create", "bulk_job", job.ID, r.RemoteAddr, map[string]interface{}{"filename": header.Filename})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(job)
}

func (h *BulkHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)

	limit, offset := pagination(r)
	jobs, err := h.jobs.ListByUser(claims.UserID, limit, offset)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		return
	}
	if jobs == nil {
		jobs = []*bulk.Job{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

func (h *BulkHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, ok := h.ownedJob(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

// GetResult streams the completed job's zip archive.
func (h *BulkHandler) GetResult(w http.ResponseWriter, r *http.Request) {
	job, ok := h.ownedJob(w, r)
	if !ok {
		return
	}

	if job.Status == bulk.StatusFailed {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeJobFailed, job.ErrorMessage, nil)
		return
	}
	if job.Status != bulk.StatusCompleted || job.ResultPath == "" {
		errors.WriteError(w, http.StatusConflict, errors.ErrCodeConflict, "Job has not completed yet", nil)
		return
	}

	f, err := os.Open(job.ResultPath)
	if err != nil {
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Result archive unavailable", nil)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", job.ID+".zip"))
	io.Copy(w, f)
}

func (h *BulkHandler) ownedJob(w http.ResponseWriter, r *http.Request) (*bulk.Job, bool) {
	claims := r.Context().Value(apiContext.Claims).(*auth.Claims)
	params := r.Context().Value(apiContext.Params).(httprouter.Params)
	jobID := params.ByName("job_id")

	job, err := h.jobs.GetByID(jobID)
	if err != nil {
		if goerrors.Is(err, bulk.ErrNotFound) {
			errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Job not found", nil)
		} else {
			errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Database error", nil)
		}
		return nil, false
	}
	if job.UserID != claims.UserID {
		errors.WriteError(w, http.StatusNotFound, errors.ErrCodeNotFound, "Job not found", nil)
		return nil, false
	}
	return job, true
}
