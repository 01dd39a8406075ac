package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	mw "github.com/classgrid/classgrid/internal/api/middleware"
	"github.com/classgrid/classgrid/internal/api/response"
	"github.com/classgrid/classgrid/internal/scheduling"
	"github.com/classgrid/classgrid/internal/store"
	"github.com/classgrid/classgrid/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	defaultJobListLimit = 10
	maxJobListLimit     = 100
)

// JobService defines the scheduling operations the job handlers depend on.
type JobService interface {
	Submit(ctx context.Context, collegeID uuid.UUID, req models.ScheduleRequest) (*models.Job, error)
	GetJob(ctx context.Context, collegeID uuid.UUID, jobID uuid.UUID) (*models.Job, error)
	ListJobs(ctx context.Context, filter store.JobFilter) ([]*models.Job, error)
	ApplyProgress(ctx context.Context, collegeID uuid.UUID, jobID uuid.UUID, progress int, stage string) (*models.Job, error)
}

type jobView struct {
	JobID        string          `json:"job_id"`
	Status       string          `json:"status"`
	Progress     int             `json:"progress"`
	Stage        string          `json:"stage"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	ScheduleID   *uuid.UUID      `json:"schedule_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}

// parseLimit reads the limit query param, clamped to [1, max].
func parseLimit(r *http.Request, def, max int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func toJobView(job *models.Job) jobView {
	return jobView{
		JobID:        job.ID.String(),
		Status:       job.Status,
		Progress:     job.Progress,
		Stage:        job.Stage,
		Result:       job.ResultSnapshot,
		ErrorMessage: job.ErrorMessage,
		ScheduleID:   job.GeneratedScheduleID,
		CreatedAt:    job.CreatedAt,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
	}
}

// NewSubmitJobHandler returns an http.HandlerFunc for POST /api/v1/jobs.
func NewSubmitJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collegeID, ok := mw.GetCollegeID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing college", nil)
			return
		}

		var req models.ScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		job, err := svc.Submit(r.Context(), collegeID, req)
		if err != nil {
			if errors.Is(err, scheduling.ErrValidation) {
				response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to create schedule generation job", nil)
			return
		}

		response.Accepted(w, struct {
			Success bool   `json:"success"`
			JobID   string `json:"job_id"`
			Status  string `json:"status"`
			Message string `json:"message"`
		}{
			Success: true,
			JobID:   job.ID.String(),
			Status:  job.Status,
			Message: "Schedule generation started. Poll the job for progress.",
		})
	}
}

// NewGetJobHandler returns an http.HandlerFunc for GET /api/v1/jobs/{jobID}.
func NewGetJobHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collegeID, ok := mw.GetCollegeID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing college", nil)
			return
		}

		jobID, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "jobID must be a valid UUID", nil)
			return
		}

		job, err := svc.GetJob(r.Context(), collegeID, jobID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to fetch job", nil)
			return
		}

		response.JSON(w, toJobView(job))
	}
}

// NewListJobsHandler returns an http.HandlerFunc for GET /api/v1/jobs. The
// front end polls this endpoint with an id query param, which answers with
// the single job (404 when unknown); without id it lists the college's jobs.
func NewListJobsHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collegeID, ok := mw.GetCollegeID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing college", nil)
			return
		}

		if raw := r.URL.Query().Get("id"); raw != "" {
			jobID, err := uuid.Parse(raw)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "id must be a valid UUID", nil)
				return
			}
			job, err := svc.GetJob(r.Context(), collegeID, jobID)
			if errors.Is(err, store.ErrNotFound) {
				response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
				return
			}
			if err != nil {
				response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
					"Failed to fetch job", nil)
				return
			}
			response.JSON(w, toJobView(job))
			return
		}

		status := r.URL.Query().Get("status")
		switch status {
		case "", models.JobStatusPending, models.JobStatusRunning,
			models.JobStatusCompleted, models.JobStatusFailed:
		default:
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"status must be one of pending, running, completed, failed", nil)
			return
		}

		limit := parseLimit(r, defaultJobListLimit, maxJobListLimit)

		jobs, err := svc.ListJobs(r.Context(), store.JobFilter{
			CollegeID: collegeID,
			Status:    status,
			Limit:     limit,
		})
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list jobs", nil)
			return
		}

		views := make([]jobView, 0, len(jobs))
		for _, job := range jobs {
			views = append(views, toJobView(job))
		}
		response.JSON(w, views)
	}
}

// NewJobProgressHandler returns an http.HandlerFunc for PATCH /api/v1/jobs,
// the callback the optimizer reports progress to. Updates against a job
// already in a terminal state are acknowledged without changing the record.
func NewJobProgressHandler(svc JobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collegeID, ok := mw.GetCollegeID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing college", nil)
			return
		}

		var req struct {
			JobID    string `json:"job_id"`
			Progress int    `json:"progress"`
			Stage    string `json:"stage"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.JobID == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "job_id is required", nil)
			return
		}
		jobID, err := uuid.Parse(req.JobID)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "job_id must be a valid UUID", nil)
			return
		}

		job, err := svc.ApplyProgress(r.Context(), collegeID, jobID, req.Progress, req.Stage)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to update job progress", nil)
			return
		}

		response.JSON(w, struct {
			JobID    string `json:"job_id"`
			Status   string `json:"status"`
			Progress int    `json:"progress"`
			Stage    string `json:"stage"`
		}{
			JobID:    job.ID.String(),
			Status:   job.Status,
			Progress: job.Progress,
			Stage:    job.Stage,
		})
	}
}
