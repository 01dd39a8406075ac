// Package scheduling owns the schedule-generation job lifecycle: submission,
// background dispatch to the external optimizer, progress callbacks, and
// persistence of generated schedules.
package scheduling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/classgrid/classgrid/internal/cache"
	"github.com/classgrid/classgrid/internal/optimizer"
	"github.com/classgrid/classgrid/internal/store"
	"github.com/classgrid/classgrid/pkg/models"
	"github.com/google/uuid"
)

// ErrValidation marks a user-correctable submission problem. The wrapped
// message names the offending field.
var ErrValidation = errors.New("invalid schedule request")

const (
	stageStarting  = "Starting schedule generation..."
	stageCompleted = "Completed successfully!"

	jobCacheTTL = 30 * time.Minute
)

// Service orchestrates schedule-generation jobs.
type Service struct {
	store       store.Store
	cache       cache.Cache
	optimizer   optimizer.Client
	callbackURL string
}

// NewService creates a new scheduling Service. callbackURL is the full
// externally-reachable PATCH endpoint the optimizer reports progress to.
func NewService(st store.Store, ca cache.Cache, opt optimizer.Client, callbackURL string) *Service {
	return &Service{
		store:       st,
		cache:       ca,
		optimizer:   opt,
		callbackURL: callbackURL,
	}
}

// Submit validates the request, persists a pending job, and dispatches
// background execution. It returns the job immediately; the caller polls for
// completion and never blocks on the optimizer.
func (s *Service) Submit(ctx context.Context, collegeID uuid.UUID, req models.ScheduleRequest) (*models.Job, error) {
	if req.ScheduleName == "" {
		return nil, fmt.Errorf("%w: schedule_name is required", ErrValidation)
	}
	if len(req.Classes) == 0 {
		return nil, fmt.Errorf("%w: at least one class is required", ErrValidation)
	}
	if len(req.Rooms) == 0 {
		return nil, fmt.Errorf("%w: at least one room is required", ErrValidation)
	}

	snapshot, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("snapshotting request: %w", err)
	}

	now := time.Now().UTC()
	job := &models.Job{
		ID:            uuid.New(),
		CollegeID:     collegeID,
		Status:        models.JobStatusPending,
		Progress:      0,
		Stage:         "Queued",
		InputSnapshot: snapshot,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	_ = s.cache.SetJobProgress(ctx, job.ID, job.Status, 0, job.Stage, jobCacheTTL)

	go s.dispatch(job.ID, collegeID)

	return job, nil
}

// dispatch runs the optimizer call in a goroutine. It recovers from panics
// and always lands the job in a terminal state.
func (s *Service) dispatch(jobID uuid.UUID, collegeID uuid.UUID) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in dispatch", "error", r, "job_id", jobID)
			s.fail(ctx, jobID, fmt.Sprintf("panic: %v", r))
		}
	}()

	// Claim the job. A lost race here means another dispatcher (or a
	// reconciler re-dispatch) got there first; back off quietly.
	err := s.store.UpdateJobStatus(ctx, jobID, models.JobStatusRunning, store.WithStage(stageStarting))
	if errors.Is(err, store.ErrInvalidTransition) {
		slog.Info("job already claimed, skipping dispatch", "job_id", jobID)
		return
	}
	if err != nil {
		slog.Error("marking job running", "error", err, "job_id", jobID)
		return
	}
	_ = s.cache.SetJobProgress(ctx, jobID, models.JobStatusRunning, 0, stageStarting, jobCacheTTL)

	// Run from the stored snapshot, not the live request.
	job, err := s.store.GetJob(ctx, jobID, collegeID)
	if err != nil {
		s.fail(ctx, jobID, fmt.Sprintf("reading job snapshot: %v", err))
		return
	}

	var req models.ScheduleRequest
	if err := json.Unmarshal(job.InputSnapshot, &req); err != nil {
		s.fail(ctx, jobID, fmt.Sprintf("decoding input snapshot: %v", err))
		return
	}

	resp, err := s.optimizer.Generate(ctx, optimizer.GenerateRequest{
		JobID:       jobID.String(),
		CallbackURL: s.callbackURL,
		Sections:    optimizer.ToSections(req.Classes),
		Rooms:       optimizer.ToRooms(req.Rooms),
		Teachers:    req.Teachers,
		Config:      req.Config,
	})
	if err != nil {
		s.fail(ctx, jobID, err.Error())
		return
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "optimizer reported failure without a message"
		}
		s.fail(ctx, jobID, msg)
		return
	}

	result := optimizer.FromResult(resp, req.Classes, req.Rooms)
	resultSnapshot, err := json.Marshal(result)
	if err != nil {
		s.fail(ctx, jobID, fmt.Sprintf("encoding result: %v", err))
		return
	}

	err = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusCompleted,
		store.WithProgress(100),
		store.WithStage(stageCompleted),
		store.WithResultSnapshot(resultSnapshot))
	if err != nil {
		slog.Error("marking job completed", "error", err, "job_id", jobID)
		return
	}
	_ = s.cache.SetJobProgress(ctx, jobID, models.JobStatusCompleted, 100, stageCompleted, jobCacheTTL)

	if len(result.Allocations) > 0 {
		s.persistSchedule(ctx, job, req, result)
	}
}

// persistSchedule stores the generated schedule and links it onto the job.
// This is best-effort relative to job completion: a persistence failure is
// logged and the back-link skipped, never reverting the completed status.
func (s *Service) persistSchedule(ctx context.Context, job *models.Job, req models.ScheduleRequest, result *models.ScheduleResult) {
	now := time.Now().UTC()
	stats, _ := json.Marshal(map[string]any{
		"total_allocations": len(result.Allocations),
		"message":           result.Message,
	})

	schedule := &models.GeneratedSchedule{
		ID:                 uuid.New(),
		CollegeID:          job.CollegeID,
		JobID:              job.ID,
		Name:               req.ScheduleName,
		Semester:           req.Semester,
		AcademicYear:       req.AcademicYear,
		ScheduledClasses:   result.ScheduledClasses,
		UnscheduledClasses: result.UnscheduledClasses,
		Statistics:         stats,
		CreatedAt:          now,
	}

	allocations := make([]*models.RoomAllocation, 0, len(result.Allocations))
	for _, a := range result.Allocations {
		allocations = append(allocations, &models.RoomAllocation{
			ID:          uuid.New(),
			ScheduleID:  schedule.ID,
			CourseCode:  a.CourseCode,
			Section:     a.Section,
			CourseTitle: a.CourseTitle,
			TeacherName: a.TeacherName,
			RoomCode:    a.RoomCode,
			Building:    a.Building,
			Campus:      a.Campus,
			Day:         a.Day,
			TimeText:    a.TimeText,
			CreatedAt:   now,
		})
	}

	if err := s.store.CreateGeneratedSchedule(ctx, schedule, allocations); err != nil {
		slog.Error("persisting generated schedule", "error", err, "job_id", job.ID)
		return
	}
	if err := s.store.LinkGeneratedSchedule(ctx, job.ID, schedule.ID); err != nil {
		slog.Error("linking generated schedule", "error", err, "job_id", job.ID)
	}
}

func (s *Service) fail(ctx context.Context, jobID uuid.UUID, msg string) {
	err := s.store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed, store.WithErrorMessage(msg))
	if err != nil {
		slog.Error("marking job failed", "error", err, "job_id", jobID)
		return
	}
	_ = s.cache.SetJobProgress(ctx, jobID, models.JobStatusFailed, 0, "Failed", jobCacheTTL)
}

// ApplyProgress applies an optimizer progress callback. Callbacks against a
// terminal job are accepted as no-ops so duplicate or late deliveries do not
// error; the terminal record is returned unchanged.
func (s *Service) ApplyProgress(ctx context.Context, collegeID uuid.UUID, jobID uuid.UUID, progress int, stage string) (*models.Job, error) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	job, err := s.store.GetJob(ctx, jobID, collegeID)
	if err != nil {
		return nil, err
	}
	if job.Terminal() {
		return job, nil
	}

	applied, err := s.store.UpdateJobProgress(ctx, jobID, progress, stage)
	if err != nil {
		return nil, err
	}

	job, err = s.store.GetJob(ctx, jobID, collegeID)
	if err != nil {
		return nil, err
	}
	if applied {
		_ = s.cache.SetJobProgress(ctx, jobID, job.Status, job.Progress, job.Stage, jobCacheTTL)
	}
	return job, nil
}

// GetJob returns a single job by id.
func (s *Service) GetJob(ctx context.Context, collegeID uuid.UUID, jobID uuid.UUID) (*models.Job, error) {
	return s.store.GetJob(ctx, jobID, collegeID)
}

// ListJobs returns the most recent jobs, optionally filtered by status.
func (s *Service) ListJobs(ctx context.Context, filter store.JobFilter) ([]*models.Job, error) {
	return s.store.ListJobs(ctx, filter)
}

// ReclaimStalePending re-dispatches jobs that have sat in pending past the
// staleness threshold, covering a process restart between job creation and
// dispatch. The running-transition check makes re-dispatch at-most-once
// effective even if two sweeps overlap.
func (s *Service) ReclaimStalePending(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	jobs, err := s.store.ListStalePendingJobs(ctx, cutoff, 20)
	if err != nil {
		return 0, fmt.Errorf("listing stale pending jobs: %w", err)
	}

	for _, job := range jobs {
		slog.Warn("re-dispatching stale pending job", "job_id", job.ID, "created_at", job.CreatedAt)
		go s.dispatch(job.ID, job.CollegeID)
	}
	return len(jobs), nil
}

// RunReconciler sweeps for stale pending jobs until ctx is done.
func (s *Service) RunReconciler(ctx context.Context, interval, staleAfter time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.ReclaimStalePending(ctx, staleAfter); err != nil {
				slog.Error("reconciling stale jobs", "error", err)
			}
		}
	}
}
