package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/classgrid/classgrid/pkg/models"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")
var ErrInvalidTransition = errors.New("invalid job status transition")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error
	GetDefaultCollege(ctx context.Context) (*models.College, error)

	GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error)
	UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error
	CreateAPIKey(ctx context.Context, key *models.APIKey) error
	ListAPIKeys(ctx context.Context, collegeID uuid.UUID) ([]*models.APIKey, error)
	RevokeAPIKey(ctx context.Context, id uuid.UUID, collegeID uuid.UUID) error

	CreateFaculty(ctx context.Context, f *models.Faculty) error
	GetFaculty(ctx context.Context, id uuid.UUID) (*models.Faculty, error)

	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id uuid.UUID, collegeID uuid.UUID) (*models.Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error
	UpdateJobProgress(ctx context.Context, id uuid.UUID, progress int, stage string) (bool, error)
	LinkGeneratedSchedule(ctx context.Context, jobID uuid.UUID, scheduleID uuid.UUID) error
	ListStalePendingJobs(ctx context.Context, olderThan time.Time, limit int) ([]*models.Job, error)

	CreateGeneratedSchedule(ctx context.Context, schedule *models.GeneratedSchedule, allocations []*models.RoomAllocation) error
	GetGeneratedSchedule(ctx context.Context, id uuid.UUID, collegeID uuid.UUID) (*models.GeneratedSchedule, error)
	ListGeneratedSchedules(ctx context.Context, collegeID uuid.UUID, limit int) ([]*models.GeneratedSchedule, error)
	LatestGeneratedSchedule(ctx context.Context, collegeID uuid.UUID) (*models.GeneratedSchedule, error)
	ListAllocationsBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*models.RoomAllocation, error)
	GetRoomAllocation(ctx context.Context, id uuid.UUID) (*models.RoomAllocation, error)

	CreateAbsenceEvent(ctx context.Context, event *models.AbsenceEvent) error
	CreateAvailabilityOpenings(ctx context.Context, openings []*models.AvailabilityOpening) error
	ListAvailabilityOpenings(ctx context.Context, filter OpeningFilter) ([]*models.AvailabilityOpening, error)
}

// JobFilter narrows ListJobs. A zero Status matches all statuses.
type JobFilter struct {
	CollegeID uuid.UUID
	Status    string
	Limit     int
}

// OpeningFilter narrows ListAvailabilityOpenings.
type OpeningFilter struct {
	CollegeID uuid.UUID
	AbsenceID uuid.UUID
	DayOfWeek string
	RoomCode  string
	Limit     int
}

// JobUpdate collects the optional fields of a status update. Exposed so
// test doubles can apply options the same way PostgresStore does.
type JobUpdate struct {
	ErrorMessage   *string
	ResultSnapshot json.RawMessage
	Progress       *int
	Stage          *string
}

type JobUpdateOption func(*JobUpdate)

func WithErrorMessage(msg string) JobUpdateOption {
	return func(p *JobUpdate) {
		p.ErrorMessage = &msg
	}
}

func WithResultSnapshot(snapshot json.RawMessage) JobUpdateOption {
	return func(p *JobUpdate) {
		p.ResultSnapshot = snapshot
	}
}

func WithProgress(progress int) JobUpdateOption {
	return func(p *JobUpdate) {
		p.Progress = &progress
	}
}

func WithStage(stage string) JobUpdateOption {
	return func(p *JobUpdate) {
		p.Stage = &stage
	}
}
