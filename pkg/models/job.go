// Package models contains shared data models used across the ClassGrid codebase.
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job tracks an async schedule-generation run. The API returns a job_id on
// POST /api/v1/jobs; the client polls GET /api/v1/jobs?id= until status is
// completed or failed. ResultSnapshot and ErrorMessage are mutually exclusive
// and both imply the job is terminal.
type Job struct {
	ID                  uuid.UUID       `db:"id"                    json:"id"`
	CollegeID           uuid.UUID       `db:"college_id"            json:"college_id"`
	Status              string          `db:"status"                json:"status"`
	Progress            int             `db:"progress"              json:"progress"`
	Stage               string          `db:"stage"                 json:"stage"`
	InputSnapshot       json.RawMessage `db:"input_snapshot"        json:"input_snapshot,omitempty"`
	ResultSnapshot      json.RawMessage `db:"result_snapshot"       json:"result_snapshot,omitempty"`
	ErrorMessage        *string         `db:"error_message"         json:"error_message,omitempty"`
	GeneratedScheduleID *uuid.UUID      `db:"generated_schedule_id" json:"generated_schedule_id,omitempty"`
	StartedAt           *time.Time      `db:"started_at"            json:"started_at,omitempty"`
	CompletedAt         *time.Time      `db:"completed_at"          json:"completed_at,omitempty"`
	CreatedAt           time.Time       `db:"created_at"            json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at"            json:"updated_at"`
}

// Terminal reports whether the job has reached a final state. Terminal jobs
// never change again; late progress callbacks against them are no-ops.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
