package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// GeneratedSchedule is a persisted, named snapshot of a successful
// optimization result. Created once at job completion when the optimizer
// reported at least one allocation; immutable afterwards.
type GeneratedSchedule struct {
	ID                 uuid.UUID       `db:"id"                  json:"id"`
	CollegeID          uuid.UUID       `db:"college_id"          json:"college_id"`
	JobID              uuid.UUID       `db:"job_id"              json:"job_id"`
	Name               string          `db:"name"                json:"name"`
	Semester           string          `db:"semester"            json:"semester"`
	AcademicYear       string          `db:"academic_year"       json:"academic_year"`
	ScheduledClasses   int             `db:"scheduled_classes"   json:"scheduled_classes"`
	UnscheduledClasses int             `db:"unscheduled_classes" json:"unscheduled_classes"`
	Statistics         json.RawMessage `db:"statistics"          json:"statistics,omitempty"`
	CreatedAt          time.Time       `db:"created_at"          json:"created_at"`
}

// RoomAllocation is a scheduled occupancy of one room by one class-section.
// Day holds the raw day pattern ("MWF", "T/TH"); TimeText holds the raw
// "start-end" range. Both are normalized lazily by the availability code and
// never rewritten in place.
type RoomAllocation struct {
	ID          uuid.UUID `db:"id"           json:"id"`
	ScheduleID  uuid.UUID `db:"schedule_id"  json:"schedule_id"`
	CourseCode  string    `db:"course_code"  json:"course_code"`
	Section     string    `db:"section"      json:"section"`
	CourseTitle string    `db:"course_title" json:"course_title"`
	TeacherName string    `db:"teacher_name" json:"teacher_name"`
	RoomCode    string    `db:"room_code"    json:"room_code"`
	Building    string    `db:"building"     json:"building"`
	Campus      string    `db:"campus"       json:"campus"`
	Day         string    `db:"day"          json:"day"`
	TimeText    string    `db:"time_text"    json:"time"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
}

// ScheduleResult is the caller-facing shape of a finished optimization run,
// reconstructed from the optimizer response by the translator. It is stored
// on the job as the result snapshot.
type ScheduleResult struct {
	Allocations        []AllocationResult `json:"allocations"`
	ScheduledClasses   int                `json:"scheduled_classes"`
	UnscheduledClasses int                `json:"unscheduled_classes"`
	Message            string             `json:"message,omitempty"`
}

// AllocationResult is one row of a schedule result. Fields that could not be
// joined back to their originating class or room hold the "N/A" sentinel.
type AllocationResult struct {
	CourseCode  string `json:"course_code"`
	Section     string `json:"section"`
	CourseTitle string `json:"course_title"`
	TeacherName string `json:"teacher_name"`
	RoomCode    string `json:"room_code"`
	Building    string `json:"building"`
	Campus      string `json:"campus"`
	Day         string `json:"day"`
	TimeText    string `json:"time"`
}
