package models

import (
	"time"

	"github.com/google/uuid"
)

// Absence scopes. The scope decides which room allocations an absence
// affects when availability openings are derived from it.
const (
	AbsenceScopeClass = "class"
	AbsenceScopeDay   = "day"
	AbsenceScopeWeek  = "week"
	AbsenceScopeRange = "range"
)

// AbsenceEvent is a faculty-reported non-attendance. It is an audit record:
// written once when reported, never mutated. Optional fields narrow which
// allocations the absence matches; anything left empty is not filtered on.
type AbsenceEvent struct {
	ID               uuid.UUID  `db:"id"                 json:"id"`
	CollegeID        uuid.UUID  `db:"college_id"         json:"college_id"`
	FacultyID        uuid.UUID  `db:"faculty_id"         json:"faculty_id"`
	Scope            string     `db:"scope"              json:"scope"`
	RoomAllocationID *uuid.UUID `db:"room_allocation_id" json:"room_allocation_id,omitempty"`
	CourseCode       string     `db:"course_code"        json:"course_code,omitempty"`
	Section          string     `db:"section"            json:"section,omitempty"`
	DayOfWeek        string     `db:"day_of_week"        json:"day_of_week,omitempty"`
	StartTime        string     `db:"start_time"         json:"start_time,omitempty"`
	EndTime          string     `db:"end_time"           json:"end_time,omitempty"`
	StartDate        *time.Time `db:"start_date"         json:"start_date,omitempty"`
	EndDate          *time.Time `db:"end_date"           json:"end_date,omitempty"`
	Reason           string     `db:"reason"             json:"reason"`
	CreatedAt        time.Time  `db:"created_at"         json:"created_at"`
}

// AvailabilityOpening states that a room is free on a weekday and time window
// because of an absence. Openings are derived rows, written in bulk and never
// updated in place; superseding openings are new rows.
type AvailabilityOpening struct {
	ID             uuid.UUID `db:"id"              json:"id"`
	CollegeID      uuid.UUID `db:"college_id"      json:"college_id"`
	AbsenceID      uuid.UUID `db:"absence_id"      json:"absence_id"`
	RoomCode       string    `db:"room_code"       json:"room_code"`
	Building       string    `db:"building"        json:"building"`
	Campus         string    `db:"campus"          json:"campus"`
	DayOfWeek      string    `db:"day_of_week"     json:"day_of_week"`
	StartTime      string    `db:"start_time"      json:"start_time"`
	EndTime        string    `db:"end_time"        json:"end_time"`
	IsAvailable    bool      `db:"is_available"    json:"is_available"`
	BookingPurpose string    `db:"booking_purpose" json:"booking_purpose"`
	BookedBy       string    `db:"booked_by"       json:"booked_by"`
	CreatedAt      time.Time `db:"created_at"      json:"created_at"`
}
