package models

import (
	"time"

	"github.com/google/uuid"
)

// College represents an academic unit. Every other entity belongs to a college.
type College struct {
	ID        uuid.UUID `db:"id"         json:"id"`
	Name      string    `db:"name"       json:"name"`
	Code      string    `db:"code"       json:"code"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Faculty is a teaching staff member. Absences reference faculty by id; the
// display name is what room allocations record in their teacher field.
type Faculty struct {
	ID          uuid.UUID `db:"id"           json:"id"`
	CollegeID   uuid.UUID `db:"college_id"   json:"college_id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Email       string    `db:"email"        json:"email"`
	CreatedAt   time.Time `db:"created_at"   json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"   json:"updated_at"`
}
