package handler

import (
	"context"
	"errors"
	"net/http"

	mw "github.com/classgrid/classgrid/internal/api/middleware"
	"github.com/classgrid/classgrid/internal/api/response"
	"github.com/classgrid/classgrid/internal/store"
	"github.com/classgrid/classgrid/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const (
	defaultScheduleListLimit = 20
	maxScheduleListLimit     = 100

	defaultOpeningListLimit = 50
	maxOpeningListLimit     = 500
)

// ScheduleReader defines the read operations the schedule handlers depend on.
type ScheduleReader interface {
	ListGeneratedSchedules(ctx context.Context, collegeID uuid.UUID, limit int) ([]*models.GeneratedSchedule, error)
	GetGeneratedSchedule(ctx context.Context, id uuid.UUID, collegeID uuid.UUID) (*models.GeneratedSchedule, error)
	ListAllocationsBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*models.RoomAllocation, error)
	ListAvailabilityOpenings(ctx context.Context, filter store.OpeningFilter) ([]*models.AvailabilityOpening, error)
}

// NewListSchedulesHandler returns an http.HandlerFunc for GET /api/v1/schedules.
func NewListSchedulesHandler(st ScheduleReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collegeID, ok := mw.GetCollegeID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing college", nil)
			return
		}

		limit := parseLimit(r, defaultScheduleListLimit, maxScheduleListLimit)

		schedules, err := st.ListGeneratedSchedules(r.Context(), collegeID, limit)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list schedules", nil)
			return
		}
		response.JSON(w, schedules)
	}
}

// NewGetScheduleHandler returns an http.HandlerFunc for
// GET /api/v1/schedules/{scheduleID}. The response carries the schedule
// header plus its full allocation list.
func NewGetScheduleHandler(st ScheduleReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collegeID, ok := mw.GetCollegeID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing college", nil)
			return
		}

		scheduleID, err := uuid.Parse(chi.URLParam(r, "scheduleID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"scheduleID must be a valid UUID", nil)
			return
		}

		schedule, err := st.GetGeneratedSchedule(r.Context(), scheduleID, collegeID)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Schedule not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to fetch schedule", nil)
			return
		}

		allocations, err := st.ListAllocationsBySchedule(r.Context(), schedule.ID)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to fetch schedule allocations", nil)
			return
		}

		response.JSON(w, struct {
			Schedule    *models.GeneratedSchedule `json:"schedule"`
			Allocations []*models.RoomAllocation  `json:"allocations"`
		}{
			Schedule:    schedule,
			Allocations: allocations,
		})
	}
}

// NewListOpeningsHandler returns an http.HandlerFunc for GET /api/v1/openings.
func NewListOpeningsHandler(st ScheduleReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collegeID, ok := mw.GetCollegeID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing college", nil)
			return
		}

		q := r.URL.Query()
		filter := store.OpeningFilter{
			CollegeID: collegeID,
			DayOfWeek: q.Get("day"),
			RoomCode:  q.Get("room"),
			Limit:     parseLimit(r, defaultOpeningListLimit, maxOpeningListLimit),
		}
		if raw := q.Get("absence_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"absence_id must be a valid UUID", nil)
				return
			}
			filter.AbsenceID = id
		}

		openings, err := st.ListAvailabilityOpenings(r.Context(), filter)
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to list availability openings", nil)
			return
		}
		response.JSON(w, openings)
	}
}
