package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	mw "github.com/classgrid/classgrid/internal/api/middleware"
	"github.com/classgrid/classgrid/internal/api/response"
	"github.com/classgrid/classgrid/internal/availability"
	"github.com/classgrid/classgrid/pkg/models"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

// AbsenceRecorder defines the availability operation the absence handler
// depends on.
type AbsenceRecorder interface {
	RecordAbsence(ctx context.Context, params availability.RecordAbsenceParams) (*models.AbsenceEvent, int, error)
}

// NewRecordAbsenceHandler returns an http.HandlerFunc for POST /api/v1/absences.
func NewRecordAbsenceHandler(svc AbsenceRecorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collegeID, ok := mw.GetCollegeID(r)
		if !ok {
			response.Error(w, http.StatusUnauthorized, "INVALID_TOKEN", "Missing college", nil)
			return
		}

		var req struct {
			FacultyID        string `json:"faculty_id"`
			Scope            string `json:"scope"`
			RoomAllocationID string `json:"room_allocation_id"`
			CourseCode       string `json:"course_code"`
			Section          string `json:"section"`
			DayOfWeek        string `json:"day_of_week"`
			StartTime        string `json:"start_time"`
			EndTime          string `json:"end_time"`
			StartDate        string `json:"start_date"`
			EndDate          string `json:"end_date"`
			Reason           string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", nil)
			return
		}

		if req.FacultyID == "" {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "faculty_id is required", nil)
			return
		}
		facultyID, err := uuid.Parse(req.FacultyID)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "faculty_id must be a valid UUID", nil)
			return
		}

		var allocationID *uuid.UUID
		if req.RoomAllocationID != "" {
			id, err := uuid.Parse(req.RoomAllocationID)
			if err != nil {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"room_allocation_id must be a valid UUID", nil)
				return
			}
			allocationID = &id
		}

		startDate, err := parseDate(req.StartDate)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"start_date must be a YYYY-MM-DD date", nil)
			return
		}
		endDate, err := parseDate(req.EndDate)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"end_date must be a YYYY-MM-DD date", nil)
			return
		}

		event, openings, err := svc.RecordAbsence(r.Context(), availability.RecordAbsenceParams{
			CollegeID:        collegeID,
			FacultyID:        facultyID,
			Scope:            req.Scope,
			RoomAllocationID: allocationID,
			CourseCode:       req.CourseCode,
			Section:          req.Section,
			DayOfWeek:        req.DayOfWeek,
			StartTime:        req.StartTime,
			EndTime:          req.EndTime,
			StartDate:        startDate,
			EndDate:          endDate,
			Reason:           req.Reason,
		})
		if err != nil {
			if errors.Is(err, availability.ErrValidation) {
				response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
				return
			}
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to record absence", nil)
			return
		}

		response.Created(w, struct {
			Absence         *models.AbsenceEvent `json:"absence"`
			OpeningsCreated int                  `json:"openings_created"`
		}{
			Absence:         event,
			OpeningsCreated: openings,
		})
	}
}

func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
