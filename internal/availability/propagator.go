// Package availability turns recorded faculty absences into room-availability
// openings by matching them against the live schedule's room allocations.
package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/classgrid/classgrid/internal/store"
	"github.com/classgrid/classgrid/pkg/models"
	"github.com/classgrid/classgrid/pkg/timeparse"
	"github.com/google/uuid"
)

// ErrValidation marks a user-correctable absence submission problem.
var ErrValidation = errors.New("invalid absence request")

const bookingPurpose = "Faculty absence"

var knownScopes = map[string]bool{
	models.AbsenceScopeClass: true,
	models.AbsenceScopeDay:   true,
	models.AbsenceScopeWeek:  true,
	models.AbsenceScopeRange: true,
}

// Service records absences and propagates them into availability openings.
type Service struct {
	store store.Store
}

// NewService creates a new availability Service.
func NewService(st store.Store) *Service {
	return &Service{store: st}
}

// RecordAbsenceParams is the validated input for RecordAbsence.
type RecordAbsenceParams struct {
	CollegeID        uuid.UUID
	FacultyID        uuid.UUID
	Scope            string
	RoomAllocationID *uuid.UUID
	CourseCode       string
	Section          string
	DayOfWeek        string
	StartTime        string
	EndTime          string
	StartDate        *time.Time
	EndDate          *time.Time
	Reason           string
}

// RecordAbsence persists the absence event and derives availability openings
// from the allocations it affects. The absence row is committed before
// propagation; a propagation failure surfaces to the caller without rolling
// the absence back. Returns the stored event and the number of openings.
func (s *Service) RecordAbsence(ctx context.Context, params RecordAbsenceParams) (*models.AbsenceEvent, int, error) {
	if params.FacultyID == uuid.Nil {
		return nil, 0, fmt.Errorf("%w: faculty_id is required", ErrValidation)
	}
	if !knownScopes[params.Scope] {
		return nil, 0, fmt.Errorf("%w: scope must be one of class, day, week, range", ErrValidation)
	}

	faculty, err := s.store.GetFaculty(ctx, params.FacultyID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, 0, fmt.Errorf("%w: unknown faculty_id", ErrValidation)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("resolving faculty: %w", err)
	}

	event := &models.AbsenceEvent{
		ID:               uuid.New(),
		CollegeID:        params.CollegeID,
		FacultyID:        params.FacultyID,
		Scope:            params.Scope,
		RoomAllocationID: params.RoomAllocationID,
		CourseCode:       params.CourseCode,
		Section:          params.Section,
		DayOfWeek:        params.DayOfWeek,
		StartTime:        params.StartTime,
		EndTime:          params.EndTime,
		StartDate:        params.StartDate,
		EndDate:          params.EndDate,
		Reason:           params.Reason,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.store.CreateAbsenceEvent(ctx, event); err != nil {
		return nil, 0, fmt.Errorf("recording absence: %w", err)
	}

	allocations, err := s.affectedCandidates(ctx, event)
	if err != nil {
		return nil, 0, fmt.Errorf("loading allocations: %w", err)
	}

	matched := MatchAllocations(event, allocations, faculty.DisplayName)
	openings := buildOpenings(event, matched, faculty.DisplayName)

	if err := s.store.CreateAvailabilityOpenings(ctx, openings); err != nil {
		return nil, 0, fmt.Errorf("writing availability openings: %w", err)
	}

	slog.Info("absence propagated",
		"absence_id", event.ID,
		"scope", event.Scope,
		"matched_allocations", len(matched),
		"openings", len(openings),
	)
	return event, len(openings), nil
}

// affectedCandidates loads the allocations the matcher runs against: the
// pinned allocation when one is named, otherwise the full allocation set of
// the college's most recent generated schedule.
func (s *Service) affectedCandidates(ctx context.Context, event *models.AbsenceEvent) ([]*models.RoomAllocation, error) {
	if event.RoomAllocationID != nil {
		alloc, err := s.store.GetRoomAllocation(ctx, *event.RoomAllocationID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return []*models.RoomAllocation{alloc}, nil
	}

	schedule, err := s.store.LatestGeneratedSchedule(ctx, event.CollegeID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil // no schedule yet, nothing to propagate
	}
	if err != nil {
		return nil, err
	}
	return s.store.ListAllocationsBySchedule(ctx, schedule.ID)
}

// MatchAllocations computes the subset of allocations an absence affects.
//
// With a pinned allocation id the scope is irrelevant. The class scope
// narrows by whatever fields were supplied; unspecified filters match
// everything. The week and range scopes fall back to a teacher-name
// substring match, which has no faculty-id join to lean on.
func MatchAllocations(event *models.AbsenceEvent, allocations []*models.RoomAllocation, facultyName string) []*models.RoomAllocation {
	if event.RoomAllocationID != nil {
		for _, a := range allocations {
			if a.ID == *event.RoomAllocationID {
				return []*models.RoomAllocation{a}
			}
		}
		return nil
	}

	var matched []*models.RoomAllocation
	switch event.Scope {
	case models.AbsenceScopeClass:
		for _, a := range allocations {
			if matchesClassScope(event, a) {
				matched = append(matched, a)
			}
		}
	case models.AbsenceScopeDay:
		day := timeparse.NormalizeDay(event.DayOfWeek)
		for _, a := range allocations {
			if containsDay(timeparse.ExpandDays(a.Day), day) {
				matched = append(matched, a)
			}
		}
	case models.AbsenceScopeWeek, models.AbsenceScopeRange:
		if facultyName == "" {
			return nil
		}
		for _, a := range allocations {
			if strings.Contains(a.TeacherName, facultyName) {
				matched = append(matched, a)
			}
		}
	}
	return matched
}

func matchesClassScope(event *models.AbsenceEvent, a *models.RoomAllocation) bool {
	if event.CourseCode != "" && a.CourseCode != event.CourseCode {
		return false
	}
	if event.Section != "" && a.Section != event.Section {
		return false
	}
	if event.DayOfWeek != "" {
		if !containsDay(timeparse.ExpandDays(a.Day), timeparse.NormalizeDay(event.DayOfWeek)) {
			return false
		}
	}

	allocTimes := timeparse.ParseScheduleTime(a.TimeText)
	if event.StartTime != "" {
		if !timePrefixMatch(event.StartTime, allocTimes.Start) {
			return false
		}
	}
	if event.EndTime != "" {
		if !timePrefixMatch(event.EndTime, allocTimes.End) {
			return false
		}
	}
	return true
}

// timePrefixMatch compares the HH:MM prefixes of two parsed times. Either
// side failing to parse excludes the allocation rather than guessing.
func timePrefixMatch(absenceTime, allocTime string) bool {
	parsed, ok := timeparse.ParseTimeTo24(absenceTime)
	if !ok || allocTime == "" {
		return false
	}
	return parsed[:5] == allocTime[:5]
}

func containsDay(days []string, day string) bool {
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// buildOpenings emits one opening per matched allocation per expanded
// weekday. Allocations whose time range fails to parse are silently dropped;
// that is intentional degradation, not an error.
func buildOpenings(event *models.AbsenceEvent, matched []*models.RoomAllocation, facultyName string) []*models.AvailabilityOpening {
	bookedBy := facultyName
	if bookedBy == "" {
		bookedBy = "Faculty"
	}

	now := time.Now().UTC()
	var openings []*models.AvailabilityOpening
	for _, a := range matched {
		tr := timeparse.ParseScheduleTime(a.TimeText)
		if tr.Start == "" || tr.End == "" {
			continue
		}
		for _, day := range timeparse.ExpandDays(a.Day) {
			openings = append(openings, &models.AvailabilityOpening{
				ID:             uuid.New(),
				CollegeID:      event.CollegeID,
				AbsenceID:      event.ID,
				RoomCode:       a.RoomCode,
				Building:       a.Building,
				Campus:         a.Campus,
				DayOfWeek:      day,
				StartTime:      tr.Start,
				EndTime:        tr.End,
				IsAvailable:    true,
				BookingPurpose: bookingPurpose,
				BookedBy:       bookedBy,
				CreatedAt:      now,
			})
		}
	}
	return openings
}
