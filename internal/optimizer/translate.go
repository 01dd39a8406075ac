package optimizer

import (
	"github.com/classgrid/classgrid/pkg/models"
)

// NA is the sentinel used when a result entry cannot be joined back to its
// originating class or room. Translation is total: a partial join miss
// degrades the row, it never fails the whole result.
const NA = "N/A"

// ToSections maps caller classes into the optimizer's section shape. The
// required room type follows from lab hours, and weekly hours become minutes.
func ToSections(classes []models.ClassInput) []Section {
	sections := make([]Section, 0, len(classes))
	for _, c := range classes {
		roomType := "Lecture"
		if c.LabHours > 0 {
			roomType = "Laboratory"
		}
		sections = append(sections, Section{
			SectionID:        c.ID,
			CourseCode:       c.CourseCode,
			Section:          c.Section,
			CourseTitle:      c.CourseTitle,
			TeacherName:      c.TeacherName,
			RequiredRoomType: roomType,
			WeeklyMinutes:    int((c.LectureHours + c.LabHours) * 60),
			Enrollment:       c.Enrollment,
		})
	}
	return sections
}

// ToRooms maps caller rooms into the optimizer's room shape, deriving the
// composite "{building}-{room}" code.
func ToRooms(rooms []models.RoomInput) []Room {
	out := make([]Room, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, Room{
			RoomID:     r.ID,
			Code:       r.Building + "-" + r.Room,
			Campus:     r.Campus,
			Capacity:   r.Capacity,
			RoomType:   r.Type,
			Floor:      r.Floor,
			Accessible: r.WheelchairAccessible,
		})
	}
	return out
}

// FromResult reconstructs the caller-facing schedule result by joining each
// optimizer assignment back to its originating class and room by id.
func FromResult(resp *GenerateResponse, classes []models.ClassInput, rooms []models.RoomInput) *models.ScheduleResult {
	classByID := make(map[string]models.ClassInput, len(classes))
	for _, c := range classes {
		classByID[c.ID] = c
	}
	roomByID := make(map[string]models.RoomInput, len(rooms))
	for _, r := range rooms {
		roomByID[r.ID] = r
	}

	allocations := make([]models.AllocationResult, 0, len(resp.Assignments))
	for _, a := range resp.Assignments {
		alloc := models.AllocationResult{
			CourseCode:  NA,
			Section:     NA,
			CourseTitle: NA,
			TeacherName: NA,
			RoomCode:    NA,
			Building:    NA,
			Campus:      NA,
			Day:         a.Day,
			TimeText:    joinTimeRange(a.StartTime, a.EndTime),
		}
		if c, ok := classByID[a.SectionID]; ok {
			alloc.CourseCode = c.CourseCode
			alloc.Section = c.Section
			alloc.CourseTitle = c.CourseTitle
			alloc.TeacherName = c.TeacherName
		}
		if r, ok := roomByID[a.RoomID]; ok {
			alloc.RoomCode = r.Building + "-" + r.Room
			alloc.Building = r.Building
			alloc.Campus = r.Campus
		}
		allocations = append(allocations, alloc)
	}

	scheduled := resp.ScheduledCount
	unscheduled := resp.UnscheduledCount
	if scheduled == 0 && len(allocations) > 0 {
		// Older optimizer builds omit the counts; fall back to counting.
		scheduled = len(allocations)
		if unscheduled == 0 && len(classes) > scheduled {
			unscheduled = len(classes) - scheduled
		}
	}

	return &models.ScheduleResult{
		Allocations:        allocations,
		ScheduledClasses:   scheduled,
		UnscheduledClasses: unscheduled,
		Message:            resp.Message,
	}
}

func joinTimeRange(start, end string) string {
	if start == "" && end == "" {
		return ""
	}
	return start + "-" + end
}
