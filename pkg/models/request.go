package models

// ScheduleRequest is the caller-facing submission body for POST /api/v1/jobs.
// It is snapshotted verbatim onto the job so dispatch can run from the stored
// copy rather than the live request.
type ScheduleRequest struct {
	ScheduleName string          `json:"schedule_name"`
	Semester     string          `json:"semester"`
	AcademicYear string          `json:"academic_year"`
	College      string          `json:"college,omitempty"`
	Classes      []ClassInput    `json:"classes"`
	Rooms        []RoomInput     `json:"rooms"`
	Teachers     []TeacherInput  `json:"teachers,omitempty"`
	Config       OptimizerConfig `json:"config,omitempty"`
}

// ClassInput is one class-section as the front end ships it.
type ClassInput struct {
	ID           string  `json:"id"`
	CourseCode   string  `json:"course_code"`
	Section      string  `json:"section"`
	CourseTitle  string  `json:"course_title"`
	LectureHours float64 `json:"lecture_hours"`
	LabHours     float64 `json:"lab_hours"`
	Units        float64 `json:"units"`
	TeacherName  string  `json:"teacher_name"`
	Enrollment   int     `json:"enrollment"`
}

// RoomInput is one room as the front end ships it.
type RoomInput struct {
	ID                   string `json:"id"`
	Campus               string `json:"campus"`
	Building             string `json:"building"`
	Room                 string `json:"room"`
	Capacity             int    `json:"capacity"`
	Type                 string `json:"type"`
	Floor                string `json:"floor"`
	WheelchairAccessible bool   `json:"wheelchair_accessible"`
}

// TeacherInput is passed through to the optimizer untranslated.
type TeacherInput struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Subjects []string `json:"subjects,omitempty"`
}

// OptimizerConfig tunes the external solver.
type OptimizerConfig struct {
	MaxIterations int     `json:"max_iterations,omitempty"`
	TimeLimitSecs int     `json:"time_limit_secs,omitempty"`
	MutationRate  float64 `json:"mutation_rate,omitempty"`
}
