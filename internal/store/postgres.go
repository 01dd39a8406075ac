package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/classgrid/classgrid/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements the Store interface using pgx/v5.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// --- Colleges ---

func (s *PostgresStore) GetDefaultCollege(ctx context.Context) (*models.College, error) {
	var c models.College
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, code, created_at, updated_at FROM colleges WHERE code = 'default' LIMIT 1`,
	).Scan(&c.ID, &c.Name, &c.Code, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get default college: %w", err)
	}
	return &c, nil
}

// --- API Keys ---

func (s *PostgresStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, college_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE key_prefix = $1 AND deleted_at IS NULL`, prefix)
	if err != nil {
		return nil, fmt.Errorf("get api key by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.CollegeID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET last_used_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update api key last used: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO api_keys (id, college_id, name, key_hash, key_prefix, scopes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		key.ID, key.CollegeID, key.Name, key.KeyHash, key.KeyPrefix, key.Scopes, key.CreatedAt, key.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create api key: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListAPIKeys(ctx context.Context, collegeID uuid.UUID) ([]*models.APIKey, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, college_id, name, key_hash, key_prefix, scopes, last_used_at, deleted_at, created_at, updated_at
		 FROM api_keys WHERE college_id = $1 AND deleted_at IS NULL ORDER BY created_at DESC`, collegeID)
	if err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var k models.APIKey
		if err := rows.Scan(&k.ID, &k.CollegeID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.Scopes,
			&k.LastUsedAt, &k.DeletedAt, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan api key: %w", err)
		}
		keys = append(keys, &k)
	}
	return keys, rows.Err()
}

func (s *PostgresStore) RevokeAPIKey(ctx context.Context, id uuid.UUID, collegeID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE api_keys SET deleted_at = NOW(), updated_at = NOW()
		 WHERE id = $1 AND college_id = $2 AND deleted_at IS NULL`, id, collegeID)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Faculty ---

func (s *PostgresStore) CreateFaculty(ctx context.Context, f *models.Faculty) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO faculty (id, college_id, display_name, email, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		f.ID, f.CollegeID, f.DisplayName, f.Email, f.CreatedAt, f.UpdatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create faculty: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetFaculty(ctx context.Context, id uuid.UUID) (*models.Faculty, error) {
	var f models.Faculty
	err := s.pool.QueryRow(ctx,
		`SELECT id, college_id, display_name, email, created_at, updated_at FROM faculty WHERE id = $1`, id,
	).Scan(&f.ID, &f.CollegeID, &f.DisplayName, &f.Email, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get faculty: %w", err)
	}
	return &f, nil
}

// --- Jobs ---

const jobColumns = `id, college_id, status, progress, stage, input_snapshot, result_snapshot,
	 error_message, generated_schedule_id, started_at, completed_at, created_at, updated_at`

func scanJob(row pgx.Row) (*models.Job, error) {
	var j models.Job
	err := row.Scan(&j.ID, &j.CollegeID, &j.Status, &j.Progress, &j.Stage, &j.InputSnapshot,
		&j.ResultSnapshot, &j.ErrorMessage, &j.GeneratedScheduleID, &j.StartedAt,
		&j.CompletedAt, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (s *PostgresStore) CreateJob(ctx context.Context, job *models.Job) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO jobs (id, college_id, status, progress, stage, input_snapshot, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.ID, job.CollegeID, job.Status, job.Progress, job.Stage, job.InputSnapshot,
		job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetJob(ctx context.Context, id uuid.UUID, collegeID uuid.UUID) (*models.Job, error) {
	j, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND college_id = $2`, id, collegeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (s *PostgresStore) ListJobs(ctx context.Context, filter JobFilter) ([]*models.Job, error) {
	conditions := []string{"college_id = $1"}
	args := []any{filter.CollegeID}
	argIdx := 2

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	query := fmt.Sprintf(`SELECT `+jobColumns+` FROM jobs WHERE %s ORDER BY created_at DESC LIMIT $%d`,
		strings.Join(conditions, " AND "), argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

var validTransitions = map[string][]string{
	"pending": {"running"},
	"running": {"completed", "failed"},
}

func (s *PostgresStore) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string, opts ...JobUpdateOption) error {
	params := &JobUpdate{}
	for _, opt := range opts {
		opt(params)
	}

	// Read the current status for the transition check; the UPDATE below is
	// conditional on this same value, so a concurrent updater cannot slip in
	// between the read and the write.
	var currentStatus string
	err := s.pool.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1`, id).Scan(&currentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get job status: %w", err)
	}

	// Validate transition
	allowed := validTransitions[currentStatus]
	valid := false
	for _, a := range allowed {
		if a == status {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, currentStatus, status)
	}

	now := time.Now().UTC()
	query := `UPDATE jobs SET status = $2, updated_at = $3`
	args := []any{id, status, now}
	argIdx := 4

	if status == models.JobStatusRunning {
		query += fmt.Sprintf(", started_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if status == models.JobStatusCompleted || status == models.JobStatusFailed {
		query += fmt.Sprintf(", completed_at = $%d", argIdx)
		args = append(args, now)
		argIdx++
	}
	if params.ErrorMessage != nil {
		query += fmt.Sprintf(", error_message = $%d", argIdx)
		args = append(args, *params.ErrorMessage)
		argIdx++
	}
	if params.ResultSnapshot != nil {
		query += fmt.Sprintf(", result_snapshot = $%d", argIdx)
		args = append(args, params.ResultSnapshot)
		argIdx++
	}
	if params.Progress != nil {
		query += fmt.Sprintf(", progress = $%d", argIdx)
		args = append(args, *params.Progress)
		argIdx++
	}
	if params.Stage != nil {
		query += fmt.Sprintf(", stage = $%d", argIdx)
		args = append(args, *params.Stage)
		argIdx++
	}

	query += fmt.Sprintf(" WHERE id = $1 AND status = $%d", argIdx)
	args = append(args, currentStatus)

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update job status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Another updater moved the job first; losing the claim race is an
		// invalid transition from the loser's point of view.
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, currentStatus, status)
	}
	return nil
}

// UpdateJobProgress applies a progress callback. Terminal jobs are left
// untouched and reported as not-applied rather than erroring, to tolerate
// duplicate or late callbacks.
func (s *PostgresStore) UpdateJobProgress(ctx context.Context, id uuid.UUID, progress int, stage string) (bool, error) {
	query := `UPDATE jobs SET progress = $2, updated_at = NOW()`
	args := []any{id, progress}
	argIdx := 3

	if stage != "" {
		query += fmt.Sprintf(", stage = $%d", argIdx)
		args = append(args, stage)
		argIdx++
	}
	query += ` WHERE id = $1 AND status NOT IN ('completed', 'failed')`

	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("update job progress: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Distinguish "terminal, no-op" from "no such job".
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1)`, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("check job exists: %w", err)
	}
	if !exists {
		return false, ErrNotFound
	}
	return false, nil
}

func (s *PostgresStore) LinkGeneratedSchedule(ctx context.Context, jobID uuid.UUID, scheduleID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs SET generated_schedule_id = $2, updated_at = NOW() WHERE id = $1`, jobID, scheduleID)
	if err != nil {
		return fmt.Errorf("link generated schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListStalePendingJobs(ctx context.Context, olderThan time.Time, limit int) ([]*models.Job, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
		 WHERE status = 'pending' AND created_at < $1 ORDER BY created_at ASC LIMIT $2`,
		olderThan, limit)
	if err != nil {
		return nil, fmt.Errorf("list stale pending jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// --- Generated Schedules ---

func (s *PostgresStore) CreateGeneratedSchedule(ctx context.Context, schedule *models.GeneratedSchedule, allocations []*models.RoomAllocation) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin schedule tx: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO generated_schedules (id, college_id, job_id, name, semester, academic_year,
		   scheduled_classes, unscheduled_classes, statistics, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		schedule.ID, schedule.CollegeID, schedule.JobID, schedule.Name, schedule.Semester,
		schedule.AcademicYear, schedule.ScheduledClasses, schedule.UnscheduledClasses,
		schedule.Statistics, schedule.CreatedAt)
	if err != nil {
		return fmt.Errorf("create generated schedule: %w", err)
	}

	for _, a := range allocations {
		_, err = tx.Exec(ctx,
			`INSERT INTO room_allocations (id, schedule_id, course_code, section, course_title,
			   teacher_name, room_code, building, campus, day, time_text, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
			a.ID, a.ScheduleID, a.CourseCode, a.Section, a.CourseTitle, a.TeacherName,
			a.RoomCode, a.Building, a.Campus, a.Day, a.TimeText, a.CreatedAt)
		if err != nil {
			return fmt.Errorf("create room allocation: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) GetGeneratedSchedule(ctx context.Context, id uuid.UUID, collegeID uuid.UUID) (*models.GeneratedSchedule, error) {
	var g models.GeneratedSchedule
	err := s.pool.QueryRow(ctx,
		`SELECT id, college_id, job_id, name, semester, academic_year, scheduled_classes,
		   unscheduled_classes, statistics, created_at
		 FROM generated_schedules WHERE id = $1 AND college_id = $2`, id, collegeID,
	).Scan(&g.ID, &g.CollegeID, &g.JobID, &g.Name, &g.Semester, &g.AcademicYear,
		&g.ScheduledClasses, &g.UnscheduledClasses, &g.Statistics, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get generated schedule: %w", err)
	}
	return &g, nil
}

func (s *PostgresStore) ListGeneratedSchedules(ctx context.Context, collegeID uuid.UUID, limit int) ([]*models.GeneratedSchedule, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, college_id, job_id, name, semester, academic_year, scheduled_classes,
		   unscheduled_classes, statistics, created_at
		 FROM generated_schedules WHERE college_id = $1 ORDER BY created_at DESC LIMIT $2`,
		collegeID, limit)
	if err != nil {
		return nil, fmt.Errorf("list generated schedules: %w", err)
	}
	defer rows.Close()

	var schedules []*models.GeneratedSchedule
	for rows.Next() {
		var g models.GeneratedSchedule
		if err := rows.Scan(&g.ID, &g.CollegeID, &g.JobID, &g.Name, &g.Semester, &g.AcademicYear,
			&g.ScheduledClasses, &g.UnscheduledClasses, &g.Statistics, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan generated schedule: %w", err)
		}
		schedules = append(schedules, &g)
	}
	return schedules, rows.Err()
}

func (s *PostgresStore) LatestGeneratedSchedule(ctx context.Context, collegeID uuid.UUID) (*models.GeneratedSchedule, error) {
	var g models.GeneratedSchedule
	err := s.pool.QueryRow(ctx,
		`SELECT id, college_id, job_id, name, semester, academic_year, scheduled_classes,
		   unscheduled_classes, statistics, created_at
		 FROM generated_schedules WHERE college_id = $1 ORDER BY created_at DESC LIMIT 1`, collegeID,
	).Scan(&g.ID, &g.CollegeID, &g.JobID, &g.Name, &g.Semester, &g.AcademicYear,
		&g.ScheduledClasses, &g.UnscheduledClasses, &g.Statistics, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest generated schedule: %w", err)
	}
	return &g, nil
}

func (s *PostgresStore) ListAllocationsBySchedule(ctx context.Context, scheduleID uuid.UUID) ([]*models.RoomAllocation, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, schedule_id, course_code, section, course_title, teacher_name, room_code,
		   building, campus, day, time_text, created_at
		 FROM room_allocations WHERE schedule_id = $1 ORDER BY created_at ASC`, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()

	var allocations []*models.RoomAllocation
	for rows.Next() {
		var a models.RoomAllocation
		if err := rows.Scan(&a.ID, &a.ScheduleID, &a.CourseCode, &a.Section, &a.CourseTitle,
			&a.TeacherName, &a.RoomCode, &a.Building, &a.Campus, &a.Day, &a.TimeText, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		allocations = append(allocations, &a)
	}
	return allocations, rows.Err()
}

func (s *PostgresStore) GetRoomAllocation(ctx context.Context, id uuid.UUID) (*models.RoomAllocation, error) {
	var a models.RoomAllocation
	err := s.pool.QueryRow(ctx,
		`SELECT id, schedule_id, course_code, section, course_title, teacher_name, room_code,
		   building, campus, day, time_text, created_at
		 FROM room_allocations WHERE id = $1`, id,
	).Scan(&a.ID, &a.ScheduleID, &a.CourseCode, &a.Section, &a.CourseTitle, &a.TeacherName,
		&a.RoomCode, &a.Building, &a.Campus, &a.Day, &a.TimeText, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get room allocation: %w", err)
	}
	return &a, nil
}

// --- Absences & Availability ---

func (s *PostgresStore) CreateAbsenceEvent(ctx context.Context, event *models.AbsenceEvent) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO absence_events (id, college_id, faculty_id, scope, room_allocation_id,
		   course_code, section, day_of_week, start_time, end_time, start_date, end_date, reason, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		event.ID, event.CollegeID, event.FacultyID, event.Scope, event.RoomAllocationID,
		event.CourseCode, event.Section, event.DayOfWeek, event.StartTime, event.EndTime,
		event.StartDate, event.EndDate, event.Reason, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("create absence event: %w", err)
	}
	return nil
}

// CreateAvailabilityOpenings writes the whole batch in one transaction; a
// failure aborts the batch and surfaces to the caller. The absence row is
// written separately beforehand and is not rolled back.
func (s *PostgresStore) CreateAvailabilityOpenings(ctx context.Context, openings []*models.AvailabilityOpening) error {
	if len(openings) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin openings tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, o := range openings {
		_, err = tx.Exec(ctx,
			`INSERT INTO availability_openings (id, college_id, absence_id, room_code, building,
			   campus, day_of_week, start_time, end_time, is_available, booking_purpose, booked_by, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			o.ID, o.CollegeID, o.AbsenceID, o.RoomCode, o.Building, o.Campus, o.DayOfWeek,
			o.StartTime, o.EndTime, o.IsAvailable, o.BookingPurpose, o.BookedBy, o.CreatedAt)
		if err != nil {
			return fmt.Errorf("create availability opening: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) ListAvailabilityOpenings(ctx context.Context, filter OpeningFilter) ([]*models.AvailabilityOpening, error) {
	conditions := []string{"college_id = $1"}
	args := []any{filter.CollegeID}
	argIdx := 2

	if filter.AbsenceID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("absence_id = $%d", argIdx))
		args = append(args, filter.AbsenceID)
		argIdx++
	}
	if filter.DayOfWeek != "" {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", argIdx))
		args = append(args, filter.DayOfWeek)
		argIdx++
	}
	if filter.RoomCode != "" {
		conditions = append(conditions, fmt.Sprintf("room_code = $%d", argIdx))
		args = append(args, filter.RoomCode)
		argIdx++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	query := fmt.Sprintf(
		`SELECT id, college_id, absence_id, room_code, building, campus, day_of_week,
		   start_time, end_time, is_available, booking_purpose, booked_by, created_at
		 FROM availability_openings WHERE %s ORDER BY created_at DESC LIMIT $%d`,
		strings.Join(conditions, " AND "), argIdx)
	args = append(args, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list availability openings: %w", err)
	}
	defer rows.Close()

	var openings []*models.AvailabilityOpening
	for rows.Next() {
		var o models.AvailabilityOpening
		if err := rows.Scan(&o.ID, &o.CollegeID, &o.AbsenceID, &o.RoomCode, &o.Building, &o.Campus,
			&o.DayOfWeek, &o.StartTime, &o.EndTime, &o.IsAvailable, &o.BookingPurpose,
			&o.BookedBy, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan availability opening: %w", err)
		}
		openings = append(openings, &o)
	}
	return openings, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}
