package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mw "github.com/classgrid/classgrid/internal/api/middleware"
	"github.com/classgrid/classgrid/internal/scheduling"
	"github.com/classgrid/classgrid/internal/store"
	"github.com/classgrid/classgrid/pkg/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock JobService ---

type mockJobService struct {
	submitFn   func(ctx context.Context, collegeID uuid.UUID, req models.ScheduleRequest) (*models.Job, error)
	getFn      func(ctx context.Context, collegeID uuid.UUID, jobID uuid.UUID) (*models.Job, error)
	listFn     func(ctx context.Context, filter store.JobFilter) ([]*models.Job, error)
	progressFn func(ctx context.Context, collegeID uuid.UUID, jobID uuid.UUID, progress int, stage string) (*models.Job, error)
}

func (m *mockJobService) Submit(ctx context.Context, collegeID uuid.UUID, req models.ScheduleRequest) (*models.Job, error) {
	return m.submitFn(ctx, collegeID, req)
}

func (m *mockJobService) GetJob(ctx context.Context, collegeID uuid.UUID, jobID uuid.UUID) (*models.Job, error) {
	return m.getFn(ctx, collegeID, jobID)
}

func (m *mockJobService) ListJobs(ctx context.Context, filter store.JobFilter) ([]*models.Job, error) {
	return m.listFn(ctx, filter)
}

func (m *mockJobService) ApplyProgress(ctx context.Context, collegeID uuid.UUID, jobID uuid.UUID, progress int, stage string) (*models.Job, error) {
	return m.progressFn(ctx, collegeID, jobID, progress, stage)
}

// --- helpers ---

func authedReq(t *testing.T, method, target string, body any, collegeID uuid.UUID) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r.WithContext(mw.SetCollegeID(r.Context(), collegeID))
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Error.Code
}

func validScheduleRequest() models.ScheduleRequest {
	return models.ScheduleRequest{
		ScheduleName: "Fall 2026 Draft",
		Semester:     "1st",
		AcademicYear: "2026-2027",
		Classes: []models.ClassInput{{
			ID: "c1", CourseCode: "CS101", Section: "A", CourseTitle: "Intro to Computing",
			LectureHours: 3, TeacherName: "Cruz, Maria", Enrollment: 40,
		}},
		Rooms: []models.RoomInput{{
			ID: "r1", Campus: "Main", Building: "Engineering", Room: "201",
			Capacity: 45, Type: "Lecture",
		}},
	}
}

// --- submit ---

func TestSubmitJob_Accepted(t *testing.T) {
	collegeID := uuid.New()
	jobID := uuid.New()
	svc := &mockJobService{
		submitFn: func(ctx context.Context, gotCollege uuid.UUID, req models.ScheduleRequest) (*models.Job, error) {
			assert.Equal(t, collegeID, gotCollege)
			assert.Equal(t, "Fall 2026 Draft", req.ScheduleName)
			return &models.Job{ID: jobID, Status: models.JobStatusPending}, nil
		},
	}

	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodPost, "/api/v1/jobs", validScheduleRequest(), collegeID)
	NewSubmitJobHandler(svc).ServeHTTP(rec, r)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, true, data["success"])
	assert.Equal(t, jobID.String(), data["job_id"])
	assert.Equal(t, "pending", data["status"])
}

func TestSubmitJob_ValidationError(t *testing.T) {
	svc := &mockJobService{
		submitFn: func(ctx context.Context, collegeID uuid.UUID, req models.ScheduleRequest) (*models.Job, error) {
			return nil, fmt.Errorf("%w: at least one class is required", scheduling.ErrValidation)
		},
	}

	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodPost, "/api/v1/jobs", models.ScheduleRequest{ScheduleName: "x"}, uuid.New())
	NewSubmitJobHandler(svc).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeErrorCode(t, rec))
}

func TestSubmitJob_BadJSON(t *testing.T) {
	svc := &mockJobService{}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", bytes.NewReader([]byte("{not json")))
	r = r.WithContext(mw.SetCollegeID(r.Context(), uuid.New()))
	NewSubmitJobHandler(svc).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeErrorCode(t, rec))
}

func TestSubmitJob_NoCollege(t *testing.T) {
	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", nil)
	NewSubmitJobHandler(&mockJobService{}).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// --- get ---

func TestGetJob_Found(t *testing.T) {
	collegeID := uuid.New()
	jobID := uuid.New()
	started := time.Now().UTC()
	svc := &mockJobService{
		getFn: func(ctx context.Context, gotCollege uuid.UUID, gotJob uuid.UUID) (*models.Job, error) {
			assert.Equal(t, collegeID, gotCollege)
			assert.Equal(t, jobID, gotJob)
			return &models.Job{
				ID:        jobID,
				Status:    models.JobStatusRunning,
				Progress:  40,
				Stage:     "Placing lab sections",
				StartedAt: &started,
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodGet, "/api/v1/jobs/"+jobID.String(), nil, collegeID)
	r = withURLParam(r, "jobID", jobID.String())
	NewGetJobHandler(svc).ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, "running", data["status"])
	assert.Equal(t, float64(40), data["progress"])
	assert.Equal(t, "Placing lab sections", data["stage"])
}

func TestGetJob_NotFound(t *testing.T) {
	svc := &mockJobService{
		getFn: func(ctx context.Context, collegeID uuid.UUID, jobID uuid.UUID) (*models.Job, error) {
			return nil, store.ErrNotFound
		},
	}

	jobID := uuid.New()
	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodGet, "/api/v1/jobs/"+jobID.String(), nil, uuid.New())
	r = withURLParam(r, "jobID", jobID.String())
	NewGetJobHandler(svc).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeErrorCode(t, rec))
}

func TestGetJob_BadID(t *testing.T) {
	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodGet, "/api/v1/jobs/not-a-uuid", nil, uuid.New())
	r = withURLParam(r, "jobID", "not-a-uuid")
	NewGetJobHandler(&mockJobService{}).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// --- list ---

func TestListJobs_DefaultsAndFilter(t *testing.T) {
	collegeID := uuid.New()
	svc := &mockJobService{
		listFn: func(ctx context.Context, filter store.JobFilter) ([]*models.Job, error) {
			assert.Equal(t, collegeID, filter.CollegeID)
			assert.Equal(t, models.JobStatusCompleted, filter.Status)
			assert.Equal(t, defaultJobListLimit, filter.Limit)
			return []*models.Job{
				{ID: uuid.New(), Status: models.JobStatusCompleted, Progress: 100},
			}, nil
		},
	}

	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodGet, "/api/v1/jobs?status=completed", nil, collegeID)
	NewListJobsHandler(svc).ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var env struct {
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, "completed", env.Data[0]["status"])
}

func TestListJobs_BadStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodGet, "/api/v1/jobs?status=done", nil, uuid.New())
	NewListJobsHandler(&mockJobService{}).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// The polling form GET /api/v1/jobs?id=<uuid> answers with the single job,
// not a list. listFn is left nil so a fallthrough to the list path panics.
func TestListJobs_PollByID(t *testing.T) {
	collegeID := uuid.New()
	jobID := uuid.New()
	svc := &mockJobService{
		getFn: func(ctx context.Context, gotCollege uuid.UUID, gotJob uuid.UUID) (*models.Job, error) {
			assert.Equal(t, collegeID, gotCollege)
			assert.Equal(t, jobID, gotJob)
			return &models.Job{ID: jobID, Status: models.JobStatusRunning, Progress: 65, Stage: "Resolving conflicts"}, nil
		},
	}

	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodGet, "/api/v1/jobs?id="+jobID.String(), nil, collegeID)
	NewListJobsHandler(svc).ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, jobID.String(), data["job_id"])
	assert.Equal(t, "running", data["status"])
	assert.Equal(t, float64(65), data["progress"])
}

func TestListJobs_PollByID_NotFound(t *testing.T) {
	svc := &mockJobService{
		getFn: func(ctx context.Context, collegeID uuid.UUID, jobID uuid.UUID) (*models.Job, error) {
			return nil, store.ErrNotFound
		},
	}

	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodGet, "/api/v1/jobs?id="+uuid.NewString(), nil, uuid.New())
	NewListJobsHandler(svc).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeErrorCode(t, rec))
}

func TestListJobs_PollByID_BadID(t *testing.T) {
	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodGet, "/api/v1/jobs?id=not-a-uuid", nil, uuid.New())
	NewListJobsHandler(&mockJobService{}).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeErrorCode(t, rec))
}

// --- progress callback ---

func TestJobProgress_Applied(t *testing.T) {
	collegeID := uuid.New()
	jobID := uuid.New()
	svc := &mockJobService{
		progressFn: func(ctx context.Context, gotCollege uuid.UUID, gotJob uuid.UUID, progress int, stage string) (*models.Job, error) {
			assert.Equal(t, jobID, gotJob)
			assert.Equal(t, 55, progress)
			assert.Equal(t, "Resolving conflicts", stage)
			return &models.Job{ID: jobID, Status: models.JobStatusRunning, Progress: 55, Stage: stage}, nil
		},
	}

	body := map[string]any{"job_id": jobID.String(), "progress": 55, "stage": "Resolving conflicts"}
	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodPatch, "/api/v1/jobs", body, collegeID)
	NewJobProgressHandler(svc).ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, float64(55), data["progress"])
	assert.Equal(t, "running", data["status"])
}

func TestJobProgress_TerminalJobIsNoOp(t *testing.T) {
	jobID := uuid.New()
	svc := &mockJobService{
		progressFn: func(ctx context.Context, collegeID uuid.UUID, gotJob uuid.UUID, progress int, stage string) (*models.Job, error) {
			// Service returns the terminal record unchanged.
			return &models.Job{ID: jobID, Status: models.JobStatusCompleted, Progress: 100, Stage: "Completed successfully!"}, nil
		},
	}

	body := map[string]any{"job_id": jobID.String(), "progress": 10, "stage": "late callback"}
	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodPatch, "/api/v1/jobs", body, uuid.New())
	NewJobProgressHandler(svc).ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decodeData(t, rec)
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, float64(100), data["progress"])
}

func TestJobProgress_MissingJobID(t *testing.T) {
	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodPatch, "/api/v1/jobs", map[string]any{"progress": 10}, uuid.New())
	NewJobProgressHandler(&mockJobService{}).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeErrorCode(t, rec))
}

func TestJobProgress_UnknownJob(t *testing.T) {
	svc := &mockJobService{
		progressFn: func(ctx context.Context, collegeID uuid.UUID, jobID uuid.UUID, progress int, stage string) (*models.Job, error) {
			return nil, store.ErrNotFound
		},
	}

	body := map[string]any{"job_id": uuid.New().String(), "progress": 10}
	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodPatch, "/api/v1/jobs", body, uuid.New())
	NewJobProgressHandler(svc).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// withURLParam injects a chi route parameter for direct handler tests.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
