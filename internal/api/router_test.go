package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mw "github.com/classgrid/classgrid/internal/api/middleware"
	"github.com/classgrid/classgrid/internal/cache"
	"github.com/classgrid/classgrid/internal/store"
	"github.com/classgrid/classgrid/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubStore struct {
	store.Store
	keys []*models.APIKey
}

func (s *stubStore) GetAPIKeyByPrefix(ctx context.Context, prefix string) ([]*models.APIKey, error) {
	return s.keys, nil
}

func (s *stubStore) UpdateAPIKeyLastUsed(ctx context.Context, id uuid.UUID) error {
	return nil
}

type stubCache struct {
	cache.Cache
}

func (s *stubCache) IncrWithExpiry(ctx context.Context, key string, expiry time.Duration) (int64, error) {
	return 1, nil
}

// newScopedRouter builds a full router whose auth store holds one key with
// the given scopes. Every routed handler reports into hit.
func newScopedRouter(t *testing.T, scopes []string) (http.Handler, string, *bool) {
	t.Helper()

	rawKey := "cg_" + uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(rawKey), bcrypt.MinCost)
	require.NoError(t, err)

	st := &stubStore{keys: []*models.APIKey{{
		ID:        uuid.New(),
		CollegeID: uuid.New(),
		Name:      "scoped test key",
		KeyHash:   string(hash),
		KeyPrefix: rawKey[:8],
		Scopes:    scopes,
	}}}

	hit := false
	handler := func(w http.ResponseWriter, r *http.Request) {
		hit = true
		w.WriteHeader(http.StatusOK)
	}

	router := NewRouter(Dependencies{
		Auth:                 mw.NewAuth(st),
		RateLimit:            mw.NewRateLimit(&stubCache{}, 60),
		SubmitJobHandler:     handler,
		ListJobsHandler:      handler,
		JobProgressHandler:   handler,
		RecordAbsenceHandler: handler,
		CreateKeyHandler:     handler,
	})
	return router, rawKey, &hit
}

func TestRouter_ScopeEnforcement(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		target     string
		scopes     []string
		wantStatus int
		wantHit    bool
	}{
		{"submit with schedule scope", http.MethodPost, "/api/v1/jobs", []string{"schedule"}, http.StatusOK, true},
		{"submit denied for faculty-only key", http.MethodPost, "/api/v1/jobs", []string{"faculty"}, http.StatusForbidden, false},
		{"callback with schedule scope", http.MethodPatch, "/api/v1/jobs", []string{"schedule"}, http.StatusOK, true},
		{"callback denied for faculty-only key", http.MethodPatch, "/api/v1/jobs", []string{"faculty"}, http.StatusForbidden, false},
		{"absence with faculty scope", http.MethodPost, "/api/v1/absences", []string{"faculty"}, http.StatusOK, true},
		{"absence denied for schedule-only key", http.MethodPost, "/api/v1/absences", []string{"schedule"}, http.StatusForbidden, false},
		{"poll needs no write scope", http.MethodGet, "/api/v1/jobs", []string{"faculty"}, http.StatusOK, true},
		{"admin denied for schedule-only key", http.MethodPost, "/api/v1/admin/keys", []string{"schedule"}, http.StatusForbidden, false},
		{"admin with admin scope", http.MethodPost, "/api/v1/admin/keys", []string{"admin"}, http.StatusOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, rawKey, hit := newScopedRouter(t, tt.scopes)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.target, nil)
			req.Header.Set("Authorization", "Bearer "+rawKey)
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantHit, *hit)
		})
	}
}

func TestRouter_UnauthenticatedRejected(t *testing.T) {
	router, _, hit := newScopedRouter(t, []string{"schedule"})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, *hit)
}
