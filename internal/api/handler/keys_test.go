package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/classgrid/classgrid/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockKeyStore struct {
	created *models.APIKey
}

func (m *mockKeyStore) CreateAPIKey(ctx context.Context, key *models.APIKey) error {
	m.created = key
	return nil
}

func (m *mockKeyStore) ListAPIKeys(ctx context.Context, collegeID uuid.UUID) ([]*models.APIKey, error) {
	return nil, nil
}

func (m *mockKeyStore) RevokeAPIKey(ctx context.Context, id uuid.UUID, collegeID uuid.UUID) error {
	return nil
}

func TestCreateKey_DefaultScope(t *testing.T) {
	st := &mockKeyStore{}

	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodPost, "/api/v1/admin/keys",
		map[string]any{"name": "portal backend"}, uuid.New())
	NewCreateKeyHandler(st).ServeHTTP(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, st.created)
	assert.Equal(t, []string{"schedule"}, st.created.Scopes)

	data := decodeData(t, rec)
	rawKey, ok := data["key"].(string)
	require.True(t, ok)
	assert.Equal(t, rawKey[:keyPrefixLen], st.created.KeyPrefix)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(st.created.KeyHash), []byte(rawKey)))
}

func TestCreateKey_ExplicitScopes(t *testing.T) {
	st := &mockKeyStore{}

	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodPost, "/api/v1/admin/keys",
		map[string]any{"name": "faculty portal", "scopes": []string{"faculty"}}, uuid.New())
	NewCreateKeyHandler(st).ServeHTTP(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, st.created)
	assert.Equal(t, []string{"faculty"}, st.created.Scopes)
}

func TestCreateKey_MissingName(t *testing.T) {
	rec := httptest.NewRecorder()
	r := authedReq(t, http.MethodPost, "/api/v1/admin/keys", map[string]any{}, uuid.New())
	NewCreateKeyHandler(&mockKeyStore{}).ServeHTTP(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_REQUEST", decodeErrorCode(t, rec))
}
