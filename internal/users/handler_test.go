package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/territory-leads/internal/identity"
	"github.com/wolfman30/territory-leads/pkg/logging"
)

func TestListOwners(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, &User{Email: "admin@territory.local", Role: identity.RoleAdmin, PasswordHash: "secret-hash"}))
	require.NoError(t, repo.Upsert(ctx, &User{Email: "rm@territory.local", Name: "RM User", Role: identity.RoleRM, PasswordHash: "secret-hash"}))
	h := NewHandler(repo, logging.Discard())

	tests := []struct {
		name   string
		actor  *identity.Actor
		status int
	}{
		{"admin", &identity.Actor{ID: "a", Role: identity.RoleAdmin}, http.StatusOK},
		{"rm sees not found", &identity.Actor{ID: "r", Role: identity.RoleRM}, http.StatusNotFound},
		{"anonymous", nil, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/owners", nil)
			if tt.actor != nil {
				req = req.WithContext(identity.WithActor(req.Context(), *tt.actor))
			}
			rec := httptest.NewRecorder()
			h.ListOwners(rec, req)
			require.Equal(t, tt.status, rec.Code)
			assert.NotContains(t, rec.Body.String(), "secret-hash")

			if tt.status == http.StatusOK {
				var body struct {
					Owners []Owner `json:"owners"`
				}
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
				require.Len(t, body.Owners, 1)
				assert.Equal(t, "rm@territory.local", body.Owners[0].Email)
			}
		})
	}
}

type failingUsers struct{ Repository }

func (failingUsers) GetByID(context.Context, string) (*User, error) {
	return nil, errors.New("connection reset")
}

func TestGetMe(t *testing.T) {
	repo := NewInMemoryRepository()
	rm := &User{Email: "rm@territory.local", Name: "RM User", Role: identity.RoleRM, PasswordHash: "secret-hash"}
	require.NoError(t, repo.Upsert(context.Background(), rm))
	h := NewHandler(repo, logging.Discard())

	call := func(h *Handler, actor *identity.Actor) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if actor != nil {
			req = req.WithContext(identity.WithActor(req.Context(), *actor))
		}
		rec := httptest.NewRecorder()
		h.GetMe(rec, req)
		return rec
	}

	rec := call(h, &identity.Actor{ID: rm.ID, Role: identity.RoleRM})
	require.Equal(t, http.StatusOK, rec.Code)
	var got Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, Profile{ID: rm.ID, Email: "rm@territory.local", Name: "RM User", Role: identity.RoleRM}, got)
	assert.NotContains(t, rec.Body.String(), "secret-hash")

	assert.Equal(t, http.StatusUnauthorized, call(h, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, call(h, &identity.Actor{ID: "deleted-user", Role: identity.RoleRM}).Code)

	broken := NewHandler(failingUsers{repo}, logging.Discard())
	assert.Equal(t, http.StatusInternalServerError, call(broken, &identity.Actor{ID: rm.ID, Role: identity.RoleRM}).Code)
}
