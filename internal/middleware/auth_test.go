package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AdamBeresnev/matchday/internal/db"
	"github.com/AdamBeresnev/matchday/internal/store"
	users "github.com/AdamBeresnev/matchday/internal/user"
	"github.com/alexedwards/scs/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequireAuth(t *testing.T) {
	handler := RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(users.WithUser(req.Context(), &users.User{ID: uuid.New()}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestLoadAuthenticatedUser(t *testing.T) {
	database, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database.DB))

	userStore := store.NewUserStore(database)
	known := &users.User{ID: uuid.New(), Username: "sam", Role: users.RoleAdmin}
	require.NoError(t, userStore.CreateUser(context.Background(), known))

	sessions := scs.New()

	var seen *users.User
	handler := sessions.LoadAndSave(LoadAuthenticatedUser(sessions, userStore)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = users.UserFromContext(r.Context())
		}),
	))

	// Signs the session in, then replays its cookie
	login := sessions.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessions.Put(r.Context(), SessionUserKey, r.URL.Query().Get("id"))
	}))

	testCases := []struct {
		name   string
		id     string
		wantID uuid.UUID
	}{
		{name: "known user", id: known.ID.String(), wantID: known.ID},
		{name: "unknown user", id: uuid.NewString()},
		{name: "malformed id", id: "not-a-uuid"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			login.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/login?id="+tc.id, nil))
			cookies := rec.Result().Cookies()
			require.NotEmpty(t, cookies)

			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for _, c := range cookies {
				req.AddCookie(c)
			}
			handler.ServeHTTP(httptest.NewRecorder(), req)

			if tc.wantID == uuid.Nil {
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, tc.wantID, seen.ID)
			assert.Equal(t, users.RoleAdmin, seen.Role)
		})
	}

	t.Run("anonymous", func(t *testing.T) {
		seen = nil
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Nil(t, seen)
	})
}
