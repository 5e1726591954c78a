package main

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/AdamBeresnev/matchday/internal/bracket"
	"github.com/AdamBeresnev/matchday/internal/config"
	"github.com/AdamBeresnev/matchday/internal/db"
	"github.com/AdamBeresnev/matchday/internal/service"
	"github.com/AdamBeresnev/matchday/internal/store"
	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
	Error   *struct {
		Kind    string `json:"kind"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	t      *testing.T
	url    string
	client *http.Client
}

// setupServer wires the application against an in-memory database with an admin account.
func setupServer(t *testing.T) *testServer {
	t.Helper()

	cfg, err := config.FromEnv(func(string) string { return "" })
	require.NoError(t, err)

	database, err := db.OpenMemory()
	require.NoError(t, err, "Failed to connect to in-memory DB")
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.RunMigrations(database.DB), "Failed to apply migrations")

	app := newApplication(cfg, database, store.NewSQLiteStore(database))
	require.NoError(t, app.users.SeedAdmin(context.Background(), "admin", "admin-pass"))

	srv := httptest.NewServer(newRouter(app))
	t.Cleanup(func() {
		app.hub.Close()
		srv.Close()
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testServer{t: t, url: srv.URL, client: &http.Client{Jar: jar}}
}

func (s *testServer) login(username, password string) *http.Response {
	s.t.Helper()
	resp, err := s.client.PostForm(s.url+"/login", url.Values{"username": {username}, "password": {password}})
	require.NoError(s.t, err)
	s.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// call sends a JSON request and decodes the envelope, copying data into out when given.
func (s *testServer) call(method, path, body string, out any) (int, envelope) {
	s.t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.url+path, reader)
	require.NoError(s.t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)

	var env envelope
	require.NoError(s.t, sonic.Unmarshal(raw, &env), string(raw))
	if out != nil && env.Success {
		data, err := sonic.Marshal(env.Data)
		require.NoError(s.t, err)
		require.NoError(s.t, sonic.Unmarshal(data, out))
	}
	return resp.StatusCode, env
}

func TestAnonymousWritesAreForbidden(t *testing.T) {
	s := setupServer(t)

	status, env := s.call(http.MethodPost, "/api/tournaments", `{"name":"Cup","startDate":"2026-05-01"}`, nil)
	assert.Equal(t, http.StatusForbidden, status)
	require.NotNil(t, env.Error)
	assert.Equal(t, "forbidden", env.Error.Kind)

	status, env = s.call(http.MethodGet, "/api/tournaments", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestRequestErrors(t *testing.T) {
	s := setupServer(t)
	s.login("admin", "admin-pass")

	testCases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		msg    string
	}{
		{name: "bad id", method: http.MethodGet, path: "/api/tournaments/abc", status: http.StatusBadRequest, msg: "Invalid id"},
		{name: "missing tournament", method: http.MethodGet, path: "/api/tournaments/99", status: http.StatusNotFound, msg: "Tournament not found"},
		{name: "missing match", method: http.MethodGet, path: "/api/matches/99", status: http.StatusNotFound, msg: "Match not found"},
		{name: "malformed body", method: http.MethodPost, path: "/api/teams", body: `{"name":`, status: http.StatusBadRequest, msg: "Invalid JSON payload"},
		{name: "service validation", method: http.MethodPost, path: "/api/tournaments", body: `{"name":""}`, status: http.StatusBadRequest, msg: "Tournament name and start date are required"},
		{name: "tag validation", method: http.MethodPost, path: "/api/tournaments", body: `{"name":"Cup","startDate":"2026-05-01","format":"swiss"}`, status: http.StatusBadRequest, msg: "format must be one of: knockout league"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := s.call(tc.method, tc.path, tc.body, nil)
			assert.Equal(t, tc.status, status)
			require.NotNil(t, env.Error)
			assert.Equal(t, tc.msg, env.Error.Message)
		})
	}
}

func TestLoginPage(t *testing.T) {
	s := setupServer(t)

	resp := s.login("admin", "wrong")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), "Invalid username or password")

	resp = s.login("admin", "admin-pass")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/", resp.Request.URL.Path)
}

func TestKnockoutOverHTTP(t *testing.T) {
	s := setupServer(t)
	s.login("admin", "admin-pass")

	var teamIDs []int64
	for _, name := range []string{"Ants", "Bees", "Crows", "Doves"} {
		var team bracket.Team
		status, _ := s.call(http.MethodPost, "/api/teams", `{"name":"`+name+`"}`, &team)
		require.Equal(t, http.StatusCreated, status)
		teamIDs = append(teamIDs, team.ID)
	}

	var tournament bracket.Tournament
	status, _ := s.call(http.MethodPost, "/api/tournaments", `{"name":"Spring Cup","startDate":"2026-05-01","maxTeams":4}`, &tournament)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, bracket.Knockout, tournament.Format)
	base := "/api/tournaments/" + itoa(tournament.ID)

	for _, id := range teamIDs {
		status, env := s.call(http.MethodPost, base+"/teams", `{"teamId":`+itoa(id)+`}`, nil)
		require.Equal(t, http.StatusOK, status, env.Error)
	}
	status, env := s.call(http.MethodPost, base+"/teams", `{"teamId":`+itoa(teamIDs[0])+`}`, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Team is already registered", env.Error.Message)

	var generated service.BracketResult
	status, _ = s.call(http.MethodPost, base+"/bracket", "", &generated)
	require.Equal(t, http.StatusCreated, status)
	require.Len(t, generated.Matches, 3)
	assert.Equal(t, bracket.TournamentActive, generated.Tournament.Status)

	status, env = s.call(http.MethodPost, base+"/bracket", "", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Bracket has already been generated", env.Error.Message)

	// Team 1 wins both semi-finals, then the final
	for _, m := range generated.Matches[:2] {
		status, env := s.call(http.MethodPost, "/api/matches/"+itoa(m.ID)+"/result", `{"team1Score":2,"team2Score":1}`, nil)
		require.Equal(t, http.StatusOK, status, env.Error)
	}

	var final service.MatchView
	status, _ = s.call(http.MethodGet, "/api/matches/"+itoa(generated.Matches[2].ID), "", &final)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, bracket.MatchScheduled, final.Status)
	assert.Equal(t, *generated.Matches[0].Team1ID, *final.Team1ID)
	assert.Equal(t, *generated.Matches[1].Team1ID, *final.Team2ID)

	status, _ = s.call(http.MethodPost, "/api/matches/"+itoa(final.ID)+"/result", `{"team1Score":0,"team2Score":3}`, nil)
	require.Equal(t, http.StatusOK, status)

	var standings service.Standings
	status, _ = s.call(http.MethodGet, base+"/standings", "", &standings)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, standings.Knockout, 4)
	for _, row := range standings.Knockout {
		if row.TeamID == *final.Team2ID {
			assert.False(t, row.IsEliminated)
			assert.Equal(t, "Round 2", row.Status)
		} else {
			assert.True(t, row.IsEliminated)
		}
	}

	var recent []service.MatchView
	status, _ = s.call(http.MethodGet, "/api/matches/recent?limit=2", "", &recent)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, recent, 2)
	assert.Equal(t, final.ID, recent[0].ID)
	assert.Equal(t, "Spring Cup", recent[0].TournamentName)

	resp, err := s.client.Get(s.url + "/tournaments/" + itoa(tournament.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	page, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "Spring Cup")
	assert.Contains(t, string(page), "Champion:")

	status, _ = s.call(http.MethodDelete, base, "", nil)
	require.Equal(t, http.StatusOK, status)
	var matches []service.MatchView
	status, _ = s.call(http.MethodGet, "/api/matches", "", &matches)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, matches)
}

func TestPagesRequireLogin(t *testing.T) {
	s := setupServer(t)
	s.client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

	resp, err := s.client.Get(s.url + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestStylesheetIsServed(t *testing.T) {
	s := setupServer(t)

	resp, err := s.client.Get(s.url + "/static/styles.css")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")

	login, err := s.client.Get(s.url + "/login")
	require.NoError(t, err)
	defer login.Body.Close()
	page, err := io.ReadAll(login.Body)
	require.NoError(t, err)
	assert.Contains(t, string(page), `href="/static/styles.css"`)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
