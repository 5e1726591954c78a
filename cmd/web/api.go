package main

import (
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/matchday/internal/apperr"
	"github.com/AdamBeresnev/matchday/internal/httputil"
	"github.com/AdamBeresnev/matchday/internal/service"
	users "github.com/AdamBeresnev/matchday/internal/user"
	"github.com/go-chi/chi/v5"
)

type registerTeamRequest struct {
	TeamID int64 `json:"teamId" validate:"required,min=1"`
}

func idParam(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Validation("Invalid %s", name)
	}
	return id, nil
}

func limitParam(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

func actor(r *http.Request) users.Actor {
	return users.ActorFromContext(r.Context())
}

// respond writes v with status, or the error envelope when err is set.
func respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteSuccess(w, status, v)
}

// pathID reads a positive id URL parameter, writing the error response when it is invalid.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := idParam(r, name)
	if err != nil {
		httputil.WriteError(w, r, err)
		return 0, false
	}
	return id, true
}

// Tournaments

func (app *application) listTournaments(w http.ResponseWriter, r *http.Request) {
	tournaments, err := app.tournaments.List(r.Context())
	respond(w, r, http.StatusOK, tournaments, err)
}

func (app *application) createTournament(w http.ResponseWriter, r *http.Request) {
	var in service.TournamentInput
	if err := httputil.Decode(r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	t, err := app.tournaments.Create(r.Context(), actor(r), in)
	respond(w, r, http.StatusCreated, t, err)
}

func (app *application) getTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := app.tournaments.Get(r.Context(), id)
	respond(w, r, http.StatusOK, t, err)
}

func (app *application) updateTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch service.TournamentPatch
	if err := httputil.Decode(r, &patch); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	t, err := app.tournaments.Update(r.Context(), actor(r), id, patch)
	respond(w, r, http.StatusOK, t, err)
}

func (app *application) deleteTournament(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	err := app.tournaments.Delete(r.Context(), actor(r), id)
	respond(w, r, http.StatusOK, map[string]int64{"id": id}, err)
}

func (app *application) registerTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req registerTeamRequest
	if err := httputil.Decode(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	t, err := app.tournaments.RegisterTeam(r.Context(), actor(r), id, req.TeamID)
	respond(w, r, http.StatusOK, t, err)
}

func (app *application) unregisterTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	teamID, ok := pathID(w, r, "teamID")
	if !ok {
		return
	}
	t, err := app.tournaments.UnregisterTeam(r.Context(), actor(r), id, teamID)
	respond(w, r, http.StatusOK, t, err)
}

func (app *application) generateBracket(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	result, err := app.tournaments.GenerateBracket(r.Context(), actor(r), id)
	respond(w, r, http.StatusCreated, result, err)
}

func (app *application) tournamentStandings(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	s, err := app.tournaments.Standings(r.Context(), id)
	respond(w, r, http.StatusOK, s, err)
}

func (app *application) tournamentMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := app.tournaments.Get(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	matches, err := app.matches.ListByTournament(r.Context(), id)
	respond(w, r, http.StatusOK, matches, err)
}

func (app *application) tournamentOverview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	o, err := app.tournaments.Overview(r.Context(), id)
	respond(w, r, http.StatusOK, o, err)
}

// Matches

func (app *application) listMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := app.matches.List(r.Context())
	respond(w, r, http.StatusOK, matches, err)
}

func (app *application) createMatch(w http.ResponseWriter, r *http.Request) {
	var in service.MatchInput
	if err := httputil.Decode(r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	m, err := app.matches.Create(r.Context(), actor(r), in)
	respond(w, r, http.StatusCreated, m, err)
}

func (app *application) upcomingMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := app.matches.Upcoming(r.Context(), limitParam(r))
	respond(w, r, http.StatusOK, matches, err)
}

func (app *application) recentResults(w http.ResponseWriter, r *http.Request) {
	matches, err := app.matches.RecentResults(r.Context(), limitParam(r))
	respond(w, r, http.StatusOK, matches, err)
}

func (app *application) getMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := app.matches.Get(r.Context(), id)
	respond(w, r, http.StatusOK, m, err)
}

func (app *application) updateMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch service.MatchPatch
	if err := httputil.Decode(r, &patch); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	m, err := app.matches.Update(r.Context(), actor(r), id, patch)
	respond(w, r, http.StatusOK, m, err)
}

func (app *application) deleteMatch(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	err := app.matches.Delete(r.Context(), actor(r), id)
	respond(w, r, http.StatusOK, map[string]int64{"id": id}, err)
}

func (app *application) recordResult(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in service.ResultInput
	if err := httputil.Decode(r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	m, err := app.matches.RecordResult(r.Context(), actor(r), id, *in.Team1Score, *in.Team2Score)
	respond(w, r, http.StatusOK, m, err)
}

func (app *application) headToHead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	h2h, err := app.matches.HeadToHead(r.Context(), id)
	respond(w, r, http.StatusOK, h2h, err)
}

// Teams and players

func (app *application) listTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := app.teams.ListTeams(r.Context())
	respond(w, r, http.StatusOK, teams, err)
}

func (app *application) createTeam(w http.ResponseWriter, r *http.Request) {
	var in service.TeamInput
	if err := httputil.Decode(r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	t, err := app.teams.CreateTeam(r.Context(), actor(r), in)
	respond(w, r, http.StatusCreated, t, err)
}

func (app *application) getTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := app.teams.GetTeam(r.Context(), id)
	respond(w, r, http.StatusOK, t, err)
}

func (app *application) updateTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch service.TeamPatch
	if err := httputil.Decode(r, &patch); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	t, err := app.teams.UpdateTeam(r.Context(), actor(r), id, patch)
	respond(w, r, http.StatusOK, t, err)
}

func (app *application) deleteTeam(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	err := app.teams.DeleteTeam(r.Context(), actor(r), id)
	respond(w, r, http.StatusOK, map[string]int64{"id": id}, err)
}

func (app *application) teamMatches(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := app.teams.GetTeam(r.Context(), id); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	matches, err := app.matches.ListByTeam(r.Context(), id)
	respond(w, r, http.StatusOK, matches, err)
}

func (app *application) teamRoster(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	roster, err := app.teams.Roster(r.Context(), id)
	respond(w, r, http.StatusOK, roster, err)
}

func (app *application) addPlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	playerID, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	roster, err := app.teams.AddPlayer(r.Context(), actor(r), id, playerID)
	respond(w, r, http.StatusOK, roster, err)
}

func (app *application) removePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	playerID, ok := pathID(w, r, "playerID")
	if !ok {
		return
	}
	roster, err := app.teams.RemovePlayer(r.Context(), actor(r), id, playerID)
	respond(w, r, http.StatusOK, roster, err)
}

func (app *application) listPlayers(w http.ResponseWriter, r *http.Request) {
	players, err := app.teams.ListPlayers(r.Context())
	respond(w, r, http.StatusOK, players, err)
}

func (app *application) createPlayer(w http.ResponseWriter, r *http.Request) {
	var in service.PlayerInput
	if err := httputil.Decode(r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	p, err := app.teams.CreatePlayer(r.Context(), actor(r), in)
	respond(w, r, http.StatusCreated, p, err)
}

func (app *application) updatePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch service.PlayerPatch
	if err := httputil.Decode(r, &patch); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	p, err := app.teams.UpdatePlayer(r.Context(), actor(r), id, patch)
	respond(w, r, http.StatusOK, p, err)
}

func (app *application) deletePlayer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	err := app.teams.DeletePlayer(r.Context(), actor(r), id)
	respond(w, r, http.StatusOK, map[string]int64{"id": id}, err)
}
