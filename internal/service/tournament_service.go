package service

import (
	"context"
	"slices"
	"strings"

	"github.com/AdamBeresnev/matchday/internal/apperr"
	"github.com/AdamBeresnev/matchday/internal/bracket"
	"github.com/AdamBeresnev/matchday/internal/logging"
	"github.com/AdamBeresnev/matchday/internal/standings"
	"github.com/AdamBeresnev/matchday/internal/store"
	users "github.com/AdamBeresnev/matchday/internal/user"
	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
)

type TournamentService struct {
	repos    store.Repositories
	locks    *TournamentLocks
	notifier Notifier
	shuffle  bracket.Shuffler
}

func NewTournamentService(repos store.Repositories, locks *TournamentLocks, notifier Notifier) *TournamentService {
	return &TournamentService{
		repos:    repos,
		locks:    locks,
		notifier: notifierOrNop(notifier),
		shuffle:  bracket.RandomShuffle,
	}
}

// WithShuffler replaces the knockout pairing shuffle.
func (s *TournamentService) WithShuffler(shuffle bracket.Shuffler) *TournamentService {
	s.shuffle = shuffle
	return s
}

type TournamentInput struct {
	Name        string         `json:"name" validate:"max=100"`
	Description string         `json:"description" validate:"max=2000"`
	Rules       string         `json:"rules" validate:"max=5000"`
	StartDate   string         `json:"startDate"`
	EndDate     string         `json:"endDate"`
	Format      bracket.Format `json:"format" validate:"omitempty,oneof=knockout league"`
	MaxTeams    int            `json:"maxTeams" validate:"omitempty,min=1"`
}

// TournamentPatch lists the fields an update may change. Nil fields are left alone.
type TournamentPatch struct {
	Name        *string                   `json:"name" validate:"omitempty,max=100"`
	Description *string                   `json:"description" validate:"omitempty,max=2000"`
	Rules       *string                   `json:"rules" validate:"omitempty,max=5000"`
	StartDate   *string                   `json:"startDate"`
	EndDate     *string                   `json:"endDate"`
	Format      *bracket.Format           `json:"format" validate:"omitempty,oneof=knockout league"`
	Status      *bracket.TournamentStatus `json:"status" validate:"omitempty,oneof=upcoming active completed"`
	MaxTeams    *int                      `json:"maxTeams" validate:"omitempty,min=1"`
}

func (s *TournamentService) Create(ctx context.Context, actor users.Actor, in TournamentInput) (bracket.Tournament, error) {
	if !actor.IsAdmin() {
		return bracket.Tournament{}, apperr.Forbidden("Only administrators can create tournaments")
	}

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || strings.TrimSpace(in.StartDate) == "" {
		return bracket.Tournament{}, apperr.Validation("Tournament name and start date are required")
	}
	if in.Format == "" {
		in.Format = bracket.Knockout
	}
	if !in.Format.Valid() {
		return bracket.Tournament{}, apperr.Validation("Unknown tournament format %q", in.Format)
	}
	if in.MaxTeams == 0 {
		in.MaxTeams = bracket.DefaultMaxTeams
	}
	if in.MaxTeams < 0 {
		return bracket.Tournament{}, apperr.Validation("Maximum teams must be a positive number")
	}

	created, err := s.repos.Tournaments.Create(ctx, bracket.Tournament{
		Name:            in.Name,
		Description:     in.Description,
		Rules:           in.Rules,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Format:          in.Format,
		Status:          bracket.TournamentUpcoming,
		MaxTeams:        in.MaxTeams,
		RegisteredTeams: []int64{},
	})
	if err != nil {
		return bracket.Tournament{}, apperr.Internal(err, "failed to create tournament")
	}
	return created, nil
}

func (s *TournamentService) Update(ctx context.Context, actor users.Actor, id int64, patch TournamentPatch) (bracket.Tournament, error) {
	if !actor.IsAdmin() {
		return bracket.Tournament{}, apperr.Forbidden("Only administrators can update tournaments")
	}

	updated, err := s.repos.Tournaments.Update(ctx, id, func(t *bracket.Tournament) error {
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return apperr.Validation("Tournament name is required")
			}
			t.Name = name
		}
		if patch.StartDate != nil {
			if strings.TrimSpace(*patch.StartDate) == "" {
				return apperr.Validation("Tournament start date is required")
			}
			t.StartDate = *patch.StartDate
		}
		if patch.Format != nil && *patch.Format != t.Format {
			if !patch.Format.Valid() {
				return apperr.Validation("Unknown tournament format %q", *patch.Format)
			}
			if t.Bracket != nil {
				return apperr.Validation("Format cannot change after the bracket has been generated")
			}
			t.Format = *patch.Format
		}
		if patch.Status != nil {
			if !patch.Status.Valid() {
				return apperr.Validation("Unknown tournament status %q", *patch.Status)
			}
			t.Status = *patch.Status
		}
		if patch.MaxTeams != nil {
			if *patch.MaxTeams <= 0 {
				return apperr.Validation("Maximum teams must be a positive number")
			}
			if *patch.MaxTeams < len(t.RegisteredTeams) {
				return apperr.Validation("Maximum teams cannot be below the number of registered teams")
			}
			t.MaxTeams = *patch.MaxTeams
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Rules != nil {
			t.Rules = *patch.Rules
		}
		if patch.EndDate != nil {
			t.EndDate = *patch.EndDate
		}
		return nil
	})
	if err != nil {
		return bracket.Tournament{}, repoError(err, "Tournament not found", "failed to update tournament")
	}
	return updated, nil
}

// Delete removes the tournament together with all of its matches.
func (s *TournamentService) Delete(ctx context.Context, actor users.Actor, id int64) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("Only administrators can delete tournaments")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	deleted, err := s.repos.Tournaments.Delete(ctx, id)
	if err != nil {
		return apperr.Internal(err, "failed to delete tournament")
	}
	if !deleted {
		return apperr.NotFound("Tournament not found")
	}

	matches, err := s.repos.Matches.Filter(ctx, func(m bracket.Match) bool { return m.TournamentID == id })
	if err != nil {
		return apperr.Internal(err, "failed to list tournament matches")
	}
	for _, m := range matches {
		if _, err := s.repos.Matches.Delete(ctx, m.ID); err != nil {
			return apperr.Internal(err, "failed to delete tournament match")
		}
	}

	s.locks.Forget(id)
	logging.Default().InfoContext(ctx, "tournament deleted", "tournament_id", id, "matches", len(matches))
	return nil
}

func (s *TournamentService) Get(ctx context.Context, id int64) (bracket.Tournament, error) {
	t, err := s.repos.Tournaments.ReadByID(ctx, id)
	if err != nil {
		return bracket.Tournament{}, repoError(err, "Tournament not found", "failed to get tournament")
	}
	return t, nil
}

func (s *TournamentService) List(ctx context.Context) ([]bracket.Tournament, error) {
	all, err := s.repos.Tournaments.ReadAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list tournaments")
	}
	return all, nil
}

// RegisterTeam adds a team to the tournament if it is not already registered and there is room.
// Any signed-in user may register a team.
func (s *TournamentService) RegisterTeam(ctx context.Context, actor users.Actor, tournamentID, teamID int64) (bracket.Tournament, error) {
	if !actor.IsAuthenticated() {
		return bracket.Tournament{}, apperr.Forbidden("You must be signed in to register a team")
	}

	if _, err := s.repos.Teams.ReadByID(ctx, teamID); err != nil {
		return bracket.Tournament{}, repoError(err, "Tournament or team not found", "failed to get team")
	}

	updated, err := s.repos.Tournaments.Update(ctx, tournamentID, func(t *bracket.Tournament) error {
		if t.IsRegistered(teamID) {
			return apperr.Validation("Team is already registered")
		}
		if t.IsFull() {
			return apperr.Validation("Tournament is full")
		}
		t.RegisteredTeams = append(t.RegisteredTeams, teamID)
		return nil
	})
	if err != nil {
		return bracket.Tournament{}, repoError(err, "Tournament or team not found", "failed to register team")
	}
	return updated, nil
}

func (s *TournamentService) UnregisterTeam(ctx context.Context, actor users.Actor, tournamentID, teamID int64) (bracket.Tournament, error) {
	if !actor.IsAdmin() {
		return bracket.Tournament{}, apperr.Forbidden("Only administrators can unregister teams")
	}

	updated, err := s.repos.Tournaments.Update(ctx, tournamentID, func(t *bracket.Tournament) error {
		if !t.IsRegistered(teamID) {
			return apperr.Validation("Team is not registered")
		}
		t.RegisteredTeams = slices.DeleteFunc(t.RegisteredTeams, func(id int64) bool { return id == teamID })
		return nil
	})
	if err != nil {
		return bracket.Tournament{}, repoError(err, "Tournament not found", "failed to unregister team")
	}
	return updated, nil
}

type BracketResult struct {
	Tournament bracket.Tournament `json:"tournament"`
	Matches    []bracket.Match    `json:"matches"`
}

// GenerateBracket creates the tournament's matches from its registered teams and activates it.
// It can run once per tournament.
func (s *TournamentService) GenerateBracket(ctx context.Context, actor users.Actor, id int64) (BracketResult, error) {
	if !actor.IsAdmin() {
		return BracketResult{}, apperr.Forbidden("Only administrators can generate brackets")
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	t, err := s.repos.Tournaments.ReadByID(ctx, id)
	if err != nil {
		return BracketResult{}, repoError(err, "Tournament not found", "failed to get tournament")
	}
	if t.Bracket != nil {
		return BracketResult{}, apperr.Validation("Bracket has already been generated")
	}

	generated, err := bracket.Generate(t.Format, t.RegisteredTeams, t.ID, s.shuffle)
	if errors.Is(err, bracket.ErrNotEnoughTeams) {
		return BracketResult{}, apperr.Validation("At least 2 teams are required to generate bracket")
	}
	if err != nil {
		return BracketResult{}, apperr.Validation("Unknown tournament format %q", t.Format)
	}

	// Created one by one, in order: ascending ids are what ties siblings to their next match.
	matches := make([]bracket.Match, 0, len(generated.Matches))
	ids := make([]int64, 0, len(generated.Matches))
	for _, m := range generated.Matches {
		created, err := s.repos.Matches.Create(ctx, m)
		if err != nil {
			return BracketResult{}, apperr.Internal(err, "failed to create match")
		}
		matches = append(matches, created)
		ids = append(ids, created.ID)
	}

	descriptor := generated.Descriptor
	descriptor.AttachMatchIDs(ids)

	t, err = s.repos.Tournaments.Update(ctx, id, func(t *bracket.Tournament) error {
		t.Bracket = &descriptor
		t.Status = bracket.TournamentActive
		return nil
	})
	if err != nil {
		return BracketResult{}, apperr.Internal(err, "failed to save bracket")
	}

	logging.Default().InfoContext(ctx, "bracket generated",
		"tournament_id", id, "format", t.Format, "teams", len(t.RegisteredTeams), "matches", len(matches))

	result := BracketResult{Tournament: t, Matches: matches}
	s.notifier.Notify(id, EventBracketGenerated, result)
	return result, nil
}

type Standings struct {
	Format   bracket.Format          `json:"format"`
	League   []standings.LeagueRow   `json:"league,omitempty"`
	Knockout []standings.KnockoutRow `json:"knockout,omitempty"`
}

// Standings returns the league table or, for knockout tournaments, each team's progress.
// Knockout progress is empty until the bracket exists.
func (s *TournamentService) Standings(ctx context.Context, id int64) (Standings, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return Standings{}, err
	}

	matches, err := s.repos.Matches.Filter(ctx, func(m bracket.Match) bool { return m.TournamentID == id })
	if err != nil {
		return Standings{}, apperr.Internal(err, "failed to list tournament matches")
	}
	names, err := teamNames(ctx, s.repos.Teams)
	if err != nil {
		return Standings{}, apperr.Internal(err, "failed to list teams")
	}

	return buildStandings(t, matches, names), nil
}

func buildStandings(t bracket.Tournament, matches []bracket.Match, names map[int64]string) Standings {
	out := Standings{Format: t.Format}
	if t.Format == bracket.League {
		out.League = standings.League(t.RegisteredTeams, matches)
		for i := range out.League {
			out.League[i].TeamName = nameOr(names, &out.League[i].TeamID, unknownTeam)
		}
		return out
	}

	if t.Bracket == nil {
		out.Knockout = []standings.KnockoutRow{}
		return out
	}
	out.Knockout = standings.Knockout(t.RegisteredTeams, matches)
	for i := range out.Knockout {
		out.Knockout[i].TeamName = nameOr(names, &out.Knockout[i].TeamID, unknownTeam)
	}
	return out
}

// MatchView is a match with its team and tournament names resolved for display.
type MatchView struct {
	bracket.Match
	Team1Name      string `json:"team1Name"`
	Team2Name      string `json:"team2Name"`
	TournamentName string `json:"tournamentName"`
}

// Overview is everything the tournament page shows.
type Overview struct {
	Tournament bracket.Tournament `json:"tournament"`
	Rounds     [][]MatchView      `json:"rounds"`
	Teams      []bracket.Team     `json:"teams"`
	Standings  Standings          `json:"standings"`
}

// Overview loads the tournament, its matches and the teams concurrently and assembles the page data.
func (s *TournamentService) Overview(ctx context.Context, id int64) (Overview, error) {
	var (
		t       bracket.Tournament
		matches []bracket.Match
		teams   []bracket.Team
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		t, err = s.Get(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		matches, err = s.repos.Matches.Filter(gctx, func(m bracket.Match) bool { return m.TournamentID == id })
		return errors.Wrap(err, "failed to list tournament matches")
	})
	g.Go(func() error {
		var err error
		teams, err = s.repos.Teams.ReadAll(gctx)
		return errors.Wrap(err, "failed to list teams")
	})
	if err := g.Wait(); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return Overview{}, err
		}
		return Overview{}, apperr.Internal(err, "failed to load tournament overview")
	}

	names := make(map[int64]string, len(teams))
	for _, team := range teams {
		names[team.ID] = team.Name
	}

	var registered []bracket.Team
	for _, teamID := range t.RegisteredTeams {
		if i := slices.IndexFunc(teams, func(team bracket.Team) bool { return team.ID == teamID }); i >= 0 {
			registered = append(registered, teams[i])
		}
	}

	var rounds [][]MatchView
	for _, m := range matches {
		if m.Round < 1 {
			continue
		}
		for len(rounds) < m.Round {
			rounds = append(rounds, nil)
		}
		rounds[m.Round-1] = append(rounds[m.Round-1], MatchView{
			Match:          m,
			Team1Name:      nameOr(names, m.Team1ID, unresolvedTeam),
			Team2Name:      nameOr(names, m.Team2ID, unresolvedTeam),
			TournamentName: t.Name,
		})
	}

	return Overview{
		Tournament: t,
		Rounds:     rounds,
		Teams:      registered,
		Standings:  buildStandings(t, matches, names),
	}, nil
}
