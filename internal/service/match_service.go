package service

import (
	"cmp"
	"context"
	"slices"

	"github.com/AdamBeresnev/matchday/internal/apperr"
	"github.com/AdamBeresnev/matchday/internal/bracket"
	"github.com/AdamBeresnev/matchday/internal/logging"
	"github.com/AdamBeresnev/matchday/internal/store"
	users "github.com/AdamBeresnev/matchday/internal/user"
)

const defaultListLimit = 10

type MatchService struct {
	repos    store.Repositories
	locks    *TournamentLocks
	notifier Notifier
}

func NewMatchService(repos store.Repositories, locks *TournamentLocks, notifier Notifier) *MatchService {
	return &MatchService{repos: repos, locks: locks, notifier: notifierOrNop(notifier)}
}

type MatchInput struct {
	TournamentID  int64  `json:"tournamentId"`
	Team1ID       int64  `json:"team1Id"`
	Team2ID       int64  `json:"team2Id"`
	Round         int    `json:"round" validate:"omitempty,min=1"`
	ScheduledDate string `json:"scheduledDate" validate:"omitempty,datetime=2006-01-02"`
	ScheduledTime string `json:"scheduledTime" validate:"omitempty,datetime=15:04"`
	Venue         string `json:"venue" validate:"max=200"`
	Notes         string `json:"notes" validate:"max=2000"`
}

// MatchPatch lists the fields an update may change. Nil fields are left alone.
type MatchPatch struct {
	Team1Score    *int                 `json:"team1Score" validate:"omitempty,min=0"`
	Team2Score    *int                 `json:"team2Score" validate:"omitempty,min=0"`
	Status        *bracket.MatchStatus `json:"status" validate:"omitempty,oneof=pending scheduled completed"`
	ScheduledDate *string              `json:"scheduledDate" validate:"omitempty,datetime=2006-01-02"`
	ScheduledTime *string              `json:"scheduledTime" validate:"omitempty,datetime=15:04"`
	Venue         *string              `json:"venue" validate:"omitempty,max=200"`
	Notes         *string              `json:"notes" validate:"omitempty,max=2000"`
}

type ResultInput struct {
	Team1Score *int `json:"team1Score" validate:"required,min=0"`
	Team2Score *int `json:"team2Score" validate:"required,min=0"`
}

// Create adds a scheduled match between two teams outside of bracket generation.
func (s *MatchService) Create(ctx context.Context, actor users.Actor, in MatchInput) (bracket.Match, error) {
	if !actor.IsAdmin() {
		return bracket.Match{}, apperr.Forbidden("Only administrators can create matches")
	}
	if in.TournamentID == 0 || in.Team1ID == 0 || in.Team2ID == 0 {
		return bracket.Match{}, apperr.Validation("Tournament and both teams are required")
	}
	if in.Team1ID == in.Team2ID {
		return bracket.Match{}, apperr.Validation("A team cannot play against itself")
	}
	if in.Round == 0 {
		in.Round = 1
	}
	if in.Round < 0 {
		return bracket.Match{}, apperr.Validation("Round must be a positive number")
	}

	unlock := s.locks.Lock(in.TournamentID)
	defer unlock()

	if _, err := s.repos.Tournaments.ReadByID(ctx, in.TournamentID); err != nil {
		return bracket.Match{}, repoError(err, "Tournament not found", "failed to get tournament")
	}

	created, err := s.repos.Matches.Create(ctx, bracket.Match{
		TournamentID:  in.TournamentID,
		Team1ID:       &in.Team1ID,
		Team2ID:       &in.Team2ID,
		Round:         in.Round,
		Status:        bracket.MatchScheduled,
		ScheduledDate: in.ScheduledDate,
		ScheduledTime: in.ScheduledTime,
		Venue:         in.Venue,
		Notes:         in.Notes,
	})
	if err != nil {
		return bracket.Match{}, apperr.Internal(err, "failed to create match")
	}

	s.notifier.Notify(created.TournamentID, EventMatchUpdated, created)
	return created, nil
}

// Update edits a match. When the patch leaves both scores set on a match that was not yet
// completed, the match is completed and its winner advances. Score edits on a completed match
// only rewrite the result.
func (s *MatchService) Update(ctx context.Context, actor users.Actor, id int64, patch MatchPatch) (bracket.Match, error) {
	if !actor.IsAdmin() {
		return bracket.Match{}, apperr.Forbidden("Only administrators can update matches")
	}
	if negative(patch.Team1Score) || negative(patch.Team2Score) {
		return bracket.Match{}, apperr.Validation("Scores cannot be negative")
	}

	current, err := s.repos.Matches.ReadByID(ctx, id)
	if err != nil {
		return bracket.Match{}, repoError(err, "Match not found", "failed to get match")
	}

	unlock := s.locks.Lock(current.TournamentID)
	defer unlock()

	var wasCompleted, completedNow bool
	updated, err := s.repos.Matches.Update(ctx, id, func(m *bracket.Match) error {
		wasCompleted = m.IsCompleted()

		if patch.Team1Score != nil || patch.Team2Score != nil {
			team1Score, team2Score := m.Team1Score, m.Team2Score
			if patch.Team1Score != nil {
				team1Score = patch.Team1Score
			}
			if patch.Team2Score != nil {
				team2Score = patch.Team2Score
			}

			if team1Score != nil && team2Score != nil {
				if !m.SlotsFilled() {
					return apperr.Validation("Both teams must be known before a result is recorded")
				}
				m.Complete(*team1Score, *team2Score)
				completedNow = !wasCompleted
			} else {
				m.Team1Score, m.Team2Score = team1Score, team2Score
			}
		}

		if patch.Status != nil && *patch.Status != m.Status {
			switch {
			case m.IsCompleted():
				return apperr.Validation("A completed match cannot be reopened")
			case *patch.Status == bracket.MatchCompleted:
				return apperr.Validation("Both scores are required to complete a match")
			case *patch.Status == bracket.MatchScheduled && !m.SlotsFilled():
				return apperr.Validation("Both teams must be known before a match is scheduled")
			}
			m.Status = *patch.Status
		}

		if patch.ScheduledDate != nil {
			m.ScheduledDate = *patch.ScheduledDate
		}
		if patch.ScheduledTime != nil {
			m.ScheduledTime = *patch.ScheduledTime
		}
		if patch.Venue != nil {
			m.Venue = *patch.Venue
		}
		if patch.Notes != nil {
			m.Notes = *patch.Notes
		}
		return nil
	})
	if err != nil {
		return bracket.Match{}, repoError(err, "Match not found", "failed to update match")
	}

	s.notifier.Notify(updated.TournamentID, EventMatchUpdated, updated)

	switch {
	case completedNow:
		if err := s.progress(ctx, updated); err != nil {
			return updated, err
		}
	case wasCompleted && (patch.Team1Score != nil || patch.Team2Score != nil):
		logging.Default().WarnContext(ctx, "result of a completed match edited, bracket not re-evaluated",
			"match_id", id, "tournament_id", updated.TournamentID)
	}
	return updated, nil
}

// RecordResult completes a scheduled match with its final score and advances the winner.
func (s *MatchService) RecordResult(ctx context.Context, actor users.Actor, id int64, team1Score, team2Score int) (bracket.Match, error) {
	if !actor.IsAdmin() {
		return bracket.Match{}, apperr.Forbidden("Only administrators can record match results")
	}
	if team1Score < 0 || team2Score < 0 {
		return bracket.Match{}, apperr.Validation("Scores cannot be negative")
	}

	current, err := s.repos.Matches.ReadByID(ctx, id)
	if err != nil {
		return bracket.Match{}, repoError(err, "Match not found", "failed to get match")
	}

	unlock := s.locks.Lock(current.TournamentID)
	defer unlock()

	updated, err := s.repos.Matches.Update(ctx, id, func(m *bracket.Match) error {
		switch m.Status {
		case bracket.MatchCompleted:
			return apperr.Validation("Match result has already been recorded")
		case bracket.MatchPending:
			return apperr.Validation("Match is not ready for a result, both teams must be known")
		}
		m.Complete(team1Score, team2Score)
		return nil
	})
	if err != nil {
		return bracket.Match{}, repoError(err, "Match not found", "failed to record result")
	}

	logging.Default().InfoContext(ctx, "match result recorded",
		"match_id", id, "tournament_id", updated.TournamentID, "score", []int{team1Score, team2Score})
	s.notifier.Notify(updated.TournamentID, EventMatchUpdated, updated)

	if err := s.progress(ctx, updated); err != nil {
		return updated, err
	}
	return updated, nil
}

// progress moves the winner of a completed knockout match into its next-round slot. The caller
// holds the tournament lock. A failure here leaves the completed match as written.
func (s *MatchService) progress(ctx context.Context, completed bracket.Match) error {
	t, err := s.repos.Tournaments.ReadByID(ctx, completed.TournamentID)
	if isNotFound(err) {
		return nil
	}
	if err != nil {
		return apperr.Internal(err, "failed to get tournament")
	}
	if t.Format != bracket.Knockout || t.Bracket == nil {
		return nil
	}

	if completed.WinnerID == nil {
		logging.Default().WarnContext(ctx, "knockout match drawn, winner cannot advance",
			"match_id", completed.ID, "tournament_id", t.ID, "round", completed.Round)
		return nil
	}

	roundMatches, err := s.repos.Matches.Filter(ctx, func(m bracket.Match) bool {
		return m.TournamentID == t.ID && m.Round == completed.Round
	})
	if err != nil {
		return apperr.Internal(err, "failed to list round matches")
	}
	nextRoundMatches, err := s.repos.Matches.Filter(ctx, func(m bracket.Match) bool {
		return m.TournamentID == t.ID && m.Round == completed.Round+1
	})
	if err != nil {
		return apperr.Internal(err, "failed to list next round matches")
	}

	adv, ok := bracket.Advance(completed, roundMatches, nextRoundMatches)
	if !ok {
		return nil
	}

	next, err := s.repos.Matches.Update(ctx, adv.NextMatchID, func(m *bracket.Match) error {
		adv.Apply(m)
		return nil
	})
	if err != nil {
		return apperr.Internal(err, "failed to advance winner")
	}

	logging.Default().InfoContext(ctx, "winner advanced",
		"match_id", completed.ID, "next_match_id", next.ID, "slot", int(adv.Slot), "team_id", adv.TeamID)
	s.notifier.Notify(t.ID, EventMatchUpdated, next)

	if adv.Ready {
		logging.Default().InfoContext(ctx, "next round match scheduled",
			"match_id", next.ID, "tournament_id", t.ID, "round", next.Round)
		s.notifier.Notify(t.ID, EventMatchReady, next)
	}
	return nil
}

func (s *MatchService) Delete(ctx context.Context, actor users.Actor, id int64) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("Only administrators can delete matches")
	}

	current, err := s.repos.Matches.ReadByID(ctx, id)
	if err != nil {
		return repoError(err, "Match not found", "failed to get match")
	}

	unlock := s.locks.Lock(current.TournamentID)
	defer unlock()

	deleted, err := s.repos.Matches.Delete(ctx, id)
	if err != nil {
		return apperr.Internal(err, "failed to delete match")
	}
	if !deleted {
		return apperr.NotFound("Match not found")
	}
	return nil
}

func (s *MatchService) Get(ctx context.Context, id int64) (MatchView, error) {
	m, err := s.repos.Matches.ReadByID(ctx, id)
	if err != nil {
		return MatchView{}, repoError(err, "Match not found", "failed to get match")
	}
	views, err := s.withNames(ctx, []bracket.Match{m})
	if err != nil {
		return MatchView{}, err
	}
	return views[0], nil
}

func (s *MatchService) List(ctx context.Context) ([]MatchView, error) {
	return s.list(ctx, func(bracket.Match) bool { return true })
}

func (s *MatchService) ListByTournament(ctx context.Context, tournamentID int64) ([]MatchView, error) {
	return s.list(ctx, func(m bracket.Match) bool { return m.TournamentID == tournamentID })
}

func (s *MatchService) ListByTeam(ctx context.Context, teamID int64) ([]MatchView, error) {
	return s.list(ctx, func(m bracket.Match) bool { return m.Involves(teamID) })
}

// Upcoming returns up to limit scheduled matches, dated ones first by date and time, the rest
// by id.
func (s *MatchService) Upcoming(ctx context.Context, limit int) ([]MatchView, error) {
	matches, err := s.repos.Matches.Filter(ctx, func(m bracket.Match) bool { return m.Status == bracket.MatchScheduled })
	if err != nil {
		return nil, apperr.Internal(err, "failed to list matches")
	}

	slices.SortStableFunc(matches, func(a, b bracket.Match) int {
		aDated, bDated := a.ScheduledDate != "", b.ScheduledDate != ""
		switch {
		case aDated && bDated:
			return cmp.Or(
				cmp.Compare(a.ScheduledDate, b.ScheduledDate),
				cmp.Compare(a.ScheduledTime, b.ScheduledTime),
				cmp.Compare(a.ID, b.ID),
			)
		case aDated:
			return -1
		case bDated:
			return 1
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return s.withNames(ctx, truncate(matches, limit))
}

// RecentResults returns up to limit completed matches, most recently updated first.
func (s *MatchService) RecentResults(ctx context.Context, limit int) ([]MatchView, error) {
	matches, err := s.repos.Matches.Filter(ctx, func(m bracket.Match) bool { return m.IsCompleted() })
	if err != nil {
		return nil, apperr.Internal(err, "failed to list matches")
	}

	slices.SortStableFunc(matches, func(a, b bracket.Match) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(b.ID, a.ID))
	})
	return s.withNames(ctx, truncate(matches, limit))
}

type HeadToHead struct {
	Match        MatchView `json:"match"`
	Team1Wins    int       `json:"team1Wins"`
	Team2Wins    int       `json:"team2Wins"`
	Draws        int       `json:"draws"`
	TotalMatches int       `json:"totalMatches"`
}

// HeadToHead summarizes the other completed meetings between the two teams of a match.
func (s *MatchService) HeadToHead(ctx context.Context, matchID int64) (HeadToHead, error) {
	view, err := s.Get(ctx, matchID)
	if err != nil {
		return HeadToHead{}, err
	}

	out := HeadToHead{Match: view}
	if !view.SlotsFilled() {
		return out, nil
	}
	team1, team2 := *view.Team1ID, *view.Team2ID

	meetings, err := s.repos.Matches.Filter(ctx, func(m bracket.Match) bool {
		return m.ID != matchID && m.IsCompleted() && m.Involves(team1) && m.Involves(team2)
	})
	if err != nil {
		return HeadToHead{}, apperr.Internal(err, "failed to list matches")
	}

	for _, m := range meetings {
		switch {
		case m.WinnerID == nil:
			out.Draws++
		case *m.WinnerID == team1:
			out.Team1Wins++
		case *m.WinnerID == team2:
			out.Team2Wins++
		}
	}
	out.TotalMatches = len(meetings)
	return out, nil
}

func (s *MatchService) list(ctx context.Context, keep func(bracket.Match) bool) ([]MatchView, error) {
	matches, err := s.repos.Matches.Filter(ctx, keep)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list matches")
	}
	return s.withNames(ctx, matches)
}

func (s *MatchService) withNames(ctx context.Context, matches []bracket.Match) ([]MatchView, error) {
	names, err := teamNames(ctx, s.repos.Teams)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list teams")
	}
	tournaments, err := s.repos.Tournaments.ReadAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list tournaments")
	}
	tournamentNames := make(map[int64]string, len(tournaments))
	for _, t := range tournaments {
		tournamentNames[t.ID] = t.Name
	}

	views := make([]MatchView, len(matches))
	for i, m := range matches {
		views[i] = MatchView{
			Match:          m,
			Team1Name:      nameOr(names, m.Team1ID, unresolvedTeam),
			Team2Name:      nameOr(names, m.Team2ID, unresolvedTeam),
			TournamentName: nameOr(tournamentNames, &m.TournamentID, unknownTournament),
		}
	}
	return views, nil
}

func truncate(matches []bracket.Match, limit int) []bracket.Match {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if len(matches) > limit {
		return matches[:limit]
	}
	return matches
}

func negative(v *int) bool {
	return v != nil && *v < 0
}
