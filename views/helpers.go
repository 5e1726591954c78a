package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/AdamBeresnev/matchday/internal/bracket"
	"github.com/AdamBeresnev/matchday/internal/service"
	"github.com/AdamBeresnev/matchday/internal/standings"
	users "github.com/AdamBeresnev/matchday/internal/user"
)

func GetUser(ctx context.Context) *users.User {
	return users.UserFromContext(ctx)
}

func isAdmin(ctx context.Context) bool {
	return users.ActorFromContext(ctx).IsAdmin()
}

func tournamentURL(id int64) string {
	return fmt.Sprintf("/tournaments/%d", id)
}

func liveURL(id int64) string {
	return tournamentURL(id) + "/live"
}

func tournamentMeta(t bracket.Tournament) string {
	return fmt.Sprintf("%s · %s · starts %s", t.Format, t.Status, t.StartDate)
}

func teamCount(t bracket.Tournament) string {
	return fmt.Sprintf("%d/%d teams", len(t.RegisteredTeams), t.MaxTeams)
}

func score(s *int) string {
	if s == nil {
		return "-"
	}
	return fmt.Sprint(*s)
}

func statusLabel(s bracket.MatchStatus) string {
	switch s {
	case bracket.MatchPending:
		return "Waiting for teams"
	case bracket.MatchScheduled:
		return "Scheduled"
	case bracket.MatchCompleted:
		return "Final"
	}
	return string(s)
}

// matchStatus is the status line under a bracket match, with the kick-off when one is set.
func matchStatus(m service.MatchView) string {
	label := statusLabel(m.Status)
	if m.ScheduledDate == "" {
		return label
	}
	return label + " · " + strings.TrimSpace(m.ScheduledDate+" "+m.ScheduledTime)
}

func isWinner(m service.MatchView, teamID *int64) bool {
	return m.WinnerID != nil && teamID != nil && *m.WinnerID == *teamID
}

func leagueColumns(row standings.LeagueRow) []int {
	return []int{row.Played, row.Won, row.Drawn, row.Lost, row.GoalsFor, row.GoalsAgainst, row.GoalDifference, row.Points}
}

func providerLabel(provider string) string {
	if provider == "" {
		return ""
	}
	return strings.ToUpper(provider[:1]) + provider[1:]
}
