// Package standings derives league tables and knockout progress from completed matches.
package standings

import (
	"fmt"
	"slices"

	"github.com/AdamBeresnev/matchday/internal/bracket"
)

const (
	PointsWin  = 3
	PointsDraw = 1
)

type LeagueRow struct {
	TeamID         int64  `json:"teamId"`
	TeamName       string `json:"teamName"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	Points         int    `json:"points"`
}

type KnockoutRow struct {
	TeamID       int64  `json:"teamId"`
	TeamName     string `json:"teamName"`
	CurrentRound int    `json:"currentRound"`
	IsEliminated bool   `json:"isEliminated"`
	Status       string `json:"status"`
}

// League builds the table for teamIDs. Rows are ordered by points, then goal difference, then
// goals scored; anything still tied keeps registration order.
func League(teamIDs []int64, matches []bracket.Match) []LeagueRow {
	rows := make([]LeagueRow, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		row := LeagueRow{TeamID: teamID}
		for _, m := range matches {
			if !m.IsCompleted() || !m.Involves(teamID) || m.Team1Score == nil || m.Team2Score == nil {
				continue
			}

			own, other := *m.Team1Score, *m.Team2Score
			if m.Team1ID == nil || *m.Team1ID != teamID {
				own, other = other, own
			}

			row.Played++
			row.GoalsFor += own
			row.GoalsAgainst += other
			switch {
			case own > other:
				row.Won++
			case own == other:
				row.Drawn++
			default:
				row.Lost++
			}
		}
		row.GoalDifference = row.GoalsFor - row.GoalsAgainst
		row.Points = PointsWin*row.Won + PointsDraw*row.Drawn
		rows = append(rows, row)
	}

	slices.SortStableFunc(rows, func(a, b LeagueRow) int {
		if a.Points != b.Points {
			return b.Points - a.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return b.GoalDifference - a.GoalDifference
		}
		return b.GoalsFor - a.GoalsFor
	})
	return rows
}

// Knockout reports how far each team has got. A completed match the team did not win
// eliminates it, draws included.
func Knockout(teamIDs []int64, matches []bracket.Match) []KnockoutRow {
	rows := make([]KnockoutRow, 0, len(teamIDs))
	for _, teamID := range teamIDs {
		row := KnockoutRow{TeamID: teamID}
		for _, m := range matches {
			if !m.IsCompleted() || !m.Involves(teamID) {
				continue
			}
			if m.WinnerID == nil || *m.WinnerID != teamID {
				row.IsEliminated = true
			} else if m.Round > row.CurrentRound {
				row.CurrentRound = m.Round
			}
		}
		row.Status = progressLabel(row)
		rows = append(rows, row)
	}
	return rows
}

func progressLabel(row KnockoutRow) string {
	switch {
	case row.IsEliminated:
		return "Eliminated"
	case row.CurrentRound > 0:
		return fmt.Sprintf("Round %d", row.CurrentRound)
	}
	return "First Round"
}
