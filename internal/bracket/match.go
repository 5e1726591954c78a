package bracket

import "github.com/AdamBeresnev/matchday/internal/utils"

type MatchStatus string

const (
	MatchPending   MatchStatus = "pending"
	MatchScheduled MatchStatus = "scheduled"
	MatchCompleted MatchStatus = "completed"
)

type Slot int

const (
	Slot1 Slot = 1
	Slot2 Slot = 2
)

type Match struct {
	Meta
	TournamentID  int64       `json:"tournamentId"`
	Team1ID       *int64      `json:"team1Id"`
	Team2ID       *int64      `json:"team2Id"`
	Round         int         `json:"round"`
	Status        MatchStatus `json:"status"`
	Team1Score    *int        `json:"team1Score"`
	Team2Score    *int        `json:"team2Score"`
	WinnerID      *int64      `json:"winnerId"`
	ScheduledDate string      `json:"scheduledDate,omitempty"`
	ScheduledTime string      `json:"scheduledTime,omitempty"`
	Venue         string      `json:"venue,omitempty"`
	Notes         string      `json:"notes,omitempty"`
}

func (m *Match) Involves(teamID int64) bool {
	return (m.Team1ID != nil && *m.Team1ID == teamID) || (m.Team2ID != nil && *m.Team2ID == teamID)
}

func (m *Match) IsCompleted() bool {
	return m.Status == MatchCompleted
}

// Complete records both scores, derives the winner and marks the match completed.
// Equal scores leave WinnerID nil.
func (m *Match) Complete(team1Score, team2Score int) {
	m.Team1Score = &team1Score
	m.Team2Score = &team2Score
	m.Status = MatchCompleted
	m.WinnerID = Winner(m.Team1ID, m.Team2ID, team1Score, team2Score)
}

func Winner(team1ID, team2ID *int64, team1Score, team2Score int) *int64 {
	switch {
	case team1Score > team2Score:
		return utils.Clone(team1ID)
	case team2Score > team1Score:
		return utils.Clone(team2ID)
	}
	return nil
}

func (m *Match) SlotTeam(slot Slot) *int64 {
	if slot == Slot1 {
		return m.Team1ID
	}
	return m.Team2ID
}

func (m *Match) SetSlot(slot Slot, teamID int64) {
	if slot == Slot1 {
		m.Team1ID = &teamID
	} else {
		m.Team2ID = &teamID
	}
}

func (m *Match) SlotsFilled() bool {
	return m.Team1ID != nil && m.Team2ID != nil
}
