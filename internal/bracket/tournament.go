package bracket

type TournamentStatus string

const (
	TournamentUpcoming  TournamentStatus = "upcoming"
	TournamentActive    TournamentStatus = "active"
	TournamentCompleted TournamentStatus = "completed"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case TournamentUpcoming, TournamentActive, TournamentCompleted:
		return true
	}
	return false
}

type Format string

const (
	Knockout Format = "knockout"
	League   Format = "league"
)

func (f Format) Valid() bool {
	return f == Knockout || f == League
}

const DefaultMaxTeams = 16

type Tournament struct {
	Meta
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Rules           string           `json:"rules"`
	StartDate       string           `json:"startDate"`
	EndDate         string           `json:"endDate"`
	Format          Format           `json:"format"`
	Status          TournamentStatus `json:"status"`
	MaxTeams        int              `json:"maxTeams"`
	RegisteredTeams []int64          `json:"registeredTeams"`
	Bracket         *Descriptor      `json:"bracket"`
}

func (t *Tournament) IsRegistered(teamID int64) bool {
	for _, id := range t.RegisteredTeams {
		if id == teamID {
			return true
		}
	}
	return false
}

func (t *Tournament) IsFull() bool {
	return len(t.RegisteredTeams) >= t.MaxTeams
}

// Descriptor is the bracket structure stored on a tournament once it has been generated.
// League tournaments only record their type.
type Descriptor struct {
	Type   Format        `json:"type"`
	Rounds [][]MatchSpec `json:"rounds,omitempty"`
}

type MatchSpec struct {
	MatchID int64  `json:"matchId,omitempty"`
	Round   int    `json:"round"`
	Team1ID *int64 `json:"team1Id"`
	Team2ID *int64 `json:"team2Id"`
}
