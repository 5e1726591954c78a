package bracket

import (
	"math/rand/v2"

	"github.com/AdamBeresnev/matchday/internal/utils"
	"github.com/cockroachdb/errors"
)

var (
	ErrNotEnoughTeams = errors.New("at least 2 teams are required to generate bracket")
	ErrUnknownFormat  = errors.New("unknown tournament format")
)

// Shuffler permutes team ids in place before knockout pairing.
type Shuffler func(ids []int64)

// RandomShuffle is a uniform Fisher-Yates shuffle.
func RandomShuffle(ids []int64) {
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
}

// NoShuffle keeps registration order, so pairings are predictable in tests.
func NoShuffle([]int64) {}

type Generated struct {
	Matches    []Match
	Descriptor Descriptor
}

// Generate builds the initial match records for a tournament. Matches come back in creation
// order (round by round) and must be persisted in that order: ascending ids encode which
// matches feed the same next-round slot.
func Generate(format Format, teamIDs []int64, tournamentID int64, shuffle Shuffler) (Generated, error) {
	if len(teamIDs) < 2 {
		return Generated{}, ErrNotEnoughTeams
	}

	switch format {
	case Knockout:
		if shuffle == nil {
			shuffle = RandomShuffle
		}
		return generateKnockout(teamIDs, tournamentID, shuffle), nil
	case League:
		return generateLeague(teamIDs, tournamentID), nil
	}
	return Generated{}, errors.Wrapf(ErrUnknownFormat, "format %q", format)
}

func generateKnockout(teamIDs []int64, tournamentID int64, shuffle Shuffler) Generated {
	order := make([]int64, len(teamIDs))
	copy(order, teamIDs)
	shuffle(order)

	var rounds [][]MatchSpec

	// With an odd count the last team gets no round 1 match at all.
	first := make([]MatchSpec, 0, len(order)/2)
	for i := 0; i+1 < len(order); i += 2 {
		first = append(first, MatchSpec{
			Round:   1,
			Team1ID: &order[i],
			Team2ID: &order[i+1],
		})
	}
	rounds = append(rounds, first)

	// Later rounds are empty placeholders until winners arrive
	for count, round := len(first), 2; count > 1; round++ {
		next := make([]MatchSpec, count/2)
		for i := range next {
			next[i] = MatchSpec{Round: round}
		}
		rounds = append(rounds, next)
		count = len(next)
	}

	var matches []Match
	for _, specs := range rounds {
		for _, spec := range specs {
			m := Match{
				TournamentID: tournamentID,
				Round:        spec.Round,
				Status:       MatchPending,
			}
			if spec.Team1ID != nil && spec.Team2ID != nil {
				m.Team1ID = utils.Clone(spec.Team1ID)
				m.Team2ID = utils.Clone(spec.Team2ID)
				m.Status = MatchScheduled
			}
			matches = append(matches, m)
		}
	}

	return Generated{
		Matches:    matches,
		Descriptor: Descriptor{Type: Knockout, Rounds: rounds},
	}
}

// Single round-robin, no return fixtures
func generateLeague(teamIDs []int64, tournamentID int64) Generated {
	matches := make([]Match, 0, len(teamIDs)*(len(teamIDs)-1)/2)
	for i := 0; i < len(teamIDs); i++ {
		for j := i + 1; j < len(teamIDs); j++ {
			matches = append(matches, Match{
				TournamentID: tournamentID,
				Team1ID:      utils.Clone(&teamIDs[i]),
				Team2ID:      utils.Clone(&teamIDs[j]),
				Round:        1,
				Status:       MatchScheduled,
			})
		}
	}

	return Generated{
		Matches:    matches,
		Descriptor: Descriptor{Type: League},
	}
}

// AttachMatchIDs writes persisted match ids back into the descriptor. ids must be in the
// same order as Generated.Matches.
func (d *Descriptor) AttachMatchIDs(ids []int64) {
	i := 0
	for r := range d.Rounds {
		for s := range d.Rounds[r] {
			if i >= len(ids) {
				return
			}
			d.Rounds[r][s].MatchID = ids[i]
			i++
		}
	}
}
