package bracket

import "slices"

// Advancement says where a knockout winner goes in the next round.
type Advancement struct {
	NextMatchID int64
	Slot        Slot
	TeamID      int64
	// Ready is set when the assignment fills the last open slot of a pending match.
	Ready bool
}

// Advance places the winner of completed into the next round. roundMatches are all matches of
// the completed match's round and nextRoundMatches all matches of the following round; both are
// ordered by id here, so callers may pass them in any order.
//
// Sibling i feeds next match i/2, slot 1 when i is even and slot 2 otherwise. It returns false
// when there is nothing to do: a draw, the final, or a bracket whose round sizes do not halve.
func Advance(completed Match, roundMatches, nextRoundMatches []Match) (Advancement, bool) {
	if completed.WinnerID == nil {
		return Advancement{}, false
	}

	siblings := sortedByID(roundMatches)
	siblingIndex := slices.IndexFunc(siblings, func(m Match) bool {
		return m.ID == completed.ID
	})
	if siblingIndex < 0 {
		return Advancement{}, false
	}

	next := sortedByID(nextRoundMatches)
	nextIndex := siblingIndex / 2
	if nextIndex >= len(next) {
		return Advancement{}, false
	}

	target := next[nextIndex]
	slot := Slot1
	if siblingIndex%2 != 0 {
		slot = Slot2
	}
	target.SetSlot(slot, *completed.WinnerID)

	return Advancement{
		NextMatchID: target.ID,
		Slot:        slot,
		TeamID:      *completed.WinnerID,
		Ready:       target.Status == MatchPending && target.SlotsFilled(),
	}, true
}

// Apply writes the advancement into the next-round match and schedules it once both slots
// are known.
func (a Advancement) Apply(m *Match) {
	m.SetSlot(a.Slot, a.TeamID)
	if m.Status == MatchPending && m.SlotsFilled() {
		m.Status = MatchScheduled
	}
}

func sortedByID(matches []Match) []Match {
	out := slices.Clone(matches)
	slices.SortFunc(out, func(a, b Match) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
	return out
}
