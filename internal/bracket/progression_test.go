package bracket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(v int64) *int64 { return &v }

func completed(matchID int64, team1, team2 int64, s1, s2 int) Match {
	m := Match{Meta: Meta{ID: matchID}, Round: 1, Team1ID: id(team1), Team2ID: id(team2), Status: MatchScheduled}
	m.Complete(s1, s2)
	return m
}

func placeholders(ids ...int64) []Match {
	out := make([]Match, len(ids))
	for i, matchID := range ids {
		out[i] = Match{Meta: Meta{ID: matchID}, Round: 2, Status: MatchPending}
	}
	return out
}

func TestMatchComplete(t *testing.T) {
	m := completed(1, 10, 20, 2, 1)
	assert.Equal(t, MatchCompleted, m.Status)
	require.NotNil(t, m.WinnerID)
	assert.Equal(t, int64(10), *m.WinnerID)

	m = completed(1, 10, 20, 0, 3)
	require.NotNil(t, m.WinnerID)
	assert.Equal(t, int64(20), *m.WinnerID)

	m = completed(1, 10, 20, 1, 1)
	assert.Nil(t, m.WinnerID)
	assert.Equal(t, 1, *m.Team1Score)
	assert.Equal(t, 1, *m.Team2Score)
}

func TestAdvanceSlotMath(t *testing.T) {
	// Eight round 1 matches feeding four round 2 matches, passed in scrambled order
	round := []Match{
		completed(8, 15, 16, 1, 0),
		completed(3, 5, 6, 1, 0),
		completed(1, 1, 2, 1, 0),
		completed(6, 11, 12, 1, 0),
		completed(2, 3, 4, 1, 0),
		completed(7, 13, 14, 1, 0),
		completed(4, 7, 8, 1, 0),
		completed(5, 9, 10, 1, 0),
	}
	next := placeholders(12, 9, 11, 10)

	expected := map[int64]struct {
		next int64
		slot Slot
	}{
		1: {9, Slot1}, 2: {9, Slot2},
		3: {10, Slot1}, 4: {10, Slot2},
		5: {11, Slot1}, 6: {11, Slot2},
		7: {12, Slot1}, 8: {12, Slot2},
	}

	for _, m := range round {
		adv, ok := Advance(m, round, next)
		require.True(t, ok, "match %d", m.ID)
		assert.Equal(t, expected[m.ID].next, adv.NextMatchID, "match %d", m.ID)
		assert.Equal(t, expected[m.ID].slot, adv.Slot, "match %d", m.ID)
		assert.Equal(t, *m.WinnerID, adv.TeamID)
	}
}

func TestAdvanceReadyWhenSecondSlotFilled(t *testing.T) {
	first := completed(1, 10, 20, 2, 1)
	second := completed(2, 30, 40, 1, 0)
	round := []Match{first, second}
	next := placeholders(3)

	adv, ok := Advance(first, round, next)
	require.True(t, ok)
	assert.False(t, adv.Ready)
	adv.Apply(&next[0])
	assert.Equal(t, MatchPending, next[0].Status)
	assert.Equal(t, int64(10), *next[0].Team1ID)
	assert.Nil(t, next[0].Team2ID)

	adv, ok = Advance(second, round, next)
	require.True(t, ok)
	assert.True(t, adv.Ready)
	adv.Apply(&next[0])
	assert.Equal(t, MatchScheduled, next[0].Status)
	assert.Equal(t, int64(30), *next[0].Team2ID)
}

func TestAdvanceStops(t *testing.T) {
	t.Run("draw", func(t *testing.T) {
		draw := completed(1, 10, 20, 1, 1)
		_, ok := Advance(draw, []Match{draw}, placeholders(2))
		assert.False(t, ok)
	})

	t.Run("final", func(t *testing.T) {
		final := completed(3, 10, 30, 3, 2)
		_, ok := Advance(final, []Match{final}, nil)
		assert.False(t, ok)
	})

	t.Run("out of range", func(t *testing.T) {
		// Three matches feeding a single one: the third has no slot
		round := []Match{completed(1, 1, 2, 1, 0), completed(2, 3, 4, 1, 0), completed(3, 5, 6, 1, 0)}
		_, ok := Advance(round[2], round, placeholders(4))
		assert.False(t, ok)
	})

	t.Run("unknown sibling", func(t *testing.T) {
		m := completed(9, 1, 2, 1, 0)
		_, ok := Advance(m, []Match{completed(1, 3, 4, 1, 0)}, placeholders(2))
		assert.False(t, ok)
	})
}
