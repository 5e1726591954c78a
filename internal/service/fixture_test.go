package service

import (
	"context"
	"sync"
	"testing"

	"github.com/AdamBeresnev/matchday/internal/apperr"
	"github.com/AdamBeresnev/matchday/internal/bracket"
	"github.com/AdamBeresnev/matchday/internal/store"
	users "github.com/AdamBeresnev/matchday/internal/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin     = users.Actor{UserID: uuid.MustParse("00000000-0000-0000-0000-0000000000aa"), Role: users.RoleAdmin}
	member    = users.Actor{UserID: uuid.MustParse("00000000-0000-0000-0000-0000000000bb"), Role: users.RoleUser}
	anonymous = users.Actor{}
)

type notification struct {
	TournamentID int64
	Event        string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []notification
}

func (n *recordingNotifier) Notify(tournamentID int64, event string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, notification{TournamentID: tournamentID, Event: event})
}

func (n *recordingNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e.Event == event {
			c++
		}
	}
	return c
}

type fixture struct {
	ctx         context.Context
	repos       store.Repositories
	notifier    *recordingNotifier
	tournaments *TournamentService
	matches     *MatchService
	teams       *TeamService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	repos := store.NewRepositories(store.NewMemoryStore())
	locks := NewTournamentLocks()
	notifier := &recordingNotifier{}

	return &fixture{
		ctx:         context.Background(),
		repos:       repos,
		notifier:    notifier,
		tournaments: NewTournamentService(repos, locks, notifier).WithShuffler(bracket.NoShuffle),
		matches:     NewMatchService(repos, locks, notifier),
		teams:       NewTeamService(repos),
	}
}

func (f *fixture) createTeams(t *testing.T, names ...string) []int64 {
	t.Helper()
	ids := make([]int64, len(names))
	for i, name := range names {
		team, err := f.teams.CreateTeam(f.ctx, admin, TeamInput{Name: name})
		require.NoError(t, err)
		ids[i] = team.ID
	}
	return ids
}

// tournament creates a tournament of the given format and registers teamIDs in order.
func (f *fixture) tournament(t *testing.T, format bracket.Format, maxTeams int, teamIDs ...int64) bracket.Tournament {
	t.Helper()
	created, err := f.tournaments.Create(f.ctx, admin, TournamentInput{
		Name:      "Cup",
		StartDate: "2026-05-01",
		Format:    format,
		MaxTeams:  maxTeams,
	})
	require.NoError(t, err)

	for _, teamID := range teamIDs {
		created, err = f.tournaments.RegisterTeam(f.ctx, member, created.ID, teamID)
		require.NoError(t, err)
	}
	return created
}

func (f *fixture) roundMatches(t *testing.T, tournamentID int64, round int) []bracket.Match {
	t.Helper()
	matches, err := f.repos.Matches.Filter(f.ctx, func(m bracket.Match) bool {
		return m.TournamentID == tournamentID && m.Round == round
	})
	require.NoError(t, err)
	return matches
}

func (f *fixture) match(t *testing.T, id int64) bracket.Match {
	t.Helper()
	m, err := f.repos.Matches.ReadByID(f.ctx, id)
	require.NoError(t, err)
	return m
}

func requireKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, kind, apperr.KindOf(err))
	if msg != "" {
		assert.Equal(t, msg, apperr.Message(err))
	}
}

func teamIDOf(m bracket.Match, slot bracket.Slot) int64 {
	id := m.SlotTeam(slot)
	if id == nil {
		return 0
	}
	return *id
}
