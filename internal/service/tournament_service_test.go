package service

import (
	"testing"

	"github.com/AdamBeresnev/matchday/internal/apperr"
	"github.com/AdamBeresnev/matchday/internal/bracket"
	"github.com/AdamBeresnev/matchday/internal/standings"
	"github.com/AdamBeresnev/matchday/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestKnockoutTournamentPlaysToFinal(t *testing.T) {
	f := newFixture(t)
	ids := f.createTeams(t, "A", "B", "C", "D")
	a, b, c, d := ids[0], ids[1], ids[2], ids[3]
	tournament := f.tournament(t, bracket.Knockout, 4, ids...)

	result, err := f.tournaments.GenerateBracket(f.ctx, admin, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentActive, result.Tournament.Status)
	require.Len(t, result.Matches, 3)

	round1 := f.roundMatches(t, tournament.ID, 1)
	require.Len(t, round1, 2)
	assert.Equal(t, []int64{a, b}, []int64{teamIDOf(round1[0], bracket.Slot1), teamIDOf(round1[0], bracket.Slot2)})
	assert.Equal(t, []int64{c, d}, []int64{teamIDOf(round1[1], bracket.Slot1), teamIDOf(round1[1], bracket.Slot2)})

	round2 := f.roundMatches(t, tournament.ID, 2)
	require.Len(t, round2, 1)
	final := round2[0]
	assert.Nil(t, final.Team1ID)
	assert.Nil(t, final.Team2ID)
	assert.Equal(t, bracket.MatchPending, final.Status)

	_, err = f.matches.RecordResult(f.ctx, admin, round1[0].ID, 2, 1)
	require.NoError(t, err)
	final = f.match(t, final.ID)
	assert.Equal(t, a, teamIDOf(final, bracket.Slot1))
	assert.Nil(t, final.Team2ID)
	assert.Equal(t, bracket.MatchPending, final.Status)

	_, err = f.matches.RecordResult(f.ctx, admin, round1[1].ID, 1, 0)
	require.NoError(t, err)
	final = f.match(t, final.ID)
	assert.Equal(t, c, teamIDOf(final, bracket.Slot2))
	assert.Equal(t, bracket.MatchScheduled, final.Status)

	decided, err := f.matches.RecordResult(f.ctx, admin, final.ID, 3, 2)
	require.NoError(t, err)
	require.NotNil(t, decided.WinnerID)
	assert.Equal(t, a, *decided.WinnerID)

	table, err := f.tournaments.Standings(f.ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.Knockout, table.Format)
	assert.Equal(t, []standings.KnockoutRow{
		{TeamID: a, TeamName: "A", CurrentRound: 2, Status: "Round 2"},
		{TeamID: b, TeamName: "B", IsEliminated: true, Status: "Eliminated"},
		{TeamID: c, TeamName: "C", CurrentRound: 1, IsEliminated: true, Status: "Eliminated"},
		{TeamID: d, TeamName: "D", IsEliminated: true, Status: "Eliminated"},
	}, table.Knockout)

	// Nothing ever completes a tournament on its own
	after, err := f.tournaments.Get(f.ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, bracket.TournamentActive, after.Status)
}

func TestLeagueTournamentStandings(t *testing.T) {
	f := newFixture(t)
	ids := f.createTeams(t, "X", "Y", "Z")
	x, y, z := ids[0], ids[1], ids[2]
	tournament := f.tournament(t, bracket.League, 0, ids...)

	result, err := f.tournaments.GenerateBracket(f.ctx, admin, tournament.ID)
	require.NoError(t, err)
	require.Len(t, result.Matches, 3)
	assert.Equal(t, &bracket.Descriptor{Type: bracket.League}, result.Tournament.Bracket)

	scores := map[[2]int64][2]int{
		{x, y}: {2, 0},
		{x, z}: {1, 1},
		{y, z}: {1, 0},
	}
	for _, m := range result.Matches {
		score := scores[[2]int64{*m.Team1ID, *m.Team2ID}]
		_, err := f.matches.RecordResult(f.ctx, admin, m.ID, score[0], score[1])
		require.NoError(t, err)
	}

	table, err := f.tournaments.Standings(f.ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, table.League, 3)

	assert.Equal(t, []int64{x, y, z}, []int64{table.League[0].TeamID, table.League[1].TeamID, table.League[2].TeamID})
	assert.Equal(t, []int{4, 3, 1}, []int{table.League[0].Points, table.League[1].Points, table.League[2].Points})
	assert.Equal(t, "X", table.League[0].TeamName)
	assert.Equal(t, 1, table.League[2].Drawn)
	assert.Equal(t, 1, table.League[2].Lost)
}

func TestCreateTournamentDefaultsAndValidation(t *testing.T) {
	f := newFixture(t)

	created, err := f.tournaments.Create(f.ctx, admin, TournamentInput{Name: " Summer Cup ", StartDate: "2026-07-01"})
	require.NoError(t, err)
	assert.Equal(t, "Summer Cup", created.Name)
	assert.Equal(t, bracket.Knockout, created.Format)
	assert.Equal(t, bracket.TournamentUpcoming, created.Status)
	assert.Equal(t, bracket.DefaultMaxTeams, created.MaxTeams)
	assert.Empty(t, created.RegisteredTeams)
	assert.Nil(t, created.Bracket)

	testCases := []struct {
		name  string
		input func() TournamentInput
		kind  apperr.Kind
		msg   string
	}{
		{
			name:  "missing name",
			input: func() TournamentInput { return TournamentInput{StartDate: "2026-07-01"} },
			kind:  apperr.KindValidation,
			msg:   "Tournament name and start date are required",
		},
		{
			name:  "missing start date",
			input: func() TournamentInput { return TournamentInput{Name: "Cup"} },
			kind:  apperr.KindValidation,
			msg:   "Tournament name and start date are required",
		},
		{
			name:  "unknown format",
			input: func() TournamentInput { return TournamentInput{Name: "Cup", StartDate: "2026-07-01", Format: "swiss"} },
			kind:  apperr.KindValidation,
		},
		{
			name:  "negative capacity",
			input: func() TournamentInput { return TournamentInput{Name: "Cup", StartDate: "2026-07-01", MaxTeams: -2} },
			kind:  apperr.KindValidation,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.tournaments.Create(f.ctx, admin, tc.input())
			requireKind(t, err, tc.kind, tc.msg)
		})
	}

	_, err = f.tournaments.Create(f.ctx, member, TournamentInput{Name: "Cup", StartDate: "2026-07-01"})
	requireKind(t, err, apperr.KindForbidden, "Only administrators can create tournaments")
}

func TestRegisterTeamOverCapacity(t *testing.T) {
	f := newFixture(t)
	ids := f.createTeams(t, "A", "B", "C", "D", "E")
	tournament := f.tournament(t, bracket.Knockout, 4, ids[:4]...)

	_, err := f.tournaments.RegisterTeam(f.ctx, member, tournament.ID, ids[4])
	requireKind(t, err, apperr.KindValidation, "Tournament is full")

	after, err := f.tournaments.Get(f.ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, ids[:4], after.RegisteredTeams)
}

func TestRegisterTeamErrors(t *testing.T) {
	f := newFixture(t)
	ids := f.createTeams(t, "A")
	tournament := f.tournament(t, bracket.Knockout, 4, ids[0])

	_, err := f.tournaments.RegisterTeam(f.ctx, member, tournament.ID, ids[0])
	requireKind(t, err, apperr.KindValidation, "Team is already registered")

	_, err = f.tournaments.RegisterTeam(f.ctx, member, tournament.ID, 404)
	requireKind(t, err, apperr.KindNotFound, "Tournament or team not found")

	_, err = f.tournaments.RegisterTeam(f.ctx, member, 404, ids[0])
	requireKind(t, err, apperr.KindNotFound, "Tournament or team not found")

	_, err = f.tournaments.RegisterTeam(f.ctx, anonymous, tournament.ID, ids[0])
	requireKind(t, err, apperr.KindForbidden, "")
}

func TestUnregisterTeam(t *testing.T) {
	f := newFixture(t)
	ids := f.createTeams(t, "A", "B", "C")
	tournament := f.tournament(t, bracket.League, 4, ids...)

	_, err := f.tournaments.UnregisterTeam(f.ctx, member, tournament.ID, ids[1])
	requireKind(t, err, apperr.KindForbidden, "Only administrators can unregister teams")

	updated, err := f.tournaments.UnregisterTeam(f.ctx, admin, tournament.ID, ids[1])
	require.NoError(t, err)
	assert.Equal(t, []int64{ids[0], ids[2]}, updated.RegisteredTeams)

	_, err = f.tournaments.UnregisterTeam(f.ctx, admin, tournament.ID, ids[1])
	requireKind(t, err, apperr.KindValidation, "Team is not registered")

	_, err = f.tournaments.UnregisterTeam(f.ctx, admin, 404, ids[1])
	requireKind(t, err, apperr.KindNotFound, "Tournament not found")
}

func TestGenerateBracketRules(t *testing.T) {
	f := newFixture(t)
	ids := f.createTeams(t, "A", "B")

	lonely := f.tournament(t, bracket.Knockout, 4, ids[0])
	_, err := f.tournaments.GenerateBracket(f.ctx, admin, lonely.ID)
	requireKind(t, err, apperr.KindValidation, "At least 2 teams are required to generate bracket")

	tournament := f.tournament(t, bracket.Knockout, 4, ids...)
	_, err = f.tournaments.GenerateBracket(f.ctx, member, tournament.ID)
	requireKind(t, err, apperr.KindForbidden, "Only administrators can generate brackets")

	_, err = f.tournaments.GenerateBracket(f.ctx, admin, tournament.ID)
	require.NoError(t, err)

	_, err = f.tournaments.GenerateBracket(f.ctx, admin, tournament.ID)
	requireKind(t, err, apperr.KindValidation, "Bracket has already been generated")

	matches, err := f.matches.ListByTournament(f.ctx, tournament.ID)
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	_, err = f.tournaments.GenerateBracket(f.ctx, admin, 404)
	requireKind(t, err, apperr.KindNotFound, "Tournament not found")

	assert.Equal(t, 1, f.notifier.count(EventBracketGenerated))
}

func TestGenerateBracketRecordsMatchIDs(t *testing.T) {
	f := newFixture(t)
	ids := f.createTeams(t, "1", "2", "3", "4", "5", "6", "7", "8")
	tournament := f.tournament(t, bracket.Knockout, 8, ids...)

	result, err := f.tournaments.GenerateBracket(f.ctx, admin, tournament.ID)
	require.NoError(t, err)
	require.Len(t, result.Matches, 7)

	descriptor := result.Tournament.Bracket
	require.NotNil(t, descriptor)
	require.Len(t, descriptor.Rounds, 3)

	var specIDs []int64
	for _, round := range descriptor.Rounds {
		for _, spec := range round {
			specIDs = append(specIDs, spec.MatchID)
		}
	}
	var matchIDs []int64
	for _, m := range result.Matches {
		matchIDs = append(matchIDs, m.ID)
	}
	assert.Equal(t, matchIDs, specIDs)
	assert.IsIncreasing(t, matchIDs)
}

func TestConcurrentResultsFillEverySlot(t *testing.T) {
	f := newFixture(t)
	ids := f.createTeams(t, "1", "2", "3", "4", "5", "6", "7", "8")
	tournament := f.tournament(t, bracket.Knockout, 8, ids...)
	_, err := f.tournaments.GenerateBracket(f.ctx, admin, tournament.ID)
	require.NoError(t, err)

	round1 := f.roundMatches(t, tournament.ID, 1)
	require.Len(t, round1, 4)

	var g errgroup.Group
	for _, m := range round1 {
		g.Go(func() error {
			_, err := f.matches.RecordResult(f.ctx, admin, m.ID, 1, 0)
			return err
		})
	}
	require.NoError(t, g.Wait())

	round2 := f.roundMatches(t, tournament.ID, 2)
	require.Len(t, round2, 2)
	for i, m := range round2 {
		assert.Equal(t, bracket.MatchScheduled, m.Status)
		assert.Equal(t, *round1[2*i].Team1ID, teamIDOf(m, bracket.Slot1))
		assert.Equal(t, *round1[2*i+1].Team1ID, teamIDOf(m, bracket.Slot2))
	}
}

func TestDeleteTournamentRemovesItsMatches(t *testing.T) {
	f := newFixture(t)
	ids := f.createTeams(t, "A", "B", "C", "D")
	doomed := f.tournament(t, bracket.Knockout, 4, ids...)
	kept := f.tournament(t, bracket.League, 4, ids[:2]...)

	_, err := f.tournaments.GenerateBracket(f.ctx, admin, doomed.ID)
	require.NoError(t, err)
	_, err = f.tournaments.GenerateBracket(f.ctx, admin, kept.ID)
	require.NoError(t, err)

	err = f.tournaments.Delete(f.ctx, member, doomed.ID)
	requireKind(t, err, apperr.KindForbidden, "Only administrators can delete tournaments")

	require.NoError(t, f.tournaments.Delete(f.ctx, admin, doomed.ID))

	_, err = f.tournaments.Get(f.ctx, doomed.ID)
	requireKind(t, err, apperr.KindNotFound, "Tournament not found")

	remaining, err := f.repos.Matches.ReadAll(f.ctx)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, kept.ID, remaining[0].TournamentID)

	err = f.tournaments.Delete(f.ctx, admin, doomed.ID)
	requireKind(t, err, apperr.KindNotFound, "Tournament not found")
}

func TestUpdateTournament(t *testing.T) {
	f := newFixture(t)
	ids := f.createTeams(t, "A", "B", "C")
	tournament := f.tournament(t, bracket.Knockout, 4, ids...)

	updated, err := f.tournaments.Update(f.ctx, admin, tournament.ID, TournamentPatch{
		Name:     utils.Ptr("Autumn Cup"),
		Rules:    utils.Ptr("Two halves of 20 minutes"),
		Status:   utils.Ptr(bracket.TournamentCompleted),
		MaxTeams: utils.Ptr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "Autumn Cup", updated.Name)
	assert.Equal(t, "Two halves of 20 minutes", updated.Rules)
	assert.Equal(t, bracket.TournamentCompleted, updated.Status)
	assert.Equal(t, 3, updated.MaxTeams)
	assert.Equal(t, "2026-05-01", updated.StartDate)
	assert.Equal(t, ids, updated.RegisteredTeams)

	_, err = f.tournaments.Update(f.ctx, admin, tournament.ID, TournamentPatch{MaxTeams: utils.Ptr(2)})
	requireKind(t, err, apperr.KindValidation, "Maximum teams cannot be below the number of registered teams")

	_, err = f.tournaments.GenerateBracket(f.ctx, admin, tournament.ID)
	require.NoError(t, err)
	_, err = f.tournaments.Update(f.ctx, admin, tournament.ID, TournamentPatch{Format: utils.Ptr(bracket.League)})
	requireKind(t, err, apperr.KindValidation, "Format cannot change after the bracket has been generated")

	_, err = f.tournaments.Update(f.ctx, admin, 404, TournamentPatch{Name: utils.Ptr("x")})
	requireKind(t, err, apperr.KindNotFound, "Tournament not found")

	_, err = f.tournaments.Update(f.ctx, member, tournament.ID, TournamentPatch{})
	requireKind(t, err, apperr.KindForbidden, "Only administrators can update tournaments")
}

func TestKnockoutStandingsBeforeBracket(t *testing.T) {
	f := newFixture(t)
	ids := f.createTeams(t, "A", "B")
	tournament := f.tournament(t, bracket.Knockout, 4, ids...)

	table, err := f.tournaments.Standings(f.ctx, tournament.ID)
	require.NoError(t, err)
	assert.Empty(t, table.Knockout)
	assert.Nil(t, table.League)
}

func TestStandingsFallBackToUnknownTeam(t *testing.T) {
	f := newFixture(t)
	ids := f.createTeams(t, "A", "B")
	tournament := f.tournament(t, bracket.League, 4, ids...)
	_, err := f.repos.Teams.Delete(f.ctx, ids[1])
	require.NoError(t, err)

	table, err := f.tournaments.Standings(f.ctx, tournament.ID)
	require.NoError(t, err)
	require.Len(t, table.League, 2)
	assert.Equal(t, "A", table.League[0].TeamName)
	assert.Equal(t, "Unknown Team", table.League[1].TeamName)
}

func TestOverview(t *testing.T) {
	f := newFixture(t)
	ids := f.createTeams(t, "A", "B", "C", "D")
	tournament := f.tournament(t, bracket.Knockout, 4, ids...)
	_, err := f.tournaments.GenerateBracket(f.ctx, admin, tournament.ID)
	require.NoError(t, err)

	overview, err := f.tournaments.Overview(f.ctx, tournament.ID)
	require.NoError(t, err)

	assert.Equal(t, tournament.ID, overview.Tournament.ID)
	require.Len(t, overview.Rounds, 2)
	assert.Len(t, overview.Rounds[0], 2)
	assert.Equal(t, "A", overview.Rounds[0][0].Team1Name)
	assert.Equal(t, "B", overview.Rounds[0][0].Team2Name)
	assert.Equal(t, "TBD", overview.Rounds[1][0].Team1Name)
	assert.Equal(t, "Cup", overview.Rounds[1][0].TournamentName)
	assert.Len(t, overview.Teams, 4)
	assert.Len(t, overview.Standings.Knockout, 4)

	_, err = f.tournaments.Overview(f.ctx, 404)
	requireKind(t, err, apperr.KindNotFound, "Tournament not found")
}
