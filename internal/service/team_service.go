package service

import (
	"context"
	"slices"
	"strings"

	"github.com/AdamBeresnev/matchday/internal/apperr"
	"github.com/AdamBeresnev/matchday/internal/bracket"
	"github.com/AdamBeresnev/matchday/internal/store"
	users "github.com/AdamBeresnev/matchday/internal/user"
	"github.com/AdamBeresnev/matchday/internal/utils"
)

// TeamService manages teams, players and the rosters linking them. A player's TeamID and the
// team's Players list are kept in step.
type TeamService struct {
	repos store.Repositories
}

func NewTeamService(repos store.Repositories) *TeamService {
	return &TeamService{repos: repos}
}

type TeamInput struct {
	Name        string `json:"name" validate:"max=100"`
	Logo        string `json:"logo" validate:"omitempty,url"`
	Description string `json:"description" validate:"max=2000"`
	Coach       string `json:"coach" validate:"max=100"`
	HomeVenue   string `json:"homeVenue" validate:"max=200"`
	FoundedDate string `json:"foundedDate" validate:"omitempty,datetime=2006-01-02"`
}

type TeamPatch struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Logo        *string `json:"logo" validate:"omitempty,url"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Coach       *string `json:"coach" validate:"omitempty,max=100"`
	HomeVenue   *string `json:"homeVenue" validate:"omitempty,max=200"`
	FoundedDate *string `json:"foundedDate" validate:"omitempty,datetime=2006-01-02"`
}

type PlayerInput struct {
	Name         string `json:"name" validate:"max=100"`
	Age          *int   `json:"age" validate:"omitempty,min=1,max=120"`
	Position     string `json:"position" validate:"max=50"`
	JerseyNumber *int   `json:"jerseyNumber" validate:"omitempty,min=0,max=999"`
	TeamID       *int64 `json:"teamId"`
	Nationality  string `json:"nationality" validate:"max=100"`
	Email        string `json:"email" validate:"omitempty,email"`
}

// PlayerPatch changes a player. ClearTeam releases the player from their team.
type PlayerPatch struct {
	Name         *string `json:"name" validate:"omitempty,max=100"`
	Age          *int    `json:"age" validate:"omitempty,min=1,max=120"`
	Position     *string `json:"position" validate:"omitempty,max=50"`
	JerseyNumber *int    `json:"jerseyNumber" validate:"omitempty,min=0,max=999"`
	TeamID       *int64  `json:"teamId"`
	ClearTeam    bool    `json:"clearTeam"`
	Nationality  *string `json:"nationality" validate:"omitempty,max=100"`
	Email        *string `json:"email" validate:"omitempty,email"`
}

type Roster struct {
	Team    bracket.Team     `json:"team"`
	Players []bracket.Player `json:"players"`
}

func (s *TeamService) CreateTeam(ctx context.Context, actor users.Actor, in TeamInput) (bracket.Team, error) {
	if !actor.IsAdmin() {
		return bracket.Team{}, apperr.Forbidden("Only administrators can create teams")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return bracket.Team{}, apperr.Validation("Team name is required")
	}

	created, err := s.repos.Teams.Create(ctx, bracket.Team{
		Name:        name,
		Logo:        in.Logo,
		Description: in.Description,
		Coach:       in.Coach,
		HomeVenue:   in.HomeVenue,
		FoundedDate: in.FoundedDate,
		Players:     []int64{},
	})
	if err != nil {
		return bracket.Team{}, apperr.Internal(err, "failed to create team")
	}
	return created, nil
}

func (s *TeamService) UpdateTeam(ctx context.Context, actor users.Actor, id int64, patch TeamPatch) (bracket.Team, error) {
	if !actor.IsAdmin() {
		return bracket.Team{}, apperr.Forbidden("Only administrators can update teams")
	}

	updated, err := s.repos.Teams.Update(ctx, id, func(t *bracket.Team) error {
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return apperr.Validation("Team name is required")
			}
			t.Name = name
		}
		setIf(&t.Logo, patch.Logo)
		setIf(&t.Description, patch.Description)
		setIf(&t.Coach, patch.Coach)
		setIf(&t.HomeVenue, patch.HomeVenue)
		setIf(&t.FoundedDate, patch.FoundedDate)
		return nil
	})
	if err != nil {
		return bracket.Team{}, repoError(err, "Team not found", "failed to update team")
	}
	return updated, nil
}

// DeleteTeam refuses teams registered in any tournament and releases the team's players.
func (s *TeamService) DeleteTeam(ctx context.Context, actor users.Actor, id int64) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("Only administrators can delete teams")
	}

	registered, err := s.repos.Tournaments.Filter(ctx, func(t bracket.Tournament) bool { return t.IsRegistered(id) })
	if err != nil {
		return apperr.Internal(err, "failed to list tournaments")
	}
	if len(registered) > 0 {
		return apperr.Validation("Cannot delete team that is registered in tournaments")
	}

	players, err := s.repos.Players.Filter(ctx, func(p bracket.Player) bool { return p.TeamID != nil && *p.TeamID == id })
	if err != nil {
		return apperr.Internal(err, "failed to list players")
	}
	for _, p := range players {
		if _, err := s.repos.Players.Update(ctx, p.ID, func(p *bracket.Player) error {
			p.TeamID = nil
			return nil
		}); err != nil {
			return apperr.Internal(err, "failed to release player")
		}
	}

	deleted, err := s.repos.Teams.Delete(ctx, id)
	if err != nil {
		return apperr.Internal(err, "failed to delete team")
	}
	if !deleted {
		return apperr.NotFound("Team not found")
	}
	return nil
}

func (s *TeamService) GetTeam(ctx context.Context, id int64) (bracket.Team, error) {
	t, err := s.repos.Teams.ReadByID(ctx, id)
	if err != nil {
		return bracket.Team{}, repoError(err, "Team not found", "failed to get team")
	}
	return t, nil
}

func (s *TeamService) ListTeams(ctx context.Context) ([]bracket.Team, error) {
	teams, err := s.repos.Teams.ReadAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list teams")
	}
	return teams, nil
}

// Roster returns the team with its players in roster order. Dangling player ids are skipped.
func (s *TeamService) Roster(ctx context.Context, teamID int64) (Roster, error) {
	team, err := s.GetTeam(ctx, teamID)
	if err != nil {
		return Roster{}, err
	}

	all, err := s.repos.Players.ReadAll(ctx)
	if err != nil {
		return Roster{}, apperr.Internal(err, "failed to list players")
	}

	players := make([]bracket.Player, 0, len(team.Players))
	for _, playerID := range team.Players {
		if i := slices.IndexFunc(all, func(p bracket.Player) bool { return p.ID == playerID }); i >= 0 {
			players = append(players, all[i])
		}
	}
	return Roster{Team: team, Players: players}, nil
}

// AddPlayer puts a free agent on the team's roster.
func (s *TeamService) AddPlayer(ctx context.Context, actor users.Actor, teamID, playerID int64) (Roster, error) {
	if !actor.IsAdmin() {
		return Roster{}, apperr.Forbidden("Only administrators can manage team rosters")
	}

	if _, err := s.repos.Teams.ReadByID(ctx, teamID); err != nil {
		return Roster{}, repoError(err, "Team or player not found", "failed to get team")
	}
	player, err := s.repos.Players.ReadByID(ctx, playerID)
	if err != nil {
		return Roster{}, repoError(err, "Team or player not found", "failed to get player")
	}
	if player.TeamID != nil && *player.TeamID != teamID {
		return Roster{}, apperr.Validation("Player is already assigned to another team")
	}
	if err := s.ensureJerseyFree(ctx, teamID, player.JerseyNumber, playerID); err != nil {
		return Roster{}, err
	}

	if _, err := s.repos.Players.Update(ctx, playerID, func(p *bracket.Player) error {
		p.TeamID = &teamID
		return nil
	}); err != nil {
		return Roster{}, apperr.Internal(err, "failed to assign player")
	}
	if err := s.addToRoster(ctx, teamID, playerID); err != nil {
		return Roster{}, err
	}
	return s.Roster(ctx, teamID)
}

func (s *TeamService) RemovePlayer(ctx context.Context, actor users.Actor, teamID, playerID int64) (Roster, error) {
	if !actor.IsAdmin() {
		return Roster{}, apperr.Forbidden("Only administrators can manage team rosters")
	}

	if _, err := s.repos.Teams.ReadByID(ctx, teamID); err != nil {
		return Roster{}, repoError(err, "Team not found", "failed to get team")
	}
	if err := s.removeFromRoster(ctx, teamID, playerID); err != nil {
		return Roster{}, err
	}

	_, err := s.repos.Players.Update(ctx, playerID, func(p *bracket.Player) error {
		if p.TeamID != nil && *p.TeamID == teamID {
			p.TeamID = nil
		}
		return nil
	})
	if err != nil && !isNotFound(err) {
		return Roster{}, apperr.Internal(err, "failed to release player")
	}
	return s.Roster(ctx, teamID)
}

func (s *TeamService) CreatePlayer(ctx context.Context, actor users.Actor, in PlayerInput) (bracket.Player, error) {
	if !actor.IsAdmin() {
		return bracket.Player{}, apperr.Forbidden("Only administrators can create players")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return bracket.Player{}, apperr.Validation("Player name is required")
	}

	if in.TeamID != nil {
		if _, err := s.repos.Teams.ReadByID(ctx, *in.TeamID); err != nil {
			return bracket.Player{}, repoError(err, "Team not found", "failed to get team")
		}
		if err := s.ensureJerseyFree(ctx, *in.TeamID, in.JerseyNumber, 0); err != nil {
			return bracket.Player{}, err
		}
	}

	created, err := s.repos.Players.Create(ctx, bracket.Player{
		Name:         name,
		Age:          in.Age,
		Position:     in.Position,
		JerseyNumber: in.JerseyNumber,
		TeamID:       in.TeamID,
		Nationality:  in.Nationality,
		Email:        in.Email,
	})
	if err != nil {
		return bracket.Player{}, apperr.Internal(err, "failed to create player")
	}

	if created.TeamID != nil {
		if err := s.addToRoster(ctx, *created.TeamID, created.ID); err != nil {
			return created, err
		}
	}
	return created, nil
}

// UpdatePlayer applies the patch and moves the player between rosters when the team changes.
func (s *TeamService) UpdatePlayer(ctx context.Context, actor users.Actor, id int64, patch PlayerPatch) (bracket.Player, error) {
	if !actor.IsAdmin() {
		return bracket.Player{}, apperr.Forbidden("Only administrators can update players")
	}

	current, err := s.repos.Players.ReadByID(ctx, id)
	if err != nil {
		return bracket.Player{}, repoError(err, "Player not found", "failed to get player")
	}

	newTeam := current.TeamID
	switch {
	case patch.ClearTeam:
		newTeam = nil
	case patch.TeamID != nil:
		newTeam = patch.TeamID
		if _, err := s.repos.Teams.ReadByID(ctx, *newTeam); err != nil {
			return bracket.Player{}, repoError(err, "Team not found", "failed to get team")
		}
	}

	jersey := current.JerseyNumber
	if patch.JerseyNumber != nil {
		jersey = patch.JerseyNumber
	}
	if newTeam != nil {
		if err := s.ensureJerseyFree(ctx, *newTeam, jersey, id); err != nil {
			return bracket.Player{}, err
		}
	}

	updated, err := s.repos.Players.Update(ctx, id, func(p *bracket.Player) error {
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return apperr.Validation("Player name is required")
			}
			p.Name = name
		}
		if patch.Age != nil {
			p.Age = patch.Age
		}
		if patch.JerseyNumber != nil {
			p.JerseyNumber = patch.JerseyNumber
		}
		setIf(&p.Position, patch.Position)
		setIf(&p.Nationality, patch.Nationality)
		setIf(&p.Email, patch.Email)
		p.TeamID = newTeam
		return nil
	})
	if err != nil {
		return bracket.Player{}, repoError(err, "Player not found", "failed to update player")
	}

	if !utils.Equal(current.TeamID, newTeam) {
		if current.TeamID != nil {
			if err := s.removeFromRoster(ctx, *current.TeamID, id); err != nil && apperr.KindOf(err) != apperr.KindNotFound {
				return updated, err
			}
		}
		if newTeam != nil {
			if err := s.addToRoster(ctx, *newTeam, id); err != nil {
				return updated, err
			}
		}
	}
	return updated, nil
}

func (s *TeamService) DeletePlayer(ctx context.Context, actor users.Actor, id int64) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("Only administrators can delete players")
	}

	player, err := s.repos.Players.ReadByID(ctx, id)
	if err != nil {
		return repoError(err, "Player not found", "failed to get player")
	}
	if player.TeamID != nil {
		if err := s.removeFromRoster(ctx, *player.TeamID, id); err != nil && apperr.KindOf(err) != apperr.KindNotFound {
			return err
		}
	}

	deleted, err := s.repos.Players.Delete(ctx, id)
	if err != nil {
		return apperr.Internal(err, "failed to delete player")
	}
	if !deleted {
		return apperr.NotFound("Player not found")
	}
	return nil
}

func (s *TeamService) ListPlayers(ctx context.Context) ([]bracket.Player, error) {
	players, err := s.repos.Players.ReadAll(ctx)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list players")
	}
	return players, nil
}

// ensureJerseyFree fails when another player on the team already wears the number.
func (s *TeamService) ensureJerseyFree(ctx context.Context, teamID int64, jersey *int, playerID int64) error {
	if jersey == nil {
		return nil
	}
	taken, err := s.repos.Players.Filter(ctx, func(p bracket.Player) bool {
		return p.ID != playerID && p.TeamID != nil && *p.TeamID == teamID &&
			p.JerseyNumber != nil && *p.JerseyNumber == *jersey
	})
	if err != nil {
		return apperr.Internal(err, "failed to list players")
	}
	if len(taken) > 0 {
		return apperr.Validation("Jersey number already taken by another player in this team")
	}
	return nil
}

func (s *TeamService) addToRoster(ctx context.Context, teamID, playerID int64) error {
	_, err := s.repos.Teams.Update(ctx, teamID, func(t *bracket.Team) error {
		if !slices.Contains(t.Players, playerID) {
			t.Players = append(t.Players, playerID)
		}
		return nil
	})
	return repoError(err, "Team not found", "failed to update roster")
}

func (s *TeamService) removeFromRoster(ctx context.Context, teamID, playerID int64) error {
	_, err := s.repos.Teams.Update(ctx, teamID, func(t *bracket.Team) error {
		t.Players = slices.DeleteFunc(t.Players, func(id int64) bool { return id == playerID })
		return nil
	})
	return repoError(err, "Team not found", "failed to update roster")
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

