package main

import (
	"github.com/AdamBeresnev/matchday/internal/config"
	"github.com/AdamBeresnev/matchday/internal/live"
	"github.com/AdamBeresnev/matchday/internal/service"
	"github.com/AdamBeresnev/matchday/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/jmoiron/sqlx"
)

// application holds everything the handlers need.
type application struct {
	sessions    *scs.SessionManager
	userStore   *store.UserStore
	users       *service.UserService
	tournaments *service.TournamentService
	matches     *service.MatchService
	teams       *service.TeamService
	hub         *live.Hub

	providers   []string
	corsOrigins []string
}

func newApplication(cfg *config.Config, database *sqlx.DB, docs store.DocumentStore) *application {
	sessions := scs.New()
	sessions.Lifetime = cfg.SessionLifetime
	sessions.Store = sqlite3store.New(database.DB)

	repos := store.NewRepositories(docs)
	locks := service.NewTournamentLocks()
	hub := live.NewHub()
	userStore := store.NewUserStore(database)

	return &application{
		sessions:    sessions,
		userStore:   userStore,
		users:       service.NewUserService(userStore, cfg.AdminEmails),
		tournaments: service.NewTournamentService(repos, locks, hub),
		matches:     service.NewMatchService(repos, locks, hub),
		teams:       service.NewTeamService(repos),
		hub:         hub,
		corsOrigins: cfg.CORSAllowedOrigins,
	}
}
