package main

import (
	"net/http"
	"time"

	"github.com/AdamBeresnev/matchday/internal/logging"
	"github.com/AdamBeresnev/matchday/internal/middleware"
	"github.com/AdamBeresnev/matchday/static"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logging.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(app.sessions.LoadAndSave)
	r.Use(middleware.LoadAuthenticatedUser(app.sessions, app.userStore))

	// Serve static files
	fileServer := http.FileServerFS(static.FS)
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)

		r.Get("/", app.indexPage)
		r.Get("/tournaments/{id}", app.tournamentPage)
	})

	r.Get("/tournaments/{id}/live", app.liveFeed)

	r.Get("/login", app.loginPage)
	r.Post("/login", app.login)
	r.Get("/register", app.registerPage)
	r.Post("/register", app.register)
	r.Post("/auth/guest", app.guestLogin)
	r.Get("/auth/{provider}", app.beginOAuth)
	r.Get("/auth/{provider}/callback", app.completeOAuth)
	r.Post("/logout", app.logout)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   app.corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
			AllowCredentials: true,
			MaxAge:           int((5 * time.Minute).Seconds()),
		}))
		r.Use(chimiddleware.SetHeader("Cache-Control", "no-store"))

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", app.listTournaments)
			r.Post("/", app.createTournament)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.getTournament)
				r.Patch("/", app.updateTournament)
				r.Delete("/", app.deleteTournament)
				r.Post("/teams", app.registerTeam)
				r.Delete("/teams/{teamID}", app.unregisterTeam)
				r.Post("/bracket", app.generateBracket)
				r.Get("/standings", app.tournamentStandings)
				r.Get("/matches", app.tournamentMatches)
				r.Get("/overview", app.tournamentOverview)
			})
		})

		r.Route("/matches", func(r chi.Router) {
			r.Get("/", app.listMatches)
			r.Post("/", app.createMatch)
			r.Get("/upcoming", app.upcomingMatches)
			r.Get("/recent", app.recentResults)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.getMatch)
				r.Patch("/", app.updateMatch)
				r.Delete("/", app.deleteMatch)
				r.Post("/result", app.recordResult)
				r.Get("/head-to-head", app.headToHead)
			})
		})

		r.Route("/teams", func(r chi.Router) {
			r.Get("/", app.listTeams)
			r.Post("/", app.createTeam)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.getTeam)
				r.Patch("/", app.updateTeam)
				r.Delete("/", app.deleteTeam)
				r.Get("/matches", app.teamMatches)
				r.Get("/players", app.teamRoster)
				r.Post("/players/{playerID}", app.addPlayer)
				r.Delete("/players/{playerID}", app.removePlayer)
			})
		})

		r.Route("/players", func(r chi.Router) {
			r.Get("/", app.listPlayers)
			r.Post("/", app.createPlayer)
			r.Patch("/{id}", app.updatePlayer)
			r.Delete("/{id}", app.deletePlayer)
		})
	})

	return r
}
