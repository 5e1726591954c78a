package main

import (
	"context"
	"net/http"

	"github.com/AdamBeresnev/matchday/internal/apperr"
	"github.com/AdamBeresnev/matchday/internal/httputil"
	"github.com/AdamBeresnev/matchday/internal/logging"
	"github.com/AdamBeresnev/matchday/internal/middleware"
	users "github.com/AdamBeresnev/matchday/internal/user"
	"github.com/AdamBeresnev/matchday/views"
	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"github.com/markbates/goth/gothic"
)

func render(w http.ResponseWriter, r *http.Request, status int, c templ.Component) {
	if status != http.StatusOK {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
	}
	if err := views.Render(w, r, c); err != nil {
		logging.Default().ErrorContext(r.Context(), "failed to render page", "path", r.URL.Path, "error", err)
	}
}

// pageError maps a service error onto the plain-text page responders.
func pageError(w http.ResponseWriter, r *http.Request, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		httputil.NotFound(w, r, apperr.Message(err), err)
	case apperr.KindValidation, apperr.KindForbidden:
		httputil.BadRequest(w, r, apperr.Message(err), err)
	default:
		httputil.InternalServerError(w, r, "page failed", err)
	}
}

func (app *application) indexPage(w http.ResponseWriter, r *http.Request) {
	tournaments, err := app.tournaments.List(r.Context())
	if err != nil {
		pageError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, views.Index(tournaments))
}

func (app *application) tournamentPage(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httputil.BadRequest(w, r, "Invalid tournament ID", err)
		return
	}

	overview, err := app.tournaments.Overview(r.Context(), id)
	if err != nil {
		pageError(w, r, err)
		return
	}
	render(w, r, http.StatusOK, views.TournamentView(overview))
}

func (app *application) liveFeed(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		httputil.BadRequest(w, r, "Invalid tournament ID", err)
		return
	}
	if _, err := app.tournaments.Get(r.Context(), id); err != nil {
		pageError(w, r, err)
		return
	}
	app.hub.ServeWS(w, r, id)
}

func (app *application) loginPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, views.LoginPage(app.providers, ""))
}

func (app *application) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, r, "Invalid form data", err)
		return
	}

	user, err := app.users.Authenticate(r.Context(), r.Form.Get("username"), r.Form.Get("password"))
	if err != nil {
		if apperr.KindOf(err) != apperr.KindValidation {
			httputil.InternalServerError(w, r, "Failed to log in", err)
			return
		}
		render(w, r, http.StatusUnauthorized, views.LoginPage(app.providers, apperr.Message(err)))
		return
	}
	app.signIn(w, r, user)
}

func (app *application) registerPage(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, views.RegisterPage(""))
}

func (app *application) register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httputil.BadRequest(w, r, "Invalid form data", err)
		return
	}

	user, err := app.users.Register(r.Context(), r.Form.Get("username"), r.Form.Get("password"), r.Form.Get("confirmPassword"))
	if err != nil {
		if apperr.KindOf(err) != apperr.KindValidation {
			httputil.InternalServerError(w, r, "Failed to register", err)
			return
		}
		render(w, r, http.StatusBadRequest, views.RegisterPage(apperr.Message(err)))
		return
	}
	app.signIn(w, r, user)
}

func (app *application) guestLogin(w http.ResponseWriter, r *http.Request) {
	user, err := app.users.EnsureGuestUser(r.Context())
	if err != nil {
		httputil.InternalServerError(w, r, "Failed to login as guest", err)
		return
	}
	app.signIn(w, r, user)
}

func (app *application) beginOAuth(w http.ResponseWriter, r *http.Request) {
	gothic.BeginAuthHandler(w, withProvider(r))
}

func (app *application) completeOAuth(w http.ResponseWriter, r *http.Request) {
	r = withProvider(r)
	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		httputil.BadRequest(w, r, "Authentication failure", err)
		return
	}

	user, err := app.users.FindOrCreateUserByProvider(r.Context(), gothUser)
	if err != nil {
		httputil.InternalServerError(w, r, "Failed to find or create user", err)
		return
	}
	app.signIn(w, r, user)
}

func (app *application) logout(w http.ResponseWriter, r *http.Request) {
	if err := app.sessions.Destroy(r.Context()); err != nil {
		httputil.InternalServerError(w, r, "Failed to log out", err)
		return
	}
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", "/login")
		w.WriteHeader(http.StatusOK)
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (app *application) signIn(w http.ResponseWriter, r *http.Request, user *users.User) {
	if err := app.sessions.RenewToken(r.Context()); err != nil {
		httputil.InternalServerError(w, r, "Failed to start session", err)
		return
	}
	app.sessions.Put(r.Context(), middleware.SessionUserKey, user.ID.String())
	logging.Default().InfoContext(r.Context(), "user signed in", "user_id", user.ID, "role", user.Role)
	http.Redirect(w, r, "/", http.StatusFound)
}

// withProvider exposes the {provider} URL parameter the way gothic looks it up.
func withProvider(r *http.Request) *http.Request {
	provider := chi.URLParam(r, "provider")
	//lint:ignore SA1029 gothic reads the provider from this exact key
	return r.WithContext(context.WithValue(r.Context(), "provider", provider))
}
