package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// NewRouter mounts the public pages and, behind RequireUser, the protected ones.
func NewRouter(ac *AuthContext, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/", ac.RootHandler)
	r.Get("/healthz", ac.HealthHandler)
	r.Get("/register", ac.RegisterForm)
	r.Post("/register", ac.RegisterHandler)
	r.Get("/login", ac.LoginForm)
	r.Post("/login", ac.LoginHandler)
	r.Get("/logout", ac.LogoutHandler)

	r.Group(func(r chi.Router) {
		r.Use(ac.RequireUser)
		r.Get("/home", ac.HomeHandler)
		r.Get("/profile", ac.ProfileForm)
		r.Post("/profile", ac.ProfileHandler)
	})
	return r
}
