package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/cameronmore/go-authsite/internal/logutil"
	"github.com/cameronmore/go-authsite/sessions"
	"github.com/cameronmore/go-authsite/web"
)

const (
	maxFormBytes = 1 << 20
	maxAge       = 150

	msgUsernameTaken      = "Username already exists."
	msgInvalidCredentials = "Invalid credentials."
	msgUnavailable        = "Something went wrong on our side, please try again later."
)

// Pinger reports whether the backing store answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AuthContext serves the registration, login, logout and profile pages. Every decision
// about who the caller is goes through Gateway.
type AuthContext struct {
	Gateway  *Gateway
	Profiles sessions.ProfileStore
	Pages    *web.Renderer
	Cookies  sessions.CookieOptions
	Health   Pinger
}

func NewAuthContext(gw *Gateway, profiles sessions.ProfileStore, pages *web.Renderer, cookies sessions.CookieOptions) *AuthContext {
	return &AuthContext{
		Gateway:  gw,
		Profiles: profiles,
		Pages:    pages,
		Cookies:  cookies,
	}
}

func (ac *AuthContext) session(w http.ResponseWriter, r *http.Request) sessions.SessionStore {
	return sessions.NewCookieStore(w, r, ac.Cookies)
}

func (ac *AuthContext) render(w http.ResponseWriter, r *http.Request, status int, name string, page web.Page) {
	if err := ac.Pages.Render(w, status, name, page); err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Str("template", name).Msg("Unable to render page")
		http.Error(w, msgUnavailable, http.StatusInternalServerError)
	}
}

// RootHandler shows the landing page, personalised when the caller has a session.
func (ac *AuthContext) RootHandler(w http.ResponseWriter, r *http.Request) {
	username, ok := ac.Gateway.Authenticate(r.Context(), ac.session(w, r))
	if !ok {
		ac.render(w, r, http.StatusOK, "home.html", web.Page{})
		return
	}
	page := web.Page{Username: username}
	profile, err := ac.Profiles.Profile(r.Context(), username)
	if errors.Is(err, sessions.ErrUserNotFound) {
		// stale session, the landing page is public so it stays anonymous
		ac.Gateway.Logout(ac.session(w, r))
		ac.render(w, r, http.StatusOK, "home.html", web.Page{})
		return
	}
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to load profile")
		page.Error = msgUnavailable
	} else {
		page.Profile = &profile
	}
	ac.render(w, r, http.StatusOK, "home.html", page)
}

func (ac *AuthContext) RegisterForm(w http.ResponseWriter, r *http.Request) {
	ac.render(w, r, http.StatusOK, "register.html", web.Page{})
}

// RegisterHandler creates a user from the submitted username and password form fields and
// sends the client to the login page.
func (ac *AuthContext) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		ac.render(w, r, http.StatusBadRequest, "register.html", web.Page{Error: "Invalid form submission."})
		return
	}
	username := r.PostFormValue("username")
	page := web.Page{Form: map[string]string{"username": username}}

	_, err := ac.Gateway.Register(r.Context(), username, r.PostFormValue("password"))
	switch {
	case err == nil:
		http.Redirect(w, r, "/login", http.StatusFound)
	case errors.Is(err, sessions.ErrUsernameTaken):
		page.Error = msgUsernameTaken
		ac.render(w, r, http.StatusBadRequest, "register.html", page)
	case errors.Is(err, sessions.ErrEmptyUsername),
		errors.Is(err, sessions.ErrUsernameTooLong),
		errors.Is(err, sessions.ErrEmptyPassword),
		errors.Is(err, sessions.ErrPasswordTooLong):
		page.Error = capitalize(err.Error()) + "."
		ac.render(w, r, http.StatusBadRequest, "register.html", page)
	default:
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Error registering user")
		page.Error = msgUnavailable
		ac.render(w, r, http.StatusServiceUnavailable, "register.html", page)
	}
}

func (ac *AuthContext) LoginForm(w http.ResponseWriter, r *http.Request) {
	ac.render(w, r, http.StatusOK, "login.html", web.Page{})
}

// LoginHandler starts a session and sends the user to the profile setup while their
// profile is still empty.
func (ac *AuthContext) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		ac.render(w, r, http.StatusBadRequest, "login.html", web.Page{Error: "Invalid form submission."})
		return
	}
	username := r.PostFormValue("username")
	page := web.Page{Form: map[string]string{"username": username}}

	c, err := ac.Gateway.Login(r.Context(), ac.session(w, r), username, r.PostFormValue("password"))
	switch {
	case err == nil:
	case errors.Is(err, sessions.ErrInvalidCredentials):
		page.Error = msgInvalidCredentials
		ac.render(w, r, http.StatusUnauthorized, "login.html", page)
		return
	default:
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Error logging in user")
		page.Error = msgUnavailable
		ac.render(w, r, http.StatusServiceUnavailable, "login.html", page)
		return
	}

	profile, err := ac.Profiles.Profile(r.Context(), c.Username)
	if err != nil {
		// the session is already set, the home page reports the problem
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to load profile after login")
		http.Redirect(w, r, "/home", http.StatusFound)
		return
	}
	if !profile.Complete() {
		http.Redirect(w, r, "/profile", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/home", http.StatusFound)
}

// LogoutHandler clears the session cookie. It always succeeds.
func (ac *AuthContext) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	ac.Gateway.Logout(ac.session(w, r))
	http.Redirect(w, r, "/", http.StatusFound)
}

// HomeHandler requires RequireUser.
func (ac *AuthContext) HomeHandler(w http.ResponseWriter, r *http.Request) {
	username := UserFromContext(r.Context())
	profile, err := ac.Profiles.Profile(r.Context(), username)
	if errors.Is(err, sessions.ErrUserNotFound) {
		ac.forget(w, r)
		return
	}
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to load profile")
		ac.render(w, r, http.StatusServiceUnavailable, "home.html", web.Page{Username: username, Error: msgUnavailable})
		return
	}
	ac.render(w, r, http.StatusOK, "home.html", web.Page{Username: username, Profile: &profile})
}

// ProfileForm requires RequireUser.
func (ac *AuthContext) ProfileForm(w http.ResponseWriter, r *http.Request) {
	username := UserFromContext(r.Context())
	page := web.Page{Username: username}
	profile, err := ac.Profiles.Profile(r.Context(), username)
	if errors.Is(err, sessions.ErrUserNotFound) {
		ac.forget(w, r)
		return
	}
	if err == nil && profile.Complete() {
		page.Form = map[string]string{
			"description": profile.Description,
			"age":         strconv.Itoa(profile.Age),
			"occupation":  profile.Occupation,
		}
	}
	ac.render(w, r, http.StatusOK, "profile.html", page)
}

// ProfileHandler requires RequireUser. It stores description, age and occupation.
func (ac *AuthContext) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	username := UserFromContext(r.Context())
	if !parseForm(w, r) {
		ac.render(w, r, http.StatusBadRequest, "profile.html", web.Page{Username: username, Error: "Invalid form submission."})
		return
	}
	form := map[string]string{
		"description": strings.TrimSpace(r.PostFormValue("description")),
		"age":         strings.TrimSpace(r.PostFormValue("age")),
		"occupation":  strings.TrimSpace(r.PostFormValue("occupation")),
	}
	page := web.Page{Username: username, Form: form}

	age, err := strconv.Atoi(form["age"])
	if err != nil || age < 0 || age > maxAge {
		page.Error = "Age must be a whole number between 0 and 150."
		ac.render(w, r, http.StatusBadRequest, "profile.html", page)
		return
	}
	if form["description"] == "" || form["occupation"] == "" {
		page.Error = "Description and occupation are required."
		ac.render(w, r, http.StatusBadRequest, "profile.html", page)
		return
	}

	err = ac.Profiles.SaveProfile(r.Context(), username, sessions.Profile{
		Description: form["description"],
		Age:         age,
		Occupation:  form["occupation"],
	})
	if errors.Is(err, sessions.ErrUserNotFound) {
		ac.forget(w, r)
		return
	}
	if err != nil {
		log := logutil.GetOrDefault(r.Context())
		log.Error().Err(err).Msg("Unable to save profile")
		page.Error = msgUnavailable
		ac.render(w, r, http.StatusServiceUnavailable, "profile.html", page)
		return
	}
	http.Redirect(w, r, "/home", http.StatusFound)
}

// HealthHandler answers 200 while the store is reachable.
func (ac *AuthContext) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if ac.Health != nil {
		if err := ac.Health.Ping(r.Context()); err != nil {
			log := logutil.GetOrDefault(r.Context())
			log.Error().Err(err).Msg("Health check failed")
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

// forget handles a valid session whose user no longer exists.
func (ac *AuthContext) forget(w http.ResponseWriter, r *http.Request) {
	log := logutil.GetOrDefault(r.Context())
	log.Warn().Msg("Session refers to a missing user")
	ac.Gateway.Logout(ac.session(w, r))
	http.Redirect(w, r, "/login", http.StatusFound)
}

func parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	return r.ParseForm() == nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
