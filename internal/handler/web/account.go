package web

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/anderovsky/ITStep-zrucnosti/internal/service"
	"github.com/anderovsky/ITStep-zrucnosti/internal/session"
	apperrors "github.com/anderovsky/ITStep-zrucnosti/pkg/errors"
	"github.com/anderovsky/ITStep-zrucnosti/pkg/logger"
)

// AccountHandler serves the registration, login, and logout pages.
type AccountHandler struct {
	accounts   *service.AccountService
	sessions   *session.Manager
	render     *Renderer
	sessionTTL time.Duration
}

// NewAccountHandler creates a new account handler.
func NewAccountHandler(accounts *service.AccountService, sessions *session.Manager, render *Renderer, sessionTTL time.Duration) *AccountHandler {
	return &AccountHandler{
		accounts:   accounts,
		sessions:   sessions,
		render:     render,
		sessionTTL: sessionTTL,
	}
}

// authPage is the data for the register and login templates.
type authPage struct {
	page
	FormUsername string
}

// RegisterForm renders the registration form.
func (h *AccountHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.render.Render(w, r, http.StatusOK, "register", authPage{page: newPage(r, "Register")})
}

// Register handles the registration form submission. Validation failures and
// duplicate usernames re-render the form with the problem inline; success
// redirects to the login page.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	input := service.RegisterInput{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	if _, err := h.accounts.Register(r.Context(), input); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) || errors.Is(err, apperrors.ErrInvalidInput) {
			data := authPage{page: newPage(r, "Register"), FormUsername: input.Username}
			data.Error = userMessage(err)
			h.render.Render(w, r, apperrors.HTTPStatus(err), "register", data)
			return
		}
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "registration failed",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/login?registered=1", http.StatusSeeOther)
}

// LoginForm renders the login form.
func (h *AccountHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	data := authPage{page: newPage(r, "Log in")}
	if r.URL.Query().Get("registered") == "1" {
		data.Notice = "Account created. You can log in now."
	}
	h.render.Render(w, r, http.StatusOK, "login", data)
}

// Login handles the login form submission. On success a server-side session
// is created and its signed token set as the session cookie.
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	input := service.LoginInput{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	account, err := h.accounts.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, apperrors.ErrUnauthorized) || errors.Is(err, apperrors.ErrInvalidInput) {
			data := authPage{page: newPage(r, "Log in"), FormUsername: input.Username}
			data.Error = userMessage(err)
			h.render.Render(w, r, apperrors.HTTPStatus(err), "login", data)
			return
		}
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "login failed",
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	token, err := h.sessions.Create(r.Context(), account.ID, account.Username)
	if err != nil {
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "session creation failed",
			slog.Int64("account_id", account.ID),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, token, int(h.sessionTTL.Seconds()))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout destroys the current session, if any, and redirects to the index.
// Logging out while not logged in is a harmless no-op.
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(session.CookieName); err == nil {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			logger.FromContext(r.Context()).WarnContext(r.Context(), "session destroy failed",
				slog.String("error", err.Error()),
			)
		}
	}

	clearSessionCookie(w)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// userMessage extracts the user-facing message from an application error.
func userMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong."
}
