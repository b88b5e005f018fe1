package http

import (
	"context"
	"log/slog"
	"net/http"

	"finorg/internal/api"
	"finorg/internal/log"
	"finorg/internal/session"
)

// handleIndex renders the login page, or sends authenticated visitors
// straight to the dashboard.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if _, err := s.sessions.Current(r); err == nil {
		http.Redirect(w, r, "/dashboard", http.StatusFound)
		return
	}

	data := struct {
		Error string
	}{}
	if r.URL.Query().Get("error") != "" {
		data.Error = "Não foi possível entrar. Tente novamente."
	}
	s.renderTemplate(w, r, "login.html", data)
}

// handleLogin starts the Google sign-in flow. The flow itself is owned
// by the backend; we only hand the browser over.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, s.backendBaseURL+"/auth/google", http.StatusFound)
}

// handleCallback receives the backend's post-login redirect carrying
// the API token, resolves the account, and establishes the session.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		slog.WarnContext(r.Context(), "Login callback without token")
		http.Redirect(w, r, "/?error=login", http.StatusFound)
		return
	}

	// The session does not exist yet, so a one-off client carries the
	// callback token directly.
	var user session.User
	client := api.NewClient(s.backendBaseURL, api.CredentialFunc(func(context.Context) string { return token }))
	if err := client.GetJSON(r.Context(), "/auth/me", &user); err != nil {
		slog.ErrorContext(r.Context(), "Account lookup failed", log.FieldError, err, log.FieldOperation, log.OpLogin)
		http.Redirect(w, r, "/?error=login", http.StatusFound)
		return
	}

	if _, err := s.sessions.Establish(r.Context(), w, user, token); err != nil {
		slog.ErrorContext(r.Context(), "Session establish failed", log.FieldError, err, log.FieldUserID, user.ID)
		http.Redirect(w, r, "/?error=login", http.StatusFound)
		return
	}

	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// handleLogout destroys the session and returns to the login page.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	if err := s.sessions.Destroy(w, r); err != nil {
		slog.ErrorContext(r.Context(), "Logout failed", log.FieldError, err, log.FieldOperation, log.OpLogout)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
