// Package session implements the explicit auth context of the
// dashboard: a SQLite-backed session store, a signed cookie binding the
// browser to a session row, and middleware that keeps unauthenticated
// visitors out of the dashboard routes.
package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const sessionContextKey contextKey = "session"

// Manager resolves, establishes, and destroys browser sessions.
type Manager struct {
	store      *Store
	secret     []byte
	cookieName string
	ttl        time.Duration
}

func NewManager(store *Store, secret string, cookieName string, ttl time.Duration) *Manager {
	return &Manager{
		store:      store,
		secret:     []byte(secret),
		cookieName: cookieName,
		ttl:        ttl,
	}
}

// Establish creates a session for the user and sets the signed cookie.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, user User, apiToken string) (Session, error) {
	sess := Session{
		ID:        newSessionID(),
		User:      user,
		APIToken:  apiToken,
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(m.ttl),
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return Session{}, err
	}

	signed, err := m.signCookie(sess)
	if err != nil {
		return Session{}, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    signed,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	slog.InfoContext(ctx, "Session established", "session_id", sess.ID, "user_id", user.ID)
	return sess, nil
}

// Current resolves the session for the request, or ErrNotFound.
func (m *Manager) Current(r *http.Request) (Session, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return Session{}, ErrNotFound
	}

	sid, err := m.verifyCookie(cookie.Value)
	if err != nil {
		return Session{}, ErrNotFound
	}

	return m.store.Get(r.Context(), sid)
}

// Destroy deletes the session row and expires the cookie.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.Current(r)
	if err == nil {
		if derr := m.store.Delete(r.Context(), sess.ID); derr != nil {
			slog.ErrorContext(r.Context(), "Session delete failed", "error", derr, "session_id", sess.ID)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	slog.InfoContext(r.Context(), "Session destroyed")
	return nil
}

// RequireAuth redirects unauthenticated requests to the login page and
// stores the session in the request context for downstream handlers.
func (m *Manager) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Current(r)
		if err != nil {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the session placed by RequireAuth.
func FromContext(ctx context.Context) (Session, bool) {
	sess, ok := ctx.Value(sessionContextKey).(Session)
	return sess, ok
}

// Credential yields the backend bearer token for the current request,
// satisfying the api.CredentialSource contract.
func (m *Manager) Credential(ctx context.Context) string {
	if sess, ok := FromContext(ctx); ok {
		return sess.APIToken
	}
	return ""
}

// StartCleanup periodically removes expired session rows.
func (m *Manager) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n, err := m.store.DeleteExpired(ctx); err != nil {
					slog.Error("Session cleanup failed", "error", err)
				} else if n > 0 {
					slog.Debug("Session cleanup", "sessions_removed", n)
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) signCookie(sess Session) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sess.ID,
		"sub": sess.User.ID,
		"exp": sess.ExpiresAt.Unix(),
		"iat": sess.CreatedAt.Unix(),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session cookie: %w", err)
	}
	return signed, nil
}

func (m *Manager) verifyCookie(value string) (string, error) {
	token, err := jwt.Parse(value, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrNotFound
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrNotFound
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", ErrNotFound
	}
	return sid, nil
}

func newSessionID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("sess_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(bytes)
}
