package session

import (
	"fmt"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/noah-isme/elearn-api/pkg/config"
)

const userIDKey = "user_id"

// Manager keeps the authenticated user ID in a signed cookie so browser clients
// stay logged in without handling bearer tokens themselves.
type Manager struct {
	store *sessions.CookieStore
	name  string
}

// New builds a cookie-backed session manager.
func New(cfg config.SessionConfig) *Manager {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	name := cfg.Name
	if name == "" {
		name = "elearn_session"
	}
	return &Manager{store: store, name: name}
}

// Login records the user ID on the session cookie.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, _ := m.store.Get(r, m.name)
	sess.Values[userIDKey] = userID
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// UserID returns the user ID stored on the session, or an empty string.
func (m *Manager) UserID(r *http.Request) string {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		return ""
	}
	id, _ := sess.Values[userIDKey].(string)
	return id
}

// Clear expires the session cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, m.name)
	delete(sess.Values, userIDKey)
	sess.Options.MaxAge = -1
	if err := sess.Save(r, w); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
