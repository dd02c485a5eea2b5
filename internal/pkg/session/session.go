// Package session keeps the logged-in identity and flash messages in a signed cookie.
package session

import (
	"encoding/gob"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/sessions"
)

const (
	keyAccountID = "account_id"
	keyLoginAt   = "login_at"
	keyRemember  = "remember"
)

// Flash categories
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashDanger  = "danger"
)

// Flash is a one-time message shown on the next rendered page
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// Config holds cookie settings for the session store
type Config struct {
	Secret      string
	CookieName  string
	Lifetime    time.Duration // max age of a login without "remember me"
	RememberFor time.Duration // cookie lifetime with "remember me"
	Secure      bool
	HTTPOnly    bool
	SameSite    string
}

// Manager reads and writes the session cookie
type Manager struct {
	store       *sessions.CookieStore
	name        string
	lifetime    time.Duration
	rememberFor time.Duration
	now         func() time.Time
}

// NewManager creates a cookie-backed session manager
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Secret == "" {
		return nil, errors.New("session secret is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "escola_session"
	}

	store := sessions.NewCookieStore([]byte(cfg.Secret))
	// codec max age must cover the longest cookie we issue
	store.MaxAge(int(cfg.RememberFor.Seconds()))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   0,
		Secure:   cfg.Secure,
		HttpOnly: cfg.HTTPOnly,
		SameSite: parseSameSite(cfg.SameSite),
	}

	return &Manager{
		store:       store,
		name:        cfg.CookieName,
		lifetime:    cfg.Lifetime,
		rememberFor: cfg.RememberFor,
		now:         time.Now,
	}, nil
}

func parseSameSite(v string) http.SameSite {
	switch strings.ToLower(v) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// get never fails: a cookie that does not decode yields a fresh session
func (m *Manager) get(r *http.Request) *sessions.Session {
	s, _ := m.store.Get(r, m.name)
	return s
}

func (m *Manager) save(w http.ResponseWriter, r *http.Request, s *sessions.Session) error {
	if remember, _ := s.Values[keyRemember].(bool); remember && s.Options.MaxAge >= 0 {
		s.Options.MaxAge = int(m.rememberFor.Seconds())
	}
	return s.Save(r, w)
}

// Login stores accountID as the session identity
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, accountID int64, remember bool) error {
	s := m.get(r)
	s.Values[keyAccountID] = accountID
	s.Values[keyLoginAt] = m.now().Unix()
	s.Values[keyRemember] = remember
	return m.save(w, r, s)
}

// Logout clears the identity but keeps pending flash messages
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) error {
	s := m.get(r)
	delete(s.Values, keyAccountID)
	delete(s.Values, keyLoginAt)
	delete(s.Values, keyRemember)
	return m.save(w, r, s)
}

// AccountID returns the logged-in account id, if the login is still valid
func (m *Manager) AccountID(r *http.Request) (int64, bool) {
	s := m.get(r)
	id, ok := s.Values[keyAccountID].(int64)
	if !ok || id <= 0 {
		return 0, false
	}

	remember, _ := s.Values[keyRemember].(bool)
	if !remember && m.lifetime > 0 {
		loginAt, _ := s.Values[keyLoginAt].(int64)
		if m.now().Sub(time.Unix(loginAt, 0)) > m.lifetime {
			return 0, false
		}
	}
	return id, true
}

// AddFlash queues a message for the next rendered page
func (m *Manager) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) error {
	s := m.get(r)
	s.AddFlash(Flash{Category: category, Message: message})
	return m.save(w, r, s)
}

// Flashes pops all queued messages. The messages are returned even when saving the session fails.
func (m *Manager) Flashes(w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	s := m.get(r)
	raw := s.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}

	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes, m.save(w, r, s)
}
