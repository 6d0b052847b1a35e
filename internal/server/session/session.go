// Package session keeps browser sessions on top of fiber's session
// middleware: the authenticated account id and one-shot flash messages.
//
// The session is loaded once per request by Manager.Middleware and saved
// once after the handler chain returns, so handlers may read and modify it
// any number of times.
package session

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	CookieName = "session_id"

	accountKey = "account_id"
	flashesKey = "flashes"
	localsKey  = "session"
)

// Flash categories.
const (
	FlashSuccess = "success"
	FlashDanger  = "danger"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

type Config struct {
	TTL time.Duration
	// Storage holds session data; nil selects fiber's in-process memory storage.
	Storage fiber.Storage
	// Secure marks the cookie HTTPS-only.
	Secure bool
}

type Manager struct {
	store  *session.Store
	logger logging.Logger
}

func NewManager(cfg Config, logger logging.Logger) *Manager {
	store := session.New(session.Config{
		Expiration:     cfg.TTL,
		Storage:        cfg.Storage,
		KeyLookup:      "cookie:" + CookieName,
		CookieHTTPOnly: true,
		CookieSecure:   cfg.Secure,
		CookieSameSite: "Lax",
	})
	return &Manager{store: store, logger: logger}
}

// Middleware loads the request's session and saves it after the rest of
// the chain has run.
func (m *Manager) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := m.store.Get(c)
		if err != nil {
			return err
		}

		s := &Session{s: sess}
		c.Locals(localsKey, s)

		chainErr := c.Next()

		if s.dirty && !s.destroyed {
			if err := sess.Save(); err != nil {
				m.logger.Error(c.UserContext(), "session save failed", "error", err)
				if chainErr == nil {
					chainErr = err
				}
			}
		}
		return chainErr
	}
}

// From returns the session loaded by Middleware.
func From(c *fiber.Ctx) *Session {
	s, _ := c.Locals(localsKey).(*Session)
	return s
}

// Login binds the account to the session under a fresh session id.
func (m *Manager) Login(c *fiber.Ctx, accountID int64) error {
	return From(c).Login(accountID)
}

// Logout destroys the server-side session and expires the cookie.
func (m *Manager) Logout(c *fiber.Ctx) error {
	return From(c).Logout()
}

// Session is the request-scoped view of a fiber session.
type Session struct {
	s         *session.Session
	dirty     bool
	destroyed bool
}

// AccountID returns the account bound to the session, if any.
func (s *Session) AccountID() (int64, bool) {
	if s == nil || s.destroyed {
		return 0, false
	}
	id, ok := s.s.Get(accountKey).(int64)
	return id, ok && id != 0
}

func (s *Session) Login(accountID int64) error {
	if err := s.s.Regenerate(); err != nil {
		return err
	}
	s.s.Set(accountKey, accountID)
	s.dirty = true
	return nil
}

func (s *Session) Logout() error {
	if err := s.s.Destroy(); err != nil {
		return err
	}
	s.destroyed = true
	return nil
}

// AddFlash queues a message for the next rendered page.
func (s *Session) AddFlash(category, message string) {
	if s == nil || s.destroyed {
		return
	}
	flashes := append(s.flashes(), Flash{Category: category, Message: message})
	if data, err := json.Marshal(flashes); err == nil {
		s.s.Set(flashesKey, string(data))
		s.dirty = true
	}
}

// PopFlashes returns and clears the queued messages.
func (s *Session) PopFlashes() []Flash {
	if s == nil || s.destroyed {
		return nil
	}
	flashes := s.flashes()
	if len(flashes) > 0 {
		s.s.Delete(flashesKey)
		s.dirty = true
	}
	return flashes
}

func (s *Session) flashes() []Flash {
	raw, _ := s.s.Get(flashesKey).(string)
	if raw == "" {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal([]byte(raw), &flashes); err != nil {
		return nil
	}
	return flashes
}
