package web

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/todokeeper/internal/logging"
	"github.com/dmitrijs2005/todokeeper/internal/server/auth"
	"github.com/dmitrijs2005/todokeeper/internal/server/models"
	"github.com/dmitrijs2005/todokeeper/internal/server/session"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// RequestID propagates or assigns X-Request-ID and stores it in the user
// context so every log record of the request carries it.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDHeader, requestID)
		c.SetUserContext(logging.ContextWithRequestID(c.UserContext(), requestID))

		return c.Next()
	}
}

// RequestLogger logs each completed request; 4xx at warn and 5xx at error.
func RequestLogger(logger logging.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()
		if err != nil {
			// let the error handler set the final status before logging
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		log := logger.Info
		switch {
		case status >= 500:
			log = logger.Error
		case status >= 400:
			log = logger.Warn
		}

		log(c.UserContext(), "request completed",
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start).String(),
			"ip", c.IP(),
		)
		return nil
	}
}

// currentAccount resolves the session's account, or nil.
func (h *handlers) currentAccount(c *fiber.Ctx) (*models.User, error) {
	id, ok := session.From(c).AccountID()
	if !ok {
		return nil, nil
	}
	return h.accounts.LoadSessionAccount(c.UserContext(), id)
}

func setAccount(c *fiber.Ctx, u *models.User) {
	c.SetUserContext(auth.WithAccount(c.UserContext(), u))
}

func accountOf(c *fiber.Ctx) *models.User {
	return auth.AccountFromContext(c.UserContext())
}

// requireLogin guards HTML pages: anonymous visitors are sent to /login.
func (h *handlers) requireLogin(c *fiber.Ctx) error {
	u, err := h.currentAccount(c)
	if err != nil {
		return err
	}
	if u == nil {
		session.From(c).AddFlash(session.FlashInfo, "Please log in to access this page.")
		return c.Redirect("/login", fiber.StatusFound)
	}
	setAccount(c, u)
	return c.Next()
}

// requireAPI guards JSON endpoints: a browser session or a bearer token.
func (h *handlers) requireAPI(c *fiber.Ctx) error {
	u, err := h.currentAccount(c)
	if err != nil {
		return err
	}

	if u == nil {
		if token, ok := bearerToken(c.Get(fiber.HeaderAuthorization)); ok {
			u, err = h.accounts.AccountFromToken(c.UserContext(), token)
			if err != nil {
				h.logger.Debug(c.UserContext(), "bearer token rejected", "error", err)
				u = nil
			}
		}
	}

	if u == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	setAccount(c, u)
	return c.Next()
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
