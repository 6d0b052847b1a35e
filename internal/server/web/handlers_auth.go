package web

import (
	"errors"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/session"
	"github.com/gofiber/fiber/v2"
)

func (h *handlers) registerPage(c *fiber.Ctx) error {
	return h.render(c, "register", pageData{Title: "Register"})
}

func (h *handlers) register(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess := session.From(c)

	var req credentialsForm
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warn(ctx, "failed to parse registration form", "error", err)
		sess.AddFlash(session.FlashDanger, "Email and password are required")
		return h.render(c, "register", pageData{Title: "Register"})
	}

	if err := ValidateStruct(&req); err != nil {
		h.logger.Warn(ctx, "registration validation failed", "fields", failedFields(err))
		sess.AddFlash(session.FlashDanger, "Email and password are required")
		return h.render(c, "register", pageData{Title: "Register", Email: req.Email})
	}

	_, err := h.accounts.Register(ctx, req.Email, req.Password)
	switch {
	case err == nil:
		sess.AddFlash(session.FlashSuccess, "Registration successful! Please log in.")
		return c.Redirect("/login", fiber.StatusFound)
	case errors.Is(err, common.ErrorDuplicateEmail):
		sess.AddFlash(session.FlashDanger, "Email already registered")
	default:
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			sess.AddFlash(session.FlashDanger, verr.Message)
		} else {
			h.logger.Error(ctx, "registration failed", "error", err)
			sess.AddFlash(session.FlashError, "Registration failed, please try again")
		}
	}
	return h.render(c, "register", pageData{Title: "Register", Email: req.Email})
}

func (h *handlers) loginPage(c *fiber.Ctx) error {
	return h.render(c, "login", pageData{Title: "Log in"})
}

func (h *handlers) login(c *fiber.Ctx) error {
	ctx := c.UserContext()
	sess := session.From(c)

	var req credentialsForm
	if err := c.BodyParser(&req); err != nil {
		h.logger.Warn(ctx, "failed to parse login form", "error", err)
		sess.AddFlash(session.FlashDanger, "Login failed. Check your email and password.")
		return h.render(c, "login", pageData{Title: "Log in"})
	}

	u, err := h.accounts.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, common.ErrorInvalidCredentials) && !errors.Is(err, common.ErrorValidation) {
			h.logger.Error(ctx, "login failed", "error", err)
		}
		sess.AddFlash(session.FlashDanger, "Login failed. Check your email and password.")
		return h.render(c, "login", pageData{Title: "Log in", Email: req.Email})
	}

	if err := h.sessions.Login(c, u.ID); err != nil {
		return err
	}

	h.logger.Info(ctx, "user logged in", "user_id", u.ID)
	return c.Redirect("/dashboard", fiber.StatusFound)
}

func (h *handlers) logout(c *fiber.Ctx) error {
	if err := h.sessions.Logout(c); err != nil {
		return err
	}
	return c.Redirect("/login", fiber.StatusFound)
}

func (h *handlers) dashboard(c *fiber.Ctx) error {
	n, err := h.tasks.Count(c.UserContext(), tasksFilter(true))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Database error: " + err.Error())
	}
	return h.render(c, "dashboard", pageData{Title: "Dashboard", NumberOfTasks: n})
}
