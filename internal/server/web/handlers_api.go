package web

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todokeeper/internal/common"
	"github.com/dmitrijs2005/todokeeper/internal/server/services"
	"github.com/gofiber/fiber/v2"
)

const invalidBulkFormat = "Invalid data format.  Expected a list of tasks."

type taskResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	DueDate  string `json:"due_date"`
	Complete bool   `json:"complete"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (h *handlers) apiListTasks(c *fiber.Ctx) error {
	tasks, err := h.tasks.List(c.UserContext(), services.TaskFilter{})
	if err != nil {
		h.logger.Error(c.UserContext(), "failed to list tasks", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error when returning all tasks: " + err.Error(),
		})
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, taskResponse{ID: t.ID, Name: t.Name, DueDate: t.DueDate, Complete: t.Complete})
	}
	return c.JSON(resp)
}

func (h *handlers) apiBulkAdd(c *fiber.Ctx) error {
	ctx := c.UserContext()

	items, err := decodeBulkTasks(c.Body())
	if err != nil {
		if errors.Is(err, common.ErrorInvalidFormat) {
			h.logger.Warn(ctx, "bulk add rejected", "error", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": invalidBulkFormat})
		}
		return err
	}

	n, err := h.tasks.BulkAdd(ctx, items)
	if err != nil {
		var verr *common.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verr.Message})
		}
		h.logger.Error(ctx, "bulk add failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "An error occurred while adding tasks."})
	}

	h.logger.Info(ctx, "bulk add completed", "count", n)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Tasks added successfully", "count": n})
}

// decodeBulkTasks accepts only a JSON array of task objects.
func decodeBulkTasks(body []byte) ([]services.BulkTask, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: expected a JSON array: %v", common.ErrorInvalidFormat, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON array, got null", common.ErrorInvalidFormat)
	}

	items := make([]services.BulkTask, 0, len(raw))
	for i, r := range raw {
		var item services.BulkTask
		if err := json.Unmarshal(r, &item); err != nil {
			return nil, fmt.Errorf("%w: item %d: %v", common.ErrorInvalidFormat, i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

func (h *handlers) issueToken(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req credentialsForm
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := ValidateStruct(&req); err != nil {
		h.logger.Warn(ctx, "token request validation failed", "fields", failedFields(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	token, err := h.accounts.IssueAPIToken(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
		}
		return err
	}

	return c.JSON(tokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(h.accounts.APITokenTTL().Seconds()),
	})
}
