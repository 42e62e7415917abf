package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v3"
	"github.com/helpdesk-ai/supportbot/internal/adapter/store"
)

// AuditHandler exposes the request audit trail.
type AuditHandler struct {
	store *store.PostgresStore
}

// NewAuditHandler creates a new audit handler.
func NewAuditHandler(pgStore *store.PostgresStore) *AuditHandler {
	return &AuditHandler{store: pgStore}
}

// Register sets up audit routes.
func (h *AuditHandler) Register(router fiber.Router) {
	router.Get("/audit", h.List)
}

// List returns recent audit records, optionally filtered by action.
func (h *AuditHandler) List(c fiber.Ctx) error {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	logs, err := h.store.ListAuditLogs(c.Context(), limit, c.Query("action"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"logs": logs})
}
