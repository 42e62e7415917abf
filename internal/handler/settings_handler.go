package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/helpdesk-ai/supportbot/internal/domain"
	"github.com/helpdesk-ai/supportbot/internal/port"
)

// SettingsHandler exposes the operator-editable chatbot texts.
type SettingsHandler struct {
	store port.SettingsStore
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(store port.SettingsStore) *SettingsHandler {
	return &SettingsHandler{store: store}
}

// Register sets up settings routes.
func (h *SettingsHandler) Register(router fiber.Router) {
	router.Get("/settings", h.Get)
	router.Put("/settings", h.Put)
}

// Get returns the current settings snapshot.
func (h *SettingsHandler) Get(c fiber.Ctx) error {
	settings, err := h.store.GetSettings(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(settings)
}

// Put replaces the stored settings.
func (h *SettingsHandler) Put(c fiber.Ctx) error {
	var body struct {
		WelcomeMessage   string `json:"welcome_message"`
		FallbackMessage  string `json:"fallback_message"`
		ToneInstructions string `json:"tone_instructions"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	settings := domain.Settings{
		WelcomeMessage:   body.WelcomeMessage,
		FallbackMessage:  body.FallbackMessage,
		ToneInstructions: body.ToneInstructions,
	}
	if err := h.store.SaveSettings(c.Context(), settings); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"ok": true})
}
