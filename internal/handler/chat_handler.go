package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/helpdesk-ai/supportbot/internal/port"
	"github.com/helpdesk-ai/supportbot/internal/service"
)

// ChatHandler handles the chat turn and conversation history endpoints.
type ChatHandler struct {
	manager *service.ConversationManager
	store   port.ConversationStore
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(manager *service.ConversationManager, store port.ConversationStore) *ChatHandler {
	return &ChatHandler{manager: manager, store: store}
}

// Register sets up chat routes.
func (h *ChatHandler) Register(router fiber.Router) {
	router.Post("/chat", h.Chat)
	router.Get("/conversations/:id", h.History)
}

// Chat handles one chat turn. An absent or unknown conversation_id starts
// a new conversation.
func (h *ChatHandler) Chat(c fiber.Ctx) error {
	var body struct {
		ConversationID string `json:"conversation_id"`
		Message        string `json:"message"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.manager.HandleTurn(c.Context(), body.ConversationID, body.Message)
	if err != nil {
		if errors.Is(err, port.ErrEmptyInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "message must not be empty"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(result)
}

// History returns the recorded messages of a conversation.
func (h *ChatHandler) History(c fiber.Ctx) error {
	conv, err := h.store.GetConversation(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, port.ErrConversationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "conversation not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"conversation_id": conv.ID,
		"state":           conv.State,
		"messages":        conv.Messages,
	})
}
