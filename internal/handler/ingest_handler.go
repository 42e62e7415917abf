package handler

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/helpdesk-ai/supportbot/internal/port"
	"github.com/helpdesk-ai/supportbot/internal/service"
)

// IngestHandler exposes the knowledge-base ingestion entry point to
// operational tooling.
type IngestHandler struct {
	ingestor *service.Ingestor
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(ingestor *service.Ingestor) *IngestHandler {
	return &IngestHandler{ingestor: ingestor}
}

// Register sets up ingestion routes.
func (h *IngestHandler) Register(router fiber.Router) {
	router.Post("/ingest", h.Ingest)
}

// Ingest chunks, embeds and indexes raw knowledge-base text, replacing
// any previous chunks for the same source.
func (h *IngestHandler) Ingest(c fiber.Ctx) error {
	var body struct {
		Source string `json:"source"`
		Text   string `json:"text"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Source == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "source is required"})
	}

	// Embedding a large knowledge base can outlive the default request timeout.
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Minute)
	defer cancel()

	count, err := h.ingestor.Ingest(ctx, body.Source, body.Text)
	if err != nil {
		if errors.Is(err, port.ErrEmptyInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "text must not be empty"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{"ok": true, "source": body.Source, "chunks": count})
}
