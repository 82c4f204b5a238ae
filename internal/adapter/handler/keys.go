package handler

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/MoneyUnify/moneyunify-go/internal/adapter/storage"
	"github.com/MoneyUnify/moneyunify-go/internal/core/security"
)

type KeysHandler struct {
	Repo *storage.KeyRepository
}

type GenerateKeyRequest struct {
	Label string `json:"label"`
}

func (h *KeysHandler) GenerateKey(c *fiber.Ctx) error {
	var req GenerateKeyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if req.Label == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Label is required"})
	}

	realKey, keyHash, err := security.GenerateAPIKey()
	if err != nil {
		slog.Error("Crypto error generating key", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Crypto error"})
	}

	if err := h.Repo.SaveAPIKey(c.Context(), req.Label, keyHash, "mu_live_"); err != nil {
		slog.Error("Failed to save API key", "error", err, "label", req.Label)
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save key"})
	}

	slog.Info("API key generated", "label", req.Label)

	// Shown once only; we keep nothing but the hash.
	return c.JSON(fiber.Map{
		"api_key": realKey,
		"warning": "Save this now! We won't show it again.",
	})
}
