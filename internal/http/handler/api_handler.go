package handler

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"pastebin-lite/internal/app/service"
)

// APIDeps groups dependencies required by API handlers.
type APIDeps struct {
	Logger *zap.Logger
	Pastes service.PasteService
	// BaseURL overrides the request origin when building share links.
	BaseURL string
}

// APIHandler implements the JSON paste endpoints.
type APIHandler struct {
	logger  *zap.Logger
	pastes  service.PasteService
	baseURL string
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:  logger,
		pastes:  deps.Pastes,
		baseURL: strings.TrimSuffix(deps.BaseURL, "/"),
	}
}

// Register wires API routes onto the provided router.
func (h *APIHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	{
		api.Post("/pastes", h.CreatePaste)
		api.Get("/pastes/:id", h.GetPaste)
		api.Get("/healthz", h.Health)
	}
}

// CreatePasteRequest represents the request body for creating a paste.
type CreatePasteRequest struct {
	Content    string `json:"content"`
	TTLSeconds *int64 `json:"ttl_seconds"`
	MaxViews   *int64 `json:"max_views"`
}

// CreatePasteResponse represents the response for creating a paste.
type CreatePasteResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// GetPasteResponse represents a consuming read result. RemainingViews
// and ExpiresAt serialize as explicit nulls for pastes without the
// corresponding limit.
type GetPasteResponse struct {
	Content        string  `json:"content"`
	RemainingViews *int64  `json:"remaining_views"`
	ExpiresAt      *string `json:"expires_at"`
}

// CreatePaste handles POST /api/pastes
func (h *APIHandler) CreatePaste(c *fiber.Ctx) error {
	var req CreatePasteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "content is required",
		})
	}

	if req.TTLSeconds != nil && *req.TTLSeconds <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "ttl_seconds must be a positive integer",
		})
	}

	if req.MaxViews != nil && *req.MaxViews <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "max_views must be a positive integer",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	pasteID, err := h.pastes.CreatePaste(ctx, service.CreatePasteInput{
		Content:    req.Content,
		TTLSeconds: req.TTLSeconds,
		MaxViews:   req.MaxViews,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request",
			})
		}
		h.logger.Error("failed to create paste", zap.Error(err))
		return c.Status(storeErrorStatus(err)).JSON(fiber.Map{
			"error": "failed to create paste",
		})
	}

	return c.JSON(CreatePasteResponse{
		ID:  pasteID,
		URL: h.shareURL(c, pasteID),
	})
}

// shareURL builds the absolute paste page link, preferring the
// configured base URL over whatever host the request came in on.
func (h *APIHandler) shareURL(c *fiber.Ctx, pasteID string) string {
	base := h.baseURL
	if base == "" {
		base = c.BaseURL()
	}
	return base + "/p/" + pasteID
}

// GetPaste handles GET /api/pastes/:id and spends one view.
func (h *APIHandler) GetPaste(c *fiber.Ctx) error {
	pasteID := c.Params("id")
	if pasteID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id is required",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	paste, err := h.pastes.ConsumingRead(ctx, pasteID)
	if err != nil {
		if errors.Is(err, service.ErrPasteNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "paste not found",
			})
		}
		h.logger.Error("failed to read paste", zap.Error(err), zap.String("id", pasteID))
		return c.Status(storeErrorStatus(err)).JSON(fiber.Map{
			"error": "failed to read paste",
		})
	}

	resp := GetPasteResponse{
		Content:        paste.Content,
		RemainingViews: paste.RemainingViews,
	}
	if paste.ExpiresAt != nil {
		expires := paste.ExpiresAt.UTC().Format(time.RFC3339)
		resp.ExpiresAt = &expires
	}

	return c.JSON(resp)
}

// Health handles GET /api/healthz
func (h *APIHandler) Health(c *fiber.Ctx) error {
	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := h.pastes.Health(ctx); err != nil {
		h.logger.Error("health check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok": false,
		})
	}

	return c.JSON(fiber.Map{"ok": true})
}

// storeErrorStatus maps engine failures that are not NotFound or
// InvalidInput onto an HTTP status.
func storeErrorStatus(err error) int {
	if errors.Is(err, service.ErrStoreUnavailable) {
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}
