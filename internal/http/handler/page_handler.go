package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"pastebin-lite/internal/app/service"
	"pastebin-lite/internal/http/view"
)

// PageDeps groups dependencies required by the HTML page handlers.
type PageDeps struct {
	Logger *zap.Logger
	Pastes service.PasteService
}

// PageHandler implements the home form and the paste preview pages.
type PageHandler struct {
	logger *zap.Logger
	pastes service.PasteService
}

// NewPageHandler creates a page handler with the provided dependencies.
func NewPageHandler(deps PageDeps) *PageHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{
		logger: logger,
		pastes: deps.Pastes,
	}
}

// Register wires page routes onto the provided router.
func (h *PageHandler) Register(router fiber.Router) {
	router.Get("/", h.Home)
	router.Get("/p/:id", h.ViewPaste)
	router.Get("/p/:id/qr", h.QRCode)
}

// Home handles GET / and renders the paste submission form.
func (h *PageHandler) Home(c *fiber.Ctx) error {
	html, err := view.RenderHomePage(view.HomePageData{Title: "pastebin-lite"})
	if err != nil {
		h.logger.Error("failed to render home page", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render page",
		})
	}
	return c.Type("html", "utf-8").SendString(html)
}

// ViewPaste handles GET /p/:id. The page is a preview: it never spends
// a view.
func (h *PageHandler) ViewPaste(c *fiber.Ctx) error {
	pasteID := c.Params("id")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	preview, err := h.pastes.PreviewRead(ctx, pasteID)
	if err != nil {
		if errors.Is(err, service.ErrPasteNotFound) {
			return h.renderMessage(c, fiber.StatusNotFound, "Paste not found",
				"It may never have existed, expired, or reached its view limit.")
		}
		h.logger.Error("failed to preview paste", zap.Error(err), zap.String("id", pasteID))
		return h.renderMessage(c, storeErrorStatus(err), "Something went wrong",
			"The paste could not be loaded. Try again in a moment.")
	}

	html, err := view.RenderPastePage(view.PastePageData{
		ID:      pasteID,
		Content: preview.Content,
	})
	if err != nil {
		h.logger.Error("failed to render paste page", zap.Error(err), zap.String("id", pasteID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to render page",
		})
	}
	return c.Type("html", "utf-8").SendString(html)
}

// QRCode handles GET /p/:id/qr and serves a PNG pointing at the paste
// page. Generating the image does not spend a view.
func (h *PageHandler) QRCode(c *fiber.Ctx) error {
	pasteID := c.Params("id")

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	if _, err := h.pastes.PreviewRead(ctx, pasteID); err != nil {
		if errors.Is(err, service.ErrPasteNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "paste not found",
			})
		}
		h.logger.Error("failed to load paste for qr", zap.Error(err), zap.String("id", pasteID))
		return c.Status(storeErrorStatus(err)).JSON(fiber.Map{
			"error": "failed to load paste",
		})
	}

	png, err := qrcode.Encode(c.BaseURL()+"/p/"+pasteID, qrcode.Medium, 256)
	if err != nil {
		h.logger.Error("failed to encode qr", zap.Error(err), zap.String("id", pasteID))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to encode qr",
		})
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Type("png").Send(png)
}

func (h *PageHandler) renderMessage(c *fiber.Ctx, status int, heading, detail string) error {
	html, err := view.RenderMessagePage(view.MessagePageData{
		Title:   heading,
		Heading: heading,
		Detail:  detail,
	})
	if err != nil {
		h.logger.Error("failed to render message page", zap.Error(err))
		return c.Status(status).JSON(fiber.Map{"error": heading})
	}
	return c.Status(status).Type("html", "utf-8").SendString(html)
}
