package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"pastebin-lite/internal/app/service"
)

func newPageApp(svc service.PasteService) *fiber.App {
	app := fiber.New()
	NewPageHandler(PageDeps{Pastes: svc}).Register(app)
	return app
}

func TestPageHandler_Home(t *testing.T) {
	app := newPageApp(&mockPasteService{})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.Contains(ct, "text/html") {
		t.Fatalf("expected html content type, got %q", ct)
	}
}

func TestPageHandler_ViewPaste_UsesPreview(t *testing.T) {
	consumed := false
	app := newPageApp(&mockPasteService{
		previewFn: func(context.Context, string) (*service.PastePreview, error) {
			return &service.PastePreview{Content: "<script>alert(1)</script>"}, nil
		},
		consumeFn: func(context.Context, string) (*service.PasteView, error) {
			consumed = true
			return nil, service.ErrPasteNotFound
		},
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/p/abc", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if consumed {
		t.Fatal("html preview must not spend a view")
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if strings.Contains(string(raw), "<script>alert(1)</script>") {
		t.Fatal("paste content must be escaped in html output")
	}
}

func TestPageHandler_ViewPaste_NotFound(t *testing.T) {
	app := newPageApp(&mockPasteService{
		previewFn: func(context.Context, string) (*service.PastePreview, error) {
			return nil, service.ErrPasteNotFound
		},
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/p/abc", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestPageHandler_QRCode(t *testing.T) {
	app := newPageApp(&mockPasteService{
		previewFn: func(context.Context, string) (*service.PastePreview, error) {
			return &service.PastePreview{Content: "x"}, nil
		},
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/p/abc/qr", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.Contains(ct, "image/png") {
		t.Fatalf("expected png content type, got %q", ct)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if len(raw) < 8 || string(raw[1:4]) != "PNG" {
		t.Fatal("expected a png payload")
	}
}

func TestPageHandler_QRCode_NotFound(t *testing.T) {
	app := newPageApp(&mockPasteService{
		previewFn: func(context.Context, string) (*service.PastePreview, error) {
			return nil, service.ErrPasteNotFound
		},
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/p/abc/qr", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
