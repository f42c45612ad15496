package server

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"pastebin-lite/internal/app/service"
	inthttp "pastebin-lite/internal/http/handler"
	"pastebin-lite/internal/http/middleware"
)

// Dependencies bundles what the HTTP server needs to run.
type Dependencies struct {
	Logger  *zap.Logger
	Pastes  service.PasteService
	BaseURL string
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New()

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerMiddleware() {
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.CORS())
}

func (s *Server) registerRoutes() {
	apiHandler := inthttp.NewAPIHandler(inthttp.APIDeps{
		Logger:  s.deps.Logger,
		Pastes:  s.deps.Pastes,
		BaseURL: s.deps.BaseURL,
	})
	apiHandler.Register(s.app)

	pageHandler := inthttp.NewPageHandler(inthttp.PageDeps{
		Logger: s.deps.Logger,
		Pastes: s.deps.Pastes,
	})
	pageHandler.Register(s.app)
}
