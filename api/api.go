package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/wayfarerhq/wayfarer/pkg/engine"
	"github.com/wayfarerhq/wayfarer/pkg/eventstream"
)

// ErrorResponse is the JSON error payload for non-streaming failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Server is the HTTP server fronting the orchestration engine.
type Server struct {
	config    Config
	engine    *engine.Engine
	publisher eventstream.Publisher
	logger    *zap.Logger
	app       *fiber.App
}

// NewServer creates a new API server. The engine and publisher are injected
// so the server owns no collaborator lifecycle of its own.
func NewServer(config Config, eng *engine.Engine, publisher eventstream.Publisher, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:    config,
		engine:    eng,
		publisher: publisher,
		logger:    logger,
		app:       app,
	}

	app.Get("/ping", s.handlePing)
	app.Post("/chat", s.handleChat)

	return s
}

// App exposes the fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
