package api

import (
	"fmt"
	"log"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/novaland-labs/marketplace/internal/config"
	"github.com/novaland-labs/marketplace/internal/services"
)

type APIServer struct {
	app        *fiber.App
	cfg        *config.Config
	submission services.SubmissionService
	registry   services.RegistryService
	wallet     services.WalletService
	threads    services.ThreadService
	port       int
}

func NewAPIServer(cfg *config.Config, submission services.SubmissionService, registry services.RegistryService, wallet services.WalletService, threads services.ThreadService) *APIServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	server := &APIServer{
		app:        app,
		cfg:        cfg,
		submission: submission,
		registry:   registry,
		wallet:     wallet,
		threads:    threads,
	}
	server.setupRoutes()
	return server
}

func (s *APIServer) setupRoutes() {
	// Property registry surface
	s.app.Get("/api/properties", s.handleListProperties)
	s.app.Get("/api/properties/:id", s.handleGetProperty)
	s.app.Post("/api/properties", s.handleSubmitProperty)
	s.app.Post("/api/properties/derive-id", s.handleDeriveID)
	s.app.Post("/api/properties/:id/delist", s.handleDelistProperty)
	s.app.Post("/api/properties/:id/purchase", s.handlePurchaseProperty)
	s.app.Get("/api/properties/:id/offer-status", s.handleOfferStatus)

	// Offer threads
	s.app.Post("/api/threads", s.handleOpenThread)
	s.app.Post("/api/threads/:id/close", s.handleCloseThread)
	s.app.Get("/api/threads", s.handleListThreads)

	// Submission pipeline status
	s.app.Get("/api/status", s.handleStatus)

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
}

// Start starts the server on the given port, or a random available port
// when port is 0. Returns the port the server is actually listening on.
func (s *APIServer) Start(port int) (int, error) {
	if port == 0 {
		listener, err := net.Listen("tcp", ":0")
		if err != nil {
			return 0, fmt.Errorf("failed to find available port: %w", err)
		}
		port = listener.Addr().(*net.TCPAddr).Port
		listener.Close()
	}
	s.port = port

	go func() {
		if err := s.app.Listen(fmt.Sprintf(":%d", port)); err != nil {
			log.Printf("Error starting API server: %v\n", err)
		}
	}()

	return port, nil
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}

// App exposes the fiber app for in-process testing.
func (s *APIServer) App() *fiber.App {
	return s.app
}
