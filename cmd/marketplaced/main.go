package main

import (
	"flag"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file if present
	"github.com/novaland-labs/marketplace/internal/api"
	"github.com/novaland-labs/marketplace/internal/config"
	"github.com/novaland-labs/marketplace/internal/server"
	"github.com/novaland-labs/marketplace/internal/services"
)

// Build information (set via ldflags)
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildTime  = "unknown"
)

func main() {
	// Command line flags
	var showVersion = flag.Bool("version", false, "Show version information")
	var showHelp = flag.Bool("help", false, "Show help information")
	var quiet = flag.Bool("quiet", false, "Disable logging output")
	flag.Parse()

	if *quiet {
		log.SetOutput(io.Discard)
	}

	if *showVersion {
		log.Printf("Novaland Marketplace Server\n")
		log.Printf("Version: %s\n", Version)
		log.Printf("Commit: %s\n", CommitHash)
		log.Printf("Built: %s\n", BuildTime)
		return
	}

	if *showHelp {
		log.Printf("Novaland Marketplace Server\n\n")
		log.Printf("Usage: %s [options]\n\n", os.Args[0])
		log.Printf("Options:\n")
		log.Printf("  --version    Show version information\n")
		log.Printf("  --help       Show this help message\n")
		log.Printf("  --quiet      Disable logging output\n\n")
		log.Printf("Description:\n")
		log.Printf("  Real-estate marketplace backend: pins listing media to IPFS and\n")
		log.Printf("  registers properties on the Novaland contract.\n\n")
		log.Printf("Database: ~/novaland.db (SQLite) or POSTGRES_URL\n")
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Submissions need pinning credentials, a contract address and a
	// signing key. Missing ones are reported here and again on /api/status,
	// but the read-only surface stays available regardless.
	for _, precondition := range cfg.SubmissionPreconditions() {
		log.Printf("Warning: %v", precondition)
	}

	// Create database service wrapper
	var dbService services.DBService
	if cfg.PostgresURL != "" {
		dbService, err = services.NewPostgresDBService(cfg.PostgresURL)
	} else {
		dbService, err = services.NewSqliteDBService(cfg.DatabasePath)
	}
	if err != nil {
		log.Fatal("Failed to initialize database service:", err)
	}
	defer dbService.Close()

	// Initialize services
	submissionService, registryService, walletService, threadService, err := server.InitializeServices(cfg, dbService.GetDB())
	if err != nil {
		log.Fatal("Failed to initialize services:", err)
	}

	// Start API server
	apiServer := api.NewAPIServer(cfg, submissionService, registryService, walletService, threadService)
	startedPort, err := apiServer.Start(cfg.Port)
	if err != nil {
		log.Fatal("Failed to start API server:", err)
	}

	log.Printf("API server started on port %d\n", startedPort)

	// Set up graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	log.Println("\nShutting down server...")

	if err := apiServer.Shutdown(); err != nil {
		log.Printf("Error shutting down API server: %v", err)
	}

	log.Println("Server shut down successfully")
}
