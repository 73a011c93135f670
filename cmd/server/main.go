package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"contexthub/internal/auth"
	"contexthub/internal/config"
	"contexthub/internal/handler"
	"contexthub/internal/middleware"
	"contexthub/internal/repository/postgres"
	"contexthub/internal/service/collections"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// JWT verifier against the identity provider's JWKS endpoint
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: postgres.NewTableNames(cfg.TablePrefix),
		Logger: logger,
	}
	folderRepo := postgres.NewFolderRepository(repoConfig)
	itemRepo := postgres.NewItemRepository(repoConfig)
	linkRepo := postgres.NewLinkRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool, logger)

	// Create services
	events := collections.NewLogEvents(logger)
	folderService := collections.NewFolderService(folderRepo, itemRepo, linkRepo, txManager, events, logger)
	treeService := collections.NewTreeService(folderRepo, itemRepo, logger)

	// Create handlers
	folderHandler := handler.NewFolderHandler(folderService, treeService, logger)

	logger.Info("services initialized")

	// API routes require auth (Go 1.22+ enhanced patterns)
	api := http.NewServeMux()

	// Folder routes
	api.HandleFunc("POST /api/folders", folderHandler.CreateFolder)
	api.HandleFunc("GET /api/folders", folderHandler.ListFolders)
	api.HandleFunc("GET /api/folders/tree", folderHandler.GetTree) // Must come before {id} route
	api.HandleFunc("GET /api/folders/{id}", folderHandler.GetFolder)
	api.HandleFunc("PATCH /api/folders/{id}", folderHandler.UpdateFolder)
	api.HandleFunc("DELETE /api/folders/{id}", folderHandler.DeleteFolder)

	// Folder item membership routes
	api.HandleFunc("POST /api/folders/{id}/items", folderHandler.AddItems)
	api.HandleFunc("PATCH /api/folders/{id}/items", folderHandler.PatchItems)
	api.HandleFunc("DELETE /api/folders/{id}/items", folderHandler.RemoveItems)

	// Health check stays outside the auth chain
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", folderHandler.HealthCheck)
	mux.Handle("/api/", middleware.Auth(jwtVerifier)(api))

	// Build middleware chain (applied in reverse order, they wrap each other)
	// Order: CORS → Recovery → Routes
	var h http.Handler = mux
	h = middleware.Recovery(logger)(h)

	// CORS - must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	h = corsHandler.Handler(h)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.Info("listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
