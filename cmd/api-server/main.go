package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nosmoke-app/backend/cmd/api-server/middleware"
	"github.com/nosmoke-app/backend/cmd/api-server/routes"
	"github.com/nosmoke-app/backend/internal/auth"
	"github.com/nosmoke-app/backend/internal/common"
	"github.com/nosmoke-app/backend/internal/diagnosis"
	"github.com/nosmoke-app/backend/internal/docstore"
	"github.com/nosmoke-app/backend/internal/habits"
	"github.com/nosmoke-app/backend/internal/notify"
	"github.com/nosmoke-app/backend/internal/storage"
	"github.com/nosmoke-app/backend/internal/upload"
	"github.com/nosmoke-app/backend/pkg/config"
)

func main() {
	cfg := config.LoadFromEnv()
	setupLogging(cfg.Logging)

	log.Info().Msg("starting nosmoke API server")

	ctx := context.Background()

	docs, err := newDocumentStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document store")
	}

	localBaseURL := fmt.Sprintf("http://localhost:%d/static", cfg.Server.Port)
	blobs, err := storage.NewFromConfig(ctx, &cfg.Storage, localBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize blob storage")
	}

	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token verifier")
	}

	// the hub is owned here and injected; there is no global registry
	hub := notify.NewHub()

	validator := upload.NewValidator(&cfg.Upload)
	gateway := upload.NewGateway(blobs, docs)
	uploadService := upload.NewService(validator, gateway, hub)
	habitsService := habits.NewService(docs)

	diagClient, err := diagnosis.NewClient(ctx, &cfg.GCP)
	if err != nil {
		// diagnosis endpoints are optional in environments without Vertex AI
		// access; the upload pipeline still works without them
		log.Warn().Err(err).Msg("vertex ai unavailable, diagnosis endpoints disabled")
		diagClient = nil
	} else {
		defer diagClient.Close()
	}

	var cache *common.Cache
	if cfg.RateLimit.Enabled {
		cache, err = common.NewCache(&cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer cache.Close()
	}

	router := setupRouter(cfg, verifier, hub, uploadService, gateway, habitsService, diagClient, validator, cache, blobs)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	} else {
		log.Info().Msg("server shutdown complete")
	}
}

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func newDocumentStore(ctx context.Context, cfg *config.Config) (docstore.DocumentStore, error) {
	switch cfg.Docstore.Type {
	case "firestore":
		return docstore.NewFirestoreStore(ctx, cfg.GCP.ProjectID)
	case "memory":
		log.Warn().Msg("using in-memory document store, data will not survive restarts")
		return docstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported docstore type: %s", cfg.Docstore.Type)
	}
}

func newVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	switch cfg.Auth.Mode {
	case "firebase":
		return auth.NewFirebaseVerifier(ctx, &cfg.Firebase)
	case "static":
		log.Warn().Msg("using static JWT verification, not suitable for production")
		return auth.NewStaticVerifier(cfg.Auth.JWTSecret)
	default:
		return nil, fmt.Errorf("unsupported auth mode: %s", cfg.Auth.Mode)
	}
}

func setupRouter(
	cfg *config.Config,
	verifier auth.Verifier,
	hub *notify.Hub,
	uploadService *upload.Service,
	gateway *upload.Gateway,
	habitsService *habits.Service,
	diagClient *diagnosis.Client,
	validator *upload.Validator,
	cache *common.Cache,
	blobs storage.BlobStorage,
) *gin.Engine {
	if zerolog.GlobalLevel() == zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	router.GET("/", handleHealth(diagClient))
	router.GET("/health", handleHealth(diagClient))

	// the push surface is unauthenticated; a connection only ever receives
	// events for the session id it subscribed to
	routes.WebSocketRoutes(router, hub)

	if local, ok := blobs.(*storage.LocalStorage); ok {
		router.Static("/static", local.BasePath())
	}

	api := router.Group("/api/v1")
	if cache != nil {
		api.Use(middleware.RateLimit(cache, cfg.RateLimit.PerMinute))
	}
	api.Use(middleware.Auth(verifier))
	{
		routes.UploadRoutes(api, uploadService, gateway)
		routes.HabitsRoutes(api, habitsService)
		if diagClient != nil {
			routes.DiagnosisRoutes(api, diagClient, validator)
		}
	}

	return router
}

func handleHealth(diagClient *diagnosis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{
			"status":  "healthy",
			"service": "nosmoke-api-server",
			"time":    time.Now().UTC(),
		}
		if diagClient != nil {
			body["vertexAi"] = diagClient.HealthCheck()
		}
		c.JSON(http.StatusOK, body)
	}
}
