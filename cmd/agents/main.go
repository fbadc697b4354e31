package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/brand-loop/creatives/internal/auth"
	"github.com/brand-loop/creatives/internal/config"
	"github.com/brand-loop/creatives/internal/database"
	"github.com/brand-loop/creatives/internal/handlers"
	"github.com/brand-loop/creatives/internal/kafka"
	"github.com/brand-loop/creatives/internal/llm"
	"github.com/brand-loop/creatives/internal/mcpserver"
	"github.com/brand-loop/creatives/internal/session"
	"github.com/brand-loop/creatives/internal/storage"
	"github.com/brand-loop/creatives/internal/tools"
	"github.com/brand-loop/creatives/migrations"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Info().Msg("Starting Creatives Agents (MCP + HTTP)")

	// Session snapshots are optional: without a database, sessions live in
	// memory only and disappear on restart.
	var snapshotRepo session.SnapshotRepository
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer db.Close()

		if err := migrations.Run(db.SQLDB()); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
		snapshotRepo = database.NewSessionRepository(db)
	} else {
		log.Info().Msg("DATABASE_URL not set; session snapshots disabled")
	}

	llmClient, err := llm.NewClient(
		cfg.GeminiAPIKey, cfg.VertexProject, cfg.VertexLocation,
		cfg.ModelRewrite, cfg.ModelImage, cfg.ModelVideo,
		llm.VideoDefaults{
			AspectRatio:      cfg.VideoAspectRatio,
			Count:            cfg.VideoCount,
			DurationSeconds:  cfg.VideoDurationSeconds,
			PersonGeneration: cfg.VideoPersonGeneration,
			Resolution:       cfg.VideoResolution,
			PollInterval:     cfg.VideoPollInterval,
			MaxPolls:         cfg.VideoMaxPolls,
		},
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize media client")
	}

	storageClient, err := storage.NewClient(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3Bucket,
		cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3PublicURL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize storage client")
	}

	// Artifact events are optional: without brokers, tool calls skip
	// publishing entirely.
	var events tools.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicArtifacts)
		defer producer.Close()
		events = producer
	} else {
		log.Info().Msg("KAFKA_BROKERS not set; artifact events disabled")
	}

	sessions := session.NewManager(snapshotRepo)
	toolbox := tools.NewToolbox(llmClient, storageClient, sessions, events)

	authService := auth.NewService(cfg.APIKeyHash)
	if !authService.Enabled() {
		log.Warn().Msg("API_KEY_HASH not set; authentication disabled")
	}

	// MCP HTTP server with auth. The write timeout must outlast the video
	// poll loop so a slow but successful job still delivers its result.
	mcpSrv := mcpserver.NewServer(toolbox)
	mcpHTTP := &http.Server{
		Addr:         cfg.MCPAddr,
		Handler:      authService.Middleware(mcpSrv.Handler()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.VideoWaitCeiling(),
	}
	go func() {
		log.Info().Str("addr", cfg.MCPAddr).Msg("MCP server listening")
		if err := mcpHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("MCP HTTP server error")
		}
	}()

	// HTTP read API
	h := handlers.NewHandler(toolbox, storageClient)
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Healthz).Methods("GET")

	api := r.PathPrefix("/v1").Subrouter()
	api.Use(authService.Middleware)
	api.HandleFunc("/sessions/{id}/assets", h.ListSessionAssets).Methods("GET")
	api.HandleFunc("/sessions/{id}/artifacts/{filename}", h.GetArtifact).Methods("GET")

	apiHTTP := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := apiHTTP.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down agents...")

	// Fresh contexts so each server gets a full timeout
	mcpCtx, mcpCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer mcpCancel()
	if err := mcpHTTP.Shutdown(mcpCtx); err != nil {
		log.Error().Err(err).Msg("MCP HTTP shutdown error")
	}

	apiCtx, apiCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer apiCancel()
	if err := apiHTTP.Shutdown(apiCtx); err != nil {
		log.Error().Err(err).Msg("API shutdown error")
	}

	log.Info().Msg("Agents exited")
}
