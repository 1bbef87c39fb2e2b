package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"care-portal-server/internal/cache"
	"care-portal-server/internal/config"
	"care-portal-server/internal/logging"
	"care-portal-server/internal/middleware"
	"care-portal-server/internal/models"
	"care-portal-server/internal/presence"
	"care-portal-server/internal/routes"
	"care-portal-server/internal/storage"
	"care-portal-server/internal/store"
)

func main() {
	// Load environment variables; a missing .env is fine in deployed setups
	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return
	}
	logging.Init(cfg.Log.Level, cfg.Log.Format, cfg.Environment)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := models.InitDB(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	var tokenCache cache.Cache
	if cfg.Redis.Enabled {
		tokenCache, err = cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		log.Info().Str("addr", cfg.Redis.Addr).Msg("using redis cache")
	} else {
		tokenCache = cache.NewMemoryCache()
		log.Info().Msg("using in-memory cache")
	}
	defer tokenCache.Close()

	files, err := storage.NewFileStore(cfg.Storage.RootDir, tokenCache, cfg.Storage.SignedURLTTL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize file storage")
	}

	hub := presence.NewHub(store.NewUserStore(db))

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())
	if cfg.MetricsEnabled {
		router.Use(middleware.Metrics())
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Origin}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	router.Use(cors.New(corsConfig))

	routes.SetupRoutes(router, db, cfg, hub, files)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Environment).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
