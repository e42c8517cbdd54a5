package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"imagedrop/internal/config"
	"imagedrop/internal/database"
	"imagedrop/internal/domain/events"
	"imagedrop/internal/domain/intake"
	"imagedrop/internal/domain/upload"
	"imagedrop/internal/middleware"
	jwtsvc "imagedrop/internal/pkg/jwt"
	"imagedrop/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("error", "text").Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("starting imagedrop api", "config", cfg)

	db, err := database.Connect(cfg.DatabaseURL, log.Logger)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&upload.Image{}); err != nil {
		log.Error("auto-migrate failed", "error", err)
		os.Exit(1)
	}

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	hub := events.NewHub(log.Logger)

	uploadService := upload.NewService(
		upload.NewRepository(db),
		cfg.UploadsDir,
		cfg.StaticURLBase,
		hub,
		log.Logger,
		intake.WithPolicy(cfg.Policy()),
		intake.WithEntryConcurrency(cfg.EntryConcurrency),
	)
	uploadHandler := upload.NewHandler(uploadService)

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.ErrorLogger(log.Logger),
		middleware.RequestLogger(log.Logger),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSAllowedOrigins),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.Static(cfg.StaticURLBase, cfg.UploadsDir)
	events.RegisterRoutes(r, events.NewHandler(hub, j))

	v1 := r.Group("/api/v1")
	protected := v1.Group("/")
	protected.Use(middleware.JWTAuth(j))
	{
		upload.RegisterRoutes(protected, uploadHandler)
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("stopped")
}
