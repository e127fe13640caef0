package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ref-check/internal/auth"
	"ref-check/internal/config"
	"ref-check/internal/database"
	"ref-check/internal/handlers"
	"ref-check/internal/mailer"
	"ref-check/internal/middleware"
	"ref-check/internal/scoring"
	"ref-check/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Config load error", zap.Error(err))
	}

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	scorer := scoring.New(scoring.Config{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Timeout: cfg.CalloutTimeout(),
	}, logger)
	if !scorer.Enabled() {
		logger.Warn("GEMINI_API_KEY not set, AI scoring disabled")
	}

	mail := mailer.New(mailer.Config{
		APIKey:            cfg.SendGridAPIKey,
		BaseURL:           cfg.SendGridBaseURL,
		FromEmail:         cfg.MailFromEmail,
		FromName:          cfg.MailFromName,
		Timeout:           cfg.CalloutTimeout(),
		AdminEmail:        cfg.AdminEmail,
		OverrideRecipient: cfg.NotifyOverrideEmail,
	}, logger)
	if !mail.Enabled() {
		logger.Warn("SENDGRID_API_KEY not set, citation notifications disabled")
	}

	setupGracefulShutdown(db, logger)
	runServer(cfg, db, logger, scorer, mail)
}

func setupGracefulShutdown(db *gorm.DB, logger *zap.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		logger.Info("Received shutdown signal, shutting down")
		database.Close(db)
		logger.Sync()
		os.Exit(0)
	}()
}

func runServer(cfg *config.Config, db *gorm.DB, logger *zap.Logger, scorer scoring.Client, mail mailer.Client) {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.RequestID())

	corsConfig := cors.DefaultConfig()
	origins := cfg.Origins()
	if len(origins) == 1 && origins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	authorsService := services.NewAuthorsService(db, logger)
	articlesService := services.NewArticlesService(db, logger)
	referencesService := services.NewReferencesService(db, logger, scorer, mail)
	tokens := auth.NewTokenIssuer(cfg.TokenSecret)

	r.GET("/health", handlers.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.NewAuthorsHandler(authorsService).RegisterRoutes(r)
	handlers.NewArticlesHandler(articlesService).RegisterRoutes(r)
	handlers.NewReferencesHandler(referencesService).RegisterRoutes(r)
	handlers.NewClientHandler(authorsService, tokens).RegisterRoutes(r)

	logger.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("Failed to run server", zap.Error(err))
	}
}
