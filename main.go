package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/roomshare/roomshare-be/internal/api"
	"github.com/roomshare/roomshare-be/internal/api/handlers"
	"github.com/roomshare/roomshare-be/internal/auth"
	"github.com/roomshare/roomshare-be/internal/config"
	"github.com/roomshare/roomshare-be/internal/database"
	"github.com/roomshare/roomshare-be/internal/logger"
	"github.com/roomshare/roomshare-be/internal/mailer"
	"github.com/roomshare/roomshare-be/internal/monitoring"
	"github.com/roomshare/roomshare-be/internal/otp"
	"github.com/roomshare/roomshare-be/internal/services"
	"github.com/roomshare/roomshare-be/internal/storage"
	"github.com/roomshare/roomshare-be/internal/websocket"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET must be set")
	}

	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	files, err := storage.NewFileStore(cfg.UploadPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize file storage")
	}

	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)
	} else {
		log.Warn().Msg("SMTP_HOST not set, outbound mail will only be logged")
		mail = mailer.NewLogMailer()
	}

	tokens := auth.NewService(cfg.JWTSecret)
	pending := otp.NewCache(otp.DefaultTTL)

	hub := websocket.NewHub()
	go hub.Run()

	securityService := services.NewSecurityService(db)
	userService := services.NewUserService(db)
	activityService := services.NewActivityService(db, securityService, hub)
	groupService := services.NewGroupService(db, securityService, userService, activityService)
	expenseService := services.NewExpenseService(db, securityService, files, activityService)
	authService := services.NewAuthService(userService, pending, mail, tokens)

	sweeper, err := monitoring.NewSweeper(cfg.MaintenanceSpec, pending, userService)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create maintenance sweeper")
	}
	go sweeper.Run()
	defer sweeper.Stop()

	router := api.NewRouter(api.RouterDeps{
		Auth:          handlers.NewAuthHandler(authService),
		Groups:        handlers.NewGroupHandler(groupService, activityService),
		Expenses:      handlers.NewExpenseHandler(expenseService),
		Websocket:     handlers.NewWebsocketHandler(hub, securityService, cfg.AllowedOrigin),
		Tokens:        tokens,
		AllowedOrigin: cfg.AllowedOrigin,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		log.Info().Int("port", cfg.ServerPort).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
