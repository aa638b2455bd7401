// Command eventify is the application entry point. It wires together all
// layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventify/eventify/internal/admin"
	"github.com/eventify/eventify/internal/auth"
	"github.com/eventify/eventify/internal/config"
	"github.com/eventify/eventify/internal/database"
	"github.com/eventify/eventify/internal/handler"
	"github.com/eventify/eventify/internal/ledger"
	"github.com/eventify/eventify/internal/notify"
	"github.com/eventify/eventify/internal/repository"
	"github.com/eventify/eventify/internal/scheduler"
	"github.com/eventify/eventify/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)

	// Storage.
	pool, err := database.NewPool(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()
	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal().Err(err).Msg("schema migration failed")
	}
	logger.Info().Str("db", cfg.DBName).Msg("connected to postgres")

	// Notification sink.
	sink := newSink(cfg, logger)

	// Repositories and domain services.
	eventRepo := repository.NewEventRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	ldg := ledger.New(eventRepo, bookingRepo, userRepo, nil, sink, logger)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenExpiry)
	resetBase := "http://localhost:" + cfg.HTTPPort
	userSvc := service.NewUserService(userRepo, bookingRepo, tokens, sink, cfg.AdminSecret, resetBase, logger)
	eventSvc := service.NewEventService(eventRepo, bookingRepo, ldg)
	console := admin.NewConsole(pool, userRepo, bookingRepo, sink, logger)

	// HTTP surface.
	router := handler.NewRouter(handler.Handlers{
		Auth:    handler.NewAuthHandler(userSvc),
		Events:  handler.NewEventHandler(eventSvc),
		Booking: handler.NewBookingHandler(eventSvc, userSvc),
		Users:   handler.NewUserHandler(userSvc),
		Admin:   handler.NewAdminHandler(console, eventSvc),
		Tokens:  tokens,
	}, cfg.WebDir, logger)

	// Reminder scheduler runs until shutdown.
	schedCtx, stopSched := context.WithCancel(ctx)
	defer stopSched()
	reminder := scheduler.NewReminder(eventRepo, bookingRepo, sink, cfg.ReminderInterval, cfg.ReminderLead, logger)
	go reminder.Run(schedCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	stopSched()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

// newSink picks the notification transport from config. AMQP failures fall
// back to the log sink so the API still comes up without a broker.
func newSink(cfg config.Config, logger zerolog.Logger) notify.Sink {
	switch cfg.NotifyMode {
	case "amqp":
		sink, err := notify.NewAMQPSink(cfg.AMQPURL, cfg.AMQPExchange, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("amqp sink unavailable, falling back to log sink")
			return notify.LogSink{Logger: logger}
		}
		return sink
	case "smtp":
		return notify.NewSMTPSink(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	default:
		return notify.LogSink{Logger: logger}
	}
}
