package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lotusspa/backend/internal/config"
	"lotusspa/backend/internal/httpserver"
	"lotusspa/backend/internal/infrastructure/postgres"
	"lotusspa/backend/internal/infrastructure/session"
	"lotusspa/backend/internal/infrastructure/token"
	authusecase "lotusspa/backend/internal/usecase/auth"
	userusecase "lotusspa/backend/internal/usecase/user"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	rootCtx := context.Background()
	db, err := postgres.New(rootCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Migrate(rootCtx); err != nil {
		logger.Error("failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	tokens := token.NewJWTManager(cfg.Auth.Secret, cfg.Auth.Issuer)
	forge := session.NewForge(cfg.Auth.SessionKey)
	users := postgres.NewUserRepository(db.Pool)

	authService := authusecase.NewService(users, tokens, forge)
	userService := userusecase.NewService(users)
	resolver := authusecase.NewResolver(tokens, forge, logger)

	if cfg.Admin.SeedEnabled() {
		if err := userService.EnsureAdmin(rootCtx, cfg.Admin.Email, cfg.Admin.Name, cfg.Admin.Password); err != nil {
			logger.Error("failed to seed admin user", slog.Any("error", err))
			os.Exit(1)
		}
	}

	server := httpserver.NewServer(httpserver.Options{
		Config:      cfg,
		AuthService: authService,
		UserService: userService,
		Resolver:    resolver,
		Tokens:      tokens,
		Logger:      logger,
	})
	logger.Info("HTTP server listening", slog.String("addr", server.Addr()))

	go func() {
		if err := server.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				logger.Info("HTTP server closed")
				return
			}
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("graceful shutdown completed")
	}
}
