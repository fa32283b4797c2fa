package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"userauth/backend/internal/config"
	domain "userauth/backend/internal/domain/auth"
	"userauth/backend/internal/httpserver"
	"userauth/backend/internal/infrastructure/memory"
	"userauth/backend/internal/infrastructure/postgres"
	"userauth/backend/internal/infrastructure/token"
	"userauth/backend/internal/logging"
	authusecase "userauth/backend/internal/usecase/auth"
	userusecase "userauth/backend/internal/usecase/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Env, os.Stdout)
	log.Info("starting user auth service",
		slog.String("env", cfg.Env),
		slog.String("store", cfg.StoreDriver),
		slog.String("registration", cfg.RegistrationPolicy),
	)

	rootCtx := context.Background()
	repo, closeStore, err := openStore(rootCtx, cfg)
	if err != nil {
		log.Error("failed to open user store", logging.Err(err))
		os.Exit(1)
	}
	defer closeStore()

	hasher, err := authusecase.NewPasswordHasher(cfg.BcryptCost)
	if err != nil {
		log.Error("failed to configure password hashing", logging.Err(err))
		os.Exit(1)
	}
	log.Debug("password hashing configured", slog.Int("bcrypt_cost", hasher.Cost()))
	tokenManager, err := token.NewJWTManager(cfg.SecretKey, cfg.Algorithm)
	if err != nil {
		log.Error("failed to configure token signing", logging.Err(err))
		os.Exit(1)
	}

	authService := authusecase.NewService(repo, tokenManager, hasher, cfg.AccessTokenTTL)
	userService := userusecase.NewService(repo, hasher)

	created, err := userService.EnsureAdmin(rootCtx, userusecase.BootstrapAdmin{
		Username: cfg.BootstrapAdmin.Username,
		Email:    cfg.BootstrapAdmin.Email,
		Password: cfg.BootstrapAdmin.Password,
	})
	if err != nil {
		log.Error("failed to seed bootstrap admin", logging.Err(err))
		os.Exit(1)
	}
	if created {
		log.Info("bootstrap admin created", slog.String("username", cfg.BootstrapAdmin.Username))
	}

	server := httpserver.NewServer(cfg, log, authService, userService)
	log.Info("HTTP server listening", slog.String("addr", server.Addr()))

	go func() {
		if err := server.Start(); err != nil {
			if errors.Is(err, http.ErrServerClosed) {
				log.Info("HTTP server closed")
				return
			}
			log.Error("server error", logging.Err(err))
			os.Exit(1)
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", logging.Err(err))
	} else {
		log.Info("graceful shutdown completed")
	}
}

func openStore(ctx context.Context, cfg config.Config) (domain.UserRepository, func(), error) {
	const op = "main.openStore"

	if cfg.StoreDriver == config.StoreDriverMemory {
		return memory.NewUserRepository(), func() {}, nil
	}

	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}
	return postgres.NewUserRepository(db.Pool), db.Close, nil
}
