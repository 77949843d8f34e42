package main

import (
	"context"
	"ctchen222/book-catalog/internal/api/controller"
	apirepository "ctchen222/book-catalog/internal/api/repository"
	"ctchen222/book-catalog/internal/api/service"
	"ctchen222/book-catalog/internal/auth"
	"ctchen222/book-catalog/internal/config"
	"ctchen222/book-catalog/internal/db"
	"ctchen222/book-catalog/internal/logger"
	"ctchen222/book-catalog/internal/repository"
	"ctchen222/book-catalog/internal/server"
	"ctchen222/book-catalog/internal/telemetry"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Initialize telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
		if err != nil {
			log.Fatalf("failed to initialize telemetry: %v", err)
		}
		defer func() {
			if err := shutdown(ctx); err != nil {
				log.Printf("Error shutting down telemetry: %v", err)
			}
		}()
	}
	logger.Init(cfg.LogLevel, cfg.Telemetry.Enabled)

	// Initialize SQLite DB
	DB, err := db.Connect(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("failed to get sqlite db connection: %v", err)
	}
	defer DB.Close()
	if err := db.InitializeDB(ctx, DB); err != nil {
		log.Fatalf("failed to initialize sqlite db: %v", err)
	}

	issuer, err := auth.NewTokenIssuer(auth.TokenConfig{
		Secret:   []byte(cfg.JWT.Secret),
		TTL:      cfg.JWT.TTL,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	})
	if err != nil {
		log.Fatalf("failed to create token issuer: %v", err)
	}

	var userOpts []service.UserOption
	if cfg.ThrottleEnabled() {
		// Initialize Redis
		rdb, err := db.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatalf("failed to initialize redis: %v", err)
		}
		defer rdb.Close()
		attempts := repository.NewLoginAttemptRepository(rdb, cfg.Throttle.Window)
		userOpts = append(userOpts, service.WithLoginThrottle(attempts, cfg.Throttle.MaxAttempts))
	} else {
		slog.InfoContext(ctx, "login throttling disabled")
	}

	// Create services
	tx := db.NewTransactor(DB)
	repos := apirepository.NewManager()
	policy := auth.PasswordPolicy{
		MinLength:     cfg.Password.MinLength,
		RequireDigit:  cfg.Password.RequireDigit,
		RequireLower:  cfg.Password.RequireLower,
		RequireUpper:  cfg.Password.RequireUpper,
		RequireSymbol: cfg.Password.RequireSymbol,
	}
	userService, err := service.NewUserService(tx, repos, issuer, policy, userOpts...)
	if err != nil {
		log.Fatalf("failed to create user service: %v", err)
	}
	bookService := service.NewBookService(tx, repos)

	// Create controllers
	userController := controller.NewUserController(userService)
	bookController := controller.NewBookController(bookService)

	// Create the Gin-based server
	gin.SetMode(gin.ReleaseMode)
	srv := server.NewServer(userController, bookController, issuer)

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("http server started", "http.addr", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe: %v", err)
		}
	}()

	<-stop

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exiting")
}
