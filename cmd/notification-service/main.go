package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"job-portal/internal/api"
	"job-portal/internal/api/handlers"
	"job-portal/internal/config"
	"job-portal/internal/infrastructure/mysql"
	"job-portal/internal/infrastructure/redis"
	"job-portal/internal/infrastructure/websocket"
	"job-portal/internal/services"
	"job-portal/pkg/logger"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is normal outside local development.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New().Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.NewWithLevel(cfg.Log.Level)
	defer func() {
		if s, ok := log.(interface{ Sync() error }); ok {
			_ = s.Sync()
		}
	}()
	if envErr != nil {
		log.Debug("No .env file loaded", "error", envErr)
	}

	log.Info("Starting notification service", "config", cfg.GetConfigString())

	// Initialize Redis
	rdb := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if cfg.Relay.Enabled {
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		log.Info("Connected to Redis", "address", cfg.Redis.Address)
	}

	// Initialize MySQL
	db, err := mysql.Connect(pingCtx, cfg.MySQL)
	if err != nil {
		log.Error("Failed to connect to MySQL", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			log.Error("Failed to close MySQL connection", "error", err)
		}
	}(db)
	log.Info("Connected to MySQL")

	userRepo := mysql.NewMySQLUserRepository(db)
	applicationRepo := mysql.NewMySQLApplicationRepository(db)

	verifier := services.NewJWTIdentityVerifier(cfg.JWT.Secret, cfg.JWT.Issuer, userRepo)
	connManager := websocket.NewConnectionManager(log)
	notificationService := services.NewNotificationService(connManager, userRepo, applicationRepo, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsHandler := websocket.NewWebSocketHandler(ctx, connManager, verifier,
		services.NoopPendingStore{}, services.NewLoggingNotificationActions(log),
		websocket.HandlerOptions{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
			Connection: websocket.ConnectionOptions{
				SendBuffer:     cfg.WebSocket.SendBuffer,
				WriteWait:      cfg.WebSocket.WriteWait,
				MaxMessageSize: cfg.WebSocket.MaxMessageSize,
			},
		}, log)

	router := api.NewRouter(api.RouterDeps{
		WebSocket:      handlers.NewWebSocketHandlers(wsHandler),
		System:         handlers.NewSystemHandlers(connManager, cfg.Instance.ID, log),
		Notifications:  handlers.NewNotificationHandler(notificationService, connManager, log),
		Verifier:       verifier,
		AllowedOrigins: cfg.WebSocket.AllowedOrigins,
		Log:            log,
	})

	// Start background services
	keepAlive := websocket.NewKeepAlive(connManager, cfg.WebSocket.PingInterval, log)
	if err := keepAlive.Start(); err != nil {
		log.Error("Failed to start keep-alive", "error", err)
		os.Exit(1)
	}

	if cfg.Relay.Enabled {
		eventListener := services.NewEventListener(notificationService, log)
		subscriber := redis.NewRedisCommandSubscriber(rdb, cfg.Relay.Channel, log)
		go func() {
			if err := eventListener.Start(ctx, subscriber); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Event listener stopped", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Starting notification server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down notification service...")

	// Closing the base context closes every socket.
	cancel()
	keepAlive.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Notification service stopped")
}
