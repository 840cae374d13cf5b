package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/gaitlab/gait-service/docs"
	"github.com/gaitlab/gait-service/internal/cache"
	"github.com/gaitlab/gait-service/internal/config"
	"github.com/gaitlab/gait-service/internal/events"
	mediaHandlers "github.com/gaitlab/gait-service/internal/http/handlers/media"
	"github.com/gaitlab/gait-service/internal/http/handlers/notifications"
	sessionHandlers "github.com/gaitlab/gait-service/internal/http/handlers/session"
	"github.com/gaitlab/gait-service/internal/http/handlers/users"
	wsHandlers "github.com/gaitlab/gait-service/internal/http/handlers/websocket"
	"github.com/gaitlab/gait-service/internal/http/middleware"
	"github.com/gaitlab/gait-service/internal/services/media"
	"github.com/gaitlab/gait-service/internal/services/registrar"
	"github.com/gaitlab/gait-service/internal/session"
	"github.com/gaitlab/gait-service/internal/storage"
	"github.com/gaitlab/gait-service/internal/storage/postgres"
	"github.com/gaitlab/gait-service/internal/utils/logging"
	"github.com/gaitlab/gait-service/internal/websocket"
	"github.com/gaitlab/gait-service/internal/workflow"
	"github.com/gaitlab/gait-service/internal/workspace"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Gait Analysis API
// @version 1.0
// @description Sign-in, video upload and review for gait analysis sessions.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// gait-service hash-secret <key> prints the value for registration.doctor_secret_hash
	if len(os.Args) == 3 && os.Args[1] == "hash-secret" {
		hash, err := registrar.HashSecret(os.Args[2])
		if err != nil {
			log.Fatal("failed to hash secret:", err)
		}
		fmt.Println(hash)
		return
	}

	// A missing .env file is fine
	_ = godotenv.Load()

	// load config
	cfg := config.MustLoad()
	logging.Setup(cfg.Log)

	warnings := cfg.Warnings()
	for _, w := range warnings {
		slog.Warn("feature disabled", slog.String("reason", w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// database setup
	var store storage.Storage
	if cfg.DatabaseEnabled() {
		pg, err := postgres.NewPostgres(cfg.Gateway.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to initialize database:", err)
		}
		defer pg.Close()
		store = pg
		slog.Info("Connected to Postgres database")
	}

	// redis setup
	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.Warn("Redis unavailable, caching and rate limits disabled", slog.String("error", err.Error()))
			redisClient.Close()
			redisClient = nil
		} else {
			defer redisClient.Close()
			slog.Info("Connected to Redis")
		}
	}

	var limiterClient redis.Cmdable
	var listCache *cache.CacheService
	if redisClient != nil {
		limiterClient = redisClient
		if store != nil {
			listCache = cache.NewCacheService(store, redisClient, cfg.Media.ListCacheTTL)
			store = listCache
		}
	}

	// object storage setup
	var objects workflow.ObjectStore
	if cfg.ObjectStorageEnabled() {
		svc, err := media.NewService(cfg.Storage)
		if err != nil {
			log.Fatal("Failed to initialize object storage:", err)
		}
		objects = svc
		slog.Info("Connected to object storage", slog.String("bucket", cfg.Storage.BucketName))
	}

	doctorRegistrar := registrar.NewLocal(store, cfg.Registration.DoctorSecretHash)

	hub := websocket.NewHub()
	go hub.Run(ctx)

	registry := workspace.NewRegistry(workspace.Deps{
		Auth:      session.NewAuthenticator(store, doctorRegistrar),
		Storage:   store,
		Objects:   objects,
		Publisher: events.NewEventPublisher(hub),
		Workflow: workflow.Options{
			MaxFileSize:        cfg.Media.MaxFileSize,
			DefaultContentType: cfg.Media.DefaultContentType,
			Workers:            cfg.Media.UploadWorkers,
		},
		NotificationTTL: cfg.Notifications.TTL,
		Warnings:        warnings,
	}, cfg.Auth.WorkspaceIdle)
	registry.OnEvict(hub.DisconnectWorkspace)
	go registry.Run(ctx, time.Minute)

	// setup router
	router := http.NewServeMux()
	auth := middleware.AuthMiddleware(cfg.Auth.JWTSecret, registry)
	limits := middleware.NewRateLimitConfig(limiterClient)
	videos := mediaHandlers.NewMediaHandlers(cfg.HTTPServer.MaxRequestSize)

	router.HandleFunc("GET /status", sessionHandlers.Status(sessionHandlers.StatusResponse{
		Database: cfg.DatabaseEnabled(),
		Storage:  cfg.ObjectStorageEnabled(),
		Cache:    redisClient != nil,
		Warnings: warnings,
	}))
	router.Handle("POST /session", limits.RateLimitedHandler(middleware.ActionOpenSession,
		sessionHandlers.Open(registry, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, warnings)))
	router.Handle("DELETE /session", auth(sessionHandlers.Close(registry)))
	router.Handle("GET /state", auth(sessionHandlers.State()))

	router.Handle("POST /auth", auth(limits.RateLimitedHandler(middleware.ActionAuth, users.Submit())))
	router.Handle("PUT /auth/mode", auth(users.SetMode()))
	router.Handle("POST /logout", auth(users.Logout()))
	router.Handle("POST /functions/create-doctor", limits.RateLimitedHandler(middleware.ActionCreateDoctor,
		users.CreateDoctor(doctorRegistrar)))

	router.Handle("GET /videos", auth(videos.List()))
	router.Handle("POST /videos", auth(limits.RateLimitedHandler(middleware.ActionUpload, videos.Upload())))
	router.Handle("POST /videos/{id}/open", auth(videos.OpenVideo()))
	router.Handle("DELETE /overlay/video", auth(videos.CloseVideo()))
	router.Handle("POST /videos/{id}/delete-request", auth(videos.RequestDelete()))
	router.Handle("DELETE /overlay/delete", auth(videos.CancelDelete()))
	router.Handle("POST /overlay/delete/confirm", auth(videos.ConfirmDelete()))

	router.Handle("GET /notifications", auth(notifications.List()))
	router.Handle("DELETE /notifications/{id}", auth(notifications.Dismiss()))

	router.HandleFunc("GET /ws", wsHandlers.WebSocketHandler(hub, registry, cfg.Auth.JWTSecret))

	if listCache != nil {
		router.Handle("GET /cache/stats", auth(cache.GetCacheStats(redisClient)))
		router.Handle("DELETE /cache", auth(cache.ClearCache(listCache)))
	}

	router.Handle("GET /swagger/", httpSwagger.WrapHandler)

	server := http.Server{
		Addr:              cfg.HTTPServer.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("server started", slog.String("address", cfg.HTTPServer.Address))

	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("failed to start server: %s", err)
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to gracefully shutdown server", slog.String("error", err.Error()))
		return
	}

	slog.Info("Server stopped")
}
