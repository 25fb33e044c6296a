package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/taskhive/taskhive/internal/auth"
	"github.com/taskhive/taskhive/internal/blob"
	"github.com/taskhive/taskhive/internal/cache"
	"github.com/taskhive/taskhive/internal/cascade"
	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/handler"
	"github.com/taskhive/taskhive/internal/notify"
	"github.com/taskhive/taskhive/internal/progress"
	"github.com/taskhive/taskhive/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load()

	db, err := store.OpenPostgres(cfg.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	ctx := context.Background()
	redisClient, err := cache.Open(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	sessions := cache.NewSessions(redisClient)

	notifier := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer func() {
		if err := notifier.Close(); err != nil {
			logrus.WithError(err).Warn("kafka shutdown failed")
		}
	}()

	uploader, err := blob.NewS3Uploader(cfg.AWSRegion, cfg.S3Bucket)
	if err != nil {
		log.Fatal("Failed to initialize S3 uploader:", err)
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret)
	router := handler.NewRouter(handler.Deps{
		Store:    db,
		Issuer:   issuer,
		Sessions: sessions,
		Cascade:  cascade.NewManager(db, sessions, notifier),
		Progress: progress.NewService(db),
		Notifier: notifier,
		Uploader: uploader,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logrus.Infof("Server listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("forced shutdown")
	}
	if err := redisClient.Close(); err != nil {
		logrus.WithError(err).Warn("redis shutdown failed")
	}
}
