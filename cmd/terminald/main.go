package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/go-redis/redis/v8"

	"terminal-voice-backend/config"
	"terminal-voice-backend/internal/activity"
	"terminal-voice-backend/internal/api"
	"terminal-voice-backend/internal/db"
	"terminal-voice-backend/internal/hub"
	"terminal-voice-backend/internal/logger"
	"terminal-voice-backend/internal/notification"
	"terminal-voice-backend/internal/projection"
	"terminal-voice-backend/internal/relay"
	"terminal-voice-backend/internal/sink"
	"terminal-voice-backend/internal/store"
)

func main() {
	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration from %s: %v\n", configPath, err)
		os.Exit(1)
	}

	log, level, err := logger.New(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log.Infow("Configuration loaded", "path", configPath)

	stopWatch, err := config.Watch(configPath, func(next *config.Config) {
		if err := logger.SetLevel(level, next.Log.Level); err != nil {
			log.Warnw("Ignoring log level from reloaded config", "error", err)
			return
		}
		log.Infow("Log level reloaded", "level", level.String())
	}, func(err error) {
		log.Warnw("Config reload failed", "error", err)
	})
	if err != nil {
		log.Warnw("Config hot reload disabled", "error", err)
	} else {
		defer stopWatch()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gormDB, err := db.Init(&cfg.Database, log)
	if err != nil {
		log.Fatalw("Failed to initialize database", "error", err)
	}
	appStore := store.NewGormStore(gormDB)

	observers := []relay.Observer{store.NewJournal(appStore)}

	var webpushOptions *webpush.Options
	if cfg.Push.Enabled() {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, appStore, webpushOptions, log)
		pool.Start(ctx)
		observers = append(observers, pool)
		log.Infow("Web push notifications enabled", "workers", cfg.WorkerPool.Size)
	} else {
		log.Warn("VAPID keys not configured, web push notifications disabled")
	}

	if cfg.Kafka.Enabled {
		kw := sink.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = kw.Close() }()
		observers = append(observers, sink.NewKafka(kw))
		log.Infow("Kafka sink enabled", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.Topic)
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalw("Redis ping failed", "addr", cfg.Redis.Addr, "error", err)
		}
		defer func() { _ = rdb.Close() }()
		observers = append(observers, sink.NewRedis(rdb, cfg.Redis.Channel))
		log.Infow("Redis sink enabled", "addr", cfg.Redis.Addr, "channel", cfg.Redis.Channel)
	}

	viewers := hub.New(log, cfg.Relay.SessionQueueSize)
	svc := relay.NewService(
		projection.New(projection.DefaultSeed(time.Now().UTC())),
		activity.NewLog(cfg.Relay.ActivityCapacity),
		viewers,
		log,
		relay.Options{
			GatepassValidity: cfg.Relay.GatepassValidity,
			AgentName:        cfg.Relay.AgentName,
			FanoutBuffer:     cfg.Relay.FanoutBuffer,
		},
		observers...,
	)
	go svc.Run(ctx)

	router := api.NewRouter(cfg.Server, api.Deps{
		Service:      svc,
		Viewers:      viewers,
		Store:        appStore,
		WebPush:      webpushOptions,
		Log:          log,
		WriteTimeout: cfg.Relay.WriteTimeout,
	})
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Infow("HTTP server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("HTTP server ListenAndServe", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	log.Info("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	// Viewer sockets are hijacked and not tracked by Shutdown.
	viewers.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server Shutdown", "error", err)
	}
	cancel()

	log.Info("Server gracefully stopped")
}

