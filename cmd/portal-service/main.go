package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/api/handler"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/api/router"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/backend"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/config"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/events"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/session"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/internal/workflow"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/shared/logger"
	"github.com/tmgnisc/zen-edu-hub-job-portal-sub000/shared/rabbitmq"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("PORTAL_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/portal-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.ValidatePortalConfig(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	baseLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer baseLogger.Close()
	appLogger := baseLogger.ForService(cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	appLogger.Info("Starting portal service",
		slog.String("backend", cfg.Backend.BaseURL),
		slog.String("session_driver", cfg.Session.Driver),
	)

	store, closeStore, err := initSessionStore(&cfg.Session, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}
	defer closeStore()

	publisher, closePublisher, err := initPublisher(cfg, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize event publisher: %w", err)
	}
	defer closePublisher()

	emitter := events.NewEmitter(publisher, appLogger.Logger, cfg.Events.PublishTimeout)
	sessions := session.NewManager(store, appLogger.Logger)
	sessions.Subscribe(events.SessionListener(emitter))

	api := backend.NewClient(&backend.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout,
		UserAgent: cfg.Backend.UserAgent,
	}, appLogger.Logger)

	r := initRouter(cfg, &handler.Dependencies{
		Logger:         appLogger.Logger,
		Backend:        api,
		Sessions:       sessions,
		Events:         emitter,
		Submissions:    workflow.NewSubmissions(),
		JobsPageSize:   cfg.Portal.PageSizes.Jobs,
		HomePageSize:   cfg.Portal.PageSizes.Home,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	appLogger.Info("Portal service is running",
		slog.String("address", addr),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", slog.Any("error", err))
		return err
	}

	// in-flight events are flushed before the broker connection closes
	emitter.Close()

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	})
}

// initSessionStore builds the configured session store and its cleanup
func initSessionStore(cfg *config.SessionConfig, logger *slog.Logger) (session.Store, func(), error) {
	if cfg.Driver != config.SessionDriverRedis {
		logger.Info("Using in-memory session store", slog.Duration("ttl", cfg.TTL))
		return session.NewMemoryStore(cfg.TTL), func() {}, nil
	}

	store := session.NewRedisStore(session.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   cfg.Redis.Prefix,
		TTL:      cfg.TTL,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
	}

	logger.Info("Using Redis session store", slog.String("addr", cfg.Redis.Addr))
	return store, func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close Redis session store", slog.Any("error", err))
		}
	}, nil
}

// initPublisher connects to RabbitMQ when events are enabled and falls back
// to logging them otherwise
func initPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, func(), error) {
	if !cfg.Events.Enabled {
		logger.Info("Event publishing disabled; events are logged only")
		return events.NewLogPublisher(logger), func() {}, nil
	}

	rabbitCfg := rabbitConfig(&cfg.RabbitMQ)
	// the portal only publishes; the worker owns the queue
	rabbitCfg.QueueName = ""

	client, err := rabbitmq.NewClient(rabbitCfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return events.NewRabbitPublisher(client), func() {
		if err := client.Close(); err != nil {
			logger.Error("Failed to close RabbitMQ", slog.Any("error", err))
		}
	}, nil
}

func rabbitConfig(cfg *config.RabbitMQConfig) *rabbitmq.Config {
	return &rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		BindingKey:         cfg.BindingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(cfg *config.Config, deps *handler.Dependencies) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(deps, router.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Cookie: router.SessionCookie{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.CookieSecure,
			MaxAge: cfg.Session.TTL,
		},
	})
}
