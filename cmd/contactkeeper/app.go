package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avelichko/contactkeeper/internal/db"
	"github.com/avelichko/contactkeeper/internal/handlers"
	"github.com/avelichko/contactkeeper/internal/logger"
	"github.com/avelichko/contactkeeper/internal/repository/postgres"
	"github.com/avelichko/contactkeeper/internal/service/auth"
	"github.com/avelichko/contactkeeper/internal/service/avatar"
	"github.com/avelichko/contactkeeper/internal/service/contact"
	"github.com/avelichko/contactkeeper/internal/service/mailer"
)

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	close func()
}

func NewServerApp(ctx context.Context, c *Config) (*ServerApp, error) {
	// Initialize logger
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Connect to the database and run migrations
	pool, err := db.ConnectAndMigrate(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
	})

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := auth.NewTokenManager(auth.TokenConfig{SecretKey: c.SecretKey})
	if err != nil {
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	userCache := auth.NewRedisUserCache(redisClient, 0)

	var notifier auth.Notifier
	if c.SMTPHost != "" {
		notifier, err = mailer.NewSMTPMailer(mailer.Config{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			Username: c.SMTPUsername,
			Password: c.SMTPPassword,
			From:     c.SMTPFrom,
			BaseURL:  c.PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("error while creating smtp mailer. Err: %w", err)
		}
	} else {
		notifier = mailer.NewLogMailer(c.PublicBaseURL, log)
	}

	authService, err := auth.NewService(auth.Config{}, tokenManager, storage, userCache, notifier, log)
	if err != nil {
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	contactService := contact.NewService(storage)

	userHandler := handlers.NewUser(avatar.Disabled{})
	if c.S3Bucket != "" {
		avatarService, err := avatar.NewService(ctx, avatar.Config{
			Endpoint:        c.S3Endpoint,
			Region:          c.S3Region,
			Bucket:          c.S3Bucket,
			AccessKeyID:     c.S3AccessKeyID,
			SecretAccessKey: c.S3SecretAccessKey,
			PublicBaseURL:   c.S3PublicBaseURL,
		}, storage, userCache, log)
		if err != nil {
			return nil, fmt.Errorf("error while creating avatar service. Err: %w", err)
		}
		userHandler = handlers.NewUser(avatarService)
	} else {
		log.Warn("no S3 bucket configured, avatar uploads disabled")
	}

	// Initialize handlers
	mux := handlers.NewRouter(handlers.RouterConfig{
		Auth:     handlers.NewAuth(authService),
		Contacts: handlers.NewContact(contactService),
		Users:    userHandler,
		Birthday: handlers.NewBirthday(contactService),
		Tracking: handlers.NewTracking(log),
		Health:   handlers.NewHealth(pool),

		Resolver: authService,
		Redis:    redisClient,
		Logger:   log,
	})

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    mux,
		close: func() {
			pool.Close()
			redisClient.Close() // nolint:errcheck
		},
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
func (s *ServerApp) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.ListenAddr,
		Handler: s.Handler,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); err == context.DeadlineExceeded {
			slog.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		slog.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	slog.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	if s.close != nil {
		s.close()
	}
	return err
}
