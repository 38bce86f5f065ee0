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

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/shopfront/internal/config"
	"github.com/Skotchmaster/shopfront/internal/db"
	"github.com/Skotchmaster/shopfront/internal/events"
	"github.com/Skotchmaster/shopfront/internal/imageurl"
	"github.com/Skotchmaster/shopfront/internal/logging"
	"github.com/Skotchmaster/shopfront/internal/ratelimit"
	"github.com/Skotchmaster/shopfront/internal/repo"
	"github.com/Skotchmaster/shopfront/internal/search"
	"github.com/Skotchmaster/shopfront/internal/service"
	"github.com/Skotchmaster/shopfront/internal/storage"
	httpserver "github.com/Skotchmaster/shopfront/internal/transport/http"
	"github.com/Skotchmaster/shopfront/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_error", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.Env)
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server_exit", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx := context.Background()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(gdb); err != nil {
			logger.Error("db_close_error", "error", err)
		}
	}()
	if cfg.DBMigrate {
		if err := db.Migrate(gdb, cfg.DBDriver, cfg.DatabaseURL); err != nil {
			return err
		}
	}

	resolver := imageurl.New(cfg.UploadPrefix)
	images, uploadDir, err := newImageStore(ctx, cfg, resolver)
	if err != nil {
		return err
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewProducer(cfg.KafkaBrokers)
		logger.Info("kafka_enabled", "brokers", cfg.KafkaBrokers)
	}
	defer func() {
		if err := pub.Close(); err != nil {
			logger.Error("kafka_close_error", "error", err)
		}
	}()

	r := repo.New(gdb)
	products := service.NewProductService(r, images, pub, nil)

	if cfg.ESURL != "" {
		es, err := search.NewESClient(elasticsearch.Config{
			Addresses: []string{cfg.ESURL},
			Username:  cfg.ESUser,
			Password:  cfg.ESPassword,
		})
		if err != nil {
			return err
		}
		idx := search.New(es, cfg.ESIndex)
		products.Index = idx
		products.Searcher = idx
		logger.Info("search_enabled", "index", cfg.ESIndex)
	}

	store, closeStore, err := newRateLimitStore(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	renderer, err := web.NewRenderer(resolver)
	if err != nil {
		return err
	}

	e := httpserver.NewEcho(httpserver.Options{
		Production:  cfg.IsProduction(),
		CORSOrigins: cfg.CORSOrigins,
		RateLimiter: store,
		Renderer:    renderer,
	}, logger)

	httpserver.Register(e, &httpserver.Deps{
		ProductHandler: &httpserver.ProductHTTP{Svc: products},
		AuthHandler: &httpserver.AuthHTTP{Svc: &service.AuthService{
			Repo:            r,
			Events:          pub,
			JWTSecret:       []byte(cfg.JWTSecret),
			TokenTTL:        cfg.TokenTTL,
			LegacyPlaintext: cfg.AdminLegacyPlaintext,
		}},
		UserHandler:   &httpserver.UserHTTP{Svc: &service.UserService{Repo: r, Events: pub}},
		PageHandler:   &httpserver.PageHTTP{Products: products, SiteTitle: "Shrikha Organics"},
		JWTSecret:     []byte(cfg.JWTSecret),
		SearchEnabled: products.Searcher != nil,
		UploadDir:     uploadDir,
		UploadPrefix:  resolver.Prefix(),
		PublicDir:     cfg.PublicDir,
		Assets:        web.Assets(),
		Ready:         func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server_start", "addr", srv.Addr, "admin_login", "/admin-login")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case sig := <-quit:
		logger.Info("shutting_down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server_shutdown_error", "error", err)
	}

	logger.Info("shutdown_complete")
	return nil
}

// newImageStore returns the store and, for the local backend, the directory to
// serve under the uploads prefix.
func newImageStore(ctx context.Context, cfg *config.Config, resolver imageurl.Resolver) (storage.ImageStore, string, error) {
	if cfg.ImageBackend == "s3" {
		client, err := storage.NewS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, "", err
		}
		return storage.NewS3Store(client, cfg.S3.Bucket, cfg.S3.PublicURL), "", nil
	}

	local, err := storage.NewLocalStore(cfg.UploadDir, resolver)
	if err != nil {
		return nil, "", err
	}
	return local, cfg.UploadDir, nil
}

func newRateLimitStore(cfg *config.Config, logger *slog.Logger) (middleware.RateLimiterStore, func(), error) {
	if cfg.RedisURL == "" {
		return ratelimit.NewMemoryStore(cfg.RateLimit, cfg.RateLimitWindow), func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			logger.Error("redis_close_error", "error", err)
		}
	}

	store := ratelimit.NewRedisStore(rdb, cfg.RateLimit, cfg.RateLimitWindow)
	logger.Info("ratelimit_redis_enabled", "limit", cfg.RateLimit, "window", cfg.RateLimitWindow.String())
	return ratelimit.FailOpen(store, logger), closeFn, nil
}
