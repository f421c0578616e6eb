package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/invoice-editor/internal/catalog"
	"github.com/diewo77/invoice-editor/internal/config"
	"github.com/diewo77/invoice-editor/internal/db"
	"github.com/diewo77/invoice-editor/internal/form"
	"github.com/diewo77/invoice-editor/internal/logger"
	"github.com/diewo77/invoice-editor/internal/metrics"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

// formTTL is how long an untouched form stays open.
const formTTL = 2 * time.Hour

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Config{}).Fatal().Err(err).Msg("load config")
	}
	log := logger.New(logger.Config{Env: cfg.App.Env(), Level: cfg.Log.Level})
	log.SetGlobal()

	dbConn, err := db.Open(cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	var rdb *redis.Client
	if cfg.Cache.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr, DB: cfg.Cache.RedisDB})
		defer rdb.Close()
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Cache.RedisAddr).Msg("redis unreachable, catalog cache disabled")
			rdb = nil
		}
	}
	products := catalog.NewRedisCache(rdb, catalog.NewGormSource(dbConn), cfg.Cache.TTL, log)

	if *migrateOnlyFlag {
		if err := db.Migrate(dbConn); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		log.Info().Msg("migrations completed")
		return
	}
	if *seedOnlyFlag {
		seed(dbConn, products, log)
		return
	}

	if cfg.App.Migrations {
		if err := db.Migrate(dbConn); err != nil {
			log.Fatal().Err(err).Msg("migration failed")
		}
		log.Info().Msg("migrations completed")
	}
	if cfg.App.Seed {
		seed(dbConn, products, log)
	}

	app := NewApp(AppDeps{
		DB:          dbConn,
		Log:         log,
		Metrics:     metrics.New(),
		Catalog:     products,
		Forms:       form.NewStore(formTTL),
		RateLimit:   cfg.Server.RateLimit,
		Production:  !cfg.App.Dev,
		DefaultLang: cfg.App.Lang,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      app,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Bool("dev", cfg.App.Dev).Str("db", cfg.Database.Driver).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
	log.Info().Msg("server stopped gracefully")
}

// seed loads the demo catalog and drops the cached snapshot so the new
// products show up before the TTL runs out.
func seed(conn *gorm.DB, products *catalog.RedisCache, log *logger.Logger) {
	if err := db.Seed(conn); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	if err := products.Invalidate(context.Background()); err != nil {
		log.Warn().Err(err).Msg("catalog cache not invalidated")
	}
	log.Info().Msg("demo catalog seeded")
}
