package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finhealth-server/src/api"
	"finhealth-server/src/config"
	"finhealth-server/src/db"
	store "finhealth-server/src/db/sql"
	"finhealth-server/src/metrics"
	"finhealth-server/src/middleware"
	"finhealth-server/src/util"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		util.InitLogger("info", false)
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	util.InitLogger(cfg.LogLevel, cfg.LogPretty)

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatal().Err(err).Msg("database migration failed")
		}
	}

	// Connect to database
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("DB connection failed")
	}
	defer pool.Close()

	cache, err := db.NewCache(cfg.CacheMaxItems)
	if err != nil {
		log.Fatal().Err(err).Msg("cache init failed")
	}
	defer cache.Close()

	m := metrics.New()
	m.GaugeFunc("db_pool_total_connections", "Connections held by the database pool.", func() float64 {
		return float64(pool.Stat().TotalConns())
	})
	m.GaugeFunc("db_pool_acquired_connections", "Database connections currently in use.", func() float64 {
		return float64(pool.Stat().AcquiredConns())
	})

	// Router
	router := api.NewRouter(api.Deps{
		Store:          store.NewStore(pool),
		Cache:          cache,
		Tokens:         util.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		Metrics:        m,
		AuthLimiter:    middleware.NewKeyLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst, 10*time.Minute),
		AllowedOrigins: cfg.AllowedOrigins,
		DemoMode:       cfg.DemoMode,
		TrustProxy:     cfg.TrustProxy,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Bool("demo", cfg.DemoMode).Msg("API server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	log.Info().Msg("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
