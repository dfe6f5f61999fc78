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

	"ecotrack/backend/internal/auth"
	"ecotrack/backend/internal/catalog"
	mod "ecotrack/backend/internal/config"
	"ecotrack/backend/internal/handlers"
	"ecotrack/backend/internal/logging"
	"ecotrack/backend/internal/metrics"
	"ecotrack/backend/internal/store"
	"ecotrack/backend/internal/tracker"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func main() {
	cfg, err := mod.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.Log.Level, cfg.Log.Pretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("server error")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("stopped")
}

func run(ctx context.Context, cfg mod.Config, log zerolog.Logger) error {
	repo, err := store.Open(cfg.Database.Driver, cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.Database.Driver, err)
	}
	defer repo.Close()

	loc, _ := cfg.Location()
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	svc := tracker.NewService(repo, catalog.Default(),
		tracker.WithLocation(loc),
		tracker.WithRecorder(m),
		tracker.WithLogger(log.With().Str(logging.COMPONENT, "tracker").Logger()),
	)
	api := handlers.New(svc, auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), handlers.Options{
		BcryptCost:      cfg.Auth.BcryptCost,
		LeaderboardSize: cfg.Leaderboard.Size,
		Logger:          log.With().Str(logging.COMPONENT, "http").Logger(),
	})

	gin.SetMode(cfg.Server.Mode)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newRouter(cfg, log, m, api),
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info().Int("port", cfg.Server.Port).Str("store", cfg.Database.Driver).Msg("ecotrack api listening")
	return serve(ctx, srv)
}

// serve runs srv until it fails or ctx is done, then shuts it down.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(cfg mod.Config, log zerolog.Logger, m *metrics.Metrics, api *handlers.API) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(log), m.Middleware())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if len(cfg.CORS.AllowedOrigins) == 0 || cfg.CORS.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// health
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "ecotrack api"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	api.RegisterRoutes(r)
	return r
}
