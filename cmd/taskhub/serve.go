package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecgard/taskhub/internal/api"
	"github.com/alecgard/taskhub/internal/app"
	"github.com/alecgard/taskhub/internal/config"
	"github.com/alecgard/taskhub/internal/memstore"
	"github.com/alecgard/taskhub/internal/metrics"
	"github.com/alecgard/taskhub/internal/postgres"
	"github.com/alecgard/taskhub/internal/ratelimit"
	"github.com/alecgard/taskhub/internal/task"
	"github.com/spf13/cobra"
)

var (
	serveMemory bool
	serveSeed   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the taskhub API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMemory, "memory", false, "use the in-memory store instead of Postgres")
	serveCmd.Flags().BoolVar(&serveSeed, "seed", false, "load demo data on start (in-memory store only)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if serveMemory {
		cfg.Store.Driver = config.StoreMemory
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()

	var (
		repos  app.Repos
		pinger api.Pinger
	)
	switch cfg.Store.Driver {
	case config.StoreMemory:
		db := memstore.New()
		repos, pinger = app.MemoryRepos(db), db
		slog.Warn("using in-memory store, data is lost on exit")
	default:
		pool, err := postgres.Connect(ctx, cfg.Database.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		slog.Info("connected to database")

		m.RegisterDBPoolCollector(func() (int32, int32, int32) {
			s := pool.Stat()
			return s.TotalConns(), s.IdleConns(), s.AcquiredConns()
		})
		repos, pinger = app.PostgresRepos(pool), pool
	}

	svcs := app.New(repos, app.Options{
		SessionTTL: cfg.Auth.SessionTTL,
		Pagination: task.Pagination{
			DefaultLimit: cfg.Pagination.DefaultLimit,
			MaxLimit:     cfg.Pagination.MaxLimit,
		},
		Recorder: m,
	})

	if serveSeed {
		if cfg.Store.Driver != config.StoreMemory {
			return errors.New("--seed requires the in-memory store; use `taskhub seed` for Postgres")
		}
		if _, err := seedDemo(ctx, svcs); err != nil {
			return err
		}
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Default > 0 {
		limiter = ratelimit.New(cfg.RateLimit.Default, cfg.RateLimit.Window)
	}

	if n, err := svcs.Users.CleanExpiredSessions(ctx); err != nil {
		return err
	} else if n > 0 {
		slog.Info("expired sessions removed", "count", n)
	}

	router := api.NewRouter(api.RouterDeps{
		Users:          svcs.Users,
		Teams:          svcs.Teams,
		Tasks:          svcs.Tasks,
		Labels:         svcs.Labels,
		Comments:       svcs.Comments,
		Sessions:       svcs.Sessions,
		Limiter:        limiter,
		Metrics:        m,
		Pinger:         pinger,
		MetricsHandler: m.PrometheusHandler(),
		SummaryHandler: m.Handler(),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "store", cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	slog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	return srv.Shutdown(shutdownCtx)
}
