package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/careers-board/internal/config"
	"github.com/jonathan/careers-board/internal/db"
	"github.com/jonathan/careers-board/internal/events"
	"github.com/jonathan/careers-board/internal/janitor"
	"github.com/jonathan/careers-board/internal/jobs"
	"github.com/jonathan/careers-board/internal/logging"
	"github.com/jonathan/careers-board/internal/metrics"
	"github.com/jonathan/careers-board/internal/pipeline"
	"github.com/jonathan/careers-board/internal/server"
	"github.com/jonathan/careers-board/internal/server/ratelimit"
	"github.com/jonathan/careers-board/internal/storage"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the jobs, applications, uploads and live event endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT and the config file)")
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads and validates configuration, applying a non-zero port override.
func loadConfig(port int) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if port != 0 {
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(servePort)
	if err != nil {
		return err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.OutOrStdout())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, log)
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}
	if cfg.SeedJobs {
		n, err := database.SeedJobs(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			log.WithField("jobs", n).Info("seeded sample jobs")
		}
	}

	var (
		sink           metrics.Sink = metrics.NewNoopSink()
		metricsHandler http.Handler
	)
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		sink = metrics.NewPrometheusSink(reg, log)
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}

	blobs := storage.NewBlobStore(cfg.UploadDir)
	hub := events.NewHub(cfg.SSEBuffer, sink, log)
	publishers := []events.Publisher{hub}

	var relay *events.RedisRelay
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close() //nolint:errcheck

		relay = events.NewRedisRelay(client, events.DefaultChannel, hub, log)
		publishers = append(publishers, relay)
		log.WithField("redis", opts.Addr).Info("event relay enabled")
	} else {
		log.Info("REDIS_URL not set; events stay on this instance")
	}

	limiter := ratelimit.NewLimiter(ratelimit.NewConfig(cfg.RateLimitEnabled, cfg.RateLimit, cfg.ApplyRateLimit))

	srv := server.New(server.Config{
		Addr:            cfg.Addr(),
		MaxUploadBytes:  cfg.MaxUploadBytes,
		ShutdownTimeout: cfg.ShutdownTimeout,
		StaticDir:       cfg.StaticDir,
	}, server.Deps{
		Jobs:           jobs.NewRegistry(database, sink, log),
		Pipeline:       pipeline.New(database, blobs, sink, log),
		Candidates:     database,
		Blobs:          blobs,
		Hub:            hub,
		Dispatcher:     events.NewDispatcher(log, publishers...),
		DB:             database,
		Limiter:        limiter,
		Metrics:        sink,
		MetricsHandler: metricsHandler,
		Logger:         log,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	if relay != nil {
		g.Go(func() error {
			// Losing the relay degrades to single-instance delivery
			if err := relay.Run(gctx); err != nil {
				log.WithError(err).Error("event relay stopped")
			}
			return nil
		})
	}
	if cfg.SweepSchedule != "" {
		sweeper := janitor.NewSweeper(blobs, database, cfg.SweepGrace, sink, log)
		g.Go(func() error {
			return sweeper.Run(gctx, cfg.SweepSchedule)
		})
	}

	return g.Wait()
}
