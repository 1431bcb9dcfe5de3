package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hiveboard/hiveboard/internal/hive"
	"github.com/hiveboard/hiveboard/internal/monitor"
	"github.com/hiveboard/hiveboard/internal/resources"
	"github.com/hiveboard/hiveboard/internal/server"
	"github.com/hiveboard/hiveboard/internal/store"
	"github.com/hiveboard/hiveboard/pkg/config"
	"github.com/hiveboard/hiveboard/pkg/events"
	"github.com/hiveboard/hiveboard/pkg/logging"
	"github.com/hiveboard/hiveboard/pkg/metrics"
	"github.com/hiveboard/hiveboard/pkg/models"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the hive coordinator and HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}

	collector, err := metrics.NewStandardCollector()
	if err != nil {
		return fmt.Errorf("init metrics: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	st, err := newStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.Events.Enabled {
		kp := events.NewKafkaPublisher(events.DefaultKafkaConfig(cfg.Events.Brokers))
		defer kp.Close()
		publisher = kp
		logger.Info("kafka event publishing enabled", logging.Any("brokers", cfg.Events.Brokers))
	}

	res := resources.NewManager(logger)
	coordinator := hive.New(cfg.Hive, st, logger, collector, publisher)
	mon := monitor.New(cfg.Monitor, res, coordinator, logger, collector, publisher)

	mon.RegisterComponent("store", func() models.HealthStatus {
		checkCtx, checkCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer checkCancel()
		if _, err := st.ListAgents(checkCtx); err != nil {
			return models.HealthUnhealthy
		}
		return models.HealthHealthy
	})
	mon.RegisterComponent("events", publisher.Health)
	mon.RegisterComponent("hive", func() models.HealthStatus {
		return models.HealthHealthy
	})

	// Resource auto-optimization runs on the monitor's cadence
	resStop := make(chan struct{})
	go res.Run(resStop, cfg.Monitor.SampleInterval)
	defer close(resStop)

	coordinator.Start(ctx)
	defer coordinator.Stop()
	mon.Start(ctx)
	defer mon.Stop()

	// Threshold changes apply without a restart
	watcher := config.NewWatcher(cfgFile)
	watcher.OnReload(func(updated *config.Config) {
		mon.SetConfig(updated.Monitor)
		logger.Info("configuration reloaded")
	})
	if err := watcher.Start(ctx); err != nil {
		logger.Warn("config watcher unavailable", logging.Err(err))
	} else {
		defer watcher.Stop()
	}

	srv := server.New(cfg.Server, coordinator, res, mon, logger, collector)
	if err := srv.Start(ctx); err != nil {
		return err
	}

	logger.Info("hiveboard stopped")
	return nil
}

func newLogger(lc config.LoggingConfig) (logging.Logger, error) {
	logger, err := logging.NewZapLogger(logging.Config{
		Level:  logging.ParseLevel(lc.Level),
		Format: lc.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

func newStore(ctx context.Context, sc config.StoreConfig, logger logging.Logger) (store.Store, error) {
	switch sc.Backend {
	case "", "memory":
		return store.NewMemoryStore(), nil
	case "redis":
		rs := store.NewRedisStore(sc.Redis)
		if err := rs.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connect redis %s: %w", sc.Redis.Address, err)
		}
		logger.Info("redis store connected", logging.String("address", sc.Redis.Address))
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", sc.Backend)
	}
}
