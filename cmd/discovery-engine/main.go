package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fotlabs/discovery-engine/internal/autoscale"
	"github.com/fotlabs/discovery-engine/internal/config"
	"github.com/fotlabs/discovery-engine/internal/engine"
	"github.com/fotlabs/discovery-engine/internal/generate"
	"github.com/fotlabs/discovery-engine/internal/health"
	"github.com/fotlabs/discovery-engine/internal/logging"
	"github.com/fotlabs/discovery-engine/internal/pipeline"
	"github.com/fotlabs/discovery-engine/internal/score"
	"github.com/fotlabs/discovery-engine/internal/stats"
	"github.com/fotlabs/discovery-engine/internal/store"
	"github.com/fotlabs/discovery-engine/internal/validate"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		logging.Fatal("invalid configuration", logging.F("error", err.Error()))
	}

	logging.SetLevel(logging.Level(strings.ToUpper(cfg.LogLevel)))
	logging.SetResource(map[string]string{
		"service.name":    "discovery-engine",
		"service.version": config.Version(),
	})

	applyMemoryLimit(cfg.MemoryLimitRatio)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Primary store. A connection failure is survivable: the engine runs in
	// fallback-only mode and every record goes to local files.
	var primary store.Backend
	neo, err := store.NewNeo4jStore(ctx, cfg.Neo4jURI, cfg.Neo4jUsername, cfg.Neo4jPassword, cfg.Neo4jDatabase)
	if err != nil {
		logging.Warn("neo4j unavailable, running fallback-only", logging.F(
			"error", err.Error(),
			"uri", cfg.Neo4jURI,
		))
	} else {
		primary = neo
	}

	fallback, err := store.NewFallbackStore(cfg.FallbackDir, cfg.FallbackCompression)
	if err != nil {
		logging.Fatal("failed to create fallback store", logging.F(
			"error", err.Error(),
			"dir", cfg.FallbackDir,
		))
	}
	gateway := store.NewGateway(primary, fallback)

	producer := generate.New(cfg.GeneratorSeed)
	scorer := score.NewVQbitScorer(cfg.GeneratorSeed)
	validator := validate.New(cfg.MinQualityScore)
	pipe := pipeline.New(producer, scorer, validator, cfg.ScoreConcurrency)

	agg := stats.NewAggregator(cfg.ProgressEvery)

	policy := autoscale.NewPolicy(autoscale.PolicyConfig{
		MinPerCycle:    cfg.MinBatchSize,
		MaxPerCycle:    cfg.MaxBatchSize,
		HighWater:      cfg.MemoryHighWater,
		LowWater:       cfg.MemoryLowWater,
		AvailableFloor: uint64(cfg.AvailableFloorBytes),
		ShrinkFactor:   cfg.ShrinkFactor,
		GrowFactor:     cfg.GrowFactor,
	})

	eng := engine.New(policy, pipe, gateway, agg, engine.Config{
		InitialBatchSize: cfg.InitialBatchSize,
		CyclePause:       cfg.CyclePause,
		ErrorBackoff:     cfg.ErrorBackoff,
		MaxCycles:        cfg.MaxCycles,
	})

	checker := health.New()
	checker.Register("engine", func() error {
		if s := eng.State(); s != engine.StateRunning {
			return errors.New("engine " + s.String())
		}
		return nil
	})
	checker.Register("storage", func() error {
		if gateway.Mode() != store.BackendPrimary {
			return errors.New("primary store detached, fallback-only")
		}
		return nil
	})

	statsServer := startStatsServer(cfg.StatsAddr, checker)

	stopSignals := eng.HandleSignals()
	defer stopSignals()

	logging.Info("discovery engine started", logging.F(
		"batch_size", cfg.InitialBatchSize,
		"batch_min", cfg.MinBatchSize,
		"batch_max", cfg.MaxBatchSize,
		"storage_mode", gateway.Mode(),
		"fallback_dir", cfg.FallbackDir,
		"stats_addr", cfg.StatsAddr,
		"max_cycles", cfg.MaxCycles,
	))

	runErr := eng.Run(ctx)

	checker.SetShuttingDown()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := statsServer.Shutdown(shutdownCtx); err != nil {
		logging.Error("stats server shutdown error", logging.F("error", err.Error()))
	}

	if runErr != nil {
		logging.Error("engine exited with error", logging.F("error", runErr.Error()))
		os.Exit(1)
	}
	logging.Info("shutdown complete")
}

// applyMemoryLimit sets GOMEMLIMIT from the cgroup limit when one exists,
// falling back to total system memory.
func applyMemoryLimit(ratio float64) {
	limit, err := memlimit.SetGoMemLimitWithOpts(
		memlimit.WithRatio(ratio),
		memlimit.WithProvider(memlimit.ApplyFallback(
			memlimit.FromCgroupHybrid,
			memlimit.FromSystem,
		)),
	)
	if err != nil {
		logging.Warn("could not set GOMEMLIMIT", logging.F("error", err.Error()))
		return
	}
	logging.Info("GOMEMLIMIT set", logging.F(
		"limit_bytes", limit,
		"ratio", ratio,
		"effective", debug.SetMemoryLimit(-1),
	))
}

func startStatsServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", checker.LiveHandler())
	mux.HandleFunc("/readyz", checker.ReadyHandler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		logging.Info("stats endpoint started", logging.F("addr", addr, "path", "/metrics"))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("stats server error", logging.F("error", err.Error()))
		}
	}()
	return srv
}
