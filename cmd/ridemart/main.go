package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ridemart-lab/ridemart/internal/analytics"
	corecfg "github.com/ridemart-lab/ridemart/internal/core/config"
	"github.com/ridemart-lab/ridemart/internal/core/storage/postgres"
	"github.com/ridemart-lab/ridemart/internal/ingest"
	"github.com/ridemart-lab/ridemart/internal/migrations"
	"github.com/ridemart-lab/ridemart/internal/pipeline"
	"github.com/ridemart-lab/ridemart/internal/server"
)

func main() {
	configPath := flag.String("config", "ridemart.yaml", "Path to configuration file")
	serve := flag.Bool("serve", false, "Start the analytics API after the pipeline run")
	skipLoad := flag.Bool("skip-load", false, "Skip the pipeline run (serve only)")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := corecfg.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Loaded config", "config", cfg)

	// 2. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 2.1. Run Database Migrations
	if err := migrations.RunMigrations(dbAdapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// 3. Run the warehouse load
	if !*skipLoad {
		dataset, err := ingest.LoadDir(cfg.Pipeline.InputDir)
		if err != nil {
			slog.Error("Failed to load source files", "input_dir", cfg.Pipeline.InputDir, "error", err)
			os.Exit(1)
		}

		p := pipeline.New(dbAdapter, pipeline.Options{
			WorkerCount:   cfg.Pipeline.WorkerCount,
			StrictRatings: cfg.Pipeline.StrictRatings,
		})

		summary, err := p.Run(context.Background(), dataset)
		if err != nil {
			slog.Error("Pipeline run failed", "error", err)
			os.Exit(1)
		}

		slog.Info("Warehouse load finished",
			"run_id", summary.RunID,
			"accepted", summary.Accepted,
			"duplicates", summary.Duplicates,
			"excluded", summary.Excluded,
			"reasons", summary.Reasons,
			"duration", summary.Duration,
		)
	}

	if !*serve {
		return
	}

	// 4. Serve the analytics API until interrupted
	analyticsSvc := analytics.NewService(dbAdapter)

	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter.DB(), cfg.Server.Mode)
	analyticsSvc.RegisterRoutes(srv.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}
