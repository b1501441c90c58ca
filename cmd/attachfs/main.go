package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/attachfs/internal/logger"
	"github.com/marmos91/attachfs/pkg/config"
	"github.com/marmos91/attachfs/pkg/gc"
	"github.com/marmos91/attachfs/pkg/namespace"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "Path to config file (default: "+config.GetDefaultConfigPath()+")")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("attachfs %s\n", version)
		return
	}

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "attachfs: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}

	log.Info("starting attachfs",
		"version", version,
		"records", cfg.Records.Type,
		"content", cfg.Content.Type,
		"mount_point", cfg.Namespace.MountPoint)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	records, err := config.CreateRecordStore(ctx, &cfg.Records)
	if err != nil {
		return fmt.Errorf("failed to create record store: %w", err)
	}
	defer func() {
		if err := records.Close(); err != nil {
			log.Error("failed to close record store", "error", err)
		}
	}()

	store, err := config.CreateContentStore(ctx, &cfg.Content)
	if err != nil {
		return fmt.Errorf("failed to create content store: %w", err)
	}

	if err := records.Healthcheck(ctx); err != nil {
		return fmt.Errorf("record store healthcheck failed: %w", err)
	}

	if err := config.SeedChannels(ctx, records, cfg.Channels, log); err != nil {
		return fmt.Errorf("failed to seed channels: %w", err)
	}

	metricsResult := config.InitializeMetrics(cfg, log)

	service := namespace.NewService(cfg.Namespace, records, records, store, log, metricsResult.Namespace)

	sweeper := gc.NewSweeper(records, store, gc.Config{
		Enabled:  cfg.Sweeper.Enabled,
		Interval: cfg.Sweeper.Interval,
		MinAge:   cfg.Sweeper.MinAge,
		DryRun:   cfg.Sweeper.DryRun,
	}, log)
	sweeper.Start()

	// Walk the namespace root once so a broken store surfaces at startup
	// instead of on the first request.
	rootDir, err := service.Resolve(ctx, nil, cfg.Namespace.MountPoint)
	if err != nil {
		return fmt.Errorf("failed to resolve namespace root: %w", err)
	}
	owners, err := rootDir.ListChildren(ctx)
	if err != nil {
		return fmt.Errorf("failed to list namespace owners: %w", err)
	}
	log.Info("namespace ready", "channels", len(owners))

	errChan := make(chan error, 1)
	if metricsResult.Server != nil {
		go func() {
			if err := metricsResult.Server.Start(ctx); err != nil {
				errChan <- err
			}
		}()
	}

	log.Info("attachfs ready")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := sweeper.Stop(shutdownCtx); err != nil {
		log.Error("provisional sweeper shutdown failed", "error", err)
	}

	if metricsResult.Server != nil {
		if err := metricsResult.Server.Stop(shutdownCtx); err != nil {
			log.Error("metrics server shutdown failed", "error", err)
		}
	}

	log.Info("attachfs stopped")
	return nil
}
