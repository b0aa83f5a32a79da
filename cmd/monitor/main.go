package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-launch-monitor/internal/classify"
	"solana-launch-monitor/internal/config"
	"solana-launch-monitor/internal/filter"
	"solana-launch-monitor/internal/listing"
	"solana-launch-monitor/internal/observability"
	"solana-launch-monitor/internal/pipeline"
	"solana-launch-monitor/internal/scan"
	"solana-launch-monitor/internal/solana"
	"solana-launch-monitor/internal/stream"
)

func main() {
	presetPath := flag.String("filter-preset", "", "YAML filter preset (overrides FILTER_PRESET_PATH)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (overrides METRICS_PORT, empty uses config)")
	flag.Parse()

	logger := log.New(os.Stdout, "[monitor] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Config error: %v", err)
	}

	if *presetPath != "" {
		cfg.FilterPresetPath = *presetPath
	}

	addr := *metricsAddr
	if addr == "" {
		addr = fmt.Sprintf(":%d", cfg.MetricsPort)
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		logger.Printf("Starting metrics server on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			logger.Printf("Metrics server error: %v", err)
		}
	}()

	runtime := pipeline.NewRuntime(pipeline.Tuning{
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
		ReconnectInterval:    cfg.ReconnectInterval,
		KeepAliveInterval:    cfg.KeepAliveInterval,
		PollInterval:         cfg.PollInterval,
		ScanPageSize:         cfg.ScanPageSize,
		ScanMaxRecords:       cfg.ScanMaxRecords,
		MaxTracked:           cfg.MaxTracked,
		TrimSize:             cfg.TrimSize,
	})

	if cfg.FilterPresetPath != "" {
		preset, err := filter.LoadPreset(cfg.FilterPresetPath)
		if err != nil {
			logger.Fatalf("Filter preset error: %v", err)
		}
		if err := runtime.LoadConfig(preset); err != nil {
			logger.Fatalf("Filter preset error: %v", err)
		}
		logger.Printf("Loaded filter preset from %s", cfg.FilterPresetPath)
	}

	rpc := solana.NewHTTPClient(cfg.RPCURL)

	// Connectivity probe before entering the run loop.
	probeCtx, probeCancel := context.WithTimeout(context.Background(), 15*time.Second)
	if slot, err := rpc.GetSlot(probeCtx); err != nil {
		logger.Printf("RPC probe failed (continuing anyway): %v", err)
	} else {
		logger.Printf("Connected to RPC, current slot %d", slot)
	}
	probeCancel()

	manager, err := stream.New(stream.Config{
		Endpoint:             cfg.WSURL,
		Programs:             cfg.WatchedPrograms,
		MaxReconnectAttempts: cfg.MaxReconnectAttempts,
		ReconnectInterval:    cfg.ReconnectInterval,
		KeepAliveInterval:    cfg.KeepAliveInterval,
	},
		stream.WithLogger(logger),
		stream.WithStateChangeHook(func(s stream.State) {
			observability.RecordStreamState(s.String())
			if s == stream.Connecting {
				observability.RecordReconnectAttempt()
			}
		}),
	)
	if err != nil {
		logger.Fatalf("Stream setup error: %v", err)
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if cfg.ListingURL != "" {
		opts = append(opts, pipeline.WithListingClient(listing.NewClient(cfg.ListingURL)))
		logger.Printf("Listing poller enabled: %s", cfg.ListingURL)
	}

	coordinator := pipeline.NewCoordinator(
		runtime,
		manager,
		classify.New(nil),
		classify.NewEnricher(rpc, logger),
		scan.New(rpc, logger),
		newLogNotifier(logger),
		opts...,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		}
	}()

	logger.Printf("Watching %d program(s) on %s", len(cfg.WatchedPrograms), cfg.WSURL)
	if err := coordinator.Run(ctx); err != nil && err != context.Canceled {
		logger.Fatalf("Pipeline error: %v", err)
	}
	logger.Println("Shutdown complete")
}
