// revlog server
// Append-only version history for tasks with word-level change summaries
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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/nainya/revlog/internal/logger"
	"github.com/nainya/revlog/internal/metrics"
	"github.com/nainya/revlog/internal/server"
	"github.com/nainya/revlog/pkg/registry"
	"github.com/nainya/revlog/pkg/store"
)

func main() {
	var (
		listenAddr string
		obsAddr    string
		dataDir    string
		logLevel   string
		pretty     bool
	)

	root := &cobra.Command{
		Use:   "revlog",
		Short: "Version history server for tasks with word-level diffs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(listenAddr, obsAddr, dataDir, logLevel, pretty)
		},
	}

	root.Flags().StringVar(&listenAddr, "listen", ":8080", "API listen address")
	root.Flags().StringVar(&obsAddr, "obs-listen", ":9090", "observability listen address (metrics, pprof)")
	root.Flags().StringVar(&dataDir, "data-dir", "revlog-data", "database directory")
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.Flags().BoolVar(&pretty, "pretty", false, "pretty-print logs for development")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(listenAddr, obsAddr, dataDir, logLevel string, pretty bool) error {
	log := logger.New(logger.Config{Level: logLevel, Pretty: pretty})
	log.LogServerStart(listenAddr, dataDir)

	cfg := store.DefaultConfig(dataDir)
	cfg.Logger = log.StoreLogger().Zerolog()
	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	m := metrics.New(prometheus.DefaultRegisterer)

	reg := registry.New(m.InstrumentStore(st))
	if err := reg.Restore(context.Background()); err != nil {
		return fmt.Errorf("restore histories: %w", err)
	}
	log.Info("histories restored").
		Int("tasks", reg.TotalTasks()).
		Int("versions", reg.TotalVersions()).
		Send()

	m.UpdateRegistryStats(reg.TotalTasks(), reg.TotalVersions())
	stopUptime := make(chan struct{})
	m.StartUptimeUpdater(stopUptime)
	defer close(stopUptime)

	api := &http.Server{
		Addr:         listenAddr,
		Handler:      server.New(reg, log, m).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	obs := server.NewObservabilityServer(obsAddr, log)

	errCh := make(chan error, 2)
	go func() {
		if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("api server failed: %w", err)
		}
	}()
	go func() {
		if err := obs.Start(); err != nil {
			errCh <- err
		}
	}()
	log.Info("revlog server ready").Str("addr", listenAddr).Send()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
	}

	log.LogServerShutdown()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := api.Shutdown(ctx); err != nil {
		log.Error("api shutdown").Err(err).Send()
	}
	if err := obs.Shutdown(ctx); err != nil {
		log.Error("observability shutdown").Err(err).Send()
	}
	return nil
}
