package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/girguy/concaf/internal/health"
	"github.com/girguy/concaf/internal/metrics"
	"github.com/girguy/concaf/internal/scheduler"
)

var skipInitialRun bool

func init() {
	serveCmd.Flags().BoolVar(&skipInitialRun, "skip-initial-run", false, "Wait for the first scheduled trigger instead of predicting on startup")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions, metrics and the live feed, re-running on a schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		metrics.InitRegistry()
		hub := health.NewHub(appLog)

		p, err := buildPipeline(ctx, pipelineOptions{store: true, export: cfg.Storage.Enabled, publisher: hub})
		if err != nil {
			return err
		}
		defer p.Close()

		healthCfg := health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Port:        strconv.Itoa(cfg.Server.Port),
			MetricsPath: cfg.Server.MetricsPath,
			Logger:      appLog,
			DB:          p.repos,
			Latest:      p.service,
			Feed:        hub,
		}
		if p.blob != nil {
			healthCfg.Storage = p.blob
		}
		server := health.NewServer(healthCfg)

		sched := scheduler.NewScheduler(p.service, appLog)
		if cfg.Scheduler.Enabled {
			if _, err := sched.SchedulePipeline(cfg.Scheduler.Cron); err != nil {
				return err
			}
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			if err := hub.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})

		if err := server.Start(gctx); err != nil {
			return err
		}
		server.SetReady(true)

		if cfg.Scheduler.Enabled {
			if err := sched.Start(); err != nil {
				return err
			}
			appLog.WithField("next_run", sched.GetNextRun()).Info("Next pipeline run scheduled")
		}

		if !skipInitialRun {
			g.Go(func() error {
				// A failed first run is logged by the service; the server keeps
				// serving the stored batch and the scheduler retries.
				_, _ = p.service.Run(gctx)
				return nil
			})
		}

		<-gctx.Done()
		appLog.Info("Shutting down")
		server.SetReady(false)
		if cfg.Scheduler.Enabled {
			if err := sched.Stop(); err != nil {
				appLog.WithError(err).Warn("Scheduler did not stop cleanly")
			}
		}
		return g.Wait()
	},
}
