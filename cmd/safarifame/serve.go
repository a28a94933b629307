package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"safarifame/internal/feed"
	"safarifame/internal/ics"
	"safarifame/internal/league"
	appLog "safarifame/internal/log"
	"safarifame/internal/metrics"
	"safarifame/internal/web"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site and refresh the fight calendar on schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appLog.Info("safarifame starting", "version", version)

			conf, err := loadConfig(flags)
			if err != nil {
				return err
			}
			// CLI --listen overrides config file listen if provided.
			if listen != "" {
				conf.Listen = listen
			}

			appLog.Info("effective config",
				"listen", conf.Listen,
				"refresh", conf.RefreshCron,
				"fetch_timeout", conf.FetchTimeout,
				"cache_dir", conf.CacheDir,
				"log_level", conf.LogLevel,
			)

			// Root context with cancellation on SIGINT/SIGTERM.
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			m := metrics.New()
			refresher := feed.New(
				ics.NewFetcher(conf.CacheDir, conf.FetchTimeout),
				ics.Source{ID: "fights", URL: conf.CalendarURL},
				ics.NewExtractor(ics.UUIDGenerator{}),
				m,
			)
			if err := refresher.Start(ctx, conf.RefreshCron); err != nil {
				return err
			}

			srv, err := web.NewServer(conf, refresher, league.NewSeededStore(), m)
			if err != nil {
				return err
			}
			if err := srv.Run(ctx); err != nil {
				appLog.Error("http server failed", err)
				return err
			}

			appLog.Info("safarifame exiting")
			return nil
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address (overrides config if set)")
	return cmd
}
