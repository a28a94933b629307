package main

import (
	"github.com/spf13/cobra"

	"safarifame/internal/capture"
	appLog "safarifame/internal/log"
)

func newSnapshotCmd(flags *rootFlags) *cobra.Command {
	var (
		url string
		out string
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture the home page of a running server as a PNG preview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if url == "" {
				url = "http://" + conf.Listen + "/"
			}
			if out == "" {
				out = conf.PreviewPath
			}

			appLog.Info("snapshot capture start", "url", url, "out", out)
			if err := capture.CapturePagePNG(cmd.Context(), capture.Options{URL: url, OutputPath: out}); err != nil {
				appLog.Error("snapshot capture failed", err, "url", url)
				return err
			}
			appLog.Info("snapshot capture done", "out", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Page to capture (default: home page on the configured listen address)")
	cmd.Flags().StringVar(&out, "out", "", "Output PNG path (default: preview_path from config)")
	return cmd
}
