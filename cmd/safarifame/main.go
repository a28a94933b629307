package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"safarifame/internal/config"
	appLog "safarifame/internal/log"
)

const version = "0.1.0"

// rootFlags holds persistent CLI flag values shared by all commands.
type rootFlags struct {
	configPath string
	envFile    string
	debug      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "safarifame",
		Short:         "SafariFame boxing leaderboard and fight calendar",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "./config.yaml", "Path to config file")
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "Optional dotenv file with SAFARIFAME_* overrides")
	root.PersistentFlags().BoolVar(&flags.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newServeCmd(flags),
		newExtractCmd(flags),
		newInspectCmd(flags),
		newSnapshotCmd(flags),
	)
	return root
}

// loadConfig reads the config file, applies environment overrides and
// configures the log level.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		return nil, err
	}
	if err := conf.ApplyEnv(flags.envFile); err != nil {
		return nil, err
	}

	level, err := appLog.ParseLevel(conf.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("config log_level: %w", err)
	}
	if flags.debug {
		level = appLog.LevelDebug
	}
	appLog.SetLevel(level)

	return conf, nil
}
