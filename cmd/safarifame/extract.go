package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"safarifame/internal/ics"
	appLog "safarifame/internal/log"
)

func newExtractCmd(flags *rootFlags) *cobra.Command {
	var report bool

	cmd := &cobra.Command{
		Use:   "extract <file|->",
		Short: "Print the fight events found in an ICS file as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyDebug(flags)
			body, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}

			x := ics.NewExtractor(nil)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if report {
				return enc.Encode(x.ExtractReport(string(body)))
			}
			return enc.Encode(x.Extract(string(body)))
		},
	}
	cmd.Flags().BoolVar(&report, "report", false, "Include block count and skipped blocks")
	return cmd
}

func newInspectCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file|->",
		Short: "Show calendar metadata as seen by a strict iCalendar parser",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			applyDebug(flags)
			body, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			info, err := ics.Inspect(body)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "name:     %s\n", info.Name)
			fmt.Fprintf(out, "timezone: %s\n", info.Timezone)
			fmt.Fprintf(out, "events:   %d\n", info.EventCount)
			return nil
		},
	}
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}

// applyDebug raises the log level for commands that run without a
// config file.
func applyDebug(flags *rootFlags) {
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
}
