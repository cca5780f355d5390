package cmd

import (
	"fmt"
	"os"

	"media-inventory/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "media-inventory",
	Short: "Device media inventory service",
	Long: `Media Inventory keeps a deduplicated mirror of storage device contents.
It loads device dumps produced by an external scanner into a relational
inventory and serves hierarchical usage statistics over it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Use the application's standard logger for error reporting.
		// Console format matches user expectations for a CLI tool and the
		// debug level configuration gives ISO8601 timestamps.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			// Absolute fallback if logger creation fails (rare)
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
