package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/snowforge/snowforge/pkg/config"
	"github.com/snowforge/snowforge/pkg/logger"
)

var logFactory logger.Factory = logger.NoOp

var rootCmd = &cobra.Command{
	Use:   "snowforge",
	Short: "Declarative Snowflake workflows",
	Long: `snowforge validates, plans and applies workflow files describing Snowflake
objects: tables, stages, file formats, streams, tasks, PUT uploads and
COPY INTO loads.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		if level == "" {
			level = config.Get().LogLevel
		}
		registry, err := logger.NewRegistry(level)
		if err != nil {
			return err
		}
		logFactory = logger.Stderr(registry)
		config.SetLogger(logFactory("config"))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "", "log level spec, e.g. info or info,forge=debug (default from config)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func main() {
	Execute()
}
