package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/snowforge/snowforge/pkg/config"
)

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and connection settings",
	Long: `Check that snowforge.yml and the SNOWFORGE_* overrides are valid and that
every required SNOWFLAKE_* variable is set. All missing variables are listed.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		envFile, _ := cmd.Flags().GetString("env-file")

		if err := validateConfiguration(envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Configuration is valid")
	},
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	configValidateCmd.Flags().String("env-file", "", "env file to load (default .env when present)")
}

func validateConfiguration(envFile string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	_, err := config.FromEnv(envFile, "", true)
	var missing *config.MissingVarsError
	if errors.As(err, &missing) {
		for _, name := range missing.Names {
			fmt.Fprintf(os.Stderr, "  %s is not set\n", name)
		}
	}
	return err
}
