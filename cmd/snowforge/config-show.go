package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/snowforge/snowforge/pkg/config"
)

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show configuration attributes and their sources",
	Long: `Show snowforge configuration attributes and their sources.

Values come from defaults, snowforge.yml (in SNOWFORGE_CONFIG_PATH or the
working directory) and SNOWFORGE_* environment variables, in increasing
precedence. The Snowflake connection settings are shown with the password
redacted.

Example:
  snowforge config show
  snowforge config show --output json`,
	Run: func(cmd *cobra.Command, args []string) {
		output, _ := cmd.Flags().GetString("output")
		envFile, _ := cmd.Flags().GetString("env-file")

		if err := showConfiguration(output, envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configShowCmd.Flags().StringP("output", "o", "text", "Output format (text or json)")
	configShowCmd.Flags().String("env-file", "", "env file to load (default .env when present)")
}

func showConfiguration(output, envFile string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	sf, err := config.FromEnv(envFile, "", false)
	if err != nil {
		return err
	}
	redacted := sf.Redacted()

	if output == "json" {
		attributes, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		combined, err := json.MarshalIndent(map[string]interface{}{
			"config":    json.RawMessage(attributes),
			"snowflake": redacted,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(combined))
		return nil
	}

	fmt.Print(cfg.FormatText())
	fmt.Println()
	fmt.Println("Snowflake connection:")
	fmt.Printf("  account:   %s\n", redacted.Account)
	fmt.Printf("  user:      %s\n", redacted.User)
	fmt.Printf("  password:  %s\n", redacted.Password)
	fmt.Printf("  warehouse: %s\n", redacted.Warehouse)
	fmt.Printf("  database:  %s\n", redacted.Database)
	fmt.Printf("  schema:    %s\n", redacted.Schema)
	fmt.Printf("  role:      %s\n", redacted.Role)
	return nil
}
