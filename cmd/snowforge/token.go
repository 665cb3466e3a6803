package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/snowforge/snowforge/pkg/server/middleware"
)

const defaultTokenTTL = 12 * time.Hour

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Issue a bearer token for the HTTP API",
	Long: `Issue an HS256 bearer token for the HTTP API, signed with
SNOWFORGE_API_SECRET.

Example:
  curl -H "Authorization: Bearer $(snowforge token ci-bot)" http://localhost:8080/runs`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ttl, _ := cmd.Flags().GetDuration("ttl")

		token, err := middleware.IssueToken([]byte(os.Getenv(middleware.SecretEnv)), args[0], ttl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().Duration("ttl", defaultTokenTTL, "token lifetime")
}
