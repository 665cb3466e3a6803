package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/snowforge/snowforge/pkg/forge"
	"github.com/snowforge/snowforge/pkg/server"
	"github.com/snowforge/snowforge/pkg/server/endpoints"
	"github.com/snowforge/snowforge/pkg/server/middleware"
)

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8080"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8080
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the snowforge HTTP API",
	Long: `Run the snowforge HTTP API.

The API needs SNOWFORGE_API_SECRET to verify bearer tokens (see "snowforge
token") and the SNOWFLAKE_* connection variables to apply workflows.

When the ledger is enabled its migrations are run on startup. Use
--no-migrate to skip.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		secret := os.Getenv(middleware.SecretEnv)
		if secret == "" {
			fmt.Fprintf(os.Stderr, "%s environment variable is required\n", middleware.SecretEnv)
			os.Exit(1)
		}

		envFile, _ := cmd.Flags().GetString("env-file")
		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")

		if err := runServer(host, port, envFile, []byte(secret), noMigrate); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running ledger migrations on start")
	serverCmd.Flags().String("env-file", "", "env file to load (default .env when present)")
}

func runServer(host, port, envFile string, secret []byte, noMigrate bool) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.ledger != nil && !noMigrate {
		if err := runMigrations(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	sf, err := a.snowflake(envFile, true)
	if err != nil {
		return err
	}

	log := logFactory("server")
	s := server.NewServer(a.cfg, func(ctx context.Context) (*forge.Forge, error) {
		return forge.FromConfig(sf, a.cfg).WithLogger(logFactory("forge")), nil
	}, host, port)
	s.Ledger = a.ledger
	s.Auditor = a.auditor
	s.Secret = secret
	s.Log = log
	endpoints.RegisterAll(s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 1)
	go func() {
		log.Infof("Running server at http://%s", s.Addr())
		errs <- s.Start()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}
