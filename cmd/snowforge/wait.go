package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/snowforge/snowforge/pkg/server/endpoints"
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until a snowforge server answers its status endpoint",
	Long: `Poll GET / on a snowforge server until it reports ok.

Useful in scripts and compose files that start the server in the background:

  snowforge server &
  snowforge wait --url http://localhost:8080 --retries 30`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		target, _ := cmd.Flags().GetString("url")
		retries, _ := cmd.Flags().GetInt("retries")
		interval, _ := cmd.Flags().GetDuration("interval")

		status, err := waitForStatus(cmd.Context(), os.Stderr, target, retries, interval)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Server did not become ready: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stdout, "snowforge %s is ready (ledger: %t)\n", status.Version, status.Ledger)
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().StringP("url", "u", fmt.Sprintf("http://localhost:%d", defaultPortInt()), "server base URL")
	waitCmd.Flags().IntP("retries", "r", 90, "number of attempts")
	waitCmd.Flags().Duration("interval", time.Second, "delay between attempts")
}

// waitForServer polls url until it answers with a 2xx status.
func waitForServer(url string, retries int, interval time.Duration) error {
	_, err := waitForStatus(context.Background(), io.Discard, url, retries, interval)
	return err
}

func waitForStatus(ctx context.Context, progress io.Writer, url string, retries int, interval time.Duration) (*endpoints.StatusResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	client := &http.Client{Timeout: 2 * time.Second}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for attempt := 1; attempt <= retries; attempt++ {
		if status, ok := probe(ctx, client, url); ok {
			fmt.Fprintln(progress)
			return status, nil
		}
		fmt.Fprint(progress, ".")
		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
	fmt.Fprintln(progress)
	return nil, fmt.Errorf("%s not ready after %d attempts", url, retries)
}

// probe reports whether the status endpoint answered. A 2xx body that is
// not a status document still counts as ready.
func probe(ctx context.Context, client *http.Client, url string) (*endpoints.StatusResponse, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false
	}
	status := &endpoints.StatusResponse{}
	_ = json.NewDecoder(resp.Body).Decode(status)
	return status, true
}
