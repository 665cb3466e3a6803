package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const watchSettle = 250 * time.Millisecond

// workflowWatchCmd represents the workflow watch command
var workflowWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a workflow file and apply it whenever it changes",
	Long: `Watch a workflow file and apply it whenever it is written.

The directory holding the file is watched, so editors that replace the file
on save are picked up. Bursts of events are collapsed into one apply.

Example:
  snowforge workflow watch workflows/dev.yml --dry-run`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		envFile, _ := cmd.Flags().GetString("env-file")

		if err := watchWorkflow(args[0], envFile, dryRun); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to watch workflow: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	workflowCmd.AddCommand(workflowWatchCmd)
	workflowWatchCmd.Flags().Bool("dry-run", false, "validate and print the statements without executing them")
	workflowWatchCmd.Flags().String("env-file", "", "env file to load (default .env when present)")
}

func watchWorkflow(filename, envFile string, dryRun bool) error {
	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	sf, err := a.snowflake(envFile, !dryRun)
	if err != nil {
		return err
	}

	path, err := filepath.Abs(filename)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	log := logFactory("cli").WithField("workflow", filename)
	fmt.Printf("Watching %s for changes\n", filename)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settle := time.NewTimer(watchSettle)
	settle.Stop()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				settle.Reset(watchSettle)
			}
		case <-settle.C:
			fmt.Printf("[%s] %s changed, applying...\n", time.Now().Format(time.RFC3339), filename)
			if _, err := applyFile(ctx, os.Stdout, a, sf, path, dryRun); err != nil {
				log.WithError(err).Error("apply failed")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("watcher error")
		case <-ctx.Done():
			fmt.Println("\nShutting down...")
			return nil
		}
	}
}
