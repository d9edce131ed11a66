package cli

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/KKogaa/extracto-storage-service/internal/adapters/driving/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Route job event files dropped into a directory",
	Long: `Watches a directory for *.json job event files and routes each one.
Routed files move to processed/, rejected ones to failed/. Files already in
the directory are handled first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if jobRouter == nil {
		return errNotConfigured
	}
	dir := cfg.Intake.WatchDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		return errors.New("no watch directory given and intake.watch_dir is not set")
	}

	logStrategies()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := rate.NewLimiter(rate.Limit(cfg.Intake.EventsPerSecond), 1)
	return watch.New(dir, jobRouter, limiter).Run(ctx)
}
