package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/KKogaa/extracto-storage-service/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the HTTP API: POST /events accepts job-finished events, and
/products and /listings serve the stored catalog. Prometheus metrics are
exposed on /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if jobRouter == nil || catalogService == nil {
		return errNotConfigured
	}
	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	logStrategies()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	handler := httpapi.NewHandler(httpapi.Deps{
		Router:  jobRouter,
		Catalog: catalogService,
		Jobs:    jobService,
		Limiter: rate.NewLimiter(rate.Limit(cfg.Server.EventsPerSecond), cfg.Server.Burst),
		Metrics: metricsRecorder,
		Health:  healthCheck,
	})
	return httpapi.Serve(ctx, addr, handler)
}
