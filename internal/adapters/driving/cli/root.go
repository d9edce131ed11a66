// Package cli provides the cobra command tree for the extracto binary.
package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KKogaa/extracto-storage-service/internal/config"
	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driving"
	"github.com/KKogaa/extracto-storage-service/internal/logger"
	"github.com/KKogaa/extracto-storage-service/internal/metrics"
)

var version = "dev"

var verbose bool

// Services wired by main before Execute.
var (
	productExtractor driving.Extractor[domain.Product]
	listingExtractor driving.Extractor[domain.Listing]
	jobRouter        driving.JobRouter
	catalogService   driving.CatalogService
	jobService       driving.JobService
	metricsRecorder  *metrics.Recorder
	healthCheck      func(context.Context) error
	cfg              = config.Default()
)

var errNotConfigured = errors.New("services not configured")

var rootCmd = &cobra.Command{
	Use:   "extracto",
	Short: "Extract and store scraped products and listings",
	Long: `extracto turns finished crawl jobs into a deduplicated, change-tracked
catalog of commerce products and real-estate listings.

Payloads are matched against site-specific extraction strategies first and
fall back to generic parsing; every stored entity keeps a version counter
and a bounded price history.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Services holds the collaborators the commands run against.
type Services struct {
	Products driving.Extractor[domain.Product]
	Listings driving.Extractor[domain.Listing]
	Router   driving.JobRouter
	Catalog  driving.CatalogService
	Jobs     driving.JobService
	Metrics  *metrics.Recorder
	Health   func(context.Context) error
	Config   config.Config
}

// SetServices injects the services used by the commands.
func SetServices(s Services) {
	productExtractor = s.Products
	listingExtractor = s.Listings
	jobRouter = s.Router
	catalogService = s.Catalog
	jobService = s.Jobs
	metricsRecorder = s.Metrics
	healthCheck = s.Health
	cfg = s.Config
}

// logStrategies reports the extraction strategies in priority order.
func logStrategies() {
	logger.Section("Extraction strategies")
	if productExtractor != nil {
		logger.Info("products: %s", strings.Join(productExtractor.Strategies(), " > "))
	}
	if listingExtractor != nil {
		logger.Info("listings: %s", strings.Join(listingExtractor.Strategies(), " > "))
	}
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
