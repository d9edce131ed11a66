// Command extracto ingests finished crawl jobs into a versioned catalog
// of products and real-estate listings.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/KKogaa/extracto-storage-service/internal/adapters/driven/config/file"
	"github.com/KKogaa/extracto-storage-service/internal/adapters/driven/storage/memory"
	"github.com/KKogaa/extracto-storage-service/internal/adapters/driven/storage/mongo"
	"github.com/KKogaa/extracto-storage-service/internal/adapters/driven/storage/sqlite"
	"github.com/KKogaa/extracto-storage-service/internal/adapters/driving/cli"
	"github.com/KKogaa/extracto-storage-service/internal/config"
	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
	"github.com/KKogaa/extracto-storage-service/internal/core/services"
	"github.com/KKogaa/extracto-storage-service/internal/extractors"
	"github.com/KKogaa/extracto-storage-service/internal/logger"
	"github.com/KKogaa/extracto-storage-service/internal/metrics"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	config.LoadEnvFile(os.Getenv("EXTRACTO_ENV_FILE"))

	configStore, err := file.NewConfigStore(os.Getenv("EXTRACTO_CONFIG"))
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	cfg, err := config.Load(configStore)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format)

	stores, err := openStores(cfg.Storage)
	if err != nil {
		return err
	}
	defer stores.close()

	recorder := metrics.New()
	products := extractors.NewProductOrchestrator()
	listings := extractors.NewListingOrchestrator()
	router := services.NewRouter(
		products, listings,
		stores.products, stores.listings, stores.jobs,
		services.WithRealEstateSites(cfg.Routing.RealEstateSites...),
		services.WithMetrics(recorder),
	)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Products: products,
		Listings: listings,
		Router:   router,
		Catalog:  services.NewCatalogService(stores.products, stores.listings),
		Jobs:     services.NewJobService(stores.jobs),
		Metrics:  recorder,
		Health:   stores.ping,
		Config:   cfg,
	})
	return cli.Execute()
}

// storeSet is the opened storage backend.
type storeSet struct {
	products driven.ProductStore
	listings driven.ListingStore
	jobs     driven.JobStore
	ping     func(context.Context) error
	close    func()
}

func openStores(cfg config.StorageConfig) (storeSet, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory storage; data is lost on exit")
		return storeSet{
			products: memory.NewProductStore(),
			listings: memory.NewListingStore(),
			jobs:     memory.NewJobStore(),
			ping:     func(context.Context) error { return nil },
			close:    func() {},
		}, nil

	case config.BackendMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		store, err := mongo.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return storeSet{}, fmt.Errorf("opening mongo store: %w", err)
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(context.Background())
			return storeSet{}, err
		}
		logger.Debug("using mongo database %s", cfg.MongoDatabase)
		return storeSet{
			products: store.ProductStore(),
			listings: store.ListingStore(),
			jobs:     store.JobStore(),
			ping:     store.Ping,
			close: func() {
				if err := store.Close(context.Background()); err != nil {
					logger.Warn("closing mongo store: %v", err)
				}
			},
		}, nil

	default:
		store, err := sqlite.NewStore(cfg.DataDir)
		if err != nil {
			return storeSet{}, fmt.Errorf("opening sqlite store: %w", err)
		}
		logger.Debug("using sqlite database %s", store.Path())
		return storeSet{
			products: store.ProductStore(),
			listings: store.ListingStore(),
			jobs:     store.JobStore(),
			ping:     store.Ping,
			close: func() {
				if err := store.Close(); err != nil {
					logger.Warn("closing sqlite store: %v", err)
				}
			},
		}, nil
	}
}
