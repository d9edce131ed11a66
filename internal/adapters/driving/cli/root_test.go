package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KKogaa/extracto-storage-service/internal/adapters/driven/storage/memory"
	"github.com/KKogaa/extracto-storage-service/internal/config"
	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/core/services"
	"github.com/KKogaa/extracto-storage-service/internal/extractors"
	"github.com/KKogaa/extracto-storage-service/internal/logger"
)

// testStores exposes the memory stores behind the test services.
type testStores struct {
	products *memory.ProductStore
	listings *memory.ListingStore
	jobs     *memory.JobStore
}

// setupTestServices wires memory-backed services and returns a cleanup
// that restores the previous state and resets every flag.
func setupTestServices() (testStores, func()) {
	stores := testStores{
		products: memory.NewProductStore(),
		listings: memory.NewListingStore(),
		jobs:     memory.NewJobStore(),
	}
	products := extractors.NewProductOrchestrator()
	listings := extractors.NewListingOrchestrator()

	SetServices(Services{
		Products: products,
		Listings: listings,
		Router:   services.NewRouter(products, listings, stores.products, stores.listings, stores.jobs),
		Catalog:  services.NewCatalogService(stores.products, stores.listings),
		Jobs:     services.NewJobService(stores.jobs),
		Config:   config.Default(),
	})

	return stores, func() {
		SetServices(Services{Config: config.Default()})
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
	}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "extracto", rootCmd.Use)
	assert.Contains(t, rootCmd.Long, "change-tracked")
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"serve", "watch", "ingest", "extract", "products", "listings", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
	assert.Equal(t, "false", flag.DefValue)
}

func TestCommands_WithoutServices(t *testing.T) {
	_, cleanup := setupTestServices()
	cleanup()
	defer cleanup()

	tests := [][]string{
		{"products", "stats"},
		{"listings", "search"},
		{"ingest", "--url", "https://shop.test", "x.json"},
		{"serve"},
		{"watch", t.TempDir()},
	}
	for _, args := range tests {
		_, err := run(t, args...)
		assert.ErrorIs(t, err, errNotConfigured, "%v", args)
	}
}

func TestSetVersion(t *testing.T) {
	original := version
	defer func() { version = original }()

	SetVersion("")
	assert.Equal(t, original, version)
	SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", version)
}

func seedProduct(t *testing.T, stores testStores, site, id string, amount float64) {
	t.Helper()
	require.NoError(t, stores.products.UpsertOne(context.Background(), domain.Product{
		ProductID: id,
		Name:      "Product " + id,
		Brand:     "Acme",
		Price:     domain.Price{Amount: amount, Currency: "PEN"},
		Source:    domain.Provenance{Domain: site},
	}))
}

// captureLogs sends verbose log output to a buffer for the test's duration.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	logger.SetOutput(buf)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})
	return buf
}
