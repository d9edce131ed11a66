// Package config assembles the typed service configuration from defaults,
// the TOML config store and EXTRACTO_* environment variables, in that
// order of precedence (later wins).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
	"github.com/KKogaa/extracto-storage-service/internal/logger"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

// Config is the full service configuration.
type Config struct {
	Storage StorageConfig
	Server  ServerConfig
	Log     LogConfig
	Routing RoutingConfig
	Intake  IntakeConfig
}

// StorageConfig selects and locates the catalog backend.
type StorageConfig struct {
	Backend       string
	DataDir       string
	MongoURI      string
	MongoDatabase string
}

// ServerConfig configures the HTTP API and its event intake rate.
type ServerConfig struct {
	Addr            string
	EventsPerSecond float64
	Burst           int
}

// LogConfig sets the log level and output format.
type LogConfig struct {
	Level  string
	Format string
}

// RoutingConfig lists the sites whose jobs always go to listing extraction.
type RoutingConfig struct {
	RealEstateSites []string
}

// IntakeConfig configures the drop directory and concurrent file ingest.
type IntakeConfig struct {
	WatchDir        string
	Concurrency     int
	EventsPerSecond float64
}

func defaults() Config {
	return Config{
		Storage: StorageConfig{
			Backend:       BackendSQLite,
			DataDir:       defaultDataDir(),
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "extracto",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			EventsPerSecond: 50,
			Burst:           100,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "auto",
		},
		Routing: RoutingConfig{
			RealEstateSites: []string{"urbania", "adondevivir"},
		},
		Intake: IntakeConfig{
			Concurrency:     4,
			EventsPerSecond: 20,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".extracto", "data")
	}
	return filepath.Join(home, ".extracto", "data")
}

// Default returns the built-in configuration.
func Default() Config {
	return defaults()
}

// Load builds the configuration from store and the process environment.
// A nil store means defaults plus environment only.
func Load(store driven.ConfigStore) (Config, error) {
	return loadWith(store, os.LookupEnv)
}

func loadWith(store driven.ConfigStore, lookup func(string) (string, bool)) (Config, error) {
	cfg := defaults()
	if store != nil {
		applyStore(&cfg, store)
	}
	applyEnvOverrides(&cfg, lookup)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot run with.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite, BackendMongo:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == BackendMongo && c.Storage.MongoURI == "" {
		return fmt.Errorf("storage.mongo_uri is required for the mongo backend")
	}
	if c.Intake.Concurrency < 1 {
		return fmt.Errorf("intake.concurrency must be at least 1, got %d", c.Intake.Concurrency)
	}
	if c.Server.EventsPerSecond <= 0 || c.Intake.EventsPerSecond <= 0 {
		return fmt.Errorf("events_per_second must be positive")
	}
	if c.Server.Burst < 1 {
		return fmt.Errorf("server.burst must be at least 1, got %d", c.Server.Burst)
	}
	return nil
}

// LoadEnvFile loads variables from a .env file into the environment.
// If path is empty, .env in the working directory is tried. It reports
// whether a file was loaded.
func LoadEnvFile(path string) bool {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Debug("no .env file at %s", path)
		return false
	}
	if err := godotenv.Load(path); err != nil {
		logger.Warn("failed to load %s: %v", path, err)
		return false
	}
	logger.Debug("loaded %s", path)
	return true
}
