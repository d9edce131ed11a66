package config

import (
	"strconv"
	"strings"

	"github.com/KKogaa/extracto-storage-service/internal/core/ports/driven"
	"github.com/KKogaa/extracto-storage-service/internal/logger"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
	kStrings
)

type keySpec struct {
	key   string
	typ   keyType
	env   string
	apply func(cfg *Config, v any)
}

var specs = []keySpec{
	{
		key: "storage.backend", typ: kString, env: "EXTRACTO_STORAGE_BACKEND",
		apply: func(cfg *Config, v any) { cfg.Storage.Backend = v.(string) },
	},
	{
		key: "storage.data_dir", typ: kString, env: "EXTRACTO_DATA_DIR",
		apply: func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
	},
	{
		key: "storage.mongo_uri", typ: kString, env: "EXTRACTO_MONGO_URI",
		apply: func(cfg *Config, v any) { cfg.Storage.MongoURI = v.(string) },
	},
	{
		key: "storage.mongo_database", typ: kString, env: "EXTRACTO_MONGO_DATABASE",
		apply: func(cfg *Config, v any) { cfg.Storage.MongoDatabase = v.(string) },
	},
	{
		key: "server.addr", typ: kString, env: "EXTRACTO_ADDR",
		apply: func(cfg *Config, v any) { cfg.Server.Addr = v.(string) },
	},
	{
		key: "server.events_per_second", typ: kFloat, env: "EXTRACTO_EVENTS_PER_SECOND",
		apply: func(cfg *Config, v any) { cfg.Server.EventsPerSecond = v.(float64) },
	},
	{
		key: "server.burst", typ: kInt, env: "EXTRACTO_BURST",
		apply: func(cfg *Config, v any) { cfg.Server.Burst = v.(int) },
	},
	{
		key: "log.level", typ: kString, env: "EXTRACTO_LOG_LEVEL",
		apply: func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
	},
	{
		key: "log.format", typ: kString, env: "EXTRACTO_LOG_FORMAT",
		apply: func(cfg *Config, v any) { cfg.Log.Format = v.(string) },
	},
	{
		key: "routing.real_estate_sites", typ: kStrings, env: "EXTRACTO_REAL_ESTATE_SITES",
		apply: func(cfg *Config, v any) { cfg.Routing.RealEstateSites = v.([]string) },
	},
	{
		key: "intake.watch_dir", typ: kString, env: "EXTRACTO_WATCH_DIR",
		apply: func(cfg *Config, v any) { cfg.Intake.WatchDir = v.(string) },
	},
	{
		key: "intake.concurrency", typ: kInt, env: "EXTRACTO_CONCURRENCY",
		apply: func(cfg *Config, v any) { cfg.Intake.Concurrency = v.(int) },
	},
	{
		key: "intake.events_per_second", typ: kFloat, env: "EXTRACTO_INTAKE_EVENTS_PER_SECOND",
		apply: func(cfg *Config, v any) { cfg.Intake.EventsPerSecond = v.(float64) },
	},
}

func applyStore(cfg *Config, store driven.ConfigStore) {
	for _, s := range specs {
		if _, ok := store.Get(s.key); !ok {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, store.GetString(s.key))
		case kInt:
			s.apply(cfg, store.GetInt(s.key))
		case kFloat:
			s.apply(cfg, store.GetFloat(s.key))
		case kStrings:
			s.apply(cfg, store.GetStringSlice(s.key))
		}
	}
}

func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) {
	for _, s := range specs {
		raw, ok := lookup(s.env)
		if !ok || raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				logger.Warn("could not parse integer from %s=%q: %v, keeping %s", s.env, raw, err, s.key)
			}
		case kFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.apply(cfg, f)
			} else {
				logger.Warn("could not parse float from %s=%q: %v, keeping %s", s.env, raw, err, s.key)
			}
		case kStrings:
			s.apply(cfg, splitList(raw))
		}
	}
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
