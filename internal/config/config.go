package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tripmart/fulfillment/internal/domain/model"
)

// Config holds application level configuration loaded from environment and flags.
type Config struct {
	RunAddress           string
	DatabaseURI          string
	VendorSystemAddress  string
	ShutdownTimeout      time.Duration
	ArchiveSweepInterval time.Duration
	ArchiveRetention     time.Duration
	FlightMaxWait        time.Duration
	TaxiMaxWait          time.Duration
	AccommodationMaxWait time.Duration
}

const (
	defaultRunAddress           = ":8080"
	defaultShutdownTimeout      = 10 * time.Second
	defaultArchiveSweepInterval = 5 * time.Second
	defaultArchiveRetention     = time.Minute
	defaultFlightMaxWait        = 50 * time.Second
	defaultTaxiMaxWait          = 40 * time.Second
	defaultAccommodationMaxWait = 30 * time.Second
)

// Load parses configuration from flags and environment variables.
func Load() (*Config, error) {
	return load(os.Args[1:], os.LookupEnv)
}

type envLookup func(string) (string, bool)

func load(args []string, lookup envLookup) (*Config, error) {
	cfg := &Config{
		RunAddress:           getString(lookup, "RUN_ADDRESS", defaultRunAddress),
		DatabaseURI:          getString(lookup, "DATABASE_URI", ""),
		VendorSystemAddress:  getString(lookup, "VENDOR_SYSTEM_ADDRESS", ""),
		ShutdownTimeout:      getDuration(lookup, "SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		ArchiveSweepInterval: getDuration(lookup, "ARCHIVE_SWEEP_INTERVAL", defaultArchiveSweepInterval),
		ArchiveRetention:     getDuration(lookup, "ARCHIVE_RETENTION", defaultArchiveRetention),
		FlightMaxWait:        getDuration(lookup, "FLIGHT_MAX_WAIT", defaultFlightMaxWait),
		TaxiMaxWait:          getDuration(lookup, "TAXI_MAX_WAIT", defaultTaxiMaxWait),
		AccommodationMaxWait: getDuration(lookup, "ACCOMMODATION_MAX_WAIT", defaultAccommodationMaxWait),
	}

	fs := flag.NewFlagSet("fulfillment", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	durations := []struct {
		name  string
		usage string
		value *time.Duration
	}{
		{"shutdown-timeout", "Graceful shutdown timeout", &cfg.ShutdownTimeout},
		{"sweep-interval", "Interval between archive sweeps", &cfg.ArchiveSweepInterval},
		{"archive-retention", "How long finalized orders stay in memory", &cfg.ArchiveRetention},
		{"flight-max-wait", "Maximum wait for flight fulfillment", &cfg.FlightMaxWait},
		{"taxi-max-wait", "Maximum wait for taxi fulfillment", &cfg.TaxiMaxWait},
		{"accommodation-max-wait", "Maximum wait for accommodation fulfillment", &cfg.AccommodationMaxWait},
	}

	raw := make([]string, len(durations))
	for i, d := range durations {
		raw[i] = d.value.String()
		fs.StringVar(&raw[i], d.name, raw[i], d.usage)
	}

	fs.StringVar(&cfg.RunAddress, "a", cfg.RunAddress, "HTTP server listen address")
	fs.StringVar(&cfg.DatabaseURI, "d", cfg.DatabaseURI, "PostgreSQL DSN")
	fs.StringVar(&cfg.VendorSystemAddress, "r", cfg.VendorSystemAddress, "Vendor system base URL")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	for i, d := range durations {
		parsed, err := time.ParseDuration(raw[i])
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.name, err)
		}
		*d.value = parsed
	}

	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	if cfg.ArchiveSweepInterval <= 0 {
		cfg.ArchiveSweepInterval = defaultArchiveSweepInterval
	}
	if cfg.ArchiveRetention < 0 {
		cfg.ArchiveRetention = defaultArchiveRetention
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI must be provided")
	}
	if cfg.VendorSystemAddress == "" {
		return nil, fmt.Errorf("vendor system address must be provided")
	}

	return cfg, nil
}

// CategoryMaxWaits returns the per-category maximum-wait policy table.
// Non-positive entries are kept as loaded: an invalid policy is an operator
// defect surfaced at submission time, not silently repaired here.
func (c *Config) CategoryMaxWaits() map[model.Category]time.Duration {
	return map[model.Category]time.Duration{
		model.CategoryFlight:        c.FlightMaxWait,
		model.CategoryTaxi:          c.TaxiMaxWait,
		model.CategoryAccommodation: c.AccommodationMaxWait,
	}
}

func getString(lookup envLookup, key, def string) string {
	if v, ok := lookup(key); ok && v != "" {
		return v
	}
	return def
}

func getDuration(lookup envLookup, key string, def time.Duration) time.Duration {
	if v, ok := lookup(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
