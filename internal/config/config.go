// Package config loads application configuration by layering
// defaults, a .env file, environment variables, and
// explicitly-set CLI flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// defaultBaseURL is the analytics API root. Override with
// USAGEDECK_BASE_URL (e.g. to point at a proxy).
const defaultBaseURL = "https://api.anthropic.com/v1/organizations/analytics"

// Config holds all application configuration.
type Config struct {
	Host         string
	Port         int
	NoBrowser    bool
	APIKey       string
	BaseURL      string
	Days         int
	NoCache      bool
	DataDir      string
	DBPath       string
	SnapshotPath string
	WriteTimeout time.Duration
}

// Default returns a Config with default values.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("determining home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".usagedeck")
	return Config{
		Host:         "127.0.0.1",
		Port:         8080,
		BaseURL:      defaultBaseURL,
		Days:         30,
		DataDir:      dataDir,
		DBPath:       filepath.Join(dataDir, "usagedeck.db"),
		SnapshotPath: filepath.Join(dataDir, "snapshot.json"),
		WriteTimeout: 30 * time.Second,
	}, nil
}

// Load builds a Config by layering: defaults < .env < env <
// explicitly-set flags. The provided FlagSet must already be
// parsed by the caller.
func Load(fs *flag.FlagSet) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}
	cfg.loadEnv()
	cfg.DBPath = filepath.Join(cfg.DataDir, "usagedeck.db")
	cfg.SnapshotPath = filepath.Join(cfg.DataDir, "snapshot.json")

	applyFlags(&cfg, fs)
	return cfg, nil
}

// loadEnv applies environment variables, first folding a .env
// file (working directory, then data dir) into the process
// environment without overriding variables already set.
func (c *Config) loadEnv() {
	for _, path := range []string{".env", filepath.Join(c.DataDir, ".env")} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	if v := os.Getenv("USAGEDECK_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("USAGEDECK_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("USAGEDECK_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("USAGEDECK_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Days = n
		}
	}
}

// RegisterServeFlags registers serve-command flags on fs.
// The caller must call fs.Parse before passing fs to Load.
func RegisterServeFlags(fs *flag.FlagSet) {
	fs.String("host", "127.0.0.1", "Host to bind to")
	fs.Int("port", 8080, "Port to listen on")
	fs.Bool("no-browser", false, "Don't open browser on startup")
	RegisterFetchFlags(fs)
}

// RegisterFetchFlags registers flags shared by fetch and serve.
func RegisterFetchFlags(fs *flag.FlagSet) {
	fs.Int("days", 30, "Lookback window in days")
	fs.String("snapshot", "", "Snapshot artifact path")
	fs.Bool("no-cache", false, "Bypass the local day cache")
}

// applyFlags copies explicitly-set flags from fs into cfg.
func applyFlags(cfg *Config, fs *flag.FlagSet) {
	if fs == nil {
		return
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = f.Value.String()
		case "port":
			// flag already validated the int; ignore parse error
			cfg.Port, _ = strconv.Atoi(f.Value.String())
		case "no-browser":
			cfg.NoBrowser = f.Value.String() == "true"
		case "days":
			if n, err := strconv.Atoi(f.Value.String()); err == nil && n > 0 {
				cfg.Days = n
			}
		case "snapshot":
			cfg.SnapshotPath = f.Value.String()
		case "no-cache":
			cfg.NoCache = f.Value.String() == "true"
		}
	})
}
