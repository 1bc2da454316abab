package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"
	_ "time/tzdata"

	"github.com/usagedeck/usagedeck/internal/analytics"
	"github.com/usagedeck/usagedeck/internal/config"
	"github.com/usagedeck/usagedeck/internal/db"
	"github.com/usagedeck/usagedeck/internal/fetch"
	"github.com/usagedeck/usagedeck/internal/server"
	"github.com/usagedeck/usagedeck/internal/snapshot"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = ""
)

const (
	watcherDebounce     = 500 * time.Millisecond
	browserPollInterval = 100 * time.Millisecond
	browserPollAttempts = 60
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "fetch":
			runFetch(os.Args[2:])
			return
		case "update":
			runUpdate(os.Args[2:])
			return
		case "serve":
			runServe(os.Args[2:])
			return
		case "version", "--version", "-v":
			fmt.Printf("usagedeck %s (commit %s, built %s)\n",
				version, commit, buildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	runServe(os.Args[1:])
}

func printUsage() {
	fmt.Printf(`usagedeck %s - team usage dashboard for enterprise analytics

Fetches per-user daily usage from the analytics API, folds it
into daily/user/tool/project aggregates plus a leaderboard, and
serves the result via a local web API. Snapshots persist as a
JSON artifact; completed days are cached in SQLite.

Usage:
  usagedeck [flags]          Start the server (default command)
  usagedeck serve [flags]    Start the server (explicit)
  usagedeck fetch [flags]    Fetch data and write the snapshot artifact
  usagedeck update [flags]   Check for a newer release
  usagedeck version          Show version information
  usagedeck help             Show this help

Server flags:
  -host string        Host to bind to (default "127.0.0.1")
  -port int           Port to listen on (default 8080)
  -no-browser         Don't open browser on startup

Shared flags:
  -days int           Lookback window in days (default 30)
  -snapshot string    Snapshot artifact path
  -no-cache           Bypass the local day cache

Update flags:
  -force              Force check (ignore cache)

Environment variables:
  USAGEDECK_API_KEY     Analytics API key (enables fetch/refresh)
  USAGEDECK_BASE_URL    Analytics API base URL
  USAGEDECK_DATA_DIR    Data directory (snapshot, database)
  USAGEDECK_DAYS        Lookback window in days

Data is stored in ~/.usagedeck/ by default. A .env file in the
working directory or data directory is read for the variables
above.
`, version)
}

func runServe(args []string) {
	cfg := mustLoadConfig("usagedeck", args, config.RegisterServeFlags)

	database := openDB(cfg)
	if database != nil {
		defer database.Close()
	}

	store := snapshot.NewStore(loadSnapshot(cfg.SnapshotPath))
	engine := newEngine(cfg, database)
	if engine == nil {
		log.Println("USAGEDECK_API_KEY not set; serving from snapshot artifact only")
	}

	stopWatcher := startSnapshotWatcher(cfg, store)
	defer stopWatcher()

	port := server.FindAvailablePort(cfg.Host, cfg.Port)
	if port != cfg.Port {
		fmt.Printf("Port %d in use, using %d\n", cfg.Port, port)
	}
	cfg.Port = port

	srv := server.New(cfg, store, engine, database,
		server.WithVersion(server.VersionInfo{
			Version:   version,
			Commit:    commit,
			BuildDate: buildDate,
		}),
	)

	url := fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
	fmt.Printf("usagedeck %s listening at %s\n", version, url)

	if !cfg.NoBrowser {
		go openBrowser(url)
	}

	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runFetch(args []string) {
	cfg := mustLoadConfig("fetch", args, config.RegisterFetchFlags)
	if cfg.APIKey == "" {
		log.Fatal("USAGEDECK_API_KEY is required for fetch")
	}

	database := openDB(cfg)
	if database != nil {
		defer database.Close()
	}

	engine := newEngine(cfg, database)
	fmt.Printf("Fetching %d days of data...\n", cfg.Days)
	if database != nil && !cfg.NoCache {
		if cached, err := database.CachedDays(context.Background()); err == nil && len(cached) > 0 {
			fmt.Printf("%d days already cached locally\n", len(cached))
		}
	}

	snap, err := engine.Run(context.Background())
	if err != nil {
		log.Fatalf("fetch failed: %v", err)
	}

	if err := snapshot.Write(cfg.SnapshotPath, snap); err != nil {
		log.Fatalf("writing snapshot: %v", err)
	}
	if database != nil {
		if err := database.RecordSnapshot(
			context.Background(), snap,
		); err != nil {
			log.Printf("recording snapshot history: %v", err)
		}
	}

	fmt.Printf(
		"Wrote %s: %s to %s (%d days, %d users, %d projects)\n",
		cfg.SnapshotPath, snap.DateRange.Start, snap.DateRange.End,
		len(snap.Daily), len(snap.Users), len(snap.Projects),
	)
}

func mustLoadConfig(
	name string, args []string, register func(*flag.FlagSet),
) config.Config {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			"Usage: usagedeck [%s] [flags]\n\nFlags:\n", name)
		fs.PrintDefaults()
	}
	register(fs)
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("creating data dir: %v", err)
	}
	return cfg
}

// openDB opens the local SQLite store. Failure is not fatal:
// the cache and history degrade away, everything else works.
func openDB(cfg config.Config) *db.DB {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Printf("warning: local database unavailable: %v", err)
		return nil
	}
	return database
}

// newEngine builds the fetch engine, or nil when no API key is
// configured.
func newEngine(cfg config.Config, database *db.DB) *fetch.Engine {
	if cfg.APIKey == "" {
		return nil
	}
	var cache fetch.DayCache
	if database != nil && !cfg.NoCache {
		cache = database
	}
	client := analytics.NewClient(cfg.BaseURL, cfg.APIKey)
	return fetch.NewEngine(client, cache, cfg.Days)
}

// loadSnapshot reads the artifact if present. A missing file
// just means nothing has been fetched yet.
func loadSnapshot(path string) *snapshot.Snapshot {
	snap, err := snapshot.Load(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("loading snapshot: %v", err)
		}
		return nil
	}
	log.Printf("loaded snapshot: %s to %s (%d days, %d users)",
		snap.DateRange.Start, snap.DateRange.End,
		len(snap.Daily), len(snap.Users))
	return snap
}

func startSnapshotWatcher(
	cfg config.Config, store *snapshot.Store,
) func() {
	watcher, err := snapshot.NewWatcher(
		cfg.SnapshotPath, store, watcherDebounce,
	)
	if err != nil {
		log.Printf("warning: snapshot watcher unavailable: %v", err)
		return func() {}
	}
	watcher.Start()
	return watcher.Stop
}

func openBrowser(url string) {
	for range browserPollAttempts {
		time.Sleep(browserPollInterval)
		resp, err := http.Get(url + "/api/v1/version")
		if err == nil {
			resp.Body.Close()
			break
		}
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32",
			"url.dll,FileProtocolHandler", url)
	default:
		return
	}
	_ = cmd.Run()
}
