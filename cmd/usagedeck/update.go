package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/usagedeck/usagedeck/internal/config"
	"github.com/usagedeck/usagedeck/internal/update"
)

func runUpdate(args []string) {
	fs := flag.NewFlagSet("update", flag.ExitOnError)
	force := fs.Bool("force", false, "Force check (ignore cache)")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: usagedeck update [flags]")
		fmt.Fprintln(fs.Output(), "\nFlags:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}

	cfg, err := config.Load(nil)
	if err != nil {
		log.Fatalf("resolving data dir: %v", err)
	}

	info, err := update.Check(version, *force, cfg.DataDir)
	if err != nil {
		log.Fatalf("checking for updates: %v", err)
	}
	if info == nil {
		fmt.Printf("usagedeck %s is up to date.\n", version)
		return
	}

	fmt.Printf("Update available: %s -> %s\n",
		info.CurrentVersion, info.LatestVersion)
	fmt.Printf("Download: %s\n", info.URL)
}
