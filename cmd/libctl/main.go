// Package main provides the library maintenance CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"

	"github.com/skerrve/jukehub/internal/infra/catalog"
)

var (
	app      = kingpin.New("jukehub-libctl", "jukehub library maintenance tool")
	dbPath   = app.Flag("db", "Catalog database path (or set JUKEHUB_DB_PATH env)").Envar("JUKEHUB_DB_PATH").Default("jukehub.db").String()
	musicDir = app.Flag("music-dir", "Music directory (or set JUKEHUB_MUSIC_DIR env)").Envar("JUKEHUB_MUSIC_DIR").String()

	// scan command
	scanCmd = app.Command("scan", "Scan the music directory and add unknown files to the catalog")

	// reconcile command
	reconcileCmd = app.Command("reconcile", "Re-link catalog entries whose files have moved")
	applyFlag    = reconcileCmd.Flag("apply", "Write the matched paths back to the catalog").Bool()

	// orphans command
	orphansCmd = app.Command("orphans", "List catalog entries whose files are missing and files not in the catalog")

	// stats command
	statsCmd = app.Command("stats", "Print catalog statistics")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	cat, err := catalog.Open(*dbPath)
	if err != nil {
		fmt.Printf("Error: failed to open catalog: %v\n", err)
		os.Exit(1)
	}
	defer cat.Close()

	ctx := context.Background()

	switch command {
	case scanCmd.FullCommand():
		err = runScan(ctx, cat, requireMusicDir())
	case reconcileCmd.FullCommand():
		err = runReconcile(ctx, cat, requireMusicDir(), *applyFlag)
	case orphansCmd.FullCommand():
		err = runOrphans(ctx, cat, requireMusicDir())
	case statsCmd.FullCommand():
		err = runStats(ctx, cat)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func requireMusicDir() string {
	if *musicDir == "" {
		fmt.Println("Error: music directory is required (use --music-dir or JUKEHUB_MUSIC_DIR env)")
		os.Exit(1)
	}
	return *musicDir
}

func runStats(ctx context.Context, cat *catalog.Store) error {
	stats, err := cat.Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Println("\n=== CATALOG STATISTICS ===")
	fmt.Printf("Tracks:  %d\n", stats.Tracks)
	fmt.Printf("Albums:  %d\n", stats.Albums)
	fmt.Printf("Artists: %d\n", stats.Artists)
	fmt.Printf("Listens: %d\n", stats.Listens)
	return nil
}
