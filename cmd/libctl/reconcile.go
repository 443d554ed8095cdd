package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/skerrve/jukehub/internal/infra/catalog"
)

// runReconcile finds catalog entries whose file is gone and tries to
// re-link them to a file elsewhere in the music directory by normalized
// containment matching. Without --apply it only reports what it would do.
func runReconcile(ctx context.Context, cat *catalog.Store, dir string, apply bool) error {
	paths, err := cat.AllFilePaths(ctx)
	if err != nil {
		return err
	}

	files, err := listAudioFiles(dir)
	if err != nil {
		return err
	}

	matched, unmatched := 0, 0
	for id, path := range paths {
		if _, err := os.Stat(path); err == nil {
			continue
		}

		t, err := cat.FindTrackByID(ctx, id)
		if err != nil || t == nil {
			continue
		}

		candidate := matchByName(t.Artist, t.Title, files)
		if candidate == "" {
			fmt.Printf("unmatched: %s - %s (was %s)\n", t.Artist, t.Title, path)
			unmatched++
			continue
		}

		fmt.Printf("matched: %s - %s -> %s\n", t.Artist, t.Title, candidate)
		matched++
		if apply {
			if err := cat.UpdateFilePath(ctx, id, candidate); err != nil {
				return err
			}
		}
	}

	fmt.Printf("\nReconcile complete: %d matched, %d unmatched", matched, unmatched)
	if !apply && matched > 0 {
		fmt.Print(" (re-run with --apply to write)")
	}
	fmt.Println()
	return nil
}

// runOrphans reports both directions of drift: catalog entries with no
// file on disk, and files on disk with no catalog entry.
func runOrphans(ctx context.Context, cat *catalog.Store, dir string) error {
	paths, err := cat.AllFilePaths(ctx)
	if err != nil {
		return err
	}

	files, err := listAudioFiles(dir)
	if err != nil {
		return err
	}
	onDisk := make(map[string]bool, len(files))
	for _, f := range files {
		onDisk[f] = true
	}

	missing := 0
	for id, path := range paths {
		if _, err := os.Stat(path); err != nil {
			fmt.Printf("missing file: track %s (%s)\n", id, path)
			missing++
		}
	}

	inCatalog := make(map[string]bool, len(paths))
	for _, p := range paths {
		inCatalog[p] = true
	}
	untracked := 0
	for _, f := range files {
		if !inCatalog[f] {
			fmt.Printf("untracked file: %s\n", f)
			untracked++
		}
	}

	fmt.Printf("\nOrphan check: %d missing files, %d untracked files\n", missing, untracked)
	return nil
}

// matchByName finds a file whose normalized name contains the track's
// normalized title (and artist when available). Returns "" when zero or
// more than one file matches.
func matchByName(artist, title string, files []string) string {
	normTitle := normalizeName(title)
	if normTitle == "" {
		return ""
	}
	normArtist := normalizeName(artist)

	var match string
	for _, f := range files {
		name := normalizeName(strings.TrimSuffix(filepath.Base(f), filepath.Ext(f)))
		if !strings.Contains(name, normTitle) {
			continue
		}
		if normArtist != "" && !strings.Contains(name, normArtist) {
			continue
		}
		if match != "" {
			// Ambiguous; refuse to guess
			return ""
		}
		match = f
	}
	return match
}

// normalizeName lowercases and strips everything but letters and digits
// so punctuation and spacing differences don't break matching.
func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
