package main

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/skerrve/jukehub/internal/domain/track"
	"github.com/skerrve/jukehub/internal/infra/catalog"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".m4a":  true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
}

// listAudioFiles walks the music directory and returns every audio file
// path found.
func listAudioFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if audioExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to walk music directory")
	}
	return files, nil
}

// runScan adds files not yet referenced by the catalog. Metadata is
// guessed from the "Artist - Title.ext" file naming convention; files
// that don't follow it get the bare name as title.
func runScan(ctx context.Context, cat *catalog.Store, dir string) error {
	files, err := listAudioFiles(dir)
	if err != nil {
		return err
	}

	known, err := cat.AllFilePaths(ctx)
	if err != nil {
		return err
	}
	knownPaths := make(map[string]bool, len(known))
	for _, p := range known {
		knownPaths[p] = true
	}

	added := 0
	for _, path := range files {
		if knownPaths[path] {
			continue
		}

		artist, title := splitFileName(path)
		t := &track.Track{
			ID:       uuid.New().String(),
			Title:    title,
			Artist:   artist,
			FilePath: path,
			AddedAt:  time.Now(),
		}
		if err := cat.UpsertTrack(ctx, t); err != nil {
			return errors.Wrapf(err, "failed to add %s", path)
		}
		fmt.Printf("added: %s\n", path)
		added++
	}

	fmt.Printf("\nScan complete: %d files, %d added, %d already known\n",
		len(files), added, len(files)-added)
	return nil
}

// splitFileName guesses artist and title from an "Artist - Title.ext"
// file name.
func splitFileName(path string) (artist, title string) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if i := strings.Index(name, " - "); i > 0 {
		return strings.TrimSpace(name[:i]), strings.TrimSpace(name[i+3:])
	}
	return "", name
}
