package download

import (
	"context"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/skerrve/jukehub/internal/domain/track"
)

// printTemplate asks yt-dlp to report the final metadata after the file
// has been moved into place, tab-separated for easy parsing.
const printTemplate = "after_move:%(id)s\t%(title)s\t%(artist,uploader)s\t%(album|)s\t%(duration)s\t%(filepath)s"

// runYtdlp shells out to yt-dlp to fetch one URL as an mp3 and returns
// the catalog entry for the downloaded file.
func (m *Manager) runYtdlp(ctx context.Context, url string) (*track.Track, error) {
	outTemplate := filepath.Join(m.cfg.Dir, "%(artist,uploader)s - %(title)s.%(ext)s")

	cmd := exec.CommandContext(ctx, m.cfg.YtdlpPath,
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "0",
		"--no-playlist",
		"--no-simulate",
		"--print", printTemplate,
		"--output", outTemplate,
		url,
	)

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, errors.Newf("yt-dlp failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return nil, errors.Wrap(err, "failed to run yt-dlp")
	}

	t, err := parseYtdlpOutput(string(out), url)
	if err != nil {
		return nil, err
	}

	zlog.Debug().Msgf("download: yt-dlp fetched %s to %s", url, t.FilePath)
	return t, nil
}

// parseYtdlpOutput extracts track metadata from the --print line.
func parseYtdlpOutput(out, url string) (*track.Track, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	fields := strings.Split(last, "\t")
	if len(fields) != 6 {
		return nil, errors.Newf("unexpected yt-dlp output: %q", last)
	}

	duration, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		duration = 0
	}

	album := fields[3]
	if album == "NA" {
		album = ""
	}

	return &track.Track{
		ID:       fields[0],
		Title:    fields[1],
		Artist:   fields[2],
		Album:    album,
		Duration: time.Duration(duration * float64(time.Second)),
		FilePath: fields[5],
		URL:      url,
		AddedAt:  time.Now(),
	}, nil
}
