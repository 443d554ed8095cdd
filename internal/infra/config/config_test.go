package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
library:
  music_dir: /music
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "jukehub.db", cfg.Database.Path)
	assert.Equal(t, 30, cfg.WebSocket.HeartbeatIntervalSec)
	assert.Equal(t, 3, cfg.WebSocket.MaxMissed)
	assert.Equal(t, 50, cfg.Playback.HistoryLimit)
	assert.Equal(t, 70, cfg.Playback.DefaultVolume)
	assert.False(t, cfg.Playback.RequeueFinished)
	assert.Equal(t, 100, cfg.Queue.MaxLength)
	assert.True(t, cfg.Queue.RejectDuplicate)
	assert.Equal(t, "sequential", cfg.Autoplay.Mode)
	assert.Equal(t, 2, cfg.Downloads.Concurrency)
	assert.Equal(t, "yt-dlp", cfg.Downloads.YtdlpPath)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{
			name:    "missing music dir",
			content: `server: {addr: ":9000"}`,
			errMsg:  "MusicDir",
		},
		{
			name: "heartbeat interval too small",
			content: `
library:
  music_dir: /music
websocket:
  heartbeat_interval_sec: 1
`,
			errMsg: "HeartbeatIntervalSec",
		},
		{
			name: "invalid autoplay mode",
			content: `
library:
  music_dir: /music
autoplay:
  enabled: true
  mode: chaotic
`,
			errMsg: "Mode",
		},
		{
			name: "volume out of range",
			content: `
library:
  music_dir: /music
playback:
  default_volume: 150
`,
			errMsg: "DefaultVolume",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_ExplicitZeros(t *testing.T) {
	// Zero is meaningful for these knobs (max_missed: 0 disables
	// heartbeat enforcement, max_length: 0 lifts the queue cap) and
	// must not be replaced by the defaults.
	path := writeConfig(t, `
library:
  music_dir: /music
websocket:
  max_missed: 0
queue:
  max_length: 0
  reject_duplicate: false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.WebSocket.MaxMissed)
	assert.Equal(t, 0, cfg.Queue.MaxLength)
	assert.False(t, cfg.Queue.RejectDuplicate)

	// Keys absent from the file still pick up their defaults.
	assert.Equal(t, 30, cfg.WebSocket.HeartbeatIntervalSec)
	assert.Equal(t, 70, cfg.Playback.DefaultVolume)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
library:
  music_dir: /music
database:
  path: from-file.db
`)

	t.Setenv("JUKEHUB_DB_PATH", "from-env.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database.Path)
}

func TestConfig_DownloadDir(t *testing.T) {
	cfg := Config{}
	require.NoError(t, defaults.Set(&cfg))
	cfg.Library.MusicDir = "/music"
	assert.Equal(t, "/music", cfg.DownloadDir())

	cfg.Downloads.Dir = "/downloads"
	assert.Equal(t, "/downloads", cfg.DownloadDir())
}
