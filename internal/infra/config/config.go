// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Library   LibraryConfig   `yaml:"library"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Playback  PlaybackConfig  `yaml:"playback"`
	Queue     QueueConfig     `yaml:"queue"`
	Autoplay  AutoplayConfig  `yaml:"autoplay"`
	Downloads DownloadsConfig `yaml:"downloads"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr" default:":8080"`
}

// DatabaseConfig represents catalog database configuration.
type DatabaseConfig struct {
	Path string `yaml:"path" default:"jukehub.db"`
}

// LibraryConfig represents the on-disk music library configuration.
type LibraryConfig struct {
	MusicDir string `yaml:"music_dir" validate:"required"`
}

// WebSocketConfig represents connection liveness configuration.
type WebSocketConfig struct {
	HeartbeatIntervalSec int `yaml:"heartbeat_interval_sec" default:"30" validate:"gte=5,lte=300"`
	MaxMissed            int `yaml:"max_missed" default:"3" validate:"gte=0,lte=20"`
}

// PlaybackConfig represents playback behavior configuration.
type PlaybackConfig struct {
	HistoryLimit    int  `yaml:"history_limit" default:"50" validate:"gte=1,lte=1000"`
	DefaultVolume   int  `yaml:"default_volume" default:"70" validate:"gte=0,lte=100"`
	RequeueFinished bool `yaml:"requeue_finished"` // repeat=queue: always re-add finished tracks to the tail
}

// QueueConfig represents queue admission configuration.
type QueueConfig struct {
	MaxLength       int  `yaml:"max_length" default:"100" validate:"gte=0"`
	RejectDuplicate bool `yaml:"reject_duplicate" default:"true"`
}

// AutoplayConfig represents automatic queue refill configuration.
type AutoplayConfig struct {
	Enabled bool   `yaml:"enabled"`
	Mode    string `yaml:"mode" default:"sequential" validate:"oneof=sequential random"`
}

// DownloadsConfig represents downloader configuration.
type DownloadsConfig struct {
	Dir         string `yaml:"dir"`
	Concurrency int    `yaml:"concurrency" default:"2" validate:"gte=1,lte=8"`
	YtdlpPath   string `yaml:"ytdlp_path" default:"yt-dlp"`
}

// HeartbeatInterval returns the heartbeat interval as a duration.
func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.WebSocket.HeartbeatIntervalSec) * time.Second
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for paths.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	// Defaults are applied before parsing so explicit zero values in
	// the file (max_missed: 0, max_length: 0) survive.
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.overrideFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("JUKEHUB_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("JUKEHUB_MUSIC_DIR"); v != "" {
		c.Library.MusicDir = v
	}
	if v := os.Getenv("JUKEHUB_DOWNLOAD_DIR"); v != "" {
		c.Downloads.Dir = v
	}
	if v := os.Getenv("YTDLP_PATH"); v != "" {
		c.Downloads.YtdlpPath = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	return nil
}

// DownloadDir returns the download directory, defaulting to the music dir.
func (c *Config) DownloadDir() string {
	if c.Downloads.Dir != "" {
		return c.Downloads.Dir
	}
	return c.Library.MusicDir
}
