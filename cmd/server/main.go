// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/skerrve/jukehub/internal/api/rest"
	"github.com/skerrve/jukehub/internal/app/autoplay"
	"github.com/skerrve/jukehub/internal/app/download"
	"github.com/skerrve/jukehub/internal/app/playback"
	"github.com/skerrve/jukehub/internal/app/player"
	"github.com/skerrve/jukehub/internal/app/policy"
	"github.com/skerrve/jukehub/internal/app/ws"
	"github.com/skerrve/jukehub/internal/infra/catalog"
	"github.com/skerrve/jukehub/internal/infra/config"
	"github.com/skerrve/jukehub/internal/infra/logger"
)

var (
	app        = kingpin.New("jukehub-server", "jukehub music server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	kingpin.MustParse(app.Parse(os.Args[1:]))

	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the catalog database
	cat, err := catalog.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer cat.Close()

	// Playback state store
	store := playback.NewStore(cat, playback.Config{
		HistoryLimit:    cfg.Playback.HistoryLimit,
		DefaultVolume:   cfg.Playback.DefaultVolume,
		RequeueFinished: cfg.Playback.RequeueFinished,
		AutoAdvance:     true,
	})
	defer store.Close()

	// WebSocket hub with heartbeat enforcement
	hub := ws.NewHub(ws.Config{
		HeartbeatInterval: cfg.HeartbeatInterval(),
		MaxMissed:         cfg.WebSocket.MaxMissed,
	})
	defer hub.Close()
	go hub.Run(ctx)

	// Queue admission policies
	policies := policy.NewChain()
	if cfg.Queue.RejectDuplicate {
		policies.Add(policy.NewDuplicateTrack())
	}
	if cfg.Queue.MaxLength > 0 {
		policies.Add(policy.NewQueueLimit(cfg.Queue.MaxLength))
	}

	// Autoplay chain
	var auto *autoplay.Chain
	if cfg.Autoplay.Enabled {
		auto, err = autoplay.ForMode(cfg.Autoplay.Mode, cat)
		if err != nil {
			return fmt.Errorf("invalid autoplay config: %w", err)
		}
		zlog.Info().Msgf("Autoplay enabled: mode=%s", cfg.Autoplay.Mode)
	}

	// Player service binds ws commands to the store and fans out events
	svc := player.NewService(store, hub, cat, policies, auto)
	go svc.Run(ctx)

	// Download manager pushes job updates to all clients
	downloads := download.NewManager(download.Config{
		Dir:         cfg.DownloadDir(),
		Concurrency: cfg.Downloads.Concurrency,
		YtdlpPath:   cfg.Downloads.YtdlpPath,
	}, cat, func(job download.Job) {
		hub.Broadcast(ws.NewMessage(ws.TypeDownload, job), ws.BroadcastOptions{})
	})
	go downloads.Run(ctx)

	// HTTP mux: REST API plus the WebSocket endpoint
	mux := http.NewServeMux()
	mux.Handle("/api/", rest.NewServer(store, cat, downloads, hub).Routes())
	mux.Handle("/ws", ws.Handler(hub))

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: mux,
	}

	serverErrCh := make(chan error, 1)
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Graceful shutdown: stop the hub first so clients get close frames
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	hub.Close()
	cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}
