// Package main provides the playback control CLI entry point.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"
)

var (
	app    = kingpin.New("jukehub-playerctl", "jukehub playback control client")
	server = app.Flag("server", "WebSocket endpoint").Default("ws://localhost:8080/ws").String()

	// state command
	stateCmd = app.Command("state", "Show the current playback state")

	// play command
	playCmd   = app.Command("play", "Play a track")
	playTrack = playCmd.Arg("track-id", "Track ID").Required().String()

	// pause / resume / stop / next / previous commands
	pauseCmd    = app.Command("pause", "Pause playback")
	resumeCmd   = app.Command("resume", "Resume playback")
	stopCmd     = app.Command("stop", "Stop playback")
	nextCmd     = app.Command("next", "Skip to the next track")
	previousCmd = app.Command("previous", "Go back to the previous track").Alias("prev")

	// seek command
	seekCmd = app.Command("seek", "Seek within the current track")
	seekPos = seekCmd.Arg("position", "Position in seconds").Required().Float64()

	// volume command
	volumeCmd = app.Command("volume", "Set the volume")
	volumeVal = volumeCmd.Arg("volume", "Volume 0-100").Required().Int()

	// queue commands
	queueAddCmd   = app.Command("queue-add", "Add a track to the queue").Alias("add")
	queueAddTrack = queueAddCmd.Arg("track-id", "Track ID").Required().String()
	queueAddIndex = queueAddCmd.Flag("index", "Insert position (default: append)").Int()

	queueRemoveCmd   = app.Command("queue-remove", "Remove a queue entry")
	queueRemoveIndex = queueRemoveCmd.Arg("index", "Queue index").Required().Int()

	queueClearCmd = app.Command("queue-clear", "Clear the queue")

	// shuffle / repeat commands
	shuffleCmd = app.Command("shuffle", "Toggle shuffle")
	repeatCmd  = app.Command("repeat", "Set the repeat mode")
	repeatMode = repeatCmd.Arg("mode", "none, track or queue").Required().Enum("none", "track", "queue")

	// ping / status commands
	pingCmd   = app.Command("ping", "Ping the server")
	statusCmd = app.Command("status", "Show server status")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	action, fields := buildCommand(command)

	reply, err := sendCommand(*server, action, fields)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	printReply(reply)
}

// buildCommand maps the parsed CLI command onto a wire action and its
// payload fields.
func buildCommand(command string) (string, map[string]any) {
	switch command {
	case stateCmd.FullCommand():
		return "getState", nil
	case playCmd.FullCommand():
		return "play", map[string]any{"trackId": *playTrack}
	case pauseCmd.FullCommand():
		return "pause", nil
	case resumeCmd.FullCommand():
		return "resume", nil
	case stopCmd.FullCommand():
		return "stop", nil
	case nextCmd.FullCommand():
		return "next", nil
	case previousCmd.FullCommand():
		return "previous", nil
	case seekCmd.FullCommand():
		return "seek", map[string]any{"position": *seekPos}
	case volumeCmd.FullCommand():
		return "setVolume", map[string]any{"volume": *volumeVal}
	case queueAddCmd.FullCommand():
		fields := map[string]any{"trackId": *queueAddTrack}
		if *queueAddIndex > 0 {
			fields["index"] = *queueAddIndex
		}
		return "addToQueue", fields
	case queueRemoveCmd.FullCommand():
		return "removeFromQueue", map[string]any{"index": *queueRemoveIndex}
	case queueClearCmd.FullCommand():
		return "clearQueue", nil
	case shuffleCmd.FullCommand():
		return "toggleShuffle", nil
	case repeatCmd.FullCommand():
		return "setRepeat", map[string]any{"mode": *repeatMode}
	case pingCmd.FullCommand():
		return "ping", nil
	case statusCmd.FullCommand():
		return "getStatus", nil
	default:
		return "getState", nil
	}
}

type envelope struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp string          `json:"timestamp"`
}

// sendCommand connects, swallows the welcome message, sends one command
// and returns the first meaningful reply.
func sendCommand(endpoint, action string, fields map[string]any) (*envelope, error) {
	conn, _, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", endpoint, err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(10 * time.Second))

	// First message is always the welcome
	var welcome envelope
	if err := conn.ReadJSON(&welcome); err != nil {
		return nil, fmt.Errorf("failed to read welcome: %w", err)
	}
	if welcome.Type != "welcome" {
		return nil, fmt.Errorf("expected welcome, got %q", welcome.Type)
	}

	payload := map[string]any{"action": action}
	for k, v := range fields {
		payload[k] = v
	}
	msg := map[string]any{
		"type":      "command",
		"payload":   payload,
		"timestamp": time.Now().Format(time.RFC3339),
	}
	if err := conn.WriteJSON(msg); err != nil {
		return nil, fmt.Errorf("failed to send command: %w", err)
	}

	// Commands that mutate state come back as a broadcast; direct
	// replies (pong, status, state, error) also land here.
	var reply envelope
	if err := conn.ReadJSON(&reply); err != nil {
		return nil, fmt.Errorf("failed to read reply: %w", err)
	}
	return &reply, nil
}

func printReply(reply *envelope) {
	if reply.Type == "error" {
		var e struct {
			Command string `json:"command"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(reply.Payload, &e)
		fmt.Printf("Error: %s\n", e.Message)
		os.Exit(1)
	}

	fmt.Printf("=== %s ===\n", reply.Type)
	if len(reply.Payload) > 0 {
		var pretty map[string]any
		if err := json.Unmarshal(reply.Payload, &pretty); err == nil {
			out, _ := json.MarshalIndent(pretty, "", "  ")
			fmt.Println(string(out))
		} else {
			fmt.Println(string(reply.Payload))
		}
	}
}
