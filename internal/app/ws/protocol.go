package ws

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/mitchellh/mapstructure"
)

// Server->client message types.
const (
	TypeWelcome  = "welcome"
	TypePong     = "pong"
	TypeStatus   = "status"
	TypeError    = "error"
	TypeState    = "state"
	TypePlayback = "playback"
	TypeDownload = "download"
)

// Client->server message type carrying a command payload.
const TypeCommand = "command"

// Message is the wire envelope for both directions.
type Message struct {
	Type      string `json:"type"`
	Payload   any    `json:"payload,omitempty"`
	Timestamp string `json:"timestamp"`
}

// NewMessage builds an envelope stamped with the current server time.
func NewMessage(typ string, payload any) Message {
	return Message{
		Type:      typ,
		Payload:   payload,
		Timestamp: time.Now().Format(time.RFC3339),
	}
}

// ErrorPayload is the payload of error replies.
type ErrorPayload struct {
	Command string `json:"command,omitempty"`
	Message string `json:"message"`
}

// Action identifies a command. The known set is fixed at compile time;
// arbitrary wire input falls through to the unknown-command reply.
type Action string

const (
	ActionPlay            Action = "play"
	ActionPause           Action = "pause"
	ActionResume          Action = "resume"
	ActionStop            Action = "stop"
	ActionNext            Action = "next"
	ActionPrevious        Action = "previous"
	ActionSeek            Action = "seek"
	ActionSetVolume       Action = "setVolume"
	ActionAddToQueue      Action = "addToQueue"
	ActionRemoveFromQueue Action = "removeFromQueue"
	ActionClearQueue      Action = "clearQueue"
	ActionGetState        Action = "getState"
	ActionToggleShuffle   Action = "toggleShuffle"
	ActionSetRepeat       Action = "setRepeat"
	ActionPing            Action = "ping"
	ActionGetStatus       Action = "getStatus"
)

// Command is one inbound command: the action plus its remaining payload
// fields. Transient; exists only for the duration of dispatch.
type Command struct {
	Action Action
	Fields map[string]any
}

// Decode maps the command fields onto a typed struct. JSON numbers
// arrive as float64, so decoding is weakly typed.
func (c Command) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return errors.Wrap(err, "failed to build payload decoder")
	}
	if err := dec.Decode(c.Fields); err != nil {
		return errors.Wrap(err, "invalid command payload")
	}
	return nil
}

// inbound is the parsed form of a client message.
type inbound struct {
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload"`
	Timestamp string         `json:"timestamp"`
}
