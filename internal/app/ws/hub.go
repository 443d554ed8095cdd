// Package ws provides the WebSocket connection registry with command
// dispatch, liveness probing and broadcast fan-out.
package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"

	"github.com/skerrve/jukehub/internal/domain/client"
)

// CloseGoingAway mirrors the WebSocket 1001 close code, used when the
// server shuts a connection down on its own initiative.
const CloseGoingAway = 1001

const sendTimeout = 500 * time.Millisecond

// Conn is the transport half of a client connection. The gorilla
// adapter implements it for real sockets; tests supply fakes.
type Conn interface {
	WriteJSON(v any) error
	Ping() error
	Close(code int, reason string) error
}

// Config holds hub configuration.
type Config struct {
	HeartbeatInterval time.Duration // Probe period, default 30s
	MaxMissed         int           // Close after this many consecutive missed probes; 0 disables enforcement
}

// Stats reports registry counters.
type Stats struct {
	TotalConnected     uint64 `json:"totalConnected"`
	CurrentConnected   int    `json:"currentConnected"`
	HeartbeatsSent     uint64 `json:"heartbeatsSent"`
	HeartbeatsReceived uint64 `json:"heartbeatsReceived"`
	HeartbeatsMissed   uint64 `json:"heartbeatsMissed"`
}

// BroadcastOptions filters broadcast recipients.
type BroadcastOptions struct {
	ExcludeClientID string
	IncludeOnly     []string // When non-empty, only these client IDs receive the message
}

type remote struct {
	sess *client.Session
	conn Conn
}

// MessageListener receives non-command inbound messages for external
// handling.
type MessageListener func(clientID string, typ string, payload map[string]any)

// Hub tracks connected clients, dispatches commands and fans out
// broadcasts. One instance per server process.
type Hub struct {
	dispatcher

	cfg Config

	mu      sync.RWMutex
	clients map[string]*remote

	totalConnected uint64
	hbSent         uint64
	hbReceived     uint64
	hbMissed       uint64

	listener MessageListener
	started  time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewHub creates a hub. The ping and getStatus handlers are
// pre-registered; playback actions are bound by the owning application.
func NewHub(cfg Config) *Hub {
	if cfg.HeartbeatInterval <= 0 {
		cfg.HeartbeatInterval = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		dispatcher: newDispatcher(),
		cfg:        cfg,
		clients:    make(map[string]*remote),
		started:    time.Now(),
		ctx:        ctx,
		cancel:     cancel,
	}

	h.RegisterHandler(ActionPing, func(_ context.Context, clientID string, _ Command) error {
		h.SendTo(clientID, NewMessage(TypePong, nil))
		return nil
	})
	h.RegisterHandler(ActionGetStatus, func(_ context.Context, clientID string, _ Command) error {
		h.SendTo(clientID, NewMessage(TypeStatus, map[string]any{
			"connections":   h.Count(),
			"uptimeSeconds": int(time.Since(h.started).Seconds()),
		}))
		return nil
	})

	return h
}

// SetMessageListener installs the listener for non-command messages.
func (h *Hub) SetMessageListener(l MessageListener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listener = l
}

// Run drives the heartbeat loop until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	ticker := time.NewTicker(h.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.heartbeatTick()
		}
	}
}

// Close disconnects all clients and stops the heartbeat loop.
func (h *Hub) Close() {
	h.cancel()
	h.DisconnectAll(CloseGoingAway, "server shutting down")
}

// Accept registers a fresh connection, assigns it a client ID and sends
// the one-time welcome message.
func (h *Hub) Accept(conn Conn) string {
	id := uuid.New().String()
	sess := client.NewSession(id)

	h.mu.Lock()
	h.clients[id] = &remote{sess: sess, conn: conn}
	h.totalConnected++
	h.mu.Unlock()

	welcome := NewMessage(TypeWelcome, map[string]any{
		"clientId":   id,
		"serverTime": time.Now().Format(time.RFC3339),
	})
	if err := conn.WriteJSON(welcome); err != nil {
		zlog.Warn().Msgf("ws: failed to send welcome to %s: %v", id, err)
	}

	zlog.Info().Msgf("ws: client connected: id=%s", id)
	return id
}

// Remove unregisters a connection after it has closed.
func (h *Hub) Remove(clientID string) {
	h.mu.Lock()
	_, ok := h.clients[clientID]
	delete(h.clients, clientID)
	h.mu.Unlock()

	if ok {
		zlog.Info().Msgf("ws: client disconnected: id=%s", clientID)
	}
}

// Count returns the number of currently connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SendTo delivers a message to one client. Best effort: the return
// value only says whether a write was attempted on an open connection.
func (h *Hub) SendTo(clientID string, msg Message) bool {
	h.mu.RLock()
	r, ok := h.clients[clientID]
	h.mu.RUnlock()

	if !ok {
		return false
	}
	if err := r.conn.WriteJSON(msg); err != nil {
		zlog.Debug().Msgf("ws: send to %s failed: %v", clientID, err)
		return false
	}
	return true
}

// Broadcast delivers a message to every open connection passing the
// filter. Sends run in parallel with a per-client timeout so one slow
// client cannot stall the rest. Returns the number of recipients
// attempted.
func (h *Hub) Broadcast(msg Message, opts BroadcastOptions) int {
	var include map[string]bool
	if len(opts.IncludeOnly) > 0 {
		include = make(map[string]bool, len(opts.IncludeOnly))
		for _, id := range opts.IncludeOnly {
			include[id] = true
		}
	}

	h.mu.RLock()
	targets := make([]*remote, 0, len(h.clients))
	for id, r := range h.clients {
		if id == opts.ExcludeClientID {
			continue
		}
		if include != nil && !include[id] {
			continue
		}
		targets = append(targets, r)
	}
	h.mu.RUnlock()

	var wg sync.WaitGroup
	for _, r := range targets {
		wg.Add(1)
		go func(r *remote) {
			defer wg.Done()

			done := make(chan error, 1)
			go func() {
				done <- r.conn.WriteJSON(msg)
			}()

			select {
			case err := <-done:
				if err != nil {
					zlog.Debug().Msgf("ws: broadcast to %s failed: %v", r.sess.ID, err)
				}
			case <-time.After(sendTimeout):
				zlog.Debug().Msgf("ws: broadcast to %s timed out", r.sess.ID)
			}
		}(r)
	}
	wg.Wait()

	return len(targets)
}

// Disconnect closes one connection and removes it from the registry.
func (h *Hub) Disconnect(clientID string, code int, reason string) bool {
	h.mu.Lock()
	r, ok := h.clients[clientID]
	delete(h.clients, clientID)
	h.mu.Unlock()

	if !ok {
		return false
	}
	if err := r.conn.Close(code, reason); err != nil {
		zlog.Debug().Msgf("ws: close of %s failed: %v", clientID, err)
	}
	zlog.Info().Msgf("ws: client disconnected: id=%s reason=%s", clientID, reason)
	return true
}

// DisconnectAll closes every connection.
func (h *Hub) DisconnectAll(code int, reason string) {
	h.mu.RLock()
	ids := make([]string, 0, len(h.clients))
	for id := range h.clients {
		ids = append(ids, id)
	}
	h.mu.RUnlock()

	for _, id := range ids {
		h.Disconnect(id, code, reason)
	}
}

// MarkAlive records a liveness response from a client.
func (h *Hub) MarkAlive(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if r, ok := h.clients[clientID]; ok {
		r.sess.MarkAlive()
		h.hbReceived++
	}
}

// heartbeatTick runs one probe/mark cycle: every open connection is
// marked not-alive and probed; connections that have already missed
// MaxMissed consecutive probes are closed instead.
func (h *Hub) heartbeatTick() {
	h.mu.Lock()
	var toPing []*remote
	var toClose []string
	for id, r := range h.clients {
		missed := r.sess.MarkProbed()
		if missed > 0 {
			h.hbMissed++
		}
		if h.cfg.MaxMissed > 0 && missed >= h.cfg.MaxMissed {
			toClose = append(toClose, id)
			continue
		}
		toPing = append(toPing, r)
		h.hbSent++
	}
	h.mu.Unlock()

	for _, id := range toClose {
		zlog.Warn().Msgf("ws: closing unresponsive client: id=%s", id)
		h.Disconnect(id, CloseGoingAway, "heartbeat timeout")
	}
	for _, r := range toPing {
		if err := r.conn.Ping(); err != nil {
			zlog.Debug().Msgf("ws: ping to %s failed: %v", r.sess.ID, err)
		}
	}
}

// HandleMessage processes one raw inbound message from a client.
// Malformed messages and handler failures produce an error reply to the
// originating client only.
func (h *Hub) HandleMessage(clientID string, data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		h.replyError(clientID, "", "invalid message format")
		return
	}

	h.mu.Lock()
	if r, ok := h.clients[clientID]; ok {
		r.sess.MessagesHandled++
	}
	listener := h.listener
	h.mu.Unlock()

	if msg.Type != TypeCommand {
		if listener != nil {
			listener(clientID, msg.Type, msg.Payload)
		} else {
			zlog.Debug().Msgf("ws: unhandled message type %q from %s", msg.Type, clientID)
		}
		return
	}

	action, _ := msg.Payload["action"].(string)
	if action == "" {
		h.replyError(clientID, "", "missing command action")
		return
	}

	fields := make(map[string]any, len(msg.Payload))
	for k, v := range msg.Payload {
		if k != "action" {
			fields[k] = v
		}
	}

	handler, ok := h.lookup(Action(action))
	if !ok {
		h.replyError(clientID, action, "Unknown command")
		return
	}

	if err := handler(h.ctx, clientID, Command{Action: Action(action), Fields: fields}); err != nil {
		zlog.Debug().Msgf("ws: command %s from %s failed: %v", action, clientID, err)
		h.replyError(clientID, action, err.Error())
	}
}

func (h *Hub) replyError(clientID, command, message string) {
	h.SendTo(clientID, NewMessage(TypeError, ErrorPayload{
		Command: command,
		Message: message,
	}))
}

// Stats returns the registry counters.
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Stats{
		TotalConnected:     h.totalConnected,
		CurrentConnected:   len(h.clients),
		HeartbeatsSent:     h.hbSent,
		HeartbeatsReceived: h.hbReceived,
		HeartbeatsMissed:   h.hbMissed,
	}
}
