package ws

import (
	"context"
	"sync"
)

// HandlerFunc handles one dispatched command. Returned errors are
// converted into an error reply to the originating client; they never
// reach other clients or tear down the connection.
type HandlerFunc func(ctx context.Context, clientID string, cmd Command) error

// dispatcher maps action names to registered handlers.
type dispatcher struct {
	mu       sync.RWMutex
	handlers map[Action]HandlerFunc
}

func newDispatcher() dispatcher {
	return dispatcher{handlers: make(map[Action]HandlerFunc)}
}

// RegisterHandler installs (or overwrites) the handler for an action.
func (d *dispatcher) RegisterHandler(action Action, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[action] = h
}

func (d *dispatcher) lookup(action Action) (HandlerFunc, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	h, ok := d.handlers[action]
	return h, ok
}
