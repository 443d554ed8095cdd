package ws

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	zlog "github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Local single-user app; no cross-origin policy to enforce.
	CheckOrigin: func(*http.Request) bool { return true },
}

// gorillaConn adapts a gorilla websocket connection to the Conn
// interface. All writes are serialized through the mutex because
// gorilla allows only one concurrent writer.
type gorillaConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (g *gorillaConn) WriteJSON(v any) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return g.conn.WriteJSON(v)
}

func (g *gorillaConn) Ping() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (g *gorillaConn) Close(code int, reason string) error {
	g.mu.Lock()
	msg := websocket.FormatCloseMessage(code, reason)
	g.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	g.mu.Unlock()
	return g.conn.Close()
}

// Handler upgrades HTTP requests to WebSocket connections and pumps
// inbound messages into the hub until the peer goes away.
func Handler(hub *Hub) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			zlog.Warn().Msgf("ws: upgrade failed: %v", err)
			return
		}

		conn := &gorillaConn{conn: raw}
		clientID := hub.Accept(conn)
		defer hub.Remove(clientID)

		raw.SetReadLimit(maxMessageSize)
		raw.SetPongHandler(func(string) error {
			hub.MarkAlive(clientID)
			return nil
		})

		for {
			_, data, err := raw.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					zlog.Debug().Msgf("ws: read from %s failed: %v", clientID, err)
				}
				return
			}
			hub.HandleMessage(clientID, data)
		}
	})
}
