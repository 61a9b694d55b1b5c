package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/linkpage/internal/logging"
	"github.com/conneroisu/linkpage/internal/validation"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period.
	pingPeriod = 54 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 512

	// Messages queued per client before it is dropped as too slow.
	clientBuffer = 16
)

// MessageFullReload tells connected pages to reload.
const MessageFullReload = "full_reload"

// UpdateMessage is sent to the browser.
type UpdateMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks live reload connections and fans messages out to them.
type Hub struct {
	logger         logging.Logger
	allowedOrigins []string

	clients    map[*client]struct{}
	mutex      sync.RWMutex
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}

	startOnce sync.Once
}

// NewHub creates a hub accepting connections from allowedOrigins, given as
// hosts ("localhost:3000") or full origins ("http://localhost:3000").
func NewHub(allowedOrigins []string, logger logging.Logger) *Hub {
	return &Hub{
		logger:         logger.WithComponent("livereload"),
		allowedOrigins: allowedOrigins,
		clients:        make(map[*client]struct{}),
		register:       make(chan *client),
		unregister:     make(chan *client),
		broadcast:      make(chan []byte, clientBuffer),
		done:           make(chan struct{}),
	}
}

// Start runs the hub until ctx is done. Calling it again is a no-op.
func (h *Hub) Start(ctx context.Context) {
	h.startOnce.Do(func() {
		go h.run(ctx)
	})
}

// Done is closed once the hub has stopped.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Clients returns the number of connected pages.
func (h *Hub) Clients() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Broadcast queues msg for every client. It never blocks; when the queue
// is full the message is dropped.
func (h *Hub) Broadcast(ctx context.Context, msgType string) {
	payload, err := json.Marshal(UpdateMessage{Type: msgType, Timestamp: time.Now().UTC()})
	if err != nil {
		h.logger.Error(ctx, err, "Failed to encode live reload message")
		return
	}

	select {
	case h.broadcast <- payload:
	case <-h.done:
	default:
		h.logger.Warn(ctx, nil, "Live reload queue full, dropping message", "type", msgType)
	}
}

func (h *Hub) run(ctx context.Context) {
	defer func() {
		h.mutex.Lock()
		for c := range h.clients {
			delete(h.clients, c)
			close(c.send)
		}
		h.mutex.Unlock()
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.mutex.Lock()
			h.clients[c] = struct{}{}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug(ctx, "Client connected", "clients", count)

		case c := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.Debug(ctx, "Client disconnected", "clients", count)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					// Too slow; the write pump closes the connection.
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// ServeHTTP upgrades the request after checking its origin.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := requestLogger(r.Context(), h.logger)

	origin := r.Header.Get("Origin")
	if err := validation.ValidateOrigin(origin, h.allowedOrigins); err != nil {
		logging.LogSecurityEvent(r.Context(), logger, "websocket_origin_rejected", map[string]interface{}{
			"origin": origin,
			"reason": err.Error(),
		})
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The origin was checked above.
		InsecureSkipVerify: true,
	})
	if err != nil {
		logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	go h.writePump(c)
	h.readPump(r.Context(), c)
}

// readPump drains the connection so control frames are handled, and
// unregisters the client once the peer goes away.
func (h *Hub) readPump(ctx context.Context, c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()

	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
				h.logger.Debug(ctx, "WebSocket read ended", "error", err.Error())
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				c.conn.Close(websocket.StatusGoingAway, "")
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Write(ctx, websocket.MessageText, message)
			cancel()
			if err != nil {
				c.conn.CloseNow()
				return
			}

		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), writeWait)
			err := c.conn.Ping(ctx)
			cancel()
			if err != nil {
				c.conn.CloseNow()
				return
			}
		}
	}
}
