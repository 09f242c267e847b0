// Package progress pushes job and sync status snapshots to websocket
// subscribers.
package progress

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/locvowork/todo_sync_sample/internal/domain"
	"github.com/locvowork/todo_sync_sample/internal/jobs"
	"github.com/locvowork/todo_sync_sample/internal/logger"
)

const (
	EventJobStatus     = "job.status"
	EventSyncStarted   = "sync.started"
	EventSyncCompleted = "sync.completed"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Envelope wraps every message sent to subscribers.
type Envelope struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub
}

// Hub fans status messages out to the connected clients. Slow clients are
// disconnected rather than allowed to stall the broadcast loop.
type Hub struct {
	clients    map[string]*client
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[string]*client),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	ctx := context.Background()
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c.id] = c
			total := len(h.clients)
			h.mu.Unlock()
			logger.DebugLog(ctx, "ws: client %s connected (total %d)", c.id, total)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.Lock()
			for id, c := range h.clients {
				select {
				case c.send <- message:
				default:
					close(c.send)
					delete(h.clients, id)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish broadcasts an envelope of the given type to every client.
func (h *Hub) Publish(messageType string, data interface{}) {
	bytes, err := json.Marshal(Envelope{
		Type:      messageType,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		logger.WarnLog(context.Background(), "ws: failed to marshal %s message: %v", messageType, err)
		return
	}
	h.broadcast <- bytes
}

// PublishJob implements jobs.Notifier.
func (h *Hub) PublishJob(status jobs.JobStatus) {
	h.Publish(EventJobStatus, status)
}

// PublishSyncStarted announces that a sync operation began.
func (h *Hub) PublishSyncStarted(operation string) {
	h.Publish(EventSyncStarted, map[string]interface{}{"operation": operation})
}

// PublishSyncResult announces the outcome of a finished sync operation.
func (h *Hub) PublishSyncResult(operation string, result *domain.SyncResult) {
	h.Publish(EventSyncCompleted, map[string]interface{}{
		"operation": operation,
		"result":    result,
	})
}

// ServeWS upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 256),
		hub:  h,
	}
	h.register <- c

	go c.writePump()
	go c.readPump()
	return nil
}

// readPump drains client messages to observe the close handshake and keep
// the pong handler firing. Inbound payloads are ignored.
func (c *client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.DebugLog(context.Background(), "ws: read error on client %s: %v", c.id, err)
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
