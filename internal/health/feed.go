package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/girguy/concaf/internal/metrics"
	"github.com/girguy/concaf/internal/models"
)

const (
	// writeWait is the maximum time to wait for a write to complete.
	writeWait = 10 * time.Second

	// pongWait is the maximum time to wait for a pong from the client.
	pongWait = 60 * time.Second

	// pingPeriod must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
	sendBufferSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// feedMessage is the envelope pushed to live feed clients
type feedMessage struct {
	Type    string               `json:"type"`
	Payload *PredictionsResponse `json:"payload"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub fans completed prediction batches out to websocket clients. New
// clients receive the most recent batch on connect.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	logger     *logrus.Entry

	// last is owned by Run
	last []byte
}

// NewHub creates a hub; call Run before serving connections.
func NewHub(logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.New()
	}
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		logger:     logger.WithField("component", "feed"),
	}
}

// Run is the hub event loop. It returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			metrics.UpdateFeedSubscribers(0)
			return ctx.Err()

		case c := <-h.register:
			h.clients[c] = true
			metrics.UpdateFeedSubscribers(len(h.clients))
			h.logger.WithField("total_clients", len(h.clients)).Info("Feed client connected")
			if h.last != nil {
				c.send <- h.last
			}

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			metrics.UpdateFeedSubscribers(len(h.clients))
			h.logger.WithField("total_clients", len(h.clients)).Info("Feed client disconnected")

		case msg := <-h.broadcast:
			h.last = msg
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("Dropping feed message for slow client")
				}
			}
		}
	}
}

// Publish queues batch for every connected client. It never blocks the
// pipeline; when the queue is full the message is dropped. The hub loop
// records the batch for replay once it takes it off the queue.
func (h *Hub) Publish(batch *models.BatchResult) {
	msg, err := json.Marshal(feedMessage{Type: "predictions", Payload: NewPredictionsResponse(batch)})
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode feed message")
		return
	}

	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("Feed broadcast queue full")
	}
}

// HandleWS upgrades the request and registers the client.
// GET /ws/predictions
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Feed upgrade failed")
		return
	}

	c := &client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// readPump discards client frames and notices disconnects.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.WithError(err).Warn("Unexpected feed close")
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
