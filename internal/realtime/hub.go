package realtime

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"mockup/internal/infra"
)

// Message types pushed to subscribers.
const (
	MsgState = "state"
)

// Message is the envelope written to every subscriber.
type Message struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

type Options struct {
	Logger *infra.Logger
	// Snapshot returns the value sent to a subscriber right after it connects.
	Snapshot func() any
	// CheckOrigin defaults to allowing every origin.
	CheckOrigin func(r *http.Request) bool
	// QueueSize bounds pending broadcasts; defaults to 256.
	QueueSize int
}

// Hub fans state snapshots out to websocket subscribers.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex

	upgrader websocket.Upgrader
	snapshot func() any
	logger   *infra.Logger
}

func NewHub(opts Options) *Hub {
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		logger = &discard
	}
	checkOrigin := opts.CheckOrigin
	if checkOrigin == nil {
		checkOrigin = func(*http.Request) bool { return true }
	}
	queue := opts.QueueSize
	if queue <= 0 {
		queue = 256
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, queue),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     checkOrigin,
		},
		snapshot: opts.Snapshot,
		logger:   logger,
	}
}

// Run processes registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			h.mu.Unlock()
			if h.snapshot != nil {
				if msg, err := encode(MsgState, h.snapshot()); err == nil {
					c.send <- msg
				}
			}
			h.logger.Debug().Int("clients", h.ClientCount()).Msg("realtime: subscriber joined")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					delete(h.clients, c)
					close(c.send)
					h.logger.Warn().Msg("realtime: dropping slow subscriber")
				}
			}
			h.mu.Unlock()
		}
	}
}

// PublishState queues a state snapshot for every subscriber. It never blocks;
// when the queue is full the oldest pending snapshots are discarded so the
// latest one is always delivered.
func (h *Hub) PublishState(state any) {
	msg, err := encode(MsgState, state)
	if err != nil {
		h.logger.Error().Err(err).Msg("realtime: encode state")
		return
	}
	dropped := 0
	for {
		select {
		case h.broadcast <- msg:
			if dropped > 0 {
				h.logger.Warn().Int("dropped", dropped).Msg("realtime: broadcast queue full, coalesced older states")
			}
			return
		default:
		}
		select {
		case <-h.broadcast:
			dropped++
		default:
		}
	}
}

// ClientCount returns the number of connected subscribers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and subscribes the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("realtime: upgrade failed")
		return
	}
	c := &Client{hub: h, conn: conn, send: make(chan []byte, 16)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func encode(kind string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: kind, Data: data, Timestamp: time.Now().UTC()})
}
