// Package events pushes invoice changes to the owning account's open
// dashboards over websockets.
package events

import (
	"context"
	"net/http"
	"sync"
	"time"

	"invoice-backend/internal/logger"
	"invoice-backend/internal/metrics"

	"github.com/gorilla/websocket"
)

// Event types
const (
	InvoiceCreated = "invoice.created"
	InvoiceUpdated = "invoice.updated"
	InvoiceDeleted = "invoice.deleted"
)

// Event is one message sent to dashboards
type Event struct {
	Type      string    `json:"type"`
	InvoiceID string    `json:"invoiceId"`
	InvoiceNo string    `json:"invoiceNo"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is what services need from the hub
type Publisher interface {
	Publish(accountID string, evt Event)
}

type envelope struct {
	accountID string
	event     Event
}

const writeWait = 5 * time.Second

// Hub tracks websocket clients per account and fans events out to them
type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[string]map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan envelope
}

// NewHub builds a hub. allowedOrigins gates the upgrade the same way CORS
// gates plain requests; an empty list accepts any origin.
func NewHub(allowedOrigins []string) *Hub {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || len(allowed) == 0 || allowed["*"] || allowed[origin]
			},
		},
		clients:   make(map[string]map[*websocket.Conn]bool),
		broadcast: make(chan envelope, 256),
	}
}

// Publish queues evt for accountID's clients without blocking the caller.
// Events are dropped when the queue is full.
func (h *Hub) Publish(accountID string, evt Event) {
	if h == nil {
		return
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- envelope{accountID: accountID, event: evt}:
	default:
		log := logger.WithComponent("events")
		log.Warn().Str("type", evt.Type).Msg("event queue full, dropping event")
	}
}

// Run delivers queued events until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case env := <-h.broadcast:
			h.deliver(env)
		}
	}
}

func (h *Hub) deliver(env envelope) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	for conn := range h.clients[env.accountID] {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(env.event); err != nil {
			conn.Close()
			h.removeLocked(env.accountID, conn)
		}
	}
}

// Serve upgrades the request and keeps the connection registered until the
// client goes away. Messages from the client are read and discarded.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, accountID string) {
	log := logger.WithComponent("events")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Dashboards stay idle for long stretches; drop the server read timeout.
	conn.SetReadDeadline(time.Time{})

	h.add(accountID, conn)
	defer h.remove(accountID, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Clients returns how many connections accountID has open
func (h *Hub) Clients(accountID string) int {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	return len(h.clients[accountID])
}

func (h *Hub) add(accountID string, conn *websocket.Conn) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	if h.clients[accountID] == nil {
		h.clients[accountID] = make(map[*websocket.Conn]bool)
	}
	h.clients[accountID][conn] = true
	metrics.WebsocketClients.Inc()
}

func (h *Hub) remove(accountID string, conn *websocket.Conn) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()
	h.removeLocked(accountID, conn)
}

func (h *Hub) removeLocked(accountID string, conn *websocket.Conn) {
	conns := h.clients[accountID]
	if !conns[conn] {
		return
	}
	delete(conns, conn)
	if len(conns) == 0 {
		delete(h.clients, accountID)
	}
	metrics.WebsocketClients.Dec()
}

func (h *Hub) closeAll() {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	for accountID, conns := range h.clients {
		for conn := range conns {
			conn.Close()
			h.removeLocked(accountID, conn)
		}
	}
}
