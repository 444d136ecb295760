package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go-flowershop-admin/pkg/logger"

	"github.com/gofiber/contrib/websocket"
)

// Event is one message on the live dashboard feed.
type Event struct {
	Type    string     `json:"type"`
	Action  string     `json:"action"`
	Data    any        `json:"data,omitempty"`
	User    *EventUser `json:"user,omitempty"`
	Message string     `json:"message"`
}

type EventUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

const (
	TypeStockUpdate = "stock_update"
	TypeOrder       = "order_update"
	TypePayment     = "payment_update"
	TypeAlert       = "stock_alert"
)

type Hub struct {
	Clients    map[*websocket.Conn]bool
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	mutex      sync.Mutex
	log        *logger.Logger
	done       chan struct{}
}

func NewHub(log *logger.Logger) *Hub {
	if log == nil {
		log = logger.Nop()
	}
	return &Hub{
		Clients:    make(map[*websocket.Conn]bool),
		Register:   make(chan *websocket.Conn),
		Unregister: make(chan *websocket.Conn),
		Broadcast:  make(chan []byte, 64),
		log:        log,
		done:       make(chan struct{}),
	}
}

// Publish queues an event for every connected client. It never blocks the
// caller; when the queue is full the event is dropped.
func (h *Hub) Publish(event Event) {
	msg, err := json.Marshal(event)
	if err != nil {
		h.log.Error(context.Background(), "ws: marshal event", err)
		return
	}
	select {
	case h.Broadcast <- msg:
	default:
		h.log.Warn(context.Background(), "ws: broadcast queue full, dropping "+event.Type)
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.Clients)
}

func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mutex.Lock()
			for conn := range h.Clients {
				conn.Close()
				delete(h.Clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.Register:
			h.mutex.Lock()
			h.Clients[conn] = true
			h.mutex.Unlock()
			h.log.Debug(context.Background(), "ws: client connected")

		case conn := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.Clients[conn]; ok {
				delete(h.Clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()

		case message := <-h.Broadcast:
			h.mutex.Lock()
			for conn := range h.Clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					conn.Close()
					delete(h.Clients, conn)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Serve keeps conn registered until the client disconnects or the hub stops.
func (h *Hub) Serve(conn *websocket.Conn) {
	select {
	case h.Register <- conn:
	case <-h.done:
		return
	}
	defer func() {
		select {
		case h.Unregister <- conn:
		case <-h.done:
		}
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
