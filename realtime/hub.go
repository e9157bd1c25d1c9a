package realtime

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/choprek/utils"
)

// Event types
const (
	EventStoreChange = "store_change"
	EventStaffNotif  = "staff_notification"
)

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung semua client websocket (admin, employee) dan mengirim broadcast ke mereka.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> role
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

// RegisterClient -> menambahkan connection ke set dengan role
func (h *Hub) RegisterClient(conn *websocket.Conn, role string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = role
}

// UnregisterClient -> melepaskan connection
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

func (h *Hub) ClientCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// BroadcastStaffNotification -> notifikasi singkat untuk admin
func (h *Hub) BroadcastStaffNotification(message string) {
	h.Broadcast(Message{Event: EventStaffNotif, Data: message})
}

// Attach forwards every change published on feed to the connected clients.
func (h *Hub) Attach(feed *Feed) (detach func()) {
	return feed.Subscribe(func(c Change) {
		h.Broadcast(Message{Event: EventStoreChange, Data: c})
	})
}

// Broadcast writes msg to every client; clients that fail a write are dropped.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("Error marshaling message")
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	utils.InfoLogger.WithField("event", msg.Event).Debugf("Broadcasting to %d clients", len(h.clients))

	for conn, role := range h.clients {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.WithError(err).WithField("role", role).Error("Error sending message to client")
			delete(h.clients, conn)
			conn.Close()
		}
	}
}
