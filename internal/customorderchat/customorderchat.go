package customorderchat

import (
	"sync"

	"github.com/gorilla/websocket"

	"pinst/internal/models"
)

// Event — событие чата кастомного заказа, уходящее в вебсокет.
type Event struct {
	Type    string             `json:"type"`
	Message models.ChatMessage `json:"message"`
}

var clients = struct {
	sync.RWMutex
	m map[string]map[*websocket.Conn]bool
}{m: make(map[string]map[*websocket.Conn]bool)}

func AddClient(customOrderID string, conn *websocket.Conn) {
	clients.Lock()
	defer clients.Unlock()
	conns, ok := clients.m[customOrderID]
	if !ok {
		conns = make(map[*websocket.Conn]bool)
		clients.m[customOrderID] = conns
	}
	conns[conn] = true
}

func RemoveClient(customOrderID string, conn *websocket.Conn) {
	clients.Lock()
	defer clients.Unlock()
	if conns, ok := clients.m[customOrderID]; ok {
		delete(conns, conn)
	}
}

func newEvent(msg models.ChatMessage) Event {
	return Event{Type: string(msg.Type), Message: msg}
}

func Send(conn *websocket.Conn, msg models.ChatMessage) error {
	return conn.WriteJSON(newEvent(msg))
}

// Broadcast рассылает сообщение всем подключениям чата заказа.
func Broadcast(customOrderID string, msg models.ChatMessage) {
	clients.Lock()
	defer clients.Unlock()
	for c := range clients.m[customOrderID] {
		if err := Send(c, msg); err != nil {
			c.Close()
			delete(clients.m[customOrderID], c)
		}
	}
}
