package ws

import (
	"sync"

	"github.com/google/uuid"

	"github.com/teenlance/teenlance-backend/internal/goroutine"
	"github.com/teenlance/teenlance-backend/internal/logger"
)

// Hub управляет всеми WebSocket клиентами и доставляет им уведомления.
// Hub — чистый транспорт: сохранением уведомлений занимается сервисный слой.
type Hub struct {
	mu         sync.RWMutex
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
}

type message struct {
	userID  uuid.UUID
	payload []byte
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
	}
}

// Run запускает главный цикл хаба.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case msg := <-h.broadcast:
			h.send(msg.userID, msg.payload)
		}
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Push отправляет сообщение во все открытые соединения пользователя.
// Неблокирующая: при заполненном канале сообщение отбрасывается,
// пользователь прочитает его из сохранённых уведомлений.
func (h *Hub) Push(userID uuid.UUID, payload []byte) {
	select {
	case h.broadcast <- message{userID: userID, payload: payload}:
	default:
		logger.Log.WithField("user_id", userID).Warn("ws: канал рассылки переполнен, сообщение отброшено")
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

func (h *Hub) send(userID uuid.UUID, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			// Медленный клиент закрывается, чтобы не копить буфер.
			goroutine.SafeGo(client.Close)
		}
	}
}
