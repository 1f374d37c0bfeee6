package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ecopulse/ecopulse-backend/internal/goroutine"
	"github.com/ecopulse/ecopulse-backend/internal/logger"
	"github.com/ecopulse/ecopulse-backend/internal/usecase"
)

// Hub управляет всеми WebSocket клиентами и доставляет события пользователям.
type Hub struct {
	clients    map[uuid.UUID]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	ctx        context.Context
	log        *logrus.Entry
}

var _ usecase.Notifier = (*Hub)(nil)

type message struct {
	userID  uuid.UUID
	payload []byte
}

// envelope - формат сообщения для клиента: "type" содержит имя события, "data" - полезную нагрузку.
type envelope struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewHub создаёт новый хаб.
func NewHub(ctx context.Context) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 64),
		ctx:        ctx,
		log:        logger.WithComponent("ws"),
	}
}

// Run запускает главный цикл хаба. Карта клиентов принадлежит только этому циклу.
func (h *Hub) Run() {
	for {
		select {
		case <-h.ctx.Done():
			for _, clients := range h.clients {
				for c := range clients {
					close(c.send)
				}
			}
			h.clients = make(map[uuid.UUID]map[*Client]struct{})
			return
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
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

// Notify ставит событие в очередь отправки. Не блокирует вызывающего:
// при переполненной очереди событие отбрасывается.
func (h *Hub) Notify(userID uuid.UUID, event string, data any) {
	raw, err := json.Marshal(envelope{Type: event, Data: data})
	if err != nil {
		h.log.WithError(err).WithField("event", event).Error("не удалось сериализовать событие")
		return
	}

	select {
	case h.broadcast <- message{userID: userID, payload: raw}:
	case <-h.ctx.Done():
	default:
		h.log.WithFields(logrus.Fields{"event": event, "user_id": userID}).Warn("очередь событий переполнена, событие отброшено")
	}
}

func (h *Hub) addClient(client *Client) {
	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

func (h *Hub) removeClient(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *Hub) send(userID uuid.UUID, payload []byte) {
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
			// медленный клиент: отключаем, соединение закроет writePump
			h.removeClient(client)
			goroutine.SafeGo(client.closeConn)
		}
	}
}
