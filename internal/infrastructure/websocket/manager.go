package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/pkg/logger"
	"mindhaven/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 << 10
	sendBuffer     = 64
)

// Client is one WebSocket connection. A user may hold several at once, one
// per browser tab, each with its own subscriptions.
type Client struct {
	ID     string
	UserID string
	Conn   *websocket.Conn

	send   chan []byte
	ctx    context.Context
	cancel context.CancelFunc

	mutex         sync.Mutex
	closed        bool
	subscriptions map[string]repository.Unsubscribe
}

func NewClient(userID string, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	return &Client{
		ID:            uuid.New().String(),
		UserID:        userID,
		Conn:          conn,
		send:          make(chan []byte, sendBuffer),
		ctx:           ctx,
		cancel:        cancel,
		subscriptions: make(map[string]repository.Unsubscribe),
	}
}

// Enqueue queues a frame for writing. Frames for a closed client, or for a
// client whose queue is full, are dropped.
func (c *Client) Enqueue(frame []byte) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		logger.Warn("WebSocket: send queue full for client %s, dropping frame", c.ID)
		return false
	}
}

func (c *Client) push(frameType string, data interface{}) bool {
	frame, err := json.Marshal(Frame{
		Type:      frameType,
		Data:      data,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		logger.Error("WebSocket: failed to encode %s frame: %v", frameType, err)
		return false
	}
	return c.Enqueue(frame)
}

// subscribe registers unsubscribe under key, replacing and tearing down any
// earlier subscription with the same key. It reports false, after tearing
// the new subscription down, when the client is already closed.
func (c *Client) subscribe(key string, unsubscribe repository.Unsubscribe) bool {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		unsubscribe()
		return false
	}
	previous := c.subscriptions[key]
	c.subscriptions[key] = unsubscribe
	c.mutex.Unlock()

	if previous != nil {
		previous()
	}
	return true
}

func (c *Client) unsubscribe(key string) bool {
	c.mutex.Lock()
	fn, ok := c.subscriptions[key]
	delete(c.subscriptions, key)
	c.mutex.Unlock()

	if ok {
		fn()
	}
	return ok
}

func (c *Client) subscriptionCount() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.subscriptions)
}

// Close tears down every subscription and closes the send queue. It is safe
// to call more than once.
func (c *Client) Close() {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return
	}
	c.closed = true
	subs := c.subscriptions
	c.subscriptions = map[string]repository.Unsubscribe{}
	close(c.send)
	c.mutex.Unlock()

	c.cancel()
	for _, unsubscribe := range subs {
		unsubscribe()
	}
}

// Manager tracks connected clients by user.
type Manager struct {
	clients       map[string]map[string]*Client
	Register      chan *Client
	Unregister    chan *Client
	chats         ConversationService
	notifications NotificationService
	mutex         sync.RWMutex
	done          chan struct{}
}

func NewManager(chats ConversationService, notifications NotificationService) *Manager {
	return &Manager{
		clients:       make(map[string]map[string]*Client),
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		chats:         chats,
		notifications: notifications,
		done:          make(chan struct{}),
	}
}

// Start runs the registration loop until ctx is done, then closes every
// remaining client.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.add(client)

			case client := <-m.Unregister:
				m.remove(client)

			case <-ctx.Done():
				close(m.done)
				m.closeAll()
				return
			}
		}
	}()
}

func (m *Manager) add(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.clients[client.UserID] == nil {
		m.clients[client.UserID] = make(map[string]*Client)
	}
	m.clients[client.UserID][client.ID] = client
	metrics.WebSocketClients.Inc()
	logger.Debug("WebSocket: client %s registered for user %s", client.ID, client.UserID)
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	if conns, ok := m.clients[client.UserID]; ok {
		if _, ok := conns[client.ID]; ok {
			delete(conns, client.ID)
			metrics.WebSocketClients.Dec()
		}
		if len(conns) == 0 {
			delete(m.clients, client.UserID)
		}
	}
	m.mutex.Unlock()

	client.Close()
	logger.Debug("WebSocket: client %s unregistered for user %s", client.ID, client.UserID)
}

func (m *Manager) closeAll() {
	m.mutex.Lock()
	var all []*Client
	for _, conns := range m.clients {
		for _, c := range conns {
			all = append(all, c)
			metrics.WebSocketClients.Dec()
		}
	}
	m.clients = make(map[string]map[string]*Client)
	m.mutex.Unlock()

	for _, c := range all {
		c.Close()
	}
}

// SendToUser pushes a frame to every connection of the user and returns how
// many accepted it.
func (m *Manager) SendToUser(userID, frameType string, data interface{}) int {
	m.mutex.RLock()
	targets := make([]*Client, 0, len(m.clients[userID]))
	for _, c := range m.clients[userID] {
		targets = append(targets, c)
	}
	m.mutex.RUnlock()

	sent := 0
	for _, c := range targets {
		if c.push(frameType, data) {
			sent++
		}
	}
	return sent
}

// PushNotification sends a newly created notification to every connection
// of the user.
func (m *Manager) PushNotification(userID string, notification *entity.Notification) int {
	return m.SendToUser(userID, TypeNotification, notification)
}

// Connect registers c with the running manager. It reports false, closing c,
// once the manager has stopped.
func (m *Manager) Connect(c *Client) bool {
	select {
	case m.Register <- c:
		return true
	case <-m.done:
		c.Close()
		return false
	}
}

func (m *Manager) unregister(c *Client) {
	select {
	case m.Unregister <- c:
	case <-m.done:
		c.Close()
	}
}

// ReadPump reads frames until the connection fails, then unregisters.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket: read error for client %s: %v", c.ID, err)
			}
			return
		}

		m.HandleClientMessage(c, message)
	}
}

// WritePump drains the send queue and keeps the connection alive with pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logger.Warn("WebSocket: write error for client %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
