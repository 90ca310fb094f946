package websocket

import (
	"context"
	"encoding/json"
	stdErrors "errors"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/internal/usecase"
	"mindhaven/pkg/errors"
	"mindhaven/pkg/logger"
)

// Client frame types
const (
	TypePing                     = "ping"
	TypeOpenConversation         = "open_conversation"
	TypeCloseConversation        = "close_conversation"
	TypeSendMessage              = "send_message"
	TypeDeleteMessage            = "delete_message"
	TypeSubscribeNotifications   = "subscribe_notifications"
	TypeUnsubscribeNotifications = "unsubscribe_notifications"
)

// Server frame types
const (
	TypePong          = "pong"
	TypeConversation  = "conversation"
	TypeNotifications = "notifications"
	TypeNotification  = "notification"
	TypeError         = "error"
)

const notificationsKey = "notifications"

// ConversationService is the part of the chat use case the socket drives.
type ConversationService interface {
	OpenConversation(ctx context.Context, selfID, peerID string, onChange func([]*entity.Message), onError func(error)) (*usecase.Conversation, repository.Unsubscribe, error)
	SendMessage(ctx context.Context, chatID, senderID, text string) (*entity.Message, error)
	SoftDeleteMessage(ctx context.Context, chatID, messageID, requesterID string) error
}

type NotificationService interface {
	WatchFeed(ctx context.Context, userID string, onChange func(usecase.Feed), onError func(error)) repository.Unsubscribe
}

// ClientMessage is a frame sent by the browser.
type ClientMessage struct {
	Type      string `json:"type"`
	PeerID    string `json:"peer_id,omitempty"`
	ChatID    string `json:"chat_id,omitempty"`
	Text      string `json:"text,omitempty"`
	MessageID string `json:"message_id,omitempty"`
}

// Frame is a message pushed to the browser.
type Frame struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

type ConversationFrame struct {
	ChatID   string                `json:"chat_id"`
	Peer     *entity.PublicProfile `json:"peer"`
	Messages []*entity.Message     `json:"messages"`
}

type ErrorFrame struct {
	Message string `json:"message"`
}

func chatKey(chatID string) string {
	return "chat:" + chatID
}

// HandleClientMessage dispatches a single frame read from c.
func (m *Manager) HandleClientMessage(c *Client, raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.pushError(errors.BadRequest("Malformed frame", err))
		return
	}

	var err error
	switch msg.Type {
	case TypePing:
		c.push(TypePong, nil)

	case TypeOpenConversation:
		err = m.openConversation(c, msg.PeerID)

	case TypeCloseConversation:
		c.unsubscribe(chatKey(msg.ChatID))

	case TypeSendMessage:
		_, err = m.chats.SendMessage(c.ctx, msg.ChatID, c.UserID, msg.Text)

	case TypeDeleteMessage:
		err = m.chats.SoftDeleteMessage(c.ctx, msg.ChatID, msg.MessageID, c.UserID)

	case TypeSubscribeNotifications:
		m.subscribeNotifications(c)

	case TypeUnsubscribeNotifications:
		c.unsubscribe(notificationsKey)

	default:
		err = errors.BadRequest("Unknown frame type: "+msg.Type, nil)
	}

	if err != nil {
		c.pushError(err)
	}
}

// openConversation subscribes c to a conversation. Snapshots that arrive
// before the subscription is registered are held back, newest wins, and
// flushed under the gate so no later snapshot can be pushed ahead of it.
func (m *Manager) openConversation(c *Client, peerID string) error {
	if peerID == "" {
		return errors.BadRequest("peer_id is required", nil)
	}

	var (
		conversation *usecase.Conversation
		ready        bool
		pending      []*entity.Message
		hasPending   bool
	)
	gate := make(chan struct{}, 1)
	gate <- struct{}{}

	onChange := func(messages []*entity.Message) {
		<-gate
		defer func() { gate <- struct{}{} }()

		if ready {
			c.push(TypeConversation, ConversationFrame{ChatID: conversation.ChatID, Peer: conversation.Peer, Messages: nonNil(messages)})
			return
		}
		pending, hasPending = messages, true
	}
	onError := func(err error) {
		logger.Warn("WebSocket: conversation subscription for %s failed: %v", c.UserID, err)
		c.pushError(errors.Internal("Conversation updates stopped", err))
	}

	opened, unsubscribe, err := m.chats.OpenConversation(c.ctx, c.UserID, peerID, onChange, onError)
	if err != nil {
		return err
	}

	// Replacing an earlier subscription may deliver snapshots, so this runs
	// outside the gate.
	if !c.subscribe(chatKey(opened.ChatID), unsubscribe) {
		return nil
	}

	<-gate
	defer func() { gate <- struct{}{} }()
	conversation = opened
	ready = true
	if hasPending {
		c.push(TypeConversation, ConversationFrame{ChatID: opened.ChatID, Peer: opened.Peer, Messages: nonNil(pending)})
		pending = nil
	}
	return nil
}

func (m *Manager) subscribeNotifications(c *Client) {
	unsubscribe := m.notifications.WatchFeed(c.ctx, c.UserID,
		func(feed usecase.Feed) {
			c.push(TypeNotifications, feed)
		},
		func(err error) {
			logger.Warn("WebSocket: notification subscription for %s failed: %v", c.UserID, err)
			c.pushError(errors.Internal("Notification updates stopped", err))
		},
	)
	c.subscribe(notificationsKey, unsubscribe)
}

// pushError sends the user-facing message of err. Non-application errors get
// a generic message.
func (c *Client) pushError(err error) {
	message := "Something went wrong"
	var appErr *errors.AppError
	if stdErrors.As(err, &appErr) {
		message = appErr.Message
	} else {
		logger.Error("WebSocket: unexpected error for client %s: %v", c.ID, err)
	}
	c.push(TypeError, ErrorFrame{Message: message})
}

func nonNil(messages []*entity.Message) []*entity.Message {
	if messages == nil {
		return []*entity.Message{}
	}
	return messages
}
