package entity

import (
	"sort"
	"strings"
	"time"
)

const chatIDSeparator = "_"

// DeletedMessageText replaces the text of a soft-deleted message.
const DeletedMessageText = "This message was deleted"

type Chat struct {
	ID            string    `json:"id" firestore:"id"`
	Participants  []string  `json:"participants" firestore:"participants"`
	LastMessage   string    `json:"last_message,omitempty" firestore:"lastMessage,omitempty"`
	LastMessageID string    `json:"last_message_id,omitempty" firestore:"lastMessageId,omitempty"`
	LastUpdated   time.Time `json:"last_updated" firestore:"lastUpdated"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt"`
}

// ChatID derives the conversation id of two users. It does not depend on
// argument order, so a pair never gets two chat documents.
func ChatID(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, chatIDSeparator)
}

// ChatParticipants recovers the pair encoded in a chat id.
func ChatParticipants(chatID string) (string, string, bool) {
	a, b, found := strings.Cut(chatID, chatIDSeparator)
	if !found || a == "" || b == "" || strings.Contains(b, chatIDSeparator) {
		return "", "", false
	}
	if ChatID(a, b) != chatID {
		return "", "", false
	}
	return a, b, true
}

// RedactLastMessage replaces the summary text when it shows messageID and
// reports whether it did.
func (c *Chat) RedactLastMessage(messageID string) bool {
	if messageID == "" || c.LastMessageID != messageID {
		return false
	}
	c.LastMessage = DeletedMessageText
	return true
}

// Peer returns the other participant.
func (c *Chat) Peer(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
