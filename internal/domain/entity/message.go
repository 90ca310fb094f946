package entity

import "time"

type Message struct {
	ID       string `json:"id" firestore:"id"`
	ChatID   string `json:"chat_id" firestore:"chatId"`
	SenderID string `json:"sender_id" firestore:"senderId"`
	Text     string `json:"text" firestore:"text"`
	Deleted  bool   `json:"deleted,omitempty" firestore:"deleted"`
	// Assigned by the store on write when left zero.
	Timestamp time.Time `json:"timestamp" firestore:"timestamp,serverTimestamp"`
}

// SoftDelete blanks the message in place; id and timestamp are kept so the
// message keeps its position in the conversation.
func (m *Message) SoftDelete() {
	m.Text = DeletedMessageText
	m.Deleted = true
}
