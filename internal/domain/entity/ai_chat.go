package entity

import "time"

// AiChatRecord is one exchange with the support assistant.
type AiChatRecord struct {
	ID        string    `json:"id" firestore:"id"`
	OwnerID   string    `json:"owner_id" firestore:"ownerId"`
	Question  string    `json:"question" firestore:"question"`
	HasPhoto  bool      `json:"has_photo" firestore:"hasPhoto"`
	Answer    string    `json:"answer" firestore:"answer"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}
