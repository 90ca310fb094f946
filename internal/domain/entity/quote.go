package entity

import "time"

type Quote struct {
	ID         string    `json:"id" firestore:"id"`
	Text       string    `json:"text" firestore:"text"`
	AuthorID   string    `json:"author_id" firestore:"authorId"`
	AuthorName string    `json:"author_name" firestore:"authorName"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt  time.Time `json:"updated_at" firestore:"updatedAt"`
}
