package repository

import (
	"context"

	"mindhaven/internal/domain/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	// Touch records message as the chat's latest.
	Touch(ctx context.Context, message *entity.Message) error
	ListByParticipant(ctx context.Context, userID string) ([]*entity.Chat, error)

	CreateMessage(ctx context.Context, message *entity.Message) error
	GetMessage(ctx context.Context, chatID, messageID string) (*entity.Message, error)
	// SoftDeleteMessage also rewrites the chat summary when messageID is the
	// chat's latest message.
	SoftDeleteMessage(ctx context.Context, chatID, messageID string) error
	ListMessages(ctx context.Context, chatID string) ([]*entity.Message, error)
	ListMessagesBySender(ctx context.Context, chatID, senderID string) ([]*entity.Message, error)

	// WatchMessages delivers the full ascending message list on every change
	// until the returned Unsubscribe is called or ctx ends.
	WatchMessages(ctx context.Context, chatID string, onChange func([]*entity.Message), onError func(error)) Unsubscribe
}
