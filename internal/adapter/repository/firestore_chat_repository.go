package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/pkg/errors"
)

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) messages(chatID string) *firestore.CollectionRef {
	return r.client.Collection(chatsCollection).Doc(chatID).Collection(messagesCollection)
}

// Create writes the chat document unless it already exists. Two participants
// racing to open the same conversation both succeed.
func (r *firestoreChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	now := time.Now()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	if chat.LastUpdated.IsZero() {
		chat.LastUpdated = now
	}

	_, err := r.client.Collection(chatsCollection).Doc(chat.ID).Create(ctx, chat)
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return errors.Internal("Failed to create chat", err)
	}
	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	doc, err := r.client.Collection(chatsCollection).Doc(id).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Chat", err)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}
	return &chat, nil
}

func (r *firestoreChatRepository) Touch(ctx context.Context, message *entity.Message) error {
	_, err := r.client.Collection(chatsCollection).Doc(message.ChatID).Update(ctx, []firestore.Update{
		{Path: "lastMessage", Value: message.Text},
		{Path: "lastMessageId", Value: message.ID},
		{Path: "lastUpdated", Value: firestore.ServerTimestamp},
	})
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("Chat", err)
		}
		return errors.Internal("Failed to update chat", err)
	}
	return nil
}

// ListByParticipant returns the user's chats, most recently active first.
func (r *firestoreChatRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.Chat, error) {
	query := r.client.Collection(chatsCollection).Where("participants", "array-contains", userID)

	chats, err := decodeAll[entity.Chat](query.Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list chats", err)
	}

	sort.SliceStable(chats, func(i, j int) bool {
		return chats[i].LastUpdated.After(chats[j].LastUpdated)
	})
	return chats, nil
}

// CreateMessage appends a message with a store-assigned timestamp and copies
// the commit time back onto message.
func (r *firestoreChatRepository) CreateMessage(ctx context.Context, message *entity.Message) error {
	ref := r.messages(message.ChatID).NewDoc()
	message.ID = ref.ID
	message.Timestamp = time.Time{}

	result, err := ref.Create(ctx, message)
	if err != nil {
		return errors.Internal("Failed to create message", err)
	}

	message.Timestamp = result.UpdateTime
	return nil
}

func (r *firestoreChatRepository) GetMessage(ctx context.Context, chatID, messageID string) (*entity.Message, error) {
	doc, err := r.messages(chatID).Doc(messageID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}

	var message entity.Message
	if err := doc.DataTo(&message); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	return &message, nil
}

// SoftDeleteMessage rewrites text and the deleted flag only, so the message
// keeps its timestamp and therefore its position. The chat summary is
// rewritten in the same transaction when it shows this message.
func (r *firestoreChatRepository) SoftDeleteMessage(ctx context.Context, chatID, messageID string) error {
	chatRef := r.client.Collection(chatsCollection).Doc(chatID)
	messageRef := r.messages(chatID).Doc(messageID)

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		chatDoc, err := tx.Get(chatRef)
		if err != nil && !isNotFound(err) {
			return err
		}

		if err := tx.Update(messageRef, []firestore.Update{
			{Path: "text", Value: entity.DeletedMessageText},
			{Path: "deleted", Value: true},
		}); err != nil {
			return err
		}

		if chatDoc == nil || !chatDoc.Exists() {
			return nil
		}
		var chat entity.Chat
		if err := chatDoc.DataTo(&chat); err != nil {
			return err
		}
		if !chat.RedactLastMessage(messageID) {
			return nil
		}
		return tx.Update(chatRef, []firestore.Update{
			{Path: "lastMessage", Value: chat.LastMessage},
		})
	})
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("Message", err)
		}
		return errors.Internal("Failed to delete message", err)
	}
	return nil
}

func (r *firestoreChatRepository) ListMessages(ctx context.Context, chatID string) ([]*entity.Message, error) {
	messages, err := decodeAll[entity.Message](r.messages(chatID).OrderBy("timestamp", firestore.Asc).Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list messages", err)
	}
	return messages, nil
}

func (r *firestoreChatRepository) ListMessagesBySender(ctx context.Context, chatID, senderID string) ([]*entity.Message, error) {
	messages, err := decodeAll[entity.Message](r.messages(chatID).Where("senderId", "==", senderID).Documents(ctx))
	if err != nil {
		return nil, errors.Internal("Failed to list messages", err)
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	return messages, nil
}

func (r *firestoreChatRepository) WatchMessages(ctx context.Context, chatID string, onChange func([]*entity.Message), onError func(error)) repository.Unsubscribe {
	query := r.messages(chatID).OrderBy("timestamp", firestore.Asc)
	return watchQuery[entity.Message](ctx, query, "messages", onChange, onError)
}
