package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/internal/infrastructure/ratelimit"
	"mindhaven/pkg/errors"
	"mindhaven/pkg/logger"
)

const maxMessageLength = 2000

type ChatUseCase struct {
	chatRepo repository.ChatRepository
	userRepo repository.UserRepository
	notifier Notifier
	limiter  RateLimiter
}

func NewChatUseCase(chatRepo repository.ChatRepository, userRepo repository.UserRepository, notifier Notifier, limiter RateLimiter) *ChatUseCase {
	return &ChatUseCase{
		chatRepo: chatRepo,
		userRepo: userRepo,
		notifier: notifier,
		limiter:  limiter,
	}
}

// Conversation identifies an open conversation and who is on the other end.
type Conversation struct {
	ChatID string                `json:"chat_id"`
	Peer   *entity.PublicProfile `json:"peer"`
}

type ConversationSummary struct {
	Chat *entity.Chat          `json:"chat"`
	Peer *entity.PublicProfile `json:"peer"`
}

// canConverse allows exactly one client and one therapist per conversation.
func canConverse(a, b *entity.User) error {
	if a.ID == b.ID {
		return errors.BadRequest("Cannot start a conversation with yourself", nil)
	}

	pair := func(x, y *entity.User) bool {
		switch x.Role {
		case entity.RoleClient:
			return y.Role == entity.RoleTherapist && y.TherapistStatus == entity.TherapistApproved
		case entity.RoleTherapist, entity.RoleAdmin:
			return false
		default:
			return false
		}
	}

	if pair(a, b) || pair(b, a) {
		return nil
	}
	return errors.Forbidden("Conversations are only available between a client and an approved therapist", nil)
}

// participantsOf checks that userID is encoded in chatID and returns the peer.
func participantsOf(chatID, userID string) (string, error) {
	a, b, ok := entity.ChatParticipants(chatID)
	if !ok {
		return "", errors.BadRequest("Invalid chat id", nil)
	}

	switch userID {
	case a:
		return b, nil
	case b:
		return a, nil
	default:
		return "", errors.Forbidden("You are not a participant of this chat", nil)
	}
}

// OpenConversation subscribes to the conversation between selfID and peerID.
// onChange receives the full message list in timestamp order on every change.
// The chat document itself is created lazily by the first SendMessage.
func (uc *ChatUseCase) OpenConversation(ctx context.Context, selfID, peerID string, onChange func([]*entity.Message), onError func(error)) (*Conversation, repository.Unsubscribe, error) {
	self, err := uc.userRepo.GetByID(ctx, selfID)
	if err != nil {
		return nil, nil, err
	}
	peer, err := uc.userRepo.GetByID(ctx, peerID)
	if err != nil {
		return nil, nil, err
	}
	if err := canConverse(self, peer); err != nil {
		return nil, nil, err
	}

	chatID := entity.ChatID(selfID, peerID)
	unsubscribe := uc.chatRepo.WatchMessages(ctx, chatID, onChange, onError)

	return &Conversation{
		ChatID: chatID,
		Peer:   peer.Public(),
	}, unsubscribe, nil
}

// SendMessage appends a message to chatID, creating the chat on first use.
func (uc *ChatUseCase) SendMessage(ctx context.Context, chatID, senderID, text string) (*entity.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.BadRequest("Message cannot be empty", nil)
	}
	if utf8.RuneCountInString(text) > maxMessageLength {
		return nil, errors.BadRequest("Message is too long", nil)
	}

	peerID, err := participantsOf(chatID, senderID)
	if err != nil {
		return nil, err
	}

	if err := checkRate(uc.limiter, senderID, ratelimit.ActionSendMessage); err != nil {
		return nil, err
	}

	sender, err := uc.ensureChat(ctx, chatID, senderID, peerID)
	if err != nil {
		return nil, err
	}

	message := &entity.Message{
		ChatID:   chatID,
		SenderID: senderID,
		Text:     text,
	}
	if err := uc.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	if err := uc.chatRepo.Touch(ctx, message); err != nil {
		logger.Warn("Failed to update chat %s summary: %v", chatID, err)
	}

	notifyQuietly(ctx, uc.notifier, peerID, "New message from "+sender.Name, preview(text), "/chat/"+senderID)

	return message, nil
}

// ensureChat returns the sender and creates the chat document when missing.
func (uc *ChatUseCase) ensureChat(ctx context.Context, chatID, senderID, peerID string) (*entity.User, error) {
	sender, err := uc.userRepo.GetByID(ctx, senderID)
	if err != nil {
		return nil, err
	}

	_, err = uc.chatRepo.GetByID(ctx, chatID)
	if err == nil {
		return sender, nil
	}
	if !errors.Is(err, "NOT_FOUND") {
		return nil, err
	}

	peer, err := uc.userRepo.GetByID(ctx, peerID)
	if err != nil {
		return nil, err
	}
	if err := canConverse(sender, peer); err != nil {
		return nil, err
	}

	chat := &entity.Chat{
		ID:           chatID,
		Participants: []string{senderID, peerID},
	}
	if err := uc.chatRepo.Create(ctx, chat); err != nil {
		return nil, err
	}
	return sender, nil
}

// SoftDeleteMessage replaces a message's text with a placeholder. Only the
// sender may delete; deleting twice is a no-op.
func (uc *ChatUseCase) SoftDeleteMessage(ctx context.Context, chatID, messageID, requesterID string) error {
	if _, err := participantsOf(chatID, requesterID); err != nil {
		return err
	}

	message, err := uc.chatRepo.GetMessage(ctx, chatID, messageID)
	if err != nil {
		return err
	}
	if message.SenderID != requesterID {
		return errors.Forbidden("Only the sender can delete a message", nil)
	}
	if message.Deleted {
		return nil
	}
	return uc.chatRepo.SoftDeleteMessage(ctx, chatID, messageID)
}

func (uc *ChatUseCase) ListConversations(ctx context.Context, userID string) ([]*ConversationSummary, error) {
	chats, err := uc.chatRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]*ConversationSummary, 0, len(chats))
	for _, chat := range chats {
		summary := &ConversationSummary{Chat: chat}
		if peer, err := uc.userRepo.GetByID(ctx, chat.Peer(userID)); err == nil {
			summary.Peer = peer.Public()
		} else {
			logger.Debug("Peer of chat %s unavailable: %v", chat.ID, err)
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (uc *ChatUseCase) GetMessages(ctx context.Context, userID, chatID string) ([]*entity.Message, error) {
	if _, err := participantsOf(chatID, userID); err != nil {
		return nil, err
	}
	return uc.chatRepo.ListMessages(ctx, chatID)
}

func preview(text string) string {
	const limit = 80
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	return string([]rune(text)[:limit]) + "…"
}
