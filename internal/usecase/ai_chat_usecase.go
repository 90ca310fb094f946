package usecase

import (
	"context"
	"strings"
	"time"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/internal/domain/service"
	"mindhaven/internal/infrastructure/ratelimit"
	"mindhaven/pkg/errors"
)

type AiChatUseCase struct {
	aiChatRepo repository.AiChatRepository
	userRepo   repository.UserRepository
	assistant  service.SupportAssistant
	limiter    RateLimiter
}

func NewAiChatUseCase(aiChatRepo repository.AiChatRepository, userRepo repository.UserRepository, assistant service.SupportAssistant, limiter RateLimiter) *AiChatUseCase {
	return &AiChatUseCase{
		aiChatRepo: aiChatRepo,
		userRepo:   userRepo,
		assistant:  assistant,
		limiter:    limiter,
	}
}

// Ask sends a client's question, and optionally a photo, to the support
// assistant and keeps the exchange.
func (uc *AiChatUseCase) Ask(ctx context.Context, userID, question, photoDataURI string) (*entity.AiChatRecord, error) {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != entity.RoleClient {
		return nil, errors.Forbidden("The support assistant is available to clients only", nil)
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return nil, errors.BadRequest("Question is required", nil)
	}

	if err := checkRate(uc.limiter, userID, ratelimit.ActionAIChat); err != nil {
		return nil, err
	}

	answer, err := uc.assistant.Answer(ctx, question, photoDataURI)
	if err != nil {
		return nil, err
	}

	record := &entity.AiChatRecord{
		OwnerID:   userID,
		Question:  question,
		HasPhoto:  photoDataURI != "",
		Answer:    answer,
		Timestamp: time.Now(),
	}
	if err := uc.aiChatRepo.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (uc *AiChatUseCase) History(ctx context.Context, userID string) ([]*entity.AiChatRecord, error) {
	return uc.aiChatRepo.ListByOwner(ctx, userID)
}
