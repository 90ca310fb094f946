package usecase

import (
	"context"
	"encoding/json"
	"math"

	"mindhaven/internal/domain/entity"
	"mindhaven/internal/domain/repository"
	"mindhaven/internal/domain/service"
	"mindhaven/internal/infrastructure/ratelimit"
	"mindhaven/pkg/errors"
	"mindhaven/pkg/logger"
)

type PositivityUseCase struct {
	userRepo   repository.UserRepository
	aiChatRepo repository.AiChatRepository
	chatRepo   repository.ChatRepository
	classifier service.SentimentClassifier
	suggester  service.SuggestionGenerator
	limiter    RateLimiter
}

func NewPositivityUseCase(
	userRepo repository.UserRepository,
	aiChatRepo repository.AiChatRepository,
	chatRepo repository.ChatRepository,
	classifier service.SentimentClassifier,
	suggester service.SuggestionGenerator,
	limiter RateLimiter,
) *PositivityUseCase {
	return &PositivityUseCase{
		userRepo:   userRepo,
		aiChatRepo: aiChatRepo,
		chatRepo:   chatRepo,
		classifier: classifier,
		suggester:  suggester,
		limiter:    limiter,
	}
}

type PositivityReport struct {
	Counts           entity.SentimentCounts
	MessageCount     int
	Ratio            float64
	Band             entity.BandInfo
	Suggestions      []entity.SuggestionLine
	SuggestionsError string
}

type positivityReportJSON struct {
	Counts           entity.SentimentCounts  `json:"counts"`
	MessageCount     int                     `json:"message_count"`
	Ratio            *float64                `json:"ratio"`
	Infinite         bool                    `json:"infinite"`
	Band             entity.BandInfo         `json:"band"`
	Suggestions      []entity.SuggestionLine `json:"suggestions,omitempty"`
	SuggestionsError string                  `json:"suggestions_error,omitempty"`
}

// MarshalJSON sends an infinite ratio as null with infinite set, since JSON
// has no representation for it.
func (r *PositivityReport) MarshalJSON() ([]byte, error) {
	out := positivityReportJSON{
		Counts:           r.Counts,
		MessageCount:     r.MessageCount,
		Band:             r.Band,
		Suggestions:      r.Suggestions,
		SuggestionsError: r.SuggestionsError,
	}
	if math.IsInf(r.Ratio, 1) {
		out.Infinite = true
	} else {
		ratio := r.Ratio
		out.Ratio = &ratio
	}
	return json.Marshal(out)
}

// GatherTexts collects what the user wrote: every support-assistant question
// plus every message they sent that is not deleted.
func (uc *PositivityUseCase) GatherTexts(ctx context.Context, userID string) ([]string, error) {
	var texts []string

	records, err := uc.aiChatRepo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		texts = append(texts, r.Question)
	}

	chats, err := uc.chatRepo.ListByParticipant(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, chat := range chats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		messages, err := uc.chatRepo.ListMessagesBySender(ctx, chat.ID, userID)
		if err != nil {
			return nil, err
		}
		for _, m := range messages {
			if !m.Deleted {
				texts = append(texts, m.Text)
			}
		}
	}
	return texts, nil
}

// Compute classifies the user's texts, derives the positivity ratio and its
// band, and asks for suggestions when the ratio is below the flourishing line.
// A failed suggestions call leaves the rest of the report intact.
func (uc *PositivityUseCase) Compute(ctx context.Context, userID string) (*PositivityReport, error) {
	if _, err := uc.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if err := checkRate(uc.limiter, userID, ratelimit.ActionPositivity); err != nil {
		return nil, err
	}

	texts, err := uc.GatherTexts(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts, err := uc.classifier.Classify(ctx, texts)
	if err != nil {
		return nil, err
	}

	ratio := counts.Ratio()
	report := &PositivityReport{
		Counts:       counts,
		MessageCount: len(texts),
		Ratio:        ratio,
		Band:         entity.BandFor(ratio),
	}

	if !counts.NeedsSuggestions() {
		return report, nil
	}

	text, err := uc.suggester.Suggest(ctx, counts)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.Warn("Suggestions for %s failed: %v", userID, err)
		report.SuggestionsError = errors.AIUnavailable(err).Message
		return report, nil
	}

	report.Suggestions = entity.ParseSuggestions(text)
	return report, nil
}
