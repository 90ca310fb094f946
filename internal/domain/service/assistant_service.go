package service

import (
	"context"

	"mindhaven/internal/domain/entity"
)

// SupportAssistant answers a client's question, optionally about a photo.
type SupportAssistant interface {
	Answer(ctx context.Context, question, photoDataURI string) (string, error)
}

// SentimentClassifier tallies positive, negative and neutral texts. An empty
// input yields zero counts without a remote call.
type SentimentClassifier interface {
	Classify(ctx context.Context, messages []string) (entity.SentimentCounts, error)
}

// SuggestionGenerator proposes ways to lift a positivity ratio.
type SuggestionGenerator interface {
	Suggest(ctx context.Context, counts entity.SentimentCounts) (string, error)
}
