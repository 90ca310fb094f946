package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindhaven/internal/domain/entity"
	"mindhaven/pkg/errors"
)

type positivityFixture struct {
	s          *store
	classifier *fakeClassifier
	suggester  *fakeSuggester
	uc         *PositivityUseCase
	chats      *ChatUseCase
	client     *entity.User
	therapist  *entity.User
}

func newPositivityFixture(counts entity.SentimentCounts) *positivityFixture {
	s := newStore()
	client, therapist, _ := seedPeople(s)
	classifier := &fakeClassifier{counts: counts}
	suggester := &fakeSuggester{text: "Keep going.\n- Walk outside\n- Call a friend"}
	return &positivityFixture{
		s:          s,
		classifier: classifier,
		suggester:  suggester,
		uc:         NewPositivityUseCase(fakeUserRepo{s}, fakeAiChatRepo{s}, fakeChatRepo{s}, classifier, suggester, nil),
		chats:      NewChatUseCase(fakeChatRepo{s}, fakeUserRepo{s}, nil, nil),
		client:     client,
		therapist:  therapist,
	}
}

func TestPositivityWithNoTextsSkipsClassifier(t *testing.T) {
	f := newPositivityFixture(entity.SentimentCounts{Positive: 5})

	report, err := f.uc.Compute(context.Background(), f.client.ID)
	require.NoError(t, err)

	assert.Equal(t, 0, f.classifier.calls)
	assert.Equal(t, 0, f.suggester.calls)
	assert.Equal(t, entity.SentimentCounts{}, report.Counts)
	assert.Equal(t, 0.0, report.Ratio)
	assert.Equal(t, entity.BandStuck, report.Band.Band)
	assert.Empty(t, report.Suggestions)
}

func TestPositivityGathersOwnNonDeletedTexts(t *testing.T) {
	f := newPositivityFixture(entity.SentimentCounts{Positive: 2, Negative: 1})
	ctx := context.Background()
	chatID := entity.ChatID(f.client.ID, f.therapist.ID)

	require.NoError(t, fakeAiChatRepo{f.s}.Create(ctx, &entity.AiChatRecord{OwnerID: f.client.ID, Question: "How do I sleep better?"}))
	require.NoError(t, fakeAiChatRepo{f.s}.Create(ctx, &entity.AiChatRecord{OwnerID: "someone-else", Question: "not mine"}))

	_, err := f.chats.SendMessage(ctx, chatID, f.client.ID, "Today was good")
	require.NoError(t, err)
	_, err = f.chats.SendMessage(ctx, chatID, f.therapist.ID, "Glad to hear it")
	require.NoError(t, err)
	regret, err := f.chats.SendMessage(ctx, chatID, f.client.ID, "never mind")
	require.NoError(t, err)
	require.NoError(t, f.chats.SoftDeleteMessage(ctx, chatID, regret.ID, f.client.ID))

	report, err := f.uc.Compute(ctx, f.client.ID)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"How do I sleep better?", "Today was good"}, f.classifier.inputs)
	assert.Equal(t, 2, report.MessageCount)
	assert.InDelta(t, 2.0, report.Ratio, 1e-9)
	assert.Equal(t, entity.BandGettingBy, report.Band.Band)
}

func TestPositivitySuggestionsGate(t *testing.T) {
	tests := []struct {
		name    string
		counts  entity.SentimentCounts
		suggest bool
		band    entity.PositivityBand
	}{
		{"flourishing", entity.SentimentCounts{Positive: 6, Negative: 2}, false, entity.BandFlourishing},
		{"only positive", entity.SentimentCounts{Positive: 3}, false, entity.BandFlourishing},
		{"only neutral", entity.SentimentCounts{Neutral: 3}, false, entity.BandStuck},
		{"getting by", entity.SentimentCounts{Positive: 5, Negative: 2}, true, entity.BandGettingBy},
		{"only negative", entity.SentimentCounts{Negative: 2}, true, entity.BandStuck},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPositivityFixture(tt.counts)
			ctx := context.Background()
			_, err := f.chats.SendMessage(ctx, entity.ChatID(f.client.ID, f.therapist.ID), f.client.ID, "something")
			require.NoError(t, err)

			report, err := f.uc.Compute(ctx, f.client.ID)
			require.NoError(t, err)

			assert.Equal(t, tt.band, report.Band.Band)
			if tt.suggest {
				assert.Equal(t, 1, f.suggester.calls)
				assert.Len(t, report.Suggestions, 3)
				assert.True(t, report.Suggestions[1].Bullet)
			} else {
				assert.Equal(t, 0, f.suggester.calls)
				assert.Empty(t, report.Suggestions)
			}
		})
	}
}

func TestPositivityKeepsReportWhenSuggestionsFail(t *testing.T) {
	f := newPositivityFixture(entity.SentimentCounts{Positive: 1, Negative: 1})
	f.suggester.err = fmt.Errorf("model overloaded")
	ctx := context.Background()
	_, err := f.chats.SendMessage(ctx, entity.ChatID(f.client.ID, f.therapist.ID), f.client.ID, "meh")
	require.NoError(t, err)

	report, err := f.uc.Compute(ctx, f.client.ID)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, report.Ratio, 1e-9)
	assert.Equal(t, entity.BandLanguishing, report.Band.Band)
	assert.Equal(t, "Failed to get a response", report.SuggestionsError)
	assert.Empty(t, report.Suggestions)
}

func TestPositivityClassifierFailure(t *testing.T) {
	f := newPositivityFixture(entity.SentimentCounts{})
	f.classifier.err = errors.AIUnavailable(fmt.Errorf("boom"))
	ctx := context.Background()
	_, err := f.chats.SendMessage(ctx, entity.ChatID(f.client.ID, f.therapist.ID), f.client.ID, "hi")
	require.NoError(t, err)

	_, err = f.uc.Compute(ctx, f.client.ID)
	assert.True(t, errors.Is(err, "AI_UNAVAILABLE"))
}

func TestPositivityCancelledBeforeGathering(t *testing.T) {
	f := newPositivityFixture(entity.SentimentCounts{Positive: 1})
	ctx := context.Background()
	_, err := f.chats.SendMessage(ctx, entity.ChatID(f.client.ID, f.therapist.ID), f.client.ID, "hi")
	require.NoError(t, err)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	_, err = f.uc.Compute(cancelled, f.client.ID)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, f.classifier.calls)
}

func TestPositivityRateLimited(t *testing.T) {
	s := newStore()
	client, _, _ := seedPeople(s)
	uc := NewPositivityUseCase(fakeUserRepo{s}, fakeAiChatRepo{s}, fakeChatRepo{s}, &fakeClassifier{}, &fakeSuggester{}, denyLimiter{})

	_, err := uc.Compute(context.Background(), client.ID)
	assert.True(t, errors.Is(err, "TOO_MANY_REQUESTS"))
}

func TestPositivityReportJSON(t *testing.T) {
	infinite := &PositivityReport{
		Counts: entity.SentimentCounts{Positive: 3},
		Ratio:  math.Inf(1),
		Band:   entity.BandFor(math.Inf(1)),
	}
	raw, err := json.Marshal(infinite)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["ratio"])
	assert.Equal(t, true, decoded["infinite"])
	assert.Equal(t, "flourishing", decoded["band"].(map[string]interface{})["band"])

	finite := &PositivityReport{Ratio: 2.5, Band: entity.BandFor(2.5)}
	raw, err = json.Marshal(finite)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 2.5, decoded["ratio"])
	assert.Equal(t, false, decoded["infinite"])
}
