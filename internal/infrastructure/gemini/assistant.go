package gemini

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/generative-ai-go/genai"

	"mindhaven/internal/domain/entity"
	"mindhaven/pkg/utils"
)

const (
	TemplateSupport     = "mental-health-support"
	TemplateSentiment   = "sentiment-classification"
	TemplateSuggestions = "positivity-suggestions"
)

type SupportInput struct {
	Question string `validate:"required,max=4000"`
	Photo    string `validate:"omitempty,datauri"`
}

type SupportOutput struct {
	Answer string `json:"answer" validate:"required"`
}

type SentimentInput struct {
	Messages []string `validate:"dive,max=4000"`
}

type SuggestionsInput struct {
	Counts entity.SentimentCounts
}

type SuggestionsOutput struct {
	Suggestions string `json:"suggestions" validate:"required"`
}

const supportPrompt = `A client of a mental wellness service asks:

"{{question}}"

{{photo_note}}Answer with warmth and practical, evidence-based guidance in a few short paragraphs. Do not diagnose. If the message suggests the person may be in danger, urge them to contact local emergency services or a crisis line right away, and suggest booking a session with their therapist.`

const sentimentPrompt = `Classify each of the following {{count}} messages as positive, negative or neutral in emotional tone. Return how many fall in each class. The three counts must add up to {{count}}.

{{messages}}`

const suggestionsPrompt = `Over recent conversations a person expressed {{positive}} positive, {{negative}} negative and {{neutral}} neutral messages. Their positivity ratio is below the flourishing line of 3 positive moments per negative one.

Suggest three to five small, concrete activities that could lift their ratio. Start with one encouraging sentence, then put each activity on its own line starting with "- ".`

var (
	supportTemplate = newPromptTemplate[SupportInput, SupportOutput](
		TemplateSupport,
		supportPrompt,
		ModelSpec{
			SystemInstruction: "You are a supportive mental health assistant working alongside licensed therapists.",
			Temperature:       0.7,
			Schema: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"answer": {Type: genai.TypeString, Description: "Reply to the client"},
				},
				Required: []string{"answer"},
			},
		},
		func(in SupportInput) (map[string]interface{}, []genai.Part, error) {
			vars := map[string]interface{}{
				"question":   in.Question,
				"photo_note": "",
			}
			if in.Photo == "" {
				return vars, nil, nil
			}

			photo, err := utils.ParseDataURI(in.Photo)
			if err != nil {
				return nil, nil, err
			}
			if !photo.IsImage() {
				return nil, nil, fmt.Errorf("photo must be an image, got %s", photo.MIMEType)
			}
			vars["photo_note"] = "They attached the photo below; take it into account.\n\n"
			return vars, []genai.Part{genai.ImageData(photo.ImageFormat(), photo.Data)}, nil
		},
	)

	sentimentTemplate = newPromptTemplate[SentimentInput, entity.SentimentCounts](
		TemplateSentiment,
		sentimentPrompt,
		ModelSpec{
			Temperature: 0.1,
			Schema: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"positive": {Type: genai.TypeInteger},
					"negative": {Type: genai.TypeInteger},
					"neutral":  {Type: genai.TypeInteger},
				},
				Required: []string{"positive", "negative", "neutral"},
			},
		},
		func(in SentimentInput) (map[string]interface{}, []genai.Part, error) {
			var sb strings.Builder
			for i, m := range in.Messages {
				fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.ReplaceAll(m, "\n", " "))
			}
			return map[string]interface{}{
				"count":    strconv.Itoa(len(in.Messages)),
				"messages": sb.String(),
			}, nil, nil
		},
	)

	suggestionsTemplate = newPromptTemplate[SuggestionsInput, SuggestionsOutput](
		TemplateSuggestions,
		suggestionsPrompt,
		ModelSpec{
			Temperature: 0.8,
			Schema: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"suggestions": {Type: genai.TypeString, Description: "Markdown with one activity per line"},
				},
				Required: []string{"suggestions"},
			},
		},
		func(in SuggestionsInput) (map[string]interface{}, []genai.Part, error) {
			return map[string]interface{}{
				"positive": strconv.Itoa(in.Counts.Positive),
				"negative": strconv.Itoa(in.Counts.Negative),
				"neutral":  strconv.Itoa(in.Counts.Neutral),
			}, nil, nil
		},
	)
)

// Assistant runs the generative templates against a Generator. It satisfies
// service.SupportAssistant, service.SentimentClassifier and
// service.SuggestionGenerator.
type Assistant struct {
	gen      Generator
	validate *validator.Validate
}

func NewAssistant(gen Generator) *Assistant {
	return &Assistant{
		gen:      gen,
		validate: validator.New(),
	}
}

func (a *Assistant) Answer(ctx context.Context, question, photoDataURI string) (string, error) {
	out, err := supportTemplate.Run(ctx, a.gen, a.validate, SupportInput{
		Question: strings.TrimSpace(question),
		Photo:    photoDataURI,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Answer), nil
}

func (a *Assistant) Classify(ctx context.Context, messages []string) (entity.SentimentCounts, error) {
	texts := make([]string, 0, len(messages))
	for _, m := range messages {
		if m = strings.TrimSpace(m); m != "" {
			texts = append(texts, truncate(m, maxMessageRunes))
		}
	}

	if len(texts) == 0 {
		return entity.SentimentCounts{}, nil
	}

	out, err := sentimentTemplate.Run(ctx, a.gen, a.validate, SentimentInput{Messages: texts})
	if err != nil {
		return entity.SentimentCounts{}, err
	}
	return *out, nil
}

func (a *Assistant) Suggest(ctx context.Context, counts entity.SentimentCounts) (string, error) {
	out, err := suggestionsTemplate.Run(ctx, a.gen, a.validate, SuggestionsInput{Counts: counts})
	if err != nil {
		return "", err
	}
	return out.Suggestions, nil
}

const maxMessageRunes = 4000

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
