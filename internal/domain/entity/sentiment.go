package entity

import (
	"math"
	"strings"
)

// SentimentCounts is the classifier's tally over a batch of texts.
type SentimentCounts struct {
	Positive int `json:"positive" validate:"gte=0"`
	Negative int `json:"negative" validate:"gte=0"`
	Neutral  int `json:"neutral" validate:"gte=0"`
}

func (c SentimentCounts) Total() int {
	return c.Positive + c.Negative + c.Neutral
}

// Ratio is positive/negative. With no negatives it is +Inf when anything was
// positive and 0 otherwise.
func (c SentimentCounts) Ratio() float64 {
	switch {
	case c.Negative > 0:
		return float64(c.Positive) / float64(c.Negative)
	case c.Positive > 0:
		return math.Inf(1)
	default:
		return 0
	}
}

// NeedsSuggestions is true below the flourishing line, but only when there was
// something to judge.
func (c SentimentCounts) NeedsSuggestions() bool {
	ratio := c.Ratio()
	return !math.IsInf(ratio, 1) && ratio < FlourishingRatio && (c.Positive > 0 || c.Negative > 0)
}

// FlourishingRatio is the Losada line.
const FlourishingRatio = 3.0

type PositivityBand string

const (
	BandFlourishing PositivityBand = "flourishing"
	BandGettingBy   PositivityBand = "getting_by"
	BandLanguishing PositivityBand = "languishing"
	BandStuck       PositivityBand = "stuck"
)

type BandInfo struct {
	Band        PositivityBand `json:"band"`
	Label       string         `json:"label"`
	Description string         `json:"description"`
}

var bands = map[PositivityBand]BandInfo{
	BandFlourishing: {
		Band:        BandFlourishing,
		Label:       "Flourishing",
		Description: "Your conversations show at least three positive moments for every negative one. Keep nurturing what is working.",
	},
	BandGettingBy: {
		Band:        BandGettingBy,
		Label:       "Getting By",
		Description: "Positive moments outweigh the negative ones, but not yet by much. Small daily habits can tip the balance.",
	},
	BandLanguishing: {
		Band:        BandLanguishing,
		Label:       "Languishing",
		Description: "Negative moments are keeping pace with positive ones. It may help to talk this through with your therapist.",
	},
	BandStuck: {
		Band:        BandStuck,
		Label:       "Stuck",
		Description: "There is not enough positive signal yet. Reaching out is a good first step.",
	},
}

// BandFor categorises a ratio.
func BandFor(ratio float64) BandInfo {
	switch {
	case math.IsInf(ratio, 1) || ratio >= FlourishingRatio:
		return bands[BandFlourishing]
	case ratio > 1:
		return bands[BandGettingBy]
	case ratio > 0:
		return bands[BandLanguishing]
	default:
		return bands[BandStuck]
	}
}

// SuggestionLine is one rendered line of generated suggestions.
type SuggestionLine struct {
	Text   string `json:"text"`
	Bullet bool   `json:"bullet"`
}

// ParseSuggestions splits markdown-ish text into lines. Lines starting with a
// dash or an asterisk become bullets without their marker.
func ParseSuggestions(text string) []SuggestionLine {
	var lines []SuggestionLine
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*") {
			lines = append(lines, SuggestionLine{
				Text:   strings.TrimSpace(line[1:]),
				Bullet: true,
			})
			continue
		}
		lines = append(lines, SuggestionLine{Text: line})
	}
	return lines
}
