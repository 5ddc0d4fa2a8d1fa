package reddit

import (
	"math"
	"regexp"
	"strings"
)

var positiveKeywords = map[string]struct{}{
	"clear": {}, "improve": {}, "lighter": {}, "moving": {},
	"open": {}, "smooth": {}, "stable": {},
}

var negativeKeywords = map[string]struct{}{
	"accident": {}, "blocked": {}, "breakdown": {}, "chaos": {},
	"congestion": {}, "delay": {}, "gridlock": {}, "jam": {},
	"jammed": {}, "slow": {}, "stalled": {}, "traffic": {},
	"unsafe": {},
}

var tokenPattern = regexp.MustCompile(`[a-z0-9']+`)

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Sentiment is a keyword-count classification of one post's text.
type Sentiment struct {
	Label        string  `json:"label"`
	Score        int     `json:"score"`
	Confidence   float64 `json:"confidence"`
	PositiveHits int     `json:"positive_hits"`
	NegativeHits int     `json:"negative_hits"`
}

// ScoreSentiment classifies text by counting traffic keyword hits.
// The label flips only past a score of +-1 so single-keyword posts
// stay neutral.
func ScoreSentiment(text string) Sentiment {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)

	var positive, negative int
	for _, token := range tokens {
		if _, ok := positiveKeywords[token]; ok {
			positive++
		}
		if _, ok := negativeKeywords[token]; ok {
			negative++
		}
	}

	score := positive - negative
	label := SentimentNeutral
	switch {
	case score > 1:
		label = SentimentPositive
	case score < -1:
		label = SentimentNegative
	}

	var confidence float64
	if magnitude := positive + negative; magnitude > 0 {
		confidence = math.Round(math.Min(1, float64(magnitude)/6)*100) / 100
	}

	return Sentiment{
		Label:        label,
		Score:        score,
		Confidence:   confidence,
		PositiveHits: positive,
		NegativeHits: negative,
	}
}
