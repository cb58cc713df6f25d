package moderation

import (
	"strings"

	"github.com/cdipaolo/sentiment"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
)

// SentimentScorer classifies free text. Empty text has no sentiment.
type SentimentScorer interface {
	Score(text string) Sentiment
}

type naiveBayesScorer struct {
	model sentiment.Models
}

// NewSentimentScorer loads the pre-trained English model bundled with
// github.com/cdipaolo/sentiment.
func NewSentimentScorer() (SentimentScorer, error) {
	model, err := sentiment.Restore()
	if err != nil {
		return nil, err
	}
	return &naiveBayesScorer{model: model}, nil
}

func (s *naiveBayesScorer) Score(text string) Sentiment {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if s.model.SentimentAnalysis(text, sentiment.English).Score == 0 {
		return SentimentNegative
	}
	return SentimentPositive
}
