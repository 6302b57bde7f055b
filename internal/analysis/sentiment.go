package analysis

import (
	"context"
	"strings"
)

// SentimentScorer produces a compound polarity in [-1, 1].
type SentimentScorer interface {
	Score(ctx context.Context, text string) (float64, error)
}

// VaderScorer scores text with the VADER lexicon and rules
// (boosters, negation, contrastive "but", capitalization and punctuation emphasis).
type VaderScorer struct{}

var _ SentimentScorer = (*VaderScorer)(nil)

// NewVaderScorer loads the VADER lexicon on first use.
func NewVaderScorer() (*VaderScorer, error) {
	if err := Setup(); err != nil {
		return nil, err
	}
	return &VaderScorer{}, nil
}

// Score returns the VADER compound score of text; text with no sentiment words scores 0.
func (s *VaderScorer) Score(ctx context.Context, text string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := Setup(); err != nil {
		return 0, err
	}
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	return clamp(vader.PolarityScores(text).Compound, -1, 1), nil
}
