package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// Analyzer computes the full score set for one article body.
type Analyzer struct {
	sentiment  SentimentScorer
	summarizer Summarizer
	bounds     Bounds
}

var _ ports.TextAnalyzer = (*Analyzer)(nil)

// New validates the collaborators and loads shared resources.
func New(sentiment SentimentScorer, summarizer Summarizer, bounds Bounds) (*Analyzer, error) {
	if err := Setup(); err != nil {
		return nil, fmt.Errorf("analysis setup: %w", err)
	}
	if sentiment == nil {
		return nil, errors.New("sentiment scorer is required")
	}
	if summarizer == nil {
		return nil, errors.New("summarizer is required")
	}
	if !bounds.Valid() {
		return nil, fmt.Errorf("invalid summary bounds %d..%d", bounds.Min, bounds.Max)
	}
	return &Analyzer{sentiment: sentiment, summarizer: summarizer, bounds: bounds}, nil
}

// Analyze returns sentiment, summary and topic similarity together or fails with ErrAnalysisFailure.
func (a *Analyzer) Analyze(ctx context.Context, content string) (domain.Scores, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Scores{}, fmt.Errorf("%w: empty content", domain.ErrAnalysisFailure)
	}

	sentiment, err := a.sentiment.Score(ctx, content)
	if err != nil {
		return domain.Scores{}, fmt.Errorf("%w: sentiment: %v", domain.ErrAnalysisFailure, err)
	}
	if math.IsNaN(sentiment) || sentiment < -1 || sentiment > 1 {
		return domain.Scores{}, fmt.Errorf("%w: sentiment %v out of range", domain.ErrAnalysisFailure, sentiment)
	}

	summary, err := a.summarizer.Summarize(ctx, content, a.bounds)
	if err != nil {
		return domain.Scores{}, fmt.Errorf("%w: summarize with %s: %v", domain.ErrAnalysisFailure, a.summarizer.Name(), err)
	}
	summary = strings.TrimSpace(summary)
	if summary == "" {
		return domain.Scores{}, fmt.Errorf("%w: empty summary from %s", domain.ErrAnalysisFailure, a.summarizer.Name())
	}

	tokens := ContentTokens(content)
	if len(tokens) == 0 {
		return domain.Scores{}, fmt.Errorf("%w: no content tokens after stop-word filtering", domain.ErrAnalysisFailure)
	}

	similarity, err := TopicSimilarity(strings.Join(tokens, " "), summary)
	if err != nil {
		return domain.Scores{}, fmt.Errorf("%w: topic similarity: %v", domain.ErrAnalysisFailure, err)
	}

	return domain.Scores{
		Sentiment:  sentiment,
		Summary:    summary,
		Similarity: similarity,
	}, nil
}
