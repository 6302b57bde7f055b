package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Feedback is the user signal attached to an article after it was presented.
type Feedback string

const (
	FeedbackNone          Feedback = ""
	FeedbackInterested    Feedback = "interested"
	FeedbackNotInterested Feedback = "not_interested"
)

// ParseFeedback maps user input onto a Feedback value.
func ParseFeedback(value string) (Feedback, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return FeedbackNone, nil
	case "interested", "yes", "y":
		return FeedbackInterested, nil
	case "not_interested", "not-interested", "no", "n":
		return FeedbackNotInterested, nil
	default:
		return FeedbackNone, fmt.Errorf("unknown feedback %q", value)
	}
}

// String renders the feedback for display.
func (f Feedback) String() string {
	if f == FeedbackNone {
		return "none"
	}
	return string(f)
}

// SearchResult is a single hit extracted from a search backend payload.
type SearchResult struct {
	Title        string
	ShortSummary string
	URL          string
}

// Scores groups the analysis outputs that must be stored together.
type Scores struct {
	Sentiment  float64
	Summary    string
	Similarity float64
}

// Complete reports whether every score is populated and in range.
func (s Scores) Complete() bool {
	if strings.TrimSpace(s.Summary) == "" {
		return false
	}
	if math.IsNaN(s.Sentiment) || s.Sentiment < -1 || s.Sentiment > 1 {
		return false
	}
	if math.IsNaN(s.Similarity) || s.Similarity < 0 || s.Similarity > 1 {
		return false
	}
	return true
}

// Article is the persistent unit produced by a pipeline run.
type Article struct {
	ID               string
	Query            string
	Title            string
	ShortSummary     string
	URL              string
	Content          string
	SentimentScore   float64
	GeneratedSummary string
	SimilarityScore  float64
	Popularity       int
	Feedback         Feedback
	Sponsored        bool
	CreatedAt        time.Time
}

const (
	MinPopularity = 1
	MaxPopularity = 100
)

// NewArticle assembles a fully scored article; partial records are rejected.
func NewArticle(id, query string, result SearchResult, content string, scores Scores, popularity int, createdAt time.Time) (Article, error) {
	if strings.TrimSpace(id) == "" {
		return Article{}, fmt.Errorf("%w: empty id", ErrInvalidArticle)
	}
	if strings.TrimSpace(result.URL) == "" {
		return Article{}, fmt.Errorf("%w: empty url", ErrInvalidArticle)
	}
	if strings.TrimSpace(content) == "" {
		return Article{}, fmt.Errorf("%w: empty content for %s", ErrInvalidArticle, result.URL)
	}
	if !scores.Complete() {
		return Article{}, fmt.Errorf("%w: incomplete scores for %s", ErrInvalidArticle, result.URL)
	}
	if popularity < MinPopularity || popularity > MaxPopularity {
		return Article{}, fmt.Errorf("%w: popularity %d out of range", ErrInvalidArticle, popularity)
	}

	return Article{
		ID:               id,
		Query:            query,
		Title:            result.Title,
		ShortSummary:     result.ShortSummary,
		URL:              result.URL,
		Content:          content,
		SentimentScore:   scores.Sentiment,
		GeneratedSummary: scores.Summary,
		SimilarityScore:  scores.Similarity,
		Popularity:       popularity,
		Feedback:         FeedbackNone,
		CreatedAt:        createdAt,
	}, nil
}
