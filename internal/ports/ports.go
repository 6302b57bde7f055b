package ports

import (
	"context"
	"time"

	"ContentCurator/internal/domain"
)

// SearchProvider runs one query against the configured backend and extracts its hits.
// dropped counts result containers that lacked a required field.
type SearchProvider interface {
	Search(ctx context.Context, query string) (results []domain.SearchResult, dropped int, err error)
}

// ArticleFetcher downloads the full text behind a result URL.
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// TextAnalyzer scores fetched content.
type TextAnalyzer interface {
	Analyze(ctx context.Context, content string) (domain.Scores, error)
}

// ArticleStore keeps every ingested article in insertion order.
type ArticleStore interface {
	Append(ctx context.Context, articles ...domain.Article) error
	All(ctx context.Context) ([]domain.Article, error)
	Get(ctx context.Context, id string) (domain.Article, error)
	AlreadyStored(ctx context.Context, urls []string) (map[string]bool, error)
	SetFeedback(ctx context.Context, id string, feedback domain.Feedback) error
	MarkSponsored(ctx context.Context, ids ...string) error
}

// QueryStore holds the search queries every run iterates.
type QueryStore interface {
	AddQuery(ctx context.Context, query string) error
	Queries(ctx context.Context) ([]string, error)
}

// PopularitySource assigns the external popularity signal to a new article.
type PopularitySource interface {
	Popularity(ctx context.Context, result domain.SearchResult) int
}

// Notifier delivers recommendations to the user.
type Notifier interface {
	Notify(ctx context.Context, articles []domain.Article) error
}

// RevenueChannel is an integration point for partner programs.
type RevenueChannel interface {
	Apply(ctx context.Context, articles []domain.Article) ([]domain.Article, error)
}

// Scheduler drives periodic jobs.
type Scheduler interface {
	Every(name string, interval time.Duration, job func(context.Context) error)
	DailyAt(name, clock string, job func(context.Context) error) error
	Run(ctx context.Context) error
}
