package usecase

import (
	"context"
	"fmt"
	"sort"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// DefaultSentimentThreshold is the minimum sentiment for ranked output.
const DefaultSentimentThreshold = 0.5

// Ranker keeps articles at or above Threshold, ordered by sentiment then similarity.
type Ranker struct {
	Threshold float64
}

// NewRanker builds a ranker with the given threshold.
func NewRanker(threshold float64) Ranker {
	return Ranker{Threshold: threshold}
}

// Rank returns a fresh slice; ties keep their input order.
func (r Ranker) Rank(articles []domain.Article) []domain.Article {
	ranked := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if a.SentimentScore >= r.Threshold {
			ranked = append(ranked, a)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].SentimentScore != ranked[j].SentimentScore {
			return ranked[i].SentimentScore > ranked[j].SentimentScore
		}
		return ranked[i].SimilarityScore > ranked[j].SimilarityScore
	})
	return ranked
}

// RankStore ranks everything in store.
func (r Ranker) RankStore(ctx context.Context, store ports.ArticleStore) ([]domain.Article, error) {
	articles, err := store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load articles: %w", err)
	}
	return r.Rank(articles), nil
}

// Recommender keeps articles the user marked interested, most popular first.
// Limit caps the output; 0 means no cap.
type Recommender struct {
	Limit int
}

// NewRecommender builds a recommender with an optional limit.
func NewRecommender(limit int) Recommender {
	return Recommender{Limit: limit}
}

// Recommend returns a fresh slice on every call; ties keep their input order.
func (r Recommender) Recommend(articles []domain.Article) []domain.Article {
	picked := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if a.Feedback == domain.FeedbackInterested {
			picked = append(picked, a)
		}
	}
	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].Popularity > picked[j].Popularity
	})
	if r.Limit > 0 && len(picked) > r.Limit {
		picked = picked[:r.Limit]
	}
	return picked
}

// RecommendStore recommends from everything in store.
func (r Recommender) RecommendStore(ctx context.Context, store ports.ArticleStore) ([]domain.Article, error) {
	articles, err := store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("load articles: %w", err)
	}
	return r.Recommend(articles), nil
}
