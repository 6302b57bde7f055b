// Package store keeps ingested articles and the query list, in memory or in SQL.
package store

import (
	"context"
	"fmt"
	"sync"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// MemoryStore is an in-process ArticleStore that preserves insertion order.
type MemoryStore struct {
	mu       sync.RWMutex
	articles []domain.Article
	byID     map[string]int
}

var _ ports.ArticleStore = (*MemoryStore)(nil)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: map[string]int{}}
}

// Append adds articles in order. A duplicate ID rejects the whole batch.
func (s *MemoryStore) Append(_ context.Context, articles ...domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	batch := make(map[string]struct{}, len(articles))
	for _, a := range articles {
		if _, ok := s.byID[a.ID]; ok {
			return fmt.Errorf("article %s already stored", a.ID)
		}
		if _, ok := batch[a.ID]; ok {
			return fmt.Errorf("article %s repeated in batch", a.ID)
		}
		batch[a.ID] = struct{}{}
	}

	for _, a := range articles {
		s.byID[a.ID] = len(s.articles)
		s.articles = append(s.articles, a)
	}
	return nil
}

// All returns a copy of every article in insertion order.
func (s *MemoryStore) All(context.Context) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Article, len(s.articles))
	copy(out, s.articles)
	return out, nil
}

// Get looks an article up by ID.
func (s *MemoryStore) Get(_ context.Context, id string) (domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, ok := s.byID[id]
	if !ok {
		return domain.Article{}, fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	return s.articles[idx], nil
}

// AlreadyStored reports which of urls belong to a stored article.
func (s *MemoryStore) AlreadyStored(_ context.Context, urls []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		wanted[u] = struct{}{}
	}
	result := make(map[string]bool)
	for _, a := range s.articles {
		if _, ok := wanted[a.URL]; ok {
			result[a.URL] = true
		}
	}
	return result, nil
}

// SetFeedback records the user signal for one article.
func (s *MemoryStore) SetFeedback(_ context.Context, id string, feedback domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.byID[id]
	if !ok {
		return fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
	}
	s.articles[idx].Feedback = feedback
	return nil
}

// MarkSponsored flags articles as sponsored. Unknown IDs fail before anything changes.
func (s *MemoryStore) MarkSponsored(_ context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.byID[id]; !ok {
			return fmt.Errorf("article %s: %w", id, domain.ErrNotFound)
		}
	}
	for _, id := range ids {
		s.articles[s.byID[id]].Sponsored = true
	}
	return nil
}
