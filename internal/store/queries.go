package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"ContentCurator/internal/ports"
)

// ErrEmptyQuery rejects blank search queries.
var ErrEmptyQuery = errors.New("empty query")

// QueryList is an ordered, de-duplicated list of search queries.
type QueryList struct {
	mu    sync.RWMutex
	items []string
	seen  map[string]struct{}
}

var _ ports.QueryStore = (*QueryList)(nil)

// NewQueryList seeds the list; blank and repeated entries are ignored.
func NewQueryList(initial ...string) *QueryList {
	q := &QueryList{seen: map[string]struct{}{}}
	for _, item := range initial {
		_ = q.add(item)
	}
	return q
}

// AddQuery appends a trimmed query unless it is already present.
func (q *QueryList) AddQuery(_ context.Context, query string) error {
	return q.add(query)
}

// Queries returns the list in insertion order.
func (q *QueryList) Queries(context.Context) ([]string, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]string, len(q.items))
	copy(out, q.items)
	return out, nil
}

func (q *QueryList) add(query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return ErrEmptyQuery
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.seen[query]; ok {
		return nil
	}
	q.seen[query] = struct{}{}
	q.items = append(q.items, query)
	return nil
}
