package web

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/search"
)

// RSSBackend queries a search endpoint that answers with an RSS or Atom feed.
type RSSBackend struct {
	client     *Client
	endpoint   string
	queryParam string
	sanitizer  *Sanitizer
}

var _ search.Backend = (*RSSBackend)(nil)

// NewRSSBackend wires the feed endpoint.
func NewRSSBackend(client *Client, endpoint, queryParam string) *RSSBackend {
	if queryParam == "" {
		queryParam = "q"
	}
	return &RSSBackend{
		client:     client,
		endpoint:   endpoint,
		queryParam: queryParam,
		sanitizer:  NewSanitizer(),
	}
}

// Name identifies the backend inside the registry.
func (b *RSSBackend) Name() string {
	return "rss"
}

// Execute requests the feed for query.
func (b *RSSBackend) Execute(ctx context.Context, query string) (search.Payload, error) {
	feedURL, err := buildQueryURL(b.endpoint, b.queryParam, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendFailure, err)
	}
	return getPayload(ctx, b.client, feedURL)
}

// Extract maps feed items onto results; items without title, description or link are dropped.
func (b *RSSBackend) Extract(payload search.Payload) ([]domain.SearchResult, int) {
	feed, err := gofeed.NewParser().ParseString(string(payload))
	if err != nil || feed == nil {
		return nil, 0
	}

	var (
		results []domain.SearchResult
		dropped int
	)
	for _, item := range feed.Items {
		if item == nil {
			dropped++
			continue
		}

		title := collapseSpaces(item.Title)
		link := strings.TrimSpace(item.Link)
		description := b.sanitizer.PlainText(item.Description)
		if title == "" || link == "" || description == "" {
			dropped++
			continue
		}

		results = append(results, domain.SearchResult{
			Title:        title,
			ShortSummary: description,
			URL:          link,
		})
	}

	return results, dropped
}
