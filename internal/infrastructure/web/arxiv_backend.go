package web

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/search"
)

const (
	arxivSearchURL       = "https://arxiv.org/search/"
	defaultArxivPageSize = 50
)

// ArxivBackend searches arXiv listings and scrapes the results page.
type ArxivBackend struct {
	client    *Client
	endpoint  string
	pageSize  int
	sanitizer *Sanitizer
}

var _ search.Backend = (*ArxivBackend)(nil)

// NewArxivBackend wires the search endpoint; pageSize defaults to 50.
func NewArxivBackend(client *Client, endpoint string, pageSize int) *ArxivBackend {
	if endpoint == "" {
		endpoint = arxivSearchURL
	}
	if pageSize <= 0 {
		pageSize = defaultArxivPageSize
	}
	return &ArxivBackend{
		client:    client,
		endpoint:  endpoint,
		pageSize:  pageSize,
		sanitizer: NewSanitizer(),
	}
}

// Name identifies the backend inside the registry.
func (a *ArxivBackend) Name() string {
	return "arxiv"
}

// Execute requests the newest-first results page for query.
func (a *ArxivBackend) Execute(ctx context.Context, query string) (search.Payload, error) {
	pageURL, err := a.pageURL(query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendFailure, err)
	}
	return getPayload(ctx, a.client, pageURL)
}

// Extract maps each listed paper onto a result; entries lacking a title, abstract or abs link are dropped.
func (a *ArxivBackend) Extract(payload search.Payload) ([]domain.SearchResult, int) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil, 0
	}

	var (
		results []domain.SearchResult
		dropped int
	)
	seen := map[string]struct{}{}

	doc.Find("li.arxiv-result").Each(func(_ int, entry *goquery.Selection) {
		result, ok := a.parseEntry(entry)
		if !ok {
			dropped++
			return
		}
		if _, dup := seen[result.URL]; dup {
			return
		}
		seen[result.URL] = struct{}{}
		results = append(results, result)
	})

	return results, dropped
}

func (a *ArxivBackend) parseEntry(entry *goquery.Selection) (domain.SearchResult, bool) {
	href, _ := entry.Find(`p.list-title a[href*="/abs/"]`).First().Attr("href")
	href = strings.TrimSpace(href)

	title := collapseSpaces(entry.Find("p.title").First().Text())

	abstract := entry.Find("span.abstract-full").First()
	abstract.Find("a").Remove()
	text := abstract.Text()
	if strings.TrimSpace(text) == "" {
		text = entry.Find("p.abstract").First().Text()
	}
	text = strings.TrimPrefix(strings.TrimSpace(text), "Abstract:")
	summary := a.sanitizer.PlainText(text)

	if href == "" || title == "" || summary == "" {
		return domain.SearchResult{}, false
	}

	return domain.SearchResult{
		Title:        title,
		ShortSummary: summary,
		URL:          resolveLink(a.endpoint, href),
	}, true
}

func (a *ArxivBackend) pageURL(query string) (string, error) {
	parsed, err := url.Parse(a.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid arxiv endpoint %s: %w", a.endpoint, err)
	}

	values := parsed.Query()
	values.Set("query", query)
	values.Set("searchtype", "all")
	values.Set("order", "-announced_date_first")
	values.Set("size", strconv.Itoa(a.pageSize))
	parsed.RawQuery = values.Encode()
	return parsed.String(), nil
}
