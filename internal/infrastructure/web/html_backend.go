package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/search"
)

// HTMLSelectors locate the parts of one result container on a results page.
type HTMLSelectors struct {
	Container string
	Title     string
	Snippet   string
	Link      string
}

// HTMLBackend queries a results page and scrapes its result containers.
type HTMLBackend struct {
	client     *Client
	endpoint   string
	queryParam string
	selectors  HTMLSelectors
	sanitizer  *Sanitizer
}

var _ search.Backend = (*HTMLBackend)(nil)

// NewHTMLBackend wires the results endpoint and selectors.
func NewHTMLBackend(client *Client, endpoint, queryParam string, selectors HTMLSelectors) *HTMLBackend {
	if queryParam == "" {
		queryParam = "q"
	}
	return &HTMLBackend{
		client:     client,
		endpoint:   endpoint,
		queryParam: queryParam,
		selectors:  selectors,
		sanitizer:  NewSanitizer(),
	}
}

// Name identifies the backend inside the registry.
func (b *HTMLBackend) Name() string {
	return "html"
}

// Execute requests the results page for query.
func (b *HTMLBackend) Execute(ctx context.Context, query string) (search.Payload, error) {
	pageURL, err := buildQueryURL(b.endpoint, b.queryParam, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendFailure, err)
	}
	return getPayload(ctx, b.client, pageURL)
}

// Extract returns every complete result container in page order.
func (b *HTMLBackend) Extract(payload search.Payload) ([]domain.SearchResult, int) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil, 0
	}

	var (
		results []domain.SearchResult
		dropped int
	)
	doc.Find(b.selectors.Container).Each(func(_ int, s *goquery.Selection) {
		result, ok := b.parseResult(s)
		if !ok {
			dropped++
			return
		}
		results = append(results, result)
	})

	return results, dropped
}

func (b *HTMLBackend) parseResult(s *goquery.Selection) (domain.SearchResult, bool) {
	titleSel := s.Find(b.selectors.Title).First()
	snippetSel := s.Find(b.selectors.Snippet).First()
	linkSel := s.Find(b.selectors.Link).First()
	if titleSel.Length() == 0 || snippetSel.Length() == 0 || linkSel.Length() == 0 {
		return domain.SearchResult{}, false
	}

	href, exists := linkSel.Attr("href")
	href = strings.TrimSpace(href)
	if !exists || href == "" {
		return domain.SearchResult{}, false
	}

	title := collapseSpaces(titleSel.Text())
	if title == "" {
		return domain.SearchResult{}, false
	}

	snippetHTML, err := snippetSel.Html()
	if err != nil {
		snippetHTML = snippetSel.Text()
	}

	return domain.SearchResult{
		Title:        title,
		ShortSummary: b.sanitizer.PlainText(snippetHTML),
		URL:          resolveLink(b.endpoint, href),
	}, true
}

func getPayload(ctx context.Context, client *Client, pageURL string) (search.Payload, error) {
	resp, err := client.Get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrBackendFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", domain.ErrBackendFailure, pageURL, resp.Status)
	}

	body, err := readUTF8(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrBackendFailure, pageURL, err)
	}
	return body, nil
}

func readUTF8(resp *http.Response) ([]byte, error) {
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		reader = resp.Body
	}
	return io.ReadAll(reader)
}

func buildQueryURL(base, param, query string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid search endpoint %s: %w", base, err)
	}

	values := parsed.Query()
	values.Set(param, query)
	parsed.RawQuery = values.Encode()
	return parsed.String(), nil
}

// resolveLink makes relative result links absolute against the search endpoint.
func resolveLink(base, href string) string {
	ref, err := url.Parse(href)
	if err != nil || ref.IsAbs() {
		return href
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	return baseURL.ResolveReference(ref).String()
}
