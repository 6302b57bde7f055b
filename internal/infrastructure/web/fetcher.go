package web

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/logging"
	"ContentCurator/internal/ports"
)

// FetcherOptions configures content extraction.
type FetcherOptions struct {
	// ContentSelector designates the element holding the article body.
	ContentSelector string
	// ReadabilityFallback extracts the main text when the selector finds nothing.
	ReadabilityFallback bool
	// Robots, when set, refuses URLs disallowed by the host's robots.txt.
	Robots *RobotsPolicy
}

// Fetcher downloads an article page and returns its body text.
type Fetcher struct {
	client      *Client
	selector    string
	readability bool
	robots      *RobotsPolicy
	logger      *slog.Logger
}

var _ ports.ArticleFetcher = (*Fetcher)(nil)

// NewFetcher builds a fetcher over the shared client.
func NewFetcher(client *Client, opts FetcherOptions, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client:      client,
		selector:    opts.ContentSelector,
		readability: opts.ReadabilityFallback,
		robots:      opts.Robots,
		logger:      logging.OrDiscard(logger),
	}
}

// Fetch performs one GET; non-200 responses and pages without the content container fail.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil || !pageURL.IsAbs() {
		return "", fmt.Errorf("%w: invalid url %q", domain.ErrFetchFailure, rawURL)
	}

	if f.robots != nil && !f.robots.Allowed(ctx, pageURL) {
		return "", fmt.Errorf("%w: %s disallowed by robots.txt", domain.ErrFetchFailure, rawURL)
	}

	resp, err := f.client.Get(ctx, rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrFetchFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s returned %s", domain.ErrFetchFailure, rawURL, resp.Status)
	}

	raw, err := readUTF8(resp)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", domain.ErrFetchFailure, rawURL, err)
	}

	if content := f.selectContent(raw); content != "" {
		return content, nil
	}

	if f.readability {
		content, rErr := extractReadable(raw, pageURL)
		if rErr == nil && content != "" {
			f.logger.Debug("content extracted by readability", "url", rawURL)
			return content, nil
		}
		if rErr != nil {
			f.logger.Debug("readability failed", "url", rawURL, "error", rErr)
		}
	}

	return "", fmt.Errorf("%w: no content container %q in %s", domain.ErrFetchFailure, f.selector, rawURL)
}

func (f *Fetcher) selectContent(raw []byte) string {
	if strings.TrimSpace(f.selector) == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	container := doc.Find(f.selector).First()
	if container.Length() == 0 {
		return ""
	}
	return blockText(container)
}

func extractReadable(raw []byte, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(raw), pageURL)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return "", fmt.Errorf("parse readable content: %w", err)
	}
	return blockText(doc.Selection), nil
}
