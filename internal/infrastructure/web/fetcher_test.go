package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ContentCurator/internal/domain"
)

const articlePage = `
<html><head><title>t</title><script>var x = 1;</script></head><body>
  <nav>menu</nav>
  <div class="article-content">
    <h1>Headline</h1>
    <p>First   paragraph.</p>
    <p>Second paragraph.</p>
    <script>tracking()</script>
  </div>
</body></html>`

func newArticleServer(t *testing.T) *httptest.Server {
	t.Helper()

	longParagraph := strings.Repeat("Readable sentences about distributed systems keep the extractor happy. ", 12)
	mux := http.NewServeMux()
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articlePage))
	})
	mux.HandleFunc("/no-container", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><article>
			<h1>Plain article</h1>
			<p>` + longParagraph + `</p>
			<p>` + longParagraph + `</p>
			<p>` + longParagraph + `</p>
		</article></body></html>`))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /article\n"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestFetcherExtractsContentContainer(t *testing.T) {
	t.Parallel()

	server := newArticleServer(t)
	fetcher := NewFetcher(NewClient(server.Client(), "", 0), FetcherOptions{ContentSelector: "div.article-content"}, nil)

	content, err := fetcher.Fetch(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	want := "Headline\nFirst paragraph.\nSecond paragraph."
	if content != want {
		t.Fatalf("unexpected content:\n%q\nwant\n%q", content, want)
	}
}

func TestFetcherMissingContainerFails(t *testing.T) {
	t.Parallel()

	server := newArticleServer(t)
	fetcher := NewFetcher(NewClient(server.Client(), "", 0), FetcherOptions{ContentSelector: "div.article-content"}, nil)

	_, err := fetcher.Fetch(context.Background(), server.URL+"/no-container")
	if !errors.Is(err, domain.ErrFetchFailure) {
		t.Fatalf("expected ErrFetchFailure, got %v", err)
	}
}

func TestFetcherNonOKFails(t *testing.T) {
	t.Parallel()

	server := newArticleServer(t)
	fetcher := NewFetcher(NewClient(server.Client(), "", 0), FetcherOptions{ContentSelector: "div.article-content"}, nil)

	_, err := fetcher.Fetch(context.Background(), server.URL+"/broken")
	if !errors.Is(err, domain.ErrFetchFailure) {
		t.Fatalf("expected ErrFetchFailure, got %v", err)
	}
}

func TestFetcherRejectsRelativeURL(t *testing.T) {
	t.Parallel()

	fetcher := NewFetcher(NewClient(nil, "", 0), FetcherOptions{ContentSelector: "div"}, nil)

	_, err := fetcher.Fetch(context.Background(), "/just/a/path")
	if !errors.Is(err, domain.ErrFetchFailure) {
		t.Fatalf("expected ErrFetchFailure, got %v", err)
	}
}

func TestFetcherReadabilityFallback(t *testing.T) {
	t.Parallel()

	server := newArticleServer(t)
	fetcher := NewFetcher(NewClient(server.Client(), "", 0), FetcherOptions{
		ContentSelector:     "div.article-content",
		ReadabilityFallback: true,
	}, nil)

	content, err := fetcher.Fetch(context.Background(), server.URL+"/no-container")
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if !strings.Contains(content, "distributed systems") {
		t.Fatalf("expected readable text, got %q", content)
	}
}

func TestFetcherHonoursRobots(t *testing.T) {
	t.Parallel()

	server := newArticleServer(t)
	client := NewClient(server.Client(), "curator-test", 0)
	fetcher := NewFetcher(client, FetcherOptions{
		ContentSelector: "div.article-content",
		Robots:          NewRobotsPolicy(client),
	}, nil)

	_, err := fetcher.Fetch(context.Background(), server.URL+"/article")
	if !errors.Is(err, domain.ErrFetchFailure) {
		t.Fatalf("expected robots disallow to fail the fetch, got %v", err)
	}
	if !strings.Contains(err.Error(), "robots.txt") {
		t.Fatalf("expected robots reason, got %v", err)
	}
}
