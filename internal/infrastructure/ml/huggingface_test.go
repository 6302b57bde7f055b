package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ContentCurator/internal/analysis"
)

func TestHuggingFaceSummarizerSendsBounds(t *testing.T) {
	t.Parallel()

	var got summarizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer hf-token" {
			t.Errorf("authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`[{"summary_text":"  Markets rallied on strong earnings.  "}]`))
	}))
	defer srv.Close()

	s := NewHuggingFaceSummarizer(srv.URL, "hf-token", srv.Client())
	summary, err := s.Summarize(context.Background(), "long article text", analysis.Bounds{Min: 30, Max: 100})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}

	if summary != "Markets rallied on strong earnings." {
		t.Fatalf("summary = %q", summary)
	}
	if got.Inputs != "long article text" {
		t.Fatalf("inputs = %q", got.Inputs)
	}
	if got.Parameters.MinLength != 30 || got.Parameters.MaxLength != 100 || got.Parameters.DoSample {
		t.Fatalf("parameters = %+v", got.Parameters)
	}
}

func TestHuggingFaceSummarizerTruncatesToMaxWords(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"summary_text":"one two three four five six"}]`))
	}))
	defer srv.Close()

	summary, err := NewHuggingFaceSummarizer(srv.URL, "", srv.Client()).
		Summarize(context.Background(), "text", analysis.Bounds{Min: 1, Max: 4})
	if err != nil {
		t.Fatalf("Summarize returned error: %v", err)
	}
	if summary != "one two three four" {
		t.Fatalf("summary = %q", summary)
	}
}

func TestHuggingFaceSummarizerErrors(t *testing.T) {
	t.Parallel()

	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "model loading", http.StatusServiceUnavailable)
		},
		"empty list": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		},
		"bad json": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":`))
		},
	}

	for name, handler := range cases {
		srv := httptest.NewServer(handler)
		_, err := NewHuggingFaceSummarizer(srv.URL, "", srv.Client()).
			Summarize(context.Background(), "text", analysis.Bounds{Min: 1, Max: 4})
		srv.Close()
		if err == nil {
			t.Fatalf("%s: expected error", name)
		}
		if name == "status" && !strings.Contains(err.Error(), "model loading") {
			t.Fatalf("%s: error %v lacks response detail", name, err)
		}
	}

	if _, err := NewHuggingFaceSummarizer("", "", nil).Summarize(context.Background(), "text", analysis.Bounds{Min: 1, Max: 4}); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
}
