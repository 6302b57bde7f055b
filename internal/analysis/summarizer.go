package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Bounds limits summary length in words.
type Bounds struct {
	Min int
	Max int
}

// Valid reports whether the bounds describe a non-empty range.
func (b Bounds) Valid() bool {
	return b.Min > 0 && b.Max >= b.Min
}

// Summarizer captures one summarization model (hosted, LLM, local).
type Summarizer interface {
	Name() string
	Summarize(ctx context.Context, text string, bounds Bounds) (string, error)
}

// SummarizerRegistry maps summarizer names to implementations.
type SummarizerRegistry struct {
	summarizers map[string]Summarizer
}

// NewSummarizerRegistry builds an empty registry.
func NewSummarizerRegistry() *SummarizerRegistry {
	return &SummarizerRegistry{summarizers: map[string]Summarizer{}}
}

// Register adds or replaces a summarizer.
func (r *SummarizerRegistry) Register(s Summarizer) {
	if r.summarizers == nil {
		r.summarizers = map[string]Summarizer{}
	}
	r.summarizers[s.Name()] = s
}

// Resolve returns a summarizer by name.
func (r *SummarizerRegistry) Resolve(name string) (Summarizer, error) {
	if s, ok := r.summarizers[name]; ok {
		return s, nil
	}
	names := make([]string, 0, len(r.summarizers))
	for n := range r.summarizers {
		names = append(names, n)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("summarizer %q is not registered (registered: %s)", name, strings.Join(names, ", "))
}

// TruncateWords cuts text to at most n words.
func TruncateWords(text string, n int) string {
	words := strings.Fields(text)
	if n <= 0 || len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ")
}
