package analysis

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode"
)

// ExtractiveSummarizer picks the highest-scoring sentences of the text itself.
// Sentences score by the mean normalized frequency of their content words.
type ExtractiveSummarizer struct{}

var _ Summarizer = (*ExtractiveSummarizer)(nil)

// NewExtractiveSummarizer returns the offline summarizer.
func NewExtractiveSummarizer() *ExtractiveSummarizer {
	return &ExtractiveSummarizer{}
}

// Name identifies the summarizer inside the registry.
func (e *ExtractiveSummarizer) Name() string {
	return "extractive"
}

// Summarize selects sentences until at least bounds.Min words are covered,
// keeps them in document order and truncates to bounds.Max words.
// Texts shorter than bounds.Min are returned whole.
func (e *ExtractiveSummarizer) Summarize(_ context.Context, text string, bounds Bounds) (string, error) {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return "", errors.New("no sentences to summarize")
	}

	freq := map[string]float64{}
	var peak float64
	for _, tok := range ContentTokens(text) {
		freq[tok]++
		peak = max(peak, freq[tok])
	}

	type scored struct {
		index int
		score float64
		words int
	}
	ranked := make([]scored, len(sentences))
	for i, s := range sentences {
		words := len(strings.Fields(s))
		var total float64
		if peak > 0 {
			for _, tok := range ContentTokens(s) {
				total += freq[tok] / peak
			}
		}
		ranked[i] = scored{index: i, score: total / float64(max(words, 1)), words: words}
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].score > ranked[b].score
	})

	picked := make([]int, 0, len(ranked))
	covered := 0
	for _, s := range ranked {
		if covered >= bounds.Min && len(picked) > 0 {
			break
		}
		picked = append(picked, s.index)
		covered += s.words
	}
	sort.Ints(picked)

	parts := make([]string, 0, len(picked))
	for _, idx := range picked {
		parts = append(parts, sentences[idx])
	}
	return TruncateWords(strings.Join(parts, " "), bounds.Max), nil
}

// splitSentences breaks text on line breaks and on . ! ? followed by whitespace.
func splitSentences(text string) []string {
	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		runes := []rune(line)
		start := 0
		for i, r := range runes {
			if r != '.' && r != '!' && r != '?' {
				continue
			}
			if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
				continue
			}
			sentences = appendSentence(sentences, string(runes[start:i+1]))
			start = i + 1
		}
		sentences = appendSentence(sentences, string(runes[start:]))
	}
	return sentences
}

func appendSentence(sentences []string, s string) []string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return sentences
	}
	return append(sentences, s)
}
