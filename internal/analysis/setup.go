// Package analysis scores article text: compound sentiment, a length-bounded
// summary, and the topic similarity between the two.
package analysis

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
)

//go:embed data/stopwords.txt
var resources embed.FS

var (
	setupOnce sync.Once
	setupErr  error

	vader     *govader.SentimentIntensityAnalyzer
	stopWords map[string]struct{}
)

// Setup builds the VADER analyzer and loads the stop-word list. It is idempotent and
// safe for concurrent use; constructors call it, so explicit calls are only
// needed to surface resource errors early.
func Setup() error {
	setupOnce.Do(func() {
		stops, err := loadStopWords()
		if err != nil {
			setupErr = err
			return
		}
		vader, stopWords = govader.NewSentimentIntensityAnalyzer(), stops
	})
	return setupErr
}

func loadStopWords() (map[string]struct{}, error) {
	raw, err := resources.ReadFile("data/stopwords.txt")
	if err != nil {
		return nil, fmt.Errorf("read stop words: %w", err)
	}

	stops := make(map[string]struct{})
	for _, word := range strings.Fields(string(raw)) {
		stops[strings.ToLower(word)] = struct{}{}
	}
	return stops, nil
}

// IsStopWord reports whether word (lower-case) is in the English stop list.
func IsStopWord(word string) bool {
	if err := Setup(); err != nil {
		return false
	}
	_, ok := stopWords[word]
	return ok
}
