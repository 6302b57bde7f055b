package analysis

import (
	"strings"
	"unicode"
)

// WordTokens splits text into word tokens. Surrounding punctuation is dropped
// and clitics are cut off ("don't" -> "do", "it's" -> "it"), so tokens with
// inner punctuation ("e-mail", "3.5") survive whole and fail the alnum check later.
func WordTokens(text string) []string {
	var tokens []string
	for _, chunk := range strings.Fields(text) {
		core := strings.TrimFunc(chunk, isPunctOrSymbol)
		if core == "" {
			continue
		}
		if head, ok := splitClitic(core); ok {
			core = head
		}
		if core != "" {
			tokens = append(tokens, core)
		}
	}
	return tokens
}

// ContentTokens lower-cases text, keeps alphanumeric tokens and drops stop words.
func ContentTokens(text string) []string {
	words := WordTokens(text)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(w)
		if !isAlnum(w) || IsStopWord(w) {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// termTokens is the vectorizer's tokenizer: lower-case runs of two or more word characters.
func termTokens(text string) []string {
	var (
		tokens  []string
		current []rune
	)
	flush := func() {
		if len(current) >= 2 {
			tokens = append(tokens, string(current))
		}
		current = current[:0]
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current = append(current, r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}

func splitClitic(word string) (string, bool) {
	idx := strings.IndexAny(word, "'’")
	if idx <= 0 {
		return word, false
	}
	head, tail := word[:idx], strings.ToLower(strings.TrimLeft(word[idx:], "'’"))
	if tail == "t" && strings.HasSuffix(strings.ToLower(head), "n") && len(head) > 1 {
		head = head[:len(head)-1]
	}
	return head, true
}

func isAlnum(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isPunctOrSymbol(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
