// Package notify delivers recommendation digests over email, Telegram or the log.
package notify

import (
	"strings"

	"ContentCurator/internal/domain"
)

// Subject is the fixed subject line of every digest.
const Subject = "Content Recommendations"

const intro = "Here are your personalized content recommendations:"

// FormatMessage renders the plain-text digest body.
func FormatMessage(articles []domain.Article) string {
	var b strings.Builder
	b.WriteString(intro)
	b.WriteString("\n\n")
	for _, a := range articles {
		b.WriteString("Title: ")
		b.WriteString(a.Title)
		b.WriteString("\nSummary: ")
		b.WriteString(a.ShortSummary)
		b.WriteString("\nURL: ")
		b.WriteString(a.URL)
		b.WriteString("\n\n")
	}
	return b.String()
}
