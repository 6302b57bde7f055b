package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ContentCurator/internal/domain"
)

var (
	colorPrimary = lipgloss.AdaptiveColor{Light: "#5A56E0", Dark: "#7571F9"}
	colorDim     = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#626262"}
	colorAccent  = lipgloss.AdaptiveColor{Light: "#F25D94", Dark: "#F25D94"}
	colorGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#25D366"}

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	linkStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	metaStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	sponsoredStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorAccent)
)

// renderArticles prints articles in the Title/Summary/URL layout followed by their scores.
func renderArticles(w io.Writer, articles []domain.Article) {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles.")
		return
	}
	for _, a := range articles {
		fmt.Fprintln(w, "Title: "+titleStyle.Render(a.Title))
		fmt.Fprintln(w, "Summary: "+a.ShortSummary)
		fmt.Fprintln(w, "URL: "+linkStyle.Render(a.URL))
		fmt.Fprintln(w, metaLine(a))
		fmt.Fprintln(w)
	}
}

func metaLine(a domain.Article) string {
	parts := []string{
		"id=" + a.ID,
		fmt.Sprintf("sentiment=%.2f", a.SentimentScore),
		fmt.Sprintf("similarity=%.2f", a.SimilarityScore),
		fmt.Sprintf("popularity=%d", a.Popularity),
		"feedback=" + a.Feedback.String(),
	}
	line := metaStyle.Render(strings.Join(parts, " "))
	if a.Sponsored {
		line += " " + sponsoredStyle.Render("[sponsored]")
	}
	return line
}

func renderError(w io.Writer, err error) {
	fmt.Fprintln(w, errorStyle.Render("Error: "+err.Error()))
}
