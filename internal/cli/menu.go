package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"ContentCurator/internal/command"
	"ContentCurator/internal/domain"
)

const (
	queryPrompt = "Enter your search query (type 'stop' to exit): "
	mainPrompt  = "Enter your choice:\n" +
		"1. Search and curate content\n" +
		"2. Get personalized content recommendations\n" +
		"3. Generate revenue\n" +
		"4. Exit\n" +
		"5. Show ranked articles\n" +
		"6. Rate an article\n"
	revenuePrompt = "Enter your choice:\n" +
		"1. Sponsored Content Recommendations\n" +
		"2. Advertising Partnerships\n" +
		"3. Affiliate Marketing\n"
)

// Dispatcher executes menu commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, cmd command.Command) (command.Result, error)
}

// Menu is the interactive terminal front end.
type Menu struct {
	dispatcher Dispatcher
	in         *bufio.Reader
	out        io.Writer
}

// NewMenu reads choices from in and writes prompts and results to out.
func NewMenu(dispatcher Dispatcher, in io.Reader, out io.Writer) *Menu {
	return &Menu{dispatcher: dispatcher, in: bufio.NewReader(in), out: out}
}

// Run collects queries, then loops over the main menu until Exit or end of input.
func (m *Menu) Run(ctx context.Context) error {
	if err := m.collectQueries(ctx); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		choice, ok := m.prompt(mainPrompt)
		if !ok {
			return nil
		}

		var cmd command.Command
		switch choice {
		case "1":
			cmd = command.Command{Kind: command.RunPipeline}
		case "2":
			cmd = command.Command{Kind: command.ShowRecommendations}
		case "3":
			var valid bool
			if cmd, valid = m.revenueCommand(); !valid {
				continue
			}
		case "4":
			cmd = command.Command{Kind: command.Exit}
		case "5":
			cmd = command.Command{Kind: command.ShowRanking}
		case "6":
			var valid bool
			if cmd, valid = m.feedbackCommand(); !valid {
				continue
			}
		default:
			fmt.Fprintln(m.out, "Invalid choice.")
			continue
		}

		res, err := m.dispatcher.Dispatch(ctx, cmd)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			renderError(m.out, err)
			continue
		}
		if res.Exit {
			return nil
		}
		m.show(res)
	}
}

func (m *Menu) collectQueries(ctx context.Context) error {
	for {
		query, ok := m.prompt(queryPrompt)
		if !ok || query == "stop" {
			return nil
		}
		if query == "" {
			continue
		}
		if _, err := m.dispatcher.Dispatch(ctx, command.Command{Kind: command.AddQuery, Query: query}); err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			renderError(m.out, err)
		}
	}
}

func (m *Menu) revenueCommand() (command.Command, bool) {
	choice, ok := m.prompt(revenuePrompt)
	if !ok {
		return command.Command{}, false
	}
	switch choice {
	case "1":
		return command.Command{Kind: command.SponsoredRecommendations}, true
	case "2":
		return command.Command{Kind: command.AdvertisingPartnerships}, true
	case "3":
		return command.Command{Kind: command.AffiliateMarketing}, true
	default:
		fmt.Fprintln(m.out, "Invalid choice.")
		return command.Command{}, false
	}
}

func (m *Menu) feedbackCommand() (command.Command, bool) {
	id, ok := m.prompt("Article ID: ")
	if !ok || id == "" {
		return command.Command{}, false
	}
	value, ok := m.prompt("Feedback (interested / not_interested / none): ")
	if !ok {
		return command.Command{}, false
	}
	feedback, err := domain.ParseFeedback(value)
	if err != nil {
		renderError(m.out, err)
		return command.Command{}, false
	}
	return command.Command{Kind: command.SetFeedback, ArticleID: id, Feedback: feedback}, true
}

func (m *Menu) show(res command.Result) {
	switch res.Kind {
	case command.RunPipeline:
		fmt.Fprintln(m.out, "Content has been successfully curated!")
		fmt.Fprintln(m.out, res.Message)
	case command.SetFeedback, command.AddQuery:
		fmt.Fprintln(m.out, res.Message)
	default:
		renderArticles(m.out, res.Articles)
	}
}

// prompt writes text and reads one trimmed line; false means input is exhausted.
func (m *Menu) prompt(text string) (string, bool) {
	fmt.Fprint(m.out, text)
	line, err := m.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}
