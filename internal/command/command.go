// Package command maps user intents onto use cases, independent of how they were entered.
package command

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/usecase"
)

// Kind enumerates the commands a front end can issue.
type Kind int

const (
	RunPipeline Kind = iota + 1
	ShowRecommendations
	ShowRanking
	SponsoredRecommendations
	AdvertisingPartnerships
	AffiliateMarketing
	AddQuery
	SetFeedback
	Exit
)

var kindNames = map[Kind]string{
	RunPipeline:              "run-pipeline",
	ShowRecommendations:      "show-recommendations",
	ShowRanking:              "show-ranking",
	SponsoredRecommendations: "sponsored-recommendations",
	AdvertisingPartnerships:  "advertising-partnerships",
	AffiliateMarketing:       "affiliate-marketing",
	AddQuery:                 "add-query",
	SetFeedback:              "set-feedback",
	Exit:                     "exit",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ErrUnknownCommand is returned for kinds the dispatcher does not handle.
var ErrUnknownCommand = errors.New("unknown command")

// Command is one user intent with its payload.
type Command struct {
	Kind      Kind
	Query     string
	ArticleID string
	Feedback  domain.Feedback
}

// Result carries whatever the command produced.
type Result struct {
	Kind     Kind
	Articles []domain.Article
	Report   *domain.RunReport
	Message  string
	Exit     bool
}

// PipelineRunner runs one ingestion pass.
type PipelineRunner interface {
	Run(ctx context.Context) (domain.RunReport, error)
}

// RevenueService exposes the monetization paths.
type RevenueService interface {
	SponsoredRecommendations(ctx context.Context) ([]domain.Article, error)
	AdvertisingPartnerships(ctx context.Context) ([]domain.Article, error)
	AffiliateMarketing(ctx context.Context) ([]domain.Article, error)
}

// Deps wires the dispatcher.
type Deps struct {
	Pipeline    PipelineRunner
	Store       ports.ArticleStore
	Queries     ports.QueryStore
	Ranker      usecase.Ranker
	Recommender usecase.Recommender
	Revenue     RevenueService
}

// Dispatcher executes commands against the use cases.
type Dispatcher struct {
	deps Deps
}

// NewDispatcher builds a dispatcher.
func NewDispatcher(deps Deps) *Dispatcher {
	return &Dispatcher{deps: deps}
}

// Dispatch runs cmd and returns its result.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd Command) (Result, error) {
	res := Result{Kind: cmd.Kind}

	switch cmd.Kind {
	case RunPipeline:
		report, err := d.deps.Pipeline.Run(ctx)
		if err != nil {
			return res, fmt.Errorf("run pipeline: %w", err)
		}
		res.Report = &report
		res.Message = report.String()

	case ShowRecommendations:
		articles, err := d.deps.Recommender.RecommendStore(ctx, d.deps.Store)
		if err != nil {
			return res, err
		}
		res.Articles = articles

	case ShowRanking:
		articles, err := d.deps.Ranker.RankStore(ctx, d.deps.Store)
		if err != nil {
			return res, err
		}
		res.Articles = articles

	case SponsoredRecommendations:
		articles, err := d.deps.Revenue.SponsoredRecommendations(ctx)
		if err != nil {
			return res, err
		}
		res.Articles = articles

	case AdvertisingPartnerships:
		articles, err := d.deps.Revenue.AdvertisingPartnerships(ctx)
		if err != nil {
			return res, err
		}
		res.Articles = articles

	case AffiliateMarketing:
		articles, err := d.deps.Revenue.AffiliateMarketing(ctx)
		if err != nil {
			return res, err
		}
		res.Articles = articles

	case AddQuery:
		query := strings.TrimSpace(cmd.Query)
		if err := d.deps.Queries.AddQuery(ctx, query); err != nil {
			return res, fmt.Errorf("add query: %w", err)
		}
		res.Message = fmt.Sprintf("query %q added", query)

	case SetFeedback:
		if err := d.deps.Store.SetFeedback(ctx, cmd.ArticleID, cmd.Feedback); err != nil {
			return res, fmt.Errorf("set feedback: %w", err)
		}
		res.Message = fmt.Sprintf("feedback for %s set to %s", cmd.ArticleID, cmd.Feedback)

	case Exit:
		res.Exit = true

	default:
		return res, fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Kind)
	}

	return res, nil
}
