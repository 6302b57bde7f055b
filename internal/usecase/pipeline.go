package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/logging"
	"ContentCurator/internal/ports"
)

// RunRecorder receives the report of every finished run.
type RunRecorder interface {
	RecordRun(report domain.RunReport)
}

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Search     ports.SearchProvider
	Fetcher    ports.ArticleFetcher
	Analyzer   ports.TextAnalyzer
	Store      ports.ArticleStore
	Queries    ports.QueryStore
	Popularity ports.PopularitySource
	Metrics    RunRecorder
	Logger     *slog.Logger

	// SkipKnownURLs drops results whose URL is already stored or was seen earlier in the run.
	SkipKnownURLs bool

	Now   func() time.Time
	NewID func() string
}

// Pipeline implements query -> search -> fetch -> analyze -> append.
// Runs are serialized; inside a run every step is sequential.
type Pipeline struct {
	search     ports.SearchProvider
	fetcher    ports.ArticleFetcher
	analyzer   ports.TextAnalyzer
	store      ports.ArticleStore
	queries    ports.QueryStore
	popularity ports.PopularitySource
	metrics    RunRecorder
	logger     *slog.Logger
	skipKnown  bool
	now        func() time.Time
	newID      func() string

	mu sync.Mutex
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	p := &Pipeline{
		search:     deps.Search,
		fetcher:    deps.Fetcher,
		analyzer:   deps.Analyzer,
		store:      deps.Store,
		queries:    deps.Queries,
		popularity: deps.Popularity,
		metrics:    deps.Metrics,
		logger:     logging.OrDiscard(deps.Logger).With("component", "pipeline"),
		skipKnown:  deps.SkipKnownURLs,
		now:        deps.Now,
		newID:      deps.NewID,
	}
	if p.popularity == nil {
		p.popularity = NewRandomPopularity(0)
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p
}

// Run executes one pipeline run over every stored query.
func (p *Pipeline) Run(ctx context.Context) (domain.RunReport, error) {
	if p.queries == nil {
		return domain.RunReport{}, errors.New("pipeline has no query store")
	}
	queries, err := p.queries.Queries(ctx)
	if err != nil {
		return domain.RunReport{}, fmt.Errorf("load queries: %w", err)
	}
	return p.RunQueries(ctx, queries)
}

// RunQueries executes one run over queries, in order.
// Backend, extraction, fetch and analysis failures are skipped and counted;
// store errors and context cancellation end the run.
func (p *Pipeline) RunQueries(ctx context.Context, queries []string) (domain.RunReport, error) {
	if p.search == nil || p.fetcher == nil || p.analyzer == nil || p.store == nil {
		return domain.RunReport{}, errors.New("pipeline misconfigured")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	report := domain.NewRunReport(p.now())
	seen := map[string]bool{}

	p.logger.Info("run started", "queries", len(queries))
	for _, query := range queries {
		if err := ctx.Err(); err != nil {
			return p.finish(report), err
		}
		report.Queries++
		if err := p.runQuery(ctx, query, seen, &report); err != nil {
			return p.finish(report), err
		}
	}

	report = p.finish(report)
	p.logger.Info("run finished", "report", report.String(), "took", report.Duration())
	return report, nil
}

func (p *Pipeline) runQuery(ctx context.Context, query string, seen map[string]bool, report *domain.RunReport) error {
	log := p.logger.With("query", query)

	results, dropped, err := p.search.Search(ctx, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		log.Warn("search failed", "err", err)
		report.Skip(domain.FailureKindOf(err), 1)
		return nil
	}
	if dropped > 0 {
		log.Warn("results dropped during extraction", "dropped", dropped)
		report.Skip(domain.FailureExtraction, dropped)
	}
	report.Results += len(results)

	known := map[string]bool{}
	if p.skipKnown && len(results) > 0 {
		urls := make([]string, len(results))
		for i, r := range results {
			urls[i] = r.URL
		}
		known, err = p.store.AlreadyStored(ctx, urls)
		if err != nil {
			return fmt.Errorf("load stored urls: %w", err)
		}
	}

	stored := 0
	for _, result := range results {
		if err := ctx.Err(); err != nil {
			return err
		}
		if p.skipKnown && (known[result.URL] || seen[result.URL]) {
			report.Duplicates++
			continue
		}

		article, err := p.buildArticle(ctx, query, result)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Warn("result skipped", "url", result.URL, "kind", domain.FailureKindOf(err), "err", err)
			report.Skip(domain.FailureKindOf(err), 1)
			continue
		}

		if err := p.store.Append(ctx, article); err != nil {
			return fmt.Errorf("append article %s: %w", article.URL, err)
		}
		seen[result.URL] = true
		stored++
		report.Stored++
	}

	log.Info("query finished", "results", len(results), "stored", stored)
	return nil
}

func (p *Pipeline) buildArticle(ctx context.Context, query string, result domain.SearchResult) (domain.Article, error) {
	content, err := p.fetcher.Fetch(ctx, result.URL)
	if err != nil {
		return domain.Article{}, err
	}

	scores, err := p.analyzer.Analyze(ctx, content)
	if err != nil {
		return domain.Article{}, err
	}

	return domain.NewArticle(p.newID(), query, result, content, scores, p.popularity.Popularity(ctx, result), p.now())
}

func (p *Pipeline) finish(report domain.RunReport) domain.RunReport {
	report.FinishedAt = p.now()
	if p.metrics != nil {
		p.metrics.RecordRun(report)
	}
	return report
}

// RandomPopularity draws a uniform popularity in [MinPopularity, MaxPopularity].
type RandomPopularity struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ ports.PopularitySource = (*RandomPopularity)(nil)

// NewRandomPopularity seeds the generator; seed 0 picks a random seed.
func NewRandomPopularity(seed int64) *RandomPopularity {
	s := uint64(seed)
	if seed == 0 {
		s = rand.Uint64()
	}
	return &RandomPopularity{rng: rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))}
}

// Popularity returns the next draw.
func (r *RandomPopularity) Popularity(context.Context, domain.SearchResult) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return domain.MinPopularity + r.rng.IntN(domain.MaxPopularity-domain.MinPopularity+1)
}
