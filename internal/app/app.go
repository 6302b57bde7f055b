package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ContentCurator/internal/analysis"
	"ContentCurator/internal/command"
	"ContentCurator/internal/config"
	"ContentCurator/internal/infrastructure/llm"
	"ContentCurator/internal/infrastructure/ml"
	"ContentCurator/internal/infrastructure/notify"
	"ContentCurator/internal/infrastructure/scheduler"
	"ContentCurator/internal/infrastructure/web"
	"ContentCurator/internal/logging"
	"ContentCurator/internal/metrics"
	"ContentCurator/internal/ports"
	"ContentCurator/internal/search"
	"ContentCurator/internal/store"
	"ContentCurator/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg    config.Config
	logger *slog.Logger

	store   ports.ArticleStore
	queries ports.QueryStore
	closer  io.Closer

	pipeline      *usecase.Pipeline
	notifications *usecase.NotificationJob
	dispatcher    *command.Dispatcher
	metrics       *metrics.Recorder
}

// New builds a runnable application instance from cfg.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	articles, queries, closer, err := openStores(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	a := &Application{
		cfg:     cfg,
		logger:  baseLogger,
		store:   articles,
		queries: queries,
		closer:  closer,
		metrics: metrics.NewRecorder(),
	}

	if err := a.wire(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *Application) wire(ctx context.Context) error {
	cfg := a.cfg

	for _, q := range cfg.Queries {
		if err := a.queries.AddQuery(ctx, q); err != nil {
			return fmt.Errorf("seed query %q: %w", q, err)
		}
	}

	httpClient := &http.Client{Timeout: cfg.HTTP.TimeoutDuration()}
	client := web.NewClient(httpClient, cfg.HTTP.UserAgent, cfg.HTTP.RequestsPerSecond)

	backends := search.NewRegistry()
	backends.Register(web.NewHTMLBackend(client, cfg.Search.HTML.Endpoint, cfg.Search.HTML.QueryParam, web.HTMLSelectors{
		Container: cfg.Search.HTML.ContainerSelector,
		Title:     cfg.Search.HTML.TitleSelector,
		Snippet:   cfg.Search.HTML.SnippetSelector,
		Link:      cfg.Search.HTML.LinkSelector,
	}))
	backends.Register(web.NewRSSBackend(client, cfg.Search.RSS.Endpoint, cfg.Search.RSS.QueryParam))
	backends.Register(web.NewArxivBackend(client, cfg.Search.Arxiv.Endpoint, cfg.Search.Arxiv.PageSize))
	if _, err := backends.Resolve(cfg.Search.Backend); err != nil {
		return err
	}

	var robots *web.RobotsPolicy
	if cfg.HTTP.RespectRobots {
		robots = web.NewRobotsPolicy(client)
	}
	fetcher := web.NewFetcher(client, web.FetcherOptions{
		ContentSelector:     cfg.Fetch.ContentSelector,
		ReadabilityFallback: cfg.Fetch.ReadabilityFallback,
		Robots:              robots,
	}, a.logger.With("component", "fetcher"))

	analyzer, err := buildAnalyzer(cfg)
	if err != nil {
		return err
	}

	ranker := usecase.NewRanker(cfg.Ranking.SentimentThreshold)
	recommender := usecase.NewRecommender(cfg.Recommendations.Limit)

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Search:        search.NewService(backends, cfg.Search.Backend),
		Fetcher:       fetcher,
		Analyzer:      analyzer,
		Store:         a.store,
		Queries:       a.queries,
		Popularity:    usecase.NewRandomPopularity(cfg.Pipeline.Seed),
		Metrics:       a.metrics,
		Logger:        a.logger,
		SkipKnownURLs: cfg.Pipeline.SkipKnownURLs,
	})

	notifier, err := buildNotifier(cfg.Notifications, a.logger)
	if err != nil {
		return err
	}
	a.notifications = usecase.NewNotificationJob(usecase.NotificationDeps{
		Store:       a.store,
		Recommender: recommender,
		Notifier:    notifier,
		Channel:     cfg.Notifications.Channel,
		Metrics:     a.metrics,
		Logger:      a.logger,
	})

	a.dispatcher = command.NewDispatcher(command.Deps{
		Pipeline:    a.pipeline,
		Store:       a.store,
		Queries:     a.queries,
		Ranker:      ranker,
		Recommender: recommender,
		Revenue: usecase.NewRevenueGenerator(usecase.RevenueDeps{
			Store:       a.store,
			Recommender: recommender,
			Logger:      a.logger,
		}),
	})
	return nil
}

func openStores(ctx context.Context, cfg config.StorageConfig) (ports.ArticleStore, ports.QueryStore, io.Closer, error) {
	switch strings.ToLower(cfg.Driver) {
	case "memory":
		return store.NewMemoryStore(), store.NewQueryList(), nil, nil
	case store.DriverSQLite, store.DriverPostgres:
		s, err := store.OpenSQL(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open store: %w", err)
		}
		return s, s, s, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

func buildAnalyzer(cfg config.Config) (*analysis.Analyzer, error) {
	summarizers := analysis.NewSummarizerRegistry()
	summarizers.Register(analysis.NewExtractiveSummarizer())
	summarizers.Register(ml.NewHuggingFaceSummarizer(cfg.ML.InferenceURL, cfg.ML.APIKey, nil))
	summarizers.Register(llm.NewChatGPTSummarizer(cfg.ChatGPT, nil))

	summarizer, err := summarizers.Resolve(cfg.Analysis.Summarizer)
	if err != nil {
		return nil, err
	}
	sentiment, err := analysis.NewVaderScorer()
	if err != nil {
		return nil, err
	}
	return analysis.New(sentiment, summarizer, analysis.Bounds{
		Min: cfg.Analysis.MinSummaryLength,
		Max: cfg.Analysis.MaxSummaryLength,
	})
}

func buildNotifier(cfg config.NotificationConfig, logger *slog.Logger) (ports.Notifier, error) {
	switch strings.ToLower(cfg.Channel) {
	case "", "log":
		return notify.NewLogNotifier(logger), nil
	case "email":
		return notify.NewEmailNotifier(cfg.Email), nil
	case "telegram":
		return notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, nil), nil
	default:
		return nil, fmt.Errorf("unsupported notification channel %q", cfg.Channel)
	}
}

// Dispatcher exposes the command entry point for front ends.
func (a *Application) Dispatcher() *command.Dispatcher {
	return a.dispatcher
}

// Metrics returns the application's recorder.
func (a *Application) Metrics() *metrics.Recorder {
	return a.metrics
}

// Queries returns the query store.
func (a *Application) Queries() ports.QueryStore {
	return a.queries
}

// Notify runs the notification job once.
func (a *Application) Notify(ctx context.Context) error {
	return a.notifications.Run(ctx)
}

// RunScheduler blocks in the scheduling loop until ctx is done.
// A non-empty metricsAddr also serves /metrics for the lifetime of the loop.
func (a *Application) RunScheduler(ctx context.Context, clock scheduler.Clock, metricsAddr string) error {
	loop := scheduler.NewLoop(clock, scheduler.Options{
		PollInterval: a.cfg.Scheduler.PollDuration(),
		Location:     a.cfg.Scheduler.Location(),
		Logger:       a.logger,
		Observer:     a.metrics,
	})
	jobs := usecase.NewScheduler(loop, a.pipeline, a.notifications, usecase.SchedulePlan{
		RefreshEvery: a.cfg.Scheduler.RefreshDuration(),
		NotifyAt:     a.cfg.Scheduler.NotifyAt,
	})

	if metricsAddr == "" {
		metricsAddr = a.cfg.Metrics.Addr
	}
	if metricsAddr != "" {
		srv := a.metricsServer(metricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.logger.Error("metrics server stopped", "addr", metricsAddr, "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		a.logger.Info("serving metrics", "addr", metricsAddr)
	}

	err := jobs.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (a *Application) metricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Close releases the store.
func (a *Application) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
