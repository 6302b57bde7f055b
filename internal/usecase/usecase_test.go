package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/store"
)

type searchResponse struct {
	results []domain.SearchResult
	dropped int
	err     error
}

type fakeSearch map[string]searchResponse

func (f fakeSearch) Search(_ context.Context, query string) ([]domain.SearchResult, int, error) {
	resp, ok := f[query]
	if !ok {
		return nil, 0, nil
	}
	return resp.results, resp.dropped, resp.err
}

type fakeFetcher struct {
	failing map[string]bool
}

func (f fakeFetcher) Fetch(_ context.Context, url string) (string, error) {
	if f.failing[url] {
		return "", fmt.Errorf("%w: status 500 for %s", domain.ErrFetchFailure, url)
	}
	return "content of " + url, nil
}

// flakyFetcher fails the first fetch of each listed URL and succeeds afterwards.
type flakyFetcher struct {
	mu       sync.Mutex
	failOnce map[string]bool
	calls    map[string]int
}

func (f *flakyFetcher) Fetch(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[url]++
	if f.failOnce[url] && f.calls[url] == 1 {
		return "", fmt.Errorf("%w: connection reset for %s", domain.ErrFetchFailure, url)
	}
	return "content of " + url, nil
}

type fakeAnalyzer struct {
	failing map[string]bool
}

func (f fakeAnalyzer) Analyze(_ context.Context, content string) (domain.Scores, error) {
	if f.failing[content] {
		return domain.Scores{}, fmt.Errorf("%w: summarizer offline", domain.ErrAnalysisFailure)
	}
	return domain.Scores{Sentiment: 0.6, Summary: "summary of " + content, Similarity: 0.4}, nil
}

type fixedPopularity int

func (f fixedPopularity) Popularity(context.Context, domain.SearchResult) int { return int(f) }

type failingStore struct {
	*store.MemoryStore
}

func (failingStore) Append(context.Context, ...domain.Article) error {
	return errors.New("disk full")
}

type recordingRuns struct {
	reports []domain.RunReport
}

func (r *recordingRuns) RecordRun(report domain.RunReport) {
	r.reports = append(r.reports, report)
}

func results(urls ...string) []domain.SearchResult {
	out := make([]domain.SearchResult, len(urls))
	for i, u := range urls {
		out[i] = domain.SearchResult{Title: "Title " + u, ShortSummary: "Snippet " + u, URL: u}
	}
	return out
}

func sequentialIDs() func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestPipeline(search fakeSearch, st *store.MemoryStore, queries *store.QueryList, skipKnown bool) *Pipeline {
	return NewPipeline(PipelineDeps{
		Search:        search,
		Fetcher:       fakeFetcher{failing: map[string]bool{"https://b.example/fail": true}},
		Analyzer:      fakeAnalyzer{failing: map[string]bool{"content of https://c.example/bad": true}},
		Store:         st,
		Queries:       queries,
		Popularity:    fixedPopularity(42),
		SkipKnownURLs: skipKnown,
		Now:           func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) },
		NewID:         sequentialIDs(),
	})
}

func TestPipelineSkipsFailuresAndKeepsOrder(t *testing.T) {
	t.Parallel()

	search := fakeSearch{
		"broken": {err: fmt.Errorf("%w: status 404", domain.ErrBackendFailure)},
		"golang": {
			results: results("https://a.example/1", "https://b.example/fail", "https://c.example/bad", "https://a.example/2"),
			dropped: 1,
		},
	}
	st := store.NewMemoryStore()
	runs := &recordingRuns{}
	p := newTestPipeline(search, st, store.NewQueryList("broken", "golang"), true)
	p.metrics = runs

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Queries)
	assert.Equal(t, 4, report.Results)
	assert.Equal(t, 2, report.Stored)
	assert.Equal(t, 1, report.Skipped[domain.FailureBackend])
	assert.Equal(t, 1, report.Skipped[domain.FailureExtraction])
	assert.Equal(t, 1, report.Skipped[domain.FailureFetch])
	assert.Equal(t, 1, report.Skipped[domain.FailureAnalysis])
	require.Len(t, runs.reports, 1)

	all, err := st.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "https://a.example/1", all[0].URL)
	assert.Equal(t, "https://a.example/2", all[1].URL)
	for _, a := range all {
		assert.Equal(t, "golang", a.Query)
		assert.Equal(t, 42, a.Popularity)
		assert.Equal(t, domain.FeedbackNone, a.Feedback)
		assert.True(t, domain.Scores{Sentiment: a.SentimentScore, Summary: a.GeneratedSummary, Similarity: a.SimilarityScore}.Complete())
	}
}

func TestPipelineBackendFailureContinuesWithNextQuery(t *testing.T) {
	t.Parallel()

	search := fakeSearch{
		"first":  {err: fmt.Errorf("%w: status 404", domain.ErrBackendFailure)},
		"second": {results: results("https://a.example/1")},
	}
	st := store.NewMemoryStore()
	p := newTestPipeline(search, st, nil, true)

	report, err := p.RunQueries(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Stored)

	all, err := st.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "second", all[0].Query)
}

func TestPipelineDeduplicatesKnownURLs(t *testing.T) {
	t.Parallel()

	search := fakeSearch{
		"golang": {results: results("https://a.example/1", "https://a.example/2")},
		"go":     {results: results("https://a.example/2")},
	}
	ctx := context.Background()

	st := store.NewMemoryStore()
	p := newTestPipeline(search, st, store.NewQueryList("golang", "go"), true)

	first, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Stored)
	assert.Equal(t, 1, first.Duplicates, "repeat within one run")

	second, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Stored)
	assert.Equal(t, 3, second.Duplicates)

	all, err := st.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPipelineRetriesURLAfterFailedFetch(t *testing.T) {
	t.Parallel()

	search := fakeSearch{
		"golang": {results: results("https://a.example/flaky")},
		"go":     {results: results("https://a.example/flaky")},
	}
	fetcher := &flakyFetcher{
		failOnce: map[string]bool{"https://a.example/flaky": true},
		calls:    map[string]int{},
	}
	st := store.NewMemoryStore()
	p := newTestPipeline(search, st, nil, true)
	p.fetcher = fetcher

	report, err := p.RunQueries(context.Background(), []string{"golang", "go"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Stored)
	assert.Equal(t, 0, report.Duplicates)
	assert.Equal(t, 1, report.Skipped[domain.FailureFetch])
	assert.Equal(t, 2, fetcher.calls["https://a.example/flaky"])

	all, err := st.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "go", all[0].Query)
}

func TestPipelineWithoutDeduplicationAppendsAgain(t *testing.T) {
	t.Parallel()

	search := fakeSearch{"golang": {results: results("https://a.example/1")}}
	ctx := context.Background()
	st := store.NewMemoryStore()
	p := newTestPipeline(search, st, store.NewQueryList("golang"), false)

	for range 2 {
		_, err := p.Run(ctx)
		require.NoError(t, err)
	}

	all, err := st.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.NotEqual(t, all[0].ID, all[1].ID)
}

func TestPipelineStoreErrorIsFatal(t *testing.T) {
	t.Parallel()

	search := fakeSearch{"golang": {results: results("https://a.example/1")}}
	p := NewPipeline(PipelineDeps{
		Search:   search,
		Fetcher:  fakeFetcher{},
		Analyzer: fakeAnalyzer{},
		Store:    failingStore{store.NewMemoryStore()},
	})

	_, err := p.RunQueries(context.Background(), []string{"golang"})
	assert.ErrorContains(t, err, "disk full")
}

func TestPipelineStopsOnCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := newTestPipeline(fakeSearch{}, store.NewMemoryStore(), nil, true)
	report, err := p.RunQueries(ctx, []string{"golang"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, report.Queries)
}

func TestPipelineRequiresCollaborators(t *testing.T) {
	t.Parallel()

	_, err := NewPipeline(PipelineDeps{}).RunQueries(context.Background(), []string{"q"})
	assert.Error(t, err)

	_, err = NewPipeline(PipelineDeps{}).Run(context.Background())
	assert.Error(t, err)
}

func TestRandomPopularity(t *testing.T) {
	t.Parallel()

	a, b := NewRandomPopularity(7), NewRandomPopularity(7)
	for range 200 {
		got := a.Popularity(context.Background(), domain.SearchResult{})
		assert.Equal(t, got, b.Popularity(context.Background(), domain.SearchResult{}))
		assert.GreaterOrEqual(t, got, domain.MinPopularity)
		assert.LessOrEqual(t, got, domain.MaxPopularity)
	}
}

func scored(id string, sentiment, similarity float64) domain.Article {
	return domain.Article{ID: id, SentimentScore: sentiment, SimilarityScore: similarity}
}

func ids(articles []domain.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}

func TestRankerFiltersAndOrders(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		scored("a", 0.9, 0.1),
		scored("b", 0.3, 0.9),
		scored("c", 0.5, 0.2),
		scored("d", 0.7, 0.5),
	}

	ranked := NewRanker(DefaultSentimentThreshold).Rank(articles)
	assert.Equal(t, []string{"a", "d", "c"}, ids(ranked))
}

func TestRankerTieBreaksOnSimilarityThenInputOrder(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		scored("x", 0.8, 0.2),
		scored("y", 0.8, 0.6),
		scored("z", 0.8, 0.2),
	}

	r := NewRanker(0.5)
	first := r.Rank(articles)
	assert.Equal(t, []string{"y", "x", "z"}, ids(first))
	assert.Equal(t, first, r.Rank(articles))
	assert.Equal(t, []string{"x", "y", "z"}, ids(articles), "input must not be reordered")
}

func interested(id string, popularity int) domain.Article {
	return domain.Article{ID: id, Popularity: popularity, Feedback: domain.FeedbackInterested}
}

func TestRecommenderStableOnTies(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{
		interested("X", 80),
		{ID: "skip", Popularity: 99, Feedback: domain.FeedbackNotInterested},
		interested("Y", 80),
		interested("Z", 95),
		{ID: "none", Popularity: 100},
	}

	r := NewRecommender(0)
	first := r.Recommend(articles)
	assert.Equal(t, []string{"Z", "X", "Y"}, ids(first))

	first[0].ID = "mutated"
	second := r.Recommend(articles)
	assert.Equal(t, []string{"Z", "X", "Y"}, ids(second), "each call returns a fresh slice")
}

func TestRecommenderLimit(t *testing.T) {
	t.Parallel()

	articles := []domain.Article{interested("a", 10), interested("b", 30), interested("c", 20)}
	assert.Equal(t, []string{"b", "c"}, ids(NewRecommender(2).Recommend(articles)))
}

func seededStore(t *testing.T) *store.MemoryStore {
	t.Helper()

	st := store.NewMemoryStore()
	ctx := context.Background()
	for i, pop := range []int{40, 90, 60} {
		a, err := domain.NewArticle(
			fmt.Sprintf("id-%d", i),
			"golang",
			domain.SearchResult{Title: fmt.Sprintf("T%d", i), ShortSummary: "S", URL: fmt.Sprintf("https://a.example/%d", i)},
			"content",
			domain.Scores{Sentiment: 0.7, Summary: "summary", Similarity: 0.3},
			pop,
			time.Now(),
		)
		require.NoError(t, err)
		require.NoError(t, st.Append(ctx, a))
	}
	require.NoError(t, st.SetFeedback(ctx, "id-0", domain.FeedbackInterested))
	require.NoError(t, st.SetFeedback(ctx, "id-2", domain.FeedbackInterested))
	return st
}

func TestSponsoredRecommendationsMarksStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st := seededStore(t)
	g := NewRevenueGenerator(RevenueDeps{Store: st, Recommender: NewRecommender(0)})

	recs, err := g.SponsoredRecommendations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"id-2", "id-0"}, ids(recs))
	for _, a := range recs {
		assert.True(t, a.Sponsored)
	}

	all, err := st.All(ctx)
	require.NoError(t, err)
	assert.True(t, all[0].Sponsored)
	assert.False(t, all[1].Sponsored)
	assert.True(t, all[2].Sponsored)
}

func TestSponsoredRecommendationsEmpty(t *testing.T) {
	t.Parallel()

	g := NewRevenueGenerator(RevenueDeps{Store: store.NewMemoryStore()})
	recs, err := g.SponsoredRecommendations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestRevenueChannelsDefaultToNotImplemented(t *testing.T) {
	t.Parallel()

	g := NewRevenueGenerator(RevenueDeps{Store: seededStore(t)})

	_, err := g.AdvertisingPartnerships(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotImplemented)

	_, err = g.AffiliateMarketing(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}

type recordingNotifier struct {
	calls [][]domain.Article
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, articles []domain.Article) error {
	n.calls = append(n.calls, articles)
	return n.err
}

type recordingNotifications struct {
	channels []string
	errs     []error
}

func (r *recordingNotifications) RecordNotification(channel string, err error) {
	r.channels = append(r.channels, channel)
	r.errs = append(r.errs, err)
}

func TestNotificationJobSendsRecommendations(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	metrics := &recordingNotifications{}
	job := NewNotificationJob(NotificationDeps{
		Store:    seededStore(t),
		Notifier: notifier,
		Channel:  "email",
		Metrics:  metrics,
	})

	require.NoError(t, job.Run(context.Background()))
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, []string{"id-2", "id-0"}, ids(notifier.calls[0]))
	assert.Equal(t, []string{"email"}, metrics.channels)
}

func TestNotificationJobSkipsEmptyList(t *testing.T) {
	t.Parallel()

	notifier := &recordingNotifier{}
	job := NewNotificationJob(NotificationDeps{Store: store.NewMemoryStore(), Notifier: notifier, Channel: "log"})

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, notifier.calls)
}

func TestNotificationJobReturnsNotifierError(t *testing.T) {
	t.Parallel()

	boom := errors.New("smtp down")
	metrics := &recordingNotifications{}
	job := NewNotificationJob(NotificationDeps{
		Store:    seededStore(t),
		Notifier: &recordingNotifier{err: boom},
		Channel:  "email",
		Metrics:  metrics,
	})

	err := job.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	require.Len(t, metrics.errs, 1)
	assert.ErrorIs(t, metrics.errs[0], boom)
}

type registeredJob struct {
	interval time.Duration
	clock    string
	run      func(context.Context) error
}

type fakeDriver struct {
	jobs map[string]registeredJob
	ran  bool
}

func (d *fakeDriver) Every(name string, interval time.Duration, job func(context.Context) error) {
	d.jobs[name] = registeredJob{interval: interval, run: job}
}

func (d *fakeDriver) DailyAt(name, clock string, job func(context.Context) error) error {
	d.jobs[name] = registeredJob{clock: clock, run: job}
	return nil
}

func (d *fakeDriver) Run(context.Context) error {
	d.ran = true
	return nil
}

func TestSchedulerRegistersJobs(t *testing.T) {
	t.Parallel()

	st := store.NewMemoryStore()
	search := fakeSearch{"golang": {results: results("https://a.example/1")}}
	pipeline := newTestPipeline(search, st, store.NewQueryList("golang"), true)
	notifier := &recordingNotifier{}
	job := NewNotificationJob(NotificationDeps{Store: st, Notifier: notifier, Channel: "log"})

	driver := &fakeDriver{jobs: map[string]registeredJob{}}
	s := NewScheduler(driver, pipeline, job, SchedulePlan{RefreshEvery: 24 * time.Hour, NotifyAt: "09:00"})
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, driver.ran)

	refresh := driver.jobs[RefreshJobName]
	assert.Equal(t, 24*time.Hour, refresh.interval)
	notify := driver.jobs[NotificationJobName]
	assert.Equal(t, "09:00", notify.clock)

	require.NoError(t, refresh.run(context.Background()))
	all, err := st.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, notify.run(context.Background()))
	assert.Empty(t, notifier.calls, "nothing marked interested yet")
}

func TestSchedulerRejectsBadPlan(t *testing.T) {
	t.Parallel()

	s := NewScheduler(&fakeDriver{jobs: map[string]registeredJob{}}, NewPipeline(PipelineDeps{}), NewNotificationJob(NotificationDeps{}), SchedulePlan{})
	assert.Error(t, s.Register())
}
