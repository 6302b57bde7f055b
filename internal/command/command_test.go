package command

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/store"
	"ContentCurator/internal/usecase"
)

type fakePipeline struct {
	runs int
}

func (p *fakePipeline) Run(context.Context) (domain.RunReport, error) {
	p.runs++
	report := domain.NewRunReport(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	report.Queries = 1
	report.Stored = 2
	return report, nil
}

func newDispatcher(t *testing.T) (*Dispatcher, *store.MemoryStore, *store.QueryList, *fakePipeline) {
	t.Helper()

	st := store.NewMemoryStore()
	ctx := context.Background()
	for i, sentiment := range []float64{0.2, 0.9, 0.6} {
		a, err := domain.NewArticle(
			fmt.Sprintf("id-%d", i),
			"golang",
			domain.SearchResult{Title: fmt.Sprintf("T%d", i), ShortSummary: "S", URL: fmt.Sprintf("https://a.example/%d", i)},
			"content",
			domain.Scores{Sentiment: sentiment, Summary: "summary", Similarity: 0.5},
			10*(i+1),
			time.Now(),
		)
		require.NoError(t, err)
		require.NoError(t, st.Append(ctx, a))
	}

	queries := store.NewQueryList("golang")
	pipeline := &fakePipeline{}
	recommender := usecase.NewRecommender(0)
	d := NewDispatcher(Deps{
		Pipeline:    pipeline,
		Store:       st,
		Queries:     queries,
		Ranker:      usecase.NewRanker(usecase.DefaultSentimentThreshold),
		Recommender: recommender,
		Revenue:     usecase.NewRevenueGenerator(usecase.RevenueDeps{Store: st, Recommender: recommender}),
	})
	return d, st, queries, pipeline
}

func articleIDs(articles []domain.Article) []string {
	out := make([]string, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}

func TestDispatchRunPipeline(t *testing.T) {
	t.Parallel()

	d, _, _, pipeline := newDispatcher(t)
	res, err := d.Dispatch(context.Background(), Command{Kind: RunPipeline})
	require.NoError(t, err)

	assert.Equal(t, 1, pipeline.runs)
	require.NotNil(t, res.Report)
	assert.Equal(t, 2, res.Report.Stored)
	assert.Contains(t, res.Message, "stored=2")
}

func TestDispatchRankingAndRecommendations(t *testing.T) {
	t.Parallel()

	d, _, _, _ := newDispatcher(t)
	ctx := context.Background()

	res, err := d.Dispatch(ctx, Command{Kind: ShowRanking})
	require.NoError(t, err)
	assert.Equal(t, []string{"id-1", "id-2"}, articleIDs(res.Articles))

	res, err = d.Dispatch(ctx, Command{Kind: ShowRecommendations})
	require.NoError(t, err)
	assert.Empty(t, res.Articles)

	for _, id := range []string{"id-0", "id-2"} {
		_, err = d.Dispatch(ctx, Command{Kind: SetFeedback, ArticleID: id, Feedback: domain.FeedbackInterested})
		require.NoError(t, err)
	}

	res, err = d.Dispatch(ctx, Command{Kind: ShowRecommendations})
	require.NoError(t, err)
	assert.Equal(t, []string{"id-2", "id-0"}, articleIDs(res.Articles))
}

func TestDispatchSetFeedbackUnknownArticle(t *testing.T) {
	t.Parallel()

	d, _, _, _ := newDispatcher(t)
	_, err := d.Dispatch(context.Background(), Command{Kind: SetFeedback, ArticleID: "nope", Feedback: domain.FeedbackInterested})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDispatchRevenue(t *testing.T) {
	t.Parallel()

	d, st, _, _ := newDispatcher(t)
	ctx := context.Background()
	require.NoError(t, st.SetFeedback(ctx, "id-1", domain.FeedbackInterested))

	res, err := d.Dispatch(ctx, Command{Kind: SponsoredRecommendations})
	require.NoError(t, err)
	require.Len(t, res.Articles, 1)
	assert.True(t, res.Articles[0].Sponsored)

	_, err = d.Dispatch(ctx, Command{Kind: AdvertisingPartnerships})
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	_, err = d.Dispatch(ctx, Command{Kind: AffiliateMarketing})
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}

func TestDispatchAddQuery(t *testing.T) {
	t.Parallel()

	d, _, queries, _ := newDispatcher(t)
	ctx := context.Background()

	res, err := d.Dispatch(ctx, Command{Kind: AddQuery, Query: "  rust  "})
	require.NoError(t, err)
	assert.Equal(t, `query "rust" added`, res.Message)

	_, err = d.Dispatch(ctx, Command{Kind: AddQuery, Query: " "})
	assert.ErrorIs(t, err, store.ErrEmptyQuery)

	got, err := queries.Queries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"golang", "rust"}, got)
}

func TestDispatchExitAndUnknown(t *testing.T) {
	t.Parallel()

	d, _, _, _ := newDispatcher(t)

	res, err := d.Dispatch(context.Background(), Command{Kind: Exit})
	require.NoError(t, err)
	assert.True(t, res.Exit)

	_, err = d.Dispatch(context.Background(), Command{Kind: Kind(99)})
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Equal(t, "kind(99)", Kind(99).String())
	assert.Equal(t, "run-pipeline", RunPipeline.String())
}
