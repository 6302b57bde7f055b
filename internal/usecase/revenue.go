package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/logging"
	"ContentCurator/internal/ports"
)

// UnimplementedChannel is the default partner integration; it always fails with ErrNotImplemented.
type UnimplementedChannel struct {
	Name string
}

var _ ports.RevenueChannel = UnimplementedChannel{}

// Apply reports that the integration does not exist yet.
func (c UnimplementedChannel) Apply(context.Context, []domain.Article) ([]domain.Article, error) {
	return nil, fmt.Errorf("%s: %w", c.Name, domain.ErrNotImplemented)
}

// RevenueDeps wires the monetization paths.
type RevenueDeps struct {
	Store       ports.ArticleStore
	Recommender Recommender
	Advertising ports.RevenueChannel
	Affiliate   ports.RevenueChannel
	Logger      *slog.Logger
}

// RevenueGenerator turns recommendations into sponsored content and partner hand-offs.
type RevenueGenerator struct {
	store       ports.ArticleStore
	recommender Recommender
	advertising ports.RevenueChannel
	affiliate   ports.RevenueChannel
	logger      *slog.Logger
}

// NewRevenueGenerator fills missing channels with UnimplementedChannel.
func NewRevenueGenerator(deps RevenueDeps) *RevenueGenerator {
	g := &RevenueGenerator{
		store:       deps.Store,
		recommender: deps.Recommender,
		advertising: deps.Advertising,
		affiliate:   deps.Affiliate,
		logger:      logging.OrDiscard(deps.Logger).With("component", "revenue"),
	}
	if g.advertising == nil {
		g.advertising = UnimplementedChannel{Name: "advertising partnerships"}
	}
	if g.affiliate == nil {
		g.affiliate = UnimplementedChannel{Name: "affiliate marketing"}
	}
	return g
}

// SponsoredRecommendations marks the current recommendations as sponsored and returns them.
func (g *RevenueGenerator) SponsoredRecommendations(ctx context.Context) ([]domain.Article, error) {
	if g.store == nil {
		return nil, errors.New("revenue generator has no store")
	}
	recs, err := g.recommender.RecommendStore(ctx, g.store)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return recs, nil
	}

	ids := make([]string, len(recs))
	for i := range recs {
		ids[i] = recs[i].ID
		recs[i].Sponsored = true
	}
	if err := g.store.MarkSponsored(ctx, ids...); err != nil {
		return nil, fmt.Errorf("mark sponsored: %w", err)
	}

	g.logger.Info("sponsored recommendations", "articles", len(recs))
	return recs, nil
}

// AdvertisingPartnerships hands the recommendations to the advertising channel.
func (g *RevenueGenerator) AdvertisingPartnerships(ctx context.Context) ([]domain.Article, error) {
	return g.apply(ctx, g.advertising)
}

// AffiliateMarketing hands the recommendations to the affiliate channel.
func (g *RevenueGenerator) AffiliateMarketing(ctx context.Context) ([]domain.Article, error) {
	return g.apply(ctx, g.affiliate)
}

func (g *RevenueGenerator) apply(ctx context.Context, channel ports.RevenueChannel) ([]domain.Article, error) {
	var recs []domain.Article
	if g.store != nil {
		var err error
		if recs, err = g.recommender.RecommendStore(ctx, g.store); err != nil {
			return nil, err
		}
	}
	return channel.Apply(ctx, recs)
}
