package strategyimpl

import (
	"context"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/nodescraper"
	"github.com/orgball2608/insta-media-pipeline/internal/normalizer"
	"github.com/orgball2608/insta-media-pipeline/internal/strategy"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

// Browser drives the external node scraper subprocess. It survives
// anti-bot measures the plain HTTP strategies cannot, at the cost of node
// and a headless browser being installed on the host.
type Browser struct {
	runner *nodescraper.Runner
	logger logger.Logger
}

type BrowserOpts struct {
	fx.In

	Runner *nodescraper.Runner
	Logger logger.Logger
}

func NewBrowser(opts BrowserOpts) *Browser {
	return &Browser{
		runner: opts.Runner,
		logger: opts.Logger.WithComponent("BrowserStrategy"),
	}
}

var _ strategy.Strategy = (*Browser)(nil)

func (b *Browser) Name() string { return "nodescraper" }

func (b *Browser) FetchProfile(ctx context.Context, username string) (domain.Profile, error) {
	profile := domain.NewProfile(username)
	payload, err := b.runner.Scrape(ctx, username, 1)
	if err != nil {
		return profile, err
	}
	if normalizer.ContainsPrivateMarker(payload) {
		return profile, nil
	}
	profile.IsPrivate = false
	return profile, nil
}

func (b *Browser) FetchPosts(ctx context.Context, username string, count int) ([]domain.Post, error) {
	payload, err := b.runner.Scrape(ctx, username, count)
	if err != nil {
		return nil, err
	}
	if normalizer.ContainsPrivateMarker(payload) {
		return nil, strategy.ErrPrivateAccount
	}

	posts := normalizer.Normalize(payload, normalizer.ShapeItemList, username)
	if len(posts) == 0 {
		posts = normalizer.Normalize(payload, normalizer.ShapeGraphEdges, username)
	}
	if len(posts) == 0 {
		b.logger.Info("Scraper payload had no usable posts", "username", username)
		return nil, nil
	}
	if len(posts) > count {
		posts = posts[:count]
	}
	b.logger.Info("Scraped posts via node", "username", username, "count", len(posts))
	return posts, nil
}
