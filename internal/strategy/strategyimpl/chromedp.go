package strategyimpl

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/normalizer"
	"github.com/orgball2608/insta-media-pipeline/internal/strategy"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

// Chromedp renders the profile page in an in-process headless Chrome and
// normalizes whatever the rendered document carries. Unlike the node
// subprocess it needs no external script, only a Chrome binary.
type Chromedp struct {
	timeout time.Duration
	logger  logger.Logger
	// render is swapped out in tests.
	render func(ctx context.Context, pageURL string) (string, error)
}

type ChromedpOpts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

func NewChromedp(opts ChromedpOpts) *Chromedp {
	c := &Chromedp{
		timeout: opts.Config.Providers.RequestTimeout,
		logger:  opts.Logger.WithComponent("ChromedpStrategy"),
	}
	c.render = c.renderPage
	return c
}

var _ strategy.Strategy = (*Chromedp)(nil)

func (c *Chromedp) Name() string { return "chromedp" }

func (c *Chromedp) renderPage(ctx context.Context, pageURL string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.UserAgent(browserUserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", pageURL, err)
	}
	return html, nil
}

func (c *Chromedp) FetchProfile(ctx context.Context, username string) (domain.Profile, error) {
	profile := domain.NewProfile(username)

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	html, err := c.render(runCtx, profileURL(username))
	if err != nil {
		return profile, err
	}
	if !normalizer.ContainsPrivateMarker([]byte(html)) {
		profile.IsPrivate = false
	}
	return profile, nil
}

func (c *Chromedp) FetchPosts(ctx context.Context, username string, count int) ([]domain.Post, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	html, err := c.render(runCtx, profileURL(username))
	if err != nil {
		return nil, err
	}
	payload := []byte(html)
	if normalizer.ContainsPrivateMarker(payload) {
		return nil, strategy.ErrPrivateAccount
	}

	posts := normalizer.Normalize(payload, normalizer.ShapeGraphEdges, username)
	if len(posts) == 0 {
		posts = normalizer.Normalize(payload, normalizer.ShapeHTMLEmbedded, username)
	}
	if len(posts) == 0 {
		c.logger.Info("Rendered page had no usable posts", "username", username)
		return nil, nil
	}
	if len(posts) > count {
		posts = posts[:count]
	}
	c.logger.Info("Rendered posts via headless chrome", "username", username, "count", len(posts))
	return posts, nil
}
