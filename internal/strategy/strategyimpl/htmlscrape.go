package strategyimpl

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/nodescraper"
	"github.com/orgball2608/insta-media-pipeline/internal/normalizer"
	"github.com/orgball2608/insta-media-pipeline/internal/strategy"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	apperrors "github.com/orgball2608/insta-media-pipeline/pkg/errors"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

var sharedDataMarker = []byte("window._sharedData")

// HTMLScrape pulls the public profile page over plain HTTP and mines the
// embedded data blobs. It is the cheapest strategy and the first to break
// when the page markup changes, so it sits late in the chain.
type HTMLScrape struct {
	client *http.Client
	logger logger.Logger
}

type HTMLScrapeOpts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

func NewHTMLScrape(opts HTMLScrapeOpts) *HTMLScrape {
	return &HTMLScrape{
		client: newHTTPClient(opts.Config.Providers.RequestTimeout),
		logger: opts.Logger.WithComponent("HTMLScrapeStrategy"),
	}
}

var _ strategy.Strategy = (*HTMLScrape)(nil)

func (h *HTMLScrape) Name() string { return "htmlscrape" }

func (h *HTMLScrape) FetchProfile(ctx context.Context, username string) (domain.Profile, error) {
	profile := domain.NewProfile(username)
	page, err := h.fetchPage(ctx, username)
	if err != nil {
		return profile, err
	}
	if !normalizer.ContainsPrivateMarker(page) {
		profile.IsPrivate = false
	}
	return profile, nil
}

func (h *HTMLScrape) FetchPosts(ctx context.Context, username string, count int) ([]domain.Post, error) {
	page, err := h.fetchPage(ctx, username)
	if err != nil {
		return nil, err
	}
	if normalizer.ContainsPrivateMarker(page) {
		return nil, strategy.ErrPrivateAccount
	}

	// The shared-data blob, when present, carries the full GraphQL user
	// object; the meta tags are the fallback and yield images only.
	var posts []domain.Post
	if blob := extractSharedData(page); blob != nil {
		posts = normalizer.Normalize(blob, normalizer.ShapeGraphEdges, username)
	}
	if len(posts) == 0 {
		posts = normalizer.Normalize(page, normalizer.ShapeHTMLEmbedded, username)
	}
	if len(posts) == 0 {
		// The page loaded fine, it just carried nothing we could mine.
		h.logger.Info("Profile page had no usable posts", "username", username)
		return nil, nil
	}
	if len(posts) > count {
		posts = posts[:count]
	}
	h.logger.Info("Scraped posts from profile page", "username", username, "count", len(posts))
	return posts, nil
}

func (h *HTMLScrape) fetchPage(ctx context.Context, username string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, profileURL(username), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build profile request: %w", err)
	}
	setBrowserHeaders(req)

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("profile page request failed: %w", err)
	}
	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile page: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.Wrap(apperrors.ErrNotFound, fmt.Sprintf("account @%s not found", username))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("profile page returned status %d", resp.StatusCode)
	}
	return body, nil
}

// extractSharedData recovers the JSON object assigned to window._sharedData,
// or nil when the page does not inline it.
func extractSharedData(page []byte) []byte {
	idx := bytes.Index(page, sharedDataMarker)
	if idx < 0 {
		return nil
	}
	blob, err := nodescraper.ExtractJSON(page[idx:])
	if err != nil {
		return nil
	}
	return blob
}
