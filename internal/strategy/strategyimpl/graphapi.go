package strategyimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/normalizer"
	"github.com/orgball2608/insta-media-pipeline/internal/ratelimit"
	"github.com/orgball2608/insta-media-pipeline/internal/strategy"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	apperrors "github.com/orgball2608/insta-media-pipeline/pkg/errors"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

const graphPageLimit = 25 // API-side maximum per page

// GraphAPI fetches the authenticated account's own media through the
// first-party token API. Authorization errors fail fast: a bad token does
// not get better by retrying.
type GraphAPI struct {
	baseURL string
	token   string
	client  *http.Client
	pacer   ratelimit.Pacer
	logger  logger.Logger
}

type GraphAPIOpts struct {
	fx.In

	Config *config.Config
	Pacer  ratelimit.Pacer
	Logger logger.Logger
}

func NewGraphAPI(opts GraphAPIOpts) *GraphAPI {
	return &GraphAPI{
		baseURL: opts.Config.GraphAPI.BaseURL,
		token:   opts.Config.GraphAPI.AccessToken,
		client:  newHTTPClient(opts.Config.Providers.RequestTimeout),
		pacer:   opts.Pacer,
		logger:  opts.Logger.WithComponent("GraphAPIStrategy"),
	}
}

var _ strategy.Strategy = (*GraphAPI)(nil)

func (g *GraphAPI) Name() string { return "graphapi" }

func (g *GraphAPI) Configured() bool { return g.token != "" }

func (g *GraphAPI) FetchProfile(ctx context.Context, username string) (domain.Profile, error) {
	profile := domain.NewProfile(username)
	if !g.Configured() {
		return profile, strategy.ErrNotConfigured
	}

	body, err := g.get(ctx, "/me", url.Values{
		"fields": {"id,username,account_type,media_count"},
	})
	if err != nil {
		return profile, err
	}

	var me struct {
		Username   string `json:"username"`
		MediaCount int    `json:"media_count"`
	}
	if err := json.Unmarshal(body, &me); err != nil {
		return profile, fmt.Errorf("failed to decode account info: %w", err)
	}

	if me.Username != "" {
		profile.Username = me.Username
		profile.FullName = me.Username
	}
	profile.PostsCount = me.MediaCount
	// The token grants access to this account, so it is not private to us.
	profile.IsPrivate = false
	return profile, nil
}

func (g *GraphAPI) FetchPosts(ctx context.Context, username string, count int) ([]domain.Post, error) {
	if !g.Configured() {
		return nil, strategy.ErrNotConfigured
	}

	var posts []domain.Post
	after := ""
	for len(posts) < count {
		// Fixed pacing between pages keeps us inside the API rate limit.
		if err := g.pacer.Wait(ctx, g.Name()); err != nil {
			return posts, err
		}

		remaining := count - len(posts)
		limit := graphPageLimit
		if remaining < limit {
			limit = remaining
		}

		params := url.Values{
			"fields": {"id,caption,media_type,media_url,thumbnail_url,permalink,timestamp"},
			"limit":  {fmt.Sprint(limit)},
		}
		if after != "" {
			params.Set("after", after)
		}

		body, err := g.get(ctx, "/me/media", params)
		if err != nil {
			return posts, err
		}

		page := normalizer.Normalize(body, normalizer.ShapeItemList, username)
		if len(page) == 0 {
			break
		}
		posts = append(posts, page...)

		var paging struct {
			Paging struct {
				Cursors struct {
					After string `json:"after"`
				} `json:"cursors"`
			} `json:"paging"`
		}
		if err := json.Unmarshal(body, &paging); err != nil || paging.Paging.Cursors.After == "" {
			break
		}
		after = paging.Paging.Cursors.After
	}

	if len(posts) > count {
		posts = posts[:count]
	}
	return posts, nil
}

func (g *GraphAPI) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	params.Set("access_token", g.token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build graph API request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph API request failed: %w", err)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph API response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		// Fail fast, no retry: the token itself is the problem.
		return nil, apperrors.WrapWithCode(apperrors.ErrUnauthorized, fmt.Sprint(resp.StatusCode), "graph API rejected the access token")
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.Wrap(apperrors.ErrRateLimited, "graph API rate limit hit")
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("graph API returned status %d", resp.StatusCode)
	}
	return body, nil
}
