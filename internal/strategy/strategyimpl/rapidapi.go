package strategyimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/normalizer"
	"github.com/orgball2608/insta-media-pipeline/internal/strategy"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

// rapidEndpoint maps one candidate endpoint to the media category its posts
// belong to.
type rapidEndpoint struct {
	name     string
	category domain.MediaCategory
}

// Candidate order is fixed; each attempt walks the whole list before the
// next attempt starts.
var rapidPostEndpoints = []rapidEndpoint{
	{"user-posts", domain.CategoryPost},
	{"user-full-posts", domain.CategoryPost},
	{"user-stories", domain.CategoryStory},
	{"user-reels", domain.CategoryReel},
	{"user-igtv", domain.CategoryIGTV},
}

// RapidAPI fetches through a third-party scraping API. The provider is
// flaky by nature: endpoints come and go, schemas drift, and 429/403
// responses are routine, so every candidate failure just moves on to the
// next one.
type RapidAPI struct {
	baseURL     string
	key         string
	host        string
	backoff     time.Duration
	maxAttempts int
	client      *http.Client
	logger      logger.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

type RapidAPIOpts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

func NewRapidAPI(opts RapidAPIOpts) *RapidAPI {
	return &RapidAPI{
		baseURL:     opts.Config.RapidAPI.BaseURL,
		key:         opts.Config.RapidAPI.Key,
		host:        opts.Config.RapidAPI.Host,
		backoff:     opts.Config.RapidAPI.RetryBackoff,
		maxAttempts: opts.Config.RapidAPI.MaxAttempts,
		client:      newHTTPClient(opts.Config.Providers.RequestTimeout),
		logger:      opts.Logger.WithComponent("RapidAPIStrategy"),
		sleep:       sleepCtx,
	}
}

var _ strategy.Strategy = (*RapidAPI)(nil)

func (r *RapidAPI) Name() string { return "rapidapi" }

func (r *RapidAPI) Configured() bool { return r.key != "" }

func (r *RapidAPI) FetchProfile(ctx context.Context, username string) (domain.Profile, error) {
	profile := domain.NewProfile(username)
	if !r.Configured() {
		return profile, strategy.ErrNotConfigured
	}

	body, status, err := r.get(ctx, "user-profile", username)
	if err != nil {
		return profile, err
	}
	if status != http.StatusOK {
		return profile, fmt.Errorf("profile endpoint returned status %d", status)
	}

	var raw struct {
		Username       string `json:"username"`
		FullName       string `json:"full_name"`
		Biography      string `json:"biography"`
		FollowersCount int    `json:"followers_count"`
		FollowingCount int    `json:"following_count"`
		PostsCount     int    `json:"posts_count"`
		IsPrivate      *bool  `json:"is_private"`
		IsVerified     bool   `json:"is_verified"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return profile, fmt.Errorf("failed to decode profile: %w", err)
	}

	if raw.Username != "" {
		profile.Username = raw.Username
	}
	if raw.FullName != "" {
		profile.FullName = raw.FullName
	}
	profile.Biography = raw.Biography
	profile.FollowersCount = raw.FollowersCount
	profile.FollowingCount = raw.FollowingCount
	profile.PostsCount = raw.PostsCount
	if raw.IsPrivate != nil {
		profile.IsPrivate = *raw.IsPrivate
	}
	profile.IsVerified = raw.IsVerified
	return profile, nil
}

// FetchPosts walks the candidate endpoints in fixed order, across up to
// maxAttempts passes with a backoff sleep in between. A 429 sleeps then
// moves to the next candidate; a 403 fails that endpoint only; any 2xx is
// handed to the normalizer. A 2xx that normalizes to nothing makes the
// whole fetch an empty success rather than a failure.
func (r *RapidAPI) FetchPosts(ctx context.Context, username string, count int) ([]domain.Post, error) {
	if !r.Configured() {
		return nil, strategy.ErrNotConfigured
	}

	var lastErr error
	var emptyPayload bool
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := r.sleep(ctx, r.backoff); err != nil {
				return nil, err
			}
		}

		for _, endpoint := range rapidPostEndpoints {
			body, status, err := r.get(ctx, endpoint.name, username)
			if err != nil {
				lastErr = err
				continue
			}

			switch {
			case status == http.StatusTooManyRequests:
				r.logger.Warn("Rate limited, backing off", "endpoint", endpoint.name, "username", username)
				lastErr = fmt.Errorf("endpoint %s rate limited", endpoint.name)
				if err := r.sleep(ctx, r.backoff); err != nil {
					return nil, err
				}
				continue
			case status == http.StatusForbidden:
				// This endpoint only; the next candidate may still work.
				r.logger.Debug("Endpoint forbidden", "endpoint", endpoint.name, "username", username)
				lastErr = fmt.Errorf("endpoint %s forbidden", endpoint.name)
				continue
			case status < 200 || status > 299:
				lastErr = fmt.Errorf("endpoint %s returned status %d", endpoint.name, status)
				continue
			}

			posts := r.parse(body, endpoint, username)
			if len(posts) == 0 {
				r.logger.Debug("Endpoint payload had no usable posts", "endpoint", endpoint.name, "username", username)
				emptyPayload = true
				continue
			}

			r.logger.Info("Fetched posts", "endpoint", endpoint.name, "username", username, "count", len(posts))
			if len(posts) > count {
				posts = posts[:count]
			}
			return posts, nil
		}
	}

	if emptyPayload {
		// The provider answered, it just had nothing we could use.
		r.logger.Info("No endpoint payload was usable", "username", username)
		return nil, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("all endpoints failed for @%s", username)
	}
	return nil, lastErr
}

// parse tries the flat item-list shape first, then the GraphQL shape: the
// provider has shipped both for the same endpoints.
func (r *RapidAPI) parse(body []byte, endpoint rapidEndpoint, username string) []domain.Post {
	posts := normalizer.Normalize(body, normalizer.ShapeItemList, username)
	if len(posts) == 0 {
		posts = normalizer.Normalize(body, normalizer.ShapeGraphEdges, username)
	}
	for i := range posts {
		if posts[i].Category == domain.CategoryPost {
			posts[i].Category = endpoint.category
		}
	}
	return posts
}

func (r *RapidAPI) get(ctx context.Context, endpoint, username string) ([]byte, int, error) {
	params := url.Values{"username": {username}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s?%s", r.baseURL, endpoint, params.Encode()), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("X-RapidAPI-Key", r.key)
	req.Header.Set("X-RapidAPI-Host", r.host)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read %s response: %w", endpoint, err)
	}
	return body, resp.StatusCode, nil
}

// sleepCtx sleeps honoring ctx cancellation.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
