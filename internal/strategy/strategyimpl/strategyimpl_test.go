package strategyimpl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Davincible/goinsta/v3"
	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/ratelimit"
	"github.com/orgball2608/insta-media-pipeline/internal/strategy"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	apperrors "github.com/orgball2608/insta-media-pipeline/pkg/errors"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() logger.Logger { return logger.New(logger.Opts{}) }

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Providers.RequestTimeout = 5 * time.Second
	return cfg
}

func newTestGraphAPI(t *testing.T, handler http.Handler) *GraphAPI {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := testConfig()
	cfg.GraphAPI.AccessToken = "test-token"
	cfg.GraphAPI.BaseURL = server.URL

	return NewGraphAPI(GraphAPIOpts{
		Config: cfg,
		Pacer:  ratelimit.NewProviderPacer(time.Microsecond),
		Logger: testLogger(),
	})
}

func TestGraphAPINotConfigured(t *testing.T) {
	cfg := testConfig()
	g := NewGraphAPI(GraphAPIOpts{
		Config: cfg,
		Pacer:  ratelimit.NewProviderPacer(time.Microsecond),
		Logger: testLogger(),
	})

	_, err := g.FetchPosts(context.Background(), "alice", 5)
	assert.ErrorIs(t, err, strategy.ErrNotConfigured)
}

func TestGraphAPIPaginatesWithCursor(t *testing.T) {
	var pages atomic.Int32
	g := newTestGraphAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-token", r.URL.Query().Get("access_token"))

		switch r.URL.Query().Get("after") {
		case "":
			pages.Add(1)
			fmt.Fprint(w, `{"data":[{"id":"a","media_url":"https://x/a.jpg"}],"paging":{"cursors":{"after":"cur1"}}}`)
		case "cur1":
			pages.Add(1)
			fmt.Fprint(w, `{"data":[{"id":"b","media_url":"https://x/b.jpg"}]}`)
		default:
			t.Fatalf("unexpected cursor %q", r.URL.Query().Get("after"))
		}
	}))

	posts, err := g.FetchPosts(context.Background(), "alice", 5)

	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "a", posts[0].ID)
	assert.Equal(t, "b", posts[1].ID)
	assert.Equal(t, int32(2), pages.Load())
}

func TestGraphAPIFailsFastOnAuthError(t *testing.T) {
	var calls atomic.Int32
	g := newTestGraphAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := g.FetchPosts(context.Background(), "alice", 5)

	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Equal(t, int32(1), calls.Load(), "authorization errors must not be retried")
}

func newTestRapidAPI(t *testing.T, handler http.Handler) (*RapidAPI, *atomic.Int32) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := testConfig()
	cfg.RapidAPI.Key = "test-key"
	cfg.RapidAPI.Host = "test-host"
	cfg.RapidAPI.BaseURL = server.URL
	cfg.RapidAPI.MaxAttempts = 2
	cfg.RapidAPI.RetryBackoff = time.Second

	r := NewRapidAPI(RapidAPIOpts{Config: cfg, Logger: testLogger()})

	var sleeps atomic.Int32
	r.sleep = func(context.Context, time.Duration) error {
		sleeps.Add(1)
		return nil
	}
	return r, &sleeps
}

func TestRapidAPIFallsThroughCandidateEndpoints(t *testing.T) {
	r, sleeps := newTestRapidAPI(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		require.Equal(t, "test-key", req.Header.Get("X-RapidAPI-Key"))
		require.Equal(t, "test-host", req.Header.Get("X-RapidAPI-Host"))

		switch req.URL.Path {
		case "/user-posts":
			w.WriteHeader(http.StatusTooManyRequests)
		case "/user-full-posts":
			w.WriteHeader(http.StatusForbidden)
		case "/user-stories":
			fmt.Fprint(w, `{"items":[{"id":"s1","image_url":"https://x/s1.jpg"}]}`)
		default:
			t.Fatalf("unexpected endpoint %s", req.URL.Path)
		}
	}))

	posts, err := r.FetchPosts(context.Background(), "alice", 5)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "s1", posts[0].ID)
	assert.Equal(t, domain.CategoryStory, posts[0].Category, "stories endpoint sets the story category")
	assert.Equal(t, int32(1), sleeps.Load(), "the 429 must trigger exactly one backoff sleep")
}

func TestRapidAPIExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	r, sleeps := newTestRapidAPI(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := r.FetchPosts(context.Background(), "alice", 5)

	require.Error(t, err)
	// Two full passes over the five candidate endpoints.
	assert.Equal(t, int32(10), calls.Load())
	// One inter-attempt backoff between the passes.
	assert.Equal(t, int32(1), sleeps.Load())
}

func TestRapidAPIProfile(t *testing.T) {
	r, _ := newTestRapidAPI(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		require.Equal(t, "/user-profile", req.URL.Path)
		require.Equal(t, "alice", req.URL.Query().Get("username"))
		fmt.Fprint(w, `{"username":"alice","full_name":"Alice A","followers_count":420,"is_private":false}`)
	}))

	profile, err := r.FetchProfile(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, "Alice A", profile.FullName)
	assert.Equal(t, 420, profile.FollowersCount)
	assert.False(t, profile.IsPrivate)
}

func TestNewChainHonorsPriorityAndConfiguration(t *testing.T) {
	cfg := testConfig()
	cfg.Providers.Priority = []string{"htmlscrape", "manual"}

	chain, err := NewChain(ChainOpts{
		Config:     cfg,
		GraphAPI:   NewGraphAPI(GraphAPIOpts{Config: cfg, Pacer: ratelimit.NewProviderPacer(time.Microsecond), Logger: testLogger()}),
		RapidAPI:   NewRapidAPI(RapidAPIOpts{Config: cfg, Logger: testLogger()}),
		SessionAPI: NewSessionAPI(SessionAPIOpts{Config: cfg, Pacer: ratelimit.NewProviderPacer(time.Microsecond), Logger: testLogger()}),
		Browser:    &Browser{logger: testLogger()},
		Chromedp:   NewChromedp(ChromedpOpts{Config: cfg, Logger: testLogger()}),
		HTMLScrape: NewHTMLScrape(HTMLScrapeOpts{Config: cfg, Logger: testLogger()}),
		Manual:     NewManual(ManualOpts{Config: cfg, Logger: testLogger()}),
	})

	require.NoError(t, err)
	require.Len(t, chain, 2, "unconfigured credentialed strategies stay out of the chain")
	assert.Equal(t, "htmlscrape", chain[0].Name())
	assert.Equal(t, "manual", chain[1].Name())
}

func TestNewChainRejectsUnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Providers.Priority = []string{"carrier-pigeon"}

	_, err := NewChain(ChainOpts{
		Config:     cfg,
		GraphAPI:   NewGraphAPI(GraphAPIOpts{Config: cfg, Pacer: ratelimit.NewProviderPacer(time.Microsecond), Logger: testLogger()}),
		RapidAPI:   NewRapidAPI(RapidAPIOpts{Config: cfg, Logger: testLogger()}),
		SessionAPI: NewSessionAPI(SessionAPIOpts{Config: cfg, Pacer: ratelimit.NewProviderPacer(time.Microsecond), Logger: testLogger()}),
		Browser:    &Browser{logger: testLogger()},
		Chromedp:   NewChromedp(ChromedpOpts{Config: cfg, Logger: testLogger()}),
		HTMLScrape: NewHTMLScrape(HTMLScrapeOpts{Config: cfg, Logger: testLogger()}),
		Manual:     NewManual(ManualOpts{Config: cfg, Logger: testLogger()}),
	})

	assert.Error(t, err)
}

func TestExtractSharedData(t *testing.T) {
	page := []byte(`<html><script>window._sharedData = {"entry_data":{"ProfilePage":[]}};</script></html>`)

	blob := extractSharedData(page)

	require.NotNil(t, blob)
	assert.JSONEq(t, `{"entry_data":{"ProfilePage":[]}}`, string(blob))
}

func TestExtractSharedDataAbsent(t *testing.T) {
	assert.Nil(t, extractSharedData([]byte(`<html><body>nothing here</body></html>`)))
}

func TestRapidAPIUnparsablePayloadIsEmptyNotFailed(t *testing.T) {
	r, _ := newTestRapidAPI(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"surprise":"schema of the week"}`))
	}))

	posts, err := r.FetchPosts(context.Background(), "alice", 5)

	require.NoError(t, err)
	assert.Empty(t, posts)
}

type pageTransport struct {
	status int
	body   string
}

func (p pageTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: p.status,
		Header:     make(http.Header),
		Body:       io.NopCloser(strings.NewReader(p.body)),
		Request:    req,
	}, nil
}

func newTestHTMLScrape(status int, body string) *HTMLScrape {
	return &HTMLScrape{
		client: &http.Client{Transport: pageTransport{status: status, body: body}},
		logger: testLogger(),
	}
}

func TestHTMLScrapeUnparsablePageIsEmptyNotFailed(t *testing.T) {
	h := newTestHTMLScrape(http.StatusOK, "<html><body>consent wall</body></html>")

	posts, err := h.FetchPosts(context.Background(), "alice", 5)

	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestHTMLScrapePrivateMarker(t *testing.T) {
	h := newTestHTMLScrape(http.StatusOK, `<html>{"user":{"is_private":true}}</html>`)

	_, err := h.FetchPosts(context.Background(), "alice", 5)

	assert.ErrorIs(t, err, strategy.ErrPrivateAccount)
}

func TestHTMLScrapeMissingAccount(t *testing.T) {
	h := newTestHTMLScrape(http.StatusNotFound, "")

	_, err := h.FetchPosts(context.Background(), "ghost", 5)

	assert.True(t, apperrors.IsNotFound(err))
}

func newTestChromedp(render func(ctx context.Context, pageURL string) (string, error)) *Chromedp {
	c := &Chromedp{timeout: time.Second, logger: testLogger()}
	c.render = render
	return c
}

func TestChromedpNormalizesRenderedPage(t *testing.T) {
	c := newTestChromedp(func(context.Context, string) (string, error) {
		return `<html><head><meta property="og:image" content="https://x/og.jpg"></head></html>`, nil
	})

	posts, err := c.FetchPosts(context.Background(), "alice", 5)

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "https://x/og.jpg", posts[0].MediaURL)
}

func TestChromedpPrivateMarker(t *testing.T) {
	c := newTestChromedp(func(context.Context, string) (string, error) {
		return `<html>{"user":{"is_private":true}}</html>`, nil
	})

	_, err := c.FetchPosts(context.Background(), "alice", 5)

	assert.ErrorIs(t, err, strategy.ErrPrivateAccount)
}

func TestChromedpUnparsableRenderIsEmptyNotFailed(t *testing.T) {
	c := newTestChromedp(func(context.Context, string) (string, error) {
		return "<html><body>interstitial</body></html>", nil
	})

	posts, err := c.FetchPosts(context.Background(), "alice", 5)

	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestSessionAPIConvertFlattensItemID(t *testing.T) {
	s := &SessionAPI{logger: testLogger()}

	item := &goinsta.Item{
		ID:   "3250885544",
		Code: "abc",
		Images: goinsta.Images{Versions: []goinsta.Candidate{
			{Width: 1080, Height: 1080, URL: "https://x/a.jpg"},
		}},
	}

	posts := s.convert(item, "alice")
	require.Len(t, posts, 1)
	assert.Equal(t, "3250885544", posts[0].ID)
	assert.Equal(t, "https://x/a.jpg", posts[0].MediaURL)

	// Some payload variants ship the id as a JSON number.
	item.ID = float64(98765)
	posts = s.convert(item, "alice")
	require.Len(t, posts, 1)
	assert.Equal(t, "98765", posts[0].ID)
}

func TestSessionAPILoginIsSingleFlight(t *testing.T) {
	var calls atomic.Int32
	s := &SessionAPI{
		username: "user",
		password: "pass",
		logger:   testLogger(),
	}
	s.connect = func(context.Context) (*goinsta.Instagram, error) {
		calls.Add(1)
		time.Sleep(10 * time.Millisecond)
		return &goinsta.Instagram{}, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.login(context.Background()))
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	assert.NotNil(t, s.client)
}
