package orchestrator

import (
	"context"
	"errors"
	"testing"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/strategy"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStrategy struct {
	name    string
	posts   []domain.Post
	err     error
	invoked bool
}

func (s *stubStrategy) Name() string { return s.name }

func (s *stubStrategy) FetchProfile(context.Context, string) (domain.Profile, error) {
	return domain.NewProfile("alice"), s.err
}

func (s *stubStrategy) FetchPosts(context.Context, string, int) ([]domain.Post, error) {
	s.invoked = true
	return s.posts, s.err
}

func imagePosts(ids ...string) []domain.Post {
	posts := make([]domain.Post, 0, len(ids))
	for _, id := range ids {
		posts = append(posts, domain.Post{
			ID:          id,
			MediaURL:    "https://x/" + id + ".jpg",
			ContentType: domain.ContentTypeImage,
			Category:    domain.CategoryPost,
		})
	}
	return posts
}

func newTestOrchestrator(t *testing.T, chain ...strategy.Strategy) *Orchestrator {
	t.Helper()
	o, err := New(Opts{Chain: chain, Logger: logger.New(logger.Opts{})})
	require.NoError(t, err)
	return o
}

func TestNewFailsWithoutStrategies(t *testing.T) {
	_, err := New(Opts{Logger: logger.New(logger.Opts{})})
	assert.Error(t, err)
}

func TestFetchHaltsAtFirstContent(t *testing.T) {
	a := &stubStrategy{name: "a"}
	b := &stubStrategy{name: "b", posts: imagePosts("b1", "b2", "b3")}
	c := &stubStrategy{name: "c", posts: imagePosts("c1", "c2", "c3", "c4")}
	o := newTestOrchestrator(t, a, b, c)

	result := o.Fetch(context.Background(), "alice", 10)

	assert.Equal(t, "b", result.StrategyUsed)
	assert.Equal(t, 3, result.TotalPosts())
	assert.False(t, c.invoked, "later strategies must never run once satisfied")

	require.Len(t, result.Diagnostics, 3)
	assert.Equal(t, domain.OutcomeSucceededEmpty, result.Diagnostics[0].Outcome)
	assert.Equal(t, domain.OutcomeSucceededWithContent, result.Diagnostics[1].Outcome)
	assert.Equal(t, domain.OutcomeSkipped, result.Diagnostics[2].Outcome)
}

func TestFetchExhaustion(t *testing.T) {
	a := &stubStrategy{name: "a", err: errors.New("connect refused")}
	b := &stubStrategy{name: "b"}
	c := &stubStrategy{name: "c", err: errors.New("status 500")}
	o := newTestOrchestrator(t, a, b, c)

	result := o.Fetch(context.Background(), "alice", 10)

	assert.Empty(t, result.StrategyUsed)
	assert.Zero(t, result.TotalPosts())
	require.Len(t, result.Diagnostics, 3)
	assert.Equal(t, domain.OutcomeFailed, result.Diagnostics[0].Outcome)
	assert.Equal(t, "connect refused", result.Diagnostics[0].Reason)
	assert.Equal(t, domain.OutcomeSucceededEmpty, result.Diagnostics[1].Outcome)
	assert.Equal(t, domain.OutcomeFailed, result.Diagnostics[2].Outcome)
}

func TestFetchPrivateAccountShortCircuits(t *testing.T) {
	a := &stubStrategy{name: "a", err: strategy.ErrPrivateAccount}
	b := &stubStrategy{name: "b", posts: imagePosts("b1")}
	o := newTestOrchestrator(t, a, b)

	result := o.Fetch(context.Background(), "alice", 10)

	assert.True(t, result.PrivateAccount)
	assert.Empty(t, result.StrategyUsed)
	assert.False(t, b.invoked, "private account is terminal for the whole chain")
	require.Len(t, result.Diagnostics, 2)
	assert.Equal(t, domain.OutcomeSucceededEmpty, result.Diagnostics[0].Outcome)
	assert.Equal(t, domain.OutcomeSkipped, result.Diagnostics[1].Outcome)
}

func TestFetchNotConfiguredIsSkipped(t *testing.T) {
	a := &stubStrategy{name: "a", err: strategy.ErrNotConfigured}
	b := &stubStrategy{name: "b", posts: imagePosts("b1")}
	o := newTestOrchestrator(t, a, b)

	result := o.Fetch(context.Background(), "alice", 10)

	assert.Equal(t, "b", result.StrategyUsed)
	assert.Equal(t, domain.OutcomeSkipped, result.Diagnostics[0].Outcome)
}

func TestFetchSentinelOnlyCountsAsEmpty(t *testing.T) {
	sentinel := []domain.Post{{ID: "manual_1", OwnerUsername: "alice"}}
	a := &stubStrategy{name: "a", posts: sentinel}
	o := newTestOrchestrator(t, a)

	result := o.Fetch(context.Background(), "alice", 10)

	assert.Empty(t, result.StrategyUsed)
	assert.Zero(t, result.TotalPosts())
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, domain.OutcomeSucceededEmpty, result.Diagnostics[0].Outcome)
	assert.NotEmpty(t, result.Diagnostics[0].Reason)
}

func TestFetchNeverMergesStrategies(t *testing.T) {
	a := &stubStrategy{name: "a", posts: imagePosts("a1")}
	b := &stubStrategy{name: "b", posts: imagePosts("b1")}
	o := newTestOrchestrator(t, a, b)

	result := o.Fetch(context.Background(), "alice", 10)

	require.Equal(t, 1, result.TotalPosts())
	assert.Equal(t, "a1", result.AllPosts()[0].ID)
}

func TestProfileFallsThroughFailures(t *testing.T) {
	a := &stubStrategy{name: "a", err: errors.New("boom")}
	b := &stubStrategy{name: "b"}
	o := newTestOrchestrator(t, a, b)

	profile, err := o.Profile(context.Background(), "alice")

	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
}
