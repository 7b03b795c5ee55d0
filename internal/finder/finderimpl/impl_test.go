package finderimpl

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/orchestrator"
	"github.com/orgball2608/insta-media-pipeline/internal/strategy"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileStub struct {
	followers map[string]int
	err       error
}

func (p *profileStub) Name() string { return "stub" }

func (p *profileStub) FetchProfile(_ context.Context, username string) (domain.Profile, error) {
	if p.err != nil {
		return domain.NewProfile(username), p.err
	}
	profile := domain.NewProfile(username)
	profile.FollowersCount = p.followers[username]
	return profile, nil
}

func (p *profileStub) FetchPosts(context.Context, string, int) ([]domain.Post, error) {
	return nil, nil
}

func newTestFinder(t *testing.T, s strategy.Strategy) *Impl {
	t.Helper()
	orch, err := orchestrator.New(orchestrator.Opts{
		Chain:  []strategy.Strategy{s},
		Logger: logger.New(logger.Opts{}),
	})
	require.NoError(t, err)

	return New(Opts{Orchestrator: orch, Logger: logger.New(logger.Opts{})})
}

func TestDiscoverUnknownCategory(t *testing.T) {
	f := newTestFinder(t, &profileStub{err: errors.New("offline")})

	_, err := f.Discover(context.Background(), "carrier-pigeons", 5, 0)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "photography")
}

func TestDiscoverKeepsSeedDataWhenChainFails(t *testing.T) {
	f := newTestFinder(t, &profileStub{err: errors.New("offline")})

	accounts, err := f.Discover(context.Background(), "art", 2, 0)

	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "metmuseum", accounts[0].Username)
	assert.Equal(t, 1800000, accounts[0].FollowersCount)
}

func TestDiscoverRefreshesAndFiltersByFollowers(t *testing.T) {
	// The refreshed count drops moma below the floor; the others keep
	// their seed counts.
	f := newTestFinder(t, &profileStub{followers: map[string]int{"moma": 500}})

	accounts, err := f.Discover(context.Background(), "art", 0, 1000)

	require.NoError(t, err)
	usernames := make([]string, 0, len(accounts))
	for _, a := range accounts {
		usernames = append(usernames, a.Username)
	}
	assert.NotContains(t, usernames, "moma")
	assert.Contains(t, usernames, "metmuseum")
}

func TestWriteAccountsFileRoundTrip(t *testing.T) {
	f := newTestFinder(t, &profileStub{err: errors.New("offline")})
	path := filepath.Join(t.TempDir(), "accounts.json")

	accounts := []domain.Account{
		{Username: "natgeo", FullName: "National Geographic", FollowersCount: 235000000},
	}
	require.NoError(t, f.WriteAccountsFile(accounts, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// The batch runner reads the file as a plain account array.
	var got []domain.Account
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, accounts, got)
}
