// Package strategy defines the acquisition strategy contract the fallback
// orchestrator runs against.
package strategy

import (
	"context"
	"errors"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
)

var (
	// ErrPrivateAccount is a definitive provider signal: the account exists
	// but its content is not reachable by any strategy. Terminal for the
	// whole fallback chain.
	ErrPrivateAccount = errors.New("account is private and cannot be accessed")
	// ErrNotConfigured marks a strategy whose credentials or tooling are
	// absent; the orchestrator records it as skipped.
	ErrNotConfigured = errors.New("strategy is not configured")
)

// Strategy is one concrete way of acquiring content for a username. A
// strategy owns its transport failures: FetchPosts returns an error value
// describing the failure, it never panics and never lets a transport
// library unwind through the orchestrator.
type Strategy interface {
	Name() string
	FetchProfile(ctx context.Context, username string) (domain.Profile, error)
	FetchPosts(ctx context.Context, username string, count int) ([]domain.Post, error)
}
