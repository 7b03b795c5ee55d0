// Package finder discovers candidate accounts worth feeding into the batch
// pipeline and writes them out as the accounts file the batch runner reads.
package finder

import (
	"context"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
)

type Client interface {
	// Discover returns up to limit accounts for a category, dropping any
	// below minFollowers. Follower counts are refreshed through the
	// acquisition chain when it answers.
	Discover(ctx context.Context, category string, limit, minFollowers int) ([]domain.Account, error)

	// WriteAccountsFile persists the accounts as JSON at path, in the
	// format the batch runner consumes.
	WriteAccountsFile(accounts []domain.Account, path string) error
}
