// Package processor turns normalized posts into files on disk and,
// optionally, objects in remote storage. Every post gets a ledger entry;
// one post's failure never aborts the rest.
package processor

import (
	"context"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
)

type Client interface {
	// Process walks the fetch result in traversal order and returns one
	// ProcessedItem per post, in the same order, even when every item fails.
	Process(ctx context.Context, result domain.FetchResult) []domain.ProcessedItem
}
