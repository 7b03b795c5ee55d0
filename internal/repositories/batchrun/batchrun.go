package batchrun

import (
	"context"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
)

type Repository interface {
	// Create persists the aggregate counters of one finished batch run and
	// returns the new row id.
	Create(ctx context.Context, summary domain.BatchSummary) (int64, error)

	// GetRecent returns the newest runs, most recent first.
	GetRecent(ctx context.Context, limit int) ([]*domain.BatchRunRecord, error)
}
