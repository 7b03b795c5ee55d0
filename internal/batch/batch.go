// Package batch runs the fetch-and-process pipeline over many accounts
// sequentially and reports an aggregate summary.
package batch

import (
	"context"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
)

type Client interface {
	// RunBatch processes every account from the configured input file in
	// order and persists the JSON summary. One account's timeout or failure
	// never blocks the accounts after it.
	RunBatch(ctx context.Context) (domain.BatchSummary, error)

	// RunAccount fetches and processes a single account.
	RunAccount(ctx context.Context, account domain.Account) ([]domain.ProcessedItem, domain.FetchResult, error)

	// ScheduleBatchRuns registers the recurring batch job when a cron
	// expression is configured.
	ScheduleBatchRuns(ctx context.Context) error

	// ScheduleMediaCleanup registers the daily job pruning old media
	// metadata rows.
	ScheduleMediaCleanup(ctx context.Context) error
}
