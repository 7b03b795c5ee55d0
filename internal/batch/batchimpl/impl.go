package batchimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/orgball2608/insta-media-pipeline/internal/batch"
	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/notifier"
	"github.com/orgball2608/insta-media-pipeline/internal/orchestrator"
	"github.com/orgball2608/insta-media-pipeline/internal/processor"
	"github.com/orgball2608/insta-media-pipeline/internal/repositories/batchrun"
	"github.com/orgball2608/insta-media-pipeline/internal/repositories/media"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"github.com/samber/lo"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config       *config.Config
	Orchestrator *orchestrator.Orchestrator
	Processor    processor.Client
	Notifier     notifier.Client
	BatchRunRepo batchrun.Repository
	MediaRepo    media.Repository
	Logger       logger.Logger
}

type Impl struct {
	Config       *config.Config
	Orchestrator *orchestrator.Orchestrator
	Processor    processor.Client
	Notifier     notifier.Client
	BatchRunRepo batchrun.Repository
	MediaRepo    media.Repository
	Logger       logger.Logger
}

func New(opts Opts) *Impl {
	return &Impl{
		Config:       opts.Config,
		Orchestrator: opts.Orchestrator,
		Processor:    opts.Processor,
		Notifier:     opts.Notifier,
		BatchRunRepo: opts.BatchRunRepo,
		MediaRepo:    opts.MediaRepo,
		Logger:       opts.Logger.WithComponent("BatchController"),
	}
}

var _ batch.Client = (*Impl)(nil)

// accountRun carries one account's outcome across the timeout boundary.
type accountRun struct {
	items  []domain.ProcessedItem
	result domain.FetchResult
	err    error
}

func (b *Impl) RunBatch(ctx context.Context) (domain.BatchSummary, error) {
	accounts, err := b.loadAccounts()
	if err != nil {
		return domain.BatchSummary{}, err
	}

	summary := domain.BatchSummary{
		Stats:               domain.BatchStats{TotalAccounts: len(accounts)},
		SuccessfulDownloads: []domain.AccountDownload{},
		FailedDownloads:     []domain.AccountFailure{},
	}

	b.Logger.Info("Starting batch run", "accounts", len(accounts))
	for i, account := range accounts {
		if i > 0 {
			select {
			case <-ctx.Done():
				return summary, ctx.Err()
			case <-time.After(b.Config.Batch.InterAccountDelay):
			}
		}

		run := b.runWithTimeout(ctx, account)
		b.record(&summary, account, run)
	}

	if err := b.writeSummary(summary); err != nil {
		b.Logger.Error("Failed to persist batch summary", "error", err)
	}
	if _, err := b.BatchRunRepo.Create(ctx, summary); err != nil {
		b.Logger.Error("Failed to record batch run", "error", err)
	}
	b.Notifier.SendBatchSummary(summary)

	b.Logger.Info("Batch run finished",
		"succeeded", summary.Stats.SuccessfulAccounts,
		"failed", summary.Stats.FailedAccounts,
		"images", summary.Stats.TotalImages)
	return summary, nil
}

// runWithTimeout bounds one account's wall clock. When the deadline fires
// the account is recorded as failed and the batch moves on; the stale
// goroutine is left to drain on its own cancelled context.
func (b *Impl) runWithTimeout(ctx context.Context, account domain.Account) accountRun {
	accountCtx, cancel := context.WithTimeout(ctx, b.Config.Batch.AccountTimeout)
	defer cancel()

	done := make(chan accountRun, 1)
	go func() {
		items, result, err := b.RunAccount(accountCtx, account)
		done <- accountRun{items: items, result: result, err: err}
	}()

	select {
	case run := <-done:
		return run
	case <-accountCtx.Done():
		b.Logger.Warn("Account timed out", "username", account.Username, "timeout", b.Config.Batch.AccountTimeout)
		return accountRun{err: fmt.Errorf("processing timed out after %s", b.Config.Batch.AccountTimeout)}
	}
}

func (b *Impl) RunAccount(ctx context.Context, account domain.Account) ([]domain.ProcessedItem, domain.FetchResult, error) {
	b.Logger.Info("Processing account", "username", account.Username)

	result := b.Orchestrator.Fetch(ctx, account.Username, b.Config.Batch.PerAccountLimit)
	if result.StrategyUsed == "" {
		return nil, result, fmt.Errorf("no strategy produced content: %s", diagnosticsText(result))
	}

	items := b.Processor.Process(ctx, result)
	return items, result, nil
}

func (b *Impl) record(summary *domain.BatchSummary, account domain.Account, run accountRun) {
	if run.err != nil {
		summary.Stats.FailedAccounts++
		summary.FailedDownloads = append(summary.FailedDownloads, domain.AccountFailure{
			Username: account.Username,
			FullName: account.FullName,
			Error:    run.err.Error(),
		})
		return
	}

	succeeded := lo.CountBy(run.items, domain.ProcessedItem.Succeeded)
	if succeeded == 0 {
		summary.Stats.FailedAccounts++
		summary.FailedDownloads = append(summary.FailedDownloads, domain.AccountFailure{
			Username: account.Username,
			FullName: account.FullName,
			Error:    "every item failed to download",
		})
		return
	}

	summary.Stats.SuccessfulAccounts++
	summary.Stats.TotalImages += succeeded
	summary.SuccessfulDownloads = append(summary.SuccessfulDownloads, domain.AccountDownload{
		Username:       account.Username,
		FullName:       account.FullName,
		FollowersCount: account.FollowersCount,
		ImageCount:     succeeded,
		StrategyUsed:   run.result.StrategyUsed,
	})
}

func (b *Impl) loadAccounts() ([]domain.Account, error) {
	path := b.Config.Batch.AccountsFile
	if path == "" {
		return nil, fmt.Errorf("no accounts file configured")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read accounts file: %w", err)
	}

	var accounts []domain.Account
	if err := json.Unmarshal(data, &accounts); err == nil {
		return accounts, nil
	}

	var wrapped struct {
		Accounts []domain.Account `json:"accounts"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to parse accounts file: %w", err)
	}
	return wrapped.Accounts, nil
}

func (b *Impl) writeSummary(summary domain.BatchSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(b.Config.Batch.SummaryPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func diagnosticsText(result domain.FetchResult) string {
	data, err := json.Marshal(result.Diagnostics)
	if err != nil {
		return "no diagnostics"
	}
	return string(data)
}
