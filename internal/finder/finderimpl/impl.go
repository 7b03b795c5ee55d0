package finderimpl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/finder"
	"github.com/orgball2608/insta-media-pipeline/internal/orchestrator"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

const defaultAccountsFile = "found_accounts.json"

type Opts struct {
	fx.In

	Orchestrator *orchestrator.Orchestrator
	Logger       logger.Logger
}

type Impl struct {
	orchestrator *orchestrator.Orchestrator
	logger       logger.Logger
}

func New(opts Opts) *Impl {
	return &Impl{
		orchestrator: opts.Orchestrator,
		logger:       opts.Logger.WithComponent("AccountFinder"),
	}
}

var _ finder.Client = (*Impl)(nil)

func (f *Impl) Discover(ctx context.Context, category string, limit, minFollowers int) ([]domain.Account, error) {
	seeds, ok := seedCatalog[category]
	if !ok {
		return nil, fmt.Errorf("unknown category %q, available: %s", category, strings.Join(Categories(), ", "))
	}
	if limit <= 0 {
		limit = len(seeds)
	}

	accounts := make([]domain.Account, 0, len(seeds))
	for _, seed := range seeds {
		account := seed
		if profile, err := f.orchestrator.Profile(ctx, seed.Username); err == nil {
			if profile.FullName != "" {
				account.FullName = profile.FullName
			}
			if profile.FollowersCount > 0 {
				account.FollowersCount = profile.FollowersCount
			}
		} else {
			f.logger.Debug("Could not refresh profile, keeping seed data",
				"username", seed.Username, "error", err)
		}

		if account.FollowersCount < minFollowers {
			continue
		}
		accounts = append(accounts, account)
		if len(accounts) >= limit {
			break
		}
	}

	f.logger.Info("Discovered accounts", "category", category, "count", len(accounts))
	return accounts, nil
}

func (f *Impl) WriteAccountsFile(accounts []domain.Account, path string) error {
	if path == "" {
		path = defaultAccountsFile
	}

	data, err := json.MarshalIndent(accounts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode accounts: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write accounts file: %w", err)
	}

	f.logger.Info("Saved accounts file", "path", path, "accounts", len(accounts))
	return nil
}
