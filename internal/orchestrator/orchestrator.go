// Package orchestrator runs the acquisition fallback chain: strategies are
// tried in priority order and the first one that yields real content wins.
package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/strategy"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

// Orchestrator owns the chain. At most one strategy's posts ever reach the
// caller; results from different strategies are never merged.
type Orchestrator struct {
	chain  []strategy.Strategy
	logger logger.Logger
}

type Opts struct {
	fx.In

	Chain  []strategy.Strategy
	Logger logger.Logger
}

func New(opts Opts) (*Orchestrator, error) {
	if len(opts.Chain) == 0 {
		return nil, fmt.Errorf("no acquisition strategies configured")
	}
	return &Orchestrator{
		chain:  opts.Chain,
		logger: opts.Logger.WithComponent("Orchestrator"),
	}, nil
}

// Fetch walks the chain for one username. The chain halts at the first
// strategy producing at least one post with a non-empty media URL; empty
// and failed outcomes advance to the next strategy. A private-account
// signal is terminal for the whole chain since no lower-priority strategy
// can succeed against it.
func (o *Orchestrator) Fetch(ctx context.Context, username string, count int) domain.FetchResult {
	result := domain.FetchResult{
		Username: username,
		Posts:    make(map[domain.MediaCategory][]domain.Post),
	}

	for i, s := range o.chain {
		if result.StrategyUsed != "" || result.PrivateAccount {
			result.Diagnostics = append(result.Diagnostics, domain.Diagnostic{
				Strategy: s.Name(),
				Outcome:  domain.OutcomeSkipped,
			})
			continue
		}

		o.logger.Info("Trying strategy", "strategy", s.Name(), "username", username, "position", i+1)
		diag := o.try(ctx, s, username, count, &result)
		result.Diagnostics = append(result.Diagnostics, diag)
	}

	if result.StrategyUsed == "" {
		o.logger.Warn("All strategies exhausted", "username", username, "attempts", len(result.Diagnostics))
	}
	return result
}

func (o *Orchestrator) try(ctx context.Context, s strategy.Strategy, username string, count int, result *domain.FetchResult) domain.Diagnostic {
	diag := domain.Diagnostic{Strategy: s.Name()}

	posts, err := s.FetchPosts(ctx, username, count)
	switch {
	case errors.Is(err, strategy.ErrPrivateAccount):
		result.PrivateAccount = true
		diag.Outcome = domain.OutcomeSucceededEmpty
		diag.Reason = "account is private"
		o.logger.Info("Account is private, halting chain", "username", username, "strategy", s.Name())
		return diag
	case errors.Is(err, strategy.ErrNotConfigured):
		diag.Outcome = domain.OutcomeSkipped
		diag.Reason = "not configured"
		return diag
	case err != nil:
		diag.Outcome = domain.OutcomeFailed
		diag.Reason = err.Error()
		o.logger.Warn("Strategy failed", "strategy", s.Name(), "username", username, "error", err)
		return diag
	}

	usable := realPosts(posts)
	if len(usable) == 0 {
		diag.Outcome = domain.OutcomeSucceededEmpty
		if len(posts) > 0 {
			diag.Reason = "only sentinel posts returned, content requires manual supply"
		}
		return diag
	}

	result.StrategyUsed = s.Name()
	result.Posts = domain.GroupByCategory(usable)
	diag.Outcome = domain.OutcomeSucceededWithContent
	o.logger.Info("Strategy satisfied fetch", "strategy", s.Name(), "username", username, "posts", len(usable))
	return diag
}

// Profile resolves the account profile with the same fallback order, taking
// the first strategy that answers.
func (o *Orchestrator) Profile(ctx context.Context, username string) (domain.Profile, error) {
	var lastErr error
	for _, s := range o.chain {
		profile, err := s.FetchProfile(ctx, username)
		if err == nil {
			return profile, nil
		}
		if errors.Is(err, strategy.ErrPrivateAccount) {
			profile.IsPrivate = true
			return profile, nil
		}
		lastErr = err
	}
	return domain.NewProfile(username), fmt.Errorf("no strategy could resolve @%s: %w", username, lastErr)
}

// realPosts drops sentinel entries so a payload made only of placeholders
// counts as empty.
func realPosts(posts []domain.Post) []domain.Post {
	out := posts[:0:0]
	for _, p := range posts {
		if !p.IsSentinel() {
			out = append(out, p)
		}
	}
	return out
}
