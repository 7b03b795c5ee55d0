package strategyimpl

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/strategy"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	apperrors "github.com/orgball2608/insta-media-pipeline/pkg/errors"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

// Manual is the end of the chain. It only confirms the profile page is
// reachable and emits a sentinel post with an empty media URL, telling the
// caller the content exists but has to be supplied by hand.
type Manual struct {
	client *http.Client
	logger logger.Logger
}

type ManualOpts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

func NewManual(opts ManualOpts) *Manual {
	return &Manual{
		client: newHTTPClient(opts.Config.Providers.RequestTimeout),
		logger: opts.Logger.WithComponent("ManualStrategy"),
	}
}

var _ strategy.Strategy = (*Manual)(nil)

func (m *Manual) Name() string { return "manual" }

func (m *Manual) FetchProfile(ctx context.Context, username string) (domain.Profile, error) {
	profile := domain.NewProfile(username)
	if err := m.checkReachable(ctx, username); err != nil {
		return profile, err
	}
	return profile, nil
}

func (m *Manual) FetchPosts(ctx context.Context, username string, _ int) ([]domain.Post, error) {
	if err := m.checkReachable(ctx, username); err != nil {
		return nil, err
	}

	m.logger.Info("Profile reachable, emitting manual-discovery sentinel", "username", username)
	return []domain.Post{{
		ID:            "manual_" + uuid.NewString(),
		Caption:       fmt.Sprintf("content for @%s requires manual discovery", username),
		ContentType:   domain.ContentTypeImage,
		Category:      domain.CategoryPost,
		TakenAt:       time.Now().UTC(),
		Permalink:     profileURL(username),
		OwnerUsername: username,
	}}, nil
}

func (m *Manual) checkReachable(ctx context.Context, username string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, profileURL(username), nil)
	if err != nil {
		return fmt.Errorf("failed to build reachability request: %w", err)
	}
	setBrowserHeaders(req)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("profile page unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.Wrap(apperrors.ErrNotFound, fmt.Sprintf("account @%s not found", username))
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("profile page returned status %d", resp.StatusCode)
	}
	return nil
}
