package strategyimpl

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/Davincible/goinsta/v3"
	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/ratelimit"
	"github.com/orgball2608/insta-media-pipeline/internal/strategy"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

const loginAttempts = 3

// SessionAPI fetches through an authenticated Instagram session. It reuses a
// saved session file when one is present and falls back to a credential
// login, exporting the fresh session for the next run.
type SessionAPI struct {
	mu          sync.Mutex
	client      *goinsta.Instagram
	username    string
	password    string
	sessionPath string
	pacer       ratelimit.Pacer
	logger      logger.Logger
	// connect establishes the session; tests replace it.
	connect func(ctx context.Context) (*goinsta.Instagram, error)
}

type SessionAPIOpts struct {
	fx.In

	Config *config.Config
	Pacer  ratelimit.Pacer
	Logger logger.Logger
}

func NewSessionAPI(opts SessionAPIOpts) *SessionAPI {
	s := &SessionAPI{
		username:    opts.Config.Instagram.Username,
		password:    opts.Config.Instagram.Password,
		sessionPath: opts.Config.Instagram.SessionPath,
		pacer:       opts.Pacer,
		logger:      opts.Logger.WithComponent("SessionAPIStrategy"),
	}
	s.connect = s.dial
	return s
}

var _ strategy.Strategy = (*SessionAPI)(nil)

func (s *SessionAPI) Name() string { return "sessionapi" }

func (s *SessionAPI) Configured() bool { return s.username != "" && s.password != "" }

// login connects lazily on first use. The strategy is a shared singleton
// reachable from the HTTP trigger, the Telegram commands and the batch
// scheduler at once, so the first caller does the work and every other
// caller waits on the lock.
func (s *SessionAPI) login(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return nil
	}

	client, err := s.connect(ctx)
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

// dial tries the saved session file first, then credentials with a few
// spaced attempts.
func (s *SessionAPI) dial(ctx context.Context) (*goinsta.Instagram, error) {
	if s.sessionPath != "" {
		if _, err := os.Stat(s.sessionPath); err == nil {
			client, err := goinsta.Import(s.sessionPath)
			if err == nil && client.Account.Sync() == nil {
				s.logger.Info("Logged in using existing session", "path", s.sessionPath)
				return client, nil
			}
			s.logger.Warn("Saved session is stale, logging in with credentials")
		}
	}

	client := goinsta.New(s.username, s.password)
	var loginErr error
	for attempt := 1; attempt <= loginAttempts; attempt++ {
		loginErr = client.Login()
		if loginErr == nil {
			if s.sessionPath != "" {
				if err := client.Export(s.sessionPath); err != nil {
					s.logger.Warn("Failed to save session", "error", err)
				}
			}
			return client, nil
		}
		s.logger.Error("Login attempt failed", "attempt", attempt, "error", loginErr)
		if attempt < loginAttempts {
			if err := sleepCtx(ctx, time.Duration(attempt)*time.Second); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("failed to log in after %d attempts: %w", loginAttempts, loginErr)
}

func (s *SessionAPI) FetchProfile(ctx context.Context, username string) (domain.Profile, error) {
	profile := domain.NewProfile(username)
	if !s.Configured() {
		return profile, strategy.ErrNotConfigured
	}
	if err := s.login(ctx); err != nil {
		return profile, err
	}
	if err := s.pacer.Wait(ctx, s.Name()); err != nil {
		return profile, err
	}

	user, err := s.client.Profiles.ByName(username)
	if err != nil {
		return profile, fmt.Errorf("failed to look up @%s: %w", username, err)
	}

	profile.FullName = user.FullName
	profile.Biography = user.Biography
	profile.FollowersCount = user.FollowerCount
	profile.FollowingCount = user.FollowingCount
	profile.PostsCount = user.MediaCount
	profile.IsPrivate = user.IsPrivate
	profile.IsVerified = user.IsVerified
	return profile, nil
}

func (s *SessionAPI) FetchPosts(ctx context.Context, username string, count int) ([]domain.Post, error) {
	if !s.Configured() {
		return nil, strategy.ErrNotConfigured
	}
	if err := s.login(ctx); err != nil {
		return nil, err
	}
	if err := s.pacer.Wait(ctx, s.Name()); err != nil {
		return nil, err
	}

	user, err := s.client.Profiles.ByName(username)
	if err != nil {
		return nil, fmt.Errorf("failed to look up @%s: %w", username, err)
	}
	if user.IsPrivate && !user.Friendship.Following {
		return nil, strategy.ErrPrivateAccount
	}

	feed := user.Feed()
	posts := make([]domain.Post, 0, count)
	for len(posts) < count && feed.Next() {
		for _, item := range feed.Items {
			posts = append(posts, s.convert(item, username)...)
			if len(posts) >= count {
				break
			}
		}
		if err := s.pacer.Wait(ctx, s.Name()); err != nil {
			return posts[:min(len(posts), count)], err
		}
	}
	if feed.Error() != nil && len(posts) == 0 {
		return nil, fmt.Errorf("feed for @%s failed: %w", username, feed.Error())
	}

	if len(posts) > count {
		posts = posts[:count]
	}
	s.logger.Info("Fetched posts from feed", "username", username, "count", len(posts))
	return posts, nil
}

// convert maps a feed item to domain posts, expanding carousels the same
// way the payload normalizer does.
func (s *SessionAPI) convert(item *goinsta.Item, username string) []domain.Post {
	base := domain.Post{
		ID:            itemID(item),
		Shortcode:     item.Code,
		Caption:       item.Caption.Text,
		ContentType:   domain.ContentTypeImage,
		Category:      domain.CategoryPost,
		LikesCount:    item.Likes,
		CommentsCount: item.CommentCount,
		TakenAt:       time.Unix(item.TakenAt, 0).UTC(),
		Permalink:     domain.PermalinkFor(item.Code),
		OwnerUsername: username,
	}

	if len(item.CarouselMedia) > 0 {
		children := make([]domain.Post, 0, len(item.CarouselMedia))
		for idx := range item.CarouselMedia {
			child := base
			child.ID = base.ID + "_" + strconv.Itoa(idx)
			child.CarouselIndex = idx + 1
			child.CarouselTotal = len(item.CarouselMedia)
			fillItemMedia(&child, &item.CarouselMedia[idx])
			if child.MediaURL != "" {
				children = append(children, child)
			}
		}
		base.Category = domain.CategoryCarousel
		for i := range children {
			children[i].Category = domain.CategoryCarousel
		}
		return children
	}

	fillItemMedia(&base, item)
	if base.MediaURL == "" {
		return nil
	}
	return []domain.Post{base}
}

// itemID flattens the feed item id, which the wire format carries as
// either a string or a number.
func itemID(item *goinsta.Item) string {
	switch id := item.ID.(type) {
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return fmt.Sprint(id)
	}
}

func fillItemMedia(post *domain.Post, item *goinsta.Item) {
	post.MediaURL = item.Images.GetBest()
	if item.MediaType == 2 && len(item.Videos) > 0 {
		post.ContentType = domain.ContentTypeVideo
		post.VideoURL = item.Videos[0].URL
	}
}
