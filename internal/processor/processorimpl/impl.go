package processorimpl

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "image/jpeg"
	_ "image/png"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/orgball2608/insta-media-pipeline/internal/enhance"
	"github.com/orgball2608/insta-media-pipeline/internal/processor"
	"github.com/orgball2608/insta-media-pipeline/internal/repositories/media"
	"github.com/orgball2608/insta-media-pipeline/internal/storage"
	"github.com/orgball2608/insta-media-pipeline/internal/upscale"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"github.com/orgball2608/insta-media-pipeline/pkg/retry"
	"go.uber.org/fx"
)

const (
	filenameTimeLayout = "20060102150405"
	browserUserAgent   = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"
)

type Opts struct {
	fx.In

	Config    *config.Config
	Uploader  storage.Uploader
	MediaRepo media.Repository
	Upscaler  upscale.Upscaler
	Logger    logger.Logger
}

type Impl struct {
	config    *config.Config
	uploader  storage.Uploader
	mediaRepo media.Repository
	upscaler  upscale.Upscaler
	client    *http.Client
	logger    logger.Logger
	retryCfg  retry.Config
	now       func() time.Time
}

func New(opts Opts) *Impl {
	return &Impl{
		config:    opts.Config,
		uploader:  opts.Uploader,
		mediaRepo: opts.MediaRepo,
		upscaler:  opts.Upscaler,
		client:    &http.Client{Timeout: opts.Config.Providers.RequestTimeout},
		logger:    opts.Logger.WithComponent("Processor"),
		retryCfg:  retry.DefaultConfig(),
		now:       time.Now,
	}
}

var _ processor.Client = (*Impl)(nil)

func (p *Impl) Process(ctx context.Context, result domain.FetchResult) []domain.ProcessedItem {
	posts := result.AllPosts()
	items := make([]domain.ProcessedItem, 0, len(posts))

	downloadDir := filepath.Join(p.config.Processor.DownloadDir, result.Username)
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		p.logger.Error("Failed to create download dir", "dir", downloadDir, "error", err)
		for _, post := range posts {
			items = append(items, domain.ProcessedItem{
				Post:   post,
				Status: domain.StatusDownloadFailed,
				Reason: fmt.Sprintf("failed to create download dir: %v", err),
			})
		}
		return items
	}

	for seq, post := range posts {
		items = append(items, p.processOne(ctx, post, result, downloadDir, seq+1))
	}

	succeeded := 0
	for _, item := range items {
		if item.Succeeded() {
			succeeded++
		}
	}
	p.logger.Info("Processed posts", "username", result.Username, "total", len(items), "succeeded", succeeded)
	return items
}

func (p *Impl) processOne(ctx context.Context, post domain.Post, result domain.FetchResult, dir string, seq int) domain.ProcessedItem {
	item := domain.ProcessedItem{Post: post}

	if exists, err := p.mediaRepo.Exists(ctx, post.ID); err != nil {
		p.logger.Warn("Failed to check for an existing record", "post", post.ID, "error", err)
	} else if exists {
		item.Status = domain.StatusSkipped
		item.Reason = "already persisted by an earlier run"
		p.logger.Debug("Skipping already-persisted post", "post", post.ID)
		return item
	}

	filename := p.filename(result.Username, post, seq)
	localPath := filepath.Join(dir, filename)

	sourceURL := post.MediaURL
	if post.ContentType == domain.ContentTypeVideo && post.VideoURL != "" {
		sourceURL = post.VideoURL
	}
	if p.config.Processor.EnhanceURLs && post.ContentType == domain.ContentTypeImage {
		sourceURL = enhance.URL(sourceURL)
	}

	if err := p.download(ctx, sourceURL, localPath); err != nil {
		item.Status = domain.StatusDownloadFailed
		item.Reason = err.Error()
		p.logger.Warn("Download failed", "post", post.ID, "error", err)
		return item
	}
	item.LocalPath = localPath
	item.Status = domain.StatusDownloaded

	if post.ContentType == domain.ContentTypeImage && p.config.Processor.MinResolution > 0 {
		if err := p.checkResolution(localPath); err != nil {
			_ = os.Remove(localPath)
			item.LocalPath = ""
			item.Status = domain.StatusDownloadFailed
			item.Reason = err.Error()
			return item
		}
	}

	if p.config.Processor.Upscale && post.ContentType == domain.ContentTypeImage && p.upscaler.Available() {
		if upscaledPath, err := p.upscaler.Upscale(ctx, localPath); err != nil {
			// Degrade to the original file.
			p.logger.Warn("Upscale failed, keeping original", "post", post.ID, "error", err)
		} else {
			item.LocalPath = upscaledPath
			item.Upscaled = true
		}
	}

	if p.config.Processor.UploadRemote {
		p.upload(ctx, &item, result)
	}
	return item
}

// filename is deterministic up to its timestamp component; carousel
// children keep their 1-based index as a suffix so siblings never collide.
func (p *Impl) filename(username string, post domain.Post, seq int) string {
	ext := ".jpg"
	if post.ContentType == domain.ContentTypeVideo {
		ext = ".mp4"
	}
	base := fmt.Sprintf("%s_%s_%s_%d", username, post.Category, p.now().UTC().Format(filenameTimeLayout), seq)
	if post.CarouselIndex > 0 {
		base = fmt.Sprintf("%s_%d", base, post.CarouselIndex)
	}
	return base + ext
}

func (p *Impl) download(ctx context.Context, sourceURL, localPath string) error {
	if sourceURL == "" {
		return fmt.Errorf("post has no media URL")
	}

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
		if err != nil {
			return fmt.Errorf("failed to build download request: %w", err)
		}
		req.Header.Set("User-Agent", browserUserAgent)

		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("download request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("download returned status %d", resp.StatusCode)
		}

		file, err := os.Create(localPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", localPath, err)
		}
		defer file.Close()

		if _, err := io.Copy(file, resp.Body); err != nil {
			return fmt.Errorf("failed to write %s: %w", localPath, err)
		}
		return nil
	}

	return retry.Do(ctx, p.logger, "DownloadMedia", operation, p.retryCfg)
}

// checkResolution rejects images whose shorter side is below the configured
// minimum. Undecodable files pass; the gate is about size, not validity.
func (p *Impl) checkResolution(localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil
	}

	minSide := min(cfg.Width, cfg.Height)
	if minSide < p.config.Processor.MinResolution {
		return fmt.Errorf("image is %dx%d, below minimum resolution %d", cfg.Width, cfg.Height, p.config.Processor.MinResolution)
	}
	return nil
}

func (p *Impl) upload(ctx context.Context, item *domain.ProcessedItem, result domain.FetchResult) {
	remoteKey := result.Username + "/" + filepath.Base(item.LocalPath)
	remoteURL, err := p.uploader.Upload(ctx, item.LocalPath, remoteKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotConfigured) {
			// Files stay local; not an item failure.
			return
		}
		item.Status = domain.StatusUploadFailed
		item.Reason = err.Error()
		p.logger.Warn("Upload failed", "post", item.Post.ID, "error", err)
		return
	}

	item.RemoteURL = remoteURL
	item.Status = domain.StatusUploaded

	record := domain.MediaRecord{
		PostID:      item.Post.ID,
		Username:    result.Username,
		Category:    item.Post.Category,
		ContentType: item.Post.ContentType,
		Strategy:    result.StrategyUsed,
		LocalPath:   item.LocalPath,
		RemoteURL:   remoteURL,
		Upscaled:    item.Upscaled,
	}
	if _, err := p.mediaRepo.Create(ctx, record); err != nil && !errors.Is(err, media.ErrAlreadyExists) {
		p.logger.Warn("Failed to persist media metadata", "post", item.Post.ID, "error", err)
	}
}
