package s3impl

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/orgball2608/insta-media-pipeline/internal/storage"
	"github.com/orgball2608/insta-media-pipeline/pkg/config"
	"github.com/orgball2608/insta-media-pipeline/pkg/logger"
	"go.uber.org/fx"
)

// S3Impl uploads processed media into an S3 bucket. When no bucket is
// configured every call reports storage.ErrNotConfigured and the processor
// keeps files local.
type S3Impl struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	publicURL string
	region    string
	logger    logger.Logger
}

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

func New(opts Opts) (*S3Impl, error) {
	impl := &S3Impl{
		bucket:    opts.Config.Storage.S3Bucket,
		keyPrefix: opts.Config.Storage.S3KeyPrefix,
		publicURL: opts.Config.Storage.PublicBaseURL,
		region:    opts.Config.Storage.S3Region,
		logger:    opts.Logger.WithComponent("S3Uploader"),
	}
	if impl.bucket == "" {
		return impl, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(impl.region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	impl.client = s3.NewFromConfig(awsCfg)
	return impl, nil
}

var _ storage.Uploader = (*S3Impl)(nil)

func (s *S3Impl) Upload(ctx context.Context, localPath string, remoteKey string) (string, error) {
	if s.client == nil {
		return "", storage.ErrNotConfigured
	}

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	key := s.fullKey(remoteKey)
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	url := s.objectURL(key)
	s.logger.Info("Uploaded object", "bucket", s.bucket, "key", key)
	return url, nil
}

func (s *S3Impl) fullKey(key string) string {
	if s.keyPrefix == "" {
		return key
	}
	return strings.TrimSuffix(s.keyPrefix, "/") + "/" + strings.TrimPrefix(key, "/")
}

func (s *S3Impl) objectURL(key string) string {
	if s.publicURL != "" {
		return strings.TrimSuffix(s.publicURL, "/") + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
