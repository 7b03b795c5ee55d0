package media

import (
	"context"
	"errors"
	"time"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
)

var (
	ErrAlreadyExists = errors.New("media record already exists")
	ErrNotFound      = errors.New("media record not found")
)

type Repository interface {
	// Create persists the metadata for one processed file and returns the
	// new record id.
	Create(ctx context.Context, record domain.MediaRecord) (int64, error)

	// GetByUsername returns all records for an account, newest first.
	GetByUsername(ctx context.Context, username string) ([]*domain.MediaRecord, error)

	// Exists reports whether a record for the given post id is already stored.
	Exists(ctx context.Context, postID string) (bool, error)

	// CleanupOldRecords deletes records older than the given duration and
	// returns how many rows went away.
	CleanupOldRecords(ctx context.Context, olderThan time.Duration) (int64, error)
}
