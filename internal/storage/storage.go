// Package storage defines the remote sink the content processor uploads
// into. The pipeline treats the sink as fallible: an upload failure is
// recorded per item and never aborts a batch.
package storage

import (
	"context"
	"errors"
)

var ErrNotConfigured = errors.New("remote storage is not configured")

type Uploader interface {
	// Upload pushes the local file under the given remote key and returns
	// the public URL of the stored object.
	Upload(ctx context.Context, localPath string, remoteKey string) (string, error)
}
