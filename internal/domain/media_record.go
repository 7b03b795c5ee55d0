package domain

import "time"

// MediaRecord is the persisted metadata row for one processed media file.
type MediaRecord struct {
	ID          int64         `json:"id"`
	PostID      string        `json:"post_id"`
	Username    string        `json:"username"`
	Category    MediaCategory `json:"category"`
	ContentType ContentType   `json:"content_type"`
	Strategy    string        `json:"strategy,omitempty"`
	LocalPath   string        `json:"local_path,omitempty"`
	RemoteURL   string        `json:"remote_url,omitempty"`
	Upscaled    bool          `json:"upscaled"`
	CreatedAt   time.Time     `json:"created_at"`
}
