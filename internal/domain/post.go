package domain

import "time"

type ContentType string

const (
	ContentTypeImage ContentType = "image"
	ContentTypeVideo ContentType = "video"
)

type MediaCategory string

const (
	CategoryPost     MediaCategory = "post"
	CategoryCarousel MediaCategory = "carousel"
	CategoryStory    MediaCategory = "story"
	CategoryReel     MediaCategory = "reel"
	CategoryIGTV     MediaCategory = "igtv"
)

// Post is the canonical unit of content every provider response is
// normalized into.
type Post struct {
	ID            string // provider-local id, unique within a fetch batch
	Shortcode     string // used to build permalinks
	Caption       string
	MediaURL      string // image or video thumbnail; empty means the post is unusable
	VideoURL      string // set for video posts when the provider exposes it
	ContentType   ContentType
	Category      MediaCategory
	CarouselIndex int // 1-based, carousel posts only
	CarouselTotal int // carousel posts only
	LikesCount    int
	CommentsCount int
	TakenAt       time.Time // best effort, provider may omit
	Permalink     string
	OwnerUsername string
}

// IsSentinel reports whether the post is a manual-supply placeholder rather
// than real content. Sentinel posts carry no media URL by construction.
func (p Post) IsSentinel() bool {
	return p.MediaURL == ""
}

// PermalinkFor builds the canonical post URL from a shortcode.
func PermalinkFor(shortcode string) string {
	if shortcode == "" {
		return ""
	}
	return "https://www.instagram.com/p/" + shortcode + "/"
}
