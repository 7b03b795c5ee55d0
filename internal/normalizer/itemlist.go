package normalizer

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
)

// listEnvelope covers the wrappers third-party endpoints put around their
// item arrays. Exactly one of the fields is populated in practice.
type listEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Posts json.RawMessage `json:"posts"`
	Items json.RawMessage `json:"items"`
}

type listItem struct {
	ID           string          `json:"id"`
	Shortcode    string          `json:"shortcode"`
	Caption      json.RawMessage `json:"caption"` // string or {"text": ...} depending on provider
	Description  string          `json:"description"`
	MediaURL     string          `json:"media_url"`
	DisplayURL   string          `json:"display_url"`
	ImageURL     string          `json:"image_url"`
	Image        string          `json:"image"`
	Thumbnail    string          `json:"thumbnail"`
	ThumbnailSrc string          `json:"thumbnail_src"`
	ThumbURL     string          `json:"thumbnail_url"`
	VideoURL     string          `json:"video_url"`

	MediaType json.RawMessage `json:"media_type"` // string or numeric depending on provider
	IsVideo   bool            `json:"is_video"`

	Likes         int `json:"likes"`
	LikesCount    int `json:"likes_count"`
	Comments      int `json:"comments"`
	CommentsCount int `json:"comments_count"`

	Timestamp string `json:"timestamp"`
	TakenAt   int64  `json:"taken_at_timestamp"`
	Permalink string `json:"permalink"`

	Children *struct {
		Data []listItem `json:"data"`
	} `json:"children"`
	Sidecar *sidecarEdges `json:"edge_sidecar_to_children"`
}

func normalizeItemList(payload []byte, owner string) []domain.Post {
	items, ok := decodeItems(payload)
	if !ok {
		return nil
	}

	var posts []domain.Post
	for _, item := range items {
		posts = append(posts, expandItem(item, owner)...)
	}
	return usable(posts)
}

func decodeItems(payload []byte) ([]listItem, bool) {
	// A bare array is valid too.
	var direct []listItem
	if err := json.Unmarshal(payload, &direct); err == nil {
		return direct, true
	}

	var env listEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, false
	}
	for _, raw := range []json.RawMessage{env.Data, env.Posts, env.Items} {
		if len(raw) == 0 {
			continue
		}
		var items []listItem
		if err := json.Unmarshal(raw, &items); err == nil {
			return items, true
		}
	}
	return nil, false
}

// expandItem maps one raw item to one Post, or to N carousel Posts when it
// carries an embedded children collection.
func expandItem(item listItem, owner string) []domain.Post {
	if item.Sidecar != nil && len(item.Sidecar.Edges) > 0 {
		return expandSidecarChildren(item.ID, item.Shortcode, item.caption(), item.likesCount(),
			item.commentsCount(), item.takenAt(), item.Sidecar.Edges, owner)
	}
	if item.Children != nil && len(item.Children.Data) > 0 {
		total := len(item.Children.Data)
		posts := make([]domain.Post, 0, total)
		for idx, child := range item.Children.Data {
			p := item.toPost(owner)
			p.ID = fmt.Sprintf("%s_%d", item.ID, idx)
			p.Category = domain.CategoryCarousel
			p.CarouselIndex = idx + 1
			p.CarouselTotal = total
			if url := child.mediaURL(); url != "" {
				p.MediaURL = url
			}
			if child.isVideo() {
				p.ContentType = domain.ContentTypeVideo
				p.VideoURL = child.VideoURL
			} else {
				p.ContentType = domain.ContentTypeImage
				p.VideoURL = ""
			}
			posts = append(posts, p)
		}
		return posts
	}
	return []domain.Post{item.toPost(owner)}
}

func (i listItem) toPost(owner string) domain.Post {
	post := domain.Post{
		ID:            i.ID,
		Shortcode:     i.Shortcode,
		Caption:       i.caption(),
		MediaURL:      i.mediaURL(),
		ContentType:   domain.ContentTypeImage,
		Category:      domain.CategoryPost,
		LikesCount:    i.likesCount(),
		CommentsCount: i.commentsCount(),
		TakenAt:       i.takenAt(),
		Permalink:     i.Permalink,
		OwnerUsername: owner,
	}
	if post.Permalink == "" {
		post.Permalink = domain.PermalinkFor(i.Shortcode)
	}
	if i.isVideo() {
		post.ContentType = domain.ContentTypeVideo
		post.VideoURL = i.VideoURL
	}
	return post
}

// mediaURL resolves the first usable image URL among the key variants
// providers use for the same field.
func (i listItem) mediaURL() string {
	for _, candidate := range []string{i.MediaURL, i.DisplayURL, i.ImageURL, i.Image, i.Thumbnail, i.ThumbnailSrc, i.ThumbURL} {
		if candidate != "" {
			return candidate
		}
	}
	return ""
}

func (i listItem) likesCount() int {
	if i.LikesCount > 0 {
		return i.LikesCount
	}
	return i.Likes
}

func (i listItem) commentsCount() int {
	if i.CommentsCount > 0 {
		return i.CommentsCount
	}
	return i.Comments
}

func (i listItem) caption() string {
	trimmed := strings.TrimSpace(string(i.Caption))
	switch {
	case len(trimmed) == 0:
	case trimmed[0] == '"':
		var s string
		if json.Unmarshal(i.Caption, &s) == nil && s != "" {
			return s
		}
	case trimmed[0] == '{':
		var obj struct {
			Text string `json:"text"`
		}
		if json.Unmarshal(i.Caption, &obj) == nil && obj.Text != "" {
			return obj.Text
		}
	}
	return i.Description
}

func (i listItem) isVideo() bool {
	if i.IsVideo || i.VideoURL != "" {
		return true
	}
	tag := strings.Trim(string(i.MediaType), `"`)
	switch tag {
	case "VIDEO", "GraphVideo", "2":
		return true
	}
	return false
}

func (i listItem) takenAt() time.Time {
	if i.TakenAt > 0 {
		return time.Unix(i.TakenAt, 0).UTC()
	}
	if i.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, i.Timestamp); err == nil {
			return t
		}
	}
	return time.Time{}
}
