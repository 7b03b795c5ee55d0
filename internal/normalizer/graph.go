package normalizer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
)

const (
	typeImage   = "GraphImage"
	typeVideo   = "GraphVideo"
	typeSidecar = "GraphSidecar"
)

type sidecarEdges struct {
	Edges []graphEdge `json:"edges"`
}

type graphEdge struct {
	Node graphNode `json:"node"`
}

type graphNode struct {
	Typename   string `json:"__typename"`
	ID         string `json:"id"`
	Shortcode  string `json:"shortcode"`
	DisplayURL string `json:"display_url"`
	VideoURL   string `json:"video_url"`
	IsVideo    bool   `json:"is_video"`
	TakenAt    int64  `json:"taken_at_timestamp"`

	CaptionEdges struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`
	LikedBy struct {
		Count int `json:"count"`
	} `json:"edge_liked_by"`
	PreviewLike struct {
		Count int `json:"count"`
	} `json:"edge_media_preview_like"`
	Comments struct {
		Count int `json:"count"`
	} `json:"edge_media_to_comment"`

	Sidecar *sidecarEdges `json:"edge_sidecar_to_children"`
}

// graphEnvelope tolerates the envelopes the GraphQL style arrives in: the
// web_profile_info response, a bare user object, or the media connection
// itself.
type graphEnvelope struct {
	Data struct {
		User *graphUser `json:"user"`
	} `json:"data"`
	Graphql struct {
		User *graphUser `json:"user"`
	} `json:"graphql"`
	User  *graphUser  `json:"user"`
	Edges []graphEdge `json:"edges"`
}

type graphUser struct {
	TimelineMedia struct {
		Edges []graphEdge `json:"edges"`
	} `json:"edge_owner_to_timeline_media"`
}

func normalizeGraphEdges(payload []byte, owner string) []domain.Post {
	var env graphEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil
	}

	edges := env.Edges
	for _, user := range []*graphUser{env.Data.User, env.Graphql.User, env.User} {
		if len(edges) > 0 {
			break
		}
		if user != nil {
			edges = user.TimelineMedia.Edges
		}
	}

	var posts []domain.Post
	for _, edge := range edges {
		node := edge.Node
		switch node.Typename {
		case typeSidecar:
			posts = append(posts, expandSidecarChildren(node.ID, node.Shortcode, node.caption(),
				node.likes(), node.Comments.Count, node.takenAt(), node.Sidecar.edgesOrNil(), owner)...)
		case typeImage, typeVideo:
			posts = append(posts, node.toPost(owner))
		default:
			// Unrecognized type tags are dropped silently; new media kinds
			// appear without notice.
		}
	}
	return usable(posts)
}

// expandSidecarChildren turns a carousel parent into one Post per child.
// Children inherit the parent's caption and engagement counts; ids get a
// 0-based index suffix while carousel_index stays 1-based.
func expandSidecarChildren(parentID, shortcode, caption string, likes, comments int,
	takenAt time.Time, edges []graphEdge, owner string) []domain.Post {

	total := len(edges)
	posts := make([]domain.Post, 0, total)
	for idx, edge := range edges {
		child := edge.Node
		p := domain.Post{
			ID:            fmt.Sprintf("%s_%d", parentID, idx),
			Shortcode:     shortcode,
			Caption:       caption,
			MediaURL:      child.DisplayURL,
			ContentType:   domain.ContentTypeImage,
			Category:      domain.CategoryCarousel,
			CarouselIndex: idx + 1,
			CarouselTotal: total,
			LikesCount:    likes,
			CommentsCount: comments,
			TakenAt:       takenAt,
			Permalink:     domain.PermalinkFor(shortcode),
			OwnerUsername: owner,
		}
		if child.Typename == typeVideo || child.IsVideo {
			p.ContentType = domain.ContentTypeVideo
			p.VideoURL = child.VideoURL
		}
		posts = append(posts, p)
	}
	return posts
}

func (s *sidecarEdges) edgesOrNil() []graphEdge {
	if s == nil {
		return nil
	}
	return s.Edges
}

func (n graphNode) toPost(owner string) domain.Post {
	p := domain.Post{
		ID:            n.ID,
		Shortcode:     n.Shortcode,
		Caption:       n.caption(),
		MediaURL:      n.DisplayURL,
		ContentType:   domain.ContentTypeImage,
		Category:      domain.CategoryPost,
		LikesCount:    n.likes(),
		CommentsCount: n.Comments.Count,
		TakenAt:       n.takenAt(),
		Permalink:     domain.PermalinkFor(n.Shortcode),
		OwnerUsername: owner,
	}
	if n.Typename == typeVideo || n.IsVideo {
		p.ContentType = domain.ContentTypeVideo
		p.VideoURL = n.VideoURL
	}
	return p
}

func (n graphNode) caption() string {
	if len(n.CaptionEdges.Edges) > 0 {
		return n.CaptionEdges.Edges[0].Node.Text
	}
	return ""
}

func (n graphNode) likes() int {
	if n.LikedBy.Count > 0 {
		return n.LikedBy.Count
	}
	return n.PreviewLike.Count
}

func (n graphNode) takenAt() time.Time {
	if n.TakenAt > 0 {
		return time.Unix(n.TakenAt, 0).UTC()
	}
	return time.Time{}
}
