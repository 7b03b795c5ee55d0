// Package normalizer converts raw provider payloads into canonical Posts.
// Every provider response is tagged with the shape it claims to match; the
// normalizer pattern-matches on that tag instead of probing keys
// speculatively. Posts without a resolvable media URL are dropped, not
// reported: field drift across providers is expected, not an error.
package normalizer

import (
	"github.com/orgball2608/insta-media-pipeline/internal/domain"
)

type Shape string

const (
	// ShapeItemList is a flat list of post objects, possibly wrapped in a
	// "data" or "posts" envelope (graph API, most third-party endpoints).
	ShapeItemList Shape = "item_list"
	// ShapeGraphEdges is the nested edges/node GraphQL style embedded in
	// profile pages and the web_profile_info endpoint.
	ShapeGraphEdges Shape = "graph_edges"
	// ShapeHTMLEmbedded is a raw profile HTML document carrying JSON-LD
	// blocks and meta image tags.
	ShapeHTMLEmbedded Shape = "html_embedded"
	// ShapeUnknown yields no posts.
	ShapeUnknown Shape = "unknown"
)

// Normalize maps one provider payload to canonical Posts. It is a pure
// function: no I/O, no mutation of its input, provider ordering preserved.
// Unparsable payloads yield an empty list, never an error.
func Normalize(payload []byte, shape Shape, owner string) []domain.Post {
	switch shape {
	case ShapeItemList:
		return normalizeItemList(payload, owner)
	case ShapeGraphEdges:
		return normalizeGraphEdges(payload, owner)
	case ShapeHTMLEmbedded:
		return normalizeHTML(payload, owner)
	default:
		return nil
	}
}

// usable filters out posts that lost their media URL during mapping.
func usable(posts []domain.Post) []domain.Post {
	out := posts[:0:0]
	for _, p := range posts {
		if p.MediaURL != "" {
			out = append(out, p)
		}
	}
	return out
}
