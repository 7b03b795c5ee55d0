package normalizer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
)

// jsonLD covers the structured-data fields we harvest images from. The
// "image" member may be a string, a list, or an object with a url.
type jsonLD struct {
	Image json.RawMessage `json:"image"`
}

// normalizeHTML harvests image URLs from JSON-LD blocks and meta image tags
// of a profile page. Each distinct URL becomes one synthetic Post with no
// caption and zero engagement counts; exact duplicates are suppressed.
func normalizeHTML(payload []byte, owner string) []domain.Post {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(payload))
	if err != nil {
		return nil
	}

	var urls []string

	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		urls = append(urls, imagesFromJSONLD([]byte(s.Text()))...)
	})

	for _, selector := range []string{
		`meta[property="og:image"]`,
		`meta[property="og:image:secure_url"]`,
		`meta[name="twitter:image"]`,
	} {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			if content, ok := s.Attr("content"); ok && content != "" {
				urls = append(urls, content)
			}
		})
	}

	urls = lo.Uniq(urls)

	posts := make([]domain.Post, 0, len(urls))
	for i, url := range urls {
		posts = append(posts, domain.Post{
			ID:            fmt.Sprintf("html_%d_%s", i, uuid.NewString()[:8]),
			MediaURL:      url,
			ContentType:   domain.ContentTypeImage,
			Category:      domain.CategoryPost,
			OwnerUsername: owner,
		})
	}
	return posts
}

func imagesFromJSONLD(raw []byte) []string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	var blocks []jsonLD
	if bytes.HasPrefix(raw, []byte("[")) {
		if err := json.Unmarshal(raw, &blocks); err != nil {
			return nil
		}
	} else {
		var single jsonLD
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil
		}
		blocks = append(blocks, single)
	}

	var urls []string
	for _, b := range blocks {
		urls = append(urls, imageField(b.Image)...)
	}
	return urls
}

// imageField decodes the polymorphic JSON-LD image member.
func imageField(raw json.RawMessage) []string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if json.Unmarshal(trimmed, &s) == nil && s != "" {
			return []string{s}
		}
	case '[':
		var list []string
		if json.Unmarshal(trimmed, &list) == nil {
			return lo.Filter(list, func(s string, _ int) bool { return s != "" })
		}
	case '{':
		var obj struct {
			URL string `json:"url"`
		}
		if json.Unmarshal(trimmed, &obj) == nil && obj.URL != "" {
			return []string{obj.URL}
		}
	}
	return nil
}

// ContainsPrivateMarker reports whether a profile payload carries the
// provider's private-account indicator.
func ContainsPrivateMarker(payload []byte) bool {
	return strings.Contains(string(payload), `"is_private":true`) ||
		strings.Contains(string(payload), `"is_private": true`)
}
