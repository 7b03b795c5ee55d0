package normalizer

import (
	"fmt"
	"testing"

	"github.com/orgball2608/insta-media-pipeline/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeItemListDropsEntriesWithoutMediaURL(t *testing.T) {
	payload := []byte(`{"data":[
		{"id":"a","media_url":"https://x/a.jpg"},
		{"id":"b"},
		{"id":"c","display_url":"https://x/c.jpg"}
	]}`)

	posts := Normalize(payload, ShapeItemList, "alice")

	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.NotEmpty(t, p.MediaURL)
	}
	assert.Equal(t, "a", posts[0].ID)
	assert.Equal(t, "c", posts[1].ID)
}

func TestNormalizeItemListBareArray(t *testing.T) {
	payload := []byte(`[{"id":"a","image_url":"https://x/a.jpg","likes":12,"comments":3}]`)

	posts := Normalize(payload, ShapeItemList, "alice")

	require.Len(t, posts, 1)
	assert.Equal(t, 12, posts[0].LikesCount)
	assert.Equal(t, 3, posts[0].CommentsCount)
	assert.Equal(t, "alice", posts[0].OwnerUsername)
}

func TestNormalizeItemListVideoVariants(t *testing.T) {
	payload := []byte(`{"items":[
		{"id":"v1","thumbnail_url":"https://x/t1.jpg","video_url":"https://x/v1.mp4"},
		{"id":"v2","display_url":"https://x/t2.jpg","media_type":2},
		{"id":"v3","display_url":"https://x/t3.jpg","media_type":"VIDEO"},
		{"id":"i1","display_url":"https://x/i1.jpg","media_type":1}
	]}`)

	posts := Normalize(payload, ShapeItemList, "alice")

	require.Len(t, posts, 4)
	assert.Equal(t, domain.ContentTypeVideo, posts[0].ContentType)
	assert.Equal(t, "https://x/v1.mp4", posts[0].VideoURL)
	assert.Equal(t, domain.ContentTypeVideo, posts[1].ContentType)
	assert.Equal(t, domain.ContentTypeVideo, posts[2].ContentType)
	assert.Equal(t, domain.ContentTypeImage, posts[3].ContentType)
}

func TestNormalizeItemListCaptionObject(t *testing.T) {
	payload := []byte(`{"data":[
		{"id":"a","display_url":"https://x/a.jpg","caption":{"text":"hello"}},
		{"id":"b","display_url":"https://x/b.jpg","caption":"plain"}
	]}`)

	posts := Normalize(payload, ShapeItemList, "alice")

	require.Len(t, posts, 2)
	assert.Equal(t, "hello", posts[0].Caption)
	assert.Equal(t, "plain", posts[1].Caption)
}

func TestNormalizeCarouselExpansion(t *testing.T) {
	const total = 3
	payload := []byte(fmt.Sprintf(`{"data":[{
		"id":"p1","shortcode":"sc1","display_url":"https://x/parent.jpg",
		"edge_sidecar_to_children":{"edges":[
			{"node":{"__typename":"GraphImage","display_url":"https://x/c0.jpg"}},
			{"node":{"__typename":"GraphImage","display_url":"https://x/c1.jpg"}},
			{"node":{"__typename":"GraphVideo","display_url":"https://x/c2.jpg","video_url":"https://x/c2.mp4"}}
		]}
	}]}`))

	posts := Normalize(payload, ShapeItemList, "alice")

	require.Len(t, posts, total)
	seen := map[int]bool{}
	for idx, p := range posts {
		assert.Equal(t, fmt.Sprintf("p1_%d", idx), p.ID)
		assert.Equal(t, domain.CategoryCarousel, p.Category)
		assert.Equal(t, total, p.CarouselTotal)
		assert.False(t, seen[p.CarouselIndex], "carousel_index %d appeared twice", p.CarouselIndex)
		seen[p.CarouselIndex] = true
		assert.GreaterOrEqual(t, p.CarouselIndex, 1)
		assert.LessOrEqual(t, p.CarouselIndex, total)
	}
	assert.Equal(t, domain.ContentTypeVideo, posts[2].ContentType)
}

func TestNormalizeEndToEndFixture(t *testing.T) {
	payload := []byte(`{"data":[{"id":"p1","display_url":"https://x/img1.jpg","edge_sidecar_to_children":{"edges":[{"node":{"__typename":"GraphImage","display_url":"https://x/c1.jpg"}},{"node":{"__typename":"GraphImage","display_url":"https://x/c2.jpg"}}]}}]}`)

	posts := Normalize(payload, ShapeItemList, "alice")

	require.Len(t, posts, 2)
	assert.Equal(t, "p1_0", posts[0].ID)
	assert.Equal(t, "p1_1", posts[1].ID)
	assert.Equal(t, 2, posts[0].CarouselTotal)
	assert.Equal(t, 2, posts[1].CarouselTotal)
	assert.Equal(t, domain.CategoryCarousel, posts[0].Category)
	assert.Equal(t, domain.CategoryCarousel, posts[1].Category)
}

func TestNormalizeGraphEdgesEnvelopes(t *testing.T) {
	node := `{"node":{"__typename":"GraphImage","id":"g1","shortcode":"sc","display_url":"https://x/g1.jpg",
		"edge_liked_by":{"count":7},"edge_media_to_comment":{"count":2},
		"edge_media_to_caption":{"edges":[{"node":{"text":"cap"}}]}}}`

	envelopes := []string{
		fmt.Sprintf(`{"data":{"user":{"edge_owner_to_timeline_media":{"edges":[%s]}}}}`, node),
		fmt.Sprintf(`{"graphql":{"user":{"edge_owner_to_timeline_media":{"edges":[%s]}}}}`, node),
		fmt.Sprintf(`{"user":{"edge_owner_to_timeline_media":{"edges":[%s]}}}`, node),
		fmt.Sprintf(`{"edges":[%s]}`, node),
	}

	for i, envelope := range envelopes {
		posts := Normalize([]byte(envelope), ShapeGraphEdges, "alice")
		require.Len(t, posts, 1, "envelope %d", i)
		assert.Equal(t, "g1", posts[0].ID)
		assert.Equal(t, "cap", posts[0].Caption)
		assert.Equal(t, 7, posts[0].LikesCount)
		assert.Equal(t, 2, posts[0].CommentsCount)
		assert.Equal(t, "https://www.instagram.com/p/sc/", posts[0].Permalink)
	}
}

func TestNormalizeGraphEdgesDropsUnknownTypenames(t *testing.T) {
	payload := []byte(`{"edges":[
		{"node":{"__typename":"GraphImage","id":"a","display_url":"https://x/a.jpg"}},
		{"node":{"__typename":"GraphBroadcast","id":"b","display_url":"https://x/b.jpg"}}
	]}`)

	posts := Normalize(payload, ShapeGraphEdges, "alice")

	require.Len(t, posts, 1)
	assert.Equal(t, "a", posts[0].ID)
}

func TestNormalizeHTMLEmbedded(t *testing.T) {
	page := []byte(`<html><head>
		<script type="application/ld+json">{"image":["https://x/ld1.jpg","https://x/ld2.jpg"]}</script>
		<meta property="og:image" content="https://x/og.jpg">
		<meta property="og:image" content="https://x/ld1.jpg">
	</head><body></body></html>`)

	posts := Normalize(page, ShapeHTMLEmbedded, "alice")

	require.Len(t, posts, 3)
	urls := map[string]bool{}
	for _, p := range posts {
		assert.NotEmpty(t, p.MediaURL)
		assert.Equal(t, "alice", p.OwnerUsername)
		urls[p.MediaURL] = true
	}
	assert.True(t, urls["https://x/ld1.jpg"])
	assert.True(t, urls["https://x/ld2.jpg"])
	assert.True(t, urls["https://x/og.jpg"])
}

func TestNormalizeUnparsablePayloadsYieldNothing(t *testing.T) {
	garbage := []byte(`this is not json`)

	assert.Empty(t, Normalize(garbage, ShapeItemList, "alice"))
	assert.Empty(t, Normalize(garbage, ShapeGraphEdges, "alice"))
	assert.Empty(t, Normalize(garbage, ShapeUnknown, "alice"))
}

func TestContainsPrivateMarker(t *testing.T) {
	assert.True(t, ContainsPrivateMarker([]byte(`{"user":{"is_private":true}}`)))
	assert.True(t, ContainsPrivateMarker([]byte(`{"user":{"is_private": true}}`)))
	assert.False(t, ContainsPrivateMarker([]byte(`{"user":{"is_private":false}}`)))
}
