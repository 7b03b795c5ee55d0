package enhance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLUpgradesLowQualityTier(t *testing.T) {
	raw := "https://scontent.cdninstagram.com/v/t51.2885-15/img.jpg?stp=dst-jpg_e15&_nc_ht=scontent.cdninstagram.com&oh=abc&oe=def&ig_cache_key=xyz&host=instagram.com"
	got := URL(raw)

	assert.Contains(t, got, "e35")
	assert.NotContains(t, got, "e15")
	assert.Contains(t, got, "efg=")
}

func TestURLAddsHighQualityVariantWhenMissing(t *testing.T) {
	raw := "https://scontent.cdninstagram.com/v/t51.2885-15/img.jpg?stp=dst-jpg&host=instagram.com"
	got := URL(raw)

	assert.Contains(t, got, "dst-jpg_e35")
}

func TestURLIgnoresForeignHosts(t *testing.T) {
	cases := []string{
		"https://example.com/photo.jpg?stp=dst-jpg_e15",
		"https://cdn.other.net/v/img.jpg",
		"not a url at all",
		"",
	}
	for _, raw := range cases {
		assert.Equal(t, raw, URL(raw))
	}
}

func TestURLPreservesExistingHighQuality(t *testing.T) {
	raw := "https://scontent.cdninstagram.com/v/img.jpg?stp=dst-jpg_e35&host=instagram.com"
	got := URL(raw)

	assert.Equal(t, 1, strings.Count(got, "e35"))
}

func TestURLIdempotence(t *testing.T) {
	samples := []string{
		"https://scontent.cdninstagram.com/v/t51.2885-15/img.jpg?stp=dst-jpg_e15&host=instagram.com",
		"https://scontent.cdninstagram.com/v/t51.2885-15/img.jpg?stp=dst-jpg&host=instagram.com",
		"https://scontent.cdninstagram.com/v/t51.2885-15/img.jpg?stp=dst-jpg_e35&efg=already&host=instagram.com",
		"https://scontent.cdninstagram.com/v/t51.2885-15/img.jpg?host=instagram.com",
		"https://example.com/unrelated.jpg",
	}

	for _, raw := range samples {
		once := URL(raw)
		twice := URL(once)
		assert.Equal(t, once, twice, "enhancing twice must equal enhancing once for %q", raw)
	}
}
