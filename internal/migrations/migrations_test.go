package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := Embed.ReadDir(".")
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		assert.True(t, strings.HasSuffix(entry.Name(), ".sql"))
		names = append(names, entry.Name())
	}
	assert.Contains(t, names, "20260815093000_create_media_items.sql")
	assert.Contains(t, names, "20260815094500_create_batch_runs.sql")
}
