package curio

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
name: Curio Test
url: https://curio.example.com
timezone: Asia/Shanghai
session_secret: not-a-real-secret
database:
  host: db.internal
  name: curio
article:
  page_size: 10
  categories:
    - id: 1
      path: tech
      name: Technology
    - id: 2
      path: life
      name: Life
  types:
    - id: 1
      path: original
      name: Original
gallery:
  page_size: 8
`

func writeTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "curio.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o644))
	return path
}

func TestLoadConfigParsesTaxonomies(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, "Curio Test", cfg.Name)
	assert.Equal(t, 10, cfg.Article.PageSize)

	path, name, ok := cfg.Article.Categories.PathName(2)
	require.True(t, ok)
	assert.Equal(t, "life", path)
	assert.Equal(t, "Life", name)

	id, ok := cfg.Article.Types.ID("original")
	require.True(t, ok)
	assert.Equal(t, uint8(1), id)
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t))
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "htdocs", cfg.StaticDir)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	// Modules without a page_size fall back to the listing default.
	assert.Equal(t, 20, cfg.Note.PageSize)
	assert.Equal(t, 8, cfg.Gallery.PageSize)
	require.Len(t, cfg.Gallery.Sizes, 2)
	assert.Equal(t, "s", cfg.Gallery.Sizes[0].Prefix)
}

func TestLoadConfigResolvesTimezone(t *testing.T) {
	cfg, err := LoadConfig(writeTestConfig(t))
	require.NoError(t, err)

	loc := cfg.Location()
	require.NotNil(t, loc)
	ref := time.Date(2026, 2, 10, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-02-11", ref.In(loc).Format("2006-01-02"))
}

func TestLoadConfigRejectsBadTimezone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "curio.yaml")
	require.NoError(t, os.WriteFile(path, []byte("timezone: Not/AZone\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)
}
