package content

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subpulse/internal/config"
	"subpulse/pkg/contracts/domain"
)

func testExporter(t *testing.T) (*Exporter, *config.Paths) {
	t.Helper()
	paths, err := config.NewPaths(t.TempDir(), t.TempDir())
	require.NoError(t, err)
	return NewExporter(paths, nil), paths
}

func datedPost(t *testing.T, id, title, slug, date, body string) domain.Post {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	return domain.Post{
		ID:          id,
		Title:       title,
		Slug:        slug,
		Date:        &parsed,
		Published:   true,
		Type:        "newsletter",
		Audience:    "everyone",
		HTMLContent: body,
	}
}

func TestExportIndividual(t *testing.T) {
	exporter, paths := testExporter(t)

	posts := []domain.Post{
		datedPost(t, "1", "First Post", "first-post", "2024-01-05", "<p>One</p>"),
		datedPost(t, "2", "Second Post", "second-post", "2024-02-10", "<p>Two</p>"),
		{ID: "3", Title: "Draft", Published: false, HTMLContent: "<p>Hidden</p>"},
		{ID: "4", Title: "No Body", Published: true},
	}

	written, err := exporter.ExportIndividual(posts)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	outDir := filepath.Join(paths.ContentDir(), "individual")
	for _, name := range []string{"2024-01-05-first-post.md", "2024-02-10-second-post.md"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		require.NoError(t, err, "missing %s", name)
		assert.NotEmpty(t, data)
	}
}

func TestExportIndividual_SlugFallsBackToTitle(t *testing.T) {
	exporter, paths := testExporter(t)

	post := datedPost(t, "1", "Hello, World! A Story", "", "2024-03-01", "<p>Body</p>")

	written, err := exporter.ExportIndividual([]domain.Post{post})
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	_, err = os.Stat(filepath.Join(paths.ContentDir(), "individual", "2024-03-01-hello-world-a-story.md"))
	assert.NoError(t, err)
}

func TestExportConsolidated(t *testing.T) {
	exporter, paths := testExporter(t)

	posts := []domain.Post{
		datedPost(t, "1", "Older", "older", "2024-01-01", "<p>old body</p>"),
		datedPost(t, "2", "Newer", "newer", "2024-06-01", "<p>new body</p>"),
	}

	path, err := exporter.ExportConsolidated(posts, "Test Letter")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(paths.ContentDir(), "all-posts.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)

	assert.Contains(t, doc, "# Test Letter - Complete Archive")
	assert.Contains(t, doc, "## Table of Contents")
	assert.Contains(t, doc, "**Total Posts:** 2")

	// Most recent first, in both the TOC and the body.
	assert.Less(t, strings.Index(doc, "new body"), strings.Index(doc, "old body"))
	assert.Contains(t, doc, "1. [Newer](#newer)")
}

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello, World!", "hello-world"},
		{"  Spaces  ", "spaces"},
		{"Already-Kebab", "already-kebab"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, generateSlug(tt.in))
	}
}
