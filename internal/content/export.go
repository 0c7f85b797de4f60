package content

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"subpulse/internal/config"
	"subpulse/pkg/contracts/domain"
)

// Exporter writes converted post bodies into the content output tree: one
// markdown file per post plus a consolidated archive document.
type Exporter struct {
	paths     *config.Paths
	converter *Converter
	logger    *slog.Logger
}

// NewExporter creates a content exporter.
func NewExporter(paths *config.Paths, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		paths:     paths,
		converter: NewConverter(),
		logger:    logger,
	}
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// generateSlug derives a filesystem-safe slug from a title, capped at 50
// characters.
func generateSlug(title string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 50 {
		slug = slug[:50]
	}
	return slug
}

// exportablePosts filters to published posts that carry a body, sorted most
// recent first. Undated posts sort last.
func exportablePosts(posts []domain.Post) []domain.Post {
	selected := make([]domain.Post, 0, len(posts))
	for i := range posts {
		if posts[i].Published && posts[i].HTMLContent != "" {
			selected = append(selected, posts[i])
		}
	}

	sort.SliceStable(selected, func(i, j int) bool {
		var di, dj time.Time
		if selected[i].Date != nil {
			di = *selected[i].Date
		}
		if selected[j].Date != nil {
			dj = *selected[j].Date
		}
		return di.After(dj)
	})

	return selected
}

// ExportIndividual writes one markdown file per exportable post, named
// <date>-<slug>.md, into content/individual.
func (e *Exporter) ExportIndividual(posts []domain.Post) (int, error) {
	selected := exportablePosts(posts)

	outDir := filepath.Join(e.paths.ContentDir(), "individual")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return 0, fmt.Errorf("failed to create content directory: %w", err)
	}

	written := 0
	for i := range selected {
		post := &selected[i]

		markdown, err := e.converter.ConvertPost(post)
		if err != nil {
			e.logger.Warn("failed to convert post body",
				slog.String("post_id", post.ID),
				slog.String("error", err.Error()))
			continue
		}

		datePrefix := "unknown"
		if post.Date != nil {
			datePrefix = post.Date.Format("2006-01-02")
		}
		slug := post.Slug
		if slug == "" {
			title := post.Title
			if title == "" {
				title = "untitled"
			}
			slug = generateSlug(title)
		}

		path := filepath.Join(outDir, fmt.Sprintf("%s-%s.md", datePrefix, slug))
		if err := os.WriteFile(path, []byte(markdown), 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written++
	}

	e.logger.Info("individual post files exported",
		slog.Int("count", written),
		slog.String("dir", outDir))

	return written, nil
}

// ExportConsolidated writes the single-archive document with a table of
// contents followed by every exportable post.
func (e *Exporter) ExportConsolidated(posts []domain.Post, publicationName string) (string, error) {
	selected := exportablePosts(posts)

	var doc strings.Builder
	fmt.Fprintf(&doc, "# %s - Complete Archive\n\n", publicationName)
	fmt.Fprintf(&doc, "**Generated:** %s\n", time.Now().Format("January 2, 2006"))
	fmt.Fprintf(&doc, "**Total Posts:** %d\n\n", len(selected))
	doc.WriteString("---\n\n")

	doc.WriteString("## Table of Contents\n\n")
	for i := range selected {
		post := &selected[i]
		title := post.Title
		if title == "" {
			title = "Untitled"
		}
		dateStr := "Unknown date"
		if post.Date != nil {
			dateStr = post.Date.Format("Jan 2, 2006")
		}
		fmt.Fprintf(&doc, "%d. [%s](#%s) - %s\n", i+1, title, generateSlug(title), dateStr)
	}
	doc.WriteString("\n---\n\n")

	for i := range selected {
		markdown, err := e.converter.ConvertPost(&selected[i])
		if err != nil {
			e.logger.Warn("failed to convert post body",
				slog.String("post_id", selected[i].ID),
				slog.String("error", err.Error()))
			continue
		}
		doc.WriteString(markdown)
		doc.WriteString("\n\n---\n\n")
	}

	if err := os.MkdirAll(e.paths.ContentDir(), 0755); err != nil {
		return "", fmt.Errorf("failed to create content directory: %w", err)
	}

	path := filepath.Join(e.paths.ContentDir(), "all-posts.md")
	if err := os.WriteFile(path, []byte(doc.String()), 0644); err != nil {
		return "", fmt.Errorf("failed to write consolidated archive: %w", err)
	}

	e.logger.Info("consolidated archive exported",
		slog.String("path", path),
		slog.Int("posts", len(selected)))

	return path, nil
}
