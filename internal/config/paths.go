package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves well-known locations inside the archive and the output
// tree. All consumers go through this type instead of joining paths ad hoc.
type Paths struct {
	ArchiveDir string
	OutputDir  string
}

// NewPaths creates a Paths resolver for the given archive and output roots.
func NewPaths(archiveDir, outputDir string) (*Paths, error) {
	if archiveDir == "" {
		return nil, fmt.Errorf("archive directory is required")
	}
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}

	abs, err := filepath.Abs(archiveDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve archive directory: %w", err)
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory: %w", err)
	}

	return &Paths{ArchiveDir: abs, OutputDir: out}, nil
}

// PostsCSV returns the path of the mandatory posts listing.
func (p *Paths) PostsCSV() string {
	return filepath.Join(p.ArchiveDir, PostsCSVName)
}

// PostsDir returns the directory holding per-post engagement logs and bodies.
func (p *Paths) PostsDir() string {
	return filepath.Join(p.ArchiveDir, PostsSubdir)
}

// AnalyticsDir returns the output directory for analytics artifacts.
func (p *Paths) AnalyticsDir() string {
	return filepath.Join(p.OutputDir, AnalyticsSubdir)
}

// DashboardDataDir returns the output directory for dashboard JSON files.
func (p *Paths) DashboardDataDir() string {
	return filepath.Join(p.OutputDir, DashboardDataSubdir)
}

// ContentDir returns the output directory for converted post bodies.
func (p *Paths) ContentDir() string {
	return filepath.Join(p.OutputDir, ContentSubdir)
}

// EnsureOutputDirectories creates the output tree if it does not exist.
func (p *Paths) EnsureOutputDirectories() error {
	for _, dir := range []string{p.OutputDir, p.AnalyticsDir(), p.DashboardDataDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
