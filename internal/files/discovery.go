package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"subpulse/internal/config"
	"subpulse/internal/errors"
	"subpulse/pkg/contracts/domain"
)

// Discovery locates the export's files inside the archive directory. The
// archive layout is fixed by the platform: posts.csv at the root, a
// subscriber roster matching *email_list*.csv, and per-post engagement logs
// and HTML bodies under posts/.
type Discovery struct {
	paths *config.Paths
}

// NewDiscovery creates a discovery instance over the given paths.
func NewDiscovery(paths *config.Paths) *Discovery {
	return &Discovery{paths: paths}
}

// EngagementLogs maps post IDs to their open and deliver log paths. A post
// missing from both maps has no engagement data.
type EngagementLogs struct {
	Opens    map[string]string
	Delivers map[string]string
}

// FindPostsCSV returns the path of the mandatory posts listing. Its absence
// is fatal for the whole run.
func (d *Discovery) FindPostsCSV() (string, error) {
	path := d.paths.PostsCSV()
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewNotFoundError(fmt.Sprintf("posts listing %s", path))
		}
		return "", errors.NewStorageError("failed to stat posts listing", err)
	}
	return path, nil
}

// FindSubscriberCSV returns the path of the subscriber roster, or "" when
// the archive does not include one. A missing roster is not an error; the
// pipeline degrades to an empty subscriber set.
func (d *Discovery) FindSubscriberCSV() (string, error) {
	pattern := filepath.Join(d.paths.ArchiveDir, config.SubscriberListPattern)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", errors.NewStorageError("invalid subscriber list pattern", err)
	}
	if len(matches) == 0 {
		return "", nil
	}
	// Deterministic choice when the export holds multiple snapshots.
	sort.Strings(matches)
	return matches[0], nil
}

// FindEngagementLogs scans posts/ for *.opens.csv and *.delivers.csv files
// and keys them by the ID segment of the compound filename stem
// (<id>.<slug>.opens.csv).
func (d *Discovery) FindEngagementLogs() (*EngagementLogs, error) {
	logs := &EngagementLogs{
		Opens:    make(map[string]string),
		Delivers: make(map[string]string),
	}

	entries, err := os.ReadDir(d.paths.PostsDir())
	if err != nil {
		if os.IsNotExist(err) {
			// No posts directory means no engagement data at all.
			return logs, nil
		}
		return nil, errors.NewStorageError("failed to read posts directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		path := filepath.Join(d.paths.PostsDir(), name)

		switch {
		case strings.HasSuffix(name, config.OpensFileSuffix):
			stem := strings.TrimSuffix(name, config.OpensFileSuffix)
			id, _ := domain.SplitPostID(stem)
			logs.Opens[id] = path
		case strings.HasSuffix(name, config.DeliversFileSuffix):
			stem := strings.TrimSuffix(name, config.DeliversFileSuffix)
			id, _ := domain.SplitPostID(stem)
			logs.Delivers[id] = path
		}
	}

	return logs, nil
}

// FindPostHTML maps post IDs to their HTML body files under posts/.
func (d *Discovery) FindPostHTML() (map[string]string, error) {
	htmlFiles := make(map[string]string)

	entries, err := os.ReadDir(d.paths.PostsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return htmlFiles, nil
		}
		return nil, errors.NewStorageError("failed to read posts directory", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), config.PostHTMLSuffix) {
			continue
		}
		stem := strings.TrimSuffix(entry.Name(), config.PostHTMLSuffix)
		id, _ := domain.SplitPostID(stem)
		htmlFiles[id] = filepath.Join(d.paths.PostsDir(), entry.Name())
	}

	return htmlFiles, nil
}

// MatchPostID reconciles a log-derived identifier with the known post IDs.
// Exact match wins; otherwise the longest known ID that prefixes the
// candidate is returned as a best-effort fallback. Not a guaranteed
// contract: numeric prefixes can collide, callers must tolerate a miss.
func MatchPostID(candidate string, known map[string]bool) (string, bool) {
	if known[candidate] {
		return candidate, true
	}

	best := ""
	for id := range known {
		if strings.HasPrefix(candidate, id) && len(id) > len(best) {
			best = id
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}
