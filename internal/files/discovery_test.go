package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subpulse/internal/config"
	"subpulse/internal/errors"
)

func newTestDiscovery(t *testing.T) (*Discovery, string) {
	t.Helper()
	archiveDir := t.TempDir()
	paths, err := config.NewPaths(archiveDir, t.TempDir())
	require.NoError(t, err)
	return NewDiscovery(paths), archiveDir
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestFindPostsCSV(t *testing.T) {
	discovery, archiveDir := newTestDiscovery(t)

	_, err := discovery.FindPostsCSV()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))

	touch(t, filepath.Join(archiveDir, "posts.csv"))

	path, err := discovery.FindPostsCSV()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(archiveDir, "posts.csv"), path)
}

func TestFindSubscriberCSV_OptionalAndDeterministic(t *testing.T) {
	discovery, archiveDir := newTestDiscovery(t)

	// Absent roster is not an error.
	path, err := discovery.FindSubscriberCSV()
	require.NoError(t, err)
	assert.Empty(t, path)

	touch(t, filepath.Join(archiveDir, "b_email_list_2024.csv"))
	touch(t, filepath.Join(archiveDir, "a_email_list_2023.csv"))

	path, err = discovery.FindSubscriberCSV()
	require.NoError(t, err)
	// Multiple snapshots: lexicographically first wins, every run.
	assert.Equal(t, filepath.Join(archiveDir, "a_email_list_2023.csv"), path)
}

func TestFindEngagementLogs(t *testing.T) {
	discovery, archiveDir := newTestDiscovery(t)

	touch(t, filepath.Join(archiveDir, "posts", "101.launch-week.opens.csv"))
	touch(t, filepath.Join(archiveDir, "posts", "101.launch-week.delivers.csv"))
	touch(t, filepath.Join(archiveDir, "posts", "102.second.post.opens.csv"))
	touch(t, filepath.Join(archiveDir, "posts", "101.launch-week.html"))

	logs, err := discovery.FindEngagementLogs()
	require.NoError(t, err)

	// Keys are the ID segment before the first dot.
	assert.Contains(t, logs.Opens, "101")
	assert.Contains(t, logs.Delivers, "101")
	assert.Contains(t, logs.Opens, "102")
	assert.NotContains(t, logs.Delivers, "102")
	assert.Len(t, logs.Opens, 2)
}

func TestFindEngagementLogs_NoPostsDir(t *testing.T) {
	discovery, _ := newTestDiscovery(t)

	logs, err := discovery.FindEngagementLogs()
	require.NoError(t, err)
	assert.Empty(t, logs.Opens)
	assert.Empty(t, logs.Delivers)
}

func TestFindPostHTML(t *testing.T) {
	discovery, archiveDir := newTestDiscovery(t)

	touch(t, filepath.Join(archiveDir, "posts", "101.launch-week.html"))
	touch(t, filepath.Join(archiveDir, "posts", "101.launch-week.opens.csv"))

	htmlFiles, err := discovery.FindPostHTML()
	require.NoError(t, err)
	require.Len(t, htmlFiles, 1)
	assert.Contains(t, htmlFiles["101"], "101.launch-week.html")
}

func TestMatchPostID(t *testing.T) {
	known := map[string]bool{"101": true, "1013": true, "42": true}

	tests := []struct {
		name      string
		candidate string
		want      string
		ok        bool
	}{
		{name: "exact", candidate: "42", want: "42", ok: true},
		{name: "longest prefix wins", candidate: "1013extra", want: "1013", ok: true},
		{name: "shorter prefix", candidate: "101x", want: "101", ok: true},
		{name: "no match", candidate: "999", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchPostID(tt.candidate, known)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
