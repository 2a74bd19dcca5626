package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.pdf"), "contract A")
	write(t, filepath.Join(root, "nested", "b.PDF"), "contract B")
	write(t, filepath.Join(root, "nested", "copy-of-a.pdf"), "contract A")
	write(t, filepath.Join(root, "scan.png"), "png bytes")
	write(t, filepath.Join(root, "notes.txt"), "ignored")
	write(t, filepath.Join(root, ".hidden", "c.pdf"), "hidden")

	docs, stats, err := NewScanner(nil).ScanDirectory(context.Background(), root, true)
	require.NoError(t, err)

	assert.Equal(t, uint32(4), stats.Matched)
	assert.Equal(t, uint32(4), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Zero(t, stats.Failed)

	byName := map[string]Document{}
	for _, d := range docs {
		byName[filepath.Base(d.Path)] = d
	}
	require.Contains(t, byName, "b.PDF")
	assert.Equal(t, "pdf", byName["b.PDF"].FileExt)
	assert.Len(t, byName["a.pdf"].HashHex, 64)
	assert.Equal(t, byName["a.pdf"].HashHex, byName["copy-of-a.pdf"].HashHex)
	assert.True(t, byName["copy-of-a.pdf"].Deduplicated)
	assert.False(t, byName["a.pdf"].Deduplicated)
	assert.NotContains(t, byName, "c.pdf")
	assert.NotContains(t, byName, "notes.txt")
}

func TestScanDirectoryRequiresRoot(t *testing.T) {
	_, _, err := NewScanner(nil).ScanDirectory(context.Background(), " ", false)
	assert.Error(t, err)
}

func TestScanDirectoryCancelled(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.pdf"), "x")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewScanner(nil).ScanDirectory(ctx, root, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWatcherEmitsNewDocuments(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "existing.pdf"), "old")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 20 * time.Millisecond})
	require.NoError(t, err)

	got := map[string]bool{}
	select {
	case p := <-events:
		got[filepath.Base(p)] = true
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan emitted nothing")
	}

	write(t, filepath.Join(root, "ignored.txt"), "x")
	write(t, filepath.Join(root, "new.pdf"), "new")

	deadline := time.After(5 * time.Second)
	for !got["new.pdf"] {
		select {
		case p := <-events:
			got[filepath.Base(p)] = true
		case <-deadline:
			t.Fatal("watcher did not report new.pdf")
		}
	}
	assert.True(t, got["existing.pdf"])
	assert.False(t, got["ignored.txt"])
}
