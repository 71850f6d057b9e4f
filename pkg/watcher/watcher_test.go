package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchDebouncesWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roof.stl")
	require.NoError(t, os.WriteFile(path, []byte("solid roof\n"), 0644))

	fw, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	var calls atomic.Int32
	changed := make(chan string, 4)
	require.NoError(t, fw.Watch([]string{path}, func(p string) {
		calls.Add(1)
		changed <- p
	}))
	fw.Start()

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(path, []byte("solid roof\nendsolid roof\n"), 0644))
	}

	select {
	case got := <-changed:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, got)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "burst collapses into one callback")
}

func TestWatchMissingFile(t *testing.T) {
	fw, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	err = fw.Watch([]string{filepath.Join(t.TempDir(), "missing.stl")}, func(string) {})
	assert.Error(t, err)
}

func TestRemoveAll(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps: []\n"), 0644))

	fw, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Close()

	require.NoError(t, fw.Watch([]string{path}, func(string) {}))
	require.NoError(t, fw.RemoveAll())
	assert.Empty(t, fw.callbacks)
}
