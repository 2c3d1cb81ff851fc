package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherCallsBackOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "app.db")
	other := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(file, []byte("a"), 0o644))

	var calls atomic.Int32
	w, err := NewWatcher([]string{file}, func() error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(file, []byte("b"), 0o644))
	require.Eventually(t, func() bool { return calls.Load() >= 2 }, 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcherInitialError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.db")
	w, err := NewWatcher([]string{file}, func() error { return errors.New("boom") })
	require.NoError(t, err)
	assert.Error(t, w.Run(context.Background()))
}

func TestNewWatcherMissingDirectory(t *testing.T) {
	_, err := NewWatcher([]string{filepath.Join(t.TempDir(), "missing", "app.db")}, func() error { return nil })
	assert.Error(t, err)
}
