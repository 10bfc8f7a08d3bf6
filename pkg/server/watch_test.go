package server

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

	"github.com/benjaminschreck/docfill/pkg/docfill"
)

func TestConfigWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docfill.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: info\n"), 0o600))

	var reloads atomic.Int32
	reloaded := make(chan string, 4)
	cw, err := NewConfigWatcher(path, func(p string) error {
		reloads.Add(1)
		reloaded <- p
		return nil
	}, docfill.NewLogger(nil, docfill.LogOff))
	require.NoError(t, err)
	cw.debounceTime = 20 * time.Millisecond

	require.NoError(t, cw.Start(context.Background()))
	defer cw.Stop()
	assert.True(t, cw.IsRunning())

	// other files in the directory are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	select {
	case p := <-reloaded:
		assert.Equal(t, path, p)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	require.NoError(t, cw.Stop())
	assert.False(t, cw.IsRunning())
	assert.GreaterOrEqual(t, reloads.Load(), int32(1))
}

func TestConfigWatcherKeepsRunningAfterFailedReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docfill.yaml")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

	attempts := make(chan struct{}, 4)
	cw, err := NewConfigWatcher(path, func(string) error {
		attempts <- struct{}{}
		return errors.New("invalid")
	}, docfill.NewLogger(nil, docfill.LogOff))
	require.NoError(t, err)
	cw.debounceTime = 10 * time.Millisecond

	require.NoError(t, cw.Start(context.Background()))
	defer cw.Stop()

	for i := 0; i < 2; i++ {
		require.NoError(t, os.WriteFile(path, []byte("listing: {}\n"), 0o600))
		select {
		case <-attempts:
		case <-time.After(5 * time.Second):
			t.Fatalf("reload %d was not attempted", i+1)
		}
	}
	assert.True(t, cw.IsRunning())
}

func TestConfigWatcherStopsWithContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docfill.yaml")
	cw, err := NewConfigWatcher(path, func(string) error { return nil }, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, cw.Start(ctx))
	require.NoError(t, cw.Start(ctx), "starting twice is a no-op")

	cancel()
	select {
	case <-cw.done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not exit")
	}
	assert.NoError(t, cw.Stop())
}

func TestConfigWatcherMissingDirectory(t *testing.T) {
	cw, err := NewConfigWatcher(filepath.Join(t.TempDir(), "missing", "docfill.yaml"), func(string) error { return nil }, nil)
	require.NoError(t, err)

	assert.Error(t, cw.Start(context.Background()))
	assert.False(t, cw.IsRunning())
}
