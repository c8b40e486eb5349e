package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ManuGH/e33config/internal/fsutil"
)

type collector struct {
	mu      sync.Mutex
	changes []Change
}

func (c *collector) handle(ch Change) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.changes = append(c.changes, ch)
}

func (c *collector) ops() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.changes))
	for i, ch := range c.changes {
		out[i] = ch.Op
	}
	return out
}

func startWatch(t *testing.T, path string, c *collector) (cancel func()) {
	t.Helper()
	ctx, cancelCtx := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, c.handle) }()
	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
	return func() {
		cancelCtx()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Fatal("Watch did not return after cancel")
		}
	}
}

func TestWatch_ReportsTargetChangesOnly(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := filepath.Join(dir, "Engine.ini")
	c := &collector{}
	stop := startWatch(t, path, c)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.ini"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte("[A]\n"), 0o644))

	assert.Eventually(t, func() bool {
		for _, op := range c.ops() {
			if op == "create" || op == "write" {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)

	stop()
	for _, ch := range c.changes {
		assert.Equal(t, path, ch.Path)
	}
}

func TestWatch_SeesAtomicReplace(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	dir := t.TempDir()
	path := filepath.Join(dir, "Engine.ini")
	require.NoError(t, os.WriteFile(path, []byte("[A]\n"), 0o644))
	c := &collector{}
	stop := startWatch(t, path, c)

	require.NoError(t, fsutil.WriteFileAtomic(path, []byte("[B]\n"), 0o644))

	assert.Eventually(t, func() bool { return len(c.ops()) > 0 }, 3*time.Second, 20*time.Millisecond)
	stop()
}

func TestWatch_MissingDirectory(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing", "Engine.ini"), func(Change) {})
	assert.Error(t, err)
}
