package configuration

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/smallgears/pkg/properties"
)

type reloads struct {
	mu   sync.Mutex
	bags []*properties.Properties
}

func (r *reloads) record(ps *properties.Properties) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bags = append(r.bags, ps)
}

func (r *reloads) last() *properties.Properties {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.bags) == 0 {
		return nil
	}
	return r.bags[len(r.bags)-1]
}

// replaceFile swaps the file in one rename so the watcher never sees a
// half-written document.
func replaceFile(t *testing.T, path, content string) {
	t.Helper()
	tmp := path + ".tmp"
	writeFile(t, tmp, content)
	require.NoError(t, os.Rename(tmp, path))
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yml")
	writeFile(t, path, "greeting: hello\n")

	var got reloads
	w := NewWatcher(path, got.record, WithDebounce(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		ps := got.last()
		return ps != nil && ps.MustProp("greeting").Value() == "hello"
	}, 5*time.Second, 10*time.Millisecond, "initial load")

	replaceFile(t, path, "greeting: goodbye\n")

	require.Eventually(t, func() bool {
		ps := got.last()
		return ps != nil && ps.PropOr("greeting", nil).Value() == "goodbye"
	}, 5*time.Second, 10*time.Millisecond, "reload after write")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatcher_IgnoresBrokenFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.yml")
	writeFile(t, path, "greeting: hello\n")

	var got reloads
	w := NewWatcher(path, got.record, WithDebounce(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	require.Eventually(t, func() bool { return got.last() != nil }, 5*time.Second, 10*time.Millisecond)

	replaceFile(t, path, "greeting: [broken\n")
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, "hello", got.last().MustProp("greeting").Value())
}

func TestNewWatcher_Requires(t *testing.T) {
	assert.Panics(t, func() { NewWatcher("", func(*properties.Properties) {}) })
	assert.Panics(t, func() { NewWatcher("app.yml", nil) })
}
