package daemon

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/bannerd/internal/config"
)

func newTestWatcher(t *testing.T) (*ConfigWatcher, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bannerd.toml")
	return NewConfigWatcher(path, slog.New(slog.NewTextHandler(io.Discard, nil))), path
}

func TestConfigWatcher_Reload(t *testing.T) {
	w, path := newTestWatcher(t)

	var reloaded []*config.Config
	var errs []error
	w.SetReloadCallback(func(c *config.Config) { reloaded = append(reloaded, c) })
	w.SetErrorCallback(func(err error) { errs = append(errs, err) })

	w.Reload()
	assert.Empty(t, reloaded, "missing file is ignored")

	require.NoError(t, os.WriteFile(path, []byte("[presentation]\nstyle = \"bottom\"\n"), 0o644))
	w.Reload()
	require.Len(t, reloaded, 1)
	assert.Equal(t, "bottom", reloaded[0].Presentation.Style)
	assert.Same(t, reloaded[0], w.Current())

	w.Reload()
	assert.Len(t, reloaded, 1, "unchanged contents are not reapplied")

	require.NoError(t, os.WriteFile(path, []byte("[presentation]\nstyle = \"sideways\"\n"), 0o644))
	w.Reload()
	require.Len(t, errs, 1)
	assert.Len(t, reloaded, 1)
	assert.Equal(t, "bottom", w.Current().Presentation.Style, "invalid file keeps previous config")
}

func TestConfigWatcher_WatchesFile(t *testing.T) {
	w, path := newTestWatcher(t)

	var mu sync.Mutex
	var styles []string
	w.SetReloadCallback(func(c *config.Config) {
		mu.Lock()
		defer mu.Unlock()
		styles = append(styles, c.Presentation.Style)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx, config.Default()))
	defer w.Stop()
	assert.Equal(t, "top", w.Current().Presentation.Style)

	require.NoError(t, os.WriteFile(path, []byte("[presentation]\nstyle = \"center\"\n"), 0o644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(styles) > 0 && styles[len(styles)-1] == "center"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestConfigWatcher_StopIdempotent(t *testing.T) {
	w, _ := newTestWatcher(t)
	w.Stop()

	require.NoError(t, w.Start(context.Background(), config.Default()))
	require.NoError(t, w.Start(context.Background(), config.Default()))
	w.Stop()
	w.Stop()
}
