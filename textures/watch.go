package textures

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
)

// Watcher flags changes to a list file. GPU uploads must happen on the
// render thread, so the watcher only records that a reload is due; the
// frame loop calls Changed and reloads itself.
type Watcher struct {
	w     *fsnotify.Watcher
	path  string
	dirty atomic.Bool
	done  chan struct{}
}

// Watch starts watching path until ctx is cancelled or Close is called. The
// parent directory is watched so editors that replace the file are seen.
func Watch(ctx context.Context, path string, log *slog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	w := &Watcher{w: fw, path: filepath.Clean(path), done: make(chan struct{})}
	log = log.With("component", "textures", "watch", path)

	go func() {
		defer close(w.done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != w.path {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
					log.Debug("list changed", "op", ev.Op.String())
					w.dirty.Store(true)
				}
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				log.Warn("watch error", "err", err)
			}
		}
	}()
	return w, nil
}

// Changed reports whether the file changed since the last call.
func (w *Watcher) Changed() bool {
	return w.dirty.Swap(false)
}

func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}
