package pokemon

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 500 * time.Millisecond

type watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// newWatcher watches every directory under root for asset changes.
func newWatcher(root string) (*watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := filepath.WalkDir(root, func(dir string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}

		// Ignore any hidden directories, otherwise we end up fighting with things like Spotlight, etc.
		if d.Name()[0] == '.' && dir != root {
			return filepath.SkipDir
		}

		return fw.Add(dir)
	}); err != nil {
		_ = fw.Close()
		return nil, err
	}

	w := &watcher{
		watcher: fw,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *watcher) run() {
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isAssetFile(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < 100*time.Millisecond {
				continue
			}
			last[event.Name] = now
			w.Events <- event.Name
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.Errors <- err
		case <-w.closeCh:
			return
		}
	}
}

func isAssetFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".asm", ".blk", ".bst", ".2bpp":
		return true
	}
	return false
}

// Watch runs one export, then re-runs it whenever the asset tree
// changes, collapsing bursts of events into a single run.
func (e *Exporter) Watch(ctx context.Context) error {
	if err := e.Export(); err != nil {
		return err
	}

	w, err := newWatcher(e.cfg.DataDir)
	if err != nil {
		return err
	}
	defer w.Close()

	var pending <-chan time.Time
	for {
		select {
		case name, ok := <-w.Events:
			if !ok {
				return nil
			}
			e.logger.Printf("\"%s\" changed\n", name)
			pending = time.After(debounceDelay)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return err
		case <-pending:
			pending = nil
			if err := e.Export(); err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
