package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads an EngineConfig from path whenever the file changes on
// disk, delivering each successfully reloaded config on Changes. Decode
// failures are sent on Errors instead, leaving the last-good config alone.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	Changes chan EngineConfig
	Errors  chan error
}

// NewWatcher starts watching path's containing directory (fsnotify watches
// directories more reliably than bind-mounted/symlinked single files across
// editors and atomic-rename writers).
func NewWatcher(path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		watcher: fw,
		Changes: make(chan EngineConfig, 1),
		Errors:  make(chan error, 1),
	}
	return w, nil
}

// Run processes filesystem events until ctx is done or Close is called.
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			cfg, err := Load(w.path)
			if err != nil {
				select {
				case w.Errors <- err:
				default:
				}
				continue
			}
			select {
			case w.Changes <- cfg:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
