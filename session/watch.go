package session

import (
	"github.com/fsnotify/fsnotify"
)

// Watcher pushes a signal on Changed whenever the xsessions/wlsessions
// directories change. It is best-effort: construction failures are
// returned, but the engine treats a nil Watcher (or one that later
// errors) as "no live updates" rather than fatal.
type Watcher struct {
	fsw     *fsnotify.Watcher
	Changed chan struct{}
	Errs    chan error
}

// NewWatcher watches xsessionsDir and wlsessionsDir, skipping any
// directory that does not exist yet.
func NewWatcher(xsessionsDir, wlsessionsDir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range []string{xsessionsDir, wlsessionsDir} {
		if dir == "" {
			continue
		}
		if err := fsw.Add(dir); err != nil {
			// A missing directory is not fatal; it just never fires.
			continue
		}
	}

	w := &Watcher{fsw: fsw, Changed: make(chan struct{}, 1), Errs: make(chan error, 1)}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case _, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			select {
			case w.Changed <- struct{}{}:
			default:
				// A change notification is already pending; discovery
				// will pick up every change made before the next rescan.
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			select {
			case w.Errs <- err:
			default:
			}
		}
	}
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error { return w.fsw.Close() }
