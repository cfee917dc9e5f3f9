package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses bursts of file events into one callback.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reports changes to the note files of one group.
type Watcher struct {
	dir      string
	fw       *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	log      *zap.Logger

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Watch starts watching a group's directory, creating it if needed. onChange
// runs on the watcher goroutine once per quiet period after note files were
// created, written, removed, or renamed. The watcher stops when ctx is done
// or Close is called.
func (s *Store) Watch(ctx context.Context, group string, debounce time.Duration, onChange func()) (*Watcher, error) {
	if err := s.checkGroup(group); err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	dir := s.GroupDir(group)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fail(ErrWrite, "watch", dir, err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fail(ErrRead, "watch", dir, err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fail(ErrRead, "watch", dir, err)
	}

	w := &Watcher{
		dir:      dir,
		fw:       fw,
		debounce: debounce,
		onChange: onChange,
		log:      s.log.With(zap.String("group", group)),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop(ctx)
	return w, nil
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string { return w.dir }

// Close stops the watcher and waits for its goroutine.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fw.Close()
	})
	w.wg.Wait()
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.wg.Done()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if !relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.String("op", "watch"), zap.String("path", w.dir), zap.Error(err))
		case <-fire:
			fire = nil
			w.log.Debug("group changed on disk", zap.String("path", w.dir))
			if w.onChange != nil {
				w.onChange()
			}
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if !strings.HasSuffix(filepath.Base(ev.Name), noteExt) {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}
