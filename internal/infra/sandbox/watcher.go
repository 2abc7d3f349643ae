package sandbox

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultChangeDebounce = 200 * time.Millisecond

// Watcher observes the sandbox tree and emits one coalesced signal per burst
// of filesystem changes. fsnotify watches are per-directory, so new
// directories are added to the watch set as they appear.
type Watcher struct {
	root     Root
	logger   *zap.Logger
	debounce time.Duration
	changes  chan struct{}
}

func NewWatcher(root Root, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		root:     root,
		logger:   logger.Named("sandbox_watcher"),
		debounce: defaultChangeDebounce,
		changes:  make(chan struct{}, 1),
	}
}

// Changes delivers at most one pending signal; bursts are coalesced.
func (w *Watcher) Changes() <-chan struct{} {
	return w.changes
}

// Run blocks until ctx is canceled. Watch setup failure is logged, not fatal:
// the periodic resource refresh still covers changes.
func (w *Watcher) Run(ctx context.Context) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn("sandbox watcher failed", zap.Error(err))
		return
	}
	defer watcher.Close()

	w.addTree(watcher, w.root.Dir())

	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-watcher.Errors:
			if err != nil {
				w.logger.Warn("sandbox watcher error", zap.Error(err))
			}
		case event := <-watcher.Events:
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					w.addTree(watcher, event.Name)
				}
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				continue
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case <-timerChan(timer):
			timer = nil
			select {
			case w.changes <- struct{}{}:
			default:
			}
		}
	}
}

func (w *Watcher) addTree(watcher *fsnotify.Watcher, dir string) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if addErr := watcher.Add(path); addErr != nil {
			w.logger.Warn("sandbox watcher add failed", zap.String("path", path), zap.Error(addErr))
		}
		return nil
	})
	if err != nil {
		w.logger.Warn("sandbox watcher walk failed", zap.String("dir", dir), zap.Error(err))
	}
}

func timerChan(timer *time.Timer) <-chan time.Time {
	if timer == nil {
		return nil
	}
	return timer.C
}
