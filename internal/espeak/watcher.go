package espeak

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// dataDirs are the usual espeak-ng-data install locations.
var dataDirs = []string{
	"/usr/share/espeak-ng-data",
	"/usr/lib/x86_64-linux-gnu/espeak-ng-data",
	"/usr/lib/aarch64-linux-gnu/espeak-ng-data",
	"/usr/local/share/espeak-ng-data",
	"/opt/homebrew/share/espeak-ng-data",
}

// watchDebounce coalesces bursts of file events into one refresh.
var watchDebounce = 500 * time.Millisecond

// ErrNoDataDir is returned when no espeak-ng data directory exists.
var ErrNoDataDir = errors.New("espeak-ng data directory not found")

// FindDataDir returns override when set, else the first existing default
// location. ESPEAK_DATA_PATH is checked before the defaults.
func FindDataDir(override string) (string, error) {
	if override != "" {
		if !isDir(override) {
			return "", fmt.Errorf("%w: %s", ErrNoDataDir, override)
		}
		return override, nil
	}
	candidates := dataDirs
	if env := os.Getenv("ESPEAK_DATA_PATH"); env != "" {
		candidates = append([]string{filepath.Join(env, "espeak-ng-data"), env}, candidates...)
	}
	for _, dir := range candidates {
		if isDir(dir) {
			return dir, nil
		}
	}
	return "", ErrNoDataDir
}

// Watcher refreshes an Output's voice list when espeak-ng voice files
// change on disk.
type Watcher struct {
	out      *Output
	watcher  *fsnotify.Watcher
	debounce time.Duration
	done     chan struct{}
	once     sync.Once
}

// Watch starts watching dir along with its lang and voices trees.
func Watch(out *Output, dir string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating fsnotify watcher: %w", err)
	}

	w := &Watcher{
		out:      out,
		watcher:  fw,
		debounce: watchDebounce,
		done:     make(chan struct{}),
	}
	if err := w.add(dir); err != nil {
		_ = fw.Close()
		return nil, err
	}

	log.Info("fsnotify watching espeak data", "dir", dir)
	go w.loop()
	return w, nil
}

func (w *Watcher) add(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("error adding dir to fsnotify watcher: %w", err)
	}
	for _, sub := range []string{"lang", "voices"} {
		root := filepath.Join(dir, sub)
		if !isDir(root) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return err
			}
			return w.watcher.Add(path)
		})
		if err != nil {
			return fmt.Errorf("error watching %s: %w", root, err)
		}
	}
	return nil
}

func (w *Watcher) loop() {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if err := w.watcher.Add(event.Name); err != nil {
					log.Debug("error adding dir to fsnotify watcher", "dir", event.Name, "error", err)
				}
			}

			log.Debug("espeak data changed", "event", event)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
			if err := w.out.Refresh(ctx); err != nil {
				log.Error("error refreshing espeak voices", "error", err)
			}
			cancel()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error("fsnotify error", "error", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
