package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/Zachdehooge/damage-map/internal/report"
)

// File serves a GeoJSON FeatureCollection from disk and reloads it whenever
// the file changes. It is read-only.
type File struct {
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu      sync.RWMutex
	reports []report.Report
}

// OpenFile loads path and starts watching it.
func OpenFile(path string) (*File, error) {
	f := &File{path: path, done: make(chan struct{})}
	if err := f.reload(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: editors and atomic writers replace the file.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	f.watcher = w
	go f.watch()
	return f, nil
}

func (f *File) watch() {
	defer close(f.done)
	name := filepath.Clean(f.path)
	for {
		select {
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != name || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if err := f.reload(); err != nil {
				log.Printf("[store] reload of %s failed, keeping previous data: %v", f.path, err)
				continue
			}
			log.Printf("[store] reloaded %s", f.path)
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[store] watcher error: %v", err)
		}
	}
}

func (f *File) reload() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("failed to read reports file: %w", err)
	}
	reports, skipped, err := report.ParseFeatureCollection(data)
	if err != nil {
		return err
	}
	if skipped > 0 {
		log.Printf("[store] %s: skipped %d features without a point geometry", f.path, skipped)
	}
	f.mu.Lock()
	f.reports = reports
	f.mu.Unlock()
	return nil
}

func (f *File) Add(context.Context, report.Report) (report.Report, error) {
	return report.Report{}, ErrReadOnly
}

func (f *File) SetDamage(context.Context, string, string) (report.Report, bool, error) {
	return report.Report{}, false, ErrReadOnly
}

// List returns reports in file order.
func (f *File) List(context.Context) ([]report.Report, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]report.Report, len(f.reports))
	copy(out, f.reports)
	return out, nil
}

func (f *File) Close(context.Context) error {
	err := f.watcher.Close()
	<-f.done
	return err
}
