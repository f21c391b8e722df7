package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watch ingests PDFs created or rewritten under root/<namespace>/ until ctx ends.
// A file is ingested once it has been quiet for debounce; new namespace folders are
// picked up as they appear.
func (i *Ingester) Watch(ctx context.Context, root, only string, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = 2 * time.Second
	}
	root = filepath.Clean(root)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("read data root %s: %w", root, err)
	}
	for _, e := range entries {
		if e.IsDir() && (only == "" || e.Name() == only) {
			i.watchDir(w, filepath.Join(root, e.Name()))
		}
	}

	i.logger.Info("watching for pdf changes", zap.String("root", root), zap.Duration("debounce", debounce))

	pending := make(map[string]time.Time) // path -> last event
	tick := debounce / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			dir := filepath.Dir(event.Name)
			if dir == root {
				// a new namespace folder
				if event.Op&fsnotify.Create != 0 && isDir(event.Name) &&
					(only == "" || filepath.Base(event.Name) == only) {
					i.watchDir(w, event.Name)
					// files copied or moved in with the folder raise no events of their own
					pdfs, err := listPDFs(event.Name)
					if err != nil {
						i.logger.Warn("list new namespace folder failed", zap.String("dir", event.Name), zap.Error(err))
					}
					for _, path := range pdfs {
						pending[path] = time.Now()
					}
				}
				continue
			}
			if !isPDF(event.Name) || event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			pending[event.Name] = time.Now()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			i.logger.Warn("watcher error", zap.Error(err))

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < debounce {
					continue
				}
				delete(pending, path)
				namespace := filepath.Base(filepath.Dir(path))
				uploaded, skipped, err := i.IngestFile(ctx, namespace, path)
				if err != nil {
					i.logger.Error("pdf ingestion failed",
						zap.String("namespace", namespace),
						zap.String("file", filepath.Base(path)),
						zap.Error(err))
					continue
				}
				i.logger.Info("pdf change ingested",
					zap.String("namespace", namespace),
					zap.String("file", filepath.Base(path)),
					zap.Int("vectors", uploaded),
					zap.Bool("skipped", skipped))
			}
		}
	}
}

func (i *Ingester) watchDir(w *fsnotify.Watcher, dir string) {
	if err := w.Add(dir); err != nil {
		i.logger.Warn("watch namespace folder failed", zap.String("dir", dir), zap.Error(err))
		return
	}
	i.logger.Debug("watching namespace folder", zap.String("dir", dir))
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
