package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"CrateFM/logger"
	"CrateFM/model"

	"github.com/fsnotify/fsnotify"
)

// DropWatcher ingests candidate records dropped as JSON files into a
// watched directory. Each file holds one AlbumRecord or an array of
// them; a file that fails to parse is counted and skipped, never
// aborting the rest.
type DropWatcher struct {
	dir     string
	manager *Manager

	// settle is how long a file must sit unchanged before it is read,
	// so half-written drops are not picked up.
	settle time.Duration
}

// NewDropWatcher builds a watcher over dir.
func NewDropWatcher(dir string, manager *Manager) *DropWatcher {
	return &DropWatcher{
		dir:     dir,
		manager: manager,
		settle:  500 * time.Millisecond,
	}
}

// Run watches the drop directory until the context is cancelled. Files
// already present at startup are ingested first.
func (w *DropWatcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}

	w.sweep(ctx)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return err
	}
	logger.Info("Drop folder watcher started", logger.String("dir", w.dir))

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.settle)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 && strings.HasSuffix(event.Name, ".json") {
				pending[event.Name] = time.Now()
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Drop folder watcher error", logger.ErrorField(err))

		case now := <-ticker.C:
			for path, touched := range pending {
				if now.Sub(touched) < w.settle {
					continue
				}
				delete(pending, path)
				w.ingestFile(ctx, path)
			}
		}
	}
}

// sweep ingests any .json files already sitting in the drop directory.
func (w *DropWatcher) sweep(ctx context.Context) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		logger.Warn("Drop folder sweep failed", logger.ErrorField(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		w.ingestFile(ctx, filepath.Join(w.dir, entry.Name()))
	}
}

// ingestFile parses one dropped file and feeds its candidates through
// the manager. The file is removed after a successful ingest so drops
// are one-shot.
func (w *DropWatcher) ingestFile(ctx context.Context, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("Drop file unreadable", logger.String("path", path), logger.ErrorField(err))
		return
	}

	candidates, failed := parseDropPayload(raw)
	if len(candidates) == 0 && failed > 0 {
		logger.Warn("Drop file could not be parsed",
			logger.String("path", path), logger.ErrorField(ErrParseFailure))
		return
	}

	w.manager.IngestBatch(ctx, candidates, "drop", failed)

	if err := os.Remove(path); err != nil {
		logger.Warn("Drop file cleanup failed", logger.String("path", path), logger.ErrorField(err))
	}
}

// parseDropPayload accepts either one record or an array. Array elements
// that fail validation are counted individually.
func parseDropPayload(raw []byte) ([]model.AlbumRecord, int) {
	var many []json.RawMessage
	if err := json.Unmarshal(raw, &many); err == nil {
		var (
			records []model.AlbumRecord
			failed  int
		)
		for _, item := range many {
			var rec model.AlbumRecord
			if err := json.Unmarshal(item, &rec); err != nil || rec.ID == 0 || rec.Title == "" {
				failed++
				continue
			}
			records = append(records, rec)
		}
		return records, failed
	}

	var rec model.AlbumRecord
	if err := json.Unmarshal(raw, &rec); err != nil || rec.ID == 0 || rec.Title == "" {
		return nil, 1
	}
	return []model.AlbumRecord{rec}, 0
}
