package vault

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// settleDelay batches bursts of file events before links are rebuilt.
const settleDelay = 200 * time.Millisecond

// Watch starts an fsnotify watcher on the vault root and mirrors file
// changes into notes until ctx is cancelled.
//
// New directories created at runtime are added to the watch list. After a
// burst of changes settles, a full Sync pass runs to remove notes whose
// files disappeared through renames, and the owner's links are rebuilt.
func (im *Importer) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := im.fs.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	im.log.Info("watcher: started", slog.String("root", root))

	var settleTimer *time.Timer
	var settleCh <-chan time.Time

	scheduleSettle := func() {
		if settleTimer == nil {
			settleTimer = time.NewTimer(settleDelay)
			settleCh = settleTimer.C
		} else {
			settleTimer.Reset(settleDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if settleTimer != nil {
				settleTimer.Stop()
			}
			im.log.Info("watcher: stopped")
			return nil

		case <-settleCh:
			im.settle(ctx)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if im.handle(ctx, w, ev) {
				scheduleSettle()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			im.log.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// settle reconciles the vault and rebuilds the owner's links. Files seen by
// handle are already imported, so Sync finds them unchanged and the rebuild
// has to happen here.
func (im *Importer) settle(ctx context.Context) {
	sum, err := im.Sync(ctx, false)
	if err != nil {
		im.log.Warn("watcher: sync failed", slog.String("error", err.Error()))
		return
	}
	if sum.Changed() {
		return
	}
	if _, err := im.svc.ResyncAll(ctx, im.owner); err != nil {
		im.log.Warn("watcher: resync failed", slog.String("error", err.Error()))
	}
}

// handle applies one event and reports whether a settle pass is needed.
func (im *Importer) handle(ctx context.Context, w *fsnotify.Watcher, ev fsnotify.Event) bool {
	absPath := ev.Name

	if ev.Op&fsnotify.Create != 0 {
		if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
			if addErr := addDirsRecursive(w, absPath); addErr != nil {
				im.log.Warn("watcher: add new dir failed",
					slog.String("path", absPath),
					slog.String("error", addErr.Error()))
			}
			// Files already inside are picked up by the settle pass.
			return true
		}
	}

	if !isNoteFile(absPath) {
		return false
	}
	rel, err := im.fs.rel(absPath)
	if err != nil || strings.HasPrefix(rel, "../") {
		return false
	}

	switch {
	case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
		changed, err := im.ImportFile(ctx, rel)
		if err != nil {
			im.log.Warn("watcher: import failed", slog.String("path", rel), slog.String("error", err.Error()))
			return false
		}
		if changed {
			im.log.Debug("watcher: imported", slog.String("path", rel))
		}
		return changed

	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// Rename fires on the old path only; the new path arrives as Create.
		if err := im.Remove(ctx, rel); err != nil {
			im.log.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
			return false
		}
		im.log.Debug("watcher: deleted", slog.String("path", rel))
		return true
	}
	return false
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
