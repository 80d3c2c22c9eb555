package blobstore

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Photo change kinds reported by Watch.
const (
	PhotoAdded   = "added"
	PhotoRemoved = "removed"
)

// EventCallback is called for every photo that appears in or disappears
// from the store.
type EventCallback func(kind, key string)

// Watch reports photo changes under root until ctx is cancelled. Owner
// directories created at runtime are added to the watch list as they
// appear, and photos already inside them are reported as added.
func Watch(ctx context.Context, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Info("photo watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("photo watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			handleEvent(w, root, ev, logger, cb)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("photo watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func handleEvent(w *fsnotify.Watcher, root string, ev fsnotify.Event, logger *slog.Logger, cb EventCallback) {
	abs := ev.Name

	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			if err := addDirsRecursive(w, abs); err != nil {
				logger.Warn("photo watcher: add dir failed",
					slog.String("path", abs), slog.String("error", err.Error()))
				return
			}
			reportDir(root, abs, cb)
			return
		}
	}

	name := filepath.Base(abs)
	if strings.HasPrefix(name, ".") || !IsPhoto(name) {
		return
	}
	key, ok := keyFor(root, abs)
	if !ok {
		return
	}

	switch {
	case ev.Op&fsnotify.Create != 0:
		logger.Debug("photo watcher: added", slog.String("key", key))
		emit(cb, PhotoAdded, key)
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		logger.Debug("photo watcher: removed", slog.String("key", key))
		emit(cb, PhotoRemoved, key)
	}
}

// reportDir reports photos already present in a newly watched directory.
func reportDir(root, dir string, cb EventCallback) {
	_ = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || strings.HasPrefix(d.Name(), ".") || !IsPhoto(d.Name()) {
			return nil
		}
		if key, ok := keyFor(root, p); ok {
			emit(cb, PhotoAdded, key)
		}
		return nil
	})
}

func keyFor(root, abs string) (string, bool) {
	rel, err := filepath.Rel(root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func emit(cb EventCallback, kind, key string) {
	if cb != nil {
		cb(kind, key)
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
