// Package watcher hot-reloads the talk deck when its file changes on
// disk, so an external editor can update a live presentation.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/slidecast/presentation-service/internal/deck"
	"github.com/slidecast/presentation-service/internal/service"
	"github.com/slidecast/presentation-service/pkg/model"
)

const debounce = 300 * time.Millisecond

// Start watches the deck file and reloads the presentation on change.
// Reload failures are logged, never fatal: a half-saved file must not
// kill a running talk. Blocks until the context is cancelled.
func Start(ctx context.Context, path string, svc *service.PresentationService, gen *model.SlideIDGenerator, log *zap.Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	log.Info("watching deck file", zap.String("path", path))

	var lastReload time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) {
				continue
			}
			if time.Since(lastReload) < debounce {
				continue
			}
			// Editors often replace the file, which drops the watch.
			if event.Has(fsnotify.Remove) {
				_ = w.Add(path)
			}

			newTalk, err := deck.Load(path, gen)
			if err != nil {
				log.Error("deck reload failed", zap.String("path", path), zap.Error(err))
				continue
			}
			if err := svc.ReloadTalk(newTalk); err != nil {
				log.Error("talk reload rejected", zap.Error(err))
				continue
			}
			lastReload = time.Now()
			log.Info("deck reloaded", zap.String("path", path))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn("deck watcher error", zap.Error(err))
		}
	}
}
