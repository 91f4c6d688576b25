package ruleset

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"fraud-core/internal/fraud"
)

// Watch reloads the rule file whenever it changes and hands the parsed set to
// apply. A broken edit is logged and skipped; the previous set stays live.
// Watch blocks until ctx is cancelled.
func Watch(ctx context.Context, path string, apply func([]fraud.Rule) error) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors and config tooling replace the file,
	// which drops a watch set on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}

	target := filepath.Clean(path)
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce bursts of events from a single save.
			pending = time.After(200 * time.Millisecond)
		case <-pending:
			pending = nil
			rules, err := Load(path)
			if err != nil {
				log.Printf("[RULES] reload skipped: %v", err)
				continue
			}
			if err := apply(rules); err != nil {
				log.Printf("[RULES] reload rejected: %v", err)
				continue
			}
			log.Printf("[RULES] reloaded %d rules from %s", len(rules), path)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[RULES] watch error: %v", err)
		}
	}
}
