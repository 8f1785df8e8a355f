package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/njchilds90/polynom/internal/config"
)

// watchDebounce coalesces the burst of events an editor produces on save.
const watchDebounce = 100 * time.Millisecond

// watch prints the composition once, then again after every change to an
// input file, until ctx is cancelled. Failed recomputations are logged and
// do not stop the loop.
func (a *app) watch(ctx context.Context, cfg config.Config) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	// Directories are watched rather than files so that editors replacing
	// a file by rename keep being followed.
	inputs := map[string]bool{}
	dirs := map[string]bool{}
	for _, p := range cfg.Paths() {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		inputs[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	recompute := func() {
		if err := a.compose(cfg); err != nil {
			a.log.Error("recompute failed", "err", err)
		}
	}
	recompute()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !inputs[filepath.Clean(ev.Name)] || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			a.log.Debug("input changed", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(watchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			a.log.Warn("watcher error", "err", err)
		case <-timer.C:
			fmt.Fprintln(a.stdout)
			recompute()
		}
	}
}
