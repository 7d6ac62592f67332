package workflow

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 500 * time.Millisecond

// Watch runs the workflow once, then again whenever one of its source
// images changes, until ctx is cancelled. Files produced by the workflow
// itself are not watched. A failing run is logged and does not stop the
// watch.
func Watch(ctx context.Context, cfg *Config, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	inputs, err := watchedInputs(cfg)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer w.Close()

	dirs := make(map[string]bool)
	for p := range inputs {
		dirs[filepath.Dir(p)] = true
	}
	for dir := range dirs {
		if err := w.Add(dir); err != nil {
			return fmt.Errorf("failed to watch folder %s: %w", dir, err)
		}
		log.Printf("Watching folder: %s", dir)
	}

	runLogged := func() {
		if err := Run(ctx, cfg); err != nil && ctx.Err() == nil {
			log.Printf("workflow failed: %v", err)
		}
	}
	runLogged()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || !inputs[name] {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Printf("watch error: %v", err)
		case <-fire:
			fire = nil
			log.Println("input changed, re-running workflow")
			runLogged()
		}
	}
}

// watchedInputs returns the absolute paths of the images the workflow reads
// but never writes.
func watchedInputs(cfg *Config) (map[string]bool, error) {
	abs := func(p string) (string, error) {
		a, err := filepath.Abs(cfg.resolve(p))
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", p, err)
		}
		return a, nil
	}
	produced := make(map[string]bool)
	inputs := make(map[string]bool)
	for _, st := range cfg.Steps {
		in, err := abs(st.Input)
		if err != nil {
			return nil, err
		}
		inputs[in] = true
		out, err := abs(st.Output)
		if err != nil {
			return nil, err
		}
		produced[out] = true
	}
	if f := cfg.Favicon; f != nil && f.Source != "" {
		src, err := abs(f.Source)
		if err != nil {
			return nil, err
		}
		inputs[src] = true
	}
	// A file rewritten in place would retrigger its own run.
	for p := range produced {
		delete(inputs, p)
	}
	return inputs, nil
}
