package formdef

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watch watches a definition file and emits a freshly parsed
// Definition each time the file is written. The current contents are
// parsed and emitted immediately, so the first receive is the initial
// load. Documents that fail to parse are reported on the error channel
// and the previously emitted definition stays in effect.
//
// The definition channel closes when ctx is canceled.
func Watch(ctx context.Context, path string) (<-chan *Definition, <-chan error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("formdef: create watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, nil, fmt.Errorf("formdef: watch %s: %w", path, err)
	}

	defs := make(chan *Definition)
	errs := make(chan error, 1)

	go func() {
		defer close(defs)
		defer watcher.Close()

		emit := func() {
			def, err := Load(path)
			if err != nil {
				select {
				case errs <- err:
				default:
				}
				return
			}
			select {
			case defs <- def:
			case <-ctx.Done():
			}
		}

		// Emit current contents before watching for changes.
		emit()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				emit()

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Keep watching despite transient errors.
			}
		}
	}()

	return defs, errs, nil
}
