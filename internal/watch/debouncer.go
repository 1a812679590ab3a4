package watch

import (
	"sort"
	"sync"
	"time"
)

// Debouncer collects changed paths and emits them as one batch after a
// quiet period. Repeated changes to a path within the window collapse.
type Debouncer struct {
	interval time.Duration
	paths    map[string]struct{}
	mu       sync.Mutex
	timer    *time.Timer
	output   chan []string
}

// NewDebouncer creates a debouncer with the specified quiet interval
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{
		interval: interval,
		paths:    make(map[string]struct{}),
		output:   make(chan []string, 16),
	}
}

// Output returns the channel that receives sorted batches of paths
func (d *Debouncer) Output() <-chan []string {
	return d.output
}

// Add records a change and restarts the quiet period
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.paths[path] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.paths) == 0 {
		return
	}

	batch := make([]string, 0, len(d.paths))
	for path := range d.paths {
		batch = append(batch, path)
	}
	sort.Strings(batch)

	d.paths = make(map[string]struct{})
	d.output <- batch
}
