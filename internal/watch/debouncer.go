package watch

import (
	"context"
	"sync"
	"time"
)

// debouncer batches file events until none arrive for the debounce delay
type debouncer struct {
	delay time.Duration
	flush func(ctx context.Context, events map[string]bool)

	mu     sync.Mutex
	events map[string]bool // path -> structural (created, removed or renamed)
	kick   chan struct{}
}

func newDebouncer(delay time.Duration, flush func(context.Context, map[string]bool)) *debouncer {
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	return &debouncer{
		delay:  delay,
		flush:  flush,
		events: make(map[string]bool),
		kick:   make(chan struct{}, 1),
	}
}

// add records an event; a structural event for a path is never downgraded by a later write
func (d *debouncer) add(path string, structural bool) {
	d.mu.Lock()
	d.events[path] = d.events[path] || structural
	d.mu.Unlock()

	select {
	case d.kick <- struct{}{}:
	default:
	}
}

func (d *debouncer) take() map[string]bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	events := d.events
	d.events = make(map[string]bool)
	return events
}

// run owns the timer; flushes happen on this goroutine so Stop can wait for them
func (d *debouncer) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	timer := time.NewTimer(d.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-d.kick:
			timer.Reset(d.delay)
		case <-timer.C:
			if events := d.take(); len(events) > 0 {
				d.flush(ctx, events)
			}
		}
	}
}
