package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/yaoapp/kun/log"
	"github.com/yaoapp/ssr/application"
)

// New create a watcher, onChange is called after a tick found a change
func New(name string, app application.Application, option Option, onChange func(), targets ...Target) *Watcher {
	if option.Interval <= 0 {
		option.Interval = 500 * time.Millisecond
	}

	if option.MaxBackoff < option.Interval {
		option.MaxBackoff = 30 * time.Second
		if option.MaxBackoff < option.Interval {
			option.MaxBackoff = option.Interval
		}
	}

	if onChange == nil {
		onChange = func() {}
	}

	return &Watcher{
		name:     name,
		app:      app,
		option:   option,
		onChange: onChange,
		targets:  targets,
		health:   Health{Status: StatusStopped},
		wake:     make(chan struct{}, 1),
	}
}

// Add a target
func (w *Watcher) Add(target Target) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, t := range w.targets {
		if t == target {
			return
		}
	}
	w.targets = append(w.targets, target)
}

// Start the poller, a started watcher is not restarted
func (w *Watcher) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	w.health.Status = StatusRunning
	if w.option.Notify {
		w.startNotify()
	}
	go w.supervise(ctx, w.done)
	log.Trace("[Watch] %s started. interval:%s", w.name, w.option.Interval)
}

// Stop the poller and wait for it
func (w *Watcher) Stop() {
	w.mu.Lock()
	cancel := w.cancel
	done := w.done
	w.cancel = nil
	w.done = nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done

	w.mu.Lock()
	w.stopNotify()
	w.health.Status = StatusStopped
	w.mu.Unlock()
	log.Trace("[Watch] %s stopped", w.name)
}

// Health the health report
func (w *Watcher) Health() Health {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.health
}

// Wake poll the targets now
func (w *Watcher) Wake() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Tick poll every target once. Returns true if any target changed.
func (w *Watcher) Tick() (bool, error) {
	w.mu.Lock()
	targets := make([]Target, len(w.targets))
	copy(targets, w.targets)
	w.mu.Unlock()

	changed := false
	errs := []string{}
	for _, target := range targets {
		c, err := target.Refresh()
		if err != nil {
			errs = append(errs, err.Error())
		}
		changed = changed || c
	}

	if changed {
		w.onChange()
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.health.LastTick = time.Now()
	w.health.Ticks++

	if len(errs) > 0 {
		err := fmt.Errorf("%s", strings.Join(errs, "; "))
		w.health.Failures++
		w.health.LastError = err.Error()
		if w.cancel != nil {
			w.health.Status = StatusDegraded
		}
		return changed, err
	}

	w.health.Failures = 0
	if w.cancel != nil {
		w.health.Status = StatusRunning
	}
	return changed, nil
}

// supervise run the loop and restart it after a panic
func (w *Watcher) supervise(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		if !w.run(ctx) {
			return
		}

		w.mu.Lock()
		w.health.Restarts++
		w.health.Status = StatusDegraded
		delay := w.delay()
		w.mu.Unlock()

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}
}

// run the loop, returns true if it crashed
func (w *Watcher) run(ctx context.Context) (crashed bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("[Watch] %s panic: %v\n%s", w.name, r, string(debug.Stack()))
			w.mu.Lock()
			w.health.LastError = fmt.Sprintf("panic: %v", r)
			w.mu.Unlock()
			crashed = true
		}
	}()

	for {
		w.mu.Lock()
		delay := w.delay()
		w.mu.Unlock()

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-w.wake:
			timer.Stop()
		case <-timer.C:
		}

		if ctx.Err() != nil {
			return false
		}

		_, err := w.Tick()
		if err != nil {
			log.Warn("[Watch] %s %s", w.name, err.Error())
		}

		if w.option.Notify {
			w.mu.Lock()
			w.startNotify()
			w.mu.Unlock()
		}
	}
}

// delay the interval doubled for each consecutive failure, the caller must hold the lock
func (w *Watcher) delay() time.Duration {
	delay := w.option.Interval
	for i := 0; i < w.health.Failures && delay < w.option.MaxBackoff; i++ {
		delay = delay * 2
	}
	if delay > w.option.MaxBackoff {
		delay = w.option.MaxBackoff
	}
	return delay
}

// startNotify (re)watch the folders of the target paths when they changed, the caller must hold the lock
func (w *Watcher) startNotify() {
	if w.app == nil {
		return
	}

	dirs := map[string]bool{}
	for _, target := range w.targets {
		for _, path := range target.Paths() {
			dirs[filepath.Dir(path)] = true
		}
	}

	paths := []string{}
	for dir := range dirs {
		paths = append(paths, dir)
	}
	sort.Strings(paths)

	key := strings.Join(paths, "|")
	if key == w.dirs {
		return
	}

	w.stopNotify()
	w.dirs = key
	if len(paths) == 0 {
		return
	}

	interrupt := make(chan uint8, 1)
	w.notify = interrupt
	go func(app application.Application) {
		err := app.Watch(paths, func(event string, name string) {
			w.Wake()
		}, interrupt)
		if err != nil {
			log.Warn("[Watch] %s notify: %s, fall back to polling", w.name, err.Error())
		}
	}(w.app)
}

// stopNotify the caller must hold the lock
func (w *Watcher) stopNotify() {
	if w.notify != nil {
		w.notify <- 0
		w.notify = nil
	}
	w.dirs = ""
}
