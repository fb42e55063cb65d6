package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Debouncer calls fn once, delay after the last call to Trigger.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	fn      func()
	stopped bool
	running sync.WaitGroup
}

func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	// Add under the lock so Stop cannot miss a call that is starting.
	d.running.Add(1)
	d.mu.Unlock()

	defer d.running.Done()
	d.fn()
}

// Stop cancels a pending call and waits for one already running. Later
// calls to Trigger do nothing.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.mu.Unlock()

	d.running.Wait()
}

// RunTrigger is the Handler used by 'teamsort watch'. New files landing in
// the photo directory and edits to the roster start a run once things
// have been quiet for the debounce period.
type RunTrigger struct {
	table    string
	dir      string
	debounce *Debouncer
}

// NewRunTrigger expects table and dir as absolute, cleaned paths.
func NewRunTrigger(table, dir string, delay time.Duration, run func()) *RunTrigger {
	return &RunTrigger{
		table:    filepath.Clean(table),
		dir:      filepath.Clean(dir),
		debounce: NewDebouncer(delay, run),
	}
}

// Paths returns the directories to watch. The roster's directory is
// watched rather than the file so that editors saving by rename are seen.
func (t *RunTrigger) Paths() []string {
	rosterDir := filepath.Dir(t.table)
	if rosterDir == t.dir {
		return []string{t.dir}
	}
	return []string{t.dir, rosterDir}
}

// Relevant reports whether an event on path should lead to a run
func (t *RunTrigger) Relevant(path string) bool {
	path = filepath.Clean(path)
	if path == t.table {
		return true
	}
	if filepath.Dir(path) != t.dir {
		return false
	}
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

func (t *RunTrigger) HandleFileEvent(event FileEvent) error {
	// a photo leaving the directory is usually our own move
	if event.Type == EventDelete || (event.Type == EventMove && filepath.Clean(event.Path) != t.table) {
		return nil
	}
	if !t.Relevant(event.Path) {
		return nil
	}
	t.debounce.Trigger()
	return nil
}

// Fire starts a run after the debounce period without waiting for an event
func (t *RunTrigger) Fire() {
	t.debounce.Trigger()
}

func (t *RunTrigger) Stop() {
	t.debounce.Stop()
}
