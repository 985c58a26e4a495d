package timer

import (
	"sync"
	"time"
)

// Timer is one countdown. Meta is an opaque payload the engine hands
// back on completion; the engine does not care whether a timer belongs
// to a task or a schedule block.
type Timer struct {
	Duration  time.Duration
	Remaining time.Duration
	StartedAt time.Time
	Running   bool
	Completed bool
	Meta      any
}

// CompletionFunc is invoked exactly once when a countdown reaches zero.
// The timer is already removed from the engine when it fires, so the
// callback must not assume the id still resolves.
type CompletionFunc func(id string, meta any)

// Engine runs at most one active countdown at a time. Remaining time is
// recomputed from wall-clock elapsed time on every tick rather than
// decremented, so missed ticks (app suspension) never desynchronize a
// countdown.
type Engine struct {
	mu         sync.Mutex
	timers     map[string]*Timer
	onComplete CompletionFunc
	now        func() time.Time
}

func NewEngine(onComplete CompletionFunc) *Engine {
	return &Engine{
		timers:     make(map[string]*Timer),
		onComplete: onComplete,
		now:        time.Now,
	}
}

// Start begins a countdown of durationMinutes under id. It returns
// false and changes nothing while any timer in the engine is running,
// regardless of id. Starting over a paused timer with the same id
// replaces it.
func (e *Engine) Start(id string, durationMinutes int, meta any) bool {
	if durationMinutes <= 0 {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range e.timers {
		if t.Running {
			return false
		}
	}

	duration := time.Duration(durationMinutes) * time.Minute
	e.timers[id] = &Timer{
		Duration:  duration,
		Remaining: duration,
		StartedAt: e.now(),
		Running:   true,
		Meta:      meta,
	}
	return true
}

// Stop pauses a timer without marking it completed. The entry stays in
// the engine with its remaining time frozen.
func (e *Engine) Stop(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.timers[id]
	if !ok {
		return
	}
	t.Running = false
}

// Clear removes a timer regardless of state. Used when the underlying
// task or block is deleted or its day's plan changes.
func (e *Engine) Clear(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.timers, id)
}

// Get returns a copy of the timer under id.
func (e *Engine) Get(id string) (Timer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.timers[id]
	if !ok {
		return Timer{}, false
	}
	return *t, true
}

// HasRunning reports whether any countdown is currently active.
func (e *Engine) HasRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, t := range e.timers {
		if t.Running {
			return true
		}
	}
	return false
}

// Len returns the number of live timers, running or paused.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.timers)
}

// Tick recomputes every running timer from wall-clock time. Timers that
// reach zero are removed and their completion callback fires after the
// engine lock is released.
func (e *Engine) Tick(now time.Time) {
	type completion struct {
		id   string
		meta any
	}
	var completed []completion

	e.mu.Lock()
	for id, t := range e.timers {
		if !t.Running {
			continue
		}
		elapsed := now.Sub(t.StartedAt)
		remaining := t.Duration - elapsed
		if remaining <= 0 {
			delete(e.timers, id)
			completed = append(completed, completion{id: id, meta: t.Meta})
			continue
		}
		t.Remaining = remaining
	}
	onComplete := e.onComplete
	e.mu.Unlock()

	if onComplete == nil {
		return
	}
	for _, c := range completed {
		onComplete(c.id, c.meta)
	}
}
