/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package interpolation drives time based transitions between successive
// binding values.
package interpolation

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carverauto/scenebind/pkg/clock"
	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
)

const defaultFrameInterval = 16 * time.Millisecond

// Engine owns the live transitions, at most one per id.
type Engine struct {
	clock  clock.Clock
	frame  time.Duration
	logger logger.Logger

	mu     sync.Mutex
	active map[string]*Transition
	lanes  map[string]*sync.Mutex
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) {
		e.clock = c
	}
}

// WithFrameInterval sets how often running transitions are sampled.
func WithFrameInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.frame = d
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// NewEngine returns an engine with a real clock and a 16ms frame interval.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		clock:  clock.Real(),
		frame:  defaultFrameInterval,
		logger: logger.NewTestLogger(),
		active: make(map[string]*Transition),
		lanes:  make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Transition is the control handle of one running transition.
type Transition struct {
	id         string
	engine     *Engine
	from, to   interface{}
	ease       EaseFunc
	duration   time.Duration
	onUpdate   func(interface{})
	onComplete func()

	// lane is shared by every transition created under id.
	lane *sync.Mutex

	cancelled atomic.Bool
	done      chan struct{}
	closeOnce sync.Once

	mu       sync.Mutex
	start    time.Time
	paused   bool
	pausedAt time.Time
	finished bool
}

// CreateTransition starts moving from toward to under cfg. An existing
// transition with the same id is cancelled first. When cfg is nil or
// inactive, onUpdate(to) and onComplete run before CreateTransition returns.
// Updates for one id are serialized. onUpdate must not create a transition
// under its own id.
func (e *Engine) CreateTransition(
	id string,
	from, to interface{},
	cfg *models.InterpolationConfig,
	onUpdate func(interface{}),
	onComplete func(),
) *Transition {
	t := &Transition{
		id:         id,
		engine:     e,
		from:       from,
		to:         to,
		onUpdate:   onUpdate,
		onComplete: onComplete,
		lane:       e.lane(id),
		done:       make(chan struct{}),
	}

	e.Cancel(id)

	if !cfg.Active() {
		t.finished = true
		t.deliver(to)
		t.complete()

		return t
	}

	t.ease = Easing(cfg.EasingKind(), cfg.BezierPoints)
	t.duration = cfg.Duration.Std()
	t.start = e.clock.Now().Add(cfg.Delay.Std())

	ticker := e.clock.Ticker(e.frame)

	e.mu.Lock()
	if old, ok := e.active[id]; ok {
		old.Cancel()
	}

	e.active[id] = t
	e.mu.Unlock()

	e.logger.Debug().
		Str("transition_id", id).
		Dur("duration", t.duration).
		Str("easing", string(cfg.EasingKind())).
		Msg("Transition started")

	go t.run(ticker)

	return t
}

// Cancel stops the transition registered under id, if any.
func (e *Engine) Cancel(id string) {
	e.mu.Lock()
	t, ok := e.active[id]
	delete(e.active, id)
	e.mu.Unlock()

	if ok {
		t.Cancel()
	}
}

// CancelAll stops every live transition.
func (e *Engine) CancelAll() {
	e.mu.Lock()
	live := make([]*Transition, 0, len(e.active))

	for id, t := range e.active {
		live = append(live, t)
		delete(e.active, id)
	}
	e.mu.Unlock()

	for _, t := range live {
		t.Cancel()
	}
}

// Active reports whether a transition is running for id.
func (e *Engine) Active(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	_, ok := e.active[id]

	return ok
}

// Len returns the number of live transitions.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.active)
}

func (e *Engine) lane(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	l, ok := e.lanes[id]
	if !ok {
		l = &sync.Mutex{}
		e.lanes[id] = l
	}

	return l
}

func (e *Engine) release(t *Transition) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cur, ok := e.active[t.id]; ok && cur == t {
		delete(e.active, t.id)
	}
}

// ID returns the transition id.
func (t *Transition) ID() string {
	return t.id
}

// Done is closed once the transition completes or is cancelled.
func (t *Transition) Done() <-chan struct{} {
	return t.done
}

// Cancel stops the transition permanently. It is safe to call repeatedly
// and from inside the callbacks.
func (t *Transition) Cancel() {
	if t.cancelled.Swap(true) {
		return
	}

	t.closeDone()

	if t.engine != nil {
		t.engine.release(t)
	}
}

// Cancelled reports whether Cancel was called.
func (t *Transition) Cancelled() bool {
	return t.cancelled.Load()
}

// Pause freezes elapsed time until Resume.
func (t *Transition) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.paused || t.finished {
		return
	}

	t.paused = true
	t.pausedAt = t.engine.clock.Now()
}

// Resume continues a paused transition from where it stopped.
func (t *Transition) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.paused {
		return
	}

	t.start = t.start.Add(t.engine.clock.Now().Sub(t.pausedAt))
	t.paused = false
}

// Paused reports whether the transition is paused.
func (t *Transition) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.paused
}

func (t *Transition) run(ticker clock.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-t.done:
			return
		case <-ticker.Chan():
			if t.step(t.engine.clock.Now()) {
				return
			}
		}
	}
}

// step samples the transition at now and reports whether it has ended.
func (t *Transition) step(now time.Time) bool {
	if t.cancelled.Load() {
		return true
	}

	t.mu.Lock()
	if t.paused || now.Before(t.start) {
		t.mu.Unlock()
		return false
	}

	progress := 1.0
	if t.duration > 0 {
		progress = math.Min(1, float64(now.Sub(t.start))/float64(t.duration))
	}

	last := progress >= 1
	if last {
		t.finished = true
	}
	t.mu.Unlock()

	if last {
		t.deliver(t.to)

		if !t.cancelled.Load() {
			t.engine.release(t)
			t.engine.logger.Debug().Str("transition_id", t.id).Msg("Transition complete")
			t.complete()
		}

		return true
	}

	t.deliver(Interpolate(t.from, t.to, t.ease(progress)))

	return false
}

// deliver runs onUpdate on the id's lane, so a replaced transition cannot
// report a frame after its successor has started.
func (t *Transition) deliver(v interface{}) {
	if t.onUpdate == nil {
		return
	}

	t.lane.Lock()
	defer t.lane.Unlock()

	if t.cancelled.Load() {
		return
	}

	t.onUpdate(v)
}

func (t *Transition) complete() {
	if t.onComplete != nil {
		t.onComplete()
	}

	t.closeDone()
}

func (t *Transition) closeDone() {
	t.closeOnce.Do(func() { close(t.done) })
}
