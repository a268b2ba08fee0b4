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

// Package events carries outbound animation events from the binding pipeline
// to rendering consumers.
package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/carverauto/scenebind/pkg/clock"
	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
)

// Listener receives published events. It runs on the publisher's goroutine.
type Listener func(ctx context.Context, ev models.AnimationEvent)

type subscription struct {
	id       uint64
	modelID  string
	listener Listener
}

// Bus fans animation events out to listeners keyed by model id.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	nextID uint64
	clock  clock.Clock
	log    logger.Logger
}

// Option configures a Bus.
type Option func(*Bus)

// WithClock sets the clock used to stamp events.
func WithClock(c clock.Clock) Option {
	return func(b *Bus) {
		b.clock = c
	}
}

// WithLogger sets the bus logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Bus) {
		b.log = l
	}
}

// NewBus returns an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		clock: clock.Real(),
		log:   logger.NewTestLogger(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// Subscribe registers l for events addressed to modelID. The returned func
// removes the subscription and may be called more than once.
func (b *Bus) Subscribe(modelID string, l Listener) (unsubscribe func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, modelID: modelID, listener: l})
	b.mu.Unlock()

	var once sync.Once

	return func() {
		once.Do(func() { b.remove(id) })
	}
}

// SubscribeAll registers l for every event regardless of model.
func (b *Bus) SubscribeAll(l Listener) (unsubscribe func()) {
	return b.Subscribe("", l)
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Len reports the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subs)
}

// Publish validates ev, stamps it and hands it to every matching listener.
// A panicking listener is logged and does not stop delivery to the others.
func (b *Bus) Publish(ctx context.Context, ev models.AnimationEvent) error {
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("invalid %q event for %q: %w", ev.Type, ev.ModelID, err)
	}

	ev.Stamp(b.clock.Now())

	b.mu.RLock()
	targets := make([]Listener, 0, len(b.subs))

	for _, s := range b.subs {
		if s.modelID == "" || s.modelID == ev.ModelID {
			targets = append(targets, s.listener)
		}
	}
	b.mu.RUnlock()

	for _, l := range targets {
		b.deliver(ctx, l, ev)
	}

	return nil
}

func (b *Bus) deliver(ctx context.Context, l Listener, ev models.AnimationEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().
				Str("model_id", ev.ModelID).
				Str("event_type", string(ev.Type)).
				Interface("panic", r).
				Msg("Animation event listener panicked")
		}
	}()

	l(ctx, ev)
}
