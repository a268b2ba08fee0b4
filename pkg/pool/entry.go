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

package pool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/carverauto/scenebind/pkg/adapter"
	"github.com/carverauto/scenebind/pkg/models"
)

// entry is one physical connection shared by every binding of a source.
type entry struct {
	sourceID string
	src      models.SourceConfig
	adapter  adapter.Adapter

	mu         sync.Mutex
	state      adapter.State
	connected  bool
	closed     bool
	bindings   map[string]*bindingState
	order      []string
	lastTopic  string
	lastData   interface{}
	lastUpdate time.Time
	poll       pollParams
	pollStop   func()

	// subMu serializes topic reconciliation so a topic is never issued twice.
	subMu      sync.Mutex
	subscribed map[string]bool
}

// pollParams is the single poll schedule of an http entry.
type pollParams struct {
	interval time.Duration
	request  adapter.Request
}

func newEntry(src models.SourceConfig, a adapter.Adapter) *entry {
	return &entry{
		sourceID:   src.ID,
		src:        src,
		adapter:    a,
		state:      adapter.StateDisconnected,
		bindings:   make(map[string]*bindingState),
		subscribed: make(map[string]bool),
	}
}

// setBindings replaces the binding set, keeping value history for ids that
// survive.
func (e *entry) setBindings(states []*bindingState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := make(map[string]*bindingState, len(states))
	order := make([]string, 0, len(states))

	for _, s := range states {
		if old, ok := e.bindings[s.binding.ID]; ok && old != s {
			s.carry(old)
		}

		next[s.binding.ID] = s
		order = append(order, s.binding.ID)
	}

	e.bindings = next
	e.order = order
	e.poll = e.pollParamsLocked()
}

func (e *entry) putBinding(s *bindingState) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.bindings[s.binding.ID]; !ok {
		e.order = append(e.order, s.binding.ID)
	}

	e.bindings[s.binding.ID] = s
	e.poll = e.pollParamsLocked()
}

// removeBinding drops id and reports how many bindings remain.
func (e *entry) removeBinding(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.bindings, id)

	for i, v := range e.order {
		if v == id {
			e.order = append(e.order[:i:i], e.order[i+1:]...)
			break
		}
	}

	e.poll = e.pollParamsLocked()

	return len(e.bindings)
}

// snapshot returns the bindings in insertion order.
func (e *entry) snapshot() []*bindingState {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*bindingState, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.bindings[id])
	}

	return out
}

// topics is the union of the configured source topics and every topic the
// bindings reference, in first-seen order.
func (e *entry) topics() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	var out []string

	for _, t := range e.src.Topics() {
		out = appendUnique(out, t)
	}

	for _, id := range e.order {
		for _, t := range e.bindings[id].topics {
			out = appendUnique(out, t)
		}
	}

	return out
}

func (e *entry) qos() byte {
	if e.src.PubSub != nil {
		return e.src.PubSub.QoS
	}

	return 0
}

func (e *entry) isConnected() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.connected
}

// syncTopics subscribes missing topics and unsubscribes stale ones. It is a
// no-op unless the entry is connected.
func (e *entry) syncTopics(ctx context.Context) error {
	if e.src.Protocol != models.ProtocolPubSub && !socketFrames(e.src) {
		return nil
	}

	e.subMu.Lock()
	defer e.subMu.Unlock()

	e.mu.Lock()
	live := e.connected && !e.closed
	e.mu.Unlock()

	if !live {
		return nil
	}

	want := e.topics()
	wanted := make(map[string]bool, len(want))

	var errs []error

	for _, t := range want {
		wanted[t] = true

		if e.subscribed[t] {
			continue
		}

		if err := e.adapter.Subscribe(ctx, t, e.qos()); err != nil {
			errs = append(errs, fmt.Errorf("subscribe %s: %w", t, err))
			continue
		}

		e.subscribed[t] = true
	}

	var stale []string

	for t := range e.subscribed {
		if !wanted[t] {
			stale = append(stale, t)
		}
	}

	sort.Strings(stale)

	for _, t := range stale {
		if err := e.adapter.Unsubscribe(ctx, t); err != nil {
			errs = append(errs, fmt.Errorf("unsubscribe %s: %w", t, err))
			continue
		}

		delete(e.subscribed, t)
	}

	return errors.Join(errs...)
}

func (e *entry) subscriptions() []string {
	e.subMu.Lock()
	defer e.subMu.Unlock()

	out := make([]string, 0, len(e.subscribed))
	for t := range e.subscribed {
		out = append(out, t)
	}

	sort.Strings(out)

	return out
}

func socketFrames(src models.SourceConfig) bool {
	return src.Protocol == models.ProtocolSocket && src.Socket != nil && src.Socket.SubscribeFrames
}

// pollParamsLocked derives the poll schedule: the first binding with an
// httpConfig wins, otherwise the source defaults apply.
func (e *entry) pollParamsLocked() pollParams {
	var p pollParams

	if e.src.HTTP != nil {
		p.interval = e.src.HTTP.PollInterval.Std()
		p.request.Method = e.src.HTTP.Method
		p.request.Timeout = e.src.HTTP.Timeout.Std()
	}

	for _, id := range e.order {
		cfg := e.bindings[id].binding.HTTPConfig
		if cfg == nil {
			continue
		}

		c := cfg.WithDefaults()
		p.interval = c.PollInterval.Std()
		p.request = adapter.Request{
			Method:  c.Method,
			Headers: c.Headers,
			Body:    encodeBody(c.Body),
			Timeout: c.Timeout.Std(),
		}

		break
	}

	return p
}

func encodeBody(body interface{}) []byte {
	switch b := body.(type) {
	case nil:
		return nil
	case string:
		return []byte(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			return nil
		}

		return raw
	}
}

// startPoll starts the entry's single poll loop if the adapter pulls data
// and no loop is running. Fetch failures are logged by the adapter; the
// loop keeps its schedule.
func (e *entry) startPoll(ctx context.Context) {
	poller, ok := e.adapter.(adapter.Poller)
	if !ok {
		return
	}

	fetcher, ok := e.adapter.(adapter.Fetcher)
	if !ok {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pollStop != nil || e.closed || !e.connected {
		return
	}

	req := e.poll.request
	e.pollStop = poller.Poll(ctx, e.poll.interval, func(ctx context.Context) {
		_ = fetcher.Fetch(ctx, req)
	})
}

func (e *entry) stopPoll() {
	e.mu.Lock()
	stop := e.pollStop
	e.pollStop = nil
	e.mu.Unlock()

	if stop != nil {
		stop()
	}
}

// restartPoll applies a changed schedule.
func (e *entry) restartPoll(ctx context.Context, prev pollParams) {
	e.mu.Lock()
	changed := !samePoll(prev, e.poll)
	e.mu.Unlock()

	if !changed {
		return
	}

	e.stopPoll()
	e.startPoll(ctx)
}

func (e *entry) pollSchedule() pollParams {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.poll
}

func samePoll(a, b pollParams) bool {
	if a.interval != b.interval || a.request.Method != b.request.Method ||
		a.request.Timeout != b.request.Timeout || string(a.request.Body) != string(b.request.Body) ||
		len(a.request.Headers) != len(b.request.Headers) {
		return false
	}

	for k, v := range a.request.Headers {
		if b.request.Headers[k] != v {
			return false
		}
	}

	return true
}
