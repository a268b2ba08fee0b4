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
	"sync"
	"time"

	"github.com/carverauto/scenebind/pkg/adapter"
	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
)

// fakeAdapter stands in for a protocol client. Tests drive inbound data
// with deliver and connection churn with SetState.
type fakeAdapter struct {
	adapter.Hooks

	src models.SourceConfig

	mu          sync.Mutex
	connectErr  error
	connects    int
	disconnects int
	subs        []string
	unsubs      []string
	sent        []sentPayload
}

type sentPayload struct {
	target  string
	payload string
}

func (f *fakeAdapter) Connect(context.Context) error {
	f.mu.Lock()
	f.connects++
	err := f.connectErr
	f.mu.Unlock()

	if err != nil {
		f.SetState(adapter.StateError, err)
		return err
	}

	f.SetState(adapter.StateConnected, nil)

	return nil
}

func (f *fakeAdapter) Disconnect(context.Context) error {
	f.mu.Lock()
	f.disconnects++
	f.mu.Unlock()

	f.SetState(adapter.StateClosed, nil)

	return nil
}

func (f *fakeAdapter) Subscribe(_ context.Context, topic string, _ byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.subs = append(f.subs, topic)

	return nil
}

func (f *fakeAdapter) Unsubscribe(_ context.Context, topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.unsubs = append(f.unsubs, topic)

	return nil
}

func (f *fakeAdapter) Send(_ context.Context, target string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sent = append(f.sent, sentPayload{target: target, payload: string(payload)})

	return nil
}

func (f *fakeAdapter) deliver(topic, payload string) {
	f.Deliver(topic, []byte(payload))
}

func (f *fakeAdapter) subscriptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.subs...)
}

func (f *fakeAdapter) unsubscriptions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.unsubs...)
}

func (f *fakeAdapter) counts() (connects, disconnects int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.connects, f.disconnects
}

// fakePoller adds the pull side used by http entries.
type fakePoller struct {
	*fakeAdapter

	pmu       sync.Mutex
	intervals []time.Duration
	fetch     adapter.FetchFunc
	requests  []adapter.Request
	stops     int
	body      string
}

func (p *fakePoller) Poll(_ context.Context, interval time.Duration, fetch adapter.FetchFunc) func() {
	p.pmu.Lock()
	defer p.pmu.Unlock()

	p.intervals = append(p.intervals, interval)
	p.fetch = fetch

	return func() {
		p.pmu.Lock()
		defer p.pmu.Unlock()

		p.stops++
	}
}

func (p *fakePoller) Fetch(_ context.Context, req adapter.Request) error {
	p.pmu.Lock()
	p.requests = append(p.requests, req)
	body := p.body
	p.pmu.Unlock()

	p.deliver(p.src.HTTP.URL, body)

	return nil
}

// tick runs one poll cycle the way the poll loop would.
func (p *fakePoller) tick() {
	p.pmu.Lock()
	fetch := p.fetch
	p.pmu.Unlock()

	if fetch != nil {
		fetch(context.Background())
	}
}

func (p *fakePoller) pollState() (intervals []time.Duration, stops int) {
	p.pmu.Lock()
	defer p.pmu.Unlock()

	return append([]time.Duration(nil), p.intervals...), p.stops
}

// fakes is a registry that hands out fake adapters and remembers them by
// source id.
type fakes struct {
	adapter.Registry

	mu       sync.Mutex
	adapters map[string]*fakeAdapter
	pollers  map[string]*fakePoller
	created  int
	failing  map[string]error
}

func newFakes() *fakes {
	f := &fakes{
		Registry: adapter.NewRegistry(),
		adapters: make(map[string]*fakeAdapter),
		pollers:  make(map[string]*fakePoller),
		failing:  make(map[string]error),
	}

	pushers := func(src *models.SourceConfig, _ logger.Logger) (adapter.Adapter, error) {
		return f.newAdapter(src), nil
	}

	f.Register("pubsub/mqtt", pushers)
	f.Register("pubsub/nats", pushers)
	f.Register("socket", pushers)
	f.Register("http", func(src *models.SourceConfig, _ logger.Logger) (adapter.Adapter, error) {
		p := &fakePoller{fakeAdapter: f.newAdapter(src), body: `{"data":{"value":1}}`}

		f.mu.Lock()
		f.pollers[src.ID] = p
		f.mu.Unlock()

		return p, nil
	})

	return f
}

func (f *fakes) newAdapter(src *models.SourceConfig) *fakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()

	a := &fakeAdapter{src: *src, connectErr: f.failing[src.ID]}
	f.adapters[src.ID] = a
	f.created++

	return a
}

func (f *fakes) get(id string) *fakeAdapter {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.adapters[id]
}

func (f *fakes) poller(id string) *fakePoller {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.pollers[id]
}

func (f *fakes) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.created
}

type connChange struct {
	protocol  models.Protocol
	connected bool
}

type bindingErr struct {
	id      string
	message string
}

// recorder collects listener callbacks.
type recorder struct {
	mu      sync.Mutex
	updates []Update
	errs    []bindingErr
	changes []connChange
	panicOn string
}

func (r *recorder) OnDataUpdate(u Update) {
	r.mu.Lock()
	panicOn := r.panicOn
	r.updates = append(r.updates, u)
	r.mu.Unlock()

	if panicOn != "" && u.BindingID == panicOn {
		panic("listener exploded")
	}
}

func (r *recorder) OnBindingError(id, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.errs = append(r.errs, bindingErr{id: id, message: message})
}

func (r *recorder) OnConnectionChange(p models.Protocol, connected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.changes = append(r.changes, connChange{protocol: p, connected: connected})
}

func (r *recorder) updatesFor(id string) []Update {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Update

	for _, u := range r.updates {
		if u.BindingID == id {
			out = append(out, u)
		}
	}

	return out
}

func (r *recorder) errors() []bindingErr {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]bindingErr(nil), r.errs...)
}

func (r *recorder) connChanges() []connChange {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]connChange(nil), r.changes...)
}
