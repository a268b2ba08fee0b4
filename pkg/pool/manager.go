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
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/carverauto/scenebind/pkg/adapter"
	"github.com/carverauto/scenebind/pkg/clock"
	"github.com/carverauto/scenebind/pkg/condition"
	"github.com/carverauto/scenebind/pkg/events"
	"github.com/carverauto/scenebind/pkg/interpolation"
	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
)

const (
	defaultConnectConcurrency = 8
	defaultTriggerQueue       = 128
)

// EntryInfo is a point-in-time view of one pooled connection.
type EntryInfo struct {
	SourceID      string          `json:"sourceId"`
	Protocol      models.Protocol `json:"protocol"`
	State         adapter.State   `json:"state"`
	Bindings      []string        `json:"bindings"`
	Topics        []string        `json:"topics,omitempty"`
	Subscriptions []string        `json:"subscriptions,omitempty"`
	LastTopic     string          `json:"lastTopic,omitempty"`
	LastData      interface{}     `json:"lastData,omitempty"`
	LastUpdate    time.Time       `json:"lastUpdate,omitempty"`
}

// Manager owns one adapter per source id and routes inbound data to the
// bindings of that source.
type Manager struct {
	registry adapter.Registry
	listener Listener
	actions  condition.Actions
	conds    *condition.Engine
	interp   *interpolation.Engine
	bus      *events.Bus
	clock    clock.Clock
	log      logger.Logger
	meter    metric.MeterProvider
	metrics  *poolMetrics

	connectLimit int
	ctx          context.Context
	cancel       context.CancelFunc
	jobs         chan triggerJob
	workers      sync.WaitGroup

	mu      sync.RWMutex
	entries map[string]*entry
	sources map[string]models.SourceConfig
	index   map[string]string
	started bool
	stopped bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithListener sets the consumer of updates, binding errors and connection
// changes.
func WithListener(l Listener) Option {
	return func(m *Manager) { m.listener = l }
}

// WithActions sets the host that carries out triggers. Without it satisfied
// conditions fire nothing.
func WithActions(a condition.Actions) Option {
	return func(m *Manager) { m.actions = a }
}

// WithConditionEngine shares a condition engine instead of a private one.
func WithConditionEngine(e *condition.Engine) Option {
	return func(m *Manager) { m.conds = e }
}

// WithInterpolationEngine shares the engine that runs value transitions.
func WithInterpolationEngine(e *interpolation.Engine) Option {
	return func(m *Manager) { m.interp = e }
}

// WithBus enables node_transform events for bindings with node bindings.
func WithBus(b *events.Bus) Option {
	return func(m *Manager) { m.bus = b }
}

// WithClock replaces the wall clock; the default engines share it.
func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithLogger sets the pool logger.
func WithLogger(l logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithMeterProvider overrides the global OpenTelemetry meter provider.
func WithMeterProvider(p metric.MeterProvider) Option {
	return func(m *Manager) { m.meter = p }
}

// WithConnectConcurrency bounds how many adapters Start connects at once.
func WithConnectConcurrency(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.connectLimit = n
		}
	}
}

// NewManager creates an empty pool. Bindings are attached with Build or
// AddBinding.
func NewManager(registry adapter.Registry, opts ...Option) (*Manager, error) {
	if registry == nil {
		return nil, ErrNoRegistry
	}

	m := &Manager{
		registry:     registry,
		listener:     nopListener{},
		clock:        clock.Real(),
		log:          logger.NewTestLogger(),
		connectLimit: defaultConnectConcurrency,
		jobs:         make(chan triggerJob, defaultTriggerQueue),
		entries:      make(map[string]*entry),
		sources:      make(map[string]models.SourceConfig),
		index:        make(map[string]string),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.conds == nil {
		m.conds = condition.NewEngine(condition.WithClock(m.clock), condition.WithLogger(m.log))
	}

	if m.interp == nil {
		m.interp = interpolation.NewEngine(interpolation.WithClock(m.clock), interpolation.WithLogger(m.log))
	}

	if m.meter == nil {
		m.meter = otel.GetMeterProvider()
	}

	m.metrics = newPoolMetrics(m.meter)
	m.ctx, m.cancel = context.WithCancel(context.Background())

	m.workers.Add(1)

	go m.runTriggers()

	return m, nil
}

// Build reconciles the pool with bindings and sources. Entries are created
// for new sources, updated in place for known ones and torn down when no
// enabled binding references them any more. When the pool is already
// started, new entries are connected before Build returns.
func (m *Manager) Build(ctx context.Context, bindings []models.Binding, sources []models.SourceConfig) error {
	var (
		errs     []error
		reports  []bindingReport
		teardown []*entry
		fresh    []*entry
		changed  []entryChange
	)

	m.mu.Lock()

	if m.stopped {
		m.mu.Unlock()
		return ErrStopped
	}

	srcs := make(map[string]models.SourceConfig, len(sources))

	for i := range sources {
		src := sources[i]
		if err := src.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", src.ID, err))
			continue
		}

		srcs[src.ID] = src
	}

	groups := make(map[string][]*bindingState)
	var groupOrder []string
	index := make(map[string]string)

	for i := range bindings {
		b := bindings[i]
		if !b.Enabled {
			continue
		}

		src, err := m.admit(&b, srcs)
		if err != nil {
			reports = append(reports, bindingReport{id: b.ID, message: err.Error()})
			continue
		}

		if _, dup := index[b.ID]; dup {
			reports = append(reports, bindingReport{id: b.ID, message: "duplicate binding id"})
			continue
		}

		if _, ok := groups[src.ID]; !ok {
			groupOrder = append(groupOrder, src.ID)
		}

		groups[src.ID] = append(groups[src.ID], m.stateForLocked(b))
		index[b.ID] = src.ID
	}

	var removed []string

	for id := range m.index {
		if _, ok := index[id]; !ok {
			removed = append(removed, id)
		}
	}

	for id, e := range m.entries {
		src, ok := srcs[id]
		if _, used := groups[id]; !used || !ok || !reflect.DeepEqual(e.src, src) {
			teardown = append(teardown, e)
			delete(m.entries, id)
		}
	}

	for _, id := range groupOrder {
		e, ok := m.entries[id]
		if !ok {
			var err error

			e, err = m.newEntryLocked(srcs[id])
			if err != nil {
				errs = append(errs, err)

				for _, s := range groups[id] {
					reports = append(reports, bindingReport{id: s.binding.ID, message: err.Error()})
					delete(index, s.binding.ID)
				}

				continue
			}

			m.entries[id] = e
			fresh = append(fresh, e)
		} else {
			changed = append(changed, entryChange{entry: e, poll: e.pollSchedule()})
		}

		e.setBindings(groups[id])
	}

	m.sources = srcs
	m.index = index
	started := m.started
	m.mu.Unlock()

	for _, id := range removed {
		m.interp.Cancel(id)
	}

	for _, e := range teardown {
		if err := m.teardown(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}

	m.report(reports)

	for _, c := range changed {
		if err := c.entry.syncTopics(ctx); err != nil {
			m.log.Warn().Err(err).Str("source_id", c.entry.sourceID).Msg("Failed to reconcile topics")
		}

		c.entry.restartPoll(m.ctx, c.poll)
	}

	if started {
		if err := m.connectAll(ctx, fresh); err != nil {
			errs = append(errs, err)
		}
	}

	m.log.Info().
		Int("entries", len(groupOrder)).
		Int("bindings", len(index)).
		Msg("Binding pool built")

	return errors.Join(errs...)
}

type bindingReport struct {
	id      string
	message string
}

type entryChange struct {
	entry *entry
	poll  pollParams
}

// admit validates b against the known sources.
func (m *Manager) admit(b *models.Binding, srcs map[string]models.SourceConfig) (models.SourceConfig, error) {
	if err := b.Validate(); err != nil {
		return models.SourceConfig{}, err
	}

	src, ok := srcs[b.SourceID]
	if !ok {
		return models.SourceConfig{}, fmt.Errorf("%w for sourceId %s", ErrUnknownSource, b.SourceID)
	}

	if src.Protocol != b.Protocol {
		return models.SourceConfig{}, fmt.Errorf("%w: binding %s is %s, source %s is %s",
			errProtocol, b.ID, b.Protocol, src.ID, src.Protocol)
	}

	return src, nil
}

// stateForLocked reuses the live state of an unchanged binding so its
// throttle and history survive a rebuild.
func (m *Manager) stateForLocked(b models.Binding) *bindingState {
	if sid, ok := m.index[b.ID]; ok {
		if e, ok := m.entries[sid]; ok {
			e.mu.Lock()
			old := e.bindings[b.ID]
			e.mu.Unlock()

			if old != nil && reflect.DeepEqual(old.binding, b) {
				return old
			}
		}
	}

	return newBindingState(b)
}

func (m *Manager) newEntryLocked(src models.SourceConfig) (*entry, error) {
	cfg := src

	a, err := m.registry.New(&cfg, m.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create adapter for source %s: %w", src.ID, err)
	}

	e := newEntry(src, a)

	a.OnMessage(func(topic string, payload []byte) {
		m.HandleData(src.ID, topic, payload)
	})
	a.OnStateChange(func(s adapter.State, err error) {
		m.onState(e, s, err)
	})

	return e, nil
}

// AddSource registers a source definition for later AddBinding calls. A
// source that already backs an entry keeps its connection until the next
// Build.
func (m *Manager) AddSource(src models.SourceConfig) error {
	if err := src.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopped {
		return ErrStopped
	}

	m.sources[src.ID] = src

	return nil
}

// Start connects every entry that is not connected yet. Connections are
// attempted concurrently; failures are joined into the returned error and
// do not stop the other entries.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()

	if m.stopped {
		m.mu.Unlock()
		return ErrStopped
	}

	m.started = true

	pending := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		if !e.isConnected() {
			pending = append(pending, e)
		}
	}
	m.mu.Unlock()

	return m.connectAll(ctx, pending)
}

func (m *Manager) connectAll(ctx context.Context, entries []*entry) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)

	g.SetLimit(m.connectLimit)

	for _, e := range entries {
		g.Go(func() error {
			if err := m.connect(ctx, e); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}

			return nil
		})
	}

	_ = g.Wait()

	return errors.Join(errs...)
}

func (m *Manager) connect(ctx context.Context, e *entry) error {
	if err := e.adapter.Connect(ctx); err != nil {
		m.metrics.connectFailed(ctx, e)
		m.log.Warn().Err(err).Str("source_id", e.sourceID).Msg("Failed to connect source")

		return fmt.Errorf("connect source %s: %w", e.sourceID, err)
	}

	m.afterConnect(ctx, e)

	return nil
}

// afterConnect subscribes the topic union and starts polling.
func (m *Manager) afterConnect(ctx context.Context, e *entry) {
	if err := e.syncTopics(ctx); err != nil {
		m.log.Warn().Err(err).Str("source_id", e.sourceID).Msg("Failed to subscribe topics")
	}

	e.startPoll(m.ctx)
}

func (m *Manager) onState(e *entry, s adapter.State, err error) {
	e.mu.Lock()

	if e.closed {
		e.mu.Unlock()
		return
	}

	e.state = s
	was := e.connected
	e.connected = s == adapter.StateConnected
	now := e.connected

	var failed []string
	if s == adapter.StateFailed {
		failed = append(failed, e.order...)
	}
	e.mu.Unlock()

	m.metrics.stateChanged(m.ctx, e, s)

	ev := m.log.Debug()
	if err != nil {
		ev = m.log.Warn().Err(err)
	}

	ev.Str("source_id", e.sourceID).Str("state", s.String()).Msg("Source state changed")

	if was != now {
		m.listener.OnConnectionChange(e.src.Protocol, now)
	}

	if now && !was {
		go m.afterConnect(m.ctx, e)
	}

	for _, id := range failed {
		m.listener.OnBindingError(id, fmt.Sprintf("connection to source %s failed: %v", e.sourceID, err))
	}
}

// Stop disconnects every entry, cancels pending transitions, polls and
// triggers and empties the pool. A stopped manager cannot be reused.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()

	if m.stopped {
		m.mu.Unlock()
		return nil
	}

	m.stopped = true

	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}

	m.entries = make(map[string]*entry)
	m.index = make(map[string]string)
	m.mu.Unlock()

	m.cancel()
	m.interp.CancelAll()

	var errs []error

	for _, e := range entries {
		if err := m.teardown(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}

	m.workers.Wait()

	m.log.Info().Int("entries", len(entries)).Msg("Binding pool stopped")

	return errors.Join(errs...)
}

func (m *Manager) teardown(ctx context.Context, e *entry) error {
	e.mu.Lock()
	e.closed = true
	was := e.connected
	e.connected = false
	e.state = adapter.StateClosed
	ids := append([]string(nil), e.order...)
	e.mu.Unlock()

	e.stopPoll()

	for _, id := range ids {
		m.interp.Cancel(id)
	}

	err := e.adapter.Disconnect(ctx)

	if was {
		m.listener.OnConnectionChange(e.src.Protocol, false)
	}

	if err != nil {
		return fmt.Errorf("disconnect source %s: %w", e.sourceID, err)
	}

	return nil
}

// AddBinding validates b and attaches it to the entry of its source,
// creating and, once the pool is started, connecting that entry as needed.
func (m *Manager) AddBinding(ctx context.Context, b models.Binding) (bool, string) {
	if !b.Enabled {
		return false, fmt.Sprintf("binding %s is disabled", b.ID)
	}

	m.mu.Lock()

	if m.stopped {
		m.mu.Unlock()
		return false, ErrStopped.Error()
	}

	src, err := m.admit(&b, m.sources)
	if err != nil {
		m.mu.Unlock()
		return false, err.Error()
	}

	if _, exists := m.index[b.ID]; exists {
		m.mu.Unlock()
		return false, fmt.Sprintf("binding %s already exists", b.ID)
	}

	e, ok := m.entries[src.ID]
	fresh := !ok

	if fresh {
		e, err = m.newEntryLocked(src)
		if err != nil {
			m.mu.Unlock()
			return false, err.Error()
		}

		m.entries[src.ID] = e
	}

	prev := e.pollSchedule()
	e.putBinding(newBindingState(b))
	m.index[b.ID] = src.ID
	started := m.started
	m.mu.Unlock()

	switch {
	case fresh && started:
		if err := m.connect(ctx, e); err != nil {
			m.listener.OnBindingError(b.ID, err.Error())
		}
	case !fresh:
		if err := e.syncTopics(ctx); err != nil {
			m.log.Warn().Err(err).Str("binding_id", b.ID).Msg("Failed to subscribe binding topics")
		}

		e.restartPoll(m.ctx, prev)
	}

	m.log.Info().Str("binding_id", b.ID).Str("source_id", src.ID).Msg("Binding added")

	return true, ""
}

// RemoveBinding detaches id. The entry is torn down with its last binding.
func (m *Manager) RemoveBinding(ctx context.Context, id string) bool {
	m.mu.Lock()

	sid, ok := m.index[id]
	if !ok {
		m.mu.Unlock()
		return false
	}

	delete(m.index, id)

	e := m.entries[sid]
	prev := e.pollSchedule()
	remaining := e.removeBinding(id)

	if remaining == 0 {
		delete(m.entries, sid)
	}
	m.mu.Unlock()

	m.interp.Cancel(id)

	if remaining == 0 {
		if err := m.teardown(ctx, e); err != nil {
			m.log.Warn().Err(err).Str("source_id", sid).Msg("Failed to tear down source")
		}
	} else {
		if err := e.syncTopics(ctx); err != nil {
			m.log.Warn().Err(err).Str("source_id", sid).Msg("Failed to reconcile topics")
		}

		e.restartPoll(m.ctx, prev)
	}

	m.log.Info().Str("binding_id", id).Msg("Binding removed")

	return true
}

// UpdateBinding replaces the whole binding record with b.
func (m *Manager) UpdateBinding(ctx context.Context, b models.Binding) (bool, string) {
	if err := b.Validate(); err != nil {
		return false, err.Error()
	}

	m.mu.RLock()
	sid, ok := m.index[b.ID]
	m.mu.RUnlock()

	if !ok {
		return false, fmt.Sprintf("%s: %s", ErrUnknownBinding, b.ID)
	}

	if sid == b.SourceID && b.Enabled {
		return m.replaceInPlace(ctx, b)
	}

	if !b.Enabled {
		m.RemoveBinding(ctx, b.ID)
		return true, ""
	}

	return m.moveBinding(ctx, b)
}

// moveBinding reattaches b to a different source. The new record is admitted
// and its entry built before the old binding is detached, so a rejected move
// leaves the live binding untouched.
func (m *Manager) moveBinding(ctx context.Context, b models.Binding) (bool, string) {
	m.mu.Lock()

	if m.stopped {
		m.mu.Unlock()
		return false, ErrStopped.Error()
	}

	sid, ok := m.index[b.ID]
	if !ok {
		m.mu.Unlock()
		return false, fmt.Sprintf("%s: %s", ErrUnknownBinding, b.ID)
	}

	src, err := m.admit(&b, m.sources)
	if err != nil {
		m.mu.Unlock()
		return false, err.Error()
	}

	to, ok := m.entries[src.ID]
	fresh := !ok

	if fresh {
		to, err = m.newEntryLocked(src)
		if err != nil {
			m.mu.Unlock()
			return false, err.Error()
		}
	}

	from := m.entries[sid]
	fromPrev := from.pollSchedule()
	remaining := from.removeBinding(b.ID)

	if remaining == 0 {
		delete(m.entries, sid)
	}

	if fresh {
		m.entries[src.ID] = to
	}

	toPrev := to.pollSchedule()
	to.putBinding(newBindingState(b))
	m.index[b.ID] = src.ID
	started := m.started
	m.mu.Unlock()

	m.interp.Cancel(b.ID)

	if remaining == 0 {
		if err := m.teardown(ctx, from); err != nil {
			m.log.Warn().Err(err).Str("source_id", sid).Msg("Failed to tear down source")
		}
	} else {
		if err := from.syncTopics(ctx); err != nil {
			m.log.Warn().Err(err).Str("source_id", sid).Msg("Failed to reconcile topics")
		}

		from.restartPoll(m.ctx, fromPrev)
	}

	switch {
	case fresh && started:
		if err := m.connect(ctx, to); err != nil {
			m.listener.OnBindingError(b.ID, err.Error())
		}
	case !fresh:
		if err := to.syncTopics(ctx); err != nil {
			m.log.Warn().Err(err).Str("binding_id", b.ID).Msg("Failed to subscribe binding topics")
		}

		to.restartPoll(m.ctx, toPrev)
	}

	m.log.Info().Str("binding_id", b.ID).Str("from_source", sid).Str("source_id", src.ID).Msg("Binding moved")

	return true, ""
}

func (m *Manager) replaceInPlace(ctx context.Context, b models.Binding) (bool, string) {
	m.mu.Lock()

	src, err := m.admit(&b, m.sources)
	if err != nil {
		m.mu.Unlock()
		return false, err.Error()
	}

	e, ok := m.entries[src.ID]
	if !ok {
		m.mu.Unlock()
		return false, fmt.Sprintf("%s: %s", ErrUnknownBinding, b.ID)
	}

	prev := e.pollSchedule()
	e.putBinding(newBindingState(b))
	m.mu.Unlock()

	m.interp.Cancel(b.ID)

	if err := e.syncTopics(ctx); err != nil {
		m.log.Warn().Err(err).Str("binding_id", b.ID).Msg("Failed to reconcile topics")
	}

	e.restartPoll(m.ctx, prev)

	return true, ""
}

// Bindings returns the attached bindings ordered by id.
func (m *Manager) Bindings() []models.Binding {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	var out []models.Binding

	for _, e := range entries {
		for _, s := range e.snapshot() {
			out = append(out, s.binding)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

// Entries returns a snapshot of every pooled connection ordered by source id.
func (m *Manager) Entries() []EntryInfo {
	m.mu.RLock()
	entries := make([]*entry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	out := make([]EntryInfo, 0, len(entries))

	for _, e := range entries {
		topics := e.topics()
		subs := e.subscriptions()

		e.mu.Lock()
		info := EntryInfo{
			SourceID:      e.sourceID,
			Protocol:      e.src.Protocol,
			State:         e.state,
			Bindings:      append([]string(nil), e.order...),
			Topics:        topics,
			Subscriptions: subs,
			LastTopic:     e.lastTopic,
			LastData:      e.lastData,
			LastUpdate:    e.lastUpdate,
		}
		e.mu.Unlock()

		out = append(out, info)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].SourceID < out[j].SourceID })

	return out
}

// ConnectionStatus reports, per protocol, whether any entry is connected.
func (m *Manager) ConnectionStatus() map[models.Protocol]bool {
	status := map[models.Protocol]bool{
		models.ProtocolPubSub: false,
		models.ProtocolSocket: false,
		models.ProtocolHTTP:   false,
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.entries {
		if e.isConnected() {
			status[e.src.Protocol] = true
		}
	}

	return status
}

// DataHistory returns the last mapped values of a binding, oldest first.
func (m *Manager) DataHistory(bindingID string) []interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.entries[m.index[bindingID]]
	if !ok {
		return nil
	}

	e.mu.Lock()
	s := e.bindings[bindingID]
	e.mu.Unlock()

	if s == nil {
		return nil
	}

	return s.snapshot()
}

// Send writes payload through a connected entry. target may name a source
// explicitly as "sourceId:target"; otherwise the first connected entry
// whose protocol, adapter kind or broker equals protocol is used.
func (m *Manager) Send(ctx context.Context, protocol, target string, payload []byte) error {
	m.mu.RLock()

	var chosen *entry

	if sid, rest, ok := strings.Cut(target, ":"); ok {
		if e, known := m.entries[sid]; known {
			chosen, target = e, rest
		}
	}

	if chosen == nil {
		ids := make([]string, 0, len(m.entries))
		for id := range m.entries {
			ids = append(ids, id)
		}

		sort.Strings(ids)

		for _, id := range ids {
			e := m.entries[id]
			if matchesProtocol(e.src, protocol) && e.isConnected() {
				chosen = e
				break
			}
		}
	}
	m.mu.RUnlock()

	if chosen == nil {
		return fmt.Errorf("%w: %s", ErrNoConnection, protocol)
	}

	if err := chosen.adapter.Send(ctx, target, payload); err != nil {
		return fmt.Errorf("send via source %s: %w", chosen.sourceID, err)
	}

	return nil
}

func matchesProtocol(src models.SourceConfig, protocol string) bool {
	if string(src.Protocol) == protocol || adapter.Kind(&src) == protocol {
		return true
	}

	return src.PubSub != nil && string(src.PubSub.Broker) == protocol
}

func (m *Manager) report(reports []bindingReport) {
	for _, r := range reports {
		m.log.Warn().Str("binding_id", r.id).Str("error", r.message).Msg("Binding rejected")
		m.metrics.bindingError(m.ctx, r.id)
		m.listener.OnBindingError(r.id, r.message)
	}
}

type nopListener struct{}

func (nopListener) OnDataUpdate(Update) {}

func (nopListener) OnBindingError(string, string) {}

func (nopListener) OnConnectionChange(models.Protocol, bool) {}
