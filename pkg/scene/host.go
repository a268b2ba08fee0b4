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

// Package scene implements the host side of trigger actions: property
// writes into the scene, outbound device commands, animation events,
// alerts, named functions and shared state.
package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/scenebind/pkg/clock"
	"github.com/carverauto/scenebind/pkg/condition"
	"github.com/carverauto/scenebind/pkg/events"
	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/state"
	"github.com/carverauto/scenebind/pkg/values"
)

const stateTimeout = 5 * time.Second

// PropertySink applies a value to a scene property.
type PropertySink interface {
	SetProperty(ctx context.Context, target string, value interface{}) error
}

// CommandSender delivers an outbound payload over the named protocol.
type CommandSender interface {
	Send(ctx context.Context, protocol, target string, payload []byte) error
}

// Function is a named host function callable from callFunction triggers.
type Function func(ctx context.Context, params interface{}) (interface{}, error)

// Alert is a user-facing notification raised by a showAlert trigger.
type Alert struct {
	Message string    `json:"message"`
	Level   string    `json:"level"`
	Time    time.Time `json:"time"`
}

// Host is the condition.Actions implementation used by the binding pool.
type Host struct {
	props    PropertySink
	commands CommandSender
	bus      *events.Bus
	store    state.Store
	clock    clock.Clock
	log      logger.Logger
	onAlert  func(Alert)

	mu    sync.RWMutex
	funcs map[string]Function
}

var _ condition.Actions = (*Host)(nil)

// Option configures a Host.
type Option func(*Host)

func WithPropertySink(p PropertySink) Option {
	return func(h *Host) { h.props = p }
}

func WithCommandSender(c CommandSender) Option {
	return func(h *Host) { h.commands = c }
}

func WithBus(b *events.Bus) Option {
	return func(h *Host) { h.bus = b }
}

func WithStore(s state.Store) Option {
	return func(h *Host) { h.store = s }
}

func WithClock(c clock.Clock) Option {
	return func(h *Host) { h.clock = c }
}

func WithLogger(l logger.Logger) Option {
	return func(h *Host) { h.log = l }
}

// WithAlertHandler receives every alert after it is logged.
func WithAlertHandler(fn func(Alert)) Option {
	return func(h *Host) { h.onAlert = fn }
}

// NewHost builds a host. Without a store, state lives in memory.
func NewHost(opts ...Option) *Host {
	h := &Host{
		clock: clock.Real(),
		log:   logger.NewTestLogger(),
		funcs: make(map[string]Function),
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.store == nil {
		h.store = state.NewMemoryStore()
	}

	return h
}

// RegisterFunction makes fn callable by name, replacing any previous one.
func (h *Host) RegisterFunction(name string, fn Function) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.funcs[name] = fn
}

// Functions lists the registered function names.
func (h *Host) Functions() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.funcs))
	for name := range h.funcs {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (h *Host) SetModelProperty(ctx context.Context, target string, value interface{}) error {
	if h.props == nil {
		return ErrNoPropertySink
	}

	if err := h.props.SetProperty(ctx, target, value); err != nil {
		return fmt.Errorf("failed to set property %s: %w", target, err)
	}

	return nil
}

func (h *Host) SendIoTCommand(ctx context.Context, protocol, target string, value interface{}) error {
	if h.commands == nil {
		return ErrNoCommandSender
	}

	payload, err := encodePayload(value)
	if err != nil {
		return fmt.Errorf("failed to encode command for %s: %w", target, err)
	}

	if err := h.commands.Send(ctx, protocol, target, payload); err != nil {
		return fmt.Errorf("failed to send %s command to %s: %w", protocol, target, err)
	}

	return nil
}

// PlayAnimation publishes a play event. target is "modelId" or
// "modelId:clipId"; params may carry clip, loop and speed.
func (h *Host) PlayAnimation(ctx context.Context, target string, params interface{}) error {
	if h.bus == nil {
		return ErrNoEventBus
	}

	modelID, clipID, _ := strings.Cut(target, ":")
	if modelID == "" {
		return fmt.Errorf("%w: %q", ErrInvalidTarget, target)
	}

	loop, speed := false, 1.0

	if p, ok := params.(map[string]interface{}); ok {
		if c, ok := p["clip"].(string); ok && clipID == "" {
			clipID = c
		}

		if l, ok := p["loop"].(bool); ok {
			loop = l
		}

		if s, ok := values.Float(p["speed"]); ok {
			speed = s
		}
	} else if c, ok := params.(string); ok && clipID == "" {
		clipID = c
	}

	return h.bus.Publish(ctx, events.PlayEvent(modelID, clipID, loop, speed))
}

func (h *Host) ShowAlert(_ context.Context, message, level string) error {
	if level == "" {
		level = "info"
	}

	ev := h.log.Info()

	switch level {
	case "warning":
		ev = h.log.Warn()
	case "error":
		ev = h.log.Error()
	}

	ev.Str("level", level).Msg(message)

	if h.onAlert != nil {
		h.onAlert(Alert{Message: message, Level: level, Time: h.clock.Now()})
	}

	return nil
}

func (h *Host) CallFunction(ctx context.Context, name string, params interface{}) (interface{}, error) {
	h.mu.RLock()
	fn, ok := h.funcs[name]
	h.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, name)
	}

	return fn(ctx, params)
}

// SetState writes to the state store. Store failures are logged.
func (h *Host) SetState(key string, value interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), stateTimeout)
	defer cancel()

	if err := h.store.Set(ctx, key, value); err != nil {
		h.log.Warn().Err(err).Str("key", key).Msg("Failed to write scene state")
	}
}

func (h *Host) GetState(key string) (interface{}, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), stateTimeout)
	defer cancel()

	v, found, err := h.store.Get(ctx, key)
	if err != nil {
		h.log.Warn().Err(err).Str("key", key).Msg("Failed to read scene state")
		return nil, false
	}

	return v, found
}

// encodePayload sends strings and byte slices as-is and everything else as
// JSON.
func encodePayload(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return t, nil
	case string:
		return []byte(t), nil
	default:
		return json.Marshal(t)
	}
}
