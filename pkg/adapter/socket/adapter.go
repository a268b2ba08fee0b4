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

// Package socket is the full-duplex websocket adapter.
package socket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gorilla/websocket"

	"github.com/carverauto/scenebind/pkg/adapter"
	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
)

// Kind is the registry key of this adapter.
const Kind = "socket"

const (
	writeTimeout = 5 * time.Second
	closeTimeout = 2 * time.Second
)

// Frame is the control message written when subscribe frames are enabled,
// and the envelope of targeted sends.
type Frame struct {
	Action string          `json:"action"`
	Topic  string          `json:"topic,omitempty"`
	Target string          `json:"target,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Adapter keeps one websocket connection open and reconnects with
// exponential backoff when it drops.
type Adapter struct {
	adapter.Hooks

	cfg    models.SocketConfig
	name   string
	logger logger.Logger

	mu     sync.Mutex
	conn   *websocket.Conn
	cancel context.CancelFunc
	done   chan struct{}
	topics map[string]struct{}

	writeMu sync.Mutex
}

// New builds an adapter for a socket source.
func New(src *models.SourceConfig, log logger.Logger) (adapter.Adapter, error) {
	if src == nil || src.Socket == nil {
		return nil, adapter.ErrMissingConfig
	}

	return &Adapter{
		cfg:    *src.Socket,
		name:   src.ID,
		logger: log,
		topics: make(map[string]struct{}),
	}, nil
}

// Register adds this adapter to r.
func Register(r adapter.Registry) {
	r.Register(Kind, New)
}

func (a *Adapter) Connect(ctx context.Context) error {
	if a.running() {
		return nil
	}

	a.SetState(adapter.StateConnecting, nil)

	conn, err := a.dial(ctx)
	if err != nil {
		a.SetState(adapter.StateError, err)
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	a.mu.Lock()
	a.conn = conn
	a.cancel = cancel
	a.done = done
	a.mu.Unlock()

	go a.run(runCtx, conn, done)

	a.resubscribe(conn)
	a.logger.Info().Str("source_id", a.name).Str("url", a.cfg.URL).Msg("Socket connected")
	a.SetState(adapter.StateConnected, nil)

	return nil
}

// running reports whether the read loop is alive. A loop that ended after
// exhausting its reconnects is released so Connect can start over.
func (a *Adapter) running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.done == nil {
		return false
	}

	select {
	case <-a.done:
		a.cancel()
		a.conn, a.cancel, a.done = nil, nil, nil

		return false
	default:
		return true
	}
}

func (a *Adapter) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: a.cfg.HandshakeTimeout.Std(),
		Subprotocols:     a.cfg.Subprotocols,
	}

	header := http.Header{}
	for k, v := range a.cfg.Headers {
		header.Set(k, v)
	}

	conn, resp, err := dialer.DialContext(ctx, a.cfg.URL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", a.cfg.URL, err)
	}

	return conn, nil
}

// run reads until the connection drops, then reconnects. It exits when the
// adapter is disconnected or reconnects are exhausted.
func (a *Adapter) run(ctx context.Context, conn *websocket.Conn, done chan struct{}) {
	defer close(done)

	for {
		err := a.readLoop(conn)
		if ctx.Err() != nil {
			return
		}

		a.logger.Warn().Err(err).Str("source_id", a.name).Msg("Socket connection lost")
		a.SetState(adapter.StateError, err)

		conn, err = a.reconnect(ctx)
		if ctx.Err() != nil {
			if conn != nil {
				_ = conn.Close()
			}

			return
		}

		if err != nil {
			a.mu.Lock()
			a.conn = nil
			a.mu.Unlock()

			a.logger.Error().Err(err).Str("source_id", a.name).Msg("Socket reconnect attempts exhausted")
			a.SetState(adapter.StateFailed, fmt.Errorf("%w: %w", adapter.ErrRetryExhausted, err))

			return
		}

		a.mu.Lock()
		a.conn = conn
		a.mu.Unlock()

		a.resubscribe(conn)
		a.SetState(adapter.StateConnected, nil)
	}
}

// readLoop delivers messages in arrival order until a read fails.
func (a *Adapter) readLoop(conn *websocket.Conn) error {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		a.Deliver(a.cfg.URL, data)
	}
}

func (a *Adapter) reconnect(ctx context.Context) (*websocket.Conn, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = a.cfg.RetryDelay.Std()
	bo.MaxInterval = a.cfg.MaxRetryDelay.Std()

	attempt := 0

	return backoff.Retry(ctx, func() (*websocket.Conn, error) {
		attempt++
		a.SetState(adapter.StateConnecting, nil)

		return a.dial(ctx)
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(max(a.cfg.MaxRetries, 1))),
		backoff.WithNotify(func(err error, next time.Duration) {
			a.logger.Debug().
				Err(err).
				Str("source_id", a.name).
				Int("attempt", attempt).
				Dur("next", next).
				Msg("Socket reconnect failed")
		}),
	)
}

func (a *Adapter) resubscribe(conn *websocket.Conn) {
	if !a.cfg.SubscribeFrames {
		return
	}

	for _, topic := range a.Topics() {
		if err := a.writeJSON(conn, Frame{Action: "subscribe", Topic: topic}); err != nil {
			a.logger.Warn().Err(err).Str("source_id", a.name).Str("topic", topic).Msg("Failed to restore subscription")
		}
	}
}

func (a *Adapter) Disconnect(ctx context.Context) error {
	a.mu.Lock()
	conn, cancel, done := a.conn, a.cancel, a.done
	a.conn, a.cancel, a.done = nil, nil, nil
	a.mu.Unlock()

	if done == nil {
		return nil
	}

	cancel()

	if conn != nil {
		a.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeTimeout))
		a.writeMu.Unlock()

		_ = conn.Close()
	}

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	a.SetState(adapter.StateClosed, nil)

	return nil
}

func (a *Adapter) Subscribe(_ context.Context, topic string, _ byte) error {
	a.mu.Lock()
	conn := a.conn
	_, seen := a.topics[topic]
	a.topics[topic] = struct{}{}
	a.mu.Unlock()

	if seen || !a.cfg.SubscribeFrames {
		return nil
	}

	if conn == nil {
		return adapter.ErrNotConnected
	}

	return a.writeJSON(conn, Frame{Action: "subscribe", Topic: topic})
}

func (a *Adapter) Unsubscribe(_ context.Context, topic string) error {
	a.mu.Lock()
	conn := a.conn
	_, seen := a.topics[topic]
	delete(a.topics, topic)
	a.mu.Unlock()

	if !seen || !a.cfg.SubscribeFrames || conn == nil {
		return nil
	}

	return a.writeJSON(conn, Frame{Action: "unsubscribe", Topic: topic})
}

// Send writes payload as a text frame. A non-empty target wraps it in a
// send Frame.
func (a *Adapter) Send(_ context.Context, target string, payload []byte) error {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()

	if conn == nil {
		return adapter.ErrNotConnected
	}

	if target == "" {
		return a.write(conn, payload)
	}

	data := json.RawMessage(payload)
	if !json.Valid(payload) {
		quoted, err := json.Marshal(string(payload))
		if err != nil {
			return err
		}

		data = quoted
	}

	return a.writeJSON(conn, Frame{Action: "send", Target: target, Data: data})
}

// Topics returns the tracked topics in sorted order.
func (a *Adapter) Topics() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.topics))
	for t := range a.topics {
		out = append(out, t)
	}

	sort.Strings(out)

	return out
}

func (a *Adapter) writeJSON(conn *websocket.Conn, f Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	return a.write(conn, data)
}

func (a *Adapter) write(conn *websocket.Conn, data []byte) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if err := conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return err
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		if errors.Is(err, websocket.ErrCloseSent) {
			return adapter.ErrClosed
		}

		return fmt.Errorf("failed to write to %s: %w", a.cfg.URL, err)
	}

	return nil
}

var _ adapter.Adapter = (*Adapter)(nil)
