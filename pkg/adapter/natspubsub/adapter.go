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

// Package natspubsub is the pubsub adapter for NATS brokers.
package natspubsub

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/scenebind/pkg/adapter"
	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
)

// Kind is the registry key of this adapter.
const Kind = "pubsub/nats"

const inboxSize = 256

// Adapter delivers NATS messages for MQTT style topics.
type Adapter struct {
	adapter.Hooks

	cfg    models.PubSubConfig
	name   string
	logger logger.Logger

	mu    sync.Mutex
	nc    *nats.Conn
	inbox chan *nats.Msg
	done  chan struct{}
	subs  map[string]*nats.Subscription
}

// New builds an adapter for a pubsub source with broker "nats".
func New(src *models.SourceConfig, log logger.Logger) (adapter.Adapter, error) {
	if src == nil || src.PubSub == nil {
		return nil, adapter.ErrMissingConfig
	}

	return &Adapter{
		cfg:    *src.PubSub,
		name:   src.ID,
		logger: log,
		subs:   make(map[string]*nats.Subscription),
	}, nil
}

// Register adds this adapter to r.
func Register(r adapter.Registry) {
	r.Register(Kind, New)
}

func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	connected := a.nc != nil
	a.mu.Unlock()

	if connected {
		return nil
	}

	a.SetState(adapter.StateConnecting, nil)

	nc, err := a.dial(ctx)
	if err != nil {
		a.SetState(adapter.StateError, err)
		return fmt.Errorf("failed to connect to NATS %s: %w", a.cfg.BrokerURL(), err)
	}

	a.mu.Lock()
	a.nc = nc
	a.inbox = make(chan *nats.Msg, inboxSize)
	a.done = make(chan struct{})
	inbox, done := a.inbox, a.done
	a.mu.Unlock()

	go a.dispatch(inbox, done)

	a.logger.Info().
		Str("source_id", a.name).
		Str("url", nc.ConnectedUrl()).
		Msg("Connected to NATS")

	a.SetState(adapter.StateConnected, nil)

	return nil
}

func (a *Adapter) dial(ctx context.Context) (*nats.Conn, error) {
	opts := []nats.Option{
		nats.Name("scenebind-" + a.name),
		nats.MaxReconnects(a.cfg.MaxRetries),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if !a.current(nc) {
				return
			}

			a.logger.Warn().Err(err).Str("source_id", a.name).Msg("NATS disconnected")
			a.SetState(adapter.StateError, err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			a.logger.Info().Str("source_id", a.name).Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
			a.SetState(adapter.StateConnected, nil)
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			if !a.current(nc) {
				return
			}

			a.SetState(adapter.StateFailed, adapter.ErrRetryExhausted)
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			ev := a.logger.Error().Err(err).Str("source_id", a.name)
			if sub != nil {
				ev = ev.Str("subject", sub.Subject)
			}

			ev.Msg("NATS error")
		}),
	}

	if d := a.cfg.RetryDelay.Std(); d > 0 {
		opts = append(opts, nats.ReconnectWait(d))
	}

	timeout := a.cfg.ConnectTimeout.Std()
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 && (timeout <= 0 || d < timeout) {
			timeout = d
		}
	}

	if timeout > 0 {
		opts = append(opts, nats.Timeout(timeout))
	}

	if a.cfg.Username != "" {
		opts = append(opts, nats.UserInfo(a.cfg.Username, a.cfg.Password))
	}

	if a.cfg.UseTLS {
		//nolint:gosec // opt-in for self-signed brokers
		opts = append(opts, nats.Secure(&tls.Config{InsecureSkipVerify: a.cfg.TLSInsecure, MinVersion: tls.VersionTLS12}))
	}

	return nats.Connect(a.cfg.BrokerURL(), opts...)
}

// dispatch hands messages to the handler in arrival order.
func (a *Adapter) dispatch(inbox <-chan *nats.Msg, done <-chan struct{}) {
	for {
		select {
		case <-done:
			return
		case msg := <-inbox:
			a.Deliver(SubjectToTopic(msg.Subject), msg.Data)
		}
	}
}

func (a *Adapter) Disconnect(_ context.Context) error {
	a.mu.Lock()
	nc := a.nc
	done := a.done
	a.nc = nil
	a.subs = make(map[string]*nats.Subscription)
	a.mu.Unlock()

	if nc == nil {
		return nil
	}

	close(done)

	if err := nc.Drain(); err != nil {
		nc.Close()
	}

	a.SetState(adapter.StateClosed, nil)

	return nil
}

func (a *Adapter) Subscribe(_ context.Context, topic string, _ byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.nc == nil {
		return adapter.ErrNotConnected
	}

	if _, ok := a.subs[topic]; ok {
		return nil
	}

	sub, err := a.nc.ChanSubscribe(TopicToSubject(topic), a.inbox)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	a.subs[topic] = sub

	return nil
}

func (a *Adapter) Unsubscribe(_ context.Context, topic string) error {
	a.mu.Lock()
	sub, ok := a.subs[topic]
	delete(a.subs, topic)
	a.mu.Unlock()

	if !ok {
		return nil
	}

	if err := sub.Unsubscribe(); err != nil {
		return fmt.Errorf("failed to unsubscribe from %s: %w", topic, err)
	}

	return nil
}

func (a *Adapter) Send(_ context.Context, target string, payload []byte) error {
	a.mu.Lock()
	nc := a.nc
	a.mu.Unlock()

	if nc == nil {
		return adapter.ErrNotConnected
	}

	if err := nc.Publish(TopicToSubject(target), payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", target, err)
	}

	return nil
}

// current reports whether nc is the live connection. Callbacks of a
// connection replaced or closed by Disconnect are ignored.
func (a *Adapter) current(nc *nats.Conn) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.nc == nc
}

// TopicToSubject maps an MQTT style topic onto a NATS subject.
func TopicToSubject(topic string) string {
	parts := strings.Split(strings.Trim(topic, "/"), "/")

	for i, p := range parts {
		switch p {
		case "+":
			parts[i] = "*"
		case "#":
			parts[i] = ">"
		}
	}

	return strings.Join(parts, ".")
}

// SubjectToTopic maps a concrete NATS subject back to slash separated form.
func SubjectToTopic(subject string) string {
	return strings.ReplaceAll(subject, ".", "/")
}

var _ adapter.Adapter = (*Adapter)(nil)
