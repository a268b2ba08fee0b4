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

// Package mqtt is the pubsub adapter for MQTT brokers.
package mqtt

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/carverauto/scenebind/pkg/adapter"
	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
)

// Kind is the registry key of this adapter.
const Kind = "pubsub/mqtt"

const (
	quiesceMillis        = 250
	maxReconnectInterval = time.Minute
)

var errTimeout = errors.New("mqtt operation timed out")

// Adapter wraps a paho client. Topics are tracked so they can be restored
// whenever the session is re-established.
type Adapter struct {
	adapter.Hooks

	cfg    models.PubSubConfig
	name   string
	logger logger.Logger

	mu       sync.Mutex
	client   paho.Client
	topics   map[string]byte
	attempts int
	stopped  bool
}

// New builds an adapter for a pubsub source with broker "mqtt".
func New(src *models.SourceConfig, log logger.Logger) (adapter.Adapter, error) {
	if src == nil || src.PubSub == nil {
		return nil, adapter.ErrMissingConfig
	}

	cfg := *src.PubSub
	if cfg.ClientID == "" {
		cfg.ClientID = "scenebind-" + uuid.NewString()[:8]
	}

	return &Adapter{
		cfg:    cfg,
		name:   src.ID,
		logger: log,
		topics: make(map[string]byte),
	}, nil
}

// Register adds this adapter to r.
func Register(r adapter.Registry) {
	r.Register(Kind, New)
}

func (a *Adapter) options() *paho.ClientOptions {
	opts := paho.NewClientOptions().
		AddBroker(a.cfg.BrokerURL()).
		SetClientID(a.cfg.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(false).
		SetOrderMatters(true).
		SetMaxReconnectInterval(maxReconnectInterval).
		SetCleanSession(a.cfg.CleanSession == nil || *a.cfg.CleanSession).
		SetDefaultPublishHandler(a.onMessage).
		SetOnConnectHandler(a.onConnect).
		SetConnectionLostHandler(a.onConnectionLost).
		SetReconnectingHandler(a.onReconnecting)

	if a.cfg.Username != "" {
		opts.SetUsername(a.cfg.Username).SetPassword(a.cfg.Password)
	}

	if d := a.cfg.KeepAlive.Std(); d > 0 {
		opts.SetKeepAlive(d)
	}

	if d := a.cfg.ConnectTimeout.Std(); d > 0 {
		opts.SetConnectTimeout(d)
	}

	if a.cfg.UseTLS {
		//nolint:gosec // opt-in for self-signed brokers
		opts.SetTLSConfig(&tls.Config{InsecureSkipVerify: a.cfg.TLSInsecure, MinVersion: tls.VersionTLS12})
	}

	return opts
}

func (a *Adapter) Connect(ctx context.Context) error {
	a.mu.Lock()
	if a.client != nil && a.client.IsConnected() {
		a.mu.Unlock()
		return nil
	}

	a.stopped = false
	a.attempts = 0
	client := paho.NewClient(a.options())
	a.client = client
	a.mu.Unlock()

	a.SetState(adapter.StateConnecting, nil)

	if err := wait(ctx, client.Connect(), a.cfg.ConnectTimeout.Std()); err != nil {
		a.SetState(adapter.StateError, err)
		return fmt.Errorf("failed to connect to MQTT %s: %w", a.cfg.BrokerURL(), err)
	}

	return nil
}

func (a *Adapter) Disconnect(_ context.Context) error {
	a.mu.Lock()
	client := a.client
	a.client = nil
	a.stopped = true
	a.mu.Unlock()

	if client == nil {
		return nil
	}

	client.Disconnect(quiesceMillis)
	a.SetState(adapter.StateClosed, nil)

	return nil
}

func (a *Adapter) Subscribe(ctx context.Context, topic string, qos byte) error {
	client, err := a.connected()
	if err != nil {
		return err
	}

	if err := wait(ctx, client.Subscribe(topic, qos, nil), a.cfg.ConnectTimeout.Std()); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	a.mu.Lock()
	a.topics[topic] = qos
	a.mu.Unlock()

	return nil
}

func (a *Adapter) Unsubscribe(ctx context.Context, topic string) error {
	a.mu.Lock()
	delete(a.topics, topic)
	a.mu.Unlock()

	client, err := a.connected()
	if err != nil {
		return nil //nolint:nilerr // nothing to undo on a dead session
	}

	if err := wait(ctx, client.Unsubscribe(topic), a.cfg.ConnectTimeout.Std()); err != nil {
		return fmt.Errorf("failed to unsubscribe from %s: %w", topic, err)
	}

	return nil
}

func (a *Adapter) Send(ctx context.Context, target string, payload []byte) error {
	client, err := a.connected()
	if err != nil {
		return err
	}

	if err := wait(ctx, client.Publish(target, a.cfg.QoS, false, payload), a.cfg.ConnectTimeout.Std()); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", target, err)
	}

	return nil
}

// Topics returns the tracked subscriptions.
func (a *Adapter) Topics() map[string]byte {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make(map[string]byte, len(a.topics))
	for k, v := range a.topics {
		out[k] = v
	}

	return out
}

func (a *Adapter) connected() (paho.Client, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.client == nil || !a.client.IsConnectionOpen() {
		return nil, adapter.ErrNotConnected
	}

	return a.client, nil
}

func (a *Adapter) onMessage(_ paho.Client, msg paho.Message) {
	a.Deliver(msg.Topic(), msg.Payload())
}

// onConnect restores tracked subscriptions on every (re)connect.
func (a *Adapter) onConnect(client paho.Client) {
	a.mu.Lock()
	a.attempts = 0
	topics := make(map[string]byte, len(a.topics))

	for k, v := range a.topics {
		topics[k] = v
	}
	a.mu.Unlock()

	if len(topics) > 0 {
		tok := client.SubscribeMultiple(topics, nil)
		if tok.WaitTimeout(a.timeout()) && tok.Error() != nil {
			a.logger.Error().Err(tok.Error()).Str("source_id", a.name).Msg("Failed to restore MQTT subscriptions")
		}
	}

	a.logger.Info().Str("source_id", a.name).Int("topics", len(topics)).Msg("Connected to MQTT broker")
	a.SetState(adapter.StateConnected, nil)
}

func (a *Adapter) onConnectionLost(_ paho.Client, err error) {
	a.logger.Warn().Err(err).Str("source_id", a.name).Msg("MQTT connection lost")
	a.SetState(adapter.StateError, err)
}

// onReconnecting caps the number of automatic reconnect attempts.
func (a *Adapter) onReconnecting(client paho.Client, _ *paho.ClientOptions) {
	a.mu.Lock()
	if a.stopped {
		a.mu.Unlock()
		return
	}

	a.attempts++
	attempts := a.attempts
	exhausted := a.cfg.MaxRetries > 0 && attempts > a.cfg.MaxRetries

	if exhausted {
		a.stopped = true
		a.client = nil
	}
	a.mu.Unlock()

	if !exhausted {
		a.logger.Debug().Str("source_id", a.name).Int("attempt", attempts).Msg("Reconnecting to MQTT broker")
		a.SetState(adapter.StateConnecting, nil)

		return
	}

	a.logger.Error().Str("source_id", a.name).Int("attempts", attempts-1).Msg("MQTT reconnect attempts exhausted")

	go client.Disconnect(0)

	a.SetState(adapter.StateFailed, adapter.ErrRetryExhausted)
}

func (a *Adapter) timeout() time.Duration {
	if d := a.cfg.ConnectTimeout.Std(); d > 0 {
		return d
	}

	return 10 * time.Second
}

func wait(ctx context.Context, tok paho.Token, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errTimeout
	}
}

var _ adapter.Adapter = (*Adapter)(nil)
