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

// Package httppoll is the adapter for periodically polled HTTP endpoints.
package httppoll

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/carverauto/scenebind/pkg/adapter"
	"github.com/carverauto/scenebind/pkg/clock"
	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
)

// Kind is the registry key of this adapter.
const Kind = "http"

const (
	maxBodySize   = 10 << 20
	retryInterval = 200 * time.Millisecond
)

var errStatus = errors.New("unexpected HTTP status")

// Adapter issues HTTP requests against one base URL.
type Adapter struct {
	adapter.Hooks

	cfg    models.HTTPSourceConfig
	name   string
	logger logger.Logger
	clock  clock.Clock
	client *http.Client

	mu        sync.Mutex
	connected bool
	polls     map[int]context.CancelFunc
	nextPoll  int
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithClock drives poll timers from c.
func WithClock(c clock.Clock) Option {
	return func(a *Adapter) { a.clock = c }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Adapter) { a.client = c }
}

// New builds an adapter for an http source.
func New(src *models.SourceConfig, log logger.Logger) (adapter.Adapter, error) {
	a, err := NewAdapter(src, log)
	if err != nil {
		return nil, err
	}

	return a, nil
}

// NewAdapter is New with options and a concrete return type.
func NewAdapter(src *models.SourceConfig, log logger.Logger, opts ...Option) (*Adapter, error) {
	if src == nil || src.HTTP == nil {
		return nil, adapter.ErrMissingConfig
	}

	a := &Adapter{
		cfg:    *src.HTTP,
		name:   src.ID,
		logger: log,
		clock:  clock.Real(),
		client: &http.Client{},
		polls:  make(map[int]context.CancelFunc),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a, nil
}

// Register adds this adapter to r.
func Register(r adapter.Registry) {
	r.Register(Kind, New)
}

func (a *Adapter) Connect(_ context.Context) error {
	a.mu.Lock()
	already := a.connected
	a.connected = true
	a.mu.Unlock()

	if !already {
		a.SetState(adapter.StateConnected, nil)
	}

	return nil
}

// Disconnect stops every poll started through this adapter.
func (a *Adapter) Disconnect(_ context.Context) error {
	a.mu.Lock()
	was := a.connected
	a.connected = false
	polls := a.polls
	a.polls = make(map[int]context.CancelFunc)
	a.mu.Unlock()

	for _, cancel := range polls {
		cancel()
	}

	if was {
		a.SetState(adapter.StateClosed, nil)
	}

	return nil
}

// Subscribe is a no-op; polled sources have no topics.
func (*Adapter) Subscribe(context.Context, string, byte) error { return nil }

// Unsubscribe is a no-op.
func (*Adapter) Unsubscribe(context.Context, string) error { return nil }

// Poll fetches immediately and then on every tick of interval.
func (a *Adapter) Poll(ctx context.Context, interval time.Duration, fetch adapter.FetchFunc) func() {
	pollCtx, cancel := context.WithCancel(ctx)

	a.mu.Lock()
	id := a.nextPoll
	a.nextPoll++
	a.polls[id] = cancel
	a.mu.Unlock()

	stop := func() {
		cancel()

		a.mu.Lock()
		delete(a.polls, id)
		a.mu.Unlock()
	}

	if interval <= 0 {
		go func() {
			if pollCtx.Err() == nil {
				fetch(pollCtx)
			}

			stop()
		}()

		return stop
	}

	ticker := a.clock.Ticker(interval)

	go func() {
		defer ticker.Stop()

		fetch(pollCtx)

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.Chan():
				if pollCtx.Err() != nil {
					return
				}

				fetch(pollCtx)
			}
		}
	}()

	return stop
}

// Fetch performs one request, retrying transient failures, and delivers
// the response body to the message handler under the request URL.
func (a *Adapter) Fetch(ctx context.Context, req adapter.Request) error {
	method := firstNonEmpty(req.Method, a.cfg.Method, http.MethodGet)
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = a.cfg.Timeout.Std()
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInterval

	body, err := backoff.Retry(ctx, func() ([]byte, error) {
		return a.do(ctx, method, a.cfg.URL, mergeHeaders(a.cfg.Headers, req.Headers), req.Body, timeout)
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(uint(max(a.cfg.MaxRetries, 1))),
	)
	if err != nil {
		a.logger.Warn().Err(err).Str("source_id", a.name).Str("url", a.cfg.URL).Msg("HTTP fetch failed")
		return err
	}

	a.Deliver(a.cfg.URL, body)

	return nil
}

// Send posts payload to target, which is either an absolute URL or a path
// resolved against the source URL.
func (a *Adapter) Send(ctx context.Context, target string, payload []byte) error {
	dest, err := a.resolve(target)
	if err != nil {
		return err
	}

	headers := mergeHeaders(a.cfg.Headers, nil)
	if json.Valid(payload) {
		headers["Content-Type"] = "application/json"
	}

	_, err = a.do(ctx, http.MethodPost, dest, headers, payload, a.cfg.Timeout.Std())

	return err
}

func (a *Adapter) do(
	ctx context.Context,
	method, target string,
	headers map[string]string,
	body []byte,
	timeout time.Duration,
) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var reader io.Reader
	if len(body) > 0 && method != http.MethodGet {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}

	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("%w: %s %s: %d", errStatus, method, target, resp.StatusCode)
		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, backoff.Permanent(err)
		}

		return nil, err
	}

	return data, nil
}

func (a *Adapter) resolve(target string) (string, error) {
	if target == "" {
		return a.cfg.URL, nil
	}

	ref, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("invalid target %q: %w", target, err)
	}

	if ref.IsAbs() {
		return target, nil
	}

	base, err := url.Parse(a.cfg.URL)
	if err != nil {
		return "", fmt.Errorf("invalid source url %q: %w", a.cfg.URL, err)
	}

	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	return base.ResolveReference(&url.URL{Path: strings.TrimPrefix(ref.Path, "/"), RawQuery: ref.RawQuery}).String(), nil
}

func mergeHeaders(base, extra map[string]string) map[string]string {
	out := make(map[string]string, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}

	for k, v := range extra {
		out[k] = v
	}

	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}

var (
	_ adapter.Adapter = (*Adapter)(nil)
	_ adapter.Poller  = (*Adapter)(nil)
	_ adapter.Fetcher = (*Adapter)(nil)
)
