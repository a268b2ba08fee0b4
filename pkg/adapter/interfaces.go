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

//go:generate mockgen -destination=mock_adapter.go -package=adapter github.com/carverauto/scenebind/pkg/adapter Adapter,Poller,Fetcher

// Package adapter defines the contract between the connection pool and the
// protocol clients (pubsub, socket and http poll) that feed it.
package adapter

import (
	"context"
	"time"
)

// MessageHandler receives inbound payloads. Adapters call it from a single
// goroutine per connection.
type MessageHandler func(topic string, payload []byte)

// StateHandler is notified of connection state transitions. err is set for
// StateError and StateFailed.
type StateHandler func(state State, err error)

// Adapter is a single physical connection to a data source.
type Adapter interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Subscribe(ctx context.Context, topic string, qos byte) error
	Unsubscribe(ctx context.Context, topic string) error
	Send(ctx context.Context, target string, payload []byte) error
	OnMessage(h MessageHandler)
	OnStateChange(h StateHandler)
}

// FetchFunc runs one poll cycle.
type FetchFunc func(ctx context.Context)

// Poller is implemented by adapters that pull data on a schedule.
type Poller interface {
	// Poll calls fetch every interval until stop is called or ctx is done.
	// A non-positive interval fetches once.
	Poll(ctx context.Context, interval time.Duration, fetch FetchFunc) (stop func())
}

// Request overrides the defaults of a single pull.
type Request struct {
	Method  string
	Headers map[string]string
	Body    []byte
	Timeout time.Duration
}

// Fetcher is implemented by pull adapters. Fetch delivers the response
// body through the MessageHandler.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) error
}
