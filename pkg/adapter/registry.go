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

package adapter

import (
	"fmt"
	"sort"
	"sync"

	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
)

// Factory builds an adapter for one source.
type Factory func(src *models.SourceConfig, log logger.Logger) (Adapter, error)

// Registry maps adapter kinds to factories.
type Registry interface {
	Register(kind string, f Factory)
	New(src *models.SourceConfig, log logger.Logger) (Adapter, error)
	Kinds() []string
}

type registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() Registry {
	return &registry{
		factories: make(map[string]Factory),
	}
}

// Register adds or replaces the factory for kind.
func (r *registry) Register(kind string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[kind] = f
}

// New builds the adapter for src using the factory of Kind(src).
func (r *registry) New(src *models.SourceConfig, log logger.Logger) (Adapter, error) {
	if src == nil {
		return nil, ErrMissingConfig
	}

	kind := Kind(src)

	r.mu.RLock()
	f, ok := r.factories[kind]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoFactory, kind)
	}

	return f(src, log)
}

func (r *registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}

	sort.Strings(kinds)

	return kinds
}

// Kind returns the registry key of a source: the protocol, qualified by
// broker for pubsub sources ("pubsub/mqtt", "pubsub/nats").
func Kind(src *models.SourceConfig) string {
	if src.Protocol != models.ProtocolPubSub {
		return string(src.Protocol)
	}

	broker := models.BrokerMQTT
	if src.PubSub != nil && src.PubSub.Broker != "" {
		broker = src.PubSub.Broker
	}

	return string(src.Protocol) + "/" + string(broker)
}
