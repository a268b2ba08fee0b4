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
	"sync"

	"golang.org/x/time/rate"

	"github.com/carverauto/scenebind/pkg/adapter"
	"github.com/carverauto/scenebind/pkg/jsonpath"
	"github.com/carverauto/scenebind/pkg/models"
	"github.com/carverauto/scenebind/pkg/values"
)

const defaultHistorySize = 50

// bindingState is the runtime state the pool keeps for one binding. The
// binding itself is immutable once the state is built; UpdateBinding swaps
// in a fresh state.
type bindingState struct {
	binding models.Binding
	topics  []string
	path    string
	limiter *rate.Limiter

	mu       sync.Mutex
	history  []interface{}
	previous interface{}
	hasPrev  bool
}

func newBindingState(b models.Binding) *bindingState {
	s := &bindingState{binding: b}

	if src, ok := b.PrimarySource(); ok {
		s.topics, s.path = splitSource(b.Protocol, src.Source)
	}

	for _, p := range b.Bindings {
		if !p.Direction.Inbound() || p.Source == "" {
			continue
		}

		topics, _ := splitSource(b.Protocol, p.Source)
		for _, t := range topics {
			s.topics = appendUnique(s.topics, t)
		}
	}

	if d := b.UpdateInterval.Std(); d > 0 {
		s.limiter = rate.NewLimiter(rate.Every(d), 1)
	}

	return s
}

// splitSource separates the topic filter from the JSON path. Only pubsub
// bindings carry topics; socket and http paths are pure JSON paths.
func splitSource(protocol models.Protocol, source string) ([]string, string) {
	if protocol != models.ProtocolPubSub {
		_, path := jsonpath.ParseSourcePath(source)
		return nil, path
	}

	topic, path := jsonpath.ParseSourcePath(source)
	if topic == "" {
		return nil, path
	}

	return []string{topic}, path
}

// accepts reports whether a message on topic is meant for this binding.
// Bindings without a topic of their own take everything from their source.
func (s *bindingState) accepts(topic string) bool {
	if s.binding.Protocol != models.ProtocolPubSub || len(s.topics) == 0 {
		return true
	}

	for _, filter := range s.topics {
		if adapter.TopicMatches(filter, topic) {
			return true
		}
	}

	return false
}

// allow applies the updateInterval throttle.
func (s *bindingState) allow() bool {
	return s.limiter == nil || s.limiter.Allow()
}

// record appends v to the history and returns the value it replaces as
// "previous".
func (s *bindingState) record(v interface{}) (prev interface{}, hasPrev bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, hasPrev = s.previous, s.hasPrev

	s.history = append(s.history, values.Clone(v))
	if len(s.history) > defaultHistorySize {
		s.history = s.history[len(s.history)-defaultHistorySize:]
	}

	s.previous, s.hasPrev = v, true

	return prev, hasPrev
}

func (s *bindingState) snapshot() []interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]interface{}, len(s.history))
	for i, v := range s.history {
		out[i] = values.Clone(v)
	}

	return out
}

// carry moves the value history of an older state for the same binding id.
func (s *bindingState) carry(old *bindingState) {
	old.mu.Lock()
	history, prev, hasPrev := old.history, old.previous, old.hasPrev
	old.mu.Unlock()

	s.mu.Lock()
	s.history = append([]interface{}(nil), history...)
	s.previous, s.hasPrev = prev, hasPrev
	s.mu.Unlock()
}

func appendUnique(list []string, v string) []string {
	for _, s := range list {
		if s == v {
			return list
		}
	}

	return append(list, v)
}
