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

import "sync"

// Hooks stores the handlers registered on an adapter. Implementations embed
// it to get OnMessage and OnStateChange.
type Hooks struct {
	mu      sync.RWMutex
	message MessageHandler
	state   StateHandler
	current State
}

func (h *Hooks) OnMessage(fn MessageHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.message = fn
}

func (h *Hooks) OnStateChange(fn StateHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state = fn
}

// Deliver hands a payload to the message handler, if any.
func (h *Hooks) Deliver(topic string, payload []byte) {
	h.mu.RLock()
	fn := h.message
	h.mu.RUnlock()

	if fn != nil {
		fn(topic, payload)
	}
}

// SetState records the state and notifies the state handler.
func (h *Hooks) SetState(s State, err error) {
	h.mu.Lock()
	h.current = s
	fn := h.state
	h.mu.Unlock()

	if fn != nil {
		fn(s, err)
	}
}

// State returns the last state passed to SetState.
func (h *Hooks) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return h.current
}
