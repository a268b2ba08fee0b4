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
	"fmt"
	"time"

	"github.com/carverauto/scenebind/pkg/condition"
	"github.com/carverauto/scenebind/pkg/dataproc"
	"github.com/carverauto/scenebind/pkg/events"
	"github.com/carverauto/scenebind/pkg/jsonpath"
	"github.com/carverauto/scenebind/pkg/models"
	"github.com/carverauto/scenebind/pkg/valuemap"
	"github.com/carverauto/scenebind/pkg/values"
)

type triggerJob struct {
	bindingID string
	triggers  []models.TriggerResult
}

// HandleData is the inbound path of every adapter. The payload is decoded
// once and run through the pipeline of each binding of the source that
// accepts topic.
func (m *Manager) HandleData(sourceID, topic string, payload []byte) {
	m.mu.RLock()
	e, ok := m.entries[sourceID]
	m.mu.RUnlock()

	if !ok {
		m.log.Debug().Str("source_id", sourceID).Msg("Dropping data for unknown source")
		return
	}

	now := m.clock.Now()
	data := values.Decode(payload)

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	e.lastTopic, e.lastData, e.lastUpdate = topic, data, now
	e.mu.Unlock()

	m.metrics.messageReceived(m.ctx, e)

	for _, s := range e.snapshot() {
		if s.accepts(topic) {
			m.process(s, topic, data, now)
		}
	}
}

// process runs decode → extract → coerce → map → apply → conditions for one
// binding. A panic anywhere in the pipeline is reported as a binding error.
func (m *Manager) process(s *bindingState, topic string, data interface{}, now time.Time) {
	b := &s.binding

	defer m.recoverBinding(b.ID)

	if !s.allow() {
		m.metrics.throttled(m.ctx, b.ID)
		return
	}

	raw, ok := jsonpath.Extract(data, s.path)
	if !ok {
		m.metrics.extractionMiss(m.ctx, b.ID)
		m.log.Debug().
			Str("binding_id", b.ID).
			Str("path", s.path).
			Str("topic", topic).
			Msg("Source path not found in payload")

		return
	}

	value, err := dataproc.Process(raw, b.DataType)
	if err != nil {
		m.fail(b.ID, fmt.Sprintf("failed to process %s value: %v", b.DataType, err))
		return
	}

	if b.ValueMapping != nil {
		if f, ok := valuemap.MapValue(value, b.ValueMapping); ok {
			value = f
		}
	}

	prev, hasPrev := s.record(value)

	base := Update{
		BindingID:  b.ID,
		ModelID:    b.ModelID,
		Targets:    b.Targets(),
		Topic:      topic,
		SourceData: data,
		Timestamp:  now,
		Protocol:   b.Protocol,
		DataType:   b.DataType,
	}

	if b.Interpolation.Active() && hasPrev {
		m.interp.CreateTransition(b.ID, prev, value, b.Interpolation, func(v interface{}) {
			defer m.recoverBinding(b.ID)

			u := base
			u.Value = v
			u.Timestamp = m.clock.Now()
			m.emit(b, u)
		}, nil)
	} else {
		u := base
		u.Value = value
		m.emit(b, u)
	}

	if len(b.Conditions) == 0 {
		return
	}

	summary := m.conds.EvaluateConditions(b.Conditions, condition.Context{
		CurrentValue:  value,
		PreviousValue: prev,
		HasPrevious:   hasPrev,
		Timestamp:     now,
		Metadata: map[string]interface{}{
			"bindingId": b.ID,
			"protocol":  string(b.Protocol),
			"topic":     topic,
		},
	}, models.LogicAnd)

	if summary.Satisfied && len(b.TriggerResults) > 0 {
		m.enqueue(triggerJob{bindingID: b.ID, triggers: b.TriggerResults})
	}
}

// emit delivers u to the listener and turns numeric values into
// node_transform events for the binding's node bindings.
func (m *Manager) emit(b *models.Binding, u Update) {
	m.listener.OnDataUpdate(u)
	m.metrics.updateEmitted(m.ctx, b.ID)

	if m.bus == nil || len(b.NodeBindings) == 0 || b.ModelID == "" {
		return
	}

	f, ok := values.Float(u.Value)
	if !ok {
		return
	}

	for _, nb := range b.NodeBindings {
		ev := events.NodeTransformEvent(b.ModelID, events.NodeID(nb), events.TransformFor(nb, f), nil)

		if err := m.bus.Publish(m.ctx, ev); err != nil {
			m.log.Debug().Err(err).Str("binding_id", b.ID).Msg("Skipping node transform")
		}
	}
}

// enqueue hands triggers to the worker without blocking the inbound path.
func (m *Manager) enqueue(job triggerJob) {
	if m.ctx.Err() != nil {
		return
	}

	select {
	case m.jobs <- job:
	default:
		m.log.Warn().Str("binding_id", job.bindingID).Msg("Trigger queue full, dropping triggers")
		m.metrics.bindingError(m.ctx, job.bindingID)
	}
}

func (m *Manager) runTriggers() {
	defer m.workers.Done()

	for {
		select {
		case <-m.ctx.Done():
			return
		case job := <-m.jobs:
			m.fire(job)
		}
	}
}

func (m *Manager) fire(job triggerJob) {
	if m.actions == nil {
		m.log.Debug().Str("binding_id", job.bindingID).Msg("No trigger host configured")
		return
	}

	res := m.conds.ExecuteTriggers(m.ctx, job.triggers, m.actions)
	m.metrics.triggersFired(m.ctx, job.bindingID, res.Successful, res.Failed)

	for _, msg := range res.Errors {
		m.fail(job.bindingID, msg)
	}
}

func (m *Manager) recoverBinding(bindingID string) {
	if r := recover(); r != nil {
		m.fail(bindingID, fmt.Sprintf("binding pipeline panicked: %v", r))
	}
}

func (m *Manager) fail(bindingID, message string) {
	m.log.Warn().Str("binding_id", bindingID).Str("error", message).Msg("Binding error")
	m.metrics.bindingError(m.ctx, bindingID)
	m.listener.OnBindingError(bindingID, message)
}
