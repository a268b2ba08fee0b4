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
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/carverauto/scenebind/pkg/adapter"
)

const (
	meterName = "github.com/carverauto/scenebind/pkg/pool"

	metricMessages     = "scenebind_pool_messages_total"
	metricUpdates      = "scenebind_pool_updates_total"
	metricMisses       = "scenebind_pool_extraction_misses_total"
	metricThrottled    = "scenebind_pool_throttled_total"
	metricErrors       = "scenebind_pool_binding_errors_total"
	metricTriggers     = "scenebind_pool_triggers_total"
	metricConnectFails = "scenebind_pool_connect_failures_total"
	metricStates       = "scenebind_pool_state_changes_total"
)

// poolMetrics holds the instruments of one manager. A nil instrument is
// skipped, so a failing meter only loses metrics.
type poolMetrics struct {
	messages     metric.Int64Counter
	updates      metric.Int64Counter
	misses       metric.Int64Counter
	throttle     metric.Int64Counter
	errors       metric.Int64Counter
	triggers     metric.Int64Counter
	connectFails metric.Int64Counter
	states       metric.Int64Counter
}

func newPoolMetrics(p metric.MeterProvider) *poolMetrics {
	meter := p.Meter(meterName)

	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil {
			otel.Handle(err)
			return nil
		}

		return c
	}

	return &poolMetrics{
		messages:     counter(metricMessages, "Inbound messages received per source"),
		updates:      counter(metricUpdates, "Values delivered to binding targets"),
		misses:       counter(metricMisses, "Messages whose source path did not resolve"),
		throttle:     counter(metricThrottled, "Messages dropped by a binding update interval"),
		errors:       counter(metricErrors, "Binding errors reported to the listener"),
		triggers:     counter(metricTriggers, "Trigger executions by outcome"),
		connectFails: counter(metricConnectFails, "Failed source connection attempts"),
		states:       counter(metricStates, "Source connection state transitions"),
	}
}

func add(ctx context.Context, c metric.Int64Counter, n int, attrs ...attribute.KeyValue) {
	if c == nil || n == 0 {
		return
	}

	c.Add(ctx, int64(n), metric.WithAttributes(attrs...))
}

func sourceAttrs(e *entry) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("source_id", e.sourceID),
		attribute.String("protocol", string(e.src.Protocol)),
	}
}

func (p *poolMetrics) messageReceived(ctx context.Context, e *entry) {
	add(ctx, p.messages, 1, sourceAttrs(e)...)
}

func (p *poolMetrics) updateEmitted(ctx context.Context, bindingID string) {
	add(ctx, p.updates, 1, attribute.String("binding_id", bindingID))
}

func (p *poolMetrics) extractionMiss(ctx context.Context, bindingID string) {
	add(ctx, p.misses, 1, attribute.String("binding_id", bindingID))
}

func (p *poolMetrics) throttled(ctx context.Context, bindingID string) {
	add(ctx, p.throttle, 1, attribute.String("binding_id", bindingID))
}

func (p *poolMetrics) bindingError(ctx context.Context, bindingID string) {
	add(ctx, p.errors, 1, attribute.String("binding_id", bindingID))
}

func (p *poolMetrics) triggersFired(ctx context.Context, bindingID string, ok, failed int) {
	add(ctx, p.triggers, ok, attribute.String("binding_id", bindingID), attribute.String("outcome", "success"))
	add(ctx, p.triggers, failed, attribute.String("binding_id", bindingID), attribute.String("outcome", "failure"))
}

func (p *poolMetrics) connectFailed(ctx context.Context, e *entry) {
	add(ctx, p.connectFails, 1, sourceAttrs(e)...)
}

func (p *poolMetrics) stateChanged(ctx context.Context, e *entry, s adapter.State) {
	add(ctx, p.states, 1, append(sourceAttrs(e), attribute.String("state", s.String()))...)
}
