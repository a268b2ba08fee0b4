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

package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
	"github.com/carverauto/scenebind/pkg/version"
)

var (
	errEventsStream     = errors.New("events.stream is required when events.nats_url is set")
	errStateBackend     = errors.New("unknown state backend")
	errStateNATSURL     = errors.New("state.nats_url is required for the nats backend")
	errMetricsEndpoint  = errors.New("metrics.endpoint is required when metrics are enabled")
	errNegativeInterval = errors.New("frame_interval must not be negative")
)

const (
	stateBackendMemory = "memory"
	stateBackendNATS   = "nats"

	defaultStateBucket = "scenebind-state"
)

// ServiceConfig is the scenebind configuration document.
type ServiceConfig struct {
	Logging       *logger.Config        `json:"logging,omitempty"`
	Metrics       MetricsConfig         `json:"metrics"`
	Sources       []models.SourceConfig `json:"sources"`
	Bindings      []models.Binding      `json:"bindings"`
	Events        EventsConfig          `json:"events"`
	State         StateConfig           `json:"state"`
	FrameInterval models.Duration       `json:"frame_interval,omitempty"`
	Watch         WatchConfig           `json:"watch"`
}

// MetricsConfig enables OTLP metric export.
type MetricsConfig struct {
	Enabled  bool              `json:"enabled"`
	Endpoint string            `json:"endpoint,omitempty"`
	Insecure bool              `json:"insecure,omitempty"`
	Headers  map[string]string `json:"headers,omitempty"`
	Interval models.Duration   `json:"interval,omitempty"`
}

// EventsConfig mirrors outbound animation events into a JetStream stream.
// Leaving nats_url empty keeps events in-process.
type EventsConfig struct {
	NATSURL       string `json:"nats_url,omitempty"`
	Stream        string `json:"stream,omitempty"`
	SubjectPrefix string `json:"subject_prefix,omitempty"`
}

// StateConfig selects where setState triggers write.
type StateConfig struct {
	Backend string          `json:"backend,omitempty"`
	NATSURL string          `json:"nats_url,omitempty"`
	Bucket  string          `json:"bucket,omitempty"`
	TTL     models.Duration `json:"ttl,omitempty"`
}

// WatchConfig turns on polling of the config file for binding changes.
type WatchConfig struct {
	Enabled  bool            `json:"enabled"`
	Interval models.Duration `json:"interval,omitempty"`
}

// Validate checks the service-level sections. Sources and bindings are
// validated by the pool when it is built.
func (c *ServiceConfig) Validate() error {
	if c.Events.NATSURL != "" && c.Events.Stream == "" {
		return errEventsStream
	}

	switch c.State.Backend {
	case "":
		c.State.Backend = stateBackendMemory
	case stateBackendMemory:
	case stateBackendNATS:
		if c.State.NATSURL == "" {
			return errStateNATSURL
		}

		if c.State.Bucket == "" {
			c.State.Bucket = defaultStateBucket
		}
	default:
		return fmt.Errorf("%w: %q", errStateBackend, c.State.Backend)
	}

	if c.Metrics.Enabled && c.Metrics.Endpoint == "" {
		return errMetricsEndpoint
	}

	if c.FrameInterval < 0 {
		return errNegativeInterval
	}

	return nil
}

func (c *ServiceConfig) loggingConfig() *logger.Config {
	if c.Logging == nil {
		return logger.DefaultConfig()
	}

	cfg := c.Logging.WithDefaults()

	return &cfg
}

func (c *ServiceConfig) metricsConfig() logger.MetricsConfig {
	return logger.MetricsConfig{
		Enabled:        c.Metrics.Enabled,
		Endpoint:       c.Metrics.Endpoint,
		Insecure:       c.Metrics.Insecure,
		Headers:        c.Metrics.Headers,
		ServiceName:    "scenebind",
		ServiceVersion: version.GetVersion(),
		ExportInterval: time.Duration(c.Metrics.Interval),
	}
}
