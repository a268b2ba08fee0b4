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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.opentelemetry.io/otel"

	"github.com/carverauto/scenebind/pkg/adapter"
	"github.com/carverauto/scenebind/pkg/adapter/httppoll"
	"github.com/carverauto/scenebind/pkg/adapter/mqtt"
	"github.com/carverauto/scenebind/pkg/adapter/natspubsub"
	"github.com/carverauto/scenebind/pkg/adapter/socket"
	"github.com/carverauto/scenebind/pkg/config"
	"github.com/carverauto/scenebind/pkg/events"
	"github.com/carverauto/scenebind/pkg/interpolation"
	"github.com/carverauto/scenebind/pkg/lifecycle"
	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/pool"
	"github.com/carverauto/scenebind/pkg/scene"
	"github.com/carverauto/scenebind/pkg/state"
)

const (
	shutdownTimeout = 10 * time.Second
	closeTimeout    = 5 * time.Second
)

// sections that a reload applies to the running pool; any other change
// needs a restart.
//
//nolint:gochecknoglobals // fixed lookup table
var reloadable = map[string]bool{
	"sources":  true,
	"bindings": true,
}

// sendFunc lets the scene host route commands through a pool built after it.
type sendFunc func(ctx context.Context, protocol, target string, payload []byte) error

func (f sendFunc) Send(ctx context.Context, protocol, target string, payload []byte) error {
	return f(ctx, protocol, target, payload)
}

type service struct {
	cfg     ServiceConfig
	logCfg  *logger.Config
	log     logger.Logger
	bus     *events.Bus
	graph   *sceneGraph
	host    *scene.Host
	store   state.Store
	pool    *pool.Manager
	closers []func(ctx context.Context) error
}

func newRegistry() adapter.Registry {
	r := adapter.NewRegistry()

	mqtt.Register(r)
	natspubsub.Register(r)
	socket.Register(r)
	httppoll.Register(r)

	return r
}

// newService wires the bus, state store, scene host and pool for cfg. It does
// not connect any source.
func newService(ctx context.Context, cfg *ServiceConfig, registry adapter.Registry) (*service, error) {
	s := &service{
		cfg:    *cfg,
		logCfg: cfg.loggingConfig(),
	}

	var err error

	if s.log, err = lifecycle.CreateComponentLogger("scenebind", s.logCfg); err != nil {
		return nil, err
	}

	s.bus = events.NewBus(events.WithLogger(s.componentLogger("events")))
	s.graph = newSceneGraph(s.componentLogger("scene"))

	if err := s.connectEvents(ctx); err != nil {
		_ = s.close(ctx)

		return nil, err
	}

	if err := s.openStore(ctx); err != nil {
		_ = s.close(ctx)

		return nil, err
	}

	s.host = scene.NewHost(
		scene.WithPropertySink(s.graph),
		scene.WithCommandSender(sendFunc(func(ctx context.Context, protocol, target string, payload []byte) error {
			return s.pool.Send(ctx, protocol, target, payload)
		})),
		scene.WithBus(s.bus),
		scene.WithStore(s.store),
		scene.WithLogger(s.componentLogger("host")),
	)
	s.registerFunctions()

	interp := interpolation.NewEngine(
		interpolation.WithFrameInterval(time.Duration(cfg.FrameInterval)),
		interpolation.WithLogger(s.componentLogger("interpolation")),
	)

	s.pool, err = pool.NewManager(registry,
		pool.WithListener(s.graph),
		pool.WithActions(s.host),
		pool.WithInterpolationEngine(interp),
		pool.WithBus(s.bus),
		pool.WithLogger(s.componentLogger("pool")),
		pool.WithMeterProvider(otel.GetMeterProvider()),
	)
	if err != nil {
		_ = s.close(ctx)

		return nil, err
	}

	return s, nil
}

func (s *service) componentLogger(component string) logger.Logger {
	l, err := lifecycle.CreateComponentLogger(component, s.logCfg)
	if err != nil {
		// the config already produced s.log, so this cannot fail on a level
		return s.log
	}

	return l
}

func (s *service) connectEvents(ctx context.Context) error {
	if s.cfg.Events.NATSURL == "" {
		return nil
	}

	pub, nc, err := events.ConnectNATSPublisher(ctx,
		s.cfg.Events.NATSURL, s.cfg.Events.Stream, s.cfg.Events.SubjectPrefix,
		s.componentLogger("events-nats"), nats.Name("scenebind-events"))
	if err != nil {
		return fmt.Errorf("failed to connect event stream: %w", err)
	}

	unsubscribe := s.bus.SubscribeAll(pub.Handle)

	s.closers = append(s.closers, func(context.Context) error {
		unsubscribe()
		return nc.Drain()
	})

	s.log.Info().Str("stream", s.cfg.Events.Stream).Msg("Mirroring animation events to JetStream")

	return nil
}

func (s *service) openStore(ctx context.Context) error {
	if s.cfg.State.Backend != stateBackendNATS {
		s.store = state.NewMemoryStore()
		s.closers = append(s.closers, func(context.Context) error { return s.store.Close() })

		return nil
	}

	store, err := state.NewNatsStore(ctx, state.NatsConfig{
		URL:    s.cfg.State.NATSURL,
		Bucket: s.cfg.State.Bucket,
		TTL:    time.Duration(s.cfg.State.TTL),
	}, nats.Name("scenebind-state"))
	if err != nil {
		return fmt.Errorf("failed to open state store: %w", err)
	}

	s.store = store
	s.closers = append(s.closers, func(context.Context) error { return store.Close() })

	s.log.Info().Str("bucket", s.cfg.State.Bucket).Msg("Using JetStream KV for scene state")

	return nil
}

// registerFunctions installs the callFunction names available to every binding.
func (s *service) registerFunctions() {
	s.host.RegisterFunction("scene.property", func(_ context.Context, params interface{}) (interface{}, error) {
		target, _ := params.(string)

		v, _ := s.graph.Property(target)

		return v, nil
	})

	s.host.RegisterFunction("scene.targets", func(context.Context, interface{}) (interface{}, error) {
		return s.graph.Targets(), nil
	})
}

// start builds the pool from the loaded config and connects every source.
// Sources that fail to connect are logged; the pool keeps retrying them.
func (s *service) start(ctx context.Context) {
	if err := s.pool.Build(ctx, s.cfg.Bindings, s.cfg.Sources); err != nil {
		s.log.Warn().Err(err).Msg("Some bindings were rejected")
	}

	if err := s.pool.Start(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Some sources failed to connect")
	}

	s.log.Info().
		Int("sources", len(s.pool.Entries())).
		Int("bindings", len(s.pool.Bindings())).
		Msg("Binding pool started")
}

// reload applies a new config document. Only sources and bindings are
// applied; other changed sections are logged.
func (s *service) reload(ctx context.Context, data []byte) error {
	var next ServiceConfig
	if err := json.Unmarshal(data, &next); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}

	if err := next.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	changed := config.FieldsChangedByTag(&s.cfg, &next, "json", nil)
	if len(changed) == 0 {
		return nil
	}

	for _, name := range changed {
		if !reloadable[name] {
			s.log.Warn().Str("section", name).Msg("Config section changed; restart to apply")
		}
	}

	if err := s.pool.Build(ctx, next.Bindings, next.Sources); err != nil {
		s.log.Warn().Err(err).Msg("Reload rejected some bindings")
	}

	s.cfg.Sources = next.Sources
	s.cfg.Bindings = next.Bindings

	s.log.Info().Strs("changed", changed).Int("bindings", len(s.pool.Bindings())).Msg("Config reloaded")

	return nil
}

// watch reloads path until ctx is done.
func (s *service) watch(ctx context.Context, path string) {
	if !s.cfg.Watch.Enabled || path == "" {
		return
	}

	w := config.NewFileWatcher(path, s.componentLogger("config"),
		config.WithWatchInterval(time.Duration(s.cfg.Watch.Interval)))

	w.Run(ctx, func(data []byte) {
		if err := s.reload(ctx, data); err != nil {
			s.log.Error().Err(err).Str("path", path).Msg("Config reload failed")
		}
	})
}

// close stops the pool and releases the bus subscribers and state store.
func (s *service) close(ctx context.Context) error {
	var errs []error

	if s.pool != nil {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		errs = append(errs, s.pool.Stop(stopCtx))

		cancel()
	}

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()

	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i](closeCtx))
	}

	s.closers = nil

	return errors.Join(errs...)
}
