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
	"sort"
	"sync"

	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
	"github.com/carverauto/scenebind/pkg/pool"
	"github.com/carverauto/scenebind/pkg/scene"
)

// sceneGraph is the process-local view of scene properties. It receives
// binding updates from the pool and property writes from triggers.
type sceneGraph struct {
	log logger.Logger

	mu    sync.RWMutex
	props map[string]interface{}
}

var (
	_ pool.Listener      = (*sceneGraph)(nil)
	_ scene.PropertySink = (*sceneGraph)(nil)
)

func newSceneGraph(log logger.Logger) *sceneGraph {
	return &sceneGraph{
		log:   log,
		props: make(map[string]interface{}),
	}
}

func (g *sceneGraph) OnDataUpdate(u pool.Update) {
	g.mu.Lock()
	for _, target := range u.Targets {
		g.props[target] = u.Value
	}
	g.mu.Unlock()

	g.log.Debug().
		Str("binding_id", u.BindingID).
		Str("model_id", u.ModelID).
		Str("topic", u.Topic).
		Strs("targets", u.Targets).
		Interface("value", u.Value).
		Msg("Binding update")
}

func (g *sceneGraph) OnBindingError(bindingID, message string) {
	g.log.Warn().Str("binding_id", bindingID).Msg(message)
}

func (g *sceneGraph) OnConnectionChange(protocol models.Protocol, connected bool) {
	g.log.Info().
		Str("protocol", string(protocol)).
		Bool("connected", connected).
		Msg("Connection state changed")
}

func (g *sceneGraph) SetProperty(_ context.Context, target string, value interface{}) error {
	g.mu.Lock()
	g.props[target] = value
	g.mu.Unlock()

	g.log.Info().Str("target", target).Interface("value", value).Msg("Property set by trigger")

	return nil
}

func (g *sceneGraph) Property(target string) (interface{}, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v, ok := g.props[target]

	return v, ok
}

// Targets lists every property written so far.
func (g *sceneGraph) Targets() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	out := make([]string, 0, len(g.props))
	for k := range g.props {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}
