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

//go:generate mockgen -destination=mock_listener.go -package=pool github.com/carverauto/scenebind/pkg/pool Listener

// Package pool manages the physical connections behind a set of bindings and
// runs the per-binding value pipeline on every inbound message.
package pool

import (
	"time"

	"github.com/carverauto/scenebind/pkg/models"
)

// Update is one value delivered to a binding's scene targets.
type Update struct {
	BindingID  string          `json:"bindingId"`
	ModelID    string          `json:"modelId,omitempty"`
	Targets    []string        `json:"targets,omitempty"`
	Topic      string          `json:"topic,omitempty"`
	SourceData interface{}     `json:"sourceData"`
	Value      interface{}     `json:"value"`
	Timestamp  time.Time       `json:"timestamp"`
	Protocol   models.Protocol `json:"protocol"`
	DataType   models.DataType `json:"dataType"`
}

// Listener is the consumer side of the pool. Calls are made outside of the
// pool's locks and may arrive from several goroutines.
type Listener interface {
	OnDataUpdate(u Update)
	OnBindingError(bindingID, message string)
	OnConnectionChange(protocol models.Protocol, connected bool)
}
