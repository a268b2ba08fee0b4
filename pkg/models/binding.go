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

package models

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Protocol identifies the transport family a binding or source uses.
type Protocol string

const (
	ProtocolPubSub Protocol = "pubsub"
	ProtocolSocket Protocol = "socket"
	ProtocolHTTP   Protocol = "http"
)

// Valid reports whether p names a supported protocol family.
func (p Protocol) Valid() bool {
	switch p {
	case ProtocolPubSub, ProtocolSocket, ProtocolHTTP:
		return true
	}

	return false
}

// DataType is the declared shape of the value a binding consumes.
type DataType string

const (
	DataTypeText        DataType = "text"
	DataTypeJSON        DataType = "json"
	DataTypeNumber      DataType = "number"
	DataTypeBoolean     DataType = "boolean"
	DataTypeBinary      DataType = "binary"
	DataTypeImageBase64 DataType = "image_base64"
)

// Valid reports whether d names a supported data type.
func (d DataType) Valid() bool {
	switch d {
	case DataTypeText, DataTypeJSON, DataTypeNumber, DataTypeBoolean, DataTypeBinary, DataTypeImageBase64:
		return true
	}

	return false
}

// Direction describes which way values flow through a SourcePath.
type Direction int

const (
	DirectionSourceToTarget Direction = 0
	DirectionTargetToSource Direction = 1
	DirectionBidirectional  Direction = 2
)

// Inbound reports whether values flow from the source into the scene.
func (d Direction) Inbound() bool {
	return d == DirectionSourceToTarget || d == DirectionBidirectional
}

// SourcePath pairs a path into the source payload with a scene property path.
type SourcePath struct {
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	Direction Direction `json:"direction"`
}

// NodeBindingType selects which node transform component a value drives.
type NodeBindingType string

const (
	NodeBindingTranslation  NodeBindingType = "translation"
	NodeBindingRotation     NodeBindingType = "rotation"
	NodeBindingScale        NodeBindingType = "scale"
	NodeBindingMorphWeights NodeBindingType = "morph_weights"
)

// NodeBinding routes a mapped value onto a named node of the model.
type NodeBinding struct {
	NodeName    string          `json:"nodeName"`
	NodeIndex   *int            `json:"nodeIndex,omitempty"`
	BindingType NodeBindingType `json:"bindingType"`
	Axis        string          `json:"axis,omitempty"`
}

const (
	defaultHTTPMethod  = http.MethodGet
	defaultHTTPTimeout = 30 * time.Second
)

// HTTPConfig carries the polling parameters of an http binding. A zero
// PollInterval means the request is made once.
type HTTPConfig struct {
	Method       string            `json:"method,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	Body         interface{}       `json:"body,omitempty"`
	PollInterval Seconds           `json:"pollInterval,omitempty"`
	Timeout      Seconds           `json:"timeout,omitempty"`
}

// WithDefaults returns a copy of c with the method and timeout filled in.
func (c HTTPConfig) WithDefaults() HTTPConfig {
	if c.Method == "" {
		c.Method = defaultHTTPMethod
	}

	c.Method = strings.ToUpper(c.Method)

	if c.Timeout <= 0 {
		c.Timeout = Seconds(defaultHTTPTimeout)
	}

	return c
}

// Binding is a declarative link between a source, a value path and scene properties.
type Binding struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name,omitempty"`
	Enabled        bool                   `json:"enabled"`
	ModelID        string                 `json:"modelId,omitempty"`
	Protocol       Protocol               `json:"protocol"`
	DataType       DataType               `json:"dataType"`
	SourceID       string                 `json:"sourceId"`
	Bindings       []SourcePath           `json:"bindings"`
	NodeBindings   []NodeBinding          `json:"nodeBindings,omitempty"`
	ValueMapping   *ValueMapping          `json:"valueMapping,omitempty"`
	Interpolation  *InterpolationConfig   `json:"interpolation,omitempty"`
	Conditions     []BindingCondition     `json:"conditions,omitempty"`
	TriggerResults []TriggerResult        `json:"triggerResults,omitempty"`
	HTTPConfig     *HTTPConfig            `json:"httpConfig,omitempty"`
	UpdateInterval Millis                 `json:"updateInterval,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// Validate checks the fields a binding must carry before it can join a pool.
func (b *Binding) Validate() error {
	if strings.TrimSpace(b.ID) == "" {
		return ErrMissingBindingID
	}

	if strings.TrimSpace(b.SourceID) == "" {
		return fmt.Errorf("%w: binding %s", ErrMissingSourceID, b.ID)
	}

	if !b.Protocol.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidProtocol, b.Protocol)
	}

	if !b.DataType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDataType, b.DataType)
	}

	for _, p := range b.Bindings {
		if p.Direction < DirectionSourceToTarget || p.Direction > DirectionBidirectional {
			return fmt.Errorf("%w: %d", ErrInvalidDirection, p.Direction)
		}
	}

	return nil
}

// PrimarySource returns the source path of the first inbound path pair.
func (b *Binding) PrimarySource() (SourcePath, bool) {
	for _, p := range b.Bindings {
		if p.Direction.Inbound() {
			return p, true
		}
	}

	return SourcePath{}, false
}

// Targets lists the scene property paths fed by inbound path pairs.
func (b *Binding) Targets() []string {
	targets := make([]string, 0, len(b.Bindings))

	for _, p := range b.Bindings {
		if p.Direction.Inbound() && p.Target != "" {
			targets = append(targets, p.Target)
		}
	}

	return targets
}

// UnmarshalJSON treats a missing enabled flag as true.
func (b *Binding) UnmarshalJSON(data []byte) error {
	type alias Binding

	aux := struct {
		Enabled *bool `json:"enabled"`
		*alias
	}{alias: (*alias)(b)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	b.Enabled = aux.Enabled == nil || *aux.Enabled

	return nil
}
