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

import "time"

// EventType is the kind of an outbound animation event.
type EventType string

const (
	EventPlay          EventType = "play"
	EventPause         EventType = "pause"
	EventStop          EventType = "stop"
	EventSeek          EventType = "seek"
	EventNodeTransform EventType = "node_transform"
)

// Transform is a partial node transform; nil components are left untouched.
type Transform struct {
	Translation []float64 `json:"translation,omitempty"`
	Rotation    []float64 `json:"rotation,omitempty"`
	Scale       []float64 `json:"scale,omitempty"`
	Weights     []float64 `json:"weights,omitempty"`
}

// EventInterpolation tells the consumer how to blend into the new transform.
type EventInterpolation struct {
	Duration Millis `json:"duration"`
	Easing   Easing `json:"easing,omitempty"`
}

// AnimationEvent is the flat envelope emitted to rendering consumers.
type AnimationEvent struct {
	Type          EventType           `json:"type"`
	ModelID       string              `json:"modelId"`
	NodeID        string              `json:"nodeId,omitempty"`
	ClipID        string              `json:"clipId,omitempty"`
	Time          *float64            `json:"time,omitempty"`
	Loop          *bool               `json:"loop,omitempty"`
	Speed         *float64            `json:"speed,omitempty"`
	Transform     *Transform          `json:"transform,omitempty"`
	Interpolation *EventInterpolation `json:"interpolation,omitempty"`
	Timestamp     int64               `json:"timestamp"`
}

// Validate checks the fields every consumer relies on.
func (e *AnimationEvent) Validate() error {
	if e.ModelID == "" {
		return ErrMissingModelID
	}

	switch e.Type {
	case EventPlay, EventPause, EventStop:
		return nil
	case EventSeek:
		if e.Time == nil {
			return ErrMissingSeekTime
		}

		return nil
	case EventNodeTransform:
		if e.NodeID == "" {
			return ErrMissingNodeID
		}

		if e.Transform == nil {
			return ErrMissingTransform
		}

		return nil
	default:
		return ErrInvalidEventType
	}
}

// Stamp sets the event timestamp (unix milliseconds) when it is unset.
func (e *AnimationEvent) Stamp(now time.Time) {
	if e.Timestamp == 0 {
		e.Timestamp = now.UnixMilli()
	}
}
