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

import "encoding/json"

// Easing names an easing function.
type Easing string

const (
	EasingNone        Easing = "none"
	EasingLinear      Easing = "linear"
	EasingEase        Easing = "ease"
	EasingEaseIn      Easing = "ease-in"
	EasingEaseOut     Easing = "ease-out"
	EasingEaseInOut   Easing = "ease-in-out"
	EasingCubicBezier Easing = "cubic-bezier"
)

// InterpolationConfig controls smoothing between successive binding values.
type InterpolationConfig struct {
	Enabled      bool      `json:"enabled"`
	Type         Easing    `json:"type,omitempty"`
	Easing       Easing    `json:"easing,omitempty"`
	Duration     Millis    `json:"duration"`
	Delay        Millis    `json:"delay,omitempty"`
	BezierPoints []float64 `json:"bezierPoints,omitempty"`
}

// Active reports whether values should be smoothed at all.
func (c *InterpolationConfig) Active() bool {
	return c != nil && c.Enabled && c.Type != EasingNone
}

// EasingKind resolves the easing function to use; easing overrides type.
func (c *InterpolationConfig) EasingKind() Easing {
	switch {
	case c.Easing != "":
		return c.Easing
	case c.Type == "":
		return EasingLinear
	default:
		return c.Type
	}
}

// UnmarshalJSON treats a missing enabled flag as true.
func (c *InterpolationConfig) UnmarshalJSON(data []byte) error {
	type alias InterpolationConfig

	aux := struct {
		Enabled *bool `json:"enabled"`
		*alias
	}{alias: (*alias)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	c.Enabled = aux.Enabled == nil || *aux.Enabled

	return nil
}
