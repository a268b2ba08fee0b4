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

// Curve is the response curve applied to a normalized value.
type Curve string

const (
	CurveLinear      Curve = "linear"
	CurveExponential Curve = "exponential"
	CurveLogarithmic Curve = "logarithmic"
	CurveCubic       Curve = "cubic"
	CurveSine        Curve = "sine"
)

// ClampMode is the boundary policy applied to a normalized value.
type ClampMode string

const (
	ClampNone   ClampMode = ""
	ClampClamp  ClampMode = "clamp"
	ClampWrap   ClampMode = "wrap"
	ClampMirror ClampMode = "mirror"
)

const (
	defaultInputMin  = 0
	defaultInputMax  = 100
	defaultOutputMin = 0
	defaultOutputMax = 1
)

// ValueMapping remaps a scalar from an input range to an output range.
type ValueMapping struct {
	InputMin  float64   `json:"inputMin"`
	InputMax  float64   `json:"inputMax"`
	OutputMin float64   `json:"outputMin"`
	OutputMax float64   `json:"outputMax"`
	Clamp     bool      `json:"clamp"`
	ClampMode ClampMode `json:"clampMode,omitempty"`
	Curve     Curve     `json:"curve,omitempty"`
	Enabled   bool      `json:"enabled"`
}

// DefaultValueMapping returns the mapping used when fields are omitted: [0,100] to [0,1], clamped.
func DefaultValueMapping() ValueMapping {
	return ValueMapping{
		InputMin:  defaultInputMin,
		InputMax:  defaultInputMax,
		OutputMin: defaultOutputMin,
		OutputMax: defaultOutputMax,
		Clamp:     true,
		Curve:     CurveLinear,
		Enabled:   true,
	}
}

// Boundary resolves the effective boundary policy. An explicit clampMode wins
// over the legacy clamp flag.
func (m ValueMapping) Boundary() ClampMode {
	if m.ClampMode != ClampNone {
		return m.ClampMode
	}

	if m.Clamp {
		return ClampClamp
	}

	return ClampNone
}

// UnmarshalJSON fills omitted fields from DefaultValueMapping and accepts the
// inputRange/outputRange and interpolationType spellings.
func (m *ValueMapping) UnmarshalJSON(data []byte) error {
	aux := struct {
		InputMin          *float64    `json:"inputMin"`
		InputMax          *float64    `json:"inputMax"`
		OutputMin         *float64    `json:"outputMin"`
		OutputMax         *float64    `json:"outputMax"`
		InputRange        *[2]float64 `json:"inputRange"`
		OutputRange       *[2]float64 `json:"outputRange"`
		Clamp             *bool       `json:"clamp"`
		ClampMode         ClampMode   `json:"clampMode"`
		Curve             Curve       `json:"curve"`
		InterpolationType Curve       `json:"interpolationType"`
		Enabled           *bool       `json:"enabled"`
	}{}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	out := DefaultValueMapping()

	if aux.InputRange != nil {
		out.InputMin, out.InputMax = aux.InputRange[0], aux.InputRange[1]
	}

	if aux.OutputRange != nil {
		out.OutputMin, out.OutputMax = aux.OutputRange[0], aux.OutputRange[1]
	}

	setFloat(&out.InputMin, aux.InputMin)
	setFloat(&out.InputMax, aux.InputMax)
	setFloat(&out.OutputMin, aux.OutputMin)
	setFloat(&out.OutputMax, aux.OutputMax)

	if aux.Clamp != nil {
		out.Clamp = *aux.Clamp
	}

	if aux.Enabled != nil {
		out.Enabled = *aux.Enabled
	}

	out.ClampMode = aux.ClampMode

	switch {
	case aux.Curve != "":
		out.Curve = aux.Curve
	case aux.InterpolationType != "":
		out.Curve = aux.InterpolationType
	}

	*m = out

	return nil
}

func setFloat(dst, src *float64) {
	if src != nil {
		*dst = *src
	}
}
