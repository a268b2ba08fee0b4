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

// Package valuemap remaps scalar telemetry into a target range through a
// response curve and a boundary policy.
package valuemap

import (
	"math"

	"github.com/carverauto/scenebind/pkg/models"
	"github.com/carverauto/scenebind/pkg/values"
)

// Map normalizes value against the input range, applies the boundary policy,
// then the curve, then scales into the output range. A disabled mapping
// returns value unchanged; a degenerate input range or NaN yields OutputMin.
func Map(value float64, m models.ValueMapping) float64 {
	if !m.Enabled {
		return value
	}

	span := m.InputMax - m.InputMin
	if span == 0 || math.IsNaN(value) {
		return m.OutputMin
	}

	v := (value - m.InputMin) / span
	v = applyBoundary(v, m.Boundary())
	v = applyCurve(v, m.Curve)

	return lerp(m.OutputMin, m.OutputMax, v)
}

// MapValue maps v when it is numeric. The second result is false for
// non-numeric input.
func MapValue(v interface{}, m *models.ValueMapping) (float64, bool) {
	f, ok := values.Float(v)
	if !ok {
		return 0, false
	}

	if m == nil {
		return f, true
	}

	return Map(f, *m), true
}

// Inverse maps an output-range value back into the input range, assuming a
// linear curve and clamping to the output range. It is used for values that
// flow from the scene back to the source.
func Inverse(value float64, m models.ValueMapping) float64 {
	if !m.Enabled {
		return value
	}

	span := m.OutputMax - m.OutputMin
	if span == 0 || math.IsNaN(value) {
		return m.InputMin
	}

	v := clamp01((value - m.OutputMin) / span)

	return lerp(m.InputMin, m.InputMax, v)
}

func applyBoundary(v float64, mode models.ClampMode) float64 {
	switch mode {
	case models.ClampClamp:
		return clamp01(v)
	case models.ClampWrap:
		return v - math.Floor(v)
	case models.ClampMirror:
		cycle := math.Floor(v)
		frac := v - cycle

		if math.Mod(cycle, 2) == 0 {
			return frac
		}

		return 1 - frac
	case models.ClampNone:
	}

	return v
}

func applyCurve(v float64, curve models.Curve) float64 {
	switch curve {
	case models.CurveExponential:
		return v * v
	case models.CurveLogarithmic:
		if v <= 0 {
			return 0
		}

		return math.Log10(9*v + 1)
	case models.CurveCubic:
		return v * v * (3 - 2*v)
	case models.CurveSine:
		return (math.Sin((v-0.5)*math.Pi) + 1) / 2
	case models.CurveLinear:
	}

	return v
}

// lerp returns exactly a at t=0 and exactly b at t=1.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
