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

package valuemap

import (
	"math"
	"math/rand"
	"testing"

	"github.com/carverauto/scenebind/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapping(inMin, inMax, outMin, outMax float64, mode models.ClampMode, curve models.Curve) models.ValueMapping {
	return models.ValueMapping{
		InputMin: inMin, InputMax: inMax, OutputMin: outMin, OutputMax: outMax,
		ClampMode: mode, Curve: curve, Enabled: true,
	}
}

func TestMapScenario(t *testing.T) {
	m := mapping(0, 100, 0, 1, models.ClampClamp, models.CurveLinear)
	assert.InDelta(t, 0.42, Map(42, m), 1e-12)
}

func TestMapClampStaysInOutputRange(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	curves := []models.Curve{models.CurveLinear, models.CurveExponential, models.CurveLogarithmic, models.CurveCubic, models.CurveSine}

	for i := 0; i < 2000; i++ {
		inMin := r.Float64()*200 - 100
		inMax := inMin + r.Float64()*100 + 0.001
		outMin := r.Float64()*20 - 10
		outMax := outMin + r.Float64()*20
		m := mapping(inMin, inMax, outMin, outMax, models.ClampClamp, curves[i%len(curves)])

		v := r.Float64()*1000 - 500
		got := Map(v, m)

		assert.GreaterOrEqual(t, got, outMin-1e-9)
		assert.LessOrEqual(t, got, outMax+1e-9)
	}
}

func TestMapLinearEndpoints(t *testing.T) {
	for _, mode := range []models.ClampMode{models.ClampNone, models.ClampClamp} {
		m := mapping(-20, 50, 0.1, 0.3, mode, models.CurveLinear)
		assert.Equal(t, 0.1, Map(-20, m)) //nolint:testifylint // endpoints must be exact
		assert.Equal(t, 0.3, Map(50, m))  //nolint:testifylint // endpoints must be exact
	}
}

func TestMapCurves(t *testing.T) {
	tests := []struct {
		curve models.Curve
		in    float64
		want  float64
	}{
		{models.CurveLinear, 0.5, 0.5},
		{models.CurveExponential, 0.5, 0.25},
		{models.CurveLogarithmic, 0, 0},
		{models.CurveLogarithmic, 1, 1},
		{models.CurveLogarithmic, 0.5, math.Log10(5.5)},
		{models.CurveCubic, 0.25, 3*0.0625 - 2*0.015625},
		{models.CurveSine, 0.5, 0.5},
		{models.CurveSine, 1, 1},
	}

	for _, tt := range tests {
		m := mapping(0, 1, 0, 1, models.ClampClamp, tt.curve)
		assert.InDelta(t, tt.want, Map(tt.in, m), 1e-12, "%s(%v)", tt.curve, tt.in)
	}
}

func TestMapBoundaryPolicies(t *testing.T) {
	wrap := mapping(0, 1, 0, 1, models.ClampWrap, models.CurveLinear)
	assert.InDelta(t, 0.25, Map(1.25, wrap), 1e-12)
	assert.InDelta(t, 0.75, Map(-0.25, wrap), 1e-12)

	mirror := mapping(0, 1, 0, 1, models.ClampMirror, models.CurveLinear)
	assert.InDelta(t, 0.75, Map(1.25, mirror), 1e-12)
	assert.InDelta(t, 0.25, Map(-0.25, mirror), 1e-12)
	assert.InDelta(t, 0.75, Map(-1.25, mirror), 1e-12)
	assert.InDelta(t, 0.25, Map(2.25, mirror), 1e-12)

	// continuous across integer boundaries
	assert.InDelta(t, Map(0.999999, mirror), Map(1.000001, mirror), 1e-5)

	none := mapping(0, 1, 0, 10, models.ClampNone, models.CurveLinear)
	assert.InDelta(t, 15.0, Map(1.5, none), 1e-12)
}

func TestMapEdgeCases(t *testing.T) {
	degenerate := mapping(5, 5, 3, 9, models.ClampClamp, models.CurveLinear)
	assert.InDelta(t, 3.0, Map(5, degenerate), 1e-12)
	assert.InDelta(t, 3.0, Map(100, degenerate), 1e-12)

	m := mapping(0, 10, 0, 1, models.ClampClamp, models.CurveLinear)
	assert.InDelta(t, 0.0, Map(math.NaN(), m), 1e-12)

	m.Enabled = false
	assert.InDelta(t, 77.0, Map(77, m), 1e-12)
}

func TestMapValue(t *testing.T) {
	m := mapping(0, 10, 0, 100, models.ClampClamp, models.CurveLinear)

	got, ok := MapValue(5, &m)
	require.True(t, ok)
	assert.InDelta(t, 50.0, got, 1e-12)

	_, ok = MapValue("5", &m)
	assert.False(t, ok)

	got, ok = MapValue(3.5, nil)
	require.True(t, ok)
	assert.InDelta(t, 3.5, got, 1e-12)
}

func TestInverse(t *testing.T) {
	m := mapping(-20, 50, 0, 1, models.ClampClamp, models.CurveLinear)
	assert.InDelta(t, 15.0, Inverse(Map(15, m), m), 1e-9)
	assert.InDelta(t, 50.0, Inverse(2, m), 1e-9)
}

func TestPresets(t *testing.T) {
	assert.Equal(t, []string{"humidity", "percentage", "pressure", "temperature"}, PresetNames())

	temp, err := Preset("temperature")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, Map(15, temp), 1e-12)

	_, err = Preset("voltage")
	require.ErrorIs(t, err, ErrUnknownPreset)
}
