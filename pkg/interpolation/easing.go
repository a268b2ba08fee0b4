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

package interpolation

import (
	"math"

	"github.com/carverauto/scenebind/pkg/models"
)

// EaseFunc maps linear progress in [0,1] to eased progress.
type EaseFunc func(progress float64) float64

const (
	newtonIterations = 8
	bisectIterations = 64
	solveEpsilon     = 1e-7
	slopeEpsilon     = 1e-6
)

//nolint:gochecknoglobals // read-only preset table
var easingPresets = map[models.Easing][4]float64{
	models.EasingEase:      {0.25, 0.1, 0.25, 1},
	models.EasingEaseIn:    {0.42, 0, 1, 1},
	models.EasingEaseOut:   {0, 0, 0.58, 1},
	models.EasingEaseInOut: {0.42, 0, 0.58, 1},
}

// Easing resolves an easing kind. cubic-bezier uses points (x1,y1,x2,y2);
// unknown kinds and malformed points fall back to linear.
func Easing(kind models.Easing, points []float64) EaseFunc {
	if p, ok := easingPresets[kind]; ok {
		return CubicBezier(p[0], p[1], p[2], p[3])
	}

	if kind == models.EasingCubicBezier && len(points) == 4 {
		return CubicBezier(points[0], points[1], points[2], points[3])
	}

	return Linear
}

// Linear is the identity easing.
func Linear(progress float64) float64 {
	return progress
}

// CubicBezier builds a CSS style timing function with control points
// (0,0), (x1,y1), (x2,y2), (1,1). The curve is solved for x(t) = progress
// and evaluated as y(t).
func CubicBezier(x1, y1, x2, y2 float64) EaseFunc {
	b := newBezier(clamp01(x1), y1, clamp01(x2), y2)

	return func(progress float64) float64 {
		switch {
		case progress <= 0:
			return 0
		case progress >= 1:
			return 1
		}

		return b.sampleY(b.solveT(progress))
	}
}

type bezier struct {
	ax, bx, cx float64
	ay, by, cy float64
}

func newBezier(x1, y1, x2, y2 float64) bezier {
	b := bezier{cx: 3 * x1, cy: 3 * y1}
	b.bx = 3*(x2-x1) - b.cx
	b.ax = 1 - b.cx - b.bx
	b.by = 3*(y2-y1) - b.cy
	b.ay = 1 - b.cy - b.by

	return b
}

func (b bezier) sampleX(t float64) float64 { return ((b.ax*t+b.bx)*t + b.cx) * t }
func (b bezier) sampleY(t float64) float64 { return ((b.ay*t+b.by)*t + b.cy) * t }
func (b bezier) slopeX(t float64) float64  { return (3*b.ax*t+2*b.bx)*t + b.cx }

// solveT inverts x(t) with Newton's method, falling back to bisection.
func (b bezier) solveT(x float64) float64 {
	t := x

	for i := 0; i < newtonIterations; i++ {
		dx := b.sampleX(t) - x
		if math.Abs(dx) < solveEpsilon {
			return t
		}

		slope := b.slopeX(t)
		if math.Abs(slope) < slopeEpsilon {
			break
		}

		t -= dx / slope
	}

	lo, hi := 0.0, 1.0
	t = x

	for i := 0; i < bisectIterations; i++ {
		got := b.sampleX(t)
		if math.Abs(got-x) < solveEpsilon {
			return t
		}

		if x > got {
			lo = t
		} else {
			hi = t
		}

		t = lo + (hi-lo)/2
	}

	return t
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
