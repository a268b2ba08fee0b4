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

package events

import (
	"math"
	"strconv"

	"github.com/carverauto/scenebind/pkg/models"
)

// TransformFor turns a mapped value into the transform component selected by
// nb. Rotation values are degrees and become a quaternion [x, y, z, w].
func TransformFor(nb models.NodeBinding, v float64) models.Transform {
	switch nb.BindingType {
	case models.NodeBindingTranslation:
		return models.Transform{Translation: axisVector(nb.Axis, v, 0)}
	case models.NodeBindingRotation:
		half := v * math.Pi / 360
		s, c := math.Sin(half), math.Cos(half)

		switch nb.Axis {
		case "x":
			return models.Transform{Rotation: []float64{s, 0, 0, c}}
		case "y":
			return models.Transform{Rotation: []float64{0, s, 0, c}}
		default:
			return models.Transform{Rotation: []float64{0, 0, s, c}}
		}
	case models.NodeBindingScale:
		return models.Transform{Scale: axisVector(nb.Axis, v, 1)}
	case models.NodeBindingMorphWeights:
		return models.Transform{Weights: []float64{v}}
	default:
		return models.Transform{}
	}
}

// axisVector puts v on the named axis and rest on the others. Any axis other
// than x, y or z sets all three.
func axisVector(axis string, v, rest float64) []float64 {
	switch axis {
	case "x":
		return []float64{v, rest, rest}
	case "y":
		return []float64{rest, v, rest}
	case "z":
		return []float64{rest, rest, v}
	default:
		return []float64{v, v, v}
	}
}

// NodeID is the identifier a node binding addresses: the node name, or the
// node index when no name is given.
func NodeID(nb models.NodeBinding) string {
	if nb.NodeName != "" || nb.NodeIndex == nil {
		return nb.NodeName
	}

	return strconv.Itoa(*nb.NodeIndex)
}
