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

import "github.com/carverauto/scenebind/pkg/values"

// Interpolate blends from toward to at progress p.
//
// Numbers are lerped. Arrays of equal length blend element-wise. Objects
// keep the keys of from and blend the keys both sides share, recursively.
// Anything else switches from from to to at p >= 0.5.
func Interpolate(from, to interface{}, p float64) interface{} {
	if a, ok := values.Float(from); ok {
		if b, ok := values.Float(to); ok {
			return a*(1-p) + b*p
		}
	}

	switch f := from.(type) {
	case []interface{}:
		if t, ok := to.([]interface{}); ok && len(f) == len(t) {
			out := make([]interface{}, len(f))
			for i := range f {
				out[i] = Interpolate(f[i], t[i], p)
			}

			return out
		}
	case []float64:
		if t, ok := to.([]float64); ok && len(f) == len(t) {
			out := make([]float64, len(f))
			for i := range f {
				out[i] = f[i]*(1-p) + t[i]*p
			}

			return out
		}
	case map[string]interface{}:
		if t, ok := to.(map[string]interface{}); ok {
			out := make(map[string]interface{}, len(f))
			for k, fv := range f {
				if tv, shared := t[k]; shared {
					out[k] = Interpolate(fv, tv, p)
				} else {
					out[k] = values.Clone(fv)
				}
			}

			return out
		}
	}

	if p < 0.5 {
		return from
	}

	return to
}
