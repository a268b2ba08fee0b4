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
	"errors"
	"fmt"
	"sort"

	"github.com/carverauto/scenebind/pkg/models"
)

var ErrUnknownPreset = errors.New("unknown value mapping preset")

//nolint:gochecknoglobals // read-only preset table
var presets = map[string]models.ValueMapping{
	"temperature": {InputMin: -20, InputMax: 50, OutputMin: 0, OutputMax: 1, Clamp: true, Curve: models.CurveLinear, Enabled: true},
	"humidity":    {InputMin: 0, InputMax: 100, OutputMin: 0, OutputMax: 1, Clamp: true, Curve: models.CurveLinear, Enabled: true},
	"pressure":    {InputMin: 900, InputMax: 1100, OutputMin: 0, OutputMax: 1, Clamp: true, Curve: models.CurveLinear, Enabled: true},
	"percentage":  {InputMin: 0, InputMax: 100, OutputMin: 0, OutputMax: 1, Clamp: true, Curve: models.CurveLinear, Enabled: true},
}

// Preset returns a named sensor mapping.
func Preset(name string) (models.ValueMapping, error) {
	m, ok := presets[name]
	if !ok {
		return models.ValueMapping{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}

	return m, nil
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
