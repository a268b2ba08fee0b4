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

package condition

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/scenebind/pkg/models"
	"github.com/carverauto/scenebind/pkg/values"
)

//nolint:gochecknoglobals // read-only preset tables
var (
	conditionPresets = map[string]models.BindingCondition{
		"high_temperature": {Type: models.ConditionThreshold, Operator: models.OpGT, Value: 30.0, Tolerance: 1},
		"low_battery":      {Type: models.ConditionThreshold, Operator: models.OpLT, Value: 20.0, Tolerance: 2},
		"motion_detected":  {Type: models.ConditionThreshold, Operator: models.OpEQ, Value: true},
		"value_changed":    {Type: models.ConditionChange, Operator: models.OpNEQ, Value: 0.0, Tolerance: 0.01},
		"timeout":          {Type: models.ConditionTimeout, Operator: models.OpGT, Value: 300000.0},
	}

	triggerPresets = map[string]models.TriggerResult{
		"send_alert": {
			Type:     models.TriggerShowAlert,
			Value:    "Condition triggered",
			Metadata: map[string]interface{}{"type": "warning"},
		},
		"change_color": {
			Type:     models.TriggerSetValue,
			Target:   "materials[0].emissiveFactor",
			Value:    []interface{}{1.0, 0.0, 0.0, 1.0},
			Duration: models.Millis(time.Second),
		},
		"play_sound": {
			Type:   models.TriggerPlayAnimation,
			Target: "audio",
			Value:  map[string]interface{}{"sound": "alert.wav", "volume": 0.8},
		},
		"send_command": {
			Type:   models.TriggerSendCommand,
			Target: "mqtt:device/command",
			Value:  map[string]interface{}{"action": "turn_on"},
		},
		"log_event": {
			Type:   models.TriggerSetState,
			Target: "lastTriggerTime",
		},
	}
)

// PresetCondition returns a ready-made condition. Overrides run after the
// preset is applied.
func (e *Engine) PresetCondition(name string, overrides ...func(*models.BindingCondition)) (models.BindingCondition, error) {
	c, ok := conditionPresets[name]
	if !ok {
		return models.BindingCondition{}, fmt.Errorf("%w: condition %q", ErrUnknownPreset, name)
	}

	c.ID = presetID(name)
	c.Enabled = true

	for _, fn := range overrides {
		fn(&c)
	}

	return c, nil
}

// PresetTrigger returns a ready-made trigger. Overrides run after the
// preset is applied.
func (e *Engine) PresetTrigger(name string, overrides ...func(*models.TriggerResult)) (models.TriggerResult, error) {
	t, ok := triggerPresets[name]
	if !ok {
		return models.TriggerResult{}, fmt.Errorf("%w: trigger %q", ErrUnknownPreset, name)
	}

	t.ID = presetID(name)
	t.Enabled = true
	t.Metadata = copyMeta(t.Metadata)
	t.Value = values.Clone(t.Value)

	if name == "log_event" {
		t.Value = e.clock.Now().UnixMilli()
	}

	for _, fn := range overrides {
		fn(&t)
	}

	return t, nil
}

// ConditionPresetNames lists the available condition presets.
func ConditionPresetNames() []string {
	return sortedKeys(conditionPresets)
}

// TriggerPresetNames lists the available trigger presets.
func TriggerPresetNames() []string {
	return sortedKeys(triggerPresets)
}

func presetID(name string) string {
	return fmt.Sprintf("preset_%s_%s", name, uuid.NewString())
}

func copyMeta(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}

	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
