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
	"context"
	"fmt"
	"strings"

	"github.com/carverauto/scenebind/pkg/models"
)

const defaultAlertLevel = "info"

// BatchResult reports the outcome of ExecuteTriggers.
type BatchResult struct {
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
}

// ExecuteTrigger performs a single trigger. Disabled triggers succeed
// without side effects. A positive delay is waited out first unless ctx is
// cancelled. Failures are wrapped as "trigger <id> (<type>): ...".
func (e *Engine) ExecuteTrigger(ctx context.Context, trigger *models.TriggerResult, actions Actions) error {
	if !trigger.Enabled {
		return nil
	}

	if err := e.execute(ctx, trigger, actions); err != nil {
		return fmt.Errorf("trigger %s (%s): %w", trigger.ID, trigger.Type, err)
	}

	return nil
}

func (e *Engine) execute(ctx context.Context, trigger *models.TriggerResult, actions Actions) (err error) {

	if actions == nil {
		return ErrNoActions
	}

	if d := trigger.Delay.Std(); d > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.clock.After(d):
		}
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrActionPanic, r)
		}
	}()

	switch trigger.Type {
	case models.TriggerSetValue:
		err = actions.SetModelProperty(ctx, trigger.Target, trigger.Value)
	case models.TriggerSendCommand:
		protocol, target, _ := strings.Cut(trigger.Target, ":")
		err = actions.SendIoTCommand(ctx, protocol, target, trigger.Value)
	case models.TriggerPlayAnimation:
		err = actions.PlayAnimation(ctx, trigger.Target, trigger.Value)
	case models.TriggerShowAlert:
		err = actions.ShowAlert(ctx, alertMessage(trigger.Value), alertLevel(trigger.Metadata))
	case models.TriggerCallFunction:
		_, err = actions.CallFunction(ctx, trigger.Target, trigger.Value)
	case models.TriggerSetState:
		actions.SetState(trigger.Target, trigger.Value)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownTrigger, trigger.Type)
	}

	return err
}

// ExecuteTriggers runs triggers one after another and collects failures.
func (e *Engine) ExecuteTriggers(ctx context.Context, triggers []models.TriggerResult, actions Actions) BatchResult {
	var res BatchResult

	for i := range triggers {
		t := &triggers[i]

		if err := e.ExecuteTrigger(ctx, t, actions); err != nil {
			res.Failed++
			res.Errors = append(res.Errors, err.Error())

			e.logger.Warn().
				Err(err).
				Str("trigger_id", t.ID).
				Str("type", string(t.Type)).
				Msg("Trigger failed")

			continue
		}

		res.Successful++
	}

	return res
}

func alertMessage(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}

	if v == nil {
		return ""
	}

	return fmt.Sprint(v)
}

func alertLevel(meta map[string]interface{}) string {
	if level, ok := meta["type"].(string); ok && level != "" {
		return level
	}

	return defaultAlertLevel
}
