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

import (
	"encoding/json"
	"time"
)

// ConditionType selects how a BindingCondition is evaluated.
type ConditionType string

const (
	ConditionThreshold ConditionType = "threshold"
	ConditionRange     ConditionType = "range"
	ConditionChange    ConditionType = "change"
	ConditionPattern   ConditionType = "pattern"
	ConditionTimeout   ConditionType = "timeout"
)

// Operator is a comparison operator used by conditions.
type Operator string

const (
	OpGT       Operator = "gt"
	OpGTE      Operator = "gte"
	OpLT       Operator = "lt"
	OpLTE      Operator = "lte"
	OpEQ       Operator = "eq"
	OpNEQ      Operator = "neq"
	OpBetween  Operator = "between"
	OpOutside  Operator = "outside"
	OpContains Operator = "contains"
	OpMatches  Operator = "matches"
)

// Logic combines several condition results.
type Logic string

const (
	LogicAnd Logic = "and"
	LogicOr  Logic = "or"
	LogicNot Logic = "not"
)

// BindingCondition is a rule evaluated against incoming binding values.
type BindingCondition struct {
	ID          string        `json:"id"`
	Type        ConditionType `json:"type"`
	Operator    Operator      `json:"operator"`
	Value       interface{}   `json:"value"`
	SecondValue interface{}   `json:"secondValue,omitempty"`
	Tolerance   float64       `json:"tolerance,omitempty"`
	Enabled     bool          `json:"enabled"`
}

// UnmarshalJSON treats a missing enabled flag as true.
func (c *BindingCondition) UnmarshalJSON(data []byte) error {
	type alias BindingCondition

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

// ConditionResult is a single recorded evaluation of a condition.
type ConditionResult struct {
	ConditionID   string                 `json:"conditionId"`
	Satisfied     bool                   `json:"satisfied"`
	Value         interface{}            `json:"value"`
	PreviousValue interface{}            `json:"previousValue,omitempty"`
	Timestamp     time.Time              `json:"timestamp"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// TriggerType selects the side effect a trigger performs.
type TriggerType string

const (
	TriggerSetValue      TriggerType = "setValue"
	TriggerSendCommand   TriggerType = "sendCommand"
	TriggerPlayAnimation TriggerType = "playAnimation"
	TriggerShowAlert     TriggerType = "showAlert"
	TriggerCallFunction  TriggerType = "callFunction"
	TriggerSetState      TriggerType = "setState"
)

// TriggerResult is a side effect executed when a binding's conditions hold.
type TriggerResult struct {
	ID       string                 `json:"id"`
	Type     TriggerType            `json:"type"`
	Target   string                 `json:"target"`
	Value    interface{}            `json:"value"`
	Delay    Millis                 `json:"delay,omitempty"`
	Duration Millis                 `json:"duration,omitempty"`
	Enabled  bool                   `json:"enabled"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// UnmarshalJSON treats a missing enabled flag as true.
func (t *TriggerResult) UnmarshalJSON(data []byte) error {
	type alias TriggerResult

	aux := struct {
		Enabled *bool `json:"enabled"`
		*alias
	}{alias: (*alias)(t)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	t.Enabled = aux.Enabled == nil || *aux.Enabled

	return nil
}
