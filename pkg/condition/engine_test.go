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
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/scenebind/pkg/clock"
	"github.com/carverauto/scenebind/pkg/models"
)

var testStart = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine() (*Engine, *clock.Fake) {
	clk := clock.NewFake(testStart)
	return NewEngine(WithClock(clk)), clk
}

func cond(typ models.ConditionType, op models.Operator, value interface{}) *models.BindingCondition {
	return &models.BindingCondition{ID: "c1", Type: typ, Operator: op, Value: value, Enabled: true}
}

func TestThreshold(t *testing.T) {
	tests := []struct {
		name  string
		op    models.Operator
		value interface{}
		tol   float64
		input interface{}
		want  bool
	}{
		{name: "gt above", op: models.OpGT, value: 30.0, input: 31.0, want: true},
		{name: "gt within tolerance", op: models.OpGT, value: 30.0, tol: 1, input: 30.5, want: false},
		{name: "gte tolerance widens", op: models.OpGTE, value: 30.0, tol: 1, input: 29.5, want: true},
		{name: "lt below", op: models.OpLT, value: 20.0, tol: 2, input: 17.0, want: true},
		{name: "lt inside tolerance", op: models.OpLT, value: 20.0, tol: 2, input: 19.0, want: false},
		{name: "lte", op: models.OpLTE, value: 20.0, tol: 2, input: 21.5, want: true},
		{name: "eq tolerance", op: models.OpEQ, value: 10.0, tol: 0.5, input: 10.4, want: true},
		{name: "neq", op: models.OpNEQ, value: 10.0, tol: 0.5, input: 10.6, want: true},
		{name: "int input", op: models.OpGT, value: 30.0, input: 31, want: true},
		{name: "bool eq", op: models.OpEQ, value: true, input: true, want: true},
		{name: "string neq", op: models.OpNEQ, value: "on", input: "off", want: true},
		{name: "contains", op: models.OpContains, value: "err", input: "device error", want: true},
		{name: "matches", op: models.OpMatches, value: "^dev-[0-9]+$", input: "dev-42", want: true},
		{name: "matches invalid regex uses substring", op: models.OpMatches, value: "a(b", input: "xa(by", want: true},
		{name: "gt on strings", op: models.OpGT, value: "a", input: "b", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEngine()
			c := cond(models.ConditionThreshold, tt.op, tt.value)
			c.Tolerance = tt.tol

			assert.Equal(t, tt.want, e.EvaluateCondition(c, Context{CurrentValue: tt.input}).Satisfied)
		})
	}
}

func TestRange(t *testing.T) {
	e, _ := newTestEngine()

	between := cond(models.ConditionRange, models.OpBetween, 10.0)
	between.SecondValue = 20.0

	assert.True(t, e.EvaluateCondition(between, Context{CurrentValue: 10.0}).Satisfied)
	assert.True(t, e.EvaluateCondition(between, Context{CurrentValue: 20.0}).Satisfied)
	assert.False(t, e.EvaluateCondition(between, Context{CurrentValue: 20.1}).Satisfied)
	assert.False(t, e.EvaluateCondition(between, Context{CurrentValue: "15"}).Satisfied)

	outside := cond(models.ConditionRange, models.OpOutside, 10.0)
	outside.SecondValue = 20.0

	assert.True(t, e.EvaluateCondition(outside, Context{CurrentValue: 9.0}).Satisfied)
	assert.False(t, e.EvaluateCondition(outside, Context{CurrentValue: 15.0}).Satisfied)
}

func TestChange(t *testing.T) {
	e, _ := newTestEngine()

	rise := cond(models.ConditionChange, models.OpGT, 5.0)

	assert.False(t, e.EvaluateCondition(rise, Context{CurrentValue: 100.0}).Satisfied, "no previous value")
	assert.True(t, e.EvaluateCondition(rise, Context{CurrentValue: 20.0, PreviousValue: 10.0, HasPrevious: true}).Satisfied)
	assert.False(t, e.EvaluateCondition(rise, Context{CurrentValue: 12.0, PreviousValue: 10.0, HasPrevious: true}).Satisfied)

	drop := cond(models.ConditionChange, models.OpLT, -5.0)
	assert.True(t, e.EvaluateCondition(drop, Context{CurrentValue: 0.0, PreviousValue: 10.0, HasPrevious: true}).Satisfied)

	moved := cond(models.ConditionChange, models.OpNEQ, 0.0)
	moved.Tolerance = 0.01
	assert.False(t, e.EvaluateCondition(moved, Context{CurrentValue: 1.005, PreviousValue: 1.0, HasPrevious: true}).Satisfied)
	assert.True(t, e.EvaluateCondition(moved, Context{CurrentValue: "b", PreviousValue: "a", HasPrevious: true}).Satisfied)

	nullPrev := cond(models.ConditionChange, models.OpNEQ, 0.0)
	assert.True(t, e.EvaluateCondition(nullPrev, Context{CurrentValue: "x", PreviousValue: nil, HasPrevious: true}).Satisfied)

	nonNumericGT := cond(models.ConditionChange, models.OpGT, 0.0)
	assert.False(t, e.EvaluateCondition(nonNumericGT, Context{CurrentValue: "b", PreviousValue: "a", HasPrevious: true}).Satisfied)
}

func TestPattern(t *testing.T) {
	e, _ := newTestEngine()

	assert.True(t, e.EvaluateCondition(cond(models.ConditionPattern, "", "^al(arm|ert)"), Context{CurrentValue: "alarm raised"}).Satisfied)
	assert.True(t, e.EvaluateCondition(cond(models.ConditionPattern, "", "[bad"), Context{CurrentValue: "a [bad thing"}).Satisfied)
	assert.False(t, e.EvaluateCondition(cond(models.ConditionPattern, "", "^x"), Context{CurrentValue: "alarm"}).Satisfied)

	pattern := map[string]interface{}{"status": "on", "meta": map[string]interface{}{"zone": 3.0}}
	value := map[string]interface{}{
		"status": "on",
		"level":  7.0,
		"meta":   map[string]interface{}{"zone": 3, "floor": 1},
	}

	assert.True(t, e.EvaluateCondition(cond(models.ConditionPattern, "", pattern), Context{CurrentValue: value}).Satisfied)

	value["status"] = "off"
	assert.False(t, e.EvaluateCondition(cond(models.ConditionPattern, "", pattern), Context{CurrentValue: value}).Satisfied)

	assert.True(t, e.EvaluateCondition(cond(models.ConditionPattern, "", 5.0), Context{CurrentValue: 5}).Satisfied)
}

func TestTimeout(t *testing.T) {
	e, clk := newTestEngine()
	c := cond(models.ConditionTimeout, models.OpGT, 1000.0)

	assert.False(t, e.EvaluateCondition(c, Context{}).Satisfied, "no history")

	clk.Advance(500 * time.Millisecond)
	assert.False(t, e.EvaluateCondition(c, Context{}).Satisfied)

	clk.Advance(1500 * time.Millisecond)
	assert.True(t, e.EvaluateCondition(c, Context{}).Satisfied)
}

func TestDisabledConditionIsNotRecorded(t *testing.T) {
	e, _ := newTestEngine()
	c := cond(models.ConditionThreshold, models.OpGT, 0.0)
	c.Enabled = false

	r := e.EvaluateCondition(c, Context{CurrentValue: 10.0})

	assert.False(t, r.Satisfied)
	assert.Equal(t, "c1", r.ConditionID)
	assert.Empty(t, e.History("c1"))
}

func TestHistoryBoundedAndStats(t *testing.T) {
	e, clk := newTestEngine()
	c := cond(models.ConditionThreshold, models.OpGT, 50.0)

	for i := 0; i < 150; i++ {
		clk.Advance(time.Millisecond)
		e.EvaluateCondition(c, Context{CurrentValue: float64(i)})
	}

	h := e.History("c1")
	require.Len(t, h, 100)
	assert.Equal(t, 50.0, h[0].Value)
	assert.Equal(t, 149.0, h[99].Value)

	s := e.Stats("c1")
	assert.Equal(t, 100, s.Total)
	assert.Equal(t, 99, s.Satisfied)
	assert.InDelta(t, 0.99, s.Rate, 1e-9)
	require.NotNil(t, s.Last)
	assert.Equal(t, 149.0, s.Last.Value)

	e.ClearHistory("c1")
	assert.Equal(t, Stats{}, e.Stats("c1"))

	e.EvaluateCondition(c, Context{CurrentValue: 1.0})
	e.ClearAllHistory()
	assert.Empty(t, e.History("c1"))
}

func TestEvaluateConditionsLogic(t *testing.T) {
	e, _ := newTestEngine()

	hot := *cond(models.ConditionThreshold, models.OpGT, 30.0)
	hot.ID = "hot"
	wet := *cond(models.ConditionThreshold, models.OpGT, 80.0)
	wet.ID = "wet"

	list := []models.BindingCondition{hot, wet}
	ctx := Context{CurrentValue: 50.0}

	and := e.EvaluateConditions(list, ctx, models.LogicAnd)
	assert.False(t, and.Satisfied)
	require.Len(t, and.Results, 2)

	assert.True(t, e.EvaluateConditions(list, ctx, models.LogicOr).Satisfied)
	assert.False(t, e.EvaluateConditions(list, ctx, models.LogicNot).Satisfied)
	assert.True(t, e.EvaluateConditions(list, Context{CurrentValue: 10.0}, models.LogicNot).Satisfied)

	assert.True(t, e.EvaluateConditions(nil, ctx, models.LogicAnd).Satisfied)
	assert.True(t, e.EvaluateConditions(nil, ctx, models.LogicNot).Satisfied)
	assert.False(t, e.EvaluateConditions(nil, ctx, models.LogicOr).Satisfied)

	for _, c := range list {
		for _, v := range []float64{10.0, 50.0, 90.0} {
			at := Context{CurrentValue: v}
			single := c
			assert.Equal(t,
				e.EvaluateCondition(&single, at).Satisfied,
				e.EvaluateConditions([]models.BindingCondition{c}, at, models.LogicAnd).Satisfied,
				"%s at %v", c.ID, v)
		}
	}
}

func TestExecuteTriggerDispatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	actions := NewMockActions(ctrl)
	e, _ := newTestEngine()
	ctx := context.Background()

	gomock.InOrder(
		actions.EXPECT().SetModelProperty(ctx, "materials[0].color", "red").Return(nil),
		actions.EXPECT().SendIoTCommand(ctx, "mqtt", "device/1/cmd", map[string]interface{}{"on": true}).Return(nil),
		actions.EXPECT().PlayAnimation(ctx, "door", "open").Return(nil),
		actions.EXPECT().ShowAlert(ctx, "hot", "warning").Return(nil),
		actions.EXPECT().ShowAlert(ctx, "42", "info").Return(nil),
		actions.EXPECT().CallFunction(ctx, "reset", nil).Return("ok", nil),
		actions.EXPECT().SetState("mode", "auto"),
	)

	triggers := []models.TriggerResult{
		{ID: "t1", Type: models.TriggerSetValue, Target: "materials[0].color", Value: "red", Enabled: true},
		{ID: "t2", Type: models.TriggerSendCommand, Target: "mqtt:device/1/cmd", Value: map[string]interface{}{"on": true}, Enabled: true},
		{ID: "t3", Type: models.TriggerPlayAnimation, Target: "door", Value: "open", Enabled: true},
		{ID: "t4", Type: models.TriggerShowAlert, Value: "hot", Enabled: true, Metadata: map[string]interface{}{"type": "warning"}},
		{ID: "t5", Type: models.TriggerShowAlert, Value: 42, Enabled: true},
		{ID: "t6", Type: models.TriggerCallFunction, Target: "reset", Enabled: true},
		{ID: "t7", Type: models.TriggerSetState, Target: "mode", Value: "auto", Enabled: true},
		{ID: "t8", Type: models.TriggerSetValue, Target: "ignored", Enabled: false},
	}

	res := e.ExecuteTriggers(ctx, triggers, actions)

	assert.Equal(t, 8, res.Successful)
	assert.Zero(t, res.Failed)
	assert.Empty(t, res.Errors)
}

func TestExecuteTriggersCollectsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	actions := NewMockActions(ctrl)
	e, _ := newTestEngine()
	ctx := context.Background()

	actions.EXPECT().SetModelProperty(ctx, "a", 1).Return(errors.New("no such node"))
	actions.EXPECT().PlayAnimation(ctx, "b", nil).DoAndReturn(func(context.Context, string, interface{}) error {
		panic("boom")
	})
	actions.EXPECT().SetState("c", 3)

	res := e.ExecuteTriggers(ctx, []models.TriggerResult{
		{ID: "bad", Type: models.TriggerSetValue, Target: "a", Value: 1, Enabled: true},
		{ID: "panics", Type: models.TriggerPlayAnimation, Target: "b", Enabled: true},
		{ID: "unknown", Type: "explode", Enabled: true},
		{ID: "good", Type: models.TriggerSetState, Target: "c", Value: 3, Enabled: true},
	}, actions)

	assert.Equal(t, 1, res.Successful)
	assert.Equal(t, 3, res.Failed)
	require.Len(t, res.Errors, 3)
	assert.Equal(t, "trigger bad (setValue): no such node", res.Errors[0])
	assert.True(t, strings.HasPrefix(res.Errors[1], "trigger panics (playAnimation): "))
	assert.Contains(t, res.Errors[1], "panicked")
	assert.True(t, strings.HasPrefix(res.Errors[2], "trigger unknown (explode): "))
	assert.Contains(t, res.Errors[2], "unknown trigger type")
}

func TestExecuteTriggerDelay(t *testing.T) {
	ctrl := gomock.NewController(t)
	actions := NewMockActions(ctrl)
	e, clk := newTestEngine()

	trigger := &models.TriggerResult{
		ID: "t1", Type: models.TriggerSetState, Target: "k", Value: 1,
		Delay: models.Millis(time.Second), Enabled: true,
	}

	actions.EXPECT().SetState("k", 1)

	done := make(chan error, 1)

	go func() { done <- e.ExecuteTrigger(context.Background(), trigger, actions) }()

	require.Eventually(t, func() bool { return clk.Waiters() == 1 }, time.Second, time.Millisecond)
	clk.Advance(time.Second)

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("trigger did not run after delay")
	}
}

func TestExecuteTriggerDelayCancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	actions := NewMockActions(ctrl)
	e, _ := newTestEngine()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.ExecuteTrigger(ctx, &models.TriggerResult{
		ID: "t1", Type: models.TriggerSetState, Target: "k",
		Delay: models.Millis(time.Minute), Enabled: true,
	}, actions)

	require.ErrorIs(t, err, context.Canceled)
}

func TestPresets(t *testing.T) {
	e, clk := newTestEngine()

	c, err := e.PresetCondition("high_temperature", func(c *models.BindingCondition) { c.Value = 40.0 })
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.ID, "preset_high_temperature_"))
	assert.True(t, c.Enabled)
	assert.Equal(t, models.OpGT, c.Operator)
	assert.Equal(t, 40.0, c.Value)
	assert.InDelta(t, 1.0, c.Tolerance, 0)

	other, err := e.PresetCondition("high_temperature")
	require.NoError(t, err)
	assert.NotEqual(t, c.ID, other.ID)

	_, err = e.PresetCondition("nope")
	require.ErrorIs(t, err, ErrUnknownPreset)

	tr, err := e.PresetTrigger("log_event")
	require.NoError(t, err)
	assert.Equal(t, models.TriggerSetState, tr.Type)
	assert.Equal(t, clk.Now().UnixMilli(), tr.Value)

	color, err := e.PresetTrigger("change_color")
	require.NoError(t, err)
	color.Value.([]interface{})[0] = 0.5

	again, err := e.PresetTrigger("change_color")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1.0, 0.0, 0.0, 1.0}, again.Value)

	assert.Equal(t, []string{"high_temperature", "low_battery", "motion_detected", "timeout", "value_changed"}, ConditionPresetNames())
	assert.Len(t, TriggerPresetNames(), 5)
}
