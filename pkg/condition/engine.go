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

// Package condition evaluates binding conditions against incoming values and
// executes the triggers bound to them.
package condition

import (
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/scenebind/pkg/clock"
	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
	"github.com/carverauto/scenebind/pkg/values"
)

const defaultHistorySize = 100

// Context is the input of a single evaluation.
type Context struct {
	CurrentValue  interface{}
	PreviousValue interface{}
	HasPrevious   bool
	Timestamp     time.Time
	Metadata      map[string]interface{}
}

// Summary is the combined result of EvaluateConditions.
type Summary struct {
	Satisfied bool                     `json:"satisfied"`
	Results   []models.ConditionResult `json:"results"`
}

// Stats summarizes the recorded history of one condition.
type Stats struct {
	Total     int                     `json:"totalEvaluations"`
	Satisfied int                     `json:"satisfiedCount"`
	Rate      float64                 `json:"satisfactionRate"`
	Last      *models.ConditionResult `json:"lastEvaluation,omitempty"`
}

// Engine evaluates conditions and keeps a bounded history per condition id.
type Engine struct {
	clock       clock.Clock
	logger      logger.Logger
	historySize int

	mu      sync.Mutex
	history map[string][]models.ConditionResult
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used for timestamps, delays and presets.
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithLogger sets the engine logger.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithHistorySize bounds the per-condition history.
func WithHistorySize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.historySize = n
		}
	}
}

// NewEngine creates an engine with a 100 entry history per condition.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		clock:       clock.Real(),
		logger:      logger.NewTestLogger(),
		historySize: defaultHistorySize,
		history:     make(map[string][]models.ConditionResult),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// EvaluateCondition evaluates cond against ctx. Enabled evaluations are
// recorded in the condition history; disabled conditions are never
// satisfied and leave no trace.
func (e *Engine) EvaluateCondition(cond *models.BindingCondition, ctx Context) models.ConditionResult {
	if ctx.Timestamp.IsZero() {
		ctx.Timestamp = e.clock.Now()
	}

	result := models.ConditionResult{
		ConditionID:   cond.ID,
		Value:         ctx.CurrentValue,
		PreviousValue: ctx.PreviousValue,
		Timestamp:     ctx.Timestamp,
	}

	if !cond.Enabled {
		return result
	}

	switch cond.Type {
	case models.ConditionThreshold:
		result.Satisfied = threshold(ctx.CurrentValue, cond.Operator, cond.Value, cond.Tolerance)
	case models.ConditionRange:
		result.Satisfied = inRange(ctx.CurrentValue, cond.Operator, cond.Value, cond.SecondValue)
	case models.ConditionChange:
		result.Satisfied = ctx.HasPrevious &&
			changed(ctx.CurrentValue, ctx.PreviousValue, cond.Operator, cond.Value, cond.Tolerance)
	case models.ConditionPattern:
		result.Satisfied = matchPattern(ctx.CurrentValue, cond.Value)
	case models.ConditionTimeout:
		result.Satisfied = e.timedOut(cond.ID, ctx.Timestamp, cond.Value)
	default:
		e.logger.Warn().
			Str("condition_id", cond.ID).
			Str("type", string(cond.Type)).
			Msg("Unknown condition type")
	}

	result.Metadata = ctx.Metadata

	e.record(result)

	return result
}

// EvaluateConditions evaluates every condition and combines the results.
// An empty list is satisfied under and/not and unsatisfied under or.
func (e *Engine) EvaluateConditions(conds []models.BindingCondition, ctx Context, logic models.Logic) Summary {
	results := make([]models.ConditionResult, 0, len(conds))
	anySatisfied, allSatisfied := false, true

	for i := range conds {
		r := e.EvaluateCondition(&conds[i], ctx)
		results = append(results, r)

		anySatisfied = anySatisfied || r.Satisfied
		allSatisfied = allSatisfied && r.Satisfied
	}

	summary := Summary{Results: results}

	switch logic {
	case models.LogicOr:
		summary.Satisfied = anySatisfied
	case models.LogicNot:
		summary.Satisfied = !anySatisfied
	case models.LogicAnd, "":
		summary.Satisfied = allSatisfied
	}

	return summary
}

// History returns a copy of the recorded results of one condition, oldest first.
func (e *Engine) History(id string) []models.ConditionResult {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := e.history[id]
	out := make([]models.ConditionResult, len(h))
	copy(out, h)

	return out
}

// ClearHistory drops the history of one condition.
func (e *Engine) ClearHistory(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	delete(e.history, id)
}

// ClearAllHistory drops every recorded result.
func (e *Engine) ClearAllHistory() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.history = make(map[string][]models.ConditionResult)
}

// Stats summarizes the history of one condition.
func (e *Engine) Stats(id string) Stats {
	h := e.History(id)

	s := Stats{Total: len(h)}
	if s.Total == 0 {
		return s
	}

	for i := range h {
		if h[i].Satisfied {
			s.Satisfied++
		}
	}

	s.Rate = float64(s.Satisfied) / float64(s.Total)
	last := h[len(h)-1]
	s.Last = &last

	return s
}

func (e *Engine) record(r models.ConditionResult) {
	e.mu.Lock()
	defer e.mu.Unlock()

	h := append(e.history[r.ConditionID], r)
	if len(h) > e.historySize {
		h = h[len(h)-e.historySize:]
	}

	e.history[r.ConditionID] = h
}

// timedOut reports whether more than limit milliseconds passed since the
// previous evaluation of id.
func (e *Engine) timedOut(id string, now time.Time, limit interface{}) bool {
	ms, ok := values.Float(limit)
	if !ok {
		return false
	}

	e.mu.Lock()
	h := e.history[id]

	var last time.Time
	if len(h) > 0 {
		last = h[len(h)-1].Timestamp
	}
	e.mu.Unlock()

	if last.IsZero() {
		return false
	}

	return float64(now.Sub(last))/float64(time.Millisecond) > ms
}

func threshold(value interface{}, op models.Operator, target interface{}, tol float64) bool {
	v, vok := values.Float(value)
	t, tok := values.Float(target)

	if !vok || !tok {
		return compareNonNumeric(value, op, target)
	}

	diff := math.Abs(v - t)

	switch op {
	case models.OpGT:
		return v > t+tol
	case models.OpGTE:
		return v >= t-tol
	case models.OpLT:
		return v < t-tol
	case models.OpLTE:
		return v <= t+tol
	case models.OpEQ:
		return diff <= tol
	case models.OpNEQ:
		return diff > tol
	case models.OpBetween, models.OpOutside, models.OpContains, models.OpMatches:
	}

	return false
}

func compareNonNumeric(value interface{}, op models.Operator, target interface{}) bool {
	switch op {
	case models.OpEQ:
		return values.Equal(value, target)
	case models.OpNEQ:
		return !values.Equal(value, target)
	case models.OpContains:
		s, sok := value.(string)
		sub, subok := target.(string)

		return sok && subok && strings.Contains(s, sub)
	case models.OpMatches:
		s, sok := value.(string)
		pattern, pok := target.(string)

		return sok && pok && regexOrContains(s, pattern)
	case models.OpGT, models.OpGTE, models.OpLT, models.OpLTE, models.OpBetween, models.OpOutside:
	}

	return false
}

func inRange(value interface{}, op models.Operator, lo, hi interface{}) bool {
	v, ok := values.Float(value)
	if !ok {
		return false
	}

	minV, ok := values.Float(lo)
	if !ok {
		return false
	}

	maxV, ok := values.Float(hi)
	if !ok {
		return false
	}

	switch op {
	case models.OpBetween:
		return v >= minV && v <= maxV
	case models.OpOutside:
		return v < minV || v > maxV
	default:
		return false
	}
}

func changed(current, previous interface{}, op models.Operator, target interface{}, tol float64) bool {
	cur, cok := values.Float(current)
	prev, pok := values.Float(previous)

	if cok && pok {
		delta := cur - prev
		t, _ := values.Float(target)

		switch op {
		case models.OpGT:
			return delta > t+tol
		case models.OpLT:
			return delta < t-tol
		case models.OpEQ:
			return math.Abs(delta) <= tol
		case models.OpNEQ:
			return math.Abs(delta) > tol
		default:
			return false
		}
	}

	switch op {
	case models.OpEQ:
		return values.Equal(current, previous)
	case models.OpNEQ:
		return !values.Equal(current, previous)
	default:
		return false
	}
}

func matchPattern(value, pattern interface{}) bool {
	if s, ok := value.(string); ok {
		if p, ok := pattern.(string); ok {
			return regexOrContains(s, p)
		}
	}

	switch pattern.(type) {
	case map[string]interface{}, []interface{}:
		return subset(value, pattern)
	}

	return values.Equal(value, pattern)
}

// subset reports whether every key, or index, of pattern is present in
// value with a matching nested value.
func subset(value, pattern interface{}) bool {
	switch p := pattern.(type) {
	case map[string]interface{}:
		v, ok := value.(map[string]interface{})
		if !ok {
			return false
		}

		for k, pv := range p {
			vv, ok := v[k]
			if !ok || !subset(vv, pv) {
				return false
			}
		}

		return true
	case []interface{}:
		v, ok := value.([]interface{})
		if !ok || len(v) < len(p) {
			return false
		}

		for i := range p {
			if !subset(v[i], p[i]) {
				return false
			}
		}

		return true
	}

	return values.Equal(value, pattern)
}

func regexOrContains(s, pattern string) bool {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return strings.Contains(s, pattern)
	}

	return re.MatchString(s)
}
