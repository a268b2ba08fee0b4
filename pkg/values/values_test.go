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

package values

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloat(t *testing.T) {
	for _, v := range []interface{}{42, int64(42), uint8(42), float32(42), 42.0, json.Number("42")} {
		f, ok := Float(v)
		assert.True(t, ok, "%T", v)
		assert.InDelta(t, 42.0, f, 1e-9)
	}

	for _, v := range []interface{}{"42", nil, true, math.NaN(), math.Inf(1), []interface{}{1}} {
		_, ok := Float(v)
		assert.False(t, ok, "%v", v)
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(1, 1.0))
	assert.True(t, Equal(map[string]interface{}{"a": []interface{}{1.0, "x"}}, map[string]interface{}{"a": []interface{}{1, "x"}}))
	assert.False(t, Equal("1", 1))
	assert.False(t, Equal([]interface{}{1.0}, []interface{}{1.0, 2.0}))
	assert.True(t, Equal(nil, nil))
}

func TestKindAndDecode(t *testing.T) {
	assert.Equal(t, "object", Kind(Decode([]byte(`{"a":1}`))))
	assert.Equal(t, "array", Kind(Decode([]byte(`[1,2]`))))
	assert.Equal(t, "number", Kind(Decode([]byte(`3.5`))))
	assert.Equal(t, "string", Kind(Decode([]byte(`not json`))))
	assert.Equal(t, "boolean", Kind(true))
	assert.Equal(t, "null", Kind(nil))
}

func TestClone(t *testing.T) {
	orig := map[string]interface{}{"a": []interface{}{1.0, map[string]interface{}{"b": 2.0}}}
	cp := Clone(orig).(map[string]interface{})

	cp["a"].([]interface{})[1].(map[string]interface{})["b"] = 3.0
	assert.InDelta(t, 2.0, orig["a"].([]interface{})[1].(map[string]interface{})["b"], 1e-9)
}
