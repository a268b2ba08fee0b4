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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindingUnmarshalDefaults(t *testing.T) {
	raw := `{
		"id": "b1",
		"protocol": "pubsub",
		"dataType": "json",
		"sourceId": "mqtt1",
		"bindings": [{"source": "a/b/sensor.temperature", "target": "position.x", "direction": 0}],
		"valueMapping": {"inputMin": 0, "inputMax": 50},
		"interpolation": {"type": "ease-in", "duration": 500},
		"triggerResults": [{"id": "t1", "type": "setState", "target": "k", "value": 1, "delay": 20}],
		"httpConfig": {"pollInterval": 2.5}
	}`

	var b Binding
	require.NoError(t, json.Unmarshal([]byte(raw), &b))
	require.NoError(t, b.Validate())

	assert.True(t, b.Enabled)
	require.NotNil(t, b.ValueMapping)
	assert.InDelta(t, 50.0, b.ValueMapping.InputMax, 1e-9)
	assert.InDelta(t, 1.0, b.ValueMapping.OutputMax, 1e-9)
	assert.Equal(t, ClampClamp, b.ValueMapping.Boundary())
	assert.True(t, b.ValueMapping.Enabled)

	require.NotNil(t, b.Interpolation)
	assert.True(t, b.Interpolation.Active())
	assert.Equal(t, EasingEaseIn, b.Interpolation.EasingKind())
	assert.Equal(t, 500*time.Millisecond, b.Interpolation.Duration.Std())

	require.Len(t, b.TriggerResults, 1)
	assert.True(t, b.TriggerResults[0].Enabled)
	assert.Equal(t, 20*time.Millisecond, b.TriggerResults[0].Delay.Std())

	cfg := b.HTTPConfig.WithDefaults()
	assert.Equal(t, "GET", cfg.Method)
	assert.Equal(t, 2500*time.Millisecond, cfg.PollInterval.Std())
	assert.Equal(t, 30*time.Second, cfg.Timeout.Std())

	p, ok := b.PrimarySource()
	require.True(t, ok)
	assert.Equal(t, "a/b/sensor.temperature", p.Source)
	assert.Equal(t, []string{"position.x"}, b.Targets())
}

func TestBindingValidate(t *testing.T) {
	tests := []struct {
		name    string
		binding Binding
		wantErr error
	}{
		{"missing id", Binding{SourceID: "s", Protocol: ProtocolHTTP, DataType: DataTypeNumber}, ErrMissingBindingID},
		{"missing source", Binding{ID: "b", Protocol: ProtocolHTTP, DataType: DataTypeNumber}, ErrMissingSourceID},
		{"bad protocol", Binding{ID: "b", SourceID: "s", Protocol: "carrier-pigeon", DataType: DataTypeNumber}, ErrInvalidProtocol},
		{"bad data type", Binding{ID: "b", SourceID: "s", Protocol: ProtocolSocket, DataType: "video"}, ErrInvalidDataType},
		{
			"bad direction",
			Binding{ID: "b", SourceID: "s", Protocol: ProtocolSocket, DataType: DataTypeText,
				Bindings: []SourcePath{{Source: "x", Direction: 7}}},
			ErrInvalidDirection,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.binding.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValueMappingAliases(t *testing.T) {
	var m ValueMapping

	raw := `{"inputRange": [-20, 50], "outputRange": [0, 10], "interpolationType": "sine", "clampMode": "mirror", "clamp": false}`
	require.NoError(t, json.Unmarshal([]byte(raw), &m))

	assert.InDelta(t, -20.0, m.InputMin, 1e-9)
	assert.InDelta(t, 50.0, m.InputMax, 1e-9)
	assert.InDelta(t, 10.0, m.OutputMax, 1e-9)
	assert.Equal(t, CurveSine, m.Curve)
	assert.Equal(t, ClampMirror, m.Boundary())

	require.NoError(t, json.Unmarshal([]byte(`{"clamp": false}`), &m))
	assert.Equal(t, ClampNone, m.Boundary())
	assert.Equal(t, CurveLinear, m.Curve)
}

func TestDurations(t *testing.T) {
	var d struct {
		A Duration `json:"a"`
		B Millis   `json:"b"`
		C Seconds  `json:"c"`
		D Millis   `json:"d"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"a": "2s", "b": 250, "c": 1.5, "d": "1m"}`), &d))
	assert.Equal(t, 2*time.Second, time.Duration(d.A))
	assert.Equal(t, 250*time.Millisecond, d.B.Std())
	assert.Equal(t, 1500*time.Millisecond, d.C.Std())
	assert.Equal(t, time.Minute, d.D.Std())

	err := json.Unmarshal([]byte(`{"b": "soon"}`), &d)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	out, err := json.Marshal(Millis(1500 * time.Millisecond))
	require.NoError(t, err)
	assert.JSONEq(t, `1500`, string(out))
}

func TestSourceConfigValidate(t *testing.T) {
	src := SourceConfig{
		ID:       "mqtt1",
		Protocol: ProtocolPubSub,
		PubSub:   &PubSubConfig{Hostname: "broker.local", Username: "scene"},
	}

	require.NoError(t, src.Validate())
	assert.Equal(t, BrokerMQTT, src.PubSub.Broker)
	assert.Equal(t, "tcp://broker.local:1883", src.PubSub.BrokerURL())
	assert.Equal(t, "broker.local:1883:scene", src.PubSub.ConnectionKey())
	assert.Equal(t, 10*time.Second, src.PubSub.ConnectTimeout.Std())

	nats := SourceConfig{ID: "n", Protocol: ProtocolPubSub, PubSub: &PubSubConfig{Broker: BrokerNATS, Hostname: "127.0.0.1"}}
	require.NoError(t, nats.Validate())
	assert.Equal(t, "nats://127.0.0.1:4222", nats.PubSub.BrokerURL())

	missing := SourceConfig{ID: "ws", Protocol: ProtocolSocket}
	assert.ErrorIs(t, missing.Validate(), ErrMissingSourceTopic)

	bad := SourceConfig{ID: "x", Protocol: "smoke-signal"}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidProtocol)
}

func TestAnimationEventValidate(t *testing.T) {
	ev := AnimationEvent{Type: EventNodeTransform, ModelID: "robot"}
	assert.ErrorIs(t, ev.Validate(), ErrMissingNodeID)

	ev.NodeID = "arm"
	assert.ErrorIs(t, ev.Validate(), ErrMissingTransform)

	ev.Transform = &Transform{Scale: []float64{1, 1, 1}}
	require.NoError(t, ev.Validate())

	now := time.UnixMilli(1700000000000)
	ev.Stamp(now)
	assert.Equal(t, int64(1700000000000), ev.Timestamp)

	assert.ErrorIs(t, (&AnimationEvent{Type: "dance", ModelID: "m"}).Validate(), ErrInvalidEventType)
	assert.ErrorIs(t, (&AnimationEvent{Type: EventPlay}).Validate(), ErrMissingModelID)
	assert.ErrorIs(t, (&AnimationEvent{Type: EventSeek, ModelID: "m"}).Validate(), ErrMissingSeekTime)
}
