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
	"context"
	"encoding/json"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/scenebind/pkg/clock"
	"github.com/carverauto/scenebind/pkg/models"
)

type recorder struct {
	mu     sync.Mutex
	events []models.AnimationEvent
}

func (r *recorder) listen(_ context.Context, ev models.AnimationEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)
}

func (r *recorder) all() []models.AnimationEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]models.AnimationEvent(nil), r.events...)
}

func TestBusRoutesByModel(t *testing.T) {
	fake := clock.NewFake(time.UnixMilli(1700000000000))
	bus := NewBus(WithClock(fake))

	robot, all := &recorder{}, &recorder{}
	unsubscribe := bus.Subscribe("robot", robot.listen)
	bus.SubscribeAll(all.listen)

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, PlayEvent("robot", "walk", true, 1)))
	require.NoError(t, bus.Publish(ctx, StopEvent("turbine", "")))

	require.Len(t, robot.all(), 1)
	assert.Equal(t, "walk", robot.all()[0].ClipID)
	assert.Equal(t, int64(1700000000000), robot.all()[0].Timestamp)
	assert.Len(t, all.all(), 2)

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 1, bus.Len())

	require.NoError(t, bus.Publish(ctx, PauseEvent("robot", "walk")))
	assert.Len(t, robot.all(), 1)
	assert.Len(t, all.all(), 3)
}

func TestBusRejectsInvalidEvents(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}
	bus.SubscribeAll(rec.listen)

	ctx := context.Background()

	err := bus.Publish(ctx, models.AnimationEvent{Type: models.EventSeek, ModelID: "robot"})
	require.ErrorIs(t, err, models.ErrMissingSeekTime)

	err = bus.Publish(ctx, models.AnimationEvent{Type: models.EventNodeTransform, ModelID: "robot"})
	require.ErrorIs(t, err, models.ErrMissingNodeID)

	err = bus.Publish(ctx, models.AnimationEvent{Type: "spin", ModelID: "robot"})
	require.ErrorIs(t, err, models.ErrInvalidEventType)

	assert.Empty(t, rec.all())
}

func TestBusIsolatesPanickingListener(t *testing.T) {
	bus := NewBus()
	rec := &recorder{}

	bus.SubscribeAll(func(context.Context, models.AnimationEvent) { panic("boom") })
	bus.SubscribeAll(rec.listen)

	require.NoError(t, bus.Publish(context.Background(), SeekEvent("robot", "walk", 2.5)))

	require.Len(t, rec.all(), 1)
	require.NotNil(t, rec.all()[0].Time)
	assert.InDelta(t, 2.5, *rec.all()[0].Time, 1e-9)
}

func TestBusKeepsExistingTimestamp(t *testing.T) {
	bus := NewBus(WithClock(clock.NewFake(time.UnixMilli(5000))))
	rec := &recorder{}
	bus.SubscribeAll(rec.listen)

	ev := StopEvent("robot", "")
	ev.Timestamp = 42

	require.NoError(t, bus.Publish(context.Background(), ev))
	assert.Equal(t, int64(42), rec.all()[0].Timestamp)
}

func TestTransformFor(t *testing.T) {
	sin45, cos45 := math.Sin(math.Pi/4), math.Cos(math.Pi/4)

	tests := []struct {
		name string
		nb   models.NodeBinding
		v    float64
		want models.Transform
	}{
		{
			name: "translation x",
			nb:   models.NodeBinding{BindingType: models.NodeBindingTranslation, Axis: "x"},
			v:    2,
			want: models.Transform{Translation: []float64{2, 0, 0}},
		},
		{
			name: "translation y",
			nb:   models.NodeBinding{BindingType: models.NodeBindingTranslation, Axis: "y"},
			v:    2,
			want: models.Transform{Translation: []float64{0, 2, 0}},
		},
		{
			name: "translation all",
			nb:   models.NodeBinding{BindingType: models.NodeBindingTranslation, Axis: "all"},
			v:    3,
			want: models.Transform{Translation: []float64{3, 3, 3}},
		},
		{
			name: "rotation x",
			nb:   models.NodeBinding{BindingType: models.NodeBindingRotation, Axis: "x"},
			v:    90,
			want: models.Transform{Rotation: []float64{sin45, 0, 0, cos45}},
		},
		{
			name: "rotation defaults to z",
			nb:   models.NodeBinding{BindingType: models.NodeBindingRotation},
			v:    90,
			want: models.Transform{Rotation: []float64{0, 0, sin45, cos45}},
		},
		{
			name: "scale z",
			nb:   models.NodeBinding{BindingType: models.NodeBindingScale, Axis: "z"},
			v:    0.5,
			want: models.Transform{Scale: []float64{1, 1, 0.5}},
		},
		{
			name: "scale all",
			nb:   models.NodeBinding{BindingType: models.NodeBindingScale, Axis: "all"},
			v:    2,
			want: models.Transform{Scale: []float64{2, 2, 2}},
		},
		{
			name: "morph weights",
			nb:   models.NodeBinding{BindingType: models.NodeBindingMorphWeights},
			v:    0.3,
			want: models.Transform{Weights: []float64{0.3}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := TransformFor(tc.nb, tc.v)
			assert.InDeltaSlice(t, tc.want.Translation, got.Translation, 1e-9)
			assert.InDeltaSlice(t, tc.want.Rotation, got.Rotation, 1e-9)
			assert.InDeltaSlice(t, tc.want.Scale, got.Scale, 1e-9)
			assert.InDeltaSlice(t, tc.want.Weights, got.Weights, 1e-9)
		})
	}
}

func TestNodeID(t *testing.T) {
	idx := 3

	assert.Equal(t, "arm", NodeID(models.NodeBinding{NodeName: "arm", NodeIndex: &idx}))
	assert.Equal(t, "3", NodeID(models.NodeBinding{NodeIndex: &idx}))
	assert.Empty(t, NodeID(models.NodeBinding{}))
}

func TestEnsureSubject(t *testing.T) {
	tests := []struct {
		name     string
		subjects []string
		want     []string
	}{
		{name: "empty", subjects: nil, want: []string{"scenebind.events.>"}},
		{name: "covered by wider wildcard", subjects: []string{"scenebind.>"}, want: []string{"scenebind.>"}},
		{name: "already present", subjects: []string{"scenebind.events.>"}, want: []string{"scenebind.events.>"}},
		{
			name:     "unrelated subject",
			subjects: []string{"telemetry.*"},
			want:     []string{"telemetry.*", "scenebind.events.>"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ensureSubject(tc.subjects, "scenebind.events.>"))
		})
	}
}

func TestSubjectToken(t *testing.T) {
	p := NewNATSPublisher(nil, "EVENTS", "scene.", nil)

	assert.Equal(t, "scene.robot", p.Subject("robot"))
	assert.Equal(t, "scene.robot_arm_1", p.Subject("robot.arm 1"))
	assert.Equal(t, "scene._", p.Subject(""))
}

func runJetStreamServer(t *testing.T) *server.Server {
	t.Helper()

	opts := &server.Options{
		Host:      "127.0.0.1",
		Port:      -1,
		JetStream: true,
		StoreDir:  t.TempDir(),
	}

	srv, err := server.NewServer(opts)
	require.NoError(t, err)

	go srv.Start()

	if !srv.ReadyForConnections(10 * time.Second) {
		srv.Shutdown()
		t.Fatalf("embedded NATS server not ready for connections")
	}

	require.Eventually(t, func() bool {
		return srv.JetStreamEnabled()
	}, 5*time.Second, 50*time.Millisecond, "embedded NATS server not ready for JetStream")

	return srv
}

func TestNATSPublisherForwardsBusEvents(t *testing.T) {
	srv := runJetStreamServer(t)
	defer srv.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pub, nc, err := ConnectNATSPublisher(ctx, srv.ClientURL(), "SCENE_EVENTS", "scenebind.events", nil)
	require.NoError(t, err)
	defer nc.Close()

	sub, err := nc.SubscribeSync("scenebind.events.>")
	require.NoError(t, err)
	require.NoError(t, nc.Flush())

	bus := NewBus()
	bus.SubscribeAll(pub.Handle)

	transform := TransformFor(models.NodeBinding{BindingType: models.NodeBindingScale, Axis: "all"}, 2)
	require.NoError(t, bus.Publish(ctx, NodeTransformEvent("robot", "arm", transform, nil)))

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "scenebind.events.robot", msg.Subject)

	var got models.AnimationEvent
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, models.EventNodeTransform, got.Type)
	assert.Equal(t, "arm", got.NodeID)
	require.NotNil(t, got.Transform)
	assert.Equal(t, []float64{2, 2, 2}, got.Transform.Scale)
	assert.NotZero(t, got.Timestamp)

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	stream, err := js.Stream(ctx, "SCENE_EVENTS")
	require.NoError(t, err)

	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), info.State.Msgs)
}

func TestConnectNATSPublisherExtendsExistingStream(t *testing.T) {
	srv := runJetStreamServer(t)
	defer srv.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	nc, err := nats.Connect(srv.ClientURL())
	require.NoError(t, err)
	defer nc.Close()

	js, err := jetstream.New(nc)
	require.NoError(t, err)

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{Name: "SCENE_EVENTS", Subjects: []string{"telemetry.*"}})
	require.NoError(t, err)

	_, pubConn, err := ConnectNATSPublisher(ctx, srv.ClientURL(), "SCENE_EVENTS", "", nil)
	require.NoError(t, err)
	defer pubConn.Close()

	stream, err := js.Stream(ctx, "SCENE_EVENTS")
	require.NoError(t, err)

	info, err := stream.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"telemetry.*", "scenebind.events.>"}, info.Config.Subjects)
}

func TestConnectNATSPublisherRequiresStream(t *testing.T) {
	_, _, err := ConnectNATSPublisher(context.Background(), nats.DefaultURL, "", "", nil)
	require.ErrorIs(t, err, errEmptyStream)
}
