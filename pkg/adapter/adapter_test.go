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

package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
)

func TestRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockAdapter(ctrl)

	r := NewRegistry()

	var gotSource *models.SourceConfig

	r.Register("pubsub/nats", func(src *models.SourceConfig, _ logger.Logger) (Adapter, error) {
		gotSource = src
		return mock, nil
	})
	r.Register("socket", func(*models.SourceConfig, logger.Logger) (Adapter, error) {
		return nil, errors.New("boom")
	})

	src := &models.SourceConfig{
		ID:       "plant",
		Protocol: models.ProtocolPubSub,
		PubSub:   &models.PubSubConfig{Broker: models.BrokerNATS, Hostname: "localhost"},
	}

	a, err := r.New(src, logger.NewTestLogger())
	require.NoError(t, err)
	assert.Same(t, mock, a)
	assert.Same(t, src, gotSource)

	_, err = r.New(&models.SourceConfig{ID: "ws", Protocol: models.ProtocolSocket}, logger.NewTestLogger())
	require.EqualError(t, err, "boom")

	_, err = r.New(&models.SourceConfig{ID: "poll", Protocol: models.ProtocolHTTP}, logger.NewTestLogger())
	require.ErrorIs(t, err, ErrNoFactory)

	_, err = r.New(nil, logger.NewTestLogger())
	require.ErrorIs(t, err, ErrMissingConfig)

	assert.Equal(t, []string{"pubsub/nats", "socket"}, r.Kinds())
}

func TestRegistryAdapterIsUsable(t *testing.T) {
	ctrl := gomock.NewController(t)
	mock := NewMockAdapter(ctrl)
	ctx := context.Background()

	mock.EXPECT().Connect(ctx).Return(nil)
	mock.EXPECT().Subscribe(ctx, "sensors/+/temp", byte(1)).Return(nil)
	mock.EXPECT().Send(ctx, "cmd", []byte(`{"on":true}`)).Return(nil)
	mock.EXPECT().Disconnect(ctx).Return(nil)

	r := NewRegistry()
	r.Register("pubsub/mqtt", func(*models.SourceConfig, logger.Logger) (Adapter, error) { return mock, nil })

	a, err := r.New(&models.SourceConfig{ID: "m", Protocol: models.ProtocolPubSub}, logger.NewTestLogger())
	require.NoError(t, err)

	require.NoError(t, a.Connect(ctx))
	require.NoError(t, a.Subscribe(ctx, "sensors/+/temp", 1))
	require.NoError(t, a.Send(ctx, "cmd", []byte(`{"on":true}`)))
	require.NoError(t, a.Disconnect(ctx))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "pubsub/mqtt", Kind(&models.SourceConfig{Protocol: models.ProtocolPubSub}))
	assert.Equal(t, "pubsub/nats", Kind(&models.SourceConfig{
		Protocol: models.ProtocolPubSub,
		PubSub:   &models.PubSubConfig{Broker: models.BrokerNATS},
	}))
	assert.Equal(t, "socket", Kind(&models.SourceConfig{Protocol: models.ProtocolSocket}))
	assert.Equal(t, "http", Kind(&models.SourceConfig{Protocol: models.ProtocolHTTP}))
}

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		filter, topic string
		want          bool
	}{
		{"sensors/temp", "sensors/temp", true},
		{"sensors/+/temp", "sensors/room1/temp", true},
		{"sensors/+/temp", "sensors/room1/humidity", false},
		{"sensors/+", "sensors/room1/temp", false},
		{"sensors/#", "sensors/room1/temp", true},
		{"sensors/#", "sensors", true},
		{"#", "anything/at/all", true},
		{"sensors/#/temp", "sensors/a/temp", false},
		{"sensors/temp", "sensors/temp/extra", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TopicMatches(tt.filter, tt.topic), "%s vs %s", tt.filter, tt.topic)
	}

	assert.True(t, IsWildcard("a/+/b"))
	assert.False(t, IsWildcard("a/b"))
}

func TestHooks(t *testing.T) {
	var h Hooks

	h.Deliver("ignored", nil)
	h.SetState(StateConnecting, nil)

	var (
		topics []string
		states []State
	)

	h.OnMessage(func(topic string, _ []byte) { topics = append(topics, topic) })
	h.OnStateChange(func(s State, _ error) { states = append(states, s) })

	h.Deliver("a", []byte("1"))
	h.SetState(StateConnected, nil)

	assert.Equal(t, []string{"a"}, topics)
	assert.Equal(t, []State{StateConnected}, states)
	assert.Equal(t, StateConnected, h.State())
	assert.Equal(t, "failed", StateFailed.String())
}
