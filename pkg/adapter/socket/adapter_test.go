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

package socket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/scenebind/pkg/adapter"
	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
)

type wsServer struct {
	*httptest.Server

	conns  atomic.Int32
	frames chan string
	handle func(n int32, conn *websocket.Conn)
}

func newWSServer(t *testing.T, handle func(n int32, conn *websocket.Conn)) *wsServer {
	t.Helper()

	s := &wsServer{frames: make(chan string, 32), handle: handle}
	upgrader := websocket.Upgrader{}

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		n := s.conns.Add(1)

		go func() {
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}

				s.frames <- string(data)
			}
		}()

		s.handle(n, conn)
	}))

	t.Cleanup(s.Close)

	return s
}

func (s *wsServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.URL, "http")
}

func (s *wsServer) nextFrame(t *testing.T) string {
	t.Helper()

	select {
	case f := <-s.frames:
		return f
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for frame")
		return ""
	}
}

type collector struct {
	mu     sync.Mutex
	msgs   []string
	states []adapter.State
}

func (c *collector) onMessage(_ string, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.msgs = append(c.msgs, string(payload))
}

func (c *collector) onState(s adapter.State, _ error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.states = append(c.states, s)
}

func (c *collector) messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.msgs...)
}

func (c *collector) lastState() adapter.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.states) == 0 {
		return adapter.StateDisconnected
	}

	return c.states[len(c.states)-1]
}

func newAdapter(t *testing.T, cfg models.SocketConfig) (*Adapter, *collector) {
	t.Helper()

	src := &models.SourceConfig{ID: "ws", Protocol: models.ProtocolSocket, Socket: &cfg}
	require.NoError(t, src.Validate())

	a, err := New(src, logger.NewTestLogger())
	require.NoError(t, err)

	c := &collector{}
	a.OnMessage(c.onMessage)
	a.OnStateChange(c.onState)

	return a.(*Adapter), c
}

func TestMessagesArriveInOrder(t *testing.T) {
	release := make(chan struct{})

	srv := newWSServer(t, func(_ int32, conn *websocket.Conn) {
		for _, m := range []string{`{"t":1}`, `{"t":2}`, `{"t":3}`} {
			_ = conn.WriteMessage(websocket.TextMessage, []byte(m))
		}

		<-release
	})
	defer close(release)

	a, c := newAdapter(t, models.SocketConfig{URL: srv.wsURL()})
	ctx := context.Background()

	require.NoError(t, a.Connect(ctx))
	require.NoError(t, a.Connect(ctx))

	require.Eventually(t, func() bool { return len(c.messages()) == 3 }, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{`{"t":1}`, `{"t":2}`, `{"t":3}`}, c.messages())

	require.NoError(t, a.Send(ctx, "", []byte("raw")))
	assert.Equal(t, "raw", srv.nextFrame(t))

	require.NoError(t, a.Send(ctx, "lamp", []byte(`{"on":true}`)))

	var f Frame
	require.NoError(t, json.Unmarshal([]byte(srv.nextFrame(t)), &f))
	assert.Equal(t, "send", f.Action)
	assert.Equal(t, "lamp", f.Target)
	assert.JSONEq(t, `{"on":true}`, string(f.Data))

	require.NoError(t, a.Disconnect(ctx))
	require.NoError(t, a.Disconnect(ctx))
	assert.Equal(t, adapter.StateClosed, c.lastState())
	require.ErrorIs(t, a.Send(ctx, "", nil), adapter.ErrNotConnected)
}

func TestReconnectRestoresSubscriptions(t *testing.T) {
	release := make(chan struct{})

	srv := newWSServer(t, func(n int32, conn *websocket.Conn) {
		if n == 1 {
			time.Sleep(50 * time.Millisecond)
			_ = conn.WriteMessage(websocket.TextMessage, []byte("first"))
			_ = conn.Close()

			return
		}

		_ = conn.WriteMessage(websocket.TextMessage, []byte("second"))
		<-release
	})
	defer close(release)

	a, c := newAdapter(t, models.SocketConfig{
		URL:             srv.wsURL(),
		SubscribeFrames: true,
		RetryDelay:      models.Seconds(10 * time.Millisecond),
		MaxRetryDelay:   models.Seconds(20 * time.Millisecond),
	})
	ctx := context.Background()

	require.NoError(t, a.Connect(ctx))
	require.NoError(t, a.Subscribe(ctx, "sensors/temp", 0))
	require.NoError(t, a.Subscribe(ctx, "sensors/temp", 0))

	var f Frame
	require.NoError(t, json.Unmarshal([]byte(srv.nextFrame(t)), &f))
	assert.Equal(t, Frame{Action: "subscribe", Topic: "sensors/temp"}, f)

	require.NoError(t, json.Unmarshal([]byte(srv.nextFrame(t)), &f))
	assert.Equal(t, Frame{Action: "subscribe", Topic: "sensors/temp"}, f, "resubscribed after reconnect")

	require.Eventually(t, func() bool {
		return len(c.messages()) == 2 && c.lastState() == adapter.StateConnected
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"first", "second"}, c.messages())
	assert.Equal(t, int32(2), srv.conns.Load())

	require.NoError(t, a.Disconnect(ctx))
}

func TestReconnectExhaustionIsTerminal(t *testing.T) {
	srv := newWSServer(t, func(_ int32, conn *websocket.Conn) {
		_ = conn.Close()
	})

	a, c := newAdapter(t, models.SocketConfig{
		URL:           srv.wsURL(),
		MaxRetries:    2,
		RetryDelay:    models.Seconds(5 * time.Millisecond),
		MaxRetryDelay: models.Seconds(10 * time.Millisecond),
	})

	require.NoError(t, a.Connect(context.Background()))

	srv.Close()

	require.Eventually(t, func() bool { return c.lastState() == adapter.StateFailed }, 5*time.Second, 10*time.Millisecond)
	require.ErrorIs(t, a.Send(context.Background(), "", []byte("x")), adapter.ErrNotConnected)
	require.NoError(t, a.Disconnect(context.Background()))
}

func TestConnectFailure(t *testing.T) {
	a, c := newAdapter(t, models.SocketConfig{URL: "ws://127.0.0.1:1/none"})

	require.Error(t, a.Connect(context.Background()))
	assert.Equal(t, adapter.StateError, c.lastState())
}
