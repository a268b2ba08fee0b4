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

package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeTicker(t *testing.T) {
	start := time.Unix(1000, 0)
	f := NewFake(start)

	tk := f.Ticker(time.Second)
	assert.Equal(t, 1, f.Tickers())

	f.Advance(500 * time.Millisecond)

	select {
	case <-tk.Chan():
		t.Fatal("ticker fired early")
	default:
	}

	f.Advance(500 * time.Millisecond)

	select {
	case got := <-tk.Chan():
		assert.Equal(t, start.Add(time.Second), got)
	default:
		t.Fatal("ticker did not fire")
	}

	// unread ticks are dropped, not queued
	f.Advance(time.Second)
	f.Advance(time.Second)
	assert.Len(t, tk.Chan(), 1)

	tk.Stop()
	assert.Equal(t, 0, f.Tickers())
}

func TestFakeAfter(t *testing.T) {
	f := NewFake(time.Unix(0, 0))

	ch := f.After(time.Minute)
	require.Equal(t, 1, f.Waiters())

	f.Advance(59 * time.Second)
	assert.Empty(t, ch)

	f.Advance(time.Second)
	assert.Len(t, ch, 1)
	assert.Equal(t, 0, f.Waiters())

	assert.Len(t, f.After(0), 1)
}

func TestRealClock(t *testing.T) {
	c := Real()

	tk := c.Ticker(time.Millisecond)
	defer tk.Stop()

	select {
	case <-tk.Chan():
	case <-time.After(time.Second):
		t.Fatal("real ticker did not fire")
	}

	assert.WithinDuration(t, time.Now(), c.Now(), time.Second)
}
