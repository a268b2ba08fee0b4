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

// Package models holds the binding, source and event types shared by scenebind components.
package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration is a time.Duration that unmarshals from either a Go duration
// string ("5s") or a number of nanoseconds.
type Duration time.Duration

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	v, err := parseDuration(b, time.Nanosecond)
	if err != nil {
		return err
	}

	*d = Duration(v)

	return nil
}

// Millis is a duration expressed on the wire as milliseconds. Go duration
// strings are accepted as well.
type Millis time.Duration

// Std returns the value as a time.Duration.
func (m Millis) Std() time.Duration { return time.Duration(m) }

func (m Millis) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(m).Milliseconds())
}

func (m *Millis) UnmarshalJSON(b []byte) error {
	v, err := parseDuration(b, time.Millisecond)
	if err != nil {
		return err
	}

	*m = Millis(v)

	return nil
}

// Seconds is a duration expressed on the wire as (fractional) seconds.
type Seconds time.Duration

// Std returns the value as a time.Duration.
func (s Seconds) Std() time.Duration { return time.Duration(s) }

func (s Seconds) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(s).Seconds())
}

func (s *Seconds) UnmarshalJSON(b []byte) error {
	v, err := parseDuration(b, time.Second)
	if err != nil {
		return err
	}

	*s = Seconds(v)

	return nil
}

func parseDuration(b []byte, unit time.Duration) (time.Duration, error) {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return 0, err
	}

	switch value := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return time.Duration(value * float64(unit)), nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrInvalidDuration, err)
		}

		return dur, nil
	default:
		return 0, ErrInvalidDuration
	}
}
