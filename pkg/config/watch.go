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

package config

import (
	"bytes"
	"context"
	"crypto/sha256"
	"os"
	"time"

	"github.com/carverauto/scenebind/pkg/clock"
	"github.com/carverauto/scenebind/pkg/logger"
)

const defaultWatchInterval = 5 * time.Second

// FileWatcher polls a config file and reports content changes.
type FileWatcher struct {
	path     string
	interval time.Duration
	clock    clock.Clock
	logger   logger.Logger
}

// WatchOption configures a FileWatcher.
type WatchOption func(*FileWatcher)

// WithWatchInterval sets the polling period.
func WithWatchInterval(d time.Duration) WatchOption {
	return func(w *FileWatcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithWatchClock replaces the wall clock.
func WithWatchClock(c clock.Clock) WatchOption {
	return func(w *FileWatcher) {
		w.clock = c
	}
}

// NewFileWatcher returns a watcher for path.
func NewFileWatcher(path string, log logger.Logger, opts ...WatchOption) *FileWatcher {
	if log == nil {
		log = logger.NewTestLogger()
	}

	w := &FileWatcher{
		path:     path,
		interval: defaultWatchInterval,
		clock:    clock.Real(),
		logger:   log,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run blocks until ctx is done, calling onChange with the new file contents
// each time they differ from the previous read. The contents present when Run
// starts are the baseline and do not trigger onChange. Read errors are logged
// and the baseline is kept.
func (w *FileWatcher) Run(ctx context.Context, onChange func([]byte)) {
	last, _ := w.digest()

	ticker := w.clock.Ticker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
		}

		sum, data := w.digest()
		if data == nil {
			continue
		}

		if bytes.Equal(sum, last) {
			continue
		}

		last = sum

		w.logger.Info().Str("path", w.path).Msg("Config file changed")

		onChange(data)
	}
}

func (w *FileWatcher) digest() (sum, data []byte) {
	data, err := os.ReadFile(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("Failed to read watched config file")

		return nil, nil
	}

	h := sha256.Sum256(data)

	return h[:], data
}
