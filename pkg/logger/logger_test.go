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

package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestInit(t *testing.T) {
	config := &Config{
		Level:  "debug",
		Debug:  true,
		Output: "discard",
	}

	if err := Init(config); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}

	logger := GetLogger()
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level, got %v", logger.GetLevel())
	}
}

func TestInitRejectsBadLevel(t *testing.T) {
	if err := Init(&Config{Level: "loud", Output: "discard"}); err == nil {
		t.Fatal("expected an error for an unknown level")
	}
}

func TestNewLeavesGlobalAlone(t *testing.T) {
	if err := Init(&Config{Level: "warn", Output: "discard"}); err != nil {
		t.Fatal(err)
	}

	zl, err := New(&Config{Level: "trace", Output: "discard"})
	if err != nil {
		t.Fatal(err)
	}

	if zl.GetLevel() != zerolog.TraceLevel {
		t.Errorf("Expected trace level, got %v", zl.GetLevel())
	}

	if GetLogger().GetLevel() != zerolog.WarnLevel {
		t.Errorf("global level changed to %v", GetLogger().GetLevel())
	}
}

func TestSetDebug(t *testing.T) {
	SetDebug(true)

	logger := GetLogger()
	if logger.GetLevel() != zerolog.DebugLevel {
		t.Errorf("Expected debug level after SetDebug(true), got %v", logger.GetLevel())
	}

	SetDebug(false)

	logger = GetLogger()
	if logger.GetLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level after SetDebug(false), got %v", logger.GetLevel())
	}
}

func TestWithComponent(t *testing.T) {
	componentLogger := WithComponent("test-component")

	if componentLogger.GetLevel() == zerolog.Disabled {
		t.Error("Component logger should not be disabled")
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_OUTPUT", "")
	t.Setenv("DEBUG", "yes")

	config := DefaultConfig()

	if config.Level != "info" {
		t.Errorf("Expected info level, got %q", config.Level)
	}

	if config.Output != "stdout" {
		t.Errorf("Expected stdout output, got %q", config.Output)
	}

	if !config.Debug {
		t.Error("DEBUG=yes should enable debug")
	}
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	t.Setenv("LOG_LEVEL", "error")

	config := Config{Output: "stderr"}.WithDefaults()

	if config.Level != "error" {
		t.Errorf("Expected level from env, got %q", config.Level)
	}

	if config.Output != "stderr" {
		t.Errorf("Expected explicit output to win, got %q", config.Output)
	}
}

func TestInitializeMetricsDisabled(t *testing.T) {
	_, err := InitializeMetrics(context.Background(), MetricsConfig{Endpoint: "localhost:4317"})
	if !errors.Is(err, ErrOTelMetricsDisabled) {
		t.Fatalf("expected ErrOTelMetricsDisabled, got %v", err)
	}

	if err := ShutdownMetrics(context.Background()); err != nil {
		t.Fatalf("shutdown without a provider: %v", err)
	}
}

func TestNewTestLoggerDiscards(t *testing.T) {
	l := NewTestLogger()
	l.Info().Str("k", "v").Msg("dropped")

	if l.WithComponent("x").GetLevel() != zerolog.Disabled {
		t.Error("test logger should stay disabled")
	}
}
