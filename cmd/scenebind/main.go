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

// Command scenebind connects IoT sources to scene bindings and runs the
// transformation pipeline until it is interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carverauto/scenebind/pkg/config"
	"github.com/carverauto/scenebind/pkg/lifecycle"
	"github.com/carverauto/scenebind/pkg/version"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/scenebind/scenebind.json", "Path to scenebind config file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetFullVersion())
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg ServiceConfig
	if err := config.NewConfig(nil).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := lifecycle.InitializeLogger(cfg.loggingConfig()); err != nil {
		return err
	}

	metricsLog, err := lifecycle.CreateComponentLogger("metrics", cfg.loggingConfig())
	if err != nil {
		return err
	}

	if err := lifecycle.InitializeMetrics(ctx, cfg.metricsConfig(), metricsLog); err != nil {
		metricsLog.Warn().Err(err).Msg("Continuing without metrics export")
	}

	svc, err := newService(ctx, &cfg, newRegistry())
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	svc.start(ctx)

	go svc.watch(ctx, *configPath)

	<-ctx.Done()

	svc.log.Info().Msg("Shutting down")

	if err := svc.close(ctx); err != nil {
		svc.log.Error().Err(err).Msg("Shutdown finished with errors")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return lifecycle.Shutdown(flushCtx)
}
