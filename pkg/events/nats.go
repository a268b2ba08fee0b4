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
	"errors"
	"fmt"
	"strings"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/scenebind/pkg/logger"
	"github.com/carverauto/scenebind/pkg/models"
)

const defaultSubjectPrefix = "scenebind.events"

var errEmptyStream = errors.New("stream name is required")

// NATSPublisher forwards animation events to a JetStream stream, one subject
// per model: <prefix>.<modelId>.
type NATSPublisher struct {
	js     jetstream.JetStream
	stream string
	prefix string
	log    logger.Logger
}

// NewNATSPublisher wraps an existing JetStream context. The stream is
// expected to already cover <prefix>.>.
func NewNATSPublisher(js jetstream.JetStream, stream, prefix string, log logger.Logger) *NATSPublisher {
	if prefix == "" {
		prefix = defaultSubjectPrefix
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &NATSPublisher{
		js:     js,
		stream: stream,
		prefix: strings.TrimSuffix(prefix, "."),
		log:    log,
	}
}

// ConnectNATSPublisher dials natsURL, makes sure stream captures the event
// subjects and returns a publisher along with the connection it owns.
func ConnectNATSPublisher(
	ctx context.Context, natsURL, stream, prefix string, log logger.Logger, opts ...nats.Option,
) (*NATSPublisher, *nats.Conn, error) {
	if stream == "" {
		return nil, nil, errEmptyStream
	}

	nc, err := nats.Connect(natsURL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := NewNATSPublisher(js, stream, prefix, log)

	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, nil, err
	}

	return p, nc, nil
}

func (p *NATSPublisher) ensureStream(ctx context.Context) error {
	wildcard := p.prefix + ".>"

	var subjects []string

	s, err := p.js.Stream(ctx, p.stream)

	switch {
	case err == nil:
		subjects = s.CachedInfo().Config.Subjects
	case errors.Is(err, jetstream.ErrStreamNotFound):
	default:
		return fmt.Errorf("failed to look up stream %s: %w", p.stream, err)
	}

	_, err = p.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:     p.stream,
		Subjects: ensureSubject(subjects, wildcard),
	})
	if err != nil {
		return fmt.Errorf("failed to create or update stream %s: %w", p.stream, err)
	}

	return nil
}

// Subject returns the subject an event for modelID is published on.
func (p *NATSPublisher) Subject(modelID string) string {
	return p.prefix + "." + subjectToken(modelID)
}

// Publish sends ev as JSON and waits for the stream acknowledgement.
func (p *NATSPublisher) Publish(ctx context.Context, ev models.AnimationEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", ev.Type, err)
	}

	subject := p.Subject(ev.ModelID)

	ack, err := p.js.Publish(ctx, subject, payload)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", ev.Type, err)
	}

	p.log.Debug().
		Str("subject", subject).
		Uint64("seq", ack.Sequence).
		Msg("Published animation event")

	return nil
}

// Handle adapts Publish to a bus Listener. Failures are logged.
func (p *NATSPublisher) Handle(ctx context.Context, ev models.AnimationEvent) {
	if err := p.Publish(ctx, ev); err != nil {
		p.log.Warn().Err(err).Str("model_id", ev.ModelID).Msg("Failed to forward animation event")
	}
}

// ensureSubject appends subject unless an existing entry already covers it.
func ensureSubject(subjects []string, subject string) []string {
	for _, s := range subjects {
		if subjectCovers(s, subject) {
			return subjects
		}
	}

	return append(subjects, subject)
}

func subjectCovers(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")

	for i, tok := range pt {
		if tok == ">" {
			return i < len(st)
		}

		if i >= len(st) {
			return false
		}

		if tok != "*" && tok != st[i] {
			return false
		}
	}

	return len(pt) == len(st)
}

// subjectToken keeps a model id from splitting or widening the subject.
func subjectToken(id string) string {
	if id == "" {
		return "_"
	}

	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		default:
			return r
		}
	}, id)
}
