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

package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NatsStore keeps scene state in a JetStream key/value bucket so several
// scenebind instances can share it.
type NatsStore struct {
	nc    *nats.Conn
	kv    jetstream.KeyValue
	owned bool
}

// NatsConfig configures NewNatsStore.
type NatsConfig struct {
	URL    string
	Bucket string
	TTL    time.Duration
}

// NewNatsStore connects to NATS and creates (or reuses) the bucket.
func NewNatsStore(ctx context.Context, cfg NatsConfig, opts ...nats.Option) (*NatsStore, error) {
	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	s, err := NewNatsStoreWithConn(ctx, nc, cfg.Bucket, cfg.TTL)
	if err != nil {
		nc.Close()
		return nil, err
	}

	s.owned = true

	return s, nil
}

// NewNatsStoreWithConn uses an existing connection, which the store will not close.
func NewNatsStoreWithConn(ctx context.Context, nc *nats.Conn, bucket string, ttl time.Duration) (*NatsStore, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	cfg := jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "scenebind scene state",
	}
	if ttl > 0 {
		cfg.TTL = ttl
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create KV bucket %s: %w", bucket, err)
	}

	return &NatsStore{nc: nc, kv: kv}, nil
}

func (n *NatsStore) Get(ctx context.Context, key string) (interface{}, bool, error) {
	entry, err := n.kv.Get(ctx, encodeKey(key))
	if errors.Is(err, jetstream.ErrKeyNotFound) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	var v interface{}
	if err := json.Unmarshal(entry.Value(), &v); err != nil {
		return nil, false, fmt.Errorf("failed to decode key %s: %w", key, err)
	}

	return v, true, nil
}

func (n *NatsStore) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode key %s: %w", key, err)
	}

	if _, err := n.kv.Put(ctx, encodeKey(key), data); err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}

	return nil
}

func (n *NatsStore) Delete(ctx context.Context, key string) error {
	err := n.kv.Delete(ctx, encodeKey(key))
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}

	return nil
}

func (n *NatsStore) Keys(ctx context.Context) ([]string, error) {
	lister, err := n.kv.ListKeys(ctx)
	if errors.Is(err, jetstream.ErrNoKeysFound) {
		return []string{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	defer func() { _ = lister.Stop() }()

	keys := make([]string, 0)
	for k := range lister.Keys() {
		keys = append(keys, decodeKey(k))
	}

	sort.Strings(keys)

	return keys, nil
}

func (n *NatsStore) Close() error {
	if n.owned {
		n.nc.Close()
	}

	return nil
}

// encodeKey escapes characters NATS KV does not accept as =XX.
func encodeKey(key string) string {
	var b strings.Builder

	for i := 0; i < len(key); i++ {
		c := key[i]
		if validKeyByte(c) {
			b.WriteByte(c)
			continue
		}

		fmt.Fprintf(&b, "=%02X", c)
	}

	return b.String()
}

func decodeKey(key string) string {
	if !strings.Contains(key, "=") {
		return key
	}

	var b strings.Builder

	for i := 0; i < len(key); i++ {
		if key[i] == '=' && i+2 < len(key) {
			if c, err := strconv.ParseUint(key[i+1:i+3], 16, 8); err == nil {
				b.WriteByte(byte(c))
				i += 2

				continue
			}
		}

		b.WriteByte(key[i])
	}

	return b.String()
}

func validKeyByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '-', c == '_', c == '/':
		return true
	}

	return false
}

var _ Store = (*NatsStore)(nil)
