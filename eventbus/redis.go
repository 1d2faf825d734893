// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package eventbus

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sagelabs-oss/sentryd/domain"
	"github.com/sagelabs-oss/sentryd/observability/logging"
)

// RedisConfig configures the cross-node fan-out variant.
type RedisConfig struct {
	// Address is the Redis server address, e.g. "localhost:6379".
	Address string

	Password string
	DB       int

	// Channel is the well-known pub/sub channel events are published on.
	Channel string

	PoolSize     int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultRedisConfig returns sane cross-node defaults.
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Address:      "localhost:6379",
		Channel:      "sentryd:events",
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// reconnectDelay is the fixed backoff between subscribe attempts.
const reconnectDelay = 1 * time.Second

// RedisBus wraps a local Bus and fans every published event out over a
// Redis channel, while a background goroutine re-broadcasts events
// published by other instances into the same local Bus. Same-node
// subscribers never depend on the round trip: Publish always broadcasts
// locally first.
type RedisBus struct {
	*Bus

	client *redis.Client
	config *RedisConfig
	logger logging.Logger

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// NewRedisBus connects to Redis and starts the background re-broadcast
// subscriber. If the initial connection fails, it still returns a usable
// RedisBus that falls back to local-only broadcast until a reconnect
// succeeds — cross-node fan-out is a convenience, not a dependency the
// rest of the daemon should fail open without.
func NewRedisBus(config *RedisConfig, logger logging.Logger) *RedisBus {
	if config == nil {
		config = DefaultRedisConfig()
	}
	if logger == nil {
		logger = logging.NewStructuredLoggerWithOutput(logging.LevelInfo, io.Discard)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         config.Address,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	rb := &RedisBus{
		Bus:    New(),
		client: client,
		config: config,
		logger: logger,
		done:   make(chan struct{}),
	}
	go rb.subscribeLoop()
	return rb
}

// Publish broadcasts locally first, then best-effort publishes to Redis
// so other instances observe the event too. A Redis publish failure is
// logged but never surfaces to the caller — local delivery already
// succeeded.
func (rb *RedisBus) Publish(event domain.Event) {
	rb.Bus.Publish(event)

	data, err := json.Marshal(event)
	if err != nil {
		rb.logger.Error(context.Background(), "eventbus: failed to encode event for cross-node fan-out", logging.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), rb.config.WriteTimeout)
	defer cancel()
	if err := rb.client.Publish(ctx, rb.config.Channel, data).Err(); err != nil {
		rb.logger.Warn(context.Background(), "eventbus: cross-node publish failed, falling back to local-only", logging.Error(err))
	}
}

// subscribeLoop connects to the Redis channel and re-broadcasts every
// received message into the local Bus. It auto-reconnects with a fixed
// delay on any error and exits only when Close is called.
func (rb *RedisBus) subscribeLoop() {
	for {
		select {
		case <-rb.done:
			return
		default:
		}

		if err := rb.consumeOnce(); err != nil {
			rb.logger.Warn(context.Background(), "eventbus: redis subscriber disconnected, retrying", logging.Error(err))
		}

		select {
		case <-rb.done:
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (rb *RedisBus) consumeOnce() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubsub := rb.client.Subscribe(ctx, rb.config.Channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-rb.done:
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				rb.logger.Error(ctx, "eventbus: failed to decode cross-node event", logging.Error(err))
				continue
			}
			rb.Bus.Publish(event)
		}
	}
}

// Close stops the background subscriber and releases the Redis client.
func (rb *RedisBus) Close() error {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	if rb.closed {
		return nil
	}
	rb.closed = true
	close(rb.done)
	return rb.client.Close()
}
