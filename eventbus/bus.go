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

// Package eventbus is a process-wide publish-subscribe broadcast of
// domain.Event values. The local Bus never blocks a publisher: a
// subscriber that falls behind drops its own oldest undelivered event
// rather than stalling others. An optional Redis-backed variant fans
// events out across instances while keeping the same local, non-blocking
// subscriber contract.
package eventbus

import (
	"sync"

	"github.com/sagelabs-oss/sentryd/domain"
)

// Capacity is the per-subscriber buffer size. A slow subscriber that
// falls this far behind loses its oldest undelivered event.
const Capacity = 256

// Publisher is the contract the persistent store publishes through. The
// plain Bus and the Redis-backed cross-node variant both satisfy it, so
// the store never needs to know which one backs a given deployment.
type Publisher interface {
	Publish(event domain.Event)
	Subscribe() *Subscription
	SubscriberCount() int
}

// Bus is a local, in-process broadcast of domain.Event. The zero value
// is not usable; construct with New.
type Bus struct {
	mu          sync.Mutex
	subscribers map[*Subscription]struct{}
}

// Subscription is one subscriber's independent receive channel.
type Subscription struct {
	bus *Bus
	ch  chan domain.Event
}

// New constructs an empty Bus.
func New() *Bus {
	return &Bus{subscribers: make(map[*Subscription]struct{})}
}

// Publish broadcasts event to every current subscriber. It never blocks:
// a subscriber whose buffer is full has its oldest queued event dropped
// to make room, so a slow reader never stalls the publisher or other
// subscribers.
func (b *Bus) Publish(event domain.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subscribers {
		select {
		case sub.ch <- event:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- event:
			default:
			}
		}
	}
}

// Subscribe opens a new independent receiver. Callers must call Close
// when done to release the subscription.
func (b *Bus) Subscribe() *Subscription {
	sub := &Subscription{bus: b, ch: make(chan domain.Event, Capacity)}
	b.mu.Lock()
	b.subscribers[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// SubscriberCount reports the number of currently open subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}

// Events returns the channel to range over for incoming events.
func (s *Subscription) Events() <-chan domain.Event { return s.ch }

// Close unregisters the subscription and releases its channel.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if _, ok := s.bus.subscribers[s]; ok {
		delete(s.bus.subscribers, s)
		close(s.ch)
	}
}
