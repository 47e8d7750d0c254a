// Glimmer
// Copyright (c) 2026 The Glimmer Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Glimmer.
//
// Glimmer is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Glimmer is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Glimmer.  If not, see <http://www.gnu.org/licenses/>.

// Package broker fans notifications out to every in-process consumer (the
// websocket hub and the MQTT publisher) without letting a slow consumer
// hold up the rest.
package broker

import (
	"context"
	"sync/atomic"

	"github.com/glimmerhome/glimmer/pkg/api/models"
	"github.com/glimmerhome/glimmer/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

type Broker struct {
	ctx         context.Context
	source      <-chan models.Notification
	subscribers map[int]chan models.Notification
	dropped     atomic.Uint64
	mu          syncutil.RWMutex
	nextID      int
}

// NewBroker creates a broker reading from source. Nothing is delivered
// until Start is called.
func NewBroker(ctx context.Context, source <-chan models.Notification) *Broker {
	return &Broker{
		ctx:         ctx,
		source:      source,
		subscribers: make(map[int]chan models.Notification),
	}
}

// Start runs the delivery loop until source closes or ctx is cancelled,
// then closes every subscriber channel.
func (b *Broker) Start() {
	go func() {
		defer b.closeAll()
		for {
			select {
			case n, ok := <-b.source:
				if !ok {
					log.Debug().Msg("broker: source closed")
					return
				}
				b.deliver(n)
			case <-b.ctx.Done():
				log.Debug().Msg("broker: stopping")
				return
			}
		}
	}()
}

// deliver hands n to each subscriber whose buffer has room and drops it for
// the others.
func (b *Broker) deliver(n models.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- n:
		default:
			b.dropped.Add(1)
			log.Warn().
				Int("subscriber", id).
				Str("method", n.Method).
				Msg("subscriber buffer full, dropping notification")
		}
	}
}

// Subscribe registers a consumer with a buffer of the given size. The
// returned id is passed to Unsubscribe.
func (b *Broker) Subscribe(bufferSize int) (ch <-chan models.Notification, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id = b.nextID
	b.nextID++
	c := make(chan models.Notification, bufferSize)
	b.subscribers[id] = c

	log.Debug().Int("subscriber", id).Int("buffer", bufferSize).Msg("broker: new subscriber")
	return c, id
}

// Unsubscribe removes a consumer and closes its channel. Unknown ids are
// ignored.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

// Dropped counts notifications discarded because a subscriber was full.
func (b *Broker) Dropped() uint64 {
	return b.dropped.Load()
}

func (b *Broker) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
