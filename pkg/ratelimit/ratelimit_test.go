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

package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestAllow_WithinInterval(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	l := NewDefault(clock)

	assert.True(t, l.Allow(KeyWeather))
	assert.False(t, l.Allow(KeyWeather))
}

func TestAllow_AfterInterval(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	l := NewDefault(clock)

	assert.True(t, l.Allow(KeyWeather))
	clock.Advance(DefaultWeatherInterval)
	assert.True(t, l.Allow(KeyWeather))
}

func TestAllow_Boundary(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	l := New(clock, map[string]time.Duration{"svc": time.Minute})

	assert.True(t, l.Allow("svc"))
	clock.Advance(time.Minute - time.Nanosecond)
	assert.False(t, l.Allow("svc"), "one nanosecond early should be denied")
	clock.Advance(time.Nanosecond)
	assert.True(t, l.Allow("svc"), "exactly the interval should be allowed")
}

func TestAllow_DenialDoesNotResetTimer(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	l := New(clock, map[string]time.Duration{"svc": 10 * time.Minute})

	start := clock.Now()
	assert.True(t, l.Allow("svc"))

	clock.Advance(9 * time.Minute)
	assert.False(t, l.Allow("svc"))
	assert.Equal(t, start, l.Last("svc"), "denied call must not record a timestamp")

	clock.Advance(time.Minute)
	assert.True(t, l.Allow("svc"))
}

func TestAllow_IndependentKeys(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	l := NewDefault(clock)

	assert.True(t, l.Allow(KeyWeather))
	assert.True(t, l.Allow(KeyNews), "news must not share weather's timestamp")

	clock.Advance(DefaultWeatherInterval)
	assert.True(t, l.Allow(KeyWeather))
	assert.False(t, l.Allow(KeyNews), "news interval is longer than weather's")

	clock.Advance(DefaultNewsInterval - DefaultWeatherInterval)
	assert.True(t, l.Allow(KeyNews))
}

func TestAllow_UnknownKey(t *testing.T) {
	t.Parallel()

	l := NewDefault(clockwork.NewFakeClock())

	assert.True(t, l.Allow("other"))
	assert.True(t, l.Allow("other"))
}

func TestSetInterval(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClock()
	l := NewDefault(clock)

	assert.True(t, l.Allow(KeyNews))
	l.SetInterval(KeyNews, time.Minute)
	clock.Advance(time.Minute)
	assert.True(t, l.Allow(KeyNews))
}

func TestAllow_ConcurrentCallersGetOnePermit(t *testing.T) {
	t.Parallel()

	l := NewDefault(clockwork.NewFakeClock())

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(KeyWeather) {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), allowed.Load())
}
