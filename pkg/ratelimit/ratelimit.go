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

// Package ratelimit gates calls to upstream data providers by a minimum
// interval between successful calls.
package ratelimit

import (
	"time"

	"github.com/glimmerhome/glimmer/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	KeyWeather = "weather"
	KeyNews    = "news"

	DefaultWeatherInterval = 10 * time.Minute
	DefaultNewsInterval    = 15 * time.Minute
)

type entry struct {
	last     time.Time
	interval time.Duration
}

// Limiter tracks the last permitted call per service key. Keys are fully
// independent. Allow is safe for concurrent use: the check and the update
// happen under one lock.
type Limiter struct {
	clock   clockwork.Clock
	entries map[string]*entry
	mu      syncutil.Mutex
}

// New creates a Limiter with a minimum interval per key.
func New(clock clockwork.Clock, intervals map[string]time.Duration) *Limiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	l := &Limiter{
		clock:   clock,
		entries: make(map[string]*entry, len(intervals)),
	}
	for key, interval := range intervals {
		l.entries[key] = &entry{interval: interval}
	}
	return l
}

// NewDefault creates the weather and news limiters with their standard
// intervals.
func NewDefault(clock clockwork.Clock) *Limiter {
	return New(clock, map[string]time.Duration{
		KeyWeather: DefaultWeatherInterval,
		KeyNews:    DefaultNewsInterval,
	})
}

// Allow reports whether a call for key may go ahead now. A true result
// records the current time as the key's last call; a false result changes
// nothing. Keys without a configured interval are always allowed.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		return true
	}

	now := l.clock.Now()
	if !e.last.IsZero() && now.Sub(e.last) < e.interval {
		log.Debug().
			Str("key", key).
			Dur("remaining", e.interval-now.Sub(e.last)).
			Msg("rate limited")
		return false
	}

	e.last = now
	return true
}

// SetInterval changes the minimum interval for key, keeping its last call
// time. Used when config is reloaded.
func (l *Limiter) SetInterval(key string, interval time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[key]; ok {
		e.interval = interval
		return
	}
	l.entries[key] = &entry{interval: interval}
}

// Last returns the time of the last permitted call for key, or the zero
// time if there has been none.
func (l *Limiter) Last(key string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[key]; ok {
		return e.last
	}
	return time.Time{}
}
