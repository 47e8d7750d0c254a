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

// Package cycle runs the background loop that keeps content fresh and shows
// one random record on the display at a time.
package cycle

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/glimmerhome/glimmer/pkg/content"
	"github.com/glimmerhome/glimmer/pkg/devices/display"
	"github.com/glimmerhome/glimmer/pkg/helpers/syncutil"
	"github.com/glimmerhome/glimmer/pkg/render"
	"github.com/glimmerhome/glimmer/pkg/schedule"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ErrStopTimeout is returned by Stop when the loop did not exit in time.
// The loop has been told to stop and will exit on its own.
var ErrStopTimeout = errors.New("stop requested but not confirmed")

const DefaultBackoff = 30 * time.Second

// MinCycleDelay is the shortest wait between iterations, whatever the
// configured delay.
const MinCycleDelay = time.Second

type State int32

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	default:
		return "stopped"
	}
}

type Refresher interface {
	Refresh(ctx context.Context) (*content.Bundle, error)
}

type Display interface {
	NewMessage(fragments []render.Fragment) display.Message
	Push(ctx context.Context, msg display.Message) error
}

// Options are the settings read at the start of every iteration, so a
// config reload applies from the next iteration on.
type Options struct {
	Colorizer      *render.Colorizer
	Policy         schedule.Policy
	CycleDelay     time.Duration
	PushAfterHours bool
}

// Pushed describes the last record shown.
type Pushed struct {
	At        time.Time         `json:"at"`
	Record    content.Record    `json:"record"`
	Fragments []render.Fragment `json:"fragments"`
}

type Option func(*Cycle)

// WithPicker replaces the uniform random record picker. pick returns an
// index in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(c *Cycle) {
		c.pick = pick
	}
}

// WithBackoff sets how long the supervisor waits before restarting a
// crashed loop.
func WithBackoff(d time.Duration) Option {
	return func(c *Cycle) {
		c.backoff = d
	}
}

// OnRefresh is called with every new bundle.
func OnRefresh(fn func(*content.Bundle)) Option {
	return func(c *Cycle) {
		c.onRefresh = fn
	}
}

// OnPush is called after every successful push.
func OnPush(fn func(Pushed)) Option {
	return func(c *Cycle) {
		c.onPush = fn
	}
}

type Cycle struct {
	clock      clockwork.Clock
	refresher  Refresher
	display    Display
	options    func() Options
	pick       func(n int) int
	onRefresh  func(*content.Bundle)
	onPush     func(Pushed)
	cancel     context.CancelFunc
	done       chan struct{}
	bundle     atomic.Pointer[content.Bundle]
	lastPushed atomic.Pointer[Pushed]
	lastUpdate atomic.Int64
	backoff    time.Duration
	mu         syncutil.Mutex
	state      atomic.Int32
	force      atomic.Bool
}

func New(
	clock clockwork.Clock,
	refresher Refresher,
	disp Display,
	options func() Options,
	opts ...Option,
) *Cycle {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	c := &Cycle{
		clock:     clock,
		refresher: refresher,
		display:   disp,
		options:   options,
		pick:      rand.IntN,
		backoff:   DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start launches the loop. Calling Start on a running cycle does nothing.
// If a previous Stop timed out, Start waits for that loop to exit first.
func (c *Cycle) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		return
	}
	if c.done != nil {
		<-c.done
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	c.state.Store(int32(Running))

	go c.supervise(ctx, c.done)
	log.Info().Msg("display cycle started")
}

// Stop cancels the loop and waits up to timeout for it to exit. An
// in-flight push is interrupted.
func (c *Cycle) Stop(timeout time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel == nil {
		return nil
	}
	c.cancel()
	c.cancel = nil

	select {
	case <-c.done:
		log.Info().Msg("display cycle stopped")
		return nil
	case <-c.clock.After(timeout):
		log.Warn().Dur("timeout", timeout).Msg("display cycle did not stop in time")
		return ErrStopTimeout
	}
}

func (c *Cycle) State() State {
	return State(c.state.Load())
}

// Bundle returns the current content, or nil before the first refresh.
func (c *Cycle) Bundle() *content.Bundle {
	return c.bundle.Load()
}

// LastUpdate returns when the content was last refreshed, or the zero time.
func (c *Cycle) LastUpdate() time.Time {
	ns := c.lastUpdate.Load()
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}

// LastPushed returns the last record shown, or nil.
func (c *Cycle) LastPushed() *Pushed {
	return c.lastPushed.Load()
}

// ForceRefresh makes the next iteration regenerate content, even outside
// the active window.
func (c *Cycle) ForceRefresh() {
	c.force.Store(true)
}

// supervise restarts the loop after a backoff whenever it panics.
func (c *Cycle) supervise(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer c.state.Store(int32(Stopped))

	for {
		if !c.loop(ctx) {
			return
		}
		log.Warn().Dur("backoff", c.backoff).Msg("restarting display cycle after backoff")
		select {
		case <-ctx.Done():
			return
		case <-c.clock.After(c.backoff):
		}
	}
}

// loop runs iterations until ctx is cancelled. It returns true if it
// stopped because of a panic.
func (c *Cycle) loop(ctx context.Context) (crashed bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("display cycle crashed")
			crashed = true
		}
	}()

	for {
		if ctx.Err() != nil {
			return false
		}

		opts := c.options()
		if err := c.iterate(ctx, opts); err != nil && ctx.Err() == nil {
			log.Warn().Err(err).Msg("display cycle iteration failed")
		}

		select {
		case <-ctx.Done():
			return false
		case <-c.clock.After(max(opts.CycleDelay, MinCycleDelay)):
		}
	}
}

// iterate refreshes content when due, then pushes one random record.
func (c *Cycle) iterate(ctx context.Context, opts Options) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in display cycle iteration: %v", r)
		}
	}()

	now := c.clock.Now()
	forced := c.force.Swap(false)
	if forced || opts.Policy.ShouldRefresh(now, c.LastUpdate()) {
		c.refresh(ctx, now)
	}

	if !opts.PushAfterHours && !opts.Policy.InWindow(now) {
		log.Trace().Msg("outside active hours, not pushing")
		return nil
	}

	b := c.bundle.Load()
	if b == nil || b.Len() == 0 {
		log.Debug().Msg("no content to show yet")
		return nil
	}

	records := b.Records()
	record := records[c.pick(len(records))]
	fragments := opts.Colorizer.Fragments(record.Text)

	if err := c.display.Push(ctx, c.display.NewMessage(fragments)); err != nil {
		return fmt.Errorf("failed to push %s: %w", record.ID, err)
	}

	pushed := &Pushed{At: now, Record: record, Fragments: fragments}
	c.lastPushed.Store(pushed)
	if c.onPush != nil {
		c.onPush(*pushed)
	}
	return nil
}

func (c *Cycle) refresh(ctx context.Context, now time.Time) {
	b, err := c.refresher.Refresh(ctx)
	if err != nil {
		// configuration problem: keep showing the previous content
		log.Error().Err(err).Msg("content refresh failed")
		return
	}
	c.bundle.Store(b)
	c.lastUpdate.Store(now.UnixNano())
	if c.onRefresh != nil {
		c.onRefresh(b)
	}
}
