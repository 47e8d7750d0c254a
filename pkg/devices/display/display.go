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

// Package display drives an AWTRIX-style pixel-matrix clock over its HTTP
// API.
package display

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/helpers/syncutil"
	"github.com/glimmerhome/glimmer/pkg/render"
	"github.com/glimmerhome/glimmer/pkg/shared/httpclient"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// ErrNotConnected is returned when no display host is configured.
var ErrNotConnected = errors.New("display not configured")

// Message is one custom-app payload.
type Message struct {
	Text     []render.Fragment `json:"text"`
	Repeat   int               `json:"repeat"`
	Duration int               `json:"duration"`
}

// Settings holds the device settings that can be changed at runtime. Nil
// fields are left unchanged on the device.
type Settings struct {
	Brightness     *int  `json:"BRI,omitempty"`
	AutoBrightness *bool `json:"ABRI,omitempty"`
	AutoTransition *bool `json:"ATRANS,omitempty"`
}

type powerRequest struct {
	Power bool `json:"power"`
}

// Manager owns the connection to the display. Only one operation talks to
// the device at a time, and a push keeps the device until its display
// duration has passed so pushes never cut each other off.
type Manager struct {
	clock    clockwork.Clock
	http     *httpclient.Client
	settings config.Display
	mu       syncutil.Mutex
}

func NewManager(clock clockwork.Clock, http *httpclient.Client, settings config.Display) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if http == nil {
		http = httpclient.DefaultClient
	}
	return &Manager{
		clock:    clock,
		http:     http,
		settings: settings,
	}
}

// NewMessage builds a message with the configured repeat and duration.
func (m *Manager) NewMessage(fragments []render.Fragment) Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Message{
		Text:     fragments,
		Repeat:   m.settings.Repeat,
		Duration: m.settings.Duration,
	}
}

// Push sends msg to the custom app endpoint and then waits msg.Duration
// seconds before returning. The wait ends early, without error, when ctx is
// cancelled.
func (m *Manager) Push(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	endpoint, err := m.endpoint("/api/custom", url.Values{"name": {m.settings.App}})
	if err != nil {
		return err
	}

	if err := m.http.PostJSON(ctx, endpoint, msg, nil); err != nil {
		return fmt.Errorf("failed to push to display: %w", err)
	}

	log.Debug().
		Str("text", render.Join(msg.Text)).
		Int("duration", msg.Duration).
		Msg("pushed message to display")

	if msg.Duration <= 0 {
		return nil
	}
	select {
	case <-m.clock.After(time.Duration(msg.Duration) * time.Second):
	case <-ctx.Done():
	}
	return nil
}

// Power switches the matrix on or off.
func (m *Manager) Power(ctx context.Context, on bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	endpoint, err := m.endpoint("/api/power", nil)
	if err != nil {
		return err
	}
	if err := m.http.PostJSON(ctx, endpoint, powerRequest{Power: on}, nil); err != nil {
		return fmt.Errorf("failed to set display power: %w", err)
	}
	log.Info().Bool("on", on).Msg("display power changed")
	return nil
}

// ApplySettings changes device settings such as brightness.
func (m *Manager) ApplySettings(ctx context.Context, s Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	endpoint, err := m.endpoint("/api/settings", nil)
	if err != nil {
		return err
	}
	if err := m.http.PostJSON(ctx, endpoint, s, nil); err != nil {
		return fmt.Errorf("failed to apply display settings: %w", err)
	}
	return nil
}

// Reconfigure swaps the display settings. It waits for an in-flight push to
// finish.
func (m *Manager) Reconfigure(settings config.Display) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings != settings {
		log.Info().Str("host", settings.Host).Str("app", settings.App).Msg("display reconfigured")
	}
	m.settings = settings
}

// Config returns the current display settings.
func (m *Manager) Config() config.Display {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

func (m *Manager) endpoint(path string, query url.Values) (string, error) {
	if m.settings.Host == "" {
		return "", ErrNotConnected
	}
	u := url.URL{
		Scheme:   "http",
		Host:     m.settings.Host,
		Path:     path,
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}
