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

package display

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/render"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type request struct {
	Path  string
	Query string
	Body  map[string]any
}

type fakeMatrix struct {
	srv      *httptest.Server
	requests []request
	mu       sync.Mutex
}

func newFakeMatrix(t *testing.T) *fakeMatrix {
	t.Helper()
	f := &fakeMatrix{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.requests = append(f.requests, request{Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
		f.mu.Unlock()
		_, _ = w.Write([]byte("OK"))
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeMatrix) host(t *testing.T) string {
	t.Helper()
	u, err := url.Parse(f.srv.URL)
	require.NoError(t, err)
	return u.Host
}

func (f *fakeMatrix) all() []request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]request(nil), f.requests...)
}

func TestPush(t *testing.T) {
	t.Parallel()

	matrix := newFakeMatrix(t)
	clock := clockwork.NewFakeClock()
	m := NewManager(clock, nil, config.Display{Host: matrix.host(t), App: "glimmer", Duration: 15, Repeat: 2})

	msg := m.NewMessage([]render.Fragment{{Text: "hi", Color: "#FF0000"}})
	assert.Equal(t, 15, msg.Duration)
	assert.Equal(t, 2, msg.Repeat)

	done := make(chan error, 1)
	go func() {
		done <- m.Push(context.Background(), msg)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, clock.BlockUntilContext(ctx, 1))

	select {
	case <-done:
		t.Fatal("push returned before the display duration elapsed")
	default:
	}

	clock.Advance(15 * time.Second)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-ctx.Done():
		t.Fatal("push did not return after the display duration")
	}

	reqs := matrix.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/api/custom", reqs[0].Path)
	assert.Equal(t, "name=glimmer", reqs[0].Query)
	assert.InDelta(t, 15, reqs[0].Body["duration"], 0)
	assert.InDelta(t, 2, reqs[0].Body["repeat"], 0)
	assert.Equal(t, []any{map[string]any{"t": "hi", "c": "#FF0000"}}, reqs[0].Body["text"])
}

func TestPush_CancelEndsWait(t *testing.T) {
	t.Parallel()

	matrix := newFakeMatrix(t)
	m := NewManager(clockwork.NewFakeClock(), nil, config.Display{Host: matrix.host(t), App: "glimmer", Duration: 60})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Push(ctx, Message{Text: []render.Fragment{{Text: "x", Color: "#FFFFFF"}}, Duration: 60})
	}()

	require.Eventually(t, func() bool { return len(matrix.all()) == 1 }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("push ignored cancellation")
	}
}

func TestNotConnected(t *testing.T) {
	t.Parallel()

	m := NewManager(clockwork.NewFakeClock(), nil, config.Display{App: "glimmer", Duration: 5})

	require.ErrorIs(t, m.Push(context.Background(), Message{}), ErrNotConnected)
	require.ErrorIs(t, m.Power(context.Background(), true), ErrNotConnected)
	require.ErrorIs(t, m.ApplySettings(context.Background(), Settings{}), ErrNotConnected)
}

func TestPush_DeviceError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	m := NewManager(clockwork.NewFakeClock(), nil, config.Display{Host: u.Host, App: "glimmer", Duration: 5})
	err = m.Push(context.Background(), Message{Duration: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestPowerAndSettings(t *testing.T) {
	t.Parallel()

	matrix := newFakeMatrix(t)
	m := NewManager(clockwork.NewFakeClock(), nil, config.Display{Host: matrix.host(t), App: "glimmer", Duration: 5})

	require.NoError(t, m.Power(context.Background(), false))
	bri := 120
	require.NoError(t, m.ApplySettings(context.Background(), Settings{Brightness: &bri}))

	reqs := matrix.all()
	require.Len(t, reqs, 2)
	assert.Equal(t, "/api/power", reqs[0].Path)
	assert.Equal(t, false, reqs[0].Body["power"])
	assert.Equal(t, "/api/settings", reqs[1].Path)
	assert.Equal(t, map[string]any{"BRI": float64(120)}, reqs[1].Body)
}

func TestReconfigure(t *testing.T) {
	t.Parallel()

	m := NewManager(clockwork.NewFakeClock(), nil, config.Display{App: "glimmer", Duration: 5})
	require.ErrorIs(t, m.Power(context.Background(), true), ErrNotConnected)

	matrix := newFakeMatrix(t)
	m.Reconfigure(config.Display{Host: matrix.host(t), App: "other", Duration: 9, Repeat: 1})

	assert.Equal(t, "other", m.Config().App)
	assert.Equal(t, 9, m.NewMessage(nil).Duration)
	require.NoError(t, m.Power(context.Background(), true))
}
