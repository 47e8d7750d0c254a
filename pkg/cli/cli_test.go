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

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glimmerhome/glimmer/pkg/api/client"
	"github.com/glimmerhome/glimmer/pkg/api/models"
	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFlags(t *testing.T, args ...string) *Flags {
	t.Helper()
	fs := flag.NewFlagSet("glimmer", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	f := SetupFlags(fs)
	require.NoError(t, fs.Parse(args))
	return f
}

type recordedRequest struct {
	body   map[string]any
	method string
	path   string
}

func fakeService(t *testing.T, status int, reply string) (*client.Client, <-chan recordedRequest) {
	t.Helper()
	reqs := make(chan recordedRequest, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{method: r.Method, path: r.URL.Path}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		reqs <- rec
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return client.New(strings.TrimPrefix(srv.URL, "http://")), reqs
}

func TestPre_Version(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	f := parseFlags(t, "-version")
	assert.True(t, f.Pre(&out))
	assert.Equal(t, "Glimmer v"+config.AppVersion+"\n", out.String())
}

func TestPre_NoExit(t *testing.T) {
	t.Parallel()

	f := parseFlags(t, "-daemon")
	assert.False(t, f.Pre(io.Discard))
	assert.True(t, *f.Daemon)
}

func TestPost_NoCommand(t *testing.T) {
	t.Parallel()

	f := parseFlags(t)
	handled, err := f.Post(context.Background(), client.New("127.0.0.1:1"), io.Discard)
	require.NoError(t, err)
	assert.False(t, handled)
}

func TestPost_Status(t *testing.T) {
	t.Parallel()

	c, reqs := fakeService(t, http.StatusOK,
		`{"ok":true,"result":{"version":"1.2.3","state":"running","in_window":true}}`)

	var out bytes.Buffer
	f := parseFlags(t, "-status")
	handled, err := f.Post(context.Background(), c, &out)
	require.NoError(t, err)
	assert.True(t, handled)

	req := <-reqs
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "/api/status", req.path)

	var status models.StatusResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &status))
	assert.Equal(t, "1.2.3", status.Version)
	assert.Equal(t, "running", status.State)
	assert.True(t, status.InWindow)
}

func TestPost_Refresh(t *testing.T) {
	t.Parallel()

	c, reqs := fakeService(t, http.StatusOK, `{"ok":true}`)

	var out bytes.Buffer
	f := parseFlags(t, "-refresh")
	handled, err := f.Post(context.Background(), c, &out)
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "/api/content/refresh", (<-reqs).path)
	assert.Contains(t, out.String(), "refresh requested")
}

func TestPost_Push(t *testing.T) {
	t.Parallel()

	c, reqs := fakeService(t, http.StatusOK, `{"ok":true}`)

	f := parseFlags(t, "-push", "dinner is ready")
	handled, err := f.Post(context.Background(), c, io.Discard)
	require.NoError(t, err)
	assert.True(t, handled)

	req := <-reqs
	assert.Equal(t, http.MethodPost, req.method)
	assert.Equal(t, "/api/display/push", req.path)
	assert.Equal(t, "dinner is ready", req.body["text"])
}

func TestPost_ServiceError(t *testing.T) {
	t.Parallel()

	c, _ := fakeService(t, http.StatusServiceUnavailable, `{"ok":false,"error":"display not connected"}`)

	f := parseFlags(t, "-push", "hello")
	handled, err := f.Post(context.Background(), c, io.Discard)
	assert.True(t, handled)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display not connected")
}
