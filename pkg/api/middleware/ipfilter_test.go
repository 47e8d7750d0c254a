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

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIPFilter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		addr    string
		allowed []string
		want    bool
	}{
		{name: "empty list allows all", addr: "8.8.8.8:1", want: true},
		{name: "exact match", allowed: []string{"192.168.1.10"}, addr: "192.168.1.10:5555", want: true},
		{name: "entry with port", allowed: []string{"192.168.1.10:7480"}, addr: "192.168.1.10:1", want: true},
		{name: "cidr match", allowed: []string{"10.0.0.0/8"}, addr: "10.20.30.40:1", want: true},
		{name: "no match", allowed: []string{"10.0.0.0/8"}, addr: "192.168.1.2:1", want: false},
		{name: "loopback always allowed", allowed: []string{"10.0.0.0/8"}, addr: "127.0.0.1:1", want: true},
		{name: "invalid entries skipped", allowed: []string{"nonsense", "10.0.0.1"}, addr: "10.0.0.1:1", want: true},
		{name: "unparseable remote", allowed: []string{"10.0.0.1"}, addr: "garbage", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NewIPFilter(tt.allowed).IsAllowed(tt.addr))
		})
	}
}

func TestHTTPIPFilterMiddleware(t *testing.T) {
	t.Parallel()

	handler := HTTPIPFilterMiddleware(NewIPFilter([]string{"10.0.0.0/8"}))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}),
	)

	req := httptest.NewRequest(http.MethodGet, "/api/status", http.NoBody)
	req.RemoteAddr = "192.168.1.2:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req.RemoteAddr = "10.1.1.1:1234"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
