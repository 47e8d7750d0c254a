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

package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRequest struct {
	Color string   `json:"color,omitempty" validate:"omitempty,hexcolor"`
	Mode  string   `json:"mode,omitempty" validate:"omitempty,oneof=latest new"`
	Text  string   `json:"text" validate:"required,printable,max=20"`
	Lines []string `json:"lines,omitempty" validate:"omitempty,max=2"`
	Count int      `json:"count,omitempty" validate:"omitempty,gte=1,lte=5"`
}

func TestDecode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		wantErr  error
		name     string
		body     string
		contains string
	}{
		{name: "valid", body: `{"text":"hello","color":"#FF0000","count":3}`},
		{name: "empty body", body: "  ", wantErr: ErrMissingParams},
		{name: "not json", body: `{"text":`, wantErr: ErrInvalidParams},
		{name: "missing text", body: `{"count":2}`, contains: "text is required"},
		{name: "control character", body: `{"text":"a\u0007b"}`, contains: "text must not contain control characters"},
		{name: "bad colour", body: `{"text":"a","color":"red"}`, contains: "color must be a hex colour"},
		{name: "bad mode", body: `{"text":"a","mode":"old"}`, contains: "mode must be one of: latest new"},
		{name: "too many", body: `{"text":"a","count":9}`, contains: "count must be at most 5"},
		{name: "too long", body: `{"text":"` + strings.Repeat("x", 21) + `"}`, contains: "text must be at most 20 long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var req testRequest
			err := Decode(strings.NewReader(tt.body), &req)
			switch {
			case tt.wantErr != nil:
				require.ErrorIs(t, err, tt.wantErr)
			case tt.contains != "":
				var ve *Error
				require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
				assert.Contains(t, ve.Error(), tt.contains)
			default:
				require.NoError(t, err)
				assert.Equal(t, "hello", req.Text)
			}
		})
	}
}

func TestDecode_TabAllowed(t *testing.T) {
	t.Parallel()

	var req testRequest
	require.NoError(t, Decode(strings.NewReader(`{"text":"a\tb"}`), &req))
}

func TestError_Empty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "validation failed", (&Error{}).Error())
}
