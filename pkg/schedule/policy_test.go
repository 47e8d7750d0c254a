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

package schedule

import (
	"testing"
	"time"

	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func at(hour, minute int) time.Time {
	return time.Date(2026, 3, 14, hour, minute, 0, 0, time.UTC)
}

func TestShouldRefresh(t *testing.T) {
	t.Parallel()

	p := Policy{StartHour: 7, EndHour: 22, RefreshInterval: time.Hour}

	tests := []struct {
		now      time.Time
		last     time.Time
		name     string
		expected bool
	}{
		{
			name:     "never updated inside window",
			now:      at(12, 0),
			expected: true,
		},
		{
			name:     "never updated before window",
			now:      at(6, 59),
			expected: false,
		},
		{
			name:     "never updated after window",
			now:      at(23, 0),
			expected: false,
		},
		{
			name:     "start hour is inclusive",
			now:      at(7, 0),
			expected: true,
		},
		{
			name:     "end hour is inclusive",
			now:      at(22, 59),
			expected: true,
		},
		{
			name:     "fresh content",
			now:      at(12, 0),
			last:     at(11, 30),
			expected: false,
		},
		{
			name:     "one second short of interval",
			now:      at(12, 0),
			last:     at(12, 0).Add(-time.Hour + time.Second),
			expected: false,
		},
		{
			name:     "exactly the interval",
			now:      at(12, 0),
			last:     at(11, 0),
			expected: true,
		},
		{
			name:     "stale content outside window",
			now:      at(3, 0),
			last:     at(3, 0).Add(-48 * time.Hour),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, p.ShouldRefresh(tt.now, tt.last))
		})
	}
}

func TestInWindow_WrapsMidnight(t *testing.T) {
	t.Parallel()

	p := Policy{StartHour: 22, EndHour: 2, RefreshInterval: time.Hour}

	assert.True(t, p.InWindow(at(22, 0)))
	assert.True(t, p.InWindow(at(0, 30)))
	assert.True(t, p.InWindow(at(2, 59)))
	assert.False(t, p.InWindow(at(3, 0)))
	assert.False(t, p.InWindow(at(12, 0)))
}

func TestFromConfig(t *testing.T) {
	t.Parallel()

	defaults := config.BaseDefaults
	defaults.Schedule = config.Schedule{StartHour: 6, EndHour: 21, RefreshInterval: 1800, CycleDelay: 30}
	cfg, err := config.NewConfig(t.TempDir(), defaults)
	require.NoError(t, err)

	assert.Equal(t, Policy{StartHour: 6, EndHour: 21, RefreshInterval: 30 * time.Minute}, FromConfig(cfg))
}

func genPolicy(t *rapid.T) Policy {
	start := rapid.IntRange(0, 23).Draw(t, "start")
	end := rapid.IntRange(start, 23).Draw(t, "end")
	interval := time.Duration(rapid.IntRange(1, 86400).Draw(t, "interval")) * time.Second
	return Policy{StartHour: start, EndHour: end, RefreshInterval: interval}
}

func TestProperty_NeverRefreshOutsideWindow(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		p := genPolicy(t)
		var outside []int
		for h := range 24 {
			if h < p.StartHour || h > p.EndHour {
				outside = append(outside, h)
			}
		}
		if len(outside) == 0 {
			return
		}
		hour := rapid.SampledFrom(outside).Draw(t, "hour")
		now := time.Date(2026, 6, 1, hour, 15, 0, 0, time.UTC)
		ago := time.Duration(rapid.Int64Range(0, int64(72*time.Hour)).Draw(t, "ago"))

		if p.ShouldRefresh(now, now.Add(-ago)) || p.ShouldRefresh(now, time.Time{}) {
			t.Fatalf("refresh allowed at %v outside [%d,%d]", now, p.StartHour, p.EndHour)
		}
	})
}

func TestProperty_AlwaysRefreshWhenUnsetInsideWindow(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		p := genPolicy(t)
		hour := rapid.IntRange(p.StartHour, p.EndHour).Draw(t, "hour")
		now := time.Date(2026, 6, 1, hour, 30, 0, 0, time.UTC)

		if !p.ShouldRefresh(now, time.Time{}) {
			t.Fatalf("no refresh at %v with unset last update", now)
		}
	})
}

func TestProperty_IntervalBoundaryInclusive(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		p := genPolicy(t)
		hour := rapid.IntRange(p.StartHour, p.EndHour).Draw(t, "hour")
		now := time.Date(2026, 6, 1, hour, 30, 0, 0, time.UTC)

		if p.ShouldRefresh(now, now.Add(-p.RefreshInterval+time.Second)) {
			t.Fatal("refresh one second before the interval elapsed")
		}
		if !p.ShouldRefresh(now, now.Add(-p.RefreshInterval)) {
			t.Fatal("no refresh exactly at the interval")
		}
	})
}
