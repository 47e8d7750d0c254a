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

package content

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		category Category
		index    int
		want     string
	}{
		{CategoryMessages, 1, "MSG001"},
		{CategoryWeather, 12, "WTH012"},
		{CategoryNews, 3, "NEWS003"},
		{CategoryActivities, 100, "ACT100"},
		{CategoryPoems, 7, "POEM007"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, RecordID(tt.category, tt.index))
		})
	}
}

func TestFallbackBundle(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cause := errors.New("backend down")

	b := FallbackBundle(now, cause)
	assert.True(t, b.Fallback)
	require.ErrorIs(t, b.Cause, cause)
	assert.Equal(t, now, b.GeneratedOn)

	for _, c := range Categories {
		records := b.Category(c)
		require.Len(t, records, 1, c)
		assert.Equal(t, RecordID(c, 1), records[0].ID)
		assert.NotEmpty(t, records[0].Text)
	}
	assert.Equal(t, NoNews, b.News[0].Text)
	assert.Len(t, b.Records(), len(Categories))
}

func TestBundleRecordsOrder(t *testing.T) {
	t.Parallel()

	b := &Bundle{
		Poems:    []Record{{ID: "POEM001", Text: "p"}},
		Messages: []Record{{ID: "MSG001", Text: "m1"}, {ID: "MSG002", Text: "m2"}},
		News:     []Record{{ID: "NEWS001", Text: "n"}},
	}

	ids := make([]string, 0, b.Len())
	for _, r := range b.Records() {
		ids = append(ids, r.ID)
	}
	assert.Equal(t, []string{"MSG001", "MSG002", "NEWS001", "POEM001"}, ids)
	assert.Equal(t, 2, b.Counts()[CategoryMessages])
	assert.Equal(t, 0, b.Counts()[CategoryWeather])
}
