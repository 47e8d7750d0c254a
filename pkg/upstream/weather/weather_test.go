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

package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/shared/httpclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "name": "London",
  "weather": [{"description": "light rain"}],
  "main": {"temp": 11.2, "feels_like": 10.1, "temp_min": 9.5, "temp_max": 12.8, "pressure": 1012, "humidity": 81},
  "wind": {"speed": 4.6, "deg": 230},
  "clouds": {"all": 75},
  "visibility": 10000
}`

func TestCurrent(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/data/2.5/weather", r.URL.Path)
		assert.Equal(t, "51.5074", r.URL.Query().Get("lat"))
		assert.Equal(t, "-0.1278", r.URL.Query().Get("lon"))
		assert.Equal(t, "key", r.URL.Query().Get("appid"))
		assert.Equal(t, "metric", r.URL.Query().Get("units"))
		assert.False(t, r.URL.Query().Has("lang"))
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewClient(httpclient.NewClient(), config.Weather{
		APIKey:  "key",
		BaseURL: srv.URL,
		Units:   "metric",
	})

	r, err := c.Current(context.Background(), config.BaseDefaults.Location)
	require.NoError(t, err)

	assert.Equal(t, "London", r.City)
	assert.Equal(t, "Light Rain", r.Description)
	assert.InDelta(t, 11.2, r.Temp, 0.001)
	assert.InDelta(t, 10.1, r.FeelsLike, 0.001)
	assert.Equal(t, 81, r.Humidity)
	assert.Equal(t, 230, r.WindDeg)
	assert.Equal(t, 10000, r.Visibility)
	assert.Equal(t, 1012, r.Pressure)
	assert.Equal(t, 75, r.Clouds)

	summary := r.Summary()
	assert.Contains(t, summary, "Light Rain in London")
	assert.Contains(t, summary, "11.2°C")
	assert.Contains(t, summary, "from SW")
	assert.Contains(t, summary, "visibility 10.0 km")
}

func TestCurrent_NoAPIKey(t *testing.T) {
	t.Parallel()

	c := NewClient(nil, config.Weather{BaseURL: "http://unused"})

	_, err := c.Current(context.Background(), config.Location{})
	require.ErrorIs(t, err, ErrNoAPIKey)
}

func TestCurrent_ServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "invalid key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(nil, config.Weather{APIKey: "bad", BaseURL: srv.URL, Units: "metric"})

	_, err := c.Current(context.Background(), config.Location{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestCurrent_Language(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fr", r.URL.Query().Get("lang"))
		_, _ = w.Write([]byte(`{"weather": [{"description": "pluie légère"}], "main": {"temp": 14}}`))
	}))
	defer srv.Close()

	c := NewClient(nil, config.Weather{APIKey: "key", BaseURL: srv.URL, Units: "metric"})

	r, err := c.Current(context.Background(), config.Location{City: "Lyon", Language: "fr", Latitude: 45.76, Longitude: 4.84})
	require.NoError(t, err)
	assert.Equal(t, "Lyon", r.City)
	assert.Equal(t, "Pluie Légère", r.Description)
}

func TestCompass(t *testing.T) {
	t.Parallel()

	tests := map[int]string{
		0: "N", 22: "N", 23: "NE", 45: "NE", 90: "E", 180: "S", 230: "SW", 270: "W", 315: "NW", 359: "N", -90: "W",
	}
	for deg, want := range tests {
		assert.Equal(t, want, Compass(deg), "deg %d", deg)
	}
}
