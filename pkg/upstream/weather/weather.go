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

// Package weather fetches current conditions from the OpenWeatherMap API.
package weather

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/shared/httpclient"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrNoAPIKey = errors.New("weather api key not configured")

// Report is the current weather at a location.
type Report struct {
	City        string  `json:"city"`
	Description string  `json:"description"`
	Units       string  `json:"units"`
	Temp        float64 `json:"temp"`
	FeelsLike   float64 `json:"feels_like"`
	TempMin     float64 `json:"temp_min"`
	TempMax     float64 `json:"temp_max"`
	WindSpeed   float64 `json:"wind_speed"`
	Humidity    int     `json:"humidity"`
	WindDeg     int     `json:"wind_deg"`
	Visibility  int     `json:"visibility"`
	Pressure    int     `json:"pressure"`
	Clouds      int     `json:"clouds"`
}

// Summary renders the report as one line for the generation prompt.
func (r Report) Summary() string {
	deg, speed := "°C", "m/s"
	switch r.Units {
	case "imperial":
		deg, speed = "°F", "mph"
	case "standard":
		deg = "K"
	}
	return fmt.Sprintf(
		"%s in %s, %.1f%s (feels like %.1f%s, low %.1f%s, high %.1f%s), "+
			"humidity %d%%, wind %.1f %s from %s, visibility %.1f km, pressure %d hPa, cloud cover %d%%",
		r.Description, r.City,
		r.Temp, deg, r.FeelsLike, deg, r.TempMin, deg, r.TempMax, deg,
		r.Humidity, r.WindSpeed, speed, Compass(r.WindDeg),
		float64(r.Visibility)/1000, r.Pressure, r.Clouds,
	)
}

var compassPoints = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Compass converts a wind bearing in degrees to an 8-point compass name.
func Compass(deg int) string {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return compassPoints[((deg*2+45)/90)%8]
}

type apiResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		TempMin   float64 `json:"temp_min"`
		TempMax   float64 `json:"temp_max"`
		Pressure  int     `json:"pressure"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Deg   int     `json:"deg"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Visibility int `json:"visibility"`
}

// Client queries current weather by coordinates.
type Client struct {
	http     *httpclient.Client
	settings config.Weather
}

func NewClient(http *httpclient.Client, settings config.Weather) *Client {
	if http == nil {
		http = httpclient.DefaultClient
	}
	return &Client{
		http:     http,
		settings: settings,
	}
}

// Current fetches the weather at loc. Descriptions come back in
// loc.Language when it is set.
func (c *Client) Current(ctx context.Context, loc config.Location) (Report, error) {
	if c.settings.APIKey == "" {
		return Report{}, ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(loc.Latitude, 'f', 4, 64))
	q.Set("lon", strconv.FormatFloat(loc.Longitude, 'f', 4, 64))
	q.Set("units", c.settings.Units)
	q.Set("appid", c.settings.APIKey)
	if loc.Language != "" {
		q.Set("lang", loc.Language)
	}
	endpoint := strings.TrimRight(c.settings.BaseURL, "/") + "/data/2.5/weather?" + q.Encode()

	var resp apiResponse
	if err := c.http.GetJSON(ctx, endpoint, &resp); err != nil {
		return Report{}, fmt.Errorf("failed to fetch weather: %w", err)
	}

	desc := "unknown conditions"
	if len(resp.Weather) > 0 && resp.Weather[0].Description != "" {
		desc = cases.Title(titleLanguage(loc.Language)).String(resp.Weather[0].Description)
	}

	city := resp.Name
	if city == "" {
		city = loc.City
	}

	return Report{
		City:        city,
		Description: desc,
		Units:       c.settings.Units,
		Temp:        resp.Main.Temp,
		FeelsLike:   resp.Main.FeelsLike,
		TempMin:     resp.Main.TempMin,
		TempMax:     resp.Main.TempMax,
		Humidity:    resp.Main.Humidity,
		Pressure:    resp.Main.Pressure,
		WindSpeed:   resp.Wind.Speed,
		WindDeg:     resp.Wind.Deg,
		Visibility:  resp.Visibility,
		Clouds:      resp.Clouds.All,
	}, nil
}

func titleLanguage(code string) language.Tag {
	if code == "" {
		return language.English
	}
	tag, err := language.Parse(code)
	if err != nil {
		return language.English
	}
	return tag
}
