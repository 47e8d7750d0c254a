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

package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultPrompt is used when no prompt.tmpl exists in the config directory.
const DefaultPrompt = `You write short texts for a 32x8 pixel LED matrix in a family home.
Current time: {{.time}}
Location: {{.city}}
Weather: {{.weather}}
News: {{.news}}

Reply with a JSON object with the array keys "messages", "weather", "news",
"suggested_activities" and "poems". Each array holds 3 to 5 plain strings of
at most 80 characters.`

// DefaultPhotoPrompt asks for a short poem about a captured photo.
const DefaultPhotoPrompt = `Write a short poem of no more than 4 lines about this photo.
Reply with a JSON object with the single string key "result".`

// Location is a place weather is fetched for. Key names it in the prompt
// template; it defaults to the lower-cased city. Language is passed to the
// weather service for localized descriptions.
type Location struct {
	Key       string  `toml:"key,omitempty" validate:"omitempty,alphanum"`
	City      string  `toml:"city" validate:"required"`
	Language  string  `toml:"language,omitempty" validate:"omitempty,min=2,max=5"`
	Latitude  float64 `toml:"latitude" validate:"latitude"`
	Longitude float64 `toml:"longitude" validate:"longitude"`
}

func (l Location) Name() string {
	if l.Key != "" {
		return l.Key
	}
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(l.City)), " ", "_")
}

// DateNames are the weekday names (Sunday first) and month names of one
// language.
type DateNames struct {
	Days   []string `toml:"days" validate:"len=7,dive,required"`
	Months []string `toml:"months" validate:"len=12,dive,required"`
}

type Weather struct {
	APIKey      string `toml:"api_key,omitempty"`
	BaseURL     string `toml:"base_url" validate:"required,url"`
	Units       string `toml:"units" validate:"oneof=metric imperial standard"`
	MinInterval int    `toml:"min_interval" validate:"gte=0"`
}

type News struct {
	APIKey      string   `toml:"api_key,omitempty"`
	BaseURL     string   `toml:"base_url" validate:"required,url"`
	Country     string   `toml:"country" validate:"len=2"`
	Feeds       []string `toml:"feeds,omitempty,multiline" validate:"dive,url"`
	Limit       int      `toml:"limit" validate:"gte=1,lte=20"`
	MinInterval int      `toml:"min_interval" validate:"gte=0"`
}

type Generator struct {
	APIKey      string `toml:"api_key,omitempty"`
	BaseURL     string `toml:"base_url" validate:"required,url"`
	Model       string `toml:"model" validate:"required"`
	VisionModel string `toml:"vision_model,omitempty"`
	PhotoPrompt string `toml:"photo_prompt,omitempty,multiline"`
	Timeout     int    `toml:"timeout" validate:"gte=1"`
}

// Locations returns the primary location followed by the extra cities.
func (c *Instance) Locations() []Location {
	c.mu.RLock()
	defer c.mu.RUnlock()
	locs := make([]Location, 0, 1+len(c.vals.Cities))
	locs = append(locs, c.vals.Location)
	return append(locs, c.vals.Cities...)
}

// DateNames returns the configured localized day and month names by
// language code.
func (c *Instance) DateNames() map[string]DateNames {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.vals.Dates)
}

// PhotoPrompt is the prompt sent with a captured photo when the request
// carries none.
func (c *Instance) PhotoPrompt() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Generator.PhotoPrompt != "" {
		return c.vals.Generator.PhotoPrompt
	}
	return DefaultPhotoPrompt
}

func (c *Instance) Weather() Weather {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Weather
}

func (c *Instance) News() News {
	c.mu.RLock()
	defer c.mu.RUnlock()
	news := c.vals.News
	news.Feeds = append([]string(nil), c.vals.News.Feeds...)
	return news
}

func (c *Instance) Generator() Generator {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Generator
}

func (c *Instance) GeneratorTimeout() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Generator.Timeout) * time.Second
}

// PromptTemplate returns the operator's prompt template from prompt.tmpl in
// the config directory, or DefaultPrompt if the file does not exist. The file
// is read on every call so edits apply on the next refresh.
func (c *Instance) PromptTemplate() (string, error) {
	path := filepath.Join(c.cfgDir, PromptFile)
	data, err := os.ReadFile(path) //nolint:gosec // path is inside the config dir
	if errors.Is(err, os.ErrNotExist) {
		return DefaultPrompt, nil
	} else if err != nil {
		return "", fmt.Errorf("failed to read prompt template: %w", err)
	}
	return string(data), nil
}
