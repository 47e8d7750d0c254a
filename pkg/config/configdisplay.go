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

const (
	ColorDefault = "default"
	ColorNumbers = "numbers"
)

type Display struct {
	Host     string `toml:"host,omitempty" validate:"omitempty,hostname_port|hostname_rfc1123|ip"`
	App      string `toml:"app" validate:"required,alphanum"`
	Duration int    `toml:"duration" validate:"gte=1,lte=3600"`
	Repeat   int    `toml:"repeat" validate:"gte=0"`
}

func (c *Instance) Display() Display {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Display
}

// Colors returns a copy of the word category to colour mapping, including
// the reserved "default" and "numbers" entries.
func (c *Instance) Colors() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyColors(c.vals.Colors)
}

// Words returns a copy of the word category lists loaded from words.yaml.
func (c *Instance) Words() map[string][]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	words := make(map[string][]string, len(c.words))
	for k, v := range c.words {
		words[k] = append([]string(nil), v...)
	}
	return words
}
