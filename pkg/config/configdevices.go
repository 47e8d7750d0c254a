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
	CaptureFswebcam = "fswebcam"
	CaptureLibcam   = "libcamera-still"
)

type Camera struct {
	Command string `toml:"command" validate:"oneof=fswebcam libcamera-still"`
	Device  string `toml:"device,omitempty"`
	Width   int    `toml:"width" validate:"gte=16"`
	Height  int    `toml:"height" validate:"gte=16"`
}

type Printer struct {
	Port     string `toml:"port,omitempty"`
	BaudRate int    `toml:"baud_rate" validate:"oneof=9600 19200 38400 57600 115200"`
	Dots     int    `toml:"dots" validate:"gte=8,lte=1024"`
}

func (c *Instance) Camera() Camera {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Camera
}

func (c *Instance) Printer() Printer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Printer
}
