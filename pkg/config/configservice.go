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

import "time"

const APIRequestTimeout = 30 * time.Second

// PhotoPoemTimeout bounds the photo poem request, which waits on the camera,
// the vision model and the printer in turn.
const PhotoPoemTimeout = 2 * time.Minute

type Service struct {
	DeviceID       string   `toml:"device_id"`
	DiscoveryName  string   `toml:"discovery_name,omitempty"`
	AllowedOrigins []string `toml:"allowed_origins,omitempty"`
	AllowedIPs     []string `toml:"allowed_ips,omitempty"`
	MQTT           MQTT     `toml:"mqtt,omitempty"`
	APIPort        int      `toml:"api_port" validate:"gte=1,lte=65535"`
	Discovery      bool     `toml:"discovery"`
}

type MQTT struct {
	Broker string   `toml:"broker,omitempty"`
	Topic  string   `toml:"topic,omitempty"`
	Filter []string `toml:"filter,omitempty"`
}

func (c *Instance) APIPort() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.APIPort
}

func (c *Instance) DeviceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.DeviceID
}

func (c *Instance) DiscoveryEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.Discovery
}

// DiscoveryInstanceName is the mDNS instance name override. Empty means
// the hostname is used.
func (c *Instance) DiscoveryInstanceName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.DiscoveryName
}

func (c *Instance) AllowedOrigins() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.vals.Service.AllowedOrigins) == 0 {
		return []string{"http://*", "https://*"}
	}
	return append([]string(nil), c.vals.Service.AllowedOrigins...)
}

func (c *Instance) MQTT() MQTT {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m := c.vals.Service.MQTT
	m.Filter = append([]string(nil), c.vals.Service.MQTT.Filter...)
	return m
}

// AllowedIPs lists the addresses and CIDR ranges allowed to use the API.
// Empty allows everyone.
func (c *Instance) AllowedIPs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.vals.Service.AllowedIPs...)
}
