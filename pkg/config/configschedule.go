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

type Schedule struct {
	StartHour       int  `toml:"start_hour" validate:"gte=0,lte=23"`
	EndHour         int  `toml:"end_hour" validate:"gte=0,lte=23"`
	RefreshInterval int  `toml:"refresh_interval" validate:"gt=0"`
	CycleDelay      int  `toml:"cycle_delay" validate:"gt=0"`
	PushAfterHours  bool `toml:"push_after_hours"`
}

func (c *Instance) Schedule() Schedule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Schedule
}

// RefreshInterval is the minimum age content must reach before it is
// regenerated.
func (c *Instance) RefreshInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Schedule.RefreshInterval) * time.Second
}

// CycleDelay is the pause between two display pushes.
func (c *Instance) CycleDelay() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return time.Duration(c.vals.Schedule.CycleDelay) * time.Second
}

// SetActiveHours changes the active window in memory. Save persists it.
func (c *Instance) SetActiveHours(start, end int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.vals
	next.Schedule.StartHour = start
	next.Schedule.EndHour = end
	if err := validateValues(&next); err != nil {
		return err
	}
	c.vals.Schedule = next.Schedule
	return nil
}
