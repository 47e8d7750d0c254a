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

// Package schedule decides when displayed content is stale and may be
// regenerated.
package schedule

import (
	"time"

	"github.com/glimmerhome/glimmer/pkg/config"
)

// Policy is the active-hours window plus the refresh interval. The window is
// inclusive on both ends and may wrap past midnight (StartHour > EndHour).
type Policy struct {
	StartHour       int
	EndHour         int
	RefreshInterval time.Duration
}

// Settings is the part of the config a Policy is built from.
type Settings interface {
	Schedule() config.Schedule
	RefreshInterval() time.Duration
}

// FromConfig builds a Policy from the current schedule settings.
func FromConfig(cfg Settings) Policy {
	s := cfg.Schedule()
	return Policy{
		StartHour:       s.StartHour,
		EndHour:         s.EndHour,
		RefreshInterval: cfg.RefreshInterval(),
	}
}

// InWindow reports whether now's hour of day lies in [StartHour, EndHour].
func (p Policy) InWindow(now time.Time) bool {
	hour := now.Hour()
	if p.StartHour <= p.EndHour {
		return hour >= p.StartHour && hour <= p.EndHour
	}
	return hour >= p.StartHour || hour <= p.EndHour
}

// ShouldRefresh reports whether content last generated at lastUpdate must be
// regenerated at now. A zero lastUpdate means content was never generated.
// Outside the active window it is always false.
func (p Policy) ShouldRefresh(now, lastUpdate time.Time) bool {
	if !p.InWindow(now) {
		return false
	}
	if lastUpdate.IsZero() {
		return true
	}
	return now.Sub(lastUpdate) >= p.RefreshInterval
}
