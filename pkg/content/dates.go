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
	"time"

	"github.com/glimmerhome/glimmer/pkg/config"
)

// LocalDate is one day named in one language.
type LocalDate struct {
	Day        string
	Month      string
	DayOfMonth int
	Year       int
}

// LocalDates names now in English and in every configured language. A
// configured "en" entry replaces the built-in English names.
func LocalDates(now time.Time, names map[string]config.DateNames) map[string]LocalDate {
	dates := make(map[string]LocalDate, len(names)+1)
	dates["en"] = LocalDate{
		Day:        now.Weekday().String(),
		Month:      now.Month().String(),
		DayOfMonth: now.Day(),
		Year:       now.Year(),
	}
	for lang, n := range names {
		if len(n.Days) != 7 || len(n.Months) != 12 {
			continue
		}
		dates[lang] = LocalDate{
			Day:        n.Days[now.Weekday()],
			Month:      n.Months[now.Month()-1],
			DayOfMonth: now.Day(),
			Year:       now.Year(),
		}
	}
	return dates
}
