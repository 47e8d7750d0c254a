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

// Package content builds the bundles of short texts the display cycles
// through, generating them from live weather and news via a text model.
package content

import (
	"fmt"
	"time"
)

// Category names a group of records in a bundle. The string values are the
// JSON keys the text model must reply with.
type Category string

const (
	CategoryMessages   Category = "messages"
	CategoryWeather    Category = "weather"
	CategoryNews       Category = "news"
	CategoryActivities Category = "suggested_activities"
	CategoryPoems      Category = "poems"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryMessages,
	CategoryWeather,
	CategoryNews,
	CategoryActivities,
	CategoryPoems,
}

// Prefix is the record id prefix for a category.
func (c Category) Prefix() string {
	switch c {
	case CategoryMessages:
		return "MSG"
	case CategoryWeather:
		return "WTH"
	case CategoryNews:
		return "NEWS"
	case CategoryActivities:
		return "ACT"
	case CategoryPoems:
		return "POEM"
	default:
		return "TXT"
	}
}

// RecordID formats the id of the index-th (1-based) record of a category.
func RecordID(c Category, index int) string {
	return fmt.Sprintf("%s%03d", c.Prefix(), index)
}

// Record is one displayable text.
type Record struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Bundle is a full generation result. A bundle is never modified after it
// is built; a refresh replaces it wholesale.
type Bundle struct {
	GeneratedOn time.Time `json:"generated_on"`
	// Cause is why the fallback bundle was used. Nil for generated content.
	Cause      error    `json:"-"`
	Messages   []Record `json:"messages"`
	Weather    []Record `json:"weather"`
	News       []Record `json:"news"`
	Activities []Record `json:"suggested_activities"`
	Poems      []Record `json:"poems"`
	Fallback   bool     `json:"fallback"`
}

// Category returns the records of one category.
func (b *Bundle) Category(c Category) []Record {
	switch c {
	case CategoryMessages:
		return b.Messages
	case CategoryWeather:
		return b.Weather
	case CategoryNews:
		return b.News
	case CategoryActivities:
		return b.Activities
	case CategoryPoems:
		return b.Poems
	default:
		return nil
	}
}

func (b *Bundle) set(c Category, records []Record) {
	switch c {
	case CategoryMessages:
		b.Messages = records
	case CategoryWeather:
		b.Weather = records
	case CategoryNews:
		b.News = records
	case CategoryActivities:
		b.Activities = records
	case CategoryPoems:
		b.Poems = records
	}
}

// Records returns every record of every category in category order.
func (b *Bundle) Records() []Record {
	all := make([]Record, 0, b.Len())
	for _, c := range Categories {
		all = append(all, b.Category(c)...)
	}
	return all
}

// Len is the total number of records.
func (b *Bundle) Len() int {
	n := 0
	for _, c := range Categories {
		n += len(b.Category(c))
	}
	return n
}

// Counts returns the number of records per category.
func (b *Bundle) Counts() map[Category]int {
	counts := make(map[Category]int, len(Categories))
	for _, c := range Categories {
		counts[c] = len(b.Category(c))
	}
	return counts
}

var fallbackTexts = map[Category]string{
	CategoryMessages:   "Have a wonderful day!",
	CategoryWeather:    "Check the sky before heading out",
	CategoryNews:       "No news available at the moment.",
	CategoryActivities: "Take a short walk outside",
	CategoryPoems:      "Small lights glow, the day moves slow",
}

// FallbackBundle is shown when generation fails: one fixed record per
// category.
func FallbackBundle(now time.Time, cause error) *Bundle {
	b := &Bundle{
		GeneratedOn: now,
		Fallback:    true,
		Cause:       cause,
	}
	for _, c := range Categories {
		b.set(c, []Record{{ID: RecordID(c, 1), Text: fallbackTexts[c]}})
	}
	return b
}
