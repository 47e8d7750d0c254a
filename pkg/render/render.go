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

// Package render turns plain text into coloured fragments for the matrix
// display.
//
// Text is split into alternating runs of word characters (letters, digits,
// underscore and apostrophe) and non-word characters. Every run becomes one
// fragment, so joining the fragment texts gives back the input unchanged.
// Word runs are coloured by their category in the configured word lists,
// compared case-insensitively. Runs made only of digits that match no
// category use the "numbers" colour. Everything else, including whitespace
// and punctuation, uses the "default" colour.
package render

import (
	"sort"
	"strings"
	"unicode"

	"github.com/glimmerhome/glimmer/pkg/config"
)

// FallbackColor is used when the colour map has no default entry.
const FallbackColor = "#FFFFFF"

// Fragment is a coloured run of text. The JSON keys match the display's
// custom app API.
type Fragment struct {
	Text  string `json:"t"`
	Color string `json:"c"`
}

// Colorizer assigns colours to tokens. It is immutable once built and safe
// for concurrent use.
type Colorizer struct {
	categoryOf   map[string]string
	colors       map[string]string
	defaultColor string
	numberColor  string
}

// NewColorizer builds a Colorizer from word category lists and a colour per
// category. When a word appears in several categories the alphabetically
// first category wins.
func NewColorizer(words map[string][]string, colors map[string]string) *Colorizer {
	c := &Colorizer{
		categoryOf: make(map[string]string),
		colors:     make(map[string]string, len(colors)),
	}
	for k, v := range colors {
		c.colors[k] = v
	}

	c.defaultColor = colors[config.ColorDefault]
	if c.defaultColor == "" {
		c.defaultColor = FallbackColor
	}
	c.numberColor = colors[config.ColorNumbers]
	if c.numberColor == "" {
		c.numberColor = c.defaultColor
	}

	categories := make([]string, 0, len(words))
	for category := range words {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		for _, w := range words[category] {
			key := strings.ToLower(w)
			if _, taken := c.categoryOf[key]; !taken {
				c.categoryOf[key] = category
			}
		}
	}

	return c
}

// Color returns the colour for a single token.
func (c *Colorizer) Color(token string) string {
	if category, ok := c.categoryOf[strings.ToLower(token)]; ok {
		if color, ok := c.colors[category]; ok && color != "" {
			return color
		}
		return c.defaultColor
	}
	if isDigits(token) {
		return c.numberColor
	}
	return c.defaultColor
}

// Fragments tokenizes text and colours every token.
func (c *Colorizer) Fragments(text string) []Fragment {
	tokens := Tokenize(text)
	frags := make([]Fragment, 0, len(tokens))
	for _, tok := range tokens {
		color := c.defaultColor
		if isWordRune(firstRune(tok)) {
			color = c.Color(tok)
		}
		frags = append(frags, Fragment{Text: tok, Color: color})
	}
	return frags
}

// Tokenize splits text into maximal runs of word and non-word characters.
func Tokenize(text string) []string {
	if text == "" {
		return nil
	}

	var tokens []string
	start := 0
	prevWord := false
	for i, r := range text {
		word := isWordRune(r)
		if i > 0 && word != prevWord {
			tokens = append(tokens, text[start:i])
			start = i
		}
		prevWord = word
	}
	return append(tokens, text[start:])
}

// Join concatenates fragment texts.
func Join(frags []Fragment) string {
	var sb strings.Builder
	for _, f := range frags {
		sb.WriteString(f.Text)
	}
	return sb.String()
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\''
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
