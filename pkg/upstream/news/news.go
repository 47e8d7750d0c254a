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

// Package news fetches headlines from a primary news API with an ordered
// list of RSS/Atom feeds as fallback.
package news

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

var (
	ErrNoAPIKey = errors.New("news api key not configured")
	ErrNoNews   = errors.New("no news source returned headlines")
)

// Headline is a news item reduced to what the generation prompt needs.
type Headline struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Source is one place headlines can come from.
type Source interface {
	Name() string
	Headlines(ctx context.Context) ([]Headline, error)
}

// Chain tries its sources in order. The first source that returns at least
// one headline wins; errors and empty results fall through to the next.
type Chain struct {
	sources []Source
}

func NewChain(sources ...Source) *Chain {
	return &Chain{sources: sources}
}

func (*Chain) Name() string {
	return "chain"
}

// Headlines returns the first non-empty result, or ErrNoNews joined with
// every source's failure if none produced anything.
func (c *Chain) Headlines(ctx context.Context) ([]Headline, error) {
	var errs []error
	for _, src := range c.sources {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		items, err := src.Headlines(ctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("source", src.Name()).Msg("news source failed, trying next")
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		case len(items) == 0:
			log.Warn().Str("source", src.Name()).Msg("news source returned no headlines, trying next")
			continue
		}

		log.Debug().Str("source", src.Name()).Int("count", len(items)).Msg("fetched headlines")
		return items, nil
	}
	return nil, errors.Join(append([]error{ErrNoNews}, errs...)...)
}

// Summarize renders at most limit headlines as one block of prompt text.
func Summarize(items []Headline, limit int) string {
	if limit <= 0 || limit > len(items) {
		limit = len(items)
	}
	lines := make([]string, 0, limit)
	for _, h := range items[:limit] {
		line := "- " + strings.TrimSpace(h.Title)
		if d := strings.TrimSpace(h.Description); d != "" {
			line += ": " + d
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
