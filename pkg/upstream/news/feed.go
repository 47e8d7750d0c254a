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

package news

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/glimmerhome/glimmer/pkg/shared/httpclient"
	"github.com/mmcdole/gofeed"
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// FeedSource reads headlines from an RSS or Atom feed.
type FeedSource struct {
	parser *gofeed.Parser
	url    string
	limit  int
}

func NewFeedSource(http *httpclient.Client, feedURL string, limit int) *FeedSource {
	parser := gofeed.NewParser()
	if http != nil {
		parser.Client = http.Client
	}
	return &FeedSource{parser: parser, url: feedURL, limit: limit}
}

func (s *FeedSource) Name() string {
	return s.url
}

func (s *FeedSource) Headlines(ctx context.Context) ([]Headline, error) {
	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", s.url, err)
	}

	items := make([]Headline, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		items = append(items, Headline{
			Title:       title,
			Description: cleanDescription(item.Description),
		})
		if s.limit > 0 && len(items) >= s.limit {
			break
		}
	}
	return items, nil
}

// cleanDescription strips markup some feeds embed in descriptions.
func cleanDescription(s string) string {
	s = tagRe.ReplaceAllString(html.UnescapeString(s), "")
	return strings.Join(strings.Fields(s), " ")
}

// SourcesFromConfig builds the primary API source followed by one feed
// source per configured fallback feed, in order.
func SourcesFromConfig(http *httpclient.Client, api Source, feeds []string, limit int) []Source {
	sources := make([]Source, 0, len(feeds)+1)
	if api != nil {
		sources = append(sources, api)
	}
	for _, f := range feeds {
		sources = append(sources, NewFeedSource(http, f, limit))
	}
	return sources
}
