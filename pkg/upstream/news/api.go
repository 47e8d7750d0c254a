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
	"net/url"
	"strconv"
	"strings"

	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/shared/httpclient"
)

// APISource reads top headlines from a NewsAPI compatible endpoint.
type APISource struct {
	http     *httpclient.Client
	settings config.News
}

func NewAPISource(http *httpclient.Client, settings config.News) *APISource {
	if http == nil {
		http = httpclient.DefaultClient
	}
	return &APISource{http: http, settings: settings}
}

func (*APISource) Name() string {
	return "newsapi"
}

type apiResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"articles"`
}

func (s *APISource) Headlines(ctx context.Context) ([]Headline, error) {
	if s.settings.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	q := url.Values{}
	q.Set("country", s.settings.Country)
	q.Set("pageSize", strconv.Itoa(s.settings.Limit))
	endpoint := strings.TrimRight(s.settings.BaseURL, "/") + "/v2/top-headlines?" + q.Encode()

	var resp apiResponse
	err := s.http.GetJSON(ctx, endpoint, &resp, httpclient.Header{Key: "X-Api-Key", Value: s.settings.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch headlines: %w", err)
	}
	if resp.Status != "" && resp.Status != "ok" {
		return nil, fmt.Errorf("news api error: %s", resp.Message)
	}

	items := make([]Headline, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if strings.TrimSpace(a.Title) == "" || a.Title == "[Removed]" {
			continue
		}
		items = append(items, Headline{Title: a.Title, Description: a.Description})
	}
	return items, nil
}
