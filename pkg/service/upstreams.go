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

package service

import (
	"context"

	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/shared/httpclient"
	"github.com/glimmerhome/glimmer/pkg/upstream/llm"
	"github.com/glimmerhome/glimmer/pkg/upstream/news"
	"github.com/glimmerhome/glimmer/pkg/upstream/weather"
)

// upstreams builds the provider clients from the current config on every
// call, so reloaded keys, feeds and locations apply to the next refresh.
type upstreams struct {
	cfg  *config.Instance
	http *httpclient.Client
}

func (u *upstreams) Current(ctx context.Context, loc config.Location) (weather.Report, error) {
	//nolint:wrapcheck // client errors already carry context
	return weather.NewClient(u.http, u.cfg.Weather()).Current(ctx, loc)
}

func (u *upstreams) Headlines(ctx context.Context) ([]news.Headline, error) {
	settings := u.cfg.News()
	var primary news.Source
	if settings.APIKey != "" {
		primary = news.NewAPISource(u.http, settings)
	}
	sources := news.SourcesFromConfig(u.http, primary, settings.Feeds, settings.Limit)
	//nolint:wrapcheck // chain joins per-source errors
	return news.NewChain(sources...).Headlines(ctx)
}

func (u *upstreams) CompleteJSON(ctx context.Context, prompt string) ([]byte, error) {
	//nolint:wrapcheck // client errors already carry context
	return llm.NewClient(u.http, u.cfg.Generator()).CompleteJSON(ctx, prompt)
}

func (u *upstreams) DescribeImageJSON(ctx context.Context, prompt string, photo []byte) ([]byte, error) {
	//nolint:wrapcheck // client errors already carry context
	return llm.NewClient(u.http, u.cfg.Generator()).DescribeImageJSON(ctx, prompt, photo)
}
