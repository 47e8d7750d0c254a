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
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/helpers/syncutil"
	"github.com/glimmerhome/glimmer/pkg/ratelimit"
	"github.com/glimmerhome/glimmer/pkg/upstream/news"
	"github.com/glimmerhome/glimmer/pkg/upstream/weather"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	TimeLayout         = "Monday, January 2, 2006 at 3:04 PM"
	WeatherUnavailable = "weather unavailable"
	NoNews             = "No news available at the moment."
)

type WeatherSource interface {
	Current(ctx context.Context, loc config.Location) (weather.Report, error)
}

type NewsSource interface {
	Headlines(ctx context.Context) ([]news.Headline, error)
}

// TextGenerator sends a prompt to the generative text service and returns
// its reply, which should be a JSON object.
type TextGenerator interface {
	CompleteJSON(ctx context.Context, prompt string) ([]byte, error)
}

// Settings is the part of the configuration a refresh reads. It is read on
// every refresh so reloaded values apply to the next bundle.
type Settings interface {
	PromptTemplate() (string, error)
	Locations() []config.Location
	DateNames() map[string]config.DateNames
	News() config.News
	GeneratorTimeout() time.Duration
}

type Generator struct {
	clock    clockwork.Clock
	settings Settings
	weather  WeatherSource
	news     NewsSource
	text     TextGenerator
	limiter  *ratelimit.Limiter
	// last successful upstream results, reused while rate limited
	lastWeather map[string]string
	lastNews    string
	mu          syncutil.Mutex
}

type Deps struct {
	Clock    clockwork.Clock
	Settings Settings
	Weather  WeatherSource
	News     NewsSource
	Text     TextGenerator
	Limiter  *ratelimit.Limiter
}

func NewGenerator(deps Deps) *Generator {
	clock := deps.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = ratelimit.NewDefault(clock)
	}
	return &Generator{
		clock:       clock,
		settings:    deps.Settings,
		weather:     deps.Weather,
		news:        deps.News,
		text:        deps.Text,
		limiter:     limiter,
		lastWeather: make(map[string]string),
	}
}

// Refresh builds a new bundle. Upstream failures are absorbed: the result
// is then the fallback bundle with Cause set. The only errors returned are
// prompt template errors, which wrap ErrTemplate.
func (g *Generator) Refresh(ctx context.Context) (*Bundle, error) {
	tmplText, err := g.settings.PromptTemplate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	prompt, err := ParsePrompt(tmplText)
	if err != nil {
		return nil, err
	}

	now := g.clock.Now()
	vars := g.gather(ctx, now)

	rendered, err := prompt.Render(vars)
	if err != nil {
		return nil, err
	}

	b, err := g.generate(ctx, rendered, now)
	if err != nil {
		log.Warn().Err(err).Msg("content generation failed, using fallback content")
		return FallbackBundle(now, err), nil
	}

	log.Info().
		Int("records", b.Len()).
		Interface("counts", b.Counts()).
		Msg("generated new content")
	return b, nil
}

func (g *Generator) generate(ctx context.Context, prompt string, now time.Time) (*Bundle, error) {
	if g.text == nil {
		return nil, errors.New("no text generator configured")
	}
	if timeout := g.settings.GeneratorTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	raw, err := g.text.CompleteJSON(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	return ParseBundle(raw, now)
}

// gather collects the prompt variables. Weather and news are fetched in
// parallel; neither can fail the refresh.
func (g *Generator) gather(ctx context.Context, now time.Time) map[string]any {
	locs := g.settings.Locations()
	var cities map[string]string
	var newsText string

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		cities = g.currentWeather(egCtx, locs)
		return nil
	})
	eg.Go(func() error {
		newsText = g.currentNews(egCtx)
		return nil
	})
	_ = eg.Wait()

	vars := map[string]any{
		VarTime:    now.Format(TimeLayout),
		VarHour:    now.Hour(),
		VarDate:    LocalDates(now, g.settings.DateNames()),
		VarCity:    "",
		VarWeather: WeatherUnavailable,
		VarCities:  cities,
		VarNews:    newsText,
	}
	if len(locs) > 0 {
		vars[VarCity] = locs[0].City
		vars[VarWeather] = cities[locs[0].Name()]
	}
	return vars
}

// currentWeather returns a summary per location name. One weather limiter
// slot covers all locations; while limited, or for a location whose fetch
// fails, the last summary for that location is reused.
func (g *Generator) currentWeather(ctx context.Context, locs []config.Location) map[string]string {
	fresh := make([]string, len(locs))

	if g.weather == nil || !g.limiter.Allow(ratelimit.KeyWeather) {
		log.Debug().Msg("weather rate limited, reusing last reports")
	} else {
		eg, egCtx := errgroup.WithContext(ctx)
		for i, loc := range locs {
			eg.Go(func() error {
				report, err := g.weather.Current(egCtx, loc)
				if err != nil {
					log.Warn().Err(err).Str("city", loc.City).Msg("failed to fetch weather")
					return nil
				}
				fresh[i] = report.Summary()
				return nil
			})
		}
		_ = eg.Wait()
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[string]string, len(locs))
	for i, loc := range locs {
		name := loc.Name()
		if fresh[i] != "" {
			g.lastWeather[name] = fresh[i]
		}
		out[name] = orDefault(g.lastWeather[name], WeatherUnavailable)
	}
	return out
}

func (g *Generator) currentNews(ctx context.Context) string {
	cached := g.cachedNews()
	if g.news == nil || !g.limiter.Allow(ratelimit.KeyNews) {
		log.Debug().Msg("news rate limited, reusing last headlines")
		return orDefault(cached, NoNews)
	}

	items, err := g.news.Headlines(ctx)
	if err != nil || len(items) == 0 {
		log.Warn().Err(err).Msg("no news source returned headlines")
		return NoNews
	}

	summary := news.Summarize(items, g.settings.News().Limit)
	g.mu.Lock()
	g.lastNews = summary
	g.mu.Unlock()
	return summary
}

func (g *Generator) cachedNews() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastNews
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
