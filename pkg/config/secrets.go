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

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const (
	WeatherKeyEnv   = "GLIMMER_WEATHER_API_KEY"
	NewsKeyEnv      = "GLIMMER_NEWS_API_KEY"
	GeneratorKeyEnv = "GLIMMER_GENERATOR_API_KEY"
)

// applySecrets fills API keys from the process environment, falling back to
// a .env file next to the config. Values already in the process environment
// win over the file.
func applySecrets(vals *Values, envPath string) {
	fileEnv, err := godotenv.Read(envPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Str("path", envPath).Msg("failed to read env file")
	}

	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return fileEnv[key]
	}

	if v := lookup(WeatherKeyEnv); v != "" {
		vals.Weather.APIKey = v
	}
	if v := lookup(NewsKeyEnv); v != "" {
		vals.News.APIKey = v
	}
	if v := lookup(GeneratorKeyEnv); v != "" {
		vals.Generator.APIKey = v
	}
}
