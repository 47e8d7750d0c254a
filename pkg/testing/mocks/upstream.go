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

package mocks

import (
	"context"

	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/upstream/news"
	"github.com/glimmerhome/glimmer/pkg/upstream/weather"
	"github.com/stretchr/testify/mock"
)

// MockWeatherSource is a testify mock for content.WeatherSource.
type MockWeatherSource struct {
	mock.Mock
}

func (m *MockWeatherSource) Current(ctx context.Context, loc config.Location) (weather.Report, error) {
	args := m.Called(ctx, loc)
	report, _ := args.Get(0).(weather.Report)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return report, args.Error(1)
}

// MockNewsSource is a testify mock for news.Source.
type MockNewsSource struct {
	mock.Mock
}

func (m *MockNewsSource) Name() string {
	return "mock"
}

func (m *MockNewsSource) Headlines(ctx context.Context) ([]news.Headline, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]news.Headline)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return items, args.Error(1)
}

// MockTextGenerator is a testify mock for content.TextGenerator.
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) CompleteJSON(ctx context.Context, prompt string) ([]byte, error) {
	args := m.Called(ctx, prompt)
	out, _ := args.Get(0).([]byte)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return out, args.Error(1)
}

// MockImageGenerator is a testify mock for content.ImageGenerator.
type MockImageGenerator struct {
	mock.Mock
}

func (m *MockImageGenerator) DescribeImageJSON(ctx context.Context, prompt string, photo []byte) ([]byte, error) {
	args := m.Called(ctx, prompt, photo)
	out, _ := args.Get(0).([]byte)
	//nolint:wrapcheck // Mock returns are already wrapped by caller
	return out, args.Error(1)
}
