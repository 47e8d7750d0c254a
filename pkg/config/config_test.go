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
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestNewConfig_WritesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, CfgFile))
	require.NoError(t, err, "default config should be written to disk")

	assert.NotEmpty(t, cfg.DeviceID())
	assert.Equal(t, BaseDefaults.Schedule, cfg.Schedule())
	assert.Equal(t, 30*time.Second, cfg.CycleDelay())
	assert.Equal(t, time.Hour, cfg.RefreshInterval())
	assert.Equal(t, "#FFFFFF", cfg.Colors()[ColorDefault])
	assert.Empty(t, cfg.Words())
}

func TestLoad_FileValuesOverrideDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, CfgFile, `
config_schema = 1

[schedule]
start_hour = 8
end_hour = 20
refresh_interval = 900
cycle_delay = 10

[colors]
greetings = "#FF0000"

[display]
host = "192.168.1.40"
app = "kitchen"
duration = 5
repeat = 2
`)

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	sched := cfg.Schedule()
	assert.Equal(t, 8, sched.StartHour)
	assert.Equal(t, 20, sched.EndHour)
	assert.Equal(t, 15*time.Minute, cfg.RefreshInterval())
	assert.Equal(t, 10*time.Second, cfg.CycleDelay())

	colors := cfg.Colors()
	assert.Equal(t, "#FF0000", colors["greetings"])
	assert.Equal(t, "#FFFFFF", colors[ColorDefault], "default colour should survive merge")
	assert.Equal(t, "#00FF00", colors[ColorNumbers])

	disp := cfg.Display()
	assert.Equal(t, "192.168.1.40", disp.Host)
	assert.Equal(t, "kitchen", disp.App)
	assert.Equal(t, 5, disp.Duration)

	// unspecified sections keep their defaults
	assert.Equal(t, BaseDefaults.Weather.BaseURL, cfg.Weather().BaseURL)
}

func TestLoad_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "hour out of range",
			content: "config_schema = 1\n[schedule]\nstart_hour = 25\n",
		},
		{
			name:    "zero refresh interval",
			content: "config_schema = 1\n[schedule]\nrefresh_interval = 0\n",
		},
		{
			name:    "zero cycle delay",
			content: "config_schema = 1\n[schedule]\ncycle_delay = 0\n",
		},
		{
			name:    "city without name",
			content: "config_schema = 1\n[[cities]]\nlatitude = 45.7\n",
		},
		{
			name:    "short day list",
			content: "config_schema = 1\n[dates.fr]\ndays = [\"lundi\"]\nmonths = []\n",
		},
		{
			name:    "bad colour",
			content: "config_schema = 1\n[colors]\ngreetings = \"red\"\n",
		},
		{
			name:    "bad feed url",
			content: "config_schema = 1\n[news]\nfeeds = [\"not a url\"]\n",
		},
		{
			name:    "unsupported baud rate",
			content: "config_schema = 1\n[printer]\nbaud_rate = 1234\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeFile(t, dir, CfgFile, tt.content)

			_, err := NewConfig(dir, BaseDefaults)
			require.Error(t, err)

			var ve *ValidationError
			assert.ErrorAs(t, err, &ve)
		})
	}
}

func TestLoad_SchemaMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, CfgFile, "config_schema = 99\n")

	_, err := NewConfig(dir, BaseDefaults)
	require.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestLoad_FailedReloadKeepsPreviousValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	writeFile(t, dir, CfgFile, "config_schema = 1\n[schedule]\nend_hour = 99\n")
	require.Error(t, cfg.Load())

	assert.Equal(t, BaseDefaults.Schedule.EndHour, cfg.Schedule().EndHour)
}

func TestLoad_Words(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, WordsFile, `
categories:
  greetings: [hello, " hi ", ""]
  weather: [sun, rain]
`)

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	words := cfg.Words()
	assert.Equal(t, []string{"hello", "hi"}, words["greetings"])
	assert.Equal(t, []string{"sun", "rain"}, words["weather"])

	// returned map is a copy
	words["greetings"][0] = "changed"
	assert.Equal(t, "hello", cfg.Words()["greetings"][0])
}

func TestLoad_ReservedWordCategory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, WordsFile, "categories:\n  numbers: [one]\n")

	_, err := NewConfig(dir, BaseDefaults)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved")
}

func TestSaveWords(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	require.NoError(t, cfg.SaveWords(map[string][]string{"animals": {"cat", "dog"}}))
	assert.Equal(t, []string{"cat", "dog"}, cfg.Words()["animals"])

	require.NoError(t, cfg.Load())
	assert.Equal(t, []string{"cat", "dog"}, cfg.Words()["animals"], "words should round trip through disk")

	require.Error(t, cfg.SaveWords(map[string][]string{ColorDefault: {"x"}}))
}

func TestSecrets_FromEnvFileNotSaved(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, EnvFile, GeneratorKeyEnv+"=sk-test\n")

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.Generator().APIKey)

	require.NoError(t, cfg.Save())

	data, err := os.ReadFile(filepath.Join(dir, CfgFile))
	require.NoError(t, err)

	var onDisk Values
	require.NoError(t, toml.Unmarshal(data, &onDisk))
	assert.Empty(t, onDisk.Generator.APIKey, "api keys must not be written to config.toml")
}

func TestLoad_CitiesAndDates(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, CfgFile, `config_schema = 1

[location]
city = "Lyon"
language = "fr"
latitude = 45.76
longitude = 4.84

[[cities]]
key = "home"
city = "Amantea"
language = "it"
latitude = 39.13
longitude = 16.07

[dates.it]
days = ["domenica", "lunedì", "martedì", "mercoledì", "giovedì", "venerdì", "sabato"]
months = ["gennaio", "febbraio", "marzo", "aprile", "maggio", "giugno",
  "luglio", "agosto", "settembre", "ottobre", "novembre", "dicembre"]
`)

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	locs := cfg.Locations()
	require.Len(t, locs, 2)
	assert.Equal(t, "lyon", locs[0].Name())
	assert.Equal(t, "fr", locs[0].Language)
	assert.Equal(t, "home", locs[1].Name())
	assert.InDelta(t, 39.13, locs[1].Latitude, 0.001)

	dates := cfg.DateNames()
	require.Contains(t, dates, "it")
	assert.Equal(t, "lunedì", dates["it"].Days[1])

	// callers get a copy
	delete(dates, "it")
	assert.Contains(t, cfg.DateNames(), "it")
}

func TestLocationName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "new_york", Location{City: " New York "}.Name())
	assert.Equal(t, "nyc", Location{Key: "nyc", City: "New York"}.Name())
}

func TestPhotoPrompt(t *testing.T) {
	t.Parallel()

	cfg, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, DefaultPhotoPrompt, cfg.PhotoPrompt())
}

func TestPromptTemplate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	tmpl, err := cfg.PromptTemplate()
	require.NoError(t, err)
	assert.Equal(t, DefaultPrompt, tmpl)

	writeFile(t, dir, PromptFile, "Write about {{.weather}}")
	tmpl, err = cfg.PromptTemplate()
	require.NoError(t, err)
	assert.Equal(t, "Write about {{.weather}}", tmpl)
}

func TestSetActiveHours(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	require.NoError(t, cfg.SetActiveHours(6, 23))
	assert.Equal(t, 6, cfg.Schedule().StartHour)
	assert.Equal(t, 23, cfg.Schedule().EndHour)

	require.Error(t, cfg.SetActiveHours(-1, 23))
	assert.Equal(t, 6, cfg.Schedule().StartHour)
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 1)
	require.NoError(t, cfg.Watch(ctx, func() {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	}))

	writeFile(t, dir, CfgFile, "config_schema = 1\n[schedule]\ncycle_delay = 5\n")

	select {
	case <-reloaded:
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}
	assert.Equal(t, 5*time.Second, cfg.CycleDelay())
}
