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
	"fmt"
	"os"
	"path/filepath"

	"github.com/glimmerhome/glimmer/pkg/helpers/syncutil"
	"github.com/google/uuid"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrSchemaMismatch is returned when the config file was written by an
// incompatible version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

type Values struct {
	Colors         map[string]string    `toml:"colors" validate:"dive,hexcolor"`
	Dates          map[string]DateNames `toml:"dates,omitempty" validate:"dive"`
	Schedule       Schedule             `toml:"schedule"`
	Display        Display              `toml:"display"`
	Location       Location             `toml:"location"`
	Cities         []Location           `toml:"cities,omitempty" validate:"dive"`
	Weather        Weather              `toml:"weather"`
	News           News                 `toml:"news"`
	Generator      Generator            `toml:"generator"`
	Camera         Camera               `toml:"camera"`
	Printer        Printer              `toml:"printer"`
	Service        Service              `toml:"service"`
	ConfigSchema   int                  `toml:"config_schema"`
	DebugLogging   bool                 `toml:"debug_logging"`
	ErrorReporting bool                 `toml:"error_reporting"`
	ReportingDSN   string               `toml:"error_reporting_dsn,omitempty" validate:"omitempty,url"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Schedule: Schedule{
		StartHour:       7,
		EndHour:         22,
		RefreshInterval: 3600,
		CycleDelay:      30,
	},
	Display: Display{
		App:      "glimmer",
		Duration: 15,
		Repeat:   1,
	},
	Colors: map[string]string{
		ColorDefault: "#FFFFFF",
		ColorNumbers: "#00FF00",
	},
	Location: Location{
		City:      "London",
		Latitude:  51.5074,
		Longitude: -0.1278,
	},
	Weather: Weather{
		BaseURL:     "https://api.openweathermap.org",
		Units:       "metric",
		MinInterval: 600,
	},
	News: News{
		BaseURL:     "https://newsapi.org",
		Country:     "us",
		Limit:       5,
		MinInterval: 900,
		Feeds: []string{
			"https://feeds.bbci.co.uk/news/rss.xml",
			"https://rss.nytimes.com/services/xml/rss/nyt/HomePage.xml",
			"https://feeds.npr.org/1001/rss.xml",
		},
	},
	Generator: Generator{
		BaseURL: "https://api.openai.com",
		Model:   "gpt-4o-mini",
		Timeout: 60,
	},
	Camera: Camera{
		Command: CaptureFswebcam,
		Device:  "/dev/video0",
		Width:   1280,
		Height:  720,
	},
	Printer: Printer{
		BaudRate: 9600,
		Dots:     384,
	},
	Service: Service{
		APIPort:   7480,
		Discovery: true,
		MQTT: MQTT{
			Topic: "glimmer/events",
		},
	},
}

type Instance struct {
	words    map[string][]string
	cfgPath  string
	cfgDir   string
	defaults Values
	vals     Values
	mu       syncutil.RWMutex
}

// NewConfig loads the config file from configDir, writing the defaults to
// disk first if no file exists yet. The GLIMMER_CFG environment variable
// overrides the file location.
//
//nolint:gocritic // config struct copied for immutability
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := os.Getenv(CfgEnv)
	log.Debug().Msgf("env config path: %s", cfgPath)

	if cfgPath == "" {
		cfgPath = filepath.Join(configDir, CfgFile)
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		cfgDir:   filepath.Dir(cfgPath),
		vals:     defaults,
		defaults: defaults,
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		log.Info().Msg("saving new default config to disk")

		err := os.MkdirAll(filepath.Dir(cfgPath), 0o750)
		if err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}

		err = cfg.Save()
		if err != nil {
			return nil, err
		}
	}

	err := cfg.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Load re-reads the config, secrets and word lists from disk. On any error
// the previously loaded values stay in place.
func (c *Instance) Load() error {
	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Start with defaults, then unmarshal file values on top.
	newVals := c.defaults
	newVals.Colors = copyColors(c.defaults.Colors)
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if newVals.ConfigSchema != SchemaVersion {
		log.Error().Msgf(
			"schema version mismatch: got %d, expecting %d",
			newVals.ConfigSchema,
			SchemaVersion,
		)
		return ErrSchemaMismatch
	}

	applySecrets(&newVals, filepath.Join(c.cfgDir, EnvFile))

	if err := validateValues(&newVals); err != nil {
		return err
	}

	words, err := loadWords(filepath.Join(c.cfgDir, WordsFile))
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.vals = newVals
	c.words = words
	c.mu.Unlock()

	log.Info().
		Str("path", c.cfgPath).
		Int("word_categories", len(words)).
		Msg("config loaded")

	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	c.vals.ConfigSchema = SchemaVersion

	if c.vals.Service.DeviceID == "" {
		newID := uuid.New().String()
		c.vals.Service.DeviceID = newID
		log.Info().Msgf("generated new device id: %s", newID)
	}

	// secrets live in the .env file and are never written back
	vals := c.vals
	vals.Weather.APIKey = ""
	vals.News.APIKey = ""
	vals.Generator.APIKey = ""

	data, err := toml.Marshal(&vals)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(c.cfgPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Path returns the location of the loaded config file.
func (c *Instance) Path() string {
	return c.cfgPath
}

// Dir returns the directory holding the config, word list, prompt and
// secrets files.
func (c *Instance) Dir() string {
	return c.cfgDir
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
	if enabled {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

func (c *Instance) ErrorReporting() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ErrorReporting
}

// ReportingDSN is the Sentry DSN errors are sent to when reporting is on.
func (c *Instance) ReportingDSN() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.ReportingDSN
}

func copyColors(src map[string]string) map[string]string {
	dst := make(map[string]string, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
