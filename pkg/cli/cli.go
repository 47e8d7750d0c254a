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

// Package cli holds the command line flags shared by the glimmer binary and
// the one-shot commands that talk to a running service.
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/glimmerhome/glimmer/internal/telemetry"
	"github.com/glimmerhome/glimmer/pkg/api/client"
	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/helpers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Flags struct {
	Config  *string
	Push    *string
	Wait    *string
	Daemon  *bool
	Version *bool
	Status  *bool
	Refresh *bool
}

// SetupFlags registers the flags on fs.
func SetupFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		Daemon: fs.Bool(
			"daemon",
			false,
			"run the service in the foreground, logging to stderr",
		),
		Config: fs.String(
			"config",
			"",
			"path to config.toml (overrides "+config.CfgEnv+")",
		),
		Version: fs.Bool(
			"version",
			false,
			"print version and exit",
		),
		Status: fs.Bool(
			"status",
			false,
			"print the running service's status as JSON",
		),
		Refresh: fs.Bool(
			"refresh",
			false,
			"ask the running service to regenerate content",
		),
		Push: fs.String(
			"push",
			"",
			"show text on the display now",
		),
		Wait: fs.String(
			"wait",
			"",
			"wait for a notification method and print it",
		),
	}
}

// Pre actions flags that need no config or logging. It reports whether
// the program should exit.
func (f *Flags) Pre(out io.Writer) (exit bool) {
	if *f.Version {
		_, _ = fmt.Fprintf(out, "Glimmer v%s\n", config.AppVersion)
		return true
	}
	if *f.Config != "" {
		// NewConfig reads the path from the environment
		_ = os.Setenv(config.CfgEnv, *f.Config)
	}
	return false
}

// Post runs a one-shot command against a running service. It reports
// whether a command was run.
func (f *Flags) Post(ctx context.Context, c *client.Client, out io.Writer) (bool, error) {
	switch {
	case *f.Status:
		status, err := c.Status(ctx)
		if err != nil {
			return true, fmt.Errorf("error getting status: %w", err)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			return true, fmt.Errorf("error encoding status: %w", err)
		}
		return true, nil
	case *f.Refresh:
		if err := c.Refresh(ctx); err != nil {
			return true, fmt.Errorf("error requesting refresh: %w", err)
		}
		_, _ = fmt.Fprintln(out, "refresh requested")
		return true, nil
	case *f.Push != "":
		if err := c.Push(ctx, *f.Push); err != nil {
			return true, fmt.Errorf("error pushing text: %w", err)
		}
		return true, nil
	case *f.Wait != "":
		n, err := c.WaitNotification(ctx, -1, *f.Wait)
		if err != nil {
			return true, fmt.Errorf("error waiting for notification: %w", err)
		}
		data, err := json.Marshal(n)
		if err != nil {
			return true, fmt.Errorf("error encoding notification: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(data))
		return true, nil
	}
	return false, nil
}

// Setup creates the data directories, starts logging and loads the config.
//
//nolint:gocritic // config struct copied for immutability
func Setup(defaults config.Values, writers []io.Writer) (*config.Instance, error) {
	err := helpers.EnsureDirectories(
		helpers.ConfigDir(),
		helpers.StateDir(),
		filepath.Join(helpers.DataDir(), config.PhotosDir),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating directories: %w", err)
	}

	if err := helpers.InitLogging(helpers.StateDir(), writers); err != nil {
		return nil, fmt.Errorf("error initializing logging: %w", err)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(), defaults)
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := telemetry.Init(telemetry.Options{
		Enabled:  cfg.ErrorReporting(),
		DSN:      cfg.ReportingDSN(),
		DeviceID: cfg.DeviceID(),
		Version:  config.AppVersion,
	}); err != nil {
		log.Warn().Err(err).Msg("failed to initialize error reporting")
	}

	return cfg, nil
}
