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
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const reloadDebounce = 500 * time.Millisecond

// Watch reloads the config whenever config.toml, words.yaml or .env change
// on disk, calling onReload after each successful reload. Editors often write
// a file in several steps so events are debounced. A reload that fails
// validation is logged and the previous values stay active. Watch returns
// once the watcher is running; it stops when ctx is cancelled.
func (c *Instance) Watch(ctx context.Context, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}

	if err := watcher.Add(c.cfgDir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch config dir (%s): %w", c.cfgDir, err)
	}

	watched := map[string]bool{
		filepath.Base(c.cfgPath): true,
		WordsFile:                true,
		EnvFile:                  true,
	}

	reload := func() {
		if err := c.Load(); err != nil {
			log.Error().Err(err).Msg("config reload failed, keeping previous values")
			return
		}
		if onReload != nil {
			onReload()
		}
	}

	go func() {
		defer func() {
			if closeErr := watcher.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("error closing config watcher")
			}
		}()

		var pending *time.Timer
		for {
			select {
			case <-ctx.Done():
				if pending != nil {
					pending.Stop()
				}
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !watched[filepath.Base(event.Name)] {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				log.Debug().Str("file", event.Name).Msg("config file changed")
				if pending != nil {
					pending.Stop()
				}
				pending = time.AfterFunc(reloadDebounce, reload)
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error().Err(watchErr).Msg("error in config watcher")
			}
		}
	}()

	log.Info().Str("dir", c.cfgDir).Msg("watching config for changes")
	return nil
}
