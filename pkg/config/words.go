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
	"strings"

	"gopkg.in/yaml.v3"
)

// wordsFile is the on-disk shape of words.yaml:
//
//	categories:
//	  greetings: [hello, hi, morning]
//	  weather: [sun, rain, snow]
type wordsFile struct {
	Categories map[string][]string `yaml:"categories"`
}

func loadWords(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is inside the config dir
	if errors.Is(err, os.ErrNotExist) {
		return map[string][]string{}, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read words file: %w", err)
	}

	var wf wordsFile
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("failed to parse words file: %w", err)
	}

	words := make(map[string][]string, len(wf.Categories))
	for category, list := range wf.Categories {
		if category == ColorDefault || category == ColorNumbers {
			return nil, fmt.Errorf("words file: category %q is reserved", category)
		}
		cleaned := make([]string, 0, len(list))
		for _, w := range list {
			w = strings.TrimSpace(w)
			if w != "" {
				cleaned = append(cleaned, w)
			}
		}
		words[category] = cleaned
	}
	return words, nil
}

// SaveWords replaces the word category lists and writes them to words.yaml.
func (c *Instance) SaveWords(words map[string][]string) error {
	for category := range words {
		if category == ColorDefault || category == ColorNumbers {
			return fmt.Errorf("category %q is reserved", category)
		}
	}

	data, err := yaml.Marshal(wordsFile{Categories: words})
	if err != nil {
		return fmt.Errorf("failed to marshal words: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := filepath.Join(c.cfgDir, WordsFile)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write words file: %w", err)
	}
	c.words = make(map[string][]string, len(words))
	for k, v := range words {
		c.words[k] = append([]string(nil), v...)
	}
	return nil
}
