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

package helpers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDirectories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		exists bool
	}{
		{name: "creates nested directories", exists: false},
		{name: "works when directories already exist", exists: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			root := t.TempDir()
			dirs := []string{
				filepath.Join(root, "config", "nested"),
				filepath.Join(root, "data", "photos"),
			}
			if tt.exists {
				for _, d := range dirs {
					require.NoError(t, os.MkdirAll(d, 0o750))
				}
			}

			require.NoError(t, EnsureDirectories(dirs...))
			for _, d := range dirs {
				info, err := os.Stat(d)
				require.NoError(t, err)
				assert.True(t, info.IsDir())
			}
		})
	}
}

func TestEnsureDirectories_FileInTheWay(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := EnsureDirectories(filepath.Join(blocker, "child"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create directory")
}

func TestAppDirsUseAppName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, AppName, filepath.Base(ConfigDir()))
	assert.Equal(t, AppName, filepath.Base(DataDir()))
	assert.Equal(t, AppName, filepath.Base(StateDir()))
}
