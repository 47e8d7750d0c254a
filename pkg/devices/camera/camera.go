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

// Package camera captures still photos through an external capture tool and
// keeps them in a photo directory.
package camera

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strconv"
	"time"

	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/helpers/command"
	"github.com/glimmerhome/glimmer/pkg/helpers/syncutil"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	devicePattern  = "/dev/video*"
	photoExt       = ".jpg"
	captureTimeout = 30 * time.Second
)

var (
	ErrNoCamera = errors.New("no camera available")
	ErrNoPhoto  = errors.New("no photo captured yet")
)

type Photo struct {
	Taken time.Time `json:"taken"`
	ID    string    `json:"id"`
	Path  string    `json:"path"`
	Size  int       `json:"size"`
}

// Manager owns the camera. Captures, settings changes and device
// enumeration are serialized.
type Manager struct {
	fs       afero.Fs
	exec     command.Executor
	clock    clockwork.Clock
	latest   *Photo
	photoDir string
	settings config.Camera
	mu       syncutil.Mutex
}

// NewManager creates a camera manager storing photos in photoDir on fs. The
// same fs is used to look up video devices.
func NewManager(
	fs afero.Fs,
	exec command.Executor,
	clock clockwork.Clock,
	photoDir string,
	settings config.Camera,
) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{
		fs:       fs,
		exec:     exec,
		clock:    clock,
		photoDir: photoDir,
		settings: settings,
	}
}

// Devices lists the video capture devices present on the system.
func (m *Manager) Devices() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.devices()
}

func (m *Manager) devices() ([]string, error) {
	matches, err := afero.Glob(m.fs, devicePattern)
	if err != nil {
		return nil, fmt.Errorf("failed to list video devices: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// Capture takes a still photo with the configured tool and stores it.
func (m *Manager) Capture(ctx context.Context) (Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkDevice(); err != nil {
		return Photo{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, captureTimeout)
	defer cancel()

	name, args := captureArgs(m.settings)
	log.Debug().Str("command", name).Strs("args", args).Msg("capturing photo")

	data, err := m.exec.Output(ctx, name, args...)
	if err != nil {
		return Photo{}, fmt.Errorf("failed to capture photo with %s: %w", name, err)
	}
	if len(data) == 0 {
		return Photo{}, fmt.Errorf("%s returned no image data", name)
	}

	if err := m.fs.MkdirAll(m.photoDir, 0o750); err != nil {
		return Photo{}, fmt.Errorf("failed to create photo directory: %w", err)
	}

	id := uuid.New().String()
	photo := Photo{
		ID:    id,
		Path:  path.Join(m.photoDir, id+photoExt),
		Taken: m.clock.Now(),
		Size:  len(data),
	}
	if err := afero.WriteFile(m.fs, photo.Path, data, 0o600); err != nil {
		return Photo{}, fmt.Errorf("failed to save photo: %w", err)
	}
	m.latest = &photo

	log.Info().Str("id", id).Int("bytes", len(data)).Msg("captured photo")
	return photo, nil
}

// checkDevice fails when the configured capture tool needs a V4L device that
// is not present. libcamera-still addresses the camera itself.
func (m *Manager) checkDevice() error {
	if m.settings.Command == config.CaptureLibcam {
		return nil
	}
	devices, err := m.devices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return ErrNoCamera
	}
	if m.settings.Device == "" {
		return nil
	}
	for _, d := range devices {
		if d == m.settings.Device {
			return nil
		}
	}
	return fmt.Errorf("%w: %s not found", ErrNoCamera, m.settings.Device)
}

// captureArgs builds the command line that writes a JPEG to stdout.
func captureArgs(s config.Camera) (name string, args []string) {
	width, height := strconv.Itoa(s.Width), strconv.Itoa(s.Height)
	switch s.Command {
	case config.CaptureLibcam:
		return config.CaptureLibcam, []string{
			"--nopreview",
			"--timeout", "1000",
			"--width", width,
			"--height", height,
			"--encoding", "jpg",
			"--output", "-",
		}
	default:
		args := []string{}
		if s.Device != "" {
			args = append(args, "--device", s.Device)
		}
		args = append(args,
			"--resolution", width+"x"+height,
			"--no-banner",
			"--jpeg", "90",
			"--quiet",
			"-",
		)
		return config.CaptureFswebcam, args
	}
}

// Latest returns the most recent photo taken since startup.
func (m *Manager) Latest() (Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.latest == nil {
		return Photo{}, ErrNoPhoto
	}
	return *m.latest, nil
}

// Read returns the image data of a stored photo.
func (m *Manager) Read(photo Photo) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, err := afero.ReadFile(m.fs, photo.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNoPhoto, photo.ID)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read photo: %w", err)
	}
	return data, nil
}

func (m *Manager) Reconfigure(settings config.Camera) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings != settings {
		log.Info().
			Str("command", settings.Command).
			Str("device", settings.Device).
			Msgf("camera reconfigured to %dx%d", settings.Width, settings.Height)
	}
	m.settings = settings
}

func (m *Manager) Config() config.Camera {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}
