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

// Package printer sends print jobs to a serial thermal receipt printer.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

var ErrNotConnected = errors.New("printer not configured")

// Job is one print: optional header lines, an optional photo (JPEG or PNG),
// then lines of text.
type Job struct {
	Header []string
	Lines  []string
	Photo  []byte
}

var testPage = Job{Lines: []string{"=== Test Print ===", "Thermal Printer OK"}}

// OpenFunc opens the printer port.
type OpenFunc func(port string, baudRate int) (io.WriteCloser, error)

// OpenSerial opens a real serial port with 8N1 framing.
func OpenSerial(port string, baudRate int) (io.WriteCloser, error) {
	p, err := serial.Open(port, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", port, err)
	}
	return p, nil
}

// Ports lists the serial ports present on the system.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// Manager owns the printer port. The port is opened on first use and kept
// open; a failed write closes it and the job is retried once on a freshly
// opened port.
type Manager struct {
	open     OpenFunc
	port     io.WriteCloser
	settings config.Printer
	mu       syncutil.Mutex
}

func NewManager(open OpenFunc, settings config.Printer) *Manager {
	if open == nil {
		open = OpenSerial
	}
	return &Manager{
		open:     open,
		settings: settings,
	}
}

func (m *Manager) Print(ctx context.Context, job Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.settings.Port == "" {
		return ErrNotConnected
	}

	data, err := encodeJob(job, m.settings.Dots)
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("print cancelled: %w", err)
	}

	err = m.write(data)
	if err != nil {
		log.Warn().Err(err).Str("port", m.settings.Port).Msg("printer write failed, reopening port")
		m.closePort()
		err = m.write(data)
	}
	if err != nil {
		m.closePort()
		return err
	}

	log.Info().
		Int("lines", len(job.Lines)).
		Bool("photo", len(job.Photo) > 0).
		Int("bytes", len(data)).
		Msg("printed job")
	return nil
}

func (m *Manager) write(data []byte) error {
	if m.port == nil {
		port, err := m.open(m.settings.Port, m.settings.BaudRate)
		if err != nil {
			return err
		}
		m.port = port
	}
	if _, err := m.port.Write(data); err != nil {
		return fmt.Errorf("failed to write to printer: %w", err)
	}
	return nil
}

func (m *Manager) closePort() {
	if m.port == nil {
		return
	}
	if err := m.port.Close(); err != nil {
		log.Debug().Err(err).Msg("error closing printer port")
	}
	m.port = nil
}

// TestPrint prints a short test page, which tells whether the printer is
// reachable.
func (m *Manager) TestPrint(ctx context.Context) error {
	return m.Print(ctx, testPage)
}

// Reconfigure applies new settings. A changed port or baud rate closes the
// open port so the next job reopens it.
func (m *Manager) Reconfigure(settings config.Printer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if settings.Port != m.settings.Port || settings.BaudRate != m.settings.BaudRate {
		m.closePort()
		log.Info().Str("port", settings.Port).Int("baud", settings.BaudRate).Msg("printer reconfigured")
	}
	m.settings = settings
}

func (m *Manager) Config() config.Printer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings
}

// Close releases the port.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closePort()
}
