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

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/glimmerhome/glimmer/pkg/api/models"
	"github.com/glimmerhome/glimmer/pkg/api/notifications"
	"github.com/glimmerhome/glimmer/pkg/api/validation"
	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/content"
	"github.com/glimmerhome/glimmer/pkg/devices/camera"
	"github.com/glimmerhome/glimmer/pkg/devices/display"
	"github.com/glimmerhome/glimmer/pkg/devices/printer"
	"github.com/glimmerhome/glimmer/pkg/helpers"
	"github.com/glimmerhome/glimmer/pkg/schedule"
	"github.com/google/uuid"
	"github.com/mackerelio/go-osstat/uptime"
	"github.com/rs/zerolog/log"
)

var (
	errNoContent = errors.New("no content generated yet")
	errNoPoet    = errors.New("no image generator configured")
)

const (
	maxPushSeconds = 25
	poemSeparator  = "----------"
)

func writeJSON(w http.ResponseWriter, status int, resp models.Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Debug().Err(err).Msg("failed to write response")
	}
}

func writeResult(w http.ResponseWriter, status int, result any) {
	writeJSON(w, status, models.Response{OK: true, Result: result})
}

// writeError maps err to a status code and reports it as {ok:false}.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	var ve *validation.Error
	switch {
	case errors.As(err, &ve),
		errors.Is(err, validation.ErrMissingParams),
		errors.Is(err, validation.ErrInvalidParams):
		status = http.StatusBadRequest
	case errors.Is(err, errNoContent), errors.Is(err, camera.ErrNoPhoto):
		status = http.StatusNotFound
	case errors.Is(err, display.ErrNotConnected),
		errors.Is(err, printer.ErrNotConnected),
		errors.Is(err, camera.ErrNoCamera),
		errors.Is(err, errNoPoet):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		log.Warn().Err(err).Msg("device operation failed")
	}
	writeJSON(w, status, models.Response{Error: err.Error()})
}

func handleStatus(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		now := env.Clock.Now()
		resp := models.StatusResponse{
			Version:       config.AppVersion,
			DeviceID:      env.Config.DeviceID(),
			State:         env.Cycle.State().String(),
			StartedAt:     env.StartedAt,
			ServiceUptime: now.Sub(env.StartedAt).Seconds(),
			InWindow:      schedule.FromConfig(env.Config).InWindow(now),
			ClockReliable: helpers.IsClockReliable(now),
			Addresses:     helpers.LocalIPs(),
		}

		if up, err := uptime.Get(); err == nil {
			resp.Uptime = up.Seconds()
		} else {
			log.Debug().Err(err).Msg("failed to read system uptime")
		}

		if last := env.Cycle.LastUpdate(); !last.IsZero() {
			resp.LastUpdate = &last
		}
		if b := env.Cycle.Bundle(); b != nil {
			resp.Fallback = b.Fallback
			resp.Counts = make(map[string]int)
			for c, n := range b.Counts() {
				resp.Counts[string(c)] = n
			}
		}
		if p := env.Cycle.LastPushed(); p != nil {
			resp.LastPushed = &models.PushedResponse{At: p.At, ID: p.Record.ID, Text: p.Record.Text}
		}

		writeResult(w, http.StatusOK, resp)
	}
}

func handleContent(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		b := env.Cycle.Bundle()
		if b == nil {
			writeError(w, errNoContent)
			return
		}
		writeResult(w, http.StatusOK, b)
	}
}

func handleRefresh(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		env.Cycle.ForceRefresh()
		log.Info().Msg("content refresh requested")
		writeResult(w, http.StatusAccepted, nil)
	}
}

func handlePush(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.PushRequest
		if err := validation.Decode(r.Body, &req); err != nil {
			writeError(w, err)
			return
		}

		fragments := env.Colorizer().Fragments(req.Text)
		msg := env.Display.NewMessage(fragments)
		if req.Duration > 0 {
			msg.Duration = req.Duration
		}
		// the push blocks for its duration and must finish inside the
		// request timeout
		msg.Duration = min(msg.Duration, maxPushSeconds)

		if err := env.Display.Push(r.Context(), msg); err != nil {
			writeError(w, err)
			return
		}
		writeResult(w, http.StatusOK, fragments)
	}
}

func handlePower(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.PowerRequest
		if err := validation.Decode(r.Body, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := env.Display.Power(r.Context(), *req.On); err != nil {
			writeError(w, err)
			return
		}
		writeResult(w, http.StatusOK, nil)
	}
}

func handleCameraDevices(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		devices, err := env.Camera.Devices()
		if err != nil {
			writeError(w, err)
			return
		}
		if devices == nil {
			devices = []string{}
		}
		writeResult(w, http.StatusOK, devices)
	}
}

func photoResponse(p camera.Photo) models.PhotoResponse {
	return models.PhotoResponse{ID: p.ID, Taken: p.Taken, Size: p.Size}
}

func handleCapture(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		photo, err := env.Camera.Capture(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		notifications.PhotoCaptured(env.Notifications, photo)
		writeResult(w, http.StatusOK, photoResponse(photo))
	}
}

func handleLatestPhoto(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		photo, err := env.Camera.Latest()
		if err != nil {
			writeError(w, err)
			return
		}
		data, err := env.Camera.Read(photo)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", http.DetectContentType(data))
		w.Header().Set("Last-Modified", photo.Taken.UTC().Format(http.TimeFormat))
		if _, err := w.Write(data); err != nil {
			log.Debug().Err(err).Msg("failed to write photo")
		}
	}
}

func handlePrint(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.PrintRequest
		if err := validation.Decode(r.Body, &req); err != nil {
			writeError(w, err)
			return
		}

		job := printer.Job{Lines: req.Lines}
		var photoID string
		if req.Photo != "" {
			var photo camera.Photo
			var err error
			if req.Photo == "new" {
				photo, err = env.Camera.Capture(r.Context())
				if err == nil {
					notifications.PhotoCaptured(env.Notifications, photo)
				}
			} else {
				photo, err = env.Camera.Latest()
			}
			if err != nil {
				writeError(w, err)
				return
			}
			if job.Photo, err = env.Camera.Read(photo); err != nil {
				writeError(w, err)
				return
			}
			photoID = photo.ID
		}

		if err := env.Printer.Print(r.Context(), job); err != nil {
			writeError(w, err)
			return
		}

		params := models.PrintedParams{
			JobID:   uuid.New().String(),
			PhotoID: photoID,
			Lines:   len(req.Lines),
		}
		notifications.PrintCompleted(env.Notifications, params)
		log.Info().
			Str("job", params.JobID).
			Str("lines", strings.Join(req.Lines, " / ")).
			Msg("print job completed")
		writeResult(w, http.StatusOK, params)
	}
}

// handlePrinterStatus prints a test page; the printer is ready if that
// succeeds.
func handlePrinterStatus(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := env.Printer.TestPrint(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		writeResult(w, http.StatusOK, models.PrinterStatusResponse{
			Port:  env.Printer.Config().Port,
			Ready: true,
		})
	}
}

// handlePhotoPoem captures a photo, asks the vision model for a poem about
// it and prints a separator, the photo and the poem.
func handlePhotoPoem(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.PhotoPoemRequest
		err := validation.Decode(r.Body, &req)
		if err != nil && !errors.Is(err, validation.ErrMissingParams) {
			writeError(w, err)
			return
		}
		if env.Poet == nil {
			writeError(w, errNoPoet)
			return
		}
		prompt := req.Prompt
		if prompt == "" {
			prompt = env.Config.PhotoPrompt()
		}

		photo, err := env.Camera.Capture(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		notifications.PhotoCaptured(env.Notifications, photo)

		data, err := env.Camera.Read(photo)
		if err != nil {
			writeError(w, err)
			return
		}

		poem, err := content.PhotoPoem(r.Context(), env.Poet, prompt, data)
		if err != nil {
			writeError(w, err)
			return
		}

		lines := strings.Split(poem, "\n")
		job := printer.Job{Header: []string{poemSeparator}, Photo: data, Lines: lines}
		if err := env.Printer.Print(r.Context(), job); err != nil {
			writeError(w, err)
			return
		}

		params := models.PrintedParams{
			JobID:   uuid.New().String(),
			PhotoID: photo.ID,
			Lines:   len(lines),
		}
		notifications.PrintCompleted(env.Notifications, params)
		log.Info().Str("job", params.JobID).Str("photo", photo.ID).Msg("printed photo poem")
		writeResult(w, http.StatusOK, models.PhotoPoemResponse{
			Poem:    poem,
			JobID:   params.JobID,
			PhotoID: photo.ID,
		})
	}
}

// handleSchedule changes the active hours and saves the config file.
func handleSchedule(env *Env) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ScheduleRequest
		if err := validation.Decode(r.Body, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := env.Config.SetActiveHours(*req.StartHour, *req.EndHour); err != nil {
			writeError(w, fmt.Errorf("%w: %w", validation.ErrInvalidParams, err))
			return
		}
		if err := env.Config.Save(); err != nil {
			log.Error().Err(err).Msg("failed to save schedule")
			writeJSON(w, http.StatusInternalServerError, models.Response{Error: err.Error()})
			return
		}

		sched := env.Config.Schedule()
		log.Info().Int("start", sched.StartHour).Int("end", sched.EndHour).Msg("active hours changed")
		writeResult(w, http.StatusOK, models.ScheduleResponse{
			StartHour: sched.StartHour,
			EndHour:   sched.EndHour,
			InWindow:  schedule.FromConfig(env.Config).InWindow(env.Clock.Now()),
		})
	}
}
