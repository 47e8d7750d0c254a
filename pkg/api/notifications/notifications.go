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

// Package notifications builds and queues the events announced to websocket
// and MQTT subscribers.
package notifications

import (
	"encoding/json"

	"github.com/glimmerhome/glimmer/pkg/api/models"
	"github.com/glimmerhome/glimmer/pkg/content"
	"github.com/glimmerhome/glimmer/pkg/cycle"
	"github.com/glimmerhome/glimmer/pkg/devices/camera"
	"github.com/rs/zerolog/log"
)

// send queues a notification without blocking. A full queue drops it; the
// display loop must never wait on subscribers.
func send(ns chan<- models.Notification, method string, payload any) {
	var params json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Error().Err(err).Str("method", method).Msg("failed to marshal notification")
			return
		}
		params = data
	}

	select {
	case ns <- models.Notification{Method: method, Params: params}:
	default:
		log.Warn().Str("method", method).Msg("notification queue full, dropping notification")
	}
}

func ContentRefreshed(ns chan<- models.Notification, b *content.Bundle) {
	counts := make(map[string]int, len(content.Categories))
	for c, n := range b.Counts() {
		counts[string(c)] = n
	}
	params := models.RefreshedParams{
		Counts:      counts,
		GeneratedOn: b.GeneratedOn,
		Fallback:    b.Fallback,
	}
	if b.Cause != nil {
		params.Cause = b.Cause.Error()
	}
	send(ns, models.NotificationContentRefreshed, params)
}

func DisplayPushed(ns chan<- models.Notification, p cycle.Pushed) {
	send(ns, models.NotificationDisplayPushed, models.PushedResponse{
		At:   p.At,
		ID:   p.Record.ID,
		Text: p.Record.Text,
	})
}

func PhotoCaptured(ns chan<- models.Notification, p camera.Photo) {
	send(ns, models.NotificationPhotoCaptured, models.PhotoResponse{
		ID:    p.ID,
		Taken: p.Taken,
		Size:  p.Size,
	})
}

func PrintCompleted(ns chan<- models.Notification, params models.PrintedParams) {
	send(ns, models.NotificationPrintCompleted, params)
}
