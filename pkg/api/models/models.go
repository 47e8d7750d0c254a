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

// Package models holds the HTTP API and notification payload types.
package models

import (
	"encoding/json"
	"time"
)

const (
	NotificationContentRefreshed = "content.refreshed"
	NotificationDisplayPushed    = "display.pushed"
	NotificationPhotoCaptured    = "photo.captured"
	NotificationPrintCompleted   = "print.completed"
)

// Notification is an event fanned out to websocket clients and MQTT.
type Notification struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

// Response is the envelope of every HTTP API reply.
type Response struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	OK     bool   `json:"ok"`
}

type PushRequest struct {
	Text     string `json:"text" validate:"required,printable,max=500"`
	Duration int    `json:"duration,omitempty" validate:"omitempty,gte=1,lte=25"`
}

type PowerRequest struct {
	On *bool `json:"on" validate:"required"`
}

type PrintRequest struct {
	// Photo selects the image: empty for text only, "latest" for the last
	// capture, "new" to capture one first.
	Photo string   `json:"photo,omitempty" validate:"omitempty,oneof=latest new"`
	Lines []string `json:"lines" validate:"required,min=1,max=40,dive,printable,max=200"`
}

type PhotoPoemRequest struct {
	Prompt string `json:"prompt,omitempty" validate:"omitempty,max=2000"`
}

type ScheduleRequest struct {
	StartHour *int `json:"start_hour" validate:"required,gte=0,lte=23"`
	EndHour   *int `json:"end_hour" validate:"required,gte=0,lte=23"`
}

type ScheduleResponse struct {
	StartHour int  `json:"start_hour"`
	EndHour   int  `json:"end_hour"`
	InWindow  bool `json:"in_window"`
}

type PrinterStatusResponse struct {
	Port  string `json:"port"`
	Ready bool   `json:"ready"`
}

type PhotoPoemResponse struct {
	Poem    string `json:"poem"`
	JobID   string `json:"job_id"`
	PhotoID string `json:"photo_id"`
}

type StatusResponse struct {
	StartedAt     time.Time       `json:"started_at"`
	LastUpdate    *time.Time      `json:"last_update,omitempty"`
	LastPushed    *PushedResponse `json:"last_pushed,omitempty"`
	Counts        map[string]int  `json:"counts,omitempty"`
	Addresses     []string        `json:"addresses,omitempty"`
	Version       string          `json:"version"`
	DeviceID      string          `json:"device_id"`
	State         string          `json:"state"`
	Uptime        float64         `json:"uptime_seconds"`
	ServiceUptime float64         `json:"service_uptime_seconds"`
	InWindow      bool            `json:"in_window"`
	ClockReliable bool            `json:"clock_reliable"`
	Fallback      bool            `json:"fallback"`
}

type PushedResponse struct {
	At   time.Time `json:"at"`
	ID   string    `json:"id"`
	Text string    `json:"text"`
}

type RefreshedParams struct {
	Counts      map[string]int `json:"counts"`
	GeneratedOn time.Time      `json:"generated_on"`
	Cause       string         `json:"cause,omitempty"`
	Fallback    bool           `json:"fallback"`
}

type PhotoResponse struct {
	Taken time.Time `json:"taken"`
	ID    string    `json:"id"`
	Size  int       `json:"size"`
}

type PrintedParams struct {
	JobID   string `json:"job_id"`
	PhotoID string `json:"photo_id,omitempty"`
	Lines   int    `json:"lines"`
}
