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

// Package api serves the HTTP control surface and the live event websocket.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/glimmerhome/glimmer/pkg/api/middleware"
	"github.com/glimmerhome/glimmer/pkg/api/models"
	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/content"
	"github.com/glimmerhome/glimmer/pkg/cycle"
	"github.com/glimmerhome/glimmer/pkg/devices/camera"
	"github.com/glimmerhome/glimmer/pkg/devices/display"
	"github.com/glimmerhome/glimmer/pkg/devices/printer"
	"github.com/glimmerhome/glimmer/pkg/render"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"
	"github.com/olahol/melody"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

type Cycle interface {
	Bundle() *content.Bundle
	LastUpdate() time.Time
	LastPushed() *cycle.Pushed
	State() cycle.State
	ForceRefresh()
}

type Display interface {
	NewMessage(fragments []render.Fragment) display.Message
	Push(ctx context.Context, msg display.Message) error
	Power(ctx context.Context, on bool) error
}

type Camera interface {
	Devices() ([]string, error)
	Capture(ctx context.Context) (camera.Photo, error)
	Latest() (camera.Photo, error)
	Read(photo camera.Photo) ([]byte, error)
}

type Printer interface {
	Print(ctx context.Context, job printer.Job) error
	TestPrint(ctx context.Context) error
	Config() config.Printer
}

// Env is everything the handlers act on.
type Env struct {
	StartedAt     time.Time
	Clock         clockwork.Clock
	Config        *config.Instance
	Cycle         Cycle
	Display       Display
	Camera        Camera
	Printer       Printer
	Poet          content.ImageGenerator
	Colorizer     func() *render.Colorizer
	Notifications chan<- models.Notification
}

// NewRouter builds the API routes. The websocket endpoint is served by
// events.
func NewRouter(env *Env, limiter *middleware.IPRateLimiter, events *melody.Melody) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.HTTPIPFilterMiddleware(middleware.NewIPFilter(env.Config.AllowedIPs())))
	r.Use(middleware.HTTPRateLimitMiddleware(limiter))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: env.Config.AllowedOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/api/events", func(w http.ResponseWriter, r *http.Request) {
		if err := events.HandleRequest(w, r); err != nil {
			log.Error().Err(err).Msg("handling websocket request")
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.NoCache)
		r.Use(chimiddleware.Timeout(config.APIRequestTimeout))

		r.Get("/api/status", handleStatus(env))
		r.Get("/api/content", handleContent(env))
		r.Post("/api/content/refresh", handleRefresh(env))
		r.Post("/api/display/push", handlePush(env))
		r.Post("/api/display/power", handlePower(env))
		r.Get("/api/camera/devices", handleCameraDevices(env))
		r.Post("/api/camera/capture", handleCapture(env))
		r.Get("/api/camera/latest", handleLatestPhoto(env))
		r.Get("/api/printer/status", handlePrinterStatus(env))
		r.Post("/api/printer/print", handlePrint(env))
		r.Post("/api/config/schedule", handleSchedule(env))
	})

	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.NoCache)
		r.Use(chimiddleware.Timeout(config.PhotoPoemTimeout))

		r.Post("/api/photo/poem", handlePhotoPoem(env))
	})

	return r
}

// NewEvents creates the websocket hub. Clients may send "ping" as a
// heartbeat; everything else they send is ignored.
func NewEvents() *melody.Melody {
	m := melody.New()
	m.Upgrader.CheckOrigin = func(*http.Request) bool { return true }
	m.HandleMessage(func(s *melody.Session, msg []byte) {
		if string(msg) == "ping" {
			if err := s.Write([]byte("pong")); err != nil {
				log.Debug().Err(err).Msg("sending pong")
			}
		}
	})
	return m
}

// broadcastNotifications forwards notifications to every websocket client
// until the channel closes or ctx is cancelled.
func broadcastNotifications(ctx context.Context, events *melody.Melody, notifications <-chan models.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case notif, ok := <-notifications:
			if !ok {
				return
			}
			data, err := json.Marshal(notif)
			if err != nil {
				log.Error().Err(err).Msg("marshalling notification")
				continue
			}
			if err := events.Broadcast(data); err != nil {
				log.Debug().Err(err).Msg("broadcasting notification")
			}
		}
	}
}

// Serve runs the API on the configured port until ctx is cancelled.
func Serve(ctx context.Context, env *Env, notifications <-chan models.Notification) error {
	limiter := middleware.NewIPRateLimiter(env.Clock)
	limiter.StartCleanup(ctx)

	events := NewEvents()
	go broadcastNotifications(ctx, events, notifications)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(env.Config.APIPort()),
		Handler:           NewRouter(env, limiter, events),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = events.Close()
		return fmt.Errorf("API server failed: %w", err)
	case <-ctx.Done():
	}

	if err := events.Close(); err != nil {
		log.Debug().Err(err).Msg("closing websocket sessions")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API server shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("API server failed: %w", err)
	}
	log.Info().Msg("API server stopped")
	return nil
}
