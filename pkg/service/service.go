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

// Package service wires the content generator, display cycle, device
// managers and API into one running controller.
package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/glimmerhome/glimmer/pkg/api"
	"github.com/glimmerhome/glimmer/pkg/api/models"
	"github.com/glimmerhome/glimmer/pkg/api/notifications"
	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/content"
	"github.com/glimmerhome/glimmer/pkg/cycle"
	"github.com/glimmerhome/glimmer/pkg/devices/camera"
	"github.com/glimmerhome/glimmer/pkg/devices/display"
	"github.com/glimmerhome/glimmer/pkg/devices/printer"
	"github.com/glimmerhome/glimmer/pkg/helpers"
	"github.com/glimmerhome/glimmer/pkg/helpers/command"
	"github.com/glimmerhome/glimmer/pkg/ratelimit"
	"github.com/glimmerhome/glimmer/pkg/render"
	"github.com/glimmerhome/glimmer/pkg/schedule"
	"github.com/glimmerhome/glimmer/pkg/service/broker"
	"github.com/glimmerhome/glimmer/pkg/service/discovery"
	"github.com/glimmerhome/glimmer/pkg/service/publishers"
	"github.com/glimmerhome/glimmer/pkg/shared/httpclient"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

const (
	cycleStopTimeout     = 10 * time.Second
	notificationBuffer   = 100
	subscriptionBuffer   = 100
	displayClientTimeout = 10 * time.Second
)

// Deps are the external collaborators Start builds by default. Tests swap
// them for fakes.
type Deps struct {
	Clock    clockwork.Clock
	Fs       afero.Fs
	Exec     command.Executor
	Open     printer.OpenFunc
	HTTP     *httpclient.Client
	PhotoDir string
}

func (d *Deps) withDefaults() {
	if d.Clock == nil {
		d.Clock = clockwork.NewRealClock()
	}
	if d.Fs == nil {
		d.Fs = afero.NewOsFs()
	}
	if d.Exec == nil {
		d.Exec = &command.RealExecutor{}
	}
	if d.Open == nil {
		d.Open = printer.OpenSerial
	}
	if d.HTTP == nil {
		d.HTTP = httpclient.NewClient()
	}
	if d.PhotoDir == "" {
		d.PhotoDir = filepath.Join(helpers.DataDir(), config.PhotosDir)
	}
}

// Start brings the controller up and returns a stop function plus a
// channel closed once shutdown has finished.
func Start(cfg *config.Instance, deps Deps) (stop func() error, done <-chan struct{}, err error) {
	deps.withDefaults()
	log.Info().Msgf("version: %s", config.AppVersion)
	if now := deps.Clock.Now(); !helpers.IsClockReliable(now) {
		log.Warn().Time("now", now).Msg("system clock looks unset, schedule and prompts will be wrong until it syncs")
	}

	if err := deps.Fs.MkdirAll(deps.PhotoDir, 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create photo directory: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	ns := make(chan models.Notification, notificationBuffer)
	notifBroker := broker.NewBroker(ctx, ns)
	notifBroker.Start()

	limiter := ratelimit.NewDefault(deps.Clock)
	applyLimits(limiter, cfg)

	up := &upstreams{cfg: cfg, http: deps.HTTP}
	generator := content.NewGenerator(content.Deps{
		Clock:    deps.Clock,
		Settings: cfg,
		Weather:  up,
		News:     up,
		Text:     up,
		Limiter:  limiter,
	})

	displayMgr := display.NewManager(
		deps.Clock,
		httpclient.NewClientWithTimeout(displayClientTimeout),
		cfg.Display(),
	)
	cameraMgr := camera.NewManager(deps.Fs, deps.Exec, deps.Clock, deps.PhotoDir, cfg.Camera())
	printerMgr := printer.NewManager(deps.Open, cfg.Printer())

	var colorizer atomic.Pointer[render.Colorizer]
	colorizer.Store(render.NewColorizer(cfg.Words(), cfg.Colors()))

	displayCycle := cycle.New(
		deps.Clock,
		generator,
		displayMgr,
		func() cycle.Options { return cycleOptions(cfg, colorizer.Load()) },
		cycle.OnRefresh(func(b *content.Bundle) {
			notifications.ContentRefreshed(ns, b)
		}),
		cycle.OnPush(func(p cycle.Pushed) {
			notifications.DisplayPushed(ns, p)
		}),
	)

	log.Info().Msg("watching config for changes")
	err = cfg.Watch(ctx, func() {
		displayMgr.Reconfigure(cfg.Display())
		cameraMgr.Reconfigure(cfg.Camera())
		printerMgr.Reconfigure(cfg.Printer())
		applyLimits(limiter, cfg)
		colorizer.Store(render.NewColorizer(cfg.Words(), cfg.Colors()))
		log.Info().Msg("applied reloaded config")
	})
	if err != nil {
		// hot reload is a convenience; the service still runs without it
		log.Error().Err(err).Msg("config watcher failed to start")
	}

	log.Info().Msg("starting mDNS discovery service")
	discoveryService := discovery.New(deps.Clock, cfg)
	if discoveryErr := discoveryService.Start(); discoveryErr != nil {
		log.Error().Err(discoveryErr).Msg("mDNS discovery failed to start (continuing without discovery)")
	}

	log.Info().Msg("starting publishers")
	var mqttPublisher *publishers.MQTTPublisher
	if mqttCfg := cfg.MQTT(); mqttCfg.Broker != "" {
		publisherNotifications, _ := notifBroker.Subscribe(subscriptionBuffer)
		mqttPublisher = publishers.NewMQTTPublisher(mqttCfg, cfg.DeviceID())
		if pubErr := mqttPublisher.Start(publisherNotifications); pubErr != nil {
			log.Error().Err(pubErr).Msg("failed to start MQTT publisher")
			mqttPublisher = nil
		}
	}

	log.Info().Msg("starting API service")
	apiNotifications, _ := notifBroker.Subscribe(subscriptionBuffer)
	env := &api.Env{
		StartedAt:     deps.Clock.Now(),
		Clock:         deps.Clock,
		Config:        cfg,
		Cycle:         displayCycle,
		Display:       displayMgr,
		Camera:        cameraMgr,
		Printer:       printerMgr,
		Poet:          up,
		Colorizer:     colorizer.Load,
		Notifications: ns,
	}
	apiDone := make(chan struct{})
	go func() {
		defer close(apiDone)
		if serveErr := api.Serve(ctx, env, apiNotifications); serveErr != nil {
			log.Error().Err(serveErr).Msg("API service stopped, shutting down")
			cancel()
		}
	}()

	log.Info().Msg("starting display cycle")
	displayCycle.Start()

	doneCh := make(chan struct{})
	var stopErr error
	go func() {
		<-ctx.Done()
		log.Info().Msg("service context cancelled, running cleanup")

		if err := displayCycle.Stop(cycleStopTimeout); err != nil {
			stopErr = err
			log.Error().Err(err).Msg("display cycle did not stop cleanly")
		}
		<-apiDone
		discoveryService.Stop()
		if mqttPublisher != nil {
			mqttPublisher.Stop()
		}
		printerMgr.Close()

		log.Info().
			Uint64("dropped_notifications", notifBroker.Dropped()).
			Msg("service cleanup completed")
		close(doneCh)
	}()

	stop = func() error {
		cancel()
		<-doneCh
		if errors.Is(stopErr, cycle.ErrStopTimeout) {
			return stopErr
		}
		return nil
	}
	return stop, doneCh, nil
}

func cycleOptions(cfg *config.Instance, colorizer *render.Colorizer) cycle.Options {
	sched := cfg.Schedule()
	return cycle.Options{
		Colorizer:      colorizer,
		Policy:         schedule.FromConfig(cfg),
		CycleDelay:     cfg.CycleDelay(),
		PushAfterHours: sched.PushAfterHours,
	}
}

func applyLimits(limiter *ratelimit.Limiter, cfg *config.Instance) {
	limiter.SetInterval(ratelimit.KeyWeather, time.Duration(cfg.Weather().MinInterval)*time.Second)
	limiter.SetInterval(ratelimit.KeyNews, time.Duration(cfg.News().MinInterval)*time.Second)
}
