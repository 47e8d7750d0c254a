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

// Package publishers forwards service notifications to external systems.
package publishers

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/glimmerhome/glimmer/pkg/api/models"
	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	statusOnline  = "online"
	statusOffline = "offline"

	connectTimeout    = 10 * time.Second
	disconnectQuiesce = 250
)

// ErrNoBroker is returned by Start when no broker address is configured.
var ErrNoBroker = errors.New("no MQTT broker configured")

// Message is the JSON body published for each notification.
type Message struct {
	Params   json.RawMessage `json:"params,omitempty"`
	Method   string          `json:"method"`
	DeviceID string          `json:"device_id"`
}

// MQTTPublisher publishes notifications to <topic>/<method> and keeps a
// retained online/offline flag at <topic>/status for home-automation hubs.
type MQTTPublisher struct {
	client    mqtt.Client
	newClient func(*mqtt.ClientOptions) mqtt.Client
	stopCh    chan struct{}
	done      chan struct{}
	settings  config.MQTT
	deviceID  string
}

func NewMQTTPublisher(settings config.MQTT, deviceID string) *MQTTPublisher {
	return &MQTTPublisher{
		settings:  settings,
		deviceID:  deviceID,
		newClient: mqtt.NewClient,
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (p *MQTTPublisher) statusTopic() string {
	return p.settings.Topic + "/status"
}

// Start connects to the broker and publishes notifications from the
// channel until Stop is called or the channel closes.
func (p *MQTTPublisher) Start(notifications <-chan models.Notification) error {
	if p.settings.Broker == "" {
		return ErrNoBroker
	}

	broker := p.settings.Broker
	if !strings.Contains(broker, "://") {
		broker = "tcp://" + broker
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("glimmer-" + uuid.New().String()[:8])
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetWill(p.statusTopic(), statusOffline, 1, true)
	opts.OnConnect = func(c mqtt.Client) {
		log.Info().Str("broker", broker).Msg("mqtt publisher: connected")
		c.Publish(p.statusTopic(), 1, true, statusOnline)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt publisher: connection lost")
	}

	p.client = p.newClient(opts)
	token := p.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	go p.publishNotifications(notifications)
	return nil
}

// Stop marks the device offline, disconnects and waits for the publish
// loop to exit. It must only be called after a successful Start.
func (p *MQTTPublisher) Stop() {
	close(p.stopCh)
	<-p.done

	if p.client != nil && p.client.IsConnected() {
		p.client.Publish(p.statusTopic(), 1, true, statusOffline).WaitTimeout(time.Second)
		p.client.Disconnect(disconnectQuiesce)
		log.Debug().Msg("mqtt publisher: disconnected")
	}
}

func (p *MQTTPublisher) publishNotifications(notifications <-chan models.Notification) {
	defer close(p.done)

	for {
		select {
		case <-p.stopCh:
			return
		case n, ok := <-notifications:
			if !ok {
				return
			}
			if !p.matchesFilter(n.Method) {
				continue
			}
			p.publish(n)
		}
	}
}

func (p *MQTTPublisher) publish(n models.Notification) {
	payload, err := json.Marshal(Message{
		Method:   n.Method,
		DeviceID: p.deviceID,
		Params:   n.Params,
	})
	if err != nil {
		log.Error().Err(err).Msg("mqtt publisher: failed to marshal notification")
		return
	}

	topic := p.settings.Topic + "/" + n.Method
	token := p.client.Publish(topic, 0, false, payload)
	if token.Wait() && token.Error() != nil {
		log.Error().Err(token.Error()).Str("topic", topic).Msg("mqtt publisher: failed to publish")
		return
	}
	log.Debug().Str("topic", topic).Msg("mqtt publisher: published notification")
}

// matchesFilter reports whether method should be published. An empty
// filter publishes everything.
func (p *MQTTPublisher) matchesFilter(method string) bool {
	return len(p.settings.Filter) == 0 || slices.Contains(p.settings.Filter, method)
}
