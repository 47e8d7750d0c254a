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

package publishers

import (
	"slices"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/glimmerhome/glimmer/pkg/helpers/syncutil"
)

// fakeClient records publishes. Methods the publisher never calls are left
// to the nil embedded interface.
type fakeClient struct {
	mqtt.Client
	connectError   error
	publishError   error
	sent           []sentMessage
	disconnectCall int
	connected      bool
	mu             syncutil.Mutex
}

type sentMessage struct {
	payload  any
	topic    string
	retained bool
}

func newFakeClient() *fakeClient {
	return &fakeClient{}
}

func (c *fakeClient) published() []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.sent)
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) Connect() mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connectError != nil {
		return doneToken{err: c.connectError}
	}
	c.connected = true
	return doneToken{}
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	c.disconnectCall++
}

func (c *fakeClient) Publish(topic string, _ byte, retained bool, payload any) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.publishError != nil {
		return doneToken{err: c.publishError}
	}
	c.sent = append(c.sent, sentMessage{topic: topic, retained: retained, payload: payload})
	return doneToken{}
}

// doneToken is an already completed token.
type doneToken struct {
	mqtt.Token
	err error
}

func (doneToken) Wait() bool                     { return true }
func (doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                 { return t.err }
