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

// Package client talks to a running Glimmer service's HTTP API. The CLI
// uses it to query and control the daemon.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/glimmerhome/glimmer/pkg/api/models"
	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/shared/httpclient"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var (
	ErrRequestTimeout   = errors.New("request timed out")
	ErrRequestCancelled = errors.New("request cancelled")
)

// Client is bound to one service address.
type Client struct {
	http *httpclient.Client
	host string
}

func New(host string) *Client {
	return &Client{
		http: httpclient.NewClientWithTimeout(config.APIRequestTimeout),
		host: host,
	}
}

// NewLocal connects to the service on this machine.
func NewLocal(cfg *config.Instance) *Client {
	return New("localhost:" + strconv.Itoa(cfg.APIPort()))
}

func (c *Client) url(scheme, path string) string {
	u := url.URL{Scheme: scheme, Host: c.host, Path: path}
	return u.String()
}

type envelope[T any] struct {
	Result T      `json:"result"`
	Error  string `json:"error"`
	OK     bool   `json:"ok"`
}

func decodeStatusError(err error) error {
	var se *httpclient.StatusError
	if errors.As(err, &se) {
		var env envelope[json.RawMessage]
		if jsonErr := json.Unmarshal([]byte(se.Body), &env); jsonErr == nil && env.Error != "" {
			return fmt.Errorf("service error: %s", env.Error)
		}
	}
	return err
}

func (c *Client) Status(ctx context.Context) (models.StatusResponse, error) {
	var env envelope[models.StatusResponse]
	if err := c.http.GetJSON(ctx, c.url("http", "/api/status"), &env); err != nil {
		return models.StatusResponse{}, decodeStatusError(err)
	}
	return env.Result, nil
}

// Refresh asks the service to regenerate content on its next cycle.
func (c *Client) Refresh(ctx context.Context) error {
	if err := c.http.PostJSON(ctx, c.url("http", "/api/content/refresh"), struct{}{}, nil); err != nil {
		return decodeStatusError(err)
	}
	return nil
}

// Push shows text on the display now.
func (c *Client) Push(ctx context.Context, text string) error {
	req := models.PushRequest{Text: text}
	if err := c.http.PostJSON(ctx, c.url("http", "/api/display/push"), req, nil); err != nil {
		return decodeStatusError(err)
	}
	return nil
}

// WaitNotification blocks until a notification with the given method
// arrives on the event stream. A zero timeout waits for the default API
// timeout; a negative timeout waits until ctx is done.
func (c *Client) WaitNotification(
	ctx context.Context,
	timeout time.Duration,
	method string,
) (models.Notification, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url("ws", "/api/events"), nil)
	if err != nil {
		return models.Notification{}, fmt.Errorf("failed to connect to event stream: %w", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Debug().Err(err).Msg("error closing websocket")
		}
	}()

	found := make(chan models.Notification, 1)
	go func() {
		defer close(found)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var n models.Notification
			if json.Unmarshal(msg, &n) != nil || n.Method != method {
				continue
			}
			found <- n
			return
		}
	}()

	var timerChan <-chan time.Time
	switch {
	case timeout == 0:
		timer := time.NewTimer(config.APIRequestTimeout)
		defer timer.Stop()
		timerChan = timer.C
	case timeout > 0:
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timerChan = timer.C
	}

	select {
	case n, ok := <-found:
		if !ok {
			return models.Notification{}, errors.New("event stream closed")
		}
		return n, nil
	case <-timerChan:
		return models.Notification{}, ErrRequestTimeout
	case <-ctx.Done():
		return models.Notification{}, ErrRequestCancelled
	}
}
