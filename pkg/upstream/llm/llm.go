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

// Package llm talks to an OpenAI compatible chat completions endpoint.
package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/glimmerhome/glimmer/pkg/config"
	"github.com/glimmerhome/glimmer/pkg/shared/httpclient"
)

const systemPrompt = "You are a cheerful assistant writing short texts for a home LED display. " +
	"Always answer with a single JSON object and nothing else."

var (
	ErrNoAPIKey      = errors.New("generator api key not configured")
	ErrEmptyResponse = errors.New("generator returned no content")
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Model          string          `json:"model"`
	Messages       []message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
}

type imageURL struct {
	URL string `json:"url"`
}

type contentPart struct {
	ImageURL *imageURL `json:"image_url,omitempty"`
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
}

type visionMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type visionRequest struct {
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	Model          string          `json:"model"`
	Messages       []visionMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// Client requests JSON completions.
type Client struct {
	http     *httpclient.Client
	settings config.Generator
}

func NewClient(http *httpclient.Client, settings config.Generator) *Client {
	if http == nil {
		http = httpclient.DefaultClient
	}
	return &Client{http: http, settings: settings}
}

// CompleteJSON sends prompt and returns the raw JSON text of the reply.
func (c *Client) CompleteJSON(ctx context.Context, prompt string) ([]byte, error) {
	if c.settings.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	req := chatRequest{
		Model: c.settings.Model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		ResponseFormat: &responseFormat{Type: "json_object"},
		Temperature:    0.9,
	}
	return c.post(ctx, req)
}

// DescribeImageJSON sends prompt with a JPEG photo to the vision model
// (the text model when none is configured) and returns the raw JSON text of
// the reply.
func (c *Client) DescribeImageJSON(ctx context.Context, prompt string, photo []byte) ([]byte, error) {
	if c.settings.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	model := c.settings.VisionModel
	if model == "" {
		model = c.settings.Model
	}
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(photo)

	req := visionRequest{
		Model: model,
		Messages: []visionMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
				{Type: "text", Text: prompt},
			},
		}},
		ResponseFormat: &responseFormat{Type: "json_object"},
		Temperature:    0.9,
	}
	return c.post(ctx, req)
}

func (c *Client) post(ctx context.Context, req any) ([]byte, error) {
	endpoint := strings.TrimRight(c.settings.BaseURL, "/") + "/v1/chat/completions"

	var resp chatResponse
	if err := c.http.PostJSON(ctx, endpoint, req, &resp, httpclient.Bearer(c.settings.APIKey)); err != nil {
		return nil, fmt.Errorf("failed to request completion: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return nil, ErrEmptyResponse
	}
	return []byte(resp.Choices[0].Message.Content), nil
}
