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

package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrNoPoem = errors.New("generator reply has no poem")

// ImageGenerator sends a prompt together with a JPEG photo and returns the
// reply, which should be a JSON object.
type ImageGenerator interface {
	DescribeImageJSON(ctx context.Context, prompt string, photo []byte) ([]byte, error)
}

// PhotoPoem asks gen for a poem about photo. The reply must be a JSON object
// whose "result" key holds the poem.
func PhotoPoem(ctx context.Context, gen ImageGenerator, prompt string, photo []byte) (string, error) {
	raw, err := gen.DescribeImageJSON(ctx, prompt, photo)
	if err != nil {
		return "", fmt.Errorf("failed to generate photo poem: %w", err)
	}

	var reply struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(stripCodeFence(raw), &reply); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}
	poem := strings.TrimSpace(reply.Result)
	if poem == "" {
		return "", ErrNoPoem
	}
	return poem, nil
}
