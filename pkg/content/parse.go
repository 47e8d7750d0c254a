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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMalformedReply = errors.New("malformed generator reply")
	ErrMissingKey     = errors.New("generator reply missing category")
)

// ParseBundle builds a bundle from the text model's JSON reply. Every
// category key must be present and hold an array. Non-string and blank
// entries are skipped; the rest keep their order and are numbered from 1.
func ParseBundle(raw []byte, now time.Time) (*Bundle, error) {
	raw = stripCodeFence(raw)

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedReply, err)
	}

	b := &Bundle{GeneratedOn: now}
	for _, c := range Categories {
		field, ok := obj[string(c)]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingKey, c)
		}

		var entries []any
		if err := json.Unmarshal(field, &entries); err != nil {
			return nil, fmt.Errorf("%w: %s is not an array", ErrMalformedReply, c)
		}

		records := make([]Record, 0, len(entries))
		for _, e := range entries {
			s, ok := e.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			records = append(records, Record{ID: RecordID(c, len(records)+1), Text: s})
		}
		b.set(c, records)
	}

	if b.Len() == 0 {
		return nil, fmt.Errorf("%w: no usable entries", ErrMalformedReply)
	}
	return b, nil
}

// stripCodeFence removes a markdown ```json fence some models wrap their
// reply in even when asked for bare JSON.
func stripCodeFence(raw []byte) []byte {
	raw = bytes.TrimSpace(raw)
	if !bytes.HasPrefix(raw, []byte("```")) {
		return raw
	}
	raw = raw[3:]
	if nl := bytes.IndexByte(raw, '\n'); nl >= 0 {
		raw = raw[nl+1:]
	}
	raw = bytes.TrimSuffix(bytes.TrimSpace(raw), []byte("```"))
	return bytes.TrimSpace(raw)
}
