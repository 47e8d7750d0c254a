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

package printer

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	// decoders for captured and uploaded photos
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

var (
	cmdInit      = []byte{0x1B, 0x40}
	cmdAlignLeft = []byte{0x1B, 0x61, 0x00}
	cmdAlignMid  = []byte{0x1B, 0x61, 0x01}
	cmdRaster    = []byte{0x1D, 0x76, 0x30, 0x00}
)

// maxRasterRows limits the printed photo height to keep jobs short on
// battery-powered printers.
const maxRasterRows = 1024

const blackThreshold = 128

func feed(lines int) []byte {
	return []byte{0x1B, 0x64, byte(lines)}
}

// encodeJob renders a job to the printer's byte stream: the photo centred
// on top, then the text lines.
func encodeJob(job Job, dots int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(cmdInit)

	if len(job.Header) > 0 {
		buf.Write(cmdAlignLeft)
		for _, line := range job.Header {
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}

	if len(job.Photo) > 0 {
		raster, err := encodeRaster(job.Photo, dots)
		if err != nil {
			return nil, err
		}
		buf.Write(cmdAlignMid)
		buf.Write(raster)
		buf.Write(feed(1))
	}

	buf.Write(cmdAlignLeft)
	for _, line := range job.Lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	buf.Write(feed(3))
	return buf.Bytes(), nil
}

// encodeRaster scales an image to the print head width and emits it as a
// GS v 0 raster bit image. Pixels darker than mid grey print black.
func encodeRaster(data []byte, dots int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo: %w", err)
	}

	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, errors.New("photo has no pixels")
	}

	width := dots - dots%8
	height := bounds.Dy() * width / bounds.Dx()
	if height < 1 {
		height = 1
	}
	if height > maxRasterRows {
		height = maxRasterRows
	}

	gray := image.NewGray(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(gray, gray.Bounds(), src, bounds, draw.Src, nil)

	rowBytes := width / 8
	out := make([]byte, 0, len(cmdRaster)+4+rowBytes*height)
	out = append(out, cmdRaster...)
	out = append(out,
		byte(rowBytes), byte(rowBytes>>8),
		byte(height), byte(height>>8),
	)
	for y := range height {
		for xb := range rowBytes {
			var b byte
			for bit := range 8 {
				if gray.GrayAt(xb*8+bit, y).Y < blackThreshold {
					b |= 0x80 >> bit
				}
			}
			out = append(out, b)
		}
	}
	return out, nil
}
