// Copyright 2025 The goamqp Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package amqp091

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	f := Frame{Type: FrameTypeMethod, Channel: 3, Payload: []byte{0x00, 0x0A, 0x00, 0x0A}}

	w := NewWriter(0)
	EncodeFrame(w, f)

	got, n, err := DecodeFrame(w.Bytes(), 0)
	require.NoError(t, err)
	assert.Equal(t, w.Len(), n)
	assert.Equal(t, f, got)
}

func TestFrameTruncatedHeader(t *testing.T) {
	_, _, err := DecodeFrame([]byte{0x01, 0x00}, 0)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestFrameTruncatedPayload(t *testing.T) {
	buf := []byte{0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x0A, 0x01, 0x02}
	_, _, err := DecodeFrame(buf, 0)
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestFrameMissingEnd(t *testing.T) {
	buf := []byte{0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x09, 0xFF}
	_, _, err := DecodeFrame(buf, 0)
	assert.ErrorIs(t, err, ErrMissingFrameEnd)
}

func TestFrameExceedsMaxFrame(t *testing.T) {
	buf := []byte{0x01, 0x00, 0x01, 0x00, 0x00, 0x00, 0x64}
	_, _, err := DecodeFrame(buf, 10)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestFrameAtMaxFrameBoundary(t *testing.T) {
	const maxFrame = 16
	payload := make([]byte, maxFrame-FrameOverhead)

	w := NewWriter(0)
	EncodeFrame(w, Frame{Type: FrameTypeMethod, Channel: 0, Payload: payload})
	require.Equal(t, maxFrame, w.Len(), "fixture must encode to exactly max-frame bytes")

	_, _, err := DecodeFrame(w.Bytes(), maxFrame)
	require.NoError(t, err, "a frame of exactly max-frame bytes must be accepted")
}

func TestFrameOneOverMaxFrameBoundary(t *testing.T) {
	const maxFrame = 16
	payload := make([]byte, maxFrame-FrameOverhead+1)

	w := NewWriter(0)
	EncodeFrame(w, Frame{Type: FrameTypeMethod, Channel: 0, Payload: payload})
	require.Equal(t, maxFrame+1, w.Len(), "fixture must encode to exactly max-frame+1 bytes")

	_, _, err := DecodeFrame(w.Bytes(), maxFrame)
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestFrameMultipleInBuffer(t *testing.T) {
	w := NewWriter(0)
	EncodeFrame(w, Frame{Type: FrameTypeHeartbeat, Channel: 0})
	EncodeFrame(w, Frame{Type: FrameTypeMethod, Channel: 1, Payload: []byte{0x01}})

	buf := w.Bytes()
	f1, n1, err := DecodeFrame(buf, 0)
	require.NoError(t, err)
	assert.Equal(t, FrameTypeHeartbeat, int(f1.Type))

	f2, _, err := DecodeFrame(buf[n1:], 0)
	require.NoError(t, err)
	assert.Equal(t, FrameTypeMethod, int(f2.Type))
	assert.Equal(t, uint16(1), f2.Channel)
}
