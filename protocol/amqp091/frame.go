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

import "github.com/pkg/errors"

// Frame types, carried in the first octet of every frame header.
const (
	FrameTypeMethod    = 1
	FrameTypeHeader    = 2
	FrameTypeBody      = 3
	FrameTypeHeartbeat = 8
)

// FrameEnd is the fixed trailer octet every frame ends with.
const FrameEnd = 0xCE

// ProtocolHeader is the 8-byte preamble sent once at connection start,
// identifying the protocol and the 0-9-1 revision.
var ProtocolHeader = [8]byte{'A', 'M', 'Q', 'P', 0, 0, 9, 1}

// ErrMissingFrameEnd is returned when a frame's trailing byte is present
// but is not the fixed 0xCE marker.
var ErrMissingFrameEnd = errors.New("amqp091: frame missing 0xCE terminator")

// ErrFrameTooLarge is returned when a frame's declared payload size
// exceeds the negotiated maximum.
var ErrFrameTooLarge = errors.New("amqp091: frame exceeds negotiated max-frame size")

// Frame is a single decoded frame: its type, channel, and raw payload
// (method arguments, content header, body chunk, or empty for heartbeat).
type Frame struct {
	Type    uint8
	Channel uint16
	Payload []byte
}

// frameHeaderSize is type(1) + channel(2) + size(4).
const frameHeaderSize = 7

// FrameOverhead is the header (7 bytes) plus the 0xCE trailer (1 byte)
// surrounding every frame's payload: a negotiated max-frame of M bounds the
// payload (the wire "size" field) to M-FrameOverhead bytes.
const FrameOverhead = frameHeaderSize + 1

// DecodeFrame attempts to decode one frame from buf. It returns the frame,
// the number of bytes consumed, and an error. ErrTruncated means buf does
// not yet hold a complete frame; the caller should retry once more bytes
// arrive without treating it as fatal.
func DecodeFrame(buf []byte, maxFrame uint32) (Frame, int, error) {
	if len(buf) < frameHeaderSize {
		return Frame{}, 0, ErrTruncated
	}
	r := NewReader(buf)
	typ, _ := r.Uint8()
	channel, _ := r.Uint16()
	size, _ := r.Uint32()

	if maxFrame != 0 && uint64(size)+FrameOverhead > uint64(maxFrame) {
		return Frame{}, 0, ErrFrameTooLarge
	}

	total := frameHeaderSize + int(size) + 1
	if len(buf) < total {
		return Frame{}, 0, ErrTruncated
	}

	payload := buf[frameHeaderSize : frameHeaderSize+int(size)]
	if buf[total-1] != FrameEnd {
		return Frame{}, 0, ErrMissingFrameEnd
	}

	return Frame{Type: typ, Channel: channel, Payload: payload}, total, nil
}

// EncodeFrame appends f's wire representation to w.
func EncodeFrame(w *Writer, f Frame) {
	w.PutUint8(f.Type)
	w.PutUint16(f.Channel)
	w.PutUint32(uint32(len(f.Payload)))
	w.PutBytes(f.Payload)
	w.PutUint8(FrameEnd)
}

// EncodeHeartbeat appends a heartbeat frame, which carries no payload and
// is always sent on channel 0.
func EncodeHeartbeat(w *Writer) {
	EncodeFrame(w, Frame{Type: FrameTypeHeartbeat, Channel: 0})
}
