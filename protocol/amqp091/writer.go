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
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrStringTooLong is returned when a short string exceeds the 255-byte
// limit the wire format imposes on its length prefix.
var ErrStringTooLong = errors.New("amqp091: short string exceeds 255 bytes")

// Writer accumulates a frame payload into a growable byte slice, in the
// same big-endian wire encoding the Reader decodes.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer. size is a capacity hint.
func NewWriter(size int) *Writer {
	return &Writer{buf: make([]byte, 0, size)}
}

// Bytes returns the accumulated payload.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

// PutUint8 appends a single byte.
func (w *Writer) PutUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// PutInt8 appends a single signed byte.
func (w *Writer) PutInt8(v int8) {
	w.PutUint8(uint8(v))
}

// PutBool appends a boolean as a single byte, 1 for true.
func (w *Writer) PutBool(v bool) {
	if v {
		w.PutUint8(1)
	} else {
		w.PutUint8(0)
	}
}

// PutUint16 appends a big-endian unsigned 16-bit integer.
func (w *Writer) PutUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutInt16 appends a big-endian signed 16-bit integer.
func (w *Writer) PutInt16(v int16) {
	w.PutUint16(uint16(v))
}

// PutUint32 appends a big-endian unsigned 32-bit integer.
func (w *Writer) PutUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutInt32 appends a big-endian signed 32-bit integer.
func (w *Writer) PutInt32(v int32) {
	w.PutUint32(uint32(v))
}

// PutUint64 appends a big-endian unsigned 64-bit integer.
func (w *Writer) PutUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// PutInt64 appends a big-endian signed 64-bit integer.
func (w *Writer) PutInt64(v int64) {
	w.PutUint64(uint64(v))
}

// PutFloat32 appends an IEEE-754 single-precision float.
func (w *Writer) PutFloat32(v float32) {
	w.PutUint32(math.Float32bits(v))
}

// PutFloat64 appends an IEEE-754 double-precision float.
func (w *Writer) PutFloat64(v float64) {
	w.PutUint64(math.Float64bits(v))
}

// PutBytes appends raw bytes with no length prefix.
func (w *Writer) PutBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// PutShortString appends len:u8 followed by the string bytes. s must be
// no longer than 255 bytes.
func (w *Writer) PutShortString(s string) error {
	if len(s) > math.MaxUint8 {
		return ErrStringTooLong
	}
	w.PutUint8(uint8(len(s)))
	w.buf = append(w.buf, s...)
	return nil
}

// PutLongString appends len:u32 followed by the string bytes.
func (w *Writer) PutLongString(s string) {
	w.PutUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// PutDecimal appends an AMQP decimal field: scale:u8, value:i32.
func (w *Writer) PutDecimal(d Decimal) {
	w.PutUint8(d.Scale)
	w.PutInt32(d.Value)
}

// PutTimestamp appends a 64-bit POSIX timestamp, in seconds.
func (w *Writer) PutTimestamp(v uint64) {
	w.PutUint64(v)
}
