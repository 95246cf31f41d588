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

// ErrTruncated is returned by every Reader method when the underlying
// buffer does not hold enough bytes to satisfy the read. Callers treat it
// as "need more data", not as a protocol violation by itself.
var ErrTruncated = errors.New("amqp091: truncated frame")

// Reader is a cursor over an in-memory frame payload. It never copies the
// backing slice; every read that returns bytes shares the caller's buffer.
// A failed single-value read (the integer, float and Bool reads, Bytes,
// Bits) leaves the position untouched. ShortString, LongString and
// Decimal consume their leading length or scale before the rest, so a
// failure there can leave the cursor past that prefix.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps b for sequential, bounds-checked decoding. b is not
// copied; the caller must not mutate it while the Reader is in use.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int {
	return len(r.buf) - r.pos
}

// Pos returns the current read offset.
func (r *Reader) Pos() int {
	return r.pos
}

func (r *Reader) require(n int) error {
	if r.Len() < n {
		return ErrTruncated
	}
	return nil
}

// Uint8 reads one unsigned byte.
func (r *Reader) Uint8() (uint8, error) {
	if err := r.require(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// Int8 reads one signed byte.
func (r *Reader) Int8() (int8, error) {
	v, err := r.Uint8()
	return int8(v), err
}

// Bool reads a single byte and reports it as a boolean (non-zero is true).
func (r *Reader) Bool() (bool, error) {
	v, err := r.Uint8()
	return v != 0, err
}

// Uint16 reads a big-endian unsigned 16-bit integer.
func (r *Reader) Uint16() (uint16, error) {
	if err := r.require(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// Int16 reads a big-endian signed 16-bit integer.
func (r *Reader) Int16() (int16, error) {
	v, err := r.Uint16()
	return int16(v), err
}

// Uint32 reads a big-endian unsigned 32-bit integer.
func (r *Reader) Uint32() (uint32, error) {
	if err := r.require(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// Int32 reads a big-endian signed 32-bit integer.
func (r *Reader) Int32() (int32, error) {
	v, err := r.Uint32()
	return int32(v), err
}

// Uint64 reads a big-endian unsigned 64-bit integer.
func (r *Reader) Uint64() (uint64, error) {
	if err := r.require(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// Int64 reads a big-endian signed 64-bit integer.
func (r *Reader) Int64() (int64, error) {
	v, err := r.Uint64()
	return int64(v), err
}

// Float32 reads an IEEE-754 single-precision float.
func (r *Reader) Float32() (float32, error) {
	v, err := r.Uint32()
	return math.Float32frombits(v), err
}

// Float64 reads an IEEE-754 double-precision float.
func (r *Reader) Float64() (float64, error) {
	v, err := r.Uint64()
	return math.Float64frombits(v), err
}

// Bytes returns the next n bytes as a slice sharing the underlying buffer.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Errorf("amqp091: negative length %d", n)
	}
	if err := r.require(n); err != nil {
		return nil, err
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ShortString reads a short string: len:u8 followed by len bytes.
func (r *Reader) ShortString() (string, error) {
	n, err := r.Uint8()
	if err != nil {
		return "", err
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// LongString reads a long string: len:u32 followed by len bytes.
func (r *Reader) LongString() (string, error) {
	n, err := r.Uint32()
	if err != nil {
		return "", err
	}
	b, err := r.Bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decimal reads an AMQP decimal field: scale:u8, value:i32.
func (r *Reader) Decimal() (Decimal, error) {
	scale, err := r.Uint8()
	if err != nil {
		return Decimal{}, err
	}
	value, err := r.Int32()
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{Scale: scale, Value: value}, nil
}

// Timestamp reads a 64-bit POSIX timestamp, in seconds.
func (r *Reader) Timestamp() (uint64, error) {
	return r.Uint64()
}
