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

// Package bufbytes implements a size-bounded byte accumulator used by the
// message reassembler to collect a body whose final length was declared
// up front by a content header.
package bufbytes

import (
	"bytes"

	"github.com/pkg/errors"
)

const cStringEnd = '\x00'

// ErrOverflow is returned by Write when appending p would push the
// buffer past its declared size. Unlike a generic ring buffer, a
// reassembled AMQP body has no use for a value larger than what the
// broker declared: exceeding it is a protocol violation, not something
// to silently discard.
var ErrOverflow = errors.New("bufbytes: write exceeds declared size")

// Bytes accumulates writes up to a fixed declared size.
type Bytes struct {
	size int
	buf  []byte
}

// New returns a Bytes that accepts at most size bytes in total.
func New(size int) *Bytes {
	return &Bytes{size: size}
}

// Write appends p, failing with ErrOverflow if doing so would exceed the
// declared size. On failure no partial write occurs.
func (b *Bytes) Write(p []byte) error {
	if len(b.buf)+len(p) > b.size {
		return ErrOverflow
	}
	b.buf = append(b.buf, p...)
	return nil
}

// Len returns the number of bytes accumulated so far.
func (b *Bytes) Len() int {
	return len(b.buf)
}

// Remaining returns how many more bytes can be written before Write
// starts returning ErrOverflow.
func (b *Bytes) Remaining() int {
	return b.size - len(b.buf)
}

// Complete reports whether the buffer has received exactly its declared
// size.
func (b *Bytes) Complete() bool {
	return len(b.buf) == b.size
}

func (b *Bytes) Text() string {
	return string(b.buf)
}

func (b *Bytes) TrimCStringText() string {
	if !bytes.HasSuffix(b.buf, []byte{cStringEnd}) {
		return b.Text()
	}
	return string(b.buf[:len(b.buf)-1])
}

func (b *Bytes) Clone() []byte {
	if b.buf == nil {
		return nil
	}
	return append([]byte{}, b.buf...)
}

func (b *Bytes) Reset() {
	b.buf = b.buf[:0]
}
