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

func TestReaderIntegers(t *testing.T) {
	r := NewReader([]byte{
		0x7F,
		0x01, 0x02,
		0x00, 0x00, 0x00, 0x2A,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01,
	})

	u8, err := r.Uint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x7F), u8)

	u16, err := r.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0102), u16)

	u32, err := r.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(42), u32)

	u64, err := r.Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), u64)

	assert.Equal(t, 0, r.Len())
}

func TestReaderTruncated(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, err := r.Uint32()
	assert.ErrorIs(t, err, ErrTruncated)
	// a failed read must not move the cursor
	assert.Equal(t, 1, r.Len())
}

func TestReaderStrings(t *testing.T) {
	r := NewReader([]byte{
		0x05, 'h', 'e', 'l', 'l', 'o',
		0x00, 0x00, 0x00, 0x03, 'f', 'o', 'o',
	})

	s, err := r.ShortString()
	require.NoError(t, err)
	assert.Equal(t, "hello", s)

	l, err := r.LongString()
	require.NoError(t, err)
	assert.Equal(t, "foo", l)
}

func TestWriterReaderRoundTrip(t *testing.T) {
	w := NewWriter(0)
	w.PutUint8(9)
	w.PutUint16(1000)
	w.PutUint32(100000)
	w.PutUint64(10000000000)
	require.NoError(t, w.PutShortString("abc"))
	w.PutLongString("xyz")
	w.PutDecimal(Decimal{Scale: 2, Value: 1234})

	r := NewReader(w.Bytes())
	u8, err := r.Uint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(9), u8)

	u16, err := r.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(1000), u16)

	u32, err := r.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(100000), u32)

	u64, err := r.Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(10000000000), u64)

	s, err := r.ShortString()
	require.NoError(t, err)
	assert.Equal(t, "abc", s)

	l, err := r.LongString()
	require.NoError(t, err)
	assert.Equal(t, "xyz", l)

	d, err := r.Decimal()
	require.NoError(t, err)
	assert.Equal(t, Decimal{Scale: 2, Value: 1234}, d)
}

func TestWriterShortStringTooLong(t *testing.T) {
	w := NewWriter(0)
	err := w.PutShortString(string(make([]byte, 256)))
	assert.ErrorIs(t, err, ErrStringTooLong)
}

func TestBitsPacking(t *testing.T) {
	w := NewWriter(0)
	w.PutBits(true, false, true)

	r := NewReader(w.Bytes())
	bits, err := r.Bits(3)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, true}, bits)
}
