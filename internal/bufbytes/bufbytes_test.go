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

package bufbytes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufBytesWriteWithinCapacity(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		inputs   [][]byte
		expected []byte
	}{
		{
			name:     "Empty write",
			size:     10,
			inputs:   [][]byte{},
			expected: nil,
		},
		{
			name:     "Single write fills capacity exactly",
			size:     5,
			inputs:   [][]byte{[]byte("hello")},
			expected: []byte("hello"),
		},
		{
			name:     "Single write within capacity",
			size:     10,
			inputs:   [][]byte{[]byte("hello")},
			expected: []byte("hello"),
		},
		{
			name:     "Multiple writes fill capacity exactly",
			size:     10,
			inputs:   [][]byte{[]byte("hello"), []byte("world")},
			expected: []byte("helloworld"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New(tt.size)
			for _, input := range tt.inputs {
				require.NoError(t, b.Write(input))
			}
			assert.Equal(t, tt.expected, b.buf)
		})
	}
}

func TestBufBytesWriteOverflow(t *testing.T) {
	b := New(5)
	err := b.Write([]byte("helloworld"))
	assert.ErrorIs(t, err, ErrOverflow)
	assert.Equal(t, 0, b.Len())
}

func TestBufBytesWriteOverflowAcrossCalls(t *testing.T) {
	b := New(8)
	require.NoError(t, b.Write([]byte("hello")))
	err := b.Write([]byte("world"))
	assert.ErrorIs(t, err, ErrOverflow)
	// the first, successful write is preserved; the overflowing one is not applied
	assert.Equal(t, "hello", b.Text())
}

func TestBufBytesComplete(t *testing.T) {
	b := New(5)
	assert.False(t, b.Complete())
	require.NoError(t, b.Write([]byte("hello")))
	assert.True(t, b.Complete())
	assert.Equal(t, 0, b.Remaining())
}
