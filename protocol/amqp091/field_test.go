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

func TestFieldRoundTrip(t *testing.T) {
	tests := []Field{
		{Kind: FieldBoolSet, Value: true},
		{Kind: FieldOctet, Value: int8(-5)},
		{Kind: FieldUOctet, Value: uint8(5)},
		{Kind: FieldShort, Value: int16(-500)},
		{Kind: FieldUShort, Value: uint16(500)},
		{Kind: FieldLong, Value: int32(-70000)},
		{Kind: FieldULong, Value: uint32(70000)},
		{Kind: FieldLongLong, Value: int64(-5000000000)},
		{Kind: FieldULongLong, Value: uint64(5000000000)},
		{Kind: FieldFloat, Value: float32(3.5)},
		{Kind: FieldDouble, Value: 3.5},
		{Kind: FieldDecimal, Value: Decimal{Scale: 1, Value: 15}},
		{Kind: FieldShortString, Value: "short"},
		{Kind: FieldLongString, Value: "long"},
		{Kind: FieldTimestamp, Value: uint64(1700000000)},
		{Kind: FieldVoid, Value: nil},
	}

	for _, f := range tests {
		w := NewWriter(0)
		require.NoError(t, EncodeField(w, f))

		r := NewReader(w.Bytes())
		got, err := DecodeField(r)
		require.NoError(t, err)
		assert.Equal(t, f, got)
		assert.Equal(t, 0, r.Len())
	}
}

func TestFieldUnknownType(t *testing.T) {
	r := NewReader([]byte{'?', 0x01})
	_, err := DecodeField(r)
	assert.ErrorIs(t, err, ErrUnknownFieldType)
}

func TestFieldAsStringMismatch(t *testing.T) {
	f := Field{Kind: FieldLong, Value: int32(5)}
	assert.Equal(t, "", f.AsString())
}

func TestFieldAsTableMismatch(t *testing.T) {
	f := Field{Kind: FieldVoid}
	assert.Equal(t, Table{}, f.AsTable())
}
