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

func TestMetadataRoundTripFull(t *testing.T) {
	m := Metadata{
		ContentType:     "application/json",
		ContentEncoding: "utf-8",
		Headers:         Table{"x-retry": Field{Kind: FieldUOctet, Value: uint8(1)}},
		DeliveryMode:    2,
		Priority:        5,
		CorrelationID:   "corr-1",
		ReplyTo:         "reply-queue",
		Expiration:      "60000",
		MessageID:       "msg-1",
		Timestamp:       1700000000,
		TypeName:        "order.created",
		UserID:          "guest",
		AppID:           "goamqp-test",
		ClusterID:       "cluster-a",
	}

	w := NewWriter(0)
	require.NoError(t, EncodeMetadata(w, m))

	r := NewReader(w.Bytes())
	got, err := DecodeMetadata(r)
	require.NoError(t, err)
	// decoding also records which properties were present on the wire
	want := m
	want.hasContentType, want.hasContentEncoding, want.hasHeaders = true, true, true
	want.hasDeliveryMode, want.hasPriority, want.hasCorrelationID = true, true, true
	want.hasReplyTo, want.hasExpiration, want.hasMessageID = true, true, true
	want.hasTimestamp, want.hasTypeName, want.hasUserID = true, true, true
	want.hasAppID, want.hasClusterID = true, true
	assert.Equal(t, want, got)
	assert.True(t, got.Persistent())
}

func TestMetadataRoundTripEmpty(t *testing.T) {
	w := NewWriter(0)
	require.NoError(t, EncodeMetadata(w, Metadata{}))
	assert.Equal(t, []byte{0x00, 0x00}, w.Bytes())

	r := NewReader(w.Bytes())
	got, err := DecodeMetadata(r)
	require.NoError(t, err)
	assert.False(t, got.Persistent())
}

func TestMetadataPersistentRequiresDeliveryMode2(t *testing.T) {
	m := Metadata{DeliveryMode: 1}
	w := NewWriter(0)
	require.NoError(t, EncodeMetadata(w, m))

	r := NewReader(w.Bytes())
	got, err := DecodeMetadata(r)
	require.NoError(t, err)
	assert.False(t, got.Persistent())
}

func TestMetadataBitLayout(t *testing.T) {
	// Only ContentType (bools1 bit 7) and MessageID (bools2 bit 7) set.
	m := Metadata{ContentType: "text/plain", MessageID: "id-1"}
	w := NewWriter(0)
	require.NoError(t, EncodeMetadata(w, m))

	b := w.Bytes()
	assert.Equal(t, byte(0x80), b[0])
	assert.Equal(t, byte(0x80), b[1])
}
