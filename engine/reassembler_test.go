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

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/packetd/goamqp/protocol/amqp091"
)

func headerPayload(t *testing.T, bodySize uint64, meta amqp091.Metadata) []byte {
	t.Helper()
	w := amqp091.NewWriter(32)
	w.PutUint16(amqp091.ClassBasic)
	w.PutUint16(0)
	w.PutUint64(bodySize)
	err := amqp091.EncodeMetadata(w, meta)
	assert.NoError(t, err)
	return w.Bytes()
}

func TestChannelReassemblyAcrossHeaderAndBodyFrames(t *testing.T) {
	ch := newTestChannel()

	var got Message
	ch.beginReassembly(reassembleDeliver, Message{ConsumerTag: "ctag-1"}, func(m Message) {
		got = m
	})

	ch.dispatchHeader(headerPayload(t, 11, amqp091.Metadata{ContentType: "text/plain"}))
	ch.dispatchBody([]byte("hello "))
	ch.dispatchBody([]byte("world"))

	assert.Equal(t, "hello world", string(got.Body))
	assert.Equal(t, "text/plain", got.Metadata.ContentType)
	assert.Nil(t, ch.active)
}

func TestChannelReassemblyZeroLengthBodyCompletesOnHeader(t *testing.T) {
	ch := newTestChannel()

	completed := false
	ch.beginReassembly(reassembleGetOk, Message{}, func(m Message) {
		completed = true
		assert.Empty(t, m.Body)
	})

	ch.dispatchHeader(headerPayload(t, 0, amqp091.Metadata{}))

	assert.True(t, completed)
}

func TestChannelReassemblyBodyOverflowFailsChannel(t *testing.T) {
	ch := newTestChannel()
	ch.beginReassembly(reassembleDeliver, Message{}, func(Message) {
		t.Fatal("must not complete on overflow")
	})

	ch.dispatchHeader(headerPayload(t, 4, amqp091.Metadata{}))
	ch.dispatchBody([]byte("far too long"))

	assert.Equal(t, ChannelClosed, ch.State())
}

func TestChannelDispatchBodyWithoutHeaderFails(t *testing.T) {
	ch := newTestChannel()
	ch.beginReassembly(reassembleDeliver, Message{}, func(Message) {
		t.Fatal("must not complete")
	})

	ch.dispatchBody([]byte("stray"))

	assert.Equal(t, ChannelClosed, ch.State())
}

func TestChannelDispatchHeaderWithoutActiveReassemblyFails(t *testing.T) {
	ch := newTestChannel()

	ch.dispatchHeader(headerPayload(t, 0, amqp091.Metadata{}))

	assert.Equal(t, ChannelClosed, ch.State())
}
