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
	"github.com/stretchr/testify/require"
)

func TestNewReliableSkipsConfirmSelectWhenAlreadyActive(t *testing.T) {
	ch := newConfirmedChannel()

	NewReliable(ch)

	_, popped := ch.pending.pop()
	assert.False(t, popped, "already in confirm mode, so no Confirm.Select should have been queued")
}

func TestNewReliableIssuesConfirmSelectWhenNotActive(t *testing.T) {
	conn := &Connection{channels: map[uint16]*Channel{}, transport: &NopTransport{}, frameMax: 4096, state: StateConnected}
	ch := newChannel(conn, 1)
	conn.channels[1] = ch

	NewReliable(ch)

	dispatchConfirmSelectOk(ch)

	assert.True(t, ch.confirmSelect)
}

func TestReliablePublishSucceedsOnAck(t *testing.T) {
	ch := newConfirmedChannel()
	r := NewReliable(ch)

	d := r.Publish(Publishing{Exchange: "ex", Body: []byte("payload")})

	assert.Equal(t, DeferredPending, d.State())
	assert.Equal(t, 1, r.Unacknowledged())

	ch.confirms.resolve(ch, 1, false, true)

	assert.Equal(t, DeferredSucceeded, d.State())
	assert.Equal(t, 0, r.Unacknowledged())
}

func TestReliablePublishFailsOnNack(t *testing.T) {
	ch := newConfirmedChannel()
	r := NewReliable(ch)

	d := r.Publish(Publishing{Body: []byte("payload")})

	ch.confirms.resolve(ch, 1, false, false)

	assert.Equal(t, DeferredFailed, d.State())
}

func TestReliablePublishMultipleAckResolvesEachInFlightDeferred(t *testing.T) {
	ch := newConfirmedChannel()
	r := NewReliable(ch)

	d1 := r.Publish(Publishing{Body: []byte("first")})
	d2 := r.Publish(Publishing{Body: []byte("second")})

	require.Equal(t, 2, r.Unacknowledged())

	ch.confirms.resolve(ch, 2, true, true)

	assert.Equal(t, DeferredSucceeded, d1.State())
	assert.Equal(t, DeferredSucceeded, d2.State())
	assert.Equal(t, 0, r.Unacknowledged())
}

func TestReliablePublishFailsSynchronouslyWhenChannelClosed(t *testing.T) {
	ch := newConfirmedChannel()
	r := NewReliable(ch)
	ch.state = ChannelClosed

	d := r.Publish(Publishing{Body: []byte("too late")})

	assert.Equal(t, DeferredFailed, d.State())
}

func TestReliablePublishSucceedsImmediatelyOutsideConfirmMode(t *testing.T) {
	conn := &Connection{channels: map[uint16]*Channel{}, transport: &NopTransport{}, frameMax: 4096, state: StateConnected}
	ch := newChannel(conn, 1)
	conn.channels[1] = ch
	// bypass NewReliable's forced Confirm.Select to exercise the tag==0
	// fallback a pre-confirm-mode publish takes.
	r := &Reliable{ch: ch}

	d := r.Publish(Publishing{Body: []byte("unconfirmed")})

	assert.Equal(t, DeferredSucceeded, d.State())
	assert.Equal(t, 0, r.Unacknowledged())
}
