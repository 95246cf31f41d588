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
)

func TestPendingQueueFIFOHeadFirst(t *testing.T) {
	var q pendingQueue

	var resolved []string
	mk := func(name string) *Deferred {
		d := NewDeferred("Queue", name)
		d.OnSuccess(func(...any) { resolved = append(resolved, name) })
		return d
	}

	q.push(mk("first"))
	q.push(mk("second"))
	q.push(mk("third"))

	d, ok := q.pop()
	assert.True(t, ok)
	d.Succeed()

	d, ok = q.pop()
	assert.True(t, ok)
	d.Succeed()

	d, ok = q.pop()
	assert.True(t, ok)
	d.Succeed()

	assert.Equal(t, []string{"first", "second", "third"}, resolved)

	_, ok = q.pop()
	assert.False(t, ok)
}

func TestPendingQueueDrainResetsBackingSlice(t *testing.T) {
	var q pendingQueue
	q.push(NewDeferred("Queue", "Declare"))
	q.push(NewDeferred("Queue", "Bind"))

	q.pop()
	q.pop()

	assert.Equal(t, 0, len(q.items))
	assert.Equal(t, 0, q.head)
}

func TestPendingQueueFailAll(t *testing.T) {
	var q pendingQueue
	var messages []string
	for _, name := range []string{"a", "b", "c"} {
		d := NewDeferred("Basic", name)
		d.OnError(func(message string) { messages = append(messages, message) })
		q.push(d)
	}

	q.failAll("channel closed")

	assert.Equal(t, []string{"channel closed", "channel closed", "channel closed"}, messages)
	_, ok := q.pop()
	assert.False(t, ok)
}

func TestChannelEnqueueFailsSynchronouslyWhenClosed(t *testing.T) {
	ch := newChannel(nil, 1)
	ch.state = ChannelClosed

	d := NewDeferred("Queue", "Declare")
	var failed string
	d.OnError(func(message string) { failed = message })

	ch.enqueue(d)

	assert.Equal(t, DeferredFailed, d.State())
	assert.Equal(t, ErrChannelAlreadyClosed.Error(), failed)
}

func TestChannelFailAllIsIdempotent(t *testing.T) {
	conn := &Connection{channels: map[uint16]*Channel{}, transport: &NopTransport{}}
	ch := newChannel(conn, 3)
	conn.channels[3] = ch

	calls := 0
	d := NewDeferred("Queue", "Declare")
	d.OnError(func(string) { calls++ })
	ch.enqueue(d)

	ch.failAll("first failure")
	ch.failAll("second failure, ignored")

	assert.Equal(t, ChannelClosed, ch.State())
	assert.Equal(t, 1, calls)
	_, stillThere := conn.channels[3]
	assert.False(t, stillThere)
}
