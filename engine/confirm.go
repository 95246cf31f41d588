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
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/packetd/goamqp/logger"
)

// confirmEntry is one outstanding publisher-confirm handle.
type confirmEntry struct {
	onAck  func()
	onNack func()
	// digest correlates a nack with the payload that produced it in logs
	// without retaining (or re-logging) the payload itself.
	digest uint64
}

// confirmTracker tracks delivery tags issued after Confirm.Select, in the
// contiguous 1..N sequence the broker assumes. Acks/nacks with multiple
// set resolve every outstanding tag up to and including the given one, in
// tag order.
type confirmTracker struct {
	pending      map[uint64]*confirmEntry
	nextExpected uint64
}

func newConfirmTracker() *confirmTracker {
	return &confirmTracker{pending: make(map[uint64]*confirmEntry), nextExpected: 1}
}

// track registers a delivery tag awaiting confirmation. body is hashed,
// not retained, purely for nack diagnostics.
func (t *confirmTracker) track(tag uint64, body []byte, onAck, onNack func()) {
	t.pending[tag] = &confirmEntry{onAck: onAck, onNack: onNack, digest: xxhash.Sum64(body)}
}

// resolve fires the outcome for tag, and — when multiple is set — for
// every lower outstanding tag first, in ascending order. ch's Liveness is
// checked after every callback since acking a publish is a common place
// for user code to close the channel.
func (t *confirmTracker) resolve(ch *Channel, tag uint64, multiple, ack bool) {
	mon := ch.Monitor()
	if multiple {
		tags := make([]uint64, 0, len(t.pending))
		for pending := range t.pending {
			if pending <= tag {
				tags = append(tags, pending)
			}
		}
		sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
		for _, current := range tags {
			t.fire(current, ack)
			if !mon.Valid() {
				return
			}
		}
	} else {
		t.fire(tag, ack)
	}
	if tag >= t.nextExpected {
		t.nextExpected = tag + 1
	}
}

func (t *confirmTracker) fire(tag uint64, ack bool) {
	entry, ok := t.pending[tag]
	if !ok {
		return
	}
	delete(t.pending, tag)
	if ack {
		if entry.onAck != nil {
			entry.onAck()
		}
		return
	}
	logger.Debugf("publisher confirm nack for delivery tag %d (payload digest %x)", tag, entry.digest)
	if entry.onNack != nil {
		entry.onNack()
	}
}

// failAll nacks every outstanding tag, used when the channel or
// connection is lost before the broker could confirm them.
func (t *confirmTracker) failAll() {
	tags := make([]uint64, 0, len(t.pending))
	for tag := range t.pending {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	for _, tag := range tags {
		entry := t.pending[tag]
		delete(t.pending, tag)
		if entry.onNack != nil {
			entry.onNack()
		}
	}
}
