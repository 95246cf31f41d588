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

// throttleItem is one publish waiting for room in the in-flight window.
type throttleItem struct {
	publishing Publishing
	onAck      func()
	onNack     func()
}

// Throttle wraps a Channel already in publisher-confirm mode and bounds
// how many unconfirmed publishes may be outstanding at once. Publishes
// beyond the limit queue in FIFO order and are released as earlier ones
// are acked or nacked.
type Throttle struct {
	ch    *Channel
	limit int

	open  map[uint64]struct{}
	queue []throttleItem

	closing       bool
	closeDeferred *Deferred

	onError func(message string)
}

// NewThrottle enables publisher confirms on ch and returns a Throttle
// bounding in-flight publishes to limit. ch must not already be mid
// Confirm.Select.
func NewThrottle(ch *Channel, limit int) *Throttle {
	if limit < 1 {
		limit = 1
	}
	t := &Throttle{ch: ch, limit: limit, open: make(map[uint64]struct{})}
	ch.ConfirmSelect(false).OnError(func(message string) {
		t.reportError(message)
	})
	return t
}

// OnError installs the handler invoked if enabling publisher confirms on
// the channel fails; queued, not-yet-sent publishes are then discarded.
// If the channel is already unusable, or Close has been called, fn is
// called at once. A channel failure after confirm mode is active does
// not call fn.
func (t *Throttle) OnError(fn func(message string)) {
	t.onError = fn
	if fn == nil {
		return
	}
	if t.ch.state != ChannelConnected {
		fn("channel is no longer usable")
		return
	}
	if t.closing {
		fn("throttle is closing down")
	}
}

func (t *Throttle) reportError(message string) {
	t.queue = nil
	if t.onError != nil {
		t.onError(message)
	}
}

// Publish either sends p immediately, if there is room in the in-flight
// window, or queues it for later. Returns false once Close has been
// called — no further publishes are accepted.
func (t *Throttle) Publish(p Publishing, onAck, onNack func()) bool {
	if t.closing {
		return false
	}
	if len(t.queue) > 0 || len(t.open) >= t.limit {
		t.queue = append(t.queue, throttleItem{publishing: p, onAck: onAck, onNack: onNack})
		return true
	}
	t.send(p, onAck, onNack)
	return true
}

func (t *Throttle) send(p Publishing, onAck, onNack func()) {
	var tag uint64
	var err error
	tag, err = t.ch.Publish(p, func() { t.onAckTag(tag, false) }, func() { t.onAckTag(tag, false) })
	if err != nil {
		if onNack != nil {
			onNack()
		}
		return
	}
	t.open[tag] = struct{}{}
	t.wrapConfirm(tag, onAck, onNack)
}

// wrapConfirm re-tracks the just-published tag with the caller's own
// ack/nack callbacks layered on top of the throttle's internal bookkeeping,
// since Channel.Publish only accepts one pair of hooks per tag.
func (t *Throttle) wrapConfirm(tag uint64, onAck, onNack func()) {
	entry, ok := t.ch.confirms.pending[tag]
	if !ok {
		return
	}
	innerAck, innerNack := entry.onAck, entry.onNack
	entry.onAck = func() {
		if innerAck != nil {
			innerAck()
		}
		if onAck != nil {
			onAck()
		}
	}
	entry.onNack = func() {
		if innerNack != nil {
			innerNack()
		}
		if onNack != nil {
			onNack()
		}
	}
}

func (t *Throttle) onAckTag(tag uint64, multiple bool) {
	if multiple {
		for open := range t.open {
			if open <= tag {
				delete(t.open, open)
			}
		}
	} else {
		delete(t.open, tag)
	}

	if len(t.open) < t.limit {
		t.flush(t.limit - len(t.open))
	}

	if len(t.open) > 0 || !t.closing {
		return
	}
	if t.closeDeferred != nil {
		t.ch.Close().OnSuccess(func(...any) { t.closeDeferred.Succeed() }).OnError(t.closeDeferred.Fail)
	}
}

// flush sends up to max queued publishes (0 means send everything queued),
// returning how many were actually sent.
func (t *Throttle) flush(max int) int {
	sent := 0
	for len(t.queue) > 0 {
		if max > 0 && sent >= max {
			return sent
		}
		item := t.queue[0]
		t.queue = t.queue[1:]
		t.send(item.publishing, item.onAck, item.onNack)
		sent++
	}
	return sent
}

// Close flushes any queued publishes and closes the underlying channel
// once every in-flight publish has been confirmed.
func (t *Throttle) Close() *Deferred {
	if t.closeDeferred != nil {
		return t.closeDeferred
	}
	t.closing = true
	t.closeDeferred = NewDeferred("Throttle", "Close")
	if len(t.open) > 0 || len(t.queue) > 0 {
		return t.closeDeferred
	}
	t.ch.Close().OnSuccess(func(...any) { t.closeDeferred.Succeed() }).OnError(t.closeDeferred.Fail)
	return t.closeDeferred
}
