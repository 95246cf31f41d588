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

// Reliable wraps a channel in publisher-confirm mode and turns each
// publish into a single Deferred resolved by the matching confirm,
// instead of a bare pair of ack/nack callbacks. Unlike Throttle it does
// not bound the in-flight window. It publishes directly on the channel,
// so publishes made through a Reliable bypass any Throttle driving the
// same channel.
type Reliable struct {
	ch *Channel
}

// NewReliable enables publisher confirms on ch, if not already active,
// and returns a Reliable wrapping it. ch should not be published to
// directly afterwards — doing so bypasses the bookkeeping below.
func NewReliable(ch *Channel) *Reliable {
	if !ch.confirmSelect {
		ch.ConfirmSelect(false)
	}
	return &Reliable{ch: ch}
}

// Unacknowledged reports how many publishes made through this wrapper
// are still awaiting a broker confirmation.
func (r *Reliable) Unacknowledged() int {
	return len(r.ch.confirms.pending)
}

// Publish sends p and returns a Deferred resolved by its outcome:
// OnSuccess when the broker acks it, OnError when it is nacked, the
// channel fails before a confirm arrives, or the publish itself could
// not be sent.
func (r *Reliable) Publish(p Publishing) *Deferred {
	d := NewDeferred("Basic", "Publish")
	tag, err := r.ch.Publish(p, func() { d.Succeed() }, func() { d.Fail("message nacked by broker") })
	if err != nil {
		d.Fail(err.Error())
		return d
	}
	if tag == 0 {
		// not in confirm mode yet, so nothing will ever resolve the
		// deferred above; the successful send is the only outcome we can
		// report.
		d.Succeed()
	}
	return d
}
