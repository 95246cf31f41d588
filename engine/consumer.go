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

// ConsumerHandler receives messages and the server-initiated cancel
// notification for one consumer tag.
type ConsumerHandler struct {
	OnMessage func(Message)
	OnCancel  func()
}

// consumerRegistry maps consumer tags to their handlers. A broker is
// authoritative over tag uniqueness: registering an already-known tag
// silently replaces the previous handler rather than erroring, since the
// broker would have rejected the Consume itself had the tag genuinely
// collided.
type consumerRegistry struct {
	byTag map[string]ConsumerHandler
}

func newConsumerRegistry() *consumerRegistry {
	return &consumerRegistry{byTag: make(map[string]ConsumerHandler)}
}

func (r *consumerRegistry) register(tag string, h ConsumerHandler) {
	r.byTag[tag] = h
}

// deliver routes a reassembled message to its consumer, reporting whether
// a handler was found.
func (r *consumerRegistry) deliver(tag string, msg Message) bool {
	h, ok := r.byTag[tag]
	if !ok {
		return false
	}
	if h.OnMessage != nil {
		h.OnMessage(msg)
	}
	return true
}

// cancel removes tag, firing its OnCancel hook. Used for both
// client-requested cancellation and broker-initiated Basic.Cancel.
func (r *consumerRegistry) cancel(tag string) {
	h, ok := r.byTag[tag]
	if !ok {
		return
	}
	delete(r.byTag, tag)
	if h.OnCancel != nil {
		h.OnCancel()
	}
}

// cancelAll fires every registered consumer's OnCancel hook, used when the
// owning channel closes.
func (r *consumerRegistry) cancelAll() {
	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	for _, tag := range tags {
		r.cancel(tag)
	}
}
