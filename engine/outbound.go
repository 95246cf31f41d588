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

// outboundQueue holds frames emitted before the connection reaches
// Connected. Heartbeat, handshake, and close frames bypass it entirely by
// never being handed to enqueue in the first place — the caller decides
// that with partOfHandshake.
type outboundQueue struct {
	pending [][]byte
}

func (q *outboundQueue) enqueue(frame []byte) {
	q.pending = append(q.pending, frame)
}

// flush hands every queued frame to send, in FIFO order, then empties
// the queue.
func (q *outboundQueue) flush(send func([]byte)) {
	pending := q.pending
	q.pending = nil
	for _, frame := range pending {
		send(frame)
	}
}

func (q *outboundQueue) len() int {
	return len(q.pending)
}
