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
	"github.com/packetd/goamqp/internal/bufbytes"
	"github.com/packetd/goamqp/protocol/amqp091"
)

// reassemblyKind identifies which method frame started the content-bearing
// sequence currently being reassembled.
type reassemblyKind int

const (
	reassembleDeliver reassemblyKind = iota
	reassembleGetOk
	reassembleReturn
)

// reassembly tracks the single in-flight deliver/get-ok/return a channel
// may be receiving at a time: the method frame's fields, the header frame's
// declared size and properties once it arrives, and the body frames
// accumulated against that declared size.
type reassembly struct {
	kind     reassemblyKind
	msg      Message
	body     *bufbytes.Bytes
	complete func(Message)
}

// beginReassembly starts tracking a new delivery. A channel may have only
// one in-flight reassembly; the caller is responsible for not starting a
// second one before the first completes, which the protocol itself
// guarantees by never interleaving content sequences on one channel.
func (ch *Channel) beginReassembly(kind reassemblyKind, msg Message, onComplete func(Message)) {
	ch.active = &reassembly{kind: kind, msg: msg, complete: onComplete}
}

// dispatchHeader handles the content-header frame that always follows a
// Deliver/GetOk/Return method frame, declaring the body's total size and
// the 14 basic-class properties.
func (ch *Channel) dispatchHeader(payload []byte) {
	if ch.active == nil {
		ch.fail("unexpected content header frame")
		return
	}

	r := amqp091.NewReader(payload)
	if _, err := r.Uint16(); err != nil { // class id, always Basic here
		ch.fail("truncated content header")
		return
	}
	if _, err := r.Uint16(); err != nil { // weight, reserved
		ch.fail("truncated content header")
		return
	}
	size, err := r.Uint64()
	if err != nil {
		ch.fail("truncated content header")
		return
	}
	meta, err := amqp091.DecodeMetadata(r)
	if err != nil {
		ch.fail("malformed content header properties")
		return
	}

	ch.active.msg.Metadata = meta
	ch.active.msg.DeclaredSize = size
	ch.active.body = bufbytes.New(int(size))
	if size == 0 {
		ch.finishReassembly()
	}
}

// dispatchBody appends one body chunk, completing the reassembly once the
// declared size has been received in full.
func (ch *Channel) dispatchBody(payload []byte) {
	if ch.active == nil || ch.active.body == nil {
		ch.fail("unexpected body frame")
		return
	}
	if err := ch.active.body.Write(payload); err != nil {
		ch.fail("body exceeds declared content length")
		return
	}
	if ch.active.body.Complete() {
		ch.finishReassembly()
	}
}

func (ch *Channel) finishReassembly() {
	active := ch.active
	ch.active = nil
	if active.body != nil {
		active.msg.Body = active.body.Clone()
	}
	if active.complete != nil {
		active.complete(active.msg)
	}
}
