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

// EncodeChannelOpen appends the (empty, reserved-only) Channel.Open
// arguments.
func EncodeChannelOpen(w *Writer) error {
	return w.PutShortString("") // reserved-1
}

// ChannelFlowMethod pauses (active=false) or resumes (active=true)
// delivery on a channel.
type ChannelFlowMethod struct {
	Active bool
}

func DecodeChannelFlow(r *Reader) (ChannelFlowMethod, error) {
	bits, err := r.Bits(1)
	if err != nil {
		return ChannelFlowMethod{}, err
	}
	return ChannelFlowMethod{Active: bits[0]}, nil
}

func EncodeChannelFlow(w *Writer, m ChannelFlowMethod) {
	w.PutBits(m.Active)
}

// ChannelCloseMethod carries the reason a peer is closing a channel.
type ChannelCloseMethod struct {
	ReplyCode uint16
	ReplyText string
	ClassID   uint16
	MethodID  uint16
}

func DecodeChannelClose(r *Reader) (ChannelCloseMethod, error) {
	var m ChannelCloseMethod
	var err error
	if m.ReplyCode, err = r.Uint16(); err != nil {
		return m, err
	}
	if m.ReplyText, err = r.ShortString(); err != nil {
		return m, err
	}
	if m.ClassID, err = r.Uint16(); err != nil {
		return m, err
	}
	m.MethodID, err = r.Uint16()
	return m, err
}

func EncodeChannelClose(w *Writer, m ChannelCloseMethod) error {
	w.PutUint16(m.ReplyCode)
	if err := w.PutShortString(m.ReplyText); err != nil {
		return err
	}
	w.PutUint16(m.ClassID)
	w.PutUint16(m.MethodID)
	return nil
}
