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

import "github.com/pkg/errors"

// Kind classifies why an operation failed, per the error-handling design:
// Truncated stays inside parse(); every other kind walks pending deferreds
// and fires their error callbacks before the connection-level handler runs.
type Kind int

const (
	// KindProtocolViolation covers bad terminators, oversize frames,
	// unknown class/method pairs, and frames unexpected for the current
	// state. Fatal: closes the connection and fails every channel.
	KindProtocolViolation Kind = iota
	// KindChannelClose is a broker-rejected channel operation. The
	// channel transitions to Closed and its pending deferreds fail with
	// the broker's reply text.
	KindChannelClose
	// KindConnectionClose is a broker-initiated connection close.
	KindConnectionClose
	// KindTransportLost is reported by the adapter when the underlying
	// socket is gone. Treated like KindConnectionClose with a fixed
	// message.
	KindTransportLost
	// KindUserClose is a graceful, user-requested close.
	KindUserClose
)

func (k Kind) String() string {
	switch k {
	case KindProtocolViolation:
		return "protocol violation"
	case KindChannelClose:
		return "channel closed"
	case KindConnectionClose:
		return "connection closed"
	case KindTransportLost:
		return "connection lost"
	case KindUserClose:
		return "user close"
	default:
		return "unknown"
	}
}

// Error is the engine's uniform failure type, carrying a Kind alongside
// the human-readable reason reported to deferred error callbacks.
type Error struct {
	Kind     Kind
	Message  string
	ReplyCode uint16
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds an *Error for the given kind and message.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// ErrTransportLost is the fixed message the spec mandates for adapter-
// reported socket loss.
var ErrTransportLost = NewError(KindTransportLost, "connection lost")

// ErrChannelAlreadyClosed is returned synchronously by channel operations
// issued after the channel has transitioned to Closed.
var ErrChannelAlreadyClosed = errors.New("engine: channel already closed")

// ErrChannelMaxExhausted is returned by the channel allocator when no
// free id remains below the negotiated channel-max.
var ErrChannelMaxExhausted = errors.New("engine: channel-max exhausted")
