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

import "github.com/packetd/goamqp/protocol/amqp091"

// Transport is the thin pluggable adapter the engine drives. It owns the
// socket, TLS, DNS, and the event loop; the engine never blocks and never
// spawns a goroutine of its own. All engine methods must be called from
// the same logical context the adapter uses to deliver callbacks.
type Transport interface {
	// OnData hands bytes that must reach the broker, in order.
	OnData(buf []byte)
	// OnNegotiate lets the adapter choose the heartbeat interval the
	// client will offer in TuneOk; 0 disables heartbeats.
	OnNegotiate(suggested uint16) uint16
	// OnProperties lets the adapter inspect the server's connection
	// properties and contribute client properties of its own.
	OnProperties(server amqp091.Table) amqp091.Table
	// OnReady fires once the connection reaches Connected.
	OnReady()
	// OnClosed fires once the connection reaches Closed after a graceful
	// close sequence.
	OnClosed()
	// OnError fires with a human-readable reason whenever the connection
	// fails fatally.
	OnError(message string)
	// OnLost fires when the adapter itself reports the socket is gone;
	// the engine treats this exactly like a broker-initiated close with
	// a fixed "connection lost" message.
	OnLost()
	// OnAttached/OnDetached bracket a channel's open/close lifecycle.
	OnAttached(channelID uint16)
	OnDetached(channelID uint16)
}

// NopTransport is a Transport that discards every callback except
// OnData, useful in tests that only care about bytes emitted.
type NopTransport struct {
	Sent [][]byte
}

func (t *NopTransport) OnData(buf []byte) {
	cp := append([]byte(nil), buf...)
	t.Sent = append(t.Sent, cp)
}
func (t *NopTransport) OnNegotiate(suggested uint16) uint16          { return suggested }
func (t *NopTransport) OnProperties(_ amqp091.Table) amqp091.Table   { return nil }
func (t *NopTransport) OnReady()                                    {}
func (t *NopTransport) OnClosed()                                   {}
func (t *NopTransport) OnError(_ string)                            {}
func (t *NopTransport) OnLost()                                     {}
func (t *NopTransport) OnAttached(_ uint16)                         {}
func (t *NopTransport) OnDetached(_ uint16)                         {}
