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
	"fmt"

	"github.com/packetd/goamqp/common"
	"github.com/packetd/goamqp/internal/pubsub"
	"github.com/packetd/goamqp/logger"
	"github.com/packetd/goamqp/protocol/amqp091"
)

// ConnState is the connection-level state machine's current phase.
type ConnState int

const (
	StateProtocol ConnState = iota
	StateHandshake
	StateConnected
	StateClosing
	StateClosed
)

// LifecycleEvent is published on Connection.Events() for every observable
// transition — additive instrumentation beyond the single-callback
// Transport contract, so more than one independent observer can watch a
// connection's lifecycle without composing callback chains.
type LifecycleEvent struct {
	State   ConnState
	Message string
}

// Connection implements C4: the handshake/tune/open/close state machine,
// the channel table and allocator, and the byte-stream parse loop. All
// methods must be called from a single logical context; the engine never
// blocks or spawns goroutines of its own.
type Connection struct {
	Liveness

	transport Transport
	login     Login
	vhost     string

	state ConnState

	channelMax uint16 // negotiated
	frameMax   uint32 // negotiated
	heartbeat  uint16 // negotiated, seconds; 0 disables

	localChannelMax uint16
	localFrameMax   uint32

	channels        map[uint16]*Channel
	nextFreeChannel uint16

	outbound outboundQueue

	closeDeferred *Deferred
	events        *pubsub.PubSub
}

// NewConnection creates a Connection and immediately sends the protocol
// header — the Protocol state's only action.
func NewConnection(transport Transport, login Login, vhost string) *Connection {
	c := &Connection{
		Liveness:        NewLiveness(),
		transport:       transport,
		login:           login,
		vhost:           vhost,
		state:           StateProtocol,
		localChannelMax: common.DefaultChannelMax,
		localFrameMax:   common.DefaultMaxFrame,
		frameMax:        common.DefaultMaxFrame,
		channels:        make(map[uint16]*Channel),
		nextFreeChannel: 1,
		events:          pubsub.New(),
	}
	c.transport.OnData(amqp091.ProtocolHeader[:])
	return c
}

// Events subscribes to the fan-out lifecycle event bus; every
// LifecycleEvent published after this call is delivered to the returned
// queue until it is unsubscribed.
func (c *Connection) Events(size int) pubsub.Queue {
	return c.events.Subscribe(size)
}

// UnsubscribeEvents detaches a queue previously returned by Events.
func (c *Connection) UnsubscribeEvents(q pubsub.Queue) {
	c.events.Unsubscribe(q)
}

// State returns the connection's current phase.
func (c *Connection) State() ConnState {
	return c.state
}

// MaxFrame returns the negotiated maximum frame payload size.
func (c *Connection) MaxFrame() uint32 {
	return c.frameMax
}

func (c *Connection) publish(evt LifecycleEvent) {
	c.events.Publish(evt)
}

// send writes a frame to the transport, or queues it if the connection
// has not yet reached Connected and the frame is not part of the
// handshake/heartbeat/close fast path.
func (c *Connection) send(frame amqp091.Frame, partOfHandshake bool) {
	w := amqp091.NewWriter(len(frame.Payload) + amqp091.FrameOverhead)
	amqp091.EncodeFrame(w, frame)

	if c.state != StateConnected && !partOfHandshake {
		c.outbound.enqueue(w.Bytes())
		return
	}
	c.transport.OnData(w.Bytes())
}

func (c *Connection) sendMethod(channel uint16, cm amqp091.ClassMethod, args []byte, partOfHandshake bool) {
	w := amqp091.NewWriter(len(args) + 4)
	w.PutUint16(cm.ClassID)
	w.PutUint16(cm.MethodID)
	w.PutBytes(args)
	c.send(amqp091.Frame{Type: amqp091.FrameTypeMethod, Channel: channel, Payload: w.Bytes()}, partOfHandshake)
}

// Expected returns the minimum number of bytes the next Parse call would
// find useful. It always reports 7, the frame-header length: the engine
// does not buffer across Parse calls and keeps no record of a partially
// received frame's declared size, so it never reports a full frame
// length. Callers that cannot guarantee whole frames per call should
// accumulate bytes and retry with the growing buffer.
func (c *Connection) Expected() uint32 {
	return 7
}

// Parse decodes and dispatches as many complete frames as buf holds,
// returning the number of bytes consumed. A trailing partial frame is
// left unconsumed for the caller to supply more bytes for.
func (c *Connection) Parse(buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		frame, n, err := amqp091.DecodeFrame(buf[total:], c.frameMax)
		if err == amqp091.ErrTruncated {
			return total, nil
		}
		if err != nil {
			c.fail(fmt.Sprintf("protocol violation: %s", err))
			return total, err
		}

		mon := c.Monitor()
		c.dispatch(frame)
		total += n
		if !mon.Valid() {
			return total, nil
		}
	}
	return total, nil
}

func (c *Connection) dispatch(frame amqp091.Frame) {
	if frame.Type == amqp091.FrameTypeHeartbeat {
		c.Heartbeat()
		return
	}

	if frame.Channel == 0 {
		if frame.Type != amqp091.FrameTypeMethod {
			c.fail("unexpected non-method frame on channel 0")
			return
		}
		c.dispatchConnectionMethod(frame.Payload)
		return
	}

	ch, ok := c.channels[frame.Channel]
	if !ok {
		c.fail(fmt.Sprintf("unknown channel id %d", frame.Channel))
		return
	}

	switch frame.Type {
	case amqp091.FrameTypeMethod:
		ch.dispatchMethod(frame.Payload)
	case amqp091.FrameTypeHeader:
		ch.dispatchHeader(frame.Payload)
	case amqp091.FrameTypeBody:
		ch.dispatchBody(frame.Payload)
	default:
		c.fail(fmt.Sprintf("unrecognized frame type %d", frame.Type))
	}
}

func (c *Connection) dispatchConnectionMethod(payload []byte) {
	r := amqp091.NewReader(payload)
	classID, err := r.Uint16()
	if err != nil {
		c.fail("truncated method header")
		return
	}
	methodID, err := r.Uint16()
	if err != nil {
		c.fail("truncated method header")
		return
	}
	cm := amqp091.ClassMethod{ClassID: classID, MethodID: methodID}
	if cm.ClassID != amqp091.ClassConnection {
		c.fail(fmt.Sprintf("unexpected class %d on channel 0", cm.ClassID))
		return
	}

	switch cm.MethodID {
	case amqp091.ConnectionStart:
		c.handleStart(r)
	case amqp091.ConnectionTune:
		c.handleTune(r)
	case amqp091.ConnectionOpenOk:
		c.handleOpenOk()
	case amqp091.ConnectionClose:
		c.handleClose(r)
	case amqp091.ConnectionCloseOk:
		c.finishClose()
	default:
		c.fail(fmt.Sprintf("unexpected connection method %d", cm.MethodID))
	}
}

func (c *Connection) handleStart(r *amqp091.Reader) {
	if c.state != StateProtocol {
		c.fail("Connection.Start received outside Protocol state")
		return
	}
	start, err := amqp091.DecodeConnectionStart(r)
	if err != nil {
		c.fail("malformed Connection.Start")
		return
	}
	c.state = StateHandshake

	clientProps := amqp091.Table{
		"product": {Kind: amqp091.FieldLongString, Value: common.App},
		"version": {Kind: amqp091.FieldLongString, Value: common.Version},
	}
	if extra := c.transport.OnProperties(start.ServerProperties); extra != nil {
		for k, v := range extra {
			clientProps[k] = v
		}
	}

	response := "\x00" + c.login.User + "\x00" + c.login.Password
	w := amqp091.NewWriter(64)
	_ = amqp091.EncodeConnectionStartOk(w, amqp091.ConnectionStartOkMethod{
		ClientProperties: clientProps,
		Mechanism:        "PLAIN",
		Response:         response,
		Locale:           "en_US",
	})
	c.sendMethod(0, amqp091.ClassMethod{ClassID: amqp091.ClassConnection, MethodID: amqp091.ConnectionStartOk}, w.Bytes(), true)
}

func (c *Connection) handleTune(r *amqp091.Reader) {
	if c.state != StateHandshake {
		c.fail("Connection.Tune received outside Handshake state")
		return
	}
	tune, err := amqp091.DecodeConnectionTune(r)
	if err != nil {
		c.fail("malformed Connection.Tune")
		return
	}

	c.channelMax = negotiateLimit16(tune.ChannelMax, c.localChannelMax)
	c.frameMax = negotiateLimit32(tune.FrameMax, c.localFrameMax)
	c.heartbeat = c.transport.OnNegotiate(tune.Heartbeat)

	w := amqp091.NewWriter(8)
	amqp091.EncodeConnectionTuneOk(w, amqp091.ConnectionTuneMethod{
		ChannelMax: c.channelMax,
		FrameMax:   c.frameMax,
		Heartbeat:  c.heartbeat,
	})
	c.sendMethod(0, amqp091.ClassMethod{ClassID: amqp091.ClassConnection, MethodID: amqp091.ConnectionTuneOk}, w.Bytes(), true)

	open := amqp091.NewWriter(16)
	_ = amqp091.EncodeConnectionOpen(open, amqp091.ConnectionOpenMethod{VirtualHost: c.vhost})
	c.sendMethod(0, amqp091.ClassMethod{ClassID: amqp091.ClassConnection, MethodID: amqp091.ConnectionOpen}, open.Bytes(), true)
}

// negotiateLimit16 implements "0 from either party means no limit":
// min(server, local) unless one side is 0, in which case the other wins.
func negotiateLimit16(server, local uint16) uint16 {
	switch {
	case server == 0:
		return local
	case local == 0:
		return server
	case server < local:
		return server
	default:
		return local
	}
}

func negotiateLimit32(server, local uint32) uint32 {
	switch {
	case server == 0:
		return local
	case local == 0:
		return server
	case server < local:
		return server
	default:
		return local
	}
}

func (c *Connection) handleOpenOk() {
	if c.state != StateHandshake {
		c.fail("Connection.OpenOk received outside Handshake state")
		return
	}
	c.state = StateConnected
	c.outbound.flush(c.transport.OnData)
	c.transport.OnReady()
	c.publish(LifecycleEvent{State: StateConnected})
}

func (c *Connection) handleClose(r *amqp091.Reader) {
	closeMsg, err := amqp091.DecodeConnectionClose(r)
	if err != nil {
		closeMsg = amqp091.ConnectionCloseMethod{ReplyText: "malformed Connection.Close"}
	}
	c.sendMethod(0, amqp091.ClassMethod{ClassID: amqp091.ClassConnection, MethodID: amqp091.ConnectionCloseOk}, nil, true)
	c.failAllChannels(closeMsg.ReplyText)
	c.state = StateClosed
	c.Destroy()
	c.transport.OnError(closeMsg.ReplyText)
	c.publish(LifecycleEvent{State: StateClosed, Message: closeMsg.ReplyText})
}

func (c *Connection) finishClose() {
	c.state = StateClosed
	c.Destroy()
	if c.closeDeferred != nil {
		c.closeDeferred.Succeed()
	}
	c.transport.OnClosed()
	c.publish(LifecycleEvent{State: StateClosed})
}

// fail is the ProtocolViolation path: fatal, closes the connection and
// fails every channel before surfacing on_error.
func (c *Connection) fail(message string) {
	logger.Errorf("amqp connection protocol violation: %s", message)
	c.failAllChannels(message)
	c.state = StateClosed
	c.Destroy()
	c.transport.OnError(message)
	c.publish(LifecycleEvent{State: StateClosed, Message: message})
}

func (c *Connection) failAllChannels(message string) {
	for _, ch := range c.channels {
		ch.failAll(message)
	}
}

// Close walks the channel table sending per-channel Close frames first,
// then sends ConnectionClose and transitions to Closing.
func (c *Connection) Close() *Deferred {
	if c.state == StateClosed || c.state == StateClosing {
		d := NewDeferred("Connection", "Close")
		d.Succeed()
		return d
	}
	c.state = StateClosing
	for _, ch := range c.channels {
		ch.Close()
	}

	w := amqp091.NewWriter(8)
	_ = amqp091.EncodeConnectionClose(w, amqp091.ConnectionCloseMethod{ReplyCode: 200, ReplyText: "goodbye"})
	c.sendMethod(0, amqp091.ClassMethod{ClassID: amqp091.ClassConnection, MethodID: amqp091.ConnectionClose}, w.Bytes(), true)

	c.closeDeferred = NewDeferred("Connection", "Close")
	return c.closeDeferred
}

// Lost is called by the adapter when the underlying transport reports the
// socket is gone. Treated as ConnectionClose with a fixed message.
func (c *Connection) Lost() {
	c.failAllChannels(ErrTransportLost.Message)
	c.state = StateClosed
	c.Destroy()
	c.transport.OnLost()
	c.publish(LifecycleEvent{State: StateClosed, Message: ErrTransportLost.Message})
}

// Heartbeat sends a heartbeat frame on demand, reporting whether one was
// sent (false once the connection is no longer usable).
func (c *Connection) Heartbeat() bool {
	if c.state == StateClosed {
		return false
	}
	w := amqp091.NewWriter(8)
	amqp091.EncodeHeartbeat(w)
	c.transport.OnData(w.Bytes())
	return true
}

// OpenChannel allocates the next free channel id and sends Channel.Open.
// The returned Deferred succeeds with the new *Channel once the broker
// replies with Channel.OpenOk, or fails with ErrChannelMaxExhausted if
// channel-max channels are already open.
func (c *Connection) OpenChannel() *Deferred {
	d := NewDeferred("Channel", "Open")
	id, err := c.allocateChannel()
	if err != nil {
		d.Fail(err.Error())
		return d
	}
	ch := newChannel(c, id)
	c.channels[id] = ch
	ch.sendOpen()
	return ch.enqueue(d)
}

// allocateChannel starts at 1, skips 0, and walks from the rolling
// cursor without rewinding on release — biasing toward reuse of recent
// slots while keeping allocation amortized O(1).
func (c *Connection) allocateChannel() (uint16, error) {
	limit := c.channelMax
	if limit == 0 {
		limit = c.localChannelMax
	}
	if uint16(len(c.channels)) >= limit {
		return 0, ErrChannelMaxExhausted
	}
	start := c.nextFreeChannel
	if start == 0 {
		start = 1
	}
	id := start
	for {
		if _, taken := c.channels[id]; !taken {
			c.nextFreeChannel = id + 1
			if c.nextFreeChannel == 0 {
				c.nextFreeChannel = 1
			}
			return id, nil
		}
		id++
		if id == 0 {
			id = 1
		}
		if id == start {
			return 0, ErrChannelMaxExhausted
		}
		if uint16(len(c.channels)) >= limit {
			return 0, ErrChannelMaxExhausted
		}
	}
}

func (c *Connection) releaseChannel(id uint16) {
	delete(c.channels, id)
}
