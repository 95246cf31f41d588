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

	"github.com/packetd/goamqp/logger"
	"github.com/packetd/goamqp/protocol/amqp091"
)

// ChannelState is a channel's lifecycle: it starts Connected and moves
// exactly once to Closed, whether by user request, broker rejection, or
// the owning connection failing.
type ChannelState int

const (
	ChannelConnected ChannelState = iota
	ChannelClosed
)

// pendingQueue is the per-channel FIFO of deferreds awaiting a
// synchronous reply, completed head-first as replies arrive. A slice with
// a head index gives the same FIFO, head-first-completion behavior as a
// singly-linked list while staying idiomatic Go; released entries are
// nilled out so they don't pin memory.
type pendingQueue struct {
	items []*Deferred
	head  int
}

func (q *pendingQueue) push(d *Deferred) {
	q.items = append(q.items, d)
}

func (q *pendingQueue) pop() (*Deferred, bool) {
	if q.head >= len(q.items) {
		return nil, false
	}
	d := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return d, true
}

func (q *pendingQueue) failAll(message string) {
	for {
		d, ok := q.pop()
		if !ok {
			return
		}
		d.Fail(message)
	}
}

// Channel implements C5: the per-channel operation table, reply matching,
// consumer and confirm bookkeeping, and content reassembly routing.
type Channel struct {
	Liveness

	id    uint16
	conn  *Connection
	state ChannelState

	pending pendingQueue

	paused        bool
	inTransaction bool
	confirmSelect bool

	nextDeliveryTag uint64

	active    *reassembly
	consumers *consumerRegistry
	confirms  *confirmTracker

	onReturn func(Message)
}

func newChannel(conn *Connection, id uint16) *Channel {
	return &Channel{
		Liveness:        NewLiveness(),
		id:              id,
		conn:            conn,
		state:           ChannelConnected,
		nextDeliveryTag: 1,
		consumers:       newConsumerRegistry(),
		confirms:        newConfirmTracker(),
	}
}

// ID returns the channel's negotiated identifier.
func (ch *Channel) ID() uint16 {
	return ch.id
}

// State reports whether the channel can still accept operations.
func (ch *Channel) State() ChannelState {
	return ch.state
}

// OnReturn registers the handler invoked for undeliverable
// mandatory/immediate publishes the broker returns to this channel.
func (ch *Channel) OnReturn(fn func(Message)) {
	ch.onReturn = fn
}

func (ch *Channel) sendMethod(cm amqp091.ClassMethod, args []byte) {
	ch.conn.sendMethod(ch.id, cm, args, false)
}

func (ch *Channel) sendOpen() {
	w := amqp091.NewWriter(4)
	_ = amqp091.EncodeChannelOpen(w)
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassChannel, MethodID: amqp091.ChannelOpen}, w.Bytes())
}

// enqueue appends d to the pending-reply queue unless the channel is
// already closed, in which case it fails synchronously.
func (ch *Channel) enqueue(d *Deferred) *Deferred {
	if ch.state != ChannelConnected {
		d.Fail(ErrChannelAlreadyClosed.Error())
		return d
	}
	ch.pending.push(d)
	return d
}

func (ch *Channel) fail(message string) {
	logger.Errorf("amqp channel %d protocol violation: %s", ch.id, message)
	ch.failAll(message)
}

// failAll transitions the channel to Closed and fails every pending
// deferred, every outstanding confirm, and every registered consumer, in
// that order. Called for both broker-initiated close and connection-wide
// failure.
func (ch *Channel) failAll(message string) {
	if ch.state == ChannelClosed {
		return
	}
	ch.state = ChannelClosed
	ch.Destroy()
	ch.pending.failAll(message)
	ch.confirms.failAll()
	ch.consumers.cancelAll()
	ch.conn.releaseChannel(ch.id)
	ch.conn.transport.OnDetached(ch.id)
}

// dispatchMethod routes one decoded method frame to either reply
// completion (the common case) or one of the few methods the broker sends
// unsolicited (Channel.Close, Channel.Flow, Basic.Deliver/Return/Cancel,
// Basic.Ack/Nack).
func (ch *Channel) dispatchMethod(payload []byte) {
	r := amqp091.NewReader(payload)
	classID, err := r.Uint16()
	if err != nil {
		ch.fail("truncated method header")
		return
	}
	methodID, err := r.Uint16()
	if err != nil {
		ch.fail("truncated method header")
		return
	}
	cm := amqp091.ClassMethod{ClassID: classID, MethodID: methodID}

	switch cm {
	case amqp091.ClassMethod{ClassID: amqp091.ClassChannel, MethodID: amqp091.ChannelClose}:
		ch.handleClose(r)
		return
	case amqp091.ClassMethod{ClassID: amqp091.ClassChannel, MethodID: amqp091.ChannelFlow}:
		ch.handleFlow(r)
		return
	case amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicDeliver}:
		ch.handleDeliver(r)
		return
	case amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicReturn}:
		ch.handleReturn(r)
		return
	case amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicCancel}:
		ch.handleBrokerCancel(r)
		return
	case amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicAck}:
		ch.handleAck(r)
		return
	case amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicNack}:
		ch.handleNack(r)
		return
	case amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicGetEmpty}:
		ch.completeSynchronous(nil)
		return
	}

	d, ok := ch.pending.pop()
	if !ok {
		ch.fail(fmt.Sprintf("unexpected reply class=%d method=%d with no pending request", cm.ClassID, cm.MethodID))
		return
	}

	switch cm {
	case amqp091.ClassMethod{ClassID: amqp091.ClassChannel, MethodID: amqp091.ChannelOpenOk}:
		ch.conn.transport.OnAttached(ch.id)
		d.Succeed(ch)
	case amqp091.ClassMethod{ClassID: amqp091.ClassChannel, MethodID: amqp091.ChannelCloseOk}:
		d.Succeed()
	case amqp091.ClassMethod{ClassID: amqp091.ClassExchange, MethodID: amqp091.ExchangeDeclareOk}:
		d.Succeed()
	case amqp091.ClassMethod{ClassID: amqp091.ClassExchange, MethodID: amqp091.ExchangeDeleteOk}:
		d.Succeed()
	case amqp091.ClassMethod{ClassID: amqp091.ClassExchange, MethodID: amqp091.ExchangeBindOk}:
		d.Succeed()
	case amqp091.ClassMethod{ClassID: amqp091.ClassExchange, MethodID: amqp091.ExchangeUnbindOk}:
		d.Succeed()
	case amqp091.ClassMethod{ClassID: amqp091.ClassQueue, MethodID: amqp091.QueueDeclareOk}:
		m, err := amqp091.DecodeQueueDeclareOk(r)
		if err != nil {
			d.Fail("malformed Queue.DeclareOk")
			return
		}
		d.Succeed(m.Queue, m.MessageCount, m.ConsumerCount)
	case amqp091.ClassMethod{ClassID: amqp091.ClassQueue, MethodID: amqp091.QueueBindOk}:
		d.Succeed()
	case amqp091.ClassMethod{ClassID: amqp091.ClassQueue, MethodID: amqp091.QueueUnbindOk}:
		d.Succeed()
	case amqp091.ClassMethod{ClassID: amqp091.ClassQueue, MethodID: amqp091.QueuePurgeOk}:
		m, err := amqp091.DecodeQueuePurgeOk(r)
		if err != nil {
			d.Fail("malformed Queue.PurgeOk")
			return
		}
		d.Succeed(m.MessageCount)
	case amqp091.ClassMethod{ClassID: amqp091.ClassQueue, MethodID: amqp091.QueueDeleteOk}:
		m, err := amqp091.DecodeQueueDeleteOk(r)
		if err != nil {
			d.Fail("malformed Queue.DeleteOk")
			return
		}
		d.Succeed(m.MessageCount)
	case amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicQosOk}:
		d.Succeed()
	case amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicConsumeOk}:
		m, err := amqp091.DecodeBasicConsumeOk(r)
		if err != nil {
			d.Fail("malformed Basic.ConsumeOk")
			return
		}
		d.Succeed(m.ConsumerTag)
	case amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicCancelOk}:
		m, err := amqp091.DecodeBasicCancelOk(r)
		if err != nil {
			d.Fail("malformed Basic.CancelOk")
			return
		}
		ch.consumers.cancel(m.ConsumerTag)
		d.Succeed(m.ConsumerTag)
	case amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicGetOk}:
		ch.handleGetOk(r, d)
	case amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicRecoverOk}:
		d.Succeed()
	case amqp091.ClassMethod{ClassID: amqp091.ClassConfirm, MethodID: amqp091.ConfirmSelectOk}:
		ch.confirmSelect = true
		d.Succeed()
	case amqp091.ClassMethod{ClassID: amqp091.ClassTx, MethodID: amqp091.TxSelectOk}:
		d.Succeed()
	case amqp091.ClassMethod{ClassID: amqp091.ClassTx, MethodID: amqp091.TxCommitOk}:
		d.Succeed()
	case amqp091.ClassMethod{ClassID: amqp091.ClassTx, MethodID: amqp091.TxRollbackOk}:
		d.Succeed()
	default:
		d.Fail(fmt.Sprintf("unexpected reply class=%d method=%d", cm.ClassID, cm.MethodID))
	}
}

// completeSynchronous finishes the oldest pending reply with args,
// used for the no-args-decoded Basic.GetEmpty fast path.
func (ch *Channel) completeSynchronous(args []any) {
	d, ok := ch.pending.pop()
	if !ok {
		return
	}
	d.Succeed(args...)
}

func (ch *Channel) handleClose(r *amqp091.Reader) {
	m, err := amqp091.DecodeChannelClose(r)
	if err != nil {
		m = amqp091.ChannelCloseMethod{ReplyText: "malformed Channel.Close"}
	}
	ch.conn.sendMethod(ch.id, amqp091.ClassMethod{ClassID: amqp091.ClassChannel, MethodID: amqp091.ChannelCloseOk}, nil, false)
	ch.failAll(m.ReplyText)
}

func (ch *Channel) handleFlow(r *amqp091.Reader) {
	m, err := amqp091.DecodeChannelFlow(r)
	if err != nil {
		ch.fail("malformed Channel.Flow")
		return
	}
	ch.paused = !m.Active
	fw := amqp091.NewWriter(1)
	amqp091.EncodeChannelFlow(fw, m)
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassChannel, MethodID: amqp091.ChannelFlowOk}, fw.Bytes())
}

func (ch *Channel) handleDeliver(r *amqp091.Reader) {
	m, err := amqp091.DecodeBasicDeliver(r)
	if err != nil {
		ch.fail("malformed Basic.Deliver")
		return
	}
	msg := Message{
		ConsumerTag: m.ConsumerTag,
		DeliveryTag: m.DeliveryTag,
		Redelivered: m.Redelivered,
		Exchange:    m.Exchange,
		RoutingKey:  m.RoutingKey,
	}
	ch.beginReassembly(reassembleDeliver, msg, func(final Message) {
		if !ch.consumers.deliver(final.ConsumerTag, final) {
			logger.Warnf("delivery for unknown consumer tag %q on channel %d", final.ConsumerTag, ch.id)
		}
	})
}

func (ch *Channel) handleReturn(r *amqp091.Reader) {
	m, err := amqp091.DecodeBasicReturn(r)
	if err != nil {
		ch.fail("malformed Basic.Return")
		return
	}
	msg := Message{
		Exchange:   m.Exchange,
		RoutingKey: m.RoutingKey,
		ReplyCode:  m.ReplyCode,
		ReplyText:  m.ReplyText,
	}
	ch.beginReassembly(reassembleReturn, msg, func(final Message) {
		if ch.onReturn != nil {
			ch.onReturn(final)
		}
	})
}

func (ch *Channel) handleGetOk(r *amqp091.Reader, d *Deferred) {
	m, err := amqp091.DecodeBasicGetOk(r)
	if err != nil {
		d.Fail("malformed Basic.GetOk")
		return
	}
	msg := Message{
		DeliveryTag:  m.DeliveryTag,
		Redelivered:  m.Redelivered,
		Exchange:     m.Exchange,
		RoutingKey:   m.RoutingKey,
		MessageCount: m.MessageCount,
	}
	ch.beginReassembly(reassembleGetOk, msg, func(final Message) {
		d.Succeed(final)
	})
}

func (ch *Channel) handleBrokerCancel(r *amqp091.Reader) {
	m, err := amqp091.DecodeBasicCancel(r)
	if err != nil {
		ch.fail("malformed Basic.Cancel")
		return
	}
	ch.consumers.cancel(m.ConsumerTag)
	if !m.NoWait {
		w := amqp091.NewWriter(4)
		_ = w.PutShortString(m.ConsumerTag)
		ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicCancelOk}, w.Bytes())
	}
}

func (ch *Channel) handleAck(r *amqp091.Reader) {
	m, err := amqp091.DecodeBasicAck(r)
	if err != nil {
		ch.fail("malformed Basic.Ack")
		return
	}
	ch.confirms.resolve(ch, m.DeliveryTag, m.Multiple, true)
}

func (ch *Channel) handleNack(r *amqp091.Reader) {
	m, err := amqp091.DecodeBasicNack(r)
	if err != nil {
		ch.fail("malformed Basic.Nack")
		return
	}
	ch.confirms.resolve(ch, m.DeliveryTag, m.Multiple, false)
}

// Close requests an orderly channel shutdown.
func (ch *Channel) Close() *Deferred {
	d := NewDeferred("Channel", "Close")
	if ch.state != ChannelConnected {
		d.Succeed()
		return d
	}
	w := amqp091.NewWriter(8)
	_ = amqp091.EncodeChannelClose(w, amqp091.ChannelCloseMethod{ReplyCode: 200, ReplyText: "goodbye"})
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassChannel, MethodID: amqp091.ChannelClose}, w.Bytes())
	ch.enqueue(d)
	d.OnFinalize(func() {
		ch.failAll("channel closed")
	})
	return d
}
