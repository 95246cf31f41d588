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
	"github.com/google/uuid"

	"github.com/packetd/goamqp/protocol/amqp091"
)

// Publishing is the argument to Channel.Publish: the routing envelope,
// properties, and body of one message.
type Publishing struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
	Metadata   amqp091.Metadata
	Body       []byte
}

// DeclareExchange declares an exchange of the given type.
func (ch *Channel) DeclareExchange(name, kind string, flags Flags, args amqp091.Table) *Deferred {
	d := NewDeferred("Exchange", "Declare")
	w := amqp091.NewWriter(len(name) + len(kind) + 8)
	err := amqp091.EncodeExchangeDeclare(w, amqp091.ExchangeDeclareMethod{
		Exchange:   name,
		Type:       kind,
		Passive:    flags.Has(FlagPassive),
		Durable:    flags.Has(FlagDurable),
		AutoDelete: flags.Has(FlagAutoDelete),
		Internal:   flags.Has(FlagInternal),
		NoWait:     flags.Has(FlagNoWait),
		Arguments:  args,
	})
	if err != nil {
		d.Fail(err.Error())
		return d
	}
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassExchange, MethodID: amqp091.ExchangeDeclare}, w.Bytes())
	return ch.enqueue(d)
}

// RemoveExchange deletes an exchange.
func (ch *Channel) RemoveExchange(name string, flags Flags) *Deferred {
	d := NewDeferred("Exchange", "Delete")
	w := amqp091.NewWriter(len(name) + 4)
	err := amqp091.EncodeExchangeDelete(w, amqp091.ExchangeDeleteMethod{
		Exchange: name,
		IfUnused: flags.Has(FlagIfUnused),
		NoWait:   flags.Has(FlagNoWait),
	})
	if err != nil {
		d.Fail(err.Error())
		return d
	}
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassExchange, MethodID: amqp091.ExchangeDelete}, w.Bytes())
	return ch.enqueue(d)
}

// BindExchange binds source to destination under routingKey.
func (ch *Channel) BindExchange(destination, source, routingKey string, flags Flags, args amqp091.Table) *Deferred {
	d := NewDeferred("Exchange", "Bind")
	w := amqp091.NewWriter(len(destination) + len(source) + len(routingKey) + 8)
	err := amqp091.EncodeExchangeBind(w, amqp091.ExchangeBindMethod{
		Destination: destination,
		Source:      source,
		RoutingKey:  routingKey,
		NoWait:      flags.Has(FlagNoWait),
		Arguments:   args,
	})
	if err != nil {
		d.Fail(err.Error())
		return d
	}
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassExchange, MethodID: amqp091.ExchangeBind}, w.Bytes())
	return ch.enqueue(d)
}

// UnbindExchange removes an exchange-to-exchange binding.
func (ch *Channel) UnbindExchange(destination, source, routingKey string, flags Flags, args amqp091.Table) *Deferred {
	d := NewDeferred("Exchange", "Unbind")
	w := amqp091.NewWriter(len(destination) + len(source) + len(routingKey) + 8)
	err := amqp091.EncodeExchangeUnbind(w, amqp091.ExchangeUnbindMethod{
		Destination: destination,
		Source:      source,
		RoutingKey:  routingKey,
		NoWait:      flags.Has(FlagNoWait),
		Arguments:   args,
	})
	if err != nil {
		d.Fail(err.Error())
		return d
	}
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassExchange, MethodID: amqp091.ExchangeUnbind}, w.Bytes())
	return ch.enqueue(d)
}

// DeclareQueue declares a queue. On success the deferred's args are
// (name string, messageCount uint32, consumerCount uint32).
func (ch *Channel) DeclareQueue(name string, flags Flags, args amqp091.Table) *Deferred {
	d := NewDeferred("Queue", "Declare")
	w := amqp091.NewWriter(len(name) + 8)
	err := amqp091.EncodeQueueDeclare(w, amqp091.QueueDeclareMethod{
		Queue:      name,
		Passive:    flags.Has(FlagPassive),
		Durable:    flags.Has(FlagDurable),
		Exclusive:  flags.Has(FlagExclusive),
		AutoDelete: flags.Has(FlagAutoDelete),
		NoWait:     flags.Has(FlagNoWait),
		Arguments:  args,
	})
	if err != nil {
		d.Fail(err.Error())
		return d
	}
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassQueue, MethodID: amqp091.QueueDeclare}, w.Bytes())
	return ch.enqueue(d)
}

// BindQueue binds queue to exchange under routingKey.
func (ch *Channel) BindQueue(queue, exchange, routingKey string, flags Flags, args amqp091.Table) *Deferred {
	d := NewDeferred("Queue", "Bind")
	w := amqp091.NewWriter(len(queue) + len(exchange) + len(routingKey) + 8)
	err := amqp091.EncodeQueueBind(w, amqp091.QueueBindMethod{
		Queue:      queue,
		Exchange:   exchange,
		RoutingKey: routingKey,
		NoWait:     flags.Has(FlagNoWait),
		Arguments:  args,
	})
	if err != nil {
		d.Fail(err.Error())
		return d
	}
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassQueue, MethodID: amqp091.QueueBind}, w.Bytes())
	return ch.enqueue(d)
}

// UnbindQueue removes a queue-to-exchange binding.
func (ch *Channel) UnbindQueue(queue, exchange, routingKey string, args amqp091.Table) *Deferred {
	d := NewDeferred("Queue", "Unbind")
	w := amqp091.NewWriter(len(queue) + len(exchange) + len(routingKey) + 8)
	err := amqp091.EncodeQueueUnbind(w, amqp091.QueueUnbindMethod{
		Queue:      queue,
		Exchange:   exchange,
		RoutingKey: routingKey,
		Arguments:  args,
	})
	if err != nil {
		d.Fail(err.Error())
		return d
	}
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassQueue, MethodID: amqp091.QueueUnbind}, w.Bytes())
	return ch.enqueue(d)
}

// PurgeQueue discards all ready messages in queue. On success the
// deferred's args are (messageCount uint32).
func (ch *Channel) PurgeQueue(queue string, flags Flags) *Deferred {
	d := NewDeferred("Queue", "Purge")
	w := amqp091.NewWriter(len(queue) + 4)
	err := amqp091.EncodeQueuePurge(w, amqp091.QueuePurgeMethod{Queue: queue, NoWait: flags.Has(FlagNoWait)})
	if err != nil {
		d.Fail(err.Error())
		return d
	}
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassQueue, MethodID: amqp091.QueuePurge}, w.Bytes())
	return ch.enqueue(d)
}

// RemoveQueue deletes queue. On success the deferred's args are
// (messageCount uint32).
func (ch *Channel) RemoveQueue(queue string, flags Flags) *Deferred {
	d := NewDeferred("Queue", "Delete")
	w := amqp091.NewWriter(len(queue) + 4)
	err := amqp091.EncodeQueueDelete(w, amqp091.QueueDeleteMethod{
		Queue:    queue,
		IfUnused: flags.Has(FlagIfUnused),
		IfEmpty:  flags.Has(FlagIfEmpty),
		NoWait:   flags.Has(FlagNoWait),
	})
	if err != nil {
		d.Fail(err.Error())
		return d
	}
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassQueue, MethodID: amqp091.QueueDelete}, w.Bytes())
	return ch.enqueue(d)
}

// SetQos sets the channel's prefetch window.
func (ch *Channel) SetQos(prefetchCount uint16, prefetchSize uint32, global bool) *Deferred {
	d := NewDeferred("Basic", "Qos")
	w := amqp091.NewWriter(8)
	amqp091.EncodeBasicQos(w, amqp091.BasicQosMethod{PrefetchSize: prefetchSize, PrefetchCount: prefetchCount, Global: global})
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicQos}, w.Bytes())
	return ch.enqueue(d)
}

// Consume starts a consumer on queue. consumerTag may be empty to request
// a server-assigned tag. handler receives every delivered message and the
// server-initiated cancel notification. On success the deferred's args
// are (consumerTag string).
func (ch *Channel) Consume(queue, consumerTag string, flags Flags, args amqp091.Table, handler ConsumerHandler) *Deferred {
	d := NewDeferred("Basic", "Consume")
	w := amqp091.NewWriter(len(queue) + len(consumerTag) + 8)
	err := amqp091.EncodeBasicConsume(w, amqp091.BasicConsumeMethod{
		Queue:       queue,
		ConsumerTag: consumerTag,
		NoLocal:     flags.Has(FlagNoLocal),
		NoAck:       flags.Has(FlagNoAck),
		Exclusive:   flags.Has(FlagExclusive),
		NoWait:      flags.Has(FlagNoWait),
		Arguments:   args,
	})
	if err != nil {
		d.Fail(err.Error())
		return d
	}
	// the handler is registered from an internal deferred, so a caller's
	// own OnSuccess on d does not replace the registration.
	inner := NewDeferred("Basic", "Consume")
	inner.OnSuccess(func(out ...any) {
		tag, _ := out[0].(string)
		ch.consumers.register(tag, handler)
		d.Succeed(out...)
	})
	inner.OnError(d.Fail)
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicConsume}, w.Bytes())
	ch.enqueue(inner)
	return d
}

// Cancel stops a consumer. On success the deferred's args are
// (consumerTag string).
func (ch *Channel) Cancel(consumerTag string, flags Flags) *Deferred {
	d := NewDeferred("Basic", "Cancel")
	w := amqp091.NewWriter(len(consumerTag) + 4)
	err := amqp091.EncodeBasicCancel(w, amqp091.BasicCancelMethod{ConsumerTag: consumerTag, NoWait: flags.Has(FlagNoWait)})
	if err != nil {
		d.Fail(err.Error())
		return d
	}
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicCancel}, w.Bytes())
	return ch.enqueue(d)
}

// Get polls queue for a single message outside of a consumer
// subscription. On success the deferred's args are (Message) when a
// message was available, or no args when the queue was empty
// (Basic.GetEmpty).
func (ch *Channel) Get(queue string, flags Flags) *Deferred {
	d := NewDeferred("Basic", "Get")
	w := amqp091.NewWriter(len(queue) + 4)
	err := amqp091.EncodeBasicGet(w, amqp091.BasicGetMethod{Queue: queue, NoAck: flags.Has(FlagNoAck)})
	if err != nil {
		d.Fail(err.Error())
		return d
	}
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicGet}, w.Bytes())
	return ch.enqueue(d)
}

// Publish sends a message. The returned delivery tag is non-zero only
// when Confirm.Select is active on this channel; onAck/onNack (optional)
// fire when the broker confirms it.
func (ch *Channel) Publish(p Publishing, onAck, onNack func()) (uint64, error) {
	if ch.state != ChannelConnected {
		return 0, ErrChannelAlreadyClosed
	}

	w := amqp091.NewWriter(len(p.Exchange) + len(p.RoutingKey) + 8)
	if err := amqp091.EncodeBasicPublish(w, amqp091.BasicPublishMethod{
		Exchange:   p.Exchange,
		RoutingKey: p.RoutingKey,
		Mandatory:  p.Mandatory,
		Immediate:  p.Immediate,
	}); err != nil {
		return 0, err
	}
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicPublish}, w.Bytes())

	hw := amqp091.NewWriter(32)
	hw.PutUint16(amqp091.ClassBasic)
	hw.PutUint16(0) // weight, reserved
	hw.PutUint64(uint64(len(p.Body)))
	if err := amqp091.EncodeMetadata(hw, p.Metadata); err != nil {
		return 0, err
	}
	ch.conn.send(amqp091.Frame{Type: amqp091.FrameTypeHeader, Channel: ch.id, Payload: hw.Bytes()}, false)

	body := p.Body
	max := 0
	if ch.conn.frameMax > 0 {
		max = int(ch.conn.frameMax) - amqp091.FrameOverhead
	}
	for len(body) > 0 {
		n := len(body)
		if max > 0 && n > max {
			n = max
		}
		ch.conn.send(amqp091.Frame{Type: amqp091.FrameTypeBody, Channel: ch.id, Payload: body[:n]}, false)
		body = body[n:]
	}

	var tag uint64
	if ch.confirmSelect {
		tag = ch.nextDeliveryTag
		ch.nextDeliveryTag++
		ch.confirms.track(tag, p.Body, onAck, onNack)
	}
	return tag, nil
}

// Ack acknowledges one delivery, or every delivery up to and including
// deliveryTag when multiple is set.
func (ch *Channel) Ack(deliveryTag uint64, multiple bool) {
	w := amqp091.NewWriter(9)
	amqp091.EncodeBasicAck(w, amqp091.BasicAckMethod{DeliveryTag: deliveryTag, Multiple: multiple})
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicAck}, w.Bytes())
}

// Reject negatively acknowledges a single delivery.
func (ch *Channel) Reject(deliveryTag uint64, requeue bool) {
	w := amqp091.NewWriter(9)
	amqp091.EncodeBasicReject(w, amqp091.BasicRejectMethod{DeliveryTag: deliveryTag, Requeue: requeue})
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicReject}, w.Bytes())
}

// Nack negatively acknowledges one delivery, or every delivery up to and
// including deliveryTag when multiple is set.
func (ch *Channel) Nack(deliveryTag uint64, multiple, requeue bool) {
	w := amqp091.NewWriter(10)
	amqp091.EncodeBasicNack(w, amqp091.BasicNackMethod{DeliveryTag: deliveryTag, Multiple: multiple, Requeue: requeue})
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicNack}, w.Bytes())
}

// Recover asks the broker to redeliver this channel's unacknowledged
// messages.
func (ch *Channel) Recover(requeue bool) *Deferred {
	d := NewDeferred("Basic", "Recover")
	w := amqp091.NewWriter(1)
	amqp091.EncodeBasicRecover(w, amqp091.BasicRecoverMethod{Requeue: requeue})
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassBasic, MethodID: amqp091.BasicRecover}, w.Bytes())
	return ch.enqueue(d)
}

// ConfirmSelect switches the channel into publisher-confirm mode.
func (ch *Channel) ConfirmSelect(noWait bool) *Deferred {
	d := NewDeferred("Confirm", "Select")
	w := amqp091.NewWriter(1)
	amqp091.EncodeConfirmSelect(w, amqp091.ConfirmSelectMethod{NoWait: noWait})
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassConfirm, MethodID: amqp091.ConfirmSelect}, w.Bytes())
	if noWait {
		ch.confirmSelect = true
		d.Succeed()
		return d
	}
	return ch.enqueue(d)
}

// StartTransaction begins a transaction on this channel.
func (ch *Channel) StartTransaction() *Deferred {
	d := NewDeferred("Tx", "Select")
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassTx, MethodID: amqp091.TxSelect}, nil)
	d.OnSuccess(func(...any) { ch.inTransaction = true })
	return ch.enqueue(d)
}

// CommitTransaction commits the channel's open transaction.
func (ch *Channel) CommitTransaction() *Deferred {
	d := NewDeferred("Tx", "Commit")
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassTx, MethodID: amqp091.TxCommit}, nil)
	return ch.enqueue(d)
}

// RollbackTransaction rolls back the channel's open transaction.
func (ch *Channel) RollbackTransaction() *Deferred {
	d := NewDeferred("Tx", "Rollback")
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassTx, MethodID: amqp091.TxRollback}, nil)
	return ch.enqueue(d)
}

// Pause asks the broker to stop delivering messages on this channel.
func (ch *Channel) Pause() {
	w := amqp091.NewWriter(1)
	amqp091.EncodeChannelFlow(w, amqp091.ChannelFlowMethod{Active: false})
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassChannel, MethodID: amqp091.ChannelFlow}, w.Bytes())
}

// Resume asks the broker to resume delivering messages on this channel.
func (ch *Channel) Resume() {
	w := amqp091.NewWriter(1)
	amqp091.EncodeChannelFlow(w, amqp091.ChannelFlowMethod{Active: true})
	ch.sendMethod(amqp091.ClassMethod{ClassID: amqp091.ClassChannel, MethodID: amqp091.ChannelFlow}, w.Bytes())
}

// NewConsumerTag generates a client-chosen consumer tag, used when the
// caller wants a predictable tag rather than a server-assigned one.
func NewConsumerTag() string {
	return "ctag-" + uuid.NewString()
}
