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

// BasicQosMethod sets the prefetch window for a channel (or, with
// Global, the whole connection).
type BasicQosMethod struct {
	PrefetchSize  uint32
	PrefetchCount uint16
	Global        bool
}

func EncodeBasicQos(w *Writer, m BasicQosMethod) {
	w.PutUint32(m.PrefetchSize)
	w.PutUint16(m.PrefetchCount)
	w.PutBits(m.Global)
}

// BasicConsumeMethod starts a consumer on a queue, with an optional
// client-chosen consumer tag (empty means server-assigned).
type BasicConsumeMethod struct {
	Queue       string
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	NoWait      bool
	Arguments   Table
}

func EncodeBasicConsume(w *Writer, m BasicConsumeMethod) error {
	w.PutUint16(0) // reserved-1
	if err := w.PutShortString(m.Queue); err != nil {
		return err
	}
	if err := w.PutShortString(m.ConsumerTag); err != nil {
		return err
	}
	w.PutBits(m.NoLocal, m.NoAck, m.Exclusive, m.NoWait)
	EncodeTable(w, m.Arguments)
	return nil
}

// BasicConsumeOkMethod confirms the (possibly server-assigned) consumer
// tag.
type BasicConsumeOkMethod struct {
	ConsumerTag string
}

func DecodeBasicConsumeOk(r *Reader) (BasicConsumeOkMethod, error) {
	tag, err := r.ShortString()
	return BasicConsumeOkMethod{ConsumerTag: tag}, err
}

// BasicCancelMethod stops a consumer.
type BasicCancelMethod struct {
	ConsumerTag string
	NoWait      bool
}

func EncodeBasicCancel(w *Writer, m BasicCancelMethod) error {
	if err := w.PutShortString(m.ConsumerTag); err != nil {
		return err
	}
	w.PutBits(m.NoWait)
	return nil
}

// DecodeBasicCancel reads a broker-initiated Basic.Cancel (consumer
// cancel notification), the same wire shape as the client's request.
func DecodeBasicCancel(r *Reader) (BasicCancelMethod, error) {
	var m BasicCancelMethod
	var err error
	if m.ConsumerTag, err = r.ShortString(); err != nil {
		return m, err
	}
	bits, err := r.Bits(1)
	if err != nil {
		return m, err
	}
	m.NoWait = bits[0]
	return m, nil
}

// BasicCancelOkMethod confirms cancellation, whether client- or
// server-initiated.
type BasicCancelOkMethod struct {
	ConsumerTag string
}

func DecodeBasicCancelOk(r *Reader) (BasicCancelOkMethod, error) {
	tag, err := r.ShortString()
	return BasicCancelOkMethod{ConsumerTag: tag}, err
}

// BasicPublishMethod begins a publish; it is always followed by a content
// header and zero or more body frames.
type BasicPublishMethod struct {
	Exchange   string
	RoutingKey string
	Mandatory  bool
	Immediate  bool
}

func EncodeBasicPublish(w *Writer, m BasicPublishMethod) error {
	w.PutUint16(0) // reserved-1
	if err := w.PutShortString(m.Exchange); err != nil {
		return err
	}
	if err := w.PutShortString(m.RoutingKey); err != nil {
		return err
	}
	w.PutBits(m.Mandatory, m.Immediate)
	return nil
}

// BasicReturnMethod is sent back by the broker for an undeliverable
// mandatory/immediate publish, followed by header and body frames.
type BasicReturnMethod struct {
	ReplyCode  uint16
	ReplyText  string
	Exchange   string
	RoutingKey string
}

func DecodeBasicReturn(r *Reader) (BasicReturnMethod, error) {
	var m BasicReturnMethod
	var err error
	if m.ReplyCode, err = r.Uint16(); err != nil {
		return m, err
	}
	if m.ReplyText, err = r.ShortString(); err != nil {
		return m, err
	}
	if m.Exchange, err = r.ShortString(); err != nil {
		return m, err
	}
	m.RoutingKey, err = r.ShortString()
	return m, err
}

// BasicDeliverMethod hands a message to a consumer, followed by header
// and body frames.
type BasicDeliverMethod struct {
	ConsumerTag string
	DeliveryTag uint64
	Redelivered bool
	Exchange    string
	RoutingKey  string
}

func DecodeBasicDeliver(r *Reader) (BasicDeliverMethod, error) {
	var m BasicDeliverMethod
	var err error
	if m.ConsumerTag, err = r.ShortString(); err != nil {
		return m, err
	}
	if m.DeliveryTag, err = r.Uint64(); err != nil {
		return m, err
	}
	bits, err := r.Bits(1)
	if err != nil {
		return m, err
	}
	m.Redelivered = bits[0]
	if m.Exchange, err = r.ShortString(); err != nil {
		return m, err
	}
	m.RoutingKey, err = r.ShortString()
	return m, err
}

// BasicGetMethod polls a queue for a single message outside of a
// consumer subscription.
type BasicGetMethod struct {
	Queue string
	NoAck bool
}

func EncodeBasicGet(w *Writer, m BasicGetMethod) error {
	w.PutUint16(0) // reserved-1
	if err := w.PutShortString(m.Queue); err != nil {
		return err
	}
	w.PutBits(m.NoAck)
	return nil
}

// BasicGetOkMethod is the successful reply to Basic.Get, followed by
// header and body frames.
type BasicGetOkMethod struct {
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	MessageCount uint32
}

func DecodeBasicGetOk(r *Reader) (BasicGetOkMethod, error) {
	var m BasicGetOkMethod
	var err error
	if m.DeliveryTag, err = r.Uint64(); err != nil {
		return m, err
	}
	bits, err := r.Bits(1)
	if err != nil {
		return m, err
	}
	m.Redelivered = bits[0]
	if m.Exchange, err = r.ShortString(); err != nil {
		return m, err
	}
	if m.RoutingKey, err = r.ShortString(); err != nil {
		return m, err
	}
	m.MessageCount, err = r.Uint32()
	return m, err
}

// BasicAckMethod acknowledges one message, or — with Multiple — every
// message up to and including DeliveryTag.
type BasicAckMethod struct {
	DeliveryTag uint64
	Multiple    bool
}

func DecodeBasicAck(r *Reader) (BasicAckMethod, error) {
	var m BasicAckMethod
	var err error
	if m.DeliveryTag, err = r.Uint64(); err != nil {
		return m, err
	}
	bits, err := r.Bits(1)
	m.Multiple = bits[0]
	return m, err
}

func EncodeBasicAck(w *Writer, m BasicAckMethod) {
	w.PutUint64(m.DeliveryTag)
	w.PutBits(m.Multiple)
}

// BasicNackMethod negatively acknowledges one or (Multiple) many
// messages, with an option to requeue them.
type BasicNackMethod struct {
	DeliveryTag uint64
	Multiple    bool
	Requeue     bool
}

func DecodeBasicNack(r *Reader) (BasicNackMethod, error) {
	var m BasicNackMethod
	var err error
	if m.DeliveryTag, err = r.Uint64(); err != nil {
		return m, err
	}
	bits, err := r.Bits(2)
	if err != nil {
		return m, err
	}
	m.Multiple, m.Requeue = bits[0], bits[1]
	return m, nil
}

func EncodeBasicNack(w *Writer, m BasicNackMethod) {
	w.PutUint64(m.DeliveryTag)
	w.PutBits(m.Multiple, m.Requeue)
}

// BasicRejectMethod rejects a single message, with an option to requeue.
type BasicRejectMethod struct {
	DeliveryTag uint64
	Requeue     bool
}

func EncodeBasicReject(w *Writer, m BasicRejectMethod) {
	w.PutUint64(m.DeliveryTag)
	w.PutBits(m.Requeue)
}

// BasicRecoverMethod asks the broker to redeliver unacknowledged
// messages on this channel.
type BasicRecoverMethod struct {
	Requeue bool
}

func EncodeBasicRecover(w *Writer, m BasicRecoverMethod) {
	w.PutBits(m.Requeue)
}
