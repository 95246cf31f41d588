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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packetd/goamqp/protocol/amqp091"
)

// dispatchReply hands ch the class/method header plus a caller-built args
// payload, as if it had just arrived off the wire from the broker.
func dispatchReply(ch *Channel, classID, methodID uint16, args []byte) {
	w := amqp091.NewWriter(len(args) + 4)
	w.PutUint16(classID)
	w.PutUint16(methodID)
	w.PutBytes(args)
	ch.dispatchMethod(w.Bytes())
}

func TestDeclareExchangeSucceedsOnDeclareOk(t *testing.T) {
	ch := newTestChannel()

	d := ch.DeclareExchange("logs", "topic", FlagDurable, nil)
	require.Equal(t, DeferredPending, d.State())

	dispatchReply(ch, amqp091.ClassExchange, amqp091.ExchangeDeclareOk, nil)

	assert.Equal(t, DeferredSucceeded, d.State())
}

func TestDeclareQueueReturnsNameAndCounts(t *testing.T) {
	ch := newTestChannel()

	d := ch.DeclareQueue("", FlagExclusive|FlagAutoDelete, nil)
	var name string
	var messages, consumers uint32
	d.OnSuccess(func(out ...any) {
		name = out[0].(string)
		messages = out[1].(uint32)
		consumers = out[2].(uint32)
	})

	args := amqp091.NewWriter(16)
	require.NoError(t, args.PutShortString("amq.gen-xyz"))
	args.PutUint32(0)
	args.PutUint32(1)
	dispatchReply(ch, amqp091.ClassQueue, amqp091.QueueDeclareOk, args.Bytes())

	require.Equal(t, DeferredSucceeded, d.State())
	assert.Equal(t, "amq.gen-xyz", name)
	assert.Equal(t, uint32(0), messages)
	assert.Equal(t, uint32(1), consumers)
}

func TestPurgeQueueReturnsMessageCount(t *testing.T) {
	ch := newTestChannel()

	d := ch.PurgeQueue("jobs", 0)
	var count uint32
	d.OnSuccess(func(out ...any) { count = out[0].(uint32) })

	args := amqp091.NewWriter(4)
	args.PutUint32(42)
	dispatchReply(ch, amqp091.ClassQueue, amqp091.QueuePurgeOk, args.Bytes())

	assert.Equal(t, DeferredSucceeded, d.State())
	assert.Equal(t, uint32(42), count)
}

func TestRemoveQueueReturnsMessageCount(t *testing.T) {
	ch := newTestChannel()

	d := ch.RemoveQueue("jobs", FlagIfEmpty)
	var count uint32
	d.OnSuccess(func(out ...any) { count = out[0].(uint32) })

	args := amqp091.NewWriter(4)
	args.PutUint32(7)
	dispatchReply(ch, amqp091.ClassQueue, amqp091.QueueDeleteOk, args.Bytes())

	assert.Equal(t, uint32(7), count)
}

func TestConsumeRegistersHandlerOnConsumeOk(t *testing.T) {
	ch := newTestChannel()

	var delivered Message
	d := ch.Consume("jobs", "", 0, nil, ConsumerHandler{
		OnMessage: func(m Message) { delivered = m },
	})

	args := amqp091.NewWriter(16)
	require.NoError(t, args.PutShortString("ctag-1"))
	dispatchReply(ch, amqp091.ClassBasic, amqp091.BasicConsumeOk, args.Bytes())

	require.Equal(t, DeferredSucceeded, d.State())

	ch.beginReassembly(reassembleDeliver, Message{ConsumerTag: "ctag-1", RoutingKey: "rk"}, func(m Message) {
		ch.consumers.deliver(m.ConsumerTag, m)
	})
	ch.dispatchHeader(headerPayload(t, 0, amqp091.Metadata{}))

	assert.Equal(t, "rk", delivered.RoutingKey)
}

func TestCancelFiresConsumerOnCancelAndRemoves(t *testing.T) {
	ch := newTestChannel()
	cancelled := false
	ch.consumers.register("ctag-1", ConsumerHandler{OnCancel: func() { cancelled = true }})

	d := ch.Cancel("ctag-1", 0)

	args := amqp091.NewWriter(16)
	require.NoError(t, args.PutShortString("ctag-1"))
	dispatchReply(ch, amqp091.ClassBasic, amqp091.BasicCancelOk, args.Bytes())

	assert.Equal(t, DeferredSucceeded, d.State())
	assert.True(t, cancelled)
}

func TestGetReturnsMessageOnGetOk(t *testing.T) {
	ch := newTestChannel()

	d := ch.Get("jobs", 0)
	var msg Message
	d.OnSuccess(func(out ...any) { msg = out[0].(Message) })

	args := amqp091.NewWriter(32)
	args.PutUint64(5)
	args.PutBits(false)
	require.NoError(t, args.PutShortString(""))
	require.NoError(t, args.PutShortString("jobs"))
	args.PutUint32(0)
	dispatchReply(ch, amqp091.ClassBasic, amqp091.BasicGetOk, args.Bytes())

	ch.dispatchHeader(headerPayload(t, 0, amqp091.Metadata{}))

	require.Equal(t, DeferredSucceeded, d.State())
	assert.Equal(t, uint64(5), msg.DeliveryTag)
}

func TestGetReturnsNoArgsOnGetEmpty(t *testing.T) {
	ch := newTestChannel()

	d := ch.Get("jobs", 0)

	dispatchReply(ch, amqp091.ClassBasic, amqp091.BasicGetEmpty, nil)

	assert.Equal(t, DeferredSucceeded, d.State())
}

func TestPublishWithoutConfirmModeReturnsZeroTag(t *testing.T) {
	ch := newTestChannel()

	tag, err := ch.Publish(Publishing{Exchange: "ex", Body: []byte("hi")}, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, uint64(0), tag)
}

func TestPublishOnClosedChannelFails(t *testing.T) {
	ch := newTestChannel()
	ch.state = ChannelClosed

	_, err := ch.Publish(Publishing{Body: []byte("x")}, nil, nil)

	assert.Equal(t, ErrChannelAlreadyClosed, err)
}

func TestPublishChunksBodyToFrameMaxMinusOverhead(t *testing.T) {
	const frameMax = 64
	conn := &Connection{channels: map[uint16]*Channel{}, transport: &NopTransport{}, frameMax: frameMax, state: StateConnected}
	ch := newChannel(conn, 1)
	conn.channels[1] = ch

	body := make([]byte, frameMax*3)
	_, err := ch.Publish(Publishing{Body: body}, nil, nil)
	require.NoError(t, err)

	sent := conn.transport.(*NopTransport).Sent
	require.Greater(t, len(sent), 2, "expected a method frame, a header frame, and at least one body frame")

	maxPayload := frameMax - amqp091.FrameOverhead
	var bodyBytesSeen int
	for _, frame := range sent[2:] { // skip Basic.Publish method frame and the content header frame
		assert.LessOrEqual(t, len(frame), frameMax, "every sent frame must fit within the negotiated max-frame")
		payloadLen := len(frame) - amqp091.FrameOverhead
		assert.LessOrEqual(t, payloadLen, maxPayload, "body frame payload must not exceed frameMax-overhead")
		bodyBytesSeen += payloadLen
	}
	assert.Equal(t, len(body), bodyBytesSeen)
}

func TestPublishInConfirmModeTracksDeliveryTag(t *testing.T) {
	ch := newTestChannel()
	ch.confirmSelect = true

	var acked bool
	tag, err := ch.Publish(Publishing{Body: []byte("x")}, func() { acked = true }, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(1), tag)

	ch.confirms.resolve(ch, tag, false, true)
	assert.True(t, acked)
}

func TestConfirmSelectNoWaitSetsModeSynchronously(t *testing.T) {
	ch := newTestChannel()

	d := ch.ConfirmSelect(true)

	assert.Equal(t, DeferredSucceeded, d.State())
	assert.True(t, ch.confirmSelect)
}

func TestStartTransactionSetsInTransactionOnSuccess(t *testing.T) {
	ch := newTestChannel()

	d := ch.StartTransaction()
	dispatchReply(ch, amqp091.ClassTx, amqp091.TxSelectOk, nil)

	assert.Equal(t, DeferredSucceeded, d.State())
	assert.True(t, ch.inTransaction)
}

func TestCloseReplyOnAlreadyClosedChannelSucceedsSynchronously(t *testing.T) {
	ch := newTestChannel()
	ch.state = ChannelClosed

	d := ch.Close()

	assert.Equal(t, DeferredSucceeded, d.State())
}
