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

// encodeMethodFrame builds a complete wire frame for a connection/channel
// method, mirroring what a broker would put on the socket.
func encodeMethodFrame(channel uint16, cm amqp091.ClassMethod, args []byte) []byte {
	body := amqp091.NewWriter(len(args) + 4)
	body.PutUint16(cm.ClassID)
	body.PutUint16(cm.MethodID)
	body.PutBytes(args)

	w := amqp091.NewWriter(body.Len() + 8)
	amqp091.EncodeFrame(w, amqp091.Frame{Type: amqp091.FrameTypeMethod, Channel: channel, Payload: body.Bytes()})
	return w.Bytes()
}

// newHandshakingConnection drives a Connection through Connection.Start and
// Connection.Tune, leaving it ready to accept the broker's Connection.OpenOk.
func newHandshakingConnection(t *testing.T) (*Connection, *NopTransport) {
	t.Helper()
	tr := &NopTransport{}
	c := NewConnection(tr, Login{User: "guest", Password: "guest"}, "/")

	// protocol header was already emitted by NewConnection.
	require.Len(t, tr.Sent, 1)
	assert.Equal(t, amqp091.ProtocolHeader[:], tr.Sent[0])

	startArgs := amqp091.NewWriter(32)
	startArgs.PutUint8(0)
	startArgs.PutUint8(9)
	amqp091.EncodeTable(startArgs, nil)
	startArgs.PutLongString("PLAIN")
	startArgs.PutLongString("en_US")

	n, err := c.Parse(encodeMethodFrame(0, amqp091.ClassMethod{ClassID: amqp091.ClassConnection, MethodID: amqp091.ConnectionStart}, startArgs.Bytes()))
	require.NoError(t, err)
	require.Greater(t, n, 0)
	require.Equal(t, StateHandshake, c.State())

	tuneArgs := amqp091.NewWriter(8)
	amqp091.EncodeConnectionTuneOk(tuneArgs, amqp091.ConnectionTuneMethod{ChannelMax: 16, FrameMax: 4096, Heartbeat: 30})
	_, err = c.Parse(encodeMethodFrame(0, amqp091.ClassMethod{ClassID: amqp091.ClassConnection, MethodID: amqp091.ConnectionTune}, tuneArgs.Bytes()))
	require.NoError(t, err)

	return c, tr
}

func TestConnectionHandshakeReachesConnected(t *testing.T) {
	c, tr := newHandshakingConnection(t)

	assert.Equal(t, uint16(16), c.channelMax)
	assert.Equal(t, uint32(4096), c.frameMax)

	_, err := c.Parse(encodeMethodFrame(0, amqp091.ClassMethod{ClassID: amqp091.ClassConnection, MethodID: amqp091.ConnectionOpenOk}, nil))
	require.NoError(t, err)

	assert.Equal(t, StateConnected, c.State())
	assert.NotEmpty(t, tr.Sent)
}

func TestNegotiateLimitZeroMeansOtherSideWins(t *testing.T) {
	assert.Equal(t, uint16(10), negotiateLimit16(0, 10))
	assert.Equal(t, uint16(10), negotiateLimit16(10, 0))
	assert.Equal(t, uint16(0), negotiateLimit16(0, 0))
	assert.Equal(t, uint16(5), negotiateLimit16(5, 10))

	assert.Equal(t, uint32(10), negotiateLimit32(0, 10))
	assert.Equal(t, uint32(5), negotiateLimit32(5, 10))
}

func TestConnectionAllocateChannelSkipsZeroAndDoesNotRewind(t *testing.T) {
	c := &Connection{channels: make(map[uint16]*Channel), nextFreeChannel: 1, localChannelMax: 4}

	id1, err := c.allocateChannel()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), id1)
	c.channels[id1] = &Channel{}

	id2, err := c.allocateChannel()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), id2)
	c.channels[id2] = &Channel{}

	c.releaseChannel(id1)
	id3, err := c.allocateChannel()
	require.NoError(t, err)
	assert.Equal(t, uint16(3), id3, "cursor does not rewind to the just-released slot")
}

func TestConnectionAllocateChannelExhausted(t *testing.T) {
	c := &Connection{channels: make(map[uint16]*Channel), nextFreeChannel: 1, localChannelMax: 2}
	c.channels[1] = &Channel{}
	c.channels[2] = &Channel{}

	_, err := c.allocateChannel()
	assert.Equal(t, ErrChannelMaxExhausted, err)
}

func TestConnectionOpenChannelSucceedsOnOpenOk(t *testing.T) {
	c, _ := newHandshakingConnection(t)
	_, err := c.Parse(encodeMethodFrame(0, amqp091.ClassMethod{ClassID: amqp091.ClassConnection, MethodID: amqp091.ConnectionOpenOk}, nil))
	require.NoError(t, err)

	var opened *Channel
	d := c.OpenChannel()
	d.OnSuccess(func(args ...any) {
		opened = args[0].(*Channel)
	})

	_, err = c.Parse(encodeMethodFrame(opened0ID(c), amqp091.ClassMethod{ClassID: amqp091.ClassChannel, MethodID: amqp091.ChannelOpenOk}, nil))
	require.NoError(t, err)

	require.NotNil(t, opened)
	assert.Equal(t, DeferredSucceeded, d.State())
	assert.Equal(t, ChannelConnected, opened.State())
}

// opened0ID returns the id of the sole allocated channel, since OpenChannel
// does not hand the id back synchronously.
func opened0ID(c *Connection) uint16 {
	for id := range c.channels {
		return id
	}
	return 0
}

func TestConnectionOpenChannelFailsWhenExhausted(t *testing.T) {
	c := &Connection{channels: make(map[uint16]*Channel), nextFreeChannel: 1, localChannelMax: 1}
	c.channels[1] = &Channel{}

	d := c.OpenChannel()

	assert.Equal(t, DeferredFailed, d.State())
}
