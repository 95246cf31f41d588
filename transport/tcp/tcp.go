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

// Package tcp is the reference Transport adapter: it owns a net.Conn (TLS
// when the address scheme is amqps://), feeds bytes read off the socket to
// an engine.Connection's Parse loop, and writes whatever the engine hands
// back to OnData straight to the socket.
package tcp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/packetd/goamqp/common"
	"github.com/packetd/goamqp/engine"
	"github.com/packetd/goamqp/internal/rescue"
	"github.com/packetd/goamqp/logger"
	"github.com/packetd/goamqp/protocol/amqp091"
)

// Option configures a Dial call.
type Option func(*options)

type options struct {
	dialTimeout time.Duration
	tlsConfig   *tls.Config
	heartbeat   uint16
}

// WithDialTimeout bounds how long Dial waits for the TCP handshake.
func WithDialTimeout(d time.Duration) Option {
	return func(o *options) { o.dialTimeout = d }
}

// WithTLSConfig supplies the TLS configuration used for amqps:// addresses.
// A nil config (the default) uses the runtime default config.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(o *options) { o.tlsConfig = cfg }
}

// WithHeartbeat overrides the heartbeat interval offered to the broker in
// seconds; the broker's own preference still wins if it requests a shorter
// interval, per the tune negotiation's "lower of the two" rule. 0 (the
// default) accepts whatever the broker suggests.
func WithHeartbeat(seconds uint16) Option {
	return func(o *options) { o.heartbeat = seconds }
}

// Conn is a live AMQP connection driven over a TCP (or TLS) socket. It
// implements engine.Transport and owns the one goroutine that reads off
// the wire; writes may come from that same goroutine (synchronous engine
// callbacks) or from the heartbeat ticker, so they're serialized with a
// mutex.
type Conn struct {
	sock   net.Conn
	engine *engine.Connection
	opts   options

	writeMu sync.Mutex

	ready      chan struct{}
	readyOnce  sync.Once
	closed     chan struct{}
	closedOnce sync.Once
	dialErr    error

	heartbeatStop chan struct{}
}

// Dial opens a TCP connection to addr, drives the AMQP handshake over it,
// and returns once the connection reaches Connected (or the handshake
// fails, or ctx is done).
func Dial(ctx context.Context, addr engine.Address, opts ...Option) (*Conn, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.dialTimeout == 0 {
		o.dialTimeout = 10 * time.Second
	}

	dialer := net.Dialer{Timeout: o.dialTimeout}
	hostport := net.JoinHostPort(addr.Host, strconv.Itoa(addr.Port))

	var sock net.Conn
	var err error
	if addr.Secure {
		tlsCfg := o.tlsConfig
		if tlsCfg == nil {
			tlsCfg = &tls.Config{ServerName: addr.Host}
		}
		sock, err = tls.DialWithDialer(&dialer, "tcp", hostport, tlsCfg)
	} else {
		sock, err = dialer.DialContext(ctx, "tcp", hostport)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", hostport)
	}

	c := &Conn{
		sock:          sock,
		opts:          o,
		ready:         make(chan struct{}),
		closed:        make(chan struct{}),
		heartbeatStop: make(chan struct{}),
	}
	c.engine = engine.NewConnection(c, addr.Login, addr.VHost)

	go c.readLoop()

	select {
	case <-c.ready:
		return c, nil
	case <-c.closed:
		if c.dialErr != nil {
			return nil, c.dialErr
		}
		return nil, errors.New("connection closed before handshake completed")
	case <-ctx.Done():
		c.fail(ctx.Err())
		return nil, ctx.Err()
	}
}

// Connection returns the underlying engine connection for opening channels.
func (c *Conn) Connection() *engine.Connection {
	return c.engine
}

// Close requests a graceful AMQP close and waits for the broker's reply
// before closing the socket.
func (c *Conn) Close(ctx context.Context) error {
	d := c.engine.Close()
	done := make(chan struct{})
	var failMsg string
	d.OnSuccess(func(...any) { close(done) })
	d.OnError(func(msg string) { failMsg = msg; close(done) })

	select {
	case <-done:
		if failMsg != "" {
			return errors.New(failMsg)
		}
		return nil
	case <-ctx.Done():
		c.fail(ctx.Err())
		return ctx.Err()
	case <-c.closed:
		return nil
	}
}

func (c *Conn) readLoop() {
	defer rescue.HandleCrash()
	buf := make([]byte, 0, common.ReadWriteBlockSize)
	tmp := make([]byte, common.ReadWriteBlockSize)
	for {
		n, err := c.sock.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			consumed, perr := c.engine.Parse(buf)
			buf = append(buf[:0], buf[consumed:]...)
			if perr != nil {
				// the engine already failed every channel and called
				// OnError/OnClosed for a protocol violation; just stop
				// reading.
				c.closeSocket(perr)
				return
			}
		}
		if err != nil {
			c.fail(err)
			return
		}
	}
}

// closeSocket releases the socket and signals Dial/Close waiters, without
// telling the engine anything — used when the engine itself already knows
// the connection is gone (OnClosed, OnError, a parse failure).
func (c *Conn) closeSocket(err error) {
	c.closedOnce.Do(func() {
		c.dialErr = err
		close(c.heartbeatStop)
		_ = c.sock.Close()
		close(c.closed)
	})
}

// fail reports a transport-observed failure the engine does not yet know
// about (a dead read or write) by calling Lost, which fails every channel
// and fires the engine's OnLost callback before the socket is released.
func (c *Conn) fail(err error) {
	c.engine.Lost()
	c.closeSocket(err)
}

// OnData implements engine.Transport.
func (c *Conn) OnData(data []byte) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.sock.Write(data); err != nil {
		go c.fail(err)
	}
}

// OnNegotiate implements engine.Transport: the configured heartbeat
// preference wins when set and no larger than the broker's suggestion,
// otherwise the broker's suggestion is accepted as-is. The outcome is kept
// as the interval the heartbeat ticker runs at.
func (c *Conn) OnNegotiate(suggested uint16) uint16 {
	if c.opts.heartbeat == 0 || (suggested != 0 && suggested < c.opts.heartbeat) {
		c.opts.heartbeat = suggested
	}
	return c.opts.heartbeat
}

// OnProperties implements engine.Transport; this adapter contributes no
// additional client properties beyond what the engine already sends.
func (c *Conn) OnProperties(server amqp091.Table) amqp091.Table {
	_ = server
	return nil
}

// OnReady implements engine.Transport.
func (c *Conn) OnReady() {
	if interval := c.negotiatedHeartbeat(); interval > 0 {
		go c.heartbeatLoop(interval)
	}
	c.readyOnce.Do(func() { close(c.ready) })
}

func (c *Conn) negotiatedHeartbeat() uint16 {
	return c.opts.heartbeat
}

func (c *Conn) heartbeatLoop(seconds uint16) {
	defer rescue.HandleCrash()
	t := time.NewTicker(time.Duration(seconds) * time.Second)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if !c.engine.Heartbeat() {
				return
			}
		case <-c.heartbeatStop:
			return
		}
	}
}

// OnClosed implements engine.Transport.
func (c *Conn) OnClosed() {
	c.closeSocket(nil)
}

// OnError implements engine.Transport.
func (c *Conn) OnError(message string) {
	logger.Errorf("amqp connection error: %s", message)
	c.closeSocket(fmt.Errorf("%s", message))
}

// OnLost implements engine.Transport.
func (c *Conn) OnLost() {}

// OnAttached implements engine.Transport.
func (c *Conn) OnAttached(channelID uint16) {
	logger.Debugf("amqp channel %d attached", channelID)
}

// OnDetached implements engine.Transport.
func (c *Conn) OnDetached(channelID uint16) {
	logger.Debugf("amqp channel %d detached", channelID)
}
