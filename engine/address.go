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
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// DefaultPort is the standard AMQP (non-TLS) broker port.
const DefaultPort = 5672

// Login holds SASL PLAIN credentials.
type Login struct {
	User     string
	Password string
}

// Address is a parsed amqp:// connection string.
type Address struct {
	Host   string
	Port   int
	VHost  string
	Login  Login
	Secure bool // true for amqps://
}

// ErrInvalidAddress is returned by ParseAddress for a malformed URI.
var ErrInvalidAddress = errors.New("engine: invalid amqp address")

// ParseAddress parses "amqp://[user[:password]@]host[:port][/vhost]" (or
// amqps://) per the address grammar: default port 5672, default vhost
// "/", default login guest:guest, host compared case-insensitively.
func ParseAddress(raw string) (Address, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Address{}, errors.Wrap(ErrInvalidAddress, err.Error())
	}

	var secure bool
	switch strings.ToLower(u.Scheme) {
	case "amqp":
		secure = false
	case "amqps":
		secure = true
	default:
		return Address{}, errors.Wrapf(ErrInvalidAddress, "unsupported scheme %q", u.Scheme)
	}

	addr := Address{
		Host:   strings.ToLower(u.Hostname()),
		Secure: secure,
		Login:  Login{User: "guest", Password: "guest"},
		VHost:  "/",
	}
	if addr.Host == "" {
		return Address{}, errors.Wrap(ErrInvalidAddress, "missing host")
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return Address{}, errors.Wrapf(ErrInvalidAddress, "bad port %q", p)
		}
		addr.Port = port
	} else {
		addr.Port = DefaultPort
	}

	if u.User != nil {
		addr.Login.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			addr.Login.Password = pw
		}
	}

	if path := strings.TrimPrefix(u.Path, "/"); path != "" {
		vhost, err := url.PathUnescape(path)
		if err != nil {
			return Address{}, errors.Wrap(ErrInvalidAddress, "bad vhost encoding")
		}
		addr.VHost = vhost
	}

	return addr, nil
}
