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

package common

const (
	// App is the module name used in logging and metric namespaces.
	App = "goamqp"

	// Version is the library version reported in ConnectionStartOk's
	// client properties table.
	Version = "v0.1.0"

	// ReadWriteBlockSize is the default chunk size used by the reference
	// transport when reading from a socket, before handing bytes to the
	// engine's parser.
	ReadWriteBlockSize = 4096

	// DefaultMaxFrame is the frame size offered during tuning before the
	// broker's own limit is negotiated down. Intentionally below the
	// AMQP-recommended minimum of 4096 + headroom; kept defensive until
	// Connection.Tune overrides it, matching upstream behavior.
	DefaultMaxFrame = 10000

	// DefaultChannelMax is the channel-max offered during tuning.
	DefaultChannelMax = 2047

	// FrameEnd is the mandatory trailing octet of every AMQP frame.
	FrameEnd = 0xCE
)
