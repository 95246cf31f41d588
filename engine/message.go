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

// Message is a fully reassembled deliver/get/return: method arguments,
// content-header metadata, and the accumulated body.
type Message struct {
	Exchange     string
	RoutingKey   string
	ConsumerTag  string // set for Basic.Deliver
	DeliveryTag  uint64 // set for Basic.Deliver / Basic.GetOk
	Redelivered  bool
	ReplyCode    uint16 // set for Basic.Return
	ReplyText    string // set for Basic.Return
	MessageCount uint32 // set for Basic.GetOk
	Metadata     amqp091.Metadata
	Body         []byte
	DeclaredSize uint64
}
