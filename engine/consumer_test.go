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
)

func TestConsumerRegistryDeliverRoutesToHandler(t *testing.T) {
	r := newConsumerRegistry()

	var got Message
	r.register("ctag-1", ConsumerHandler{OnMessage: func(m Message) { got = m }})

	ok := r.deliver("ctag-1", Message{RoutingKey: "rk"})

	assert.True(t, ok)
	assert.Equal(t, "rk", got.RoutingKey)
}

func TestConsumerRegistryDeliverUnknownTag(t *testing.T) {
	r := newConsumerRegistry()
	ok := r.deliver("missing", Message{})
	assert.False(t, ok)
}

func TestConsumerRegistryCancelFiresOnCancelAndRemoves(t *testing.T) {
	r := newConsumerRegistry()
	cancelled := false
	r.register("ctag-1", ConsumerHandler{OnCancel: func() { cancelled = true }})

	r.cancel("ctag-1")

	assert.True(t, cancelled)
	assert.False(t, r.deliver("ctag-1", Message{}))
}

func TestConsumerRegistryCancelUnknownTagIsNoop(t *testing.T) {
	r := newConsumerRegistry()
	assert.NotPanics(t, func() { r.cancel("nope") })
}

func TestConsumerRegistryCancelAllFiresEveryHandler(t *testing.T) {
	r := newConsumerRegistry()
	var cancelled []string
	for _, tag := range []string{"a", "b", "c"} {
		tag := tag
		r.register(tag, ConsumerHandler{OnCancel: func() { cancelled = append(cancelled, tag) }})
	}

	r.cancelAll()

	assert.ElementsMatch(t, []string{"a", "b", "c"}, cancelled)
	assert.Empty(t, r.byTag)
}
