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

// DeferredState is the three-way lifecycle of a Deferred: it starts
// Pending and moves exactly once to either Succeeded or Failed.
type DeferredState int

const (
	DeferredPending DeferredState = iota
	DeferredSucceeded
	DeferredFailed
)

// Deferred is a hand-rolled continuation: a handle to an in-progress
// broker round-trip carrying success, error, and finalize callbacks.
// Exactly one of on-success/on-error fires, and on-finalize always fires
// exactly once after it, regardless of outcome. args passed to Succeed
// are operation-specific (e.g. declareQueue's name/message-count/
// consumer-count); callers registered with OnSuccess know the shape.
type Deferred struct {
	state      DeferredState
	onSuccess  func(args ...any)
	onError    func(message string)
	onFinalize func()

	// ClassMethod identifies the request this deferred is waiting on.
	// Replies are matched to deferreds by the channel's FIFO order, not
	// by this field.
	ClassMethod ClassMethodName
}

// ClassMethodName names the request a Deferred is waiting on by class
// and method name.
type ClassMethodName struct {
	Class  string
	Method string
}

// NewDeferred returns a pending Deferred waiting on the named request.
func NewDeferred(class, method string) *Deferred {
	return &Deferred{ClassMethod: ClassMethodName{Class: class, Method: method}}
}

// OnSuccess registers the success continuation and returns d for chaining.
func (d *Deferred) OnSuccess(fn func(args ...any)) *Deferred {
	d.onSuccess = fn
	return d
}

// OnError registers the error continuation and returns d for chaining.
func (d *Deferred) OnError(fn func(message string)) *Deferred {
	d.onError = fn
	return d
}

// OnFinalize registers the continuation that always runs, exactly once,
// after the terminal success/error callback.
func (d *Deferred) OnFinalize(fn func()) *Deferred {
	d.onFinalize = fn
	return d
}

// State reports the deferred's current lifecycle state.
func (d *Deferred) State() DeferredState {
	return d.state
}

// Succeed transitions a pending deferred to Succeeded, invoking the
// success and finalize callbacks. A no-op if the deferred already
// reached a terminal state.
func (d *Deferred) Succeed(args ...any) {
	if d.state != DeferredPending {
		return
	}
	d.state = DeferredSucceeded
	if d.onSuccess != nil {
		d.onSuccess(args...)
	}
	d.finalize()
}

// Fail transitions a pending deferred to Failed, invoking the error and
// finalize callbacks. A no-op if the deferred already reached a terminal
// state.
func (d *Deferred) Fail(message string) {
	if d.state != DeferredPending {
		return
	}
	d.state = DeferredFailed
	if d.onError != nil {
		d.onError(message)
	}
	d.finalize()
}

func (d *Deferred) finalize() {
	fn := d.onFinalize
	d.onFinalize = nil
	if fn != nil {
		fn()
	}
}
