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

// Liveness is embedded by any type whose methods invoke user callbacks
// that might, in turn, destroy (close, release) the very object running
// the callback. A Monitor taken before the callback can be checked after
// it returns to detect that self-destruction safely, without a second
// dereference of a dangling pointer.
type Liveness struct {
	alive bool
}

// Reset marks l alive again. Callers construct with alive already true
// via NewLiveness; Reset exists for pooled/reused instances.
func (l *Liveness) Reset() {
	l.alive = true
}

// Monitor returns a weak handle on l's liveness for use after a
// re-entrant callback; it reflects every later Destroy or Reset of l.
func (l *Liveness) Monitor() Monitor {
	return Monitor{l: l}
}

// Destroy marks l as gone. Every Monitor taken before this call reports
// Valid() == false afterward.
func (l *Liveness) Destroy() {
	l.alive = false
}

// NewLiveness returns a Liveness starting in the alive state.
func NewLiveness() Liveness {
	return Liveness{alive: true}
}

// Monitor is a weak, read-only check on whether the object that produced
// it is still alive. Loop bodies that invoke user callbacks must take a
// Monitor before the callback and check Valid() after it, aborting
// remaining work if the callback destroyed the owner.
type Monitor struct {
	l *Liveness
}

// Valid reports whether the monitored object is still alive.
func (m Monitor) Valid() bool {
	return m.l != nil && m.l.alive
}
