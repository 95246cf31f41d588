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

// Flags is the bitset passed to declare/bind/remove operations. A single
// value can carry every recognized flag; operations read only the bits
// relevant to them.
type Flags uint16

const (
	FlagDurable Flags = 1 << iota
	FlagAutoDelete
	FlagPassive
	FlagExclusive
	FlagNoWait
	FlagInternal
	FlagIfUnused
	FlagIfEmpty
	FlagMandatory
	FlagImmediate
	FlagNoLocal
	FlagNoAck
)

// Has reports whether every bit in want is set in f.
func (f Flags) Has(want Flags) bool {
	return f&want == want
}
