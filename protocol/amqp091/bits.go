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

package amqp091

// Bits reads a single byte and unpacks it into n boolean flags (n <= 8),
// LSB first — the packing every method with consecutive bit arguments
// uses on the wire.
func (r *Reader) Bits(n int) ([]bool, error) {
	b, err := r.Uint8()
	if err != nil {
		return nil, err
	}
	out := make([]bool, n)
	for i := 0; i < n; i++ {
		out[i] = getBit(b, uint(i))
	}
	return out, nil
}

// PutBits packs up to 8 boolean flags, LSB first, into a single byte.
func (w *Writer) PutBits(flags ...bool) {
	var b byte
	for i, f := range flags {
		setBit(&b, uint(i), f)
	}
	w.PutUint8(b)
}
