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

// DecodeTable reads a field-table: a u32 byte length followed by a packed
// sequence of short-string-keyed, typed-value entries. Entries whose type
// byte is unrecognized abort decoding of the whole table, since there is
// no way to know how many bytes such an entry would have consumed.
func DecodeTable(r *Reader) (Table, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	body, err := r.Bytes(int(n))
	if err != nil {
		return nil, err
	}

	sub := NewReader(body)
	table := make(Table)
	for sub.Len() > 0 {
		key, err := sub.ShortString()
		if err != nil {
			return nil, err
		}
		field, err := DecodeField(sub)
		if err != nil {
			return nil, err
		}
		table[key] = field
	}
	return table, nil
}

// EncodeTable appends t as a length-prefixed field-table. Iteration order
// over a Go map is nondeterministic; the wire length prefix is computed
// from the actual encoded bytes so this is safe regardless of order.
func EncodeTable(w *Writer, t Table) {
	inner := NewWriter(64)
	for k, v := range t {
		_ = inner.PutShortString(k)
		_ = EncodeField(inner, v)
	}
	w.PutUint32(uint32(inner.Len()))
	w.PutBytes(inner.Bytes())
}

// DecodeArray reads a field-array: a u32 byte length followed by a packed
// sequence of typed values with no keys.
func DecodeArray(r *Reader) (Array, error) {
	n, err := r.Uint32()
	if err != nil {
		return nil, err
	}
	body, err := r.Bytes(int(n))
	if err != nil {
		return nil, err
	}

	sub := NewReader(body)
	var arr Array
	for sub.Len() > 0 {
		field, err := DecodeField(sub)
		if err != nil {
			return nil, err
		}
		arr = append(arr, field)
	}
	return arr, nil
}

// EncodeArray appends a as a length-prefixed field-array.
func EncodeArray(w *Writer, a Array) {
	inner := NewWriter(32)
	for _, v := range a {
		_ = EncodeField(inner, v)
	}
	w.PutUint32(uint32(inner.Len()))
	w.PutBytes(inner.Bytes())
}
