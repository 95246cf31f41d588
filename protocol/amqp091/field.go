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

import (
	"github.com/pkg/errors"
)

// Field type tags, one byte each, matching the wire discriminator that
// precedes every field-table value.
const (
	FieldBoolSet     = 't'
	FieldOctet       = 'b'
	FieldUOctet      = 'B'
	FieldShort       = 'U'
	FieldUShort      = 'u'
	FieldLong        = 'I'
	FieldULong       = 'i'
	FieldLongLong    = 'L'
	FieldULongLong   = 'l'
	FieldFloat       = 'f'
	FieldDouble      = 'd'
	FieldDecimal     = 'D'
	FieldShortString = 's'
	FieldLongString  = 'S'
	FieldArray       = 'A'
	FieldTimestamp   = 'T'
	FieldTable       = 'F'
	FieldVoid        = 'V'
)

// Decimal is the AMQP decimal-value field: a fixed-point value with a
// byte scale and a signed 32-bit mantissa.
type Decimal struct {
	Scale uint8
	Value int32
}

// Table is an AMQP field-table: a set of name/value pairs looked up by
// name. Entry order is not kept: decoding does not record it, and
// encoding writes entries in map iteration order.
type Table map[string]Field

// Array is an AMQP field-array: a sequence of untyped fields.
type Array []Field

// Field is a single typed value from a field table, field array, or a
// content-header property. Kind identifies which member of Value is
// populated; Value's concrete type matches the table below.
//
//	FieldBoolSet     bool
//	FieldOctet       int8
//	FieldUOctet      uint8
//	FieldShort       int16
//	FieldUShort      uint16
//	FieldLong        int32
//	FieldULong       uint32
//	FieldLongLong    int64
//	FieldULongLong   uint64
//	FieldFloat       float32
//	FieldDouble      float64
//	FieldDecimal     Decimal
//	FieldShortString string
//	FieldLongString  string
//	FieldArray       Array
//	FieldTimestamp   uint64
//	FieldTable       Table
//	FieldVoid        nil
type Field struct {
	Kind  byte
	Value any
}

// ErrUnknownFieldType is returned when a field-table entry carries a type
// byte outside the 18 recognized AMQP 0-9-1 field types. Unlike a
// mismatched-cast, this is unrecoverable: without a known type there is no
// way to know how many bytes the value occupies, so decoding cannot
// continue past it.
var ErrUnknownFieldType = errors.New("amqp091: unknown field type")

// DecodeField reads one type byte followed by its value from r.
func DecodeField(r *Reader) (Field, error) {
	kind, err := r.Uint8()
	if err != nil {
		return Field{}, err
	}
	switch kind {
	case FieldBoolSet:
		v, err := r.Bool()
		return Field{Kind: kind, Value: v}, err
	case FieldOctet:
		v, err := r.Int8()
		return Field{Kind: kind, Value: v}, err
	case FieldUOctet:
		v, err := r.Uint8()
		return Field{Kind: kind, Value: v}, err
	case FieldShort:
		v, err := r.Int16()
		return Field{Kind: kind, Value: v}, err
	case FieldUShort:
		v, err := r.Uint16()
		return Field{Kind: kind, Value: v}, err
	case FieldLong:
		v, err := r.Int32()
		return Field{Kind: kind, Value: v}, err
	case FieldULong:
		v, err := r.Uint32()
		return Field{Kind: kind, Value: v}, err
	case FieldLongLong:
		v, err := r.Int64()
		return Field{Kind: kind, Value: v}, err
	case FieldULongLong:
		v, err := r.Uint64()
		return Field{Kind: kind, Value: v}, err
	case FieldFloat:
		v, err := r.Float32()
		return Field{Kind: kind, Value: v}, err
	case FieldDouble:
		v, err := r.Float64()
		return Field{Kind: kind, Value: v}, err
	case FieldDecimal:
		v, err := r.Decimal()
		return Field{Kind: kind, Value: v}, err
	case FieldShortString:
		v, err := r.ShortString()
		return Field{Kind: kind, Value: v}, err
	case FieldLongString:
		v, err := r.LongString()
		return Field{Kind: kind, Value: v}, err
	case FieldArray:
		v, err := DecodeArray(r)
		return Field{Kind: kind, Value: v}, err
	case FieldTimestamp:
		v, err := r.Timestamp()
		return Field{Kind: kind, Value: v}, err
	case FieldTable:
		v, err := DecodeTable(r)
		return Field{Kind: kind, Value: v}, err
	case FieldVoid:
		return Field{Kind: kind, Value: nil}, nil
	default:
		return Field{}, errors.Wrapf(ErrUnknownFieldType, "type byte %q", kind)
	}
}

// EncodeField appends the type byte and value of f to w.
func EncodeField(w *Writer, f Field) error {
	w.PutUint8(f.Kind)
	switch f.Kind {
	case FieldBoolSet:
		w.PutBool(f.Value.(bool))
	case FieldOctet:
		w.PutInt8(f.Value.(int8))
	case FieldUOctet:
		w.PutUint8(f.Value.(uint8))
	case FieldShort:
		w.PutInt16(f.Value.(int16))
	case FieldUShort:
		w.PutUint16(f.Value.(uint16))
	case FieldLong:
		w.PutInt32(f.Value.(int32))
	case FieldULong:
		w.PutUint32(f.Value.(uint32))
	case FieldLongLong:
		w.PutInt64(f.Value.(int64))
	case FieldULongLong:
		w.PutUint64(f.Value.(uint64))
	case FieldFloat:
		w.PutFloat32(f.Value.(float32))
	case FieldDouble:
		w.PutFloat64(f.Value.(float64))
	case FieldDecimal:
		w.PutDecimal(f.Value.(Decimal))
	case FieldShortString:
		return w.PutShortString(f.Value.(string))
	case FieldLongString:
		w.PutLongString(f.Value.(string))
	case FieldArray:
		EncodeArray(w, f.Value.(Array))
	case FieldTimestamp:
		w.PutTimestamp(f.Value.(uint64))
	case FieldTable:
		EncodeTable(w, f.Value.(Table))
	case FieldVoid:
		// no payload
	default:
		return errors.Wrapf(ErrUnknownFieldType, "type byte %q", f.Kind)
	}
	return nil
}

// AsString returns f's value as a string, or "" if f does not hold a
// short or long string. Mirrors the cast-to-empty-default behavior of the
// reference implementation rather than erroring on type mismatch.
func (f Field) AsString() string {
	if f.Kind != FieldShortString && f.Kind != FieldLongString {
		return ""
	}
	s, _ := f.Value.(string)
	return s
}

// AsTable returns f's value as a Table, or an empty Table if f does not
// hold one.
func (f Field) AsTable() Table {
	if f.Kind != FieldTable {
		return Table{}
	}
	t, _ := f.Value.(Table)
	return t
}

// AsArray returns f's value as an Array, or an empty Array if f does not
// hold one.
func (f Field) AsArray() Array {
	if f.Kind != FieldArray {
		return Array{}
	}
	a, _ := f.Value.(Array)
	return a
}
