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

// property-flags bit positions within the two presence-bitmap bytes.
// bools1 is the first flag byte, bools2 the second; bit 0 is the LSB.
const (
	bitExpiration      = 0 // bools1
	bitReplyTo         = 1
	bitCorrelationID   = 2
	bitPriority        = 3
	bitDeliveryMode    = 4
	bitHeaders         = 5
	bitContentEncoding = 6
	bitContentType     = 7

	bitClusterID  = 2 // bools2
	bitAppID      = 3
	bitUserID     = 4
	bitTypeName   = 5
	bitTimestamp  = 6
	bitMessageID  = 7
)

// Metadata holds the 14 basic-class content-header properties. Only the
// fields whose presence bit is set carry meaning; the zero value is "no
// properties set".
type Metadata struct {
	ContentType     string
	ContentEncoding string
	Headers         Table
	DeliveryMode    uint8
	Priority        uint8
	CorrelationID   string
	ReplyTo         string
	Expiration      string
	MessageID       string
	Timestamp       uint64
	TypeName        string
	UserID          string
	AppID           string
	ClusterID       string

	hasContentType     bool
	hasContentEncoding bool
	hasHeaders         bool
	hasDeliveryMode    bool
	hasPriority        bool
	hasCorrelationID   bool
	hasReplyTo         bool
	hasExpiration      bool
	hasMessageID       bool
	hasTimestamp       bool
	hasTypeName        bool
	hasUserID          bool
	hasAppID           bool
	hasClusterID       bool
}

// Persistent reports whether DeliveryMode is set and equals 2
// (persistent), the convention the broker uses for durable messages.
func (m Metadata) Persistent() bool {
	return m.hasDeliveryMode && m.DeliveryMode == 2
}

func getBit(b byte, n uint) bool {
	return b&(1<<n) != 0
}

func setBit(b *byte, n uint, v bool) {
	if v {
		*b |= 1 << n
	} else {
		*b &^= 1 << n
	}
}

// DecodeMetadata reads the two property-flag bytes followed by whichever
// properties they mark present, in the fixed wire order below.
func DecodeMetadata(r *Reader) (Metadata, error) {
	b1, err := r.Uint8()
	if err != nil {
		return Metadata{}, err
	}
	b2, err := r.Uint8()
	if err != nil {
		return Metadata{}, err
	}

	var m Metadata
	m.hasContentType = getBit(b1, bitContentType)
	m.hasContentEncoding = getBit(b1, bitContentEncoding)
	m.hasHeaders = getBit(b1, bitHeaders)
	m.hasDeliveryMode = getBit(b1, bitDeliveryMode)
	m.hasPriority = getBit(b1, bitPriority)
	m.hasCorrelationID = getBit(b1, bitCorrelationID)
	m.hasReplyTo = getBit(b1, bitReplyTo)
	m.hasExpiration = getBit(b1, bitExpiration)
	m.hasClusterID = getBit(b2, bitClusterID)
	m.hasAppID = getBit(b2, bitAppID)
	m.hasUserID = getBit(b2, bitUserID)
	m.hasTypeName = getBit(b2, bitTypeName)
	m.hasTimestamp = getBit(b2, bitTimestamp)
	m.hasMessageID = getBit(b2, bitMessageID)

	// Wire order for the property values themselves, independent of the
	// bit-check order above.
	if m.hasContentType {
		if m.ContentType, err = r.ShortString(); err != nil {
			return Metadata{}, err
		}
	}
	if m.hasContentEncoding {
		if m.ContentEncoding, err = r.ShortString(); err != nil {
			return Metadata{}, err
		}
	}
	if m.hasHeaders {
		if m.Headers, err = DecodeTable(r); err != nil {
			return Metadata{}, err
		}
	}
	if m.hasDeliveryMode {
		if m.DeliveryMode, err = r.Uint8(); err != nil {
			return Metadata{}, err
		}
	}
	if m.hasPriority {
		if m.Priority, err = r.Uint8(); err != nil {
			return Metadata{}, err
		}
	}
	if m.hasCorrelationID {
		if m.CorrelationID, err = r.ShortString(); err != nil {
			return Metadata{}, err
		}
	}
	if m.hasReplyTo {
		if m.ReplyTo, err = r.ShortString(); err != nil {
			return Metadata{}, err
		}
	}
	if m.hasExpiration {
		if m.Expiration, err = r.ShortString(); err != nil {
			return Metadata{}, err
		}
	}
	if m.hasMessageID {
		if m.MessageID, err = r.ShortString(); err != nil {
			return Metadata{}, err
		}
	}
	if m.hasTimestamp {
		if m.Timestamp, err = r.Timestamp(); err != nil {
			return Metadata{}, err
		}
	}
	if m.hasTypeName {
		if m.TypeName, err = r.ShortString(); err != nil {
			return Metadata{}, err
		}
	}
	if m.hasUserID {
		if m.UserID, err = r.ShortString(); err != nil {
			return Metadata{}, err
		}
	}
	if m.hasAppID {
		if m.AppID, err = r.ShortString(); err != nil {
			return Metadata{}, err
		}
	}
	if m.hasClusterID {
		if m.ClusterID, err = r.ShortString(); err != nil {
			return Metadata{}, err
		}
	}
	return m, nil
}

// EncodeMetadata writes the two property-flag bytes, derived from which
// fields are non-zero, followed by the present properties in wire order.
func EncodeMetadata(w *Writer, m Metadata) error {
	m.hasContentType = m.ContentType != ""
	m.hasContentEncoding = m.ContentEncoding != ""
	m.hasHeaders = len(m.Headers) > 0
	m.hasDeliveryMode = m.DeliveryMode != 0
	m.hasPriority = m.Priority != 0
	m.hasCorrelationID = m.CorrelationID != ""
	m.hasReplyTo = m.ReplyTo != ""
	m.hasExpiration = m.Expiration != ""
	m.hasMessageID = m.MessageID != ""
	m.hasTimestamp = m.Timestamp != 0
	m.hasTypeName = m.TypeName != ""
	m.hasUserID = m.UserID != ""
	m.hasAppID = m.AppID != ""
	m.hasClusterID = m.ClusterID != ""

	var b1, b2 byte
	setBit(&b1, bitContentType, m.hasContentType)
	setBit(&b1, bitContentEncoding, m.hasContentEncoding)
	setBit(&b1, bitHeaders, m.hasHeaders)
	setBit(&b1, bitDeliveryMode, m.hasDeliveryMode)
	setBit(&b1, bitPriority, m.hasPriority)
	setBit(&b1, bitCorrelationID, m.hasCorrelationID)
	setBit(&b1, bitReplyTo, m.hasReplyTo)
	setBit(&b1, bitExpiration, m.hasExpiration)
	setBit(&b2, bitClusterID, m.hasClusterID)
	setBit(&b2, bitAppID, m.hasAppID)
	setBit(&b2, bitUserID, m.hasUserID)
	setBit(&b2, bitTypeName, m.hasTypeName)
	setBit(&b2, bitTimestamp, m.hasTimestamp)
	setBit(&b2, bitMessageID, m.hasMessageID)

	w.PutUint8(b1)
	w.PutUint8(b2)

	var err error
	put := func(s string) {
		if err == nil {
			err = w.PutShortString(s)
		}
	}
	if m.hasContentType {
		put(m.ContentType)
	}
	if m.hasContentEncoding {
		put(m.ContentEncoding)
	}
	if m.hasHeaders {
		EncodeTable(w, m.Headers)
	}
	if m.hasDeliveryMode {
		w.PutUint8(m.DeliveryMode)
	}
	if m.hasPriority {
		w.PutUint8(m.Priority)
	}
	if m.hasCorrelationID {
		put(m.CorrelationID)
	}
	if m.hasReplyTo {
		put(m.ReplyTo)
	}
	if m.hasExpiration {
		put(m.Expiration)
	}
	if m.hasMessageID {
		put(m.MessageID)
	}
	if m.hasTimestamp {
		w.PutTimestamp(m.Timestamp)
	}
	if m.hasTypeName {
		put(m.TypeName)
	}
	if m.hasUserID {
		put(m.UserID)
	}
	if m.hasAppID {
		put(m.AppID)
	}
	if m.hasClusterID {
		put(m.ClusterID)
	}
	return err
}
