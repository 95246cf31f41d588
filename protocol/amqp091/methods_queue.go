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

// QueueDeclareMethod declares a queue, optionally server-named (empty
// Queue) or passive (existence check only).
type QueueDeclareMethod struct {
	Queue      string
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	NoWait     bool
	Arguments  Table
}

func EncodeQueueDeclare(w *Writer, m QueueDeclareMethod) error {
	w.PutUint16(0) // reserved-1
	if err := w.PutShortString(m.Queue); err != nil {
		return err
	}
	w.PutBits(m.Passive, m.Durable, m.Exclusive, m.AutoDelete, m.NoWait)
	EncodeTable(w, m.Arguments)
	return nil
}

// QueueDeclareOkMethod reports the server-assigned queue name (when
// server-named) and current depth.
type QueueDeclareOkMethod struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

func DecodeQueueDeclareOk(r *Reader) (QueueDeclareOkMethod, error) {
	var m QueueDeclareOkMethod
	var err error
	if m.Queue, err = r.ShortString(); err != nil {
		return m, err
	}
	if m.MessageCount, err = r.Uint32(); err != nil {
		return m, err
	}
	m.ConsumerCount, err = r.Uint32()
	return m, err
}

// QueueBindMethod binds a queue to an exchange under a routing key.
type QueueBindMethod struct {
	Queue      string
	Exchange   string
	RoutingKey string
	NoWait     bool
	Arguments  Table
}

func EncodeQueueBind(w *Writer, m QueueBindMethod) error {
	w.PutUint16(0) // reserved-1
	if err := w.PutShortString(m.Queue); err != nil {
		return err
	}
	if err := w.PutShortString(m.Exchange); err != nil {
		return err
	}
	if err := w.PutShortString(m.RoutingKey); err != nil {
		return err
	}
	w.PutBits(m.NoWait)
	EncodeTable(w, m.Arguments)
	return nil
}

// QueueUnbindMethod removes a queue-to-exchange binding.
type QueueUnbindMethod struct {
	Queue      string
	Exchange   string
	RoutingKey string
	Arguments  Table
}

func EncodeQueueUnbind(w *Writer, m QueueUnbindMethod) error {
	w.PutUint16(0) // reserved-1
	if err := w.PutShortString(m.Queue); err != nil {
		return err
	}
	if err := w.PutShortString(m.Exchange); err != nil {
		return err
	}
	if err := w.PutShortString(m.RoutingKey); err != nil {
		return err
	}
	EncodeTable(w, m.Arguments)
	return nil
}

// QueuePurgeMethod discards all ready messages from a queue.
type QueuePurgeMethod struct {
	Queue  string
	NoWait bool
}

func EncodeQueuePurge(w *Writer, m QueuePurgeMethod) error {
	w.PutUint16(0) // reserved-1
	if err := w.PutShortString(m.Queue); err != nil {
		return err
	}
	w.PutBits(m.NoWait)
	return nil
}

// QueuePurgeOkMethod reports how many messages were discarded.
type QueuePurgeOkMethod struct {
	MessageCount uint32
}

func DecodeQueuePurgeOk(r *Reader) (QueuePurgeOkMethod, error) {
	n, err := r.Uint32()
	return QueuePurgeOkMethod{MessageCount: n}, err
}

// QueueDeleteMethod deletes a queue, optionally only if unused/empty.
type QueueDeleteMethod struct {
	Queue    string
	IfUnused bool
	IfEmpty  bool
	NoWait   bool
}

func EncodeQueueDelete(w *Writer, m QueueDeleteMethod) error {
	w.PutUint16(0) // reserved-1
	if err := w.PutShortString(m.Queue); err != nil {
		return err
	}
	w.PutBits(m.IfUnused, m.IfEmpty, m.NoWait)
	return nil
}

// QueueDeleteOkMethod reports how many messages were discarded by the
// deletion.
type QueueDeleteOkMethod struct {
	MessageCount uint32
}

func DecodeQueueDeleteOk(r *Reader) (QueueDeleteOkMethod, error) {
	n, err := r.Uint32()
	return QueueDeleteOkMethod{MessageCount: n}, err
}
