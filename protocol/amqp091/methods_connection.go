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

// ConnectionStartMethod is sent by the server immediately after the
// protocol header, proposing SASL mechanisms and locales.
type ConnectionStartMethod struct {
	VersionMajor     uint8
	VersionMinor     uint8
	ServerProperties Table
	Mechanisms       string
	Locales          string
}

func DecodeConnectionStart(r *Reader) (ConnectionStartMethod, error) {
	var m ConnectionStartMethod
	var err error
	if m.VersionMajor, err = r.Uint8(); err != nil {
		return m, err
	}
	if m.VersionMinor, err = r.Uint8(); err != nil {
		return m, err
	}
	if m.ServerProperties, err = DecodeTable(r); err != nil {
		return m, err
	}
	if m.Mechanisms, err = r.LongString(); err != nil {
		return m, err
	}
	m.Locales, err = r.LongString()
	return m, err
}

// ConnectionStartOkMethod is the client's chosen mechanism and SASL
// response (the PLAIN response is "\0user\0password").
type ConnectionStartOkMethod struct {
	ClientProperties Table
	Mechanism        string
	Response         string
	Locale           string
}

func EncodeConnectionStartOk(w *Writer, m ConnectionStartOkMethod) error {
	EncodeTable(w, m.ClientProperties)
	if err := w.PutShortString(m.Mechanism); err != nil {
		return err
	}
	w.PutLongString(m.Response)
	return w.PutShortString(m.Locale)
}

// ConnectionTuneMethod negotiates channel-max, frame-max, and heartbeat.
// A zero value in any field means "unlimited" / "no preference".
type ConnectionTuneMethod struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  uint16
}

func DecodeConnectionTune(r *Reader) (ConnectionTuneMethod, error) {
	var m ConnectionTuneMethod
	var err error
	if m.ChannelMax, err = r.Uint16(); err != nil {
		return m, err
	}
	if m.FrameMax, err = r.Uint32(); err != nil {
		return m, err
	}
	m.Heartbeat, err = r.Uint16()
	return m, err
}

func EncodeConnectionTuneOk(w *Writer, m ConnectionTuneMethod) {
	w.PutUint16(m.ChannelMax)
	w.PutUint32(m.FrameMax)
	w.PutUint16(m.Heartbeat)
}

// ConnectionOpenMethod selects a virtual host.
type ConnectionOpenMethod struct {
	VirtualHost string
}

func EncodeConnectionOpen(w *Writer, m ConnectionOpenMethod) error {
	if err := w.PutShortString(m.VirtualHost); err != nil {
		return err
	}
	if err := w.PutShortString(""); err != nil { // reserved capabilities
		return err
	}
	w.PutBits(false) // reserved insist
	return nil
}

// ConnectionCloseMethod carries the reason a peer is closing the
// connection, and the class/method that triggered it if applicable.
type ConnectionCloseMethod struct {
	ReplyCode uint16
	ReplyText string
	ClassID   uint16
	MethodID  uint16
}

func DecodeConnectionClose(r *Reader) (ConnectionCloseMethod, error) {
	var m ConnectionCloseMethod
	var err error
	if m.ReplyCode, err = r.Uint16(); err != nil {
		return m, err
	}
	if m.ReplyText, err = r.ShortString(); err != nil {
		return m, err
	}
	if m.ClassID, err = r.Uint16(); err != nil {
		return m, err
	}
	m.MethodID, err = r.Uint16()
	return m, err
}

func EncodeConnectionClose(w *Writer, m ConnectionCloseMethod) error {
	w.PutUint16(m.ReplyCode)
	if err := w.PutShortString(m.ReplyText); err != nil {
		return err
	}
	w.PutUint16(m.ClassID)
	w.PutUint16(m.MethodID)
	return nil
}
