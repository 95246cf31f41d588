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

import "fmt"

// ReplyError wraps a reply-code/reply-text pair reported by the broker in
// a Connection.Close or Channel.Close method, giving it the symbolic
// reply-code name alongside the numeric one.
type ReplyError struct {
	Code     uint16
	Text     string
	ClassID  uint16
	MethodID uint16
}

func (e *ReplyError) Error() string {
	if e.ClassID == 0 && e.MethodID == 0 {
		return fmt.Sprintf("amqp091: %s (%d): %s", MatchErrCode(e.Code), e.Code, e.Text)
	}
	return fmt.Sprintf("amqp091: %s (%d): %s (class %d, method %d)",
		MatchErrCode(e.Code), e.Code, e.Text, e.ClassID, e.MethodID)
}

// Symbol returns the symbolic AMQP reply-code name, e.g. "NOT_FOUND".
func (e *ReplyError) Symbol() string {
	return MatchErrCode(e.Code)
}
