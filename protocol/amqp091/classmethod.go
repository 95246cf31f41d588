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

// ClassMethod identifies a method frame by its (class, method) pair, the
// same discriminator the broker puts on the wire ahead of method arguments.
type ClassMethod struct {
	ClassID  uint16
	MethodID uint16
}

// NamedClassMethod is the human-readable form of a ClassMethod, used in
// logs and error messages.
type NamedClassMethod struct {
	Class  string
	Method string
}

const (
	ClassConnection = 10
	ClassChannel    = 20
	ClassExchange   = 40
	ClassQueue      = 50
	ClassBasic      = 60
	ClassConfirm    = 85
	ClassTx         = 90
)

var ClassNames = map[uint16]string{
	ClassConnection: "Connection",
	ClassChannel:    "Channel",
	ClassExchange:   "Exchange",
	ClassQueue:      "Queue",
	ClassBasic:      "Basic",
	ClassConfirm:    "Confirm",
	ClassTx:         "Tx",
}

// Method IDs, per class. Exchange.UnbindOk is 51 rather than the
// pattern-predicted 41 — broker-observed quirk, preserved deliberately.
const (
	ConnectionStart    = 10
	ConnectionStartOk  = 11
	ConnectionSecure   = 20
	ConnectionSecureOk = 21
	ConnectionTune     = 30
	ConnectionTuneOk   = 31
	ConnectionOpen     = 40
	ConnectionOpenOk   = 41
	ConnectionClose    = 50
	ConnectionCloseOk  = 51

	ChannelOpen    = 10
	ChannelOpenOk  = 11
	ChannelFlow    = 20
	ChannelFlowOk  = 21
	ChannelClose   = 40
	ChannelCloseOk = 41

	ExchangeDeclare   = 10
	ExchangeDeclareOk = 11
	ExchangeDelete    = 20
	ExchangeDeleteOk  = 21
	ExchangeBind      = 30
	ExchangeBindOk    = 31
	ExchangeUnbind    = 40
	ExchangeUnbindOk  = 51 // quirk: standard pattern would predict 41

	QueueDeclare   = 10
	QueueDeclareOk = 11
	QueueBind      = 20
	QueueBindOk    = 21
	QueuePurge     = 30
	QueuePurgeOk   = 31
	QueueDelete    = 40
	QueueDeleteOk  = 41
	QueueUnbind    = 50
	QueueUnbindOk  = 51

	BasicQos       = 10
	BasicQosOk     = 11
	BasicConsume   = 20
	BasicConsumeOk = 21
	BasicCancel    = 30
	BasicCancelOk  = 31
	BasicPublish   = 40
	BasicReturn    = 50
	BasicDeliver   = 60
	BasicGet       = 70
	BasicGetOk     = 71
	BasicGetEmpty  = 72
	BasicAck       = 80
	BasicReject    = 90
	BasicRecover   = 100
	BasicRecoverOk = 101
	BasicNack      = 120

	ConfirmSelect   = 10
	ConfirmSelectOk = 11

	TxSelect     = 10
	TxSelectOk   = 11
	TxCommit     = 20
	TxCommitOk   = 21
	TxRollback   = 30
	TxRollbackOk = 31
)

// classMethodPairs maps a request method name to the name of its
// synchronous success reply, for readable diagnostics.
var classMethodPairs = map[string]string{
	"Start":    "Start-Ok",
	"Secure":   "Secure-Ok",
	"Tune":     "Tune-Ok",
	"Open":     "Open-Ok",
	"Close":    "Close-Ok",
	"Flow":     "Flow-Ok",
	"Declare":  "Declare-Ok",
	"Delete":   "Delete-Ok",
	"Bind":     "Bind-Ok",
	"Unbind":   "Unbind-Ok",
	"Purge":    "Purge-Ok",
	"Qos":      "Qos-Ok",
	"Consume":  "Consume-Ok",
	"Cancel":   "Cancel-Ok",
	"Get":      "Get-Ok",
	"Recover":  "Recover-Ok",
	"Select":   "Select-Ok",
	"Commit":   "Commit-Ok",
	"Rollback": "Rollback-Ok",
}

// classMethodNeedContentHeader lists the method frames that are always
// followed by a content header (and body) frame.
var classMethodNeedContentHeader = map[ClassMethod]struct{}{
	{ClassID: ClassBasic, MethodID: BasicDeliver}: {},
	{ClassID: ClassBasic, MethodID: BasicGetOk}:   {},
	{ClassID: ClassBasic, MethodID: BasicReturn}:  {},
	{ClassID: ClassBasic, MethodID: BasicPublish}: {},
}

// NeedsContentHeader reports whether cm is always followed by a content
// header frame on the wire.
func NeedsContentHeader(cm ClassMethod) bool {
	_, ok := classMethodNeedContentHeader[cm]
	return ok
}

var classMethods = map[ClassMethod]string{
	// Connection (10)
	{ClassID: ClassConnection, MethodID: ConnectionStart}:    "Start",
	{ClassID: ClassConnection, MethodID: ConnectionStartOk}:  "Start-Ok",
	{ClassID: ClassConnection, MethodID: ConnectionSecure}:   "Secure",
	{ClassID: ClassConnection, MethodID: ConnectionSecureOk}: "Secure-Ok",
	{ClassID: ClassConnection, MethodID: ConnectionTune}:     "Tune",
	{ClassID: ClassConnection, MethodID: ConnectionTuneOk}:   "Tune-Ok",
	{ClassID: ClassConnection, MethodID: ConnectionOpen}:     "Open",
	{ClassID: ClassConnection, MethodID: ConnectionOpenOk}:   "Open-Ok",
	{ClassID: ClassConnection, MethodID: ConnectionClose}:    "Close",
	{ClassID: ClassConnection, MethodID: ConnectionCloseOk}:  "Close-Ok",

	// Channel (20)
	{ClassID: ClassChannel, MethodID: ChannelOpen}:    "Open",
	{ClassID: ClassChannel, MethodID: ChannelOpenOk}:  "Open-Ok",
	{ClassID: ClassChannel, MethodID: ChannelFlow}:    "Flow",
	{ClassID: ClassChannel, MethodID: ChannelFlowOk}:  "Flow-Ok",
	{ClassID: ClassChannel, MethodID: ChannelClose}:   "Close",
	{ClassID: ClassChannel, MethodID: ChannelCloseOk}: "Close-Ok",

	// Exchange (40)
	{ClassID: ClassExchange, MethodID: ExchangeDeclare}:   "Declare",
	{ClassID: ClassExchange, MethodID: ExchangeDeclareOk}: "Declare-Ok",
	{ClassID: ClassExchange, MethodID: ExchangeDelete}:    "Delete",
	{ClassID: ClassExchange, MethodID: ExchangeDeleteOk}:  "Delete-Ok",
	{ClassID: ClassExchange, MethodID: ExchangeBind}:      "Bind",
	{ClassID: ClassExchange, MethodID: ExchangeBindOk}:    "Bind-Ok",
	{ClassID: ClassExchange, MethodID: ExchangeUnbind}:    "Unbind",
	{ClassID: ClassExchange, MethodID: ExchangeUnbindOk}:  "Unbind-Ok",

	// Queue (50)
	{ClassID: ClassQueue, MethodID: QueueDeclare}:   "Declare",
	{ClassID: ClassQueue, MethodID: QueueDeclareOk}: "Declare-Ok",
	{ClassID: ClassQueue, MethodID: QueueBind}:      "Bind",
	{ClassID: ClassQueue, MethodID: QueueBindOk}:    "Bind-Ok",
	{ClassID: ClassQueue, MethodID: QueuePurge}:     "Purge",
	{ClassID: ClassQueue, MethodID: QueuePurgeOk}:   "Purge-Ok",
	{ClassID: ClassQueue, MethodID: QueueDelete}:    "Delete",
	{ClassID: ClassQueue, MethodID: QueueDeleteOk}:  "Delete-Ok",
	{ClassID: ClassQueue, MethodID: QueueUnbind}:    "Unbind",
	{ClassID: ClassQueue, MethodID: QueueUnbindOk}:  "Unbind-Ok",

	// Basic (60)
	{ClassID: ClassBasic, MethodID: BasicQos}:       "Qos",
	{ClassID: ClassBasic, MethodID: BasicQosOk}:     "Qos-Ok",
	{ClassID: ClassBasic, MethodID: BasicConsume}:   "Consume",
	{ClassID: ClassBasic, MethodID: BasicConsumeOk}: "Consume-Ok",
	{ClassID: ClassBasic, MethodID: BasicCancel}:    "Cancel",
	{ClassID: ClassBasic, MethodID: BasicCancelOk}:  "Cancel-Ok",
	{ClassID: ClassBasic, MethodID: BasicPublish}:   "Publish",
	{ClassID: ClassBasic, MethodID: BasicReturn}:    "Return",
	{ClassID: ClassBasic, MethodID: BasicDeliver}:   "Deliver",
	{ClassID: ClassBasic, MethodID: BasicGet}:       "Get",
	{ClassID: ClassBasic, MethodID: BasicGetOk}:     "Get-Ok",
	{ClassID: ClassBasic, MethodID: BasicGetEmpty}:  "Get-Empty",
	{ClassID: ClassBasic, MethodID: BasicAck}:       "Ack",
	{ClassID: ClassBasic, MethodID: BasicReject}:    "Reject",
	{ClassID: ClassBasic, MethodID: BasicRecover}:   "Recover",
	{ClassID: ClassBasic, MethodID: BasicRecoverOk}: "Recover-Ok",
	{ClassID: ClassBasic, MethodID: BasicNack}:      "Nack",

	// Confirm (85)
	{ClassID: ClassConfirm, MethodID: ConfirmSelect}:   "Select",
	{ClassID: ClassConfirm, MethodID: ConfirmSelectOk}: "Select-Ok",

	// Tx (90)
	{ClassID: ClassTx, MethodID: TxSelect}:     "Select",
	{ClassID: ClassTx, MethodID: TxSelectOk}:   "Select-Ok",
	{ClassID: ClassTx, MethodID: TxCommit}:     "Commit",
	{ClassID: ClassTx, MethodID: TxCommitOk}:   "Commit-Ok",
	{ClassID: ClassTx, MethodID: TxRollback}:   "Rollback",
	{ClassID: ClassTx, MethodID: TxRollbackOk}: "Rollback-Ok",
}

// LookupMethod returns the readable name of a recognized class/method pair.
func LookupMethod(cm ClassMethod) (NamedClassMethod, bool) {
	name, ok := classMethods[cm]
	if !ok {
		return NamedClassMethod{}, false
	}
	return NamedClassMethod{Class: ClassNames[cm.ClassID], Method: name}, true
}

// PairedReply returns the success-reply method name for a request method
// name, e.g. "Declare" -> "Declare-Ok".
func PairedReply(request string) (string, bool) {
	reply, ok := classMethodPairs[request]
	return reply, ok
}
