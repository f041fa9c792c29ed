/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package constants holds the FIX 4.2 tag numbers, message types and enum
// values the acceptor understands. Tag lookup is by number (see fixcodec);
// these are the names for them.
package constants

// --- Message Types (Tag 35) ---
const (
	MsgTypeLogon              = "A" // Logon
	MsgTypeHeartbeat          = "0" // Heartbeat
	MsgTypeTestRequest        = "1" // Test Request (accepted, not required to act on)
	MsgTypeLogout             = "5" // Logout
	MsgTypeNewOrderSingle     = "D" // New Order Single
	MsgTypeOrderCancelRequest = "F" // Order Cancel Request
	MsgTypeOrderCancelReplace = "G" // Order Cancel/Replace Request
	MsgTypeExecutionReport    = "8" // Execution Report
	MsgTypeOrderCancelReject  = "9" // Order Cancel Reject
)

// InboundMsgTypes is the exact set of MsgTypes the acceptor accepts.
var InboundMsgTypes = map[string]bool{
	MsgTypeLogon:              true,
	MsgTypeNewOrderSingle:     true,
	MsgTypeOrderCancelRequest: true,
	MsgTypeOrderCancelReplace: true,
	MsgTypeHeartbeat:          true,
	MsgTypeTestRequest:        true,
	MsgTypeLogout:             true,
}

// --- Protocol Constants ---
const (
	FixBeginString = "FIX.4.2"
	FixTimeFormat  = "20060102-15:04:05.000"
	EncryptMethod  = "0" // the only value this acceptor accepts
	MsgSeqNumInit  = 1
)

// --- Side (Tag 54) ---
const (
	SideBuy  = "1"
	SideSell = "2"
)

// --- Order Type (Tag 40) ---
const (
	OrdTypeMarket    = "1"
	OrdTypeLimit     = "2"
	OrdTypeStop      = "3"
	OrdTypeStopLimit = "4"
)

// --- Time In Force (Tag 59) ---
const (
	TimeInForceDay = "0"
	TimeInForceGTC = "1"
	TimeInForceIOC = "3"
	TimeInForceFOK = "4"
)

// --- Order Status (Tag 39) ---
const (
	OrdStatusNew             = "0"
	OrdStatusPartiallyFilled = "1"
	OrdStatusFilled          = "2"
	OrdStatusCanceled        = "4"
	OrdStatusReplaced        = "5"
	OrdStatusRejected        = "8"
)

// --- Execution Type (Tag 150) ---
const (
	ExecTypeNew         = "0"
	ExecTypePartialFill = "1"
	ExecTypeFilled      = "2"
	ExecTypeCanceled    = "4"
	ExecTypeReplaced    = "5"
	ExecTypeRejected    = "8"
)

// --- Cancel Reject Reason (Tag 434) ---
const (
	CxlRejReasonTooLate      = "0"
	CxlRejReasonUnknownOrder = "1"
)

// --- Standard FIX Tags used by the acceptor ---
const (
	TagBeginString   = 8
	TagBodyLength    = 9
	TagCheckSum      = 10
	TagAvgPx         = 6
	TagClOrdID       = 11
	TagCumQty        = 14
	TagExecID        = 17
	TagHandlInst     = 21
	TagLastPx        = 31
	TagLastShares    = 32
	TagMsgSeqNum     = 34
	TagMsgType       = 35
	TagOrderQty      = 38
	TagOrdStatus     = 39
	TagOrdType       = 40
	TagOrigClOrdID   = 41
	TagPrice         = 44
	TagSenderCompID  = 49
	TagSendingTime   = 52
	TagSide          = 54
	TagSymbol        = 55
	TagTargetCompID  = 56
	TagText          = 58
	TagTimeInForce   = 59
	TagTransactTime  = 60
	TagEncryptMethod = 98
	TagHeartBtInt    = 108
	TagExecType      = 150
	TagLeavesQty     = 151
	TagCxlRejReason  = 434
)
