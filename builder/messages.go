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

// Package builder assembles outbound FIX messages as ordered fixcodec
// fields: the standard header (BeginString is added by fixcodec.Serialize
// itself; everything from MsgType through SendingTime lives here) followed
// by the business fields for each outbound MsgType the acceptor emits -
// Logon echo, Heartbeat, Logout, ExecutionReport, OrderCancelReject.
package builder

import (
	"strconv"
	"time"

	"github.com/primevalsoup/fix-agent/constants"
	"github.com/primevalsoup/fix-agent/fixcodec"
)

func set(fields []fixcodec.Field, tag int, value string) []fixcodec.Field {
	return append(fields, fixcodec.Field{Tag: tag, Value: value})
}

func setIfNotEmpty(fields []fixcodec.Field, tag int, value string) []fixcodec.Field {
	if value == "" {
		return fields
	}
	return set(fields, tag, value)
}

// Header returns the standard header fields (everything after BodyLength
// and before the body) for an outbound message. seqNum is this message's
// MsgSeqNum on the emitting session; sendingTime is stamped fresh per send.
func Header(msgType, senderCompID, targetCompID string, seqNum int, sendingTime time.Time) []fixcodec.Field {
	var f []fixcodec.Field
	f = set(f, constants.TagMsgType, msgType)
	f = set(f, constants.TagSenderCompID, senderCompID)
	f = set(f, constants.TagTargetCompID, targetCompID)
	f = set(f, constants.TagMsgSeqNum, strconv.Itoa(seqNum))
	f = set(f, constants.TagSendingTime, sendingTime.UTC().Format(constants.FixTimeFormat))
	return f
}

// --- Logon ---

// LogonAck builds the Logon echo the acceptor sends back once it has
// validated an inbound Logon: same EncryptMethod and HeartBtInt the client
// proposed, 49/56 swapped relative to the client's message (Header already
// handles the swap - the acceptor is SenderCompID on every outbound field).
//
//	fields := builder.Header(constants.MsgTypeLogon, "BROKER", "TEST_CLIENT", 1, time.Now())
//	fields = append(fields, builder.LogonAck(heartBtInt)...)
func LogonAck(heartBtInt int) []fixcodec.Field {
	var f []fixcodec.Field
	f = set(f, constants.TagEncryptMethod, constants.EncryptMethod)
	f = set(f, constants.TagHeartBtInt, strconv.Itoa(heartBtInt))
	return f
}

// --- Heartbeat ---

// Heartbeat has no body fields of its own (TestReqID, tag 112, is only
// echoed in response to a TestRequest, which this acceptor does not need
// to emit).
func Heartbeat() []fixcodec.Field {
	return nil
}

// --- Logout ---

// Logout builds a Logout carrying an optional diagnostic Text, used both
// for orderly teardown and for session-error teardown.
func Logout(text string) []fixcodec.Field {
	var f []fixcodec.Field
	f = setIfNotEmpty(f, constants.TagText, text)
	return f
}

// ExecReport holds every field an ExecutionReport might carry; callers
// populate only what's relevant for a given ExecType and leave the rest
// zero-valued - ExecutionReport below omits the optional ones that are
// empty/zero rather than writing them out as "0".
type ExecReport struct {
	ClOrdID     string
	OrigClOrdID string // only on cancel/replace reports
	Symbol      string
	Side        string
	OrdType     string
	OrderQty    int64
	Price       string // formatted; omitted if ""
	TimeInForce string
	ExecID      string
	ExecType    string
	OrdStatus   string
	LastQty     int64  // fills only
	LastPx      string // fills only; omitted if ""
	CumQty      int64
	AvgPx       string
	LeavesQty   int64
	Text        string // rejection/diagnostic text; omitted if ""
}

// ExecutionReport builds the business fields of an Execution Report (35=8).
//
//	rpt := builder.ExecutionReport(builder.ExecReport{
//	    ClOrdID: "EXEC_TEST_001", Symbol: "AAPL", Side: constants.SideBuy,
//	    OrdType: constants.OrdTypeMarket, OrderQty: 100,
//	    ExecID: id, ExecType: constants.ExecTypeNew, OrdStatus: constants.OrdStatusNew,
//	    CumQty: 0, AvgPx: "0", LeavesQty: 100,
//	})
func ExecutionReport(r ExecReport) []fixcodec.Field {
	var f []fixcodec.Field
	f = set(f, constants.TagClOrdID, r.ClOrdID)
	f = setIfNotEmpty(f, constants.TagOrigClOrdID, r.OrigClOrdID)
	f = set(f, constants.TagExecID, r.ExecID)
	f = set(f, constants.TagExecType, r.ExecType)
	f = set(f, constants.TagOrdStatus, r.OrdStatus)
	f = set(f, constants.TagSymbol, r.Symbol)
	f = set(f, constants.TagSide, r.Side)
	f = set(f, constants.TagOrdType, r.OrdType)
	f = setIfNotEmpty(f, constants.TagPrice, r.Price)
	f = set(f, constants.TagOrderQty, strconv.FormatInt(r.OrderQty, 10))
	f = setIfNotEmpty(f, constants.TagTimeInForce, r.TimeInForce)
	if r.LastQty > 0 {
		f = set(f, constants.TagLastShares, strconv.FormatInt(r.LastQty, 10))
	}
	f = setIfNotEmpty(f, constants.TagLastPx, r.LastPx)
	f = set(f, constants.TagCumQty, strconv.FormatInt(r.CumQty, 10))
	f = set(f, constants.TagAvgPx, r.AvgPx)
	f = set(f, constants.TagLeavesQty, strconv.FormatInt(r.LeavesQty, 10))
	f = setIfNotEmpty(f, constants.TagText, r.Text)
	return f
}

// CancelReject holds the fields of an Order Cancel Reject (35=9).
type CancelReject struct {
	ClOrdID      string
	OrigClOrdID  string
	CxlRejReason string
	Text         string
}

// OrderCancelReject builds the business fields of an Order Cancel Reject,
// emitted when the referenced order can't be canceled or replaced.
func OrderCancelReject(r CancelReject) []fixcodec.Field {
	var f []fixcodec.Field
	f = set(f, constants.TagClOrdID, r.ClOrdID)
	f = set(f, constants.TagOrigClOrdID, r.OrigClOrdID)
	f = set(f, constants.TagCxlRejReason, r.CxlRejReason)
	f = setIfNotEmpty(f, constants.TagText, r.Text)
	return f
}
