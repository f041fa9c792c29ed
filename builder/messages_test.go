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

package builder

import (
	"testing"
	"time"

	"github.com/primevalsoup/fix-agent/constants"
	"github.com/primevalsoup/fix-agent/fixcodec"
)

func find(fields []fixcodec.Field, tag int) (string, bool) {
	for _, f := range fields {
		if f.Tag == tag {
			return f.Value, true
		}
	}
	return "", false
}

// TestHeader_FieldOrderAndSendingTimeFormat verifies the standard header
// comes out in 35/49/56/34/52 order with a FIX-format UTC timestamp.
func TestHeader_FieldOrderAndSendingTimeFormat(t *testing.T) {
	ts := time.Date(2026, 7, 29, 14, 30, 5, 123_000_000, time.UTC)
	fields := Header(constants.MsgTypeExecutionReport, "BROKER", "TEST_CLIENT", 7, ts)

	wantTags := []int{35, 49, 56, 34, 52}
	if len(fields) != len(wantTags) {
		t.Fatalf("header has %d fields, want %d", len(fields), len(wantTags))
	}
	for i, tag := range wantTags {
		if fields[i].Tag != tag {
			t.Errorf("header field %d is tag %d, want %d", i, fields[i].Tag, tag)
		}
	}
	if v, _ := find(fields, 49); v != "BROKER" {
		t.Errorf("SenderCompID = %s, want BROKER", v)
	}
	if v, _ := find(fields, 34); v != "7" {
		t.Errorf("MsgSeqNum = %s, want 7", v)
	}
	if v, _ := find(fields, 52); v != "20260729-14:30:05.123" {
		t.Errorf("SendingTime = %s, want 20260729-14:30:05.123", v)
	}
}

// TestExecutionReport_OmitsEmptyOptionalFields verifies a New report
// carries no OrigClOrdID/LastQty/LastPx/Text, while a fill report does
// carry LastQty/LastPx.
func TestExecutionReport_OmitsEmptyOptionalFields(t *testing.T) {
	newRpt := ExecutionReport(ExecReport{
		ClOrdID: "EXEC_TEST_001", Symbol: "AAPL", Side: constants.SideBuy,
		OrdType: constants.OrdTypeMarket, OrderQty: 100,
		ExecID: "E1", ExecType: constants.ExecTypeNew, OrdStatus: constants.OrdStatusNew,
		AvgPx: "0", LeavesQty: 100,
	})
	for _, tag := range []int{constants.TagOrigClOrdID, constants.TagLastShares, constants.TagLastPx, constants.TagText} {
		if _, ok := find(newRpt, tag); ok {
			t.Errorf("New report must not carry tag %d", tag)
		}
	}

	fillRpt := ExecutionReport(ExecReport{
		ClOrdID: "EXEC_TEST_001", Symbol: "AAPL", Side: constants.SideBuy,
		OrdType: constants.OrdTypeMarket, OrderQty: 100,
		ExecID: "E2", ExecType: constants.ExecTypeFilled, OrdStatus: constants.OrdStatusFilled,
		LastQty: 100, LastPx: "230.1", CumQty: 100, AvgPx: "230.1",
	})
	if v, ok := find(fillRpt, constants.TagLastShares); !ok || v != "100" {
		t.Errorf("fill report LastQty = %q (present=%v), want 100", v, ok)
	}
	if v, ok := find(fillRpt, constants.TagLastPx); !ok || v != "230.1" {
		t.Errorf("fill report LastPx = %q (present=%v), want 230.1", v, ok)
	}
}

// TestOrderCancelReject_CarriesReasonAndText covers the cancel-reject shape.
func TestOrderCancelReject_CarriesReasonAndText(t *testing.T) {
	fields := OrderCancelReject(CancelReject{
		ClOrdID:      "C1",
		OrigClOrdID:  "NONEXISTENT",
		CxlRejReason: constants.CxlRejReasonUnknownOrder,
		Text:         "Order not found",
	})
	if v, _ := find(fields, constants.TagClOrdID); v != "C1" {
		t.Errorf("ClOrdID = %s, want C1", v)
	}
	if v, _ := find(fields, constants.TagOrigClOrdID); v != "NONEXISTENT" {
		t.Errorf("OrigClOrdID = %s, want NONEXISTENT", v)
	}
	if v, _ := find(fields, constants.TagCxlRejReason); v != constants.CxlRejReasonUnknownOrder {
		t.Errorf("CxlRejReason = %s, want %s", v, constants.CxlRejReasonUnknownOrder)
	}
}

// TestLogout_TextOmittedWhenEmpty verifies an orderly Logout carries no
// empty Text field.
func TestLogout_TextOmittedWhenEmpty(t *testing.T) {
	if fields := Logout(""); len(fields) != 0 {
		t.Errorf("empty-text Logout has %d fields, want 0", len(fields))
	}
	fields := Logout("MsgSeqNum too low")
	if v, ok := find(fields, constants.TagText); !ok || v != "MsgSeqNum too low" {
		t.Errorf("Logout Text = %q (present=%v)", v, ok)
	}
}
