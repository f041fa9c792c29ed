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

package statemachine

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/primevalsoup/fix-agent/constants"
	"github.com/primevalsoup/fix-agent/fixcodec"
	"github.com/primevalsoup/fix-agent/order"
)

func tag(fields []fixcodec.Field, n int) (string, bool) {
	for _, f := range fields {
		if f.Tag == n {
			return f.Value, true
		}
	}
	return "", false
}

func fieldsOf(out Outbound) []fixcodec.Field {
	return out.Fields
}

// TestNewOrderSingle_FullMarketFill submits a market order and fills it in
// one shot: the order produces New with CumQty=0, LeavesQty=OrderQty, then
// the admin fill takes it straight to Filled.
func TestNewOrderSingle_FullMarketFill(t *testing.T) {
	s := order.NewStore()
	out := NewOrderSingle(s, NewOrderRequest{
		ClOrdID: "EXEC_TEST_001", Symbol: "AAPL", SideWire: "1",
		OrdTypeWire: "1", OrderQty: 100, TimeInForceWire: "0", SenderCompID: "TEST_CLIENT",
	})
	f := fieldsOf(out)
	assertTag(t, f, constants.TagExecType, constants.ExecTypeNew)
	assertTag(t, f, constants.TagOrdStatus, constants.OrdStatusNew)
	assertTag(t, f, constants.TagCumQty, "0")
	assertTag(t, f, constants.TagLeavesQty, "100")

	rec, ok := s.Get("EXEC_TEST_001")
	if !ok {
		t.Fatal("order was not inserted")
	}
	if rec.Status != order.StatusNew {
		t.Errorf("status = %s, want NEW", rec.Status)
	}

	// Admin posts fill (EXEC_TEST_001, 100, 230.10) -> Fill, OrdStatus=2.
	price, _ := decimal.NewFromString("230.10")
	fillOut, err := AdminFill(s, "EXEC_TEST_001", 100, price)
	if err != nil {
		t.Fatalf("AdminFill: %v", err)
	}
	ff := fieldsOf(fillOut)
	assertTag(t, ff, constants.TagExecType, constants.ExecTypeFilled)
	assertTag(t, ff, constants.TagOrdStatus, constants.OrdStatusFilled)
	assertTag(t, ff, constants.TagLastShares, "100")
	assertTag(t, ff, constants.TagLastPx, "230.1")
	assertTag(t, ff, constants.TagCumQty, "100")
	assertTag(t, ff, constants.TagLeavesQty, "0")
	assertTag(t, ff, constants.TagAvgPx, "230.1")
}

// TestAdminFill_ThreePartialFillsTrackAvgPx verifies three partial fills
// at the same price keep AvgPx constant while CumQty/LeavesQty move
// monotonically, with the last fill reported as Filled.
func TestAdminFill_ThreePartialFillsTrackAvgPx(t *testing.T) {
	s := order.NewStore()
	NewOrderSingle(s, NewOrderRequest{
		ClOrdID: "MULTI_PARTIAL_001", Symbol: "GOOGL", SideWire: "1",
		OrdTypeWire: "1", OrderQty: 100, SenderCompID: "TEST_CLIENT",
	})

	px, _ := decimal.NewFromString("167.25")
	steps := []struct {
		qty           int64
		wantCum       string
		wantLeaves    string
		wantExecType  string
		wantOrdStatus string
	}{
		{30, "30", "70", constants.ExecTypePartialFill, constants.OrdStatusPartiallyFilled},
		{40, "70", "30", constants.ExecTypePartialFill, constants.OrdStatusPartiallyFilled},
		{30, "100", "0", constants.ExecTypeFilled, constants.OrdStatusFilled},
	}
	for i, step := range steps {
		out, err := AdminFill(s, "MULTI_PARTIAL_001", step.qty, px)
		if err != nil {
			t.Fatalf("fill %d: %v", i, err)
		}
		f := fieldsOf(out)
		assertTag(t, f, constants.TagCumQty, step.wantCum)
		assertTag(t, f, constants.TagLeavesQty, step.wantLeaves)
		assertTag(t, f, constants.TagExecType, step.wantExecType)
		assertTag(t, f, constants.TagOrdStatus, step.wantOrdStatus)
		assertTag(t, f, constants.TagAvgPx, "167.25")
	}
}

// TestCancelRequest_PartiallyFilledOrder cancels an order after a partial
// fill: the report carries the filled CumQty but LeavesQty 0.
func TestCancelRequest_PartiallyFilledOrder(t *testing.T) {
	s := order.NewStore()
	NewOrderSingle(s, NewOrderRequest{
		ClOrdID: "CXL_BASE_001", Symbol: "AAPL", SideWire: "1",
		OrdTypeWire: "2", PriceWire: "230.0", OrderQty: 100, SenderCompID: "TEST_CLIENT",
	})
	px, _ := decimal.NewFromString("230.0")
	if _, err := AdminFill(s, "CXL_BASE_001", 40, px); err != nil {
		t.Fatalf("AdminFill: %v", err)
	}

	out := CancelRequest(s, CancelRequestParams{ClOrdID: "CANCEL_CXL_BASE_001", OrigClOrdID: "CXL_BASE_001"})
	f := fieldsOf(out)
	if out.MsgType != constants.MsgTypeExecutionReport {
		t.Fatalf("MsgType = %s, want ExecutionReport", out.MsgType)
	}
	assertTag(t, f, constants.TagExecType, constants.ExecTypeCanceled)
	assertTag(t, f, constants.TagOrdStatus, constants.OrdStatusCanceled)
	assertTag(t, f, constants.TagCumQty, "40")
	assertTag(t, f, constants.TagLeavesQty, "0")
}

// TestCancelRequest_UnknownOrder verifies a cancel for an id the store has
// never seen draws an OrderCancelReject with reason UnknownOrder.
func TestCancelRequest_UnknownOrder(t *testing.T) {
	s := order.NewStore()
	out := CancelRequest(s, CancelRequestParams{ClOrdID: "C1", OrigClOrdID: "NONEXISTENT"})
	if out.MsgType != constants.MsgTypeOrderCancelReject {
		t.Fatalf("MsgType = %s, want OrderCancelReject", out.MsgType)
	}
	f := fieldsOf(out)
	assertTag(t, f, constants.TagCxlRejReason, constants.CxlRejReasonUnknownOrder)
	v, _ := tag(f, constants.TagText)
	if v != "Order not found" {
		t.Errorf("Text = %q, want %q", v, "Order not found")
	}
}

// TestCancelRequest_AlreadyFilledOrder verifies canceling a filled order
// draws an OrderCancelReject with reason TooLate.
func TestCancelRequest_AlreadyFilledOrder(t *testing.T) {
	s := order.NewStore()
	NewOrderSingle(s, NewOrderRequest{
		ClOrdID: "EXEC_TEST_001", Symbol: "AAPL", SideWire: "1",
		OrdTypeWire: "1", OrderQty: 100, SenderCompID: "TEST_CLIENT",
	})
	px, _ := decimal.NewFromString("230.10")
	if _, err := AdminFill(s, "EXEC_TEST_001", 100, px); err != nil {
		t.Fatalf("AdminFill: %v", err)
	}

	out := CancelRequest(s, CancelRequestParams{ClOrdID: "C2", OrigClOrdID: "EXEC_TEST_001"})
	if out.MsgType != constants.MsgTypeOrderCancelReject {
		t.Fatalf("MsgType = %s, want OrderCancelReject", out.MsgType)
	}
	f := fieldsOf(out)
	assertTag(t, f, constants.TagCxlRejReason, constants.CxlRejReasonTooLate)
	v, _ := tag(f, constants.TagText)
	if v != "Order already FILLED" {
		t.Errorf("Text = %q, want %q", v, "Order already FILLED")
	}
}

// TestCancelReplaceRequest_AmendQuantity amends an order's quantity up and
// verifies the Replaced report plus the old id turning terminal.
func TestCancelReplaceRequest_AmendQuantity(t *testing.T) {
	s := order.NewStore()
	NewOrderSingle(s, NewOrderRequest{
		ClOrdID: "AMEND_QTY_001", Symbol: "AAPL", SideWire: "1",
		OrdTypeWire: "2", PriceWire: "225.0", OrderQty: 100, SenderCompID: "TEST_CLIENT",
	})

	out := CancelReplaceRequest(s, ReplaceRequestParams{
		ClOrdID: "AMEND_QTY_001_V2", OrigClOrdID: "AMEND_QTY_001", OrderQty: 150, PriceWire: "225.0",
	})
	if out.MsgType != constants.MsgTypeExecutionReport {
		t.Fatalf("MsgType = %s, want ExecutionReport", out.MsgType)
	}
	f := fieldsOf(out)
	assertTag(t, f, constants.TagExecType, constants.ExecTypeReplaced)
	assertTag(t, f, constants.TagOrdStatus, constants.OrdStatusNew)
	assertTag(t, f, constants.TagOrderQty, "150")
	assertTag(t, f, constants.TagLeavesQty, "150")

	// The old ClOrdID is now rejected on a cancel attempt (treated as
	// terminal/replaced for future lookups).
	cxl := CancelRequest(s, CancelRequestParams{ClOrdID: "C3", OrigClOrdID: "AMEND_QTY_001"})
	if cxl.MsgType != constants.MsgTypeOrderCancelReject {
		t.Fatalf("cancel on replaced order: MsgType = %s, want OrderCancelReject", cxl.MsgType)
	}
}

// TestCancelReplaceRequest_BelowFilledQuantity verifies a replace leaving
// the new quantity below the filled quantity is rejected TooLate.
func TestCancelReplaceRequest_BelowFilledQuantity(t *testing.T) {
	s := order.NewStore()
	NewOrderSingle(s, NewOrderRequest{
		ClOrdID: "PARTIAL_001", Symbol: "AAPL", SideWire: "1",
		OrdTypeWire: "1", OrderQty: 100, SenderCompID: "TEST_CLIENT",
	})
	px, _ := decimal.NewFromString("100")
	if _, err := AdminFill(s, "PARTIAL_001", 60, px); err != nil {
		t.Fatalf("AdminFill: %v", err)
	}

	out := CancelReplaceRequest(s, ReplaceRequestParams{
		ClOrdID: "PARTIAL_001_V2", OrigClOrdID: "PARTIAL_001", OrderQty: 50,
	})
	if out.MsgType != constants.MsgTypeOrderCancelReject {
		t.Fatalf("MsgType = %s, want OrderCancelReject", out.MsgType)
	}
	f := fieldsOf(out)
	assertTag(t, f, constants.TagCxlRejReason, constants.CxlRejReasonTooLate)
	v, _ := tag(f, constants.TagText)
	if !strings.Contains(v, "below filled") {
		t.Errorf("Text = %q, want it to mention the quantity is below filled", v)
	}
}

// TestNewOrderSingle_LimitWithoutPriceRejected verifies a limit order with
// no price is Rejected with a Text mentioning the price.
func TestNewOrderSingle_LimitWithoutPriceRejected(t *testing.T) {
	s := order.NewStore()
	out := NewOrderSingle(s, NewOrderRequest{
		ClOrdID: "BAD_LIMIT_001", Symbol: "AAPL", SideWire: "1",
		OrdTypeWire: "2", OrderQty: 100, SenderCompID: "TEST_CLIENT",
	})
	f := fieldsOf(out)
	assertTag(t, f, constants.TagExecType, constants.ExecTypeRejected)
	assertTag(t, f, constants.TagOrdStatus, constants.OrdStatusRejected)
	v, _ := tag(f, constants.TagText)
	if !strings.Contains(strings.ToLower(v), "price") {
		t.Errorf("Text = %q, want it to mention price", v)
	}
	if _, ok := s.Get("BAD_LIMIT_001"); ok {
		t.Error("a rejected NewOrderSingle must not create an order record")
	}
}

// TestAdminFill_ExactRemainderTransitionsToFilled verifies a fill of
// exactly the remaining quantity is Filled, not PartialFill.
func TestAdminFill_ExactRemainderTransitionsToFilled(t *testing.T) {
	s := order.NewStore()
	NewOrderSingle(s, NewOrderRequest{
		ClOrdID: "FULL_001", Symbol: "AAPL", SideWire: "1",
		OrdTypeWire: "1", OrderQty: 100, SenderCompID: "TEST_CLIENT",
	})
	px, _ := decimal.NewFromString("50")
	out, err := AdminFill(s, "FULL_001", 100, px)
	if err != nil {
		t.Fatalf("AdminFill: %v", err)
	}
	f := fieldsOf(out)
	assertTag(t, f, constants.TagExecType, constants.ExecTypeFilled)
	assertTag(t, f, constants.TagOrdStatus, constants.OrdStatusFilled)
}

// TestAdminFill_OverfillRejected verifies the fill precondition: filled_quantity + qty <= quantity.
func TestAdminFill_OverfillRejected(t *testing.T) {
	s := order.NewStore()
	NewOrderSingle(s, NewOrderRequest{
		ClOrdID: "OVF_001", Symbol: "AAPL", SideWire: "1",
		OrdTypeWire: "1", OrderQty: 100, SenderCompID: "TEST_CLIENT",
	})
	px, _ := decimal.NewFromString("10")
	if _, err := AdminFill(s, "OVF_001", 150, px); !errors.Is(err, order.ErrOverfill) {
		t.Errorf("got %v, want ErrOverfill", err)
	}
}

// TestAdminCancel_AlreadyCanceledIsIdempotentNoOp verifies re-applying an
// admin cancel to an already-CANCELED order returns BadState and produces
// no new execution.
func TestAdminCancel_AlreadyCanceledIsIdempotentNoOp(t *testing.T) {
	s := order.NewStore()
	NewOrderSingle(s, NewOrderRequest{
		ClOrdID: "CXL_TWICE_001", Symbol: "AAPL", SideWire: "1",
		OrdTypeWire: "1", OrderQty: 100, SenderCompID: "TEST_CLIENT",
	})
	if _, err := AdminCancel(s, "CXL_TWICE_001"); err != nil {
		t.Fatalf("first AdminCancel: %v", err)
	}
	execsBefore, _ := s.Executions("CXL_TWICE_001")

	if _, err := AdminCancel(s, "CXL_TWICE_001"); !errors.Is(err, order.ErrBadState) {
		t.Errorf("second AdminCancel: got %v, want ErrBadState", err)
	}
	execsAfter, _ := s.Executions("CXL_TWICE_001")
	if len(execsAfter) != len(execsBefore) {
		t.Errorf("a rejected admin cancel must not append an execution: before=%d after=%d", len(execsBefore), len(execsAfter))
	}
}

// TestNewOrderSingle_UnknownEnumsRejected verifies unknown
// Side/OrdType/TimeInForce values are rejected the same way a missing
// Limit price is.
func TestNewOrderSingle_UnknownEnumsRejected(t *testing.T) {
	s := order.NewStore()
	for _, req := range []NewOrderRequest{
		{ClOrdID: "BAD_SIDE_001", Symbol: "AAPL", SideWire: "9",
			OrdTypeWire: "1", OrderQty: 100, SenderCompID: "TEST_CLIENT"},
		{ClOrdID: "BAD_TYPE_001", Symbol: "AAPL", SideWire: "1",
			OrdTypeWire: "9", OrderQty: 100, SenderCompID: "TEST_CLIENT"},
		{ClOrdID: "BAD_TIF_001", Symbol: "AAPL", SideWire: "1",
			OrdTypeWire: "1", TimeInForceWire: "9", OrderQty: 100, SenderCompID: "TEST_CLIENT"},
	} {
		out := NewOrderSingle(s, req)
		assertTag(t, fieldsOf(out), constants.TagExecType, constants.ExecTypeRejected)
	}
}

func assertTag(t *testing.T, fields []fixcodec.Field, tagNum int, want string) {
	t.Helper()
	got, ok := tag(fields, tagNum)
	if !ok {
		t.Errorf("tag %d missing, want %q", tagNum, want)
		return
	}
	if got != want {
		t.Errorf("tag %d = %q, want %q", tagNum, got, want)
	}
}
