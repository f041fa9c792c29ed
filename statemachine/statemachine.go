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
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/primevalsoup/fix-agent/builder"
	"github.com/primevalsoup/fix-agent/constants"
	"github.com/primevalsoup/fix-agent/idgen"
	"github.com/primevalsoup/fix-agent/order"
)

// wireForStatus maps a Record.Status to the ExecType/OrdStatus wire pair
// that reports it, for every status except Replaced - CancelReplaceRequest
// derives its pair itself, since ExecType=Replaced(5) never equals the
// OrdStatus of the order it produced.
func wireForStatus(status string) (execType, ordStatus string) {
	switch status {
	case order.StatusNew:
		return constants.ExecTypeNew, constants.OrdStatusNew
	case order.StatusPartiallyFilled:
		return constants.ExecTypePartialFill, constants.OrdStatusPartiallyFilled
	case order.StatusFilled:
		return constants.ExecTypeFilled, constants.OrdStatusFilled
	case order.StatusCanceled:
		return constants.ExecTypeCanceled, constants.OrdStatusCanceled
	case order.StatusRejected:
		return constants.ExecTypeRejected, constants.OrdStatusRejected
	default:
		return "", ""
	}
}

func rejectReport(clOrdID, symbol, sideWire, ordTypeWire string, qty int64, text string) Outbound {
	return Outbound{
		MsgType: constants.MsgTypeExecutionReport,
		Fields: builder.ExecutionReport(builder.ExecReport{
			ClOrdID:   clOrdID,
			Symbol:    symbol,
			Side:      sideWire,
			OrdType:   ordTypeWire,
			OrderQty:  qty,
			ExecID:    idgen.NewExecID(),
			ExecType:  constants.ExecTypeRejected,
			OrdStatus: constants.OrdStatusRejected,
			AvgPx:     "0",
			Text:      text,
		}),
	}
}

// NewOrderSingle validates an inbound 35=D and, if accepted, inserts the
// order and reports it as New; an invalid request is reported Rejected and
// never stored.
func NewOrderSingle(store *order.Store, req NewOrderRequest) Outbound {
	side, ok := order.ParseSide(req.SideWire)
	if !ok {
		return rejectReport(req.ClOrdID, req.Symbol, req.SideWire, req.OrdTypeWire, req.OrderQty, "unknown side")
	}
	ordType, ok := order.ParseOrderType(req.OrdTypeWire)
	if !ok {
		return rejectReport(req.ClOrdID, req.Symbol, req.SideWire, req.OrdTypeWire, req.OrderQty, "unknown order type")
	}
	tif, ok := order.ParseTimeInForce(req.TimeInForceWire)
	if !ok {
		return rejectReport(req.ClOrdID, req.Symbol, req.SideWire, req.OrdTypeWire, req.OrderQty, "unknown time in force")
	}
	if req.Symbol == "" {
		return rejectReport(req.ClOrdID, req.Symbol, req.SideWire, req.OrdTypeWire, req.OrderQty, "symbol is required")
	}
	if req.OrderQty <= 0 {
		return rejectReport(req.ClOrdID, req.Symbol, req.SideWire, req.OrdTypeWire, req.OrderQty, "quantity must be positive")
	}

	var limitPrice decimal.Decimal
	if ordType == order.TypeLimit {
		if req.PriceWire == "" {
			return rejectReport(req.ClOrdID, req.Symbol, req.SideWire, req.OrdTypeWire, req.OrderQty, "price is required for a limit order")
		}
		parsed, err := decimal.NewFromString(req.PriceWire)
		if err != nil || !parsed.IsPositive() {
			return rejectReport(req.ClOrdID, req.Symbol, req.SideWire, req.OrdTypeWire, req.OrderQty, "price must be a positive decimal")
		}
		limitPrice = parsed
	}

	rec := order.Record{
		ClOrdID:            req.ClOrdID,
		Symbol:             req.Symbol,
		Side:               side,
		OrderType:          ordType,
		Quantity:           req.OrderQty,
		LimitPrice:         limitPrice,
		TimeInForce:        tif,
		Status:             order.StatusNew,
		OwningSenderCompID: req.SenderCompID,
	}
	if err := store.Insert(rec); err != nil {
		return rejectReport(req.ClOrdID, req.Symbol, req.SideWire, req.OrdTypeWire, req.OrderQty, "duplicate ClOrdID")
	}

	price := ""
	if ordType == order.TypeLimit {
		price = idgen.FormatPrice(limitPrice)
	}
	return Outbound{
		MsgType: constants.MsgTypeExecutionReport,
		Fields: builder.ExecutionReport(builder.ExecReport{
			ClOrdID:     req.ClOrdID,
			Symbol:      req.Symbol,
			Side:        req.SideWire,
			OrdType:     req.OrdTypeWire,
			OrderQty:    req.OrderQty,
			Price:       price,
			TimeInForce: order.TimeInForceWire(tif),
			ExecID:      idgen.NewExecID(),
			ExecType:    constants.ExecTypeNew,
			OrdStatus:   constants.OrdStatusNew,
			CumQty:      0,
			AvgPx:       "0",
			LeavesQty:   req.OrderQty,
		}),
	}
}

// AdminFill applies an administratively-posted fill. A non-nil error means
// the admin call itself is rejected (order.ErrNotFound, order.ErrBadState,
// order.ErrOverfill); no FIX message is produced in that case.
func AdminFill(store *order.Store, clOrdID string, qty int64, price decimal.Decimal) (Outbound, error) {
	if qty <= 0 {
		return Outbound{}, order.ErrBadState
	}
	rec, err := store.Mutate(clOrdID, func(rec *order.Record, execs []order.Execution) (*order.Execution, error) {
		if rec.Status != order.StatusNew && rec.Status != order.StatusPartiallyFilled {
			return nil, order.ErrBadState
		}
		if rec.FilledQuantity+qty > rec.Quantity {
			return nil, order.ErrOverfill
		}

		sumQtyPx := price.Mul(decimal.NewFromInt(qty))
		sumQty := decimal.NewFromInt(qty)
		for _, e := range execs {
			if e.IsFill() {
				sumQtyPx = sumQtyPx.Add(e.ExecPrice.Mul(decimal.NewFromInt(e.ExecQuantity)))
				sumQty = sumQty.Add(decimal.NewFromInt(e.ExecQuantity))
			}
		}
		rec.FilledQuantity += qty
		rec.AvgPx = sumQtyPx.Div(sumQty)

		execType := constants.ExecTypePartialFill
		if rec.FilledQuantity >= rec.Quantity {
			rec.Status = order.StatusFilled
			execType = constants.ExecTypeFilled
		} else {
			rec.Status = order.StatusPartiallyFilled
		}
		return &order.Execution{
			ExecID:       idgen.NewExecID(),
			ClOrdID:      clOrdID,
			ExecType:     execType,
			ExecQuantity: qty,
			ExecPrice:    price,
			CreatedAt:    idgen.Now(),
		}, nil
	})
	if err != nil {
		return Outbound{}, err
	}

	execType, ordStatus := wireForStatus(rec.Status)
	return Outbound{
		MsgType: constants.MsgTypeExecutionReport,
		Fields: builder.ExecutionReport(builder.ExecReport{
			ClOrdID:     clOrdID,
			Symbol:      rec.Symbol,
			Side:        order.SideWire(rec.Side),
			OrdType:     order.OrderTypeWire(rec.OrderType),
			OrderQty:    rec.Quantity,
			Price:       limitPriceWire(rec),
			TimeInForce: order.TimeInForceWire(rec.TimeInForce),
			ExecID:      idgen.NewExecID(),
			ExecType:    execType,
			OrdStatus:   ordStatus,
			LastQty:     qty,
			LastPx:      idgen.FormatPrice(price),
			CumQty:      rec.FilledQuantity,
			AvgPx:       idgen.FormatPrice(rec.AvgPx),
			LeavesQty:   rec.RemainingQuantity(),
		}),
	}, nil
}

// AdminCancel cancels an open order on behalf of the admin surface.
func AdminCancel(store *order.Store, clOrdID string) (Outbound, error) {
	rec, err := store.Mutate(clOrdID, func(rec *order.Record, execs []order.Execution) (*order.Execution, error) {
		if rec.Status != order.StatusNew && rec.Status != order.StatusPartiallyFilled {
			return nil, order.ErrBadState
		}
		rec.Status = order.StatusCanceled
		return &order.Execution{
			ExecID:    idgen.NewExecID(),
			ClOrdID:   clOrdID,
			ExecType:  constants.ExecTypeCanceled,
			CreatedAt: idgen.Now(),
		}, nil
	})
	if err != nil {
		return Outbound{}, err
	}
	return Outbound{
		MsgType: constants.MsgTypeExecutionReport,
		Fields: builder.ExecutionReport(builder.ExecReport{
			ClOrdID:     clOrdID,
			Symbol:      rec.Symbol,
			Side:        order.SideWire(rec.Side),
			OrdType:     order.OrderTypeWire(rec.OrderType),
			OrderQty:    rec.Quantity,
			Price:       limitPriceWire(rec),
			TimeInForce: order.TimeInForceWire(rec.TimeInForce),
			ExecID:      idgen.NewExecID(),
			ExecType:    constants.ExecTypeCanceled,
			OrdStatus:   constants.OrdStatusCanceled,
			CumQty:      rec.FilledQuantity,
			AvgPx:       idgen.FormatPrice(rec.AvgPx),
			LeavesQty:   0,
		}),
	}, nil
}

// AdminReject rejects an order administratively; permitted only while the
// order is still NEW.
func AdminReject(store *order.Store, clOrdID string) (Outbound, error) {
	rec, err := store.Mutate(clOrdID, func(rec *order.Record, execs []order.Execution) (*order.Execution, error) {
		if rec.Status != order.StatusNew {
			return nil, order.ErrBadState
		}
		rec.Status = order.StatusRejected
		return &order.Execution{
			ExecID:    idgen.NewExecID(),
			ClOrdID:   clOrdID,
			ExecType:  constants.ExecTypeRejected,
			CreatedAt: idgen.Now(),
		}, nil
	})
	if err != nil {
		return Outbound{}, err
	}
	return Outbound{
		MsgType: constants.MsgTypeExecutionReport,
		Fields: builder.ExecutionReport(builder.ExecReport{
			ClOrdID:     clOrdID,
			Symbol:      rec.Symbol,
			Side:        order.SideWire(rec.Side),
			OrdType:     order.OrderTypeWire(rec.OrderType),
			OrderQty:    rec.Quantity,
			Price:       limitPriceWire(rec),
			TimeInForce: order.TimeInForceWire(rec.TimeInForce),
			ExecID:      idgen.NewExecID(),
			ExecType:    constants.ExecTypeRejected,
			OrdStatus:   constants.OrdStatusRejected,
			CumQty:      rec.FilledQuantity,
			AvgPx:       idgen.FormatPrice(rec.AvgPx),
			LeavesQty:   rec.RemainingQuantity(),
		}),
	}, nil
}

func cancelRejectOutbound(clOrdID, origClOrdID, reason, text string) Outbound {
	return Outbound{
		MsgType: constants.MsgTypeOrderCancelReject,
		Fields: builder.OrderCancelReject(builder.CancelReject{
			ClOrdID:      clOrdID,
			OrigClOrdID:  origClOrdID,
			CxlRejReason: reason,
			Text:         text,
		}),
	}
}

// CancelRequest handles an inbound 35=F. It never returns an error: every
// outcome - unknown order, too late, or a successful cancel - is a FIX
// message.
func CancelRequest(store *order.Store, req CancelRequestParams) Outbound {
	orig, ok := store.Get(req.OrigClOrdID)
	if !ok {
		return cancelRejectOutbound(req.ClOrdID, req.OrigClOrdID, constants.CxlRejReasonUnknownOrder, "Order not found")
	}
	if orig.Terminal() {
		return cancelRejectOutbound(req.ClOrdID, req.OrigClOrdID, constants.CxlRejReasonTooLate,
			fmt.Sprintf("Order already %s", statusLabel(orig.Status)))
	}

	rec, err := store.Mutate(req.OrigClOrdID, func(rec *order.Record, execs []order.Execution) (*order.Execution, error) {
		if rec.Terminal() {
			return nil, order.ErrBadState
		}
		rec.Status = order.StatusCanceled
		return &order.Execution{
			ExecID:    idgen.NewExecID(),
			ClOrdID:   req.OrigClOrdID,
			ExecType:  constants.ExecTypeCanceled,
			CreatedAt: idgen.Now(),
		}, nil
	})
	if err != nil {
		latest, _ := store.Get(req.OrigClOrdID)
		return cancelRejectOutbound(req.ClOrdID, req.OrigClOrdID, constants.CxlRejReasonTooLate,
			fmt.Sprintf("Order already %s", statusLabel(latest.Status)))
	}

	return Outbound{
		MsgType: constants.MsgTypeExecutionReport,
		Fields: builder.ExecutionReport(builder.ExecReport{
			ClOrdID:     req.ClOrdID,
			OrigClOrdID: req.OrigClOrdID,
			Symbol:      rec.Symbol,
			Side:        order.SideWire(rec.Side),
			OrdType:     order.OrderTypeWire(rec.OrderType),
			OrderQty:    rec.Quantity,
			Price:       limitPriceWire(rec),
			TimeInForce: order.TimeInForceWire(rec.TimeInForce),
			ExecID:      idgen.NewExecID(),
			ExecType:    constants.ExecTypeCanceled,
			OrdStatus:   constants.OrdStatusCanceled,
			CumQty:      rec.FilledQuantity,
			AvgPx:       idgen.FormatPrice(rec.AvgPx),
			LeavesQty:   0,
		}),
	}
}

// CancelReplaceRequest handles an inbound 35=G. Like CancelRequest, every
// outcome is a message.
func CancelReplaceRequest(store *order.Store, req ReplaceRequestParams) Outbound {
	orig, ok := store.Get(req.OrigClOrdID)
	if !ok {
		return cancelRejectOutbound(req.ClOrdID, req.OrigClOrdID, constants.CxlRejReasonUnknownOrder, "Order not found")
	}
	if orig.Terminal() {
		return cancelRejectOutbound(req.ClOrdID, req.OrigClOrdID, constants.CxlRejReasonTooLate,
			fmt.Sprintf("Order already %s", statusLabel(orig.Status)))
	}
	if req.OrderQty < orig.FilledQuantity {
		return cancelRejectOutbound(req.ClOrdID, req.OrigClOrdID, constants.CxlRejReasonTooLate, "New quantity below filled")
	}
	if _, exists := store.Get(req.ClOrdID); exists {
		return cancelRejectOutbound(req.ClOrdID, req.OrigClOrdID, constants.CxlRejReasonTooLate, "ClOrdID already exists")
	}

	newPrice := orig.LimitPrice
	if req.PriceWire != "" {
		if parsed, err := decimal.NewFromString(req.PriceWire); err == nil {
			newPrice = parsed
		}
	}

	var rejectText string
	newRec, err := store.InsertReplacement(req.OrigClOrdID, func(old order.Record) (order.Record, *order.Execution, error) {
		if old.Terminal() {
			rejectText = fmt.Sprintf("Order already %s", statusLabel(old.Status))
			return order.Record{}, nil, order.ErrBadState
		}
		if req.OrderQty < old.FilledQuantity {
			rejectText = "New quantity below filled"
			return order.Record{}, nil, order.ErrBadState
		}
		now := idgen.Now()
		nr := order.Record{
			ClOrdID:            req.ClOrdID,
			OrigClOrdID:        req.OrigClOrdID,
			Symbol:             old.Symbol,
			Side:               old.Side,
			OrderType:          old.OrderType,
			Quantity:           req.OrderQty,
			LimitPrice:         newPrice,
			TimeInForce:        old.TimeInForce,
			FilledQuantity:     old.FilledQuantity,
			AvgPx:              old.AvgPx,
			OwningSenderCompID: old.OwningSenderCompID,
			CreatedAt:          now,
			Status:             order.StatusNew,
		}
		switch {
		case nr.FilledQuantity >= nr.Quantity && nr.Quantity > 0:
			nr.Status = order.StatusFilled
		case nr.FilledQuantity > 0:
			nr.Status = order.StatusPartiallyFilled
		}
		oldExec := &order.Execution{
			ExecID:    idgen.NewExecID(),
			ClOrdID:   req.OrigClOrdID,
			ExecType:  constants.ExecTypeReplaced,
			CreatedAt: now,
		}
		return nr, oldExec, nil
	})
	if err != nil {
		return cancelRejectOutbound(req.ClOrdID, req.OrigClOrdID, constants.CxlRejReasonTooLate, rejectText)
	}

	_, ordStatus := wireForStatus(newRec.Status)
	return Outbound{
		MsgType: constants.MsgTypeExecutionReport,
		Fields: builder.ExecutionReport(builder.ExecReport{
			ClOrdID:     req.ClOrdID,
			OrigClOrdID: req.OrigClOrdID,
			Symbol:      newRec.Symbol,
			Side:        order.SideWire(newRec.Side),
			OrdType:     order.OrderTypeWire(newRec.OrderType),
			OrderQty:    newRec.Quantity,
			Price:       limitPriceWire(newRec),
			TimeInForce: order.TimeInForceWire(newRec.TimeInForce),
			ExecID:      idgen.NewExecID(),
			ExecType:    constants.ExecTypeReplaced,
			OrdStatus:   ordStatus,
			CumQty:      newRec.FilledQuantity,
			AvgPx:       idgen.FormatPrice(newRec.AvgPx),
			LeavesQty:   newRec.RemainingQuantity(),
		}),
	}
}

func limitPriceWire(rec order.Record) string {
	if rec.OrderType != order.TypeLimit {
		return ""
	}
	return idgen.FormatPrice(rec.LimitPrice)
}

// statusLabel renders a Record.Status for Text diagnostics; Replaced has no
// wire representation of its own so it's spelled out the same way any
// other terminal status is.
func statusLabel(status string) string {
	return status
}
