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

// Package order holds the authoritative order/execution data model and the
// store that serializes access to it. The store (Store) is the sole shared
// mutable resource in the acceptor: every other component - the session
// layer, the state machine, the admin dispatcher - reaches orders only
// through it.
package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status values an order can occupy. Once in {Filled, Canceled, Rejected,
// Replaced} no further state-changing transition is permitted.
const (
	StatusNew             = "NEW"
	StatusPartiallyFilled = "PARTIALLY_FILLED"
	StatusFilled          = "FILLED"
	StatusCanceled        = "CANCELED"
	StatusRejected        = "REJECTED"
	StatusReplaced        = "REPLACED" // internal only; never reported on the wire
)

// Side values.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// OrderType values.
const (
	TypeMarket    = "MARKET"
	TypeLimit     = "LIMIT"
	TypeStop      = "STOP"
	TypeStopLimit = "STOP_LIMIT"
)

// TimeInForce values.
const (
	TIFDay = "DAY"
	TIFGTC = "GTC"
	TIFIOC = "IOC"
	TIFFOK = "FOK"
)

// Record is a single-leg order. Fields mirror the data model's attribute
// list field-for-field; FilledQuantity and AvgPx are the only fields a
// transition mutates in place, everything else is fixed at insert time
// except Status, OrigClOrdID (set once, at replace) and the timestamps.
type Record struct {
	ClOrdID            string
	OrigClOrdID        string // set only on a replacement order
	Symbol             string
	Side               string
	OrderType          string
	Quantity           int64
	LimitPrice         decimal.Decimal
	TimeInForce        string
	Status             string
	FilledQuantity     int64
	AvgPx              decimal.Decimal
	OwningSenderCompID string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RemainingQuantity is the derived leaves quantity: Quantity - FilledQuantity.
// A CANCELED order's record keeps this for audit even though its reports
// carry LeavesQty 0.
func (r Record) RemainingQuantity() int64 {
	return r.Quantity - r.FilledQuantity
}

// Terminal reports whether no further state-changing transition is
// permitted from this status.
func (r Record) Terminal() bool {
	switch r.Status {
	case StatusFilled, StatusCanceled, StatusRejected, StatusReplaced:
		return true
	default:
		return false
	}
}

// Execution is one fill or administrative event against an order. Execution
// records are immutable once written; ExecQuantity/ExecPrice are zero for
// non-fill ExecTypes (New, Canceled, Rejected, Replaced).
type Execution struct {
	ExecID       string
	ClOrdID      string
	ExecType     string
	ExecQuantity int64
	ExecPrice    decimal.Decimal
	CreatedAt    time.Time
}

// IsFill reports whether this execution counts toward filled quantity
// (a partial or full fill, as opposed to a New/Canceled/Rejected event).
func (e Execution) IsFill() bool {
	return e.ExecQuantity > 0
}
