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

// Package statemachine decides legal order transitions - new order,
// client cancel/replace, administrative fill/cancel/reject - and produces
// the resulting outbound message. It is the only component that mutates
// order.Record fields; it does so exclusively through
// order.Store.Mutate/InsertReplacement so every transition is serialized
// per order.
package statemachine

import (
	"github.com/primevalsoup/fix-agent/fixcodec"
)

// Outbound is a fully-built business-field set awaiting only a session
// header (SenderCompID/TargetCompID/MsgSeqNum/SendingTime) and framing.
type Outbound struct {
	MsgType string
	Fields  []fixcodec.Field
}

// NewOrderRequest is NewOrderSingle's input, field names matching the wire
// tags that feed them: SideWire is tag 54's raw value, etc. Validation and
// wire-to-domain translation both happen inside NewOrderSingle.
type NewOrderRequest struct {
	ClOrdID         string
	Symbol          string
	SideWire        string
	OrdTypeWire     string
	OrderQty        int64
	PriceWire       string // tag 44; "" if absent
	TimeInForceWire string // tag 59; "" defaults to Day
	SenderCompID    string
}

// CancelRequestParams is CancelRequest's input.
type CancelRequestParams struct {
	ClOrdID     string // the cancel request's own ClOrdID (tag 11)
	OrigClOrdID string // tag 41
}

// ReplaceRequestParams is CancelReplaceRequest's input.
type ReplaceRequestParams struct {
	ClOrdID     string // the replacement's new ClOrdID (tag 11)
	OrigClOrdID string // tag 41
	OrderQty    int64  // new OrderQty (tag 38)
	PriceWire   string // new Price (tag 44); "" leaves the original price unchanged
}
