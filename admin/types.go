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

package admin

import "github.com/primevalsoup/fix-agent/order"

// orderView is the JSON shape of an order.Record returned by list_orders/
// get_order; AvgPx/LimitPrice are rendered as strings to avoid float
// round-tripping through JSON.
type orderView struct {
	ClOrdID            string `json:"cl_ord_id"`
	OrigClOrdID        string `json:"orig_cl_ord_id,omitempty"`
	Symbol             string `json:"symbol"`
	Side               string `json:"side"`
	OrderType          string `json:"order_type"`
	Quantity           int64  `json:"quantity"`
	LimitPrice         string `json:"limit_price,omitempty"`
	TimeInForce        string `json:"time_in_force"`
	Status             string `json:"status"`
	FilledQuantity     int64  `json:"filled_quantity"`
	RemainingQuantity  int64  `json:"remaining_quantity"`
	AvgPx              string `json:"avg_px"`
	OwningSenderCompID string `json:"owning_sender_comp_id"`
	CreatedAt          string `json:"created_at"`
	UpdatedAt          string `json:"updated_at"`
}

func newOrderView(r order.Record) orderView {
	v := orderView{
		ClOrdID:            r.ClOrdID,
		OrigClOrdID:        r.OrigClOrdID,
		Symbol:             r.Symbol,
		Side:               r.Side,
		OrderType:          r.OrderType,
		Quantity:           r.Quantity,
		TimeInForce:        r.TimeInForce,
		Status:             r.Status,
		FilledQuantity:     r.FilledQuantity,
		RemainingQuantity:  r.RemainingQuantity(),
		AvgPx:              r.AvgPx.String(),
		OwningSenderCompID: r.OwningSenderCompID,
		CreatedAt:          r.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		UpdatedAt:          r.UpdatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
	if !r.LimitPrice.IsZero() {
		v.LimitPrice = r.LimitPrice.String()
	}
	return v
}

// execView is the JSON shape of an order.Execution.
type execView struct {
	ExecID       string `json:"exec_id"`
	ClOrdID      string `json:"cl_ord_id"`
	ExecType     string `json:"exec_type"`
	ExecQuantity int64  `json:"exec_quantity"`
	ExecPrice    string `json:"exec_price"`
	CreatedAt    string `json:"created_at"`
}

func newExecView(e order.Execution) execView {
	return execView{
		ExecID:       e.ExecID,
		ClOrdID:      e.ClOrdID,
		ExecType:     e.ExecType,
		ExecQuantity: e.ExecQuantity,
		ExecPrice:    e.ExecPrice.String(),
		CreatedAt:    e.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
	}
}

// fillRequest is the JSON body of POST /orders/{clOrdID}/fill.
type fillRequest struct {
	Quantity int64  `json:"quantity"`
	Price    string `json:"price"`
}

// errorResponse is the JSON body of any non-2xx admin response.
type errorResponse struct {
	Error string `json:"error"`
}
