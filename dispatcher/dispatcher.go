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

// Package dispatcher bridges administrative execution posts - arriving
// from the admin HTTP surface - to the order state machine and, when the
// owning client is connected, to that client's session. It never
// synthesizes a client-initiated message; administrative errors are
// returned to the caller only.
package dispatcher

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/primevalsoup/fix-agent/order"
	"github.com/primevalsoup/fix-agent/session"
	"github.com/primevalsoup/fix-agent/statemachine"
)

// Dispatcher wires the order store to the session table: apply the
// transition on the store, resolve the owning session, emit on it.
type Dispatcher struct {
	store *order.Store
	table sessionLookup
	log   zerolog.Logger
}

// sessionLookup is satisfied by *session.Table; narrowed to the one method
// the dispatcher uses.
type sessionLookup interface {
	Get(senderCompID string) (*session.Session, bool)
}

// New returns a Dispatcher over store and table.
func New(store *order.Store, table *session.Table, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{store: store, table: table, log: log}
}

// SubmitFill posts a fill against an order. A non-nil error is one of
// order.ErrNotFound, order.ErrBadState, order.ErrOverfill.
func (d *Dispatcher) SubmitFill(clOrdID string, qty int64, price decimal.Decimal) error {
	if _, ok := d.store.Get(clOrdID); !ok {
		return order.ErrNotFound
	}
	out, err := statemachine.AdminFill(d.store, clOrdID, qty, price)
	if err != nil {
		return err
	}
	d.deliver(clOrdID, out)
	return nil
}

// AdminCancel cancels an order on behalf of the admin surface.
func (d *Dispatcher) AdminCancel(clOrdID string) error {
	if _, ok := d.store.Get(clOrdID); !ok {
		return order.ErrNotFound
	}
	out, err := statemachine.AdminCancel(d.store, clOrdID)
	if err != nil {
		return err
	}
	d.deliver(clOrdID, out)
	return nil
}

// AdminReject rejects a still-NEW order on behalf of the admin surface.
func (d *Dispatcher) AdminReject(clOrdID string) error {
	if _, ok := d.store.Get(clOrdID); !ok {
		return order.ErrNotFound
	}
	out, err := statemachine.AdminReject(d.store, clOrdID)
	if err != nil {
		return err
	}
	d.deliver(clOrdID, out)
	return nil
}

// deliver resolves the owning session and enqueues the report. If no
// session is live, the state change is already committed (the state
// machine ran before deliver is called) and the report is dropped with a
// warning - no replay is attempted on reconnect.
func (d *Dispatcher) deliver(clOrdID string, out statemachine.Outbound) {
	owner, ok := d.store.OwnerSession(clOrdID)
	if !ok {
		return
	}
	sess, live := d.table.Get(owner)
	if !live {
		d.log.Warn().Str("cl_ord_id", clOrdID).Str("sender_comp_id", owner).
			Msg("owning session not connected, dropping execution report")
		return
	}
	sess.Deliver(out)
}
