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

// Package storedb is the acceptor's audit persistence tail: a
// SQLite-backed write-behind log of orders and their executions (prepared
// statements, WAL journal mode, one connection). Every execution write is
// issued inside the same transaction as the order-row upsert it belongs
// to, so an execution is never persisted without the state transition that
// produced it. The in-memory order.Store remains the authority the
// acceptor reads from; this package is a durability side-channel, not a
// replacement for it.
package storedb

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/primevalsoup/fix-agent/order"
)

const schema = `
CREATE TABLE IF NOT EXISTS orders (
	cl_ord_id TEXT PRIMARY KEY,
	orig_cl_ord_id TEXT,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	order_type TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	limit_price TEXT NOT NULL,
	time_in_force TEXT NOT NULL,
	status TEXT NOT NULL,
	filled_quantity INTEGER NOT NULL,
	avg_px TEXT NOT NULL,
	owning_sender_comp_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS executions (
	exec_id TEXT PRIMARY KEY,
	cl_ord_id TEXT NOT NULL REFERENCES orders(cl_ord_id),
	exec_type TEXT NOT NULL,
	exec_quantity INTEGER NOT NULL,
	exec_price TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_executions_cl_ord_id ON executions(cl_ord_id);
`

const upsertOrderQuery = `
INSERT INTO orders (cl_ord_id, orig_cl_ord_id, symbol, side, order_type, quantity, limit_price,
                     time_in_force, status, filled_quantity, avg_px, owning_sender_comp_id, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(cl_ord_id) DO UPDATE SET
	status = excluded.status,
	filled_quantity = excluded.filled_quantity,
	avg_px = excluded.avg_px,
	updated_at = excluded.updated_at
`

const insertExecutionQuery = `
INSERT INTO executions (exec_id, cl_ord_id, exec_type, exec_quantity, exec_price, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

// AuditDB is the SQLite-backed audit log.
type AuditDB struct {
	db *sql.DB

	stmtUpsertOrder *sql.Stmt
	stmtInsertExec  *sql.Stmt
}

// Open opens (creating if absent) the SQLite database at path, in WAL mode
// for concurrent readers while the acceptor writes, and prepares the
// statements every transaction reuses.
func Open(path string) (*AuditDB, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("storedb: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	a := &AuditDB{db: db}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storedb: initialize schema: %w", err)
	}

	if a.stmtUpsertOrder, err = db.Prepare(upsertOrderQuery); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storedb: prepare order upsert: %w", err)
	}
	if a.stmtInsertExec, err = db.Prepare(insertExecutionQuery); err != nil {
		_ = a.stmtUpsertOrder.Close()
		_ = db.Close()
		return nil, fmt.Errorf("storedb: prepare execution insert: %w", err)
	}
	return a, nil
}

// Close releases the prepared statements and the underlying connection.
func (a *AuditDB) Close() error {
	if a.stmtUpsertOrder != nil {
		_ = a.stmtUpsertOrder.Close()
	}
	if a.stmtInsertExec != nil {
		_ = a.stmtInsertExec.Close()
	}
	return a.db.Close()
}

// RecordTransition persists rec and, if exec is non-nil, its execution in
// a single transaction - the atomicity boundary between an order's state
// transition and the execution that produced it.
func (a *AuditDB) RecordTransition(rec order.Record, exec *order.Execution) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("storedb: begin transaction: %w", err)
	}

	if _, err := tx.Stmt(a.stmtUpsertOrder).Exec(
		rec.ClOrdID, rec.OrigClOrdID, rec.Symbol, rec.Side, rec.OrderType, rec.Quantity,
		rec.LimitPrice.String(), rec.TimeInForce, rec.Status, rec.FilledQuantity, rec.AvgPx.String(),
		rec.OwningSenderCompID, formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("storedb: upsert order: %w", err)
	}

	if exec != nil {
		if _, err := tx.Stmt(a.stmtInsertExec).Exec(
			exec.ExecID, exec.ClOrdID, exec.ExecType, exec.ExecQuantity, exec.ExecPrice.String(), formatTime(exec.CreatedAt),
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("storedb: insert execution: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storedb: commit transaction: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
