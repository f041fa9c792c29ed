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

package order

import (
	"errors"
	"sync"
	"time"
)

// Sentinel errors returned by Store operations; callers (the state machine,
// the admin dispatcher) translate these into the appropriate wire or HTTP
// response.
var (
	ErrDuplicateClOrdID = errors.New("order: ClOrdID already exists")
	ErrNotFound         = errors.New("order: ClOrdID not found")
	ErrBadState         = errors.New("order: not in a state that permits this transition")
	ErrOverfill         = errors.New("order: fill would exceed order quantity")
)

// entry is one order's storage slot: its record, its execution history, and
// the lock that makes it a single logical transaction unit. Per-order
// locking is the fine-grained option the store allows; it lets a fill on
// one order and a cancel on a different order proceed concurrently.
type entry struct {
	mu    sync.Mutex
	rec   Record
	execs []Execution
}

// Store is the process-wide, authoritative mapping from ClOrdID to order.
// It is safe for concurrent use by every session and by the admin
// dispatcher simultaneously.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry

	// onTransition, if set, is called after every successful Insert/Mutate
	// with the record's new state and (if any) the execution that produced
	// it - the hook storedb.AuditDB.RecordTransition plugs into. It runs
	// outside the order's lock so a slow audit write never blocks other
	// transitions on the same order.
	onTransition func(rec Record, exec *Execution)
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

// SetOnTransition installs the audit hook described on Store.onTransition.
func (s *Store) SetOnTransition(fn func(rec Record, exec *Execution)) {
	s.onTransition = fn
}

// Insert adds a brand-new order. It fails with ErrDuplicateClOrdID if the
// ClOrdID is already present (including as a REPLACED or otherwise
// terminal order - ClOrdID uniqueness is process-wide and permanent).
func (s *Store) Insert(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[rec.ClOrdID]; exists {
		return ErrDuplicateClOrdID
	}
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	s.entries[rec.ClOrdID] = &entry{rec: rec}

	if s.onTransition != nil {
		s.onTransition(rec, nil)
	}
	return nil
}

// Get returns a defensive copy of the order's current record.
func (s *Store) Get(clOrdID string) (Record, bool) {
	e, ok := s.lookup(clOrdID)
	if !ok {
		return Record{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rec, true
}

// Executions returns a copy of every execution recorded against an order,
// oldest first.
func (s *Store) Executions(clOrdID string) ([]Execution, bool) {
	e, ok := s.lookup(clOrdID)
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]Execution, len(e.execs))
	copy(out, e.execs)
	return out, true
}

// OwnerSession returns the SenderCompID that submitted the order, so the
// execution dispatcher knows which live session to route a report to.
func (s *Store) OwnerSession(clOrdID string) (string, bool) {
	rec, ok := s.Get(clOrdID)
	if !ok {
		return "", false
	}
	return rec.OwningSenderCompID, true
}

// List returns a defensive copy of every order in the store, in no
// particular order, for the admin surface's list_orders().
func (s *Store) List() []Record {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.rec)
		e.mu.Unlock()
	}
	return out
}

// ListExecutions returns every execution across every order, for
// list_executions().
func (s *Store) ListExecutions() []Execution {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	var out []Execution
	for _, e := range entries {
		e.mu.Lock()
		out = append(out, e.execs...)
		e.mu.Unlock()
	}
	return out
}

// Mutate is the store's sole read-modify-write primitive: it locks the
// single order identified by clOrdID (never the whole store) and hands fn
// the live record and its execution history so far. fn decides whether the
// transition is legal; if it returns a non-nil *Execution, that execution is
// appended atomically with the record mutation and UpdatedAt is refreshed.
// A non-nil error aborts the mutation - the record is left untouched.
//
// fn runs start-to-finish under the order's own lock, so a racing admin
// fill and client cancel on the same order serialize here, not in the
// caller - no report ever observes a partially-applied execution.
func (s *Store) Mutate(clOrdID string, fn func(rec *Record, execs []Execution) (*Execution, error)) (Record, error) {
	e, ok := s.lookup(clOrdID)
	if !ok {
		return Record{}, ErrNotFound
	}
	e.mu.Lock()
	exec, err := fn(&e.rec, e.execs)
	if err != nil {
		e.mu.Unlock()
		return e.rec, err
	}
	if exec != nil {
		e.execs = append(e.execs, *exec)
	}
	e.rec.UpdatedAt = time.Now().UTC()
	rec := e.rec
	e.mu.Unlock()

	if s.onTransition != nil {
		s.onTransition(rec, exec)
	}
	return rec, nil
}

// InsertReplacement atomically flips the old order to REPLACED (subject to
// buildNew's own precondition check, run under the old order's lock) and
// inserts the new order it produces. The two entries are not locked
// together - the new ClOrdID is guaranteed fresh by the client, so there is
// no other writer racing to create it between the two steps.
func (s *Store) InsertReplacement(oldID string, buildNew func(old Record) (Record, *Execution, error)) (Record, error) {
	var newRec Record
	_, err := s.Mutate(oldID, func(rec *Record, execs []Execution) (*Execution, error) {
		built, oldExec, err := buildNew(*rec)
		if err != nil {
			return nil, err
		}
		newRec = built
		rec.Status = StatusReplaced
		return oldExec, nil
	})
	if err != nil {
		return Record{}, err
	}
	if err := s.Insert(newRec); err != nil {
		return Record{}, err
	}
	return newRec, nil
}

func (s *Store) lookup(clOrdID string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[clOrdID]
	return e, ok
}
