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

// Package session implements the per-connection FIX session layer: the
// logon handshake, sequence-number discipline, the heartbeat timer, and
// the serialized outbound send path.
package session

import "sync"

// Table is the process-wide SenderCompID -> live Session map, protected
// under a reader-many, writer-few discipline. A session registers itself
// on successful logon and unregisters itself on teardown; the
// execution dispatcher uses it to find the session that owns an order.
type Table struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewTable returns an empty session table.
func NewTable() *Table {
	return &Table{sessions: make(map[string]*Session)}
}

// Register adds s under senderCompID. It returns false without modifying
// the table if a session is already registered under that id - on an
// identity collision the second Logon loses.
func (t *Table) Register(senderCompID string, s *Session) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.sessions[senderCompID]; exists {
		return false
	}
	t.sessions[senderCompID] = s
	return true
}

// Unregister removes senderCompID's entry, but only if it still points at
// s - a session that lost a Register race, or one that has already been
// replaced, must not evict its replacement.
func (t *Table) Unregister(senderCompID string, s *Session) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.sessions[senderCompID]; ok && cur == s {
		delete(t.sessions, senderCompID)
	}
}

// Get returns the live session for senderCompID, if any.
func (t *Table) Get(senderCompID string) (*Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[senderCompID]
	return s, ok
}

// Len reports how many sessions are currently registered, for the
// acceptor's max_sessions cap.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

// List returns every live session, for graceful shutdown.
func (t *Table) List() []*Session {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s)
	}
	return out
}
