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

// Package idgen is the acceptor's cross-cutting id/time surface: opaque,
// unique execution ids and UTC timestamps in FIX's wire format.
package idgen

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/primevalsoup/fix-agent/constants"
)

// NewExecID returns a fresh, opaque, process-wide-unique execution id.
// ExecID is never parsed by the client - only compared for equality - so a
// UUID needs no further structure.
func NewExecID() string {
	return uuid.New().String()
}

// FixTime renders t in FIX 4.2's SendingTime/TransactTime wire format,
// UTC, millisecond precision.
func FixTime(t time.Time) string {
	return t.UTC().Format(constants.FixTimeFormat)
}

// Now is the current instant in UTC, truncated to millisecond precision to
// match what goes on the wire.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// FormatPrice renders a decimal price with up to 6 decimal places,
// trailing zeros trimmed - enough precision to keep AvgPx from drifting
// across many partial fills without padding every whole-number price out
// to "230.100000".
func FormatPrice(d decimal.Decimal) string {
	s := d.Truncate(6).StringFixed(6)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" || s == "-" {
		return "0"
	}
	return s
}
