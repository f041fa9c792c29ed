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

package idgen

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

// TestNewExecID_Unique spot-checks uniqueness across a batch of ids.
func TestNewExecID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewExecID()
		if id == "" {
			t.Fatal("empty exec id")
		}
		if seen[id] {
			t.Fatalf("duplicate exec id %s", id)
		}
		seen[id] = true
	}
}

// TestFixTime_WireFormat verifies the YYYYMMDD-HH:MM:SS.sss UTC rendering.
func TestFixTime_WireFormat(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	ts := time.Date(2026, 7, 29, 9, 30, 5, 123_000_000, loc)
	if got := FixTime(ts); got != "20260729-14:30:05.123" {
		t.Errorf("FixTime = %s, want 20260729-14:30:05.123 (UTC)", got)
	}
}

// TestFormatPrice_TrimsTrailingZeros covers the price rendering rules: up
// to six decimal places, trailing zeros trimmed, whole numbers bare.
func TestFormatPrice_TrimsTrailingZeros(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"230.10", "230.1"},
		{"167.25", "167.25"},
		{"230", "230"},
		{"230.000000", "230"},
		{"0", "0"},
		{"0.1234567", "0.123456"}, // truncated, not rounded, at 6 places
		{"99.000001", "99.000001"},
	}
	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.in)
		if err != nil {
			t.Fatalf("bad test input %q: %v", tt.in, err)
		}
		if got := FormatPrice(d); got != tt.want {
			t.Errorf("FormatPrice(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}
