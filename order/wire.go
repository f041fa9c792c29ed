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

// These translate between the wire's single-character FIX codes (tags 54,
// 40, 59) and the Record's semantic enum values. Keeping the translation
// here, rather than duplicating wire codes onto Record, means the store and
// its invariants never need to know what "1" means.

var sideFromWire = map[string]string{
	"1": SideBuy,
	"2": SideSell,
}

var sideToWire = map[string]string{
	SideBuy:  "1",
	SideSell: "2",
}

var orderTypeFromWire = map[string]string{
	"1": TypeMarket,
	"2": TypeLimit,
	"3": TypeStop,
	"4": TypeStopLimit,
}

var orderTypeToWire = map[string]string{
	TypeMarket:    "1",
	TypeLimit:     "2",
	TypeStop:      "3",
	TypeStopLimit: "4",
}

var tifFromWire = map[string]string{
	"0": TIFDay,
	"1": TIFGTC,
	"3": TIFIOC,
	"4": TIFFOK,
}

var tifToWire = map[string]string{
	TIFDay: "0",
	TIFGTC: "1",
	TIFIOC: "3",
	TIFFOK: "4",
}

// ParseSide translates wire tag 54 into a Side constant.
func ParseSide(wire string) (string, bool) {
	v, ok := sideFromWire[wire]
	return v, ok
}

// SideWire is the inverse of ParseSide.
func SideWire(side string) string {
	return sideToWire[side]
}

// ParseOrderType translates wire tag 40 into an OrderType constant.
func ParseOrderType(wire string) (string, bool) {
	v, ok := orderTypeFromWire[wire]
	return v, ok
}

// OrderTypeWire is the inverse of ParseOrderType.
func OrderTypeWire(orderType string) string {
	return orderTypeToWire[orderType]
}

// ParseTimeInForce translates wire tag 59 into a TimeInForce constant. An
// empty wire value defaults to Day, per the data model's default.
func ParseTimeInForce(wire string) (string, bool) {
	if wire == "" {
		return TIFDay, true
	}
	v, ok := tifFromWire[wire]
	return v, ok
}

// TimeInForceWire is the inverse of ParseTimeInForce.
func TimeInForceWire(tif string) string {
	return tifToWire[tif]
}
