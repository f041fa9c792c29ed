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

package session

import "testing"

func TestCheckSequence_InOrder(t *testing.T) {
	if got := CheckSequence(5, 5); got != SeqInOrder {
		t.Errorf("got %v, want SeqInOrder", got)
	}
}

func TestCheckSequence_Gap(t *testing.T) {
	if got := CheckSequence(5, 9); got != SeqGap {
		t.Errorf("got %v, want SeqGap", got)
	}
}

func TestCheckSequence_TooLow(t *testing.T) {
	if got := CheckSequence(5, 3); got != SeqTooLow {
		t.Errorf("got %v, want SeqTooLow", got)
	}
}
