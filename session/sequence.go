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

// SeqOutcome classifies an inbound MsgSeqNum against what the session
// expected next. Kept as a small pure function, independent of Session, so
// the three branches are testable without standing up a socket.
type SeqOutcome int

const (
	// SeqInOrder: got == expected. Accept and advance.
	SeqInOrder SeqOutcome = iota
	// SeqGap: got > expected. Logged, not fatal; the acceptor records the
	// gap rather than issuing a resend request.
	SeqGap
	// SeqTooLow: got < expected. The session disconnects with Logout unless
	// the message carries PossDupFlag=Y, in which case it is ignored.
	SeqTooLow
)

// CheckSequence classifies an inbound MsgSeqNum.
func CheckSequence(expected, got int) SeqOutcome {
	switch {
	case got == expected:
		return SeqInOrder
	case got > expected:
		return SeqGap
	default:
		return SeqTooLow
	}
}
