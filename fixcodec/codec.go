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

package fixcodec

import (
	"bytes"
	"fmt"
	"strconv"
)

// SOH is the single-octet FIX field delimiter.
const SOH = 0x01

const trailerWidth = len("10=000\x01") // fixed: "10=" + 3 digits + SOH

// FramingError reports a malformed frame: bad BeginString, malformed or
// mismatched BodyLength, bad CheckSum, or an unterminated tag value.
// Framing errors are handled by closing the connection without a response;
// the caller decides that policy, this type just identifies it.
type FramingError struct {
	Reason string
}

func (e *FramingError) Error() string {
	return "fix framing error: " + e.Reason
}

// Decoder incrementally assembles complete FIX messages out of a byte
// stream. Partial buffers accumulate across Feed calls; Next only returns
// a message once a complete, checksum-valid frame is available.
//
// Not safe for concurrent use; each session owns exactly one Decoder fed
// from its own receive loop.
type Decoder struct {
	beginString string
	buf         []byte
}

// NewDecoder returns a Decoder that requires every frame's tag 8 to equal
// beginString (e.g. "FIX.4.2").
func NewDecoder(beginString string) *Decoder {
	return &Decoder{beginString: beginString}
}

// Feed appends newly-read bytes to the decoder's buffer.
func (d *Decoder) Feed(data []byte) {
	d.buf = append(d.buf, data...)
}

// Next attempts to extract one complete message from the buffered bytes.
// It returns (nil, nil) when more bytes are needed, (msg, nil) when a
// message was parsed (the consumed bytes are dropped from the internal
// buffer), or (nil, *FramingError) when the buffered bytes can never form
// a valid frame.
func (d *Decoder) Next() (*Message, error) {
	firstSOH := bytes.IndexByte(d.buf, SOH)
	if firstSOH < 0 {
		if len(d.buf) > 64 {
			return nil, &FramingError{Reason: "BeginString field (tag 8) not SOH-terminated"}
		}
		return nil, nil
	}
	tag8 := string(d.buf[:firstSOH])
	if len(tag8) < 2 || tag8[:2] != "8=" {
		return nil, &FramingError{Reason: fmt.Sprintf("message does not begin with BeginString, got %q", tag8)}
	}
	if tag8[2:] != d.beginString {
		return nil, &FramingError{Reason: fmt.Sprintf("unexpected BeginString %q", tag8[2:])}
	}

	secondSOH := bytes.IndexByte(d.buf[firstSOH+1:], SOH)
	if secondSOH < 0 {
		if len(d.buf) > firstSOH+1+64 {
			return nil, &FramingError{Reason: "BodyLength field (tag 9) not SOH-terminated"}
		}
		return nil, nil
	}
	secondSOH += firstSOH + 1
	tag9 := string(d.buf[firstSOH+1 : secondSOH])
	if len(tag9) < 2 || tag9[:2] != "9=" {
		return nil, &FramingError{Reason: "BodyLength (tag 9) must immediately follow BeginString"}
	}
	bodyLen, err := strconv.Atoi(tag9[2:])
	if err != nil || bodyLen < 0 {
		return nil, &FramingError{Reason: fmt.Sprintf("BodyLength is not a valid non-negative integer: %q", tag9[2:])}
	}

	bodyStart := secondSOH + 1
	total := bodyStart + bodyLen + trailerWidth
	if len(d.buf) < total {
		return nil, nil
	}

	trailer := d.buf[bodyStart+bodyLen : total]
	if len(trailer) != trailerWidth || string(trailer[:3]) != "10=" || trailer[trailerWidth-1] != SOH {
		return nil, &FramingError{Reason: "malformed CheckSum field (tag 10)"}
	}
	wireChecksum := string(trailer[3 : trailerWidth-1])
	computed := checksum(d.buf[:bodyStart+bodyLen])
	if wireChecksum != computed {
		return nil, &FramingError{Reason: fmt.Sprintf("checksum mismatch: wire=%s computed=%s", wireChecksum, computed)}
	}

	raw := d.buf[:total]
	msg, err := parseFields(raw)
	if err != nil {
		return nil, err
	}

	remaining := make([]byte, len(d.buf)-total)
	copy(remaining, d.buf[total:])
	d.buf = remaining

	return msg, nil
}

// parseFields splits a complete, checksum-validated frame into ordered
// Fields. Every field except the final trailing one must be SOH-terminated;
// a field with no '=' is a framing error ("a tag value is not terminated by
// SOH" in spirit - it means we can't tell where the tag ends).
func parseFields(raw []byte) (*Message, error) {
	m := NewMessage()
	start := 0
	for start < len(raw) {
		soh := bytes.IndexByte(raw[start:], SOH)
		if soh < 0 {
			return nil, &FramingError{Reason: "tag value not terminated by SOH"}
		}
		segment := raw[start : start+soh]
		eq := bytes.IndexByte(segment, '=')
		if eq < 0 {
			return nil, &FramingError{Reason: fmt.Sprintf("field %q has no '=' separator", segment)}
		}
		tag, err := strconv.Atoi(string(segment[:eq]))
		if err != nil {
			return nil, &FramingError{Reason: fmt.Sprintf("non-numeric tag %q", segment[:eq])}
		}
		m.Fields = append(m.Fields, Field{Tag: tag, Value: string(segment[eq+1:])})
		start += soh + 1
	}
	m.rebuildIndex()
	return m, nil
}

// Serialize renders bodyFields (everything after BeginString/BodyLength and
// before CheckSum) into a complete wire frame: it computes BodyLength from
// the actual encoded body, appends the body, then computes and appends
// CheckSum - the inverse of Next.
func Serialize(beginString string, bodyFields []Field) []byte {
	var body bytes.Buffer
	for _, f := range bodyFields {
		body.WriteString(strconv.Itoa(f.Tag))
		body.WriteByte('=')
		body.WriteString(f.Value)
		body.WriteByte(SOH)
	}

	var full bytes.Buffer
	full.WriteString("8=")
	full.WriteString(beginString)
	full.WriteByte(SOH)
	full.WriteString("9=")
	full.WriteString(strconv.Itoa(body.Len()))
	full.WriteByte(SOH)
	full.Write(body.Bytes())

	cs := checksum(full.Bytes())
	full.WriteString("10=")
	full.WriteString(cs)
	full.WriteByte(SOH)
	return full.Bytes()
}

// checksum is the sum of all bytes mod 256, zero-padded to 3 digits, per
// the FIX spec's definition of tag 10.
func checksum(b []byte) string {
	sum := 0
	for _, c := range b {
		sum += int(c)
	}
	return fmt.Sprintf("%03d", sum%256)
}
