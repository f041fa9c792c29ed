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

// Package fixcodec implements the FIX 4.2 wire format: tag=value pairs
// separated by SOH (0x01), framed by BeginString/BodyLength and trailed by
// a three-digit CheckSum. It treats a message as a dynamic, ordered bag of
// tags - callers build typed views on top (see builder and statemachine) -
// the codec itself never needs to know what a ClOrdID is.
package fixcodec

import "strconv"

// Field is a single tag=value pair. Value is always the raw ASCII the wire
// used; numeric/decimal interpretation is the caller's job.
type Field struct {
	Tag   int
	Value string
}

// Message is an ordered, indexed bag of fields. Tag order is preserved for
// audit/replay; Get is by tag number.
type Message struct {
	Fields []Field
	index  map[int]int // tag -> first occurrence in Fields
}

// NewMessage returns an empty message ready to be appended to via Set.
func NewMessage() *Message {
	return &Message{index: make(map[int]int)}
}

// Set appends a field, or overwrites the value of its first occurrence if
// the tag is already present.
func (m *Message) Set(tag int, value string) {
	if m.index == nil {
		m.index = make(map[int]int)
	}
	if i, ok := m.index[tag]; ok {
		m.Fields[i].Value = value
		return
	}
	m.index[tag] = len(m.Fields)
	m.Fields = append(m.Fields, Field{Tag: tag, Value: value})
}

// SetInt is a convenience wrapper around Set for integer-valued tags.
func (m *Message) SetInt(tag int, value int) {
	m.Set(tag, strconv.Itoa(value))
}

// Get returns a field's value and whether it was present.
func (m *Message) Get(tag int) (string, bool) {
	i, ok := m.index[tag]
	if !ok {
		return "", false
	}
	return m.Fields[i].Value, true
}

// GetOr returns the field's value, or def if the tag is absent.
func (m *Message) GetOr(tag int, def string) string {
	if v, ok := m.Get(tag); ok {
		return v
	}
	return def
}

// GetInt parses a tag's value as a base-10 integer.
func (m *Message) GetInt(tag int) (int, bool, error) {
	v, ok := m.Get(tag)
	if !ok {
		return 0, false, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, true, err
	}
	return n, true, nil
}

// Has reports whether tag is present.
func (m *Message) Has(tag int) bool {
	_, ok := m.index[tag]
	return ok
}

// MsgType returns tag 35, or "" if absent.
func (m *Message) MsgType() string {
	return m.GetOr(35, "")
}

// rebuildIndex recomputes the tag index, used after Parse populates Fields
// directly.
func (m *Message) rebuildIndex() {
	m.index = make(map[int]int, len(m.Fields))
	for i, f := range m.Fields {
		if _, ok := m.index[f.Tag]; !ok {
			m.index[f.Tag] = i
		}
	}
}
