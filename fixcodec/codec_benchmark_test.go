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

// Benchmarks for the FIX framing hot path: every inbound byte on every
// session funnels through Decoder.Next, and every outbound report through
// Serialize. Run with: go test -bench=. -benchmem ./fixcodec/
package fixcodec

import "testing"

// BenchmarkDecoderNext measures full-frame decode throughput: feed one
// complete serialized ExecutionReport-sized message, extract it.
func BenchmarkDecoderNext(b *testing.B) {
	raw := Serialize("FIX.4.2", sampleBody())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec := NewDecoder("FIX.4.2")
		dec.Feed(raw)
		msg, err := dec.Next()
		if err != nil || msg == nil {
			b.Fatalf("decode failed: msg=%v err=%v", msg, err)
		}
	}
}

// BenchmarkDecoderNext_FragmentedStream measures the incremental path: the
// same frame arriving in small TCP-read-sized chunks.
func BenchmarkDecoderNext_FragmentedStream(b *testing.B) {
	raw := Serialize("FIX.4.2", sampleBody())
	const chunk = 16
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec := NewDecoder("FIX.4.2")
		for off := 0; off < len(raw); off += chunk {
			end := off + chunk
			if end > len(raw) {
				end = len(raw)
			}
			dec.Feed(raw[off:end])
		}
		msg, err := dec.Next()
		if err != nil || msg == nil {
			b.Fatalf("decode failed: msg=%v err=%v", msg, err)
		}
	}
}

// BenchmarkSerialize measures outbound frame assembly.
func BenchmarkSerialize(b *testing.B) {
	body := sampleBody()
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if raw := Serialize("FIX.4.2", body); len(raw) == 0 {
			b.Fatal("empty frame")
		}
	}
}
