// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"io/ioutil"
	"runtime"
	"testing"

	"github.com/bzcodec/compress/internal/testutil"
)

func benchmarkEncode(b *testing.B, name string, level, n int) {
	b.StopTimer()
	b.SetBytes(int64(n))
	buf := testutil.MustGenerate(name, n)
	zw, err := NewWriter(ioutil.Discard, &WriterConfig{Level: level})
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}
	runtime.GC()
	b.ReportAllocs()
	b.StartTimer()
	for i := 0; i < b.N; i++ {
		zw.Reset(ioutil.Discard)
		if _, err := zw.Write(buf); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
		if err := zw.Close(); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}

func BenchmarkEncodeDigitsSpeed1e4(b *testing.B)    { benchmarkEncode(b, "digits", 1, 1e4) }
func BenchmarkEncodeDigitsSpeed1e5(b *testing.B)    { benchmarkEncode(b, "digits", 1, 1e5) }
func BenchmarkEncodeDigitsSpeed1e6(b *testing.B)    { benchmarkEncode(b, "digits", 1, 1e6) }
func BenchmarkEncodeDigitsDefault1e4(b *testing.B)  { benchmarkEncode(b, "digits", 6, 1e4) }
func BenchmarkEncodeDigitsDefault1e5(b *testing.B)  { benchmarkEncode(b, "digits", 6, 1e5) }
func BenchmarkEncodeDigitsDefault1e6(b *testing.B)  { benchmarkEncode(b, "digits", 6, 1e6) }
func BenchmarkEncodeDigitsCompress1e4(b *testing.B) { benchmarkEncode(b, "digits", 9, 1e4) }
func BenchmarkEncodeDigitsCompress1e5(b *testing.B) { benchmarkEncode(b, "digits", 9, 1e5) }
func BenchmarkEncodeDigitsCompress1e6(b *testing.B) { benchmarkEncode(b, "digits", 9, 1e6) }
func BenchmarkEncodeTextSpeed1e4(b *testing.B)      { benchmarkEncode(b, "text", 1, 1e4) }
func BenchmarkEncodeTextSpeed1e5(b *testing.B)      { benchmarkEncode(b, "text", 1, 1e5) }
func BenchmarkEncodeTextSpeed1e6(b *testing.B)      { benchmarkEncode(b, "text", 1, 1e6) }
func BenchmarkEncodeTextDefault1e4(b *testing.B)    { benchmarkEncode(b, "text", 6, 1e4) }
func BenchmarkEncodeTextDefault1e5(b *testing.B)    { benchmarkEncode(b, "text", 6, 1e5) }
func BenchmarkEncodeTextDefault1e6(b *testing.B)    { benchmarkEncode(b, "text", 6, 1e6) }
func BenchmarkEncodeTextCompress1e4(b *testing.B)   { benchmarkEncode(b, "text", 9, 1e4) }
func BenchmarkEncodeTextCompress1e5(b *testing.B)   { benchmarkEncode(b, "text", 9, 1e5) }
func BenchmarkEncodeTextCompress1e6(b *testing.B)   { benchmarkEncode(b, "text", 9, 1e6) }
