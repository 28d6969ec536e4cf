// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bench compares this module's bzip2 codec against other
// implementations of the flate, bzip2, and xz formats with respect to encode
// speed, decode speed, and ratio.
//
// Codecs register themselves from files guarded by a no_<name>_lib build tag:
// "ds" is this module, "std" is the standard library, "kp" is
// klauspost/compress, and "uk" is ulikunitz/xz. Flate and xz serve as
// reference points for the bzip2 numbers.
//
// Inputs are named either by one of the generated corpora in testutil or by a
// path to a file, which is searched for in Paths.
package bench

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path"
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/bzcodec/compress/internal/testutil"
	strconv "github.com/dsnet/golib/unitconv"
)

// Formats that codecs may register under.
const (
	FormatFlate = iota
	FormatBZ2
	FormatXZ
)

const (
	TestEncodeRate = iota
	TestDecodeRate
	TestCompressRatio
)

// Encoder returns a compressor writing to w at the given level.
// Implementations without levels ignore the level.
type Encoder func(w io.Writer, level int) io.WriteCloser

// Decoder returns a decompressor reading from r.
type Decoder func(r io.Reader) io.ReadCloser

var (
	// Registered codecs, keyed by format and then codec name.
	Encoders map[int]map[string]Encoder
	Decoders map[int]map[string]Decoder

	// List of search paths for test files.
	Paths []string
)

// RegisterEncoder adds enc as the encoder named name for format.
func RegisterEncoder(format int, name string, enc Encoder) {
	if Encoders == nil {
		Encoders = make(map[int]map[string]Encoder)
	}
	if Encoders[format] == nil {
		Encoders[format] = make(map[string]Encoder)
	}
	Encoders[format][name] = enc
}

// RegisterDecoder adds dec as the decoder named name for format.
func RegisterDecoder(format int, name string, dec Decoder) {
	if Decoders == nil {
		Decoders = make(map[int]map[string]Decoder)
	}
	if Decoders[format] == nil {
		Decoders[format] = make(map[string]Decoder)
	}
	Decoders[format][name] = dec
}

// BenchmarkEncoder benchmarks a single encoder on the given input data using
// the selected compression level and reports the result.
func BenchmarkEncoder(input []byte, enc Encoder, lvl int) testing.BenchmarkResult {
	return testing.Benchmark(func(b *testing.B) {
		b.StopTimer()
		if enc == nil {
			b.Fatalf("unexpected error: nil Encoder")
		}
		runtime.GC()
		b.StartTimer()
		for i := 0; i < b.N; i++ {
			wr := enc(ioutil.Discard, lvl)
			_, err := io.Copy(wr, bytes.NewBuffer(input))
			if err := wr.Close(); err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			b.SetBytes(int64(len(input)))
		}
	})
}

// Result is one cell of a suite table.
type Result struct {
	R float64 // Rate (MB/s) or ratio (rawSize/compSize)
	D float64 // Delta ratio relative to primary benchmark
}

// BenchmarkEncoderSuite measures the encode rate of each of the named
// encoders registered for format over every file, level, and size.
// There is one row of results per input, named as "file:level:size",
// with one column per encoder.
func BenchmarkEncoderSuite(format int, encs, files []string, levels, sizes []int, tick func()) (results [][]Result, names []string) {
	return benchmarkSuite(encs, files, levels, sizes, tick,
		func(input []byte, enc string, lvl int) Result {
			return Result{R: rateOf(BenchmarkEncoder(input, Encoders[format][enc], lvl))}
		})
}

// rateOf returns the throughput of r in MB/s, or zero if nothing ran.
func rateOf(r testing.BenchmarkResult) float64 {
	if r.N == 0 {
		return 0
	}
	us := (float64(r.T.Nanoseconds()) / 1e3) / float64(r.N)
	return float64(r.Bytes) / us
}

// encode compresses input with enc at level lvl.
func encode(enc Encoder, input []byte, lvl int) ([]byte, error) {
	buf := new(bytes.Buffer)
	wr := enc(buf, lvl)
	if _, err := io.Copy(wr, bytes.NewReader(input)); err != nil {
		return nil, err
	}
	if err := wr.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BenchmarkDecoder benchmarks a single decoder on the given pre-compressed
// input data and reports the result.
func BenchmarkDecoder(input []byte, dec Decoder) testing.BenchmarkResult {
	return testing.Benchmark(func(b *testing.B) {
		b.StopTimer()
		if dec == nil {
			b.Fatalf("unexpected error: nil Decoder")
		}
		runtime.GC()
		b.StartTimer()
		for i := 0; i < b.N; i++ {
			rd := dec(bufio.NewReader(bytes.NewBuffer(input)))
			cnt, err := io.Copy(ioutil.Discard, rd)
			if err := rd.Close(); err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			if err != nil {
				b.Fatalf("unexpected error: %v", err)
			}
			b.SetBytes(int64(cnt))
		}
	})
}

// BenchmarkDecoderSuite measures the decode rate of each of the named
// decoders registered for format. Every input is first compressed with ref
// so that all decoders see the same stream. Results are laid out as for
// BenchmarkEncoderSuite, with one column per decoder.
func BenchmarkDecoderSuite(format int, decs, files []string, levels, sizes []int, ref Encoder, tick func()) (results [][]Result, names []string) {
	return benchmarkSuite(decs, files, levels, sizes, tick,
		func(input []byte, dec string, lvl int) Result {
			output, err := encode(ref, input, lvl)
			if err != nil {
				return Result{}
			}
			return Result{R: rateOf(BenchmarkDecoder(output, Decoders[format][dec]))}
		})
}

// BenchmarkRatioSuite measures the compression ratio of each of the named
// encoders registered for format. Results are laid out as for
// BenchmarkEncoderSuite.
func BenchmarkRatioSuite(format int, encs, files []string, levels, sizes []int, tick func()) (results [][]Result, names []string) {
	return benchmarkSuite(encs, files, levels, sizes, tick,
		func(input []byte, enc string, lvl int) Result {
			output, err := encode(Encoders[format][enc], input, lvl)
			if err != nil || len(output) == 0 {
				return Result{}
			}
			return Result{R: float64(len(input)) / float64(len(output))}
		})
}

type benchFunc func(input []byte, codec string, level int) Result

func benchmarkSuite(codecs, files []string, levels, sizes []int, tick func(), run benchFunc) ([][]Result, []string) {
	// Allocate buffers for the result.
	d0 := len(files) * len(levels) * len(sizes)
	d1 := len(codecs)
	results := make([][]Result, d0)
	for i := range results {
		results[i] = make([]Result, d1)
	}
	names := make([]string, d0)

	// Run the benchmark for every codec, file, level, and size.
	var i int
	for _, f := range files {
		for _, l := range levels {
			for _, n := range sizes {
				b, err := loadInput(f, n)
				name := getName(f, l, len(b))
				for j, c := range codecs {
					if tick != nil {
						tick()
					}
					names[i] = name
					if err == nil {
						results[i][j] = run(b, c, l)
					}
					if results[i][0].R != 0 {
						results[i][j].D = results[i][j].R / results[i][0].R
					}
				}
				i++
			}
		}
	}
	return results, names
}

// loadInput returns n bytes of the named corpus or file.
func loadInput(name string, n int) ([]byte, error) {
	for _, c := range testutil.Corpora() {
		if c == name {
			return testutil.Generate(name, n)
		}
	}
	return testutil.LoadFile(getPath(name), n)
}

func getPath(file string) string {
	if path.IsAbs(file) {
		return file
	}
	for _, p := range Paths {
		p = path.Join(p, file)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return file
}

func getName(f string, l, n int) string {
	var sn string
	switch n {
	case 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10, 1e11, 1e12:
		s := fmt.Sprintf("%e", float64(n))
		re := regexp.MustCompile("\\.0*e\\+0*")
		sn = re.ReplaceAllString(s, "e")
	default:
		s := strconv.FormatPrefix(float64(n), strconv.Base1024, 2)
		sn = strings.Replace(s, ".00", "", -1)
	}
	return fmt.Sprintf("%s:%d:%s", path.Base(f), l, sn)
}
