// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"bytes"
	"testing"

	"github.com/bzcodec/compress/internal/errors"
	"github.com/bzcodec/compress/internal/prefix"
	"github.com/bzcodec/compress/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

// randomTrees fills pe with numTrees random length-limited tables over an
// alphabet of numSyms and numSels random selectors.
func randomTrees(r *testutil.Rand, pe *prefixEncoder, numSyms, numTrees, numSels int) {
	for k := 0; k < numTrees; k++ {
		codes := pe.codesBuf[k][:numSyms]
		for i := range codes {
			codes[i] = prefix.PrefixCode{Sym: uint32(i), Cnt: uint32(r.Intn(1 << uint(r.Intn(20))))}
		}
		if err := prefix.GenerateLengths(codes, maxPrefixBits); err != nil {
			panic(err)
		}
		if err := prefix.GeneratePrefixes(codes); err != nil {
			panic(err)
		}
		pe.codes[k] = codes
	}
	pe.sels = pe.sels[:0]
	for i := 0; i < numSels; i++ {
		pe.sels = append(pe.sels, uint8(r.Intn(numTrees)))
	}
}

func TestPrefixTrees(t *testing.T) {
	var vectors = []struct {
		seed     int
		numSyms  int
		numTrees int
		numSels  int
	}{
		{seed: 0, numSyms: 3, numTrees: 2, numSels: 1},
		{seed: 1, numSyms: 4, numTrees: 2, numSels: 7},
		{seed: 2, numSyms: 20, numTrees: 3, numSels: 12},
		{seed: 3, numSyms: 100, numTrees: 4, numSels: 50},
		{seed: 4, numSyms: 258, numTrees: 5, numSels: 200},
		{seed: 5, numSyms: 258, numTrees: 6, numSels: 1000},
		{seed: 6, numSyms: 258, numTrees: 6, numSels: maxNumSelectors},
	}

	for i, v := range vectors {
		r := testutil.NewRand(v.seed)
		var pe prefixEncoder
		randomTrees(r, &pe, v.numSyms, v.numTrees, v.numSels)

		// Write the tables followed by every symbol coded by every table.
		var buf bytes.Buffer
		var bw bitWriter
		bw.Init(&buf)
		pe.writeTrees(&bw, v.numTrees)
		for _, codes := range pe.codes[:v.numTrees] {
			for _, c := range codes {
				bw.WriteBits(uint(c.Val), uint(c.Len))
			}
		}
		bw.WritePads()
		bw.Flush()

		var pd prefixDecoder
		var numTrees, numSels int
		err := func() (err error) {
			defer errors.Recover(&err)
			var br bitReader
			br.Init(bytes.NewReader(buf.Bytes()))
			numTrees, numSels = pd.ReadTrees(&br, v.numSyms)
			for k := 0; k < numTrees; k++ {
				for want := 0; want < v.numSyms; want++ {
					sym, ok := pd.decs[k].Decode(&br)
					if !ok || int(sym) != want {
						panicf(errors.Corrupted, "table %d: decoded %d, want %d", k, sym, want)
					}
				}
			}
			return nil
		}()
		if err != nil {
			t.Errorf("test %d, unexpected error: %v", i, err)
			continue
		}

		if numTrees != v.numTrees || numSels != v.numSels {
			t.Errorf("test %d, counts mismatch: got (%d, %d), want (%d, %d)", i, numTrees, numSels, v.numTrees, v.numSels)
		}
		if diff := cmp.Diff(pe.sels, pd.sels); diff != "" {
			t.Errorf("test %d, selectors mismatch (-want +got):\n%s", i, diff)
		}
		for k := 0; k < v.numTrees; k++ {
			var want, got []uint32
			for _, c := range pe.codes[k] {
				want = append(want, c.Len)
			}
			for _, c := range pd.codes[k][:v.numSyms] {
				got = append(got, c.Len)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("test %d, table %d lengths mismatch (-want +got):\n%s", i, k, diff)
			}
		}
	}
}

func TestPrefixTreesInvalid(t *testing.T) {
	type bits struct{ v, n uint }
	var vectors = []struct {
		desc  string
		input []bits
	}{{
		desc:  "too few tables",
		input: []bits{{1, 3}, {1, 15}},
	}, {
		desc:  "too many tables",
		input: []bits{{7, 3}, {1, 15}},
	}, {
		desc:  "no selectors",
		input: []bits{{2, 3}, {0, 15}},
	}, {
		desc:  "selector past last table",
		input: []bits{{2, 3}, {1, 15}, {3, 2}},
	}, {
		desc:  "zero length",
		input: []bits{{2, 3}, {1, 15}, {0, 1}, {0, 5}},
	}, {
		desc:  "length too long",
		input: []bits{{2, 3}, {1, 15}, {0, 1}, {20, 5}, {2, 2}, {0, 1}},
	}}

	for _, v := range vectors {
		var buf bytes.Buffer
		var bw bitWriter
		bw.Init(&buf)
		for _, b := range v.input {
			bw.WriteBits(b.v, b.n)
		}
		bw.WriteBits(0, 32)
		bw.WritePads()
		bw.Flush()

		err := func() (err error) {
			defer errors.Recover(&err)
			var br bitReader
			br.Init(bytes.NewReader(buf.Bytes()))
			var pd prefixDecoder
			pd.ReadTrees(&br, 3)
			return nil
		}()
		if !errors.IsCorrupted(err) {
			t.Errorf("%s: mismatching error: got %v", v.desc, err)
		}
	}
}

func TestSymbolMap(t *testing.T) {
	r := testutil.NewRand(0)
	var inputs [][256]bool
	var all, low, high, one [256]bool
	for i := range all {
		all[i] = true
	}
	low[0], high[255], one[0x42] = true, true, true
	inputs = append(inputs, all, low, high, one)
	for i := 0; i < 20; i++ {
		var inUse [256]bool
		n := 1 + r.Intn(256)
		for _, c := range r.Perm(256)[:n] {
			inUse[c] = true
		}
		inputs = append(inputs, inUse)
	}

	for i, inUse := range inputs {
		var want []uint8
		for c, ok := range inUse {
			if ok {
				want = append(want, uint8(c))
			}
		}

		var buf bytes.Buffer
		var bw bitWriter
		bw.Init(&buf)
		writeSymbolMap(&bw, &inUse)
		bw.WritePads()
		bw.Flush()

		var got []uint8
		err := func() (err error) {
			defer errors.Recover(&err)
			var br bitReader
			br.Init(bytes.NewReader(buf.Bytes()))
			got = readSymbolMap(&br, nil)
			return nil
		}()
		if err != nil {
			t.Errorf("test %d, unexpected error: %v", i, err)
			continue
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("test %d, symbols mismatch (-want +got):\n%s", i, diff)
		}
	}

	// A map with no symbols in use is corrupt.
	err := func() (err error) {
		defer errors.Recover(&err)
		var br bitReader
		br.Init(bytes.NewReader([]byte{0, 0}))
		readSymbolMap(&br, nil)
		return nil
	}()
	if !errors.IsCorrupted(err) {
		t.Errorf("empty symbol map: mismatching error: got %v", err)
	}
}
