// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"testing"

	"github.com/bzcodec/compress/internal/errors"
	"github.com/bzcodec/compress/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

func getDict(buf []byte) []uint8 {
	var dictMap [256]bool
	for _, b := range buf {
		dictMap[b] = true
	}
	var dict []uint8
	for j, b := range dictMap {
		if b {
			dict = append(dict, uint8(j))
		}
	}
	return dict
}

func TestMoveToFront(t *testing.T) {
	const a, b = symRunA, symRunB
	var vectors = []struct {
		input  []byte
		output []uint16
	}{{
		input:  []byte{3},
		output: []uint16{a, 2},
	}, {
		input:  []byte{2, 2, 2, 2, 2, 2, 2, 2, 2, 2},
		output: []uint16{b, b, a, 2},
	}, {
		input:  []byte{9, 8, 7, 6, 5, 4, 3, 2, 1},
		output: []uint16{9, 9, 9, 9, 9, 9, 9, 9, 9, 10},
	}, {
		input:  []byte{42, 47, 42, 47, 42, 47, 42, 47, 42, 47, 42, 47},
		output: []uint16{a, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 3},
	}, {
		input:  []byte{0, 5, 2, 3, 4, 4, 3, 1, 2, 3, 3, 3, 3, 3, 3, 4, 4, 4, 5, 2, 3, 3},
		output: []uint16{a, 6, 4, 5, 6, a, 2, 6, 4, 3, a, b, 4, b, 5, 4, 4, a, 7},
	}}

	var mtf moveToFront
	for i, v := range vectors {
		dict := getDict(v.input)
		mtf.Init(dict)
		output := mtf.Encode(nil, v.input)
		mtf.Init(dict)
		input := mtf.Decode(nil, output, len(v.input))

		if diff := cmp.Diff(v.output, output); diff != "" {
			t.Errorf("test %d, output mismatch (-want +got):\n%s", i, diff)
		}
		if diff := cmp.Diff(v.input, input); diff != "" {
			t.Errorf("test %d, input mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestMoveToFrontRoundTrip(t *testing.T) {
	for _, name := range testutil.Corpora() {
		input := testutil.MustGenerate(name, 1<<14)
		dict := getDict(input)

		var mtf moveToFront
		mtf.Init(dict)
		syms := mtf.Encode(nil, input)
		if got, want := syms[len(syms)-1], uint16(len(dict)+1); got != want {
			t.Errorf("%s, last symbol: got %d, want EOB %d", name, got, want)
		}
		mtf.Init(dict)
		output := mtf.Decode(nil, syms, len(input))
		if !cmp.Equal(output, input) {
			t.Errorf("%s, round trip mismatch", name)
		}
	}
}

func TestMoveToFrontOverrun(t *testing.T) {
	var vectors = []struct {
		syms  []uint16
		limit int
	}{
		{syms: []uint16{symRunB, symRunB, 2}, limit: 5},
		{syms: []uint16{2, 2, 2, 2, 3}, limit: 3},
		{syms: []uint16{symRunA, 2, symRunA, 3}, limit: 2},
	}

	for i, v := range vectors {
		err := func() (err error) {
			defer errors.Recover(&err)
			var mtf moveToFront
			mtf.Init([]uint8{'a', 'b'})
			mtf.Decode(nil, v.syms, v.limit)
			return nil
		}()
		if !errors.IsOverrun(err) {
			t.Errorf("test %d, error mismatch: got %v, want overrun", i, err)
		}
	}
}

func TestRunCode(t *testing.T) {
	var vectors = []struct {
		input  uint32
		output uint32
	}{
		{input: 0x00000000, output: 0x00000000},
		{input: 0x00000001, output: 0x00000001},
		{input: 0x00000002, output: 0x00000021},
		{input: 0x00000003, output: 0x00000002},
		{input: 0x00000004, output: 0x00000022},
		{input: 0x00000005, output: 0x00000042},
		{input: 0x00000006, output: 0x00000062},
		{input: 0x00000007, output: 0x00000003},
		{input: 0x00000008, output: 0x00000023},
		{input: 0x00000009, output: 0x00000043},
		{input: 0x0000000a, output: 0x00000063},
		{input: 0x0000000b, output: 0x00000083},
		{input: 0x0000000c, output: 0x000000a3},
		{input: 0x0000000d, output: 0x000000c3},
		{input: 0x0000000e, output: 0x000000e3},
		{input: 0x0000000f, output: 0x00000004},
		{input: 0x00000010, output: 0x00000024},
		{input: 0x00000011, output: 0x00000044},
		{input: 0x00000012, output: 0x00000064},
		{input: 0x00000013, output: 0x00000084},
		{input: 0x00000021, output: 0x00000045},
		{input: 0x0000015a, output: 0x00000b68},
		{input: 0x00001a8b, output: 0x0001518c},
		{input: 0x000cab82, output: 0x00957073},
		{input: 0x0ffffffe, output: 0xfffffffb},
		{input: 0x0fffffff, output: 0xffffffff},
		{input: 0xffffffff, output: 0xffffffff},
	}

	for i, v := range vectors {
		output := runCode(v.input).Encode()
		input := runCode(v.output).Decode()

		if input != v.input && output != 0xffffffff {
			t.Errorf("test %d, input mismatch: got 0x%08x, want 0x%08x", i, input, v.input)
		}
		if output != v.output && input != 0xffffffff {
			t.Errorf("test %d, output mismatch: got 0x%08x, want 0x%08x", i, output, v.output)
		}
	}
}
