// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"encoding/hex"
	"testing"
)

func TestDecodeBitGen(t *testing.T) {
	var vectors = []struct {
		input  string
		output string
		ok     bool
	}{{
		input:  "",
		output: "",
		ok:     true,
	}, {
		input:  "1",
		output: "80",
		ok:     true,
	}, {
		input:  "1 0 1 1*5 # trailing comment",
		output: "bf",
		ok:     true,
	}, {
		input:  "D3:5 H5:1f",
		output: "bf",
		ok:     true,
	}, {
		input:  "X:425a6831 H48:177245385090 H32:00000000",
		output: "425a683117724538509000000000",
		ok:     true,
	}, {
		input:  "0*4 H12:abc",
		output: "0abc",
		ok:     true,
	}, {
		input:  "X:ab*3",
		output: "ababab",
		ok:     true,
	}, {
		input: "1 X:ff",
		ok:    false,
	}, {
		input: "D2:4",
		ok:    false,
	}, {
		input: "Z:00",
		ok:    false,
	}}

	for i, v := range vectors {
		got, err := DecodeBitGen(v.input)
		if ok := err == nil; ok != v.ok {
			t.Errorf("test %d, error mismatch: got %v, want ok=%v", i, err, v.ok)
			continue
		}
		if s := hex.EncodeToString(got); v.ok && s != v.output {
			t.Errorf("test %d, output mismatch:\ngot  %s\nwant %s", i, s, v.output)
		}
	}
}
