// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package internal

import "testing"

func TestReverse(t *testing.T) {
	var vectors = []struct {
		input  uint32
		output uint32
	}{
		{0x00000000, 0x00000000},
		{0x00000001, 0x80000000},
		{0x000000f0, 0x0f000000},
		{0x04c11db7, 0xedb88320},
		{0x12345678, 0x1e6a2c48},
		{0xffffffff, 0xffffffff},
	}

	for i, v := range vectors {
		if got := ReverseUint32(v.input); got != v.output {
			t.Errorf("test %d, ReverseUint32(0x%08x): got 0x%08x, want 0x%08x", i, v.input, got, v.output)
		}
		if got := ReverseUint32(v.output); got != v.input {
			t.Errorf("test %d, ReverseUint32(0x%08x): got 0x%08x, want 0x%08x", i, v.output, got, v.input)
		}
	}
	for i := 0; i < 256; i++ {
		if got := ReverseLUT[ReverseLUT[i]]; int(got) != i {
			t.Errorf("ReverseLUT is not an involution at %d: got %d", i, got)
		}
	}
}
