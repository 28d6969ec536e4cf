// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package prefix

import "github.com/bzcodec/compress/internal/errors"

// BitReader is the source of bits for Decoder.Decode.
// Bits are consumed MSB-first; ReadBits(n) returns the next n bits.
type BitReader interface {
	ReadBits(nb uint) uint
}

// Decoder decodes canonical prefix codes one bit at a time using the
// limit/base/perm representation: for each code length n, limit[n] is the
// largest code value of that length and base[n] maps code values of that
// length to positions in perm, which lists symbols in canonical order.
type Decoder struct {
	MinBits uint // Length of the shortest code
	MaxBits uint // Length of the longest code

	limit [MaxBits + 2]int32
	base  [MaxBits + 2]int32
	perm  []uint32
}

// Init initializes Decoder according to the code lengths in codes, which
// must already satisfy 1 <= Len <= MaxBits. The Val fields are ignored since
// canonical values are implied by the lengths and the order of codes.
func (pd *Decoder) Init(codes PrefixCodes) error {
	*pd = Decoder{perm: pd.perm[:0]}
	if len(codes) == 0 {
		return nil
	}

	pd.MinBits, pd.MaxBits = MaxBits, 0
	for _, c := range codes {
		if c.Len == 0 || c.Len > MaxBits {
			return errorf(errors.Corrupted, "invalid code length: %d", c.Len)
		}
		if uint(c.Len) < pd.MinBits {
			pd.MinBits = uint(c.Len)
		}
		if uint(c.Len) > pd.MaxBits {
			pd.MaxBits = uint(c.Len)
		}
	}

	for n := pd.MinBits; n <= pd.MaxBits; n++ {
		for _, c := range codes {
			if uint(c.Len) == n {
				pd.perm = append(pd.perm, c.Sym)
			}
		}
	}

	for _, c := range codes {
		pd.base[c.Len+1]++
	}
	for i := 1; i < len(pd.base); i++ {
		pd.base[i] += pd.base[i-1]
	}

	var vec int32
	for n := pd.MinBits; n <= pd.MaxBits; n++ {
		vec += pd.base[n+1] - pd.base[n]
		pd.limit[n] = vec - 1
		vec <<= 1
	}
	for n := pd.MinBits + 1; n <= pd.MaxBits; n++ {
		pd.base[n] = ((pd.limit[n-1] + 1) << 1) - pd.base[n]
	}
	return nil
}

// Decode reads the next symbol from br. It reports false if the bits read do
// not form a valid code.
func (pd *Decoder) Decode(br BitReader) (sym uint32, ok bool) {
	if len(pd.perm) == 0 {
		return 0, false
	}
	n := pd.MinBits
	code := int32(br.ReadBits(n))
	for code > pd.limit[n] {
		if n++; n > pd.MaxBits {
			return 0, false
		}
		code = code<<1 | int32(br.ReadBits(1))
	}
	idx := code - pd.base[n]
	if idx < 0 || int(idx) >= len(pd.perm) {
		return 0, false
	}
	return pd.perm[idx], true
}
