// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import "github.com/bzcodec/compress/internal/errors"

const (
	symRunA = 0
	symRunB = 1
)

// moveToFront implements both the MTF and RLE2 stages of bzip2 at the same
// time. Every run of zero ranks is replaced by its length written in
// bijective base-2 using the RUNA and RUNB symbols, and every other rank r is
// emitted as the symbol r+1. The last symbol of the alphabet marks the end of
// the block.
//
// For example, with the dictionary {0, 1, 2, 3, 4, 5}, the MTF ranks:
//
//	[]uint8{0, 0, 0, 1, 5, 3}
//
// Are output as the symbols:
//
//	[]uint16{RUNA, RUNA, 2, 6, 4, EOB}
type moveToFront struct {
	dictBuf [256]uint8
	dictLen int
}

// Init initializes the moveToFront codec. The dict must contain all of the
// symbols in the alphabet used in future operations. A copy of the input dict
// will be made so that it will not be mutated.
func (m *moveToFront) Init(dict []uint8) {
	if len(dict) > len(m.dictBuf) {
		panic("alphabet too large")
	}
	copy(m.dictBuf[:], dict)
	m.dictLen = len(dict)
}

// EOB returns the end-of-block symbol, which is also the largest symbol.
func (m *moveToFront) EOB() uint16 { return uint16(m.dictLen + 1) }

// Encode appends the symbols for vals to syms, terminated by EOB.
func (m *moveToFront) Encode(syms []uint16, vals []byte) []uint16 {
	dict := m.dictBuf[:m.dictLen]

	var run runCode
	for _, val := range vals {
		var idx int // Reverse lookup idx in dict
		for di, dv := range dict {
			if dv == val {
				idx = di
				break
			}
		}
		if idx == 0 {
			run++
			continue
		}
		if run > 0 {
			syms = appendRun(syms, run)
			run = 0
		}
		copy(dict[1:], dict[:idx])
		dict[0] = val
		syms = append(syms, uint16(idx+1))
	}
	if run > 0 {
		syms = appendRun(syms, run)
	}
	return append(syms, m.EOB())
}

func appendRun(syms []uint16, run runCode) []uint16 {
	x := run.Encode()
	n := int(x & 0x1f)
	for x >>= 5; n > 0; n-- {
		syms = append(syms, uint16(x&1))
		x >>= 1
	}
	return syms
}

// Decode appends the bytes described by syms to vals. It stops at the first
// EOB symbol. If more than limit bytes would be appended in total, it panics
// with an overrun error.
func (m *moveToFront) Decode(vals []byte, syms []uint16, limit int) []byte {
	dict := m.dictBuf[:m.dictLen]
	eob := m.EOB()

	run, pwr := 0, 1
	for _, sym := range syms {
		if sym <= symRunB {
			run += int(sym+1) * pwr
			pwr <<= 1
			if len(vals)+run > limit {
				panicf(errors.Overrun, "zero run exceeds block size")
			}
			continue
		}
		if run > 0 {
			vals = appendRepeat(vals, dict[0], run)
			run, pwr = 0, 1
		}
		if sym == eob {
			return vals
		}
		if len(vals) >= limit {
			panicf(errors.Overrun, "block exceeds block size")
		}

		// Normal move-to-front transform.
		idx := int(sym - 1)
		val := dict[idx] // Forward lookup val in dict
		copy(dict[1:], dict[:idx])
		dict[0] = val
		vals = append(vals, val)
	}
	return appendRepeat(vals, dict[0], run)
}

func appendRepeat(vals []byte, c byte, n int) []byte {
	for i := 0; i < n; i++ {
		vals = append(vals, c)
	}
	return vals
}

// For the RLE encoding that is applied after MTF, a bijective base-2 numeration
// is used. This is a variable length code, so the length of the input effects
// the value of the output.
//
// To save space, the RLE encoding is stored in a single uint32, where the lower
// 5-bits are used for the bit-length, the upper 27-bits are for the RLE code
// itself. RUNA is represented by a 0; RUNB is represented by a 1. The bits
// are packed in LE order; that is, the least significant bit is in the LSB
// position of the integer. This encoding has a maximum size of ~256MiB.
type runCode uint32

func (v runCode) Encode() (x uint32) {
	var n int
	if v > 0 {
		for rep := v - 1; ; rep = (rep - 2) / 2 {
			if x >>= 1; rep&1 > 0 {
				x |= 0x80000000
			}
			n++
			if rep < 2 {
				break
			}
		}
		if n > 27 {
			return ^uint32(0) // Invalid value to cause problems later
		}
	}
	return (x >> uint(27-n)) | uint32(n)
}

func (v runCode) Decode() (x uint32) {
	repPwr := uint32(1)
	n := int(v & 0x1f)
	v >>= 5
	for i := 0; i < n; i++ {
		x += repPwr << (v & 1)
		repPwr <<= 1
		v >>= 1
	}
	if n > 27 {
		return ^uint32(0) // Invalid value to cause problems later
	}
	return x
}
