// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import "github.com/bzcodec/compress/internal/errors"

// blockState is the position of the blockReader within an RLE1 run.
type blockState int

const (
	partA     blockState = iota // At the first byte of a run
	partB                       // One equal byte already emitted
	partC                       // Two equal bytes already emitted
	blockDone                   // Every byte of the block was consumed
)

// blockReader inverts the BWT of a single block and expands the RLE1 runs
// as bytes are pulled from it. The block is walked through a successor
// chain built from the cumulative byte counts, so the original data never
// exists in full.
type blockReader struct {
	// Each entry holds the last column byte in the low 8 bits and the index
	// of the successor entry in the upper 24 bits.
	tt   []uint32
	tPos uint32
	n    int // Number of bytes in the block
	used int // Number of entries pulled from the chain

	state  blockState
	k0     byte // Byte pulled from the chain but not yet emitted
	outCh  byte
	outLen int // Copies of outCh left to emit

	randomized bool
	rnd        randomizer
	crc        blockCRC
}

// Init prepares the reader for the block whose BWT is vals and whose
// original rotation is at ptr, which must be a valid index into vals.
func (br *blockReader) Init(vals []byte, ptr int, randomized bool) {
	var cftab [256]uint32
	for _, c := range vals {
		cftab[c]++
	}
	var sum uint32
	for i, cnt := range cftab {
		cftab[i] = sum
		sum += cnt
	}

	if cap(br.tt) < len(vals) {
		br.tt = make([]uint32, len(vals))
	}
	br.tt = br.tt[:len(vals)]
	for i, c := range vals {
		br.tt[i] = uint32(c)
	}
	for i, c := range vals {
		br.tt[cftab[c]] |= uint32(i) << 8
		cftab[c]++
	}

	br.tPos = br.tt[ptr] >> 8
	br.n, br.used = len(vals), 0
	br.randomized = randomized
	br.rnd.Reset()
	br.crc.Reset()
	br.outLen = 0
	br.state = partA
	br.k0 = br.next()
}

// Done reports whether every byte of the block was read.
func (br *blockReader) Done() bool {
	return br.state == blockDone && br.outLen == 0
}

// CRC returns the checksum of the bytes read so far.
func (br *blockReader) CRC() uint32 { return br.crc.Value() }

// Read fills buf with block data and returns the number of bytes written.
// It returns less than len(buf) only when the block is done.
func (br *blockReader) Read(buf []byte) int {
	var cnt int
	for cnt < len(buf) {
		if br.outLen > 0 {
			m := len(buf) - cnt
			if m > br.outLen {
				m = br.outLen
			}
			for i := range buf[cnt : cnt+m] {
				buf[cnt+i] = br.outCh
			}
			br.crc.Update(buf[cnt : cnt+m])
			br.outLen -= m
			cnt += m
			continue
		}
		if br.state == blockDone {
			break
		}
		br.advance()
	}
	return cnt
}

// next pulls the next byte from the successor chain.
func (br *blockReader) next() byte {
	e := br.tt[br.tPos]
	br.tPos = e >> 8
	br.used++
	c := byte(e)
	if br.randomized {
		c ^= br.rnd.Next()
	}
	return c
}

// advance emits the pending byte k0 and moves to the next state.
// The chain is read once past the end of the block, so the block is done
// when used reaches n+1.
func (br *blockReader) advance() {
	if br.used == br.n+1 {
		br.state = blockDone
		return
	}

	br.outCh, br.outLen = br.k0, 1
	k1 := br.next()
	if br.used == br.n+1 || k1 != br.k0 {
		br.k0 = k1
		br.state = partA
		return
	}

	switch br.state {
	case partA:
		br.state = partB
	case partB:
		br.state = partC
	case partC:
		// Four equal bytes are always followed by a count of extra copies.
		cnt := br.next()
		if br.used == br.n+1 {
			panicf(errors.Corrupted, "missing run length")
		}
		br.outLen += 1 + int(cnt)
		br.k0 = br.next()
		br.state = partA
	}
}
