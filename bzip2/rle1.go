// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

// maxRunLen is the longest run that a single RLE1 sequence can describe:
// four literal copies plus a count byte of up to 251.
const maxRunLen = 255

// runLengthEncoding implements the first stage of the bzip2 compression
// stack. Runs of 4 to 255 equal bytes are replaced by four copies of the byte
// followed by a byte holding the number of additional repetitions.
//
// The encoded data is accumulated directly into the block buffer, which must
// have at least 5 bytes of room past limit. The CRC and the set of used
// symbols for the block are tracked as runs are stored.
type runLengthEncoding struct {
	buf   []byte // Block buffer; buf[:n] holds the encoded data
	n     int    // Number of encoded bytes
	limit int    // A run is only stored while n <= limit

	runChar byte
	runLen  int // Zero if there is no pending run

	crc   blockCRC
	inUse [256]bool
}

func (rle *runLengthEncoding) Init(buf []byte, limit int) {
	rle.buf, rle.limit = buf, limit
	rle.runLen = 0
	rle.Reset()
}

// Reset starts a new block. A pending run is kept.
func (rle *runLengthEncoding) Reset() {
	rle.n = 0
	rle.crc.Reset()
	rle.inUse = [256]bool{}
}

// Bytes returns the encoded block data.
func (rle *runLengthEncoding) Bytes() []byte { return rle.buf[:rle.n] }

// Len reports the number of encoded bytes in the block.
func (rle *runLengthEncoding) Len() int { return rle.n }

// Full reports whether the block can no longer accept a run.
func (rle *runLengthEncoding) Full() bool { return rle.n > rle.limit }

// WriteByte adds c to the current run, storing the run into the block when it
// ends or reaches maxRunLen. It reports false without consuming c if a run
// needs to be stored but the block is full; the caller must then close the
// block, call Reset, and retry.
func (rle *runLengthEncoding) WriteByte(c byte) bool {
	switch {
	case rle.runLen == 0:
		rle.runChar, rle.runLen = c, 1
	case rle.runChar == c && rle.runLen < maxRunLen-1:
		rle.runLen++
	case rle.Full():
		return false
	case rle.runChar == c:
		rle.runLen++
		rle.storeRun()
	default:
		rle.storeRun()
		rle.runChar, rle.runLen = c, 1
	}
	return true
}

// Flush stores the pending run into the block. It reports false if the block
// is full, in which case the run stays pending.
func (rle *runLengthEncoding) Flush() bool {
	if rle.runLen == 0 {
		return true
	}
	if rle.Full() {
		return false
	}
	rle.storeRun()
	return true
}

func (rle *runLengthEncoding) storeRun() {
	c, n := rle.runChar, rle.runLen
	rle.inUse[c] = true
	rle.crc.UpdateRun(c, n)
	switch n {
	case 1:
		rle.buf[rle.n] = c
		rle.n++
	case 2:
		rle.buf[rle.n+0] = c
		rle.buf[rle.n+1] = c
		rle.n += 2
	case 3:
		rle.buf[rle.n+0] = c
		rle.buf[rle.n+1] = c
		rle.buf[rle.n+2] = c
		rle.n += 3
	default:
		rle.buf[rle.n+0] = c
		rle.buf[rle.n+1] = c
		rle.buf[rle.n+2] = c
		rle.buf[rle.n+3] = c
		rle.buf[rle.n+4] = byte(n - 4)
		rle.inUse[n-4] = true
		rle.n += 5
	}
	rle.runLen = 0
}
