// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"io"

	"github.com/bzcodec/compress/internal/errors"
)

// bitWriter packs bits MSB-first. For performance reasons, it does not write
// bytes immediately to the underlying stream. Write errors are raised with
// errors.Panic.
type bitWriter struct {
	Offset int64 // Number of bytes written to the underlying io.Writer

	wr      io.Writer
	bufBits uint64 // Pending bits, right-aligned
	numBits uint   // Number of valid bits in bufBits; always < 8 between calls

	buf    [512]byte
	cntBuf int
}

func (bw *bitWriter) Init(w io.Writer) {
	bw.wr, bw.Offset = w, 0
	bw.bufBits, bw.numBits, bw.cntBuf = 0, 0, 0
}

// BitsWritten reports the total number of bits issued to WriteBits.
func (bw *bitWriter) BitsWritten() int64 {
	return 8*bw.Offset + 8*int64(bw.cntBuf) + int64(bw.numBits)
}

// WriteBits writes the lower nb bits of v, where nb is at most 32.
func (bw *bitWriter) WriteBits(v, nb uint) {
	bw.bufBits = bw.bufBits<<nb | uint64(v)&(1<<nb-1)
	bw.numBits += nb
	for bw.numBits >= 8 {
		if bw.cntBuf == len(bw.buf) {
			bw.flushBuf()
		}
		bw.numBits -= 8
		bw.buf[bw.cntBuf] = byte(bw.bufBits >> bw.numBits)
		bw.cntBuf++
	}
}

// WriteBitsBE64 writes the lower nb bits of v, where nb is at most 64.
func (bw *bitWriter) WriteBitsBE64(v uint64, nb uint) {
	if nb > 32 {
		bw.WriteBits(uint(v>>32), nb-32)
		nb = 32
	}
	bw.WriteBits(uint(v&0xffffffff), nb)
}

// WritePads writes zero bits until the stream is byte-aligned.
func (bw *bitWriter) WritePads() {
	if nb := -bw.numBits & 7; nb > 0 {
		bw.WriteBits(0, nb)
	}
}

// Flush writes all complete bytes to the underlying writer.
func (bw *bitWriter) Flush() {
	if bw.cntBuf > 0 {
		bw.flushBuf()
	}
}

func (bw *bitWriter) flushBuf() {
	cnt, err := bw.wr.Write(bw.buf[:bw.cntBuf])
	bw.Offset += int64(cnt)
	if err == nil && cnt < bw.cntBuf {
		err = io.ErrShortWrite
	}
	if err != nil {
		errors.Panic(err)
	}
	bw.cntBuf = 0
}
