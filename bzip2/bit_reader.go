// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"bufio"
	"io"

	"github.com/bzcodec/compress"
	"github.com/bzcodec/compress/internal/errors"
	"github.com/bzcodec/compress/internal/prefix"
)

// bitReader reads bits MSB-first, one byte at a time, so that it never reads
// past the end of the stream. Read errors are raised with errors.Panic, and a
// premature io.EOF is reported as io.ErrUnexpectedEOF.
type bitReader struct {
	Offset int64 // Number of bytes read from the underlying io.Reader

	rd      compress.ByteReader
	bufBits uint64 // Unread bits occupy the low numBits bits
	numBits uint
}

var _ prefix.BitReader = (*bitReader)(nil)

// Init initializes the bitReader to read from r. If r does not implement
// compress.ByteReader, it is wrapped with a bufio.Reader.
func (br *bitReader) Init(r io.Reader) {
	*br = bitReader{}
	if rr, ok := r.(compress.ByteReader); ok {
		br.rd = rr
	} else {
		br.rd = bufio.NewReader(r)
	}
}

// ReadBits reads nb bits, where nb is at most 32.
func (br *bitReader) ReadBits(nb uint) uint {
	for br.numBits < nb {
		c, err := br.rd.ReadByte()
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			errors.Panic(err)
		}
		br.Offset++
		br.bufBits = br.bufBits<<8 | uint64(c)
		br.numBits += 8
	}
	br.numBits -= nb
	return uint(br.bufBits>>br.numBits) & (1<<nb - 1)
}

// ReadBitsBE64 reads nb bits, where nb is at most 64.
func (br *bitReader) ReadBitsBE64(nb uint) (v uint64) {
	if nb > 32 {
		v = uint64(br.ReadBits(nb-32)) << 32
		nb = 32
	}
	return v | uint64(br.ReadBits(nb))
}

// ReadBool reads a single bit.
func (br *bitReader) ReadBool() bool {
	return br.ReadBits(1) == 1
}

// ReadPads discards the bits up to the next byte boundary and returns them.
func (br *bitReader) ReadPads() uint {
	return br.ReadBits(br.numBits & 7)
}
