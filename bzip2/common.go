// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package bzip2 implements the BZip2 compressed data format.
//
// A stream is a 4-byte header followed by independently coded blocks, each
// holding up to 900k bytes of input. Every block runs through an initial
// run-length encoding, the Burrows-Wheeler transform, a move-to-front
// transform with zero-run coding, and finally up to six Huffman tables that
// are switched every 50 symbols. Each block carries a CRC of its original
// data, and the stream trailer carries a CRC combined over all blocks.
//
// Blocks that the sorter cannot handle within its work budget are randomized
// before being transformed, a legacy feature that both the Writer and the
// Reader support.
package bzip2

import (
	"fmt"
	"hash/crc32"
	"io/ioutil"

	"github.com/bzcodec/compress/internal"
	"github.com/bzcodec/compress/internal/errors"
	"github.com/sirupsen/logrus"
)

// There does not exist a formal specification of the BZip2 format. As such,
// much of this work is derived by either reverse engineering the original C
// source code or using secondary sources.
//
// Fuzz testing checks that outputs from this package are properly decoded by
// the standard library decoder, and that both decoders agree about which
// inputs are valid.
//
// Compression stack:
//
//	Run-length encoding 1     (RLE1)
//	Burrows-Wheeler transform (BWT)
//	Move-to-front transform   (MTF)
//	Run-length encoding 2     (RLE2)
//	Prefix encoding           (PE)
//
// References:
//
//	http://bzip.org/
//	https://en.wikipedia.org/wiki/Bzip2
//	https://code.google.com/p/jbzip2/

const (
	BestSpeed          = 1
	BestCompression    = 9
	DefaultCompression = 0
)

const (
	hdrMagic = 0x425a         // Hex of "BZ"
	blkMagic = 0x314159265359 // BCD of PI
	endMagic = 0x177245385090 // BCD of sqrt(PI)

	blockSize = 100000

	// numOvershootBytes is the padding past the end of a block that the
	// sorter uses so that comparisons can run off the end without wrapping.
	numOvershootBytes = 20

	defaultWorkFactor = 30
	maxWorkFactor     = 250
)

func errorf(c int, f string, a ...interface{}) error {
	return errors.Error{Code: c, Pkg: "bzip2", Msg: fmt.Sprintf(f, a...)}
}

func panicf(c int, f string, a ...interface{}) {
	errors.Panic(errorf(c, f, a...))
}

// discardLogger is used when the caller does not provide a logger.
var discardLogger = func() *logrus.Logger {
	lg := logrus.New()
	lg.Out = ioutil.Discard
	return lg
}()

func loggerOrDiscard(lg logrus.FieldLogger) logrus.FieldLogger {
	if lg == nil {
		return discardLogger
	}
	return lg
}

// crcTable is the MSB-first CRC-32 table for the polynomial 0x04c11db7.
// Since that polynomial is the bit-reversal of the one used by CRC-32 IEEE,
// the table is the bit-reversed form of the standard library's IEEE table.
var crcTable [256]uint32

func init() {
	for i := range crcTable {
		crcTable[i] = internal.ReverseUint32(crc32.IEEETable[internal.ReverseLUT[i]])
	}
}

// updateCRC returns the result of adding the bytes in buf to the crc.
// The CRC-32 computation in bzip2 treats bytes as having bits in big-endian
// order. That is, the MSB is read before the LSB.
func updateCRC(crc uint32, buf []byte) uint32 {
	crc = ^crc
	for _, b := range buf {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	return ^crc
}

// blockCRC is the running checksum of the original data of one block.
type blockCRC struct{ val uint32 }

func (c *blockCRC) Reset()            { c.val = 0 }
func (c *blockCRC) Update(buf []byte) { c.val = updateCRC(c.val, buf) }
func (c *blockCRC) Value() uint32     { return c.val }

// UpdateRun adds n copies of b to the crc.
func (c *blockCRC) UpdateRun(b byte, n int) {
	crc := ^c.val
	for i := 0; i < n; i++ {
		crc = crc<<8 ^ crcTable[byte(crc>>24)^b]
	}
	c.val = ^crc
}

// combineCRC folds the CRC of one block into the stream CRC.
func combineCRC(crc, blkCRC uint32) uint32 {
	return (crc<<1 | crc>>31) ^ blkCRC
}
