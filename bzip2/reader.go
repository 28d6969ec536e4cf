// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"io"

	"github.com/bzcodec/compress/internal/errors"
	"github.com/sirupsen/logrus"
)

// ReaderConfig configures a Reader. The zero value is valid.
type ReaderConfig struct {
	// Logger receives a debug entry for every decoded block and a warning
	// for every checksum mismatch. If nil, nothing is logged.
	Logger logrus.FieldLogger

	_ struct{} // Blank field to prevent unkeyed struct literals
}

// Reader decompresses a single BZip2 stream. Reading stops at the stream
// trailer; any data after it is left unread in the underlying reader, as
// long as that reader implements io.ByteReader.
type Reader struct {
	InputOffset  int64 // Total number of bytes read from underlying io.Reader
	OutputOffset int64 // Total number of bytes emitted from Read
	BlockSize    int   // Maximum block size in bytes, known once the header is read

	rd     bitReader // Input source
	lg     logrus.FieldLogger
	toRead []byte // Uncompressed data ready to be emitted from Read
	err    error  // Persistent error

	step func(*Reader) // Single step of decompression work (can panic)

	numBlks int
	blkCRC  uint32 // Checksum stored in the current block header
	endCRC  uint32 // Combined checksum of all blocks so far

	dict []uint8
	syms []uint16
	bwt  []byte
	buf  []byte

	mtf moveToFront
	pd  prefixDecoder
	blk blockReader
}

const readBufSize = 32 << 10

// NewReader returns a Reader that decompresses r. A nil conf uses defaults.
func NewReader(r io.Reader, conf *ReaderConfig) (*Reader, error) {
	zr := new(Reader)
	if conf != nil {
		zr.lg = conf.Logger
	}
	zr.lg = loggerOrDiscard(zr.lg)
	if err := zr.Reset(r); err != nil {
		return nil, err
	}
	return zr, nil
}

// Reset discards the Reader's state and makes it equivalent to the result of
// NewReader with r, keeping the logger and any allocated buffers.
func (zr *Reader) Reset(r io.Reader) error {
	*zr = Reader{
		rd:   zr.rd,
		lg:   zr.lg,
		step: (*Reader).readStreamHeader,

		dict: zr.dict,
		syms: zr.syms,
		bwt:  zr.bwt,
		buf:  zr.buf,

		pd:  zr.pd,
		blk: zr.blk,
	}
	zr.rd.Init(r)
	if zr.lg == nil {
		zr.lg = discardLogger
	}
	if zr.buf == nil {
		zr.buf = make([]byte, readBufSize)
	}
	return nil
}

func (zr *Reader) Read(buf []byte) (int, error) {
	for {
		if len(zr.toRead) > 0 {
			cnt := copy(buf, zr.toRead)
			zr.toRead = zr.toRead[cnt:]
			zr.OutputOffset += int64(cnt)
			return cnt, nil
		}
		if zr.err != nil {
			return 0, zr.err
		}

		// Perform next step in decompression process.
		func() {
			defer errors.Recover(&zr.err)
			zr.step(zr)
		}()
		zr.InputOffset = zr.rd.Offset
	}
}

func (zr *Reader) ReadByte() (byte, error) {
	for len(zr.toRead) == 0 {
		if zr.err != nil {
			return 0, zr.err
		}
		func() {
			defer errors.Recover(&zr.err)
			zr.step(zr)
		}()
		zr.InputOffset = zr.rd.Offset
	}
	c := zr.toRead[0]
	zr.toRead = zr.toRead[1:]
	zr.OutputOffset++
	return c, nil
}

// Close ends the Reader. It reports the persistent error if the stream
// failed to decode, and nil otherwise. Any later use fails.
func (zr *Reader) Close() error {
	if zr.err == nil || zr.err == io.EOF || errors.IsClosed(zr.err) {
		zr.toRead = nil // Make sure future reads fail
		zr.err = errorf(errors.Closed, "reader is closed")
		return nil
	}
	return zr.err // Return the persistent error
}

// readStreamHeader reads the "BZh" magic and the block size level.
func (zr *Reader) readStreamHeader() {
	if magic := zr.rd.ReadBits(16); magic != hdrMagic {
		panicf(errors.Corrupted, "invalid stream magic: 0x%04x", magic)
	}
	if ver := zr.rd.ReadBits(8); ver != 'h' {
		panicf(errors.Corrupted, "invalid stream version: %q", rune(ver))
	}
	lvl := int(zr.rd.ReadBits(8)) - '0'
	if lvl < BestSpeed || lvl > BestCompression {
		panicf(errors.Corrupted, "invalid block size level: %d", lvl)
	}
	zr.BlockSize = lvl * blockSize
	zr.step = (*Reader).readBlockHeader
}

// readBlockHeader reads either the next block or the stream trailer.
func (zr *Reader) readBlockHeader() {
	switch magic := zr.rd.ReadBitsBE64(48); magic {
	case blkMagic:
		zr.readBlock()
		zr.step = (*Reader).readBlockData
	case endMagic:
		crc := uint32(zr.rd.ReadBits(32))
		if crc != zr.endCRC {
			zr.lg.WithFields(logrus.Fields{
				"blocks": zr.numBlks,
				"stored": crc,
				"actual": zr.endCRC,
			}).Warn("bzip2: stream checksum mismatch")
			panicf(errors.Checksum, "mismatching stream checksum")
		}
		zr.rd.ReadPads()
		errors.Panic(io.EOF)
	default:
		panicf(errors.Corrupted, "invalid block magic: 0x%012x", magic)
	}
}

// readBlock decodes the entropy coded parts of a block, leaving the inverse
// BWT to be pulled by readBlockData.
func (zr *Reader) readBlock() {
	zr.blkCRC = uint32(zr.rd.ReadBits(32))
	randomized := zr.rd.ReadBool()
	ptr := int(zr.rd.ReadBits(24))

	zr.dict = readSymbolMap(&zr.rd, zr.dict[:0])
	zr.mtf.Init(zr.dict)
	numSyms := len(zr.dict) + 2
	numTrees, numSels := zr.pd.ReadTrees(&zr.rd, numSyms)
	zr.syms = zr.pd.ReadSymbols(&zr.rd, zr.syms[:0], zr.mtf.EOB(), zr.BlockSize+1)
	zr.bwt = zr.mtf.Decode(zr.bwt[:0], zr.syms, zr.BlockSize)
	if ptr >= len(zr.bwt) {
		panicf(errors.Corrupted, "origin pointer out of range: %d", ptr)
	}
	zr.blk.Init(zr.bwt, ptr, randomized)

	zr.lg.WithFields(logrus.Fields{
		"block":      zr.numBlks,
		"size":       len(zr.bwt),
		"origPtr":    ptr,
		"randomized": randomized,
		"trees":      numTrees,
		"selectors":  numSels,
	}).Debug("bzip2: decoded block")
	zr.numBlks++
}

// readBlockData emits the next chunk of the current block, and verifies the
// block checksum once the block is exhausted.
func (zr *Reader) readBlockData() {
	cnt := zr.blk.Read(zr.buf)
	zr.toRead = zr.buf[:cnt]
	if !zr.blk.Done() {
		return
	}

	if crc := zr.blk.CRC(); crc != zr.blkCRC {
		zr.lg.WithFields(logrus.Fields{
			"block":  zr.numBlks - 1,
			"stored": zr.blkCRC,
			"actual": crc,
		}).Warn("bzip2: block checksum mismatch")
		panicf(errors.Checksum, "mismatching block checksum")
	}
	zr.endCRC = combineCRC(zr.endCRC, zr.blkCRC)
	zr.step = (*Reader).readBlockHeader
}
