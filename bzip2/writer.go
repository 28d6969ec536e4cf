// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"io"

	"github.com/bzcodec/compress/internal/errors"
	"github.com/sirupsen/logrus"
)

// WriterConfig configures a Writer. The zero value is valid.
type WriterConfig struct {
	// Level is the block size in units of 100k bytes, from BestSpeed to
	// BestCompression. DefaultCompression selects BestCompression.
	Level int

	// WorkFactor bounds the effort spent sorting a block, as comparisons
	// per byte, from 1 to 250. Blocks that exceed it are randomized and
	// sorted again. Zero selects the default of 30.
	WorkFactor int

	// Logger receives a debug entry for every encoded block.
	// If nil, nothing is logged.
	Logger logrus.FieldLogger

	_ struct{} // Blank field to prevent unkeyed struct literals
}

// Writer compresses data into a single BZip2 stream. The stream is only
// complete once Close is called.
type Writer struct {
	InputOffset  int64 // Total number of bytes issued to Write
	OutputOffset int64 // Total number of bytes written to underlying io.Writer

	wr  bitWriter // Output destination
	lg  logrus.FieldLogger
	err error // Persistent error

	level      int
	workFactor int
	wroteHdr   bool
	numBlks    int
	endCRC     uint32

	blkBuf []byte // Block buffer, including sorter overshoot
	dict   []uint8
	bwt    []byte
	syms   []uint16

	rle runLengthEncoding
	bs  blockSorter
	mtf moveToFront
	pe  prefixEncoder
}

// NewWriter returns a Writer that compresses into w. A nil conf uses
// defaults. It reports an error if conf holds an out of range value.
func NewWriter(w io.Writer, conf *WriterConfig) (*Writer, error) {
	var lvl, wf int
	var lg logrus.FieldLogger
	if conf != nil {
		lvl, wf, lg = conf.Level, conf.WorkFactor, conf.Logger
	}
	switch {
	case lvl == DefaultCompression:
		lvl = BestCompression
	case lvl < BestSpeed || lvl > BestCompression:
		return nil, errorf(errors.Invalid, "compression level: %d", lvl)
	}
	switch {
	case wf == 0:
		wf = defaultWorkFactor
	case wf < 1 || wf > maxWorkFactor:
		return nil, errorf(errors.Invalid, "work factor: %d", wf)
	}

	zw := &Writer{
		lg:         loggerOrDiscard(lg),
		level:      lvl,
		workFactor: wf,
	}
	maxSize := lvl * blockSize
	zw.blkBuf = make([]byte, maxSize+numOvershootBytes)
	zw.bs.Init(zw.blkBuf, maxSize)
	zw.Reset(w)
	return zw, nil
}

// Reset discards the Writer's state and makes it equivalent to the result of
// NewWriter with w and the same configuration.
func (zw *Writer) Reset(w io.Writer) error {
	zw.InputOffset, zw.OutputOffset = 0, 0
	zw.err = nil
	zw.wroteHdr, zw.numBlks, zw.endCRC = false, 0, 0
	zw.wr.Init(w)
	zw.rle.Init(zw.blkBuf, zw.level*blockSize-numOvershootBytes)
	return nil
}

func (zw *Writer) Write(buf []byte) (int, error) {
	if zw.err != nil {
		return 0, zw.err
	}

	var cnt int
	func() {
		defer errors.Recover(&zw.err)
		for _, c := range buf {
			for !zw.rle.WriteByte(c) {
				zw.encodeBlock()
			}
			cnt++
		}
	}()
	zw.InputOffset += int64(cnt)
	zw.OutputOffset = zw.wr.Offset
	return cnt, zw.err
}

func (zw *Writer) WriteByte(c byte) error {
	_, err := zw.Write([]byte{c})
	return err
}

// Close encodes any buffered data and writes the stream trailer. It does not
// close the underlying io.Writer. Any later use fails.
func (zw *Writer) Close() error {
	if errors.IsClosed(zw.err) {
		return nil
	}
	if zw.err != nil {
		return zw.err
	}

	func() {
		defer errors.Recover(&zw.err)
		for !zw.rle.Flush() {
			zw.encodeBlock()
		}
		if zw.rle.Len() > 0 {
			zw.encodeBlock()
		}
		zw.writeStreamHeader()
		zw.wr.WriteBitsBE64(endMagic, 48)
		zw.wr.WriteBits(uint(zw.endCRC), 32)
		zw.wr.WritePads()
		zw.wr.Flush()
	}()
	zw.OutputOffset = zw.wr.Offset
	if zw.err != nil {
		return zw.err
	}
	zw.err = errorf(errors.Closed, "writer is closed")
	return nil
}

func (zw *Writer) writeStreamHeader() {
	if zw.wroteHdr {
		return
	}
	zw.wr.WriteBits(hdrMagic, 16)
	zw.wr.WriteBits('h', 8)
	zw.wr.WriteBits(uint('0'+zw.level), 8)
	zw.wroteHdr = true
}

// encodeBlock compresses the block buffered by the RLE1 stage and starts a
// new one.
func (zw *Writer) encodeBlock() {
	zw.writeStreamHeader()

	blk := zw.rle.Bytes()
	crc := zw.rle.crc.Value()
	zw.endCRC = combineCRC(zw.endCRC, crc)

	ptr, randomized := zw.bs.Encode(len(blk), zw.workFactor)
	inUse := zw.rle.inUse
	if randomized {
		inUse = [256]bool{}
		for _, c := range blk {
			inUse[c] = true
		}
	}
	zw.bwt = zw.bs.LastColumn(zw.bwt[:0])

	zw.dict = zw.dict[:0]
	for c, ok := range inUse {
		if ok {
			zw.dict = append(zw.dict, uint8(c))
		}
	}
	zw.mtf.Init(zw.dict)
	zw.syms = zw.mtf.Encode(zw.syms[:0], zw.bwt)

	startBits := zw.wr.BitsWritten()
	zw.wr.WriteBitsBE64(blkMagic, 48)
	zw.wr.WriteBits(uint(crc), 32)
	if randomized {
		zw.wr.WriteBits(1, 1)
	} else {
		zw.wr.WriteBits(0, 1)
	}
	zw.wr.WriteBits(uint(ptr), 24)
	writeSymbolMap(&zw.wr, &inUse)
	numTrees, numSels := zw.pe.Encode(&zw.wr, zw.syms, len(zw.dict)+2)

	zw.lg.WithFields(logrus.Fields{
		"block":      zw.numBlks,
		"size":       len(blk),
		"origPtr":    ptr,
		"randomized": randomized,
		"trees":      numTrees,
		"selectors":  numSels,
		"bits":       zw.wr.BitsWritten() - startBits,
	}).Debug("bzip2: encoded block")
	zw.numBlks++
	zw.rle.Reset()
}
