// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"github.com/bzcodec/compress/internal/errors"
	"github.com/bzcodec/compress/internal/prefix"
)

const (
	minNumTrees = 2
	maxNumTrees = 6

	maxPrefixBits = 20
	numGroupSyms  = 50  // Symbols coded between table switches
	maxNumSyms    = 258 // RUNA, RUNB, up to 255 ranks, and EOB

	maxNumSelectors = 2 + (9*blockSize)/numGroupSyms

	numIterations = 4
	lesserCost    = 0
	greaterCost   = 15
)

// numTreesFor returns the number of tables used to code n symbols.
func numTreesFor(n int) int {
	switch {
	case n < 200:
		return 2
	case n < 600:
		return 3
	case n < 1200:
		return 4
	case n < 2400:
		return 5
	default:
		return 6
	}
}

// prefixEncoder chooses the Huffman tables for a block, transmits them, and
// codes the block symbols with them.
type prefixEncoder struct {
	codesBuf [maxNumTrees][maxNumSyms]prefix.PrefixCode
	codes    [maxNumTrees]prefix.PrefixCodes
	sels     []uint8
	lenGen   prefix.LengthGenerator
}

// Encode writes the tables, the selectors, and syms using numSyms as the
// alphabet size. It returns the number of tables and selectors used.
func (pe *prefixEncoder) Encode(bw *bitWriter, syms []uint16, numSyms int) (numTrees, numSels int) {
	numTrees = numTreesFor(len(syms))
	pe.initTrees(syms, numSyms, numTrees)
	for i := 0; i < numIterations; i++ {
		pe.refineTrees(syms, numSyms, numTrees)
	}
	for _, codes := range pe.codes[:numTrees] {
		if err := prefix.GeneratePrefixes(codes); err != nil {
			errors.Panic(err)
		}
	}

	pe.writeTrees(bw, numTrees)
	var sel prefix.PrefixCodes
	for i, sym := range syms {
		if i%numGroupSyms == 0 {
			sel = pe.codes[pe.sels[i/numGroupSyms]]
		}
		c := sel[sym]
		bw.WriteBits(uint(c.Val), uint(c.Len))
	}
	return numTrees, len(pe.sels)
}

// initTrees partitions the alphabet into numTrees bands of roughly equal
// symbol frequency, giving each table cheap lengths for its own band.
func (pe *prefixEncoder) initTrees(syms []uint16, numSyms, numTrees int) {
	var freqs [maxNumSyms]int
	for _, sym := range syms {
		freqs[sym]++
	}

	for t := range pe.codes[:numTrees] {
		pe.codes[t] = pe.codesBuf[t][:numSyms]
	}
	remFreq, gs := len(syms), 0
	for nPart := numTrees; nPart > 0; nPart-- {
		tFreq := remFreq / nPart
		ge, aFreq := gs-1, 0
		for aFreq < tFreq && ge < numSyms-1 {
			ge++
			aFreq += freqs[ge]
		}
		if ge > gs && nPart != numTrees && nPart != 1 && (numTrees-nPart)%2 == 1 {
			aFreq -= freqs[ge]
			ge--
		}

		codes := pe.codes[nPart-1]
		for v := range codes {
			codes[v] = prefix.PrefixCode{Sym: uint32(v), Len: greaterCost}
			if v >= gs && v <= ge {
				codes[v].Len = lesserCost
			}
		}
		gs = ge + 1
		remFreq -= aFreq
	}
}

// refineTrees assigns each group of symbols to the table that codes it most
// cheaply, then rebuilds every table from the symbols assigned to it.
func (pe *prefixEncoder) refineTrees(syms []uint16, numSyms, numTrees int) {
	for _, codes := range pe.codes[:numTrees] {
		for v := range codes {
			codes[v].Cnt = 0
		}
	}

	pe.sels = pe.sels[:0]
	for gs := 0; gs < len(syms); gs += numGroupSyms {
		ge := gs + numGroupSyms
		if ge > len(syms) {
			ge = len(syms)
		}
		group := syms[gs:ge]

		bt, bc := 0, -1
		for t, codes := range pe.codes[:numTrees] {
			var cost int
			for _, sym := range group {
				cost += int(codes[sym].Len)
			}
			if bc < 0 || cost < bc {
				bt, bc = t, cost
			}
		}
		pe.sels = append(pe.sels, uint8(bt))
		codes := pe.codes[bt]
		for _, sym := range group {
			codes[sym].Cnt++
		}
	}

	for _, codes := range pe.codes[:numTrees] {
		if err := pe.lenGen.Generate(codes, maxPrefixBits); err != nil {
			errors.Panic(err)
		}
	}
}

func (pe *prefixEncoder) writeTrees(bw *bitWriter, numTrees int) {
	bw.WriteBits(uint(numTrees), 3)
	bw.WriteBits(uint(len(pe.sels)), 15)

	// Selectors are sent as move-to-front ranks in unary.
	var mtf [maxNumTrees]uint8
	for i := range mtf {
		mtf[i] = uint8(i)
	}
	for _, sel := range pe.sels {
		var idx int
		for mtf[idx] != sel {
			idx++
		}
		copy(mtf[1:], mtf[:idx])
		mtf[0] = sel
		for ; idx > 0; idx-- {
			bw.WriteBits(1, 1)
		}
		bw.WriteBits(0, 1)
	}

	// Code lengths are sent as deltas from the previous length.
	for _, codes := range pe.codes[:numTrees] {
		curr := codes[0].Len
		bw.WriteBits(uint(curr), 5)
		for _, c := range codes {
			for ; curr < c.Len; curr++ {
				bw.WriteBits(2, 2)
			}
			for ; curr > c.Len; curr-- {
				bw.WriteBits(3, 2)
			}
			bw.WriteBits(0, 1)
		}
	}
}

// writeSymbolMap writes the set of byte values used in a block as a bitmap
// of 16 ranges followed by a bitmap for each range in use.
func writeSymbolMap(bw *bitWriter, inUse *[256]bool) {
	var used uint
	for i := 0; i < 16; i++ {
		used <<= 1
		for _, ok := range inUse[16*i : 16*i+16] {
			if ok {
				used |= 1
				break
			}
		}
	}
	bw.WriteBits(used, 16)
	for i := 0; i < 16; i++ {
		if used&(1<<uint(15-i)) == 0 {
			continue
		}
		var v uint
		for _, ok := range inUse[16*i : 16*i+16] {
			v <<= 1
			if ok {
				v |= 1
			}
		}
		bw.WriteBits(v, 16)
	}
}

// readSymbolMap reads the set of byte values used in a block and appends
// them in ascending order to dict.
func readSymbolMap(br *bitReader, dict []uint8) []uint8 {
	used := br.ReadBits(16)
	for i := 0; i < 16; i++ {
		if used&(1<<uint(15-i)) == 0 {
			continue
		}
		v := br.ReadBits(16)
		for j := 0; j < 16; j++ {
			if v&(1<<uint(15-j)) != 0 {
				dict = append(dict, uint8(16*i+j))
			}
		}
	}
	if len(dict) == 0 {
		panicf(errors.Corrupted, "no symbols in use")
	}
	return dict
}

// prefixDecoder reads the tables and selectors for a block and decodes the
// block symbols with them.
type prefixDecoder struct {
	decs  [maxNumTrees]prefix.Decoder
	codes [maxNumTrees][maxNumSyms]prefix.PrefixCode
	sels  []uint8
}

// ReadTrees reads the tables and selectors for an alphabet of numSyms.
func (pd *prefixDecoder) ReadTrees(br *bitReader, numSyms int) (numTrees, numSels int) {
	numTrees = int(br.ReadBits(3))
	if numTrees < minNumTrees || numTrees > maxNumTrees {
		panicf(errors.Corrupted, "invalid number of prefix trees: %d", numTrees)
	}
	numSels = int(br.ReadBits(15))
	if numSels < 1 || numSels > maxNumSelectors {
		panicf(errors.Corrupted, "invalid number of selectors: %d", numSels)
	}

	var mtf [maxNumTrees]uint8
	for i := range mtf {
		mtf[i] = uint8(i)
	}
	pd.sels = pd.sels[:0]
	for i := 0; i < numSels; i++ {
		var idx int
		for br.ReadBool() {
			if idx++; idx >= numTrees {
				panicf(errors.Corrupted, "invalid selector")
			}
		}
		sel := mtf[idx]
		copy(mtf[1:], mtf[:idx])
		mtf[0] = sel
		pd.sels = append(pd.sels, sel)
	}

	for t := 0; t < numTrees; t++ {
		codes := pd.codes[t][:numSyms]
		curr := br.ReadBits(5)
		for i := range codes {
			for {
				if curr < 1 || curr > maxPrefixBits {
					panicf(errors.Corrupted, "invalid prefix code length: %d", curr)
				}
				if !br.ReadBool() {
					break
				}
				if br.ReadBool() {
					curr--
				} else {
					curr++
				}
			}
			codes[i] = prefix.PrefixCode{Sym: uint32(i), Len: uint32(curr)}
		}
		if err := pd.decs[t].Init(codes); err != nil {
			errors.Panic(err)
		}
	}
	return numTrees, numSels
}

// ReadSymbols decodes symbols up to and including eob, appending them to
// syms. It panics with an overrun error if more than maxSyms are present.
func (pd *prefixDecoder) ReadSymbols(br *bitReader, syms []uint16, eob uint16, maxSyms int) []uint16 {
	var dec *prefix.Decoder
	for i := 0; ; i++ {
		if i%numGroupSyms == 0 {
			grp := i / numGroupSyms
			if grp >= len(pd.sels) {
				panicf(errors.Corrupted, "ran out of selectors")
			}
			dec = &pd.decs[pd.sels[grp]]
		}
		if i >= maxSyms {
			panicf(errors.Overrun, "too many symbols in block")
		}
		sym, ok := dec.Decode(br)
		if !ok {
			panicf(errors.Corrupted, "invalid prefix code")
		}
		syms = append(syms, uint16(sym))
		if uint16(sym) == eob {
			return syms
		}
	}
}
