// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package prefix implements length-limited canonical prefix codes as used by
// block sorting compressors.
//
// Codes are bit-packed MSB first: the Val of a PrefixCode holds its Len
// bits with the first transmitted bit in the most significant position.
package prefix

import (
	"fmt"

	"github.com/bzcodec/compress/internal/errors"
)

// MaxBits is the longest code length the Decoder can handle.
const MaxBits = 23

func errorf(code int, format string, args ...interface{}) error {
	return errors.Error{Code: code, Pkg: "prefix", Msg: fmt.Sprintf(format, args...)}
}

// PrefixCode is a representation of a prefix code, which is conceptually a
// mapping from some arbitrary symbol to some bit-string.
//
// The Sym and Cnt fields are typically provided by the user,
// while the Len and Val fields are generated by this package.
type PrefixCode struct {
	Sym uint32 // The symbol being mapped
	Cnt uint32 // The number times this symbol is used
	Len uint32 // Bit-length of the prefix code
	Val uint32 // Value of the prefix code (MSB-first)
}

type PrefixCodes []PrefixCode

// Length returns the total number of bits needed to encode every symbol
// Cnt times with the current code lengths.
func (pc PrefixCodes) Length() (nb uint64) {
	for _, c := range pc {
		nb += uint64(c.Len) * uint64(c.Cnt)
	}
	return nb
}

// GenerateLengths assigns a code length to every entry of codes based on its
// Cnt, such that no length exceeds maxBits. Symbols with a zero count are
// treated as occurring once so that every symbol receives a code.
//
// It allocates scratch space on every call; use a LengthGenerator to reuse it.
func GenerateLengths(codes PrefixCodes, maxBits uint) error {
	var lg LengthGenerator
	return lg.Generate(codes, maxBits)
}

// LengthGenerator holds the scratch space for building Huffman trees so that
// repeated calls to Generate do not allocate once it has grown large enough.
// The zero value is ready for use.
//
// Lengths come from a Huffman tree built with a binary heap. The low byte of
// each weight tracks subtree depth so that ties favor shallow trees. Whenever
// a length exceeds maxBits, every count is halved and the tree is rebuilt.
type LengthGenerator struct {
	// Nodes are 1-indexed; node 0 is the heap sentinel with zero weight.
	heap   []int
	weight []uint32
	parent []int
}

// Generate is the same as GenerateLengths.
func (lg *LengthGenerator) Generate(codes PrefixCodes, maxBits uint) error {
	n := len(codes)
	switch {
	case n == 0:
		return nil
	case n == 1:
		codes[0].Len = 1
		return nil
	case n > 1<<maxBits:
		return errorf(errors.Invalid, "too many symbols (%d) for %d bit codes", n, maxBits)
	}

	lg.reset(n)
	heap, weight, parent := lg.heap, lg.weight, lg.parent
	for i, c := range codes {
		if c.Cnt == 0 {
			c.Cnt = 1
		}
		weight[i+1] = c.Cnt << 8
	}

	for {
		nNodes, nHeap := n, 0
		heap[0], weight[0], parent[0] = 0, 0, -2
		for i := 1; i <= n; i++ {
			parent[i] = -1
			nHeap++
			heap[nHeap] = i
			lg.upHeap(nHeap)
		}

		for nHeap > 1 {
			n1 := heap[1]
			heap[1] = heap[nHeap]
			nHeap--
			lg.downHeap(1, nHeap)
			n2 := heap[1]
			heap[1] = heap[nHeap]
			nHeap--
			lg.downHeap(1, nHeap)

			nNodes++
			parent[n1], parent[n2] = nNodes, nNodes
			weight[nNodes] = addWeights(weight[n1], weight[n2])
			parent[nNodes] = -1
			nHeap++
			heap[nHeap] = nNodes
			lg.upHeap(nHeap)
		}

		var tooLong bool
		for i := 1; i <= n; i++ {
			var depth uint32
			for k := i; parent[k] >= 0; k = parent[k] {
				depth++
			}
			codes[i-1].Len = depth
			if depth > uint32(maxBits) {
				tooLong = true
			}
		}
		if !tooLong {
			return nil
		}

		for i := 1; i <= n; i++ {
			w := weight[i] >> 8
			weight[i] = (1 + w/2) << 8
		}
	}
}

// reset sizes the scratch slices for a tree with n leaves.
func (lg *LengthGenerator) reset(n int) {
	if cap(lg.heap) < n+2 {
		lg.heap = make([]int, n+2)
	}
	if cap(lg.weight) < 2*n+1 {
		lg.weight = make([]uint32, 2*n+1)
		lg.parent = make([]int, 2*n+1)
	}
	lg.heap = lg.heap[:n+2]
	lg.weight = lg.weight[:2*n+1]
	lg.parent = lg.parent[:2*n+1]
}

func (lg *LengthGenerator) upHeap(z int) {
	heap, weight := lg.heap, lg.weight
	tmp := heap[z]
	for weight[tmp] < weight[heap[z>>1]] {
		heap[z] = heap[z>>1]
		z >>= 1
	}
	heap[z] = tmp
}

func (lg *LengthGenerator) downHeap(z, nHeap int) {
	heap, weight := lg.heap, lg.weight
	tmp := heap[z]
	for {
		y := z << 1
		if y > nHeap {
			break
		}
		if y < nHeap && weight[heap[y+1]] < weight[heap[y]] {
			y++
		}
		if weight[tmp] < weight[heap[y]] {
			break
		}
		heap[z] = heap[y]
		z = y
	}
	heap[z] = tmp
}

// addWeights sums two node weights and sets the depth byte to one more than
// the deeper of the two subtrees.
func addWeights(w1, w2 uint32) uint32 {
	d1, d2 := w1&0xff, w2&0xff
	if d2 > d1 {
		d1 = d2
	}
	return (w1 &^ 0xff) + (w2 &^ 0xff) | (1 + d1)
}

// GeneratePrefixes assigns canonical values to codes based on their lengths.
// Shorter codes get numerically smaller values, and codes of equal length are
// numbered in the order they appear in codes.
//
// It reports an error if the lengths over-subscribe the code space.
func GeneratePrefixes(codes PrefixCodes) error {
	minLen, maxLen := uint32(MaxBits+1), uint32(0)
	for _, c := range codes {
		if c.Len == 0 || c.Len > MaxBits {
			return errorf(errors.Invalid, "invalid code length: %d", c.Len)
		}
		if c.Len < minLen {
			minLen = c.Len
		}
		if c.Len > maxLen {
			maxLen = c.Len
		}
	}

	var vec uint32
	for n := minLen; n <= maxLen; n++ {
		for i, c := range codes {
			if c.Len == n {
				codes[i].Val = vec
				vec++
			}
		}
		if vec > 1<<n {
			return errorf(errors.Invalid, "over-subscribed prefix codes")
		}
		vec <<= 1
	}
	return nil
}
