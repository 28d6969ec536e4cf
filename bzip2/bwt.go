// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import "github.com/bzcodec/compress/internal/errors"

// The Burrows-Wheeler Transform implementation used here is based on the
// block sorting algorithm of the original bzip2 compressor. All rotations of
// the block are bucketed by their first two bytes, and each small bucket is
// then sorted by a three-way radix quicksort that falls back to a shell sort
// for small or deep partitions. Once every bucket starting with some byte ss
// is sorted, the order of the buckets ending in ss follows by a linear scan,
// and quadrant tags are updated so that later comparisons of long equal runs
// can finish early.
//
// Comparisons are counted. When the count exceeds a caller provided budget,
// sorting stops so that the caller can randomize the block and retry. This is
// what keeps highly repetitive blocks from taking quadratic time.

const (
	setMask   = 1 << 21
	clearMask = ^setMask

	smallThresh      = 20
	depthThresh      = 10
	simpleSortThresh = 4000
	qsortStackSize   = 1000
)

var shellIncs = [...]int{
	1, 4, 13, 40, 121, 364, 1093, 3280, 9841, 29524,
	88573, 265720, 797161, 2391484,
}

// blockSorter computes the sorted order of all rotations of a block.
//
// The block is held in blk[:last+1]. The bytes after it hold a copy of its
// start so that comparisons may run up to numOvershootBytes past the end
// before wrapping around.
type blockSorter struct {
	blk      []byte
	zptr     []int32  // Rotation start indexes, in sorted order once done
	quadrant []uint16 // Secondary sort keys, indexed like blk
	ftab     []int32  // Bucket boundaries by the first two bytes
	last     int

	workDone  int
	workLimit int // Negative if unlimited
}

// Init prepares the sorter for blocks of up to maxSize bytes held in blk,
// which must have at least numOvershootBytes of room past maxSize.
func (bs *blockSorter) Init(blk []byte, maxSize int) {
	if len(blk) < maxSize+numOvershootBytes {
		panic("bzip2: block buffer too small")
	}
	bs.blk = blk
	if cap(bs.zptr) < maxSize {
		bs.zptr = make([]int32, maxSize)
	}
	if cap(bs.quadrant) < maxSize+numOvershootBytes {
		bs.quadrant = make([]uint16, maxSize+numOvershootBytes)
	}
	bs.zptr = bs.zptr[:maxSize]
	bs.quadrant = bs.quadrant[:maxSize+numOvershootBytes]
	if bs.ftab == nil {
		bs.ftab = make([]int32, 65537)
	}
}

// Encode sorts the n bytes at the start of the block buffer. If the sort
// takes more than workFactor comparisons per byte, the block is randomized
// in place and sorted again without a limit.
//
// It returns the position of the original rotation in the sorted order, and
// reports whether the block was randomized.
func (bs *blockSorter) Encode(n, workFactor int) (ptr int, randomized bool) {
	if !bs.sort(n, workFactor*(n-1)) {
		bs.randomize()
		bs.sort(n, -1)
		randomized = true
	}
	for i, p := range bs.zptr[:n] {
		if p == 0 {
			return i, randomized
		}
	}
	errors.Panic(errorf(errors.Internal, "origin rotation not found"))
	return -1, randomized
}

// LastColumn appends the last column of the sorted rotation matrix to dst,
// which is the byte preceding each rotation in sorted order.
func (bs *blockSorter) LastColumn(dst []byte) []byte {
	blk, last := bs.blk, bs.last
	for _, p := range bs.zptr[:last+1] {
		if p == 0 {
			dst = append(dst, blk[last])
		} else {
			dst = append(dst, blk[p-1])
		}
	}
	return dst
}

// sort computes the sorted order of all rotations of the n bytes in blk.
// It reports false if the comparison work exceeded limit. A negative limit
// never aborts, and neither do blocks smaller than simpleSortThresh.
func (bs *blockSorter) sort(n, limit int) bool {
	bs.last = n - 1
	bs.workDone, bs.workLimit = 0, limit

	blk, last := bs.blk, bs.last
	for i := 0; i < numOvershootBytes; i++ {
		blk[last+1+i] = blk[i%n]
	}
	quad := bs.quadrant[:last+1+numOvershootBytes]
	for i := range quad {
		quad[i] = 0
	}

	if n < simpleSortThresh {
		for i := range bs.zptr[:n] {
			bs.zptr[i] = int32(i)
		}
		bs.workLimit = -1
		bs.simpleSort(0, last, 0)
		return true
	}
	bs.mainSort()
	return !bs.exceeded()
}

func (bs *blockSorter) exceeded() bool {
	return bs.workLimit >= 0 && bs.workDone > bs.workLimit
}

// randomize flips bits of the block according to the rNums sequence.
func (bs *blockSorter) randomize() {
	var rnd randomizer
	for i := range bs.blk[:bs.last+1] {
		bs.blk[i] ^= rnd.Next()
	}
}

func (bs *blockSorter) mainSort() {
	blk, zptr, quad, ftab := bs.blk, bs.zptr, bs.quadrant, bs.ftab
	last := bs.last

	var runningOrder [256]int
	var bigDone [256]bool
	var copyStart [256]int32

	// Bucket every rotation by its first two bytes.
	for i := range ftab {
		ftab[i] = 0
	}
	for i := 0; i <= last; i++ {
		ftab[int(blk[i])<<8|int(blk[i+1])]++
	}
	for i := 1; i < len(ftab); i++ {
		ftab[i] += ftab[i-1]
	}
	for i := 0; i <= last; i++ {
		j := int(blk[i])<<8 | int(blk[i+1])
		ftab[j]--
		zptr[ftab[j]] = int32(i)
	}

	// Order the big buckets by size, smallest first, so that the most work
	// is saved by the scanning step below.
	bigFreq := func(b int) int32 { return ftab[(b+1)<<8] - ftab[b<<8] }
	for i := range runningOrder {
		runningOrder[i] = i
	}
	h := 1
	for h <= 256 {
		h = 3*h + 1
	}
	for h != 1 {
		h /= 3
		for i := h; i <= 255; i++ {
			vv := runningOrder[i]
			j := i
			for bigFreq(runningOrder[j-h]) > bigFreq(vv) {
				runningOrder[j] = runningOrder[j-h]
				j -= h
				if j <= h-1 {
					break
				}
			}
			runningOrder[j] = vv
		}
	}

	for i := 0; i <= 255; i++ {
		ss := runningOrder[i]

		// Sort every small bucket [ss, j] that is not already sorted.
		for j := 0; j <= 255; j++ {
			sb := ss<<8 + j
			if ftab[sb]&setMask == 0 {
				lo := int(ftab[sb] & clearMask)
				hi := int(ftab[sb+1]&clearMask) - 1
				if hi > lo {
					bs.qSort3(lo, hi, 2)
					if bs.exceeded() {
						return
					}
				}
				ftab[sb] |= setMask
			}
		}

		// The big bucket ss is now sorted. Record its order in the quadrant
		// tags so that later comparisons can use it.
		bigDone[ss] = true
		if i < 255 {
			bbStart := int(ftab[ss<<8] & clearMask)
			bbSize := int(ftab[(ss+1)<<8]&clearMask) - bbStart
			var shifts uint
			for bbSize>>shifts > 65534 {
				shifts++
			}
			for j := 0; j < bbSize; j++ {
				a2update := zptr[bbStart+j]
				qVal := uint16(j >> shifts)
				quad[a2update] = qVal
				if a2update < numOvershootBytes {
					quad[int(a2update)+last+1] = qVal
				}
			}
		}

		// Scan the big bucket ss to place every rotation that is one byte
		// before a rotation in it. This fixes the order of the small buckets
		// [t, ss] for every t not yet done.
		for j := 0; j <= 255; j++ {
			copyStart[j] = ftab[j<<8+ss] & clearMask
		}
		for j := ftab[ss<<8] & clearMask; j < ftab[(ss+1)<<8]&clearMask; j++ {
			p := zptr[j]
			if p == 0 {
				p = int32(last)
			} else {
				p--
			}
			c1 := blk[p]
			if !bigDone[c1] {
				zptr[copyStart[c1]] = p
				copyStart[c1]++
			}
		}
		for j := 0; j <= 255; j++ {
			ftab[j<<8+ss] |= setMask
		}
	}
}

func med3(a, b, c byte) byte {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
		if a > b {
			b = a
		}
	}
	return b
}

// qSort3 is a three-way radix quicksort on zptr[lo:hi+1] starting at depth d.
func (bs *blockSorter) qSort3(lo, hi, d int) {
	type stackElem struct{ lo, hi, d int }
	var stackArr [qsortStackSize]stackElem
	stack := append(stackArr[:0], stackElem{lo, hi, d})

	blk, zptr := bs.blk, bs.zptr
	vswap := func(p1, p2, n int) {
		for ; n > 0; n-- {
			zptr[p1], zptr[p2] = zptr[p2], zptr[p1]
			p1++
			p2++
		}
	}
	at := func(i, d int) int { return int(blk[int(zptr[i])+d]) }

	for len(stack) > 0 {
		if len(stack) >= qsortStackSize {
			errors.Panic(errorf(errors.Internal, "sort stack overflow"))
		}
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		lo, hi, d := e.lo, e.hi, e.d

		if hi-lo < smallThresh || d > depthThresh {
			bs.simpleSort(lo, hi, d)
			if bs.exceeded() {
				return
			}
			continue
		}

		med := int(med3(byte(at(lo, d)), byte(at(hi, d)), byte(at((lo+hi)>>1, d))))
		unLo, ltLo := lo, lo
		unHi, gtHi := hi, hi
		for {
			for unLo <= unHi {
				n := at(unLo, d) - med
				if n == 0 {
					zptr[unLo], zptr[ltLo] = zptr[ltLo], zptr[unLo]
					ltLo++
					unLo++
					continue
				}
				if n > 0 {
					break
				}
				unLo++
			}
			for unLo <= unHi {
				n := at(unHi, d) - med
				if n == 0 {
					zptr[unHi], zptr[gtHi] = zptr[gtHi], zptr[unHi]
					gtHi--
					unHi--
					continue
				}
				if n < 0 {
					break
				}
				unHi--
			}
			if unLo > unHi {
				break
			}
			zptr[unLo], zptr[unHi] = zptr[unHi], zptr[unLo]
			unLo++
			unHi--
		}

		if gtHi < ltLo {
			stack = append(stack, stackElem{lo, hi, d + 1})
			continue
		}

		n := ltLo - lo
		if unLo-ltLo < n {
			n = unLo - ltLo
		}
		vswap(lo, unLo-n, n)
		m := hi - gtHi
		if gtHi-unHi < m {
			m = gtHi - unHi
		}
		vswap(unLo, hi-m+1, m)

		n = lo + unLo - ltLo - 1
		m = hi - (gtHi - unHi) + 1
		stack = append(stack,
			stackElem{lo, n, d},
			stackElem{n + 1, m - 1, d + 1},
			stackElem{m, hi, d},
		)
	}
}

// simpleSort is a shell sort on zptr[lo:hi+1] comparing from depth d.
func (bs *blockSorter) simpleSort(lo, hi, d int) {
	bigN := hi - lo + 1
	if bigN < 2 {
		return
	}
	hp := 0
	for shellIncs[hp] < bigN {
		hp++
	}
	hp--

	zptr := bs.zptr
	d32 := int32(d)
	for ; hp >= 0; hp-- {
		h := shellIncs[hp]
		for i := lo + h; i <= hi; i++ {
			v := zptr[i]
			j := i
			for bs.fullGtU(zptr[j-h]+d32, v+d32) {
				zptr[j] = zptr[j-h]
				j -= h
				if j <= lo+h-1 {
					break
				}
			}
			zptr[j] = v
			if bs.exceeded() {
				return
			}
		}
	}
}

// fullGtU reports whether the rotation at i1 sorts after the one at i2.
func (bs *blockSorter) fullGtU(i1, i2 int32) bool {
	blk, quad := bs.blk, bs.quadrant
	for k := 0; k < 6; k++ {
		if c1, c2 := blk[i1], blk[i2]; c1 != c2 {
			return c1 > c2
		}
		i1++
		i2++
	}

	last := int32(bs.last)
	for k := last + 1; k >= 0; k -= 4 {
		for j := 0; j < 4; j++ {
			if c1, c2 := blk[i1], blk[i2]; c1 != c2 {
				return c1 > c2
			}
			if s1, s2 := quad[i1], quad[i2]; s1 != s2 {
				return s1 > s2
			}
			i1++
			i2++
		}
		if i1 > last {
			i1 -= last + 1
		}
		if i2 > last {
			i2 -= last + 1
		}
		bs.workDone++
	}
	return false
}
