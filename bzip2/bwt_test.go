// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bzip2

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/bzcodec/compress/internal/testutil"
)

// transformBlock returns the last column and origin pointer of input,
// which must be small enough to never be randomized.
func transformBlock(input []byte) (bwt []byte, ptr int) {
	bwt, ptr, _ = sortBlock(input, defaultWorkFactor)
	return bwt, ptr
}

func sortBlock(input []byte, workFactor int) (bwt []byte, ptr int, randomized bool) {
	buf := make([]byte, len(input)+numOvershootBytes)
	copy(buf, input)
	var bs blockSorter
	bs.Init(buf, len(input))
	ptr, randomized = bs.Encode(len(input), workFactor)
	return bs.LastColumn(nil), ptr, randomized
}

// derandomize undoes the randomization of a block in place.
func derandomize(buf []byte) {
	var rnd randomizer
	for i := range buf {
		buf[i] ^= rnd.Next()
	}
}

// inverseBWT reconstructs the block from its last column.
func inverseBWT(bwt []byte, ptr int) []byte {
	var cnts [256]int
	for _, c := range bwt {
		cnts[c]++
	}
	var sum int
	for i, n := range cnts {
		cnts[i] = sum
		sum += n
	}
	next := make([]int, len(bwt))
	for i, c := range bwt {
		next[cnts[c]] = i
		cnts[c]++
	}

	out := make([]byte, 0, len(bwt))
	for i, p := 0, next[ptr]; i < len(bwt); i++ {
		out = append(out, bwt[p])
		p = next[p]
	}
	return out
}

func TestBurrowsWheelerTransform(t *testing.T) {
	var ss = func(s string) string {
		const limit = 256
		if len(s) > limit {
			return fmt.Sprintf("%q...", s[:limit])
		}
		return fmt.Sprintf("%q", s)
	}

	var vectors = []struct {
		input  string // The input test string
		output string // Expected output string after BWT
		ptr    int    // The BWT origin pointer
	}{{
		input:  "a",
		output: "a",
		ptr:    0,
	}, {
		input:  "banana",
		output: "nnbaaa",
		ptr:    3,
	}, {
		input:  "aaaabbbbccd",
		output: "daaaabbbbcc",
		ptr:    0,
	}, {
		input:  "Hello, world!",
		output: ",do!lHrellwo ",
		ptr:    3,
	}, {
		input:  "SIX.MIXED.PIXIES.SIFT.SIXTY.PIXIE.DUST.BOXES",
		output: "TEXYDST.E.IXIXIXXSSMPPS.B..E.S.EUSFXDIIOIIIT",
		ptr:    29,
	}, {
		input:  "0123456789",
		output: "9012345678",
		ptr:    0,
	}, {
		input:  "9876543210",
		output: "1234567890",
		ptr:    9,
	}, {
		input:  "The quick brown fox jumped over the lazy dog.",
		output: "kynxederg.l ie hhpv otTu c uwd rfm eb qjoooza",
		ptr:    9,
	}, {
		input: "Mary had a little lamb, its fleece was white as snow" +
			"Mary had a little lamb, its fleece was white as snow" +
			"Mary had a little lamb, its fleece was white as snow" +
			"Mary had a little lamb, its fleece was white as snow" +
			"Mary had a little lamb, its fleece was white as snow" +
			"Mary had a little lamb, its fleece was white as snow" +
			"Mary had a little lamb, its fleece was white as snow" +
			"Mary had a little lamb, its fleece was white as snow" +
			"Nary had a little lamb, its fleece was white as snow",
		output: "dddddddddeeeeeeeeesssssssssyyyyyyyyy,,,,,,,,,eeeeeee" +
			"eeaaaaaaaaassssssssseeeeeeeeesssssssssbbbbbbbbbwwwww" +
			"wwww         hhhhhhhhhlllllllllNMMMMMMMM         www" +
			"wwwwwwmmmmmmmmmeeeeeeeeeaaaaaaaaatttttttttlllllllllc" +
			"cccccccceeeeeeeeelllllllll                  wwwwwwww" +
			"whhhhhhhhh         lllllllll         tttttttttffffff" +
			"fff         aaaaaaaaasssssssssnnnnnnnnnaaaaaaaaatttt" +
			"tttttaaaaaaaaaaaaaaaaaa         iiiiiiiiitttttttttii" +
			"iiiiiiiiiiiiiiiiooooooooo                  rrrrrrrrr",
		ptr: 99,
	}, {
		input: "AGCTTTTCATTCTGACTGCAACGGGCAATATGTCTCTGTGTGGATTAAAAAAAGAGTCTCTGAC" +
			"AGCAGCTTCTGAACTGGTTACCTGCCGTGAGTAAATTAAAATTTTATTGACTTAGGTCACTAAA" +
			"TACTTTAACCAATATAGGCATAGCGCACAGACAGATAAAAATTACAGAGTACACAACATCCATG" +
			"AAACGCATTAGCACCACCATTACCACCACCATCACCACCACCATCACCATTACCATTACCACAG" +
			"GTAACGGTGCGGGCTGACGCGTACAGGAAACACAGAAAAAAGCCCGCACCTGACAGTGCGGGCT" +
			"TTTTTTTCGACCAAAGGTAACGAGGTAACAACCATGCGAGTGTTGAAGTTCGGCGGTACATCAG" +
			"TGGCAAATGCAGAACGTTTTCTGCGGGTTGCCGATATTCTGGAAAGCAATGCCAGGCAGGGGCA",
		output: "TAGAATAAATGGAGACTCTAATACTCTACTGGAAACAGACCACAAACATACCTGGTCGTAGATT" +
			"CCCCCCATCCCTAAGAAACGAGTCCCCACATCATCACCTCGACTGGGCCGAGACTAAGCCCCCA" +
			"ACTGAACCCCCTTACGAAGGCGGAAGCTCCGCCCTGTAGAAAAGACGAATGCCAACCCCCGTAA" +
			"AAAAAAGAATAAAAGGCGAATAGCGCAATAGGGGAGCAATTTTCGTACTTATAGAGGAGTGATT" +
			"ATTCTTTCTAACACGGTGGACACTAGGCTATTTATTTGCGAAGATTTGGAACGGGCCCACAAAC" +
			"ACTGAGGGACGGATCGATATAGATGCTATCGGTGGGTGGTTTTATAATAAATAAGATATTGGTC" +
			"TTTCACTCCCCTGCAATCAGGCCGGCAGCGAATAAAAGACTTTGCATAGAGCTTTTACTGTTTC",
		ptr: 99,
	}}

	for i, v := range vectors {
		b, p := transformBlock([]byte(v.input))
		output := string(b)
		input := string(inverseBWT(b, p))

		if input != v.input {
			t.Errorf("test %d, input mismatch:\ngot  %v\nwant %v", i, ss(input), ss(v.input))
		}
		if output != v.output {
			t.Errorf("test %d, output mismatch:\ngot  %v\nwant %v", i, ss(output), ss(v.output))
		}
		if p != v.ptr {
			t.Errorf("test %d, pointer mismatch: got %d, want %d", i, p, v.ptr)
		}
	}
}

func TestBurrowsWheelerTransformCorpora(t *testing.T) {
	// Sizes on both sides of simpleSortThresh exercise both sorting paths.
	for _, name := range testutil.Corpora() {
		for _, n := range []int{1, 100, simpleSortThresh - 1, simpleSortThresh, 2e4} {
			input := testutil.MustGenerate(name, n)
			b, p, randomized := sortBlock(input, defaultWorkFactor)
			output := inverseBWT(b, p)
			if randomized {
				derandomize(output)
			}
			if !bytes.Equal(output, input) {
				t.Errorf("%s:%d, round trip mismatch", name, n)
			}
		}
	}
}

func TestBurrowsWheelerTransformRandomized(t *testing.T) {
	var vectors = []struct {
		input      []byte
		workFactor int
		randomized bool
	}{
		{input: []byte(strings.Repeat("ab", 1e4)), workFactor: 1, randomized: true},
		{input: []byte(strings.Repeat("xyz", 5e3)), workFactor: 1, randomized: true},
		{input: []byte(strings.Repeat("ab", 1e3)), workFactor: 1, randomized: false},
		{input: testutil.MustGenerate("random", 1e4), workFactor: 30, randomized: false},
	}

	for i, v := range vectors {
		b, p, randomized := sortBlock(v.input, v.workFactor)
		if randomized != v.randomized {
			t.Errorf("test %d, randomized mismatch: got %v, want %v", i, randomized, v.randomized)
		}
		output := inverseBWT(b, p)
		if randomized {
			derandomize(output)
		}
		if !bytes.Equal(output, v.input) {
			t.Errorf("test %d, round trip mismatch", i)
		}
	}
}
