// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"bytes"
	"encoding/hex"
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	reBin = regexp.MustCompile("^[01]{1,64}$")
	reDec = regexp.MustCompile("^D[0-9]+:[0-9]+$")
	reHex = regexp.MustCompile("^H[0-9]+:[0-9a-fA-F]{1,16}$")
	reRaw = regexp.MustCompile("^X:[0-9a-fA-F]+$")
	reQnt = regexp.MustCompile("[*][0-9]+$")
)

// DecodeBitGen decodes a BitGen formatted string.
//
// The BitGen format allows bit-streams to be generated from a series of tokens
// describing bits in the resulting string. It is meant for hand-scripting
// compressed streams in tests, with comments to record authorial intent.
// Bits are packed MSB-first, which is the order used by BZip2.
//
// Tokens are separated by white space of any kind. Any bytes on a line after
// the '#' character are ignored.
//
// A token of the pattern "[01]{1,64}" forms a bit-string (e.g. 11010).
// The left-most bit is written first.
//
// A token of the pattern "D[0-9]+:[0-9]+" or "H[0-9]+:[0-9a-fA-F]{1,16}"
// represents either a decimal value or a hexadecimal value, respectively.
// The first number is the bit-length (0 to 64) and the second is the value,
// which must fit in that many bits. The most-significant bit is written first.
//
// A token of the pattern "X:[0-9a-fA-F]+" represents literal bytes in
// hexadecimal format. It may only be used when the stream is byte-aligned.
//
// A trailing quantifier of the pattern "[*][0-9]+" repeats the token that
// many times.
//
// If the total bit-stream does not end on a byte-aligned edge, then the stream
// is padded up to the nearest byte with 0 bits.
//
// Example BitGen string:
//
//	X:425a6831                 # Stream header, 100k blocks
//	H48:177245385090           # End-of-stream magic
//	H32:00000000               # Combined CRC
//
// Generated output stream (in hexadecimal):
//
//	"425a683117724538509000000000"
func DecodeBitGen(str string) ([]byte, error) {
	var toks []string
	for _, s := range strings.Split(str, "\n") {
		if i := strings.IndexByte(s, '#'); i >= 0 {
			s = s[:i]
		}
		toks = append(toks, strings.Fields(s)...)
	}

	var bw bitBuffer
	for _, t := range toks {
		rep := 1
		if reQnt.MatchString(t) {
			i := strings.LastIndexByte(t, '*')
			n, err := strconv.Atoi(t[i+1:])
			if err != nil {
				return nil, errors.New("testutil: invalid quantified token: " + t)
			}
			t, rep = t[:i], n
		}

		switch {
		case reBin.MatchString(t):
			var v uint64
			for _, b := range t {
				v = v<<1 | uint64(b-'0')
			}
			for i := 0; i < rep; i++ {
				bw.WriteBits64(v, uint(len(t)))
			}
		case reDec.MatchString(t) || reHex.MatchString(t):
			i := strings.IndexByte(t, ':')
			base := 10
			if t[0] == 'H' {
				base = 16
			}
			n, err1 := strconv.Atoi(t[1:i])
			v, err2 := strconv.ParseUint(t[i+1:], base, 64)
			if err1 != nil || err2 != nil || n > 64 {
				return nil, errors.New("testutil: invalid numeric token: " + t)
			}
			if n < 64 && v&((1<<uint(n))-1) != v {
				return nil, errors.New("testutil: integer overflow on token: " + t)
			}
			for i := 0; i < rep; i++ {
				bw.WriteBits64(v, uint(n))
			}
		case reRaw.MatchString(t):
			b, err := hex.DecodeString(t[2:])
			if err != nil {
				return nil, errors.New("testutil: invalid raw bytes token: " + t)
			}
			if _, err := bw.Write(bytes.Repeat(b, rep)); err != nil {
				return nil, err
			}
		default:
			return nil, errors.New("testutil: invalid token: " + t)
		}
	}
	return bw.Bytes(), nil
}

// bitBuffer is a minimal MSB-first bit writer.
type bitBuffer struct {
	b []byte
	m byte // Mask of the next bit to set in the last byte; 0 when aligned
}

func (b *bitBuffer) Write(buf []byte) (int, error) {
	if b.m != 0x00 {
		return 0, errors.New("testutil: unaligned write")
	}
	b.b = append(b.b, buf...)
	return len(buf), nil
}

func (b *bitBuffer) WriteBits64(v uint64, n uint) {
	for i := n; i > 0; i-- {
		if b.m == 0x00 {
			b.m = 0x80
			b.b = append(b.b, 0x00)
		}
		if v&(1<<(i-1)) != 0 {
			b.b[len(b.b)-1] |= b.m
		}
		b.m >>= 1
	}
}

func (b *bitBuffer) Bytes() []byte {
	return b.b
}
