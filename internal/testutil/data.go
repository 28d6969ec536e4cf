// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"errors"
	"sort"
)

var generators = map[string]func(r *Rand, n int) []byte{
	"digits":  genDigits,
	"random":  genRandom,
	"repeats": genRepeats,
	"text":    genText,
	"zeros":   genZeros,
}

// Corpora returns the names of the synthetic inputs known to Generate.
func Corpora() []string {
	var names []string
	for name := range generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Generate returns n bytes of the named synthetic corpus.
// The output depends only on name and n.
func Generate(name string, n int) ([]byte, error) {
	gen, ok := generators[name]
	if !ok {
		return nil, errors.New("testutil: unknown corpus: " + name)
	}
	return gen(NewRand(len(name)), n), nil
}

// MustGenerate must generate the named corpus or else panics.
func MustGenerate(name string, n int) []byte {
	b, err := Generate(name, n)
	if err != nil {
		panic(err)
	}
	return b
}

func genZeros(r *Rand, n int) []byte { return make([]byte, n) }

func genRandom(r *Rand, n int) []byte { return r.Bytes(n) }

func genDigits(r *Rand, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = '0' + byte(r.Intn(10))
	}
	return b
}

var words = []string{
	"the", "of", "and", "a", "to", "in", "is", "was", "that", "it", "he",
	"for", "as", "with", "his", "on", "be", "at", "by", "had", "river",
	"boat", "pilot", "steamboat", "water", "town", "island", "night", "said",
	"would", "could", "there", "when", "upon", "about", "which", "raft",
}

// genText produces word salad with sentence punctuation and line breaks.
func genText(r *Rand, n int) []byte {
	var b []byte
	var col int
	for len(b) < n {
		w := words[r.Intn(len(words))]
		if r.Intn(12) == 0 {
			w = string(w[0]-'a'+'A') + w[1:]
		}
		b = append(b, w...)
		col += len(w)
		switch p := r.Intn(20); {
		case p == 0:
			b = append(b, ". "...)
		case p == 1:
			b = append(b, ", "...)
		case col > 70:
			b = append(b, '\n')
			col = 0
		default:
			b = append(b, ' ')
		}
	}
	return b[:n]
}

// genRepeats produces data where most bytes are copies from some distance
// back, with the source data being mostly random.
func genRepeats(r *Rand, n int) []byte {
	var b []byte

	randLen := func() int {
		switch p := r.Float32(); {
		case p <= 0.15:
			return 4 + r.Intn(4)
		case p <= 0.30:
			return 8 + r.Intn(8)
		case p <= 0.45:
			return 16 + r.Intn(16)
		case p <= 0.60:
			return 32 + r.Intn(32)
		case p <= 0.75:
			return 64 + r.Intn(64)
		case p <= 0.90:
			return 128 + r.Intn(128)
		default:
			return 256 + r.Intn(256)
		}
	}
	randDist := func() (d int) {
		for d == 0 || d > len(b) {
			switch p := r.Float32(); {
			case p <= 0.2:
				d = 1 + r.Intn(4)
			case p <= 0.4:
				d = 4 + r.Intn(12)
			case p <= 0.6:
				d = 16 + r.Intn(112)
			case p <= 0.8:
				d = 128 + r.Intn(1920)
			default:
				d = 2048 + r.Intn(30720)
			}
		}
		return d
	}
	writeRand := func(l int) { b = append(b, r.Bytes(l)...) }
	writeCopy := func(d, l int) {
		for i := 0; i < l; i++ {
			b = append(b, b[len(b)-d])
		}
	}

	writeRand(randLen())
	for len(b) < n {
		if r.Float32() <= 0.1 {
			writeRand(randLen())
		} else {
			writeCopy(randDist(), randLen())
		}
	}
	return b[:n]
}
