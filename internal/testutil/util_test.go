// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package testutil

import (
	"bytes"
	"errors"
	"io"
	"io/ioutil"
	"testing"
)

func TestResizeData(t *testing.T) {
	var vectors = []struct {
		input  string
		n      int
		output string
	}{
		{"abc", -1, "abc"},
		{"abc", 2, "ab"},
		{"abc", 3, "abc"},
		{"abc", 7, "abc`cbc"},
	}

	for i, v := range vectors {
		if got := string(ResizeData([]byte(v.input), v.n)); got != v.output {
			t.Errorf("test %d, output mismatch: got %q, want %q", i, got, v.output)
		}
	}
}

func TestGenerate(t *testing.T) {
	for _, name := range Corpora() {
		for _, n := range []int{0, 1, 1000, 1 << 16} {
			b1 := MustGenerate(name, n)
			b2 := MustGenerate(name, n)
			if len(b1) != n {
				t.Errorf("%s:%d, length mismatch: got %d", name, n, len(b1))
			}
			if !bytes.Equal(b1, b2) {
				t.Errorf("%s:%d, output is not deterministic", name, n)
			}
		}
	}
	if _, err := Generate("unknown", 10); err == nil {
		t.Errorf("Generate(unknown): got nil error, want error")
	}
}

func TestBuggyReader(t *testing.T) {
	errBuggy := errors.New("buggy")
	br := &BuggyReader{R: bytes.NewReader(make([]byte, 100)), N: 10, Err: errBuggy}
	b, err := ioutil.ReadAll(br)
	if len(b) != 10 || err != errBuggy {
		t.Errorf("ReadAll: got (%d, %v), want (10, %v)", len(b), err, errBuggy)
	}

	bw := &BuggyWriter{W: ioutil.Discard, N: 10, Err: io.ErrShortWrite}
	n, err := bw.Write(make([]byte, 20))
	if n != 10 || err != io.ErrShortWrite {
		t.Errorf("Write: got (%d, %v), want (10, %v)", n, err, io.ErrShortWrite)
	}
}
