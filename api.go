// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package compress is a collection of compression libraries built around the
// Burrows-Wheeler block transform.
package compress

import (
	"bufio"
	"io"

	"github.com/bzcodec/compress/internal/errors"
)

// The Error interface identifies all compression related errors.
type Error interface {
	error
	CompressError()

	// IsInvalid reports whether the API was used incorrectly, such as an
	// out of range configuration value or use of a closed stream.
	IsInvalid() bool

	// IsCorrupted reports whether the input stream was malformed.
	IsCorrupted() bool

	// IsChecksum reports whether a stored checksum did not match the data.
	IsChecksum() bool

	// IsOverrun reports whether a block decoded to more data than its
	// declared size permits. Every overrun is also a corruption.
	IsOverrun() bool
}

var _ Error = errors.Error{}

// ByteReader is an interface accepted by all decompression Readers.
// It guarantees that the decompressor never reads more data than is necessary
// from the underlying io.Reader.
type ByteReader interface {
	io.Reader
	io.ByteReader
}

var _ ByteReader = (*bufio.Reader)(nil)
