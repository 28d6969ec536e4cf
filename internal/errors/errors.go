// Copyright 2016, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package errors implements functions to manipulate compression errors.
//
// In idiomatic Go, it is an anti-pattern to use panics as a form of error
// reporting in the API. Instead, the expected way to transmit errors is by
// returning an error value. Unfortunately, the checking of "err != nil" in
// tight loops commonly found in compression causes non-negligible performance
// degradation. While this may not be idiomatic, the internal packages of this
// repository rely on panics as a normal means to convey errors. In order to
// ensure that these panics do not leak across the public API, the public
// packages must recover from these panics and present an error value.
//
// The Panic and Recover functions in this package provide a safe way to
// recover from errors only generated from within this repository.
//
// Example usage:
//
//	func Foo() (err error) {
//		defer errors.Recover(&err)
//
//		if rand.Intn(2) == 0 {
//			// Unexpected panics will not be caught by Recover.
//			io.Closer(nil).Close()
//		} else {
//			// Errors thrown by Panic will be caught by Recover.
//			errors.Panic(errors.New("whoopsie"))
//		}
//	}
package errors

import "strings"

const (
	// Unknown indicates that there is no classification for this error.
	Unknown = iota

	// Internal indicates that this error is due to an internal bug.
	// Users should file a issue report if this type of error is encountered.
	Internal

	// Invalid indicates that this error is due to the user misusing the API
	// and is indicative of a bug on the user's part.
	Invalid

	// Closed indicates that the stream was used after being closed.
	Closed

	// Corrupted indicates that the input stream is malformed.
	Corrupted

	// Checksum indicates that a stored checksum disagrees with the data it
	// protects.
	Checksum

	// Overrun indicates that a block expanded past its declared size.
	Overrun
)

// Error is the wrapper type for errors specific to this library.
type Error struct {
	Code int
	Pkg  string
	Msg  string
}

func (e Error) Error() string {
	var ss []string
	for _, s := range []string{e.Pkg, e.Msg} {
		if s != "" {
			ss = append(ss, s)
		}
	}
	return strings.Join(ss, ": ")
}

func (e Error) CompressError()    {}
func (e Error) IsInternal() bool  { return e.Code == Internal }
func (e Error) IsInvalid() bool   { return e.Code == Invalid || e.Code == Closed }
func (e Error) IsClosed() bool    { return e.Code == Closed }
func (e Error) IsCorrupted() bool { return e.Code == Corrupted || e.Code == Overrun }
func (e Error) IsChecksum() bool  { return e.Code == Checksum }
func (e Error) IsOverrun() bool   { return e.Code == Overrun }

// IsInternal reports whether err was caused by a bug in this library.
func IsInternal(err error) bool { return isCode(err, Internal) }

// IsInvalid reports whether err was caused by misuse of the API.
func IsInvalid(err error) bool {
	return isCode(err, Invalid) || isCode(err, Closed)
}

// IsClosed reports whether err was caused by using a closed stream.
func IsClosed(err error) bool { return isCode(err, Closed) }

// IsCorrupted reports whether err was caused by a malformed stream.
func IsCorrupted(err error) bool {
	return isCode(err, Corrupted) || isCode(err, Overrun)
}

// IsChecksum reports whether err was caused by a checksum mismatch.
func IsChecksum(err error) bool { return isCode(err, Checksum) }

// IsOverrun reports whether err was caused by a block overrun.
func IsOverrun(err error) bool { return isCode(err, Overrun) }

func isCode(err error, code int) bool {
	if cerr, ok := err.(Error); ok && cerr.Code == code {
		return true
	}
	return false
}

// errWrap is used by Panic and Recover to ensure that only errors raised by
// Panic are recovered by Recover.
type errWrap struct{ e *error }

// Recover recovers from panics raised by Panic. Any other panic, including
// runtime errors from bugs in this library, is propagated unchanged.
func Recover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case errWrap:
		*err = *ex.e
	default:
		panic(ex)
	}
}

// Panic panics with err, which Recover will later catch.
func Panic(err error) {
	panic(errWrap{&err})
}
