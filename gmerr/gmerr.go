// Package gmerr defines the sentinel error values shared across gomime's
// stream, filter and codec layers. No component in this module panics or
// uses exceptions for control flow; every failure is a value.
package gmerr

import "errors"

var (
	// ErrBadDescriptor is returned by a Fs-backed stream when the
	// underlying file descriptor is closed or invalid.
	ErrBadDescriptor = errors.New("gomime: bad descriptor")

	// ErrInvalidSeek is returned when a seek would move the position
	// outside of what the backend can represent (e.g. negative absolute
	// offset).
	ErrInvalidSeek = errors.New("gomime: invalid seek")

	// ErrIO wraps an underlying I/O failure that isn't otherwise
	// classified.
	ErrIO = errors.New("gomime: I/O error")

	// ErrNotSeekable is returned by Seek/Reset on a stream backed by a
	// pipe, socket, or other non-seekable descriptor.
	ErrNotSeekable = errors.New("gomime: stream is not seekable")

	// ErrWouldBlock signals a non-blocking read or write that cannot make
	// progress right now. No stream backend in this module returns it.
	ErrWouldBlock = errors.New("gomime: operation would block")

	// ErrClosed is returned by Read and Write on a File, Fs, Memory, Mmap
	// or Pipe stream that has already been closed; other methods do not
	// check for it.
	ErrClosed = errors.New("gomime: stream closed")
)
