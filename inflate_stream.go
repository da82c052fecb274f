// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import (
	"io"

	"github.com/klauspost/compress/flate"
)

// inflateWindowSize is the plaintext chunk size produced by one trip
// through the decoder before InflateStream checks whether it has
// caught up to the requested seek position.
const inflateWindowSize = 4096

// inflateState is one state of the InflateStream state machine.
type inflateState int

const (
	inflateUninitialized inflateState = iota
	inflateReadyToRead
	inflateReadyToInflate
	inflateReadyToCopy
	inflateCleanup
)

// InflateStream presents a seekable plaintext view over a raw-deflate
// compressed Stream. Because deflate decoders are forward-only, a
// backward seek re-opens the underlying stream and decodes from byte
// zero; a forward seek simply keeps decoding (and discarding) windows
// until the decoder catches up. This trades CPU for the ability to
// expose random access over a format that has none.
type InflateStream struct {
	src              Stream
	uncompressedSize int64

	decoder  io.ReadCloser
	resetter flate.Resetter

	state inflateState

	window       [inflateWindowSize]byte
	windowLen    int   // valid bytes currently in window
	windowPos    int   // next unread byte within window
	windowEnd    int64 // filePosition value once window is fully consumed
	filePosition int64 // plaintext bytes produced by the decoder so far
	seekPosition int64 // caller's logical read cursor
	streamEnded  bool  // decoder reported io.EOF
}

var _ Stream = (*InflateStream)(nil)

// NewInflateStream wraps src, a stream positioned over raw-deflate
// compressed bytes, exposing uncompressedSize bytes of plaintext.
func NewInflateStream(src Stream, uncompressedSize int64) *InflateStream {
	return &InflateStream{
		src:              src,
		uncompressedSize: uncompressedSize,
		state:            inflateUninitialized,
	}
}

// Size implements Stream.
func (s *InflateStream) Size() (int64, error) {
	return s.uncompressedSize, nil
}

// Close implements Stream.
func (s *InflateStream) Close() error {
	s.state = inflateUninitialized
	if s.decoder != nil {
		err := s.decoder.Close()
		s.decoder = nil
		s.resetter = nil
		return err
	}
	return nil
}

// Seek implements Stream. Seeking forward never rewinds the decoder;
// seeking backward forces a full re-decode from the start on the next
// Read.
func (s *InflateStream) Seek(offset int64, origin SeekOrigin) (int64, error) {
	var target int64
	switch origin {
	case SeekCurrent:
		target = s.seekPosition + offset
	case SeekEnd:
		target = s.uncompressedSize + offset
	default:
		target = offset
	}

	if target > s.uncompressedSize {
		target = s.uncompressedSize
	}
	if target < 0 {
		return 0, newErr(KindInvalidParameter, "seek before start of stream")
	}

	if target != s.seekPosition {
		s.seekPosition = target
		if s.seekPosition < s.filePosition {
			s.filePosition = 0
			s.cleanup()
		}
	}

	return s.seekPosition, nil
}

// Read implements Stream, driving the state machine until dst is full
// or the logical end of the uncompressed stream is reached.
func (s *InflateStream) Read(dst []byte) (int, error) {
	if s.seekPosition >= s.uncompressedSize {
		return 0, nil
	}

	read := 0
	for read < len(dst) {
		more, err := s.step(dst[read:], &read)
		if err != nil {
			return read, err
		}
		if !more {
			break
		}
	}

	return read, nil
}

// step executes exactly one state transition, appending any copied
// bytes to *read. It reports whether the caller should keep looping.
func (s *InflateStream) step(dst []byte, read *int) (bool, error) {
	switch s.state {
	case inflateUninitialized:
		return s.stepUninitialized()
	case inflateReadyToRead:
		return s.stepReadyToRead()
	case inflateReadyToInflate:
		return s.stepReadyToInflate()
	case inflateReadyToCopy:
		return s.stepReadyToCopy(dst, read)
	case inflateCleanup:
		s.cleanup()
		return false, nil
	default:
		return false, newErr(KindUnexpected, "invalid inflate state %d", s.state)
	}
}

func (s *InflateStream) stepUninitialized() (bool, error) {
	if _, err := s.src.Seek(0, SeekStart); err != nil {
		return false, err
	}

	if s.decoder == nil {
		fr := flate.NewReader(streamReaderAdapter{s.src})
		resetter, ok := fr.(flate.Resetter)
		if !ok {
			return false, newErr(KindUnexpected, "flate reader does not support Reset")
		}
		s.decoder = fr
		s.resetter = resetter
	} else if err := s.resetter.Reset(streamReaderAdapter{s.src}, nil); err != nil {
		return false, newErr(KindInflateCorrupt, "reset decoder: %v", err)
	}

	s.filePosition = 0
	s.windowLen = 0
	s.windowPos = 0
	s.windowEnd = 0
	s.streamEnded = false
	s.state = inflateReadyToRead
	return true, nil
}

// stepReadyToRead mirrors the underlying zlib-style state table
// one-for-one; with a self-buffering decoder there is nothing to
// prime here beyond routing into the inflate step.
func (s *InflateStream) stepReadyToRead() (bool, error) {
	s.state = inflateReadyToInflate
	return true, nil
}

func (s *InflateStream) stepReadyToInflate() (bool, error) {
	n, err := io.ReadFull(s.decoder, s.window[:])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, newErr(KindInflateCorrupt, "%v", err)
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		s.streamEnded = true
	}

	s.windowLen = n
	s.windowPos = 0
	s.windowEnd = s.filePosition + int64(n)
	s.state = inflateReadyToCopy
	return true, nil
}

func (s *InflateStream) stepReadyToCopy(dst []byte, read *int) (bool, error) {
	if s.filePosition >= s.uncompressedSize {
		if !s.streamEnded {
			return false, newErr(KindInflateCorrupt, "unexpected extra compressed data")
		}
		s.state = inflateCleanup
		return true, nil
	}

	if s.windowEnd <= s.seekPosition {
		s.filePosition = s.windowEnd
		if s.windowLen == 0 && s.streamEnded {
			return false, newErr(KindInflateCorrupt, "truncated compressed stream")
		}
		s.state = inflateReadyToRead
		return true, nil
	}

	skip := s.seekPosition - s.filePosition
	s.windowPos += int(skip)

	remaining := s.windowLen - s.windowPos
	if remaining <= 0 {
		s.filePosition = s.windowEnd
		s.state = inflateReadyToRead
		return true, nil
	}

	n := len(dst)
	if n > remaining {
		n = remaining
	}
	copy(dst[:n], s.window[s.windowPos:s.windowPos+n])

	*read += n
	s.seekPosition += int64(n)
	s.windowPos += n
	s.filePosition += int64(n)

	if s.filePosition == s.uncompressedSize {
		s.state = inflateCleanup
		return false, nil
	}

	return n > 0, nil
}

// cleanup returns the stream to the uninitialized state. The decoder is
// kept as is, so the next initialization can Reset it instead of
// allocating a new one.
func (s *InflateStream) cleanup() {
	s.state = inflateUninitialized
}

// streamReaderAdapter adapts this package's Stream to io.Reader for
// consumption by flate.NewReader.
type streamReaderAdapter struct {
	s Stream
}

func (a streamReaderAdapter) Read(p []byte) (int, error) {
	n, err := a.s.Read(p)
	if n == 0 && err == nil {
		return 0, io.EOF
	}
	return n, err
}
