// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import (
	"io"
	"os"
)

// SeekOrigin identifies the reference point for a Stream.Seek call.
type SeekOrigin int

// Seek origins, matching io.Seeker's conventions.
const (
	SeekStart   SeekOrigin = iota // offset is absolute
	SeekCurrent                   // offset is relative to the current position
	SeekEnd                       // offset is relative to the end
)

// Stream is the capability set every byte stream in this package exposes:
// read, seek (absolute/relative/end), and size. Reads past end of stream
// return 0 bytes without error. A short read is only legal at end of
// stream. Implementations must report failure with a typed *Error.
type Stream interface {
	io.Closer

	// Read fills dst with up to len(dst) bytes, returning the number of
	// bytes actually read.
	Read(dst []byte) (int, error)

	// Seek moves the stream's cursor and returns the new absolute
	// position.
	Seek(offset int64, origin SeekOrigin) (int64, error)

	// Size reports the stream's total logical length in bytes.
	Size() (int64, error)
}

// Named is an optional capability for streams bound to a logical file
// name. Callers query it with a single type assertion at the package
// layer; no Stream implementation queries it of itself, per the
// polymorphism-over-capabilities design note.
type Named interface {
	Name() string
}

// CompressedSizer is an optional capability exposed by streams that sit
// directly over compressed archive data.
type CompressedSizer interface {
	CompressedSize() (int64, error)
}

// FileMode selects how a FileStream opens its underlying OS file.
type FileMode int

// File open modes.
const (
	FileModeRead FileMode = iota
	FileModeWrite
	FileModeAppend
	FileModeReadUpdate
	FileModeWriteUpdate
	FileModeAppendUpdate
)

// FileStream binds a filesystem path to the Stream contract. It is the
// only Stream implementation that owns an *os.File directly; every other
// stream in this package is a view over one.
type FileStream struct {
	f    *os.File
	path string
}

var _ Stream = (*FileStream)(nil)

// OpenFileStream opens path in the given mode and returns a FileStream.
func OpenFileStream(path string, mode FileMode) (*FileStream, error) {
	flag, perm := fileStreamFlags(mode)
	f, err := os.OpenFile(path, flag, perm)
	if err != nil {
		return nil, newErr(KindFileOpen, "open %s: %v", path, err)
	}
	return &FileStream{f: f, path: path}, nil
}

func fileStreamFlags(mode FileMode) (int, os.FileMode) {
	switch mode {
	case FileModeWrite:
		return os.O_WRONLY | os.O_CREATE | os.O_TRUNC, 0o644
	case FileModeAppend:
		return os.O_WRONLY | os.O_CREATE | os.O_APPEND, 0o644
	case FileModeReadUpdate:
		return os.O_RDWR, 0
	case FileModeWriteUpdate:
		return os.O_RDWR | os.O_CREATE | os.O_TRUNC, 0o644
	case FileModeAppendUpdate:
		return os.O_RDWR | os.O_CREATE | os.O_APPEND, 0o644
	default:
		return os.O_RDONLY, 0
	}
}

// Read implements Stream.
func (s *FileStream) Read(dst []byte) (int, error) {
	n, err := s.f.Read(dst)
	if err != nil && err != io.EOF {
		return n, newErr(KindFileRead, "%s: %v", s.path, err)
	}
	return n, nil
}

// Seek implements Stream.
func (s *FileStream) Seek(offset int64, origin SeekOrigin) (int64, error) {
	pos, err := s.f.Seek(offset, seekWhence(origin))
	if err != nil {
		return 0, newErr(KindFileSeek, "%s: %v", s.path, err)
	}
	return pos, nil
}

// Size implements Stream.
func (s *FileStream) Size() (int64, error) {
	info, err := s.f.Stat()
	if err != nil {
		return 0, newErr(KindFileRead, "stat %s: %v", s.path, err)
	}
	return info.Size(), nil
}

// Name implements Named.
func (s *FileStream) Name() string { return s.path }

// Close implements Stream.
func (s *FileStream) Close() error {
	return s.f.Close()
}

// Write writes to the underlying file; only valid for write-capable modes.
func (s *FileStream) Write(src []byte) (int, error) {
	n, err := s.f.Write(src)
	if err != nil {
		return n, newErr(KindFileWrite, "%s: %v", s.path, err)
	}
	return n, nil
}

func seekWhence(origin SeekOrigin) int {
	switch origin {
	case SeekCurrent:
		return io.SeekCurrent
	case SeekEnd:
		return io.SeekEnd
	default:
		return io.SeekStart
	}
}

// nopCloser adapts an io.Reader that needs no cleanup into an io.ReadCloser.
// Mirrors the teacher's entry_reader.go helper of the same name.
type nopCloser struct {
	io.Reader
}

func (nopCloser) Close() error { return nil }
