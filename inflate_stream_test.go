// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import (
	"bytes"
	"compress/flate"
	"io"
	"testing"
)

// memStream is a Stream over an in-memory byte slice, used to drive
// InflateStream without touching the filesystem.
type memStream struct {
	data []byte
	pos  int64
}

func newMemStream(data []byte) *memStream { return &memStream{data: data} }

func (s *memStream) Read(dst []byte) (int, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, nil
	}
	n := copy(dst, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *memStream) Seek(offset int64, origin SeekOrigin) (int64, error) {
	var base int64
	switch origin {
	case SeekCurrent:
		base = s.pos
	case SeekEnd:
		base = int64(len(s.data))
	default:
		base = 0
	}
	s.pos = base + offset
	return s.pos, nil
}

func (s *memStream) Size() (int64, error) { return int64(len(s.data)), nil }
func (s *memStream) Close() error         { return nil }

func deflateRaw(t *testing.T, plain []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestSpeed)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(plain); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestInflateStreamSequentialRead(t *testing.T) {
	plain := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 500)
	compressed := deflateRaw(t, plain)

	is := NewInflateStream(newMemStream(compressed), int64(len(plain)))
	defer func() { _ = is.Close() }()

	got, err := io.ReadAll(inflateStreamReader{is})
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, plain) {
		t.Fatalf("decoded %d bytes, want %d (mismatch)", len(got), len(plain))
	}
}

func TestInflateStreamBackwardSeekReDecodes(t *testing.T) {
	plain := bytes.Repeat([]byte("abcdefghijklmnopqrstuvwxyz0123456789"), 400)
	compressed := deflateRaw(t, plain)

	is := NewInflateStream(newMemStream(compressed), int64(len(plain)))
	defer func() { _ = is.Close() }()

	buf := make([]byte, 100)
	if _, err := readFull(is, buf); err != nil {
		t.Fatalf("initial read: %v", err)
	}
	if !bytes.Equal(buf, plain[:100]) {
		t.Fatal("initial read content mismatch")
	}

	if _, err := is.Seek(10_000, SeekStart); err != nil {
		t.Fatalf("seek forward: %v", err)
	}
	if _, err := readFull(is, buf); err != nil {
		t.Fatalf("forward read: %v", err)
	}
	if !bytes.Equal(buf, plain[10_000:10_100]) {
		t.Fatal("forward-seek read content mismatch")
	}

	if _, err := is.Seek(50, SeekStart); err != nil {
		t.Fatalf("seek backward: %v", err)
	}
	if _, err := readFull(is, buf); err != nil {
		t.Fatalf("backward read: %v", err)
	}
	if !bytes.Equal(buf, plain[50:150]) {
		t.Fatal("backward-seek read content mismatch")
	}
}

func TestInflateStreamSize(t *testing.T) {
	plain := []byte("small payload")
	compressed := deflateRaw(t, plain)

	is := NewInflateStream(newMemStream(compressed), int64(len(plain)))
	defer func() { _ = is.Close() }()

	size, err := is.Size()
	if err != nil {
		t.Fatalf("Size: %v", err)
	}
	if size != int64(len(plain)) {
		t.Fatalf("Size() = %d, want %d", size, len(plain))
	}
}

// readFull repeatedly calls s.Read until buf is full, respecting this
// package's (0, nil) end-of-stream convention.
func readFull(s Stream, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := s.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, io.ErrUnexpectedEOF
		}
	}
	return total, nil
}

// inflateStreamReader adapts a Stream to io.Reader for io.ReadAll,
// translating the (0, nil) end-of-stream convention into io.EOF.
type inflateStreamReader struct {
	s Stream
}

func (r inflateStreamReader) Read(dst []byte) (int, error) {
	n, err := r.s.Read(dst)
	if err != nil {
		return n, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}
