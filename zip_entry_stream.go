// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import "io"

// ZipFileStream is a bounded, seekable view over one ZIP entry's
// (possibly compressed) payload bytes, starting immediately after the
// entry's local file header and ending at its stored compressed size.
// It never inflates; callers that need plaintext wrap it in an
// InflateStream.
type ZipFileStream struct {
	sr   *io.SectionReader
	name string
	size int64
}

var (
	_ Stream          = (*ZipFileStream)(nil)
	_ Named           = (*ZipFileStream)(nil)
	_ CompressedSizer = (*ZipFileStream)(nil)
)

// newZipFileStream resolves entry's local file header to find the exact
// start of its payload, then returns a stream bounded to
// entry.CompressedSize bytes.
func newZipFileStream(ra io.ReaderAt, entry ZipEntry) (*ZipFileStream, error) {
	dataStart, err := readLocalFileHeaderDataOffset(ra, entry.LocalHeaderOffset)
	if err != nil {
		return nil, err
	}

	return &ZipFileStream{
		sr:   io.NewSectionReader(ra, dataStart, entry.CompressedSize),
		name: entry.Name,
		size: entry.CompressedSize,
	}, nil
}

// Read implements Stream.
func (z *ZipFileStream) Read(dst []byte) (int, error) {
	n, err := z.sr.Read(dst)
	if err != nil && err != io.EOF {
		return n, newErr(KindFileRead, "%s: %v", z.name, err)
	}
	return n, nil
}

// Seek implements Stream.
func (z *ZipFileStream) Seek(offset int64, origin SeekOrigin) (int64, error) {
	pos, err := z.sr.Seek(offset, seekWhence(origin))
	if err != nil {
		return 0, newErr(KindFileSeek, "%s: %v", z.name, err)
	}
	return pos, nil
}

// Size implements Stream. It reports the entry's compressed size, since
// this stream never decompresses.
func (z *ZipFileStream) Size() (int64, error) {
	return z.size, nil
}

// CompressedSize implements CompressedSizer.
func (z *ZipFileStream) CompressedSize() (int64, error) {
	return z.size, nil
}

// Name implements Named.
func (z *ZipFileStream) Name() string {
	return z.name
}

// Close implements Stream. ZipFileStream borrows the package's
// underlying file handle and owns nothing of its own to release.
func (z *ZipFileStream) Close() error {
	return nil
}
