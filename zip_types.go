// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

// ZIP record signatures, little-endian 4-byte magic numbers.
const (
	sigLocalFileHeader       uint32 = 0x04034b50
	sigDataDescriptor        uint32 = 0x08074b50
	sigCentralFileHeader     uint32 = 0x02014b50
	sigZip64EOCDRecord       uint32 = 0x06064b50
	sigZip64EOCDLocator      uint32 = 0x07064b50
	sigEndOfCentralDirectory uint32 = 0x06054b50
)

// CompressionMethod identifies a ZIP entry's stored compression scheme.
// MSIX/AppX containers only ever use the two values below.
type CompressionMethod uint16

const (
	CompressionStore   CompressionMethod = 0
	CompressionDeflate CompressionMethod = 8
)

// General purpose bit flags relevant to this reader.
const (
	gpbfUTF8 uint16 = 1 << 11

	// gpbfUnsupportedMask is the set of flag bits the Windows App Packaging
	// SDK refuses to accept on an AppX/MSIX-bearing ZIP container:
	// encryption, patching, strong encryption, the three reserved bits
	// 7-9 and central directory encryption (bit 13).
	gpbfUnsupportedMask uint16 = (1 << 0) | (1 << 5) | (1 << 6) | (1 << 7) | (1 << 8) | (1 << 9) | (1 << 13)
)

// zip64SentinelU32 marks a central-directory field that overflowed into
// the zip64 extra field.
const zip64SentinelU32 = 0xFFFFFFFF

// ZipEntry is the parsed, immutable representation of one central
// directory record. Offsets and sizes are always widened to 64 bits
// regardless of whether the record carried a zip64 extra field.
type ZipEntry struct {
	// Name is the entry's path as recorded in the archive, decoded per
	// the UTF-8 general purpose bit.
	Name string

	// Compression is the entry's compression method.
	Compression CompressionMethod

	// CRC32 is the stored checksum of the uncompressed data.
	CRC32 uint32

	// CompressedSize is the number of bytes occupied by the entry's
	// (possibly compressed) payload.
	CompressedSize int64

	// UncompressedSize is the entry's plaintext size.
	UncompressedSize int64

	// LocalHeaderOffset is the absolute file offset of the entry's local
	// file header.
	LocalHeaderOffset int64

	// generalPurposeFlags carries the raw bits for internal use (UTF-8
	// filename detection, unsupported-feature rejection).
	generalPurposeFlags uint16
}
