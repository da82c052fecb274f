// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import (
	"encoding/binary"
	"io"
)

const (
	eocdFixedSize      = 22
	eocdMaxCommentSize = 0xFFFF
	eocdSearchWindow   = eocdFixedSize + eocdMaxCommentSize
	zip64LocatorSize   = 20
	zip64EOCDFixedSize = 56
	cdfhFixedSize      = 46
	lfhFixedSize       = 30
	zip64ExtraFieldTag = 0x0001
)

// endOfCentralDirectory is the parsed fixed-size portion of the EOCD
// record, widened with zip64 fields when present.
type endOfCentralDirectory struct {
	totalEntries uint64
	cdSize       uint64
	cdOffset     uint64
	eocdStartPos int64
}

// parseZipCentralDirectory locates the end of central directory record,
// follows the zip64 locator when present, and parses every central
// directory file header into a ZipEntry.
func parseZipCentralDirectory(ra io.ReaderAt, size int64) ([]ZipEntry, error) {
	eocd, err := findEndOfCentralDirectory(ra, size)
	if err != nil {
		return nil, err
	}

	if eocd.totalEntries == 0 {
		return nil, nil
	}

	entries := make([]ZipEntry, 0, eocd.totalEntries)
	off := int64(eocd.cdOffset)
	cdEnd := off + int64(eocd.cdSize)
	if cdEnd > eocd.eocdStartPos || off < 0 {
		return nil, newErr(KindZipMalformed, "central directory bounds out of range")
	}

	for i := uint64(0); i < eocd.totalEntries; i++ {
		entry, n, err := parseCentralDirectoryRecord(ra, off)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
		off += n
	}

	return entries, nil
}

// findEndOfCentralDirectory scans backward from the end of the stream
// for the EOCD signature, then resolves zip64 extensions when the
// fixed-size fields are saturated.
func findEndOfCentralDirectory(ra io.ReaderAt, size int64) (endOfCentralDirectory, error) {
	windowSize := eocdSearchWindow
	if int64(windowSize) > size {
		windowSize = int(size)
	}

	buf := make([]byte, windowSize)
	start := size - int64(windowSize)
	if _, err := ra.ReadAt(buf, start); err != nil && err != io.EOF {
		return endOfCentralDirectory{}, newErr(KindFileRead, "read eocd window: %v", err)
	}

	sigPos := -1
	for i := len(buf) - eocdFixedSize; i >= 0; i-- {
		if binary.LittleEndian.Uint32(buf[i:i+4]) == sigEndOfCentralDirectory {
			sigPos = i
			break
		}
	}
	if sigPos < 0 {
		return endOfCentralDirectory{}, newErr(KindZipMalformed, "end of central directory record not found")
	}

	rec := buf[sigPos:]
	eocdStart := start + int64(sigPos)

	totalEntries := uint64(binary.LittleEndian.Uint16(rec[10:12]))
	cdSize := uint64(binary.LittleEndian.Uint32(rec[12:16]))
	cdOffset := uint64(binary.LittleEndian.Uint32(rec[16:20]))

	needsZip64 := totalEntries == 0xFFFF || cdSize == zip64SentinelU32 || cdOffset == zip64SentinelU32
	if !needsZip64 {
		return endOfCentralDirectory{totalEntries: totalEntries, cdSize: cdSize, cdOffset: cdOffset, eocdStartPos: eocdStart}, nil
	}

	return resolveZip64EndOfCentralDirectory(ra, eocdStart)
}

// resolveZip64EndOfCentralDirectory reads the zip64 EOCD locator
// immediately preceding the ordinary EOCD record, then the zip64 EOCD
// record it points to.
func resolveZip64EndOfCentralDirectory(ra io.ReaderAt, eocdStart int64) (endOfCentralDirectory, error) {
	locatorStart := eocdStart - zip64LocatorSize
	if locatorStart < 0 {
		return endOfCentralDirectory{}, newErr(KindZipMalformed, "zip64 locator missing")
	}

	loc := make([]byte, zip64LocatorSize)
	if _, err := ra.ReadAt(loc, locatorStart); err != nil {
		return endOfCentralDirectory{}, newErr(KindFileRead, "read zip64 locator: %v", err)
	}
	if binary.LittleEndian.Uint32(loc[0:4]) != sigZip64EOCDLocator {
		return endOfCentralDirectory{}, newErr(KindZipMalformed, "zip64 locator signature mismatch")
	}

	recordOffset := int64(binary.LittleEndian.Uint64(loc[8:16]))

	rec := make([]byte, zip64EOCDFixedSize)
	if _, err := ra.ReadAt(rec, recordOffset); err != nil {
		return endOfCentralDirectory{}, newErr(KindFileRead, "read zip64 eocd record: %v", err)
	}
	if binary.LittleEndian.Uint32(rec[0:4]) != sigZip64EOCDRecord {
		return endOfCentralDirectory{}, newErr(KindZipMalformed, "zip64 eocd record signature mismatch")
	}

	totalEntries := binary.LittleEndian.Uint64(rec[32:40])
	cdSize := binary.LittleEndian.Uint64(rec[40:48])
	cdOffset := binary.LittleEndian.Uint64(rec[48:56])

	return endOfCentralDirectory{
		totalEntries: totalEntries,
		cdSize:       cdSize,
		cdOffset:     cdOffset,
		eocdStartPos: recordOffset,
	}, nil
}

// parseCentralDirectoryRecord parses one central directory file header
// starting at off, returning the decoded entry and the record's total
// byte length (fixed part plus name, extra and comment fields).
func parseCentralDirectoryRecord(ra io.ReaderAt, off int64) (ZipEntry, int64, error) {
	fixed := make([]byte, cdfhFixedSize)
	if _, err := ra.ReadAt(fixed, off); err != nil {
		return ZipEntry{}, 0, newErr(KindFileRead, "read central directory header: %v", err)
	}
	if binary.LittleEndian.Uint32(fixed[0:4]) != sigCentralFileHeader {
		return ZipEntry{}, 0, newErr(KindZipMalformed, "central directory header signature mismatch at %d", off)
	}

	gpFlags := binary.LittleEndian.Uint16(fixed[8:10])
	if gpFlags&gpbfUnsupportedMask != 0 {
		return ZipEntry{}, 0, newErr(KindZipMalformed, "unsupported general purpose flag(s) 0x%04x", gpFlags)
	}

	compression := CompressionMethod(binary.LittleEndian.Uint16(fixed[10:12]))
	crc32 := binary.LittleEndian.Uint32(fixed[16:20])
	compressedSize := uint64(binary.LittleEndian.Uint32(fixed[20:24]))
	uncompressedSize := uint64(binary.LittleEndian.Uint32(fixed[24:28]))
	nameLen := binary.LittleEndian.Uint16(fixed[28:30])
	extraLen := binary.LittleEndian.Uint16(fixed[30:32])
	commentLen := binary.LittleEndian.Uint16(fixed[32:34])
	localHeaderOffset := uint64(binary.LittleEndian.Uint32(fixed[42:46]))

	if nameLen == 0 {
		return ZipEntry{}, 0, newErr(KindZipMalformed, "central directory entry at %d has empty name", off)
	}

	tail := make([]byte, int(nameLen)+int(extraLen))
	if _, err := ra.ReadAt(tail, off+cdfhFixedSize); err != nil {
		return ZipEntry{}, 0, newErr(KindFileRead, "read central directory name/extra: %v", err)
	}

	nameBytes := tail[:nameLen]
	extra := tail[nameLen:]

	need64Compressed := compressedSize == zip64SentinelU32
	need64Uncompressed := uncompressedSize == zip64SentinelU32
	need64Offset := localHeaderOffset == zip64SentinelU32

	if need64Compressed || need64Uncompressed || need64Offset {
		z, err := parseZip64ExtraField(extra)
		if err != nil {
			return ZipEntry{}, 0, err
		}
		if need64Uncompressed {
			uncompressedSize, z = z[0], z[1:]
		}
		if need64Compressed {
			compressedSize, z = z[0], z[1:]
		}
		if need64Offset {
			localHeaderOffset = z[0]
		}
	}

	name := string(nameBytes)
	if gpFlags&gpbfUTF8 == 0 {
		name = decodeCP437(nameBytes)
	}

	entry := ZipEntry{
		Name:                name,
		Compression:         compression,
		CRC32:               crc32,
		CompressedSize:      int64(compressedSize),
		UncompressedSize:    int64(uncompressedSize),
		LocalHeaderOffset:   int64(localHeaderOffset),
		generalPurposeFlags: gpFlags,
	}

	recordLen := int64(cdfhFixedSize) + int64(nameLen) + int64(extraLen) + int64(commentLen)
	return entry, recordLen, nil
}

// parseZip64ExtraField locates the zip64 extended information extra
// field block and returns uncompressed size, compressed size and local
// header offset, in that fixed APPNOTE order. Only the fields whose
// 32-bit counterpart was saturated are populated by the caller, but
// this helper always parses all three that are present, letting the
// caller pick off the ones it needs in order.
func parseZip64ExtraField(extra []byte) ([]uint64, error) {
	for len(extra) >= 4 {
		tag := binary.LittleEndian.Uint16(extra[0:2])
		size := binary.LittleEndian.Uint16(extra[2:4])
		if len(extra) < 4+int(size) {
			return nil, newErr(KindZipMalformed, "truncated extra field block")
		}
		block := extra[4 : 4+size]
		if tag == zip64ExtraFieldTag {
			var vals []uint64
			for len(block) >= 8 {
				vals = append(vals, binary.LittleEndian.Uint64(block[0:8]))
				block = block[8:]
			}
			if len(vals) == 0 {
				return nil, newErr(KindZipMalformed, "empty zip64 extended information block")
			}
			return vals, nil
		}
		extra = extra[4+size:]
	}
	return nil, newErr(KindZipMalformed, "zip64 extended information block not found")
}

// readLocalFileHeaderDataOffset reads the local file header at off and
// returns the absolute offset of the first byte of entry payload data,
// immediately following the (possibly re-duplicated) name and extra
// fields.
func readLocalFileHeaderDataOffset(ra io.ReaderAt, off int64) (int64, error) {
	fixed := make([]byte, lfhFixedSize)
	if _, err := ra.ReadAt(fixed, off); err != nil {
		return 0, newErr(KindFileRead, "read local file header: %v", err)
	}
	if binary.LittleEndian.Uint32(fixed[0:4]) != sigLocalFileHeader {
		return 0, newErr(KindZipMalformed, "local file header signature mismatch at %d", off)
	}

	nameLen := binary.LittleEndian.Uint16(fixed[26:28])
	extraLen := binary.LittleEndian.Uint16(fixed[28:30])

	return off + int64(lfhFixedSize) + int64(nameLen) + int64(extraLen), nil
}
