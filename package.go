// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import (
	"io"
	"os"
	"sync"
)

// Package provides read-only access to a parsed MSIX/AppX container:
// its ZIP central directory and the AppxBlockMap.xml it validates
// every payload file's content against.
type Package struct {
	// ra is the underlying random-access reader used for payload reads.
	ra io.ReaderAt
	// file is set when Package owns an *os.File opened via Open.
	file *os.File
	// size is the total container size in bytes.
	size int64
	// entries indexes every ZIP central directory record by name.
	entries map[string]ZipEntry
	// blockMap is the parsed AppxBlockMap.xml.
	blockMap *BlockMap

	mu     sync.Mutex
	closed bool
}

// Open opens the MSIX/AppX package at path and parses its ZIP
// container and block map.
func Open(path string) (*Package, error) {
	return OpenWithOptions(path, OpenOptions{})
}

// OpenWithOptions opens the package at path using explicit open
// options.
func OpenWithOptions(path string, opts OpenOptions) (*Package, error) {
	opts.applyDefaults()

	f, err := os.Open(path)
	if err != nil {
		return nil, newErr(KindFileOpen, "open %s: %v", path, err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, newErr(KindFileRead, "stat %s: %v", path, err)
	}

	p, err := newPackage(f, fi.Size(), opts)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	p.file = f
	logger().Info().Str("path", path).Int("files", len(p.blockMap.Files())).Msg("package opened")
	return p, nil
}

// NewPackageFromReaderAt parses a package from an existing ReaderAt and
// known size, using default open options.
func NewPackageFromReaderAt(ra io.ReaderAt, size int64) (*Package, error) {
	return NewPackageFromReaderAtWithOptions(ra, size, OpenOptions{})
}

// NewPackageFromReaderAtWithOptions parses a package from an existing
// ReaderAt and known size, using explicit open options.
func NewPackageFromReaderAtWithOptions(ra io.ReaderAt, size int64, opts OpenOptions) (*Package, error) {
	return newPackage(ra, size, opts)
}

func newPackage(ra io.ReaderAt, size int64, opts OpenOptions) (*Package, error) {
	opts.applyDefaults()

	zipEntries, err := parseZipCentralDirectory(ra, size)
	if err != nil {
		return nil, err
	}

	entries := make(map[string]ZipEntry, len(zipEntries))
	for _, e := range zipEntries {
		entries[e.Name] = e
	}

	bmEntry, ok := entries[appxFootprintBlockMap]
	if !ok {
		return nil, newErr(KindBlockMapSemanticError, "package does not contain %s", appxFootprintBlockMap)
	}

	bmStream, err := openEntryPlainStream(ra, bmEntry)
	if err != nil {
		return nil, err
	}
	defer func() { _ = bmStream.Close() }()

	blockMap, err := parseBlockMap(streamReaderAdapter{bmStream})
	if err != nil {
		return nil, err
	}

	p := &Package{ra: ra, size: size, entries: entries, blockMap: blockMap}

	if err := crossCheckEntries(p); err != nil {
		return nil, err
	}
	if err := runValidators(p, opts.Validation); err != nil {
		return nil, err
	}

	return p, nil
}

// crossCheckEntries verifies every file the block map describes is
// present in the ZIP container with matching uncompressed size and
// local file header size, and that every non-footprint ZIP entry is in
// turn described by the block map: a payload file with no block-map
// entry would otherwise open unverified.
func crossCheckEntries(p *Package) error {
	for _, name := range p.blockMap.Files() {
		entry, ok := p.entries[name]
		if !ok {
			return newErr(KindBlockMapSemanticError, "block map describes %q, which is not present in the zip container", name)
		}

		bmf, _ := p.blockMap.File(name)
		if entry.UncompressedSize != int64(bmf.UncompressedSize) {
			return newErr(KindBlockMapSemanticError, "entry %q uncompressed size %d does not match block map size %d", name, entry.UncompressedSize, bmf.UncompressedSize)
		}

		dataStart, err := readLocalFileHeaderDataOffset(p.ra, entry.LocalHeaderOffset)
		if err != nil {
			return err
		}
		lfhSize := dataStart - entry.LocalHeaderOffset
		if uint32(lfhSize) != bmf.LfhSize {
			return newErr(KindBlockMapSemanticError, "entry %q local file header size %d does not match block map LfhSize %d", name, lfhSize, bmf.LfhSize)
		}
	}

	for name := range p.entries {
		if isFootprintFile(name) {
			continue
		}
		if _, ok := p.blockMap.File(name); !ok {
			return newErr(KindBlockMapSemanticError, "payload file %q is not described in %s", name, appxFootprintBlockMap)
		}
	}

	return nil
}

// openEntryPlainStream opens entry's payload as a decompressed Stream,
// with no block-hash verification layered on top.
func openEntryPlainStream(ra io.ReaderAt, entry ZipEntry) (Stream, error) {
	zs, err := newZipFileStream(ra, entry)
	if err != nil {
		return nil, err
	}

	switch entry.Compression {
	case CompressionStore:
		return zs, nil
	case CompressionDeflate:
		return NewInflateStream(zs, entry.UncompressedSize), nil
	default:
		return nil, newErr(KindUnsupportedCompression, "entry %q uses unsupported compression method %d", entry.Name, entry.Compression)
	}
}

// Files returns the block map's file names in document order.
func (p *Package) Files() []string {
	return p.blockMap.Files()
}

// BlockMap returns the package's parsed block map.
func (p *Package) BlockMap() *BlockMap {
	return p.blockMap
}

// OpenFile opens name for reading. When the block map describes name,
// the returned Stream validates every block's hash before releasing
// its bytes; footprint files the block map does not describe (such as
// AppxSignature.p7x) are returned unverified.
func (p *Package) OpenFile(name string) (Stream, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, newErr(KindUnexpected, "package is closed")
	}

	entry, ok := p.entries[name]
	if !ok {
		return nil, newErr(KindFileNotFound, "%q", name)
	}

	plain, err := openEntryPlainStream(p.ra, entry)
	if err != nil {
		return nil, err
	}

	if bmf, ok := p.blockMap.File(name); ok {
		return NewBlockMapStream(plain, bmf.Blocks), nil
	}

	return plain, nil
}

// ReadFile reads the full, hash-verified plaintext of the named file.
func (p *Package) ReadFile(name string) ([]byte, error) {
	s, err := p.OpenFile(name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()

	size, err := s.Size()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, size)
	if err := fillBuffer(s, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close closes the underlying file if the package owns one.
func (p *Package) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if p.file != nil {
		return p.file.Close()
	}
	return nil
}
