// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

// defaultBlockSize is the plaintext size of every block except
// (optionally) the final one in a BlockMapFile.
const defaultBlockSize = 64 * 1024

// contentTypesEntryName is the one ZIP entry name a block map is
// forbidden to describe; [Content_Types].xml belongs to the Open
// Packaging Conventions layer, not the AppX payload.
const contentTypesEntryName = "[Content_Types].xml"

// blockMapHashMethod is the only HashMethod the block-map XML schema
// permits.
const blockMapHashMethod = "http://www.w3.org/2001/04/xmlenc#sha256"

// blockMapXMLNamespace is the required namespace of the BlockMap root
// element.
const blockMapXMLNamespace = "http://schemas.microsoft.com/appx/2010/blockmap"

// Block is one fixed-size (except possibly the last) chunk of a file's
// plaintext content, together with the SHA-256 hash it must hash to.
type Block struct {
	// PlaintextSize is the number of decompressed bytes this block
	// covers.
	PlaintextSize uint64

	// Hash is the expected SHA-256 digest of the block's plaintext.
	Hash [32]byte
}

// BlockMapFile is the parsed <File> element: one payload entry's
// uncompressed size, local file header size and ordered block list.
type BlockMapFile struct {
	// Name is the entry's logical path, matched against ZIP entry
	// names.
	Name string

	// LfhSize is the declared size in bytes of the entry's ZIP local
	// file header, used to cross-check ZIP layout.
	LfhSize uint32

	// UncompressedSize is the file's total plaintext size; it must
	// equal the sum of Blocks' PlaintextSize.
	UncompressedSize uint64

	// Blocks are the file's blocks in document order.
	Blocks []Block
}

// BlockMap is the parsed AppxBlockMap.xml: every payload file's block
// layout, keyed by name with insertion order preserved for
// enumeration.
type BlockMap struct {
	order []string
	files map[string]*BlockMapFile
}

// Files returns file names in document order.
func (m *BlockMap) Files() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// File looks up a BlockMapFile by name.
func (m *BlockMap) File(name string) (*BlockMapFile, bool) {
	f, ok := m.files[name]
	return f, ok
}

// Blocks returns the ordered blocks recorded for name.
func (m *BlockMap) Blocks(name string) ([]Block, bool) {
	f, ok := m.files[name]
	if !ok {
		return nil, false
	}
	return f.Blocks, true
}
