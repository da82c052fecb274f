// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import (
	"encoding/base64"
	"io"
	"strconv"
)

// parseBlockMap builds a BlockMap from the AppxBlockMap.xml document
// read from r, enforcing every semantic check the format requires.
func parseBlockMap(r io.Reader) (*BlockMap, error) {
	root, err := parseXMLDOM(r)
	if err != nil {
		return nil, err
	}

	if root.Local != "BlockMap" {
		return nil, newErr(KindBlockMapSemanticError, "root element is %q, want BlockMap", root.Local)
	}
	if root.Space != blockMapXMLNamespace {
		return nil, newErr(KindBlockMapSemanticError, "unexpected namespace %q", root.Space)
	}

	hashMethod, ok := root.attr("HashMethod")
	if !ok || hashMethod != blockMapHashMethod {
		return nil, newErr(KindBlockMapSemanticError, "unsupported HashMethod %q", hashMethod)
	}

	bm := &BlockMap{files: make(map[string]*BlockMapFile)}

	for _, fileNode := range root.elements("File") {
		f, err := parseBlockMapFile(fileNode)
		if err != nil {
			return nil, err
		}

		if f.Name == contentTypesEntryName {
			return nil, newErr(KindBlockMapSemanticError, "block map may not describe %s", contentTypesEntryName)
		}
		if _, dup := bm.files[f.Name]; dup {
			return nil, newErr(KindBlockMapSemanticError, "duplicate file name %q", f.Name)
		}

		bm.files[f.Name] = f
		bm.order = append(bm.order, f.Name)
	}

	if len(bm.order) == 0 {
		return nil, newErr(KindBlockMapSemanticError, "block map has no files")
	}

	return bm, nil
}

// parseBlockMapFile parses and validates one <File> element.
func parseBlockMapFile(node *domNode) (*BlockMapFile, error) {
	name, ok := node.attr("Name")
	if !ok || name == "" {
		return nil, newErr(KindBlockMapSemanticError, "File element missing Name")
	}

	sizeAttr, ok := node.attr("Size")
	if !ok {
		return nil, newErr(KindBlockMapSemanticError, "File %q missing Size", name)
	}
	size, err := strconv.ParseUint(sizeAttr, 10, 64)
	if err != nil {
		return nil, newErr(KindBlockMapSemanticError, "File %q has invalid Size %q", name, sizeAttr)
	}

	lfhAttr, ok := node.attr("LfhSize")
	if !ok {
		return nil, newErr(KindBlockMapSemanticError, "File %q missing LfhSize", name)
	}
	lfhSize, err := strconv.ParseUint(lfhAttr, 10, 32)
	if err != nil {
		return nil, newErr(KindBlockMapSemanticError, "File %q has invalid LfhSize %q", name, lfhAttr)
	}

	blockNodes := node.elements("Block")
	if size > 0 && len(blockNodes) == 0 {
		return nil, newErr(KindBlockMapSemanticError, "File %q declares Size %d with no blocks", name, size)
	}

	blocks := make([]Block, 0, len(blockNodes))
	var total uint64
	for i, bn := range blockNodes {
		b, err := parseBlock(name, bn)
		if err != nil {
			return nil, err
		}

		isTerminal := i == len(blockNodes)-1
		if !isTerminal && b.PlaintextSize != defaultBlockSize {
			return nil, newErr(KindBlockMapSemanticError, "File %q block %d is non-terminal with size %d, want %d", name, i, b.PlaintextSize, defaultBlockSize)
		}

		total += b.PlaintextSize
		blocks = append(blocks, b)
	}

	if total != size {
		return nil, newErr(KindBlockMapSemanticError, "File %q block sizes sum to %d, want %d", name, total, size)
	}

	return &BlockMapFile{
		Name:             name,
		LfhSize:          uint32(lfhSize),
		UncompressedSize: size,
		Blocks:           blocks,
	}, nil
}

// parseBlock parses and validates one <Block> element.
func parseBlock(fileName string, node *domNode) (Block, error) {
	hashAttr, ok := node.attr("Hash")
	if !ok || hashAttr == "" {
		return Block{}, newErr(KindBlockMapSemanticError, "File %q has Block with no Hash", fileName)
	}

	raw, err := base64.StdEncoding.DecodeString(hashAttr)
	if err != nil {
		return Block{}, newErr(KindBlockMapSemanticError, "File %q has Block with invalid base64 Hash", fileName)
	}
	if len(raw) != 32 {
		return Block{}, newErr(KindBlockMapSemanticError, "File %q has Block hash of %d bytes, want 32", fileName, len(raw))
	}

	plaintextSize := uint64(defaultBlockSize)
	if sizeAttr, ok := node.attr("Size"); ok {
		plaintextSize, err = strconv.ParseUint(sizeAttr, 10, 64)
		if err != nil {
			return Block{}, newErr(KindBlockMapSemanticError, "File %q has Block with invalid Size %q", fileName, sizeAttr)
		}
	}

	var hash [32]byte
	copy(hash[:], raw)

	return Block{PlaintextSize: plaintextSize, Hash: hash}, nil
}
