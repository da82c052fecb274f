// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
)

func validHash() string {
	h := sha256.Sum256([]byte("x"))
	return base64.StdEncoding.EncodeToString(h[:])
}

func TestParseBlockMapValid(t *testing.T) {
	xml := fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<BlockMap xmlns="%s" HashMethod="%s">
  <File Name="AppxManifest.xml" Size="1" LfhSize="30">
    <Block Hash="%s" Size="1"/>
  </File>
</BlockMap>`, blockMapXMLNamespace, blockMapHashMethod, validHash())

	bm, err := parseBlockMap(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("parseBlockMap: %v", err)
	}

	files := bm.Files()
	if len(files) != 1 || files[0] != "AppxManifest.xml" {
		t.Fatalf("Files() = %v, want [AppxManifest.xml]", files)
	}

	f, ok := bm.File("AppxManifest.xml")
	if !ok {
		t.Fatal("File() did not find AppxManifest.xml")
	}
	if f.UncompressedSize != 1 || f.LfhSize != 30 {
		t.Fatalf("file = %+v, want Size=1 LfhSize=30", f)
	}
}

func TestParseBlockMapRejectsWrongRoot(t *testing.T) {
	xml := fmt.Sprintf(`<NotABlockMap xmlns="%s" HashMethod="%s"></NotABlockMap>`, blockMapXMLNamespace, blockMapHashMethod)
	_, err := parseBlockMap(strings.NewReader(xml))
	if !IsKind(err, KindBlockMapSemanticError) {
		t.Fatalf("parseBlockMap() error = %v, want KindBlockMapSemanticError", err)
	}
}

func TestParseBlockMapRejectsWrongNamespace(t *testing.T) {
	xml := fmt.Sprintf(`<BlockMap xmlns="urn:something-else" HashMethod="%s"></BlockMap>`, blockMapHashMethod)
	_, err := parseBlockMap(strings.NewReader(xml))
	if !IsKind(err, KindBlockMapSemanticError) {
		t.Fatalf("parseBlockMap() error = %v, want KindBlockMapSemanticError", err)
	}
}

func TestParseBlockMapRejectsWrongHashMethod(t *testing.T) {
	xml := fmt.Sprintf(`<BlockMap xmlns="%s" HashMethod="urn:something-else"></BlockMap>`, blockMapXMLNamespace)
	_, err := parseBlockMap(strings.NewReader(xml))
	if !IsKind(err, KindBlockMapSemanticError) {
		t.Fatalf("parseBlockMap() error = %v, want KindBlockMapSemanticError", err)
	}
}

func TestParseBlockMapRejectsContentTypes(t *testing.T) {
	xml := fmt.Sprintf(`<BlockMap xmlns="%s" HashMethod="%s">
  <File Name="[Content_Types].xml" Size="1" LfhSize="30">
    <Block Hash="%s" Size="1"/>
  </File>
</BlockMap>`, blockMapXMLNamespace, blockMapHashMethod, validHash())

	_, err := parseBlockMap(strings.NewReader(xml))
	if !IsKind(err, KindBlockMapSemanticError) {
		t.Fatalf("parseBlockMap() error = %v, want KindBlockMapSemanticError", err)
	}
}

func TestParseBlockMapRejectsDuplicateNames(t *testing.T) {
	fileXML := fmt.Sprintf(`<File Name="a.txt" Size="1" LfhSize="30"><Block Hash="%s" Size="1"/></File>`, validHash())
	xml := fmt.Sprintf(`<BlockMap xmlns="%s" HashMethod="%s">%s%s</BlockMap>`, blockMapXMLNamespace, blockMapHashMethod, fileXML, fileXML)

	_, err := parseBlockMap(strings.NewReader(xml))
	if !IsKind(err, KindBlockMapSemanticError) {
		t.Fatalf("parseBlockMap() error = %v, want KindBlockMapSemanticError", err)
	}
}

func TestParseBlockMapRejectsEmptyFileList(t *testing.T) {
	xml := fmt.Sprintf(`<BlockMap xmlns="%s" HashMethod="%s"></BlockMap>`, blockMapXMLNamespace, blockMapHashMethod)
	_, err := parseBlockMap(strings.NewReader(xml))
	if !IsKind(err, KindBlockMapSemanticError) {
		t.Fatalf("parseBlockMap() error = %v, want KindBlockMapSemanticError", err)
	}
}

func TestParseBlockMapFileSizeSumMismatch(t *testing.T) {
	xml := fmt.Sprintf(`<BlockMap xmlns="%s" HashMethod="%s">
  <File Name="a.txt" Size="5" LfhSize="30">
    <Block Hash="%s" Size="1"/>
  </File>
</BlockMap>`, blockMapXMLNamespace, blockMapHashMethod, validHash())

	_, err := parseBlockMap(strings.NewReader(xml))
	if !IsKind(err, KindBlockMapSemanticError) {
		t.Fatalf("parseBlockMap() error = %v, want KindBlockMapSemanticError (size sum mismatch)", err)
	}
}

func TestParseBlockMapNonTerminalBlockWrongSize(t *testing.T) {
	xml := fmt.Sprintf(`<BlockMap xmlns="%s" HashMethod="%s">
  <File Name="a.txt" Size="%d" LfhSize="30">
    <Block Hash="%s" Size="100"/>
    <Block Hash="%s" Size="%d"/>
  </File>
</BlockMap>`, blockMapXMLNamespace, blockMapHashMethod, 100+defaultBlockSize, validHash(), validHash(), defaultBlockSize)

	_, err := parseBlockMap(strings.NewReader(xml))
	if !IsKind(err, KindBlockMapSemanticError) {
		t.Fatalf("parseBlockMap() error = %v, want KindBlockMapSemanticError (non-terminal block size)", err)
	}
}

func TestParseBlockMapInvalidHashLength(t *testing.T) {
	shortHash := base64.StdEncoding.EncodeToString([]byte("too-short"))
	xml := fmt.Sprintf(`<BlockMap xmlns="%s" HashMethod="%s">
  <File Name="a.txt" Size="1" LfhSize="30">
    <Block Hash="%s" Size="1"/>
  </File>
</BlockMap>`, blockMapXMLNamespace, blockMapHashMethod, shortHash)

	_, err := parseBlockMap(strings.NewReader(xml))
	if !IsKind(err, KindBlockMapSemanticError) {
		t.Fatalf("parseBlockMap() error = %v, want KindBlockMapSemanticError (hash length)", err)
	}
}

func TestParseBlockMapMissingRequiredAttributes(t *testing.T) {
	cases := []string{
		fmt.Sprintf(`<File Size="1" LfhSize="30"><Block Hash="%s" Size="1"/></File>`, validHash()),
		fmt.Sprintf(`<File Name="a.txt" LfhSize="30"><Block Hash="%s" Size="1"/></File>`, validHash()),
		`<File Name="a.txt" Size="1"><Block Hash="` + validHash() + `" Size="1"/></File>`,
		`<File Name="a.txt" Size="1" LfhSize="30"></File>`,
	}
	for i, fileXML := range cases {
		xml := fmt.Sprintf(`<BlockMap xmlns="%s" HashMethod="%s">%s</BlockMap>`, blockMapXMLNamespace, blockMapHashMethod, fileXML)
		_, err := parseBlockMap(strings.NewReader(xml))
		if !IsKind(err, KindBlockMapSemanticError) {
			t.Errorf("case %d: parseBlockMap() error = %v, want KindBlockMapSemanticError", i, err)
		}
	}
}

func TestParseBlockMapZeroSizeFileNeedsNoBlocks(t *testing.T) {
	xml := fmt.Sprintf(`<BlockMap xmlns="%s" HashMethod="%s">
  <File Name="empty.txt" Size="0" LfhSize="30"></File>
</BlockMap>`, blockMapXMLNamespace, blockMapHashMethod)

	bm, err := parseBlockMap(strings.NewReader(xml))
	if err != nil {
		t.Fatalf("parseBlockMap: %v", err)
	}
	blocks, ok := bm.Blocks("empty.txt")
	if !ok {
		t.Fatal("Blocks() did not find empty.txt")
	}
	if len(blocks) != 0 {
		t.Fatalf("Blocks() = %d, want 0", len(blocks))
	}
}
