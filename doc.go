// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

/*
Package msixread provides read-only, streaming access to MSIX/AppX
packages: ZIP containers whose payload files are described by an
AppxBlockMap.xml, a per-file list of fixed-size blocks each carrying an
expected SHA-256 hash. Every payload read is verified block-by-block
before its bytes reach the caller; a hash mismatch poisons the affected
stream permanently.

# Opening a package

	pkg, err := msixread.Open("app.msix")
	if err != nil {
	    return err
	}
	defer pkg.Close()

	for _, name := range pkg.Files() {
	    data, err := pkg.ReadFile(name)
	    if err != nil {
	        return err
	    }
	    _ = data
	}

Open parses the ZIP central directory, locates and parses
AppxBlockMap.xml, and cross-checks every block-map file's uncompressed
size and local file header size against the ZIP container before
returning. Validation of AppxManifest.xml and AppxSignature.p7x
presence can be disabled individually:

	pkg, err := msixread.OpenWithOptions("app.msix", msixread.OpenOptions{
	    Validation: msixread.ValidationOptions{
	        SkipManifestValidation: true,
	    },
	})

# Streaming a single file

	s, err := pkg.OpenFile("Assets/Logo.png")
	if err != nil {
	    return err
	}
	defer s.Close()

	buf := make([]byte, 4096)
	for {
	    n, err := s.Read(buf)
	    if n > 0 {
	        // use buf[:n]
	    }
	    if err != nil {
	        if errors.Is(err, msixread.ErrBlockHashMismatch) {
	            // tampered or corrupt payload
	        }
	        break
	    }
	    if n == 0 {
	        break // end of stream: Read returns 0, nil
	    }
	}

Streams returned by OpenFile support Seek; a reverse seek into a
deflate-compressed entry re-decodes from the start of the entry rather
than failing, trading CPU for the ability to expose random access over
a forward-only compression format.

# Unpacking to disk

	result, err := pkg.Unpack(ctx, "out/", msixread.UnpackOptions{Workers: 4})
	if err != nil {
	    return err
	}
	_ = result.WrittenFiles
*/
package msixread
