// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

// footprintNames lists every footprint file name a package may carry.
// Not every package carries every one: AppxSignature.p7x and the
// code-integrity catalog are absent from unsigned test packages.
var footprintNames = [...]string{
	appxFootprintContentTypes,
	appxFootprintBlockMap,
	appxFootprintManifest,
	appxFootprintSignature,
	appxFootprintCodeIntegrity,
}

// isFootprintFile reports whether name is one of the package's
// reserved footprint files rather than ordinary payload.
func isFootprintFile(name string) bool {
	for _, f := range footprintNames {
		if name == f {
			return true
		}
	}
	return false
}

// FootprintFiles returns the names of every footprint file present in
// the package's central directory, in the fixed order declared by
// footprintNames.
func (p *Package) FootprintFiles() []string {
	var out []string
	for _, name := range footprintNames {
		if _, ok := p.entries[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// PayloadFiles returns the block map's file names with footprint files
// excluded.
func (p *Package) PayloadFiles() []string {
	names := p.blockMap.Files()
	out := make([]string, 0, len(names))
	for _, name := range names {
		if !isFootprintFile(name) {
			out = append(out, name)
		}
	}
	return out
}
