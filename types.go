// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import "time"

// appxFootprintManifest through appxFootprintCodeIntegrity are the well
// known footprint file names a package may carry alongside its payload.
const (
	appxFootprintManifest      = "AppxManifest.xml"
	appxFootprintBlockMap      = "AppxBlockMap.xml"
	appxFootprintSignature     = "AppxSignature.p7x"
	appxFootprintContentTypes  = "[Content_Types].xml"
	appxFootprintCodeIntegrity = "AppxMetadata/CodeIntegrity.cat"
)

// OpenOptions configures Open/OpenWithOptions.
type OpenOptions struct {
	// Validation selects which of the source SDK's non-cryptographic
	// footprint checks run during Open.
	Validation ValidationOptions
}

// applyDefaults fills zero-valued open options with defaults.
func (opts *OpenOptions) applyDefaults() {
	// ValidationOptions' zero value (every validator runs) is already
	// the desired default.
}

// UnpackFileMode controls output file open behavior during Unpack.
type UnpackFileMode string

// Output file creation policies for Unpack.
const (
	// UnpackFileModeAuto first tries create-only, then falls back to
	// truncate for existing files.
	UnpackFileModeAuto UnpackFileMode = "auto"
	// UnpackFileModeTruncate opens existing files with truncate and
	// creates missing files.
	UnpackFileModeTruncate UnpackFileMode = "truncate"
	// UnpackFileModeCreateOnly creates files only when absent and fails
	// on existing files.
	UnpackFileModeCreateOnly UnpackFileMode = "create_only"
)

// UnpackEntryProgress describes one file fully written to disk by
// Unpack.
type UnpackEntryProgress struct {
	// Name is the file's block-map name.
	Name string
	// Written is the number of plaintext bytes written.
	Written int64
	// OutputPath is the destination path on disk.
	OutputPath string
}

// UnpackOptions configures Unpack behavior.
type UnpackOptions struct {
	// OnEntryDone is called after one file is fully written to disk.
	OnEntryDone func(progress UnpackEntryProgress)
	// FileMode controls output file creation policy.
	FileMode UnpackFileMode
	// Names limits extraction to the given block-map file names; nil
	// means every file in the block map.
	Names []string
	// Workers is the number of concurrent unpack workers; zero means
	// GOMAXPROCS. Workers only read and decode in parallel: a failure
	// on one file does not roll back files already written by others.
	Workers int
	// SkipFootprint excludes AppxBlockMap.xml, AppxManifest.xml,
	// AppxSignature.p7x, [Content_Types].xml and
	// AppxMetadata/CodeIntegrity.cat from extraction.
	SkipFootprint bool
}

// applyDefaults fills zero-valued unpack options with defaults.
func (opts *UnpackOptions) applyDefaults() {
	if opts.FileMode == "" {
		opts.FileMode = UnpackFileModeAuto
	}
}

// UnpackResult contains Unpack output statistics.
type UnpackResult struct {
	// WrittenFiles is the number of files written to disk.
	WrittenFiles int
	// BytesWritten is the total number of plaintext bytes written.
	BytesWritten int64
	// Duration is end-to-end unpack duration.
	Duration time.Duration
}

// ValidationOptions selects which non-cryptographic validators run
// during Open. The source SDK wires these to command-line switches
// that skip manifest or signature checks; this package implements the
// hooks but never performs cryptographic signature verification
// itself (out of scope — see Non-goals).
type ValidationOptions struct {
	// SkipManifestValidation disables ManifestValidator.
	SkipManifestValidation bool
	// SkipSignatureValidation disables SignatureValidator.
	SkipSignatureValidation bool
	// AllowSignatureOriginUnknown is carried for parity with the source
	// SDK's flag surface; it has no effect since this package never
	// validates signature origin.
	AllowSignatureOriginUnknown bool
}
