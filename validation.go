// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

// Validator checks one aspect of an opened Package against its
// footprint files. It reports the specific failure via *Error.
type Validator interface {
	Validate(pkg *Package) error
}

// ManifestValidator checks only that the block map describes
// AppxManifest.xml. This package reads the manifest as an ordinary
// footprint file and does not validate its schema or content; callers
// who need schema-level manifest validation should do so above this
// package.
type ManifestValidator struct{}

// Validate implements Validator.
func (ManifestValidator) Validate(pkg *Package) error {
	if _, ok := pkg.blockMap.File(appxFootprintManifest); !ok {
		return newErr(KindBlockMapSemanticError, "block map does not describe %s", appxFootprintManifest)
	}
	return nil
}

// SignatureValidator checks only that AppxSignature.p7x is present in
// the container; it does not verify the signature itself. Unlike the other
// footprint files, AppxSignature.p7x is never described by the block
// map, since signing happens after the block map is built, so presence
// is checked against the ZIP central directory instead.
type SignatureValidator struct{}

// Validate implements Validator.
func (SignatureValidator) Validate(pkg *Package) error {
	if _, ok := pkg.entries[appxFootprintSignature]; !ok {
		return newErr(KindBlockMapSemanticError, "package does not contain %s", appxFootprintSignature)
	}
	return nil
}

// runValidators runs the validators selected by opts against pkg,
// returning the first failure encountered.
func runValidators(pkg *Package, opts ValidationOptions) error {
	var validators []Validator
	if !opts.SkipManifestValidation {
		validators = append(validators, ManifestValidator{})
	}
	if !opts.SkipSignatureValidation {
		validators = append(validators, SignatureValidator{})
	}

	for _, v := range validators {
		if err := v.Validate(pkg); err != nil {
			return err
		}
	}
	return nil
}
