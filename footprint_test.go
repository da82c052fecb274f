// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import (
	"archive/zip"
	"os"
	"reflect"
	"testing"
)

func TestIsFootprintFile(t *testing.T) {
	cases := map[string]bool{
		appxFootprintManifest:      true,
		appxFootprintBlockMap:      true,
		appxFootprintSignature:     true,
		appxFootprintCodeIntegrity: true,
		appxFootprintContentTypes:  true,
		"Assets/Logo.png":          false,
		"AppxManifest.xml.bak":     false,
	}
	for name, want := range cases {
		if got := isFootprintFile(name); got != want {
			t.Errorf("isFootprintFile(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestFootprintFilesAndPayloadFiles(t *testing.T) {
	dir := t.TempDir()
	specs := []testFileSpec{
		{name: "AppxManifest.xml", data: []byte("<Package/>")},
		{name: "Assets/Logo.png", data: []byte{0, 1, 2, 3}},
	}
	path := writeTestPackage(t, dir, specs)

	pkg, err := OpenWithOptions(path, OpenOptions{
		Validation: ValidationOptions{SkipSignatureValidation: true},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = pkg.Close() }()

	footprint := pkg.FootprintFiles()
	want := []string{appxFootprintBlockMap, appxFootprintManifest, appxFootprintSignature}
	if !reflect.DeepEqual(footprint, want) {
		t.Fatalf("FootprintFiles() = %v, want %v", footprint, want)
	}

	payload := pkg.PayloadFiles()
	wantPayload := []string{"Assets/Logo.png"}
	if !reflect.DeepEqual(payload, wantPayload) {
		t.Fatalf("PayloadFiles() = %v, want %v", payload, wantPayload)
	}
}

func TestFootprintFilesOrderIsFixed(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/order.msix"
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)

	// Write footprint entries out of canonical order to confirm
	// FootprintFiles always reports them in footprintNames order.
	for _, name := range []string{appxFootprintManifest, appxFootprintBlockMap} {
		data := []byte("<Package/>")
		if name == appxFootprintBlockMap {
			data = []byte(buildBlockMapXML([]testFileSpec{{name: appxFootprintManifest, data: []byte("<Package/>")}}))
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	pkg, err := OpenWithOptions(path, OpenOptions{Validation: ValidationOptions{SkipSignatureValidation: true}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = pkg.Close() }()

	got := pkg.FootprintFiles()
	want := []string{appxFootprintBlockMap, appxFootprintManifest}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FootprintFiles() = %v, want %v", got, want)
	}
}
