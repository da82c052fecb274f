// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import "testing"

func TestNormalizeUnpackPath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "clean", in: "Assets/Logo.png", want: "Assets/Logo.png"},
		{name: "windows separators", in: `Assets\Logo.png`, want: "Assets/Logo.png"},
		{name: "dot segments", in: "./Assets/../Assets/Logo.png", want: "Assets/Logo.png"},
		{name: "leading space", in: "  Assets/Logo.png", want: "Assets/Logo.png"},
		{name: "empty", in: "", wantErr: true},
		{name: "whitespace only", in: "   ", wantErr: true},
		{name: "leading slash", in: "/Assets/Logo.png", wantErr: true},
		{name: "leading backslash", in: `\Assets\Logo.png`, wantErr: true},
		{name: "windows drive", in: `C:/Windows/System32`, wantErr: true},
		{name: "parent traversal", in: "../evil.txt", wantErr: true},
		{name: "nested parent traversal", in: "Assets/../../evil.txt", wantErr: true},
		{name: "embedded NUL", in: "Assets/\x00evil", wantErr: true},
		{name: "only dot segments", in: "./.", wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := normalizeUnpackPath(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("normalizeUnpackPath(%q) = %q, want error", tc.in, got)
				}
				if !IsKind(err, KindInvalidParameter) {
					t.Fatalf("normalizeUnpackPath(%q) error = %v, want KindInvalidParameter", tc.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("normalizeUnpackPath(%q): %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("normalizeUnpackPath(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestHasWindowsAbsDrivePrefix(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"C:/Windows":  true,
		"z:/tmp":      true,
		"C:Windows":   false,
		"/C:/Windows": false,
		"":            false,
		"C":           false,
	}
	for in, want := range cases {
		if got := hasWindowsAbsDrivePrefix(in); got != want {
			t.Errorf("hasWindowsAbsDrivePrefix(%q) = %v, want %v", in, got, want)
		}
	}
}
