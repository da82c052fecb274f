// SPDX-License-Identifier: MIT
// Source: github.com/woozymasta/msixread

package msixread

import "strings"

// normalizeUnpackPath normalizes a block-map file name into a
// forward-slash path, resolving "." and ".." segments, and rejects
// absolute paths, embedded NULs, and any ".." that climbs above the
// output root.
func normalizeUnpackPath(name string) (string, error) {
	raw := strings.TrimSpace(name)
	if raw == "" {
		return "", newErr(KindInvalidParameter, "empty file name")
	}
	if strings.ContainsRune(raw, 0) {
		return "", newErr(KindInvalidParameter, "file name contains NUL: %q", name)
	}
	if strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, `\`) {
		return "", newErr(KindInvalidParameter, "file name is absolute: %q", name)
	}

	raw = strings.ReplaceAll(raw, `\`, "/")
	if hasWindowsAbsDrivePrefix(raw) {
		return "", newErr(KindInvalidParameter, "file name is absolute: %q", name)
	}

	parts := strings.Split(raw, "/")
	cleanParts := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case "", ".":
			continue
		case "..":
			if len(cleanParts) == 0 {
				return "", newErr(KindInvalidParameter, "file name escapes output directory: %q", name)
			}
			cleanParts = cleanParts[:len(cleanParts)-1]
		default:
			cleanParts = append(cleanParts, part)
		}
	}
	if len(cleanParts) == 0 {
		return "", newErr(KindInvalidParameter, "file name is empty after normalization: %q", name)
	}

	return strings.Join(cleanParts, "/"), nil
}

// hasWindowsAbsDrivePrefix reports whether path starts with a
// drive-root prefix like C:/.
func hasWindowsAbsDrivePrefix(path string) bool {
	if len(path) < 3 {
		return false
	}
	return isASCIIAlpha(path[0]) && path[1] == ':' && path[2] == '/'
}

// isASCIIAlpha reports whether b is an ASCII Latin letter.
func isASCIIAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
