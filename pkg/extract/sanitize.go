package extract

import (
	"regexp"
	"unicode/utf8"
)

// MaxFilenameLength is the filesystem name limit applied by SanitizeFilename.
const MaxFilenameLength = 255

var (
	invalidCharsRe = regexp.MustCompile(`[<>:"|?*\x00-\x1f]`)
	whitespaceRe   = regexp.MustCompile(`[\s\p{Z}\x{FEFF}]+`)
)

// SanitizeFilename makes name safe for a filesystem-like destination.
// The result is lossy and stable under repeated application.
func SanitizeFilename(name string) string {
	out := invalidCharsRe.ReplaceAllString(name, "_")
	out = whitespaceRe.ReplaceAllString(out, "_")
	if utf8.RuneCountInString(out) > MaxFilenameLength {
		out = string([]rune(out)[:MaxFilenameLength])
	}
	return out
}

// IsValidFilename reports whether name can be saved without sanitizing.
func IsValidFilename(name string) bool {
	n := utf8.RuneCountInString(name)
	if n == 0 || n >= MaxFilenameLength {
		return false
	}
	return !invalidCharsRe.MatchString(name)
}
