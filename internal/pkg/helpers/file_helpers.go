package helpers

import (
	"mime"
	"path/filepath"
	"strings"
	"unicode"
)

// FileExtension returns the lowercase extension of name without the dot
func FileExtension(name string) string {
	ext := filepath.Ext(name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// HasAllowedExtension reports whether the filename suffix is one of allowed.
// Only the name is inspected, never the content.
func HasAllowedExtension(name string, allowed []string) bool {
	ext := FileExtension(name)
	if ext == "" {
		return false
	}
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return true
		}
	}
	return false
}

// SecureFilename strips directories and keeps only ASCII letters, digits, '.', '-' and '_'.
// Whitespace becomes '_'. Leading dots are removed so the result is never hidden or relative.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)

	var b strings.Builder
	for _, r := range name {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}

	return strings.TrimLeft(b.String(), "._")
}

// ImageContentType guesses the content type from the stored filename
func ImageContentType(name string) string {
	if ct := mime.TypeByExtension(filepath.Ext(strings.ToLower(name))); strings.HasPrefix(ct, "image/") {
		return ct
	}
	return "image/jpeg"
}
