// Package extract recovers virtual files from fenced code blocks in chat replies.
//
// A fence looks like
//
//	```filename:app.py
//	print("hi")
//	```
//
// or, with an explicit language tag, ```python:script.txt. Fences do not nest:
// a body containing ``` ends at that point.
package extract

import (
	"regexp"
	"strings"
)

// DefaultExtension is used when a filename has no extension.
const DefaultExtension = "txt"

var (
	fenceRe     = regexp.MustCompile("(?s)```(?:filename:|(\\w+):)?([^\\n]+)\\n(.*?)```")
	extensionRe = regexp.MustCompile(`\.(\w+)$`)
)

// Extract scans text for annotated fences and returns the files in source order.
// Text without fences yields an empty slice.
func Extract(text string) []ExtractedFile {
	matches := fenceRe.FindAllStringSubmatch(text, -1)
	files := make([]ExtractedFile, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSpace(m[2])
		ext := Extension(name)
		files = append(files, ExtractedFile{
			Name:      name,
			Content:   strings.TrimSpace(m[3]),
			Language:  ResolveLanguage(m[1], ext),
			Extension: ext,
		})
	}
	return files
}

// Extension returns the word characters after the final dot of name, or
// DefaultExtension when there are none.
func Extension(name string) string {
	if m := extensionRe.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return DefaultExtension
}

// ResolveLanguage applies tag > table > extension precedence.
func ResolveLanguage(tag, ext string) string {
	if tag != "" {
		return tag
	}
	if lang, ok := languageByExtension[strings.ToLower(ext)]; ok {
		return lang
	}
	return ext
}

// Fence renders a file back into the annotated fence form Extract reads.
func Fence(f ExtractedFile) string {
	var sb strings.Builder
	sb.WriteString("```filename:")
	sb.WriteString(f.Name)
	sb.WriteString("\n")
	sb.WriteString(f.Content)
	sb.WriteString("\n```")
	return sb.String()
}
