package extract

import (
	"strings"
	"unicode/utf8"
)

// PreviewLength is the number of characters shown on a file card.
const PreviewLength = 300

// ExtractedFile is a virtual file recovered from a fenced block in a chat reply.
type ExtractedFile struct {
	Name      string `json:"name"`
	Content   string `json:"content"`
	Language  string `json:"language"`
	Extension string `json:"extension"`
}

// Card is the display summary of an ExtractedFile.
type Card struct {
	Name       string `json:"name"`
	Language   string `json:"language"`
	Icon       string `json:"icon"`
	Preview    string `json:"preview"`
	Truncated  bool   `json:"truncated"`
	LineCount  int    `json:"line_count"`
	CharCount  int    `json:"char_count"`
	ValidName  bool   `json:"valid_name"`
	SyntaxNote string `json:"syntax,omitempty"`
}

// LineCount counts lines the way a "\n" split does, so empty content is one line.
func (f ExtractedFile) LineCount() int {
	return strings.Count(f.Content, "\n") + 1
}

// CharCount returns the number of characters (runes) in the content.
func (f ExtractedFile) CharCount() int {
	return utf8.RuneCountInString(f.Content)
}

// Preview returns the first n characters of the content and whether it was cut.
func (f ExtractedFile) Preview(n int) (string, bool) {
	if n < 0 {
		n = 0
	}
	if utf8.RuneCountInString(f.Content) <= n {
		return f.Content, false
	}
	runes := []rune(f.Content)
	return string(runes[:n]), true
}

// Card builds the preview card for the file.
func (f ExtractedFile) Card() Card {
	preview, truncated := f.Preview(PreviewLength)
	return Card{
		Name:      f.Name,
		Language:  f.Language,
		Icon:      Icon(f.Extension),
		Preview:   preview,
		Truncated: truncated,
		LineCount: f.LineCount(),
		CharCount: f.CharCount(),
		ValidName: IsValidFilename(f.Name),
	}
}

// Cards builds one card per file, in order.
func Cards(files []ExtractedFile) []Card {
	cards := make([]Card, 0, len(files))
	for _, f := range files {
		cards = append(cards, f.Card())
	}
	return cards
}
