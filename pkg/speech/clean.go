// Package speech prepares chat replies for text-to-speech and talks to ElevenLabs.
package speech

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxSpeechLength is the character budget sent to the synthesizer.
const MaxSpeechLength = 5000

// CodePlaceholder replaces fenced code blocks in spoken text.
const CodePlaceholder = "[código generado]"

type rewrite struct {
	re   *regexp.Regexp
	repl string
}

// Applied in order, before emphasis is stripped.
var markupRules = []rewrite{
	{regexp.MustCompile("(?s)```.*?```"), CodePlaceholder},
	{regexp.MustCompile("`[^`]+`"), ""},
	{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "${1}"},
	{regexp.MustCompile(`(?m)^#{1,6}\s+`), ""},
}

// Applied in order, after emphasis is stripped.
var layoutRules = []rewrite{
	{regexp.MustCompile(`(?m)^[*\-+]\s+`), ""},
	{regexp.MustCompile(`(?m)^\d+\.\s+`), ""},
	{regexp.MustCompile(`\n\s*\n`), "\n"},
	{regexp.MustCompile(`\s+`), " "},
}

// stripPaired removes emphasis delimited by the same marker on both sides,
// keeping the text in between. Scanning goes left to right: at each position
// the first marker that has a closing twin later on the same line wins, and
// the scan resumes after the closing marker. RE2 has no backreferences, so
// `(\*|_)(.*?)\1` is done by hand.
func stripPaired(text string, markers ...string) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); {
		matched := false
		for _, m := range markers {
			if !strings.HasPrefix(text[i:], m) {
				continue
			}
			rest := text[i+len(m):]
			line := rest
			if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
				line = rest[:nl]
			}
			end := strings.Index(line, m)
			if end < 0 {
				continue
			}
			sb.WriteString(rest[:end])
			i += len(m) + end + len(m)
			matched = true
			break
		}
		if !matched {
			sb.WriteByte(text[i])
			i++
		}
	}
	return sb.String()
}

// CleanText strips markdown and code from a reply so only readable prose is spoken.
func CleanText(text string) string {
	cleaned := text
	for _, r := range markupRules {
		cleaned = r.re.ReplaceAllString(cleaned, r.repl)
	}
	cleaned = stripPaired(cleaned, "**", "__")
	cleaned = stripPaired(cleaned, "*", "_")
	for _, r := range layoutRules {
		cleaned = r.re.ReplaceAllString(cleaned, r.repl)
	}

	if utf8.RuneCountInString(cleaned) > MaxSpeechLength {
		cleaned = string([]rune(cleaned)[:MaxSpeechLength]) + "..."
	}
	return strings.TrimSpace(cleaned)
}
