package extract

import "strings"

// languageByExtension maps lowercased extensions to display/highlighting languages.
var languageByExtension = map[string]string{
	"js":     "javascript",
	"jsx":    "javascript",
	"ts":     "typescript",
	"tsx":    "typescript",
	"py":     "python",
	"php":    "php",
	"html":   "html",
	"css":    "css",
	"scss":   "scss",
	"sass":   "sass",
	"java":   "java",
	"cs":     "csharp",
	"go":     "go",
	"rb":     "ruby",
	"sql":    "sql",
	"json":   "json",
	"xml":    "xml",
	"yaml":   "yaml",
	"yml":    "yaml",
	"md":     "markdown",
	"sh":     "bash",
	"bat":    "batch",
	"c":      "c",
	"cpp":    "cpp",
	"h":      "c",
	"hpp":    "cpp",
	"rs":     "rust",
	"kt":     "kotlin",
	"swift":  "swift",
	"dart":   "dart",
	"vue":    "vue",
	"svelte": "svelte",
	"r":      "r",
	"m":      "matlab",
	"pl":     "perl",
	"lua":    "lua",
}

var iconByExtension = map[string]string{
	"js":     "📜",
	"jsx":    "⚛️",
	"ts":     "📘",
	"tsx":    "⚛️",
	"py":     "🐍",
	"php":    "🐘",
	"html":   "🌐",
	"css":    "🎨",
	"scss":   "🎨",
	"java":   "☕",
	"cs":     "🎯",
	"go":     "🔷",
	"rb":     "💎",
	"sql":    "🗄️",
	"json":   "📋",
	"xml":    "📄",
	"yaml":   "⚙️",
	"yml":    "⚙️",
	"md":     "📝",
	"sh":     "🖥️",
	"txt":    "📄",
	"vue":    "💚",
	"svelte": "🧡",
	"dart":   "🎯",
	"rs":     "🦀",
}

// DefaultIcon is shown for extensions without a dedicated icon.
const DefaultIcon = "📄"

// LanguageFor returns the table language for ext, if any.
func LanguageFor(ext string) (string, bool) {
	lang, ok := languageByExtension[strings.ToLower(ext)]
	return lang, ok
}

// Icon returns the display icon for an extension.
func Icon(ext string) string {
	if icon, ok := iconByExtension[strings.ToLower(ext)]; ok {
		return icon
	}
	return DefaultIcon
}

// Languages returns a copy of the extension table.
func Languages() map[string]string {
	out := make(map[string]string, len(languageByExtension))
	for ext, lang := range languageByExtension {
		out[ext] = lang
	}
	return out
}
