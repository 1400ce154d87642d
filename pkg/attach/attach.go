// Package attach reads user-supplied text files and formats them for the chat prompt.
package attach

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
)

// DefaultMaxSizeMB is the attachment size limit when none is configured.
const DefaultMaxSizeMB = 5

var (
	ErrNotText  = fmt.Errorf("only text files can be attached: %w", apperrors.ErrInvalidInput)
	ErrTooLarge = fmt.Errorf("file exceeds the size limit: %w", apperrors.ErrInvalidInput)
)

type Attachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
	Type    string `json:"type,omitempty"`
	Size    int64  `json:"size"`
}

var textExtensions = map[string]bool{
	"txt": true, "js": true, "jsx": true, "ts": true, "tsx": true, "py": true,
	"java": true, "c": true, "cpp": true, "h": true, "hpp": true, "cs": true,
	"php": true, "rb": true, "go": true, "rs": true, "swift": true, "kt": true,
	"scala": true, "html": true, "css": true, "scss": true, "sass": true,
	"less": true, "json": true, "xml": true, "yaml": true, "yml": true,
	"md": true, "sql": true, "sh": true, "bash": true, "zsh": true, "fish": true,
	"ps1": true, "bat": true, "cmd": true, "r": true, "m": true, "pl": true,
	"lua": true, "vim": true, "dockerfile": true, "makefile": true,
	"gitignore": true, "env": true,
}

var icons = map[string]string{
	"js": "📜", "jsx": "⚛️", "ts": "📘", "tsx": "⚛️", "py": "🐍", "java": "☕",
	"c": "©️", "cpp": "©️", "cs": "🎯", "php": "🐘", "rb": "💎", "go": "🔷",
	"rs": "🦀", "swift": "🦅", "kt": "🟣", "html": "🌐", "css": "🎨",
	"scss": "🎨", "json": "📋", "xml": "📄", "yaml": "⚙️", "yml": "⚙️",
	"md": "📝", "txt": "📄", "sql": "🗄️", "sh": "🖥️", "dockerfile": "🐳",
	"makefile": "🔨",
}

// kind is the lowercased text after the last dot, or the whole name when there is none.
func kind(name string) string {
	base := filepath.Base(name)
	if i := strings.LastIndex(base, "."); i >= 0 {
		base = base[i+1:]
	}
	return strings.ToLower(base)
}

// IsTextFile reports whether name looks like a source or text file.
func IsTextFile(name string) bool {
	return textExtensions[kind(name)]
}

// ValidateSize reports whether size fits in maxMB megabytes; maxMB <= 0 means the default.
func ValidateSize(size int64, maxMB int) bool {
	if maxMB <= 0 {
		maxMB = DefaultMaxSizeMB
	}
	return size <= int64(maxMB)*1024*1024
}

func Icon(name string) string {
	if icon, ok := icons[kind(name)]; ok {
		return icon
	}
	return "📄"
}

func FormatSize(bytes int64) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// New validates an attachment supplied in memory.
func New(name, content string, maxMB int) (Attachment, error) {
	if strings.TrimSpace(name) == "" {
		return Attachment{}, fmt.Errorf("attachment name is required: %w", apperrors.ErrInvalidInput)
	}
	if !IsTextFile(name) {
		return Attachment{}, fmt.Errorf("%s: %w", name, ErrNotText)
	}
	size := int64(len(content))
	if !ValidateSize(size, maxMB) {
		return Attachment{}, fmt.Errorf("%s (%s): %w", name, FormatSize(size), ErrTooLarge)
	}
	return Attachment{Name: filepath.Base(name), Content: content, Type: mimeType(name), Size: size}, nil
}

// Load reads a text file from disk.
func Load(path string, maxMB int) (Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return Attachment{}, fmt.Errorf("%s is a directory: %w", path, apperrors.ErrInvalidInput)
	}
	if !IsTextFile(path) {
		return Attachment{}, fmt.Errorf("%s: %w", path, ErrNotText)
	}
	if !ValidateSize(info.Size(), maxMB) {
		return Attachment{}, fmt.Errorf("%s (%s): %w", path, FormatSize(info.Size()), ErrTooLarge)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Attachment{
		Name:    filepath.Base(path),
		Content: string(data),
		Type:    mimeType(path),
		Size:    info.Size(),
	}, nil
}

func mimeType(name string) string {
	if t := mime.TypeByExtension(filepath.Ext(name)); t != "" {
		return t
	}
	return "text/plain"
}

// FormatForPrompt renders attachments as the block appended to the user's message.
func FormatForPrompt(files []Attachment) string {
	if len(files) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("\n\n**Archivos adjuntos:**\n\n")
	for i, f := range files {
		fmt.Fprintf(&sb, "### Archivo %d: %s\n\n", i+1, f.Name)
		sb.WriteString("```\n")
		sb.WriteString(f.Content)
		sb.WriteString("\n```\n\n")
	}
	return sb.String()
}

// Summary is the short list shown in the transcript instead of the file bodies.
func Summary(files []Attachment) string {
	if len(files) == 0 {
		return ""
	}
	lines := make([]string, len(files))
	for i, f := range files {
		lines[i] = fmt.Sprintf("📎 %s (%s)", f.Name, FormatSize(f.Size))
	}
	return "\n\n**Archivos adjuntos:**\n" + strings.Join(lines, "\n")
}
