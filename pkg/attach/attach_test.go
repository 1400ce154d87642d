package attach

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/duynguyendang/maya/pkg/common/errors"
)

func TestIsTextFile(t *testing.T) {
	assert.True(t, IsTextFile("main.go"))
	assert.True(t, IsTextFile("README.MD"))
	assert.True(t, IsTextFile("Dockerfile"))
	assert.True(t, IsTextFile("Makefile"))
	assert.True(t, IsTextFile(".env"))
	assert.False(t, IsTextFile("photo.png"))
	assert.False(t, IsTextFile("archive.tar.gz"))
}

func TestValidateSize(t *testing.T) {
	assert.True(t, ValidateSize(5*1024*1024, 0))
	assert.False(t, ValidateSize(5*1024*1024+1, 0))
	assert.True(t, ValidateSize(1024, 1))
	assert.False(t, ValidateSize(2*1024*1024, 1))
}

func TestIcon(t *testing.T) {
	assert.Equal(t, "🐍", Icon("x.py"))
	assert.Equal(t, "🐳", Icon("Dockerfile"))
	assert.Equal(t, "📄", Icon("notes.unknown"))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "1.0 KiB", FormatSize(1024))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	require.NoError(t, os.WriteFile(path, []byte("print('hola')"), 0o644))

	a, err := Load(path, 0)
	require.NoError(t, err)
	assert.Equal(t, "app.py", a.Name)
	assert.Equal(t, "print('hola')", a.Content)
	assert.Equal(t, int64(13), a.Size)

	bin := filepath.Join(dir, "logo.png")
	require.NoError(t, os.WriteFile(bin, []byte{0x89, 'P', 'N', 'G'}, 0o644))
	_, err = Load(bin, 0)
	assert.ErrorIs(t, err, ErrNotText)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	big := filepath.Join(dir, "big.txt")
	require.NoError(t, os.WriteFile(big, []byte(strings.Repeat("x", 1024*1024+1)), 0o644))
	_, err = Load(big, 1)
	assert.ErrorIs(t, err, ErrTooLarge)

	_, err = Load(filepath.Join(dir, "missing.txt"), 0)
	assert.Error(t, err)
}

func TestNew(t *testing.T) {
	a, err := New("notes.md", "# hi", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), a.Size)

	_, err = New("", "x", 0)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = New("img.jpg", "x", 0)
	assert.ErrorIs(t, err, ErrNotText)
}

func TestFormatForPrompt(t *testing.T) {
	assert.Empty(t, FormatForPrompt(nil))

	out := FormatForPrompt([]Attachment{
		{Name: "a.py", Content: "x = 1"},
		{Name: "b.md", Content: "# B"},
	})
	want := "\n\n**Archivos adjuntos:**\n\n" +
		"### Archivo 1: a.py\n\n```\nx = 1\n```\n\n" +
		"### Archivo 2: b.md\n\n```\n# B\n```\n\n"
	assert.Equal(t, want, out)
}

func TestSummary(t *testing.T) {
	assert.Empty(t, Summary(nil))
	assert.Equal(t, "\n\n**Archivos adjuntos:**\n📎 a.py (5 B)", Summary([]Attachment{{Name: "a.py", Size: 5}}))
}
