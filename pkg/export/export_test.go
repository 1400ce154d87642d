package export

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duynguyendang/maya/pkg/extract"
)

func sampleFiles() []extract.ExtractedFile {
	return []extract.ExtractedFile{
		{Name: "main.go", Content: "package main", Language: "go", Extension: "go"},
		{Name: "web/index.html", Content: "<h1>hi</h1>", Language: "html", Extension: "html"},
		{Name: "main.go", Content: "package other", Language: "go", Extension: "go"},
	}
}

func TestWriteDir(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(zerolog.Nop())

	results, err := e.WriteDir(context.Background(), dir, sampleFiles(), false)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.OK(), r.Error)
	}

	data, err := os.ReadFile(filepath.Join(dir, "main.go"))
	require.NoError(t, err)
	assert.Equal(t, "package main", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "web", "index.html"))
	require.NoError(t, err)
	assert.Equal(t, "<h1>hi</h1>", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "main (1).go"))
	require.NoError(t, err)
	assert.Equal(t, "package other", string(data))
	assert.Equal(t, 13, results[2].Bytes)
}

func TestWriteDirStaysInsideTarget(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "out")
	e := NewExporter(zerolog.Nop())

	results, err := e.WriteDir(context.Background(), dir, []extract.ExtractedFile{
		{Name: "../../escape.txt", Content: "x"},
	}, false)
	require.NoError(t, err)
	require.True(t, results[0].OK())

	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestWriteDirSanitizes(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(zerolog.Nop())

	results, err := e.WriteDir(context.Background(), dir, []extract.ExtractedFile{
		{Name: "weird<>:name.txt", Content: "ok"},
		{Name: "", Content: "nameless"},
	}, true)
	require.NoError(t, err)
	assert.True(t, results[0].OK())
	assert.False(t, results[1].OK())

	_, err = os.Stat(filepath.Join(dir, "weird___name.txt"))
	assert.NoError(t, err)
}

func TestWriteDirCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := NewExporter(zerolog.Nop())
	results, err := e.WriteDir(ctx, t.TempDir(), sampleFiles(), false)
	require.NoError(t, err)
	for _, r := range results {
		assert.False(t, r.OK())
	}
}

func TestWriteZip(t *testing.T) {
	var buf bytes.Buffer
	results, err := WriteZip(&buf, sampleFiles(), false)
	require.NoError(t, err)
	require.Len(t, results, 3)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	got := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		got[f.Name] = string(body)
	}
	assert.Equal(t, map[string]string{
		"main.go":        "package main",
		"web/index.html": "<h1>hi</h1>",
		"main (1).go":    "package other",
	}, got)
}

func collidingFiles() []extract.ExtractedFile {
	return []extract.ExtractedFile{
		{Name: "a.py", Content: "first"},
		{Name: "a.py", Content: "second"},
		{Name: "a (1).py", Content: "third"},
	}
}

func TestUniqueNamesReservesGeneratedNames(t *testing.T) {
	names, errs := uniqueNames(collidingFiles(), false)
	assert.Equal(t, []string{"a.py", "a (1).py", "a (1) (1).py"}, names)
	assert.Equal(t, []error{nil, nil, nil}, errs)

	names, _ = uniqueNames([]extract.ExtractedFile{
		{Name: "a (1).py"}, {Name: "a.py"}, {Name: "a.py"},
	}, false)
	assert.Equal(t, []string{"a (1).py", "a.py", "a (2).py"}, names)
}

func TestWriteDirKeepsEveryCollidingFile(t *testing.T) {
	dir := t.TempDir()

	results, err := NewExporter(zerolog.Nop()).WriteDir(context.Background(), dir, collidingFiles(), false)
	require.NoError(t, err)
	require.Len(t, results, 3)

	want := map[string]string{"a.py": "first", "a (1).py": "second", "a (1) (1).py": "third"}
	for name, content := range want {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, content, string(data), name)
	}
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestWriteZipKeepsEveryCollidingFile(t *testing.T) {
	var buf bytes.Buffer
	_, err := WriteZip(&buf, collidingFiles(), false)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	got := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		got[f.Name] = string(body)
	}
	assert.Len(t, zr.File, 3)
	assert.Equal(t, map[string]string{"a.py": "first", "a (1).py": "second", "a (1) (1).py": "third"}, got)
}

func TestDownloadName(t *testing.T) {
	f := extract.ExtractedFile{Name: "my file?.py"}
	assert.Equal(t, "my file?.py", DownloadName(f, false))
	assert.Equal(t, "my_file_.py", DownloadName(f, true))
}
