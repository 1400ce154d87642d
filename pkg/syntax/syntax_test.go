package syntax

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/duynguyendang/maya/pkg/extract"
)

func TestCheck(t *testing.T) {
	c := NewChecker()
	defer c.Close()

	cases := []struct {
		file  extract.ExtractedFile
		valid bool
	}{
		{extract.ExtractedFile{Name: "main.go", Language: "go", Extension: "go", Content: "package main\n\nfunc main() {}\n"}, true},
		{extract.ExtractedFile{Name: "bad.go", Language: "go", Extension: "go", Content: "package main\n\nfunc main( {\n"}, false},
		{extract.ExtractedFile{Name: "app.py", Language: "python", Extension: "py", Content: "def f(x):\n    return x\n"}, true},
		{extract.ExtractedFile{Name: "bad.py", Language: "python", Extension: "py", Content: "def f(:\n"}, false},
		{extract.ExtractedFile{Name: "a.js", Language: "javascript", Extension: "js", Content: "const a = () => 1;\n"}, true},
		{extract.ExtractedFile{Name: "a.ts", Language: "typescript", Extension: "ts", Content: "let n: number = 1;\n"}, true},
		{extract.ExtractedFile{Name: "c.tsx", Language: "typescript", Extension: "tsx", Content: "const c = <div>hi</div>;\n"}, true},
	}
	for _, tc := range cases {
		res := c.Check(tc.file)
		assert.True(t, res.Supported, tc.file.Name)
		assert.Equal(t, tc.valid, res.Valid, tc.file.Name)
		if !tc.valid {
			assert.Positive(t, res.ErrorCount, tc.file.Name)
			assert.Positive(t, res.FirstError, tc.file.Name)
		}
	}
}

func TestCheckUnsupported(t *testing.T) {
	c := NewChecker()
	defer c.Close()

	res := c.Check(extract.ExtractedFile{Name: "q.sql", Language: "sql", Extension: "sql", Content: "SELECT 1"})
	assert.False(t, res.Supported)
	assert.Empty(t, res.Note())
}

func TestAnnotate(t *testing.T) {
	c := NewChecker()
	defer c.Close()

	files := []extract.ExtractedFile{
		{Name: "main.go", Language: "go", Extension: "go", Content: "package main\n"},
		{Name: "notes.md", Language: "markdown", Extension: "md", Content: "# hi"},
	}
	cards := extract.Cards(files)
	c.Annotate(files, cards)
	assert.Equal(t, "go: ok", cards[0].SyntaxNote)
	assert.Empty(t, cards[1].SyntaxNote)
}

func TestCloseWhileChecking(t *testing.T) {
	c := NewChecker()
	f := extract.ExtractedFile{Name: "main.go", Language: "go", Extension: "go", Content: "package main\n"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				res := c.Check(f)
				assert.Equal(t, "go", res.Grammar)
			}
		}()
	}
	for i := 0; i < 5; i++ {
		c.Close()
	}
	wg.Wait()

	assert.True(t, c.Check(f).Valid, "a closed checker builds a fresh parser")
	c.Close()
}
