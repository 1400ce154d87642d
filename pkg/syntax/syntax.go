// Package syntax parses extracted files with tree-sitter to flag broken code before it is saved.
package syntax

import (
	"fmt"
	"sync"
	"unsafe"

	sitter "github.com/tree-sitter/go-tree-sitter"
	golang "github.com/tree-sitter/tree-sitter-go/bindings/go"
	javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/duynguyendang/maya/pkg/extract"
)

// Result describes one parse.
type Result struct {
	Grammar    string `json:"grammar,omitempty"`
	Supported  bool   `json:"supported"`
	Valid      bool   `json:"valid"`
	ErrorCount int    `json:"error_count,omitempty"`
	FirstError int    `json:"first_error_line,omitempty"`
}

// Note is the one-line summary shown on a preview card.
func (r Result) Note() string {
	switch {
	case !r.Supported:
		return ""
	case r.Valid:
		return r.Grammar + ": ok"
	default:
		return fmt.Sprintf("%s: %d syntax error(s), first on line %d", r.Grammar, r.ErrorCount, r.FirstError)
	}
}

var grammars = map[string]func() unsafe.Pointer{
	"go":         golang.Language,
	"python":     python.Language,
	"javascript": javascript.Language,
	"typescript": typescript.LanguageTypescript,
	"tsx":        typescript.LanguageTSX,
}

// grammarFor picks a grammar from the file's language, using the extension to tell TSX apart.
func grammarFor(f extract.ExtractedFile) string {
	if f.Language == "typescript" && (f.Extension == "tsx" || f.Extension == "TSX") {
		return "tsx"
	}
	if _, ok := grammars[f.Language]; ok {
		return f.Language
	}
	return ""
}

// Checker keeps one parser per grammar. Parsers are not safe for concurrent use,
// so each is guarded by its own lock.
type Checker struct {
	mu      sync.Mutex
	parsers map[string]*lockedParser
}

type lockedParser struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

func NewChecker() *Checker {
	return &Checker{parsers: make(map[string]*lockedParser)}
}

func (c *Checker) parserFor(grammar string) (*lockedParser, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.parsers[grammar]; ok {
		return p, nil
	}
	parser := sitter.NewParser()
	if err := parser.SetLanguage(sitter.NewLanguage(grammars[grammar]())); err != nil {
		parser.Close()
		return nil, fmt.Errorf("load %s grammar: %w", grammar, err)
	}
	p := &lockedParser{parser: parser}
	c.parsers[grammar] = p
	return p, nil
}

// Check parses f. Languages without a grammar come back as unsupported.
func (c *Checker) Check(f extract.ExtractedFile) Result {
	grammar := grammarFor(f)
	if grammar == "" {
		return Result{}
	}
	p, err := c.parserFor(grammar)
	if err != nil {
		return Result{Grammar: grammar}
	}

	content := []byte(f.Content)
	p.mu.Lock()
	if p.parser == nil {
		p.mu.Unlock()
		return Result{Grammar: grammar}
	}
	tree := p.parser.Parse(content, nil)
	p.mu.Unlock()
	if tree == nil {
		return Result{Grammar: grammar}
	}
	defer tree.Close()

	res := Result{Grammar: grammar, Supported: true}
	root := tree.RootNode()
	if !root.HasError() {
		res.Valid = true
		return res
	}
	countErrors(root, &res)
	if res.ErrorCount == 0 {
		res.ErrorCount = 1
		res.FirstError = int(root.StartPosition().Row) + 1
	}
	return res
}

func countErrors(n *sitter.Node, res *Result) {
	if n.IsError() || n.IsMissing() {
		res.ErrorCount++
		if res.FirstError == 0 {
			res.FirstError = int(n.StartPosition().Row) + 1
		}
		return
	}
	if !n.HasError() {
		return
	}
	for i := uint(0); i < n.ChildCount(); i++ {
		if child := n.Child(i); child != nil {
			countErrors(child, res)
		}
	}
}

// Close releases every parser. A Check still holding one reports the file
// as unsupported; later checks build fresh parsers.
func (c *Checker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, p := range c.parsers {
		p.mu.Lock()
		p.parser.Close()
		p.parser = nil
		p.mu.Unlock()
		delete(c.parsers, k)
	}
}

// Annotate fills SyntaxNote on cards for files with a supported grammar.
func (c *Checker) Annotate(files []extract.ExtractedFile, cards []extract.Card) {
	for i := range cards {
		if i < len(files) {
			cards[i].SyntaxNote = c.Check(files[i]).Note()
		}
	}
}
