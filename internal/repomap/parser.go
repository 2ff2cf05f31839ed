// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package repomap

import (
	"context"
	"embed"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/petar-djukic/go-repomap/pkg/types"
)

//go:embed queries/*.scm
var queryFS embed.FS

const (
	definitionPrefix = "name.definition."
	referencePrefix  = "name.reference."
)

// langSpec holds the tree-sitter grammar and the lazily compiled tag query
// for one language.
type langSpec struct {
	name      string
	lang      *sitter.Language
	queryOnce sync.Once
	query     *sitter.Query
	queryErr  error
}

// tagQuery compiles queries/<name>-tags.scm once. A missing file is reported
// as ErrNoQuery.
func (l *langSpec) tagQuery() (*sitter.Query, error) {
	l.queryOnce.Do(func() {
		data, err := queryFS.ReadFile(fmt.Sprintf("queries/%s-tags.scm", l.name))
		if err != nil {
			l.queryErr = ErrNoQuery
			return
		}
		q, err := sitter.NewQuery(data, l.lang)
		if err != nil {
			l.queryErr = fmt.Errorf("compiling %s query: %w", l.name, err)
			return
		}
		l.query = q
	})
	return l.query, l.queryErr
}

// TreeSitterParser is the default Parser, backed by smacker/go-tree-sitter.
type TreeSitterParser struct {
	langs      map[string]*langSpec
	extensions map[string]string
}

// NewTreeSitterParser returns a parser for Go, Python, JavaScript,
// TypeScript and TSX.
func NewTreeSitterParser() *TreeSitterParser {
	p := &TreeSitterParser{
		langs:      make(map[string]*langSpec),
		extensions: make(map[string]string),
	}
	p.register("go", golang.GetLanguage(), ".go")
	p.register("python", python.GetLanguage(), ".py", ".pyi")
	p.register("javascript", javascript.GetLanguage(), ".js", ".jsx", ".mjs", ".cjs")
	p.register("typescript", typescript.GetLanguage(), ".ts", ".mts", ".cts")
	p.register("tsx", tsx.GetLanguage(), ".tsx")
	return p
}

func (p *TreeSitterParser) register(name string, lang *sitter.Language, exts ...string) {
	p.langs[name] = &langSpec{name: name, lang: lang}
	for _, ext := range exts {
		p.extensions[ext] = name
	}
}

// Language returns the language name for path, or "" if unsupported.
func (p *TreeSitterParser) Language(path string) string {
	return p.extensions[strings.ToLower(filepath.Ext(path))]
}

// Parse runs the language's tag query over content.
func (p *TreeSitterParser) Parse(lang string, content []byte) ([]Capture, error) {
	spec, ok := p.langs[lang]
	if !ok {
		return nil, ErrNoQuery
	}
	q, err := spec.tagQuery()
	if err != nil {
		return nil, err
	}

	tree, err := p.parseTree(spec, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(q, tree.RootNode())

	type captureKey struct {
		name string
		line int
		kind types.TagKind
	}
	seen := make(map[captureKey]bool)
	var captures []Capture

	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, content)
		for _, c := range m.Captures {
			var kind types.TagKind
			switch cname := q.CaptureNameForId(c.Index); {
			case strings.HasPrefix(cname, definitionPrefix):
				kind = types.Definition
			case strings.HasPrefix(cname, referencePrefix):
				kind = types.Reference
			default:
				continue
			}
			key := captureKey{
				name: c.Node.Content(content),
				line: int(c.Node.StartPoint().Row) + 1,
				kind: kind,
			}
			if key.name == "" || seen[key] {
				continue
			}
			seen[key] = true
			captures = append(captures, Capture{Name: key.name, Line: key.line, Kind: kind})
		}
	}
	return captures, nil
}

// Span is the inclusive 1-based line range of a multi-line syntax node.
type Span struct {
	Start int
	End   int
}

// Spans returns the line ranges of every named multi-line node below the
// root, in document order. The tree context uses them to show the header
// line of each scope enclosing a line of interest.
func (p *TreeSitterParser) Spans(lang string, content []byte) ([]Span, error) {
	spec, ok := p.langs[lang]
	if !ok {
		return nil, ErrNoQuery
	}
	tree, err := p.parseTree(spec, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var spans []Span
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			start := int(child.StartPoint().Row) + 1
			end := int(child.EndPoint().Row) + 1
			if child.EndPoint().Column == 0 && end > start {
				end--
			}
			if end > start {
				spans = append(spans, Span{Start: start, End: end})
				walk(child)
			}
		}
	}
	walk(tree.RootNode())
	return spans, nil
}

func (p *TreeSitterParser) parseTree(spec *langSpec, content []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(spec.lang)

	tree, err := parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s source: %w", spec.name, err)
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, fmt.Errorf("parsing %s source: empty tree", spec.name)
	}
	return tree, nil
}
