package parser

import (
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// ParserPool recycles tree-sitter parser instances for one grammar so worker
// goroutines do not allocate a parser per file.
type ParserPool struct {
	lang *sitter.Language
	pool sync.Pool
}

// NewParserPool creates a pool for the given language grammar.
// The language must remain valid for the lifetime of the pool.
func NewParserPool(lang *sitter.Language) *ParserPool {
	p := &ParserPool{lang: lang}
	p.pool = sync.Pool{
		New: func() any {
			sp := sitter.NewParser()
			_ = sp.SetLanguage(lang)
			return sp
		},
	}
	return p
}

// Get returns a parser configured for the pool's language.
func (p *ParserPool) Get() *sitter.Parser {
	sp := p.pool.Get().(*sitter.Parser)
	_ = sp.SetLanguage(p.lang)
	return sp
}

// Put resets sp and returns it to the pool. Callers must not use sp afterwards.
func (p *ParserPool) Put(sp *sitter.Parser) {
	if sp == nil {
		return
	}
	sp.Reset()
	p.pool.Put(sp)
}
