package parser

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"layerguard/internal/core/errors"
	"layerguard/internal/shared/observability"
)

type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
)

// SourceExtensions are the file extensions the analyzer reads, in import
// resolution order.
var SourceExtensions = []string{".ts", ".tsx", ".js", ".jsx"}

var extensionLanguages = map[string]Language{
	".ts":  LangTypeScript,
	".tsx": LangTSX,
	".js":  LangJavaScript,
	".jsx": LangJavaScript,
}

// LanguageForPath maps a file extension to its grammar.
func LanguageForPath(path string) (Language, bool) {
	lang, ok := extensionLanguages[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// IsSourceFile reports whether path has one of the analyzed extensions.
func IsSourceFile(path string) bool {
	_, ok := LanguageForPath(path)
	return ok
}

// Parser turns JavaScript and TypeScript sources into syntax trees. It is safe
// for concurrent use; each language keeps its own pool of tree-sitter parsers.
type Parser struct {
	pools map[Language]*ParserPool
}

func New() *Parser {
	return &Parser{
		pools: map[Language]*ParserPool{
			LangJavaScript: NewParserPool(sitter.NewLanguage(tree_sitter_javascript.Language())),
			LangTypeScript: NewParserPool(sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())),
			LangTSX:        NewParserPool(sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())),
		},
	}
}

// Parse never fails on syntax errors; tree-sitter recovers and the tree
// carries ERROR nodes instead. The caller owns the returned tree and must
// Close it.
func (p *Parser) Parse(path string, source []byte) (*SyntaxTree, error) {
	lang, ok := LanguageForPath(path)
	if !ok {
		return nil, errors.AddContext(errors.New(errors.CodeNotSupported, "unsupported source extension"), errors.CtxPath, path)
	}
	pool := p.pools[lang]

	start := time.Now()
	sp := pool.Get()
	tree := sp.Parse(source, nil)
	pool.Put(sp)
	observability.ParsingDuration.WithLabelValues(string(lang)).Observe(time.Since(start).Seconds())

	if tree == nil {
		return nil, errors.AddContext(errors.New(errors.CodeInternal, fmt.Sprintf("%s parser returned no tree", lang)), errors.CtxPath, path)
	}
	return &SyntaxTree{
		Path:     path,
		Source:   source,
		Language: lang,
		tree:     tree,
	}, nil
}
