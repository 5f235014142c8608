package ports

import (
	"context"

	"layerguard/internal/core/config"
	"layerguard/internal/data/history"
	"layerguard/internal/engine/parser"
)

// SourceParser turns a file into a syntax tree. It must tolerate malformed
// input and return a best-effort tree rather than an error.
type SourceParser interface {
	Parse(path string, source []byte) (*parser.SyntaxTree, error)
}

// FileWalker lists analyzable files under a root as root-relative slash paths.
type FileWalker interface {
	ListSourceFiles(root string) ([]string, error)
}

// ConfigLoader produces the architecture config for a project root. An
// explicit path wins over discovery.
type ConfigLoader interface {
	LoadConfig(root, explicitPath string) (*config.ArchitectureConfig, error)
}

// RunStore persists check summaries for the history command.
type RunStore interface {
	SaveRun(ctx context.Context, run history.RunRecord) error
	LoadRuns(ctx context.Context, projectRoot string, limit int) ([]history.RunRecord, error)
	Close() error
}

// ChangeDetector answers version-control questions about a project root.
type ChangeDetector interface {
	CommitHash(root string) (string, error)
	ChangedFiles(root string) ([]string, error)
}
