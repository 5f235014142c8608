package app

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"layerguard/internal/core/config"
	"layerguard/internal/core/errors"
	"layerguard/internal/engine/graph"
	"layerguard/internal/engine/parser"
	"layerguard/internal/engine/rules"
	"layerguard/internal/shared/observability"
)

type parsedFile struct {
	path    string
	source  []byte
	tree    *parser.SyntaxTree
	imports []parser.Import
}

// project is the parsed tree and import graph of one check. Files keep the
// walker's sorted order; unreadable files stay in the graph as nodes without
// a parsed entry.
type project struct {
	files  []string
	parsed []*parsedFile
	graph  *graph.ImportGraph
}

func (p *project) close() {
	for _, f := range p.parsed {
		if f != nil {
			f.tree.Close()
		}
	}
}

func (p *project) parsedCount() int {
	n := 0
	for _, f := range p.parsed {
		if f != nil {
			n++
		}
	}
	return n
}

// verifyCycles checks that every cycle node is a graph node. A failure means
// the graph and cycle scan disagree, which is a bug rather than user input.
func (p *project) verifyCycles() error {
	for _, cycle := range p.graph.CanonicalCycles() {
		for _, node := range cycle {
			if !p.graph.Has(node) {
				err := errors.New(errors.CodeInternal, "cycle references a file missing from the import graph")
				return errors.AddContext(err, errors.CtxPath, node)
			}
		}
	}
	return nil
}

func (s *Service) load(ctx context.Context, root string, cfg *config.ArchitectureConfig) (*project, error) {
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		err := errors.New(errors.CodeNotFound, "project root is not a directory")
		return nil, errors.AddContext(err, errors.CtxPath, root)
	}

	w, err := s.walkers(cfg.Exclude)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeConfig, "invalid exclude pattern"), errors.CtxPath, cfg.Source)
	}
	walkStart := time.Now()
	files, err := w.ListSourceFiles(root)
	if err != nil {
		return nil, errors.AddContext(errors.Wrap(err, errors.CodeInternal, "walk project"), errors.CtxPath, root)
	}
	observability.AnalysisDuration.WithLabelValues("walk").Observe(time.Since(walkStart).Seconds())

	proj := &project{files: files, parsed: make([]*parsedFile, len(files))}
	if err := s.parseAll(ctx, root, proj); err != nil {
		proj.close()
		return nil, err
	}

	_, span := observability.Tracer().Start(ctx, "check.graph")
	graphStart := time.Now()
	specifiers := make(map[string][]string, len(files))
	for _, f := range proj.parsed {
		if f == nil {
			continue
		}
		specs := make([]string, 0, len(f.imports))
		for _, imp := range f.imports {
			specs = append(specs, imp.Specifier)
		}
		specifiers[f.path] = specs
	}
	proj.graph = graph.Build(files, specifiers)
	cycles := proj.graph.CanonicalCycles()
	observability.GraphNodes.Set(float64(len(proj.graph.Nodes())))
	observability.GraphEdges.Set(float64(proj.graph.EdgeCount()))
	observability.GraphCycles.Set(float64(len(cycles)))
	observability.AnalysisDuration.WithLabelValues("graph").Observe(time.Since(graphStart).Seconds())
	span.SetAttributes(
		attribute.Int("graph.nodes", len(proj.graph.Nodes())),
		attribute.Int("graph.edges", proj.graph.EdgeCount()),
		attribute.Int("graph.cycles", len(cycles)),
	)
	span.End()
	return proj, nil
}

// parseAll reads and parses every walked file on the worker pool. Results are
// stored by walk index so scheduling cannot change their order.
func (s *Service) parseAll(ctx context.Context, root string, proj *project) error {
	ctx, span := observability.Tracer().Start(ctx, "check.parse", trace.WithAttributes(attribute.Int("files", len(proj.files))))
	defer span.End()
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, rel := range proj.files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			source, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
			if err != nil {
				observability.FileErrorsTotal.Inc()
				s.logger.Warn("skipping unreadable file", "path", rel, "error", err)
				return nil
			}
			tree, err := s.parser.Parse(rel, source)
			if err != nil {
				observability.FileErrorsTotal.Inc()
				s.logger.Warn("skipping unparsable file", "path", rel, "error", err)
				return nil
			}
			if tree.HasErrors() {
				s.logger.Debug("parsed with syntax errors", "path", rel)
			}
			proj.parsed[i] = &parsedFile{
				path:    rel,
				source:  source,
				tree:    tree,
				imports: parser.ExtractImports(tree),
			}
			observability.FilesAnalyzed.Inc()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return err
	}
	observability.AnalysisDuration.WithLabelValues("parse").Observe(time.Since(start).Seconds())
	return nil
}

func (s *Service) runRules(ctx context.Context, proj *project, cfg *config.ArchitectureConfig) ([]rules.Result, error) {
	ctx, span := observability.Tracer().Start(ctx, "check.rules")
	defer span.End()
	start := time.Now()

	engine := rules.DefaultEngine(cfg)
	results := make([]rules.Result, len(proj.parsed))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, f := range proj.parsed {
		if f == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = engine.Execute(&rules.Context{
				File:    f.path,
				Source:  f.source,
				Tree:    f.tree,
				Imports: f.imports,
				Config:  cfg,
				Graph:   proj.graph,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	observability.AnalysisDuration.WithLabelValues("rules").Observe(time.Since(start).Seconds())
	return results, nil
}
