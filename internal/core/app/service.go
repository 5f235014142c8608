// Package app orchestrates a check: walk, parse, graph, rules, aggregate.
package app

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"layerguard/internal/core/config"
	"layerguard/internal/core/errors"
	"layerguard/internal/core/ports"
	"layerguard/internal/data/history"
	"layerguard/internal/engine/parser"
	"layerguard/internal/engine/rules"
	"layerguard/internal/engine/walker"
	"layerguard/internal/shared/observability"
)

// WalkerFactory builds a file walker honoring a config's exclude globs.
type WalkerFactory func(excludes []string) (ports.FileWalker, error)

func defaultWalkers(excludes []string) (ports.FileWalker, error) {
	return walker.New(excludes)
}

type Options struct {
	// Workers bounds the parse and rule pools. Zero means GOMAXPROCS.
	Workers int
	Parser  ports.SourceParser
	Configs ports.ConfigLoader
	Walkers WalkerFactory
	// Store and Changes are optional; without them runs are not recorded
	// and ChangedOnly checks fail.
	Store   ports.RunStore
	Changes ports.ChangeDetector
	Logger  *slog.Logger
}

// Service runs architecture checks. It holds no per-check state and is safe
// for concurrent use.
type Service struct {
	workers int
	parser  ports.SourceParser
	configs ports.ConfigLoader
	walkers WalkerFactory
	store   ports.RunStore
	changes ports.ChangeDetector
	logger  *slog.Logger
}

func NewService(opts Options) *Service {
	s := &Service{
		workers: opts.Workers,
		parser:  opts.Parser,
		configs: opts.Configs,
		walkers: opts.Walkers,
		store:   opts.Store,
		changes: opts.Changes,
		logger:  opts.Logger,
	}
	if s.workers <= 0 {
		s.workers = runtime.GOMAXPROCS(0)
	}
	if s.parser == nil {
		s.parser = parser.New()
	}
	if s.configs == nil {
		s.configs = config.Loader{}
	}
	if s.walkers == nil {
		s.walkers = defaultWalkers
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

type CheckRequest struct {
	Root       string
	ConfigPath string
	// ChangedOnly keeps violations in files git reports as changed. The whole
	// tree is still analyzed so cycles and boundaries see every edge.
	ChangedOnly bool
	// Record saves a run summary to the history store when one is configured.
	Record bool
}

// Report is the outcome of one check.
type Report struct {
	Root          string            `json:"root"`
	Passed        bool              `json:"passed"`
	Violations    []rules.Violation `json:"violations"`
	FilesAnalyzed int               `json:"filesAnalyzed"`
	Duration      time.Duration     `json:"durationNs"`
	RuleCounts    map[string]int    `json:"ruleCounts"`
	Warnings      []string          `json:"warnings,omitempty"`
	CommitHash    string            `json:"commitHash,omitempty"`
}

// LoadConfig resolves the architecture config for root.
func (s *Service) LoadConfig(root, explicitPath string) (*config.ArchitectureConfig, error) {
	cfg, err := s.configs.LoadConfig(root, explicitPath)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxOperation, "load_config")
	}
	return cfg, nil
}

// Check loads the config for req.Root and analyzes the tree. Configuration
// errors abort before any file is read.
func (s *Service) Check(ctx context.Context, req CheckRequest) (Report, error) {
	cfg, err := s.LoadConfig(req.Root, req.ConfigPath)
	if err != nil {
		observability.ChecksTotal.WithLabelValues("error").Inc()
		return Report{}, err
	}
	for _, w := range cfg.Warnings() {
		s.logger.Warn("configuration warning", "path", cfg.Source, "warning", w)
	}
	return s.Analyze(ctx, req, cfg)
}

// Analyze runs the check with an already loaded config.
func (s *Service) Analyze(ctx context.Context, req CheckRequest, cfg *config.ArchitectureConfig) (Report, error) {
	ctx, span := observability.Tracer().Start(ctx, "check")
	defer span.End()
	start := time.Now()

	report, err := s.analyze(ctx, req, cfg)
	if err != nil {
		span.RecordError(err)
		observability.ChecksTotal.WithLabelValues("error").Inc()
		return Report{}, err
	}
	report.Duration = time.Since(start)
	observability.AnalysisDuration.WithLabelValues("total").Observe(report.Duration.Seconds())
	if report.Passed {
		observability.ChecksTotal.WithLabelValues("passed").Inc()
	} else {
		observability.ChecksTotal.WithLabelValues("failed").Inc()
	}

	if req.Record {
		s.record(ctx, report)
	}
	return report, nil
}

func (s *Service) analyze(ctx context.Context, req CheckRequest, cfg *config.ArchitectureConfig) (Report, error) {
	proj, err := s.load(ctx, req.Root, cfg)
	if err != nil {
		return Report{}, err
	}
	defer proj.close()

	if err := proj.verifyCycles(); err != nil {
		return Report{}, err
	}

	results, err := s.runRules(ctx, proj, cfg)
	if err != nil {
		return Report{}, err
	}
	agg := rules.Aggregate(results)

	if req.ChangedOnly {
		agg.Violations, err = s.filterChanged(req.Root, agg.Violations)
		if err != nil {
			return Report{}, err
		}
	}

	report := Report{
		Root:          req.Root,
		Passed:        agg.Passed(),
		Violations:    agg.Violations,
		FilesAnalyzed: proj.parsedCount(),
		RuleCounts:    countByRule(agg.Violations),
		Warnings:      cfg.Warnings(),
	}
	if report.Violations == nil {
		report.Violations = []rules.Violation{}
	}
	for id, n := range report.RuleCounts {
		observability.ViolationsTotal.WithLabelValues(id).Add(float64(n))
	}
	return report, nil
}

func (s *Service) filterChanged(root string, violations []rules.Violation) ([]rules.Violation, error) {
	if s.changes == nil {
		return nil, errors.New(errors.CodeNotSupported, "changed-only checks need a version control backend")
	}
	changed, err := s.changes.ChangedFiles(root)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxOperation, "changed_files")
	}
	keep := make(map[string]bool, len(changed))
	for _, file := range changed {
		keep[file] = true
	}
	out := violations[:0]
	for _, v := range violations {
		if keep[v.File] {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, report Report) {
	if s.store == nil {
		return
	}
	run := history.RunRecord{
		ProjectRoot:    report.Root,
		Timestamp:      time.Now().UTC(),
		FilesAnalyzed:  report.FilesAnalyzed,
		ViolationCount: len(report.Violations),
		Passed:         report.Passed,
		Duration:       report.Duration,
		RuleCounts:     report.RuleCounts,
	}
	if s.changes != nil {
		hash, err := s.changes.CommitHash(report.Root)
		if err != nil {
			s.logger.Debug("commit hash unavailable", "path", report.Root, "error", err)
		} else {
			run.CommitHash = hash
		}
	}
	if err := s.store.SaveRun(ctx, run); err != nil {
		s.logger.Warn("failed to record check run", "path", report.Root, "error", err)
	}
}

// History returns recorded runs for root, newest first.
func (s *Service) History(ctx context.Context, root string, limit int) ([]history.RunRecord, error) {
	if s.store == nil {
		return nil, errors.New(errors.CodeNotSupported, "no history store configured")
	}
	return s.store.LoadRuns(ctx, root, limit)
}

// countByRule has an entry for every built-in rule, zero when it passed.
func countByRule(violations []rules.Violation) map[string]int {
	counts := make(map[string]int, len(rules.Catalog))
	for _, d := range rules.Catalog {
		counts[d.ID] = 0
	}
	for _, v := range violations {
		counts[v.RuleID]++
	}
	return counts
}
