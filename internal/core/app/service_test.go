package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layerguard/internal/core/errors"
	"layerguard/internal/data/history"
	"layerguard/internal/engine/parser"
	"layerguard/internal/engine/rules"
)

const layeredConfig = `{
  "layers": {
    "domain": { "allowedImports": [] },
    "features": { "allowedImports": ["domain", "shared"] },
    "ui": { "allowedImports": ["features", "shared"] },
    "shared": { "allowedImports": [] }
  }
}`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func newTestService(opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Workers == 0 {
		opts.Workers = 4
	}
	return NewService(opts)
}

func check(t *testing.T, svc *Service, root string) Report {
	t.Helper()
	report, err := svc.Check(context.Background(), CheckRequest{Root: root})
	require.NoError(t, err)
	return report
}

func byRule(report Report, id string) []rules.Violation {
	var out []rules.Violation
	for _, v := range report.Violations {
		if v.RuleID == id {
			out = append(out, v)
		}
	}
	return out
}

func TestCheckBoundaryViolation(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json":     layeredConfig,
		"src/ui/Foo.ts":       "import { bar } from '../domain/Bar';\nexport const foo = bar;\n",
		"src/domain/Bar.ts":   "export const bar = 1;\n",
		"src/features/Baz.ts": "import { bar } from '../domain/Bar';\nexport const baz = bar;\n",
	})

	report := check(t, newTestService(Options{}), root)
	assert.False(t, report.Passed)
	assert.Equal(t, 3, report.FilesAnalyzed)

	found := byRule(report, rules.IDLayerBoundary)
	require.Len(t, found, 1)
	assert.Equal(t, "src/ui/Foo.ts", found[0].File)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, 1, found[0].Column)
	assert.Equal(t, `Layer "ui" cannot import from layer "domain". Allowed imports: features, shared`, found[0].Message)
	assert.Equal(t, 1, report.RuleCounts[rules.IDLayerBoundary])
	assert.Equal(t, 0, report.RuleCounts[rules.IDCircularDeps])
}

func TestCheckAllowedImportIsSilent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json":     layeredConfig,
		"src/ui/Foo.ts":       "import { bar } from '../features/Bar';\nexport const foo = bar;\n",
		"src/features/Bar.ts": "export const bar = 1;\n",
	})

	report := check(t, newTestService(Options{}), root)
	assert.True(t, report.Passed)
	assert.Empty(t, report.Violations)
	assert.NotNil(t, report.Violations)
}

func TestCheckCycleReportedOnce(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json": layeredConfig,
		"b.ts":            "import { a } from './a';\nexport const b = 1;\n",
		"a.ts":            "import { b } from './b';\nexport const a = 1;\n",
	})

	report := check(t, newTestService(Options{}), root)
	found := byRule(report, rules.IDCircularDeps)
	require.Len(t, found, 1)
	assert.Equal(t, "a.ts", found[0].File)
	assert.Equal(t, 1, found[0].Line)
	assert.Equal(t, 1, found[0].Column)
	assert.Equal(t, "Circular dependency detected: a.ts -> b.ts -> a.ts", found[0].Message)
}

func TestCheckAcyclicChain(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json": layeredConfig,
		"a.ts":            "import { b } from './b';\n",
		"b.ts":            "import { c } from './c';\n",
		"c.ts":            "export const c = 1;\n",
	})

	report := check(t, newTestService(Options{}), root)
	assert.Empty(t, byRule(report, rules.IDCircularDeps))
	assert.True(t, report.Passed)
}

const userListSource = `import React from 'react';

function UserList() {
  for (let i = 0; i < 3; i++) {
    console.log(i);
  }
  return <div />;
}
`

const profileSource = `import React from 'react';
import axios from 'axios';

export function Profile() {
  axios.get('/x');
  return null;
}
`

func TestCheckBusinessLogicInComponent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json":     layeredConfig,
		"src/ui/UserList.jsx": userListSource,
		"src/ui/helpers.jsx":  strings.Replace(userListSource, "function UserList", "function userList", 1),
	})

	report := check(t, newTestService(Options{}), root)
	found := byRule(report, rules.IDBusinessLogic)
	require.Len(t, found, 1)
	assert.Equal(t, "src/ui/UserList.jsx", found[0].File)
	assert.Equal(t, 4, found[0].Line)
	assert.Equal(t, 3, found[0].Column)
}

func TestCheckDataFetchingLocation(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json":    layeredConfig,
		"src/ui/Profile.tsx": profileSource,
	})

	report := check(t, newTestService(Options{}), root)
	found := byRule(report, rules.IDDataFetching)
	require.NotEmpty(t, found)
	assert.Equal(t, 5, found[0].Line)
	assert.Equal(t, 3, found[0].Column)
	assert.Contains(t, found[0].Message, "axios")
}

func TestCheckIsIdempotent(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json":     layeredConfig,
		"src/ui/Foo.tsx":      "import React from 'react';\nimport { x } from '../domain/x';\nexport function Foo() { return x.items.map((i) => i ? 1 : 2); }\n",
		"src/domain/x.ts":     "import { y } from '../features/y';\nexport const x = y;\n",
		"src/features/y.ts":   "import { x } from '../domain/x';\nexport const y = x;\n",
		"src/shared/index.ts": "import '../ui/Foo';\n",
		"a.ts":                "import './b';\n",
		"b.ts":                "import './a';\n",
	})

	svc := newTestService(Options{Workers: 8})
	first := check(t, svc, root)
	second := check(t, svc, root)
	require.NotEmpty(t, first.Violations)
	assert.Equal(t, first.Violations, second.Violations)

	a, err := json.Marshal(first.Violations)
	require.NoError(t, err)
	b, err := json.Marshal(second.Violations)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	single := check(t, newTestService(Options{Workers: 1}), root)
	assert.Equal(t, first.Violations, single.Violations)
}

func TestCheckToggleOff(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json": `{
  "layers": {
    "domain": { "allowedImports": [] },
    "ui": { "allowedImports": [] }
  },
  "rules": { "enforceFeatureBoundaries": false }
}`,
		"src/ui/Foo.ts":     "import { bar } from '../domain/Bar';\n",
		"src/domain/Bar.ts": "export const bar = 1;\n",
	})

	report := check(t, newTestService(Options{}), root)
	assert.Empty(t, byRule(report, rules.IDLayerBoundary))
	assert.True(t, report.Passed)
}

func TestCheckHonorsExcludes(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json":      `{"layers": {"domain": {"allowedImports": []}, "ui": {"allowedImports": []}}, "exclude": ["src/legacy/**"]}`,
		"src/legacy/ui/Old.ts": "import '../../domain/Bar';\n",
		"src/domain/Bar.ts":    "export const bar = 1;\n",
		"node_modules/x/ui.ts": "import '../domain/Bar';\n",
	})

	report := check(t, newTestService(Options{}), root)
	assert.True(t, report.Passed)
	assert.Equal(t, 1, report.FilesAnalyzed)
}

func TestCheckConfigErrorAbortsBeforeAnalysis(t *testing.T) {
	root := writeTree(t, map[string]string{"src/ui/Foo.ts": "export {};\n"})
	_, err := newTestService(Options{}).Check(context.Background(), CheckRequest{Root: root})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeConfig))

	root = writeTree(t, map[string]string{"layerguard.json": `{"layers": []}`})
	_, err = newTestService(Options{}).Check(context.Background(), CheckRequest{Root: root})
	assert.True(t, errors.IsCode(err, errors.CodeConfig))
}

func TestCheckMissingRoot(t *testing.T) {
	cfgPath := filepath.Join(writeTree(t, map[string]string{"layerguard.json": layeredConfig}), "layerguard.json")
	_, err := newTestService(Options{}).Check(context.Background(), CheckRequest{
		Root:       filepath.Join(t.TempDir(), "missing"),
		ConfigPath: cfgPath,
	})
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestCheckCancelled(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json": layeredConfig,
		"a.ts":            "export const a = 1;\n",
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestService(Options{}).Check(ctx, CheckRequest{Root: root})
	assert.ErrorIs(t, err, context.Canceled)
}

type failingParser struct {
	inner *parser.Parser
	fail  string
}

func (p failingParser) Parse(path string, source []byte) (*parser.SyntaxTree, error) {
	if path == p.fail {
		return nil, errors.New(errors.CodeInternal, "boom")
	}
	return p.inner.Parse(path, source)
}

func TestCheckSkipsFilesThatFailToParse(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json": layeredConfig,
		"a.ts":            "import './b';\n",
		"b.ts":            "import './a';\n",
	})
	svc := newTestService(Options{Parser: failingParser{inner: parser.New(), fail: "b.ts"}})

	report := check(t, svc, root)
	assert.Equal(t, 1, report.FilesAnalyzed)
	assert.Empty(t, byRule(report, rules.IDCircularDeps))
}

type fakeChanges struct {
	changed []string
	hash    string
}

func (f fakeChanges) CommitHash(string) (string, error)     { return f.hash, nil }
func (f fakeChanges) ChangedFiles(string) ([]string, error) { return f.changed, nil }

func TestCheckChangedOnly(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json":   layeredConfig,
		"src/ui/Foo.ts":     "import '../domain/Bar';\n",
		"src/ui/Qux.ts":     "import '../domain/Bar';\n",
		"src/domain/Bar.ts": "export const bar = 1;\n",
	})

	_, err := newTestService(Options{}).Check(context.Background(), CheckRequest{Root: root, ChangedOnly: true})
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))

	svc := newTestService(Options{Changes: fakeChanges{changed: []string{"src/ui/Qux.ts"}}})
	report, err := svc.Check(context.Background(), CheckRequest{Root: root, ChangedOnly: true})
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, "src/ui/Qux.ts", report.Violations[0].File)
}

type memoryStore struct {
	mu   sync.Mutex
	runs []history.RunRecord
}

func (m *memoryStore) SaveRun(_ context.Context, run history.RunRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, run)
	return nil
}

func (m *memoryStore) LoadRuns(_ context.Context, root string, limit int) ([]history.RunRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []history.RunRecord
	for i := len(m.runs) - 1; i >= 0; i-- {
		if m.runs[i].ProjectRoot == root {
			out = append(out, m.runs[i])
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryStore) Close() error { return nil }

func TestCheckRecordsRuns(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json":   layeredConfig,
		"src/ui/Foo.ts":     "import '../domain/Bar';\n",
		"src/domain/Bar.ts": "export const bar = 1;\n",
	})
	store := &memoryStore{}
	svc := newTestService(Options{Store: store, Changes: fakeChanges{hash: "abc123"}})

	_, err := svc.Check(context.Background(), CheckRequest{Root: root})
	require.NoError(t, err)
	assert.Empty(t, store.runs)

	_, err = svc.Check(context.Background(), CheckRequest{Root: root, Record: true})
	require.NoError(t, err)

	runs, err := svc.History(context.Background(), root, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "abc123", runs[0].CommitHash)
	assert.False(t, runs[0].Passed)
	assert.Equal(t, 1, runs[0].ViolationCount)
	assert.Equal(t, 2, runs[0].FilesAnalyzed)
	assert.Equal(t, 1, runs[0].RuleCounts[rules.IDLayerBoundary])

	_, err = newTestService(Options{}).History(context.Background(), root, 1)
	assert.True(t, errors.IsCode(err, errors.CodeNotSupported))
}

func TestTrace(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json":            layeredConfig,
		"src/ui/Foo.ts":              "import '../features/user';\n",
		"src/features/user/index.ts": "import '../../domain/User';\n",
		"src/domain/User.ts":         "export const user = 1;\n",
	})
	svc := newTestService(Options{})

	res, err := svc.Trace(context.Background(), TraceRequest{Root: root, From: "src/ui/Foo.ts", To: "src/domain/User.ts"})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, []string{"src/ui/Foo.ts", "src/features/user/index.ts", "src/domain/User.ts"}, res.Chain)

	res, err = svc.Trace(context.Background(), TraceRequest{Root: root, From: "src/domain/User.ts", To: "src/ui/Foo.ts"})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Chain)
	assert.Empty(t, res.Importers)

	res, err = svc.Trace(context.Background(), TraceRequest{Root: root, From: "src/domain/User.ts", To: "src/features/user/index.ts"})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Equal(t, []string{"src/ui/Foo.ts"}, res.Importers)

	_, err = svc.Trace(context.Background(), TraceRequest{Root: root, From: "src/nope.ts", To: "src/ui/Foo.ts"})
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}
