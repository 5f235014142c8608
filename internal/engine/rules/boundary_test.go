package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"layerguard/internal/engine/graph"
	"layerguard/internal/engine/layers"
)

func boundaryRule(t *testing.T) *LayerBoundaryRule {
	t.Helper()
	return NewLayerBoundaryRule(layers.NewResolver(testConfig()))
}

func TestBoundaryViolationUIToDomain(t *testing.T) {
	source := "import React from 'react';\nimport { Bar } from '../domain/Bar';\n"
	ctx := newContext(t, testConfig(), "ui/Foo.tsx", source, nil)

	res := boundaryRule(t).Execute(ctx)
	require.Len(t, res.Violations, 1)
	v := res.Violations[0]
	assert.Equal(t, IDLayerBoundary, v.RuleID)
	assert.Equal(t, "ui/Foo.tsx", v.File)
	assert.Equal(t, 2, v.Line)
	assert.Equal(t, 1, v.Column)
	assert.Equal(t, `Layer "ui" cannot import from layer "domain". Allowed imports: features, shared`, v.Message)
}

func TestBoundaryAllowedImportsAreSilent(t *testing.T) {
	source := `import { useCart } from '../features/cart';
import { Button } from './Button';
import { format } from '../shared/format';
import { run } from '../scripts/run';
import lodash from 'lodash';
`
	ctx := newContext(t, testConfig(), "ui/Foo.tsx", source, nil)
	assert.True(t, boundaryRule(t).Execute(ctx).Passed())
}

func TestBoundaryLeafLayerListsNone(t *testing.T) {
	ctx := newContext(t, testConfig(), "src/domain/user.ts", "import { Cart } from '../features/cart';\n", nil)

	res := boundaryRule(t).Execute(ctx)
	require.Len(t, res.Violations, 1)
	assert.Equal(t, `Layer "domain" cannot import from layer "features". Allowed imports: none`, res.Violations[0].Message)
}

func TestBoundaryUnlayeredFileIsExempt(t *testing.T) {
	ctx := newContext(t, testConfig(), "src/main.ts", "import { Bar } from './domain/Bar';\n", nil)
	assert.True(t, boundaryRule(t).Execute(ctx).Passed())
}

func TestBoundaryUsesGraphResolution(t *testing.T) {
	// "../domain" only has a layer once resolved to its index file.
	g := graph.Build([]string{"src/ui/App.tsx", "src/domain/index.ts"}, map[string][]string{
		"src/ui/App.tsx": {"../domain"},
	})
	ctx := newContext(t, testConfig(), "src/ui/App.tsx", "import { User } from '../domain';\n", g)

	res := boundaryRule(t).Execute(ctx)
	require.Len(t, res.Violations, 1)
	assert.Contains(t, res.Violations[0].Message, `"domain"`)

	ctx.Graph = nil
	assert.True(t, boundaryRule(t).Execute(ctx).Passed())
}

func TestBoundaryToggleOff(t *testing.T) {
	cfg := testConfig()
	cfg.Rules.EnforceFeatureBoundaries = false
	ctx := newContext(t, cfg, "ui/Foo.tsx", "import { Bar } from '../domain/Bar';\n", nil)

	res := boundaryRule(t).Execute(ctx)
	assert.True(t, res.Passed())
	assert.Empty(t, res.Violations)
}
