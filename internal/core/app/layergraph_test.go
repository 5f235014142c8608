package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerGraph(t *testing.T) {
	root := writeTree(t, map[string]string{
		"layerguard.json":       layeredConfig,
		"src/domain/order.ts":   "import { price } from '../features/price';\nexport const order = price;\n",
		"src/domain/money.ts":   "export const money = 1;\n",
		"src/features/price.ts": "import { order } from '../domain/order';\nimport { money } from '../domain/money';\nexport const price = money;\n",
		"src/ui/Cart.ts":        "import { price } from '../features/price';\nimport { money } from '../domain/money';\nimport { cartHelper } from './helper';\nexport const cart = price;\n",
		"src/ui/helper.ts":      "export const cartHelper = 1;\n",
		"scripts/build.ts":      "import '../src/domain/money';\n",
	})

	g, err := newTestService(Options{}).LayerGraph(context.Background(), root, "")
	require.NoError(t, err)

	assert.Equal(t, []LayerNode{
		{Name: "domain", Files: 2},
		{Name: "features", Files: 1},
		{Name: "ui", Files: 2},
		{Name: "shared", Files: 0},
	}, g.Layers)
	assert.Equal(t, 1, g.Unassigned)
	assert.Equal(t, []LayerEdge{
		{From: "domain", To: "features", Imports: 1, Allowed: false, Cyclic: true},
		{From: "features", To: "domain", Imports: 2, Allowed: true, Cyclic: true},
		{From: "ui", To: "domain", Imports: 1, Allowed: false},
		{From: "ui", To: "features", Imports: 1, Allowed: true},
	}, g.Edges)
}

func TestLayerGraphMissingConfig(t *testing.T) {
	root := writeTree(t, map[string]string{"src/a.ts": "export const a = 1;\n"})

	_, err := newTestService(Options{}).LayerGraph(context.Background(), root, "")
	require.Error(t, err)
}
