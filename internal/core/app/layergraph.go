package app

import (
	"context"

	"layerguard/internal/core/config"
	"layerguard/internal/engine/graph"
	"layerguard/internal/engine/layers"
)

// LayerNode is one configured layer and how many analyzed files it owns.
type LayerNode struct {
	Name  string `json:"name"`
	Files int    `json:"files"`
}

// LayerEdge aggregates the file imports from one layer into another.
type LayerEdge struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Imports int    `json:"imports"`
	// Allowed is false when From's allow-list does not name To.
	Allowed bool `json:"allowed"`
	// Cyclic marks edges crossed by at least one file import cycle.
	Cyclic bool `json:"cyclic"`
}

// LayerGraph is the import graph collapsed to layers. Layers keep document
// order and edges are sorted by that order. Same-layer and unlayered imports
// are left out.
type LayerGraph struct {
	Layers     []LayerNode `json:"layers"`
	Edges      []LayerEdge `json:"edges"`
	Unassigned int         `json:"unassigned"`
}

// LayerGraph analyzes the tree's imports and collapses them onto the
// configured layers.
func (s *Service) LayerGraph(ctx context.Context, root, configPath string) (LayerGraph, error) {
	cfg, err := s.LoadConfig(root, configPath)
	if err != nil {
		return LayerGraph{}, err
	}
	proj, err := s.load(ctx, root, cfg)
	if err != nil {
		return LayerGraph{}, err
	}
	defer proj.close()
	return collapseLayers(cfg, proj.graph), nil
}

type layerPair struct{ from, to string }

func collapseLayers(cfg *config.ArchitectureConfig, g *graph.ImportGraph) LayerGraph {
	resolver := layers.NewResolver(cfg)
	names := cfg.LayerNames()
	rank := make(map[string]int, len(names))
	for i, name := range names {
		rank[name] = i
	}

	out := LayerGraph{Layers: make([]LayerNode, len(names)), Edges: []LayerEdge{}}
	for i, name := range names {
		out.Layers[i].Name = name
	}

	counts := make(map[layerPair]int)
	for _, file := range g.Nodes() {
		from, ok := resolver.Resolve(file)
		if !ok {
			out.Unassigned++
			continue
		}
		out.Layers[rank[from]].Files++
		for _, target := range g.Imports(file) {
			to, ok := resolver.Resolve(target)
			if !ok || to == from {
				continue
			}
			counts[layerPair{from, to}]++
		}
	}

	cyclic := make(map[layerPair]bool)
	for _, cycle := range g.CanonicalCycles() {
		for i, file := range cycle {
			from, ok := resolver.Resolve(file)
			if !ok {
				continue
			}
			to, ok := resolver.Resolve(cycle[(i+1)%len(cycle)])
			if ok && to != from {
				cyclic[layerPair{from, to}] = true
			}
		}
	}

	for _, from := range names {
		layer, _ := cfg.Layer(from)
		for _, to := range names {
			pair := layerPair{from, to}
			n := counts[pair]
			if n == 0 {
				continue
			}
			out.Edges = append(out.Edges, LayerEdge{
				From:    from,
				To:      to,
				Imports: n,
				Allowed: layer.Allows(to),
				Cyclic:  cyclic[pair],
			})
		}
	}
	return out
}
