package graph

import (
	"slices"
	"sort"
	"strings"
)

// DetectCycles finds cycles with a depth-first search that keeps a recursion
// stack and a global visited set. Roots are tried in sorted order and
// neighbors in import order, so the result is deterministic. Each cycle is
// closed: its first and last elements are the same file. The same structural
// cycle may appear more than once; see Canonicalize.
func DetectCycles(g *ImportGraph) [][]string {
	var cycles [][]string
	visited := make(map[string]bool, len(g.nodes))
	onStack := make(map[string]bool)

	for _, node := range g.nodes {
		if !visited[node] {
			g.findCycles(node, visited, onStack, nil, &cycles)
		}
	}
	return cycles
}

func (g *ImportGraph) findCycles(curr string, visited, onStack map[string]bool, path []string, cycles *[][]string) {
	visited[curr] = true
	onStack[curr] = true
	path = append(path, curr)

	for _, next := range g.edges[curr] {
		if onStack[next] {
			start := slices.Index(path, next)
			if start != -1 {
				cycle := make([]string, 0, len(path)-start+1)
				cycle = append(cycle, path[start:]...)
				cycle = append(cycle, next)
				*cycles = append(*cycles, cycle)
			}
		} else if !visited[next] {
			g.findCycles(next, visited, onStack, path, cycles)
		}
	}

	onStack[curr] = false
}

// Canonicalize rotates a closed cycle so that its smallest file leads. Two
// traversals of the same cycle from different entry points canonicalize to
// the same sequence.
func Canonicalize(cycle []string) []string {
	open := cycle
	if len(open) > 1 && open[0] == open[len(open)-1] {
		open = open[:len(open)-1]
	}
	if len(open) == 0 {
		return nil
	}
	minIdx := 0
	for i, node := range open {
		if node < open[minIdx] {
			minIdx = i
		}
	}
	out := make([]string, 0, len(open)+1)
	out = append(out, open[minIdx:]...)
	out = append(out, open[:minIdx]...)
	return append(out, out[0])
}

// DistinctCycles canonicalizes raw cycles and drops repeats, returning them
// sorted by their canonical form.
func DistinctCycles(raw [][]string) [][]string {
	seen := make(map[string]bool, len(raw))
	var out [][]string
	for _, cycle := range raw {
		canonical := Canonicalize(cycle)
		if canonical == nil {
			continue
		}
		key := strings.Join(canonical, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, canonical)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.Join(out[i], "\x00") < strings.Join(out[j], "\x00")
	})
	return out
}

// FindImportChain returns the shortest chain of imports leading from one file
// to another, exploring neighbors in sorted order.
func (g *ImportGraph) FindImportChain(from, to string) ([]string, bool) {
	if !g.Has(from) || !g.Has(to) {
		return nil, false
	}
	if from == to {
		return []string{from}, true
	}

	queue := []string{from}
	visited := map[string]bool{from: true}
	prev := make(map[string]string)

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		neighbors := append([]string(nil), g.edges[curr]...)
		sort.Strings(neighbors)

		for _, next := range neighbors {
			if visited[next] {
				continue
			}
			visited[next] = true
			prev[next] = curr

			if next == to {
				path := []string{to}
				for node := to; node != from; {
					p, ok := prev[node]
					if !ok {
						return nil, false
					}
					path = append(path, p)
					node = p
				}
				slices.Reverse(path)
				return path, true
			}

			queue = append(queue, next)
		}
	}

	return nil, false
}
