package graph

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResolution(t *testing.T) {
	files := []string{
		"src/ui/App.tsx",
		"src/ui/Button.tsx",
		"src/domain/user.ts",
		"src/domain/index.ts",
		"src/shared/format.js",
		"src/shared/format.js.map.ts",
		"src/lib/index.jsx",
		"src/styles.ts",
	}
	g := Build(files, map[string][]string{
		"src/ui/App.tsx": {
			"react",               // package import, skipped
			"./Button",            // extension appended
			"../domain",           // directory index
			"../domain/user.ts",   // literal
			"../shared/format.js", // literal wins over .js.map.ts
			"../lib",              // index.jsx
			"/src/styles",         // rooted at project root
			"./Missing",           // unresolved, dropped
			"./Button",            // duplicates kept
			"@/ui/Button",         // alias, not relative
		},
	})

	assert.Equal(t, []string{
		"src/ui/Button.tsx",
		"src/domain/index.ts",
		"src/domain/user.ts",
		"src/shared/format.js",
		"src/lib/index.jsx",
		"src/styles.ts",
		"src/ui/Button.tsx",
	}, g.Imports("src/ui/App.tsx"))

	for _, file := range files {
		assert.True(t, g.Has(file), file)
	}
	assert.NotNil(t, g.Imports("src/domain/user.ts"))
	assert.Empty(t, g.Imports("src/domain/user.ts"))
	assert.Equal(t, 7, g.EdgeCount())
	assert.Len(t, g.Nodes(), len(files))
	assert.Equal(t, []string{"src/ui/App.tsx"}, g.Importers("src/ui/Button.tsx"))
}

func TestResolveExtensionOrder(t *testing.T) {
	g := Build([]string{"a.ts", "b.tsx", "b.js", "c/index.tsx", "c/index.ts"}, nil)

	got, ok := g.ResolveSpecifier("a.ts", "./b")
	require.True(t, ok)
	assert.Equal(t, "b.tsx", got)

	got, ok = g.ResolveSpecifier("a.ts", "./c")
	require.True(t, ok)
	assert.Equal(t, "c/index.ts", got)

	_, ok = g.ResolveSpecifier("a.ts", "../outside")
	assert.False(t, ok)
}

func TestJoinSpecifier(t *testing.T) {
	cases := []struct {
		from, spec, want string
		ok               bool
	}{
		{from: "src/ui/Foo.tsx", spec: "../domain/Bar", want: "src/domain/Bar", ok: true},
		{from: "Foo.tsx", spec: "./Bar", want: "Bar", ok: true},
		{from: "src/ui/Foo.tsx", spec: "/src/shared/x", want: "src/shared/x", ok: true},
		{from: "src/ui/Foo.tsx", spec: "lodash", ok: false},
	}
	for _, tc := range cases {
		got, ok := JoinSpecifier(tc.from, tc.spec)
		assert.Equal(t, tc.ok, ok, tc.spec)
		assert.Equal(t, tc.want, got, tc.spec)
	}
}

func TestDetectCyclesMutual(t *testing.T) {
	g := Build([]string{"a.ts", "b.ts"}, map[string][]string{
		"a.ts": {"./b"},
		"b.ts": {"./a"},
	})
	assert.Equal(t, [][]string{{"a.ts", "b.ts", "a.ts"}}, DetectCycles(g))
}

func TestDetectCyclesAcyclic(t *testing.T) {
	g := Build([]string{"a.ts", "b.ts", "c.ts"}, map[string][]string{
		"a.ts": {"./b"},
		"b.ts": {"./c"},
	})
	assert.Empty(t, DetectCycles(g))
}

func TestDetectCyclesSelfLoop(t *testing.T) {
	g := Build([]string{"a.ts"}, map[string][]string{"a.ts": {"./a"}})
	assert.Equal(t, [][]string{{"a.ts", "a.ts"}}, DetectCycles(g))
}

func TestDetectCyclesClosedAndNested(t *testing.T) {
	g := Build([]string{"a.ts", "b.ts", "c.ts", "d.ts"}, map[string][]string{
		"a.ts": {"./b"},
		"b.ts": {"./c"},
		"c.ts": {"./a", "./d"},
		"d.ts": {"./b"},
	})
	cycles := DetectCycles(g)
	require.Len(t, cycles, 2)
	for _, cycle := range cycles {
		assert.Equal(t, cycle[0], cycle[len(cycle)-1])
	}
	assert.Equal(t, []string{"a.ts", "b.ts", "c.ts", "a.ts"}, cycles[0])
	assert.Equal(t, []string{"b.ts", "c.ts", "d.ts", "b.ts"}, cycles[1])
}

func TestDetectCyclesDeterministic(t *testing.T) {
	files := []string{"x.ts", "y.ts", "z.ts"}
	specs := map[string][]string{
		"x.ts": {"./y"},
		"y.ts": {"./z"},
		"z.ts": {"./x"},
	}
	first := DetectCycles(Build(files, specs))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, DetectCycles(Build(files, specs)))
	}
}

func TestDetectCyclesDeep(t *testing.T) {
	const count = 5000
	files := make([]string, count)
	specs := make(map[string][]string, count)
	for i := 0; i < count; i++ {
		files[i] = fmt.Sprintf("m%05d.ts", i)
		specs[files[i]] = []string{fmt.Sprintf("./m%05d", (i+1)%count)}
	}
	cycles := DetectCycles(Build(files, specs))
	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0], count+1)
}

func TestCyclesComputedOnce(t *testing.T) {
	g := Build([]string{"a.ts", "b.ts"}, map[string][]string{
		"a.ts": {"./b"},
		"b.ts": {"./a"},
	})
	first := g.Cycles()
	second := g.Cycles()
	require.Len(t, first, 1)
	assert.Same(t, &first[0][0], &second[0][0])
}

func TestCanonicalize(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "a"}, Canonicalize([]string{"b", "c", "a", "b"}))
	assert.Equal(t, []string{"a", "b", "c", "a"}, Canonicalize([]string{"c", "a", "b", "c"}))
	assert.Equal(t, []string{"a", "a"}, Canonicalize([]string{"a", "a"}))
	assert.Nil(t, Canonicalize(nil))
}

func TestDistinctCycles(t *testing.T) {
	raw := [][]string{
		{"b", "c", "a", "b"},
		{"a", "b", "c", "a"},
		{"a", "c", "b", "a"},
	}
	assert.Equal(t, [][]string{
		{"a", "b", "c", "a"},
		{"a", "c", "b", "a"},
	}, DistinctCycles(raw))
}

func TestFindImportChain(t *testing.T) {
	g := Build([]string{"a.ts", "b.ts", "c.ts", "d.ts"}, map[string][]string{
		"a.ts": {"./c", "./b"},
		"b.ts": {"./d"},
		"c.ts": {"./d"},
	})

	chain, ok := g.FindImportChain("a.ts", "d.ts")
	require.True(t, ok)
	assert.Equal(t, []string{"a.ts", "b.ts", "d.ts"}, chain)

	chain, ok = g.FindImportChain("a.ts", "a.ts")
	require.True(t, ok)
	assert.Equal(t, []string{"a.ts"}, chain)

	_, ok = g.FindImportChain("d.ts", "a.ts")
	assert.False(t, ok)

	_, ok = g.FindImportChain("a.ts", "missing.ts")
	assert.False(t, ok)
}

func TestCanonicalCyclesDropsRepeats(t *testing.T) {
	// b.ts is reached first from a.ts, so the raw cycle starts at b.ts.
	g := Build([]string{"a.ts", "b.ts", "c.ts"}, map[string][]string{
		"a.ts": {"./b"},
		"b.ts": {"./c"},
		"c.ts": {"./b"},
	})
	assert.Equal(t, [][]string{{"b.ts", "c.ts", "b.ts"}}, g.Cycles())
	assert.Equal(t, [][]string{{"b.ts", "c.ts", "b.ts"}}, g.CanonicalCycles())
}
