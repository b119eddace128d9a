// Package batching groups a Stage-0 plan's files into Stage-1 batches that
// keep related files together, using either caller-supplied enrichment
// relationships or a directory-proximity fallback when none is available.
package batching

import (
	"sort"

	"github.com/rostilos/codecrow/pkg/review"
)

// relationshipWeights mirrors the reference implementation's scoring table:
// stronger structural relationships (EXTENDS, IMPLEMENTS) outweigh looser
// ones (SAME_PACKAGE). Anything not listed defaults to 0.5.
var relationshipWeights = map[review.RelationshipType]float64{
	review.RelationshipImports:    0.90,
	review.RelationshipExtends:    0.95,
	review.RelationshipImplements: 0.95,
	review.RelationshipCalls:      0.85,
	review.RelationshipSamePkg:    0.60,
	review.RelationshipReferences: 0.50,
}

const defaultRelationshipWeight = 0.5

func weightOf(t review.RelationshipType) float64 {
	if w, ok := relationshipWeights[t]; ok {
		return w
	}
	return defaultRelationshipWeight
}

// maxRelationshipStrength caps a single node's accumulated relationship
// strength, so one hub file touching dozens of others doesn't dominate
// every sort comparison against it.
const maxRelationshipStrength = 5.0

type node struct {
	path                 string
	priority             review.Priority
	related              map[string]bool
	relationshipStrength float64
}

// graph is the per-request dependency graph over a plan's files.
type graph struct {
	nodes map[string]*node
}

func newGraph(plan *review.Plan) *graph {
	g := &graph{nodes: make(map[string]*node)}
	for _, group := range plan.Groups {
		for _, f := range group.Files {
			g.nodes[f.Path] = &node{path: f.Path, priority: group.Priority, related: map[string]bool{}}
		}
	}
	return g
}

// buildGraph constructs the dependency graph for a plan. When enrichment
// carries relationship data it is used directly (the caller already did
// the expensive relationship discovery, whether from tree-sitter metadata
// or the retrieval service's deterministic context) and each node's
// relationship strength is the sum of the typed-weight edges touching it,
// capped at maxRelationshipStrength. Otherwise files sharing a directory
// are treated as weakly related with no strength score, the same fallback
// the reference implementation uses when no richer signal exists — a
// fallback component only affects batch packing order, not strength sort.
func buildGraph(plan *review.Plan, enrichment *review.Enrichment) *graph {
	g := newGraph(plan)
	if enrichment.HasData() {
		g.applyRelationships(enrichment.Relationships)
	} else {
		g.applyDirectoryFallback()
	}
	return g
}

func (g *graph) applyRelationships(rels []review.FileRelationship) {
	strength := make(map[string]float64, len(g.nodes))
	for _, rel := range rels {
		src, ok1 := g.nodes[rel.SourceFile]
		dst, ok2 := g.nodes[rel.TargetFile]
		if !ok1 || !ok2 {
			continue
		}
		src.related[rel.TargetFile] = true
		dst.related[rel.SourceFile] = true

		w := weightOf(rel.Type)
		strength[rel.SourceFile] += w
		strength[rel.TargetFile] += w
	}
	for path, n := range g.nodes {
		total := strength[path]
		if total > maxRelationshipStrength {
			total = maxRelationshipStrength
		}
		n.relationshipStrength = total
	}
}

func (g *graph) applyDirectoryFallback() {
	byDir := make(map[string][]string)
	for path := range g.nodes {
		byDir[dirOf(path)] = append(byDir[dirOf(path)], path)
	}
	for _, paths := range byDir {
		if len(paths) < 2 {
			continue
		}
		for _, a := range paths {
			for _, b := range paths {
				if a != b {
					g.nodes[a].related[b] = true
				}
			}
		}
	}
}

func dirOf(path string) string {
	idx := -1
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// connectedComponents partitions the graph's nodes using union-find over
// file paths rather than recursive DFS, so a long relationship chain can't
// blow the call stack.
func (g *graph) connectedComponents() [][]string {
	uf := newUnionFind()
	for path := range g.nodes {
		uf.add(path)
	}
	for path, n := range g.nodes {
		for related := range n.related {
			if _, ok := g.nodes[related]; ok {
				uf.union(path, related)
			}
		}
	}

	byRoot := make(map[string][]string)
	for path := range g.nodes {
		root := uf.find(path)
		byRoot[root] = append(byRoot[root], path)
	}

	components := make([][]string, 0, len(byRoot))
	for _, members := range byRoot {
		sort.Strings(members)
		components = append(components, members)
	}
	return components
}

// unionFind is a standard disjoint-set structure with path compression and
// union by rank, keyed on file path.
type unionFind struct {
	parent map[string]string
	rank   map[string]int
}

func newUnionFind() *unionFind {
	return &unionFind{parent: map[string]string{}, rank: map[string]int{}}
}

func (u *unionFind) add(x string) {
	if _, ok := u.parent[x]; !ok {
		u.parent[x] = x
		u.rank[x] = 0
	}
}

func (u *unionFind) find(x string) string {
	root := x
	for u.parent[root] != root {
		root = u.parent[root]
	}
	for u.parent[x] != root {
		u.parent[x], x = root, u.parent[x]
	}
	return root
}

func (u *unionFind) union(a, b string) {
	ra, rb := u.find(a), u.find(b)
	if ra == rb {
		return
	}
	if u.rank[ra] < u.rank[rb] {
		ra, rb = rb, ra
	}
	u.parent[rb] = ra
	if u.rank[ra] == u.rank[rb] {
		u.rank[ra]++
	}
}
