package services

import (
	"fmt"

	"github.com/custodia-labs/simclust/internal/core/domain"
)

// disjointSet is a union-find structure over 0..n-1 with path compression
// and union by size.
type disjointSet struct {
	parent []int
	size   []int
}

func newDisjointSet(n int) *disjointSet {
	d := &disjointSet{
		parent: make([]int, n),
		size:   make([]int, n),
	}
	for i := range d.parent {
		d.parent[i] = i
		d.size[i] = 1
	}
	return d
}

func (d *disjointSet) find(x int) int {
	root := x
	for d.parent[root] != root {
		root = d.parent[root]
	}
	for d.parent[x] != root {
		next := d.parent[x]
		d.parent[x] = root
		x = next
	}
	return root
}

func (d *disjointSet) union(a, b int) {
	ra, rb := d.find(a), d.find(b)
	if ra == rb {
		return
	}
	if d.size[ra] < d.size[rb] {
		ra, rb = rb, ra
	}
	d.parent[rb] = ra
	d.size[ra] += d.size[rb]
}

// ConnectedComponents partitions 0..imageCount-1 using the edges whose weight
// is at least threshold.
//
// Components get dense 0-based ids in discovery order: vertices are scanned
// in ascending order and a component is numbered when its lowest vertex is
// reached. Vertices touched by no retained edge are collected into a single
// trailing component with id domain.UnclusteredID, emitted only if non-empty.
//
// Any threshold is accepted. A NaN weight or threshold retains no edge.
func ConnectedComponents(g domain.Graph, threshold float64, imageCount int) ([]domain.Component, error) {
	if imageCount < 0 {
		return nil, fmt.Errorf("%w: negative image count %d", domain.ErrInvalidInput, imageCount)
	}
	for i, e := range g.Edges {
		if e.Source < 0 || e.Source >= imageCount || e.Target < 0 || e.Target >= imageCount {
			return nil, fmt.Errorf("%w: edge %d (%d, %d) with %d images",
				domain.ErrIndexOutOfRange, i, e.Source, e.Target, imageCount)
		}
	}

	set := newDisjointSet(imageCount)
	touched := make([]bool, imageCount)
	for _, e := range g.Edges {
		if !(e.Weight >= threshold) {
			continue
		}
		set.union(e.Source, e.Target)
		touched[e.Source] = true
		touched[e.Target] = true
	}

	var components []domain.Component
	var residual []int
	byRoot := make(map[int]int)
	for v := 0; v < imageCount; v++ {
		if !touched[v] {
			residual = append(residual, v)
			continue
		}
		root := set.find(v)
		idx, ok := byRoot[root]
		if !ok {
			idx = len(components)
			byRoot[root] = idx
			components = append(components, domain.Component{ID: idx})
		}
		components[idx].Members = append(components[idx].Members, v)
	}
	if len(residual) > 0 {
		components = append(components, domain.Component{ID: domain.UnclusteredID, Members: residual})
	}
	return components, nil
}
