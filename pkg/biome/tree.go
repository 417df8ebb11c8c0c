// Package biome implements the multi-noise KD-search tree and quarter-cell
// blending used to assign biomes to noise-generated chunks.
package biome

import (
	"fmt"
	"sort"

	"github.com/StoreStation/blockcore/pkg/registry"
)

const dims = 7 // temperature, humidity, continentalness, erosion, depth, weirdness, offset

// rect is a 7-D axis-aligned hyper-rectangle: the first 6 axes come from a
// Biome's NoiseHypercube, the 7th is the offset scalar treated as a
// degenerate [offset,offset] range.
type rect [dims][2]float64

func rectOf(h registry.NoiseHypercube) rect {
	return rect{
		{h.TemperatureLo, h.TemperatureHi},
		{h.HumidityLo, h.HumidityHi},
		{h.ContinentalnessLo, h.ContinentalnessHi},
		{h.ErosionLo, h.ErosionHi},
		{h.DepthLo, h.DepthHi},
		{h.WeirdnessLo, h.WeirdnessHi},
		{h.Offset, h.Offset},
	}
}

func union(a, b rect) rect {
	var out rect
	for i := 0; i < dims; i++ {
		out[i][0] = min(a[i][0], b[i][0])
		out[i][1] = max(a[i][1], b[i][1])
	}
	return out
}

func axisDistance(value, lo, hi float64) float64 {
	switch {
	case value < lo:
		d := lo - value
		return d * d
	case value > hi:
		d := value - hi
		return d * d
	default:
		return 0
	}
}

func (r rect) sqDistance(p [dims]float64) float64 {
	var sum float64
	for i := 0; i < dims; i++ {
		sum += axisDistance(p[i], r[i][0], r[i][1])
	}
	return sum
}

func (r rect) center(axis int) float64 {
	return (r[axis][0] + r[axis][1]) / 2
}

// Leaf is one biome entry in the tree, with the 7-D rectangle it occupies.
type Leaf struct {
	Biome int // index into the registry's biome table
	Rect  rect
}

// node is either an internal split node or a leaf, distinguished by leaf
// being non-nil.
type node struct {
	bbox   rect
	leaf   *Leaf
	left   *node
	right  *node
	parent *node
}

// Tree is the frozen multi-noise search structure built once at startup.
type Tree struct {
	root *node
}

// Build constructs a Tree from the overworld biome table. Construction
// fails on an empty leaf set.
func Build(reg *registry.Registry) (*Tree, error) {
	biomes := reg.Biomes()
	if len(biomes) == 0 {
		return nil, fmt.Errorf("biome: cannot build a search tree from zero leaves")
	}
	leaves := make([]*Leaf, len(biomes))
	for i, b := range biomes {
		leaves[i] = &Leaf{Biome: i, Rect: rectOf(b.Noise)}
	}
	return &Tree{root: buildNode(leaves)}, nil
}

func buildNode(leaves []*Leaf) *node {
	if len(leaves) == 1 {
		return &node{bbox: leaves[0].Rect, leaf: leaves[0]}
	}

	axis := widestVarianceAxis(leaves)
	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].Rect.center(axis) < leaves[j].Rect.center(axis)
	})
	mid := len(leaves) / 2
	left := buildNode(leaves[:mid])
	right := buildNode(leaves[mid:])
	n := &node{bbox: union(left.bbox, right.bbox), left: left, right: right}
	left.parent = n
	right.parent = n
	return n
}

func widestVarianceAxis(leaves []*Leaf) int {
	bestAxis := 0
	bestVariance := -1.0
	for axis := 0; axis < dims; axis++ {
		var sum, sumSq float64
		for _, l := range leaves {
			c := l.Rect.center(axis)
			sum += c
			sumSq += c * c
		}
		n := float64(len(leaves))
		mean := sum / n
		variance := sumSq/n - mean*mean
		if variance > bestVariance {
			bestVariance = variance
			bestAxis = axis
		}
	}
	return bestAxis
}

// Query performs a full branch-and-bound traversal (no cache) and returns
// the nearest leaf; its Biome field is the biome index.
func (t *Tree) Query(point [dims]float64) *Leaf {
	return t.queryNode(point).leaf
}

// queryNode is Query plus the winning node, so a Cache can record the path
// to it for the next lookup's short-circuit check.
func (t *Tree) queryNode(point [dims]float64) *node {
	best := t.root.anyLeafNode()
	bestDist := best.leaf.Rect.sqDistance(point)
	t.root.search(point, &best, &bestDist)
	return best
}

// anyLeafNode returns some leaf node reachable from n, used to seed
// best-so-far before the real traversal begins.
func (n *node) anyLeafNode() *node {
	if n.leaf != nil {
		return n
	}
	return n.left.anyLeafNode()
}

func (n *node) search(point [dims]float64, best **node, bestDist *float64) {
	if n.leaf != nil {
		d := n.leaf.Rect.sqDistance(point)
		if d < *bestDist {
			*bestDist = d
			*best = n
		}
		return
	}

	leftLower := n.left.bbox.sqDistance(point)
	rightLower := n.right.bbox.sqDistance(point)

	first, second := n.left, n.right
	firstLower, secondLower := leftLower, rightLower
	if rightLower < leftLower {
		first, second = n.right, n.left
		firstLower, secondLower = rightLower, leftLower
	}

	if firstLower <= *bestDist {
		first.search(point, best, bestDist)
	}
	if secondLower <= *bestDist {
		second.search(point, best, bestDist)
	}
}

func min(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func max(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
