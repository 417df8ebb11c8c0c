package biome

// Cache is the per-task "last leaf" scratchpad: a scalar state that
// must never be shared across tasks or goroutines. Each call to Query
// either short-circuits off the previous result or falls back to a
// full tree search and remembers the new path.
type Cache struct {
	path []*node // root .. leaf, from the previous query
}

// NewCache returns an empty per-task cache.
func NewCache() *Cache { return &Cache{} }

// Query returns the biome assigned to point, consulting the cache first:
// if the previously returned leaf is still closer to point than every
// sibling subtree walked up from it, it is returned without a fresh
// search.
func (c *Cache) Query(t *Tree, point [dims]float64) *Leaf {
	if leaf, ok := c.tryShortCircuit(point); ok {
		return leaf
	}
	n := t.queryNode(point)
	c.path = pathTo(n)
	return n.leaf
}

func (c *Cache) tryShortCircuit(point [dims]float64) (*Leaf, bool) {
	if len(c.path) == 0 {
		return nil, false
	}
	leafNode := c.path[len(c.path)-1]
	leafDist := leafNode.leaf.Rect.sqDistance(point)
	for i := len(c.path) - 2; i >= 0; i-- {
		parent := c.path[i]
		child := c.path[i+1]
		sibling := parent.left
		if sibling == child {
			sibling = parent.right
		}
		if sibling.bbox.sqDistance(point) < leafDist {
			return nil, false
		}
	}
	return leafNode.leaf, true
}

func pathTo(n *node) []*node {
	var path []*node
	for cur := n; cur != nil; cur = cur.parent {
		path = append(path, cur)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
