package core

// BVHNode is an interior or leaf node of the bounding volume hierarchy.
// Its box always contains the union of its children's boxes. Leaves hold
// up to two primitives directly in Left/Right.
type BVHNode struct {
	Box   AABB
	Left  Object
	Right Object
}

// BVH represents a Bounding Volume Hierarchy for fast ray-object intersection
type BVH struct {
	Root Object
}

// NewBVH constructs a BVH from a slice of objects. Object bounding boxes must
// already be final world-space boxes (transforms and motion padding applied).
func NewBVH(objects []Object) *BVH {
	// Partitioning happens in place, so work on a copy of the caller's slice
	objectsCopy := make([]Object, len(objects))
	copy(objectsCopy, objects)

	return &BVH{
		Root: buildBVH(objectsCopy, 0),
	}
}

// buildBVH splits objects around the center of their union box on axis,
// cycling x -> y -> z with depth
func buildBVH(objects []Object, axis int) Object {
	switch len(objects) {
	case 0:
		return &BVHNode{Box: EmptyAABB()}
	case 1:
		return objects[0]
	case 2:
		return &BVHNode{
			Box:   objects[0].BoundingBox().Merge(objects[1].BoundingBox()),
			Left:  objects[0],
			Right: objects[1],
		}
	}

	box := objects[0].BoundingBox()
	for _, object := range objects[1:] {
		box = box.Merge(object.BoundingBox())
	}

	mid := partitionByCenter(objects, axis, box.Center().Axis(axis))
	if mid == 0 || mid == len(objects) {
		// Every center on one side; split by index so depth stays bounded
		mid = len(objects) / 2
	}

	nextAxis := (axis + 1) % 3
	return &BVHNode{
		Box:   box,
		Left:  buildBVH(objects[:mid], nextAxis),
		Right: buildBVH(objects[mid:], nextAxis),
	}
}

// partitionByCenter moves objects whose box center lies below pivot to the
// front and returns how many there are
func partitionByCenter(objects []Object, axis int, pivot float64) int {
	mid := 0
	for i, object := range objects {
		if object.BoundingBox().Center().Axis(axis) < pivot {
			objects[i], objects[mid] = objects[mid], objects[i]
			mid++
		}
	}
	return mid
}

// Intersect returns the nearest positive hit inside this subtree
func (node *BVHNode) Intersect(ray Ray) (Hit, bool) {
	t := node.Box.Intersect(ray)
	if t == Miss || t < 0 {
		return Hit{}, false
	}

	closest := NoHit()
	hitAnything := false

	for _, child := range [2]Object{node.Left, node.Right} {
		if child == nil {
			continue
		}
		if hit, ok := child.Intersect(ray); ok && hit.T > 0 && hit.T < closest.T {
			closest = hit
			hitAnything = true
		}
	}

	return closest, hitAnything
}

// BoundingBox returns the union box of the node's children
func (node *BVHNode) BoundingBox() AABB {
	return node.Box
}

// Intersect returns the nearest positive hit in the hierarchy. A single
// object is the root itself, so its hit is filtered here as well.
func (bvh *BVH) Intersect(ray Ray) (Hit, bool) {
	if bvh.Root == nil {
		return Hit{}, false
	}
	hit, ok := bvh.Root.Intersect(ray)
	if !ok || hit.T <= 0 {
		return Hit{}, false
	}
	return hit, true
}

// BoundingBox returns the box of the whole hierarchy
func (bvh *BVH) BoundingBox() AABB {
	if bvh.Root == nil {
		return EmptyAABB()
	}
	return bvh.Root.BoundingBox()
}

// Stats walks the hierarchy and counts its nodes and leaves. Meshes and
// instances count as one leaf each.
func (bvh *BVH) Stats() BVHStats {
	stats := BVHStats{}
	if bvh.Root == nil {
		return stats
	}
	collectStats(bvh.Root, 0, &stats)
	return stats
}

// BVHStats summarizes the shape of a hierarchy
type BVHStats struct {
	Nodes      int
	MaxDepth   int
	Primitives int
}

// collectStats recursively collects statistics about the BVH
func collectStats(object Object, depth int, stats *BVHStats) {
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	node, ok := object.(*BVHNode)
	if !ok {
		stats.Primitives++
		return
	}

	stats.Nodes++
	if node.Left != nil {
		collectStats(node.Left, depth+1, stats)
	}
	if node.Right != nil {
		collectStats(node.Right, depth+1, stats)
	}
}
