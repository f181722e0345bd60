package core

import (
	"math"
	"math/rand"
	"testing"
)

// MockShape for testing
type MockShape struct {
	boundingBox AABB
	hitFn       func(ray Ray) (Hit, bool)
}

func (m MockShape) Intersect(ray Ray) (Hit, bool) {
	return m.hitFn(ray)
}

func (m MockShape) BoundingBox() AABB {
	return m.boundingBox
}

// boxShape is a solid box whose hit distance is its own slab test
type boxShape struct {
	box AABB
	id  int
}

func (b boxShape) Intersect(ray Ray) (Hit, bool) {
	t := b.box.Intersect(ray)
	if t == Miss || t <= 0 {
		return Hit{}, false
	}
	return Hit{T: t, Point: ray.At(t), MaterialID: b.id}, true
}

func (b boxShape) BoundingBox() AABB {
	return b.box
}

func missFn(ray Ray) (Hit, bool) {
	return Hit{}, false
}

func TestBVH_SmallCounts(t *testing.T) {
	unit := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))

	t.Run("empty", func(t *testing.T) {
		bvh := NewBVH(nil)
		ray := NewRay(NewVec3(-1, 0.5, 0.5), NewVec3(1, 0, 0))
		if _, isHit := bvh.Intersect(ray); isHit {
			t.Error("Expected no hit for empty BVH")
		}
		if stats := bvh.Stats(); stats.Primitives != 0 {
			t.Errorf("Expected no shapes, got %d", stats.Primitives)
		}
	})

	t.Run("single object is passed through", func(t *testing.T) {
		shape := MockShape{boundingBox: unit, hitFn: missFn}
		bvh := NewBVH([]Object{shape})
		if _, isNode := bvh.Root.(*BVHNode); isNode {
			t.Error("Expected the object itself as root, got an interior node")
		}
	})

	t.Run("single object keeps only positive hits", func(t *testing.T) {
		tests := []struct {
			name    string
			hitT    float64
			wantHit bool
		}{
			{"behind the origin", -5e-7, false},
			{"at the origin", 0, false},
			{"in front", 0.5, true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				shape := MockShape{boundingBox: unit, hitFn: func(ray Ray) (Hit, bool) {
					return Hit{T: tt.hitT}, true
				}}
				bvh := NewBVH([]Object{shape})
				_, ok := bvh.Intersect(NewRay(NewVec3(-1, 0.5, 0.5), NewVec3(1, 0, 0)))
				if ok != tt.wantHit {
					t.Errorf("hit at t=%g: got hit=%t, want %t", tt.hitT, ok, tt.wantHit)
				}
			})
		}
	})

	t.Run("two objects share one leaf", func(t *testing.T) {
		shapes := []Object{
			MockShape{boundingBox: unit, hitFn: missFn},
			MockShape{boundingBox: NewAABB(NewVec3(2, 0, 0), NewVec3(3, 1, 1)), hitFn: missFn},
		}
		bvh := NewBVH(shapes)
		stats := bvh.Stats()
		if stats.Nodes != 1 || stats.Primitives != 2 {
			t.Errorf("Expected 1 node holding 2 shapes, got %d nodes and %d shapes", stats.Nodes, stats.Primitives)
		}
		box := bvh.BoundingBox()
		if box.Min != NewVec3(0, 0, 0) || box.Max != NewVec3(3, 1, 1) {
			t.Errorf("Expected union box, got %v", box)
		}
	})
}

func TestBVH_MultipleHitsInLeaf(t *testing.T) {
	// Helper function to create hit function with specific t value
	makeHitFn := func(tValue float64) func(ray Ray) (Hit, bool) {
		return func(ray Ray) (Hit, bool) {
			if ray.Direction.X > 0 {
				return Hit{T: tValue}, true
			}
			return Hit{}, false
		}
	}

	shapes := []Object{
		MockShape{
			boundingBox: NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1)),
			hitFn:       makeHitFn(2.0),
		},
		MockShape{
			boundingBox: NewAABB(NewVec3(0.5, 0, 0), NewVec3(1.5, 1, 1)),
			hitFn:       makeHitFn(1.0), // closest
		},
		MockShape{
			boundingBox: NewAABB(NewVec3(1.0, 0, 0), NewVec3(2.0, 1, 1)),
			hitFn:       makeHitFn(3.0),
		},
		MockShape{
			boundingBox: NewAABB(NewVec3(1.0, 0, 0), NewVec3(2.0, 1, 1)),
			hitFn:       makeHitFn(-0.5), // behind the origin, never wins
		},
	}

	bvh := NewBVH(shapes)
	ray := NewRay(NewVec3(-1, 0.5, 0.5), NewVec3(1, 0, 0))

	hit, isHit := bvh.Intersect(ray)
	if !isHit {
		t.Fatal("Expected hit")
	}

	if math.Abs(hit.T-1.0) > 1e-9 {
		t.Errorf("Expected closest hit at t=1.0, got t=%f", hit.T)
	}
}

func TestBVH_RayHitsBoundingBoxButMissesShapes(t *testing.T) {
	shapes := []Object{
		MockShape{boundingBox: NewAABB(NewVec3(0, 0, 0), NewVec3(2, 2, 2)), hitFn: missFn},
		MockShape{boundingBox: NewAABB(NewVec3(3, 0, 0), NewVec3(4, 2, 2)), hitFn: missFn},
		MockShape{boundingBox: NewAABB(NewVec3(5, 0, 0), NewVec3(6, 2, 2)), hitFn: missFn},
	}

	bvh := NewBVH(shapes)
	ray := NewRay(NewVec3(-1, 1, 1), NewVec3(1, 0, 0))

	if _, isHit := bvh.Intersect(ray); isHit {
		t.Error("Expected miss when ray hits bounding box but misses shape")
	}
}

func TestBVH_IdenticalCentersTerminate(t *testing.T) {
	// All centers coincide, so the center partition never separates anything
	sameBoundingBox := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	const count = 1000

	shapes := make([]Object, count)
	for i := 0; i < count; i++ {
		tValue := float64(count - i)
		shapes[i] = MockShape{
			boundingBox: sameBoundingBox,
			hitFn: func(ray Ray) (Hit, bool) {
				return Hit{T: tValue}, true
			},
		}
	}

	bvh := NewBVH(shapes)
	stats := bvh.Stats()

	if stats.Primitives != count {
		t.Errorf("Expected %d shapes, got %d", count, stats.Primitives)
	}
	// Midpoint fallback keeps the depth at ceil(log2 n)
	if limit := int(math.Ceil(math.Log2(count))); stats.MaxDepth > limit {
		t.Errorf("Expected depth <= %d, got %d", limit, stats.MaxDepth)
	}

	hit, isHit := bvh.Intersect(NewRay(NewVec3(-1, 0.5, 0.5), NewVec3(1, 0, 0)))
	if !isHit || hit.T != 1 {
		t.Errorf("Expected nearest hit t=1, got %v (hit=%t)", hit.T, isHit)
	}
}

func TestBVH_MatchesBruteForce(t *testing.T) {
	random := rand.New(rand.NewSource(7))

	// Disjoint unit boxes on a jittered grid
	var shapes []Object
	id := 0
	for x := 0; x < 6; x++ {
		for y := 0; y < 6; y++ {
			for z := 0; z < 6; z++ {
				min := NewVec3(float64(x)*3, float64(y)*3, float64(z)*3).
					Add(NewVec3(random.Float64(), random.Float64(), random.Float64()))
				shapes = append(shapes, boxShape{box: NewAABB(min, min.Add(NewVec3(1, 1, 1))), id: id})
				id++
			}
		}
	}

	bvh := NewBVH(shapes)

	bruteForce := func(ray Ray) (Hit, bool) {
		closest := NoHit()
		found := false
		for _, shape := range shapes {
			if hit, ok := shape.Intersect(ray); ok && hit.T < closest.T {
				closest = hit
				found = true
			}
		}
		return closest, found
	}

	for i := 0; i < 2000; i++ {
		origin := NewVec3(random.Float64()*30-6, random.Float64()*30-6, random.Float64()*30-6)
		target := NewVec3(random.Float64()*18, random.Float64()*18, random.Float64()*18)
		ray := NewRay(origin, target.Subtract(origin).Normalize())

		want, wantHit := bruteForce(ray)
		got, gotHit := bvh.Intersect(ray)

		if wantHit != gotHit {
			t.Fatalf("ray %d: brute force hit=%t, BVH hit=%t", i, wantHit, gotHit)
		}
		if wantHit && (got.MaterialID != want.MaterialID || math.Abs(got.T-want.T) > 1e-9) {
			t.Fatalf("ray %d: expected box %d at t=%f, got box %d at t=%f",
				i, want.MaterialID, want.T, got.MaterialID, got.T)
		}
	}
}

func TestBVH_BoxContainsChildren(t *testing.T) {
	random := rand.New(rand.NewSource(3))
	shapes := make([]Object, 50)
	for i := range shapes {
		min := NewVec3(random.Float64()*10, random.Float64()*10, random.Float64()*10)
		shapes[i] = boxShape{box: NewAABB(min, min.Add(NewVec3(0.5, 0.5, 0.5)))}
	}

	var check func(object Object)
	check = func(object Object) {
		node, ok := object.(*BVHNode)
		if !ok {
			return
		}
		for _, child := range []Object{node.Left, node.Right} {
			if child == nil {
				continue
			}
			if node.Box.Merge(child.BoundingBox()) != node.Box {
				t.Errorf("node box %v does not contain child box %v", node.Box, child.BoundingBox())
			}
			check(child)
		}
	}

	check(NewBVH(shapes).Root)
}
