package core

import (
	"math"
	"testing"
)

func TestAABB_Intersect(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name     string
		ray      Ray
		expected float64
	}{
		{
			name:     "hit from outside returns entry",
			ray:      NewRay(NewVec3(-5, 0, 0), NewVec3(1, 0, 0)),
			expected: 4,
		},
		{
			name:     "origin inside returns exit",
			ray:      NewRay(NewVec3(0.5, 0, 0), NewVec3(1, 0, 0)),
			expected: 0.5,
		},
		{
			name:     "negative direction",
			ray:      NewRay(NewVec3(0, 0, 4), NewVec3(0, 0, -2)),
			expected: 1.5,
		},
		{
			name:     "parallel ray outside slab misses",
			ray:      NewRay(NewVec3(-5, 2, 0), NewVec3(1, 0, 0)),
			expected: Miss,
		},
		{
			name:     "line passes beside the box",
			ray:      NewRay(NewVec3(-5, -5, 0), NewVec3(1, 0.1, 0)),
			expected: Miss,
		},
		{
			name:     "diagonal hit",
			ray:      NewRay(NewVec3(-3, -3, -3), NewVec3(1, 1, 1)),
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := box.Intersect(tt.ray)
			if tt.expected == Miss {
				if got != Miss {
					t.Errorf("Expected miss sentinel, got %f", got)
				}
				return
			}
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Expected t=%f, got %f", tt.expected, got)
			}
		})
	}
}

func TestAABB_BoxBehindRay(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	ray := NewRay(NewVec3(5, 0, 0), NewVec3(1, 0, 0))

	got := box.Intersect(ray)
	if got != Miss && got >= 0 {
		t.Errorf("Box behind the ray must not report a forward hit, got %f", got)
	}
	if box.Hit(ray) {
		t.Error("Hit reported for a box behind the ray")
	}
}

func TestAABB_MergeAndTransform(t *testing.T) {
	a := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 1, 1))
	b := NewAABB(NewVec3(-1, 2, 0.5), NewVec3(0.5, 3, 4))

	merged := a.Merge(b)
	if merged.Min != NewVec3(-1, 0, 0) || merged.Max != NewVec3(1, 3, 4) {
		t.Errorf("Unexpected merge result %v", merged)
	}

	if EmptyAABB().Merge(a) != a {
		t.Error("Merging into an empty box should yield the other box")
	}

	rotated := a.ApplyTransformation(Rotation(45, NewVec3(0, 0, 1)))
	half := math.Sqrt2 / 2
	expectedMin := NewVec3(-half, 0, 0)
	expectedMax := NewVec3(half, math.Sqrt2, 1)
	if rotated.Min.Subtract(expectedMin).Length() > 1e-9 || rotated.Max.Subtract(expectedMax).Length() > 1e-9 {
		t.Errorf("Expected refit box [%v %v], got [%v %v]", expectedMin, expectedMax, rotated.Min, rotated.Max)
	}
}
