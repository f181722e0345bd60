package geometry

import (
	"fmt"

	"github.com/misrayazgan/RayTracer/pkg/core"
)

// VertexTable holds the scene-wide vertex positions, accumulated vertex
// normals and texture coordinates that triangles and spheres index into
type VertexTable struct {
	Positions []core.Vec3
	Normals   []core.Vec3
	TexCoords []core.Vec2

	normalCounts []int
	finalized    bool
}

// NewVertexTable creates a table from positions and texture coordinates
func NewVertexTable(positions []core.Vec3, texCoords []core.Vec2) *VertexTable {
	return &VertexTable{
		Positions:    positions,
		Normals:      make([]core.Vec3, len(positions)),
		TexCoords:    texCoords,
		normalCounts: make([]int, len(positions)),
	}
}

// Append adds positions (e.g. from a PLY file) and returns the index of the first one
func (vt *VertexTable) Append(positions []core.Vec3, texCoords []core.Vec2) int {
	offset := len(vt.Positions)
	vt.Positions = append(vt.Positions, positions...)
	vt.Normals = append(vt.Normals, make([]core.Vec3, len(positions))...)
	vt.normalCounts = append(vt.normalCounts, make([]int, len(positions))...)
	vt.TexCoords = append(vt.TexCoords, texCoords...)
	return offset
}

// Position returns a vertex position, panicking on a bad index
func (vt *VertexTable) Position(index int) core.Vec3 {
	if index < 0 || index >= len(vt.Positions) {
		panic(fmt.Sprintf("vertex index %d out of range [0,%d)", index, len(vt.Positions)))
	}
	return vt.Positions[index]
}

// TexCoord returns a texture coordinate, or zero when the table has none
func (vt *VertexTable) TexCoord(index int) core.Vec2 {
	if index < 0 || index >= len(vt.TexCoords) {
		return core.Vec2{}
	}
	return vt.TexCoords[index]
}

// addFaceNormal accumulates an adjacent face normal on a vertex.
// Faces are not weighted by area.
func (vt *VertexTable) addFaceNormal(index int, normal core.Vec3) {
	vt.Normals[index] = vt.Normals[index].Add(normal)
	vt.normalCounts[index]++
}

// FinalizeNormals averages and normalizes the accumulated vertex normals.
// It runs once, after every face has been added; later calls do nothing.
func (vt *VertexTable) FinalizeNormals() {
	if vt.finalized {
		return
	}
	vt.finalized = true
	for i, count := range vt.normalCounts {
		if count == 0 {
			continue
		}
		vt.Normals[i] = vt.Normals[i].Divide(float64(count)).Normalize()
	}
}
