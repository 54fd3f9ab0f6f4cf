// Package imesh implements an indexed triangle mesh: an
// ordered list of vertex positions plus faces referencing
// them by index.
package imesh

import (
	"github.com/unixpickle/model3d/model3d"
)

// A Mesh stores vertex positions and triangular faces made
// of three vertex indices each.
//
// A Mesh with no faces is used to describe a closed
// polygon, in which case the vertex order is the polygon
// order.
type Mesh struct {
	Vertices []model3d.Coord3D
	Faces    [][3]int
}

// New creates an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// FromTriangles converts a triangle soup into an indexed
// mesh, merging vertices with exactly equal coordinates.
//
// Vertices are numbered in order of first appearance and
// faces keep the order of triangles, so the same input
// always gives the same mesh.
func FromTriangles(triangles []*model3d.Triangle) *Mesh {
	res := New()
	indices := map[model3d.Coord3D]int{}
	index := func(c model3d.Coord3D) int {
		if idx, ok := indices[c]; ok {
			return idx
		}
		idx := res.AddVertex(c)
		indices[c] = idx
		return idx
	}
	for _, t := range triangles {
		res.AddFace(index(t[0]), index(t[1]), index(t[2]))
	}
	return res
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(c model3d.Coord3D) int {
	m.Vertices = append(m.Vertices, c)
	return len(m.Vertices) - 1
}

// AddFace appends a face.
func (m *Mesh) AddFace(a, b, c int) {
	m.Faces = append(m.Faces, [3]int{a, b, c})
}

// Triangle gets the coordinates of the face at index f.
func (m *Mesh) Triangle(f int) *model3d.Triangle {
	face := m.Faces[f]
	return &model3d.Triangle{
		m.Vertices[face[0]],
		m.Vertices[face[1]],
		m.Vertices[face[2]],
	}
}

// Triangles gets the coordinates of every face.
func (m *Mesh) Triangles() []*model3d.Triangle {
	res := make([]*model3d.Triangle, len(m.Faces))
	for i := range m.Faces {
		res[i] = m.Triangle(i)
	}
	return res
}

// Mesh converts the faces into a model3d mesh.
func (m *Mesh) Mesh() *model3d.Mesh {
	return model3d.NewMeshTriangles(m.Triangles())
}

// Loop gets the coordinates of the vertices at the given
// indices, in order.
func (m *Mesh) Loop(indices []int) []model3d.Coord3D {
	res := make([]model3d.Coord3D, len(indices))
	for i, idx := range indices {
		res[i] = m.Vertices[idx]
	}
	return res
}

// Copy creates a deep copy of the mesh.
func (m *Mesh) Copy() *Mesh {
	return &Mesh{
		Vertices: append([]model3d.Coord3D{}, m.Vertices...),
		Faces:    append([][3]int{}, m.Faces...),
	}
}
