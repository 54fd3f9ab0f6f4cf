// Package halfedge derives half-edge connectivity, including
// border edges, from an indexed triangle mesh.
package halfedge

import (
	"github.com/pkg/errors"
	"github.com/unixpickle/holefill/imesh"
)

var (
	ErrDegenerateFace = errors.New("build half-edges: degenerate face")
	ErrNonManifold    = errors.New("build half-edges: edge shared by more than two faces")
)

// A Vertex records the half-edges leaving a vertex.
type Vertex struct {
	Index    int
	Outgoing []int
}

// A HalfEdge is a directed edge of one face.
//
// Next cycles through the three half-edges of the face.
// Pair is the opposing half-edge of the adjacent face, or
// -1 for a border edge.
type HalfEdge struct {
	Origin int
	Dest   int
	Face   int
	Next   int
	Pair   int
}

// IsBorder checks if the half-edge has no pair.
func (h *HalfEdge) IsBorder() bool {
	return h.Pair < 0
}

// An Edge is a directed (origin, destination) vertex pair.
type Edge [2]int

// A Graph is the half-edge structure of a triangle mesh.
//
// The three half-edges of face f are stored at indices
// 3f, 3f+1 and 3f+2 of HalfEdges.
type Graph struct {
	Vertices  []Vertex
	HalfEdges []HalfEdge

	// BorderEdges lists the unpaired half-edges, oriented
	// the same way as their faces.
	BorderEdges []Edge
}

// Build creates the half-edge graph of a mesh.
//
// Meshes with an edge shared by more than two faces are
// rejected with ErrNonManifold.
func Build(m *imesh.Mesh) (*Graph, error) {
	return BuildFaces(len(m.Vertices), m.Faces)
}

// BuildFaces is like Build, but takes the raw vertex count
// and face list.
func BuildFaces(numVertices int, faces [][3]int) (*Graph, error) {
	g := &Graph{
		Vertices:  make([]Vertex, numVertices),
		HalfEdges: make([]HalfEdge, 0, len(faces)*3),
	}
	for i := range g.Vertices {
		g.Vertices[i].Index = i
	}

	candidates := make([][]candidate, numVertices)
	for f, face := range faces {
		if err := checkFace(numVertices, f, face); err != nil {
			return nil, err
		}
		g.createEdges(face, f)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				if face[i] < face[j] {
					candidates[face[i]] = append(candidates[face[i]], candidate{
						other: face[j],
						face:  f,
					})
				}
			}
		}
	}

	if err := checkManifold(candidates); err != nil {
		return nil, err
	}
	g.findAdjacency(candidates)

	for v, list := range candidates {
		for _, c := range list {
			if !c.used {
				h := g.HalfEdges[g.faceEdge(c.face, v, c.other)]
				g.BorderEdges = append(g.BorderEdges, Edge{h.Origin, h.Dest})
			}
		}
	}
	return g, nil
}

// FaceEdges gets the indices of the half-edges of a face.
func (g *Graph) FaceEdges(f int) [3]int {
	return [3]int{3 * f, 3*f + 1, 3*f + 2}
}

// NumFaces gets the number of faces in the graph.
func (g *Graph) NumFaces() int {
	return len(g.HalfEdges) / 3
}

// An edge from the lower-indexed vertex it is listed under
// to other, belonging to face.
type candidate struct {
	other int
	face  int
	used  bool
}

func checkFace(numVertices, f int, face [3]int) error {
	for _, v := range face {
		if v < 0 || v >= numVertices {
			return errors.Errorf("build half-edges: face %d references vertex %d out of %d",
				f, v, numVertices)
		}
	}
	if face[0] == face[1] || face[1] == face[2] || face[2] == face[0] {
		return errors.Wrapf(ErrDegenerateFace, "face %d", f)
	}
	return nil
}

func checkManifold(candidates [][]candidate) error {
	for v, list := range candidates {
		counts := map[int]int{}
		for _, c := range list {
			counts[c.other]++
			if counts[c.other] > 2 {
				return errors.Wrapf(ErrNonManifold, "edge (%d, %d)", v, c.other)
			}
		}
	}
	return nil
}

func (g *Graph) createEdges(face [3]int, f int) {
	first := len(g.HalfEdges)
	for i := 0; i < 3; i++ {
		g.HalfEdges = append(g.HalfEdges, HalfEdge{
			Origin: face[i],
			Dest:   face[(i+1)%3],
			Face:   f,
			Next:   first + (i+1)%3,
			Pair:   -1,
		})
		g.Vertices[face[i]].Outgoing = append(g.Vertices[face[i]].Outgoing, first+i)
	}
}

func (g *Graph) findAdjacency(candidates [][]candidate) {
	for v, list := range candidates {
		for j := range list {
			if list[j].used {
				continue
			}
			for k := j + 1; k < len(list); k++ {
				c1, c2 := &list[j], &list[k]
				if c2.used || c1.other != c2.other || c1.face == c2.face {
					continue
				}
				g.connectEdges(v, c1.other, c1.face, c2.face)
				c1.used = true
				c2.used = true
				break
			}
		}
	}
}

func (g *Graph) connectEdges(v1, v2, f1, f2 int) {
	p1 := g.faceEdge(f1, v1, v2)
	p2 := g.faceEdge(f2, v1, v2)
	g.HalfEdges[p1].Pair = p2
	g.HalfEdges[p2].Pair = p1
}

// faceEdge finds the half-edge of face f joining v1 and v2
// in either direction.
func (g *Graph) faceEdge(f, v1, v2 int) int {
	for _, idx := range g.FaceEdges(f) {
		h := &g.HalfEdges[idx]
		if (h.Origin == v1 && h.Dest == v2) || (h.Origin == v2 && h.Dest == v1) {
			return idx
		}
	}
	panic("edge does not belong to face")
}
