package halfedge

import "github.com/pkg/errors"

// ErrOpenBorder is returned when border edges cannot be
// chained into closed loops, which happens for meshes with
// inconsistently oriented faces.
var ErrOpenBorder = errors.New("border loops: border does not close")

// BorderLoops chains the border edges of g into closed
// vertex loops, following the orientation of the faces.
//
// When a border passes through the same vertex twice, the
// loop is split at that vertex so that every returned loop
// is a simple polygon.
func BorderLoops(g *Graph) ([][]int, error) {
	outgoing := map[int][]int{}
	for i, e := range g.BorderEdges {
		outgoing[e[0]] = append(outgoing[e[0]], i)
	}
	used := make([]bool, len(g.BorderEdges))

	takeEdge := func(from int) (int, bool) {
		for _, idx := range outgoing[from] {
			if !used[idx] {
				used[idx] = true
				return g.BorderEdges[idx][1], true
			}
		}
		return 0, false
	}

	var loops [][]int
	for i, e := range g.BorderEdges {
		if used[i] {
			continue
		}
		used[i] = true
		start := e[0]
		loop := []int{start}
		positions := map[int]int{start: 0}
		current := e[1]
		for current != start {
			if pos, ok := positions[current]; ok {
				loops = append(loops, append([]int{}, loop[pos:]...))
				for _, v := range loop[pos+1:] {
					delete(positions, v)
				}
				loop = loop[:pos+1]
			} else {
				positions[current] = len(loop)
				loop = append(loop, current)
			}
			next, ok := takeEdge(current)
			if !ok {
				return nil, errors.Wrapf(ErrOpenBorder, "no border edge leaves vertex %d", current)
			}
			current = next
		}
		loops = append(loops, loop)
	}
	return loops, nil
}
