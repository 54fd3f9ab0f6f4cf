// Command find_holes reports the holes of an OFF model.
//
// The model is read from stdin. Each hole is a loop of
// border edges; the loops can be saved as JSON for use with
// fill_holes -holes.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/holefill/halfedge"
	"github.com/unixpickle/holefill/imesh"
	"github.com/unixpickle/model3d/model3d"
)

func main() {
	var outputPath string
	var minSize int
	flag.StringVar(&outputPath, "json", "", "output JSON file for the hole loops")
	flag.IntVar(&minSize, "min-size", 3, "minimum number of vertices in a reported hole")
	flag.Parse()

	triangles, err := model3d.ReadOFF(os.Stdin)
	essentials.Must(err)
	mesh := imesh.FromTriangles(triangles)

	graph, err := halfedge.Build(mesh)
	essentials.Must(err)
	loops, err := halfedge.BorderLoops(graph)
	essentials.Must(err)

	fmt.Printf("%d vertices, %d faces, %d border edges\n", len(mesh.Vertices), len(mesh.Faces),
		len(graph.BorderEdges))

	var holes [][]model3d.Coord3D
	for _, loop := range loops {
		if len(loop) < minSize {
			continue
		}
		holes = append(holes, mesh.Loop(loop))
	}
	if len(holes) == 0 {
		color.New(color.FgGreen).Println("model is closed")
	} else {
		color.New(color.FgYellow).Printf("%d holes\n", len(holes))
		for i, hole := range holes {
			fmt.Printf("  hole %d: %d vertices\n", i, len(hole))
		}
	}

	if outputPath != "" {
		w, err := os.Create(outputPath)
		essentials.Must(err)
		essentials.Must(imesh.WriteLoops(w, holes))
		essentials.Must(w.Close())
	}
}
