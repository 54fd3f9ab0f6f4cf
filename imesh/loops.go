package imesh

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// ReadLoops reads a list of closed polygons (for example,
// hole boundaries) as a JSON array of arrays of [x, y, z]
// points.
func ReadLoops(r io.Reader) ([][]model3d.Coord3D, error) {
	var object [][][]float64
	dec := json.NewDecoder(r)
	if err := dec.Decode(&object); err != nil {
		return nil, errors.Wrap(err, "read loops")
	}
	result := make([][]model3d.Coord3D, 0, len(object))
	for _, loop := range object {
		if len(loop) < 3 {
			return nil, errors.New("read loops: loop has fewer than 3 points")
		}
		coords := make([]model3d.Coord3D, 0, len(loop))
		for _, point := range loop {
			if len(point) != 3 {
				return nil, errors.New("read loops: invalid point dimensions")
			}
			coords = append(coords, model3d.Coord3D{X: point[0], Y: point[1], Z: point[2]})
		}
		result = append(result, coords)
	}
	return result, nil
}

// WriteLoops writes loops in the format used by ReadLoops.
func WriteLoops(w io.Writer, loops [][]model3d.Coord3D) error {
	object := make([][][3]float64, len(loops))
	for i, loop := range loops {
		object[i] = make([][3]float64, len(loop))
		for j, c := range loop {
			object[i][j] = [3]float64{c.X, c.Y, c.Z}
		}
	}
	if err := json.NewEncoder(w).Encode(object); err != nil {
		return errors.Wrap(err, "write loops")
	}
	return nil
}
