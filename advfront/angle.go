package advfront

import (
	"github.com/golang/geo/r3"
	"github.com/unixpickle/model3d/model3d"
)

// MeasureAngle computes the interior angle, in degrees, of
// a front at v between the neighbors vp and vn.
//
// The reference point lies on the inner side of the surface
// the front belongs to. A front vertex is reflex (more than
// 180 degrees) when the turn from vp to vn is clockwise as
// seen from the reference point's side.
func MeasureAngle(vp, v, vn, ref model3d.Coord3D) float64 {
	a := toR3(vp.Sub(v))
	b := toR3(vn.Sub(v))
	degree := a.Angle(b).Degrees()
	if a.Cross(b).Dot(toR3(v.Sub(ref))) < 0 {
		degree = 360 - degree
	}
	return degree
}

// DefaultReference derives a reference point for a hole
// boundary when the caller does not provide one.
//
// Hole boundaries run clockwise when viewed from outside
// the surface, so the loop's Newell normal points inward.
// The reference point is the loop centroid moved along that
// normal by the mean edge length.
func DefaultReference(loop []model3d.Coord3D) model3d.Coord3D {
	if len(loop) == 0 {
		return model3d.Coord3D{}
	}
	var centroid, normal model3d.Coord3D
	var perimeter float64
	for i, c := range loop {
		next := loop[(i+1)%len(loop)]
		centroid = centroid.Add(c)
		perimeter += c.Dist(next)
		normal = normal.Add(model3d.Coord3D{
			X: (c.Y - next.Y) * (c.Z + next.Z),
			Y: (c.Z - next.Z) * (c.X + next.X),
			Z: (c.X - next.X) * (c.Y + next.Y),
		})
	}
	centroid = centroid.Scale(1 / float64(len(loop)))
	if normal.Norm() == 0 {
		return centroid
	}
	return centroid.Add(normal.Normalize().Scale(perimeter / float64(len(loop))))
}

func toR3(c model3d.Coord3D) r3.Vector {
	return r3.Vector{X: c.X, Y: c.Y, Z: c.Z}
}
