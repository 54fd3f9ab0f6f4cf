package advfront

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/unixpickle/model3d/model3d"
)

// Rule identifies one of the advancing front operations.
type Rule int

const (
	RuleNone Rule = iota

	// Rule1 closes an angle with a single triangle.
	Rule1

	// Rule2 replaces the angle's vertex with a new one,
	// adding two triangles.
	Rule2

	// Rule3 inserts a new vertex after the angle's vertex,
	// adding one triangle and splitting the angle.
	Rule3
)

func (r Rule) String() string {
	switch r {
	case Rule1:
		return "rule 1"
	case Rule2:
		return "rule 2"
	case Rule3:
		return "rule 3"
	}
	return "no rule"
}

// RuleForAngle selects the rule for an angle in degrees.
// It returns RuleNone for angles of 180 degrees or more.
func RuleForAngle(degree float64) Rule {
	if degree <= 75 {
		return Rule1
	} else if degree <= 135 {
		return Rule2
	} else if degree < 180 {
		return Rule3
	}
	return RuleNone
}

// BisectorVertex places a new vertex on the bisector of the
// front angle at v.
//
// The direction is vn - v rotated by half of the angle
// towards vp, about the local surface normal. The distance
// from v is the mean length of the two front edges at v.
//
// The angle must be less than 180 degrees.
func BisectorVertex(vp, v, vn model3d.Coord3D, degree float64, ref model3d.Coord3D) model3d.Coord3D {
	a := vp.Sub(v)
	b := vn.Sub(v)
	length := (a.Norm() + b.Norm()) / 2

	// The axis b x a turns b towards a by right-hand rule.
	axis := b.Cross(a)
	if axis.Norm() <= 1e-12*length*length {
		// Straight angle: turn about the inward direction.
		axis = ref.Sub(v).ProjectOut(b)
		if axis.Norm() == 0 {
			return vp.Mid(vn)
		}
	}
	rotation := mgl64.QuatRotate(degree*math.Pi/360, toVec3(axis.Normalize()))
	direction := fromVec3(rotation.Rotate(toVec3(b.Normalize())))
	return v.Add(direction.Scale(length))
}

func toVec3(c model3d.Coord3D) mgl64.Vec3 {
	return mgl64.Vec3{c.X, c.Y, c.Z}
}

func fromVec3(v mgl64.Vec3) model3d.Coord3D {
	return model3d.Coord3D{X: v[0], Y: v[1], Z: v[2]}
}
