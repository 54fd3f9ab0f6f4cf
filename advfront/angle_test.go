package advfront

import (
	"math"
	"testing"

	"github.com/unixpickle/model3d/model3d"
)

const float64EqualityThreshold = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= float64EqualityThreshold
}

func coordsAlmostEqual(a, b model3d.Coord3D) bool {
	return almostEqual(a.X, b.X) && almostEqual(a.Y, b.Y) && almostEqual(a.Z, b.Z)
}

// squareHole runs clockwise when viewed from +Z.
var squareHole = []model3d.Coord3D{
	{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0},
}

// regularHole creates a clockwise regular polygon with unit
// circumradius in the plane Z=0.
func regularHole(n int) []model3d.Coord3D {
	res := make([]model3d.Coord3D, n)
	for i := range res {
		theta := -2 * math.Pi * float64(i) / float64(n)
		res[i] = model3d.Coord3D{X: math.Cos(theta), Y: math.Sin(theta)}
	}
	return res
}

func TestDefaultReference(t *testing.T) {
	ref := DefaultReference(squareHole)
	if !coordsAlmostEqual(ref, model3d.Coord3D{X: 0.5, Y: 0.5, Z: -1}) {
		t.Errorf("unexpected reference: %v", ref)
	}
	if ref := DefaultReference(nil); ref != (model3d.Coord3D{}) {
		t.Errorf("unexpected reference for empty loop: %v", ref)
	}
}

func TestMeasureAngle(t *testing.T) {
	testCases := []struct {
		name     string
		vp       model3d.Coord3D
		v        model3d.Coord3D
		vn       model3d.Coord3D
		ref      model3d.Coord3D
		expected float64
	}{
		{
			name:     "Convex",
			vp:       model3d.Coord3D{X: 1},
			vn:       model3d.Coord3D{Y: 1},
			ref:      model3d.Coord3D{X: 0.5, Y: 0.5, Z: -1},
			expected: 90,
		},
		{
			name:     "Reflex",
			vp:       model3d.Coord3D{X: 1},
			vn:       model3d.Coord3D{Y: 1},
			ref:      model3d.Coord3D{X: 0.5, Y: 0.5, Z: 1},
			expected: 270,
		},
		{
			name:     "Acute",
			vp:       model3d.Coord3D{X: 1},
			vn:       model3d.Coord3D{X: 1, Y: 1},
			ref:      model3d.Coord3D{Z: -1},
			expected: 45,
		},
		{
			name:     "Hexagon",
			vp:       regularHole(6)[5],
			v:        regularHole(6)[0],
			vn:       regularHole(6)[1],
			ref:      model3d.Coord3D{Z: -1},
			expected: 120,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := MeasureAngle(tc.vp, tc.v, tc.vn, tc.ref)
			if !almostEqual(actual, tc.expected) {
				t.Errorf("expected %f but got %f", tc.expected, actual)
			}
		})
	}
}

func TestRuleForAngle(t *testing.T) {
	testCases := []struct {
		degree   float64
		expected Rule
	}{
		{10, Rule1},
		{75, Rule1},
		{75.01, Rule2},
		{135, Rule2},
		{135.01, Rule3},
		{179.99, Rule3},
		{180, RuleNone},
		{270, RuleNone},
	}
	for _, tc := range testCases {
		if actual := RuleForAngle(tc.degree); actual != tc.expected {
			t.Errorf("angle %f: expected %s but got %s", tc.degree, tc.expected, actual)
		}
	}
}

func TestBisectorVertex(t *testing.T) {
	hex := regularHole(6)
	testCases := []struct {
		name     string
		vp       model3d.Coord3D
		v        model3d.Coord3D
		vn       model3d.Coord3D
		ref      model3d.Coord3D
		expected model3d.Coord3D
	}{
		{
			name:     "Square",
			vp:       model3d.Coord3D{X: 1},
			vn:       model3d.Coord3D{Y: 1},
			ref:      model3d.Coord3D{X: 0.5, Y: 0.5, Z: -1},
			expected: model3d.Coord3D{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2},
		},
		{
			name:     "Hexagon",
			vp:       hex[5],
			v:        hex[0],
			vn:       hex[1],
			ref:      model3d.Coord3D{Z: -1},
			expected: model3d.Coord3D{},
		},
		{
			name:     "Straight",
			vp:       model3d.Coord3D{X: -1},
			vn:       model3d.Coord3D{X: 1},
			ref:      model3d.Coord3D{Z: -1},
			expected: model3d.Coord3D{Y: -1},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			degree := MeasureAngle(tc.vp, tc.v, tc.vn, tc.ref)
			actual := BisectorVertex(tc.vp, tc.v, tc.vn, degree, tc.ref)
			if !coordsAlmostEqual(actual, tc.expected) {
				t.Errorf("expected %v but got %v", tc.expected, actual)
			}
		})
	}
}
