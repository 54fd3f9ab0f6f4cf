package imesh

import (
	"bytes"
	"strings"
	"testing"

	"github.com/unixpickle/model3d/model3d"
)

func TestLoopsRoundTrip(t *testing.T) {
	loops := [][]model3d.Coord3D{
		{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0.5},
		},
		{
			{X: 2, Y: 0, Z: 0},
			{X: 3, Y: 0, Z: 0},
			{X: 3, Y: 1, Z: 0},
			{X: 2, Y: 1, Z: 0},
		},
	}
	var buf bytes.Buffer
	if err := WriteLoops(&buf, loops); err != nil {
		t.Fatal(err)
	}
	decoded, err := ReadLoops(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != len(loops) {
		t.Fatalf("expected %d loops but got %d", len(loops), len(decoded))
	}
	for i, loop := range loops {
		if len(decoded[i]) != len(loop) {
			t.Fatalf("loop %d: expected %d points but got %d", i, len(loop), len(decoded[i]))
		}
		for j, c := range loop {
			if decoded[i][j] != c {
				t.Errorf("loop %d point %d: expected %v but got %v", i, j, c, decoded[i][j])
			}
		}
	}
}

func TestReadLoopsInvalid(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "NotJSON", input: "hello"},
		{name: "ShortLoop", input: "[[[0,0,0],[1,0,0]]]"},
		{name: "BadPoint", input: "[[[0,0],[1,0,0],[1,1,0]]]"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ReadLoops(strings.NewReader(tc.input)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestMeshLoopAndCopy(t *testing.T) {
	m := New()
	a := m.AddVertex(model3d.Coord3D{X: 0})
	b := m.AddVertex(model3d.Coord3D{X: 1})
	c := m.AddVertex(model3d.Coord3D{Y: 1})
	m.AddFace(a, b, c)

	cp := m.Copy()
	cp.AddFace(c, b, a)
	cp.Vertices[0] = model3d.Coord3D{Z: 5}
	if len(m.Faces) != 1 || m.Vertices[0] != (model3d.Coord3D{}) {
		t.Error("copy shares storage with the original")
	}

	loop := m.Loop([]int{c, a})
	if loop[0] != m.Vertices[c] || loop[1] != m.Vertices[a] {
		t.Errorf("unexpected loop %v", loop)
	}
	tri := m.Triangle(0)
	if tri[1] != m.Vertices[b] {
		t.Errorf("unexpected triangle %v", tri)
	}
}

func TestFromTriangles(t *testing.T) {
	a := model3d.Coord3D{X: 0}
	b := model3d.Coord3D{X: 1}
	c := model3d.Coord3D{Y: 1}
	d := model3d.Coord3D{X: 1, Y: 1}
	triangles := []*model3d.Triangle{
		{c, a, b},
		{c, b, d},
		{d, b, c},
	}
	expectedVertices := []model3d.Coord3D{c, a, b, d}
	expectedFaces := [][3]int{{0, 1, 2}, {0, 2, 3}, {3, 2, 0}}

	for i := 0; i < 20; i++ {
		m := FromTriangles(triangles)
		if len(m.Vertices) != len(expectedVertices) || len(m.Faces) != len(expectedFaces) {
			t.Fatalf("unexpected mesh size: %d vertices, %d faces", len(m.Vertices), len(m.Faces))
		}
		for j, v := range expectedVertices {
			if m.Vertices[j] != v {
				t.Fatalf("build %d: vertex %d is %v, expected %v", i, j, m.Vertices[j], v)
			}
		}
		for j, f := range expectedFaces {
			if m.Faces[j] != f {
				t.Fatalf("build %d: face %d is %v, expected %v", i, j, m.Faces[j], f)
			}
		}
	}
}
