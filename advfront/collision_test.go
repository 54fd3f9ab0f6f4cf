package advfront

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/unixpickle/holefill/imesh"
	"github.com/unixpickle/model3d/model3d"
)

// blockingMesh is a large triangle in the plane Z=0 around
// the origin.
func blockingMesh() *imesh.Mesh {
	m := imesh.New()
	m.AddVertex(model3d.Coord3D{X: -1, Y: -1})
	m.AddVertex(model3d.Coord3D{X: 3, Y: -1})
	m.AddVertex(model3d.Coord3D{X: -1, Y: 3})
	m.AddFace(0, 1, 2)
	return m
}

func TestCollisionCoordinator(t *testing.T) {
	crossing := Candidate{
		Point:     model3d.Coord3D{Z: 1},
		NeighborA: model3d.Coord3D{Z: -1},
		NeighborB: model3d.Coord3D{Z: -1},
	}
	beside := Candidate{
		Point:     model3d.Coord3D{X: 5, Z: 1},
		NeighborA: model3d.Coord3D{X: 5, Z: -1},
		NeighborB: model3d.Coord3D{X: 6, Z: -1},
	}
	coplanar := Candidate{
		Point:     model3d.Coord3D{X: -2, Y: 0.5},
		NeighborA: model3d.Coord3D{X: 2, Y: 0.5},
		NeighborB: model3d.Coord3D{X: 2, Y: 0.5},
	}
	touching := Candidate{
		Point:     model3d.Coord3D{X: -1, Y: -1},
		NeighborA: model3d.Coord3D{X: -3, Y: -1},
		NeighborB: model3d.Coord3D{X: -1, Y: -4},
	}

	testCases := []struct {
		name      string
		mode      CollisionMode
		filling   *imesh.Mesh
		cand      Candidate
		expected  bool
		responses int
	}{
		{"FillingHit", FillingOnly, blockingMesh(), crossing, true, 3},
		{"FillingMiss", FillingOnly, blockingMesh(), beside, false, 3},
		{"FillingEmpty", FillingOnly, imesh.New(), crossing, false, 3},
		{"Coplanar", FillingOnly, blockingMesh(), coplanar, true, 3},
		{"SharedVertex", FillingOnly, blockingMesh(), touching, false, 3},
		{"ModelHit", FillingAndModel, imesh.New(), crossing, true, 6},
		{"ModelMiss", FillingAndModel, blockingMesh(), beside, false, 6},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := NewCollisionCoordinator(blockingMesh(), 3, tc.mode, time.Minute)
			if err != nil {
				t.Fatal(err)
			}
			defer c.Close()

			// Run twice to exercise cached model colliders.
			for i := 0; i < 2; i++ {
				actual, err := c.Test(context.Background(), tc.cand, tc.filling)
				if err != nil {
					t.Fatal(err)
				}
				if actual != tc.expected {
					t.Errorf("expected %v but got %v", tc.expected, actual)
				}
				if c.LastResponses() != tc.responses {
					t.Errorf("expected %d responses but got %d", tc.responses, c.LastResponses())
				}
			}
			if c.Tests() != 2 {
				t.Errorf("unexpected test count: %d", c.Tests())
			}
		})
	}
}

func TestCollisionCoordinatorClosed(t *testing.T) {
	c, err := NewCollisionCoordinator(nil, 2, FillingOnly, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	_, err = c.Test(context.Background(), Candidate{}, blockingMesh())
	if errors.Cause(err) != ErrPoolClosed {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewCollisionCoordinatorErrors(t *testing.T) {
	if _, err := NewCollisionCoordinator(nil, 0, FillingOnly, 0); err == nil {
		t.Error("expected error for zero workers")
	}
	if _, err := NewCollisionCoordinator(nil, 1, FillingAndModel, 0); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestWorkerPoolErrors(t *testing.T) {
	pool := NewWorkerPool(1, nil)
	defer pool.Close()

	out := make(chan Response, 2)
	requests := []*Request{
		{Command: CommandCheck, TargetSet: TargetModel},
		{Command: "explode"},
	}
	for _, req := range requests {
		if err := pool.Submit(context.Background(), 0, req, out); err != nil {
			t.Fatal(err)
		}
		if resp := <-out; resp.Err == nil {
			t.Errorf("expected error for request %v", *req)
		}
	}
}

func TestWorkerPoolPrepare(t *testing.T) {
	model := blockingMesh()
	pool := NewWorkerPool(2, &Request{
		Command:       CommandPrepare,
		ModelVertices: model.Vertices,
		ModelFaces:    model.Faces,
	})
	defer pool.Close()

	out := make(chan Response, 2)
	for i := 0; i < 2; i++ {
		err := pool.Submit(context.Background(), i, &Request{
			Command:   CommandCheck,
			TargetSet: TargetModel,
			Faces:     model.Faces,
			Candidate: Candidate{
				Point:     model3d.Coord3D{X: 0.5, Y: 0.5, Z: -1},
				NeighborA: model3d.Coord3D{X: 0.5, Y: 0.5, Z: 2},
				NeighborB: model3d.Coord3D{X: 0.5, Y: 0.5, Z: 2},
			},
		}, out)
		if err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 2; i++ {
		resp := <-out
		if resp.Err != nil {
			t.Fatal(resp.Err)
		}
		if !resp.Intersects {
			t.Error("expected intersection")
		}
	}
}

func TestCoplanarCollision(t *testing.T) {
	triangle := blockingMesh().Triangle(0)
	testCases := []struct {
		name     string
		a        model3d.Coord3D
		b        model3d.Coord3D
		expected bool
	}{
		{"Crossing", model3d.Coord3D{X: -2, Y: 0.5}, model3d.Coord3D{X: 2, Y: 0.5}, true},
		{"Inside", model3d.Coord3D{}, model3d.Coord3D{X: 0.5, Y: 0.5}, true},
		{"FromVertexInward", model3d.Coord3D{X: -1, Y: -1}, model3d.Coord3D{}, true},
		{"AlongEdge", model3d.Coord3D{X: -1, Y: -1}, model3d.Coord3D{X: 1, Y: -1}, false},
		{"Outside", model3d.Coord3D{X: 4, Y: 4}, model3d.Coord3D{X: 5, Y: 3}, false},
		{"OffPlane", model3d.Coord3D{Z: 0.1}, model3d.Coord3D{X: 0.5, Y: 0.5, Z: 0.1}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if actual := coplanarCollision(triangle, tc.a, tc.b); actual != tc.expected {
				t.Errorf("expected %v but got %v", tc.expected, actual)
			}
		})
	}
}

// stallWorker blocks worker i of the pool until the pool is
// closed, by giving it a job whose response is never read.
func stallWorker(t *testing.T, pool *WorkerPool, i int) {
	stalled := make(chan Response)
	err := pool.Submit(context.Background(), i, &Request{
		Command:   CommandCheck,
		TargetSet: TargetFilling,
	}, stalled)
	if err != nil {
		t.Fatal(err)
	}
}

func TestCollisionCoordinatorTimeout(t *testing.T) {
	c, err := NewCollisionCoordinator(nil, 2, FillingOnly, 50*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	stallWorker(t, c.pool, 0)

	_, err = c.Test(context.Background(), Candidate{}, blockingMesh())
	if errors.Cause(err) != ErrCollisionTimeout {
		t.Fatalf("unexpected error: %v", err)
	}

	// The padded response for the second worker is counted.
	if c.LastResponses() != 1 {
		t.Errorf("expected 1 response but got %d", c.LastResponses())
	}
}

func TestCollisionCoordinatorCancel(t *testing.T) {
	c, err := NewCollisionCoordinator(nil, 2, FillingOnly, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	stallWorker(t, c.pool, 0)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Test(ctx, Candidate{}, blockingMesh())
	if errors.Cause(err) != context.DeadlineExceeded {
		t.Fatalf("unexpected error: %v", err)
	}
}
