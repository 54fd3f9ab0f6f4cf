package advfront

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/unixpickle/holefill/imesh"
	"github.com/unixpickle/model3d/model3d"
)

// A CollisionTester decides whether a candidate collides
// with the filling (and possibly the model).
type CollisionTester interface {
	Test(ctx context.Context, c Candidate, filling *imesh.Mesh) (bool, error)
}

// A CollisionCoordinator splits collision tests across a
// WorkerPool and combines the results.
//
// Each test expects exactly one response per worker for the
// filling, and one more per worker for the model in
// FillingAndModel mode. Workers without a chunk are
// answered immediately with "no intersection".
type CollisionCoordinator struct {
	pool    *WorkerPool
	model   *imesh.Mesh
	mode    CollisionMode
	timeout time.Duration

	tests         int
	lastResponses int
}

// NewCollisionCoordinator starts a pool of workers.
//
// In FillingAndModel mode, every worker is sent a snapshot
// of the model before any test.
func NewCollisionCoordinator(model *imesh.Mesh, workers int, mode CollisionMode,
	timeout time.Duration) (*CollisionCoordinator, error) {
	if workers < 1 {
		return nil, errors.New("create collision coordinator: need at least one worker")
	}
	var prepare *Request
	if mode == FillingAndModel {
		if model == nil {
			return nil, errors.New("create collision coordinator: no model to test against")
		}
		model = model.Copy()
		prepare = &Request{
			Command:       CommandPrepare,
			ModelVertices: model.Vertices,
			ModelFaces:    model.Faces,
		}
	}
	if timeout == 0 {
		timeout = DefaultCollisionTimeout
	}
	return &CollisionCoordinator{
		pool:    NewWorkerPool(workers, prepare),
		model:   model,
		mode:    mode,
		timeout: timeout,
	}, nil
}

// Test checks whether the candidate's segments cross any
// face of the filling or, depending on the mode, the model.
//
// It returns only after every expected response arrived,
// the timeout elapsed, or ctx was cancelled.
func (c *CollisionCoordinator) Test(ctx context.Context, cand Candidate,
	filling *imesh.Mesh) (bool, error) {
	c.tests++
	workers := c.pool.Size()
	expected := workers
	if c.mode == FillingAndModel {
		expected *= 2
	}
	results := make(chan Response, expected)
	pad := func() {
		results <- Response{}
	}

	err := dispatchPartitioned(len(filling.Faces), workers, func(i int, ch chunk) error {
		triangles := make([][3]model3d.Coord3D, 0, ch.end-ch.start)
		for _, f := range filling.Faces[ch.start:ch.end] {
			triangles = append(triangles, [3]model3d.Coord3D{
				filling.Vertices[f[0]],
				filling.Vertices[f[1]],
				filling.Vertices[f[2]],
			})
		}
		return c.pool.Submit(ctx, i, &Request{
			Command:   CommandCheck,
			TargetSet: TargetFilling,
			Triangles: triangles,
			Chunk:     i,
			Candidate: cand,
		}, results)
	}, pad)
	if err != nil {
		return false, errors.Wrap(err, "collision test")
	}

	if c.mode == FillingAndModel {
		err := dispatchPartitioned(len(c.model.Faces), workers, func(i int, ch chunk) error {
			return c.pool.Submit(ctx, i, &Request{
				Command:   CommandCheck,
				TargetSet: TargetModel,
				Faces:     append([][3]int{}, c.model.Faces[ch.start:ch.end]...),
				Chunk:     i,
				Candidate: cand,
			}, results)
		}, pad)
		if err != nil {
			return false, errors.Wrap(err, "collision test")
		}
	}

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	var intersects bool
	var workerErr error
	for received := 0; received < expected; received++ {
		select {
		case resp := <-results:
			if resp.Err != nil && workerErr == nil {
				workerErr = resp.Err
			}
			intersects = intersects || resp.Intersects
		case <-timer.C:
			c.lastResponses = received
			return false, errors.Wrapf(ErrCollisionTimeout, "%d of %d responses", received, expected)
		case <-ctx.Done():
			c.lastResponses = received
			return false, errors.Wrap(ctx.Err(), "collision test")
		}
	}
	c.lastResponses = expected
	if workerErr != nil {
		return false, errors.Wrap(workerErr, "collision test")
	}
	return intersects, nil
}

// Tests gets the number of tests run so far.
func (c *CollisionCoordinator) Tests() int {
	return c.tests
}

// LastResponses gets the number of responses counted by
// the most recent test.
func (c *CollisionCoordinator) LastResponses() int {
	return c.lastResponses
}

// Close stops the worker pool.
func (c *CollisionCoordinator) Close() error {
	return c.pool.Close()
}
