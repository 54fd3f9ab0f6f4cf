package advfront

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model2d"
	"github.com/unixpickle/model3d/model3d"
	"golang.org/x/sync/errgroup"
)

// A Command is the kind of a worker Request.
type Command string

const (
	// CommandPrepare hands a worker a snapshot of the model.
	CommandPrepare Command = "prepare"

	// CommandCheck tests a candidate against triangles.
	CommandCheck Command = "check"
)

// A TargetSet names the triangles a check runs against.
type TargetSet string

const (
	TargetFilling TargetSet = "filling"
	TargetModel   TargetSet = "model"
)

// A Candidate is the geometry proposed by a rule: a point
// and the two front vertices it is connected to.
//
// The segments from Point to each neighbor are tested for
// collisions. When both neighbors are equal, a single
// segment is tested.
type Candidate struct {
	Point     model3d.Coord3D `json:"point"`
	NeighborA model3d.Coord3D `json:"neighborA"`
	NeighborB model3d.Coord3D `json:"neighborB"`
}

// Segments gets the segments to test.
func (c Candidate) Segments() [][2]model3d.Coord3D {
	res := [][2]model3d.Coord3D{{c.Point, c.NeighborA}}
	if c.NeighborB != c.NeighborA {
		res = append(res, [2]model3d.Coord3D{c.Point, c.NeighborB})
	}
	return res
}

// A Request is a message to a collision worker.
//
// Check requests against the filling carry triangle
// coordinates. Check requests against the model carry face
// indices into the snapshot sent by the prepare request.
type Request struct {
	Command   Command              `json:"command"`
	TargetSet TargetSet            `json:"targetSet,omitempty"`
	Triangles [][3]model3d.Coord3D `json:"triangles,omitempty"`
	Faces     [][3]int             `json:"faces,omitempty"`
	Chunk     int                  `json:"chunk"`
	Candidate Candidate            `json:"candidate"`

	ModelVertices []model3d.Coord3D `json:"modelVertices,omitempty"`
	ModelFaces    [][3]int          `json:"modelFaces,omitempty"`
}

// A Response is a worker's answer to a check request.
type Response struct {
	Intersects bool  `json:"intersects"`
	Err        error `json:"-"`
}

// A WorkerPool runs collision checks on a fixed number of
// goroutines. Each worker has its own inbox, so requests
// can be routed to the worker holding a cached collider.
type WorkerPool struct {
	inboxes   []chan job
	closed    chan struct{}
	closeOnce sync.Once
	group     errgroup.Group
}

type job struct {
	req *Request
	out chan<- Response
}

// NewWorkerPool starts size workers. If prepare is non-nil,
// it is the first message handled by every worker.
func NewWorkerPool(size int, prepare *Request) *WorkerPool {
	p := &WorkerPool{
		inboxes: make([]chan job, size),
		closed:  make(chan struct{}),
	}
	for i := range p.inboxes {
		// A collision test sends at most one filling and one
		// model chunk to each worker.
		inbox := make(chan job, 2)
		if prepare != nil {
			inbox <- job{req: prepare}
		}
		p.inboxes[i] = inbox
		w := &worker{}
		p.group.Go(func() error {
			w.run(inbox, p.closed)
			return nil
		})
	}
	return p
}

// Size gets the number of workers.
func (p *WorkerPool) Size() int {
	return len(p.inboxes)
}

// Submit sends a request to a worker. The response is
// written to out, which should be buffered.
func (p *WorkerPool) Submit(ctx context.Context, worker int, req *Request, out chan<- Response) error {
	select {
	case <-p.closed:
		return ErrPoolClosed
	default:
	}
	select {
	case p.inboxes[worker] <- job{req: req, out: out}:
		return nil
	case <-p.closed:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the workers and waits for them to exit.
// Requests which have not been handled are dropped.
func (p *WorkerPool) Close() error {
	p.closeOnce.Do(func() {
		close(p.closed)
	})
	return p.group.Wait()
}

type triangleChunk struct {
	triangles []*model3d.Triangle
	collider  model3d.Collider
}

type worker struct {
	modelVertices []model3d.Coord3D
	modelFaces    [][3]int
	chunks        map[int]*triangleChunk
}

func (w *worker) run(inbox <-chan job, closed <-chan struct{}) {
	for {
		select {
		case <-closed:
			return
		case j := <-inbox:
			resp := w.handle(j.req)
			if j.out == nil {
				continue
			}
			select {
			case j.out <- resp:
			case <-closed:
				return
			}
		}
	}
}

func (w *worker) handle(req *Request) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = Response{Err: errors.Errorf("collision worker: %v", r)}
		}
	}()
	switch req.Command {
	case CommandPrepare:
		w.modelVertices = req.ModelVertices
		w.modelFaces = req.ModelFaces
		w.chunks = map[int]*triangleChunk{}
		return Response{}
	case CommandCheck:
		return w.check(req)
	}
	return Response{Err: errors.Errorf("collision worker: unknown command %q", req.Command)}
}

func (w *worker) check(req *Request) Response {
	var chunk *triangleChunk
	switch req.TargetSet {
	case TargetFilling:
		chunk = newTriangleChunk(len(req.Triangles), func(i int) *model3d.Triangle {
			t := model3d.Triangle(req.Triangles[i])
			return &t
		})
	case TargetModel:
		if w.chunks == nil {
			return Response{Err: errors.New("collision worker: model check before prepare")}
		}
		chunk = w.chunks[req.Chunk]
		if chunk == nil || len(chunk.triangles) != len(req.Faces) {
			chunk = newTriangleChunk(len(req.Faces), func(i int) *model3d.Triangle {
				f := req.Faces[i]
				return &model3d.Triangle{
					w.modelVertices[f[0]],
					w.modelVertices[f[1]],
					w.modelVertices[f[2]],
				}
			})
			w.chunks[req.Chunk] = chunk
		}
	default:
		return Response{Err: errors.Errorf("collision worker: unknown target set %q", req.TargetSet)}
	}
	for _, seg := range req.Candidate.Segments() {
		if chunk.segmentCollides(seg[0], seg[1]) {
			return Response{Intersects: true}
		}
	}
	return Response{}
}

func newTriangleChunk(n int, triangle func(i int) *model3d.Triangle) *triangleChunk {
	triangles := make([]*model3d.Triangle, n)
	for i := range triangles {
		triangles[i] = triangle(i)
	}
	return &triangleChunk{
		triangles: triangles,
		collider:  model3d.MeshToCollider(model3d.NewMeshTriangles(triangles)),
	}
}

const (
	// segmentEpsilon is the fraction of a segment at either
	// end in which ray collisions are ignored, since those
	// come from triangles sharing the endpoint.
	segmentEpsilon = 1e-5

	// planeEpsilon is the distance, relative to the size of
	// the geometry, below which a segment is considered to
	// lie in a triangle's plane.
	planeEpsilon = 1e-7
)

// segmentCollides checks if the segment a-b passes through
// one of the triangles, ignoring contact at the endpoints.
func (m *triangleChunk) segmentCollides(a, b model3d.Coord3D) bool {
	ray := &model3d.Ray{
		Origin:    a,
		Direction: b.Sub(a),
	}
	var hit bool
	m.collider.RayCollisions(ray, func(rc model3d.RayCollision) {
		if rc.Scale > segmentEpsilon && rc.Scale < 1-segmentEpsilon {
			hit = true
		}
	})
	if hit {
		return true
	}

	// Ray collisions miss segments lying in a triangle's
	// plane, which is the common case for flat holes.
	for _, t := range m.triangles {
		if coplanarCollision(t, a, b) {
			return true
		}
	}
	return false
}

// coplanarCollision checks a segment lying in the plane of
// a triangle against the triangle's outline in that plane.
func coplanarCollision(t *model3d.Triangle, a, b model3d.Coord3D) bool {
	normal := t[1].Sub(t[0]).Cross(t[2].Sub(t[0]))
	if normal.Norm() == 0 {
		return false
	}
	normal = normal.Normalize()

	size := math.Max(math.Max(t[0].Dist(t[1]), t[1].Dist(t[2])), math.Max(t[2].Dist(t[0]), a.Dist(b)))
	eps := planeEpsilon * size
	if math.Abs(normal.Dot(a.Sub(t[0]))) > eps || math.Abs(normal.Dot(b.Sub(t[0]))) > eps {
		return false
	}

	project := planeProjection(normal)
	segments := make([]*model2d.Segment, 3)
	for i := range segments {
		segments[i] = &model2d.Segment{project(t[i]), project(t[(i+1)%3])}
	}
	outline := model2d.MeshToCollider(model2d.NewMeshSegments(segments))

	pa, pb := project(a), project(b)
	var crosses bool
	outline.RayCollisions(&model2d.Ray{
		Origin:    pa,
		Direction: pb.Sub(pa),
	}, func(rc model2d.RayCollision) {
		if rc.Scale > segmentEpsilon && rc.Scale < 1-segmentEpsilon {
			crosses = true
		}
	})
	if crosses {
		return true
	}

	// A segment inside the triangle crosses no edge.
	return model2d.ColliderContains(outline, pa.Mid(pb), eps)
}

// planeProjection drops the coordinate along which the
// normal is largest.
func planeProjection(normal model3d.Coord3D) func(c model3d.Coord3D) model2d.Coord {
	x, y, z := math.Abs(normal.X), math.Abs(normal.Y), math.Abs(normal.Z)
	if x >= y && x >= z {
		return func(c model3d.Coord3D) model2d.Coord { return model2d.Coord{X: c.Y, Y: c.Z} }
	} else if y >= z {
		return func(c model3d.Coord3D) model2d.Coord { return model2d.Coord{X: c.Z, Y: c.X} }
	}
	return func(c model3d.Coord3D) model2d.Coord { return model2d.Coord{X: c.X, Y: c.Y} }
}
