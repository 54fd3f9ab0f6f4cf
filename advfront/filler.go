// Package advfront fills holes in triangle meshes with the
// advancing front method.
//
// The boundary of a hole (the front) is repeatedly shrunk
// by adding triangles. At each step the smallest interior
// angle of the front picks one of three rules, and the
// triangles a rule would add are checked for collisions
// with the filling (and optionally the model) before they
// are committed.
package advfront

import (
	"context"
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/unixpickle/holefill/imesh"
	"github.com/unixpickle/model3d/model3d"
)

// State is the state of a filling job.
type State int

const (
	StateRunning State = iota
	StateCloseQuad
	StateCloseTri
	StateDegenerateAbort
	StateFatal
	StateDone
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCloseQuad:
		return "close quad"
	case StateCloseTri:
		return "close triangle"
	case StateDegenerateAbort:
		return "degenerate abort"
	case StateFatal:
		return "fatal"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Stats counts what happened during a filling job.
type Stats struct {
	Iterations     int
	Rule1          int
	Rule2          int
	Rule3          int
	Rejections     int
	Merges         int
	CollisionTests int
}

// A Result is the outcome of a filling job which did not
// fail.
type Result struct {
	// Filling contains the boundary vertices of the hole,
	// every vertex created by the rules, and the faces of
	// the patch.
	Filling *imesh.Mesh

	// Front is the front when the job ended, before the
	// final triangle or quad was closed.
	Front []model3d.Coord3D

	// State is StateDone or StateDegenerateAbort.
	State State

	// Truncated is set if MaxIterations ended the job.
	Truncated bool

	Stats Stats
}

// FillHole fills a hole in a model.
//
// The hole is given as its boundary loop, oriented like a
// border of the model (clockwise when viewed from outside).
// The model is only needed in FillingAndModel mode.
//
// Errors which abort the algorithm are *FatalError.
func FillHole(ctx context.Context, model *imesh.Mesh, hole []model3d.Coord3D,
	config *Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	cfg := config.withDefaults()
	coordinator, err := NewCollisionCoordinator(model, cfg.Workers, cfg.Mode, cfg.CollisionTimeout)
	if err != nil {
		return nil, err
	}
	defer coordinator.Close()

	filler, err := NewFiller(hole, &cfg, coordinator)
	if err != nil {
		return nil, err
	}
	return filler.Run(ctx)
}

// A Filler holds the state of one filling job.
//
// A Filler is not safe for concurrent use, but independent
// Fillers may run concurrently.
type Filler struct {
	cfg    Config
	tester CollisionTester
	ref    model3d.Coord3D

	hole    []model3d.Coord3D
	front   []int
	filling *imesh.Mesh
	ring    *AngleRing
	sched   *Scheduler

	state     State
	truncated bool
	stats     Stats
}

// NewFiller initializes a job for a hole boundary.
//
// Coincident boundary vertices are merged. Filling starts
// with the remaining boundary vertices and no faces.
func NewFiller(hole []model3d.Coord3D, config *Config, tester CollisionTester) (*Filler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	f := &Filler{
		cfg:     config.withDefaults(),
		tester:  tester,
		filling: imesh.New(),
		sched:   NewScheduler(),
		state:   StateRunning,
	}

	seen := map[model3d.Coord3D]bool{}
	for _, c := range hole {
		if !seen[c] {
			seen[c] = true
			f.hole = append(f.hole, c)
			f.front = append(f.front, f.filling.AddVertex(c))
		}
	}

	if f.cfg.Reference != nil {
		f.ref = *f.cfg.Reference
	} else {
		f.ref = DefaultReference(f.hole)
	}
	f.ring = NewAngleRing(f.measure)
	for _, id := range f.ring.Init(f.front) {
		f.sched.Insert(f.ring.Get(id).Degree, id)
	}
	return f, nil
}

// Run iterates until the hole is closed or the job fails.
func (f *Filler) Run(ctx context.Context) (*Result, error) {
	for f.state == StateRunning {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "fill hole")
		}
		if err := f.Step(ctx); err != nil {
			return nil, err
		}
	}
	return f.Result(), nil
}

// Step performs one iteration of the algorithm.
func (f *Filler) Step(ctx context.Context) error {
	if f.state != StateRunning {
		return nil
	}
	if f.cfg.MaxIterations > 0 && f.stats.Iterations >= f.cfg.MaxIterations {
		f.truncated = true
		f.state = StateDone
		return nil
	}
	f.stats.Iterations++

	switch len(f.front) {
	case 4:
		f.state = StateCloseQuad
		f.closeQuad()
		f.state = StateDone
		return nil
	case 3:
		f.state = StateCloseTri
		f.closeTriangle()
		f.state = StateDone
		return nil
	case 2, 1, 0:
		f.cfg.Logger.Printf("advancing front: front has %d vertices, stopping", len(f.front))
		f.state = StateDegenerateAbort
		return nil
	}

	id, ok := f.nextAngle()
	if !ok {
		return f.fatal("hole is not filled but no angle is queued", nil)
	}
	degree := f.ring.Get(id).Degree
	rule := RuleForAngle(degree)
	if f.cfg.Verbose {
		f.cfg.Logger.Printf("advancing front: iteration %d: %s for %.2f degrees, front %d",
			f.stats.Iterations, rule, degree, len(f.front))
	}

	newVertex := -1
	var err error
	switch rule {
	case Rule1:
		err = f.applyRule1(ctx, id)
	case Rule2:
		newVertex, err = f.applyRule2(ctx, id)
	case Rule3:
		newVertex, err = f.applyRule3(ctx, id)
	default:
		f.sched.Insert(degree, id)
		return f.fatal(fmt.Sprintf("no rule applies to an angle of %.2f degrees", degree), nil)
	}
	if err != nil {
		return err
	}

	if f.cfg.MergeEvery > 0 && f.stats.Iterations%f.cfg.MergeEvery == 0 &&
		(newVertex < 0 || len(f.front) != 3) {
		f.mergeByDistance()
	}
	if f.cfg.Progress != nil && f.stats.Iterations%f.cfg.ProgressEvery == 0 {
		f.cfg.Progress(f.progress())
	}
	return nil
}

// State gets the current state of the job.
func (f *Filler) State() State {
	return f.state
}

// Front gets the current front.
func (f *Filler) Front() []model3d.Coord3D {
	return f.filling.Loop(f.front)
}

// Filling gets the filling built so far.
func (f *Filler) Filling() *imesh.Mesh {
	return f.filling
}

// Ring gets the angle ring, which mirrors the front.
func (f *Filler) Ring() *AngleRing {
	return f.ring
}

// Scheduler gets the queue of angles.
func (f *Filler) Scheduler() *Scheduler {
	return f.sched
}

// Result gets the current result of the job.
func (f *Filler) Result() *Result {
	return &Result{
		Filling:   f.filling,
		Front:     f.Front(),
		State:     f.state,
		Truncated: f.truncated,
		Stats:     f.stats,
	}
}

func (f *Filler) measure(window [3]int) float64 {
	v := f.filling.Vertices
	return MeasureAngle(v[window[0]], v[window[1]], v[window[2]], f.ref)
}

func (f *Filler) progress() int {
	if len(f.hole) == 0 {
		return 100
	}
	return 100 - int(math.Round(float64(len(f.front))/float64(len(f.hole))*100))
}

// nextAngle dequeues the smallest angle which has a rule
// and is not waiting for an update after a rejection.
//
// If no such angle is queued, the waits are cleared and the
// smallest waiting angle is retried. Reflex angles are only
// returned when nothing else is queued.
func (f *Filler) nextAngle() (AngleID, bool) {
	var skipped []AngleID
	for f.sched.Len() > 0 {
		id, key, _ := f.sched.PopMin()
		if !f.ring.Get(id).Retry && RuleForAngle(key) != RuleNone {
			f.schedule(skipped...)
			return id, true
		}
		skipped = append(skipped, id)
	}
	if len(skipped) == 0 {
		return NoAngle, false
	}

	// skipped is sorted, so this is the smallest waiting angle.
	pick := 0
	for i, id := range skipped {
		if f.ring.Get(id).Retry {
			pick = i
			break
		}
	}
	for _, id := range skipped {
		f.ring.Get(id).Retry = false
	}
	id := skipped[pick]
	f.schedule(append(skipped[:pick:pick], skipped[pick+1:]...)...)
	return id, true
}

func (f *Filler) test(ctx context.Context, cand Candidate) (bool, error) {
	f.stats.CollisionTests++
	hit, err := f.tester.Test(ctx, cand, f.filling)
	if err != nil {
		return false, f.fatal("collision test failed", err)
	}
	return hit, nil
}

// reject requeues an angle unchanged after a collision.
func (f *Filler) reject(id AngleID) error {
	f.stats.Rejections++
	angle := f.ring.Get(id)
	angle.Retry = true
	angle.Retries++
	f.sched.Insert(angle.Degree, id)
	if angle.Retries > f.cfg.MaxRetries {
		return f.fatal(fmt.Sprintf("angle at vertex %d rejected %d times",
			angle.Window[1], angle.Retries), nil)
	}
	return nil
}

// applyRule1 closes the angle with the triangle formed by
// its window, removing its vertex from the front.
func (f *Filler) applyRule1(ctx context.Context, id AngleID) error {
	angle := *f.ring.Get(id)
	vp, v, vn := angle.Window[0], angle.Window[1], angle.Window[2]
	hit, err := f.test(ctx, Candidate{
		Point:     f.filling.Vertices[vp],
		NeighborA: f.filling.Vertices[vn],
		NeighborB: f.filling.Vertices[vn],
	})
	if err != nil {
		return err
	}
	if hit {
		return f.reject(id)
	}

	f.stats.Rule1++
	f.filling.AddFace(v, vp, vn)
	f.removeFront(v)

	prevID, nextID := angle.Prev, angle.Next
	f.unschedule(prevID, nextID)
	f.ring.Remove(id)
	prev := f.ring.Get(prevID)
	f.ring.UpdateWindow(prevID, [3]int{prev.Window[0], prev.Window[1], vn})
	next := f.ring.Get(nextID)
	f.ring.UpdateWindow(nextID, [3]int{vp, next.Window[1], next.Window[2]})
	f.schedule(prevID, nextID)
	return nil
}

// applyRule2 replaces the angle's vertex with a new vertex
// on its bisector, adding two triangles.
func (f *Filler) applyRule2(ctx context.Context, id AngleID) (int, error) {
	angle := *f.ring.Get(id)
	vp, v, vn := angle.Window[0], angle.Window[1], angle.Window[2]
	pos := f.filling.Vertices
	newPos := BisectorVertex(pos[vp], pos[v], pos[vn], angle.Degree, f.ref)
	hit, err := f.test(ctx, Candidate{Point: newPos, NeighborA: pos[vp], NeighborB: pos[vn]})
	if err != nil {
		return -1, err
	}
	if hit {
		return -1, f.reject(id)
	}

	f.stats.Rule2++
	nv := f.filling.AddVertex(newPos)
	f.filling.AddFace(v, vp, nv)
	f.filling.AddFace(v, nv, vn)
	f.front[f.frontIndex(v)] = nv

	prevID, nextID := angle.Prev, angle.Next
	f.unschedule(prevID, nextID)
	f.ring.UpdateWindow(id, [3]int{vp, nv, vn})
	prev := f.ring.Get(prevID)
	f.ring.UpdateWindow(prevID, [3]int{prev.Window[0], prev.Window[1], nv})
	next := f.ring.Get(nextID)
	f.ring.UpdateWindow(nextID, [3]int{nv, next.Window[1], next.Window[2]})
	f.schedule(prevID, nextID, id)
	return nv, nil
}

// applyRule3 inserts a new vertex on the bisector after the
// angle's vertex, adding one triangle and splitting the
// angle in two.
func (f *Filler) applyRule3(ctx context.Context, id AngleID) (int, error) {
	angle := *f.ring.Get(id)
	vp, v, vn := angle.Window[0], angle.Window[1], angle.Window[2]
	pos := f.filling.Vertices
	newPos := BisectorVertex(pos[vp], pos[v], pos[vn], angle.Degree, f.ref)
	hit, err := f.test(ctx, Candidate{Point: newPos, NeighborA: pos[v], NeighborB: pos[vn]})
	if err != nil {
		return -1, err
	}
	if hit {
		return -1, f.reject(id)
	}

	f.stats.Rule3++
	nv := f.filling.AddVertex(newPos)
	f.filling.AddFace(vn, v, nv)
	idx := f.frontIndex(v) + 1
	f.front = append(f.front, 0)
	copy(f.front[idx+1:], f.front[idx:])
	f.front[idx] = nv

	nextID := angle.Next
	f.unschedule(nextID)
	newID := f.ring.InsertAfter(id, [3]int{v, nv, vn})
	f.ring.UpdateWindow(id, [3]int{vp, v, nv})
	next := f.ring.Get(nextID)
	f.ring.UpdateWindow(nextID, [3]int{nv, next.Window[1], next.Window[2]})
	f.schedule(newID, nextID, id)
	return nv, nil
}

func (f *Filler) closeTriangle() {
	f.filling.AddFace(f.front[1], f.front[0], f.front[2])
}

// closeQuad splits the last quad along its shorter
// diagonal.
func (f *Filler) closeQuad() {
	fr := f.front
	pos := f.filling.Vertices
	if pos[fr[0]].Dist(pos[fr[2]]) <= pos[fr[1]].Dist(pos[fr[3]]) {
		f.filling.AddFace(fr[1], fr[0], fr[2])
		f.filling.AddFace(fr[3], fr[2], fr[0])
	} else {
		f.filling.AddFace(fr[0], fr[3], fr[1])
		f.filling.AddFace(fr[2], fr[1], fr[3])
	}
}

func (f *Filler) frontIndex(v int) int {
	for i, x := range f.front {
		if x == v {
			return i
		}
	}
	panic("vertex is not on the front")
}

func (f *Filler) removeFront(v int) {
	idx := f.frontIndex(v)
	f.front = append(f.front[:idx], f.front[idx+1:]...)
}

func (f *Filler) unschedule(ids ...AngleID) {
	for _, id := range ids {
		f.sched.Remove(f.ring.Get(id).Degree, id)
	}
}

func (f *Filler) schedule(ids ...AngleID) {
	for _, id := range ids {
		f.sched.Insert(f.ring.Get(id).Degree, id)
	}
}

func (f *Filler) fatal(reason string, err error) error {
	f.state = StateFatal
	f.cfg.Logger.Printf("advancing front: fatal: %s (front %d, filling %d faces)",
		reason, len(f.front), len(f.filling.Faces))
	return &FatalError{
		Reason:    reason,
		Iteration: f.stats.Iterations,
		Front:     f.Front(),
		Filling:   f.filling.Copy(),
		Err:       err,
	}
}
