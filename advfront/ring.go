package advfront

import "github.com/pkg/errors"

// An AngleID is a stable handle to an Angle in an
// AngleRing.
type AngleID int

// NoAngle is the handle of no Angle.
const NoAngle AngleID = -1

// An Angle is the front angle at one front vertex.
type Angle struct {
	// Window holds the previous, current and next front
	// vertices, as indices into the filling.
	Window [3]int

	// Degree caches the interior angle of Window.
	Degree float64

	// Retry is set when a rule for this angle was rejected
	// by the collision test. It is cleared whenever the
	// window is updated.
	Retry bool

	// Retries counts rejections since the last update.
	Retries int

	Next AngleID
	Prev AngleID

	live bool
}

// An AngleRing is a circular doubly-linked list of Angles,
// one per front vertex, in front order.
//
// Angles live in an arena and are addressed by AngleID.
// Removed Angles return to a free list.
type AngleRing struct {
	nodes   []Angle
	free    []AngleID
	size    int
	head    AngleID
	measure func(window [3]int) float64
}

// NewAngleRing creates an empty ring which computes angle
// measurements with the given function.
func NewAngleRing(measure func(window [3]int) float64) *AngleRing {
	return &AngleRing{head: NoAngle, measure: measure}
}

// Init fills an empty ring with one Angle per front vertex
// and returns the new handles in front order.
func (r *AngleRing) Init(front []int) []AngleID {
	ids := make([]AngleID, len(front))
	for i := range front {
		ids[i] = r.alloc([3]int{
			front[(i+len(front)-1)%len(front)],
			front[i],
			front[(i+1)%len(front)],
		})
	}
	for i, id := range ids {
		node := &r.nodes[id]
		node.Prev = ids[(i+len(ids)-1)%len(ids)]
		node.Next = ids[(i+1)%len(ids)]
	}
	r.size = len(ids)
	if len(ids) > 0 {
		r.head = ids[0]
	}
	return ids
}

// Len gets the number of Angles in the ring.
func (r *AngleRing) Len() int {
	return r.size
}

// Head gets the handle of the first Angle, or NoAngle.
func (r *AngleRing) Head() AngleID {
	return r.head
}

// Get gets an Angle by handle.
//
// The returned pointer is invalidated by InsertAfter.
func (r *AngleRing) Get(id AngleID) *Angle {
	return &r.nodes[id]
}

// InsertAfter creates an Angle for the window and splices
// it in after the Angle id.
func (r *AngleRing) InsertAfter(id AngleID, window [3]int) AngleID {
	newID := r.alloc(window)
	next := r.nodes[id].Next
	node := &r.nodes[newID]
	node.Prev = id
	node.Next = next
	r.nodes[id].Next = newID
	r.nodes[next].Prev = newID
	r.size++
	return newID
}

// Remove splices an Angle out of the ring, connecting its
// neighbors to each other.
func (r *AngleRing) Remove(id AngleID) {
	node := &r.nodes[id]
	if r.size == 1 {
		r.head = NoAngle
	} else {
		r.nodes[node.Prev].Next = node.Next
		r.nodes[node.Next].Prev = node.Prev
		if r.head == id {
			r.head = node.Next
		}
	}
	*node = Angle{Next: NoAngle, Prev: NoAngle}
	r.free = append(r.free, id)
	r.size--
}

// UpdateWindow replaces the window of an Angle, recomputes
// its measurement and clears its retry state.
func (r *AngleRing) UpdateWindow(id AngleID, window [3]int) float64 {
	node := &r.nodes[id]
	node.Window = window
	node.Degree = r.measure(window)
	node.Retry = false
	node.Retries = 0
	return node.Degree
}

// IDs gets the handles of all Angles, starting at the head.
func (r *AngleRing) IDs() []AngleID {
	res := make([]AngleID, 0, r.size)
	if r.size == 0 {
		return res
	}
	id := r.head
	for {
		res = append(res, id)
		id = r.nodes[id].Next
		if id == r.head || len(res) > r.size {
			break
		}
	}
	return res
}

// Vertices gets the current vertex of every Angle, starting
// at the head.
func (r *AngleRing) Vertices() []int {
	ids := r.IDs()
	res := make([]int, len(ids))
	for i, id := range ids {
		res[i] = r.nodes[id].Window[1]
	}
	return res
}

// Check verifies that the links are symmetric, that the
// ring has Len() Angles, and that every window agrees with
// its neighbors.
func (r *AngleRing) Check() error {
	ids := r.IDs()
	if len(ids) != r.size {
		return errors.Errorf("angle ring: walked %d angles but size is %d", len(ids), r.size)
	}
	for _, id := range ids {
		node := &r.nodes[id]
		if !node.live {
			return errors.Errorf("angle ring: angle %d was removed", id)
		}
		next := &r.nodes[node.Next]
		prev := &r.nodes[node.Prev]
		if next.Prev != id || prev.Next != id {
			return errors.Errorf("angle ring: asymmetric links at angle %d", id)
		}
		if node.Window[2] != next.Window[1] || node.Window[0] != prev.Window[1] {
			return errors.Errorf("angle ring: window %v of angle %d disagrees with neighbors",
				node.Window, id)
		}
	}
	return nil
}

func (r *AngleRing) alloc(window [3]int) AngleID {
	node := Angle{
		Window: window,
		Degree: r.measure(window),
		Next:   NoAngle,
		Prev:   NoAngle,
		live:   true,
	}
	if n := len(r.free); n > 0 {
		id := r.free[n-1]
		r.free = r.free[:n-1]
		r.nodes[id] = node
		return id
	}
	r.nodes = append(r.nodes, node)
	return AngleID(len(r.nodes) - 1)
}
