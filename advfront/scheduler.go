package advfront

import "container/heap"

// A Scheduler is a min-priority queue of Angles keyed by
// angle measurement.
//
// Equal keys are served in insertion order. Every Angle is
// in the queue at most once, and an index from handle to
// heap position allows removal of any queued Angle.
type Scheduler struct {
	heap schedulerHeap
	seq  uint64
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{heap: schedulerHeap{positions: map[AngleID]int{}}}
}

// Insert queues an Angle with the given key.
//
// If the Angle is already queued, its key is replaced.
func (s *Scheduler) Insert(key float64, id AngleID) {
	s.seq++
	if pos, ok := s.heap.positions[id]; ok {
		s.heap.entries[pos].key = key
		s.heap.entries[pos].seq = s.seq
		heap.Fix(&s.heap, pos)
		return
	}
	heap.Push(&s.heap, schedulerEntry{key: key, seq: s.seq, id: id})
}

// Remove dequeues an Angle if it is queued under key.
// It reports whether an entry was removed.
func (s *Scheduler) Remove(key float64, id AngleID) bool {
	pos, ok := s.heap.positions[id]
	if !ok || s.heap.entries[pos].key != key {
		return false
	}
	heap.Remove(&s.heap, pos)
	return true
}

// PopMin dequeues the Angle with the smallest key.
func (s *Scheduler) PopMin() (AngleID, float64, bool) {
	if s.heap.Len() == 0 {
		return NoAngle, 0, false
	}
	entry := heap.Pop(&s.heap).(schedulerEntry)
	return entry.id, entry.key, true
}

// PeekMin gets the Angle with the smallest key without
// dequeuing it.
func (s *Scheduler) PeekMin() (AngleID, float64, bool) {
	if s.heap.Len() == 0 {
		return NoAngle, 0, false
	}
	entry := s.heap.entries[0]
	return entry.id, entry.key, true
}

// Contains checks if an Angle is queued.
func (s *Scheduler) Contains(id AngleID) bool {
	_, ok := s.heap.positions[id]
	return ok
}

// Len gets the number of queued Angles.
func (s *Scheduler) Len() int {
	return s.heap.Len()
}

type schedulerEntry struct {
	key float64
	seq uint64
	id  AngleID
}

type schedulerHeap struct {
	entries   []schedulerEntry
	positions map[AngleID]int
}

func (s *schedulerHeap) Len() int {
	return len(s.entries)
}

func (s *schedulerHeap) Less(i, j int) bool {
	e1, e2 := s.entries[i], s.entries[j]
	if e1.key != e2.key {
		return e1.key < e2.key
	}
	return e1.seq < e2.seq
}

func (s *schedulerHeap) Swap(i, j int) {
	s.entries[i], s.entries[j] = s.entries[j], s.entries[i]
	s.positions[s.entries[i].id] = i
	s.positions[s.entries[j].id] = j
}

func (s *schedulerHeap) Push(x interface{}) {
	entry := x.(schedulerEntry)
	s.positions[entry.id] = len(s.entries)
	s.entries = append(s.entries, entry)
}

func (s *schedulerHeap) Pop() interface{} {
	n := len(s.entries)
	entry := s.entries[n-1]
	s.entries = s.entries[:n-1]
	delete(s.positions, entry.id)
	return entry
}
