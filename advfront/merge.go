package advfront

// mergeByDistance merges pairs of adjacent front vertices
// which are closer than the merge threshold.
//
// Only pairs with at least one vertex created by the rules
// are merged, so the hole boundary is never changed. Faces
// which become degenerate are removed from the filling.
func (f *Filler) mergeByDistance() {
	if f.cfg.MergeThreshold <= 0 {
		return
	}
	for len(f.front) > 3 {
		keepID, dropID, ok := f.closePair()
		if !ok {
			return
		}
		f.mergeAngles(keepID, dropID)
	}
}

// closePair finds the first pair of adjacent angles whose
// vertices can be merged, and decides which one survives.
func (f *Filler) closePair() (keep, drop AngleID, ok bool) {
	holeLen := len(f.hole)
	for _, id := range f.ring.IDs() {
		nextID := f.ring.Get(id).Next
		u := f.ring.Get(id).Window[1]
		w := f.ring.Get(nextID).Window[1]
		if u < holeLen && w < holeLen {
			continue
		}
		if f.filling.Vertices[u].Dist(f.filling.Vertices[w]) >= f.cfg.MergeThreshold {
			continue
		}
		if u < holeLen || (w >= holeLen && u < w) {
			return id, nextID, true
		}
		return nextID, id, true
	}
	return NoAngle, NoAngle, false
}

func (f *Filler) mergeAngles(keepID, dropID AngleID) {
	keepV := f.ring.Get(keepID).Window[1]
	dropV := f.ring.Get(dropID).Window[1]
	if f.cfg.Verbose {
		f.cfg.Logger.Printf("advancing front: merging vertex %d into %d", dropV, keepV)
	}
	f.stats.Merges++

	faces := f.filling.Faces[:0]
	for _, face := range f.filling.Faces {
		for i, v := range face {
			if v == dropV {
				face[i] = keepV
			}
		}
		if face[0] != face[1] && face[1] != face[2] && face[2] != face[0] {
			faces = append(faces, face)
		}
	}
	f.filling.Faces = faces
	f.removeFront(dropV)

	prevID, nextID := f.ring.Get(dropID).Prev, f.ring.Get(dropID).Next
	f.unschedule(dropID, prevID, nextID)
	f.ring.Remove(dropID)
	prev := f.ring.Get(prevID)
	next := f.ring.Get(nextID)
	prevWindow := [3]int{prev.Window[0], prev.Window[1], next.Window[1]}
	nextWindow := [3]int{prev.Window[1], next.Window[1], next.Window[2]}
	f.ring.UpdateWindow(prevID, prevWindow)
	f.ring.UpdateWindow(nextID, nextWindow)
	f.schedule(prevID, nextID)
}
