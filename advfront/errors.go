package advfront

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/unixpickle/holefill/imesh"
	"github.com/unixpickle/model3d/model3d"
)

var (
	ErrCollisionTimeout = errors.New("collision test: timed out waiting for workers")
	ErrPoolClosed       = errors.New("collision test: worker pool is closed")
)

// A FatalError aborts a filling job. It carries the state
// of the job at the time of the failure.
type FatalError struct {
	Reason    string
	Iteration int

	// Front is the remaining front, in order.
	Front []model3d.Coord3D

	// Filling is the filling built so far.
	Filling *imesh.Mesh

	// Err is the underlying cause, if any.
	Err error
}

func (f *FatalError) Error() string {
	msg := fmt.Sprintf("advancing front: %s (iteration %d, front %d, filling %d faces)",
		f.Reason, f.Iteration, len(f.Front), len(f.Filling.Faces))
	if f.Err != nil {
		msg += ": " + f.Err.Error()
	}
	return msg
}

func (f *FatalError) Unwrap() error {
	return f.Err
}
