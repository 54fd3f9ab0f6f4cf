package advfront

import (
	"log"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/unixpickle/model3d/model3d"
)

// CollisionMode selects which triangles candidate
// triangles are tested against.
type CollisionMode int

const (
	// FillingOnly tests against the filling built so far.
	FillingOnly CollisionMode = iota

	// FillingAndModel also tests against the model the
	// hole belongs to.
	FillingAndModel
)

func (c CollisionMode) String() string {
	if c == FillingAndModel {
		return "filling and model"
	}
	return "filling only"
}

const (
	DefaultMergeEvery       = 1
	DefaultProgressEvery    = 10
	DefaultMaxRetries       = 16
	DefaultCollisionTimeout = 30 * time.Second
)

// Config controls a single hole filling job.
type Config struct {
	// MergeThreshold is the distance below which adjacent
	// front vertices are merged.
	MergeThreshold float64

	// Workers is the size of the collision worker pool.
	// If 0, runtime.NumCPU() is used.
	Workers int

	Mode CollisionMode

	// MergeEvery runs the vertex merge every so many
	// iterations. If 0, DefaultMergeEvery is used; if
	// negative, vertices are never merged.
	MergeEvery int

	// ProgressEvery is the iteration interval at which
	// Progress is called. If 0, DefaultProgressEvery is
	// used.
	ProgressEvery int

	// Progress, if non-nil, receives the completion
	// percentage.
	Progress func(percent int)

	// MaxIterations stops the job early when positive.
	MaxIterations int

	// MaxRetries is the number of collision rejections an
	// angle may accumulate without an update. If 0,
	// DefaultMaxRetries is used.
	MaxRetries int

	// CollisionTimeout bounds the wait for the results of
	// one collision test. If 0, DefaultCollisionTimeout is
	// used.
	CollisionTimeout time.Duration

	// Reference is the point angles are measured against.
	// If nil, DefaultReference of the hole is used.
	Reference *model3d.Coord3D

	// Logger receives warnings and diagnostics. If nil, a
	// logger writing to stderr is used.
	Logger *log.Logger

	// Verbose enables one log line per iteration.
	Verbose bool
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	if c.MergeThreshold < 0 {
		return errors.New("validate config: negative merge threshold")
	}
	if c.Workers < 0 {
		return errors.New("validate config: negative worker count")
	}
	if c.ProgressEvery < 0 || c.MaxIterations < 0 || c.MaxRetries < 0 {
		return errors.New("validate config: negative iteration count")
	}
	if c.CollisionTimeout < 0 {
		return errors.New("validate config: negative collision timeout")
	}
	if c.Mode != FillingOnly && c.Mode != FillingAndModel {
		return errors.Errorf("validate config: unknown collision mode %d", c.Mode)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Workers == 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.MergeEvery == 0 {
		c.MergeEvery = DefaultMergeEvery
	}
	if c.ProgressEvery == 0 {
		c.ProgressEvery = DefaultProgressEvery
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.CollisionTimeout == 0 {
		c.CollisionTimeout = DefaultCollisionTimeout
	}
	if c.Logger == nil {
		c.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}
	return c
}
